package patient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound signals an absent patient record.
var ErrNotFound = errors.New("patient not found")

// Repository persists patient records.
type Repository interface {
	Create(ctx context.Context, p Patient) error
	FindByID(ctx context.Context, id string) (Patient, error)
	ListByUser(ctx context.Context, userID string) ([]Patient, error)
	Update(ctx context.Context, p Patient) error
	Delete(ctx context.Context, id string) error
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed patient repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const patientColumns = `id, user_id, patient_name, age, gender, contact_number, diagnosis_image, result, confidence, created_at, updated_at`

// Create inserts a record.
func (r *PostgresRepository) Create(ctx context.Context, p Patient) error {
	id, err := uuid.Parse(p.ID)
	if err != nil {
		return err
	}
	userID, err := uuid.Parse(p.UserID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO patients (`+patientColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		id, userID, p.PatientName, p.Age, p.Gender, p.ContactNumber,
		p.DiagnosisImage, p.Result, p.Confidence, p.CreatedAt.UTC(), p.UpdatedAt.UTC())
	return err
}

// FindByID fetches a record by id.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (Patient, error) {
	pid, err := uuid.Parse(id)
	if err != nil {
		return Patient{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT `+patientColumns+` FROM patients WHERE id = $1`, pid)
	return scanPatient(row)
}

// ListByUser returns the user's records, newest first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]Patient, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("parse user id %q: %w", userID, err)
	}
	rows, err := r.db.Query(ctx, `SELECT `+patientColumns+` FROM patients
        WHERE user_id = $1 ORDER BY created_at DESC`, uid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var patients []Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		patients = append(patients, p)
	}
	return patients, rows.Err()
}

// Update persists mutable fields.
func (r *PostgresRepository) Update(ctx context.Context, p Patient) error {
	pid, err := uuid.Parse(p.ID)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE patients SET patient_name = $1, age = $2, gender = $3,
        contact_number = $4, diagnosis_image = $5, result = $6, confidence = $7, updated_at = $8
        WHERE id = $9`,
		p.PatientName, p.Age, p.Gender, p.ContactNumber,
		p.DiagnosisImage, p.Result, p.Confidence, p.UpdatedAt.UTC(), pid)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a record.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	pid, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `DELETE FROM patients WHERE id = $1`, pid)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanPatient(row pgx.Row) (Patient, error) {
	var (
		id        uuid.UUID
		userID    uuid.UUID
		createdAt time.Time
		updatedAt time.Time
		p         Patient
	)
	err := row.Scan(&id, &userID, &p.PatientName, &p.Age, &p.Gender, &p.ContactNumber,
		&p.DiagnosisImage, &p.Result, &p.Confidence, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Patient{}, ErrNotFound
		}
		return Patient{}, err
	}
	p.ID = id.String()
	p.UserID = userID.String()
	p.CreatedAt = createdAt.UTC()
	p.UpdatedAt = updatedAt.UTC()
	return p, nil
}
