package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Sentinel errors raised by repositories; the service maps them to
// user-facing failures.
var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already registered")
	ErrPhoneTaken = errors.New("phone number already registered")
)

// Repository persists users.
type Repository interface {
	Create(ctx context.Context, user User) error
	FindByID(ctx context.Context, id string) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	Update(ctx context.Context, user User) error
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed user repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = `id, name, email, password_hash, age, gender, phone_number, created_at, updated_at`

// Create inserts a new user, translating unique-constraint violations into
// the package sentinels.
func (r *PostgresRepository) Create(ctx context.Context, user User) error {
	userID, err := uuid.Parse(user.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO users (id, name, email, password_hash, age, gender, phone_number, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		userID, user.Name, user.Email, user.PasswordHash, user.Age, user.Gender, user.Phone,
		user.CreatedAt.UTC(), user.UpdatedAt.UTC())
	return translateUnique(err)
}

// FindByID fetches a user by id.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (User, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return User{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID)
	return scanUser(row)
}

// FindByEmail fetches a user by normalized email.
func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// Update persists mutable profile fields.
func (r *PostgresRepository) Update(ctx context.Context, user User) error {
	userID, err := uuid.Parse(user.ID)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE users SET name = $1, age = $2, gender = $3, phone_number = $4, updated_at = $5
        WHERE id = $6`,
		user.Name, user.Age, user.Gender, user.Phone, user.UpdatedAt.UTC(), userID)
	if err != nil {
		return translateUnique(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (User, error) {
	var (
		id        uuid.UUID
		createdAt time.Time
		updatedAt time.Time
		user      User
	)
	err := row.Scan(&id, &user.Name, &user.Email, &user.PasswordHash,
		&user.Age, &user.Gender, &user.Phone, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	user.ID = id.String()
	user.CreatedAt = createdAt.UTC()
	user.UpdatedAt = updatedAt.UTC()
	return user, nil
}

// translateUnique converts a 23505 violation into the matching sentinel based
// on the constraint's column.
func translateUnique(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch {
		case strings.Contains(pgErr.ConstraintName, "email"):
			return ErrEmailTaken
		case strings.Contains(pgErr.ConstraintName, "phone"):
			return ErrPhoneTaken
		}
	}
	return err
}
