package profileimage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound signals that the user has no profile image.
var ErrNotFound = errors.New("profile image not found")

// Repository persists one profile image per user.
type Repository interface {
	Upsert(ctx context.Context, img ProfileImage) error
	FindByUser(ctx context.Context, userID string) (ProfileImage, error)
	DeleteByUser(ctx context.Context, userID string) error
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed profile image repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Upsert inserts the user's image row or replaces its path.
func (r *PostgresRepository) Upsert(ctx context.Context, img ProfileImage) error {
	uid, err := uuid.Parse(img.UserID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO user_profile_images (user_id, image_path, created_at, updated_at)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (user_id) DO UPDATE SET image_path = EXCLUDED.image_path, updated_at = EXCLUDED.updated_at`,
		uid, img.ImagePath, img.CreatedAt.UTC(), img.UpdatedAt.UTC())
	return err
}

// FindByUser fetches the user's image row.
func (r *PostgresRepository) FindByUser(ctx context.Context, userID string) (ProfileImage, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return ProfileImage{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT user_id, image_path, created_at, updated_at
        FROM user_profile_images WHERE user_id = $1`, uid)

	var (
		id        uuid.UUID
		createdAt time.Time
		updatedAt time.Time
		img       ProfileImage
	)
	if err := row.Scan(&id, &img.ImagePath, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ProfileImage{}, ErrNotFound
		}
		return ProfileImage{}, err
	}
	img.UserID = id.String()
	img.CreatedAt = createdAt.UTC()
	img.UpdatedAt = updatedAt.UTC()
	return img, nil
}

// DeleteByUser removes the user's image row.
func (r *PostgresRepository) DeleteByUser(ctx context.Context, userID string) error {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `DELETE FROM user_profile_images WHERE user_id = $1`, uid)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
