package token

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound signals an unknown token digest.
var ErrNotFound = errors.New("token not found")

// Repository persists access tokens by digest.
type Repository interface {
	Store(ctx context.Context, token AccessToken) error
	FindByDigest(ctx context.Context, digest string) (AccessToken, error)
	Touch(ctx context.Context, id string, at time.Time) error
	DeleteByDigest(ctx context.Context, digest string) error
	DeleteByUser(ctx context.Context, userID string) error
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed token repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Store inserts a token record.
func (r *PostgresRepository) Store(ctx context.Context, token AccessToken) error {
	tokenID, err := uuid.Parse(token.ID)
	if err != nil {
		return err
	}
	userID, err := uuid.Parse(token.UserID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO access_tokens (id, user_id, name, token_digest, created_at)
        VALUES ($1, $2, $3, $4, $5)`,
		tokenID, userID, token.Name, token.Digest, token.CreatedAt.UTC())
	return err
}

// FindByDigest fetches the token owning a digest.
func (r *PostgresRepository) FindByDigest(ctx context.Context, digest string) (AccessToken, error) {
	row := r.db.QueryRow(ctx, `SELECT id, user_id, name, token_digest, created_at, last_used_at
        FROM access_tokens WHERE token_digest = $1`, digest)

	var (
		id        uuid.UUID
		userID    uuid.UUID
		createdAt time.Time
		token     AccessToken
	)
	if err := row.Scan(&id, &userID, &token.Name, &token.Digest, &createdAt, &token.LastUsedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return AccessToken{}, ErrNotFound
		}
		return AccessToken{}, err
	}
	token.ID = id.String()
	token.UserID = userID.String()
	token.CreatedAt = createdAt.UTC()
	return token, nil
}

// Touch records when the token was last presented.
func (r *PostgresRepository) Touch(ctx context.Context, id string, at time.Time) error {
	tokenID, err := uuid.Parse(id)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `UPDATE access_tokens SET last_used_at = $1 WHERE id = $2`, at.UTC(), tokenID)
	return err
}

// DeleteByDigest removes a single token. Deleting an absent digest is not an
// error.
func (r *PostgresRepository) DeleteByDigest(ctx context.Context, digest string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM access_tokens WHERE token_digest = $1`, digest)
	return err
}

// DeleteByUser removes every token owned by the user.
func (r *PostgresRepository) DeleteByUser(ctx context.Context, userID string) error {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `DELETE FROM access_tokens WHERE user_id = $1`, uid)
	return err
}
