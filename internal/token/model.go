package token

import "time"

// AccessToken is the persisted record of an issued bearer token. Only the
// SHA-256 digest of the secret is stored; the plaintext leaves the service
// exactly once, at issue time.
type AccessToken struct {
	ID         string
	UserID     string
	Name       string
	Digest     string
	CreatedAt  time.Time
	LastUsedAt *time.Time
}
