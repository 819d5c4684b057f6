package identity

import "time"

// User represents a registered account of the mobile app.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash []byte
	Age          *int
	Gender       *string
	Phone        *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Gender values accepted at registration and profile update.
const (
	GenderMale        = "male"
	GenderFemale      = "female"
	GenderOther       = "other"
	GenderUndisclosed = "prefer_not_to_say"
)
