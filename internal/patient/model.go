package patient

import "time"

// Patient is one diagnosis record owned by a user.
type Patient struct {
	ID             string
	UserID         string
	PatientName    string
	Age            int
	Gender         string
	ContactNumber  string
	DiagnosisImage *string // storage path, optional
	Result         *string
	Confidence     *float64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
