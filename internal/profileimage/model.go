package profileimage

import "time"

// ProfileImage is a user's single profile picture. Each user has at most one;
// uploading again replaces the previous file.
type ProfileImage struct {
	UserID    string
	ImagePath string
	CreatedAt time.Time
	UpdatedAt time.Time
}
