package users

import (
	"errors"
	"time"
)

var ErrUserNotFound = errors.New("user not found")

// User is one users-table row. FirebaseUID is the external identity; ID is
// the surrogate key runs and reports are attributed to.
type User struct {
	ID          string    `json:"id"`
	FirebaseUID string    `json:"firebase_uid"`
	Email       *string   `json:"email,omitempty"`
	DisplayName *string   `json:"display_name,omitempty"`
	PhotoURL    *string   `json:"photo_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
