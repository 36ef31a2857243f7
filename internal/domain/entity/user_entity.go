package entity

import (
	"time"
)

// User is the aggregate root for the identity domain.
// PasswordHash holds the bcrypt hash of the user's password; the plaintext is
// never stored and the hash never leaves the process in an API response.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	AvatarURL    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile is the outward-facing projection of a User. It deliberately has no
// password field, so a Profile cannot leak a hash no matter how it is
// serialized.
type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Sanitize strips credential material from the user record. Every flow that
// returns a user to a caller must go through this.
func (u *User) Sanitize() Profile {
	return Profile{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		AvatarURL: u.AvatarURL,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
