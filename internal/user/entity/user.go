package entity

import "time"

// User represents an account row in the `users` table. Username is always
// kept equal to email; both columns exist because the API exposes both.
type User struct {
	ID           int64
	Username     string
	Email        string
	Name         *string
	PasswordHash string
	PasswordAlgo *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicUser is the projection exposed over the API. The credential never
// appears here; fields are enumerated explicitly rather than derived.
type PublicUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
}

// Public maps a user to its API projection.
func (u *User) Public() PublicUser {
	out := PublicUser{ID: u.ID, Username: u.Username, Email: u.Email}
	if u.Name != nil {
		out.Name = *u.Name
	}
	return out
}
