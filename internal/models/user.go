package models

import "time"

// User represents a registered user
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Not serialized
	CreatedAt    time.Time `json:"created_at"`
}

// Principal is the authenticated caller, built once by the auth middleware
type Principal struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Principal returns the public view of the user
func (u *User) Principal() Principal {
	return Principal{ID: u.ID, Name: u.Name, Email: u.Email}
}
