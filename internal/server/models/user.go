package models

import "time"

// User is an account row. PasswordHash is the PHC-encoded argon2id string
// and never leaves the service layer; Sanitized drops it.
type User struct {
	ID           string    `json:"id"`
	FullName     string    `json:"fullname"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"is_admin"`
	Country      string    `json:"country"`
	CreatedAt    time.Time `json:"created_at"`
}

// Sanitized returns a copy safe to hand to transports.
func (u *User) Sanitized() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.PasswordHash = ""
	return &c
}
