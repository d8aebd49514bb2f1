package models

import "time"

// User is an account in the identity store.
type User struct {
	ID                int64     `db:"id" json:"-"`
	UUID              string    `db:"uuid" json:"uuid"`
	Username          string    `db:"username" json:"username"`
	Email             string    `db:"email" json:"email"`
	PasswordHash      string    `db:"password_hash" json:"-"`
	FirstName         string    `db:"first_name" json:"first_name"`
	LastName          string    `db:"last_name" json:"last_name"`
	Description       string    `db:"description" json:"description"`
	Avatar            string    `db:"avatar" json:"avatar"`
	IsVisible         bool      `db:"is_visible" json:"is_visible"`
	IsOpenForMessages bool      `db:"is_open_for_messages" json:"is_open_for_messages"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
}
