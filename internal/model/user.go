// Package model defines the records the stores persist.
//
// These are plain data holders. Nothing in this package validates; request
// shape checks live in internal/handler and business rules in internal/account.
package model

import "time"

// User is a registered identity. Email is the login handle and is unique.
//
// PasswordHash never leaves the server: it has no JSON tag on purpose and
// handlers build their own response types.
type User struct {
	ID           int64     `json:"-"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"-"`
}
