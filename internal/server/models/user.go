// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is an account holder. PasswordHash is a bcrypt hash; the plaintext
// never leaves the signup/login handlers. StorageUsed mirrors the sum of the
// sizes of all files the user owns and is kept in step by the quota ledger.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string

	IsVerified        bool
	VerificationToken string

	ResetPasswordToken   string
	ResetPasswordExpires *time.Time

	StorageUsed  int64
	StorageLimit int64

	CreatedAt time.Time
}
