// Package models defines server-side data models persisted in the database.
package models

import "time"

// User can sign in to one company's storefront.
type User struct {
	ID           int64
	CompanyID    int64
	Email        string
	PasswordHash []byte
	CreatedAt    time.Time
}
