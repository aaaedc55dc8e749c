package domain

import "time"

// Account represents a registered user of the wiki.
type Account struct {
	ID           int64
	Username     string
	PasswordHash string
	Email        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
