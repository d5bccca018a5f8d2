package models

import "time"

// Operator is an account allowed to press the oven's buttons over the API.
// Usernames are stored lowercased.
type Operator struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
