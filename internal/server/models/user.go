package models

import "time"

// User is an operator account. Email is unique; Role is one of
// common.RoleAdmin or common.RoleUser.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// UserFilter narrows a user listing. Empty fields are ignored.
type UserFilter struct {
	// Search is matched case-insensitively against name and email.
	Search string
	Role   string
}

// UserPatch carries the optional fields of a user update.
type UserPatch struct {
	Name         *string
	Role         *string
	PasswordHash *string
}
