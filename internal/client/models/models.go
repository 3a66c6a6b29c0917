// Package models mirrors the JSON documents returned by the BioGuard API.
package models

import "time"

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

type Person struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ListType  string    `json:"listType"`
	PhotoHash string    `json:"photoHash"`
	CreatedBy string    `json:"createdBy,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type AccessLog struct {
	ID         string    `json:"id"`
	PersonID   string    `json:"personId"`
	PersonName string    `json:"personName,omitempty"`
	Action     string    `json:"action"`
	Timestamp  time.Time `json:"timestamp"`
	UserID     string    `json:"userId,omitempty"`
}

type Recognition struct {
	Matched bool    `json:"matched"`
	Person  *Person `json:"person,omitempty"`
	Action  string  `json:"action,omitempty"`
	LogID   string  `json:"logId,omitempty"`
}

// Session is the token pair persisted between CLI invocations.
type Session struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}
