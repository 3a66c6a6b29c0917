package models

import "time"

// AccessLog records one access decision for a person.
type AccessLog struct {
	ID        string    `json:"id"`
	PersonID  string    `json:"personId"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
	UserID    string    `json:"userId,omitempty"`

	// PersonName is filled by listings that join people; empty when the
	// person has since been deleted.
	PersonName string `json:"personName,omitempty"`
}

type AccessLogFilter struct {
	PersonID string
	Limit    int
}
