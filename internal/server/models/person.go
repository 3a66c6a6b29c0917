package models

import "time"

// Person is a registered face. The photo itself lives in object storage
// under PhotoKey; PhotoHash is the xxh3 digest of its bytes.
type Person struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ListType  string    `json:"listType"`
	PhotoKey  string    `json:"-"`
	PhotoHash string    `json:"photoHash"`
	CreatedBy string    `json:"createdBy,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type PersonFilter struct {
	Search   string
	ListType string
}

type PersonPatch struct {
	Name     *string
	ListType *string
}
