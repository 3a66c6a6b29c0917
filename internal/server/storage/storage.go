// Package storage keeps person photos as objects in S3-compatible storage.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PhotoStore is the blob store used for face photos.
type PhotoStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	// Get returns common.ErrorNotFound when the object does not exist.
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// NewPhotoKey returns a fresh object key partitioned by upload date.
func NewPhotoKey() string {
	d := time.Now().UTC()
	return fmt.Sprintf("people/%d/%02d/%02d/%s.jpg", d.Year(), d.Month(), d.Day(), uuid.New())
}
