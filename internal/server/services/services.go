// Package services holds the BioGuard business logic. Services work on
// repositories vended by a repomanager.RepositoryManager and translate
// storage failures into the sentinels of package common.
package services

import (
	"fmt"

	"github.com/zeebo/xxh3"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("services")

// PhotoHash is the content digest used to recognise identical photos and as
// the photo ETag.
func PhotoHash(photo []byte) string {
	return fmt.Sprintf("%016x", xxh3.Hash(photo))
}
