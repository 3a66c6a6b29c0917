// Package events distributes newly written access logs to interested
// parties: live websocket subscribers through Hub and downstream consumers
// through a Kafka topic.
package events

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/bioguard/internal/server/models"
)

const TypeAccessLogCreated = "access_log.created"

type Event struct {
	Type       string            `json:"type"`
	Log        *models.AccessLog `json:"log"`
	OccurredAt time.Time         `json:"occurredAt"`
}

func NewAccessLogEvent(log *models.AccessLog) Event {
	return Event{Type: TypeAccessLogCreated, Log: log, OccurredAt: time.Now().UTC()}
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Nop discards events.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// Fanout publishes to every member and joins their errors.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, ev Event) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
