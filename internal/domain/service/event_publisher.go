package service

import (
	"context"
	"time"
)

// AlertEvent is published when an automatic analysis flags an alert.
type AlertEvent struct {
	Answer     string    `json:"answer"`
	ComputedAt time.Time `json:"computed_at"`
	Source     string    `json:"source"` // originating feed, e.g. "auto"
}

// EventPublisher fans alert events out to interested consumers. Publishing
// is best-effort from the analysis path: failures are logged, never
// propagated to the requester.
type EventPublisher interface {
	PublishAlertEvent(ctx context.Context, event *AlertEvent) error
	Close() error
}
