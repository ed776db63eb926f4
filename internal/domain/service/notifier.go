package service

import "context"

// AlertNotifier pushes a human-facing notification when an alert fires.
// Implementations may be absent entirely (nil) when not configured.
type AlertNotifier interface {
	NotifyAlert(ctx context.Context, title, body string, data map[string]string) error
}
