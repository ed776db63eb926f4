// Package notification delivers alert push notifications through Firebase
// Cloud Messaging.
package notification

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"watchtower/internal/domain/service"
)

type firebaseService struct {
	client *messaging.Client
	topic  string
}

// NewFirebaseService creates a new Firebase alert notifier instance
func NewFirebaseService(ctx context.Context, credentialsPath, topic string) (service.AlertNotifier, error) {
	opt := option.WithCredentialsFile(credentialsPath)
	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get messaging client: %w", err)
	}

	return &firebaseService{
		client: client,
		topic:  topic,
	}, nil
}

// NotifyAlert sends a push notification to the configured alert topic.
func (s *firebaseService) NotifyAlert(ctx context.Context, title, body string, data map[string]string) error {
	message := &messaging.Message{
		Topic: s.topic,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}

	if _, err := s.client.Send(ctx, message); err != nil {
		return fmt.Errorf("failed to send alert notification: %w", err)
	}

	return nil
}
