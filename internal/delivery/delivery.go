// Package delivery defines the contract every transport entry point
// implements so the composition root can start them uniformly.
package delivery

import "context"

// Delivery is a serving surface (HTTP today) started by the app runner.
type Delivery interface {
	// Serve blocks until the server stops or the context is cancelled.
	Serve(ctx context.Context) error
}
