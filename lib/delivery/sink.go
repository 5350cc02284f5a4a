package delivery

import (
	"context"
)

// Sink is a single collector.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, payload Payload) error
}
