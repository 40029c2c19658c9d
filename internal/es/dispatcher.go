package es

import "context"

// Dispatcher delivers persisted events to interested subscribers. The
// repository publishes only after a successful append, in the order the
// events were raised.
type Dispatcher interface {
	Publish(ctx context.Context, event Event) error
}
