package port

import "context"

// Notifier is fire-and-forget; implementations must not block the caller on delivery.
type Notifier interface {
	Success(ctx context.Context, session, message string)
	Error(ctx context.Context, session, message string)
}
