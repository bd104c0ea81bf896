package notify

import "context"

// Notifier receives the one-line-title summary of a probe run.
type Notifier interface {
	Send(ctx context.Context, title, text string) error
}
