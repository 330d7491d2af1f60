package notify

import "context"

// Provider delivers a rendered notification. At-least-once; retries are the
// caller's concern.
type Provider interface {
	Send(ctx context.Context, to, subject, body string) error
}
