package calendar

import (
	"context"
	"time"
)

// Provider creates external calendar events for availability blocks and
// confirmed interviews. Opaque collaborator; failures must not roll back the
// booking that triggered them.
type Provider interface {
	CreateEvent(ctx context.Context, summary string, start, end time.Time, attendees []string) (eventRef string, err error)
}
