package queue

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

const (
	StreamNotifications = "notify:stream"
	StreamOpsAlerts     = "ops:alerts"

	KindBookingRequest     = "booking_request"
	KindInterviewConfirmed = "interview_confirmed"
	KindEngagement         = "engagement"
	KindBillingRetry       = "billing_retry"
	KindOpsAlert           = "ops_alert"
)

// Message is one asynchronous task. Notification kinds carry a recipient and
// template data; billing_retry carries only the interview id in Data.
type Message struct {
	Kind      string         `json:"kind"`
	Recipient string         `json:"recipient,omitempty"`
	Subject   string         `json:"subject,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

// Enqueuer is the post-commit side-effect boundary. Nothing may enqueue from
// inside a database transaction.
type Enqueuer interface {
	Enqueue(ctx context.Context, stream string, m Message) error
}

type redisEnqueuer struct {
	rdb *redis.Client
}

func NewRedisEnqueuer(rdb *redis.Client) Enqueuer {
	return &redisEnqueuer{rdb: rdb}
}

func (e *redisEnqueuer) Enqueue(ctx context.Context, stream string, m Message) error {
	data, err := json.Marshal(m.Data)
	if err != nil {
		return err
	}
	return e.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]any{
			"kind":      m.Kind,
			"recipient": m.Recipient,
			"subject":   m.Subject,
			"data":      string(data),
		},
	}).Err()
}
