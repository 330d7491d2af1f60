package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationLog is an append-only delivery record written by the worker
// pool after each send attempt settles. Lives in Mongo.
type NotificationLog struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"id"`

	Kind      string `bson:"kind" json:"kind"` // booking_request|interview_confirmed|engagement|ops_alert
	Recipient string `bson:"recipient" json:"recipient"`
	Subject   string `bson:"subject" json:"subject"`

	Status   string `bson:"status" json:"status"` // sent|failed
	Attempts int    `bson:"attempts" json:"attempts"`
	Error    string `bson:"error,omitempty" json:"error,omitempty"`

	SentAt time.Time `bson:"sent_at" json:"sent_at"`
}
