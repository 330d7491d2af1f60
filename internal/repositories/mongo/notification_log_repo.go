package mongo

import (
	"context"
	"time"

	"github.com/hireloop/hireloop/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type NotificationLogRepository interface {
	Append(ctx context.Context, entry *models.NotificationLog) error
	ListByRecipient(ctx context.Context, recipient string, limit int64) ([]models.NotificationLog, error)
}

type notificationLogRepo struct {
	col *mongo.Collection
}

func NewNotificationLogRepo(db *mongo.Database) NotificationLogRepository {
	return &notificationLogRepo{col: db.Collection("notification_log")}
}

func (r *notificationLogRepo) Append(ctx context.Context, entry *models.NotificationLog) error {
	if entry.SentAt.IsZero() {
		entry.SentAt = time.Now().UTC()
	}
	_, err := r.col.InsertOne(ctx, entry)
	return err
}

func (r *notificationLogRepo) ListByRecipient(ctx context.Context, recipient string, limit int64) ([]models.NotificationLog, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "sent_at", Value: -1}}).
		SetLimit(limit)

	cur, err := r.col.Find(ctx, bson.M{"recipient": recipient}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var entries []models.NotificationLog
	if err := cur.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
