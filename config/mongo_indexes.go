package config

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func EnsureMongoIndexes() error {
	if MongoClient == nil {
		return errors.New("MongoClient is nil; call InitMongo() first")
	}
	db := MongoDatabase()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// notification_log indexes
	log := db.Collection("notification_log")
	_, err := log.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "recipient", Value: 1}, {Key: "sent_at", Value: -1}},
			Options: options.Index().SetName("by_recipient_sent"),
		},
		{
			Keys:    bson.D{{Key: "kind", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("by_kind_status"),
		},
		// TTL: keep the delivery log for 90 days
		{
			Keys: bson.D{{Key: "sent_at", Value: 1}},
			Options: options.Index().
				SetName("ttl_sent_at").
				SetExpireAfterSeconds(90 * 24 * 3600),
		},
	})
	return err
}
