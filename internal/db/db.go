package db

import (
	"context"
	"errors"
	"time"

	"homework-bot/internal/config"
	"homework-bot/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type DB struct {
	Client        *mongo.Client
	Database      *mongo.Database
	Notifications *mongo.Collection
}

func Connect(cfg *config.Config) (*DB, error) {
	if cfg.MongoDBURI == "" {
		return nil, errors.New("mongodb uri is not set")
	}

	clientOpts := options.Client().ApplyURI(cfg.MongoDBURI)
	client, err := mongo.Connect(clientOpts)
	if err != nil {
		return nil, err
	}

	db := client.Database(cfg.DatabaseName)

	d := &DB{
		Client:        client,
		Database:      db,
		Notifications: db.Collection("notifications"),
	}

	if err := d.createIndexes(); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	return d, nil
}

func (d *DB) createIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := d.Notifications.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "homework_name", Value: 1}, {Key: "created_at", Value: -1}}},
	})

	return err
}

// Record stores a sent (or attempted) notification.
func (d *DB) Record(ctx context.Context, n models.Notification) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	_, err := d.Notifications.InsertOne(ctx, n)
	return err
}

// History returns the latest notifications for a homework, newest first.
func (d *DB) History(ctx context.Context, homeworkName string, limit int64) ([]models.Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit)
	cursor, err := d.Notifications.Find(ctx, bson.M{"homework_name": homeworkName}, opts)
	if err != nil {
		return nil, err
	}

	var notifications []models.Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}

	return notifications, nil
}

func (d *DB) Close(ctx context.Context) error {
	return d.Client.Disconnect(ctx)
}
