package database

import (
	"context"
	"fmt"
	"time"

	"wink/config"
	"wink/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	UsersCollection    = "users"
	MessagesCollection = "messages"

	connectAttempts = 3
	retryDelay      = 2 * time.Second
)

type DB struct {
	Client   *mongo.Client
	Users    *mongo.Collection
	Messages *mongo.Collection
}

// Connect dials MongoDB, retrying a few times before giving up, and pings
// the primary.
func Connect(ctx context.Context, cfg config.MongoConfig, log *logger.Logger) (*DB, error) {
	var (
		client *mongo.Client
		err    error
	)
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		client, err = dial(ctx, cfg.URI)
		if err == nil {
			break
		}
		log.Error(log.WithField(ctx, "attempt", attempt), "mongodb connection attempt failed", err)
		if attempt < connectAttempts {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryDelay):
			}
		}
	}
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}

	db := client.Database(cfg.Database)
	return &DB{
		Client:   client,
		Users:    db.Collection(UsersCollection),
		Messages: db.Collection(MessagesCollection),
	}, nil
}

func dial(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

// EnsureIndexes creates the unique email index and the message lookup
// indexes. Existing indexes are left alone.
func (d *DB) EnsureIndexes(ctx context.Context) error {
	if _, err := d.Users.Indexes().CreateMany(ctx, UserIndexes()); err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}
	if _, err := d.Messages.Indexes().CreateMany(ctx, MessageIndexes()); err != nil {
		return fmt.Errorf("create message indexes: %w", err)
	}
	return nil
}

func UserIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("email_unique"),
		},
	}
}

func MessageIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "sender", Value: 1}}},
		{Keys: bson.D{{Key: "receiver", Value: 1}}},
		{Keys: bson.D{{Key: "sender", Value: 1}, {Key: "receiver", Value: 1}, {Key: "createdAt", Value: -1}}},
	}
}

func (d *DB) Ping(ctx context.Context) error {
	return d.Client.Ping(ctx, nil)
}

func (d *DB) Disconnect(ctx context.Context) error {
	if d == nil || d.Client == nil {
		return nil
	}
	return d.Client.Disconnect(ctx)
}
