package mongostore

import (
	"context"
	"fmt"
	"time"

	"wink/models"
	"wink/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Messages struct {
	coll *mongo.Collection
}

var _ store.MessageStore = (*Messages)(nil)

func NewMessages(coll *mongo.Collection) *Messages {
	return &Messages{coll: coll}
}

func (s *Messages) Insert(ctx context.Context, m *models.Message) error {
	if m.ID.IsZero() {
		m.ID = primitive.NewObjectID()
	}
	// BSON datetimes carry milliseconds; keep the in-memory copy identical.
	now := time.Now().UTC().Truncate(time.Millisecond)
	m.CreatedAt, m.UpdatedAt = now, now

	if _, err := s.coll.InsertOne(ctx, m); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// Between sorts on _id after createdAt so messages stored within the same
// millisecond keep insertion order.
func (s *Messages) Between(ctx context.Context, a, b primitive.ObjectID) ([]models.Message, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"sender": a, "receiver": b},
		bson.M{"sender": b, "receiver": a},
	}}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find messages: %w", err)
	}
	defer cursor.Close(ctx)

	msgs := []models.Message{}
	if err := cursor.All(ctx, &msgs); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}
	return msgs, nil
}

func (s *Messages) Conversations(ctx context.Context, userID primitive.ObjectID) ([]models.Conversation, error) {
	cursor, err := s.coll.Aggregate(ctx, ConversationsPipeline(userID))
	if err != nil {
		return nil, fmt.Errorf("aggregate conversations: %w", err)
	}
	defer cursor.Close(ctx)

	convs := []models.Conversation{}
	if err := cursor.All(ctx, &convs); err != nil {
		return nil, fmt.Errorf("decode conversations: %w", err)
	}
	return convs, nil
}

// ConversationsPipeline groups userID's messages by the other party and keeps
// the newest text and timestamp of each group.
func ConversationsPipeline(userID primitive.ObjectID) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "$or", Value: bson.A{
			bson.D{{Key: "sender", Value: userID}},
			bson.D{{Key: "receiver", Value: userID}},
		}}}}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{{Key: "$cond", Value: bson.A{
				bson.D{{Key: "$eq", Value: bson.A{"$sender", userID}}},
				"$receiver",
				"$sender",
			}}}},
			{Key: "lastMessage", Value: bson.D{{Key: "$first", Value: "$text"}}},
			{Key: "createdAt", Value: bson.D{{Key: "$first", Value: "$createdAt"}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
	}
}
