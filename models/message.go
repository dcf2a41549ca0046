package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Message struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Sender    primitive.ObjectID `bson:"sender" json:"sender"`
	Receiver  primitive.ObjectID `bson:"receiver" json:"receiver"`
	Text      string             `bson:"text" json:"text"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Conversation is the latest message exchanged with one correspondent, as
// grouped by the message store.
type Conversation struct {
	With        primitive.ObjectID `bson:"_id"`
	LastMessage string             `bson:"lastMessage"`
	CreatedAt   time.Time          `bson:"createdAt"`
}

// InboxEntry joins a Conversation with the correspondent's display profile.
type InboxEntry struct {
	ID          primitive.ObjectID `json:"_id"`
	LastMessage string             `json:"lastMessage"`
	CreatedAt   time.Time          `json:"createdAt"`
	FirstName   string             `json:"firstName"`
	LastName    string             `json:"lastName"`
	Image       string             `json:"image"`
}
