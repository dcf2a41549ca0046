// Package store defines the persistence contracts shared by the Mongo and
// in-memory implementations.
package store

import (
	"context"
	"errors"

	"wink/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound       = errors.New("store: not found")
	ErrDuplicateEmail = errors.New("store: email already registered")
)

type UserStore interface {
	// Create inserts u and fills in its ID. Fails with ErrDuplicateEmail.
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	// FindByEmail expects an already normalized email.
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// FindByIDs returns the users that exist, in no particular order.
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	// AddLike adds target to liker's likes set in one atomic update and
	// returns the updated liker.
	AddLike(ctx context.Context, liker, target primitive.ObjectID) (*models.User, error)
	// AddMatch adds a and b to each other's matches sets.
	AddMatch(ctx context.Context, a, b primitive.ObjectID) error
	// List returns at most limit users whose IDs are not in exclude.
	List(ctx context.Context, exclude []primitive.ObjectID, limit int) ([]models.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, patch models.ProfilePatch) (*models.User, error)
}

type MessageStore interface {
	// Insert assigns ID and timestamps and persists m.
	Insert(ctx context.Context, m *models.Message) error
	// Between returns every message exchanged by a and b, oldest first.
	Between(ctx context.Context, a, b primitive.ObjectID) ([]models.Message, error)
	// Conversations returns the latest message per correspondent of userID,
	// newest first.
	Conversations(ctx context.Context, userID primitive.ObjectID) ([]models.Conversation, error)
}
