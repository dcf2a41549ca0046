// Package mongostore implements the store contracts on MongoDB.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wink/models"
	"wink/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Users struct {
	coll *mongo.Collection
	// transactions wraps match promotion in a multi-document transaction.
	// Requires a replica set.
	transactions bool
}

var _ store.UserStore = (*Users)(nil)

func NewUsers(coll *mongo.Collection, transactions bool) *Users {
	return &Users{coll: coll, transactions: transactions}
}

func (s *Users) Create(ctx context.Context, u *models.User) error {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	if u.Likes == nil {
		u.Likes = []primitive.ObjectID{}
	}
	if u.Matches == nil {
		u.Matches = []primitive.ObjectID{}
	}

	if _, err := s.coll.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return store.ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *Users) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *Users) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

func (s *Users) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	err := s.coll.FindOne(ctx, filter).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

func (s *Users) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	return s.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find())
}

func (s *Users) List(ctx context.Context, exclude []primitive.ObjectID, limit int) ([]models.User, error) {
	filter := bson.M{}
	if len(exclude) > 0 {
		filter["_id"] = bson.M{"$nin": exclude}
	}
	opts := options.Find().SetProjection(bson.M{"password": 0})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return s.find(ctx, filter, opts)
}

func (s *Users) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.User, error) {
	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}

// AddLike is a single $addToSet so concurrent likes never lose updates.
func (s *Users) AddLike(ctx context.Context, liker, target primitive.ObjectID) (*models.User, error) {
	update := bson.M{
		"$addToSet": bson.M{"likes": target},
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
	}
	return s.findOneAndUpdate(ctx, liker, update)
}

func (s *Users) UpdateProfile(ctx context.Context, id primitive.ObjectID, patch models.ProfilePatch) (*models.User, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	for k, v := range patch.Fields() {
		set[k] = v
	}
	return s.findOneAndUpdate(ctx, id, bson.M{"$set": set})
}

func (s *Users) findOneAndUpdate(ctx context.Context, id primitive.ObjectID, update bson.M) (*models.User, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var u models.User
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return &u, nil
}

// AddMatch promotes a mutual like on both records. Without transactions the
// two updates are an ordered bulk write: if the second fails the first
// stays applied.
func (s *Users) AddMatch(ctx context.Context, a, b primitive.ObjectID) error {
	if !s.transactions {
		return s.addMatch(ctx, a, b)
	}

	session, err := s.coll.Database().Client().StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, s.addMatch(sc, a, b)
	})
	return err
}

func (s *Users) addMatch(ctx context.Context, a, b primitive.ObjectID) error {
	now := time.Now().UTC()
	writes := []mongo.WriteModel{
		mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": a}).
			SetUpdate(bson.M{"$addToSet": bson.M{"matches": b}, "$set": bson.M{"updatedAt": now}}),
		mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": b}).
			SetUpdate(bson.M{"$addToSet": bson.M{"matches": a}, "$set": bson.M{"updatedAt": now}}),
	}

	res, err := s.coll.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(true))
	if err != nil {
		return fmt.Errorf("promote match: %w", err)
	}
	if res.MatchedCount < int64(len(writes)) {
		return store.ErrNotFound
	}
	return nil
}
