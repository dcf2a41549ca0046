package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Email    string             `bson:"email" json:"-"`
	Password string             `bson:"password" json:"-"` // bcrypt hash

	FirstName string `bson:"firstName" json:"firstName"`
	LastName  string `bson:"lastName" json:"lastName"`
	Age       int    `bson:"age" json:"age"`
	Gender    string `bson:"gender" json:"gender"`
	Bio       string `bson:"bio" json:"bio"`
	Interests string `bson:"interests" json:"interests"`
	Image     string `bson:"image" json:"image"`

	Likes   []primitive.ObjectID `bson:"likes" json:"-"`
	Matches []primitive.ObjectID `bson:"matches" json:"-"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

func (u *User) HasLiked(id primitive.ObjectID) bool {
	return containsID(u.Likes, id)
}

func (u *User) HasMatched(id primitive.ObjectID) bool {
	return containsID(u.Matches, id)
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
