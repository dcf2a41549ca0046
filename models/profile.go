package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// PublicProfile is what other users get to see: no credentials and no
// relationship sets.
type PublicProfile struct {
	ID        primitive.ObjectID `json:"_id"`
	FirstName string             `json:"firstName"`
	LastName  string             `json:"lastName"`
	Age       int                `json:"age"`
	Gender    string             `json:"gender"`
	Bio       string             `json:"bio"`
	Interests string             `json:"interests"`
	Image     string             `json:"image"`
}

func (u *User) Public() PublicProfile {
	return PublicProfile{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Age:       u.Age,
		Gender:    u.Gender,
		Bio:       u.Bio,
		Interests: u.Interests,
		Image:     u.Image,
	}
}

// SessionUser is returned to the account owner after login or a profile edit.
type SessionUser struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Age       int    `json:"age"`
	Gender    string `json:"gender"`
	Bio       string `json:"bio"`
	Interests string `json:"interests"`
	Image     string `json:"image"`
}

func (u *User) Session() SessionUser {
	return SessionUser{
		ID:        u.ID.Hex(),
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Age:       u.Age,
		Gender:    u.Gender,
		Bio:       u.Bio,
		Interests: u.Interests,
		Image:     u.Image,
	}
}

type MatchProfile struct {
	ID        primitive.ObjectID `json:"_id"`
	FirstName string             `json:"firstName"`
	LastName  string             `json:"lastName"`
	Image     string             `json:"image"`
	Bio       string             `json:"bio"`
	Age       int                `json:"age"`
}

func (u *User) MatchCard() MatchProfile {
	return MatchProfile{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Image:     u.Image,
		Bio:       u.Bio,
		Age:       u.Age,
	}
}

func (u *User) DisplayName() string {
	return u.FirstName
}

// ProfilePatch lists the only fields a profile edit may touch. Nil means
// "leave as is".
type ProfilePatch struct {
	FirstName *string
	LastName  *string
	Age       *int
	Gender    *string
	Bio       *string
	Interests *string
	Image     *string
}

func (p ProfilePatch) Empty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Age == nil &&
		p.Gender == nil && p.Bio == nil && p.Interests == nil && p.Image == nil
}

// Fields returns the patch as bson field names to values.
func (p ProfilePatch) Fields() map[string]any {
	out := map[string]any{}
	if p.FirstName != nil {
		out["firstName"] = *p.FirstName
	}
	if p.LastName != nil {
		out["lastName"] = *p.LastName
	}
	if p.Age != nil {
		out["age"] = *p.Age
	}
	if p.Gender != nil {
		out["gender"] = *p.Gender
	}
	if p.Bio != nil {
		out["bio"] = *p.Bio
	}
	if p.Interests != nil {
		out["interests"] = *p.Interests
	}
	if p.Image != nil {
		out["image"] = *p.Image
	}
	return out
}

// Apply copies the set fields onto u.
func (p ProfilePatch) Apply(u *User) {
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.Age != nil {
		u.Age = *p.Age
	}
	if p.Gender != nil {
		u.Gender = *p.Gender
	}
	if p.Bio != nil {
		u.Bio = *p.Bio
	}
	if p.Interests != nil {
		u.Interests = *p.Interests
	}
	if p.Image != nil {
		u.Image = *p.Image
	}
}
