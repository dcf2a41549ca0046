package services

import (
	"context"
	"errors"
	"io"
	"strings"

	"wink/apperr"
	"wink/media"
	"wink/models"
	"wink/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProfileService struct {
	users    store.UserStore
	uploader media.Uploader
}

func NewProfileService(users store.UserStore, up media.Uploader) *ProfileService {
	if up == nil {
		up = media.Disabled{}
	}
	return &ProfileService{users: users, uploader: up}
}

// UpdateProfile applies patch to the user's editable fields.
func (s *ProfileService) UpdateProfile(ctx context.Context, userHex string, patch models.ProfilePatch) (*models.User, error) {
	id, err := parseID("userId", userHex)
	if err != nil {
		return nil, err
	}
	patch = trimPatch(patch)
	if err := checkPatch(patch); err != nil {
		return nil, err
	}
	if patch.Empty() {
		return s.find(ctx, id)
	}

	u, err := s.users.UpdateProfile(ctx, id, patch)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, apperr.Store(err, "update profile")
	}
	return u, nil
}

// Matches lists the cards of everyone the user matched with. An unknown
// user has no matches.
func (s *ProfileService) Matches(ctx context.Context, userHex string) ([]models.MatchProfile, error) {
	out := []models.MatchProfile{}
	id, err := primitive.ObjectIDFromHex(userHex)
	if err != nil {
		return out, nil
	}
	u, err := s.users.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return out, nil
	}
	if err != nil {
		return nil, apperr.Store(err, "find user")
	}
	if len(u.Matches) == 0 {
		return out, nil
	}

	matched, err := s.users.FindByIDs(ctx, u.Matches)
	if err != nil {
		return nil, apperr.Store(err, "load matches")
	}
	byID := make(map[primitive.ObjectID]*models.User, len(matched))
	for i := range matched {
		byID[matched[i].ID] = &matched[i]
	}
	// keep the order the matches were made in
	for _, mid := range u.Matches {
		if m, ok := byID[mid]; ok {
			out = append(out, m.MatchCard())
		}
	}
	return out, nil
}

// UploadImage stores file with the image host and points the profile at it.
func (s *ProfileService) UploadImage(ctx context.Context, userHex string, file io.Reader) (*models.User, error) {
	id, err := parseID("userId", userHex)
	if err != nil {
		return nil, err
	}
	if _, err := s.find(ctx, id); err != nil {
		return nil, err
	}

	url, err := s.uploader.UploadAvatar(ctx, id.Hex(), file)
	if errors.Is(err, media.ErrDisabled) {
		return nil, apperr.Unavailable("Image uploads are not available")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeStore, err, "upload image")
	}
	return s.UpdateProfile(ctx, userHex, models.ProfilePatch{Image: &url})
}

func (s *ProfileService) find(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, apperr.Store(err, "find user")
	}
	return u, nil
}

func trimPatch(p models.ProfilePatch) models.ProfilePatch {
	for _, f := range []**string{&p.FirstName, &p.LastName, &p.Gender, &p.Image} {
		if *f != nil {
			v := strings.TrimSpace(**f)
			*f = &v
		}
	}
	return p
}

func checkPatch(p models.ProfilePatch) error {
	required := []struct {
		name  string
		value *string
	}{
		{"firstName", p.FirstName},
		{"lastName", p.LastName},
		{"gender", p.Gender},
	}
	for _, r := range required {
		if r.value != nil && *r.value == "" {
			return apperr.Validation(r.name + " cannot be empty")
		}
	}
	if p.Age != nil && (*p.Age < 18 || *p.Age > 120) {
		return apperr.Validation("age must be between 18 and 120")
	}
	if p.Bio != nil && len([]rune(*p.Bio)) > 500 {
		return apperr.Validation("bio must be at most 500 characters")
	}
	return nil
}
