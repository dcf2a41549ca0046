package services

import (
	"context"
	"errors"

	"wink/apperr"
	"wink/models"
	"wink/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const DefaultDiscoveryLimit = 30

type DiscoveryService struct {
	users store.UserStore
	limit int
}

func NewDiscoveryService(users store.UserStore, limit int) *DiscoveryService {
	if limit <= 0 {
		limit = DefaultDiscoveryLimit
	}
	return &DiscoveryService{users: users, limit: limit}
}

// ListCandidates returns profiles the viewer has not winked at yet. An
// empty, malformed or unknown viewer sees everyone.
func (s *DiscoveryService) ListCandidates(ctx context.Context, viewerHex string) ([]models.PublicProfile, error) {
	var exclude []primitive.ObjectID
	if viewerID, err := primitive.ObjectIDFromHex(viewerHex); err == nil {
		viewer, err := s.users.FindByID(ctx, viewerID)
		switch {
		case err == nil:
			exclude = append(exclude, viewerID)
			exclude = append(exclude, viewer.Likes...)
		case !errors.Is(err, store.ErrNotFound):
			return nil, apperr.Store(err, "find viewer")
		}
	}

	users, err := s.users.List(ctx, exclude, s.limit)
	if err != nil {
		return nil, apperr.Store(err, "list users")
	}
	out := make([]models.PublicProfile, 0, len(users))
	for i := range users {
		out = append(out, users[i].Public())
	}
	return out, nil
}
