package services

import (
	"context"
	"sort"

	"wink/apperr"
	"wink/models"
	"wink/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type InboxService struct {
	users    store.UserStore
	messages store.MessageStore
}

func NewInboxService(users store.UserStore, messages store.MessageStore) *InboxService {
	return &InboxService{users: users, messages: messages}
}

// Inbox lists one entry per correspondent with the latest message, newest
// first. Correspondents whose account no longer exists are left out.
func (s *InboxService) Inbox(ctx context.Context, userHex string) ([]models.InboxEntry, error) {
	userID, err := parseID("userId", userHex)
	if err != nil {
		return nil, err
	}

	convs, err := s.messages.Conversations(ctx, userID)
	if err != nil {
		return nil, apperr.Store(err, "group conversations")
	}
	if len(convs) == 0 {
		return []models.InboxEntry{}, nil
	}

	ids := make([]primitive.ObjectID, 0, len(convs))
	for _, c := range convs {
		ids = append(ids, c.With)
	}
	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, apperr.Store(err, "load correspondents")
	}
	byID := make(map[primitive.ObjectID]*models.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}

	out := make([]models.InboxEntry, 0, len(convs))
	for _, c := range convs {
		u, ok := byID[c.With]
		if !ok {
			continue
		}
		out = append(out, models.InboxEntry{
			ID:          c.With,
			LastMessage: c.LastMessage,
			CreatedAt:   c.CreatedAt,
			FirstName:   u.FirstName,
			LastName:    u.LastName,
			Image:       u.Image,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
