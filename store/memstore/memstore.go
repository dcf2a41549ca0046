// Package memstore keeps users and messages in process memory. It backs the
// tests and STORE_DRIVER=memory local runs.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"wink/models"
	"wink/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Users struct {
	mu    sync.RWMutex
	order []primitive.ObjectID
	byID  map[primitive.ObjectID]*models.User
	now   func() time.Time
}

var _ store.UserStore = (*Users)(nil)

func NewUsers() *Users {
	return &Users{
		byID: map[primitive.ObjectID]*models.User{},
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *Users) Create(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.byID {
		if existing.Email == u.Email {
			return store.ErrDuplicateEmail
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	now := s.now()
	u.CreatedAt, u.UpdatedAt = now, now
	if u.Likes == nil {
		u.Likes = []primitive.ObjectID{}
	}
	if u.Matches == nil {
		u.Matches = []primitive.ObjectID{}
	}

	s.byID[u.ID] = cloneUser(u)
	s.order = append(s.order, u.ID)
	return nil
}

func (s *Users) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return cloneUser(u), nil
}

func (s *Users) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.byID {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Users) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.User, 0, len(ids))
	seen := map[primitive.ObjectID]bool{}
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if u, ok := s.byID[id]; ok {
			out = append(out, *cloneUser(u))
		}
	}
	return out, nil
}

func (s *Users) AddLike(_ context.Context, liker, target primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[liker]
	if !ok {
		return nil, store.ErrNotFound
	}
	if !u.HasLiked(target) {
		u.Likes = append(u.Likes, target)
		u.UpdatedAt = s.now()
	}
	return cloneUser(u), nil
}

func (s *Users) AddMatch(_ context.Context, a, b primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ua, okA := s.byID[a]
	ub, okB := s.byID[b]
	if !okA || !okB {
		return store.ErrNotFound
	}
	now := s.now()
	if !ua.HasMatched(b) {
		ua.Matches = append(ua.Matches, b)
		ua.UpdatedAt = now
	}
	if !ub.HasMatched(a) {
		ub.Matches = append(ub.Matches, a)
		ub.UpdatedAt = now
	}
	return nil
}

func (s *Users) List(_ context.Context, exclude []primitive.ObjectID, limit int) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	skip := make(map[primitive.ObjectID]bool, len(exclude))
	for _, id := range exclude {
		skip[id] = true
	}

	out := []models.User{}
	for _, id := range s.order {
		if limit > 0 && len(out) >= limit {
			break
		}
		if skip[id] {
			continue
		}
		out = append(out, *cloneUser(s.byID[id]))
	}
	return out, nil
}

func (s *Users) UpdateProfile(_ context.Context, id primitive.ObjectID, patch models.ProfilePatch) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	patch.Apply(u)
	u.UpdatedAt = s.now()
	return cloneUser(u), nil
}

func cloneUser(u *models.User) *models.User {
	c := *u
	c.Likes = append([]primitive.ObjectID(nil), u.Likes...)
	c.Matches = append([]primitive.ObjectID(nil), u.Matches...)
	if c.Likes == nil {
		c.Likes = []primitive.ObjectID{}
	}
	if c.Matches == nil {
		c.Matches = []primitive.ObjectID{}
	}
	return &c
}

type Messages struct {
	mu   sync.RWMutex
	all  []models.Message
	last time.Time
	now  func() time.Time
}

var _ store.MessageStore = (*Messages)(nil)

func NewMessages() *Messages {
	return &Messages{now: func() time.Time { return time.Now().UTC() }}
}

// Insert stamps createdAt at millisecond precision, like a BSON datetime,
// and keeps it strictly increasing across inserts.
func (s *Messages) Insert(_ context.Context, m *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := s.now().Truncate(time.Millisecond)
	if !ts.After(s.last) {
		ts = s.last.Add(time.Millisecond)
	}
	s.last = ts

	if m.ID.IsZero() {
		m.ID = primitive.NewObjectID()
	}
	m.CreatedAt, m.UpdatedAt = ts, ts
	s.all = append(s.all, *m)
	return nil
}

func (s *Messages) Between(_ context.Context, a, b primitive.ObjectID) ([]models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Message{}
	for _, m := range s.all {
		if (m.Sender == a && m.Receiver == b) || (m.Sender == b && m.Receiver == a) {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Messages) Conversations(_ context.Context, userID primitive.ObjectID) ([]models.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	latest := map[primitive.ObjectID]models.Conversation{}
	for _, m := range s.all {
		var other primitive.ObjectID
		switch userID {
		case m.Sender:
			other = m.Receiver
		case m.Receiver:
			other = m.Sender
		default:
			continue
		}
		if cur, ok := latest[other]; ok && !m.CreatedAt.After(cur.CreatedAt) {
			continue
		}
		latest[other] = models.Conversation{With: other, LastMessage: m.Text, CreatedAt: m.CreatedAt}
	}

	out := make([]models.Conversation, 0, len(latest))
	for _, c := range latest {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
