package services

import (
	"context"
	"errors"

	"wink/apperr"
	"wink/logger"
	"wink/metrics"
	"wink/models"
	"wink/notify"
	"wink/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type WinkResult struct {
	Matched bool
	Target  models.PublicProfile
}

type MatchingService struct {
	users      store.UserStore
	publisher  notify.Publisher
	metrics    *metrics.Metrics
	log        *logger.Logger
	notifyBoth bool
}

type MatchingOption func(*MatchingService)

// NotifyBoth also sends the MATCH notification to the user whose wink
// completed the match.
func NotifyBoth(on bool) MatchingOption {
	return func(s *MatchingService) { s.notifyBoth = on }
}

func NewMatchingService(users store.UserStore, pub notify.Publisher, m *metrics.Metrics, log *logger.Logger, opts ...MatchingOption) *MatchingService {
	if pub == nil {
		pub = notify.Discard{}
	}
	if log == nil {
		log = logger.Nop()
	}
	s := &MatchingService{users: users, publisher: pub, metrics: m, log: log}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RecordLike adds target to liker's likes and, when target already likes
// liker back, records the match on both sides and notifies the target.
// Repeating a wink is harmless.
func (s *MatchingService) RecordLike(ctx context.Context, likerHex, targetHex string) (*WinkResult, error) {
	likerID, err := parseID("userId", likerHex)
	if err != nil {
		return nil, err
	}
	targetID, err := parseID("targetId", targetHex)
	if err != nil {
		return nil, err
	}
	if likerID == targetID {
		return nil, apperr.Validation("You cannot wink at yourself")
	}

	if _, err := s.findTarget(ctx, targetID); err != nil {
		return nil, err
	}

	liker, err := s.users.AddLike(ctx, likerID, targetID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, apperr.Store(err, "add like")
	}
	s.metrics.IncWink()

	// Target is re-read after our like is stored: of two crossing winks the
	// later read sees both likes.
	target, err := s.findTarget(ctx, targetID)
	if err != nil {
		return nil, err
	}

	res := &WinkResult{Target: target.Public()}
	if !target.HasLiked(likerID) {
		return res, nil
	}

	if err := s.users.AddMatch(ctx, likerID, targetID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, apperr.Store(err, "add match")
	}
	res.Matched = true
	s.metrics.IncMatch()

	ctx = s.log.WithField(ctx, "target_id", targetHex)
	s.log.Info(ctx, "match recorded")

	n := s.publisher.Publish(targetHex, notify.Match(likerHex, liker.DisplayName()))
	s.log.Debug(s.log.WithField(ctx, "delivered", n), "match notification sent")
	if s.notifyBoth {
		s.publisher.Publish(likerHex, notify.Match(targetHex, target.DisplayName()))
	}
	return res, nil
}

func (s *MatchingService) findTarget(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, apperr.Store(err, "find target")
	}
	return u, nil
}
