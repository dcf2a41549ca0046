package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"wink/apperr"
	"wink/metrics"
	"wink/models"
	"wink/store"
)

const MaxMessageLength = 2000

type MessageService struct {
	messages store.MessageStore
	metrics  *metrics.Metrics
}

func NewMessageService(messages store.MessageStore, m *metrics.Metrics) *MessageService {
	return &MessageService{messages: messages, metrics: m}
}

// Send stores a message. Delivery to the receiver's socket is the caller's
// concern.
func (s *MessageService) Send(ctx context.Context, senderHex, receiverHex, text string) (*models.Message, error) {
	sender, err := parseID("sender", senderHex)
	if err != nil {
		return nil, err
	}
	receiver, err := parseID("receiver", receiverHex)
	if err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperr.Validation("text is required")
	}
	if utf8.RuneCountInString(text) > MaxMessageLength {
		return nil, apperr.Validation("text is too long")
	}

	msg := &models.Message{Sender: sender, Receiver: receiver, Text: text}
	if err := s.messages.Insert(ctx, msg); err != nil {
		return nil, apperr.Store(err, "insert message")
	}
	s.metrics.IncMessage()
	return msg, nil
}

// History returns the conversation between two users, oldest first.
func (s *MessageService) History(ctx context.Context, aHex, bHex string) ([]models.Message, error) {
	a, err := parseID("user1", aHex)
	if err != nil {
		return nil, err
	}
	b, err := parseID("user2", bHex)
	if err != nil {
		return nil, err
	}
	msgs, err := s.messages.Between(ctx, a, b)
	if err != nil {
		return nil, apperr.Store(err, "load messages")
	}
	if msgs == nil {
		msgs = []models.Message{}
	}
	return msgs, nil
}
