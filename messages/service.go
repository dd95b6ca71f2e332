package messages

import (
	"context"
	"strings"
	"time"

	"cropshare/apperror"
	"cropshare/models"
	"cropshare/utils"
)

// Notifier is the live-push collaborator. The hub satisfies it; tests use a
// recording fake. Injected at construction time; nothing here discovers
// the realtime layer ambiently.
type Notifier interface {
	Publish(receiverID string, msg models.Message)
}

// Store is the message persistence boundary.
type Store interface {
	Insert(ctx context.Context, m models.Message) error
	// Between returns every message exchanged between the two users,
	// oldest first.
	Between(ctx context.Context, userA, userB string) ([]models.Message, error)
	// MarkRead flips read=false to read=true for messages from senderID to
	// receiverID and reports how many changed.
	MarkRead(ctx context.Context, receiverID, senderID string) (int64, error)
	CountUnread(ctx context.Context, receiverID string) (int64, error)
	// Summaries groups the user's messages by counterpart, keeping the
	// latest message per counterpart, newest conversation first.
	Summaries(ctx context.Context, userID string) ([]models.ConversationSummary, error)
}

type Service struct {
	store    Store
	notifier Notifier
}

func NewService(store Store, notifier Notifier) *Service {
	return &Service{store: store, notifier: notifier}
}

// Send persists a message and hands it to the notifier. Persistence is the
// durability boundary: a receiver with no live connection still gets the
// message on their next poll.
func (s *Service) Send(ctx context.Context, senderID, receiverID, body string) (models.Message, error) {
	if senderID == "" {
		return models.Message{}, apperror.Unauthenticated("sender identity required")
	}
	if receiverID == "" {
		return models.Message{}, apperror.Validation("receiverId", "receiverId is required")
	}
	if strings.TrimSpace(body) == "" {
		return models.Message{}, apperror.Validation("message", "message body is required")
	}

	msg := models.Message{
		MessageID:  utils.GenerateID("m", 12),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Body:       body,
		Read:       false,
		CreatedAt:  time.Now(),
	}

	if err := s.store.Insert(ctx, msg); err != nil {
		return models.Message{}, err
	}

	if s.notifier != nil {
		s.notifier.Publish(receiverID, msg)
	}
	return msg, nil
}

// Conversation returns the full exchange with otherID, oldest first, and as
// a side effect marks everything addressed to the caller read. Callers
// needing explicit control use MarkRead directly.
func (s *Service) Conversation(ctx context.Context, callerID, otherID string) ([]models.Message, error) {
	if callerID == "" {
		return nil, apperror.Unauthenticated("caller identity required")
	}
	if otherID == "" {
		return nil, apperror.Validation("otherUserId", "other user id is required")
	}

	msgs, err := s.store.Between(ctx, callerID, otherID)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.MarkRead(ctx, callerID, otherID); err != nil {
		return nil, err
	}

	// Reflect the transition in the returned payload so the client does
	// not render stale unread markers.
	for i := range msgs {
		if msgs[i].ReceiverID == callerID {
			msgs[i].Read = true
		}
	}
	return msgs, nil
}

// MarkRead is idempotent; with nothing left to update it reports zero.
func (s *Service) MarkRead(ctx context.Context, callerID, senderID string) (int64, error) {
	if callerID == "" {
		return 0, apperror.Unauthenticated("caller identity required")
	}
	return s.store.MarkRead(ctx, callerID, senderID)
}

func (s *Service) UnreadCount(ctx context.Context, callerID string) (int64, error) {
	if callerID == "" {
		return 0, apperror.Unauthenticated("caller identity required")
	}
	return s.store.CountUnread(ctx, callerID)
}

func (s *Service) ConversationList(ctx context.Context, callerID string) ([]models.ConversationSummary, error) {
	if callerID == "" {
		return nil, apperror.Unauthenticated("caller identity required")
	}
	return s.store.Summaries(ctx, callerID)
}
