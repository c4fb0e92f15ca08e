package messaging

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/oggyb/swipematch/internal/app"
	"github.com/oggyb/swipematch/internal/db"
	svcErr "github.com/oggyb/swipematch/internal/errors"
	"github.com/oggyb/swipematch/internal/repository"
)

// Service stores conversations between matched users and their messages.
// A conversation is created on the first message of a match and outlives it.
type Service struct {
	appCtx  *app.AppContext
	matches *repository.MatchRepository
	convs   *repository.ConversationRepository
	msgs    *repository.MessageRepository
}

func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:  appCtx,
		matches: repository.NewMatchRepository(appCtx.DB),
		convs:   repository.NewConversationRepository(appCtx.DB),
		msgs:    repository.NewMessageRepository(appCtx.DB),
	}
}

// ConversationSummary pairs a conversation with its newest message.
type ConversationSummary struct {
	Conversation db.Conversation
	LastMessage  *db.Message
}

// GetOrCreateConversation returns the conversation for the match's pair,
// creating it on first use. Unknown match → NotFound.
func (s *Service) GetOrCreateConversation(ctx context.Context, matchID uint64) (*db.Conversation, error) {
	m, err := s.getMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	conv, err := s.convs.CreateIfAbsent(ctx, m.Pair())
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return conv, nil
}

// PostMessage appends a message to a conversation.
//
// Behavior:
//   - Blank content → InvalidOperation.
//   - Unknown conversation → NotFound.
//   - Sender outside the conversation → Unauthorized.
//   - The conversation's updated_at moves to the message time.
func (s *Service) PostMessage(ctx context.Context, conversationID, senderID uint64, content string) (*db.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, svcErr.InvalidOperation("message content is required")
	}

	conv, err := s.convs.GetByID(ctx, conversationID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, svcErr.NotFound("conversation not found")
	}
	if err != nil {
		return nil, svcErr.Map(err)
	}
	if !conv.Pair().Contains(senderID) {
		return nil, svcErr.Unauthorized("not a participant of this conversation")
	}

	msg := &db.Message{ConversationID: conv.ID, SenderID: senderID, Content: content}
	err = s.appCtx.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.msgs.WithTx(tx).Create(ctx, msg); err != nil {
			return err
		}
		return s.convs.WithTx(tx).Touch(ctx, conv.ID, msg.CreatedAt)
	})
	if err != nil {
		s.appCtx.Logger.Error("PostMessage failed", "conversation", conv.ID, "err", err)
		return nil, svcErr.Map(err)
	}

	s.appCtx.Logger.Debug("message posted", "conversation", conv.ID, "sender", senderID, "message_id", msg.ID)
	return msg, nil
}

// SendToMatch posts a message to the other participant of a match, creating
// the conversation lazily. The actor must be part of the match.
func (s *Service) SendToMatch(ctx context.Context, actorID, matchID uint64, content string) (*db.Message, *db.Conversation, error) {
	m, err := s.getMatch(ctx, matchID)
	if err != nil {
		return nil, nil, err
	}
	if !m.Pair().Contains(actorID) {
		return nil, nil, svcErr.Unauthorized("not a participant of this match")
	}
	if strings.TrimSpace(content) == "" {
		return nil, nil, svcErr.InvalidOperation("message content is required")
	}

	conv, err := s.convs.CreateIfAbsent(ctx, m.Pair())
	if err != nil {
		return nil, nil, svcErr.Map(err)
	}
	msg, err := s.PostMessage(ctx, conv.ID, actorID, content)
	if err != nil {
		return nil, nil, err
	}
	conv.UpdatedAt = msg.CreatedAt
	return msg, conv, nil
}

// ListMessages returns the conversation's messages oldest first.
// Only participants may read them.
func (s *Service) ListMessages(ctx context.Context, actorID, conversationID uint64) ([]db.Message, error) {
	conv, err := s.convs.GetByID(ctx, conversationID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, svcErr.NotFound("conversation not found")
	}
	if err != nil {
		return nil, svcErr.Map(err)
	}
	if !conv.Pair().Contains(actorID) {
		return nil, svcErr.Unauthorized("not a participant of this conversation")
	}

	msgs, err := s.msgs.ListByConversation(ctx, conv.ID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return msgs, nil
}

// ListConversations returns the user's conversations by last activity,
// newest first, each with its newest message.
func (s *Service) ListConversations(ctx context.Context, userID uint64) ([]ConversationSummary, error) {
	convs, err := s.convs.ListForUser(ctx, userID)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	out := make([]ConversationSummary, 0, len(convs))
	for _, c := range convs {
		last, err := s.msgs.Last(ctx, c.ID)
		if err != nil {
			return nil, svcErr.Map(err)
		}
		out = append(out, ConversationSummary{Conversation: c, LastMessage: last})
	}
	return out, nil
}

// PurgeUser deletes the user's conversations and their messages inside tx.
func (s *Service) PurgeUser(ctx context.Context, tx *gorm.DB, userID uint64) error {
	return s.convs.WithTx(tx).DeleteInvolving(ctx, userID)
}

func (s *Service) getMatch(ctx context.Context, matchID uint64) (*db.Match, error) {
	m, err := s.matches.GetByID(ctx, matchID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, svcErr.NotFound("match not found")
	}
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return m, nil
}
