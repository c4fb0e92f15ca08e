package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/swipematch/internal/db"
)

// ConversationRepository stores conversations keyed on a canonical pair.
type ConversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(database *gorm.DB) *ConversationRepository {
	return &ConversationRepository{db: database}
}

func (r *ConversationRepository) WithTx(tx *gorm.DB) *ConversationRepository {
	return &ConversationRepository{db: tx}
}

func (r *ConversationRepository) FindByPair(ctx context.Context, p db.Pair) (*db.Conversation, error) {
	var c db.Conversation
	err := r.db.WithContext(ctx).
		Where("user_a_id = ? AND user_b_id = ?", p.Lo, p.Hi).
		Take(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find conversation %d-%d: %w", p.Lo, p.Hi, err)
	}
	return &c, nil
}

// GetByID returns the conversation or gorm.ErrRecordNotFound.
func (r *ConversationRepository) GetByID(ctx context.Context, id uint64) (*db.Conversation, error) {
	var c db.Conversation
	if err := r.db.WithContext(ctx).Take(&c, id).Error; err != nil {
		return nil, fmt.Errorf("get conversation %d: %w", id, err)
	}
	return &c, nil
}

// CreateIfAbsent has the same create-if-absent semantics as
// MatchRepository.CreateIfAbsent, keyed on idx_conversations_pair.
func (r *ConversationRepository) CreateIfAbsent(ctx context.Context, p db.Pair) (*db.Conversation, error) {
	c := db.Conversation{UserAID: p.Lo, UserBID: p.Hi}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_a_id"}, {Name: "user_b_id"}},
			DoNothing: true,
		}).
		Create(&c).Error
	if err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, fmt.Errorf("create conversation %d-%d: %w", p.Lo, p.Hi, err)
	}

	stored, err := r.FindByPair(ctx, p)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, fmt.Errorf("create conversation %d-%d: row missing after insert", p.Lo, p.Hi)
	}
	return stored, nil
}

// Touch records activity on the conversation.
func (r *ConversationRepository) Touch(ctx context.Context, id uint64, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&db.Conversation{}).
		Where("id = ?", id).
		UpdateColumn("updated_at", at).Error
}

// ListForUser returns the user's conversations by last activity, newest first.
func (r *ConversationRepository) ListForUser(ctx context.Context, userID uint64) ([]db.Conversation, error) {
	var convs []db.Conversation
	err := r.db.WithContext(ctx).
		Where("user_a_id = ? OR user_b_id = ?", userID, userID).
		Order("updated_at DESC, id DESC").
		Find(&convs).Error
	if err != nil {
		return nil, fmt.Errorf("list conversations for %d: %w", userID, err)
	}
	return convs, nil
}

// DeleteInvolving removes the user's conversations and their messages.
func (r *ConversationRepository) DeleteInvolving(ctx context.Context, userID uint64) error {
	ids := r.db.WithContext(ctx).
		Model(&db.Conversation{}).
		Select("id").
		Where("user_a_id = ? OR user_b_id = ?", userID, userID)

	if err := r.db.WithContext(ctx).
		Where("conversation_id IN (?)", ids).
		Delete(&db.Message{}).Error; err != nil {
		return fmt.Errorf("delete messages of %d: %w", userID, err)
	}
	if err := r.db.WithContext(ctx).
		Where("user_a_id = ? OR user_b_id = ?", userID, userID).
		Delete(&db.Conversation{}).Error; err != nil {
		return fmt.Errorf("delete conversations of %d: %w", userID, err)
	}
	return nil
}
