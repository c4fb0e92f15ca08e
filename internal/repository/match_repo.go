package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/swipematch/internal/db"
)

// MatchRepository stores the derived match rows. Every pair argument is
// expected to be canonical (see db.NewPair).
type MatchRepository struct {
	db *gorm.DB
}

func NewMatchRepository(database *gorm.DB) *MatchRepository {
	return &MatchRepository{db: database}
}

// WithTx returns a copy bound to tx.
func (r *MatchRepository) WithTx(tx *gorm.DB) *MatchRepository {
	return &MatchRepository{db: tx}
}

// FindByPair returns the match for p, or nil.
func (r *MatchRepository) FindByPair(ctx context.Context, p db.Pair) (*db.Match, error) {
	var m db.Match
	err := r.db.WithContext(ctx).
		Where("user_one_id = ? AND user_two_id = ?", p.Lo, p.Hi).
		Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find match %d-%d: %w", p.Lo, p.Hi, err)
	}
	return &m, nil
}

// GetByID returns the match or gorm.ErrRecordNotFound.
func (r *MatchRepository) GetByID(ctx context.Context, id uint64) (*db.Match, error) {
	var m db.Match
	if err := r.db.WithContext(ctx).Take(&m, id).Error; err != nil {
		return nil, fmt.Errorf("get match %d: %w", id, err)
	}
	return &m, nil
}

// CreateIfAbsent inserts the match for p unless one already exists.
//
// Behavior:
//   - INSERT ... ON CONFLICT DO NOTHING keyed on idx_matches_pair.
//   - A duplicate-key error from a racing insert counts as success.
//   - Returns the stored row and whether this call created it.
func (r *MatchRepository) CreateIfAbsent(ctx context.Context, p db.Pair) (*db.Match, bool, error) {
	m := db.Match{UserOneID: p.Lo, UserTwoID: p.Hi}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_one_id"}, {Name: "user_two_id"}},
			DoNothing: true,
		}).
		Create(&m)
	if res.Error != nil && !errors.Is(res.Error, gorm.ErrDuplicatedKey) {
		return nil, false, fmt.Errorf("create match %d-%d: %w", p.Lo, p.Hi, res.Error)
	}
	created := res.Error == nil && res.RowsAffected > 0

	stored, err := r.FindByPair(ctx, p)
	if err != nil {
		return nil, false, err
	}
	if stored == nil {
		return nil, false, fmt.Errorf("create match %d-%d: row missing after insert", p.Lo, p.Hi)
	}
	return stored, created, nil
}

// DeleteByPair removes the match for p. Returns whether a row was removed.
func (r *MatchRepository) DeleteByPair(ctx context.Context, p db.Pair) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_one_id = ? AND user_two_id = ?", p.Lo, p.Hi).
		Delete(&db.Match{})
	if res.Error != nil {
		return false, fmt.Errorf("delete match %d-%d: %w", p.Lo, p.Hi, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// DeleteByID removes one match row.
func (r *MatchRepository) DeleteByID(ctx context.Context, id uint64) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&db.Match{}, id)
	if res.Error != nil {
		return false, fmt.Errorf("delete match %d: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// ListForUser returns the user's matches newest first.
func (r *MatchRepository) ListForUser(ctx context.Context, userID uint64, limit, offset int) ([]db.Match, error) {
	var matches []db.Match
	err := r.db.WithContext(ctx).
		Where("user_one_id = ? OR user_two_id = ?", userID, userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&matches).Error
	if err != nil {
		return nil, fmt.Errorf("list matches for %d: %w", userID, err)
	}
	return matches, nil
}

// CountAll is used by tests and the admin surface to check uniqueness.
func (r *MatchRepository) CountAll(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&db.Match{}).Count(&n).Error
	return n, err
}

// DeleteInvolving removes every match of userID.
func (r *MatchRepository) DeleteInvolving(ctx context.Context, userID uint64) error {
	return r.db.WithContext(ctx).
		Where("user_one_id = ? OR user_two_id = ?", userID, userID).
		Delete(&db.Match{}).Error
}
