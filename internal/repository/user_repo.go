package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/swipematch/internal/db"
)

// UserRepository provides data access for user profiles.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{db: database}
}

func (r *UserRepository) WithTx(tx *gorm.DB) *UserRepository {
	return &UserRepository{db: tx}
}

func (r *UserRepository) Create(ctx context.Context, u *db.User) error {
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// GetByID loads the user with photos ordered by position.
// Returns gorm.ErrRecordNotFound when absent.
func (r *UserRepository) GetByID(ctx context.Context, id uint64) (*db.User, error) {
	var u db.User
	err := r.db.WithContext(ctx).
		Preload("Photos", func(tx *gorm.DB) *gorm.DB { return tx.Order("position ASC, id ASC") }).
		Take(&u, id).Error
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return &u, nil
}

// GetByEmail returns nil when no user has the email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*db.User, error) {
	var u db.User
	err := r.db.WithContext(ctx).
		Where("email = ?", strings.TrimSpace(email)).
		Take(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return &u, nil
}

// Exists reports whether a user row with id exists.
func (r *UserRepository) Exists(ctx context.Context, id uint64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&db.User{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

// LockPair takes row locks on both users of p, lowest id first.
//
// Two transactions touching the same pair queue here, so the second one reads
// the like the first one committed. SQLite ignores the locking clause; its
// writers are already serialized.
func (r *UserRepository) LockPair(ctx context.Context, p db.Pair) error {
	var locked []uint64
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Model(&db.User{}).
		Where("id IN ?", []uint64{p.Lo, p.Hi}).
		Order("id ASC").
		Pluck("id", &locked).Error
	if err != nil {
		return fmt.Errorf("lock users %d-%d: %w", p.Lo, p.Hi, err)
	}
	return nil
}

// Update writes only the given columns.
func (r *UserRepository) Update(ctx context.Context, id uint64, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&db.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("update user %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		// MySQL reports 0 for rows matched but unchanged.
		ok, err := r.Exists(ctx, id)
		if err != nil {
			return fmt.Errorf("update user %d: %w", id, err)
		}
		if !ok {
			return fmt.Errorf("update user %d: %w", id, gorm.ErrRecordNotFound)
		}
	}
	return nil
}

// Delete removes the user row only; callers cascade first.
func (r *UserRepository) Delete(ctx context.Context, id uint64) error {
	res := r.db.WithContext(ctx).Delete(&db.User{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete user %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete user %d: %w", id, gorm.ErrRecordNotFound)
	}
	return nil
}

// CandidateFilter narrows FindCandidates.
type CandidateFilter struct {
	RequesterID uint64
	// Gender restricts results case-insensitively; empty means any.
	Gender string
	Limit  int
}

// FindCandidates returns users eligible to be shown to the requester.
//
// Behavior:
//   - Excludes the requester.
//   - Excludes users the requester liked (is_like = true). Passed users stay.
//   - Excludes users already matched with the requester.
//   - Ordered by id ASC, capped at Limit.
func (r *UserRepository) FindCandidates(ctx context.Context, f CandidateFilter) ([]db.User, error) {
	liked := r.db.Model(&db.Like{}).
		Select("liked_id").
		Where("liker_id = ? AND is_like = ?", f.RequesterID, true)
	matchedAsOne := r.db.Model(&db.Match{}).
		Select("user_two_id").
		Where("user_one_id = ?", f.RequesterID)
	matchedAsTwo := r.db.Model(&db.Match{}).
		Select("user_one_id").
		Where("user_two_id = ?", f.RequesterID)

	query := r.db.WithContext(ctx).
		Preload("Photos", func(tx *gorm.DB) *gorm.DB { return tx.Order("position ASC, id ASC") }).
		Where("id <> ?", f.RequesterID).
		Where("id NOT IN (?)", liked).
		Where("id NOT IN (?)", matchedAsOne).
		Where("id NOT IN (?)", matchedAsTwo)

	if f.Gender != "" {
		query = query.Where("LOWER(gender) = ?", strings.ToLower(f.Gender))
	}

	var users []db.User
	if err := query.Order("id ASC").Limit(f.Limit).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("find candidates for %d: %w", f.RequesterID, err)
	}
	return users, nil
}
