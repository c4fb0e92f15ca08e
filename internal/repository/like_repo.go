package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/swipematch/internal/db"
	"github.com/oggyb/swipematch/internal/utils/pagination"
)

// LikeRepository provides data access methods for the Like model.
// It encapsulates all queries related to likes/passes between users.
type LikeRepository struct {
	db *gorm.DB
}

// NewLikeRepository creates a new repository bound to the given DB connection.
func NewLikeRepository(database *gorm.DB) *LikeRepository {
	return &LikeRepository{db: database}
}

// WithTx returns a copy bound to tx.
func (r *LikeRepository) WithTx(tx *gorm.DB) *LikeRepository {
	return &LikeRepository{db: tx}
}

// Upsert inserts or updates the decision made by liker -> liked.
//
// Behavior:
//   - If (liker_id, liked_id) exists → is_like and updated_at are overwritten.
//   - If it doesn’t exist → a new row is inserted.
//   - Composite PK ensures at most one row per ordered pair.
//
// Returns the row as stored after the write.
//
// Example:
//
//	repo.Upsert(ctx, 1, 2, true) // user 1 liked user 2
func (r *LikeRepository) Upsert(ctx context.Context, likerID, likedID uint64, isLike bool) (*db.Like, error) {
	like := db.Like{
		LikerID: likerID,
		LikedID: likedID,
		IsLike:  isLike,
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "liker_id"}, {Name: "liked_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"is_like", "updated_at"}),
		}).
		Create(&like).Error
	if err != nil {
		return nil, fmt.Errorf("upsert like %d->%d: %w", likerID, likedID, err)
	}

	stored, err := r.Get(ctx, likerID, likedID)
	if err != nil {
		return nil, err
	}
	return stored, nil
}

// Get returns the directed like, or nil when none exists.
func (r *LikeRepository) Get(ctx context.Context, likerID, likedID uint64) (*db.Like, error) {
	var like db.Like
	err := r.db.WithContext(ctx).
		Where("liker_id = ? AND liked_id = ?", likerID, likedID).
		Take(&like).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get like %d->%d: %w", likerID, likedID, err)
	}
	return &like, nil
}

// HasLiked checks whether liker currently has is_like = true on liked.
func (r *LikeRepository) HasLiked(ctx context.Context, likerID, likedID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Like{}).
		Where("liker_id = ? AND liked_id = ? AND is_like = ?", likerID, likedID, true).
		Count(&count).Error
	return count > 0, err
}

// Counterparts returns every user that has a like row with userID on either side.
func (r *LikeRepository) Counterparts(ctx context.Context, userID uint64) ([]uint64, error) {
	var given, received []uint64
	if err := r.db.WithContext(ctx).Model(&db.Like{}).
		Where("liker_id = ?", userID).Pluck("liked_id", &given).Error; err != nil {
		return nil, fmt.Errorf("list likes given by %d: %w", userID, err)
	}
	if err := r.db.WithContext(ctx).Model(&db.Like{}).
		Where("liked_id = ?", userID).Pluck("liker_id", &received).Error; err != nil {
		return nil, fmt.Errorf("list likes received by %d: %w", userID, err)
	}

	seen := make(map[uint64]struct{}, len(given)+len(received))
	out := make([]uint64, 0, len(given)+len(received))
	for _, id := range append(given, received...) {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out, nil
}

// DeleteInvolving removes every like given or received by userID.
func (r *LikeRepository) DeleteInvolving(ctx context.Context, userID uint64) error {
	return r.db.WithContext(ctx).
		Where("liker_id = ? OR liked_id = ?", userID, userID).
		Delete(&db.Like{}).Error
}

// GetLikers returns users who liked the given user.
//
// Behavior:
//   - Only likes where liked_id = X and is_like = true are returned.
//   - Excludes users that X explicitly passed (is_like = false).
//   - Ordered by updated_at DESC, liker_id DESC.
//   - Supports cursor-based pagination via paginationToken.
//
// Example:
//
//	repo.GetLikers(ctx, 42, nil, 20) // first 20 people who liked user 42
func (r *LikeRepository) GetLikers(
	ctx context.Context,
	likedID uint64,
	paginationToken *string,
	limit int,
) ([]db.Like, *string, error) {
	var likes []db.Like

	cursor, err := pagination.Decode(getString(paginationToken))
	if err != nil {
		return nil, nil, err
	}

	query := r.likersQuery(ctx, likedID).
		Order("l.updated_at DESC, l.liker_id DESC").
		Limit(limit + 1)

	if !cursor.IsZero() {
		ts := time.UnixMilli(cursor.UpdatedUnix).UTC()
		query = query.Where(
			"(l.updated_at < ? OR (l.updated_at = ? AND l.liker_id < ?))",
			ts, ts, cursor.ID,
		)
	}

	if err := query.Find(&likes).Error; err != nil {
		return nil, nil, err
	}

	var nextToken *string
	if len(likes) > limit {
		last := likes[limit-1]
		token, _ := pagination.Encode(pagination.Cursor{
			ID:          last.LikerID,
			UpdatedUnix: last.UpdatedAt.UnixMilli(),
		})
		nextToken = &token
		likes = likes[:limit]
	}

	return likes, nextToken, nil
}

// CountLikers returns how many users liked the given user, with the same
// exclusions as GetLikers. The DB is the fallback behind the Redis counter.
func (r *LikeRepository) CountLikers(ctx context.Context, likedID uint64) (int64, error) {
	var count int64
	if err := r.likersQuery(ctx, likedID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *LikeRepository) likersQuery(ctx context.Context, likedID uint64) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("likes l").
		Where("l.liked_id = ? AND l.is_like = ?", likedID, true).
		Where(`
			NOT EXISTS (
				SELECT 1 FROM likes l2
				WHERE l2.liker_id = ?
				  AND l2.liked_id = l.liker_id
				  AND l2.is_like = ?
			)`, likedID, false)
}

// getString safely dereferences a string pointer for pagination tokens.
func getString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
