package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/oggyb/swipematch/internal/db"
)

type PhotoRepository struct {
	db *gorm.DB
}

func NewPhotoRepository(database *gorm.DB) *PhotoRepository {
	return &PhotoRepository{db: database}
}

func (r *PhotoRepository) WithTx(tx *gorm.DB) *PhotoRepository {
	return &PhotoRepository{db: tx}
}

func (r *PhotoRepository) Count(ctx context.Context, userID uint64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&db.Photo{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}

func (r *PhotoRepository) Create(ctx context.Context, p *db.Photo) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("create photo: %w", err)
	}
	return nil
}

// ListByUser returns the user's photos in display order.
func (r *PhotoRepository) ListByUser(ctx context.Context, userID uint64) ([]db.Photo, error) {
	var photos []db.Photo
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("position ASC, id ASC").
		Find(&photos).Error
	return photos, err
}

// Get returns the photo only if it belongs to userID (gorm.ErrRecordNotFound otherwise).
func (r *PhotoRepository) Get(ctx context.Context, userID, photoID uint64) (*db.Photo, error) {
	var p db.Photo
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", photoID, userID).
		Take(&p).Error
	if err != nil {
		return nil, fmt.Errorf("get photo %d of user %d: %w", photoID, userID, err)
	}
	return &p, nil
}

func (r *PhotoRepository) Delete(ctx context.Context, photoID uint64) error {
	return r.db.WithContext(ctx).Delete(&db.Photo{}, photoID).Error
}

// Reindex rewrites positions to 0..n-1 keeping the current order.
func (r *PhotoRepository) Reindex(ctx context.Context, userID uint64) error {
	photos, err := r.ListByUser(ctx, userID)
	if err != nil {
		return err
	}
	for idx, p := range photos {
		if p.Position == idx {
			continue
		}
		if err := r.db.WithContext(ctx).
			Model(&db.Photo{}).
			Where("id = ?", p.ID).
			UpdateColumn("position", idx).Error; err != nil {
			return fmt.Errorf("reindex photo %d: %w", p.ID, err)
		}
	}
	return nil
}

// SetPrimary clears the flag on every photo of the user, then sets it on photoID.
// Run it inside a transaction so readers never see two primaries.
func (r *PhotoRepository) SetPrimary(ctx context.Context, userID, photoID uint64) error {
	if err := r.db.WithContext(ctx).
		Model(&db.Photo{}).
		Where("user_id = ?", userID).
		UpdateColumn("is_primary", false).Error; err != nil {
		return fmt.Errorf("clear primary photo of %d: %w", userID, err)
	}
	return r.db.WithContext(ctx).
		Model(&db.Photo{}).
		Where("id = ? AND user_id = ?", photoID, userID).
		UpdateColumn("is_primary", true).Error
}

func (r *PhotoRepository) DeleteByUser(ctx context.Context, userID uint64) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&db.Photo{}).Error
}

// ListByUsers returns the photos of every user in userIDs, grouped by user
// and in display order within each user.
func (r *PhotoRepository) ListByUsers(ctx context.Context, userIDs []uint64) ([]db.Photo, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var photos []db.Photo
	err := r.db.WithContext(ctx).
		Where("user_id IN ?", userIDs).
		Order("user_id ASC, position ASC, id ASC").
		Find(&photos).Error
	if err != nil {
		return nil, fmt.Errorf("list photos of %d users: %w", len(userIDs), err)
	}
	return photos, nil
}
