package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/oggyb/swipematch/internal/app"
	"github.com/oggyb/swipematch/internal/db"
	svcErr "github.com/oggyb/swipematch/internal/errors"
	"github.com/oggyb/swipematch/internal/repository"
)

// Service manages a user's own profile and photos.
type Service struct {
	appCtx *app.AppContext
	users  *repository.UserRepository
	photos *repository.PhotoRepository
}

func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx: appCtx,
		users:  repository.NewUserRepository(appCtx.DB),
		photos: repository.NewPhotoRepository(appCtx.DB),
	}
}

// Update lists the profile fields a user may change on their own.
// Nil fields are left as they are.
type Update struct {
	FirstName      *string
	LastName       *string
	GenderInterest *string
	Bio            *string
	School         *string
	Country        *string
	State          *string
	City           *string
}

func (u Update) columns() (map[string]any, error) {
	cols := map[string]any{}
	for col, v := range map[string]*string{
		"first_name":      u.FirstName,
		"last_name":       u.LastName,
		"gender_interest": u.GenderInterest,
		"bio":             u.Bio,
		"school":          u.School,
		"country":         u.Country,
		"state":           u.State,
		"city":            u.City,
	} {
		if v == nil {
			continue
		}
		val := strings.TrimSpace(*v)
		if val == "" && (col == "first_name" || col == "last_name") {
			return nil, svcErr.InvalidOperation(col + " cannot be blank")
		}
		cols[col] = val
	}
	return cols, nil
}

// Get loads a user with photos in display order.
func (s *Service) Get(ctx context.Context, userID uint64) (*db.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, svcErr.NotFound("user not found")
	}
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return u, nil
}

// UpdateProfile writes only the provided fields and returns the fresh profile.
func (s *Service) UpdateProfile(ctx context.Context, actorID uint64, upd Update) (*db.User, error) {
	cols, err := upd.columns()
	if err != nil {
		return nil, err
	}
	s.appCtx.Logger.Debug("UpdateProfile called", "user", actorID, "fields", len(cols))

	if err := s.users.Update(ctx, actorID, cols); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, svcErr.NotFound("user not found")
		}
		return nil, svcErr.Map(err)
	}
	return s.Get(ctx, actorID)
}

// UploadPhoto appends a photo URL at the end of the user's gallery.
//
// Behavior:
//   - Blank url → InvalidOperation.
//   - The configured per-user limit (5 by default) → InvalidOperation.
//   - position = current photo count.
func (s *Service) UploadPhoto(ctx context.Context, actorID uint64, url string) (*db.Photo, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, svcErr.InvalidOperation("photo url is required")
	}
	limit := s.appCtx.Config.Limits.PhotosPerUser

	var photo *db.Photo
	err := s.appCtx.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		photos := s.photos.WithTx(tx)
		n, err := photos.Count(ctx, actorID)
		if err != nil {
			return err
		}
		if n >= int64(limit) {
			return svcErr.InvalidOperation(fmt.Sprintf("max %d photos allowed", limit))
		}
		photo = &db.Photo{UserID: actorID, URL: url, Position: int(n)}
		return photos.Create(ctx, photo)
	})
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return photo, nil
}

// DeletePhoto removes one of the actor's photos and closes the gap in positions.
func (s *Service) DeletePhoto(ctx context.Context, actorID, photoID uint64) error {
	err := s.appCtx.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		photos := s.photos.WithTx(tx)
		p, err := photos.Get(ctx, actorID, photoID)
		if err != nil {
			return err
		}
		if err := photos.Delete(ctx, p.ID); err != nil {
			return err
		}
		return photos.Reindex(ctx, actorID)
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return svcErr.NotFound("photo not found")
	}
	if err != nil {
		return svcErr.Map(err)
	}
	return nil
}

// SetPrimaryPhoto makes photoID the actor's only primary photo.
func (s *Service) SetPrimaryPhoto(ctx context.Context, actorID, photoID uint64) (*db.Photo, error) {
	var photo *db.Photo
	err := s.appCtx.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		photos := s.photos.WithTx(tx)
		p, err := photos.Get(ctx, actorID, photoID)
		if err != nil {
			return err
		}
		if err := photos.SetPrimary(ctx, actorID, p.ID); err != nil {
			return err
		}
		p.IsPrimary = true
		photo = p
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, svcErr.NotFound("photo not found")
	}
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return photo, nil
}

// PurgeUser deletes the user's photos inside tx.
func (s *Service) PurgeUser(ctx context.Context, tx *gorm.DB, userID uint64) error {
	return s.photos.WithTx(tx).DeleteByUser(ctx, userID)
}
