package matching

import (
	"context"
	"errors"

	"github.com/oggyb/swipematch/internal/db"
	svcErr "github.com/oggyb/swipematch/internal/errors"
	"github.com/oggyb/swipematch/internal/utils/pagination"
)

// LikedYouPage is one page of users who liked the recipient.
type LikedYouPage struct {
	Likes     []db.Like
	NextToken *string
}

// ListLikedYou returns users who liked the recipient.
//
// Behavior:
//   - Excludes users the recipient explicitly passed.
//   - Newest first, cursor paginated with token.
//   - A malformed token → InvalidOperation.
//
// Example:
//
//	svc.ListLikedYou(ctx, 42, nil)
func (s *Service) ListLikedYou(ctx context.Context, recipientID uint64, token *string) (*LikedYouPage, error) {
	s.appCtx.Logger.Debug("ListLikedYou called", "recipient", recipientID)

	likes, next, err := s.likes.GetLikers(ctx, recipientID, token, s.appCtx.Config.Limits.LikedYouPerPage)
	if errors.Is(err, pagination.ErrInvalidToken) {
		return nil, svcErr.InvalidOperation("invalid pagination token")
	}
	if err != nil {
		s.appCtx.Logger.Error("GetLikers failed", "err", err)
		return nil, svcErr.Map(err)
	}

	s.appCtx.Logger.Debug("ListLikedYou result", "liker_count", len(likes))
	return &LikedYouPage{Likes: likes, NextToken: next}, nil
}

// CountLikedYou returns how many users liked the recipient.
// Cache-first strategy:
//  1. Read likes:count:<id> from Redis.
//  2. On a miss, note the count's version, count in the DB, and store the
//     result only if no swipe invalidated the count in between.
//
// Any like or pass on the recipient drops the cached value.
func (s *Service) CountLikedYou(ctx context.Context, recipientID uint64) (int64, error) {
	s.appCtx.Logger.Debug("CountLikedYou called", "recipient", recipientID)

	redisCache := s.appCtx.RedisCache
	version := int64(-1)
	if redisCache != nil {
		n, ok, err := redisCache.GetLikeCount(ctx, recipientID)
		if err != nil {
			s.appCtx.Logger.Warn("like count cache read failed", "recipient", recipientID, "err", err)
		} else if ok {
			return n, nil
		}
		if v, err := redisCache.LikeCountVersion(ctx, recipientID); err == nil {
			version = v
		} else {
			s.appCtx.Logger.Warn("like count version read failed", "recipient", recipientID, "err", err)
		}
	}

	count, err := s.likes.CountLikers(ctx, recipientID)
	if err != nil {
		return 0, svcErr.Map(err)
	}

	if version >= 0 {
		ttl := s.appCtx.Config.Limits.LikeCountTTL
		if _, err := redisCache.SetLikeCount(ctx, recipientID, count, version, ttl); err != nil {
			s.appCtx.Logger.Warn("like count cache write failed", "recipient", recipientID, "err", err)
		}
	}
	return count, nil
}
