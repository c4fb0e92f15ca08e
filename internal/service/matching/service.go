package matching

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/oggyb/swipematch/internal/app"
	"github.com/oggyb/swipematch/internal/db"
	svcErr "github.com/oggyb/swipematch/internal/errors"
	"github.com/oggyb/swipematch/internal/repository"
)

// Service owns the like ledger and the matches derived from it.
//
// A match row exists for a pair exactly when both directed likes are
// is_like = true. Every write to the ledger is followed by a reconcile of the
// affected pair inside the same transaction, so the derived rows never lag.
type Service struct {
	appCtx  *app.AppContext
	users   *repository.UserRepository
	likes   *repository.LikeRepository
	matches *repository.MatchRepository
}

// NewService creates the matching service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:  appCtx,
		users:   repository.NewUserRepository(appCtx.DB),
		likes:   repository.NewLikeRepository(appCtx.DB),
		matches: repository.NewMatchRepository(appCtx.DB),
	}
}

// LikeResult is what a like or pass leaves behind.
type LikeResult struct {
	Like *db.Like
	// Match is the pair's match after the write, nil when not mutual.
	Match *db.Match
	// MatchCreated is true only when this call inserted the match row.
	MatchCreated bool
	// MatchRemoved is true when this call deleted the pair's match row.
	MatchRemoved bool
}

// Reconciliation describes what Reconcile did to one pair.
type Reconciliation struct {
	Pair    db.Pair
	Match   *db.Match
	Created bool
	Removed bool
}

// RecordInterest stores actor's like (interested) or pass on target.
//
// Behavior:
//   - actor == target → InvalidOperation.
//   - Unknown target → NotFound.
//   - Upserts (actor, target) and reconciles the pair in one transaction.
//   - Drops the cached liked-you counters of both users; a pass by the
//     recipient hides the liker from the recipient's count.
//
// Example:
//
//	svc.RecordInterest(ctx, 1, 2, true) // user 1 likes user 2
func (s *Service) RecordInterest(ctx context.Context, actorID, targetID uint64, interested bool) (*LikeResult, error) {
	s.appCtx.Logger.Debug("RecordInterest called", "actor", actorID, "target", targetID, "interested", interested)

	if actorID == targetID {
		return nil, svcErr.InvalidOperation("cannot like or dislike yourself")
	}
	ok, err := s.users.Exists(ctx, targetID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	if !ok {
		return nil, svcErr.NotFound("user not found")
	}

	var res LikeResult
	err = s.appCtx.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.users.WithTx(tx).LockPair(ctx, db.NewPair(actorID, targetID)); err != nil {
			return err
		}
		like, err := s.likes.WithTx(tx).Upsert(ctx, actorID, targetID, interested)
		if err != nil {
			return err
		}
		rec, err := s.reconcile(ctx, tx, actorID, targetID)
		if err != nil {
			return err
		}
		res = LikeResult{Like: like, Match: rec.Match, MatchCreated: rec.Created, MatchRemoved: rec.Removed}
		return nil
	})
	if err != nil {
		s.appCtx.Logger.Error("RecordInterest failed", "actor", actorID, "target", targetID, "err", err)
		return nil, svcErr.Map(err)
	}

	s.invalidateLikeCount(ctx, targetID)
	s.invalidateLikeCount(ctx, actorID)
	return &res, nil
}

// Reconcile brings the match row for {a, b} in line with the ledger.
// It is idempotent and safe to call for any pair at any time.
func (s *Service) Reconcile(ctx context.Context, a, b uint64) (*Reconciliation, error) {
	if a == b {
		return nil, svcErr.InvalidOperation("a pair needs two distinct users")
	}

	var rec *Reconciliation
	err := s.appCtx.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		rec, err = s.reconcile(ctx, tx, a, b)
		return err
	})
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return rec, nil
}

// reconcile is Reconcile bound to a caller's transaction.
func (s *Service) reconcile(ctx context.Context, tx *gorm.DB, a, b uint64) (*Reconciliation, error) {
	pair := db.NewPair(a, b)
	likes := s.likes.WithTx(tx)
	matches := s.matches.WithTx(tx)

	forward, err := likes.HasLiked(ctx, pair.Lo, pair.Hi)
	if err != nil {
		return nil, fmt.Errorf("reconcile %d-%d: %w", pair.Lo, pair.Hi, err)
	}
	backward, err := likes.HasLiked(ctx, pair.Hi, pair.Lo)
	if err != nil {
		return nil, fmt.Errorf("reconcile %d-%d: %w", pair.Lo, pair.Hi, err)
	}

	rec := &Reconciliation{Pair: pair}
	if forward && backward {
		rec.Match, rec.Created, err = matches.CreateIfAbsent(ctx, pair)
		if err != nil {
			return nil, err
		}
		if rec.Created {
			s.appCtx.Logger.Info("match created", "match_id", rec.Match.ID, "user_one", pair.Lo, "user_two", pair.Hi)
		}
		return rec, nil
	}

	rec.Removed, err = matches.DeleteByPair(ctx, pair)
	if err != nil {
		return nil, err
	}
	if rec.Removed {
		s.appCtx.Logger.Info("match removed", "user_one", pair.Lo, "user_two", pair.Hi)
	}
	return rec, nil
}

// FindMatch returns the match between a and b, or nil.
func (s *Service) FindMatch(ctx context.Context, a, b uint64) (*db.Match, error) {
	m, err := s.matches.FindByPair(ctx, db.NewPair(a, b))
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return m, nil
}

// GetMatch loads a match by id.
func (s *Service) GetMatch(ctx context.Context, matchID uint64) (*db.Match, error) {
	m, err := s.matches.GetByID(ctx, matchID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, svcErr.NotFound("match not found")
	}
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return m, nil
}

// ListMatches returns the user's matches newest first.
// limit <= 0 falls back to the configured default and is capped at
// MAX_PAGE_SIZE; a negative offset is 0.
func (s *Service) ListMatches(ctx context.Context, userID uint64, limit, offset int) ([]db.Match, error) {
	limit = s.appCtx.Config.PageSize(limit, s.appCtx.Config.Limits.Matches)
	if offset < 0 {
		offset = 0
	}
	list, err := s.matches.ListForUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return list, nil
}

// UnmatchTarget names the match to dissolve: by id, or by the other user.
// MatchID wins when both are set.
type UnmatchTarget struct {
	MatchID uint64
	UserID  uint64
}

// Unmatch deletes the match row the actor takes part in.
//
// Likes, the conversation and its messages are left untouched. A later like
// or dislike on the pair reconciles it again, which re-creates the match while
// both likes still stand.
func (s *Service) Unmatch(ctx context.Context, actorID uint64, target UnmatchTarget) error {
	s.appCtx.Logger.Debug("Unmatch called", "actor", actorID, "match_id", target.MatchID, "user_id", target.UserID)

	var m *db.Match
	switch {
	case target.MatchID != 0:
		found, err := s.GetMatch(ctx, target.MatchID)
		if err != nil {
			return err
		}
		if !found.Pair().Contains(actorID) {
			return svcErr.Unauthorized("not a participant of this match")
		}
		m = found
	case target.UserID != 0:
		if target.UserID == actorID {
			return svcErr.InvalidOperation("cannot unmatch yourself")
		}
		found, err := s.FindMatch(ctx, actorID, target.UserID)
		if err != nil {
			return err
		}
		if found == nil {
			return svcErr.NotFound("match not found")
		}
		m = found
	default:
		return svcErr.InvalidOperation("matchId or userId is required")
	}

	if _, err := s.matches.DeleteByID(ctx, m.ID); err != nil {
		return svcErr.Map(err)
	}
	s.appCtx.Logger.Info("unmatched", "match_id", m.ID, "actor", actorID)
	return nil
}

// DeleteMatch removes any match by id. Callers check admin rights.
func (s *Service) DeleteMatch(ctx context.Context, matchID uint64) error {
	removed, err := s.matches.DeleteByID(ctx, matchID)
	if err != nil {
		return svcErr.Map(err)
	}
	if !removed {
		return svcErr.NotFound("match not found")
	}
	return nil
}

// PurgeUser removes every like involving userID and reconciles each affected
// pair, then drops any match row still naming the user. It runs inside tx.
//
// The returned ids have stale liked-you counters; pass them to
// InvalidateLikeCounts once tx has committed.
func (s *Service) PurgeUser(ctx context.Context, tx *gorm.DB, userID uint64) ([]uint64, error) {
	likes := s.likes.WithTx(tx)

	others, err := likes.Counterparts(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := likes.DeleteInvolving(ctx, userID); err != nil {
		return nil, fmt.Errorf("delete likes of %d: %w", userID, err)
	}
	for _, other := range others {
		if _, err := s.reconcile(ctx, tx, userID, other); err != nil {
			return nil, err
		}
	}
	if err := s.matches.WithTx(tx).DeleteInvolving(ctx, userID); err != nil {
		return nil, fmt.Errorf("delete matches of %d: %w", userID, err)
	}
	return append(others, userID), nil
}

// InvalidateLikeCounts drops the cached liked-you counters of ids.
func (s *Service) InvalidateLikeCounts(ctx context.Context, ids ...uint64) {
	for _, id := range ids {
		s.invalidateLikeCount(ctx, id)
	}
}

func (s *Service) invalidateLikeCount(ctx context.Context, userID uint64) {
	if s.appCtx.RedisCache == nil {
		return
	}
	if err := s.appCtx.RedisCache.InvalidateLikeCount(ctx, userID); err != nil {
		s.appCtx.Logger.Warn("failed to invalidate like count", "user", userID, "err", err)
	}
}
