package candidates

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

// interestAny is the gender_interest value that disables the gender filter.
const interestAny = "both"

// Selector picks the next profiles to show a user.
type Selector struct {
	appCtx *app.AppContext
	users  *repository.UserRepository
}

func NewSelector(appCtx *app.AppContext) *Selector {
	return &Selector{
		appCtx: appCtx,
		users:  repository.NewUserRepository(appCtx.DB),
	}
}

// Next returns up to limit candidates for userID.
//
// Behavior:
//   - Never returns the requester.
//   - Filters by the requester's gender_interest unless it is empty or "both".
//   - Skips users the requester liked and users already matched with them.
//   - Users the requester disliked stay eligible.
//   - Ordered by id ASC. limit <= 0 falls back to the configured default;
//     larger values are capped at MAX_PAGE_SIZE.
func (s *Selector) Next(ctx context.Context, userID uint64, limit int) ([]db.User, error) {
	limit = s.appCtx.Config.PageSize(limit, s.appCtx.Config.Limits.Candidates)

	requester, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, svcErr.NotFound("user not found")
	}
	if err != nil {
		return nil, svcErr.Map(err)
	}

	filter := repository.CandidateFilter{RequesterID: userID, Limit: limit}
	if interest := strings.TrimSpace(requester.GenderInterest); interest != "" && !strings.EqualFold(interest, interestAny) {
		filter.Gender = interest
	}

	s.appCtx.Logger.Debug("Next candidates", "user", userID, "gender", filter.Gender, "limit", limit)

	users, err := s.users.FindCandidates(ctx, filter)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return users, nil
}
