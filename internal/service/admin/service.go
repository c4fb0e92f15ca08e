package admin

import (
	"context"
	"errors"
	"math"
	"net/mail"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/oggyb/swipematch/internal/app"
	"github.com/oggyb/swipematch/internal/cache"
	"github.com/oggyb/swipematch/internal/db"
	svcErr "github.com/oggyb/swipematch/internal/errors"
	"github.com/oggyb/swipematch/internal/repository"
	"github.com/oggyb/swipematch/internal/service/auth"
	"github.com/oggyb/swipematch/internal/service/matching"
	"github.com/oggyb/swipematch/internal/service/messaging"
	"github.com/oggyb/swipematch/internal/service/profile"
)

// Service is the administrative surface. Every method takes the acting user
// and refuses anyone who is not an admin.
type Service struct {
	appCtx    *app.AppContext
	users     *repository.UserRepository
	photos    *repository.PhotoRepository
	stats     *repository.StatsRepository
	auth      *auth.Service
	profile   *profile.Service
	matching  *matching.Service
	messaging *messaging.Service
}

func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:    appCtx,
		users:     repository.NewUserRepository(appCtx.DB),
		photos:    repository.NewPhotoRepository(appCtx.DB),
		stats:     repository.NewStatsRepository(appCtx.DB),
		auth:      auth.NewService(appCtx),
		profile:   profile.NewService(appCtx),
		matching:  matching.NewService(appCtx),
		messaging: messaging.NewService(appCtx),
	}
}

// RequireAdmin fails with Unauthorized unless actor is an admin.
func RequireAdmin(actor *db.User) error {
	if actor == nil {
		return svcErr.Unauthorized("authentication required")
	}
	if !actor.IsAdmin() {
		return svcErr.Unauthorized("admin access required")
	}
	return nil
}

// DashboardStats is the admin overview. Averages are rounded to 2 decimals.
type DashboardStats struct {
	TotalUsers              int64     `json:"total_users"`
	TotalMatches            int64     `json:"total_matches"`
	TotalMessages           int64     `json:"total_messages"`
	UsersToday              int64     `json:"users_today"`
	MatchesToday            int64     `json:"matches_today"`
	MessagesToday           int64     `json:"messages_today"`
	UsersThisWeek           int64     `json:"users_this_week"`
	MatchesThisWeek         int64     `json:"matches_this_week"`
	MessagesThisWeek        int64     `json:"messages_this_week"`
	AverageMatchesPerUser   float64   `json:"average_matches_per_user"`
	AverageMessagesPerMatch float64   `json:"average_messages_per_match"`
	GeneratedAt             time.Time `json:"generated_at"`
}

// Dashboard returns the overview, served from Redis while it is fresh.
//
// Behavior:
//   - "today" starts at midnight, "this week" is the last 7 days.
//   - The snapshot is cached for STATS_CACHE_TTL; deletes drop it.
func (s *Service) Dashboard(ctx context.Context, actor *db.User) (*DashboardStats, error) {
	if err := RequireAdmin(actor); err != nil {
		return nil, err
	}

	redisCache := s.appCtx.RedisCache
	if redisCache != nil {
		var cached DashboardStats
		err := redisCache.GetJSON(ctx, redisCache.KeyForDashboard(), &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			s.appCtx.Logger.Warn("dashboard cache read failed", "err", err)
		}
	}

	now := time.Now()
	counts, err := s.stats.Dashboard(ctx, now)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	stats := &DashboardStats{
		TotalUsers:              counts.Users.Total,
		TotalMatches:            counts.Matches.Total,
		TotalMessages:           counts.Messages.Total,
		UsersToday:              counts.Users.Today,
		MatchesToday:            counts.Matches.Today,
		MessagesToday:           counts.Messages.Today,
		UsersThisWeek:           counts.Users.ThisWeek,
		MatchesThisWeek:         counts.Matches.ThisWeek,
		MessagesThisWeek:        counts.Messages.ThisWeek,
		AverageMatchesPerUser:   average(counts.Matches.Total, counts.Users.Total),
		AverageMessagesPerMatch: average(counts.Messages.Total, counts.Matches.Total),
		GeneratedAt:             now.UTC(),
	}

	if redisCache != nil {
		if err := redisCache.SetJSON(ctx, redisCache.KeyForDashboard(), stats, s.appCtx.Config.Limits.StatsCacheTTL); err != nil {
			s.appCtx.Logger.Warn("dashboard cache write failed", "err", err)
		}
	}
	return stats, nil
}

func average(part, whole int64) float64 {
	if whole == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(whole)*100) / 100
}

// UserStats is one line of the admin user list.
type UserStats struct {
	ID              uint64
	FirstName       string
	LastName        string
	Email           string
	PrimaryPhotoURL string
	MatchCount      int64
	CreatedAt       time.Time
	Gender          string
	Age             *int
	City            string
	State           string
	Country         string
}

// UserStats lists users newest first with their match count, age and
// primary photo.
func (s *Service) UserStats(ctx context.Context, actor *db.User, limit, offset int) ([]UserStats, error) {
	if err := RequireAdmin(actor); err != nil {
		return nil, err
	}
	limit = s.appCtx.Config.PageSize(limit, s.appCtx.Config.Limits.Matches)
	if offset < 0 {
		offset = 0
	}

	rows, err := s.stats.UserStats(ctx, limit, offset)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	ids := make([]uint64, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	photos, err := s.photos.ListByUsers(ctx, ids)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	byUser := make(map[uint64][]db.Photo, len(rows))
	for _, p := range photos {
		byUser[p.UserID] = append(byUser[p.UserID], p)
	}

	now := time.Now()
	out := make([]UserStats, 0, len(rows))
	for _, r := range rows {
		line := UserStats{
			ID:         r.ID,
			FirstName:  r.FirstName,
			LastName:   r.LastName,
			Email:      r.Email,
			MatchCount: r.MatchCount,
			CreatedAt:  r.CreatedAt,
			Gender:     r.Gender,
			Age:        profile.Age(r.Birthdate, now),
			City:       r.City,
			State:      r.State,
			Country:    r.Country,
		}
		if p := profile.PrimaryPhoto(byUser[r.ID]); p != nil {
			line.PrimaryPhotoURL = p.URL
		}
		out = append(out, line)
	}
	return out, nil
}

// CreateUser adds an account with any role. Role defaults to "user".
func (s *Service) CreateUser(ctx context.Context, actor *db.User, in auth.UserInput) (*db.User, error) {
	if err := RequireAdmin(actor); err != nil {
		return nil, err
	}
	u, err := s.auth.CreateUser(ctx, in)
	if err != nil {
		return nil, err
	}
	s.dropDashboard(ctx)
	return u, nil
}

// UserUpdate lists the fields an admin may change. Nil fields are kept.
type UserUpdate struct {
	FirstName         *string
	LastName          *string
	Email             *string
	MobileNumber      *string
	Birthdate         *time.Time
	Gender            *string
	SexualOrientation *string
	GenderInterest    *string
	Bio               *string
	Country           *string
	State             *string
	City              *string
	School            *string
	Role              *string
}

func (u UserUpdate) columns() (map[string]any, error) {
	cols := map[string]any{}
	required := map[string]bool{
		"first_name": true, "last_name": true, "email": true, "mobile_number": true,
		"gender": true, "sexual_orientation": true, "gender_interest": true, "role": true,
	}
	for col, v := range map[string]*string{
		"first_name":         u.FirstName,
		"last_name":          u.LastName,
		"email":              u.Email,
		"mobile_number":      u.MobileNumber,
		"gender":             u.Gender,
		"sexual_orientation": u.SexualOrientation,
		"gender_interest":    u.GenderInterest,
		"bio":                u.Bio,
		"country":            u.Country,
		"state":              u.State,
		"city":               u.City,
		"school":             u.School,
		"role":               u.Role,
	} {
		if v == nil {
			continue
		}
		val := strings.TrimSpace(*v)
		if val == "" && required[col] {
			return nil, svcErr.InvalidOperation(col + " cannot be blank")
		}
		cols[col] = val
	}
	if email, ok := cols["email"].(string); ok {
		email = strings.ToLower(email)
		if _, err := mail.ParseAddress(email); err != nil {
			return nil, svcErr.InvalidOperation("email is invalid")
		}
		cols["email"] = email
	}
	if u.Birthdate != nil {
		if u.Birthdate.IsZero() {
			return nil, svcErr.InvalidOperation("birthdate cannot be blank")
		}
		cols["birthdate"] = *u.Birthdate
	}
	return cols, nil
}

// UpdateUser changes any profile field of userID, role included.
func (s *Service) UpdateUser(ctx context.Context, actor *db.User, userID uint64, upd UserUpdate) (*db.User, error) {
	if err := RequireAdmin(actor); err != nil {
		return nil, err
	}
	cols, err := upd.columns()
	if err != nil {
		return nil, err
	}

	if email, ok := cols["email"].(string); ok {
		other, err := s.users.GetByEmail(ctx, email)
		if err != nil {
			return nil, svcErr.Map(err)
		}
		if other != nil && other.ID != userID {
			return nil, svcErr.InvalidOperation("email has already been taken")
		}
	}

	if err := s.users.Update(ctx, userID, cols); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, svcErr.NotFound("user not found")
		case svcErr.IsDuplicate(err):
			return nil, svcErr.InvalidOperation("email has already been taken")
		}
		return nil, svcErr.Map(err)
	}

	s.appCtx.Logger.Info("user updated by admin", "admin", actor.ID, "user_id", userID, "fields", len(cols))
	return s.profile.Get(ctx, userID)
}

// DeleteUser removes a user and everything hanging off them in one
// transaction: photos, likes (each affected pair is reconciled), matches,
// conversations and their messages.
func (s *Service) DeleteUser(ctx context.Context, actor *db.User, userID uint64) error {
	if err := RequireAdmin(actor); err != nil {
		return err
	}

	var stale []uint64
	err := s.appCtx.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := s.users.WithTx(tx)
		ok, err := users.Exists(ctx, userID)
		if err != nil {
			return err
		}
		if !ok {
			return svcErr.NotFound("user not found")
		}
		if err := s.profile.PurgeUser(ctx, tx, userID); err != nil {
			return err
		}
		ids, err := s.matching.PurgeUser(ctx, tx, userID)
		if err != nil {
			return err
		}
		stale = ids
		if err := s.messaging.PurgeUser(ctx, tx, userID); err != nil {
			return err
		}
		return users.Delete(ctx, userID)
	})
	if err != nil {
		return svcErr.Map(err)
	}

	// counters are dropped only after commit, so no reader can re-cache
	// a pre-delete count
	s.matching.InvalidateLikeCounts(ctx, stale...)
	s.appCtx.Logger.Info("user deleted by admin", "admin", actor.ID, "user_id", userID)
	s.dropDashboard(ctx)
	return nil
}

// DeleteMatch removes a match row. Likes stay, as with Unmatch.
func (s *Service) DeleteMatch(ctx context.Context, actor *db.User, matchID uint64) error {
	if err := RequireAdmin(actor); err != nil {
		return err
	}
	if err := s.matching.DeleteMatch(ctx, matchID); err != nil {
		return err
	}
	s.appCtx.Logger.Info("match deleted by admin", "admin", actor.ID, "match_id", matchID)
	s.dropDashboard(ctx)
	return nil
}

func (s *Service) dropDashboard(ctx context.Context) {
	if s.appCtx.RedisCache == nil {
		return
	}
	if err := s.appCtx.RedisCache.Del(ctx, s.appCtx.RedisCache.KeyForDashboard()); err != nil {
		s.appCtx.Logger.Warn("failed to drop dashboard cache", "err", err)
	}
}
