package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/oggyb/swipematch/internal/db"
)

// Counts is one row of the admin dashboard: total, created since the start of
// today and created in the last seven days.
type Counts struct {
	Total    int64 `json:"total"`
	Today    int64 `json:"today"`
	ThisWeek int64 `json:"this_week"`
}

// DashboardCounts aggregates the reporting tables.
type DashboardCounts struct {
	Users    Counts `json:"users"`
	Matches  Counts `json:"matches"`
	Messages Counts `json:"messages"`
}

// UserStatsRow is one user with their match count, for the admin user list.
type UserStatsRow struct {
	ID         uint64
	FirstName  string
	LastName   string
	Email      string
	Gender     string
	Birthdate  time.Time
	City       string
	State      string
	Country    string
	CreatedAt  time.Time
	MatchCount int64
}

// StatsRepository runs the read-only admin aggregation queries.
type StatsRepository struct {
	db *gorm.DB
}

func NewStatsRepository(database *gorm.DB) *StatsRepository {
	return &StatsRepository{db: database}
}

// Dashboard counts users, matches and messages relative to now.
func (r *StatsRepository) Dashboard(ctx context.Context, now time.Time) (*DashboardCounts, error) {
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekAgo := now.AddDate(0, 0, -7)

	out := &DashboardCounts{}
	for _, t := range []struct {
		model any
		dst   *Counts
	}{
		{&db.User{}, &out.Users},
		{&db.Match{}, &out.Matches},
		{&db.Message{}, &out.Messages},
	} {
		c, err := r.counts(ctx, t.model, startOfDay, weekAgo)
		if err != nil {
			return nil, err
		}
		*t.dst = c
	}
	return out, nil
}

func (r *StatsRepository) counts(ctx context.Context, model any, startOfDay, weekAgo time.Time) (Counts, error) {
	var c Counts
	q := func() *gorm.DB { return r.db.WithContext(ctx).Model(model) }

	if err := q().Count(&c.Total).Error; err != nil {
		return c, fmt.Errorf("count total: %w", err)
	}
	if err := q().Where("created_at >= ?", startOfDay).Count(&c.Today).Error; err != nil {
		return c, fmt.Errorf("count today: %w", err)
	}
	if err := q().Where("created_at >= ?", weekAgo).Count(&c.ThisWeek).Error; err != nil {
		return c, fmt.Errorf("count this week: %w", err)
	}
	return c, nil
}

// UserStats lists users newest first with their current match count.
func (r *StatsRepository) UserStats(ctx context.Context, limit, offset int) ([]UserStatsRow, error) {
	matchCount := r.db.Model(&db.Match{}).
		Select("COUNT(*)").
		Where("matches.user_one_id = users.id OR matches.user_two_id = users.id")

	var rows []UserStatsRow
	err := r.db.WithContext(ctx).
		Model(&db.User{}).
		Select("users.id, users.first_name, users.last_name, users.email, users.gender, "+
			"users.birthdate, users.city, users.state, users.country, users.created_at, (?) AS match_count", matchCount).
		Order("users.created_at DESC, users.id DESC").
		Limit(limit).
		Offset(offset).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("user stats: %w", err)
	}
	return rows, nil
}
