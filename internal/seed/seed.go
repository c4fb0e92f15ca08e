// Package seed fills a database with demo accounts for local development.
package seed

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/oggyb/swipematch/internal/app"
	"github.com/oggyb/swipematch/internal/repository"
	"github.com/oggyb/swipematch/internal/service/auth"
	"github.com/oggyb/swipematch/internal/service/matching"
	"github.com/oggyb/swipematch/internal/service/messaging"
	"github.com/oggyb/swipematch/internal/service/profile"
)

// DemoPassword is the password of every seeded account.
const DemoPassword = "password"

// AdminEmail is the seeded admin account.
const AdminEmail = "admin@example.com"

// Options tunes Run.
type Options struct {
	// Users is the number of regular accounts; half male, half female.
	Users int
	// Swipes is how many swipes each user makes.
	Swipes int
	// RandSeed fixes the swipe pattern; 0 uses the clock.
	RandSeed int64
}

// Summary reports what Run created.
type Summary struct {
	Users int
	Likes int
	// Matches counts matches still standing when the run ends.
	Matches int
	// Messages counts opening messages sent; they outlive a later unmatch.
	Messages int
}

// Seeder writes demo data through the services, so matches and conversations
// come out exactly as live traffic would leave them.
type Seeder struct {
	appCtx   *app.AppContext
	auth     *auth.Service
	profiles *profile.Service
	matching *matching.Service
	messages *messaging.Service
	matches  *repository.MatchRepository
}

func New(appCtx *app.AppContext) *Seeder {
	return &Seeder{
		appCtx:   appCtx,
		auth:     auth.NewService(appCtx),
		profiles: profile.NewService(appCtx),
		matching: matching.NewService(appCtx),
		messages: messaging.NewService(appCtx),
		matches:  repository.NewMatchRepository(appCtx.DB),
	}
}

// Reset removes all rows, children first, and restarts id sequences.
func (s *Seeder) Reset(ctx context.Context) error {
	tables := []string{"messages", "conversations", "matches", "likes", "photos", "users"}
	database := s.appCtx.DB.WithContext(ctx)

	for _, t := range tables {
		if err := database.Exec("DELETE FROM " + t).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", t, err)
		}
	}

	// Reset auto-increment sequences where the dialect allows it
	for _, t := range tables {
		if t == "likes" {
			continue
		}
		switch database.Dialector.Name() {
		case "mysql":
			database.Exec("ALTER TABLE " + t + " AUTO_INCREMENT = 1")
		case "postgres":
			database.Exec("ALTER SEQUENCE " + t + "_id_seq RESTART WITH 1")
		case "sqlite":
			database.Exec("DELETE FROM sqlite_sequence WHERE name = ?", t)
		}
	}

	s.appCtx.Logger.Info("cleared existing data")
	return nil
}

// Run resets the store and creates an admin plus opts.Users accounts.
//
// Behavior:
//   - Every user gets two photos; the first is primary.
//   - Each user swipes on opts.Swipes others of the opposite gender, ~70% likes.
//   - Every third swipe is answered with a like, so matches are guaranteed.
//   - Every match gets an opening message.
func (s *Seeder) Run(ctx context.Context, opts Options) (*Summary, error) {
	if opts.Users <= 0 {
		opts.Users = 20
	}
	if opts.Swipes <= 0 {
		opts.Swipes = 12
	}
	if opts.RandSeed == 0 {
		opts.RandSeed = time.Now().UnixNano()
	}
	r := rand.New(rand.NewSource(opts.RandSeed))

	if err := s.Reset(ctx); err != nil {
		return nil, err
	}

	if _, err := s.auth.CreateUser(ctx, demoInput(0, "admin", "female", AdminEmail, auth.RoleAdmin)); err != nil {
		return nil, fmt.Errorf("failed to seed admin: %w", err)
	}

	type seeded struct {
		id     uint64
		gender string
	}
	users := make([]seeded, 0, opts.Users)
	for i := 1; i <= opts.Users; i++ {
		gender := "male"
		if i > opts.Users/2 {
			gender = "female"
		}
		u, err := s.auth.CreateUser(ctx, demoInput(i, fmt.Sprintf("User%d", i), gender, fmt.Sprintf("user%d@example.com", i), auth.RoleUser))
		if err != nil {
			return nil, fmt.Errorf("failed to seed user %d: %w", i, err)
		}
		for p := 1; p <= 2; p++ {
			if _, err := s.profiles.UploadPhoto(ctx, u.ID, fmt.Sprintf("https://picsum.photos/seed/u%dp%d/600/800", i, p)); err != nil {
				return nil, fmt.Errorf("failed to seed photo: %w", err)
			}
		}
		users = append(users, seeded{id: u.ID, gender: gender})
	}
	s.appCtx.Logger.Info("seeded users", "count", len(users))

	sum := &Summary{Users: len(users) + 1}
	counter := 0
	for _, actor := range users {
		for j := 0; j < opts.Swipes; j++ {
			target := users[r.Intn(len(users))]
			if target.id == actor.id || target.gender == actor.gender {
				continue
			}

			liked := r.Intn(100) < 70
			if counter%3 == 0 {
				liked = true
				if _, err := s.matching.RecordInterest(ctx, target.id, actor.id, true); err != nil {
					return nil, fmt.Errorf("failed to seed like: %w", err)
				}
				sum.Likes++
			}
			res, err := s.matching.RecordInterest(ctx, actor.id, target.id, liked)
			if err != nil {
				return nil, fmt.Errorf("failed to seed swipe: %w", err)
			}
			if liked {
				sum.Likes++
			}
			if res.MatchCreated {
				if _, _, err := s.messages.SendToMatch(ctx, actor.id, res.Match.ID, "Hey, we matched!"); err != nil {
					return nil, fmt.Errorf("failed to seed message: %w", err)
				}
				sum.Messages++
			}
			counter++
		}
	}

	// later passes may have undone early matches
	live, err := s.matches.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count matches: %w", err)
	}
	sum.Matches = int(live)

	s.appCtx.Logger.Info("seeding completed",
		"users", sum.Users, "likes", sum.Likes, "matches", sum.Matches, "messages", sum.Messages)
	return sum, nil
}

// RunMinimal seeds three users: 1 and 2 matched, 3 liked 1, 1 passed on 3.
func (s *Seeder) RunMinimal(ctx context.Context) (*Summary, error) {
	if err := s.Reset(ctx); err != nil {
		return nil, err
	}

	ids := make([]uint64, 0, 3)
	for i, gender := range []string{"male", "female", "female"} {
		u, err := s.auth.CreateUser(ctx, demoInput(i+1, fmt.Sprintf("User%d", i+1), gender, fmt.Sprintf("u%d@test.com", i+1), auth.RoleUser))
		if err != nil {
			return nil, err
		}
		ids = append(ids, u.ID)
	}

	swipes := []struct {
		actor, target int
		liked         bool
	}{
		{0, 1, true},
		{1, 0, true},
		{2, 0, true},
		{0, 2, false},
	}
	sum := &Summary{Users: len(ids)}
	for _, sw := range swipes {
		res, err := s.matching.RecordInterest(ctx, ids[sw.actor], ids[sw.target], sw.liked)
		if err != nil {
			return nil, err
		}
		if sw.liked {
			sum.Likes++
		}
		if res.MatchCreated {
			sum.Matches++
		}
		if res.MatchRemoved {
			sum.Matches--
		}
	}
	return sum, nil
}

// Reseed runs inside the server process in development.
func Reseed(ctx context.Context, appCtx *app.AppContext) error {
	_, err := New(appCtx).Run(ctx, Options{})
	return err
}

func demoInput(i int, first, gender, email, role string) auth.UserInput {
	interest := "female"
	if gender == "female" {
		interest = "male"
	}
	return auth.UserInput{
		FirstName:         first,
		LastName:          "Demo",
		Email:             email,
		MobileNumber:      fmt.Sprintf("0917%07d", i),
		Password:          DemoPassword,
		Birthdate:         time.Date(1990+i%10, time.Month(1+i%12), 1+i%28, 0, 0, 0, 0, time.UTC),
		Gender:            gender,
		SexualOrientation: "straight",
		GenderInterest:    interest,
		Bio:               "Seeded demo account.",
		Country:           "Philippines",
		City:              "Manila",
		Role:              role,
	}
}
