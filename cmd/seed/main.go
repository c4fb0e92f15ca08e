package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/oggyb/swipematch/internal/app"
	"github.com/oggyb/swipematch/internal/cache"
	"github.com/oggyb/swipematch/internal/config"
	"github.com/oggyb/swipematch/internal/db"
	"github.com/oggyb/swipematch/internal/logger"
	"github.com/oggyb/swipematch/internal/seed"
)

var (
	minimal  bool
	users    int
	swipes   int
	randSeed int64
	noCache  bool
)

var rootCmd = &cobra.Command{
	Use:   "seed",
	Short: "Reset the database and fill it with demo accounts",
	Long: `Wipes every table and creates demo users, photos, likes, matches and
opening messages. All accounts use the password "` + seed.DemoPassword + `".`,
	RunE: run,
}

func init() {
	rootCmd.Flags().BoolVar(&minimal, "minimal", false, "seed three users with one match")
	rootCmd.Flags().IntVar(&users, "users", 20, "number of regular users")
	rootCmd.Flags().IntVar(&swipes, "swipes", 12, "swipes per user")
	rootCmd.Flags().Int64Var(&randSeed, "rand-seed", 0, "fixed random seed (0 uses the clock)")
	rootCmd.Flags().BoolVar(&noCache, "no-cache", false, "skip Redis; cached counters are not invalidated")
}

func run(cmd *cobra.Command, _ []string) error {
	cfg := config.New()
	logger.InitFromConfig(cfg)
	log := logger.L()

	database, err := db.NewDB(cfg)
	if err != nil {
		return fmt.Errorf("failed to init db: %w", err)
	}

	var redisCache *cache.RedisCache
	if !noCache {
		redisCache = cache.NewRedisCache(cfg)
		if err := redisCache.Ping(cmd.Context()); err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
	}

	s := seed.New(app.New(cfg, database, redisCache, log))
	if minimal {
		_, err = s.RunMinimal(cmd.Context())
	} else {
		_, err = s.Run(cmd.Context(), seed.Options{Users: users, Swipes: swipes, RandSeed: randSeed})
	}
	return err
}

func main() {
	_ = godotenv.Load()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
