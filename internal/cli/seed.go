package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/example/dailywhisker/internal/cache"
	"github.com/example/dailywhisker/internal/catapi"
	"github.com/example/dailywhisker/internal/config"
	"github.com/example/dailywhisker/internal/db"
)

const catAPITimeout = 15 * time.Second

var (
	seedCount      int
	seedRosterPath string
	seedYes        bool
)

// seedDeps is what a seeding run needs. cleanup releases connections.
type seedDeps struct {
	cats    db.CatRepository
	images  catapi.ImageSource
	cleanup func()
}

// openSeedDeps is swapped in tests.
var openSeedDeps = func(ctx context.Context, logger *zap.Logger) (*seedDeps, error) {
	cfg, err := config.LoadCLIConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	clients, err := db.InitFirebase(ctx, cfg.FirebaseConfig, logger)
	if err != nil {
		return nil, err
	}
	deps := &seedDeps{
		cats:    db.NewFirestoreCatRepository(clients.Firestore),
		images:  catapi.NewClient(cfg.CatAPIBaseURL, cfg.CatAPIKey, catAPITimeout),
		cleanup: func() { _ = clients.Close() },
	}

	if cfg.RedisAddress != "" {
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Address:  cfg.RedisAddress,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, logger)
		if err != nil {
			logger.Warn("Redis unavailable, cached cat ids will expire on their own", zap.Error(err))
		} else {
			deps.cats = cache.NewCatRepository(deps.cats, rc, time.Hour, logger)
			closeFirebase := deps.cleanup
			deps.cleanup = func() {
				_ = rc.Close()
				closeFirebase()
			}
		}
	}
	return deps, nil
}

var seedCatsCmd = &cobra.Command{
	Use:   "seed-cats",
	Short: "Replace the cats collection with freshly generated cats",
	Long: `seed-cats deletes every document in the cats collection and creates new cats with
names and descriptions from the roster, a random breed and a breed image from The Cat API.
Every tenth cat is marked special.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !seedYes {
			return fmt.Errorf("seed-cats deletes every cat; re-run with --yes to confirm")
		}

		roster, err := loadRoster(seedRosterPath)
		if err != nil {
			return err
		}

		logger, err := zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		defer logger.Sync()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		deps, err := openSeedDeps(ctx, logger)
		if err != nil {
			return err
		}
		defer deps.cleanup()

		result, err := catapi.NewSeeder(deps.cats, deps.images, roster, logger).Seed(ctx, seedCount)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d cats, created %d cats\n", result.Deleted, len(result.Created))
		return nil
	},
}

func loadRoster(path string) (*catapi.Roster, error) {
	if path == "" {
		return catapi.DefaultRoster()
	}
	return catapi.LoadRoster(path)
}

func init() {
	seedCatsCmd.Flags().IntVarP(&seedCount, "count", "n", 50, "number of cats to create")
	seedCatsCmd.Flags().StringVar(&seedRosterPath, "roster", "", "YAML roster file (defaults to the built-in roster)")
	seedCatsCmd.Flags().BoolVarP(&seedYes, "yes", "y", false, "confirm deletion of the existing cats")
}
