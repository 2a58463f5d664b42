package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"content-backend/internal/auth"
	"content-backend/internal/cache"
	"content-backend/internal/casestudies"
	"content-backend/internal/config"
	"content-backend/internal/db"
	"content-backend/internal/posts"
	"content-backend/internal/validation"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var file string

	root := &cobra.Command{
		Use:           "seed",
		Short:         "Load posts and case studies from a YAML fixture",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), file)
		},
	}
	root.Flags().StringVarP(&file, "file", "f", "cmd/seed/fixtures.yaml", "fixture file")

	root.AddCommand(newHashPasswordCmd())
	return root
}

func newHashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print a bcrypt hash for ADMIN_PASSWORD_HASH",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password := os.Getenv("ADMIN_PASSWORD")
			if len(args) == 1 {
				password = args[0]
			}
			hash, err := auth.HashPassword(strings.TrimSpace(password))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

func runSeed(parent context.Context, file string) error {
	if parent == nil {
		parent = context.Background()
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.StoreDriver != config.StoreMongo {
		return fmt.Errorf("seed needs STORE_DRIVER=%s, got %q", config.StoreMongo, cfg.StoreDriver)
	}

	fh, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("open fixtures: %w", err)
	}
	defer fh.Close()

	fixtures, err := loadFixtures(fh)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(parent, 60*time.Second)
	defer cancel()

	client, cols, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return fmt.Errorf("mongo connect: %w", err)
	}
	defer client.Disconnect(context.Background())

	if err := db.EnsureIndexes(ctx, cols); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}

	// the API caches public lists; clear them so seeded content shows up at once
	var store cache.Cache = cache.NewNoop()
	if cfg.RedisURL != "" || cfg.RedisAddr != "" {
		var redisCache *cache.RedisCache
		if cfg.RedisURL != "" {
			redisCache, err = cache.NewRedisFromURL(cfg.RedisURL, cfg.CachePrefix)
			if err != nil {
				return fmt.Errorf("redis url: %w", err)
			}
		} else {
			redisCache = cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.CachePrefix)
		}
		defer redisCache.Close()
		if err := redisCache.Ping(ctx); err != nil {
			logger.Warn("seed: redis unreachable, cached lists expire on their own", slog.String("error", err.Error()))
		} else {
			store = redisCache
		}
	}

	val := validation.New()
	postRepo := posts.NewRepository(cols.Posts)
	casesRepo := casestudies.NewRepository(cols.CaseStudies)
	s := &seeder{
		posts:     posts.NewService(postRepo, val, store, cfg.CacheTTL(), cfg.Timezone, logger),
		postRepo:  postRepo,
		cases:     casestudies.NewService(casesRepo, val, store, cfg.CacheTTL(), cfg.Timezone, logger),
		casesRepo: casesRepo,
		log:       logger,
	}

	report, err := s.run(ctx, fixtures)
	if err != nil {
		return err
	}
	logger.Info("seed completed",
		slog.Int("posts_created", report.PostsCreated),
		slog.Int("posts_skipped", report.PostsSkipped),
		slog.Int("case_studies_created", report.CaseStudiesCreated),
		slog.Int("case_studies_skipped", report.CaseStudiesSkipped),
	)
	return nil
}
