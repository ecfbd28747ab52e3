package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"user-insight/internal/analytics"
	"user-insight/internal/cache"
	"user-insight/internal/config"
	"user-insight/internal/db"
	"user-insight/internal/llm"
	"user-insight/internal/report"
	"user-insight/internal/repository"
	"user-insight/internal/service"
)

var rootCmd = &cobra.Command{
	Use:   "insight",
	Short: "Batch job that infers user attributes from behavioral signals",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one prediction cycle over the eligible worklist",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		userIDs, _ := cmd.Flags().GetInt64Slice("users")

		cfg, logger, pool, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer logger.Sync()
		defer pool.Close()

		if cmd.Flags().Changed("dry-run") {
			cfg.DryRun, _ = cmd.Flags().GetBool("dry-run")
		}

		warehouse := repository.NewPgWarehouse(pool, cfg.MinTaskCount, cfg.ActivityWindowDays, cfg.ExternalCallTimeout)
		summaries := repository.NewPgSummaryRepository(pool, cfg.ExternalCallTimeout)
		llmClient := llm.NewHTTPClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMVisionModel, cfg.ExternalCallTimeout, logger)

		var analyticsClient analytics.Client = &analytics.DisabledClient{Reason: "analytics client not configured"}
		if cfg.MixpanelToken != "" {
			analyticsClient = analytics.NewHTTPClient(cfg.MixpanelBaseURL, cfg.MixpanelToken, cfg.ExternalCallTimeout, logger)
		}

		var avatarCache service.AvatarCache
		if cfg.RedisAddr != "" {
			redisClient := redis.NewClient(&redis.Options{
				Addr:     cfg.RedisAddr,
				Password: cfg.RedisPassword,
				DB:       cfg.RedisDB,
			})
			ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
			if err := redisClient.Ping(ctxPing).Err(); err != nil {
				logger.Warn("redis ping failed", zap.Error(err))
			} else {
				avatarCache = cache.NewRedisAvatarCache(redisClient, 24*time.Hour)
			}
			cancel()
		}

		aggregator := service.NewAggregator(warehouse, summaries, analyticsClient, cfg.SummaryTopK, logger)
		predictor := service.NewPredictor(aggregator, llmClient, avatarCache, cfg.MinTaskCount, logger)
		sink := service.NewSink(warehouse, analyticsClient, cfg.ConfidenceThreshold, cfg.DryRun, logger)

		version := service.VersionAt(time.Now(), cfg.VersionPeriod)
		runner := service.NewRunner(warehouse, predictor, sink, version, cfg.Workers, logger)
		return runner.Run(ctx, userIDs)
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export persisted prediction rows for one version to CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out, _ := cmd.Flags().GetString("out")

		cfg, logger, pool, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer logger.Sync()
		defer pool.Close()

		version, _ := cmd.Flags().GetInt64("version")
		if version == 0 {
			version = service.VersionAt(time.Now(), cfg.VersionPeriod)
		}

		warehouse := repository.NewPgWarehouse(pool, cfg.MinTaskCount, cfg.ActivityWindowDays, cfg.ExternalCallTimeout)
		rows, err := warehouse.ListPredictions(ctx, version)
		if err != nil {
			return err
		}

		file, err := os.Create(out)
		if err != nil {
			return err
		}
		defer file.Close()

		if err := report.WriteCSV(file, rows); err != nil {
			return err
		}
		logger.Info("export finished",
			zap.String("out", out),
			zap.Int64("version", version),
			zap.Int("rows", len(rows)),
		)
		return nil
	},
}

func bootstrap(ctx context.Context) (*config.Config, *zap.Logger, *pgxpool.Pool, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, nil, err
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return nil, nil, nil, err
	}

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Error("db connect", zap.Error(err))
		logger.Sync()
		return nil, nil, nil, err
	}
	if err := db.Ping(ctx, pool); err != nil {
		logger.Error("db ping", zap.Error(err))
		logger.Sync()
		pool.Close()
		return nil, nil, nil, err
	}
	return cfg, logger, pool, nil
}

func init() {
	runCmd.Flags().Int64Slice("users", nil, "explicit user ids to process instead of the eligible worklist")
	runCmd.Flags().Bool("dry-run", true, "resolve predictions without writing to the warehouse or analytics")
	exportCmd.Flags().String("out", "predictions.csv", "output CSV path")
	exportCmd.Flags().Int64("version", 0, "version to export (default: current period anchor)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(exportCmd)
}
