package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"github.com/vytor/drillflash/internal/config"
	"github.com/vytor/drillflash/internal/db"
	"github.com/vytor/drillflash/internal/events"
	"github.com/vytor/drillflash/internal/flashcard"
	"github.com/vytor/drillflash/internal/jobs"
	"github.com/vytor/drillflash/internal/logger"
	"github.com/vytor/drillflash/internal/models"
	"github.com/vytor/drillflash/internal/repository"
	"github.com/vytor/drillflash/internal/repository/memory"
	"github.com/vytor/drillflash/internal/repository/sqlite"
	"github.com/vytor/drillflash/internal/repository/synced"
	"github.com/vytor/drillflash/internal/services"
	"github.com/vytor/drillflash/internal/worker"
)

// Assumed study cadence for the config suggestions in the report.
const defaultSessionsPerWeek = 4

func main() {
	cfg := config.Load()

	flags := pflag.NewFlagSet("scheduler", pflag.ExitOnError)
	flags.StringVarP(&cfg.UserID, "user", "u", cfg.UserID, "user whose card set is reported")
	flags.StringVar(&cfg.StoreBackend, "backend", cfg.StoreBackend, "store backend: memory, sqlite or synced")
	flags.StringVar(&cfg.LevelBandsFile, "level-bands", cfg.LevelBandsFile, "YAML file with per-level overrides")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "DEBUG, INFO, WARN or ERROR")
	_ = flags.Parse(os.Args[1:])

	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithJSON(cfg.LogFormat == "json"),
		logger.WithColors(true),
	)
	logger.SetDefault(log)
	defer func() { _ = log.Sync() }()

	if err := cfg.Validate(); err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}

	log.Info("starting drillflash scheduler")
	log.Debug("store_backend=%s", cfg.StoreBackend)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("remote_db_path=%s", cfg.RemoteDBPath)
	log.Debug("sync_worker_count=%d", cfg.SyncWorkerCount)
	log.Debug("sync_queue_size=%d", cfg.SyncQueueSize)
	log.Debug("user_id=%s", cfg.UserID)
	log.Debug("level_bands_file=%s", cfg.LevelBandsFile)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logger.NewContext(ctx, log)

	if err := run(ctx, cfg, log); err != nil {
		log.Error("scheduler report failed: %v", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}

// backend bundles the stores picked by STORE_BACKEND with whatever has to
// be released on exit.
type backend struct {
	cards   repository.CardStore
	users   repository.UserConfigRepository
	closers []func()
}

// Close releases resources in reverse order of acquisition.
func (b *backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

func openBackend(ctx context.Context, cfg config.Config, log *logger.Logger) (*backend, error) {
	if cfg.StoreBackend == config.StoreMemory {
		return &backend{cards: memory.NewCardStore(), users: memory.NewUserConfigRepository()}, nil
	}

	local, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	b := &backend{
		cards: sqlite.NewCardStore(local.DB),
		users: sqlite.NewUserConfigRepository(local.DB),
	}
	b.closers = append(b.closers, func() {
		log.Debug("closing database connection")
		_ = local.Close()
	})
	if cfg.StoreBackend != config.StoreSynced {
		return b, nil
	}

	remoteDB, err := db.Open(cfg.RemoteDBPath)
	if err != nil {
		b.Close()
		return nil, err
	}
	b.closers = append(b.closers, func() {
		log.Debug("closing remote database connection")
		_ = remoteDB.Close()
	})

	remote := sqlite.NewCardStore(remoteDB.DB)
	pool := worker.NewPool(cfg.SyncWorkerCount, cfg.SyncQueueSize)
	pool.Start(ctx)
	b.closers = append(b.closers, func() {
		log.Info("stopping sync pool")
		pool.Stop()
		completed, failed, dropped := pool.Stats()
		log.Info("sync pool stopped: completed=%d, failed=%d, dropped=%d", completed, failed, dropped)
	})
	b.cards = synced.NewCardStore(b.cards, remote, jobs.NewWorkerQueue(pool, b.cards, remote))
	return b, nil
}

func run(ctx context.Context, cfg config.Config, log *logger.Logger) error {
	srsDefaults, err := cfg.SRSDefaults()
	if err != nil {
		return err
	}

	bands := services.DefaultLevelBands()
	if cfg.LevelBandsFile != "" {
		if bands, err = config.LoadLevelBands(cfg.LevelBandsFile); err != nil {
			return err
		}
		log.Info("loaded %d level bands from %s", len(bands), cfg.LevelBandsFile)
	}

	store, err := openBackend(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()

	bus := events.NewBus(log)
	events.Subscribe(bus, events.LogHandler(log))

	provider := services.NewConfigProvider(srsDefaults, bands, store.users)
	scheduler := services.NewSchedulerService(flashcard.NewSuperMemo(), provider, store.cards, bus)

	if err := scheduler.UseUserConfig(ctx, cfg.UserID); err != nil {
		log.Warn("falling back to default config: %v", err)
	}

	cards, err := scheduler.LoadCards(ctx, cfg.UserID)
	if err != nil {
		return err
	}
	if len(cards) == 0 {
		log.Info("no cards stored for user %s", cfg.UserID)
		return nil
	}

	report(ctx, log, scheduler, provider, store.cards, cfg.UserID, cards)
	return nil
}

func report(
	ctx context.Context,
	log *logger.Logger,
	scheduler services.SchedulerService,
	provider services.ConfigProvider,
	store repository.CardStore,
	key string,
	cards []models.ReviewCard,
) {
	stats := scheduler.CalculateStats(cards)
	log.Info("cards: total=%d, due=%d, learning=%d, mastered=%d",
		stats.TotalCards, stats.DueCards, stats.LearningCards, stats.MasteredCards)
	log.Info("averages: strength=%.2f, accuracy=%.2f, response_time=%.0fms",
		stats.AverageStrength, stats.AverageAccuracy, stats.AverageResponseTime)

	if counter, ok := store.(repository.DueCounter); ok {
		due, err := counter.DueCount(ctx, key, time.Now())
		if err != nil {
			log.Warn("due count unavailable: %v", err)
		} else if due != stats.DueCards {
			log.Warn("due index out of date: indexed=%d, computed=%d", due, stats.DueCards)
		}
	}

	for i, c := range scheduler.CardsForReview(cards) {
		log.Info("due #%d: %s -> %s (overdue %s, ease %.2f)",
			i+1, c.Content.SourceText, c.Content.TargetText,
			time.Since(c.Memory.NextReview).Round(time.Minute), c.Memory.EaseFactor)
	}

	analysis := scheduler.AnalyzePerformance(cards)
	log.Info("focus=%s, weak=%v, strong=%v, estimated_mastery_days=%d",
		analysis.RecommendedFocus, analysis.WeakPatterns, analysis.StrongPatterns, analysis.EstimatedMasteryDays)

	suggestion := provider.SuggestAdjustments(scheduler.LearningMetrics(cards, defaultSessionsPerWeek))
	if !suggestion.IsEmpty() {
		log.Info("suggested config adjustments: %s", describeOverride(suggestion))
	}
}

func describeOverride(o models.SRSConfigOverride) string {
	b, err := repository.EncodeOverride(o)
	if err != nil {
		return err.Error()
	}
	return string(b)
}
