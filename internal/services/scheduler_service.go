package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vytor/drillflash/internal/events"
	"github.com/vytor/drillflash/internal/flashcard"
	"github.com/vytor/drillflash/internal/logger"
	"github.com/vytor/drillflash/internal/models"
	"github.com/vytor/drillflash/internal/repository"
	"github.com/vytor/drillflash/internal/validator"
)

const (
	// Mastery predicate thresholds.
	MasteryStrength    = 0.9
	MasteryReviewCount = 5
	MasteryStreak      = 3

	// A review later than DelayThreshold times the expected interval loses
	// DelayPenaltyRate of its new interval per extra interval of lateness,
	// up to MaxDelayPenalty.
	DelayThreshold   = 1.5
	DelayPenaltyRate = 0.1
	MaxDelayPenalty  = 0.3
)

// SchedulerService decides when cards are reviewed next and keeps the
// active per-user configuration.
type SchedulerService interface {
	CreateCard(ctx context.Context, content models.CardContent) (models.ReviewCard, error)
	UpdateCard(ctx context.Context, card models.ReviewCard, session models.ReviewSession) models.ReviewCard
	CardsForReview(cards []models.ReviewCard) []models.ReviewCard
	CalculateNextReview(card models.ReviewCard, session models.ReviewSession) time.Time
	IsMastered(card models.ReviewCard) bool

	CalculateStats(cards []models.ReviewCard) models.ReviewStats
	AnalyzePerformance(cards []models.ReviewCard) models.PerformanceAnalysis
	LearningMetrics(cards []models.ReviewCard, sessionsPerWeek float64) models.LearningMetrics

	ActiveConfig(level int) models.SRSConfig
	UpdateConfig(ctx context.Context, userID string, override models.SRSConfigOverride) error
	UseUserConfig(ctx context.Context, userID string) error

	ReviewByID(ctx context.Context, key string, session models.ReviewSession) (*models.ReviewCard, error)
	CompleteSession(ctx context.Context, summary models.SessionSummary)
	LoadCards(ctx context.Context, key string) ([]models.ReviewCard, error)
	SaveCards(ctx context.Context, key string, cards []models.ReviewCard) error
	DeleteCards(ctx context.Context, key string) error
}

type schedulerService struct {
	strategy flashcard.Strategy
	configs  ConfigProvider
	store    repository.CardStore
	events   events.Emitter
	now      func() time.Time
	newID    func() string

	// updateMu serializes UpdateConfig calls; mu guards the snapshot.
	updateMu sync.Mutex
	mu       sync.RWMutex
	userID   string
	user     models.SRSConfigOverride
}

// SchedulerOption customizes a SchedulerService.
type SchedulerOption func(*schedulerService)

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) SchedulerOption {
	return func(s *schedulerService) {
		s.now = now
	}
}

// WithIDGenerator replaces uuid card ids.
func WithIDGenerator(fn func() string) SchedulerOption {
	return func(s *schedulerService) {
		s.newID = fn
	}
}

// NewSchedulerService creates a new SchedulerService
func NewSchedulerService(
	strategy flashcard.Strategy,
	configs ConfigProvider,
	store repository.CardStore,
	emitter events.Emitter,
	opts ...SchedulerOption,
) SchedulerService {
	s := &schedulerService{
		strategy: strategy,
		configs:  configs,
		store:    store,
		events:   emitter,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *schedulerService) ActiveConfig(level int) models.SRSConfig {
	s.mu.RLock()
	user := s.user
	s.mu.RUnlock()
	return s.configs.Compose(level, user)
}

func (s *schedulerService) CreateCard(ctx context.Context, content models.CardContent) (models.ReviewCard, error) {
	log := logger.FromContext(ctx)
	if err := validator.Struct(content); err != nil {
		log.Debug("rejected card content: %v", err)
		return models.ReviewCard{}, err
	}

	cfg := s.ActiveConfig(content.Level)
	now := s.now()
	card := models.ReviewCard{
		ID:      s.newID(),
		Content: content,
		Memory: models.MemoryState{
			Strength:   flashcard.ClampStrength(cfg.InitialMemoryStrength),
			EaseFactor: flashcard.ClampEase(cfg, cfg.InitialEaseFactor),
			Interval:   cfg.MinInterval,
			NextReview: now.Add(flashcard.Days(cfg.MinInterval)),
		},
		State:     models.CardStateNew,
		CreatedAt: now,
	}

	log.Debug("created card: id=%s, level=%d", card.ID, content.Level)
	s.events.Emit(models.EventCardCreated, map[string]any{
		"card_id": card.ID,
		"level":   content.Level,
		"pattern": content.Pattern,
	})
	return card, nil
}

func (s *schedulerService) UpdateCard(ctx context.Context, card models.ReviewCard, session models.ReviewSession) models.ReviewCard {
	updated, quality := s.review(card, session)
	logger.FromContext(ctx).Debug("reviewed card: id=%s, quality=%d, interval=%d, ease_factor=%.2f, strength=%.2f",
		updated.ID, quality, updated.Memory.Interval, updated.Memory.EaseFactor, updated.Memory.Strength)
	s.notifyReviewed(card, updated, quality)
	return updated
}

func (s *schedulerService) CalculateNextReview(card models.ReviewCard, session models.ReviewSession) time.Time {
	updated, _ := s.review(card, session)
	return updated.Memory.NextReview
}

// review is the pure part of UpdateCard. Interval and ease factor are
// computed from the pre-review values.
func (s *schedulerService) review(card models.ReviewCard, session models.ReviewSession) (models.ReviewCard, int) {
	cfg := s.ActiveConfig(card.Content.Level)
	at := session.Timestamp
	if at.IsZero() {
		at = s.now()
	}

	prev := card.Memory
	quality := s.strategy.Quality(cfg, session)

	since := prev.LastReviewed
	if since.IsZero() {
		since = card.CreatedAt
	}
	elapsed := at.Sub(since)

	interval := s.strategy.NextInterval(cfg, prev.Interval, prev.EaseFactor, quality, prev.ReviewCount)
	ease := s.strategy.UpdateEaseFactor(cfg, prev.EaseFactor, quality)
	strength := s.strategy.UpdateMemoryStrength(cfg, prev.Strength, quality, elapsed)

	if quality >= cfg.PassingGrade && !prev.LastReviewed.IsZero() {
		interval = applyDelayPenalty(interval, prev.Interval, elapsed)
	}
	interval = flashcard.ClampInterval(cfg, interval)

	perf := card.Performance.Record(session.Correct, session.ResponseTime)

	updated := card
	updated.Memory = models.MemoryState{
		Strength:     strength,
		EaseFactor:   flashcard.ClampEase(cfg, ease),
		Interval:     interval,
		ReviewCount:  prev.ReviewCount + 1,
		LastReviewed: at,
		NextReview:   at.Add(flashcard.Days(interval)),
		Difficulty:   difficulty(perf),
	}
	updated.Performance = perf
	updated.State = nextState(cfg, quality, updated)
	if updated.State == models.CardStateMastered && updated.MasteredAt.IsZero() {
		updated.MasteredAt = at
	}
	return updated, quality
}

// applyDelayPenalty shrinks interval when elapsed exceeds DelayThreshold
// times the expected interval.
func applyDelayPenalty(interval, expectedDays int, elapsed time.Duration) int {
	if expectedDays <= 0 {
		return interval
	}
	ratio := float64(elapsed) / float64(flashcard.Days(expectedDays))
	if ratio <= DelayThreshold {
		return interval
	}
	penalty := math.Min(MaxDelayPenalty, (ratio-DelayThreshold)*DelayPenaltyRate)
	return int(math.Round(float64(interval) * (1 - penalty)))
}

func difficulty(p models.Performance) float64 {
	acc, ok := p.RecentAccuracy(models.HistorySize)
	if !ok {
		return 0
	}
	return 1 - acc
}

// nextState: a grade below PassingGrade lapses to learning even when the
// answer was correct; a card leaves learning once its streak covers every
// learning step.
func nextState(cfg models.SRSConfig, quality int, card models.ReviewCard) models.CardState {
	if quality < cfg.PassingGrade {
		return models.CardStateLearning
	}
	if isMastered(card) {
		return models.CardStateMastered
	}
	if card.Performance.Streak >= max(1, len(cfg.LearningSteps)) {
		return models.CardStateReviewing
	}
	return models.CardStateLearning
}

func (s *schedulerService) notifyReviewed(before, after models.ReviewCard, quality int) {
	s.events.Emit(models.EventCardReviewed, map[string]any{
		"card_id":     after.ID,
		"quality":     quality,
		"interval":    after.Memory.Interval,
		"ease_factor": after.Memory.EaseFactor,
		"strength":    after.Memory.Strength,
		"state":       string(after.State),
	})
	if before.MasteredAt.IsZero() && !after.MasteredAt.IsZero() {
		s.events.Emit(models.EventCardMastered, map[string]any{
			"card_id":      after.ID,
			"review_count": after.Memory.ReviewCount,
		})
	}
}

func (s *schedulerService) IsMastered(card models.ReviewCard) bool {
	return isMastered(card)
}

func isMastered(card models.ReviewCard) bool {
	return card.Memory.Strength > MasteryStrength &&
		card.Memory.ReviewCount >= MasteryReviewCount &&
		card.Performance.Streak >= MasteryStreak
}

// CardsForReview returns the due cards, most overdue first. Ties go to the
// lower ease factor, then the older card, then the lower id.
func (s *schedulerService) CardsForReview(cards []models.ReviewCard) []models.ReviewCard {
	now := s.now()
	due := make([]models.ReviewCard, 0, len(cards))
	for _, c := range cards {
		if !c.Memory.NextReview.After(now) {
			due = append(due, c)
		}
	}
	sort.SliceStable(due, func(i, j int) bool {
		a, b := due[i], due[j]
		if !a.Memory.NextReview.Equal(b.Memory.NextReview) {
			return a.Memory.NextReview.Before(b.Memory.NextReview)
		}
		if a.Memory.EaseFactor != b.Memory.EaseFactor {
			return a.Memory.EaseFactor < b.Memory.EaseFactor
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return due
}

// UpdateConfig merges override onto the user's current override and
// persists the result. The active snapshot only changes when the save
// succeeds.
func (s *schedulerService) UpdateConfig(ctx context.Context, userID string, override models.SRSConfigOverride) error {
	log := logger.FromContext(ctx)
	s.updateMu.Lock()
	defer s.updateMu.Unlock()

	base, err := s.baseOverride(ctx, userID)
	if err != nil {
		s.configUpdateFailed(userID, override, err)
		return err
	}
	merged := base.Merge(override)

	if err := s.configs.SaveUserConfig(ctx, userID, merged); err != nil {
		log.Warn("config update rejected: user_id=%s: %v", userID, err)
		s.configUpdateFailed(userID, override, err)
		return err
	}

	s.mu.Lock()
	s.userID, s.user = userID, merged
	s.mu.Unlock()

	log.Info("config updated: user_id=%s", userID)
	s.events.Emit(models.EventConfigUpdated, map[string]any{
		"user_id": userID,
		"config":  merged,
	})
	return nil
}

func (s *schedulerService) baseOverride(ctx context.Context, userID string) (models.SRSConfigOverride, error) {
	s.mu.RLock()
	active, current := s.userID, s.user
	s.mu.RUnlock()
	if active == userID {
		return current, nil
	}
	return s.configs.ConfigForUser(ctx, userID)
}

func (s *schedulerService) configUpdateFailed(userID string, override models.SRSConfigOverride, err error) {
	s.events.Emit(models.EventConfigUpdateFailed, map[string]any{
		"user_id": userID,
		"config":  override,
		"error":   err.Error(),
	})
}

// UseUserConfig makes the persisted override of userID the active one.
func (s *schedulerService) UseUserConfig(ctx context.Context, userID string) error {
	s.updateMu.Lock()
	defer s.updateMu.Unlock()

	override, err := s.configs.ConfigForUser(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.configs.ValidateOverride(override); err != nil {
		logger.FromContext(ctx).Warn("stored config for user %s is invalid, keeping defaults: %v", userID, err)
		return err
	}

	s.mu.Lock()
	s.userID, s.user = userID, override
	s.mu.Unlock()

	logger.FromContext(ctx).Info("using stored config: user_id=%s, overrides_set=%t", userID, !override.IsEmpty())
	return nil
}

// ReviewByID loads the set at key, reviews the card named by the session
// and saves the set back. An unknown card id yields nil without error.
func (s *schedulerService) ReviewByID(ctx context.Context, key string, session models.ReviewSession) (*models.ReviewCard, error) {
	log := logger.FromContext(ctx)
	cards, err := s.LoadCards(ctx, key)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i := range cards {
		if cards[i].ID == session.CardID {
			idx = i
			break
		}
	}
	if idx < 0 {
		log.Debug("card not in set: key=%s, card_id=%s", key, session.CardID)
		return nil, nil
	}

	before := cards[idx]
	updated, quality := s.review(before, session)
	cards[idx] = updated
	if err := s.SaveCards(ctx, key, cards); err != nil {
		return nil, err
	}

	s.notifyReviewed(before, updated, quality)
	return &updated, nil
}

func (s *schedulerService) CompleteSession(ctx context.Context, summary models.SessionSummary) {
	logger.FromContext(ctx).Info("session completed: user_id=%s, cards=%d, accuracy=%.2f",
		summary.UserID, summary.CardsStudied, summary.Accuracy())
	s.events.Emit(models.EventSessionCompleted, map[string]any{
		"user_id":       summary.UserID,
		"cards_studied": summary.CardsStudied,
		"correct":       summary.Correct,
		"accuracy":      summary.Accuracy(),
		"duration_ms":   summary.Duration.Milliseconds(),
	})
}

func (s *schedulerService) LoadCards(ctx context.Context, key string) ([]models.ReviewCard, error) {
	cards, err := s.store.Load(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load cards %s: %w", key, err)
	}
	return cards, nil
}

func (s *schedulerService) SaveCards(ctx context.Context, key string, cards []models.ReviewCard) error {
	if err := s.store.Save(ctx, key, cards); err != nil {
		return fmt.Errorf("save cards %s: %w", key, err)
	}
	return nil
}

func (s *schedulerService) DeleteCards(ctx context.Context, key string) error {
	if err := s.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete cards %s: %w", key, err)
	}
	return nil
}
