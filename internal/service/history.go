package service

import (
	"context"
	"fmt"
	"time"

	"chickencoop_bridge/internal/metrics"
	"chickencoop_bridge/internal/models"
	"chickencoop_bridge/internal/repository"
)

type HistoryService struct {
	repos   *repository.Repository
	storage *storageMonitor
	store   string
	clock   func() time.Time
}

func NewHistoryService(repos *repository.Repository, storage *storageMonitor, store string, clock func() time.Time) *HistoryService {
	return &HistoryService{repos: repos, storage: storage, store: store, clock: clock}
}

// normalizeFilter converts bounds to UTC and rejects inverted ranges and unknown kinds.
func normalizeFilter(f models.HistoryFilter) (models.HistoryFilter, error) {
	if !f.From.IsZero() {
		f.From = f.From.UTC()
	}
	if !f.To.IsZero() {
		f.To = f.To.UTC()
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.From.After(f.To) {
		return f, fmt.Errorf("%w: from must be <= to", ErrValidation)
	}
	if f.Kind != "" && !f.Kind.Valid() {
		return f, fmt.Errorf("%w: unknown kind %q", ErrValidation, f.Kind)
	}
	return f, nil
}

// storageErr records err and wraps it as ErrStorageUnavailable.
func (s *HistoryService) storageErr(op string, err error) error {
	s.storage.fail(err, s.clock())
	metrics.ObserveStorageError(op)
	return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
}

func (s *HistoryService) ListReadings(ctx context.Context, f models.HistoryFilter) ([]models.Reading, error) {
	f, err := normalizeFilter(f)
	if err != nil {
		return nil, err
	}
	timer := metrics.QueryTimer(s.store, "list_readings")
	defer timer.ObserveDuration()

	out, err := s.repos.Readings.List(ctx, f)
	if err != nil {
		return nil, s.storageErr("list_readings", err)
	}
	return out, nil
}

func (s *HistoryService) SummarizeReadings(ctx context.Context, f models.HistoryFilter) (models.ReadingSummary, error) {
	f, err := normalizeFilter(f)
	if err != nil {
		return models.ReadingSummary{}, err
	}
	timer := metrics.QueryTimer(s.store, "summarize_readings")
	defer timer.ObserveDuration()

	sum, err := s.repos.Readings.Summary(ctx, f)
	if err != nil {
		return models.ReadingSummary{}, s.storageErr("summarize_readings", err)
	}
	return sum, nil
}

func (s *HistoryService) RecordCoopStats(ctx context.Context, in CoopStatsInput) (models.CoopStats, error) {
	if in.BirdCount < 0 || in.EggCount < 0 || in.AilingBirdCount < 0 {
		return models.CoopStats{}, fmt.Errorf("%w: counts must be non-negative", ErrValidation)
	}
	if in.AilingBirdCount > in.BirdCount {
		return models.CoopStats{}, fmt.Errorf("%w: ailing birds (%d) exceed bird count (%d)", ErrValidation, in.AilingBirdCount, in.BirdCount)
	}
	at := in.RecordedAt
	if at.IsZero() {
		at = s.clock()
	}
	rec, err := s.repos.CoopStats.Append(ctx, models.CoopStats{
		BirdCount:       in.BirdCount,
		EggCount:        in.EggCount,
		AilingBirdCount: in.AilingBirdCount,
		RecordedAt:      at.UTC(),
	})
	if err != nil {
		return models.CoopStats{}, s.storageErr("append_coop_stats", err)
	}
	s.storage.ok()
	return rec, nil
}

func (s *HistoryService) ListCoopStats(ctx context.Context, f models.HistoryFilter) ([]models.CoopStats, error) {
	f, err := normalizeFilter(f)
	if err != nil {
		return nil, err
	}
	timer := metrics.QueryTimer(s.store, "list_coop_stats")
	defer timer.ObserveDuration()

	out, err := s.repos.CoopStats.List(ctx, f)
	if err != nil {
		return nil, s.storageErr("list_coop_stats", err)
	}
	return out, nil
}

func (s *HistoryService) SummarizeCoopStats(ctx context.Context, f models.HistoryFilter) (models.CoopStatsSummary, error) {
	f, err := normalizeFilter(f)
	if err != nil {
		return models.CoopStatsSummary{}, err
	}
	timer := metrics.QueryTimer(s.store, "summarize_coop_stats")
	defer timer.ObserveDuration()

	sum, err := s.repos.CoopStats.Summary(ctx, f)
	if err != nil {
		return models.CoopStatsSummary{}, s.storageErr("summarize_coop_stats", err)
	}
	return sum, nil
}

func (s *HistoryService) RecordSales(ctx context.Context, in SalesInput) (models.SalesLog, error) {
	if in.BirdsSold < 0 || in.EggsSold < 0 {
		return models.SalesLog{}, fmt.Errorf("%w: sales must be non-negative", ErrValidation)
	}
	at := in.RecordedAt
	if at.IsZero() {
		at = s.clock()
	}
	rec, err := s.repos.Sales.Append(ctx, models.SalesLog{
		BirdsSold:  in.BirdsSold,
		EggsSold:   in.EggsSold,
		RecordedAt: at.UTC(),
	})
	if err != nil {
		return models.SalesLog{}, s.storageErr("append_sales", err)
	}
	s.storage.ok()
	return rec, nil
}

func (s *HistoryService) ListSales(ctx context.Context, f models.HistoryFilter) ([]models.SalesLog, error) {
	f, err := normalizeFilter(f)
	if err != nil {
		return nil, err
	}
	timer := metrics.QueryTimer(s.store, "list_sales")
	defer timer.ObserveDuration()

	out, err := s.repos.Sales.List(ctx, f)
	if err != nil {
		return nil, s.storageErr("list_sales", err)
	}
	return out, nil
}

func (s *HistoryService) SummarizeSales(ctx context.Context, f models.HistoryFilter) (models.SalesSummary, error) {
	f, err := normalizeFilter(f)
	if err != nil {
		return models.SalesSummary{}, err
	}
	timer := metrics.QueryTimer(s.store, "summarize_sales")
	defer timer.ObserveDuration()

	sum, err := s.repos.Sales.Summary(ctx, f)
	if err != nil {
		return models.SalesSummary{}, s.storageErr("summarize_sales", err)
	}
	return sum, nil
}
