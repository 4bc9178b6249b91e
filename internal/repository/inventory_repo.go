package repository

import (
	"context"
	"database/sql"
	"fmt"

	"chickencoop_bridge/internal/models"

	"github.com/google/uuid"
)

const (
	insertCoopStatsSQL  = `INSERT INTO coop_stats (id, bird_count, egg_count, ailing_bird_count, recorded_at) VALUES (?, ?, ?, ?, ?)`
	selectCoopStatsSQL  = `SELECT seq, id, bird_count, egg_count, ailing_bird_count, recorded_at FROM coop_stats`
	summaryCoopStatsSQL = `SELECT COUNT(*), COALESCE(SUM(bird_count), 0), COALESCE(SUM(egg_count), 0), COALESCE(SUM(ailing_bird_count), 0) FROM coop_stats`

	insertSalesSQL  = `INSERT INTO sales_logs (id, birds_sold, eggs_sold, recorded_at) VALUES (?, ?, ?, ?)`
	selectSalesSQL  = `SELECT seq, id, birds_sold, eggs_sold, recorded_at FROM sales_logs`
	summarySalesSQL = `SELECT COUNT(*), COALESCE(SUM(birds_sold), 0), COALESCE(SUM(eggs_sold), 0) FROM sales_logs`
)

type CoopStatsSQLite struct {
	db *sql.DB
}

func NewCoopStatsSQLite(db *sql.DB) *CoopStatsSQLite { return &CoopStatsSQLite{db: db} }

var _ CoopStatsRepo = (*CoopStatsSQLite)(nil)

func (r *CoopStatsSQLite) Append(ctx context.Context, s models.CoopStats) (models.CoopStats, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	s.RecordedAt = stamp(s.RecordedAt)

	res, err := r.db.ExecContext(ctx, insertCoopStatsSQL, s.ID, s.BirdCount, s.EggCount, s.AilingBirdCount, s.RecordedAt.UnixNano())
	if err != nil {
		return models.CoopStats{}, fmt.Errorf("insert coop stats: %w", err)
	}
	if s.Seq, err = res.LastInsertId(); err != nil {
		return models.CoopStats{}, fmt.Errorf("get last insert id for coop stats: %w", err)
	}
	return s, nil
}

func (r *CoopStatsSQLite) List(ctx context.Context, f models.HistoryFilter) ([]models.CoopStats, error) {
	where, args := whereClause(f, "recorded_at", false)
	rows, err := r.db.QueryContext(ctx, selectCoopStatsSQL+where+fmt.Sprintf(newestFirst, "recorded_at"), args...)
	if err != nil {
		return nil, fmt.Errorf("query coop stats: %w", err)
	}
	defer rows.Close()

	out := make([]models.CoopStats, 0, 32)
	for rows.Next() {
		var (
			s        models.CoopStats
			recorded int64
		)
		if err := rows.Scan(&s.Seq, &s.ID, &s.BirdCount, &s.EggCount, &s.AilingBirdCount, &recorded); err != nil {
			return nil, fmt.Errorf("scan coop stats: %w", err)
		}
		s.RecordedAt = fromNanos(recorded)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate coop stats: %w", err)
	}
	return out, nil
}

func (r *CoopStatsSQLite) Summary(ctx context.Context, f models.HistoryFilter) (models.CoopStatsSummary, error) {
	where, args := whereClause(f, "recorded_at", false)
	var s models.CoopStatsSummary
	if err := r.db.QueryRowContext(ctx, summaryCoopStatsSQL+where, args...).
		Scan(&s.Records, &s.BirdCount, &s.EggCount, &s.AilingBirdCount); err != nil {
		return models.CoopStatsSummary{}, fmt.Errorf("summarize coop stats: %w", err)
	}
	return s, nil
}

type SalesSQLite struct {
	db *sql.DB
}

func NewSalesSQLite(db *sql.DB) *SalesSQLite { return &SalesSQLite{db: db} }

var _ SalesRepo = (*SalesSQLite)(nil)

func (r *SalesSQLite) Append(ctx context.Context, s models.SalesLog) (models.SalesLog, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	s.RecordedAt = stamp(s.RecordedAt)

	res, err := r.db.ExecContext(ctx, insertSalesSQL, s.ID, s.BirdsSold, s.EggsSold, s.RecordedAt.UnixNano())
	if err != nil {
		return models.SalesLog{}, fmt.Errorf("insert sales log: %w", err)
	}
	if s.Seq, err = res.LastInsertId(); err != nil {
		return models.SalesLog{}, fmt.Errorf("get last insert id for sales log: %w", err)
	}
	return s, nil
}

func (r *SalesSQLite) List(ctx context.Context, f models.HistoryFilter) ([]models.SalesLog, error) {
	where, args := whereClause(f, "recorded_at", false)
	rows, err := r.db.QueryContext(ctx, selectSalesSQL+where+fmt.Sprintf(newestFirst, "recorded_at"), args...)
	if err != nil {
		return nil, fmt.Errorf("query sales logs: %w", err)
	}
	defer rows.Close()

	out := make([]models.SalesLog, 0, 32)
	for rows.Next() {
		var (
			s        models.SalesLog
			recorded int64
		)
		if err := rows.Scan(&s.Seq, &s.ID, &s.BirdsSold, &s.EggsSold, &recorded); err != nil {
			return nil, fmt.Errorf("scan sales log: %w", err)
		}
		s.RecordedAt = fromNanos(recorded)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sales logs: %w", err)
	}
	return out, nil
}

func (r *SalesSQLite) Summary(ctx context.Context, f models.HistoryFilter) (models.SalesSummary, error) {
	where, args := whereClause(f, "recorded_at", false)
	var s models.SalesSummary
	if err := r.db.QueryRowContext(ctx, summarySalesSQL+where, args...).
		Scan(&s.Records, &s.BirdsSold, &s.EggsSold); err != nil {
		return models.SalesSummary{}, fmt.Errorf("summarize sales logs: %w", err)
	}
	return s, nil
}
