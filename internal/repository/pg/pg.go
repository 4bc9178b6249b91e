// Package pg stores history in PostgreSQL. It mirrors the SQLite stores in
// internal/repository and is selected with history.driver=postgres.
package pg

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"chickencoop_bridge/internal/models"
	"chickencoop_bridge/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the subset of *pgxpool.Pool the stores use.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var (
	_ DB                       = (*pgxpool.Pool)(nil)
	_ repository.ReadingRepo   = (*ReadingStore)(nil)
	_ repository.CoopStatsRepo = (*CoopStatsStore)(nil)
	_ repository.SalesRepo     = (*SalesStore)(nil)
)

// NewRepository returns the history stores backed by db. Auth stays on SQLite.
func NewRepository(db DB, auth repository.Authorization) *repository.Repository {
	return &repository.Repository{
		Readings:  NewReadingStore(db),
		CoopStats: NewCoopStatsStore(db),
		Sales:     NewSalesStore(db),
		Auth:      auth,
	}
}

// Connect opens a pool, checks it and applies the schema.
func Connect(ctx context.Context, url string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("configure postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS readings (
		seq BIGSERIAL PRIMARY KEY,
		id TEXT UNIQUE NOT NULL,
		kind TEXT NOT NULL,
		topic TEXT NOT NULL,
		num_milli BIGINT,
		txt TEXT,
		field_length BIGINT,
		field_width BIGINT,
		motor_speed BIGINT,
		observed_at BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_readings_kind_observed ON readings (kind, observed_at)`,
	`CREATE TABLE IF NOT EXISTS coop_stats (
		seq BIGSERIAL PRIMARY KEY,
		id TEXT UNIQUE NOT NULL,
		bird_count BIGINT NOT NULL CHECK (bird_count >= 0),
		egg_count BIGINT NOT NULL CHECK (egg_count >= 0),
		ailing_bird_count BIGINT NOT NULL CHECK (ailing_bird_count >= 0),
		recorded_at BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sales_logs (
		seq BIGSERIAL PRIMARY KEY,
		id TEXT UNIQUE NOT NULL,
		birds_sold BIGINT NOT NULL CHECK (birds_sold >= 0),
		eggs_sold BIGINT NOT NULL CHECK (eggs_sold >= 0),
		recorded_at BIGINT NOT NULL
	)`,
}

// EnsureSchema creates the history tables if they are missing.
func EnsureSchema(ctx context.Context, db DB) error {
	for i, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply postgres schema statement %d: %w", i+1, err)
		}
	}
	return nil
}

// where renders f with numbered placeholders. Timestamps are unix nanoseconds.
func where(f models.HistoryFilter, tsColumn string, withKind bool) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, cond+" $"+strconv.Itoa(len(args)))
	}
	if withKind && f.Kind != "" {
		add("kind =", string(f.Kind))
	}
	if !f.From.IsZero() {
		add(tsColumn+" >=", f.From.UnixNano())
	}
	if !f.To.IsZero() {
		add(tsColumn+" <=", f.To.UnixNano())
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func orderNewest(tsColumn string) string {
	return " ORDER BY " + tsColumn + " DESC, seq DESC"
}

func stamp(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t.UTC()
}

// ReadingStore implements repository.ReadingRepo.
type ReadingStore struct{ db DB }

func NewReadingStore(db DB) *ReadingStore { return &ReadingStore{db: db} }

func (s *ReadingStore) Append(ctx context.Context, r models.Reading) (models.Reading, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	r.ObservedAt = stamp(r.ObservedAt)

	var (
		num                  *int64
		txt                  *string
		length, width, speed *int64
	)
	switch r.Kind {
	case models.KindTemperature:
		m, ok := models.ToMilli(r.Value.Number)
		if !ok {
			return models.Reading{}, fmt.Errorf("reading %s: %w: %v", r.Kind, repository.ErrNumberOutOfRange, r.Value.Number)
		}
		num = &m
	case models.KindField:
		l, w, sp := int64(r.Value.Field.Length), int64(r.Value.Field.Width), int64(r.Value.Field.Speed)
		length, width, speed = &l, &w, &sp
	default:
		t := r.Value.Text
		txt = &t
	}

	err := s.db.QueryRow(ctx,
		`INSERT INTO readings (id, kind, topic, num_milli, txt, field_length, field_width, motor_speed, observed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING seq`,
		r.ID, string(r.Kind), r.Topic, num, txt, length, width, speed, r.ObservedAt.UnixNano(),
	).Scan(&r.Seq)
	if err != nil {
		return models.Reading{}, fmt.Errorf("insert reading %s: %w", r.Kind, err)
	}
	return r, nil
}

func (s *ReadingStore) List(ctx context.Context, f models.HistoryFilter) ([]models.Reading, error) {
	w, args := where(f, "observed_at", true)
	rows, err := s.db.Query(ctx,
		`SELECT seq, id, kind, topic, num_milli, txt, field_length, field_width, motor_speed, observed_at FROM readings`+w+orderNewest("observed_at"),
		args...)
	if err != nil {
		return nil, fmt.Errorf("query readings: %w", err)
	}
	defer rows.Close()

	out := make([]models.Reading, 0, 64)
	for rows.Next() {
		var (
			r                    models.Reading
			kind                 string
			num                  *int64
			txt                  *string
			length, width, speed *int64
			observed             int64
		)
		if err := rows.Scan(&r.Seq, &r.ID, &kind, &r.Topic, &num, &txt, &length, &width, &speed, &observed); err != nil {
			return nil, fmt.Errorf("scan reading: %w", err)
		}
		r.Kind = models.Kind(kind)
		r.ObservedAt = time.Unix(0, observed).UTC()
		switch {
		case r.Kind == models.KindTemperature && num != nil:
			r.Value = models.NumberValue(r.Kind, models.FromMilli(*num))
		case r.Kind == models.KindField && length != nil && width != nil && speed != nil:
			r.Value = models.FieldValue(models.FieldSetting{Length: int(*length), Width: int(*width), Speed: int(*speed)})
		case txt != nil:
			r.Value = models.TextValue(r.Kind, *txt)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate readings: %w", err)
	}
	return out, nil
}

func (s *ReadingStore) Summary(ctx context.Context, f models.HistoryFilter) (models.ReadingSummary, error) {
	w, args := where(f, "observed_at", true)
	var (
		sum   models.ReadingSummary
		milli int64
	)
	err := s.db.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(SUM(num_milli), 0)::BIGINT, COALESCE(SUM(field_length), 0)::BIGINT, COALESCE(SUM(field_width), 0)::BIGINT, COALESCE(SUM(motor_speed), 0)::BIGINT FROM readings`+w,
		args...).Scan(&sum.Records, &milli, &sum.LengthSum, &sum.WidthSum, &sum.SpeedSum)
	if err != nil {
		return models.ReadingSummary{}, fmt.Errorf("summarize readings: %w", err)
	}
	sum.SetNumberMilli(milli)
	return sum, nil
}

// CoopStatsStore implements repository.CoopStatsRepo.
type CoopStatsStore struct{ db DB }

func NewCoopStatsStore(db DB) *CoopStatsStore { return &CoopStatsStore{db: db} }

func (s *CoopStatsStore) Append(ctx context.Context, c models.CoopStats) (models.CoopStats, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.RecordedAt = stamp(c.RecordedAt)
	err := s.db.QueryRow(ctx,
		`INSERT INTO coop_stats (id, bird_count, egg_count, ailing_bird_count, recorded_at) VALUES ($1, $2, $3, $4, $5) RETURNING seq`,
		c.ID, c.BirdCount, c.EggCount, c.AilingBirdCount, c.RecordedAt.UnixNano(),
	).Scan(&c.Seq)
	if err != nil {
		return models.CoopStats{}, fmt.Errorf("insert coop stats: %w", err)
	}
	return c, nil
}

func (s *CoopStatsStore) List(ctx context.Context, f models.HistoryFilter) ([]models.CoopStats, error) {
	w, args := where(f, "recorded_at", false)
	rows, err := s.db.Query(ctx,
		`SELECT seq, id, bird_count, egg_count, ailing_bird_count, recorded_at FROM coop_stats`+w+orderNewest("recorded_at"),
		args...)
	if err != nil {
		return nil, fmt.Errorf("query coop stats: %w", err)
	}
	defer rows.Close()

	out := make([]models.CoopStats, 0, 32)
	for rows.Next() {
		var (
			c        models.CoopStats
			recorded int64
		)
		if err := rows.Scan(&c.Seq, &c.ID, &c.BirdCount, &c.EggCount, &c.AilingBirdCount, &recorded); err != nil {
			return nil, fmt.Errorf("scan coop stats: %w", err)
		}
		c.RecordedAt = time.Unix(0, recorded).UTC()
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate coop stats: %w", err)
	}
	return out, nil
}

func (s *CoopStatsStore) Summary(ctx context.Context, f models.HistoryFilter) (models.CoopStatsSummary, error) {
	w, args := where(f, "recorded_at", false)
	var sum models.CoopStatsSummary
	err := s.db.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(SUM(bird_count), 0)::BIGINT, COALESCE(SUM(egg_count), 0)::BIGINT, COALESCE(SUM(ailing_bird_count), 0)::BIGINT FROM coop_stats`+w,
		args...).Scan(&sum.Records, &sum.BirdCount, &sum.EggCount, &sum.AilingBirdCount)
	if err != nil {
		return models.CoopStatsSummary{}, fmt.Errorf("summarize coop stats: %w", err)
	}
	return sum, nil
}

// SalesStore implements repository.SalesRepo.
type SalesStore struct{ db DB }

func NewSalesStore(db DB) *SalesStore { return &SalesStore{db: db} }

func (s *SalesStore) Append(ctx context.Context, l models.SalesLog) (models.SalesLog, error) {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	l.RecordedAt = stamp(l.RecordedAt)
	err := s.db.QueryRow(ctx,
		`INSERT INTO sales_logs (id, birds_sold, eggs_sold, recorded_at) VALUES ($1, $2, $3, $4) RETURNING seq`,
		l.ID, l.BirdsSold, l.EggsSold, l.RecordedAt.UnixNano(),
	).Scan(&l.Seq)
	if err != nil {
		return models.SalesLog{}, fmt.Errorf("insert sales log: %w", err)
	}
	return l, nil
}

func (s *SalesStore) List(ctx context.Context, f models.HistoryFilter) ([]models.SalesLog, error) {
	w, args := where(f, "recorded_at", false)
	rows, err := s.db.Query(ctx,
		`SELECT seq, id, birds_sold, eggs_sold, recorded_at FROM sales_logs`+w+orderNewest("recorded_at"),
		args...)
	if err != nil {
		return nil, fmt.Errorf("query sales logs: %w", err)
	}
	defer rows.Close()

	out := make([]models.SalesLog, 0, 32)
	for rows.Next() {
		var (
			l        models.SalesLog
			recorded int64
		)
		if err := rows.Scan(&l.Seq, &l.ID, &l.BirdsSold, &l.EggsSold, &recorded); err != nil {
			return nil, fmt.Errorf("scan sales log: %w", err)
		}
		l.RecordedAt = time.Unix(0, recorded).UTC()
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sales logs: %w", err)
	}
	return out, nil
}

func (s *SalesStore) Summary(ctx context.Context, f models.HistoryFilter) (models.SalesSummary, error) {
	w, args := where(f, "recorded_at", false)
	var sum models.SalesSummary
	err := s.db.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(SUM(birds_sold), 0)::BIGINT, COALESCE(SUM(eggs_sold), 0)::BIGINT FROM sales_logs`+w,
		args...).Scan(&sum.Records, &sum.BirdsSold, &sum.EggsSold)
	if err != nil {
		return models.SalesSummary{}, fmt.Errorf("summarize sales logs: %w", err)
	}
	return sum, nil
}
