package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"chickencoop_bridge/internal/models"
)

type Authorization interface {
	Create(username, hash string) (int, error)
	GetByUsername(username string) (*models.User, error)
}

// ReadingRepo is the append-only log of decoded bus messages.
type ReadingRepo interface {
	Append(ctx context.Context, r models.Reading) (models.Reading, error)
	List(ctx context.Context, f models.HistoryFilter) ([]models.Reading, error)
	Summary(ctx context.Context, f models.HistoryFilter) (models.ReadingSummary, error)
}

// CoopStatsRepo is the append-only log of inventory snapshots.
type CoopStatsRepo interface {
	Append(ctx context.Context, s models.CoopStats) (models.CoopStats, error)
	List(ctx context.Context, f models.HistoryFilter) ([]models.CoopStats, error)
	Summary(ctx context.Context, f models.HistoryFilter) (models.CoopStatsSummary, error)
}

// SalesRepo is the append-only log of sales snapshots.
type SalesRepo interface {
	Append(ctx context.Context, s models.SalesLog) (models.SalesLog, error)
	List(ctx context.Context, f models.HistoryFilter) ([]models.SalesLog, error)
	Summary(ctx context.Context, f models.HistoryFilter) (models.SalesSummary, error)
}

type Repository struct {
	Readings  ReadingRepo
	CoopStats CoopStatsRepo
	Sales     SalesRepo
	Auth      Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Readings:  NewReadingSQLite(db),
		CoopStats: NewCoopStatsSQLite(db),
		Sales:     NewSalesSQLite(db),
		Auth:      NewUserRepository(db),
	}
}

// whereClause renders the shared filter for List and Summary so both always
// see the same rows. tsColumn holds unix nanoseconds.
func whereClause(f models.HistoryFilter, tsColumn string, withKind bool) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if withKind && f.Kind != "" {
		conds = append(conds, "kind = ?")
		args = append(args, string(f.Kind))
	}
	if !f.From.IsZero() {
		conds = append(conds, tsColumn+" >= ?")
		args = append(args, f.From.UnixNano())
	}
	if !f.To.IsZero() {
		conds = append(conds, tsColumn+" <= ?")
		args = append(args, f.To.UnixNano())
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// stamp returns t in UTC, or now when t is zero.
func stamp(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t.UTC()
}

func fromNanos(n int64) time.Time {
	return time.Unix(0, n).UTC()
}
