package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"chickencoop_bridge/internal/models"

	"github.com/google/uuid"
)

type ReadingSQLite struct {
	db *sql.DB
}

func NewReadingSQLite(db *sql.DB) *ReadingSQLite { return &ReadingSQLite{db: db} }

var _ ReadingRepo = (*ReadingSQLite)(nil)

// ErrNumberOutOfRange rejects numbers that do not fit the fixed-point column.
var ErrNumberOutOfRange = errors.New("number out of range")

const (
	insertReadingSQL = `INSERT INTO readings (id, kind, topic, num_milli, txt, field_length, field_width, motor_speed, observed_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	selectReadingsSQL = `SELECT seq, id, kind, topic, num_milli, txt, field_length, field_width, motor_speed, observed_at FROM readings`

	summaryReadingsSQL = `SELECT COUNT(*), COALESCE(SUM(num_milli), 0), COALESCE(SUM(field_length), 0), COALESCE(SUM(field_width), 0), COALESCE(SUM(motor_speed), 0) FROM readings`

	newestFirst = ` ORDER BY %s DESC, seq DESC`
)

// readingColumns spreads a typed value over the nullable value columns.
// Numbers are stored in thousandths.
func readingColumns(v models.Value) (num, txt, length, width, speed any, err error) {
	switch v.Kind {
	case models.KindTemperature:
		m, ok := models.ToMilli(v.Number)
		if !ok {
			return nil, nil, nil, nil, nil, fmt.Errorf("%w: %v", ErrNumberOutOfRange, v.Number)
		}
		return m, nil, nil, nil, nil, nil
	case models.KindField:
		return nil, nil, v.Field.Length, v.Field.Width, v.Field.Speed, nil
	default:
		return nil, v.Text, nil, nil, nil, nil
	}
}

// readingValue rebuilds the typed value from the nullable value columns.
func readingValue(kind models.Kind, numMilli sql.NullInt64, txt sql.NullString, length, width, speed sql.NullInt64) models.Value {
	switch kind {
	case models.KindTemperature:
		return models.NumberValue(kind, models.FromMilli(numMilli.Int64))
	case models.KindField:
		return models.FieldValue(models.FieldSetting{
			Length: int(length.Int64),
			Width:  int(width.Int64),
			Speed:  int(speed.Int64),
		})
	default:
		return models.TextValue(kind, txt.String)
	}
}

// Append stores r and returns it with ID, Seq and ObservedAt filled in.
func (r *ReadingSQLite) Append(ctx context.Context, rd models.Reading) (models.Reading, error) {
	if rd.ID == "" {
		rd.ID = uuid.NewString()
	}
	rd.ObservedAt = stamp(rd.ObservedAt)
	num, txt, length, width, speed, err := readingColumns(rd.Value)
	if err != nil {
		return models.Reading{}, fmt.Errorf("reading %s: %w", rd.Kind, err)
	}

	res, err := r.db.ExecContext(ctx, insertReadingSQL,
		rd.ID,
		string(rd.Kind),
		rd.Topic,
		num,
		txt,
		length,
		width,
		speed,
		rd.ObservedAt.UnixNano(),
	)
	if err != nil {
		return models.Reading{}, fmt.Errorf("insert reading %s: %w", rd.Kind, err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return models.Reading{}, fmt.Errorf("get last insert id for reading: %w", err)
	}
	rd.Seq = seq
	return rd, nil
}

// List returns readings matching f, most recent first.
func (r *ReadingSQLite) List(ctx context.Context, f models.HistoryFilter) ([]models.Reading, error) {
	where, args := whereClause(f, "observed_at", true)
	q := selectReadingsSQL + where + fmt.Sprintf(newestFirst, "observed_at")

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query readings: %w", err)
	}
	defer rows.Close()

	out := make([]models.Reading, 0, 64)
	for rows.Next() {
		var (
			rd                   models.Reading
			kind                 string
			num                  sql.NullInt64
			txt                  sql.NullString
			length, width, speed sql.NullInt64
			observed             int64
		)
		if err := rows.Scan(&rd.Seq, &rd.ID, &kind, &rd.Topic, &num, &txt, &length, &width, &speed, &observed); err != nil {
			return nil, fmt.Errorf("scan reading: %w", err)
		}
		rd.Kind = models.Kind(kind)
		rd.ObservedAt = fromNanos(observed)
		rd.Value = readingValue(rd.Kind, num, txt, length, width, speed)
		out = append(out, rd)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate readings: %w", err)
	}
	return out, nil
}

// Summary folds every reading matching f in SQL. Integer sums are exact, so
// the result equals folding List in any order.
func (r *ReadingSQLite) Summary(ctx context.Context, f models.HistoryFilter) (models.ReadingSummary, error) {
	where, args := whereClause(f, "observed_at", true)

	var (
		s     models.ReadingSummary
		milli int64
	)
	err := r.db.QueryRowContext(ctx, summaryReadingsSQL+where, args...).
		Scan(&s.Records, &milli, &s.LengthSum, &s.WidthSum, &s.SpeedSum)
	if err != nil {
		return models.ReadingSummary{}, fmt.Errorf("summarize readings: %w", err)
	}
	s.SetNumberMilli(milli)
	return s, nil
}
