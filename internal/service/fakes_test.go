package service

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"chickencoop_bridge/internal/codec"
	"chickencoop_bridge/internal/models"
	"chickencoop_bridge/internal/reconciler"
	"chickencoop_bridge/internal/repository"
)

var errDBDown = errors.New("db down")

// fakeReadingRepo satisfies repository.ReadingRepo and records every call.
type fakeReadingRepo struct {
	mu        sync.Mutex
	appended  []models.Reading
	appendErr error

	gotFilter models.HistoryFilter
	listResp  []models.Reading
	listErr   error
	summary   models.ReadingSummary
	calls     int
}

func (f *fakeReadingRepo) Append(ctx context.Context, r models.Reading) (models.Reading, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return models.Reading{}, f.appendErr
	}
	r.Seq = int64(len(f.appended) + 1)
	r.ID = "r-" + strconv.FormatInt(r.Seq, 10)
	f.appended = append(f.appended, r)
	return r, nil
}

func (f *fakeReadingRepo) List(ctx context.Context, flt models.HistoryFilter) ([]models.Reading, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.gotFilter = flt
	return f.listResp, f.listErr
}

func (f *fakeReadingRepo) Summary(ctx context.Context, flt models.HistoryFilter) (models.ReadingSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.gotFilter = flt
	return f.summary, f.listErr
}

func (f *fakeReadingRepo) readings() []models.Reading {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Reading, len(f.appended))
	copy(out, f.appended)
	return out
}

// fakeCoopStatsRepo satisfies repository.CoopStatsRepo.
type fakeCoopStatsRepo struct {
	appended  []models.CoopStats
	appendErr error
	gotFilter models.HistoryFilter
	listResp  []models.CoopStats
	listErr   error
	summary   models.CoopStatsSummary
}

func (f *fakeCoopStatsRepo) Append(ctx context.Context, s models.CoopStats) (models.CoopStats, error) {
	if f.appendErr != nil {
		return models.CoopStats{}, f.appendErr
	}
	s.Seq = int64(len(f.appended) + 1)
	f.appended = append(f.appended, s)
	return s, nil
}

func (f *fakeCoopStatsRepo) List(ctx context.Context, flt models.HistoryFilter) ([]models.CoopStats, error) {
	f.gotFilter = flt
	return f.listResp, f.listErr
}

func (f *fakeCoopStatsRepo) Summary(ctx context.Context, flt models.HistoryFilter) (models.CoopStatsSummary, error) {
	f.gotFilter = flt
	return f.summary, f.listErr
}

// fakeSalesRepo satisfies repository.SalesRepo.
type fakeSalesRepo struct {
	appended  []models.SalesLog
	appendErr error
	gotFilter models.HistoryFilter
	listResp  []models.SalesLog
	listErr   error
	summary   models.SalesSummary
}

func (f *fakeSalesRepo) Append(ctx context.Context, s models.SalesLog) (models.SalesLog, error) {
	if f.appendErr != nil {
		return models.SalesLog{}, f.appendErr
	}
	s.Seq = int64(len(f.appended) + 1)
	f.appended = append(f.appended, s)
	return s, nil
}

func (f *fakeSalesRepo) List(ctx context.Context, flt models.HistoryFilter) ([]models.SalesLog, error) {
	f.gotFilter = flt
	return f.listResp, f.listErr
}

func (f *fakeSalesRepo) Summary(ctx context.Context, flt models.HistoryFilter) (models.SalesSummary, error) {
	f.gotFilter = flt
	return f.summary, f.listErr
}

type published struct {
	topic   string
	payload string
}

// fakePublisher captures published commands.
type fakePublisher struct {
	mu    sync.Mutex
	calls []published
	err   error
}

func (p *fakePublisher) Publish(ctx context.Context, topic string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.calls = append(p.calls, published{topic: topic, payload: string(payload)})
	return nil
}

func (p *fakePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

type fakeBus struct{ connected bool }

func (b fakeBus) Connected() bool { return b.connected }

// stepClock returns a clock that advances one second per call.
func stepClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	now := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Second)
		return now
	}
}

type testEnv struct {
	svc       *Service
	rec       *reconciler.Reconciler
	codec     *codec.Codec
	readings  *fakeReadingRepo
	coopStats *fakeCoopStatsRepo
	sales     *fakeSalesRepo
	pub       *fakePublisher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		rec:       reconciler.New(),
		codec:     codec.New(codec.DefaultPrefix),
		readings:  &fakeReadingRepo{},
		coopStats: &fakeCoopStatsRepo{},
		sales:     &fakeSalesRepo{},
		pub:       &fakePublisher{},
	}
	env.svc = NewService(Deps{
		Reconciler: env.rec,
		Codec:      env.codec,
		Repos: &repository.Repository{
			Readings:  env.readings,
			CoopStats: env.coopStats,
			Sales:     env.sales,
			Auth:      &mockAuthRepo{},
		},
		Publisher: env.pub,
		Bus:       fakeBus{connected: true},
		Auth:      AuthConfig{SigningKey: testSigningKey},
		Clock:     stepClock(time.Date(2025, 3, 1, 6, 0, 0, 0, time.UTC)),
	})
	return env
}

func (e *testEnv) ingest(t *testing.T, topic, payload string) error {
	t.Helper()
	return e.svc.Ingest(context.Background(), e.codec.Topic(topic), []byte(payload))
}

// recv waits for the next change on sub.
func recv(t *testing.T, sub *reconciler.Subscription) models.Change {
	t.Helper()
	select {
	case ch, ok := <-sub.C:
		if !ok {
			t.Fatal("subscription closed")
		}
		return ch
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change")
	}
	return models.Change{}
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}
