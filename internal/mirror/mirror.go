// Package mirror writes canonical state into Redis "last value" keys so
// other dashboard services can read it without calling the bridge.
package mirror

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"chickencoop_bridge/internal/logger"
	"chickencoop_bridge/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	KeyPrefix  = "coop:state:"
	defaultTTL = 24 * time.Hour
	writeLimit = 2 * time.Second
)

// Setter is the part of *redis.Client the mirror needs.
type Setter interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

type Mirror struct {
	rdb Setter
	ttl time.Duration
	log *logger.Logger
}

// New returns a Mirror writing with the given TTL. A zero ttl uses 24h so
// keys of a silent device eventually disappear.
func New(rdb Setter, ttl time.Duration, log *logger.Logger) *Mirror {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Mirror{rdb: rdb, ttl: ttl, log: log}
}

// Key returns the Redis key holding kind.
func Key(kind models.Kind) string { return KeyPrefix + string(kind) }

// Write stores one state as JSON. Unset states are skipped.
func (m *Mirror) Write(ctx context.Context, st models.State) error {
	if st.Unset() {
		return nil
	}
	b, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", st.Kind, err)
	}
	if err := m.rdb.Set(ctx, Key(st.Kind), b, m.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", Key(st.Kind), err)
	}
	return nil
}

// Seed writes every set slot of snap.
func (m *Mirror) Seed(ctx context.Context, snap models.Snapshot) {
	for _, k := range models.AllKinds {
		if err := m.Write(ctx, snap[k]); err != nil {
			m.log.Warnw("mirror_seed_failed", "kind", k, "err", err)
		}
	}
}

// Run writes every change received on changes until ctx ends or the channel
// closes. Redis failures are logged; the history store stays the source of truth.
func (m *Mirror) Run(ctx context.Context, changes <-chan models.Change) {
	for {
		select {
		case <-ctx.Done():
			return
		case ch, ok := <-changes:
			if !ok {
				return
			}
			wctx, cancel := context.WithTimeout(ctx, writeLimit)
			if err := m.Write(wctx, ch.Current); err != nil {
				m.log.Warnw("mirror_write_failed", "kind", ch.Kind, "err", err)
			}
			cancel()
		}
	}
}
