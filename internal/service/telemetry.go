package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"chickencoop_bridge/internal/codec"
	"chickencoop_bridge/internal/logger"
	"chickencoop_bridge/internal/metrics"
	"chickencoop_bridge/internal/models"
	"chickencoop_bridge/internal/reconciler"
	"chickencoop_bridge/internal/repository"
)

type TelemetryService struct {
	codec    *codec.Codec
	rec      *reconciler.Reconciler
	readings repository.ReadingRepo
	storage  *storageMonitor
	clock    func() time.Time
	log      *logger.Logger

	// One slot per kind; its lock spans apply and append, so history order
	// per kind equals arrival order.
	slots map[models.Kind]*kindSlot
}

type kindSlot struct {
	sync.Mutex
	last time.Time // latest stamp handed out for this kind
}

// stampLocked returns now, or the previous stamp if the wall clock stepped
// back, so observed_at never runs against arrival order. Caller holds the lock.
func (k *kindSlot) stampLocked(now time.Time) time.Time {
	if now.Before(k.last) {
		now = k.last
	}
	k.last = now
	return now
}

func NewTelemetryService(c *codec.Codec, rec *reconciler.Reconciler, readings repository.ReadingRepo, storage *storageMonitor, clock func() time.Time, log *logger.Logger) *TelemetryService {
	if log == nil {
		log = logger.NewNop()
	}
	slots := make(map[models.Kind]*kindSlot, len(models.AllKinds))
	for _, k := range models.AllKinds {
		slots[k] = &kindSlot{}
	}
	return &TelemetryService{
		codec:    c,
		rec:      rec,
		readings: readings,
		storage:  storage,
		clock:    clock,
		log:      log,
		slots:    slots,
	}
}

// Ingest decodes one bus message, reconciles it and appends it to history.
// Every decoded message is appended, changed or not. Decode errors are logged
// and returned for the caller to drop.
func (s *TelemetryService) Ingest(ctx context.Context, topic string, payload []byte) error {
	ev, err := s.codec.Decode(topic, payload)
	if err != nil {
		reason := "malformed_payload"
		if errors.Is(err, codec.ErrUnknownTopic) {
			reason = "unknown_topic"
		}
		metrics.ObserveDecodeError(reason)
		s.log.Warnw("decode_dropped", "topic", topic, "reason", reason, "err", err)
		return err
	}

	slot := s.slots[ev.Kind]
	slot.Lock()
	defer slot.Unlock()

	at := slot.stampLocked(s.clock())
	outcome, err := s.rec.Apply(ev, at)
	if err != nil {
		return err
	}
	metrics.ObserveMessage(string(ev.Kind), outcome.String())

	if _, err := s.readings.Append(ctx, models.Reading{
		Kind:       ev.Kind,
		Value:      ev.Value,
		Topic:      topic,
		ObservedAt: at,
	}); err != nil {
		// State keeps the applied value; the gap is reported through health.
		s.storage.fail(err, at)
		metrics.ObserveStorageError("append_reading")
		s.log.Errorw("history_append_failed", "kind", ev.Kind, "topic", topic, "err", err)
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	s.storage.ok()

	if outcome == reconciler.Changed {
		s.log.Debugw("state_changed", "kind", ev.Kind, "value", ev.Value.Any())
	}
	return nil
}
