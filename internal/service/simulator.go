package service

import (
	"context"
	"math"
	"strconv"
	"time"

	"chickencoop_bridge/internal/codec"
	"chickencoop_bridge/internal/logger"
	"chickencoop_bridge/internal/models"
)

// ----------- Simulation constants -----------
const (
	AmbientC       = 18.0 // night-time coop temperature °C
	MaxCoopC       = 35.0 // hottest the coop gets with the fan OFF
	SunWarmCPerSec = 0.05 // °C per second while the fan is OFF
	FanCoolCPerSec = 0.15 // °C per second while the fan is ON
	FanOnAboveC    = 28.0
	FanOffBelowC   = 24.0

	CycleSegments        = 4
	defaultCycleEvery    = 60 // ticks between cleaning cycles
	defaultObstacleEvery = 3  // every Nth cycle hits an obstacle in segment 2
)

// SimulatorService stands in for the coop controller when no hardware is
// attached. It feeds device telemetry through the same Ingest path a broker
// message takes, so state, history and streams behave as in production.
type SimulatorService struct {
	telemetry Telemetry
	codec     *codec.Codec
	log       *logger.Logger

	cycleEvery    int
	obstacleEvery int

	started  bool
	tempC    float64
	fanOn    bool
	feederOn bool
	ticks    int
	cycles   int
	segment  int // 0 while no cycle is running
	obstacle bool
	blocked  bool // obstacle already raised in the current cycle
}

// NewSimulatorService returns a simulator with defaults.
func NewSimulatorService(t Telemetry, c *codec.Codec, log *logger.Logger) *SimulatorService {
	if log == nil {
		log = logger.NewNop()
	}
	return &SimulatorService{
		telemetry:     t,
		codec:         c,
		log:           log,
		cycleEvery:    defaultCycleEvery,
		obstacleEvery: defaultObstacleEvery,
		tempC:         AmbientC,
	}
}

// Run ticks at the given interval until ctx is canceled. Feeder control
// changes arriving on controls are answered with a matching feeder status,
// as the real controller does.
func (s *SimulatorService) Run(ctx context.Context, tick time.Duration, controls <-chan models.Change) {
	t := time.NewTicker(tick)
	defer t.Stop()
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case ch, ok := <-controls:
			if !ok {
				controls = nil
				continue
			}
			s.follow(ctx, ch)
		case now := <-t.C:
			elapsed := now.Sub(last).Seconds()
			last = now
			s.Step(ctx, elapsed)
		}
	}
}

// Step advances the model by elapsed seconds and reports the result.
// The first call reports the baseline state only.
func (s *SimulatorService) Step(ctx context.Context, elapsed float64) {
	if !s.started {
		s.started = true
		s.emit(ctx, codec.TopicTempData, formatTemp(s.tempC))
		s.emit(ctx, codec.TopicTempFan, switchText(s.fanOn))
		s.emit(ctx, codec.TopicFeederStatus, switchText(s.feederOn))
		s.emit(ctx, codec.TopicObstacleStatus, models.ObstacleClear)
		return
	}

	s.stepTemperature(elapsed)
	s.emit(ctx, codec.TopicTempData, formatTemp(s.tempC))

	// Thermostat with hysteresis.
	switch {
	case !s.fanOn && s.tempC >= FanOnAboveC:
		s.fanOn = true
		s.emit(ctx, codec.TopicTempFan, models.SwitchOn)
	case s.fanOn && s.tempC <= FanOffBelowC:
		s.fanOn = false
		s.emit(ctx, codec.TopicTempFan, models.SwitchOff)
	}

	s.ticks++
	s.stepCycle(ctx)
}

func (s *SimulatorService) stepTemperature(elapsed float64) {
	if s.fanOn {
		s.tempC = math.Max(s.tempC-FanCoolCPerSec*elapsed, AmbientC)
		return
	}
	s.tempC = math.Min(s.tempC+SunWarmCPerSec*elapsed, MaxCoopC)
}

// stepCycle moves a cleaning cycle one segment forward. An obstacle holds the
// cycle in place for one tick.
func (s *SimulatorService) stepCycle(ctx context.Context) {
	switch {
	case s.segment == 0:
		if s.cycleEvery <= 0 || s.ticks%s.cycleEvery != 0 {
			return
		}
		s.cycles++
		s.segment = 1
		s.blocked = false
		s.emit(ctx, codec.TopicCycleStatus, models.CycleStarted)
		s.emit(ctx, codec.TopicSegmentStatus, segmentText(s.segment))
	case s.obstacle:
		s.obstacle = false
		s.emit(ctx, codec.TopicObstacleStatus, models.ObstacleClear)
	case s.segment == 2 && !s.blocked && s.obstacleEvery > 0 && s.cycles%s.obstacleEvery == 0:
		s.obstacle = true
		s.blocked = true
		s.emit(ctx, codec.TopicObstacleStatus, models.ObstacleDetected)
	case s.segment < CycleSegments:
		s.segment++
		s.emit(ctx, codec.TopicSegmentStatus, segmentText(s.segment))
	default:
		s.segment = 0
		s.emit(ctx, codec.TopicCycleStatus, models.CycleCompleted)
	}
}

// follow mirrors a feeder control echo into the feeder status.
func (s *SimulatorService) follow(ctx context.Context, ch models.Change) {
	if ch.Kind != models.KindFeederControl || !ch.Current.Set {
		return
	}
	on := ch.Current.Value.Text == models.SwitchOn
	if on == s.feederOn {
		return
	}
	s.feederOn = on
	s.emit(ctx, codec.TopicFeederStatus, switchText(on))
}

func (s *SimulatorService) emit(ctx context.Context, topic, payload string) {
	if err := s.telemetry.Ingest(ctx, s.codec.Topic(topic), []byte(payload)); err != nil {
		s.log.Warnw("simulator_ingest_failed", "topic", topic, "payload", payload, "err", err)
	}
}

// helpers
func formatTemp(c float64) string {
	return strconv.FormatFloat(math.Round(c*10)/10, 'f', 1, 64)
}

func switchText(on bool) string {
	if on {
		return models.SwitchOn
	}
	return models.SwitchOff
}

func segmentText(n int) string {
	return strconv.Itoa(n) + "/" + strconv.Itoa(CycleSegments)
}
