package service

import (
	"context"
	"testing"
	"time"

	"chickencoop_bridge/internal/models"
)

func newTestSimulator(env *testEnv) *SimulatorService {
	return NewSimulatorService(env.svc, env.codec, nil)
}

func stateText(env *testEnv, k models.Kind) string {
	return env.rec.Read(k).Value.Text
}

func TestSimulator_FirstStepReportsBaseline(t *testing.T) {
	env := newTestEnv(t)
	sim := newTestSimulator(env)

	sim.Step(context.Background(), 0)

	if got := env.rec.Read(models.KindTemperature); !got.Set || got.Value.Number != AmbientC {
		t.Fatalf("temperature: got %+v, want %.1f", got, AmbientC)
	}
	if got := stateText(env, models.KindFanStatus); got != models.SwitchOff {
		t.Fatalf("fan: got %q, want OFF", got)
	}
	if got := stateText(env, models.KindFeederStatus); got != models.SwitchOff {
		t.Fatalf("feeder: got %q, want OFF", got)
	}
	if got := stateText(env, models.KindObstacleStatus); got != models.ObstacleClear {
		t.Fatalf("obstacle: got %q, want CLEAR", got)
	}
	if env.rec.Read(models.KindCycleStatus).Set {
		t.Fatalf("no cycle should be reported before the first tick")
	}
	if n := len(env.readings.readings()); n != 4 {
		t.Fatalf("expected 4 baseline readings, got %d", n)
	}
}

func TestSimulator_ThermostatHysteresis(t *testing.T) {
	env := newTestEnv(t)
	sim := newTestSimulator(env)
	ctx := context.Background()
	sim.Step(ctx, 0)

	steps := []struct {
		name    string
		elapsed float64
		temp    float64
		fan     string
	}{
		{"warms below threshold", 10, 27.9, models.SwitchOff},
		{"crosses on threshold", 10, 28.4, models.SwitchOn},
		{"cools but stays on", 10, 26.9, models.SwitchOn},
		{"drops below off threshold", 20, 23.9, models.SwitchOff},
	}
	// Start just under the on threshold.
	sim.tempC = 27.4

	for _, tc := range steps {
		sim.Step(ctx, tc.elapsed)
		if got := env.rec.Read(models.KindTemperature).Value.Number; got != tc.temp {
			t.Fatalf("%s: temperature got %.2f, want %.2f", tc.name, got, tc.temp)
		}
		if got := stateText(env, models.KindFanStatus); got != tc.fan {
			t.Fatalf("%s: fan got %q, want %q", tc.name, got, tc.fan)
		}
	}
}

func TestSimulator_TemperatureClamps(t *testing.T) {
	env := newTestEnv(t)
	sim := newTestSimulator(env)
	ctx := context.Background()
	sim.Step(ctx, 0)

	sim.tempC = MaxCoopC - 0.1
	sim.Step(ctx, 100)
	if got := env.rec.Read(models.KindTemperature).Value.Number; got != MaxCoopC {
		t.Fatalf("expected clamp to %.1f, got %.2f", MaxCoopC, got)
	}

	sim.fanOn = true
	sim.tempC = AmbientC + 0.1
	sim.Step(ctx, 100)
	if got := env.rec.Read(models.KindTemperature).Value.Number; got != AmbientC {
		t.Fatalf("expected clamp to %.1f, got %.2f", AmbientC, got)
	}
}

func TestSimulator_CleaningCycleWithObstacle(t *testing.T) {
	env := newTestEnv(t)
	sim := newTestSimulator(env)
	sim.cycleEvery = 1
	sim.obstacleEvery = 1
	ctx := context.Background()
	sim.Step(ctx, 0)

	want := []struct {
		cycle, segment, obstacle string
	}{
		{models.CycleStarted, "1/4", models.ObstacleClear},
		{models.CycleStarted, "2/4", models.ObstacleClear},
		{models.CycleStarted, "2/4", models.ObstacleDetected},
		{models.CycleStarted, "2/4", models.ObstacleClear},
		{models.CycleStarted, "3/4", models.ObstacleClear},
		{models.CycleStarted, "4/4", models.ObstacleClear},
		{models.CycleCompleted, "4/4", models.ObstacleClear},
		{models.CycleStarted, "1/4", models.ObstacleClear},
	}
	for i, w := range want {
		sim.Step(ctx, 0)
		got := [3]string{
			stateText(env, models.KindCycleStatus),
			stateText(env, models.KindSegmentInfo),
			stateText(env, models.KindObstacleStatus),
		}
		if got != [3]string{w.cycle, w.segment, w.obstacle} {
			t.Fatalf("tick %d: got %v, want %+v", i+1, got, w)
		}
	}
}

func TestSimulator_NoCycleWhenDisabled(t *testing.T) {
	env := newTestEnv(t)
	sim := newTestSimulator(env)
	sim.cycleEvery = 0
	ctx := context.Background()
	sim.Step(ctx, 0)
	for i := 0; i < 5; i++ {
		sim.Step(ctx, 0)
	}
	if env.rec.Read(models.KindCycleStatus).Set {
		t.Fatalf("cycle reported although cycles are disabled")
	}
}

func feederControlChange(v string) models.Change {
	return models.Change{
		Kind: models.KindFeederControl,
		Current: models.State{
			Kind:  models.KindFeederControl,
			Value: models.TextValue(models.KindFeederControl, v),
			Set:   true,
		},
	}
}

func TestSimulator_FeederFollowsControl(t *testing.T) {
	env := newTestEnv(t)
	sim := newTestSimulator(env)
	ctx := context.Background()

	sim.follow(ctx, feederControlChange(models.SwitchOn))
	if got := stateText(env, models.KindFeederStatus); got != models.SwitchOn {
		t.Fatalf("feeder: got %q, want ON", got)
	}
	before := len(env.readings.readings())

	// Same request again: the feeder is already on, nothing is reported.
	sim.follow(ctx, feederControlChange(models.SwitchOn))
	// Other kinds are ignored.
	sim.follow(ctx, models.Change{Kind: models.KindMode, Current: models.State{Set: true}})
	if after := len(env.readings.readings()); after != before {
		t.Fatalf("expected no new readings, got %d -> %d", before, after)
	}

	sim.follow(ctx, feederControlChange(models.SwitchOff))
	if got := stateText(env, models.KindFeederStatus); got != models.SwitchOff {
		t.Fatalf("feeder: got %q, want OFF", got)
	}
}

func TestSimulator_RunAnswersControlsAndStops(t *testing.T) {
	env := newTestEnv(t)
	sim := newTestSimulator(env)
	sub := env.rec.Subscribe(models.KindFeederStatus)
	defer sub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	controls := make(chan models.Change, 1)
	done := make(chan struct{})
	go func() {
		sim.Run(ctx, time.Hour, controls)
		close(done)
	}()

	controls <- feederControlChange(models.SwitchOn)
	ch := recv(t, sub)
	if ch.Current.Value.Text != models.SwitchOn {
		t.Fatalf("expected feeder ON change, got %+v", ch)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
