package service

import (
	"context"
	"fmt"
	"strings"

	"chickencoop_bridge/internal/codec"
	"chickencoop_bridge/internal/logger"
	"chickencoop_bridge/internal/metrics"
	"chickencoop_bridge/internal/models"
	"chickencoop_bridge/internal/reconciler"

	"github.com/google/uuid"
)

// MaxMotorSpeed is the top of the motor PWM range.
const MaxMotorSpeed = 255

// dedupTarget is the state slot a command is compared against. Feeder
// commands compare with what the device reports, the rest with their echo.
var dedupTarget = map[models.CommandKind]models.Kind{
	models.CommandMode:   models.KindMode,
	models.CommandField:  models.KindField,
	models.CommandManual: models.KindManualControl,
	models.CommandFeeder: models.KindFeederStatus,
}

var commandDomains = map[models.CommandKind][]string{
	models.CommandMode:   {models.ModeAuto, models.ModeManual},
	models.CommandManual: {models.ManualForward, models.ManualBackward, models.ManualLeft, models.ManualRight, models.ManualStop},
	models.CommandFeeder: {models.SwitchOn, models.SwitchOff},
}

type CommandService struct {
	codec *codec.Codec
	rec   *reconciler.Reconciler
	pub   Publisher
	log   *logger.Logger
}

func NewCommandService(c *codec.Codec, rec *reconciler.Reconciler, pub Publisher, log *logger.Logger) *CommandService {
	return &CommandService{codec: c, rec: rec, pub: pub, log: log}
}

// Submit validates cmd, suppresses it when the current state already holds
// its value, and otherwise publishes it. It does not wait for the echo, so
// resubmitting before the echo lands forwards again.
func (s *CommandService) Submit(ctx context.Context, cmd models.Command) (CommandResult, error) {
	cmd, err := normalizeCommand(cmd)
	if err != nil {
		label := string(cmd.Kind)
		if _, known := dedupTarget[cmd.Kind]; !known {
			label = "unknown"
		}
		metrics.ObserveCommand(label, metrics.ResultInvalid)
		return CommandResult{}, err
	}

	target := dedupTarget[cmd.Kind]
	if current := s.rec.Read(target); current.Set && current.Value == commandValue(cmd) {
		metrics.ObserveCommand(string(cmd.Kind), metrics.ResultSuppressed)
		s.log.Infow("command_suppressed", "kind", cmd.Kind, "reason", ReasonNoChange)
		return CommandResult{Outcome: OutcomeSuppressed, Reason: ReasonNoChange, Kind: cmd.Kind}, nil
	}

	topic, payload, err := s.codec.Encode(cmd)
	if err != nil {
		return CommandResult{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if s.pub == nil {
		metrics.ObserveCommand(string(cmd.Kind), metrics.ResultUnavailable)
		return CommandResult{}, fmt.Errorf("%w: no publisher", ErrBusUnavailable)
	}
	if err := s.pub.Publish(ctx, topic, payload); err != nil {
		metrics.ObserveCommand(string(cmd.Kind), metrics.ResultUnavailable)
		s.log.Warnw("command_publish_failed", "kind", cmd.Kind, "topic", topic, "err", err)
		return CommandResult{}, fmt.Errorf("%w: %v", ErrBusUnavailable, err)
	}

	metrics.ObserveCommand(string(cmd.Kind), metrics.ResultForwarded)
	id := uuid.NewString()
	s.log.Infow("command_forwarded", "kind", cmd.Kind, "topic", topic, "command_id", id)
	return CommandResult{Outcome: OutcomeForwarded, Kind: cmd.Kind, CommandID: id, Topic: topic}, nil
}

// normalizeCommand canonicalizes text values and checks them against their domain.
func normalizeCommand(cmd models.Command) (models.Command, error) {
	if cmd.Kind == models.CommandField {
		f := cmd.Field
		if f.Length <= 0 || f.Width <= 0 {
			return cmd, fmt.Errorf("%w: field length and width must be positive, got %dx%d", ErrValidation, f.Length, f.Width)
		}
		if f.Speed <= 0 || f.Speed > MaxMotorSpeed {
			return cmd, fmt.Errorf("%w: motor speed must be in 1..%d, got %d", ErrValidation, MaxMotorSpeed, f.Speed)
		}
		cmd.Text = ""
		return cmd, nil
	}

	allowed, ok := commandDomains[cmd.Kind]
	if !ok {
		return cmd, fmt.Errorf("%w: unknown command kind %q", ErrValidation, cmd.Kind)
	}
	v := strings.ToUpper(strings.TrimSpace(cmd.Text))
	for _, a := range allowed {
		if v == a {
			return models.Command{Kind: cmd.Kind, Text: v}, nil
		}
	}
	return cmd, fmt.Errorf("%w: %s value %q not in %v", ErrValidation, cmd.Kind, cmd.Text, allowed)
}

// commandValue is the state value a command would produce once echoed.
func commandValue(cmd models.Command) models.Value {
	if cmd.Kind == models.CommandField {
		return models.FieldValue(cmd.Field)
	}
	return models.TextValue(dedupTarget[cmd.Kind], cmd.Text)
}
