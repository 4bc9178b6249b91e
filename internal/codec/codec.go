// Package codec maps raw bus messages to typed events and operator commands
// back to bus messages. It holds no state beyond the topic prefix.
package codec

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"chickencoop_bridge/internal/models"
)

// Topic names relative to the configured prefix.
const (
	TopicTempData       = "temp/data"
	TopicTempFan        = "temp/fan"
	TopicFeederStatus   = "feeder/status"
	TopicCycleStatus    = "status/cycle"
	TopicSegmentStatus  = "status/segment"
	TopicObstacleStatus = "status/obstacle"

	TopicMode          = "mode"
	TopicField         = "field"
	TopicManualControl = "manual/control"
	TopicFeederControl = "feeder/control"
)

// DefaultPrefix is prepended to every topic unless configured otherwise.
const DefaultPrefix = "coop/"

const legacyFieldPrefix = "FIELD:"

var (
	ErrUnknownTopic     = errors.New("unknown topic")
	ErrMalformedPayload = errors.New("malformed payload")
	ErrUnknownCommand   = errors.New("unknown command kind")
)

// DecodeError describes a message that could not be turned into an Event.
// It wraps ErrUnknownTopic or ErrMalformedPayload.
type DecodeError struct {
	Topic   string
	Payload string
	Err     error
}

func (e *DecodeError) Error() string {
	payload := e.Payload
	if len(payload) > 64 {
		payload = payload[:64] + "..."
	}
	return fmt.Sprintf("decode %q (payload %q): %v", e.Topic, payload, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

type parseFunc func(kind models.Kind, payload string) (models.Value, error)

type topicSpec struct {
	kind  models.Kind
	parse parseFunc
}

var (
	switchStates   = []string{models.SwitchOn, models.SwitchOff}
	cycleStates    = []string{models.CycleStarted, models.CycleCompleted}
	obstacleStates = []string{models.ObstacleDetected, models.ObstacleClear}
	modeStates     = []string{models.ModeAuto, models.ModeManual}
	manualStates   = []string{
		models.ManualForward,
		models.ManualBackward,
		models.ManualLeft,
		models.ManualRight,
		models.ManualStop,
	}
)

// Legacy controller spellings. Only device-reported topics take aliases; the
// command echo topics carry what the bridge itself encodes.
var feederAliases = map[string]string{"OPEN": models.SwitchOn, "CLOSED": models.SwitchOff}

// topicTable is the complete decode table. Every models.Kind has exactly one topic.
var topicTable = map[string]topicSpec{
	TopicTempData:       {models.KindTemperature, parseNumber},
	TopicTempFan:        {models.KindFanStatus, parseEnum(switchStates, nil)},
	TopicFeederStatus:   {models.KindFeederStatus, parseEnum(switchStates, feederAliases)},
	TopicCycleStatus:    {models.KindCycleStatus, parseEnum(cycleStates, nil)},
	TopicSegmentStatus:  {models.KindSegmentInfo, parseText},
	TopicObstacleStatus: {models.KindObstacleStatus, parseEnum(obstacleStates, map[string]string{"CLEARED": models.ObstacleClear})},

	TopicMode:          {models.KindMode, parseEnum(modeStates, nil)},
	TopicField:         {models.KindField, parseField},
	TopicManualControl: {models.KindManualControl, parseEnum(manualStates, nil)},
	TopicFeederControl: {models.KindFeederControl, parseEnum(switchStates, nil)},
}

var telemetryTopics = []string{
	TopicTempData,
	TopicTempFan,
	TopicFeederStatus,
	TopicCycleStatus,
	TopicSegmentStatus,
	TopicObstacleStatus,
}

var echoTopics = []string{
	TopicMode,
	TopicField,
	TopicManualControl,
	TopicFeederControl,
}

// Codec decodes and encodes messages for topics under one prefix.
type Codec struct {
	prefix string
}

// New returns a Codec for the given topic prefix. An empty prefix is allowed.
func New(prefix string) *Codec {
	return &Codec{prefix: prefix}
}

// Topic returns the full bus topic for a relative topic name.
func (c *Codec) Topic(name string) string { return c.prefix + name }

// TelemetryTopics returns the full names of the device telemetry topics.
func (c *Codec) TelemetryTopics() []string { return c.full(telemetryTopics) }

// EchoTopics returns the full names of the command topics, subscribed so the
// bridge observes what was actually published.
func (c *Codec) EchoTopics() []string { return c.full(echoTopics) }

// SubscriptionTopics returns every topic the bridge listens on.
func (c *Codec) SubscriptionTopics() []string {
	return append(c.TelemetryTopics(), c.EchoTopics()...)
}

func (c *Codec) full(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		out = append(out, c.prefix+n)
	}
	return out
}

// Decode turns a raw message into an Event. It never panics; any failure is a
// *DecodeError. Decoding the same input always yields the same result.
func (c *Codec) Decode(topic string, payload []byte) (models.Event, error) {
	raw := string(payload)
	name, ok := strings.CutPrefix(topic, c.prefix)
	if !ok {
		return models.Event{}, &DecodeError{Topic: topic, Payload: raw, Err: ErrUnknownTopic}
	}
	spec, ok := topicTable[name]
	if !ok {
		return models.Event{}, &DecodeError{Topic: topic, Payload: raw, Err: ErrUnknownTopic}
	}
	v, err := spec.parse(spec.kind, raw)
	if err != nil {
		return models.Event{}, &DecodeError{Topic: topic, Payload: raw, Err: fmt.Errorf("%w: %v", ErrMalformedPayload, err)}
	}
	return models.Event{Kind: spec.kind, Value: v}, nil
}

// Encode returns the topic and payload for cmd. The mapping is deterministic,
// so republishing the same command produces an identical message.
func (c *Codec) Encode(cmd models.Command) (string, []byte, error) {
	switch cmd.Kind {
	case models.CommandMode:
		return c.Topic(TopicMode), []byte(cmd.Text), nil
	case models.CommandManual:
		return c.Topic(TopicManualControl), []byte(cmd.Text), nil
	case models.CommandFeeder:
		return c.Topic(TopicFeederControl), []byte(cmd.Text), nil
	case models.CommandField:
		payload := strconv.Itoa(cmd.Field.Length) + "," + strconv.Itoa(cmd.Field.Width) + "," + strconv.Itoa(cmd.Field.Speed)
		return c.Topic(TopicField), []byte(payload), nil
	default:
		return "", nil, fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Kind)
	}
}

func parseNumber(kind models.Kind, payload string) (models.Value, error) {
	n, err := strconv.ParseFloat(strings.TrimSpace(payload), 64)
	if err != nil {
		return models.Value{}, fmt.Errorf("not a number")
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return models.Value{}, fmt.Errorf("not a finite number")
	}
	r, ok := models.RoundMilli(n)
	if !ok {
		return models.Value{}, fmt.Errorf("out of range")
	}
	return models.NumberValue(kind, r), nil
}

func parseText(kind models.Kind, payload string) (models.Value, error) {
	s := strings.TrimSpace(payload)
	if s == "" {
		return models.Value{}, fmt.Errorf("empty text")
	}
	return models.TextValue(kind, s), nil
}

// parseEnum accepts one of allowed (case-insensitive) and canonicalizes to upper case.
// aliases maps legacy spellings onto allowed values.
func parseEnum(allowed []string, aliases map[string]string) parseFunc {
	return func(kind models.Kind, payload string) (models.Value, error) {
		s := strings.ToUpper(strings.TrimSpace(payload))
		if alias, ok := aliases[s]; ok {
			s = alias
		}
		for _, a := range allowed {
			if s == a {
				return models.TextValue(kind, a), nil
			}
		}
		return models.Value{}, fmt.Errorf("%q not in %v", payload, allowed)
	}
}

// parseField reads "length,width,speed". Any bad part rejects the whole message.
func parseField(_ models.Kind, payload string) (models.Value, error) {
	s := strings.TrimSpace(payload)
	if len(s) >= len(legacyFieldPrefix) && strings.EqualFold(s[:len(legacyFieldPrefix)], legacyFieldPrefix) {
		s = s[len(legacyFieldPrefix):]
	}
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return models.Value{}, fmt.Errorf("want 3 comma-separated integers, got %d parts", len(parts))
	}
	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return models.Value{}, fmt.Errorf("part %d %q is not an integer", i+1, p)
		}
		nums[i] = n
	}
	return models.FieldValue(models.FieldSetting{Length: nums[0], Width: nums[1], Speed: nums[2]}), nil
}
