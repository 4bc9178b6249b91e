package models

import (
	"encoding/json"
	"strings"
	"time"
)

// Kind names one canonical state slot.
type Kind string

// Telemetry kinds reported by the device.
const (
	KindTemperature    Kind = "temperature"
	KindFanStatus      Kind = "fanStatus"
	KindFeederStatus   Kind = "feederStatus"
	KindCycleStatus    Kind = "cycleStatus"
	KindSegmentInfo    Kind = "segmentInfo"
	KindObstacleStatus Kind = "obstacleStatus"
)

// Control kinds observed through the command echo topics.
const (
	KindMode          Kind = "mode"
	KindField         Kind = "field"
	KindManualControl Kind = "manualControl"
	KindFeederControl Kind = "feederControl"
)

// AllKinds lists every state slot in a stable order.
var AllKinds = []Kind{
	KindTemperature,
	KindFanStatus,
	KindFeederStatus,
	KindCycleStatus,
	KindSegmentInfo,
	KindObstacleStatus,
	KindMode,
	KindField,
	KindManualControl,
	KindFeederControl,
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	for _, known := range AllKinds {
		if k == known {
			return true
		}
	}
	return false
}

// ParseKind matches s against the known kinds, ignoring case.
func ParseKind(s string) (Kind, bool) {
	for _, known := range AllKinds {
		if strings.EqualFold(string(known), strings.TrimSpace(s)) {
			return known, true
		}
	}
	return "", false
}

// FieldSetting is the field geometry and motor speed, always changed as one unit.
type FieldSetting struct {
	Length int `json:"field_length"`
	Width  int `json:"field_width"`
	Speed  int `json:"motor_speed"`
}

// Value is a typed state value. It is comparable with == so change detection
// is a plain equality check. Only the member matching Kind is meaningful.
type Value struct {
	Kind   Kind
	Number float64
	Text   string
	Field  FieldSetting
}

// NumberValue builds a numeric value for kind.
func NumberValue(kind Kind, n float64) Value { return Value{Kind: kind, Number: n} }

// TextValue builds a text or enum value for kind.
func TextValue(kind Kind, s string) Value { return Value{Kind: kind, Text: s} }

// FieldValue builds a field setting value.
func FieldValue(f FieldSetting) Value { return Value{Kind: KindField, Field: f} }

// Any returns the JSON-friendly payload of v.
func (v Value) Any() any {
	switch v.Kind {
	case KindTemperature:
		return v.Number
	case KindField:
		return v.Field
	default:
		return v.Text
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Any())
}

// State is the content of one canonical slot. Set is false until the first
// observation and never returns to false afterwards.
type State struct {
	Kind      Kind      `json:"kind"`
	Value     Value     `json:"-"`
	Set       bool      `json:"set"`
	Version   uint64    `json:"version"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Unset reports whether no value has been observed for the slot yet.
func (s State) Unset() bool { return !s.Set }

func (s State) MarshalJSON() ([]byte, error) {
	type wire struct {
		Kind      Kind       `json:"kind"`
		Value     any        `json:"value"`
		Set       bool       `json:"set"`
		Version   uint64     `json:"version"`
		UpdatedAt *time.Time `json:"updated_at,omitempty"`
	}
	w := wire{Kind: s.Kind, Set: s.Set, Version: s.Version}
	if s.Set {
		w.Value = s.Value.Any()
		t := s.UpdatedAt
		w.UpdatedAt = &t
	}
	return json.Marshal(w)
}

// Change is a single Changed result emitted by the reconciler.
type Change struct {
	Kind     Kind      `json:"kind"`
	Previous State     `json:"previous"`
	Current  State     `json:"current"`
	At       time.Time `json:"at"`
}

// Snapshot is the full canonical state keyed by kind.
type Snapshot map[Kind]State
