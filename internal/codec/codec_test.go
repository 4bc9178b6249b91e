package codec

import (
	"errors"
	"testing"

	"chickencoop_bridge/internal/models"
)

func TestDecode_Telemetry(t *testing.T) {
	c := New(DefaultPrefix)

	cases := []struct {
		name    string
		topic   string
		payload string
		want    models.Event
	}{
		{"temperature", "coop/temp/data", "21.5", models.Event{Kind: models.KindTemperature, Value: models.NumberValue(models.KindTemperature, 21.5)}},
		{"temperature padded", "coop/temp/data", " -3 \n", models.Event{Kind: models.KindTemperature, Value: models.NumberValue(models.KindTemperature, -3)}},
		{"temperature rounded to thousandths", "coop/temp/data", "21.12351", models.Event{Kind: models.KindTemperature, Value: models.NumberValue(models.KindTemperature, 21.124)}},
		{"fan lower case", "coop/temp/fan", "on", models.Event{Kind: models.KindFanStatus, Value: models.TextValue(models.KindFanStatus, "ON")}},
		{"feeder status", "coop/feeder/status", "OFF", models.Event{Kind: models.KindFeederStatus, Value: models.TextValue(models.KindFeederStatus, "OFF")}},
		{"feeder status open", "coop/feeder/status", "open", models.Event{Kind: models.KindFeederStatus, Value: models.TextValue(models.KindFeederStatus, "ON")}},
		{"feeder status closed", "coop/feeder/status", "CLOSED", models.Event{Kind: models.KindFeederStatus, Value: models.TextValue(models.KindFeederStatus, "OFF")}},
		{"cycle", "coop/status/cycle", "STARTED", models.Event{Kind: models.KindCycleStatus, Value: models.TextValue(models.KindCycleStatus, "STARTED")}},
		{"segment text", "coop/status/segment", " Segment 2 of 4 ", models.Event{Kind: models.KindSegmentInfo, Value: models.TextValue(models.KindSegmentInfo, "Segment 2 of 4")}},
		{"obstacle", "coop/status/obstacle", "detected", models.Event{Kind: models.KindObstacleStatus, Value: models.TextValue(models.KindObstacleStatus, "DETECTED")}},
		{"obstacle legacy alias", "coop/status/obstacle", "CLEARED", models.Event{Kind: models.KindObstacleStatus, Value: models.TextValue(models.KindObstacleStatus, "CLEAR")}},
		{"mode echo", "coop/mode", "AUTO", models.Event{Kind: models.KindMode, Value: models.TextValue(models.KindMode, "AUTO")}},
		{"manual echo", "coop/manual/control", "LEFT", models.Event{Kind: models.KindManualControl, Value: models.TextValue(models.KindManualControl, "LEFT")}},
		{"feeder echo", "coop/feeder/control", "ON", models.Event{Kind: models.KindFeederControl, Value: models.TextValue(models.KindFeederControl, "ON")}},
		{"field", "coop/field", "10,5,3", models.Event{Kind: models.KindField, Value: models.FieldValue(models.FieldSetting{Length: 10, Width: 5, Speed: 3})}},
		{"field legacy prefix", "coop/field", "FIELD:10, 5 ,3", models.Event{Kind: models.KindField, Value: models.FieldValue(models.FieldSetting{Length: 10, Width: 5, Speed: 3})}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := c.Decode(tc.topic, []byte(tc.payload))
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestDecode_Rejects(t *testing.T) {
	c := New(DefaultPrefix)

	cases := []struct {
		name    string
		topic   string
		payload string
		want    error
	}{
		{"unknown topic", "coop/door/status", "OPEN", ErrUnknownTopic},
		{"missing prefix", "temp/data", "21", ErrUnknownTopic},
		{"empty topic", "", "21", ErrUnknownTopic},
		{"not a number", "coop/temp/data", "warm", ErrMalformedPayload},
		{"nan", "coop/temp/data", "NaN", ErrMalformedPayload},
		{"inf", "coop/temp/data", "+Inf", ErrMalformedPayload},
		{"number out of range", "coop/temp/data", "1e16", ErrMalformedPayload},
		{"feeder control has no legacy spelling", "coop/feeder/control", "OPEN", ErrMalformedPayload},
		{"enum outside set", "coop/temp/fan", "HALF", ErrMalformedPayload},
		{"mode outside set", "coop/mode", "TURBO", ErrMalformedPayload},
		{"empty segment", "coop/status/segment", "   ", ErrMalformedPayload},
		{"field missing part", "coop/field", "10,5", ErrMalformedPayload},
		{"field extra part", "coop/field", "10,5,3,1", ErrMalformedPayload},
		{"field non integer", "coop/field", "10,5.5,3", ErrMalformedPayload},
		{"field empty part", "coop/field", "10,,3", ErrMalformedPayload},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := c.Decode(tc.topic, []byte(tc.payload))
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
			var de *DecodeError
			if !errors.As(err, &de) {
				t.Fatalf("expected *DecodeError, got %T", err)
			}
			if de.Topic != tc.topic {
				t.Fatalf("DecodeError.Topic = %q, want %q", de.Topic, tc.topic)
			}
			if got != (models.Event{}) {
				t.Fatalf("expected zero event on error, got %+v", got)
			}
		})
	}
}

func TestDecode_IsIdempotent(t *testing.T) {
	c := New(DefaultPrefix)
	inputs := []struct{ topic, payload string }{
		{"coop/temp/data", "22.0"},
		{"coop/field", "1,2,3"},
		{"coop/unknown", "x"},
		{"coop/temp/fan", "maybe"},
	}
	for _, in := range inputs {
		e1, err1 := c.Decode(in.topic, []byte(in.payload))
		e2, err2 := c.Decode(in.topic, []byte(in.payload))
		if e1 != e2 {
			t.Fatalf("%s: events differ: %+v vs %+v", in.topic, e1, e2)
		}
		if (err1 == nil) != (err2 == nil) || (err1 != nil && err1.Error() != err2.Error()) {
			t.Fatalf("%s: errors differ: %v vs %v", in.topic, err1, err2)
		}
	}
}

func TestEncode_DeterministicAndInjective(t *testing.T) {
	c := New(DefaultPrefix)

	cmds := []models.Command{
		{Kind: models.CommandMode, Text: "AUTO"},
		{Kind: models.CommandMode, Text: "MANUAL"},
		{Kind: models.CommandManual, Text: "FORWARD"},
		{Kind: models.CommandFeeder, Text: "ON"},
		{Kind: models.CommandFeeder, Text: "OFF"},
		{Kind: models.CommandField, Field: models.FieldSetting{Length: 10, Width: 5, Speed: 3}},
		{Kind: models.CommandField, Field: models.FieldSetting{Length: 1, Width: 05, Speed: 3}},
	}

	seen := map[string]models.Command{}
	for _, cmd := range cmds {
		topic, payload, err := c.Encode(cmd)
		if err != nil {
			t.Fatalf("Encode(%+v): %v", cmd, err)
		}
		topic2, payload2, _ := c.Encode(cmd)
		if topic != topic2 || string(payload) != string(payload2) {
			t.Fatalf("Encode not deterministic for %+v", cmd)
		}
		key := topic + "|" + string(payload)
		if prev, dup := seen[key]; dup {
			t.Fatalf("commands %+v and %+v encode to the same message %q", prev, cmd, key)
		}
		seen[key] = cmd
	}

	topic, payload, _ := c.Encode(models.Command{Kind: models.CommandField, Field: models.FieldSetting{Length: 10, Width: 5, Speed: 3}})
	if topic != "coop/field" || string(payload) != "10,5,3" {
		t.Fatalf("field encoding = %q %q", topic, payload)
	}
}

func TestEncode_UnknownKind(t *testing.T) {
	c := New(DefaultPrefix)
	if _, _, err := c.Encode(models.Command{Kind: "door"}); !errors.Is(err, ErrUnknownCommand) {
		t.Fatalf("expected ErrUnknownCommand, got %v", err)
	}
}

func TestEncodeDecode_EchoRoundTrip(t *testing.T) {
	c := New("farm1/")
	cmd := models.Command{Kind: models.CommandField, Field: models.FieldSetting{Length: 12, Width: 7, Speed: 2}}
	topic, payload, err := c.Encode(cmd)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	ev, err := c.Decode(topic, payload)
	if err != nil {
		t.Fatalf("Decode echo: %v", err)
	}
	if ev.Kind != models.KindField || ev.Value.Field != cmd.Field {
		t.Fatalf("echo decoded to %+v", ev)
	}
}

func TestTopicTable_CoversEveryKind(t *testing.T) {
	byKind := map[models.Kind]int{}
	for _, spec := range topicTable {
		byKind[spec.kind]++
	}
	for _, k := range models.AllKinds {
		if byKind[k] != 1 {
			t.Fatalf("kind %q has %d topics, want 1", k, byKind[k])
		}
	}
	c := New(DefaultPrefix)
	if got := len(c.SubscriptionTopics()); got != len(models.AllKinds) {
		t.Fatalf("subscription topics = %d, want %d", got, len(models.AllKinds))
	}
	if got := len(c.TelemetryTopics()); got != 6 {
		t.Fatalf("telemetry topics = %d, want 6", got)
	}
}
