package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"chickencoop_bridge/internal/models"
	"chickencoop_bridge/internal/service"
)

func TestHistoryHandlers_ReadingsQuery(t *testing.T) {
	cases := []struct {
		name        string
		query       string
		wantCode    int
		wantKind    models.Kind
		wantFrom    time.Time
		wantTo      time.Time
		wantSummary bool
	}{
		{
			name:     "no filters",
			query:    "",
			wantCode: http.StatusOK,
		},
		{
			name:     "kind is case-insensitive",
			query:    "?kind=FANSTATUS",
			wantCode: http.StatusOK,
			wantKind: models.KindFanStatus,
		},
		{
			name:     "date-only to covers the day",
			query:    "?from=2025-03-01&to=2025-03-02",
			wantCode: http.StatusOK,
			wantFrom: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
			wantTo:   time.Date(2025, 3, 2, 23, 59, 59, 999999999, time.UTC),
		},
		{
			name:     "rfc3339 bounds",
			query:    "?from=2025-03-01T06:00:00Z&to=2025-03-01T07:30:00.5Z",
			wantCode: http.StatusOK,
			wantFrom: time.Date(2025, 3, 1, 6, 0, 0, 0, time.UTC),
			wantTo:   time.Date(2025, 3, 1, 7, 30, 0, 500000000, time.UTC),
		},
		{
			name:        "summary",
			query:       "?kind=temperature&summary=true",
			wantCode:    http.StatusOK,
			wantKind:    models.KindTemperature,
			wantSummary: true,
		},
		{name: "bad from", query: "?from=yesterday", wantCode: http.StatusBadRequest},
		{name: "bad to", query: "?to=03/01/2025", wantCode: http.StatusBadRequest},
		{name: "bad kind", query: "?kind=humidity", wantCode: http.StatusBadRequest},
		{name: "bad summary", query: "?summary=maybe", wantCode: http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hist := &mockHistory{
				readings:   []models.Reading{{Seq: 2, Kind: models.KindFanStatus, Value: models.TextValue(models.KindFanStatus, "ON")}},
				readingSum: models.ReadingSummary{Records: 3, NumberSum: 65},
			}
			s := &service.Service{Authorization: &mockAuth{parseID: 1}, History: hist}
			r := newTestRouter(s)

			w := doAuthed(r, http.MethodGet, "/api/v1/history/readings"+tc.query, "")
			if w.Code != tc.wantCode {
				t.Fatalf("status=%d, want %d, body=%s", w.Code, tc.wantCode, w.Body.String())
			}
			if tc.wantCode != http.StatusOK {
				return
			}
			f := hist.lastFilter
			if f.Kind != tc.wantKind || !f.From.Equal(tc.wantFrom) || !f.To.Equal(tc.wantTo) {
				t.Errorf("filter %+v, want kind=%q from=%v to=%v", f, tc.wantKind, tc.wantFrom, tc.wantTo)
			}
			if hist.lastSummary != tc.wantSummary {
				t.Errorf("summary: got %v, want %v", hist.lastSummary, tc.wantSummary)
			}

			var body map[string]json.RawMessage
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if tc.wantSummary {
				var sum models.ReadingSummary
				if err := json.Unmarshal(body["summary"], &sum); err != nil || sum.Records != 3 || sum.NumberSum != 65 {
					t.Errorf("summary body %s (%v)", body["summary"], err)
				}
			} else if string(body["count"]) != "1" {
				t.Errorf("count: %s", body["count"])
			}
		})
	}
}

func TestHistoryHandlers_InventoryLists(t *testing.T) {
	hist := &mockHistory{
		coopStats: []models.CoopStats{{Seq: 2, BirdCount: 40}, {Seq: 1, BirdCount: 41}},
		coopSum:   models.CoopStatsSummary{Records: 2, BirdCount: 81},
		sales:     []models.SalesLog{{Seq: 1, EggsSold: 30}},
		salesSum:  models.SalesSummary{Records: 1, EggsSold: 30},
	}
	s := &service.Service{Authorization: &mockAuth{parseID: 1}, History: hist}
	r := newTestRouter(s)

	cases := []struct {
		path string
		key  string
		want string
	}{
		{"/api/v1/history/coop-stats", "count", "2"},
		{"/api/v1/history/coop-stats?summary=1", "summary", `{"records":2,"bird_count":81,"egg_count":0,"ailing_bird_count":0}`},
		{"/api/v1/history/sales", "count", "1"},
		{"/api/v1/history/sales?summary=true", "summary", `{"records":1,"birds_sold":0,"eggs_sold":30}`},
	}
	for _, tc := range cases {
		w := doAuthed(r, http.MethodGet, tc.path, "")
		if w.Code != http.StatusOK {
			t.Fatalf("%s: status=%d body=%s", tc.path, w.Code, w.Body.String())
		}
		var body map[string]json.RawMessage
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("%s: unmarshal: %v", tc.path, err)
		}
		if string(body[tc.key]) != tc.want {
			t.Errorf("%s: %s=%s, want %s", tc.path, tc.key, body[tc.key], tc.want)
		}
	}

	// kind is ignored outside readings
	w := doAuthed(r, http.MethodGet, "/api/v1/history/sales?kind=bogus", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected kind to be ignored for sales, got %d", w.Code)
	}
}

func TestHistoryHandlers_ServiceErrors(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"inverted range", fmt.Errorf("%w: from must be <= to", service.ErrValidation), http.StatusBadRequest},
		{"store down", fmt.Errorf("%w: database is locked", service.ErrStorageUnavailable), http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hist := &mockHistory{err: tc.err}
			r := newTestRouter(&service.Service{Authorization: &mockAuth{parseID: 1}, History: hist})
			for _, path := range []string{
				"/api/v1/history/readings?from=2025-03-02&to=2025-03-01",
				"/api/v1/history/coop-stats",
				"/api/v1/history/sales?summary=true",
			} {
				w := doAuthed(r, http.MethodGet, path, "")
				if w.Code != tc.wantCode {
					t.Errorf("%s: status=%d, want %d", path, w.Code, tc.wantCode)
				}
			}
		})
	}
}
