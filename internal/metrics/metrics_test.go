package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(commandsTotal.WithLabelValues("feeder", ResultSuppressed))
	ObserveCommand("feeder", ResultSuppressed)
	ObserveCommand("feeder", ResultSuppressed)
	if got := testutil.ToFloat64(commandsTotal.WithLabelValues("feeder", ResultSuppressed)); got != before+2 {
		t.Fatalf("commands = %v, want %v", got, before+2)
	}

	SetBusConnected(true)
	if testutil.ToFloat64(busConnected) != 1 {
		t.Fatalf("bus gauge should be 1 after connect")
	}
	SetBusConnected(false)
	if testutil.ToFloat64(busConnected) != 0 {
		t.Fatalf("bus gauge should be 0 after loss")
	}
}

func TestHandler_ExposesBridgeMetrics(t *testing.T) {
	ObserveMessage("temperature", "changed")
	ObserveDecodeError("unknown_topic")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, name := range []string{"coop_bridge_messages_total", "coop_bridge_decode_errors_total", "coop_bridge_bus_connected"} {
		if !strings.Contains(body, name) {
			t.Fatalf("metrics output missing %s", name)
		}
	}
}
