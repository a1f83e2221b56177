package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestResult(t *testing.T) {
	if got := Result(nil); got != "ok" {
		t.Errorf("Result(nil) = %q; want ok", got)
	}
	if got := Result(errors.New("boom")); got != "error" {
		t.Errorf("Result(err) = %q; want error", got)
	}
}

func TestHandler_ExposesCounters(t *testing.T) {
	before := testutil.ToFloat64(RecordsDecoded.WithLabelValues("test", "ok"))
	RecordsDecoded.WithLabelValues("test", "ok").Inc()
	if got := testutil.ToFloat64(RecordsDecoded.WithLabelValues("test", "ok")); got != before+1 {
		t.Fatalf("counter = %v; want %v", got, before+1)
	}

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "airport_records_decoded_total") {
		t.Fatal("metrics output lacks airport_records_decoded_total")
	}
}
