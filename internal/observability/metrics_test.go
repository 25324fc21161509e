package observability

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danmuck/elwebctl/internal/testutil/testlog"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegisterMetricsAndRecordersAreSafe(t *testing.T) {
	testlog.Start(t)
	RegisterMetrics()
	RegisterMetrics()

	before := testutil.ToFloat64(webRequests.WithLabelValues("load", OutcomeReplied))
	RecordWebRequest("load", OutcomeReplied)
	if got := testutil.ToFloat64(webRequests.WithLabelValues("load", OutcomeReplied)); got != before+1 {
		t.Fatalf("web request counter got=%v want=%v", got, before+1)
	}

	fields := testutil.ToFloat64(webFields)
	RecordWebField()
	RecordWebField()
	if got := testutil.ToFloat64(webFields); got != fields+2 {
		t.Fatalf("field counter got=%v want=%v", got, fields+2)
	}

	RecordFrame(DirectionIn, FrameDropped)
	if got := testutil.ToFloat64(linkFrames.WithLabelValues(DirectionIn, FrameDropped)); got < 1 {
		t.Fatalf("frame counter not incremented: %v", got)
	}
}

type staticHandlers []string

func (s staticHandlers) URLs() []string { return s }

func TestAdminRouter(t *testing.T) {
	testlog.Start(t)
	router := NewAdminRouter(staticHandlers{"/LED.html.json", "/Voltage.html.json"})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != http.StatusOK || strings.TrimSpace(rr.Body.String()) != "ok" {
		t.Fatalf("healthz status=%d body=%q", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/handlers", nil))
	var body struct {
		Handlers []string `json:"handlers"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode handlers: %v", err)
	}
	if len(body.Handlers) != 2 || body.Handlers[0] != "/LED.html.json" {
		t.Fatalf("unexpected handlers: %+v", body.Handlers)
	}

	RecordWebRequest("refresh", OutcomeReplied)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rr.Body.String(), "elweb_web_requests_total") {
		t.Fatalf("metrics output missing web counter")
	}
}
