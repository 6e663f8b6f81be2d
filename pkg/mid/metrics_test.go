package mid

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pitwall-ai/pitwall/pkg/metrics"
)

func TestMetricsCountsByStatusClass(t *testing.T) {
	reg := metrics.New()
	h := Metrics(reg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/missing", nil))

	out := reg.Render()
	if !strings.Contains(out, `http_requests_total{method="GET",class="2xx"} 2`) {
		t.Errorf("missing 2xx counter:\n%s", out)
	}
	if !strings.Contains(out, `http_requests_total{method="GET",class="4xx"} 1`) {
		t.Errorf("missing 4xx counter:\n%s", out)
	}
	if !strings.Contains(out, "http_request_duration_seconds_count 3") {
		t.Errorf("missing latency count:\n%s", out)
	}
}

func TestStatusClass(t *testing.T) {
	cases := []struct {
		code int
		want string
	}{
		{200, "2xx"},
		{204, "2xx"},
		{301, "3xx"},
		{404, "4xx"},
		{500, "5xx"},
		{503, "5xx"},
	}
	for _, tc := range cases {
		if got := statusClass(tc.code); got != tc.want {
			t.Errorf("statusClass(%d) = %q, want %q", tc.code, got, tc.want)
		}
	}
}
