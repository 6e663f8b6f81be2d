package openf1

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/pitwall-ai/pitwall/pkg/fn"
	"github.com/pitwall-ai/pitwall/pkg/resilience"
)

func newTestClient(baseURL string) *Client {
	c := NewClient(baseURL, slog.New(slog.NewTextHandler(io.Discard, nil)))
	c.limiter = rate.NewLimiter(rate.Inf, 1)
	c.retry = fn.RetryOpts{MaxAttempts: 1, InitialWait: time.Millisecond, MaxWait: time.Millisecond}
	return c
}

func TestMeetings(t *testing.T) {
	var gotPath, gotYear string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotYear = r.URL.Query().Get("year")
		w.Write([]byte(`[{"meeting_key":1219,"circuit_key":22,"circuit_short_name":"Monaco","country_name":"Monaco","location":"Monte Carlo","year":2024}]`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	meetings, err := c.Meetings(context.Background(), 2024).Unwrap()
	if err != nil {
		t.Fatalf("Meetings: %v", err)
	}
	if gotPath != "/meetings" || gotYear != "2024" {
		t.Errorf("request = %s?year=%s, want /meetings?year=2024", gotPath, gotYear)
	}
	if len(meetings) != 1 || meetings[0].CircuitKey != 22 || meetings[0].CircuitShortName != "Monaco" {
		t.Errorf("meetings = %+v", meetings)
	}
}

func TestDriversSessionKeyParam(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("session_key") != "9158" {
			t.Errorf("session_key = %q, want 9158", r.URL.Query().Get("session_key"))
		}
		w.Write([]byte(`[{"driver_number":1,"full_name":"Max VERSTAPPEN","name_acronym":"VER","team_name":"Red Bull Racing","country_code":"NED"}]`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	drivers, err := c.Drivers(context.Background(), 9158).Unwrap()
	if err != nil {
		t.Fatalf("Drivers: %v", err)
	}
	if len(drivers) != 1 || drivers[0].DriverNumber != 1 {
		t.Errorf("drivers = %+v", drivers)
	}
}

func TestHTTPErrorDegradesToEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream broken", http.StatusInternalServerError)
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	sessions, err := c.Sessions(context.Background(), 2024, "Race").Unwrap()
	if err != nil {
		t.Fatalf("Sessions: %v, want degraded empty result", err)
	}
	if len(sessions) != 0 {
		t.Errorf("sessions = %+v, want empty", sessions)
	}
}

func TestTransportErrorPropagates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close() // connection refused from here on

	c := newTestClient(server.URL)
	if r := c.Meetings(context.Background(), 2024); !r.IsErr() {
		t.Error("expected transport error")
	}
}

func TestBreakerOpensAfterRepeatedFaults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close()

	c := newTestClient(server.URL)
	for i := 0; i < 5; i++ {
		if r := c.Meetings(context.Background(), 0); !r.IsErr() {
			t.Fatalf("call %d: expected error", i)
		}
	}

	_, err := c.Meetings(context.Background(), 0).Unwrap()
	if !errors.Is(err, resilience.ErrCircuitOpen) {
		t.Errorf("err = %v, want circuit open", err)
	}
	if c.BreakerState() != "open" {
		t.Errorf("breaker state = %s, want open", c.BreakerState())
	}
}

func TestMalformedBodyIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"not":"an array"`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	if r := c.Positions(context.Background(), 9158); !r.IsErr() {
		t.Error("expected decode error")
	}
}
