package kb

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"

	"github.com/pitwall-ai/pitwall/engine/graph"
	"github.com/pitwall-ai/pitwall/engine/openf1"
	"github.com/pitwall-ai/pitwall/pkg/fn"
)

type fakeClient struct {
	meetings []openf1.Meeting
	sessions []openf1.Session
	drivers  map[int][]openf1.Driver

	failMeetings bool
	failDrivers  map[int]bool

	mu          sync.Mutex
	driverCalls []int
}

func (f *fakeClient) Meetings(context.Context, int) fn.Result[[]openf1.Meeting] {
	if f.failMeetings {
		return fn.Err[[]openf1.Meeting](errors.New("meetings unavailable"))
	}
	return fn.Ok(f.meetings)
}

func (f *fakeClient) Sessions(context.Context, int, string) fn.Result[[]openf1.Session] {
	return fn.Ok(f.sessions)
}

func (f *fakeClient) Drivers(_ context.Context, sessionKey int) fn.Result[[]openf1.Driver] {
	f.mu.Lock()
	f.driverCalls = append(f.driverCalls, sessionKey)
	f.mu.Unlock()
	if f.failDrivers[sessionKey] {
		return fn.Err[[]openf1.Driver](errors.New("drivers unavailable"))
	}
	return fn.Ok(f.drivers[sessionKey])
}

func quietLog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seasonFixture() *fakeClient {
	return &fakeClient{
		meetings: []openf1.Meeting{
			{MeetingKey: 1219, CircuitKey: 22, CircuitShortName: "Monaco", CountryName: "Monaco", Location: "Monte Carlo", Year: 2024},
			{MeetingKey: 1224, CircuitKey: 46, CircuitShortName: "Suzuka", CountryName: "Japan", Location: "Suzuka", Year: 2024},
		},
		sessions: []openf1.Session{
			{SessionKey: 9001, SessionName: "Race", DateStart: "2024-05-26T13:00:00", Year: 2024, CircuitKey: 22, Location: "Monte Carlo"},
			{SessionKey: 9002, SessionName: "Qualifying", DateStart: "2024-05-25T14:00:00", Year: 2024, CircuitKey: 22, Location: "Monte Carlo"},
			{SessionKey: 9003, SessionName: "Practice 1", DateStart: "2024-04-05T11:30:00", Year: 2024, CircuitKey: 46, Location: "Suzuka"},
		},
		drivers: map[int][]openf1.Driver{
			9001: {
				{DriverNumber: 1, FullName: "Max Verstappen", NameAcronym: "VER", TeamName: "Red Bull Racing", CountryCode: "NED"},
				{DriverNumber: 44, FullName: "Lewis Hamilton", NameAcronym: "HAM", TeamName: "Mercedes-AMG Petronas", CountryCode: "GBR"},
			},
			9002: {
				// Duplicate of session 9001's entry, must not add twice.
				{DriverNumber: 1, FullName: "Max Verstappen", NameAcronym: "VER", TeamName: "Red Bull Racing", CountryCode: "NED"},
			},
		},
	}
}

func TestLoadBuildsGraph(t *testing.T) {
	kb := New(seasonFixture(), quietLog())

	if err := kb.Load(context.Background(), 2024); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !kb.Loaded() {
		t.Error("Loaded() = false after successful load")
	}
	s := kb.Graph()

	stats := s.Stats()
	if stats.NodesByType[graph.TypeCircuit] != 2 || stats.NodesByType[graph.TypeCountry] != 2 {
		t.Errorf("circuits/countries = %d/%d, want 2/2", stats.NodesByType[graph.TypeCircuit], stats.NodesByType[graph.TypeCountry])
	}
	if stats.NodesByType[graph.TypeSession] != 3 {
		t.Errorf("sessions = %d, want 3", stats.NodesByType[graph.TypeSession])
	}
	if stats.NodesByType[graph.TypeDriver] != 2 {
		t.Errorf("drivers = %d, want 2 (duplicate entry must collapse)", stats.NodesByType[graph.TypeDriver])
	}
	if stats.NodesByType[graph.TypeTeam] != 2 {
		t.Errorf("teams = %d, want 2", stats.NodesByType[graph.TypeTeam])
	}
	if stats.NodesByType[graph.TypeEngine] != 4 || stats.NodesByType[graph.TypeEventType] != 3 {
		t.Errorf("engines/event types = %d/%d, want 4/3", stats.NodesByType[graph.TypeEngine], stats.NodesByType[graph.TypeEventType])
	}

	driver, ok := s.NodeDetails("driver_1")
	if !ok {
		t.Fatal("driver_1 missing")
	}
	if driver.Attributes["nacionalidad"] != "Países Bajos" {
		t.Errorf("nacionalidad = %v, want Países Bajos (code expanded)", driver.Attributes["nacionalidad"])
	}

	team, ok := s.NodeDetails("team_red_bull_racing")
	if !ok {
		t.Fatal("team_red_bull_racing missing")
	}
	if team.Attributes["jefe_equipo"] != "Christian Horner" {
		t.Errorf("jefe_equipo = %v", team.Attributes["jefe_equipo"])
	}

	if got := s.QueryByRelation("driver_1", "conduce_para", graph.Outgoing); len(got) != 1 || got[0].ID != "team_red_bull_racing" {
		t.Errorf("conduce_para = %+v", got)
	}
	if got := s.QueryByRelation("team_red_bull_racing", "usa_motor", graph.Outgoing); len(got) != 1 || got[0].ID != "engine_honda_rbpt" {
		t.Errorf("usa_motor = %+v", got)
	}
	if got := s.QueryByRelation("circuit_22", "esta_en", graph.Outgoing); len(got) != 1 || got[0].ID != "country_monaco" {
		t.Errorf("esta_en = %+v", got)
	}
	if got := s.QueryByRelation("session_9001", "ocurre_en", graph.Outgoing); len(got) != 1 || got[0].ID != "circuit_22" {
		t.Errorf("ocurre_en = %+v", got)
	}
	if got := s.QueryByRelation("session_9001", "es_un_tipo_de", graph.Outgoing); len(got) != 1 || got[0].ID != "tipo_race" {
		t.Errorf("es_un_tipo_de = %+v", got)
	}

	sess, _ := s.NodeDetails("session_9001")
	if sess.Attributes["fecha"] != "2024-05-26" {
		t.Errorf("fecha = %v, want 2024-05-26", sess.Attributes["fecha"])
	}
}

func TestLoadSamplesDriverSessions(t *testing.T) {
	fixture := seasonFixture()
	for key := 9004; key <= 9010; key++ {
		fixture.sessions = append(fixture.sessions, openf1.Session{SessionKey: key, SessionName: "Practice 2", Year: 2024, CircuitKey: 22})
	}
	kb := New(fixture, quietLog())

	if err := kb.Load(context.Background(), 2024); err != nil {
		t.Fatalf("Load: %v", err)
	}

	sort.Ints(fixture.driverCalls)
	want := []int{9001, 9002, 9003, 9004, 9005}
	if len(fixture.driverCalls) != len(want) {
		t.Fatalf("driver fetches = %v, want first %d session keys", fixture.driverCalls, driverSessionSample)
	}
	for i, key := range want {
		if fixture.driverCalls[i] != key {
			t.Errorf("driver fetches = %v, want %v", fixture.driverCalls, want)
			break
		}
	}
}

func TestLoadFailureKeepsPreviousGraph(t *testing.T) {
	fixture := seasonFixture()
	kb := New(fixture, quietLog())
	if err := kb.Load(context.Background(), 2024); err != nil {
		t.Fatalf("Load: %v", err)
	}
	before := kb.Graph()

	fixture.failMeetings = true
	if err := kb.Load(context.Background(), 2024); err == nil {
		t.Fatal("expected load error")
	}
	if kb.Graph() != before {
		t.Error("failed load replaced the live graph")
	}
	if !kb.Loaded() {
		t.Error("Loaded() flipped false after failed reload")
	}
}

func TestLoadDegradesOnDriverFetchFailure(t *testing.T) {
	fixture := seasonFixture()
	fixture.failDrivers = map[int]bool{9001: true}
	kb := New(fixture, quietLog())

	if err := kb.Load(context.Background(), 2024); err != nil {
		t.Fatalf("Load: %v", err)
	}
	// Session 9001's entry list is lost, but 9002 still contributes.
	if got := kb.Graph().Stats().NodesByType[graph.TypeDriver]; got != 1 {
		t.Errorf("drivers = %d, want 1", got)
	}
}

func TestGraphBeforeLoadIsEmpty(t *testing.T) {
	kb := New(seasonFixture(), quietLog())
	if kb.Loaded() {
		t.Error("Loaded() = true before any load")
	}
	if stats := kb.Graph().Stats(); stats.TotalNodes != 0 {
		t.Errorf("fresh graph has %d nodes", stats.TotalNodes)
	}
}
