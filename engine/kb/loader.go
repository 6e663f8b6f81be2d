// Package kb builds the fact graph from OpenF1 data and owns the live
// store. Loads build a fresh graph and swap it in atomically, so readers
// never observe a half-populated graph.
package kb

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pitwall-ai/pitwall/engine/graph"
	"github.com/pitwall-ai/pitwall/engine/openf1"
	"github.com/pitwall-ai/pitwall/pkg/fn"
)

// driverSessionSample bounds how many sessions are queried for entry lists;
// the grid barely changes within a season.
const driverSessionSample = 5

// driverFetchWorkers bounds concurrent entry-list requests.
const driverFetchWorkers = 3

// countryNames maps IOC-style driver country codes to Spanish country names.
var countryNames = map[string]string{
	"NED": "Países Bajos",
	"MEX": "México",
	"GBR": "Reino Unido",
	"ESP": "España",
	"MON": "Mónaco",
	"CAN": "Canadá",
	"AUS": "Australia",
	"JPN": "Japón",
	"FRA": "Francia",
	"FIN": "Finlandia",
	"CHN": "China",
	"THA": "Tailandia",
	"DEN": "Dinamarca",
	"GER": "Alemania",
	"USA": "Estados Unidos",
	"NZL": "Nueva Zelanda",
}

// teamEngines maps lower-cased team names to engine manufacturers.
var teamEngines = map[string]string{
	"red bull racing":       "Honda RBPT",
	"mercedes-amg petronas": "Mercedes",
	"scuderia ferrari":      "Ferrari",
	"mclaren racing":        "Mercedes",
	"aston martin aramco":   "Mercedes",
	"alpine f1 team":        "Renault",
	"williams racing":       "Mercedes",
	"scuderia alphatauri":   "Honda RBPT",
	"rb f1 team":            "Honda RBPT",
	"alfa romeo f1 team":    "Ferrari",
	"haas f1 team":          "Ferrari",
}

// teamPrincipals maps lower-cased team names to their team principal.
var teamPrincipals = map[string]string{
	"red bull racing":       "Christian Horner",
	"mercedes-amg petronas": "Toto Wolff",
	"scuderia ferrari":      "Frédéric Vasseur",
	"mclaren racing":        "Andrea Stella",
	"aston martin aramco":   "Mike Krack",
	"alpine f1 team":        "Bruno Famin",
	"williams racing":       "James Vowles",
	"scuderia alphatauri":   "Laurent Mekies",
	"rb f1 team":            "Laurent Mekies",
	"alfa romeo f1 team":    "Alessandro Alunni Bravi",
	"haas f1 team":          "Guenther Steiner",
}

// engineCatalog lists the power unit manufacturers on the grid.
var engineCatalog = []graph.EngineAttrs{
	{Fabricante: "Mercedes", ProveedorCombustible: "Petronas"},
	{Fabricante: "Ferrari", ProveedorCombustible: "Shell"},
	{Fabricante: "Honda RBPT", ProveedorCombustible: "ExxonMobil"},
	{Fabricante: "Renault", ProveedorCombustible: "BP"},
}

// eventTypeCatalog lists the session categories sessions link to.
var eventTypeCatalog = []struct {
	id    string
	attrs graph.EventTypeAttrs
}{
	{"tipo_race", graph.EventTypeAttrs{Nombre: "Race", Descripcion: "Carrera principal"}},
	{"tipo_qualifying", graph.EventTypeAttrs{Nombre: "Qualifying", Descripcion: "Sesión de clasificación"}},
	{"tipo_practice", graph.EventTypeAttrs{Nombre: "Practice", Descripcion: "Sesión de práctica"}},
}

// normalizeID turns a display name into a node id fragment.
func normalizeID(name string) string {
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, " ", "_")
	return strings.ReplaceAll(name, "-", "_")
}

// build fetches one season of OpenF1 data and populates a fresh store.
// Population order matters: edges require both endpoints to exist.
func build(ctx context.Context, client Client, year int, log *slog.Logger) (*graph.Store, error) {
	meetings, err := client.Meetings(ctx, year).Unwrap()
	if err != nil {
		return nil, fmt.Errorf("fetching meetings: %w", err)
	}
	sessions, err := client.Sessions(ctx, year, "").Unwrap()
	if err != nil {
		return nil, fmt.Errorf("fetching sessions: %w", err)
	}
	log.Info("season data fetched", "year", year, "meetings", len(meetings), "sessions", len(sessions))

	s := graph.New(log)
	populateCircuits(s, meetings)
	populateSessions(s, sessions)
	teamNames := populateDrivers(ctx, s, client, sessions, log)
	populateTeams(s, teamNames)
	populateEngines(s)
	populateEventTypes(s)
	linkRelationships(s, sessions, teamNames, year)

	stats := s.Stats()
	log.Info("knowledge base built", "year", year, "nodes", stats.TotalNodes, "edges", stats.TotalEdges)
	return s, nil
}

func populateCircuits(s *graph.Store, meetings []openf1.Meeting) {
	circuitsAdded := map[string]bool{}
	countriesAdded := map[string]bool{}

	for _, m := range meetings {
		if m.CircuitKey == 0 || m.CircuitShortName == "" {
			continue
		}
		circuitID := fmt.Sprintf("circuit_%d", m.CircuitKey)

		if !circuitsAdded[circuitID] {
			s.AddNode(circuitID, graph.CircuitAttrs{
				NombreOficial:    officialCircuitName(m.CircuitShortName),
				Pais:             m.CountryName,
				LongitudMetros:   5000.0, // placeholder, the API has no track length
				CircuitKey:       m.CircuitKey,
				CircuitShortName: m.CircuitShortName,
				Location:         m.Location,
			})
			circuitsAdded[circuitID] = true
		}

		if m.CountryName == "" {
			continue
		}
		countryID := "country_" + normalizeID(m.CountryName)
		if !countriesAdded[countryID] {
			s.AddNode(countryID, graph.CountryAttrs{Nombre: m.CountryName})
			countriesAdded[countryID] = true
		}
		s.AddEdge(circuitID, countryID, "esta_en", nil)
	}
}

// officialCircuitName derives a display name from the short name. A couple
// of circuits have well-known official names that don't follow the pattern.
func officialCircuitName(shortName string) string {
	switch {
	case strings.Contains(shortName, "Monaco"):
		return "Circuit de Monaco"
	case strings.Contains(shortName, "Silverstone"):
		return "Silverstone Circuit"
	default:
		return shortName + " Circuit"
	}
}

func populateSessions(s *graph.Store, sessions []openf1.Session) {
	for _, sess := range sessions {
		if sess.SessionKey == 0 {
			continue
		}
		year := sess.Year
		if year == 0 {
			year = 2024
		}
		s.AddNode(fmt.Sprintf("session_%d", sess.SessionKey), graph.SessionAttrs{
			SessionKey:  sess.SessionKey,
			Tipo:        sessionCategory(sess.SessionName),
			Fecha:       sessionDate(sess.DateStart),
			SessionName: sess.SessionName,
			Year:        year,
			Location:    sess.Location,
			CircuitKey:  sess.CircuitKey,
		})
		if sess.CircuitKey != 0 {
			s.AddEdge(fmt.Sprintf("session_%d", sess.SessionKey), fmt.Sprintf("circuit_%d", sess.CircuitKey), "ocurre_en", nil)
		}
	}
}

// sessionCategory buckets a session name into R (race), Q (qualifying) or
// P (practice).
func sessionCategory(name string) string {
	switch {
	case strings.Contains(name, "Race") || strings.Contains(name, "Sprint"):
		return "R"
	case strings.Contains(name, "Qualifying"):
		return "Q"
	default:
		return "P"
	}
}

func sessionDate(dateStart string) string {
	if idx := strings.IndexByte(dateStart, 'T'); idx != -1 {
		return dateStart[:idx]
	}
	return dateStart
}

// populateDrivers fetches entry lists for a sample of sessions concurrently
// and adds each driver once. A failed fetch degrades that session to an
// empty list; the rest of the build continues. Returns the distinct team
// names seen, in discovery order.
func populateDrivers(ctx context.Context, s *graph.Store, client Client, sessions []openf1.Session, log *slog.Logger) []string {
	sample := sessions
	if len(sample) > driverSessionSample {
		sample = sample[:driverSessionSample]
	}
	keys := fn.FilterMap(sample, func(sess openf1.Session) (int, bool) {
		return sess.SessionKey, sess.SessionKey != 0
	})

	results := fn.ParMapResult(keys, driverFetchWorkers, func(key int) fn.Result[[]openf1.Driver] {
		return client.Drivers(ctx, key)
	})

	added := map[string]bool{}
	var teamNames []string
	teamsSeen := map[string]bool{}

	for i, r := range results {
		drivers, err := r.Unwrap()
		if err != nil {
			log.Warn("driver fetch failed, skipping session", "session_key", keys[i], "error", err)
			continue
		}
		for _, d := range drivers {
			if d.DriverNumber == 0 || d.FullName == "" {
				continue
			}
			driverID := fmt.Sprintf("driver_%d", d.DriverNumber)
			if added[driverID] {
				continue
			}
			nationality := d.CountryCode
			if full, ok := countryNames[d.CountryCode]; ok {
				nationality = full
			}
			s.AddNode(driverID, graph.DriverAttrs{
				Nombre:       d.FullName,
				NumeroPiloto: d.DriverNumber,
				Nacionalidad: nationality,
				NameAcronym:  d.NameAcronym,
				TeamName:     d.TeamName,
				CountryCode:  d.CountryCode,
			})
			added[driverID] = true

			if d.TeamName != "" && !teamsSeen[d.TeamName] {
				teamsSeen[d.TeamName] = true
				teamNames = append(teamNames, d.TeamName)
			}
		}
	}
	return teamNames
}

func populateTeams(s *graph.Store, teamNames []string) {
	for _, name := range teamNames {
		s.AddNode("team_"+normalizeID(name), graph.TeamAttrs{
			NombreEquipo: name,
			JefeEquipo:   teamPrincipals[strings.ToLower(name)],
		})
	}
}

func populateEngines(s *graph.Store) {
	for _, e := range engineCatalog {
		s.AddNode("engine_"+normalizeID(e.Fabricante), e)
	}
}

func populateEventTypes(s *graph.Store) {
	for _, t := range eventTypeCatalog {
		s.AddNode(t.id, t.attrs)
	}
}

// linkRelationships wires driver→team, team→engine and session→category
// edges once every node exists.
func linkRelationships(s *graph.Store, sessions []openf1.Session, teamNames []string, year int) {
	for _, d := range s.FindNodesByType(graph.TypeDriver, nil) {
		teamName, _ := d.Attributes["team_name"].(string)
		if teamName == "" {
			continue
		}
		s.AddEdge(d.ID, "team_"+normalizeID(teamName), "conduce_para", map[string]any{"season": year})
	}

	for _, name := range teamNames {
		engine := teamEngines[strings.ToLower(name)]
		if engine == "" {
			continue
		}
		s.AddEdge("team_"+normalizeID(name), "engine_"+normalizeID(engine), "usa_motor", nil)
	}

	categoryNodes := map[string]string{"R": "tipo_race", "Q": "tipo_qualifying", "P": "tipo_practice"}
	for _, sess := range sessions {
		if sess.SessionKey == 0 {
			continue
		}
		typeID, ok := categoryNodes[sessionCategory(sess.SessionName)]
		if !ok {
			typeID = "tipo_practice"
		}
		s.AddEdge(fmt.Sprintf("session_%d", sess.SessionKey), typeID, "es_un_tipo_de", nil)
	}
}
