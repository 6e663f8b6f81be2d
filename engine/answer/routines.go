package answer

import (
	"fmt"

	"github.com/pitwall-ai/pitwall/engine/graph"
	"github.com/pitwall-ai/pitwall/engine/nlp"
	"github.com/pitwall-ai/pitwall/pkg/fn"
)

// maxSessionsListed bounds the session list in a session answer; the total
// count is reported separately.
const maxSessionsListed = 10

// maxGeneralEntities bounds the related-entity summaries of a general answer.
const maxGeneralEntities = 5

// outcome is the intermediate result of one resolution routine, before
// formatting. A not-found outcome carries a ready user-facing message.
type outcome struct {
	found    bool
	message  string
	related  []Entity
	metadata map[string]any

	pilot    *graph.Details
	team     *graph.Details
	motor    *graph.Details
	circuit  *graph.Details
	country  *graph.Details
	sessions []graph.Details
	total    int
	entities []graph.Details
}

func (r *Resolver) queryPilot(s *graph.Store, ents nlp.Entities, filters nlp.Filters) outcome {
	var pilots []graph.Details
	switch {
	case len(ents.Drivers) > 0:
		pilots = s.FindNodesByType(graph.TypeDriver, map[string]any{"nombre": ents.Drivers[0]})
	case filters.Number != 0:
		pilots = s.FindNodesByType(graph.TypeDriver, map[string]any{"numero_piloto": filters.Number})
	}
	if len(pilots) == 0 {
		return outcome{message: "No se encontró información del piloto"}
	}
	pilot := pilots[0]

	teams := s.QueryByRelation(pilot.ID, "conduce_para", graph.Outgoing)
	teamName := "Desconocido"
	if len(teams) > 0 {
		teamName = attrString(teams[0].Attributes, "nombre_equipo")
	}

	related := []Entity{{Type: "piloto", Name: attrString(pilot.Attributes, "nombre"), ID: pilot.ID}}
	o := outcome{
		found:   true,
		pilot:   &pilot,
		related: related,
		metadata: map[string]any{
			"pilot_name":  attrString(pilot.Attributes, "nombre"),
			"team_name":   teamName,
			"nationality": attrString(pilot.Attributes, "nacionalidad"),
		},
	}
	if len(teams) > 0 {
		o.team = &teams[0]
		o.related = append(o.related, Entity{Type: "equipo", Name: teamName, ID: teams[0].ID})
	}
	return o
}

func (r *Resolver) queryTeam(s *graph.Store, ents nlp.Entities, filters nlp.Filters) outcome {
	pilotOutcome := r.queryPilot(s, ents, filters)
	if !pilotOutcome.found {
		return pilotOutcome
	}
	if pilotOutcome.team == nil {
		return outcome{
			message: "No se encontró el equipo del piloto",
			related: pilotOutcome.related,
		}
	}
	team := pilotOutcome.team

	motors := s.QueryByRelation(team.ID, "usa_motor", graph.Outgoing)
	motorName := "Desconocido"
	if len(motors) > 0 {
		motorName = attrString(motors[0].Attributes, "fabricante")
	}

	o := outcome{
		found:   true,
		pilot:   pilotOutcome.pilot,
		team:    team,
		related: pilotOutcome.related,
		metadata: map[string]any{
			"team_name":      attrString(team.Attributes, "nombre_equipo"),
			"team_principal": attrString(team.Attributes, "jefe_equipo"),
			"motor":          motorName,
		},
	}
	if len(motors) > 0 {
		o.motor = &motors[0]
	}
	return o
}

func (r *Resolver) queryMotor(s *graph.Store, ents nlp.Entities) outcome {
	if len(ents.Teams) == 0 {
		return outcome{message: "No se especificó un equipo"}
	}
	teamName := ents.Teams[0]

	teams := s.FindNodesByType(graph.TypeTeam, map[string]any{"nombre_equipo": teamName})
	if len(teams) == 0 {
		return outcome{message: fmt.Sprintf("No se encontró el equipo %s", teamName)}
	}
	team := teams[0]

	motors := s.QueryByRelation(team.ID, "usa_motor", graph.Outgoing)
	if len(motors) == 0 {
		return outcome{message: fmt.Sprintf("No se encontró información del motor de %s", teamName)}
	}
	motor := motors[0]

	return outcome{
		found: true,
		team:  &team,
		motor: &motor,
		related: []Entity{
			{Type: "equipo", Name: attrString(team.Attributes, "nombre_equipo"), ID: team.ID},
			{Type: "motor", Name: attrString(motor.Attributes, "fabricante"), ID: motor.ID},
		},
		metadata: map[string]any{
			"team_name":             attrString(team.Attributes, "nombre_equipo"),
			"motor_fabricante":      attrString(motor.Attributes, "fabricante"),
			"proveedor_combustible": attrString(motor.Attributes, "proveedor_combustible"),
		},
	}
}

func (r *Resolver) queryCircuit(s *graph.Store, ents nlp.Entities) outcome {
	if len(ents.Circuits) == 0 {
		return outcome{message: "No se especificó un circuito"}
	}
	circuitName := ents.Circuits[0]

	circuits := s.FindNodesByType(graph.TypeCircuit, map[string]any{"nombre_oficial": circuitName})
	if len(circuits) == 0 {
		circuits = s.FindNodesByType(graph.TypeCircuit, map[string]any{"circuit_short_name": circuitName})
	}
	if len(circuits) == 0 {
		return outcome{message: fmt.Sprintf("No se encontró el circuito %s", circuitName)}
	}
	circuit := circuits[0]

	countries := s.QueryByRelation(circuit.ID, "esta_en", graph.Outgoing)
	countryName := "Desconocido"
	if len(countries) > 0 {
		countryName = attrString(countries[0].Attributes, "nombre")
	}

	o := outcome{
		found:   true,
		circuit: &circuit,
		related: []Entity{{Type: "circuito", Name: attrString(circuit.Attributes, "nombre_oficial"), ID: circuit.ID}},
		metadata: map[string]any{
			"circuit_name": attrString(circuit.Attributes, "nombre_oficial"),
			"country":      countryName,
			"location":     attrString(circuit.Attributes, "location"),
		},
	}
	if len(countries) > 0 {
		o.country = &countries[0]
		o.related = append(o.related, Entity{Type: "pais", Name: countryName, ID: countries[0].ID})
	}
	return o
}

// queryWinner is a stub: the graph carries no race classification data, so
// winner questions get an honest not-supported message.
func (r *Resolver) queryWinner() outcome {
	return outcome{message: "La información de ganadores requiere datos adicionales de resultados"}
}

func (r *Resolver) querySession(s *graph.Store, filters nlp.Filters) outcome {
	sessions := s.FindNodesByType(graph.TypeSession, nil)
	if filters.Year != 0 {
		sessions = fn.Filter(sessions, func(d graph.Details) bool {
			year, ok := attrInt(d.Attributes, "year")
			return ok && year == filters.Year
		})
	}

	total := len(sessions)
	if len(sessions) > maxSessionsListed {
		sessions = sessions[:maxSessionsListed]
	}
	return outcome{
		found:    total > 0,
		sessions: sessions,
		total:    total,
		metadata: map[string]any{"year": filters.Year, "total_sessions": total},
	}
}

func (r *Resolver) queryGeneral(s *graph.Store, ents nlp.Entities) outcome {
	var all []graph.Details
	var o outcome

	for _, name := range ents.Drivers {
		pilots := s.FindNodesByType(graph.TypeDriver, map[string]any{"nombre": name})
		if len(pilots) == 0 {
			continue
		}
		pilot := pilots[0]
		all = append(all, pilot)
		o.pilot = &pilot

		teams := s.QueryByRelation(pilot.ID, "conduce_para", graph.Outgoing)
		if len(teams) > 0 {
			all = append(all, teams[0])
			o.team = &teams[0]
		}
	}
	for _, name := range ents.Teams {
		all = append(all, s.FindNodesByType(graph.TypeTeam, map[string]any{"nombre_equipo": name})...)
	}
	for _, name := range ents.Circuits {
		all = append(all, s.FindNodesByType(graph.TypeCircuit, map[string]any{"nombre_oficial": name})...)
	}

	for _, d := range all {
		if len(o.related) == maxGeneralEntities {
			break
		}
		o.related = append(o.related, Entity{Type: string(d.Type), Name: displayName(d), ID: d.ID})
	}

	o.found = len(all) > 0
	o.entities = all
	return o
}

// displayName picks the human-readable name attribute for a node's type.
func displayName(d graph.Details) string {
	var name string
	switch d.Type {
	case graph.TypeDriver:
		name = attrString(d.Attributes, "nombre")
	case graph.TypeTeam:
		name = attrString(d.Attributes, "nombre_equipo")
	case graph.TypeCircuit:
		name = attrString(d.Attributes, "nombre_oficial")
	default:
		return fmt.Sprintf("%v", d.Attributes)
	}
	if name == "" {
		return "Desconocido"
	}
	return name
}

func attrString(attrs map[string]any, key string) string {
	s, _ := attrs[key].(string)
	return s
}

func attrInt(attrs map[string]any, key string) (int, bool) {
	switch n := attrs[key].(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
