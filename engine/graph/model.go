// Package graph implements the in-memory fact graph: an attributed directed
// multigraph with a secondary type index and neighborhood exploration.
package graph

// NodeType tags a node with its entity kind. The tag values double as the
// attribute vocabulary of the data source, so they stay in Spanish.
type NodeType string

const (
	TypeDriver    NodeType = "piloto"
	TypeTeam      NodeType = "equipo"
	TypeEngine    NodeType = "motor"
	TypeCircuit   NodeType = "circuito"
	TypeSession   NodeType = "sesion"
	TypeCountry   NodeType = "pais"
	TypeEventType NodeType = "tipo_evento"
)

// Direction selects which edges QueryByRelation follows.
type Direction string

const (
	Outgoing Direction = "outgoing"
	Incoming Direction = "incoming"
)

// Attrs is the tagged attribute record attached to a node. One concrete
// record type exists per NodeType; Fields projects the record into the
// key/value form used by filters and API responses.
type Attrs interface {
	NodeType() NodeType
	Fields() map[string]any
}

// DriverAttrs describes a driver node.
type DriverAttrs struct {
	Nombre       string
	NumeroPiloto int
	Nacionalidad string
	NameAcronym  string
	TeamName     string
	CountryCode  string
}

func (DriverAttrs) NodeType() NodeType { return TypeDriver }

func (a DriverAttrs) Fields() map[string]any {
	return map[string]any{
		"nombre":        a.Nombre,
		"numero_piloto": a.NumeroPiloto,
		"nacionalidad":  a.Nacionalidad,
		"driver_number": a.NumeroPiloto,
		"name_acronym":  a.NameAcronym,
		"team_name":     a.TeamName,
		"country_code":  a.CountryCode,
	}
}

// TeamAttrs describes a team node.
type TeamAttrs struct {
	NombreEquipo string
	JefeEquipo   string
}

func (TeamAttrs) NodeType() NodeType { return TypeTeam }

func (a TeamAttrs) Fields() map[string]any {
	return map[string]any{
		"nombre_equipo": a.NombreEquipo,
		"jefe_equipo":   a.JefeEquipo,
		"team_name":     a.NombreEquipo,
	}
}

// EngineAttrs describes an engine manufacturer node.
type EngineAttrs struct {
	Fabricante           string
	ProveedorCombustible string
}

func (EngineAttrs) NodeType() NodeType { return TypeEngine }

func (a EngineAttrs) Fields() map[string]any {
	return map[string]any{
		"fabricante":            a.Fabricante,
		"proveedor_combustible": a.ProveedorCombustible,
	}
}

// CircuitAttrs describes a circuit node.
type CircuitAttrs struct {
	NombreOficial    string
	Pais             string
	LongitudMetros   float64
	CircuitKey       int
	CircuitShortName string
	Location         string
}

func (CircuitAttrs) NodeType() NodeType { return TypeCircuit }

func (a CircuitAttrs) Fields() map[string]any {
	return map[string]any{
		"nombre_oficial":     a.NombreOficial,
		"pais":               a.Pais,
		"longitud_metros":    a.LongitudMetros,
		"circuit_key":        a.CircuitKey,
		"circuit_short_name": a.CircuitShortName,
		"location":           a.Location,
	}
}

// SessionAttrs describes a race-weekend session node.
type SessionAttrs struct {
	SessionKey  int
	Tipo        string // R, Q or P
	Fecha       string
	SessionName string
	Year        int
	Location    string
	CircuitKey  int
}

func (SessionAttrs) NodeType() NodeType { return TypeSession }

func (a SessionAttrs) Fields() map[string]any {
	return map[string]any{
		"session_key":  a.SessionKey,
		"tipo":         a.Tipo,
		"fecha":        a.Fecha,
		"session_name": a.SessionName,
		"year":         a.Year,
		"location":     a.Location,
		"circuit_key":  a.CircuitKey,
	}
}

// CountryAttrs describes a country node.
type CountryAttrs struct {
	Nombre string
	Codigo string
}

func (CountryAttrs) NodeType() NodeType { return TypeCountry }

func (a CountryAttrs) Fields() map[string]any {
	return map[string]any{
		"nombre": a.Nombre,
		"codigo": a.Codigo,
	}
}

// EventTypeAttrs describes a session-category node (race, qualifying, practice).
type EventTypeAttrs struct {
	Nombre      string
	Descripcion string
}

func (EventTypeAttrs) NodeType() NodeType { return TypeEventType }

func (a EventTypeAttrs) Fields() map[string]any {
	return map[string]any{
		"nombre":      a.Nombre,
		"descripcion": a.Descripcion,
	}
}

// Details is the full record returned for a node: its attributes plus both
// edge lists.
type Details struct {
	ID         string         `json:"id"`
	Type       NodeType       `json:"type"`
	Attributes map[string]any `json:"attributes"`
	Outgoing   []OutgoingEdge `json:"outgoing_relations"`
	Incoming   []IncomingEdge `json:"incoming_relations"`
}

// OutgoingEdge is an edge leaving the node.
type OutgoingEdge struct {
	Target     string         `json:"target"`
	Relation   string         `json:"relation"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// IncomingEdge is an edge arriving at the node.
type IncomingEdge struct {
	Source     string         `json:"source"`
	Relation   string         `json:"relation"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// Stats summarizes the graph contents.
type Stats struct {
	TotalNodes  int              `json:"total_nodes"`
	TotalEdges  int              `json:"total_edges"`
	NodesByType map[NodeType]int `json:"nodes_by_type"`
}
