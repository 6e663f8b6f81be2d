// Package nlp classifies Spanish questions about motor racing and extracts
// entity mentions using regex rule tables and approximate string matching.
// It never touches the graph; input is the question text plus static
// reference tables.
package nlp

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// QueryType tags the kind of question detected.
type QueryType string

const (
	QueryPilotInfo   QueryType = "pilot_info"
	QueryTeamInfo    QueryType = "team_info"
	QueryWinnerInfo  QueryType = "winner_info"
	QueryMotorInfo   QueryType = "motor_info"
	QueryCircuitInfo QueryType = "circuit_info"
	QuerySessionInfo QueryType = "session_info"
	QueryGeneral     QueryType = "general"
)

// Action identifies the resolution routine a query type maps to.
type Action string

const (
	ActionPilotDetails    Action = "get_pilot_details"
	ActionTeamOfPilot     Action = "get_team_of_pilot"
	ActionRaceWinner      Action = "get_race_winner"
	ActionTeamEngine      Action = "get_team_engine"
	ActionCircuitLocation Action = "get_circuit_location"
	ActionSessionDetails  Action = "get_session_details"
	ActionGeneralSearch   Action = "general_search"
)

var actionByType = map[QueryType]Action{
	QueryPilotInfo:   ActionPilotDetails,
	QueryTeamInfo:    ActionTeamOfPilot,
	QueryWinnerInfo:  ActionRaceWinner,
	QueryMotorInfo:   ActionTeamEngine,
	QueryCircuitInfo: ActionCircuitLocation,
	QuerySessionInfo: ActionSessionDetails,
	QueryGeneral:     ActionGeneralSearch,
}

// Entities holds the entity mentions extracted from a question, by category.
type Entities struct {
	Drivers  []string `json:"drivers"`
	Teams    []string `json:"teams"`
	Circuits []string `json:"circuits"`
	Years    []string `json:"years"`
	Numbers  []string `json:"numbers"`
}

// Filters are the scalar constraints derived from extracted entities.
// Zero means absent.
type Filters struct {
	Year   int `json:"year,omitempty"`
	Number int `json:"number,omitempty"`
}

// Intent is the classified, entity-annotated form of a question. It lives
// for one request only.
type Intent struct {
	Type     QueryType `json:"type"`
	Entities Entities  `json:"entities"`
	Filters  Filters   `json:"filters"`
	Action   Action    `json:"action"`
	Question string    `json:"original_question"`
}

// classifyRules is the ordered rule table. Evaluation order is part of the
// contract: the first rule set with any matching pattern wins, which is the
// tie-break for overlapping patterns. Do not reorder.
var classifyRules = []struct {
	queryType QueryType
	patterns  []*regexp.Regexp
}{
	{QueryPilotInfo, compileAll(
		`(?:quién es|quien es|quíen es|dime (?:sobre|quién es)|información (?:sobre|de)|háblame (?:de|sobre))\s+[A-ZÁÉÍÓÚÑ][a-záéíóúñ]+(?:\s+[A-ZÁÉÍÓÚÑ][a-záéíóúñ]+)*`,
		`(?:qué|que) piloto.*(?:número|numero)\s+\d+`,
		`piloto.*(?:número|numero)\s+\d+`,
		`datos.*piloto\s+[A-ZÁÉÍÓÚÑ][a-záéíóúñ]+(?:\s+[A-ZÁÉÍÓÚÑ][a-záéíóúñ]+)*`,
	)},
	{QueryTeamInfo, compileAll(
		`(?:para qué|para que|en qué|en que)\s+equipo.*(?:corre|conduce|está|esta|pilota)\s+[A-ZÁÉÍÓÚÑ][a-záéíóúñ]+(?:\s+[A-ZÁÉÍÓÚÑ][a-záéíóúñ]+)*`,
		`(?:qué|que)\s+equipo.*[A-ZÁÉÍÓÚÑ][a-záéíóúñ]+(?:\s+[A-ZÁÉÍÓÚÑ][a-záéíóúñ]+)*`,
		`equipo\s+de\s+[A-ZÁÉÍÓÚÑ][a-záéíóúñ]+(?:\s+[A-ZÁÉÍÓÚÑ][a-záéíóúñ]+)*`,
		`(?:qué|que|cuál|cual).*(?:escudería|escuderia).*[A-ZÁÉÍÓÚÑ][a-záéíóúñ]+`,
	)},
	{QueryWinnerInfo, compileAll(
		`(?:quién ganó|quien ganó|quíen gano|ganador (?:de|del))\s+(?:el\s+)?(?:GP|Gran Premio|gp)\s+(?:de\s+)?[A-ZÁÉÍÓÚÑ][a-záéíóúñ]+(?:\s+\d{4})?`,
		`(?:quién se llevó|quien se llevo).*(?:GP|Gran Premio)\s+(?:de\s+)?[A-ZÁÉÍÓÚÑ][a-záéíóúñ]+`,
		`resultado.*(?:GP|Gran Premio)\s+(?:de\s+)?[A-ZÁÉÍÓÚÑ][a-záéíóúñ]+(?:\s+\d{4})?`,
		`(?:quién triunfó|quien triunfo|quién venció|quien vencio).*[A-ZÁÉÍÓÚÑ][a-záéíóúñ]+`,
	)},
	{QueryMotorInfo, compileAll(
		`(?:qué|que)\s+motor\s+(?:usa|utiliza|tiene)\s+[A-ZÁÉÍÓÚÑ][a-záéíóúñ]+(?:\s+[A-ZÁÉÍÓÚÑ][a-záéíóúñ]+)*`,
		`motor\s+(?:de|del)\s+[A-ZÁÉÍÓÚÑ][a-záéíóúñ]+(?:\s+[A-ZÁÉÍÓÚÑ][a-záéíóúñ]+)*`,
		`(?:qué|que).*(?:fabricante|proveedor).*motor.*[A-ZÁÉÍÓÚÑ][a-záéíóúñ]+`,
		`(?:propulsor|unidad de potencia).*[A-ZÁÉÍÓÚÑ][a-záéíóúñ]+`,
	)},
	{QueryCircuitInfo, compileAll(
		`(?:dónde|donde)\s+(?:está|esta|queda|se encuentra).*circuito\s+(?:de\s+)?[A-ZÁÉÍÓÚÑ][a-záéíóúñ]+`,
		`(?:en qué país|en que pais).*circuito.*[A-ZÁÉÍÓÚÑ][a-záéíóúñ]+`,
		`ubicación.*circuito.*[A-ZÁÉÍÓÚÑ][a-záéíóúñ]+`,
		`circuito\s+(?:de|en)\s+[A-ZÁÉÍÓÚÑ][a-záéíóúñ]+`,
		`(?:pista|trazado)\s+(?:de\s+)?[A-ZÁÉÍÓÚÑ][a-záéíóúñ]+`,
	)},
	{QuerySessionInfo, compileAll(
		`(?:cuándo|cuando).*(?:GP|Gran Premio|carrera)\s+(?:de\s+)?[A-ZÁÉÍÓÚÑ][a-záéíóúñ]+`,
		`fecha.*(?:GP|Gran Premio).*[A-ZÁÉÍÓÚÑ][a-záéíóúñ]+`,
		`(?:qué|que)\s+sesión.*[A-ZÁÉÍÓÚÑ][a-záéíóúñ]+`,
	)},
}

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(`(?i)` + p)
	}
	return out
}

// Candidate extraction patterns operate on the raw (non-normalized) text.
var (
	capNameRe = regexp.MustCompile(`[A-ZÁÉÍÓÚÑ][a-záéíóúñ]+(?:\s+[A-ZÁÉÍÓÚÑ][a-záéíóúñ]+)*`)
	capPairRe = regexp.MustCompile(`[A-ZÁÉÍÓÚÑ][a-záéíóúñ]+(?:\s+[A-ZÁÉÍÓÚÑ][a-záéíóúñ]+)?`)
	capWordRe = regexp.MustCompile(`[A-ZÁÉÍÓÚÑ][a-záéíóúñ]+`)
	yearRe    = regexp.MustCompile(`\b20\d{2}\b`)
	numberRe  = regexp.MustCompile(`\b\d{1,2}\b`)
)

// Extractor turns raw question text into a classified Intent. It is
// stateless once constructed and safe for concurrent use.
type Extractor struct {
	lex Lexicon
	cfg Config

	// lookup keys in deterministic order, with normalized forms precomputed
	driverKeys  []string
	teamKeys    []string
	circuitKeys []string
	normKey     map[string]string
}

// New creates an Extractor over the given reference tables.
func New(lex Lexicon, cfg Config) *Extractor {
	e := &Extractor{lex: lex, cfg: cfg, normKey: make(map[string]string)}
	e.driverKeys = sortedKeys(lex.Drivers)
	e.teamKeys = sortedKeys(lex.Teams)
	e.circuitKeys = sortedKeys(lex.Circuits)
	for _, keys := range [][]string{e.driverKeys, e.teamKeys, e.circuitKeys} {
		for _, k := range keys {
			e.normKey[k] = Normalize(k)
		}
	}
	return e
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Classify detects the query type of a question. No rule match yields
// QueryGeneral; malformed input never errors.
func (e *Extractor) Classify(question string) QueryType {
	for _, rs := range classifyRules {
		for _, p := range rs.patterns {
			if p.MatchString(question) {
				return rs.queryType
			}
		}
	}
	return QueryGeneral
}

// ExtractEntities pulls driver, team, circuit, year and number mentions out
// of a question. Each category tries exact normalized containment first and
// falls back to fuzzy matching of capitalized candidates only when the
// category had zero exact hits.
func (e *Extractor) ExtractEntities(question string) Entities {
	normalized := Normalize(question)
	var ents Entities

	for _, key := range e.driverKeys {
		if strings.Contains(normalized, e.normKey[key]) {
			ents.Drivers = appendUnique(ents.Drivers, e.lex.Drivers[key].Name)
		}
	}
	if len(ents.Drivers) == 0 {
		for _, cand := range capNameRe.FindAllString(question, -1) {
			if key, ok := e.fuzzyMatch(cand, e.driverKeys, e.cfg.DriverThreshold); ok {
				ents.Drivers = appendUnique(ents.Drivers, e.lex.Drivers[key].Name)
			}
		}
	}

	for _, key := range e.teamKeys {
		if strings.Contains(normalized, e.normKey[key]) {
			ents.Teams = appendUnique(ents.Teams, e.lex.Teams[key])
		}
	}
	if len(ents.Teams) == 0 {
		for _, cand := range capPairRe.FindAllString(question, -1) {
			if utf8.RuneCountInString(cand) < e.cfg.MinTeamCandidate {
				continue
			}
			if key, ok := e.fuzzyMatch(cand, e.teamKeys, e.cfg.TeamThreshold); ok {
				ents.Teams = appendUnique(ents.Teams, e.lex.Teams[key])
			}
		}
	}

	for _, key := range e.circuitKeys {
		if strings.Contains(normalized, e.normKey[key]) {
			ents.Circuits = appendUnique(ents.Circuits, e.lex.Circuits[key].Name)
		}
	}
	if len(ents.Circuits) == 0 {
		for _, cand := range capWordRe.FindAllString(question, -1) {
			if key, ok := e.fuzzyMatch(cand, e.circuitKeys, e.cfg.CircuitThreshold); ok {
				ents.Circuits = appendUnique(ents.Circuits, e.lex.Circuits[key].Name)
			}
		}
	}

	ents.Years = yearRe.FindAllString(question, -1)
	ents.Numbers = numberRe.FindAllString(question, -1)
	return ents
}

// ExtractIntent composes classification and entity extraction into the
// Intent consumed by the resolver.
func (e *Extractor) ExtractIntent(question string) Intent {
	queryType := e.Classify(question)
	ents := e.ExtractEntities(question)

	var filters Filters
	if len(ents.Years) > 0 {
		filters.Year, _ = strconv.Atoi(ents.Years[0])
	}
	if len(ents.Numbers) > 0 {
		filters.Number, _ = strconv.Atoi(ents.Numbers[0])
	}

	action, ok := actionByType[queryType]
	if !ok {
		action = ActionGeneralSearch
	}

	return Intent{
		Type:     queryType,
		Entities: ents,
		Filters:  filters,
		Action:   action,
		Question: question,
	}
}

// fuzzyMatch finds the reference key most similar to text. A key is accepted
// only when its score strictly exceeds the threshold; containment in either
// direction floors the score at cfg.ContainmentFloor first.
func (e *Extractor) fuzzyMatch(text string, keys []string, threshold float64) (string, bool) {
	normalized := Normalize(text)
	best := threshold
	bestKey := ""
	for _, key := range keys {
		k := e.normKey[key]
		score := similarity(normalized, k)
		if strings.Contains(k, normalized) || strings.Contains(normalized, k) {
			if score < e.cfg.ContainmentFloor {
				score = e.cfg.ContainmentFloor
			}
		}
		if score > best {
			best = score
			bestKey = key
		}
	}
	return bestKey, bestKey != ""
}

// similarity is a normalized Levenshtein ratio in [0,1].
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	la, lb := len([]rune(a)), len([]rune(b))
	longest := la
	if lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 1
	}
	dist := fuzzy.LevenshteinDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}
