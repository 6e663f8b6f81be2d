package nlp

// DriverRef is a known driver entry: display name and car number.
type DriverRef struct {
	Name   string
	Number int
}

// CircuitRef is a known circuit entry: official name and host country.
type CircuitRef struct {
	Name    string
	Country string
}

// Lexicon holds the reference tables the extractor matches question text
// against. It is plain data so tests can swap in small synthetic tables.
type Lexicon struct {
	Drivers  map[string]DriverRef // lookup key -> driver
	Teams    map[string]string    // lookup key -> display name
	Circuits map[string]CircuitRef
}

// Config holds the tunable matching parameters. The thresholds and the
// containment floor are empirically chosen, not derived.
type Config struct {
	DriverThreshold  float64
	TeamThreshold    float64
	CircuitThreshold float64
	// ContainmentFloor is the minimum score assigned when one normalized
	// string contains the other.
	ContainmentFloor float64
	// MinTeamCandidate discards short capitalized words as team candidates;
	// they are almost always false positives.
	MinTeamCandidate int
}

// DefaultConfig returns the tuned matching parameters.
func DefaultConfig() Config {
	return Config{
		DriverThreshold:  0.70,
		TeamThreshold:    0.75,
		CircuitThreshold: 0.75,
		ContainmentFloor: 0.85,
		MinTeamCandidate: 4,
	}
}

// DefaultLexicon returns the reference tables for the current grid.
func DefaultLexicon() Lexicon {
	return Lexicon{
		Drivers: map[string]DriverRef{
			"max verstappen":   {Name: "Max Verstappen", Number: 1},
			"sergio perez":     {Name: "Sergio Pérez", Number: 11},
			"lewis hamilton":   {Name: "Lewis Hamilton", Number: 44},
			"george russell":   {Name: "George Russell", Number: 63},
			"charles leclerc":  {Name: "Charles Leclerc", Number: 16},
			"carlos sainz":     {Name: "Carlos Sainz", Number: 55},
			"lando norris":     {Name: "Lando Norris", Number: 4},
			"oscar piastri":    {Name: "Oscar Piastri", Number: 81},
			"fernando alonso":  {Name: "Fernando Alonso", Number: 14},
			"lance stroll":     {Name: "Lance Stroll", Number: 18},
			"pierre gasly":     {Name: "Pierre Gasly", Number: 10},
			"esteban ocon":     {Name: "Esteban Ocon", Number: 31},
			"valtteri bottas":  {Name: "Valtteri Bottas", Number: 77},
			"zhou guanyu":      {Name: "Zhou Guanyu", Number: 24},
			"kevin magnussen":  {Name: "Kevin Magnussen", Number: 20},
			"nico hulkenberg":  {Name: "Nico Hulkenberg", Number: 27},
			"yuki tsunoda":     {Name: "Yuki Tsunoda", Number: 22},
			"daniel ricciardo": {Name: "Daniel Ricciardo", Number: 3},
			"alexander albon":  {Name: "Alexander Albon", Number: 23},
			"logan sargeant":   {Name: "Logan Sargeant", Number: 2},
		},
		Teams: map[string]string{
			"red bull":     "Red Bull Racing",
			"redbull":      "Red Bull Racing",
			"mercedes":     "Mercedes-AMG Petronas",
			"ferrari":      "Scuderia Ferrari",
			"mclaren":      "McLaren Racing",
			"aston martin": "Aston Martin Aramco",
			"alpine":       "Alpine F1 Team",
			"williams":     "Williams Racing",
			"alphatauri":   "Scuderia AlphaTauri",
			"rb":           "RB F1 Team",
			"alfa romeo":   "Alfa Romeo F1 Team",
			"sauber":       "Alfa Romeo F1 Team",
			"haas":         "Haas F1 Team",
		},
		Circuits: map[string]CircuitRef{
			"bahrain":     {Name: "Bahrain International Circuit", Country: "Bahrain"},
			"jeddah":      {Name: "Jeddah Corniche Circuit", Country: "Saudi Arabia"},
			"melbourne":   {Name: "Albert Park Circuit", Country: "Australia"},
			"suzuka":      {Name: "Suzuka Circuit", Country: "Japan"},
			"shanghai":    {Name: "Shanghai International Circuit", Country: "China"},
			"miami":       {Name: "Miami International Autodrome", Country: "USA"},
			"imola":       {Name: "Autodromo Enzo e Dino Ferrari", Country: "Italy"},
			"monaco":      {Name: "Circuit de Monaco", Country: "Monaco"},
			"mónaco":      {Name: "Circuit de Monaco", Country: "Monaco"},
			"barcelona":   {Name: "Circuit de Barcelona-Catalunya", Country: "Spain"},
			"montreal":    {Name: "Circuit Gilles Villeneuve", Country: "Canada"},
			"silverstone": {Name: "Silverstone Circuit", Country: "United Kingdom"},
			"austria":     {Name: "Red Bull Ring", Country: "Austria"},
			"spielberg":   {Name: "Red Bull Ring", Country: "Austria"},
			"paul ricard": {Name: "Circuit Paul Ricard", Country: "France"},
			"hungaroring": {Name: "Hungaroring", Country: "Hungary"},
			"spa":         {Name: "Circuit de Spa-Francorchamps", Country: "Belgium"},
			"zandvoort":   {Name: "Circuit Zandvoort", Country: "Netherlands"},
			"monza":       {Name: "Autodromo Nazionale di Monza", Country: "Italy"},
			"singapore":   {Name: "Marina Bay Street Circuit", Country: "Singapore"},
			"austin":      {Name: "Circuit of the Americas", Country: "USA"},
			"mexico":      {Name: "Mexico City", Country: "Mexico"},
			"méxico":      {Name: "Mexico City", Country: "Mexico"},
			"mexico city": {Name: "Mexico City", Country: "Mexico"},
			"interlagos":  {Name: "Autódromo José Carlos Pace", Country: "Brazil"},
			"sao paulo":   {Name: "Autódromo José Carlos Pace", Country: "Brazil"},
			"las vegas":   {Name: "Las Vegas Street Circuit", Country: "USA"},
			"yas marina":  {Name: "Yas Marina Circuit", Country: "UAE"},
			"abu dhabi":   {Name: "Yas Marina Circuit", Country: "UAE"},
		},
	}
}
