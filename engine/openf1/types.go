package openf1

// Meeting is a race weekend record from the /meetings endpoint.
type Meeting struct {
	MeetingKey       int    `json:"meeting_key"`
	CircuitKey       int    `json:"circuit_key"`
	CircuitShortName string `json:"circuit_short_name"`
	CountryName      string `json:"country_name"`
	Location         string `json:"location"`
	Year             int    `json:"year"`
}

// Session is a single session record from the /sessions endpoint.
type Session struct {
	SessionKey  int    `json:"session_key"`
	SessionName string `json:"session_name"`
	SessionType string `json:"session_type"`
	DateStart   string `json:"date_start"`
	Year        int    `json:"year"`
	CircuitKey  int    `json:"circuit_key"`
	Location    string `json:"location"`
}

// Driver is a session entry record from the /drivers endpoint.
type Driver struct {
	DriverNumber int    `json:"driver_number"`
	FullName     string `json:"full_name"`
	NameAcronym  string `json:"name_acronym"`
	TeamName     string `json:"team_name"`
	CountryCode  string `json:"country_code"`
	SessionKey   int    `json:"session_key"`
}

// Position is a classification sample from the /position endpoint.
type Position struct {
	SessionKey   int    `json:"session_key"`
	DriverNumber int    `json:"driver_number"`
	Position     int    `json:"position"`
	Date         string `json:"date"`
}

// RaceControlMessage is a stewarding message from the /race_control endpoint.
type RaceControlMessage struct {
	SessionKey   int    `json:"session_key"`
	Date         string `json:"date"`
	Category     string `json:"category"`
	Flag         string `json:"flag"`
	Message      string `json:"message"`
	DriverNumber int    `json:"driver_number"`
}
