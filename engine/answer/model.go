// Package answer resolves classified questions against the fact graph and
// renders Spanish natural-language answers with a confidence score.
package answer

// Entity is a compact reference to a graph node mentioned in an answer.
type Entity struct {
	Type string `json:"type"`
	Name string `json:"name"`
	ID   string `json:"id"`
}

// Answer is the full response to one question.
type Answer struct {
	Answer          string         `json:"answer"`
	Confidence      float64        `json:"confidence"`
	RelatedEntities []Entity       `json:"related_entities"`
	QueryType       string         `json:"query_type"`
	Metadata        map[string]any `json:"metadata"`
}
