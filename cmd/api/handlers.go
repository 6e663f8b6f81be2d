package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/pitwall-ai/pitwall/engine/answer"
	"github.com/pitwall-ai/pitwall/engine/graph"
	"github.com/pitwall-ai/pitwall/engine/kb"
	"github.com/pitwall-ai/pitwall/pkg/fn"
	"github.com/pitwall-ai/pitwall/pkg/metrics"
	"github.com/pitwall-ai/pitwall/pkg/natsutil"
)

const apiVersion = "1.0.0"

// subjectAnswered carries answer telemetry for downstream consumers.
const subjectAnswered = "pitwall.qa.answered"

// server bundles the request handlers' dependencies. nc and notifier are
// nil when NATS is not configured.
type server struct {
	kb          *kb.KnowledgeBase
	resolver    *answer.Resolver
	reg         *metrics.Registry
	log         *slog.Logger
	nc          *nats.Conn
	notifier    *kb.Notifier
	defaultYear int
}

// entityTypes maps the URL's plural English segment to a node type.
var entityTypes = map[string]graph.NodeType{
	"drivers":   graph.TypeDriver,
	"teams":     graph.TypeTeam,
	"circuits":  graph.TypeCircuit,
	"sessions":  graph.TypeSession,
	"motors":    graph.TypeEngine,
	"countries": graph.TypeCountry,
}

func (s *server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/ask", s.handleAsk)
	mux.HandleFunc("GET /api/v1/health", s.handleHealth)
	mux.HandleFunc("GET /api/v1/entities/{type}", s.handleEntities)
	mux.HandleFunc("GET /api/v1/network/explore/{node_id}", s.handleExplore)
	mux.HandleFunc("POST /api/v1/reload", s.handleReload)
	mux.HandleFunc("GET /api/v1/stats", s.handleStats)
	mux.Handle("GET /metrics", s.reg.Handler())
	mux.HandleFunc("GET /{$}", s.handleIndex)
	return mux
}

// askRequest is the JSON body for POST /api/v1/ask.
type askRequest struct {
	Question string         `json:"question"`
	Context  map[string]any `json:"context,omitempty"`
}

// answeredEvent is the telemetry payload published after each answer.
type answeredEvent struct {
	ID         string    `json:"id"`
	QueryType  string    `json:"query_type"`
	Confidence float64   `json:"confidence"`
	AnsweredAt time.Time `json:"answered_at"`
}

func (s *server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "cuerpo de la petición inválido")
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeError(w, http.StatusBadRequest, "la pregunta no puede estar vacía")
		return
	}

	ans := s.resolver.Ask(r.Context(), req.Question)

	if s.nc != nil {
		event := answeredEvent{
			ID:         uuid.NewString(),
			QueryType:  ans.QueryType,
			Confidence: ans.Confidence,
			AnsweredAt: time.Now().UTC(),
		}
		if err := natsutil.Publish(r.Context(), s.nc, subjectAnswered, event); err != nil {
			s.log.Warn("answer telemetry publish failed", "error", err)
		}
	}

	writeJSON(w, http.StatusOK, ans)
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":                "healthy",
		"version":               apiVersion,
		"knowledge_base_loaded": s.kb.Loaded(),
	})
}

// entityRecord is the trimmed node view returned by the entities listing.
type entityRecord struct {
	ID         string         `json:"id"`
	Type       graph.NodeType `json:"type"`
	Attributes map[string]any `json:"attributes"`
}

func (s *server) handleEntities(w http.ResponseWriter, r *http.Request) {
	segment := strings.ToLower(r.PathValue("type"))
	nodeType, ok := entityTypes[segment]
	if !ok {
		writeError(w, http.StatusBadRequest, "tipo de entidad inválido: "+segment)
		return
	}

	filters := map[string]any{}
	if year := queryInt(r, "year", 0); year != 0 {
		filters["year"] = year
	}
	if name := r.URL.Query().Get("name"); name != "" {
		filters["nombre"] = name
	}
	if len(filters) == 0 {
		filters = nil
	}
	limit := queryInt(r, "limit", 50)

	nodes := s.kb.Graph().FindNodesByType(nodeType, filters)
	if limit > 0 && len(nodes) > limit {
		nodes = nodes[:limit]
	}
	if len(nodes) == 0 {
		writeError(w, http.StatusNotFound, "no se encontraron entidades de tipo "+segment)
		return
	}

	records := fn.Map(nodes, func(n graph.Details) entityRecord {
		return entityRecord{ID: n.ID, Type: n.Type, Attributes: n.Attributes}
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"entity_type": segment,
		"count":       len(records),
		"entities":    records,
	})
}

// maxExploreDepth caps neighborhood exploration regardless of the request.
const maxExploreDepth = 3

func (s *server) handleExplore(w http.ResponseWriter, r *http.Request) {
	nodeID := r.PathValue("node_id")
	g := s.kb.Graph()

	details, ok := g.NodeDetails(nodeID)
	if !ok {
		writeError(w, http.StatusNotFound, "nodo '"+nodeID+"' no encontrado")
		return
	}

	depth := queryInt(r, "depth", 2)
	if depth > maxExploreDepth {
		depth = maxExploreDepth
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"node_id":       nodeID,
		"node_type":     details.Type,
		"attributes":    details.Attributes,
		"related_nodes": g.RelatedEntities(nodeID, depth),
	})
}

func (s *server) handleReload(w http.ResponseWriter, r *http.Request) {
	year := queryInt(r, "year", s.defaultYear)

	if err := s.kb.Load(r.Context(), year); err != nil {
		s.log.Error("reload failed", "year", year, "error", err)
		writeError(w, http.StatusInternalServerError, "error al recargar la base de conocimiento")
		return
	}
	if s.notifier != nil {
		if err := s.notifier.PublishReloaded(r.Context(), year); err != nil {
			s.log.Warn("reload event publish failed", "error", err)
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"message": "base de conocimiento recargada para el año " + strconv.Itoa(year),
		"stats":   s.kb.Graph().Stats(),
	})
}

func (s *server) handleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":                "success",
		"stats":                 s.kb.Graph().Stats(),
		"knowledge_base_loaded": s.kb.Loaded(),
	})
}

func (s *server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Pitwall - sistema de preguntas y respuestas sobre Fórmula 1",
		"version": apiVersion,
		"health":  "/api/v1/health",
		"endpoints": map[string]string{
			"ask":      "/api/v1/ask",
			"entities": "/api/v1/entities/{type}",
			"explore":  "/api/v1/network/explore/{node_id}",
			"reload":   "/api/v1/reload",
			"stats":    "/api/v1/stats",
			"metrics":  "/metrics",
		},
	})
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"error": detail})
}
