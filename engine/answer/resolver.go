package answer

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/pitwall-ai/pitwall/engine/graph"
	"github.com/pitwall-ai/pitwall/engine/nlp"
	"github.com/pitwall-ai/pitwall/pkg/metrics"
)

// StoreProvider yields the current fact graph. The knowledge base implements
// it with an atomically swapped store, so a Resolver never holds a stale
// reference across reloads.
type StoreProvider interface {
	Graph() *graph.Store
}

// Resolver answers questions. Safe for concurrent use; answers are cached
// unbounded, keyed by the literal question text.
type Resolver struct {
	provider  StoreProvider
	extractor *nlp.Extractor
	log       *slog.Logger
	reg       *metrics.Registry

	cache sync.Map // question text -> Answer
}

// New creates a Resolver. reg may be nil to disable instrumentation.
func New(provider StoreProvider, extractor *nlp.Extractor, log *slog.Logger, reg *metrics.Registry) *Resolver {
	if log == nil {
		log = slog.Default()
	}
	return &Resolver{provider: provider, extractor: extractor, log: log, reg: reg}
}

// Ask resolves one question. It never returns an error: any panic in the
// resolution path degrades to a zero-confidence answer carrying the
// diagnostic in metadata.
func (r *Resolver) Ask(ctx context.Context, question string) (ans Answer) {
	if cached, ok := r.cache.Load(question); ok {
		r.countCacheHit()
		return cached.(Answer)
	}

	defer func() {
		if v := recover(); v != nil {
			r.log.ErrorContext(ctx, "question processing panicked", "question", question, "error", fmt.Sprintf("%v", v))
			ans = Answer{
				Answer:          "Lo siento, tuve un problema al procesar tu pregunta. Por favor, intenta reformularla.",
				Confidence:      0,
				RelatedEntities: []Entity{},
				QueryType:       "error",
				Metadata:        map[string]any{"error": fmt.Sprintf("%v", v)},
			}
		}
	}()

	r.log.InfoContext(ctx, "processing question", "question", question)

	intent := r.extractor.ExtractIntent(question)
	s := r.provider.Graph()

	var o outcome
	switch intent.Action {
	case nlp.ActionPilotDetails:
		o = r.queryPilot(s, intent.Entities, intent.Filters)
	case nlp.ActionTeamOfPilot:
		o = r.queryTeam(s, intent.Entities, intent.Filters)
	case nlp.ActionRaceWinner:
		o = r.queryWinner()
	case nlp.ActionTeamEngine:
		o = r.queryMotor(s, intent.Entities)
	case nlp.ActionCircuitLocation:
		o = r.queryCircuit(s, intent.Entities)
	case nlp.ActionSessionDetails:
		o = r.querySession(s, intent.Filters)
	default:
		o = r.queryGeneral(s, intent.Entities)
	}

	confidence := scoreConfidence(o)
	ans = Answer{
		Answer:          formatAnswer(o, intent.Type),
		Confidence:      confidence,
		RelatedEntities: o.related,
		QueryType:       string(intent.Type),
		Metadata:        o.metadata,
	}
	if ans.RelatedEntities == nil {
		ans.RelatedEntities = []Entity{}
	}
	if ans.Metadata == nil {
		ans.Metadata = map[string]any{}
	}

	// First writer wins; a racing duplicate computation is discarded.
	if prev, loaded := r.cache.LoadOrStore(question, ans); loaded {
		return prev.(Answer)
	}

	r.countQuestion(intent.Type, confidence)
	r.log.InfoContext(ctx, "answer generated", "query_type", intent.Type, "confidence", confidence)
	return ans
}

// scoreConfidence grades an outcome: 0.5 base, +0.3 when found, +0.1 per
// related entity up to two, +0.1 when metadata is present; clamped to 1.0
// and rounded to two decimals.
func scoreConfidence(o outcome) float64 {
	confidence := 0.5
	if o.found {
		confidence += 0.3
	}
	related := len(o.related)
	if related > 2 {
		related = 2
	}
	confidence += 0.1 * float64(related)
	if len(o.metadata) > 0 {
		confidence += 0.1
	}
	if confidence > 1.0 {
		confidence = 1.0
	}
	return math.Round(confidence*100) / 100
}

func (r *Resolver) countCacheHit() {
	if r.reg == nil {
		return
	}
	r.reg.Counter("answer_cache_hits_total", "Answers served from the question cache").Inc()
}

func (r *Resolver) countQuestion(queryType nlp.QueryType, confidence float64) {
	if r.reg == nil {
		return
	}
	name := metrics.WithLabels("questions_processed_total", "query_type", string(queryType))
	r.reg.Counter(name, "Questions processed by query type").Inc()
	r.reg.Histogram("answer_confidence", "Confidence score distribution", confidenceBuckets).Observe(confidence)
}

var confidenceBuckets = []float64{0.5, 0.6, 0.7, 0.8, 0.9, 1.0}
