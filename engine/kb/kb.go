package kb

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/pitwall-ai/pitwall/engine/graph"
	"github.com/pitwall-ai/pitwall/engine/openf1"
	"github.com/pitwall-ai/pitwall/pkg/fn"
)

// Client is the slice of the OpenF1 API the loader needs.
type Client interface {
	Meetings(ctx context.Context, year int) fn.Result[[]openf1.Meeting]
	Sessions(ctx context.Context, year int, sessionName string) fn.Result[[]openf1.Session]
	Drivers(ctx context.Context, sessionKey int) fn.Result[[]openf1.Driver]
}

// KnowledgeBase owns the live fact graph. Graph is lock-free for readers;
// Load builds a complete replacement store before swapping it in, and a
// failed load leaves the previous graph untouched.
type KnowledgeBase struct {
	client Client
	log    *slog.Logger

	store  atomic.Pointer[graph.Store]
	loaded atomic.Bool
	mu     sync.Mutex // serializes concurrent loads
}

// New creates a KnowledgeBase seeded with an empty graph.
func New(client Client, log *slog.Logger) *KnowledgeBase {
	if log == nil {
		log = slog.Default()
	}
	kb := &KnowledgeBase{client: client, log: log}
	kb.store.Store(graph.New(log))
	return kb
}

// Graph returns the current store. The returned store is immutable; callers
// may hold it across a reload and simply see stale data.
func (kb *KnowledgeBase) Graph() *graph.Store {
	return kb.store.Load()
}

// Loaded reports whether at least one load has completed.
func (kb *KnowledgeBase) Loaded() bool {
	return kb.loaded.Load()
}

// Load fetches one season and atomically replaces the live graph.
func (kb *KnowledgeBase) Load(ctx context.Context, year int) error {
	kb.mu.Lock()
	defer kb.mu.Unlock()

	kb.log.Info("loading knowledge base", "year", year)
	s, err := build(ctx, kb.client, year, kb.log)
	if err != nil {
		kb.log.Error("knowledge base load failed", "year", year, "error", err)
		return err
	}

	kb.store.Store(s)
	kb.loaded.Store(true)
	return nil
}
