package kb

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/pitwall-ai/pitwall/pkg/natsutil"
)

// NATS subjects for knowledge base coordination.
const (
	SubjectReloaded = "pitwall.kb.reloaded"
	SubjectReload   = "pitwall.kb.reload"
)

// ReloadEvent announces a completed load to interested services.
type ReloadEvent struct {
	ID         string    `json:"id"`
	Year       int       `json:"year"`
	TotalNodes int       `json:"total_nodes"`
	TotalEdges int       `json:"total_edges"`
	LoadedAt   time.Time `json:"loaded_at"`
}

// ReloadCommand asks the service to reload a season. Zero year means the
// receiver's default.
type ReloadCommand struct {
	Year int `json:"year"`
}

// Notifier publishes reload events and consumes reload commands over NATS.
type Notifier struct {
	nc  *nats.Conn
	kb  *KnowledgeBase
	log *slog.Logger
}

// NewNotifier wires a KnowledgeBase to a NATS connection.
func NewNotifier(nc *nats.Conn, kb *KnowledgeBase, log *slog.Logger) *Notifier {
	if log == nil {
		log = slog.Default()
	}
	return &Notifier{nc: nc, kb: kb, log: log}
}

// PublishReloaded announces the current graph contents after a load.
func (n *Notifier) PublishReloaded(ctx context.Context, year int) error {
	stats := n.kb.Graph().Stats()
	event := ReloadEvent{
		ID:         uuid.NewString(),
		Year:       year,
		TotalNodes: stats.TotalNodes,
		TotalEdges: stats.TotalEdges,
		LoadedAt:   time.Now().UTC(),
	}
	return natsutil.Publish(ctx, n.nc, SubjectReloaded, event)
}

// ListenReloadCommands subscribes to reload commands. Each command triggers
// a load with defaultYear as fallback, followed by a reloaded event.
func (n *Notifier) ListenReloadCommands(defaultYear int) (*nats.Subscription, error) {
	return natsutil.Subscribe(n.nc, SubjectReload, func(ctx context.Context, cmd ReloadCommand) {
		year := cmd.Year
		if year == 0 {
			year = defaultYear
		}
		if err := n.kb.Load(ctx, year); err != nil {
			n.log.Error("commanded reload failed", "year", year, "error", err)
			return
		}
		if err := n.PublishReloaded(ctx, year); err != nil {
			n.log.Warn("reload event publish failed", "error", err)
		}
	})
}
