// Package main implements the Pitwall API server: a Spanish-language Q&A
// service over an in-memory Formula 1 fact graph fed by the OpenF1 API.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/pitwall-ai/pitwall/engine/answer"
	"github.com/pitwall-ai/pitwall/engine/kb"
	"github.com/pitwall-ai/pitwall/engine/nlp"
	"github.com/pitwall-ai/pitwall/engine/openf1"
	"github.com/pitwall-ai/pitwall/pkg/metrics"
	"github.com/pitwall-ai/pitwall/pkg/mid"
	"github.com/pitwall-ai/pitwall/pkg/resilience"
)

// Config holds all environment-based configuration.
type Config struct {
	Port       string
	OpenF1URL  string
	NATSURL    string
	CORSOrigin string
	LoadYear   int
	RateRPS    float64
	RateBurst  int
}

func loadConfig() Config {
	return Config{
		Port:       envOr("PORT", "8000"),
		OpenF1URL:  envOr("OPENF1_BASE_URL", openf1.DefaultBaseURL),
		NATSURL:    envOr("NATS_URL", ""),
		CORSOrigin: envOr("CORS_ORIGIN", "*"),
		LoadYear:   envIntOr("LOAD_YEAR", 2024),
		RateRPS:    float64(envIntOr("RATE_LIMIT_RPS", 50)),
		RateBurst:  envIntOr("RATE_LIMIT_BURST", 100),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := loadConfig()

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := metrics.New()

	// --- Knowledge base ---
	client := openf1.NewClient(cfg.OpenF1URL, logger)
	base := kb.New(client, logger)

	// A failed initial load is not fatal: the service starts with an empty
	// graph and POST /api/v1/reload (or a NATS reload command) retries it.
	if err := base.Load(ctx, cfg.LoadYear); err != nil {
		logger.Error("initial knowledge base load failed, serving empty graph", "year", cfg.LoadYear, "error", err)
	}

	// --- NATS (optional) ---
	var nc *nats.Conn
	var notifier *kb.Notifier
	if cfg.NATSURL != "" {
		conn, err := nats.Connect(cfg.NATSURL, nats.Name("pitwall-api"))
		if err != nil {
			logger.Error("nats connect failed, continuing without messaging", "url", cfg.NATSURL, "error", err)
		} else {
			defer conn.Drain()
			nc = conn
			notifier = kb.NewNotifier(nc, base, logger)
			if _, err := notifier.ListenReloadCommands(cfg.LoadYear); err != nil {
				logger.Error("reload command subscription failed", "error", err)
			}
		}
	}

	// --- Q&A pipeline ---
	extractor := nlp.New(nlp.DefaultLexicon(), nlp.DefaultConfig())
	resolver := answer.New(base, extractor, logger, reg)

	// --- HTTP server ---
	srv := &server{
		kb:          base,
		resolver:    resolver,
		reg:         reg,
		log:         logger,
		nc:          nc,
		notifier:    notifier,
		defaultYear: cfg.LoadYear,
	}

	limiter := resilience.NewLimiter(resilience.LimiterOpts{Rate: cfg.RateRPS, Burst: cfg.RateBurst})
	handler := mid.Chain(srv.routes(),
		mid.Recover(logger),
		mid.Logger(logger),
		mid.RequestID(),
		mid.CORS(cfg.CORSOrigin),
		mid.OTel("pitwall-api"),
		mid.RateLimit(limiter),
		mid.Metrics(reg),
	)

	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// --- Graceful shutdown ---
	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server starting", "port", cfg.Port)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutCtx)
}
