package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/igorsilveira/faqbot/pkg/chatapi"
	"github.com/igorsilveira/faqbot/pkg/faq"
	"github.com/igorsilveira/faqbot/pkg/store"
	"github.com/igorsilveira/faqbot/pkg/telemetry"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Engine answers questions. *faq.Bot is the production implementation.
type Engine interface {
	Respond(question string) faq.Response
	FAQs() []faq.FAQ
}

type Gateway struct {
	server    *http.Server
	router    *chi.Mux
	mu        sync.RWMutex
	engine    Engine
	queryLog  *store.QueryLog
	logger    *slog.Logger
	authToken string
}

type Config struct {
	Bind   string
	Port   int
	Engine Engine
	// QueryLog is optional; when nil answered questions are not recorded.
	QueryLog  *store.QueryLog
	Logger    *slog.Logger
	AuthToken string
}

func New(cfg Config) *Gateway {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(metricsMiddleware)

	g := &Gateway{
		router:    r,
		engine:    cfg.Engine,
		queryLog:  cfg.QueryLog,
		logger:    cfg.Logger,
		authToken: cfg.AuthToken,
	}

	g.registerRoutes()

	g.server = &http.Server{
		Addr:              resolveAddr(cfg.Bind, cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return g
}

func (g *Gateway) registerRoutes() {
	g.router.Get("/healthz", g.handleHealthz)
	g.router.Get("/readyz", g.handleReadyz)
	g.router.Handle("/metrics", promhttp.Handler())

	g.router.Get("/", g.handleWidgetPage)
	g.router.Handle("/static/*", http.StripPrefix("/static/", staticHandler()))

	g.router.Route("/api", func(r chi.Router) {
		r.Post("/chat", g.handleChat)
		r.Get("/health", g.handleHealth)
		r.Get("/ws", g.handleWebSocket)
		r.Group(func(r chi.Router) {
			if g.authToken != "" {
				r.Use(g.authMiddleware)
			}
			r.Get("/faqs", g.handleFAQs)
		})
	})
}

func (g *Gateway) Handler() http.Handler { return g.router }

// Engine returns the engine currently answering questions, or nil.
func (g *Gateway) Engine() Engine {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.engine
}

// SetEngine swaps the engine for subsequent requests. In-flight requests
// finish on the engine they started with.
func (g *Gateway) SetEngine(e Engine) {
	g.mu.Lock()
	g.engine = e
	g.mu.Unlock()
}

func (g *Gateway) Start(ctx context.Context) error {
	logger := telemetry.FromContext(ctx)
	logger.Info("gateway listening", slog.String("addr", g.server.Addr))

	ln, err := net.Listen("tcp", g.server.Addr)
	if err != nil {
		return fmt.Errorf("gateway listen: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		if err := g.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		return g.shutdown()
	case err := <-errCh:
		return err
	}
}

func (g *Gateway) shutdown() error {
	g.logger.Info("gateway shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return g.server.Shutdown(ctx)
}

func (g *Gateway) handleHealthz(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (g *Gateway) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if g.Engine() == nil {
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "no faq index loaded"})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (g *Gateway) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if token == "" || token == header || token != g.authToken {
			respondError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		telemetry.Metrics.HTTPRequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		telemetry.Metrics.HTTPRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Warn("failed to encode response", slog.String("err", err.Error()))
	}
}

// respondError writes the {"detail": ...} body the chat widget reads.
func respondError(w http.ResponseWriter, status int, detail string) {
	respondJSON(w, status, chatapi.ErrorResponse{Detail: detail})
}

func resolveAddr(bind string, port int) string {
	var host string
	switch bind {
	case "lan", "all":
		host = "0.0.0.0"
	case "loopback", "":
		host = "127.0.0.1"
	default:
		host = bind
	}
	return fmt.Sprintf("%s:%d", host, port)
}
