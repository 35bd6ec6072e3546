package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/eigenlog/eigenlog/internal/httpapi/handler"
	"github.com/eigenlog/eigenlog/internal/storage"
)

// RouterConfig configures the routed handler set.
type RouterConfig struct {
	Engine    storage.Engine
	Allowlist *Allowlist
	Logger    *slog.Logger

	// SubmitRateLimit is the global requests/second cap on the submit
	// endpoint; zero disables rate limiting.
	SubmitRateLimit float64
}

// NewRouter wires the submit/query/detail/info endpoints behind the
// RequestID -> Recover -> AccessLog -> APIKeyAuth middleware chain.
func NewRouter(cfg RouterConfig) http.Handler {
	h := handler.New(cfg.Engine, cfg.Logger)

	base := []Middleware{RequestID(), Recover(cfg.Logger), AccessLog(cfg.Logger), APIKeyAuth(cfg.Allowlist)}

	submitChain := base
	if cfg.SubmitRateLimit > 0 {
		submitChain = append(submitChain, RateLimit(cfg.SubmitRateLimit, int(cfg.SubmitRateLimit)))
	}

	mux := http.NewServeMux()
	mux.Handle("POST /log/submit/{host}/{app}/{severity}", Chain(http.HandlerFunc(h.Submit), submitChain...))
	mux.Handle("GET /log/query", Chain(http.HandlerFunc(h.Query), base...))
	mux.Handle("GET /log/detail/{host}/{app}/{severity}", Chain(http.HandlerFunc(h.Detail), base...))
	mux.Handle("GET /log/info", Chain(http.HandlerFunc(h.Info), base...))
	mux.Handle("GET /health", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	mux.Handle("GET /metrics", promhttp.Handler())

	return mux
}
