package httpapi

import (
	"net/http"

	"go.uber.org/zap"
)

// Router wraps http.ServeMux. Every route registered through Handle is
// measured under its pattern.
type Router struct {
	mux     *http.ServeMux
	metrics *Metrics
	logger  *zap.Logger
}

func NewRouter(metrics *Metrics, logger *zap.Logger) *Router {
	return &Router{
		mux:     http.NewServeMux(),
		metrics: metrics,
		logger:  logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.HandleHandler(pattern, h)
}

// HandleHandler registers any http.Handler (promhttp and friends).
func (r *Router) HandleHandler(pattern string, h http.Handler) {
	if r.metrics != nil {
		h = r.metrics.Instrument(pattern, h)
	}
	r.mux.Handle(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// RegisterHealthRoutes GET / and GET /health
func (r *Router) RegisterHealthRoutes(h *HealthHandler) {
	r.Handle("/", h.ServeHTTP)
	r.Handle("/health", h.Health)
}

// RegisterPlanRoutes plans, their rooms and the room export
func (r *Router) RegisterPlanRoutes(h *PlansHandler) {
	r.Handle("/plans", h.ServeHTTP)
	r.Handle("/plans/", h.ServeHTTP)
}

// RegisterRuleRoutes label lookup, table stats and reload
func (r *Router) RegisterRuleRoutes(h *RulesHandler) {
	r.Handle("/rules", h.ServeHTTP)
	r.Handle("/rules/", h.ServeHTTP)
}

// RegisterFileRoutes uploads
func (r *Router) RegisterFileRoutes(h *FilesHandler) {
	r.Handle("/files", h.ServeHTTP)
	r.Handle("/files/", h.ServeHTTP)
}

// RegisterJobRoutes parse jobs
func (r *Router) RegisterJobRoutes(h *JobsHandler) {
	r.Handle("/jobs", h.ServeHTTP)
	r.Handle("/jobs/", h.ServeHTTP)
}

// RegisterMetricsRoute GET /metrics
func (r *Router) RegisterMetricsRoute() {
	if r.metrics == nil {
		return
	}
	r.mux.Handle("/metrics", r.metrics.Handler())
}
