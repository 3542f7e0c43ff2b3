package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"loadmap/internal/rules"
	"loadmap/internal/service"

	"go.uber.org/zap"
)

// RulesHandler /rules, /rules/map and /rules/reload
type RulesHandler struct {
	rules  *service.RuleService
	logger *zap.Logger
}

func NewRulesHandler(rules *service.RuleService, logger *zap.Logger) *RulesHandler {
	return &RulesHandler{rules: rules, logger: logger}
}

func (h *RulesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch strings.TrimSuffix(r.URL.Path, "/") {
	case "/rules":
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w)
			return
		}
		writeJSON(w, http.StatusOK, h.rules.Stats())
	case "/rules/map":
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w)
			return
		}
		h.MapLabel(w, r)
	case "/rules/reload":
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w)
			return
		}
		h.Reload(w, r)
	default:
		writeNotFound(w)
	}
}

// MapLabel GET /rules/map?label=BED
func (h *RulesHandler) MapLabel(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if !q.Has("label") {
		writeServiceError(w, h.logger, "MapLabel", &service.ValidationError{Field: "label", Message: "is required"})
		return
	}
	writeJSON(w, http.StatusOK, h.rules.MapLabel(q.Get("label")))
}

// Reload POST /rules/reload
func (h *RulesHandler) Reload(w http.ResponseWriter, r *http.Request) {
	stats, err := h.rules.Reload(r.Context())
	if err != nil {
		var ce *rules.ConfigError
		if errors.As(err, &ce) {
			// the previous table is still active; tell the operator why the new one was refused
			writeError(w, http.StatusUnprocessableEntity, ce.Error())
			return
		}
		writeServiceError(w, h.logger, "ReloadRules", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
