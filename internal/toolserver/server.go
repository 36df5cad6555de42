package toolserver

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/xeipuuv/gojsonschema"

	"mercari-search/internal/common/logger"
	"mercari-search/internal/common/observability"
	"mercari-search/internal/search"
)

// SearchToolName is the exposed name of the two-phase search entry point.
const SearchToolName = "search_mercari_jp"

// SearchRunner is the orchestrator surface the server depends on.
type SearchRunner interface {
	Run(ctx context.Context, q search.Query) ([]search.Item, search.Diagnostics)
}

// Server owns the HTTP exposure of the tool registry. The search logic
// itself lives behind SearchRunner; this layer only validates inputs,
// dispatches, and shapes responses.
type Server struct {
	registry *Registry
	runner   SearchRunner
	logger   logger.Logger
	obs      *observability.Observability
}

func NewServer(runner SearchRunner, log logger.Logger, obs *observability.Observability) *Server {
	registry := NewRegistry()
	registry.Register(Tool{
		Name:        SearchToolName,
		Description: "Search Mercari Japan for items matching a keyword, excluding keywords and filtering by price range. Discovers the dominant categories from a sample, then returns price-ascending, on-sale items.",
		Version:     "1.0",
		InputSchema: searchToolSchema(),
	})
	return &Server{
		registry: registry,
		runner:   runner,
		logger:   log,
		obs:      obs,
	}
}

func searchToolSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"keyword": map[string]interface{}{
				"type":        "string",
				"minLength":   1,
				"description": "The main keyword to search for (e.g., 'iPhone15 Pro 256GB').",
			},
			"exclude_keywords": map[string]interface{}{
				"type":        "string",
				"description": "Space-separated keywords to exclude (e.g., 'ジャンク max').",
			},
			"min_price": map[string]interface{}{
				"type":        "integer",
				"minimum":     0,
				"description": "Minimum price in JPY.",
			},
			"max_price": map[string]interface{}{
				"type":        "integer",
				"minimum":     0,
				"description": "Maximum price in JPY.",
			},
		},
		"required":             []string{"keyword"},
		"additionalProperties": false,
	}
}

// Routes wires the handlers onto the given router.
func (s *Server) Routes(r *mux.Router) {
	r.HandleFunc("/health", s.health).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/tools", s.listTools).Methods(http.MethodGet)
	r.HandleFunc("/tools/{name}/call", s.callTool).Methods(http.MethodPost)
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listTools(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tools": s.registry.List(),
	})
}

// callTool validates the request body against the tool's declared
// schema and dispatches it. Pipeline failures never surface as HTTP
// errors: the response is a best-effort item list, possibly empty.
func (s *Server) callTool(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	tool, ok := s.registry.Get(name)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "unknown tool: " + name,
		})
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unreadable request body"})
		return
	}
	if len(body) == 0 {
		body = []byte("{}")
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(tool.InputSchema),
		gojsonschema.NewBytesLoader(body),
	)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	if !result.Valid() {
		details := make([]map[string]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			details = append(details, map[string]string{
				"field":   e.Field(),
				"message": e.Description(),
			})
		}
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":  "parameter validation failed",
			"fields": details,
		})
		return
	}

	var query search.Query
	if err := json.Unmarshal(body, &query); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}

	start := time.Now()
	items, diag := s.runner.Run(r.Context(), query)

	status := "ok"
	if len(items) == 0 {
		status = "empty"
	}
	s.obs.RecordSearch(r.Context(), status)
	s.obs.RecordSearchDuration(r.Context(), time.Since(start), status)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"items":       items,
		"count":       len(items),
		"diagnostics": diag,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
