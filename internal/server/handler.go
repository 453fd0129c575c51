package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/KaramelBytes/casedash/internal/analysis"
	"github.com/KaramelBytes/casedash/internal/dataset"
	"github.com/KaramelBytes/casedash/internal/filter"
	"github.com/KaramelBytes/casedash/internal/geo"
)

// Handler holds the loaded tables and the boundary source.
type Handler struct {
	legacy   dataset.LegacyTable
	summary  dataset.SummaryTable
	boundary geo.Source
	config   Config
	version  string
}

// NewHandler creates a new API handler.
func NewHandler(legacy dataset.LegacyTable, summary dataset.SummaryTable, boundary geo.Source, cfg Config, version string) *Handler {
	if cfg.NameField == "" {
		cfg.NameField = geo.DefaultNameField
	}
	if cfg.Options.CorrelationFallback == "" {
		cfg.Options.CorrelationFallback = analysis.FallbackFullTable
	}
	return &Handler{
		legacy:   legacy,
		summary:  summary,
		boundary: boundary,
		config:   cfg,
		version:  version,
	}
}

// OptionsResponse lists the values the filter controls can take.
type OptionsResponse struct {
	YearMin    int      `json:"year_min"`
	YearMax    int      `json:"year_max"`
	States     []string `json:"states"`
	Categories []string `json:"categories"`
}

// Health returns server health status.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "healthy",
		"version":      h.version,
		"legacy_rows":  h.legacy.Len(),
		"summary_rows": h.summary.Len(),
	})
}

// Options returns the year bounds, states and categories available.
func (h *Handler) Options(w http.ResponseWriter, r *http.Request) {
	lo, hi, _ := dataset.YearBounds(h.legacy, h.summary)
	writeJSON(w, http.StatusOK, OptionsResponse{
		YearMin:    lo,
		YearMax:    hi,
		States:     dataset.States(h.legacy, h.summary),
		Categories: analysis.AvailableCategories(h.legacy, dataset.OffenderCategories),
	})
}

// Dashboard returns every computed view for the filter in the query string.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.build(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// Geo returns the boundary features annotated with filtered state totals.
// The boundary dataset is fetched on every request.
func (h *Handler) Geo(w http.ResponseWriter, r *http.Request) {
	c, err := h.criteria(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := filter.Apply(h.legacy, h.summary, c)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if h.boundary == nil {
		writeError(w, http.StatusBadGateway, geo.ErrBoundaryFetch.Error()+": no boundary source configured")
		return
	}
	fc, err := h.boundary.Fetch(r.Context())
	if err != nil {
		slog.Error("boundary fetch failed", "error", err, "request_id", GetRequestID(r.Context()))
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	totals := analysis.StateTotalMap(res)
	out, rows := geo.Join(fc, totals, h.config.NameField)
	if missing := geo.Unmatched(rows, totals); len(missing) > 0 {
		slog.Debug("states without boundary feature", "states", missing)
	}
	b, err := out.MarshalJSON()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

func (h *Handler) build(q url.Values) (*analysis.Dashboard, error) {
	c, err := h.criteria(q)
	if err != nil {
		return nil, err
	}
	return analysis.Build(h.legacy, h.summary, c, h.config.Options)
}

// criteria reads from, to, state and category from the query. Absent values
// fall back to the full data span and every state and category.
func (h *Handler) criteria(q url.Values) (filter.Criteria, error) {
	c := filter.DefaultCriteria(h.legacy, h.summary)
	var err error
	if c.YearMin, err = intParam(q, "from", c.YearMin); err != nil {
		return c, err
	}
	if c.YearMax, err = intParam(q, "to", c.YearMax); err != nil {
		return c, err
	}
	if _, ok := q["state"]; ok {
		c.States = filter.ParseSelection(q["state"])
	}
	if _, ok := q["category"]; ok {
		c.Categories = filter.ParseSelection(q["category"])
	}
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

func intParam(q url.Values, key string, def int) (int, error) {
	v := q.Get(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("invalid %s: %q", key, v)
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Warn("encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
