// Package api serves the lead dashboard over HTTP.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/lead-dashboard/internal/export"
	"github.com/sells-group/lead-dashboard/internal/leads"
	"github.com/sells-group/lead-dashboard/internal/model"
	"github.com/sells-group/lead-dashboard/internal/query"
	"github.com/sells-group/lead-dashboard/internal/stats"
)

// CacheControl is sent with every successful JSON response.
const CacheControl = "public, s-maxage=3600, stale-while-revalidate=86400"

const maxBulkBody = 1 << 20

const notFoundMsg = "Lead not found"

// ErrNotFound is returned for unknown lead ids.
var ErrNotFound = eris.New(notFoundMsg)

// Analyzer scores leads. It never fails; provider errors fall back to rules.
type Analyzer interface {
	AnalyzeLead(ctx context.Context, lead model.Lead) model.LeadAnalysis
	AnalyzeBulk(ctx context.Context, leads []model.Lead) model.BulkAnalysis
}

// Handler holds the HTTP dependencies.
type Handler struct {
	snap     *leads.Snapshot
	analyzer Analyzer
	now      func() time.Time
}

// NewHandler creates a Handler over an immutable snapshot.
func NewHandler(snap *leads.Snapshot, analyzer Analyzer) *Handler {
	return &Handler{snap: snap, analyzer: analyzer, now: time.Now}
}

// Health reports liveness, the snapshot size and when it was loaded.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"leads":    h.snap.Len(),
		"loadedAt": h.snap.LoadedAt().Format(time.RFC3339),
	})
}

// Leads returns the filtered and sorted table.
//
//	GET /leads?search=&state=&searchTerm=&sortBy=&sortDir=
func (h *Handler) Leads(w http.ResponseWriter, r *http.Request) {
	p := query.ParseParams(r.URL.Query())
	writeJSON(w, http.StatusOK, query.Apply(h.snap.All(), p))
}

// Stats returns collection-wide aggregates.
func (h *Handler) Stats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, stats.Compute(h.snap.All()))
}

// States returns the per-state distribution.
func (h *Handler) States(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, stats.States(h.snap.All()))
}

// NewLeads returns recent leads.
//
//	GET /leads/new?days=&since=
func (h *Handler) NewLeads(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, stats.Recent(h.snap.All(), h.window(r)))
}

// window parses the recent-leads window. Malformed values are ignored.
func (h *Handler) window(r *http.Request) stats.Window {
	q := r.URL.Query()
	win := stats.Window{Now: h.now}
	if days, err := strconv.Atoi(strings.TrimSpace(q.Get("days"))); err == nil && days > 0 {
		win.Days = days
	}
	if since := strings.TrimSpace(q.Get("since")); since != "" {
		if t, err := time.Parse(time.RFC3339, since); err == nil {
			win.Since = t
		} else if t, ok := stats.ParseStartDate(since); ok {
			win.Since = t
		}
	}
	return win
}

// Export streams the selected leads as CSV or XLSX.
//
//	GET /leads/export?selected=1,2&format=csv|xlsx
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	selected := export.Subset(h.snap.All(), export.ParseIDs(q.Get("selected")))

	if strings.EqualFold(q.Get("format"), "xlsx") {
		var buf bytes.Buffer
		if err := export.XLSX(&buf, selected); err != nil {
			writeError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="leads.xlsx"`)
		w.WriteHeader(http.StatusOK)
		_, _ = buf.WriteTo(w)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="leads.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, export.CSV(selected))
}

// AnalyzeLead scores one lead.
//
//	POST /ai/analyze-lead/{id}
func (h *Handler) AnalyzeLead(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, ErrNotFound)
		return
	}
	lead, ok := h.snap.Get(id)
	if !ok {
		writeError(w, r, ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, h.analyzer.AnalyzeLead(r.Context(), lead))
}

type bulkRequest struct {
	LeadIDs []int `json:"leadIds"`
}

// AnalyzeBulk scores every lead, or the leads named in the body.
//
//	POST /ai/analyze-bulk  {"leadIds": [1, 2]}
func (h *Handler) AnalyzeBulk(w http.ResponseWriter, r *http.Request) {
	var req bulkRequest
	if r.Body != nil {
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBulkBody)).Decode(&req); err != nil && err != io.EOF {
			zap.L().Debug("ignoring malformed bulk body", zap.Error(err))
			req = bulkRequest{}
		}
	}

	targets := h.snap.All()
	if len(req.LeadIDs) > 0 {
		targets = h.snap.Subset(req.LeadIDs)
	}
	writeJSON(w, http.StatusOK, h.analyzer.AnalyzeBulk(r.Context(), targets))
}

// writeJSON writes v as a cacheable JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		zap.L().Error("encode response", zap.Error(err))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Internal server error"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", CacheControl)
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError maps err to a status and writes {"error": msg}. Unexpected
// errors are logged and reported generically.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := http.StatusInternalServerError, "Internal server error"
	if eris.Is(err, ErrNotFound) {
		status, msg = http.StatusNotFound, notFoundMsg
	} else {
		zap.L().Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
