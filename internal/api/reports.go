package api

import (
	"net/http"

	"github.com/erazemk/mechatrack/internal/logger"
	"github.com/erazemk/mechatrack/internal/report"
	"github.com/erazemk/mechatrack/internal/store"
)

// ReportsHandler serves aggregate figures.
type ReportsHandler struct {
	Jobs              *store.Jobs
	Items             *store.Items
	LowStockThreshold int
	Logger            *logger.Logger
}

// JobSummary handles GET /reports.
func (h *ReportsHandler) JobSummary(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.Jobs.List(r.Context())
	if err != nil {
		writeError(r.Context(), h.Logger, w, err)
		return
	}
	jsonResponse(w, http.StatusOK, report.SummarizeJobs(jobs))
}

// StockSummary handles GET /reports/stock.
func (h *ReportsHandler) StockSummary(w http.ResponseWriter, r *http.Request) {
	items, err := h.Items.List(r.Context())
	if err != nil {
		writeError(r.Context(), h.Logger, w, err)
		return
	}
	jsonResponse(w, http.StatusOK, report.SummarizeStock(items, h.LowStockThreshold))
}
