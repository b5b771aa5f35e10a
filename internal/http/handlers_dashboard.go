package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"grana/internal/projection"
)

type dashboardResponse struct {
	Year       int    `json:"year"`
	Month      int    `json:"month"`
	Income     string `json:"income"`
	Expenses   string `json:"expenses"`
	Balance    string `json:"balance"`
	FixedTotal string `json:"fixed_total"`
}

// handleDashboard returns the month summary. Defaults to the current month
// when year/month query params are absent.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	year := now.Year()
	month := int(now.Month())

	if v := strings.TrimSpace(r.URL.Query().Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid year")
			return
		}
		year = y
	}
	if v := strings.TrimSpace(r.URL.Query().Get("month")); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			respondError(w, http.StatusBadRequest, "invalid month")
			return
		}
		month = m
	}

	snap, err := s.loader.Load(r.Context(), ownerIDFromRequest(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	summary := projection.Summarize(snap.Transactions, snap.FixedExpenses, year, month)
	respondJSON(w, http.StatusOK, dashboardResponse{
		Year:       summary.Year,
		Month:      summary.Month,
		Income:     summary.Income.String(),
		Expenses:   summary.Expenses.String(),
		Balance:    summary.Balance.String(),
		FixedTotal: summary.FixedTotal.String(),
	})
}
