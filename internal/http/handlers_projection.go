package http

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"grana/internal/core"
	applog "grana/internal/log"
	"grana/internal/projection"
)

// refDate resolves the projection reference date from the ?ref query param,
// defaulting to today. The 12-month window starts at its month.
func refDate(r *http.Request) (core.Date, error) {
	v := strings.TrimSpace(r.URL.Query().Get("ref"))
	if v == "" {
		now := time.Now()
		return core.NewDate(now.Year(), int(now.Month()), now.Day()), nil
	}
	return core.ParseDate(v)
}

func wantsCSV(r *http.Request) bool {
	return strings.EqualFold(r.URL.Query().Get("format"), "csv")
}

// handleProjectionByMonth returns the 12-month future-expense projection.
func (s *Server) handleProjectionByMonth(w http.ResponseWriter, r *http.Request) {
	ref, err := refDate(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid ref date, expected YYYY-MM-DD")
		return
	}

	ownerID := ownerIDFromRequest(r)
	key := ownerCachePrefix(ownerID) + "months:" + ref.Format("2006-01")

	months, cached := s.monthCache.Get(key)
	if !cached {
		snap, err := s.loader.Load(r.Context(), ownerID)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		months = projection.ByMonth(snap.FixedExpenses, snap.Transactions, ref)
		s.monthCache.Set(key, months)
	} else {
		applog.FromContext(r.Context()).Debug("Month projection cache hit",
			applog.FieldOwnerID, ownerID, "ref", ref.String())
	}

	if wantsCSV(r) {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=projection-months-%s.csv", ref.Format("2006-01")))
		if err := projection.WriteMonthCSV(w, months); err != nil {
			applog.FromContext(r.Context()).Error("Failed to write month projection CSV", applog.FieldError, err)
		}
		return
	}
	respondJSON(w, http.StatusOK, months)
}

// handleProjectionByCategory returns projected spending per category over the
// same 12-month window.
func (s *Server) handleProjectionByCategory(w http.ResponseWriter, r *http.Request) {
	ref, err := refDate(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid ref date, expected YYYY-MM-DD")
		return
	}

	ownerID := ownerIDFromRequest(r)
	key := ownerCachePrefix(ownerID) + "categories:" + ref.Format("2006-01")

	cats, cached := s.categoryCache.Get(key)
	if !cached {
		snap, err := s.loader.Load(r.Context(), ownerID)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		cats = projection.ByCategory(snap.FixedExpenses, snap.Transactions, snap.Categories, ref, projection.DefaultOptions())
		s.categoryCache.Set(key, cats)
	} else {
		applog.FromContext(r.Context()).Debug("Category projection cache hit",
			applog.FieldOwnerID, ownerID, "ref", ref.String())
	}

	if wantsCSV(r) {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=projection-categories-%s.csv", ref.Format("2006-01")))
		if err := projection.WriteCategoryCSV(w, cats); err != nil {
			applog.FromContext(r.Context()).Error("Failed to write category projection CSV", applog.FieldError, err)
		}
		return
	}
	respondJSON(w, http.StatusOK, cats)
}
