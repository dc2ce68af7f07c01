package handlers

import (
	"net/http"
	"strconv"
	"time"

	"babymind/internal/calendar"
	"babymind/internal/models"
)

// GetCalendar returns a 6x7 month grid with the baby's records placed on
// their days. ?year= and ?month= default to the current month; ?week_start=
// is sunday or monday (default).
func (h *API) GetCalendar(w http.ResponseWriter, r *http.Request) {
	today := h.today()
	query := r.URL.Query()

	year, month := today.Year(), today.Month()
	if raw := query.Get("year"); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil || y < 1 {
			respondWithError(w, h.logger, http.StatusBadRequest, "Invalid year", "", nil)
			return
		}
		year = y
	}
	if raw := query.Get("month"); raw != "" {
		m, err := strconv.Atoi(raw)
		if err != nil || m < 1 || m > 12 {
			respondWithError(w, h.logger, http.StatusBadRequest, "Invalid month", "", nil)
			return
		}
		month = time.Month(m)
	}

	weekStart := time.Monday
	switch query.Get("week_start") {
	case "", "monday":
	case "sunday":
		weekStart = time.Sunday
	default:
		respondWithError(w, h.logger, http.StatusBadRequest, "week_start must be sunday or monday", "", nil)
		return
	}

	grid := calendar.MonthGrid(year, month, weekStart, h.location)
	first, last := grid.Range()
	end := last.AddDate(0, 0, 1)

	entities, err := h.tracker.Filter(GetBabyFromContext(r.Context()), func(e models.Entity) bool {
		return !e.ScheduledAt.Before(first) && e.ScheduledAt.Before(end)
	})
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	grid.Place(entities)
	grid.MarkToday(today)
	respondJSON(w, h.logger, http.StatusOK, grid)
}
