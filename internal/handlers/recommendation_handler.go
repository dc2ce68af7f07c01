package handlers

import (
	"net/http"
	"strconv"

	"babymind/internal/models"
	"babymind/internal/rules"
)

// GetRecommendation resolves one domain's content for the baby's age
func (h *API) GetRecommendation(w http.ResponseWriter, r *http.Request) {
	domain := rules.Domain(r.PathValue("domain"))
	rec, err := h.recommendations.ForBaby(GetBabyFromContext(r.Context()), domain, h.today())
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, rec)
}

// UpcomingVaccinations lists the next doses due
func (h *API) UpcomingVaccinations(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(r)
	if !ok {
		respondWithError(w, h.logger, http.StatusBadRequest, "Invalid limit", "", nil)
		return
	}
	doses, err := h.immunity.Upcoming(GetBabyFromContext(r.Context()), h.today(), limit)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, views(doses))
}

// OverdueVaccinations lists doses past their due day
func (h *API) OverdueVaccinations(w http.ResponseWriter, r *http.Request) {
	doses, err := h.immunity.Overdue(GetBabyFromContext(r.Context()), h.today())
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, views(doses))
}

// parseLimit reads ?limit=, defaulting and capping it
func parseLimit(r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultUpcomingLimit, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, false
	}
	return min(n, maxUpcomingLimit), true
}

// views attaches display metadata, never returning nil
func views(entities []models.Entity) []models.EntityView {
	out := make([]models.EntityView, len(entities))
	for i, e := range entities {
		out[i] = e.View()
	}
	return out
}
