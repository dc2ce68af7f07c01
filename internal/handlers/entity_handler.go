package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"babymind/internal/models"
)

type createEntityRequest struct {
	Kind        models.EntityKind `json:"kind"`
	Category    string            `json:"category"`
	Title       string            `json:"title"`
	Notes       string            `json:"notes"`
	Priority    models.Priority   `json:"priority"`
	Points      int               `json:"points"`
	ScheduledAt *time.Time        `json:"scheduled_at"`
}

// ListEntities returns the baby's entities, optionally filtered by
// ?kind= and ?completed=
func (h *API) ListEntities(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	kind := models.EntityKind(query.Get("kind"))
	if kind != "" && !kind.Valid() {
		respondWithError(w, h.logger, http.StatusBadRequest, "Unknown kind", "", nil)
		return
	}

	var completed *bool
	if raw := query.Get("completed"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			respondWithError(w, h.logger, http.StatusBadRequest, "completed must be true or false", "", nil)
			return
		}
		completed = &v
	}

	entities, err := h.tracker.Filter(GetBabyFromContext(r.Context()), func(e models.Entity) bool {
		if kind != "" && e.Kind != kind {
			return false
		}
		return completed == nil || e.IsCompleted == *completed
	})
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, views(entities))
}

// CreateEntity adds a tracked record for the baby
func (h *API) CreateEntity(w http.ResponseWriter, r *http.Request) {
	var req createEntityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, ErrInvalidJSON, "", nil)
		return
	}

	now := h.now()
	scheduled := now
	if req.ScheduledAt != nil {
		scheduled = *req.ScheduledAt
	}

	entity := models.NewEntity(GetBabyFromContext(r.Context()), req.Kind, req.Title, scheduled, now)
	entity.Category = req.Category
	entity.Notes = req.Notes
	entity.Priority = req.Priority
	entity.Points = req.Points
	if entity.Kind == models.KindTask && entity.Points == 0 {
		if info, ok := models.TaskCategory(req.Category).Info(); ok {
			entity.Points = info.DefaultPoints
		}
	}

	if err := h.tracker.Add(&entity); err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, h.logger, http.StatusCreated, entity.View())
}

// CompleteEntity marks a record completed
func (h *API) CompleteEntity(w http.ResponseWriter, r *http.Request) {
	h.mutateEntity(w, r, func(babyID, id uuid.UUID) (*models.Entity, error) {
		return h.tracker.Complete(babyID, id, h.now())
	})
}

// ToggleEntity flips a record's completion state
func (h *API) ToggleEntity(w http.ResponseWriter, r *http.Request) {
	h.mutateEntity(w, r, func(babyID, id uuid.UUID) (*models.Entity, error) {
		return h.tracker.Toggle(babyID, id, h.now())
	})
}

func (h *API) mutateEntity(w http.ResponseWriter, r *http.Request, mutate func(babyID, id uuid.UUID) (*models.Entity, error)) {
	id, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, h.logger, http.StatusBadRequest, ErrInvalidEntityID, "", nil)
		return
	}

	entity, err := mutate(GetBabyFromContext(r.Context()), id)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	if entity == nil {
		respondWithError(w, h.logger, http.StatusNotFound, ErrEntityNotFound, "", nil)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, entity.View())
}

// DeleteEntity removes a record. Unknown ids succeed.
func (h *API) DeleteEntity(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, h.logger, http.StatusBadRequest, ErrInvalidEntityID, "", nil)
		return
	}
	if err := h.tracker.Delete(GetBabyFromContext(r.Context()), id); err != nil {
		h.respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpcomingEntities lists the next pending records of a kind
func (h *API) UpcomingEntities(w http.ResponseWriter, r *http.Request) {
	kind := models.EntityKind(r.PathValue("kind"))
	if !kind.Valid() {
		respondWithError(w, h.logger, http.StatusBadRequest, "Unknown kind", "", nil)
		return
	}
	limit, ok := parseLimit(r)
	if !ok {
		respondWithError(w, h.logger, http.StatusBadRequest, "Invalid limit", "", nil)
		return
	}

	entities, err := h.tracker.Upcoming(GetBabyFromContext(r.Context()), kind, h.now(), limit)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, views(entities))
}

// GetProgress returns the baby's points, level, streak and achievements
func (h *API) GetProgress(w http.ResponseWriter, r *http.Request) {
	progress, err := h.tracker.Recompute(GetBabyFromContext(r.Context()), h.today())
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, progress)
}

// GenerateTasks adds today's missing daily tasks
func (h *API) GenerateTasks(w http.ResponseWriter, r *http.Request) {
	created, err := h.tasks.GenerateAndStore(GetBabyFromContext(r.Context()), h.today())
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, views(created))
}
