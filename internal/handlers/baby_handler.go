package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"babymind/internal/models"
)

const dateLayout = "2006-01-02"

type createBabyRequest struct {
	Name             string        `json:"name"`
	BirthDate        string        `json:"birth_date"`
	Gender           models.Gender `json:"gender"`
	BirthWeightGrams int           `json:"birth_weight_grams"`
	BirthHeightCm    float64       `json:"birth_height_cm"`
}

type tokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CreateBaby registers a new baby profile
func (h *API) CreateBaby(w http.ResponseWriter, r *http.Request) {
	var req createBabyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, ErrInvalidJSON, "", nil)
		return
	}

	baby := models.Baby{
		Name:             req.Name,
		Gender:           req.Gender,
		BirthWeightGrams: req.BirthWeightGrams,
		BirthHeightCm:    req.BirthHeightCm,
	}
	if req.BirthDate != "" {
		birth, err := time.ParseInLocation(dateLayout, req.BirthDate, h.location)
		if err != nil {
			respondWithError(w, h.logger, http.StatusBadRequest, "birth_date must be YYYY-MM-DD", "", nil)
			return
		}
		baby.BirthDate = birth
	}

	if err := h.babies.Create(&baby, h.now()); err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.logger.Info("baby created", zap.Stringer("baby_id", baby.ID))
	respondJSON(w, h.logger, http.StatusCreated, baby)
}

// ListBabies returns every baby profile
func (h *API) ListBabies(w http.ResponseWriter, r *http.Request) {
	babies, err := h.babies.List()
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	if babies == nil {
		babies = []models.Baby{}
	}
	respondJSON(w, h.logger, http.StatusOK, babies)
}

// GetBaby returns one baby profile
func (h *API) GetBaby(w http.ResponseWriter, r *http.Request) {
	baby, err := h.babies.Get(GetBabyFromContext(r.Context()))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, baby)
}

// IssueToken signs a caregiver token for one baby
func (h *API) IssueToken(w http.ResponseWriter, r *http.Request) {
	babyID, ok := pathID(r, "babyId")
	if !ok {
		respondWithError(w, h.logger, http.StatusBadRequest, ErrInvalidBabyID, "", nil)
		return
	}
	if _, err := h.babies.Get(babyID); err != nil {
		h.respondServiceError(w, err)
		return
	}

	token, expires, err := h.tokens.Issue(babyID, h.now())
	if err != nil {
		respondWithError(w, h.logger, http.StatusInternalServerError, ErrInternalServerError, "failed to issue token", err)
		return
	}
	respondJSON(w, h.logger, http.StatusCreated, tokenResponse{Token: token, ExpiresAt: expires})
}

// GetAge returns the baby's age in days, weeks and months
func (h *API) GetAge(w http.ResponseWriter, r *http.Request) {
	age, err := h.recommendations.AgeOf(GetBabyFromContext(r.Context()), h.today())
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, age)
}
