package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"babymind/internal/models"
	"babymind/internal/rules"
	"babymind/internal/security"
	"babymind/internal/service"
	"babymind/internal/validation"
)

// API serves the JSON endpoints
type API struct {
	babies          *service.BabyService
	tracker         *service.Tracker
	recommendations *service.RecommendationService
	immunity        *service.ImmunityService
	tasks           *service.TaskService
	tokens          *security.TokenIssuer
	middleware      *Middleware
	tokenLimiter    *security.RateLimiter
	location        *time.Location
	logger          *zap.Logger
	now             func() time.Time
}

// Services bundles the services the API calls
type Services struct {
	Babies          *service.BabyService
	Tracker         *service.Tracker
	Recommendations *service.RecommendationService
	Immunity        *service.ImmunityService
	Tasks           *service.TaskService
}

// NewAPI creates the API. loc is used for calendar days and daily tasks.
func NewAPI(svc Services, tokens *security.TokenIssuer, middleware *Middleware, loc *time.Location, logger *zap.Logger) *API {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}
	return &API{
		babies:          svc.Babies,
		tracker:         svc.Tracker,
		recommendations: svc.Recommendations,
		immunity:        svc.Immunity,
		tasks:           svc.Tasks,
		tokens:          tokens,
		middleware:      middleware,
		tokenLimiter:    security.NewRateLimiter(10, time.Minute),
		location:        loc,
		logger:          logger,
		now:             time.Now,
	}
}

// Routes registers every endpoint on a new mux
func (h *API) Routes() http.Handler {
	mux := http.NewServeMux()
	admin := h.middleware.RequireAdmin
	caregiver := h.middleware.RequireBabyToken

	mux.HandleFunc("GET /healthz", h.Health)

	mux.HandleFunc("POST /babies", admin(h.CreateBaby))
	mux.HandleFunc("GET /babies", admin(h.ListBabies))
	mux.HandleFunc("POST /babies/{babyId}/token", h.tokenLimiter.Limit(admin(h.IssueToken)))

	mux.HandleFunc("GET /babies/{babyId}", caregiver(h.GetBaby))
	mux.HandleFunc("GET /babies/{babyId}/age", caregiver(h.GetAge))
	mux.HandleFunc("GET /babies/{babyId}/recommendations/{domain}", caregiver(h.GetRecommendation))
	mux.HandleFunc("GET /babies/{babyId}/vaccinations/upcoming", caregiver(h.UpcomingVaccinations))
	mux.HandleFunc("GET /babies/{babyId}/vaccinations/overdue", caregiver(h.OverdueVaccinations))
	mux.HandleFunc("GET /babies/{babyId}/upcoming/{kind}", caregiver(h.UpcomingEntities))
	mux.HandleFunc("GET /babies/{babyId}/entities", caregiver(h.ListEntities))
	mux.HandleFunc("POST /babies/{babyId}/entities", caregiver(h.CreateEntity))
	mux.HandleFunc("POST /babies/{babyId}/entities/{id}/complete", caregiver(h.CompleteEntity))
	mux.HandleFunc("POST /babies/{babyId}/entities/{id}/toggle", caregiver(h.ToggleEntity))
	mux.HandleFunc("DELETE /babies/{babyId}/entities/{id}", caregiver(h.DeleteEntity))
	mux.HandleFunc("GET /babies/{babyId}/progress", caregiver(h.GetProgress))
	mux.HandleFunc("POST /babies/{babyId}/tasks/generate", caregiver(h.GenerateTasks))
	mux.HandleFunc("GET /babies/{babyId}/calendar", caregiver(h.GetCalendar))

	return Logging(h.logger, mux)
}

// Health reports liveness
func (h *API) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, h.logger, http.StatusOK, map[string]string{"status": "ok"})
}

// today is the current time in the API's location
func (h *API) today() time.Time {
	return h.now().In(h.location)
}

// respondServiceError maps service errors to HTTP statuses
func (h *API) respondServiceError(w http.ResponseWriter, err error) {
	var invalid validation.ValidationError
	switch {
	case errors.As(err, &invalid):
		respondWithError(w, h.logger, http.StatusBadRequest, invalid.Error(), "", nil)
	case errors.Is(err, service.ErrBabyNotFound):
		respondWithError(w, h.logger, http.StatusNotFound, ErrBabyNotFound, "", nil)
	case errors.Is(err, rules.ErrUnknownDomain):
		respondWithError(w, h.logger, http.StatusNotFound, "Unknown domain", "", nil)
	case errors.Is(err, models.ErrInvalidEntity),
		errors.Is(err, models.ErrBabyNameRequired),
		errors.Is(err, models.ErrBirthDateRequired),
		errors.Is(err, models.ErrInvalidGender):
		respondWithError(w, h.logger, http.StatusBadRequest, err.Error(), "", nil)
	default:
		respondWithError(w, h.logger, http.StatusInternalServerError, ErrInternalServerError, "", err)
	}
}

func pathID(r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	return id, err == nil
}
