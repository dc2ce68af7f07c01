package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"babymind/internal/calendar"
	"babymind/internal/events"
	"babymind/internal/models"
	"babymind/internal/repository"
	"babymind/internal/rules"
	"babymind/internal/security"
	"babymind/internal/service"
)

const adminSecret = "admin-secret"

var now = time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)

type testServer struct {
	t       *testing.T
	handler http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := zap.NewNop()
	entities := repository.NewMemoryEntityStore()
	babies := service.NewBabyService(repository.NewMemoryBabyStore(entities))
	catalog := rules.Default()
	bus := events.NewBus(logger)
	tracker := service.NewTracker(entities, bus, service.NewProgressCalculator(100), logger)

	tokens, err := security.NewTokenIssuer("test-secret", time.Hour)
	require.NoError(t, err)
	mw := NewMiddleware(tokens, adminSecret, logger)
	mw.now = func() time.Time { return now }

	api := NewAPI(Services{
		Babies:          babies,
		Tracker:         tracker,
		Recommendations: service.NewRecommendationService(babies, catalog),
		Immunity:        service.NewImmunityService(babies, tracker, catalog),
		Tasks:           service.NewTaskService(babies, tracker, service.NewDailyTaskGenerator(catalog), logger),
	}, tokens, mw, time.UTC, logger)
	api.now = func() time.Time { return now }

	return &testServer{t: t, handler: api.Routes()}
}

func (s *testServer) do(method, path, token string, body any, headers ...string) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), rec.Body.String())
	return v
}

// createBaby registers a baby born 200 days before now and returns it with a token
func (s *testServer) createBaby() (models.Baby, string) {
	s.t.Helper()
	birth := now.AddDate(0, 0, -200).Format(dateLayout)
	rec := s.do(http.MethodPost, "/babies", "", map[string]any{
		"name":       "Mia",
		"birth_date": birth,
		"gender":     "girl",
	}, AdminSecretHeader, adminSecret)
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	baby := decode[models.Baby](s.t, rec)

	rec = s.do(http.MethodPost, "/babies/"+baby.ID.String()+"/token", "", nil, AdminSecretHeader, adminSecret)
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	return baby, decode[tokenResponse](s.t, rec).Token
}

func TestAdminRoutesRequireSecret(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/babies", "", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodGet, "/babies", "", nil, AdminSecretHeader, "wrong")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodGet, "/babies", "", nil, AdminSecretHeader, adminSecret)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]models.Baby](t, rec))
}

func TestCreateBabyValidation(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing name", map[string]any{"birth_date": "2026-01-01"}},
		{"missing birth date", map[string]any{"name": "Mia"}},
		{"bad date", map[string]any{"name": "Mia", "birth_date": "01/01/2026"}},
		{"bad gender", map[string]any{"name": "Mia", "birth_date": "2026-01-01", "gender": "cat"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(http.MethodPost, "/babies", "", tt.body, AdminSecretHeader, adminSecret)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestCaregiverTokenScopedToBaby(t *testing.T) {
	s := newTestServer(t)
	mia, miaToken := s.createBaby()
	leo, _ := s.createBaby()

	rec := s.do(http.MethodGet, "/babies/"+mia.ID.String(), miaToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/babies/"+leo.ID.String(), miaToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodGet, "/babies/"+mia.ID.String(), "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodGet, "/babies/"+mia.ID.String(), "forged", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodGet, "/babies/not-a-uuid", miaToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTokenForUnknownBaby(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodPost, "/babies/"+uuid.NewString()+"/token", "", nil, AdminSecretHeader, adminSecret)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAgeAndRecommendation(t *testing.T) {
	s := newTestServer(t)
	baby, token := s.createBaby()
	base := "/babies/" + baby.ID.String()

	rec := s.do(http.MethodGet, base+"/age", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	age := decode[service.Age](t, rec)
	assert.Equal(t, service.Age{Days: 200, Weeks: 28, Months: 6}, age)

	rec = s.do(http.MethodGet, base+"/recommendations/vaccination", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	recommendation := decode[service.Recommendation](t, rec)
	assert.Equal(t, rules.DomainVaccination, recommendation.Rule.Domain)
	assert.True(t, recommendation.Rule.Contains(6))

	rec = s.do(http.MethodGet, base+"/recommendations/lullabies", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEntityLifecycle(t *testing.T) {
	s := newTestServer(t)
	baby, token := s.createBaby()
	base := "/babies/" + baby.ID.String()

	rec := s.do(http.MethodPost, base+"/entities", token, map[string]any{
		"kind":     "task",
		"category": "play",
		"title":    "Tummy time",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	task := decode[models.EntityView](t, rec)
	assert.Equal(t, 15, task.Points, "category default points")
	assert.Equal(t, "Task", task.KindLabel)
	assert.Equal(t, "Play", task.CategoryLabel)
	assert.Equal(t, "puzzle", task.CategoryIcon)

	rec = s.do(http.MethodPost, base+"/entities/"+task.ID.String()+"/complete", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[models.Entity](t, rec).IsCompleted)

	rec = s.do(http.MethodGet, base+"/progress", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	progress := decode[models.ProgressAggregate](t, rec)
	assert.Equal(t, 15, progress.TotalPoints)
	assert.Equal(t, 1, progress.StreakDays)
	assert.True(t, progress.HasAchievement("first_task"))

	rec = s.do(http.MethodPost, base+"/entities/"+task.ID.String()+"/toggle", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[models.Entity](t, rec).IsCompleted)

	rec = s.do(http.MethodGet, base+"/entities?kind=task&completed=false", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Entity](t, rec), 1)

	rec = s.do(http.MethodDelete, base+"/entities/"+task.ID.String(), token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(http.MethodPost, base+"/entities/"+task.ID.String()+"/complete", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateEntityValidation(t *testing.T) {
	s := newTestServer(t)
	baby, token := s.createBaby()
	base := "/babies/" + baby.ID.String()

	rec := s.do(http.MethodPost, base+"/entities", token, map[string]any{"kind": "homework", "title": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, base+"/entities", token, map[string]any{"kind": "task"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodGet, base+"/entities?completed=maybe", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpcomingAppointments(t *testing.T) {
	s := newTestServer(t)
	baby, token := s.createBaby()
	base := "/babies/" + baby.ID.String()

	for _, days := range []int{7, 2, -1} {
		at := now.AddDate(0, 0, days)
		rec := s.do(http.MethodPost, base+"/entities", token, map[string]any{
			"kind":         "appointment",
			"title":        "Checkup",
			"scheduled_at": at,
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := s.do(http.MethodGet, base+"/upcoming/appointment?limit=1", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[[]models.Entity](t, rec)
	require.Len(t, got, 1)
	assert.True(t, got[0].ScheduledAt.Equal(now.AddDate(0, 0, 2)))

	rec = s.do(http.MethodGet, base+"/upcoming/unicorn", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVaccinationsAndTasks(t *testing.T) {
	s := newTestServer(t)
	baby, token := s.createBaby()
	base := "/babies/" + baby.ID.String()

	rec := s.do(http.MethodGet, base+"/vaccinations/upcoming?limit=2", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	doses := decode[[]models.Entity](t, rec)
	require.Len(t, doses, 2)
	assert.Equal(t, models.KindVaccinationDose, doses[0].Kind)
	assert.False(t, doses[0].ScheduledAt.Before(now.Truncate(24*time.Hour)))

	rec = s.do(http.MethodPost, base+"/tasks/generate", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Entity](t, rec), 4)

	rec = s.do(http.MethodPost, base+"/tasks/generate", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]models.Entity](t, rec))
}

func TestCalendar(t *testing.T) {
	s := newTestServer(t)
	baby, token := s.createBaby()
	base := "/babies/" + baby.ID.String()

	rec := s.do(http.MethodPost, base+"/entities", token, map[string]any{
		"kind":         "appointment",
		"title":        "Checkup",
		"scheduled_at": time.Date(2026, 10, 20, 10, 0, 0, 0, time.UTC),
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(http.MethodGet, base+"/calendar?year=2026&month=10", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	grid := decode[calendar.Grid](t, rec)

	var placed, today int
	for _, week := range grid.Weeks {
		for _, d := range week {
			placed += len(d.Entities)
			if d.IsToday {
				today++
				assert.Equal(t, 15, d.Date.Day())
			}
		}
	}
	assert.Equal(t, 1, placed)
	assert.Equal(t, 1, today)

	rec = s.do(http.MethodGet, base+"/calendar?month=13", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
