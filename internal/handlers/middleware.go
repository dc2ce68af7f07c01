package handlers

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"babymind/internal/security"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const BabyContextKey ContextKey = "baby_id"

// Middleware holds dependencies for middleware functions
type Middleware struct {
	tokens      *security.TokenIssuer
	adminSecret string
	logger      *zap.Logger
	now         func() time.Time
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(tokens *security.TokenIssuer, adminSecret string, logger *zap.Logger) *Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Middleware{tokens: tokens, adminSecret: adminSecret, logger: logger, now: time.Now}
}

// RequireBabyToken admits requests carrying a caregiver token for the
// {babyId} in the path
func (m *Middleware) RequireBabyToken(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pathID, err := uuid.Parse(r.PathValue("babyId"))
		if err != nil {
			respondWithError(w, m.logger, http.StatusBadRequest, ErrInvalidBabyID, "", nil)
			return
		}

		raw, ok := bearerToken(r)
		if !ok {
			respondWithError(w, m.logger, http.StatusUnauthorized, ErrUnauthorized, "", nil)
			return
		}
		babyID, err := m.tokens.Verify(raw, m.now())
		if err != nil {
			respondWithError(w, m.logger, http.StatusUnauthorized, ErrUnauthorized, "rejected caregiver token", err)
			return
		}
		if babyID != pathID {
			respondWithError(w, m.logger, http.StatusForbidden, ErrForbidden, "", nil)
			return
		}

		ctx := context.WithValue(r.Context(), BabyContextKey, babyID)
		next(w, r.WithContext(ctx))
	}
}

// RequireAdmin admits requests carrying the admin secret header. With no
// secret configured every request is refused.
func (m *Middleware) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		given := r.Header.Get(AdminSecretHeader)
		if m.adminSecret == "" || subtle.ConstantTimeCompare([]byte(given), []byte(m.adminSecret)) != 1 {
			respondWithError(w, m.logger, http.StatusForbidden, ErrForbidden, "", nil)
			return
		}
		next(w, r)
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}
	return token, true
}

// GetBabyFromContext returns the baby id admitted by RequireBabyToken
func GetBabyFromContext(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(BabyContextKey).(uuid.UUID)
	return id
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Logging middleware logs HTTP requests
func Logging(logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)))
	})
}
