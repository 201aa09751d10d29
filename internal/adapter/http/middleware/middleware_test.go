package middleware

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/http/shared"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockResolver struct{ mock.Mock }

func (m *MockResolver) Resolve(ctx context.Context, header string) (*domain.Principal, *domain.User, error) {
	args := m.Called(ctx, header)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.Principal), args.Get(1).(*domain.User), args.Error(2)
}

func newResponder(m *metrics.MetricsManager) *shared.Responder {
	return shared.NewResponder(logger.NewNop(), m)
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) shared.ErrorResponse {
	t.Helper()
	var body shared.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestAuthenticate(t *testing.T) {
	user := &domain.User{ID: "u1", Role: domain.RoleUser}
	principal := domain.NewPrincipal(user, "good")

	resolver := new(MockResolver)
	resolver.On("Resolve", mock.Anything, "").Return(nil, nil, domain.ErrMissingAuthHeader)
	resolver.On("Resolve", mock.Anything, "Bearer stale").Return(nil, nil, domain.ErrInvalidToken)
	resolver.On("Resolve", mock.Anything, "Bearer good").Return(principal, user, nil)

	auth := NewAuthMiddleware(resolver, newResponder(nil))
	var seen *domain.Principal
	h := auth.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = shared.PrincipalFrom(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name    string
		header  string
		status  int
		message string
	}{
		{name: "missing header", header: "", status: http.StatusBadRequest, message: "Authorization header not found."},
		{name: "revoked token", header: "Bearer stale", status: http.StatusUnauthorized, message: "Invalid authorization token."},
		{name: "active session", header: "Bearer good", status: http.StatusNoContent},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tc.status, rec.Code)
			if tc.message != "" {
				assert.Equal(t, tc.message, errorBody(t, rec).Message)
				assert.Nil(t, seen)
				return
			}
			require.NotNil(t, seen)
			assert.Equal(t, "u1", seen.ID)
		})
	}
}

func TestRequireBody(t *testing.T) {
	var got string
	h := RequireBody(newResponder(nil))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		got = string(raw)
		w.WriteHeader(http.StatusOK)
	}))

	for _, body := range []string{"", "   ", "{}", " { } ", "null"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/listings", strings.NewReader(body)))
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %q", body)
		assert.Equal(t, "Request body can't be blank.", errorBody(t, rec).Message)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/listings", strings.NewReader(`{"title":"Bike"}`)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `{"title":"Bike"}`, got)
}

func TestObserveRecordsRoutePattern(t *testing.T) {
	m := metrics.NewMetricsManager("middleware-test")
	r := chi.NewRouter()
	r.Use(Observe(logger.NewNop(), m))
	r.Get("/listings/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	for _, id := range []string{"a", "b"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/listings/"+id, nil))
		require.Equal(t, http.StatusTeapot, rec.Code)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/listings/{id}", "418")))
}
