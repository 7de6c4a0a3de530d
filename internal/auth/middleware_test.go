package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-with-enough-entropy!!"

func signToken(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestParseValidToken(t *testing.T) {
	token := signToken(t, jwt.MapClaims{
		"sub":    "coach-1",
		"iss":    "tracker",
		"scopes": "logs:read logs:write",
		"exp":    time.Now().Add(time.Hour).Unix(),
	}, testSecret)

	claims, err := Parse(token, Config{Secret: testSecret, Issuer: "tracker"})
	require.NoError(t, err)
	require.Equal(t, "coach-1", claims.Subject)
	require.True(t, claims.HasScope("logs:write"))
	require.False(t, claims.HasScope("admin"))
}

func TestParseRejectsWrongSecretAndIssuer(t *testing.T) {
	token := signToken(t, jwt.MapClaims{"sub": "x", "iss": "other"}, testSecret)

	_, err := Parse(token, Config{Secret: "different-secret"})
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = Parse(token, Config{Secret: testSecret, Issuer: "tracker"})
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestMiddlewareGuardsAPIButSkipsHealth(t *testing.T) {
	var seen *Claims
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := NewMiddleware(Config{Secret: testSecret}).Wrap(next)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/users", nil))
	require.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, jwt.MapClaims{"sub": "athlete"}, testSecret))
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, seen)
	require.Equal(t, "athlete", seen.Subject)
}

func TestRequireScope(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := NewMiddleware(Config{Secret: testSecret}).Wrap(RequireScope(ScopeLogsWrite)(next))

	serve := func(scopes string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/users", nil)
		token := signToken(t, jwt.MapClaims{"sub": "athlete", "scopes": scopes}, testSecret)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr.Code
	}

	require.Equal(t, http.StatusOK, serve("logs:read logs:write"))
	require.Equal(t, http.StatusForbidden, serve("logs:read"))

	rr := httptest.NewRecorder()
	RequireScope(ScopeLogsWrite)(next).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/users", nil))
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}
