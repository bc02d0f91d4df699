package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-admin-secret")

func doRequest(t *testing.T, auth *AdminAuthenticator, header string) *httptest.ResponseRecorder {
	t.Helper()

	handler := auth.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/sweeps", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestMiddleware_ValidToken(t *testing.T) {
	token, err := GenerateToken(testSecret, "ops", time.Hour)
	require.NoError(t, err)

	rec := doRequest(t, NewAdminAuthenticator(testSecret), "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMiddleware_MissingHeader(t *testing.T) {
	rec := doRequest(t, NewAdminAuthenticator(testSecret), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Authorization missing")
}

func TestMiddleware_MalformedHeader(t *testing.T) {
	rec := doRequest(t, NewAdminAuthenticator(testSecret), `Token token="abc"`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Malformed authorization header")
}

func TestMiddleware_WrongSecret(t *testing.T) {
	token, err := GenerateToken([]byte("other-secret"), "ops", time.Hour)
	require.NoError(t, err)

	rec := doRequest(t, NewAdminAuthenticator(testSecret), "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddleware_ExpiredToken(t *testing.T) {
	token, err := GenerateToken(testSecret, "ops", -time.Minute)
	require.NoError(t, err)

	rec := doRequest(t, NewAdminAuthenticator(testSecret), "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddleware_TokenWithoutExpiry(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "ops"})
	signed, err := token.SignedString(testSecret)
	require.NoError(t, err)

	rec := doRequest(t, NewAdminAuthenticator(testSecret), "Bearer "+signed)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddleware_NoSecretConfigured(t *testing.T) {
	rec := doRequest(t, NewAdminAuthenticator(nil), "Bearer whatever")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
