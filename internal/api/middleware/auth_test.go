package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/flightdeck-ai/flightdeck/internal/domain"
	"github.com/stretchr/testify/assert"
)

type stubVerifier struct {
	identity *Identity
	err      error
}

func (s *stubVerifier) VerifyToken(ctx context.Context, token string) (*Identity, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.identity, nil
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestJWTAuth_MissingHeader(t *testing.T) {
	handler := JWTAuth(&stubVerifier{})(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuth_MalformedHeader(t *testing.T) {
	handler := JWTAuth(&stubVerifier{})(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuth_InvalidToken(t *testing.T) {
	verifier := &stubVerifier{err: errors.New("expired")}
	handler := JWTAuth(verifier)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestJWTAuth_ValidTokenPopulatesIdentity(t *testing.T) {
	verifier := &stubVerifier{identity: &Identity{UserID: "u1", Email: "p@x.com", Role: domain.UserRolePilot}}

	var seen *Identity
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetIdentity(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := JWTAuth(verifier)(inner)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotNil(t, seen)
	assert.Equal(t, "u1", seen.UserID)
}

func TestGetUserID_NoIdentity(t *testing.T) {
	assert.Equal(t, "", GetUserID(context.Background()))
}

func TestRequireRole_AllowsMatchingRole(t *testing.T) {
	handler := RequireRole(domain.UserRoleAdmin)(okHandler())

	ctx := context.WithValue(context.Background(), IdentityKey, &Identity{UserID: "u1", Role: domain.UserRoleAdmin})
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRole_RejectsOtherRole(t *testing.T) {
	handler := RequireRole(domain.UserRoleAdmin)(okHandler())

	ctx := context.WithValue(context.Background(), IdentityKey, &Identity{UserID: "u1", Role: domain.UserRolePilot})
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRole_NoIdentity(t *testing.T) {
	handler := RequireRole(domain.UserRoleAdmin)(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
