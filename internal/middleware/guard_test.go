package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tool-market/internal/apperrors"
	"tool-market/internal/models"
	"tool-market/internal/services"
)

type stubRoles map[string]models.Role

func (s stubRoles) RoleOf(_ context.Context, email string) (models.Role, error) {
	if email == "broken@x.com" {
		return models.RoleCustomer, errors.New("store down")
	}
	return s[email], nil
}

type guardFixture struct {
	auth   *services.AuthService
	strict *AccessGuard
	legacy *AccessGuard
}

func newGuardFixture() guardFixture {
	auth := services.NewAuthService("secret", time.Hour, zerolog.Nop())
	roles := stubRoles{"root@x.com": models.RoleAdmin, "cust@x.com": models.RoleCustomer}
	return guardFixture{
		auth:   auth,
		strict: NewAccessGuard(auth, roles, true, zerolog.Nop()),
		legacy: NewAccessGuard(auth, roles, false, zerolog.Nop()),
	}
}

func identityEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		email, _ := IdentityFromContext(r.Context())
		w.Write([]byte(email))
	})
}

func serve(h http.Handler, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func TestAuthenticateAcceptsValidToken(t *testing.T) {
	f := newGuardFixture()
	token, err := f.auth.Issue("u@x.com")
	require.NoError(t, err)

	rec := serve(f.strict.Authenticate(identityEcho()), "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u@x.com", rec.Body.String())
}

func TestAuthenticateRejects(t *testing.T) {
	f := newGuardFixture()
	expiredIssuer := services.NewAuthService("secret", -time.Minute, zerolog.Nop())
	expired, err := expiredIssuer.Issue("u@x.com")
	require.NoError(t, err)

	cases := []struct {
		name         string
		header       string
		strictStatus int
		legacyStatus int
	}{
		{"missing header", "", http.StatusUnauthorized, http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, http.StatusForbidden},
		{"malformed token", "Bearer not.a.token", http.StatusUnauthorized, http.StatusForbidden},
		{"expired token", "Bearer " + expired, http.StatusUnauthorized, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := serve(f.strict.Authenticate(identityEcho()), tc.header)
			assert.Equal(t, tc.strictStatus, rec.Code)
			assert.Equal(t, string(apperrors.CodeUnauthenticated), errorCode(t, rec))

			rec = serve(f.legacy.Authenticate(identityEcho()), tc.header)
			assert.Equal(t, tc.legacyStatus, rec.Code)
		})
	}
}

func TestAdminGate(t *testing.T) {
	f := newGuardFixture()
	token := func(email string) string {
		tok, err := f.auth.Issue(email)
		require.NoError(t, err)
		return "Bearer " + tok
	}

	assert.Equal(t, http.StatusOK, serve(f.strict.Admin(identityEcho()), token("root@x.com")).Code)
	assert.Equal(t, http.StatusForbidden, serve(f.strict.Admin(identityEcho()), token("cust@x.com")).Code)
	assert.Equal(t, http.StatusForbidden, serve(f.strict.Admin(identityEcho()), token("ghost@x.com")).Code)
	assert.Equal(t, http.StatusInternalServerError, serve(f.strict.Admin(identityEcho()), token("broken@x.com")).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(f.strict.Admin(identityEcho()), "").Code)
}

func TestRequireAdminWithoutIdentity(t *testing.T) {
	f := newGuardFixture()
	rec := serve(f.strict.RequireAdmin(identityEcho()), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
