package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cropshare/globals"
	"cropshare/models"
	"cropshare/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, userID, role string, ttl time.Duration) string {
	t.Helper()
	claims := &Claims{
		Name:   "Test User",
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(globals.JwtSecret)
	require.NoError(t, err)
	return token
}

func TestTokenFromRequestPrefersCookie(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: globals.TokenCookieName, Value: "cookie-token"})
	r.Header.Set("Authorization", "Bearer header-token")
	assert.Equal(t, "cookie-token", TokenFromRequest(r))
}

func TestTokenFromRequestBearerFallback(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer header-token")
	assert.Equal(t, "header-token", TokenFromRequest(r))

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, TokenFromRequest(r))
}

func TestAuthenticatePutsIdentityInContext(t *testing.T) {
	token := signToken(t, "u_abc", models.RoleFarmer, time.Hour)

	var gotUser, gotRole string
	h := Authenticate(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		gotUser = utils.GetUserIDFromRequest(r)
		gotRole = utils.GetRoleFromRequest(r)
	})

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: globals.TokenCookieName, Value: token})
	w := httptest.NewRecorder()
	h(w, r, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u_abc", gotUser)
	assert.Equal(t, models.RoleFarmer, gotRole)
}

func TestAuthenticateRejectsMissingAndExpiredTokens(t *testing.T) {
	called := false
	h := Authenticate(func(http.ResponseWriter, *http.Request, httprouter.Params) { called = true })

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodGet, "/", nil), nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	expired := signToken(t, "u_abc", models.RoleFarmer, -time.Minute)
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: globals.TokenCookieName, Value: expired})
	w = httptest.NewRecorder()
	h(w, r, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	assert.False(t, called)
}

func TestRequireRole(t *testing.T) {
	token := signToken(t, "u_ngo", models.RoleNGO, time.Hour)

	called := false
	h := Authenticate(RequireRole(models.RoleFarmer,
		func(http.ResponseWriter, *http.Request, httprouter.Params) { called = true }))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: globals.TokenCookieName, Value: token})
	w := httptest.NewRecorder()
	h(w, r, nil)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, called)
}

func TestOptionalAuthPassesThroughWithoutToken(t *testing.T) {
	var gotUser string
	h := OptionalAuth(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		gotUser = utils.GetUserIDFromRequest(r)
		w.WriteHeader(http.StatusOK)
	})

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodGet, "/", nil), nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, gotUser)
}
