package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/exam-seat-booking/internal/utils"
)

const testSecret = "test-secret"

func doRequest(t *testing.T, mw ...echo.MiddlewareFunc) (*echo.Echo, func(authHeader string) *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	h := func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"user_id": CurrentUserID(c),
			"email":   CurrentEmail(c),
			"role":    CurrentRole(c),
		})
	}
	e.GET("/protected", h, mw...)
	return e, func(authHeader string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		if authHeader != "" {
			req.Header.Set("Authorization", authHeader)
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}
}

func TestJWTAuthRejectsMissingToken(t *testing.T) {
	_, do := doRequest(t, JWTAuth(testSecret))
	rec := do("")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthRejectsGarbageToken(t *testing.T) {
	_, do := doRequest(t, JWTAuth(testSecret))
	rec := do("Bearer not-a-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthRejectsWrongSecret(t *testing.T) {
	at, err := utils.NewAccessToken("other-secret", 1, "a@b.c", "APPLICANT", 5)
	require.NoError(t, err)

	_, do := doRequest(t, JWTAuth(testSecret))
	rec := do("Bearer " + at.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthInjectsTypedClaims(t *testing.T) {
	at, err := utils.NewAccessToken(testSecret, 42, "user@example.com", "APPLICANT", 5)
	require.NoError(t, err)

	_, do := doRequest(t, JWTAuth(testSecret))
	rec := do("Bearer " + at.Token)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t,
		`{"user_id":42,"email":"user@example.com","role":"APPLICANT"}`,
		rec.Body.String())
}

func TestRequireRoleAllowsMatchingRole(t *testing.T) {
	at, err := utils.NewAccessToken(testSecret, 1, "admin@example.com", "ADMIN", 5)
	require.NoError(t, err)

	_, do := doRequest(t, JWTAuth(testSecret), RequireRole("ADMIN"))
	rec := do("Bearer " + at.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRoleRejectsOtherRole(t *testing.T) {
	at, err := utils.NewAccessToken(testSecret, 1, "user@example.com", "APPLICANT", 5)
	require.NoError(t, err)

	_, do := doRequest(t, JWTAuth(testSecret), RequireRole("ADMIN"))
	rec := do("Bearer " + at.Token)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
