package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skinTrack/domain"
	"skinTrack/pkg/utils"

	jsonres "skinTrack/pkg/response"
)

type stubValidator struct {
	userID string
	err    error
}

func (s stubValidator) ValidateTokenFromRedis(context.Context, string) (string, error) {
	return s.userID, s.err
}

func init() {
	utils.InitJWT("middleware-test-secret", time.Hour)
}

func token(t *testing.T, userID, role string) string {
	t.Helper()
	tok, err := utils.GenerateJWT(userID, role)
	require.NoError(t, err)
	return tok
}

// serve runs a request through mw and reports the status and the identity the
// downstream handler saw.
func serve(t *testing.T, mw echo.MiddlewareFunc, authHeader string) (*httptest.ResponseRecorder, uint) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen uint
	err := mw(func(c echo.Context) error {
		seen, _ = c.Get("user_id").(uint)
		return c.NoContent(http.StatusOK)
	})(c)
	require.NoError(t, err)
	return rec, seen
}

func TestAuthMiddleware(t *testing.T) {
	valid := token(t, "5", domain.RoleMember)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + valid, http.StatusUnauthorized},
		{"extra parts", "Bearer " + valid + " x", http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-jwt", http.StatusUnauthorized},
		{"valid", "Bearer " + valid, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, seen := serve(t, AuthMiddleware(), tt.header)
			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, uint(5), seen)
			}
		})
	}
}

func TestAuthMiddleware_ErrorEnvelope(t *testing.T) {
	rec, _ := serve(t, AuthMiddleware(), "")

	var body jsonres.ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "UNAUTHORIZED", body.Error.Code)
	assert.Equal(t, "Missing authorization header", body.Error.Message)
}

func TestAuthMiddlewareWithRedis(t *testing.T) {
	valid := "Bearer " + token(t, "5", domain.RoleMember)

	rec, seen := serve(t, AuthMiddlewareWithRedis(stubValidator{userID: "5"}), valid)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint(5), seen)

	rec, _ = serve(t, AuthMiddlewareWithRedis(stubValidator{err: domain.ErrTokenNotFound}), valid)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = serve(t, AuthMiddlewareWithRedis(stubValidator{userID: "6"}), valid)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminOnly(t *testing.T) {
	e := echo.New()
	for role, want := range map[string]int{domain.RoleAdmin: http.StatusOK, "ADMIN": http.StatusOK, domain.RoleMember: http.StatusForbidden} {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
		c.Set("role", role)

		require.NoError(t, AdminOnly()(func(c echo.Context) error { return c.NoContent(http.StatusOK) })(c))
		assert.Equal(t, want, rec.Code, role)
	}
}

func TestSelfOrAdmin(t *testing.T) {
	tests := []struct {
		name   string
		userID uint
		role   string
		param  string
		status int
	}{
		{"self", 3, domain.RoleMember, "3", http.StatusOK},
		{"someone else", 3, domain.RoleMember, "4", http.StatusForbidden},
		{"admin", 1, domain.RoleAdmin, "4", http.StatusOK},
		{"bad id", 3, domain.RoleMember, "abc", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
			c.SetParamNames("id")
			c.SetParamValues(tt.param)
			c.Set("user_id", tt.userID)
			c.Set("role", tt.role)

			require.NoError(t, SelfOrAdmin()(func(c echo.Context) error { return c.NoContent(http.StatusOK) })(c))
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestErrorHandler(t *testing.T) {
	e := echo.New()

	rec := httptest.NewRecorder()
	ErrorHandler(echo.NewHTTPError(http.StatusNotFound, "route not found"), e.NewContext(httptest.NewRequest(http.MethodGet, "/nope", nil), rec))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	var body jsonres.ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "NOT_FOUND", body.Error.Code)
	assert.Equal(t, "route not found", body.Error.Message)

	rec = httptest.NewRecorder()
	ErrorHandler(errors.New("boom"), e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "INTERNAL_SERVER_ERROR", body.Error.Code)
	assert.NotContains(t, rec.Body.String(), "boom")
}
