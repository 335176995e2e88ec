package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"skinTrack/domain"
	"skinTrack/pkg/logger"
	"skinTrack/pkg/utils"

	jsonres "skinTrack/pkg/response"

	"github.com/labstack/echo/v4"
)

const tokenLookupTimeout = 5 * time.Second

// TokenValidator resolves a token to the user id it was issued to.
type TokenValidator interface {
	ValidateTokenFromRedis(ctx context.Context, token string) (string, error)
}

// authFailure carries the status and message for a rejected request.
type authFailure struct {
	status  int
	code    string
	message string
}

func (f *authFailure) respond(c echo.Context) error {
	return c.JSON(f.status, jsonres.Error(f.code, f.message, nil))
}

func unauthorized(message string) *authFailure {
	return &authFailure{http.StatusUnauthorized, "UNAUTHORIZED", message}
}

func forbidden(message string) *authFailure {
	return &authFailure{http.StatusForbidden, "FORBIDDEN", message}
}

// bearerClaims extracts and verifies the JWT from the Authorization header.
func bearerClaims(c echo.Context) (*utils.Claims, string, *authFailure) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return nil, "", unauthorized("Missing authorization header")
	}

	scheme, token, ok := strings.Cut(authHeader, " ")
	if !ok || scheme != "Bearer" || token == "" || strings.Contains(token, " ") {
		return nil, "", unauthorized("Invalid authorization format")
	}

	claims, err := utils.ParseJWT(token)
	if err != nil {
		logger.Debug("Rejected JWT", err)
		return nil, "", unauthorized("Invalid token")
	}

	expAt, err := claims.GetExpirationTime()
	if err != nil || expAt == nil {
		return nil, "", forbidden("Status Forbidden")
	}
	if time.Now().After(expAt.Time) {
		return nil, "", forbidden("Token expired")
	}

	return claims, token, nil
}

func setIdentity(c echo.Context, claims *utils.Claims, token string) *authFailure {
	userID, err := strconv.ParseUint(claims.UserID, 10, 64)
	if err != nil {
		logger.Error("Invalid user ID in token", err)
		return forbidden("Invalid user ID in token")
	}

	c.Set("user_id", uint(userID))
	c.Set("role", claims.Role)
	c.Set("token", token)
	return nil
}

// AuthMiddleware accepts any valid, unexpired JWT.
func AuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, token, fail := bearerClaims(c)
			if fail != nil {
				return fail.respond(c)
			}
			if fail := setIdentity(c, claims, token); fail != nil {
				return fail.respond(c)
			}
			return next(c)
		}
	}
}

// AuthMiddlewareWithRedis additionally requires the token to still be on
// record, so logged out tokens are refused before they expire.
func AuthMiddlewareWithRedis(tokenValidator TokenValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, token, fail := bearerClaims(c)
			if fail != nil {
				return fail.respond(c)
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), tokenLookupTimeout)
			defer cancel()

			userID, err := tokenValidator.ValidateTokenFromRedis(ctx, token)
			if err != nil {
				logger.Warn("Token not found in Redis", err)
				return unauthorized("Token expired or invalid").respond(c)
			}

			if userID != claims.UserID {
				logger.Error("UserID mismatch between JWT and Redis", "jwt_user_id", claims.UserID, "stored_user_id", userID)
				return unauthorized("Invalid token").respond(c)
			}

			if fail := setIdentity(c, claims, token); fail != nil {
				return fail.respond(c)
			}
			return next(c)
		}
	}
}

func isAdmin(c echo.Context) bool {
	role, ok := c.Get("role").(string)
	return ok && strings.EqualFold(role, domain.RoleAdmin)
}

func AdminOnly() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !isAdmin(c) {
				return forbidden("Admin access required").respond(c)
			}
			return next(c)
		}
	}
}

// SelfOrAdmin lets admins through and restricts everyone else to the user
// named by the :id path parameter.
func SelfOrAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			loggedInUserID, ok := c.Get("user_id").(uint)
			if !ok {
				return unauthorized("User not authenticated").respond(c)
			}

			if isAdmin(c) {
				return next(c)
			}

			requestedID, err := strconv.ParseUint(c.Param("id"), 10, 64)
			if err != nil {
				return c.JSON(http.StatusBadRequest, jsonres.Error("BAD_REQUEST", "Invalid user ID", nil))
			}

			if uint(requestedID) != loggedInUserID {
				return forbidden("You can only access your own data").respond(c)
			}

			return next(c)
		}
	}
}
