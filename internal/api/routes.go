package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eldanielo/ceassist/domain/entities"
	"github.com/eldanielo/ceassist/internal/auth"
	"github.com/eldanielo/ceassist/internal/websocket"
)

// InitRoutes initializes all API routes
func InitRoutes(e *echo.Echo, handler *websocket.Handler, verifier *auth.Verifier, logger *zap.Logger) {
	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"service": "ceassist-server",
		})
	})

	// WebSocket endpoints; authentication happens before the upgrade, so a
	// rejected caller never allocates connection state.
	e.GET("/ws/transcribe", func(c echo.Context) error {
		identity, ok := authenticate(c, verifier, logger)
		if !ok {
			return nil // rejection response already written
		}
		return handler.HandleTranscribe(c, identity)
	})

	e.GET("/ws/test_text", func(c echo.Context) error {
		identity, ok := authenticate(c, verifier, logger)
		if !ok {
			return nil
		}
		return handler.HandleTestText(c, identity)
	})
}

// authenticate extracts the caller token from the token query parameter or
// the Authorization header and verifies it. On rejection it writes the
// 401/403 response and reports false.
func authenticate(c echo.Context, verifier *auth.Verifier, logger *zap.Logger) (entities.Identity, bool) {
	token := c.QueryParam("token")
	if token == "" {
		if header := c.Request().Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
			token = strings.TrimPrefix(header, "Bearer ")
		}
	}

	identity, err := verifier.Verify(token)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrMissingToken):
			logger.Warn("Connection rejected: missing token")
			c.JSON(http.StatusUnauthorized, ErrorResponse{
				Error:   "missing_token",
				Message: "Authentication token is required",
			})
		case errors.Is(err, auth.ErrForbidden):
			logger.Warn("Connection rejected: user not allowed")
			c.JSON(http.StatusForbidden, ErrorResponse{
				Error:   "forbidden",
				Message: "User not allowed",
			})
		default:
			logger.Warn("Connection rejected: invalid token", zap.Error(err))
			c.JSON(http.StatusUnauthorized, ErrorResponse{
				Error:   "invalid_token",
				Message: "Invalid or expired token",
			})
		}
		return entities.Identity{}, false
	}

	logger.Info("Connection authenticated", zap.String("user", identity.Email))
	return identity, true
}
