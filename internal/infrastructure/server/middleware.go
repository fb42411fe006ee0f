package server

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	httpHandlers "github.com/foodcart/core/internal/adapters/http"
	"github.com/foodcart/core/internal/application/services"
)

// authMiddleware verifies a bearer token when one is presented and stores
// its username in the context. With required set, requests without a
// token are rejected.
func (s *Server) authMiddleware(authService *services.AuthService, required bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				if required {
					return echo.NewHTTPError(http.StatusUnauthorized, "Missing authorization header")
				}
				return next(c)
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid authorization header format")
			}

			claims, err := authService.ValidateToken(tokenString)
			if err != nil {
				s.logger.LogSecurityEvent("invalid_token", "", c.RealIP(), map[string]interface{}{
					"error": err.Error(),
				})
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			c.Set(httpHandlers.ContextKeyUsername, claims.Username)

			return next(c)
		}
	}
}
