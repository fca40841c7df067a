package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"marketplace-service/internal/apperr"
	"marketplace-service/internal/role"
	"marketplace-service/pkg/jwtutil"
	"marketplace-service/pkg/logger"
)

const actorKey = "actor"

// AuthMiddleware validates the JWT token and places an explicit actor identity
// on the context. Banned callers are rejected here, before any engine call.
func AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)

		// Get the Authorization header
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			log.Warn("Missing Authorization header")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
		}

		// Check if it's a Bearer token
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			log.Warn("Invalid Authorization header format")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authorization format, expected Bearer token"})
		}

		// Validate the token
		claims, err := jwtutil.ValidateToken(parts[1])
		if err != nil {
			log.Error("Invalid JWT token", zap.Error(err))
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
		}

		if claims.Banned {
			log.Warn("Banned caller rejected",
				zap.Uint("user_id", claims.UserID),
				zap.String("email", claims.Email))
			return c.JSON(http.StatusForbidden, echo.Map{"code": apperr.KindForbidden, "error": "account is banned"})
		}

		// A tier the role policy does not recognize is a data-integrity bug,
		// not bad user input.
		tier, err := role.Parse(claims.Tier)
		if err != nil {
			log.Error("Unrecognized tier in token",
				zap.Uint("user_id", claims.UserID),
				zap.String("tier", claims.Tier))
			return c.JSON(http.StatusInternalServerError, echo.Map{"code": apperr.KindInternal, "error": "invalid account tier"})
		}

		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)
		c.Set(actorKey, role.Actor{ID: claims.UserID, Tier: tier})

		log.Info("Request authenticated",
			zap.Uint("user_id", claims.UserID),
			zap.String("tier", string(tier)))

		return next(c)
	}
}

// ActorFromContext retrieves the authenticated actor placed by AuthMiddleware.
func ActorFromContext(c echo.Context) (role.Actor, bool) {
	actor, ok := c.Get(actorKey).(role.Actor)
	return actor, ok
}

// OptionalAuth resolves the actor when a token is present but lets anonymous
// requests through. Used by the B2C checkout, where a signed-in customer is
// attached to the order and a guest is not.
func OptionalAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return next(c)
		}
		return AuthMiddleware(next)(c)
	}
}
