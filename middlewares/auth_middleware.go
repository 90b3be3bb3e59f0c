package middlewares

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/rotzmediagroup/storypixie-admin/models"
	"github.com/rotzmediagroup/storypixie-admin/repositories"
	"github.com/rotzmediagroup/storypixie-admin/utils"
)

type TokenValidator interface {
	ValidateToken(token string) (*utils.TokenClaims, error)
}

type AuthMiddleware struct {
	tokenValidator TokenValidator
	userRepo       repositories.UserRepository
}

func NewAuthMiddleware(validator TokenValidator, userRepo repositories.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{
		tokenValidator: validator,
		userRepo:       userRepo,
	}
}

// RequireAuth validates the bearer token of either scope and loads the admin
// into context. Pending-scope sessions pass; RequireFullScope gates them.
func (am *AuthMiddleware) RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := extractToken(c)
			if token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "authorization token not found")
			}

			claims, err := am.tokenValidator.ValidateToken(token)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			user, err := am.userRepo.FindByID(claims.UserID)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "admin not found")
			}
			if user.Suspended {
				return echo.NewHTTPError(http.StatusForbidden, "account suspended")
			}

			c.Set("user", user)
			c.Set("claims", claims)
			return next(c)
		}
	}
}

// RequireFullScope rejects sessions still held for second-factor
// verification.
func (am *AuthMiddleware) RequireFullScope() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := c.Get("claims").(*utils.TokenClaims)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
			}
			if claims.Scope != utils.ScopeFull {
				return echo.NewHTTPError(http.StatusUnauthorized, "two-factor verification required")
			}
			return next(c)
		}
	}
}

// RequireRole enforces a minimum admin role.
func RequireRole(role models.AdminRole) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := c.Get("user").(*models.AdminUser)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
			}
			if !user.Role.AtLeast(role) {
				return echo.NewHTTPError(http.StatusForbidden, "insufficient role: "+string(role)+" required")
			}
			return next(c)
		}
	}
}

func extractToken(c echo.Context) string {
	token := c.Request().Header.Get("Authorization")
	return strings.TrimPrefix(token, "Bearer ")
}
