package middlewares

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/rotzmediagroup/storypixie-admin/config"
	"github.com/rotzmediagroup/storypixie-admin/models"
	"github.com/rotzmediagroup/storypixie-admin/services"
)

// RequireTwoFactorEnrollment enforces the mandatory-enrollment policy: with
// MFA_ENFORCEMENT=required, admins who have not enabled two-factor auth are
// locked out of everything except the setup endpoints until they enroll.
func RequireTwoFactorEnrollment(twoFactor *services.TwoFactorService, policy string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if policy != config.EnforcementRequired {
				return next(c)
			}
			if isExemptTwoFactorEndpoint(c.Path()) {
				return next(c)
			}

			user, ok := c.Get("user").(*models.AdminUser)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
			}

			enabled, err := twoFactor.IsEnabled(user.ID)
			if err != nil {
				// A failed status check is not "not enrolled": surface it so
				// the client retries instead of re-running setup.
				return c.JSON(http.StatusServiceUnavailable, echo.Map{
					"error": "failed to check two-factor status",
				})
			}
			if !enabled {
				return c.JSON(http.StatusForbidden, echo.Map{
					"error":   "two_factor_enrollment_required",
					"message": "two-factor authentication must be configured before using the admin panel",
				})
			}

			return next(c)
		}
	}
}

func isExemptTwoFactorEndpoint(path string) bool {
	exemptPaths := []string{
		"/api/2fa",
		"/api/auth/logout",
	}

	for _, exemptPath := range exemptPaths {
		if strings.HasPrefix(path, exemptPath) {
			return true
		}
	}
	return false
}
