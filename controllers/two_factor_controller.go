package controllers

import (
	"errors"
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/rotzmediagroup/storypixie-admin/models"
	"github.com/rotzmediagroup/storypixie-admin/repositories"
	"github.com/rotzmediagroup/storypixie-admin/services"
	"github.com/rotzmediagroup/storypixie-admin/utils"
)

// TwoFactorController exposes the enrollment flow. Each admin has at most one
// EnrollmentSession holding the setup state machine, so steps arrive in order
// and every tab verifies against the same pending secret. Sessions are
// dropped once enrollment succeeds or is disabled; a failed status check is
// retried on the next request instead of being served from the cache.
type TwoFactorController struct {
	twoFactor *services.TwoFactorService
	activity  repositories.ActivityRepository

	mu       sync.Mutex
	sessions map[uint]*services.EnrollmentSession
}

func NewTwoFactorController(twoFactor *services.TwoFactorService, activity repositories.ActivityRepository) *TwoFactorController {
	return &TwoFactorController{
		twoFactor: twoFactor,
		activity:  activity,
		sessions:  make(map[uint]*services.EnrollmentSession),
	}
}

func (tc *TwoFactorController) session(user *models.AdminUser) (*services.EnrollmentSession, error) {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	sess, ok := tc.sessions[user.ID]
	if !ok {
		sess = services.NewEnrollmentSession(tc.twoFactor, user.ID, user.Email)
		tc.sessions[user.ID] = sess
	}

	state := sess.State()
	if state == services.StateChecking || state == services.StateError {
		if _, err := sess.Begin(); err != nil {
			return sess, err
		}
	}
	return sess, nil
}

func (tc *TwoFactorController) dropSession(userID uint) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	delete(tc.sessions, userID)
}

// Status reports enrollment state so the client can decide between the
// "start setup" and "disable" views.
func (tc *TwoFactorController) Status(ctx echo.Context) error {
	user := ctx.Get("user").(*models.AdminUser)

	sess, err := tc.session(user)
	if err != nil {
		// Not "not enrolled": the check itself failed, the client may retry.
		return ctx.JSON(http.StatusServiceUnavailable, echo.Map{
			"error": "failed to check two-factor status",
			"state": sess.State(),
		})
	}

	state := sess.State()
	return ctx.JSON(http.StatusOK, echo.Map{
		"enabled": state == services.StateEnabled || state == services.StateSuccess,
		"state":   state,
	})
}

// Setup generates a secret and returns the provisioning material. Calling it
// again before verifying replaces the pending secret.
func (tc *TwoFactorController) Setup(ctx echo.Context) error {
	user := ctx.Get("user").(*models.AdminUser)

	sess, err := tc.session(user)
	if err != nil {
		return ctx.JSON(http.StatusServiceUnavailable, echo.Map{
			"error": "failed to check two-factor status",
		})
	}
	setup, err := sess.Start()
	switch {
	case err == nil:
		return ctx.JSON(http.StatusOK, echo.Map{
			"secret":      setup.Secret,
			"otpauth_url": setup.URI,
			"qr_code":     setup.QRDataURI,
			"state":       sess.State(),
			"message":     "scan the QR code with your authenticator app",
		})
	case errors.Is(err, services.ErrInvalidTransition):
		return ctx.JSON(http.StatusConflict, echo.Map{
			"error": "setup not available in the current state",
			"state": sess.State(),
		})
	case errors.Is(err, services.ErrTwoFactorAlreadyEnabled):
		return ctx.JSON(http.StatusConflict, echo.Map{
			"error": "two-factor authentication is already enabled",
			"state": sess.State(),
		})
	case errors.Is(err, utils.ErrRandomSource):
		logrus.Error("Error generating two-factor secret: ", err)
		return ctx.JSON(http.StatusInternalServerError, echo.Map{
			"error": "failed to generate two-factor secret, try again later",
		})
	default:
		return ctx.JSON(http.StatusInternalServerError, echo.Map{
			"error": "failed to store two-factor secret",
			"state": sess.State(),
		})
	}
}

// Verify checks the first code and enables the second factor.
func (tc *TwoFactorController) Verify(ctx echo.Context) error {
	user := ctx.Get("user").(*models.AdminUser)

	var req struct {
		Code string `json:"code" form:"code"`
	}
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request payload"})
	}

	sess, err := tc.session(user)
	if err != nil {
		return ctx.JSON(http.StatusServiceUnavailable, echo.Map{
			"error": "failed to check two-factor status",
		})
	}

	state, err := sess.Submit(req.Code)
	switch {
	case err == nil:
		// The flow is complete; enrollment status now lives in the store.
		tc.dropSession(user.ID)
		if err := tc.activity.Record(&models.ActivityLog{
			AdminID: user.ID,
			Action:  models.ActionTwoFactorEnabled,
			Target:  user.Email,
		}); err != nil {
			logrus.Error("Error recording activity: ", err)
		}
		return ctx.JSON(http.StatusOK, echo.Map{
			"state":   state,
			"message": "two-factor authentication enabled",
		})
	case errors.Is(err, utils.ErrMalformedCode):
		return ctx.JSON(http.StatusBadRequest, echo.Map{
			"error": "two-factor code must be exactly 6 digits",
			"state": state,
		})
	case errors.Is(err, services.ErrInvalidTwoFactorCode):
		return ctx.JSON(http.StatusBadRequest, echo.Map{
			"error": "invalid two-factor code",
			"state": state,
		})
	case errors.Is(err, services.ErrInvalidTransition):
		return ctx.JSON(http.StatusConflict, echo.Map{
			"error": "no code expected in the current state",
			"state": state,
		})
	case errors.Is(err, services.ErrSetupNotStarted):
		return ctx.JSON(http.StatusBadRequest, echo.Map{
			"error": "no pending two-factor setup found, start setup again",
			"state": state,
		})
	default:
		return ctx.JSON(http.StatusInternalServerError, echo.Map{
			"error": "failed to verify two-factor code",
			"state": state,
		})
	}
}

// Disable turns the second factor off. Disabling twice is a no-op.
func (tc *TwoFactorController) Disable(ctx echo.Context) error {
	user := ctx.Get("user").(*models.AdminUser)

	if err := tc.twoFactor.Disable(user.ID); err != nil {
		return ctx.JSON(http.StatusInternalServerError, echo.Map{
			"error": "failed to disable two-factor authentication",
		})
	}
	tc.dropSession(user.ID)

	if err := tc.activity.Record(&models.ActivityLog{
		AdminID: user.ID,
		Action:  models.ActionTwoFactorDisabled,
		Target:  user.Email,
	}); err != nil {
		logrus.Error("Error recording activity: ", err)
	}

	return ctx.JSON(http.StatusOK, echo.Map{
		"enabled": false,
		"state":   services.StateIdle,
		"message": "two-factor authentication disabled",
	})
}
