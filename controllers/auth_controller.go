package controllers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"golang.org/x/oauth2"

	"github.com/rotzmediagroup/storypixie-admin/auth"
	"github.com/rotzmediagroup/storypixie-admin/services"
	"github.com/rotzmediagroup/storypixie-admin/utils"
)

type AuthController struct {
	authService *services.AuthService
	oauthConfig *oauth2.Config
}

func NewAuthController(authService *services.AuthService, oauthConfig *oauth2.Config) *AuthController {
	return &AuthController{authService: authService, oauthConfig: oauthConfig}
}

// Login handles the password factor. When the admin has two-factor auth
// enabled the returned token only grants access to the verification endpoint.
func (ac *AuthController) Login(ctx echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request payload"})
	}

	result, err := ac.authService.Login(req.Email, req.Password)
	switch {
	case err == nil:
		return ctx.JSON(http.StatusOK, result)
	case errors.Is(err, services.ErrInvalidCredentials):
		return ctx.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid email or password"})
	case errors.Is(err, services.ErrAccountSuspended):
		return ctx.JSON(http.StatusForbidden, echo.Map{"error": "account suspended"})
	default:
		return ctx.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to log in"})
	}
}

// LoginWithGoogle accepts either an OAuth authorization code or an access
// token, verifies the Google identity, and issues a session subject to the
// same two-factor gating as password login.
func (ac *AuthController) LoginWithGoogle(ctx echo.Context) error {
	var req struct {
		Code        string `json:"code"`
		AccessToken string `json:"access_token"`
	}
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request payload"})
	}

	accessToken := req.AccessToken
	if accessToken == "" && req.Code != "" {
		token, err := auth.ExchangeCode(ctx.Request().Context(), ac.oauthConfig, req.Code)
		if err != nil {
			return ctx.JSON(http.StatusUnauthorized, echo.Map{"error": "failed to exchange authorization code"})
		}
		accessToken = token.AccessToken
	}
	if accessToken == "" {
		return ctx.JSON(http.StatusBadRequest, echo.Map{"error": "code or access_token required"})
	}

	email, err := auth.VerifyGoogleToken(ctx.Request().Context(), accessToken)
	if err != nil {
		return ctx.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid Google token"})
	}

	result, err := ac.authService.LoginWithGoogle(email)
	switch {
	case err == nil:
		return ctx.JSON(http.StatusOK, result)
	case errors.Is(err, services.ErrInvalidCredentials):
		return ctx.JSON(http.StatusUnauthorized, echo.Map{"error": "no admin account for this Google identity"})
	case errors.Is(err, services.ErrAccountSuspended):
		return ctx.JSON(http.StatusForbidden, echo.Map{"error": "account suspended"})
	default:
		return ctx.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to log in"})
	}
}

// VerifyLogin promotes a pending session to a full one after a valid code.
func (ac *AuthController) VerifyLogin(ctx echo.Context) error {
	claims, ok := ctx.Get("claims").(*utils.TokenClaims)
	if !ok {
		return ctx.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
	}

	var req struct {
		Code string `json:"code" form:"code"`
	}
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request payload"})
	}

	result, err := ac.authService.VerifySecondFactor(claims.UserID, req.Code)
	switch {
	case err == nil:
		return ctx.JSON(http.StatusOK, result)
	case errors.Is(err, services.ErrInvalidTwoFactorCode):
		return ctx.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid two-factor code"})
	case errors.Is(err, utils.ErrMalformedCode):
		return ctx.JSON(http.StatusBadRequest, echo.Map{"error": "two-factor code must be exactly 6 digits"})
	case errors.Is(err, services.ErrSetupNotStarted):
		return ctx.JSON(http.StatusBadRequest, echo.Map{"error": "two-factor authentication is not configured"})
	default:
		return ctx.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to verify two-factor code"})
	}
}
