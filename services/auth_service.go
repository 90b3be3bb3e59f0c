package services

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/rotzmediagroup/storypixie-admin/metrics"
	"github.com/rotzmediagroup/storypixie-admin/models"
	"github.com/rotzmediagroup/storypixie-admin/repositories"
	"github.com/rotzmediagroup/storypixie-admin/utils"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountSuspended   = errors.New("account suspended")
)

// LoginResult is the outcome of the first authentication factor. When
// RequiresTwoFactor is set the token carries the pending scope and only the
// verification endpoint accepts it.
type LoginResult struct {
	Token             string `json:"token"`
	RequiresTwoFactor bool   `json:"requires_two_factor"`
}

type AuthService struct {
	users     repositories.UserRepository
	twoFactor *TwoFactorService
	tokens    *utils.TokenManager
	activity  repositories.ActivityRepository
}

func NewAuthService(users repositories.UserRepository, twoFactor *TwoFactorService, tokens *utils.TokenManager, activity repositories.ActivityRepository) *AuthService {
	return &AuthService{users: users, twoFactor: twoFactor, tokens: tokens, activity: activity}
}

// Login checks the password factor and issues either a full session or a
// pending one held for second-factor verification.
func (s *AuthService) Login(email, password string) (*LoginResult, error) {
	user, err := s.users.FindByEmail(email)
	if err != nil {
		logrus.Info("Login attempt for unknown admin: ", email)
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return nil, ErrInvalidCredentials
	}
	if user.Suspended {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return nil, ErrAccountSuspended
	}
	if !utils.ComparePassword(user.PasswordHash, password) {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return nil, ErrInvalidCredentials
	}

	return s.issueSession(user)
}

// LoginWithGoogle issues a session for an admin already provisioned in the
// panel, identified by a verified Google email. Unknown emails are rejected;
// admins are invited, never self-registered.
func (s *AuthService) LoginWithGoogle(email string) (*LoginResult, error) {
	user, err := s.users.FindByEmail(email)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return nil, ErrInvalidCredentials
	}
	if user.Suspended {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return nil, ErrAccountSuspended
	}

	return s.issueSession(user)
}

// VerifySecondFactor promotes a pending session to a fully authenticated one.
func (s *AuthService) VerifySecondFactor(userID uint, code string) (*LoginResult, error) {
	user, err := s.users.FindByID(userID)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	valid, err := s.twoFactor.CompleteSecondFactor(userID, code)
	if err != nil {
		return nil, err
	}
	if !valid {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return nil, ErrInvalidTwoFactorCode
	}

	token, err := s.tokens.GenerateAccessToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.recordLogin(user)
	return &LoginResult{Token: token}, nil
}

func (s *AuthService) issueSession(user *models.AdminUser) (*LoginResult, error) {
	held, err := s.twoFactor.RequiresSecondFactor(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check two-factor status: %w", err)
	}

	if held {
		token, err := s.tokens.GeneratePendingToken(user.ID, user.Email, string(user.Role))
		if err != nil {
			return nil, fmt.Errorf("failed to generate token: %w", err)
		}
		return &LoginResult{Token: token, RequiresTwoFactor: true}, nil
	}

	token, err := s.tokens.GenerateAccessToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.recordLogin(user)
	return &LoginResult{Token: token}, nil
}

func (s *AuthService) recordLogin(user *models.AdminUser) {
	if err := s.users.RecordLogin(user.ID); err != nil {
		logrus.Error("Error recording login time: ", err)
	}
	if err := s.activity.Record(&models.ActivityLog{
		AdminID: user.ID,
		Action:  models.ActionLogin,
		Target:  user.Email,
	}); err != nil {
		logrus.Error("Error recording login activity: ", err)
	}
	metrics.LoginsTotal.WithLabelValues("success").Inc()
}
