package services

import (
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/rotzmediagroup/storypixie-admin/metrics"
	"github.com/rotzmediagroup/storypixie-admin/repositories"
	"github.com/rotzmediagroup/storypixie-admin/utils"
)

var (
	ErrInvalidTwoFactorCode    = errors.New("invalid two-factor code")
	ErrSetupNotStarted         = errors.New("two-factor setup has not been started")
	ErrTwoFactorAlreadyEnabled = errors.New("two-factor authentication is already enabled")
)

// TwoFactorSetup carries everything the client needs to provision an
// authenticator app. The secret is exposed here, during setup, and nowhere
// else.
type TwoFactorSetup struct {
	Secret    string `json:"secret"`
	URI       string `json:"otpauth_url"`
	QRDataURI string `json:"qr_code"`
}

type TwoFactorService struct {
	repo   repositories.TwoFactorRepository
	config utils.TwoFactorConfig
}

func NewTwoFactorService(repo repositories.TwoFactorRepository, config utils.TwoFactorConfig) *TwoFactorService {
	return &TwoFactorService{repo: repo, config: config}
}

// BeginSetup generates a fresh secret and stores it unverified. Calling it
// again before verification replaces the earlier secret, which immediately
// stops validating. An enabled credential is never overwritten; the admin
// must disable first.
func (s *TwoFactorService) BeginSetup(userID uint, email string) (*TwoFactorSetup, error) {
	enabled, err := s.repo.IsEnabled(userID)
	if err != nil {
		return nil, err
	}
	if enabled {
		return nil, ErrTwoFactorAlreadyEnabled
	}

	secret, err := utils.GenerateTwoFactorSecret()
	if err != nil {
		logrus.Error("Error generating two-factor secret: ", err)
		return nil, err
	}

	if err := s.repo.SavePendingSecret(userID, secret); err != nil {
		logrus.Error("Error storing pending two-factor secret: ", err)
		return nil, err
	}

	uri := utils.ProvisioningURI(secret, email, s.config)
	qr, err := utils.QRCodeDataURI(uri, 0)
	if err != nil {
		return nil, err
	}

	return &TwoFactorSetup{Secret: secret, URI: uri, QRDataURI: qr}, nil
}

// ConfirmSetup validates the first code against the pending secret and, on
// success, marks the credential enabled. This is the only path that flips
// the enabled flag on.
func (s *TwoFactorService) ConfirmSetup(userID uint, code string) error {
	secret, err := s.repo.GetSecret(userID)
	if errors.Is(err, repositories.ErrNoCredential) {
		return ErrSetupNotStarted
	}
	if err != nil {
		return err
	}

	valid, err := utils.VerifyTwoFactorCode(secret, code)
	if err != nil {
		return err
	}
	if !valid {
		metrics.TwoFactorVerifications.WithLabelValues("failure").Inc()
		return ErrInvalidTwoFactorCode
	}

	if err := s.repo.SetEnabled(userID, true); err != nil {
		return err
	}
	metrics.TwoFactorVerifications.WithLabelValues("success").Inc()
	return nil
}

// Disable turns the second factor off and discards the stored secret.
// Disabling an account that never enrolled is a no-op, not an error.
func (s *TwoFactorService) Disable(userID uint) error {
	return s.repo.SetEnabled(userID, false)
}

// IsEnabled reports enrollment status.
func (s *TwoFactorService) IsEnabled(userID uint) (bool, error) {
	return s.repo.IsEnabled(userID)
}

// RequiresSecondFactor reports whether a fresh login must be held until a
// code is verified.
func (s *TwoFactorService) RequiresSecondFactor(userID uint) (bool, error) {
	return s.repo.IsEnabled(userID)
}

// CompleteSecondFactor validates a login-time code against the enrolled
// secret. A wrong code returns (false, nil); the caller decides retry policy.
func (s *TwoFactorService) CompleteSecondFactor(userID uint, code string) (bool, error) {
	secret, err := s.repo.GetSecret(userID)
	if errors.Is(err, repositories.ErrNoCredential) {
		return false, ErrSetupNotStarted
	}
	if err != nil {
		return false, err
	}

	valid, err := utils.VerifyTwoFactorCode(secret, code)
	if err != nil {
		return false, err
	}
	if !valid {
		metrics.TwoFactorVerifications.WithLabelValues("failure").Inc()
		return false, nil
	}
	metrics.TwoFactorVerifications.WithLabelValues("success").Inc()
	return true, nil
}
