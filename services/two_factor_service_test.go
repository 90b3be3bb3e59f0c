package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rotzmediagroup/storypixie-admin/repositories"
	"github.com/rotzmediagroup/storypixie-admin/utils"
)

// fakeTwoFactorRepo keeps one credential in memory with the same semantics as
// the gorm-backed store: disabling deletes the row, a missing row is "not
// enabled".
type fakeTwoFactorRepo struct {
	secret  string
	enabled bool
	stored  bool

	saveErr error
	isErr   error
}

func (f *fakeTwoFactorRepo) SavePendingSecret(_ uint, secret string) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.secret = secret
	f.enabled = false
	f.stored = true
	return nil
}

func (f *fakeTwoFactorRepo) GetSecret(_ uint) (string, error) {
	if !f.stored {
		return "", repositories.ErrNoCredential
	}
	return f.secret, nil
}

func (f *fakeTwoFactorRepo) SetEnabled(_ uint, enabled bool) error {
	if !enabled {
		f.secret = ""
		f.enabled = false
		f.stored = false
		return nil
	}
	if !f.stored {
		return repositories.ErrNoCredential
	}
	f.enabled = true
	return nil
}

func (f *fakeTwoFactorRepo) IsEnabled(_ uint) (bool, error) {
	if f.isErr != nil {
		return false, f.isErr
	}
	return f.stored && f.enabled, nil
}

func newTestTwoFactorService(repo repositories.TwoFactorRepository) *TwoFactorService {
	return NewTwoFactorService(repo, utils.DefaultTwoFactorConfig("Story Pixie Admin"))
}

func currentCode(t *testing.T, secret string) string {
	t.Helper()
	code, err := utils.GenerateCodeAt(secret, time.Now())
	require.NoError(t, err)
	return code
}

func TestBeginSetupProducesProvisioningMaterial(t *testing.T) {
	repo := &fakeTwoFactorRepo{}
	service := newTestTwoFactorService(repo)

	setup, err := service.BeginSetup(1, "admin@storypixie.app")
	require.NoError(t, err)

	assert.Equal(t, repo.secret, setup.Secret)
	assert.Contains(t, setup.URI, "otpauth://totp/")
	assert.Contains(t, setup.URI, setup.Secret)
	assert.Contains(t, setup.QRDataURI, "data:image/png;base64,")
	assert.False(t, repo.enabled)
}

func TestBeginSetupReplacesPendingSecret(t *testing.T) {
	repo := &fakeTwoFactorRepo{}
	service := newTestTwoFactorService(repo)

	first, err := service.BeginSetup(1, "admin@storypixie.app")
	require.NoError(t, err)
	second, err := service.BeginSetup(1, "admin@storypixie.app")
	require.NoError(t, err)

	assert.NotEqual(t, first.Secret, second.Secret)
	assert.Equal(t, second.Secret, repo.secret)

	// A code from the abandoned secret no longer verifies.
	err = service.ConfirmSetup(1, currentCode(t, first.Secret))
	assert.ErrorIs(t, err, ErrInvalidTwoFactorCode)
}

func TestBeginSetupStoreFailure(t *testing.T) {
	repo := &fakeTwoFactorRepo{saveErr: errors.New("store down")}
	service := newTestTwoFactorService(repo)

	_, err := service.BeginSetup(1, "admin@storypixie.app")
	assert.Error(t, err)
}

func TestConfirmSetupEnables(t *testing.T) {
	repo := &fakeTwoFactorRepo{}
	service := newTestTwoFactorService(repo)

	setup, err := service.BeginSetup(1, "admin@storypixie.app")
	require.NoError(t, err)

	err = service.ConfirmSetup(1, currentCode(t, setup.Secret))
	require.NoError(t, err)

	enabled, err := service.IsEnabled(1)
	require.NoError(t, err)
	assert.True(t, enabled)
}

func TestConfirmSetupRepeatedWithSameCode(t *testing.T) {
	repo := &fakeTwoFactorRepo{}
	service := newTestTwoFactorService(repo)

	setup, err := service.BeginSetup(1, "admin@storypixie.app")
	require.NoError(t, err)
	code := currentCode(t, setup.Secret)

	require.NoError(t, service.ConfirmSetup(1, code))

	// A duplicate submit of the same valid code is harmless.
	require.NoError(t, service.ConfirmSetup(1, code))

	enabled, err := service.IsEnabled(1)
	require.NoError(t, err)
	assert.True(t, enabled)
}

func TestBeginSetupWhenAlreadyEnabled(t *testing.T) {
	repo := &fakeTwoFactorRepo{secret: "SECRET", stored: true, enabled: true}
	service := newTestTwoFactorService(repo)

	_, err := service.BeginSetup(1, "admin@storypixie.app")
	assert.ErrorIs(t, err, ErrTwoFactorAlreadyEnabled)

	// The live credential is untouched.
	assert.True(t, repo.enabled)
	assert.Equal(t, "SECRET", repo.secret)
}

func TestConfirmSetupWrongCode(t *testing.T) {
	repo := &fakeTwoFactorRepo{}
	service := newTestTwoFactorService(repo)

	setup, err := service.BeginSetup(1, "admin@storypixie.app")
	require.NoError(t, err)

	wrong := "000000"
	if wrong == currentCode(t, setup.Secret) {
		wrong = "000001"
	}

	err = service.ConfirmSetup(1, wrong)
	assert.ErrorIs(t, err, ErrInvalidTwoFactorCode)

	enabled, err := service.IsEnabled(1)
	require.NoError(t, err)
	assert.False(t, enabled)
}

func TestConfirmSetupMalformedCode(t *testing.T) {
	repo := &fakeTwoFactorRepo{}
	service := newTestTwoFactorService(repo)

	_, err := service.BeginSetup(1, "admin@storypixie.app")
	require.NoError(t, err)

	err = service.ConfirmSetup(1, "abc")
	assert.ErrorIs(t, err, utils.ErrMalformedCode)
}

func TestConfirmSetupWithoutSetup(t *testing.T) {
	service := newTestTwoFactorService(&fakeTwoFactorRepo{})

	err := service.ConfirmSetup(1, "123456")
	assert.ErrorIs(t, err, ErrSetupNotStarted)
}

func TestDisableIsIdempotent(t *testing.T) {
	repo := &fakeTwoFactorRepo{}
	service := newTestTwoFactorService(repo)

	setup, err := service.BeginSetup(1, "admin@storypixie.app")
	require.NoError(t, err)
	require.NoError(t, service.ConfirmSetup(1, currentCode(t, setup.Secret)))

	require.NoError(t, service.Disable(1))
	assert.Empty(t, repo.secret)

	// Second disable finds nothing and still succeeds.
	require.NoError(t, service.Disable(1))

	enabled, err := service.IsEnabled(1)
	require.NoError(t, err)
	assert.False(t, enabled)
}

func TestCompleteSecondFactor(t *testing.T) {
	repo := &fakeTwoFactorRepo{}
	service := newTestTwoFactorService(repo)

	setup, err := service.BeginSetup(1, "admin@storypixie.app")
	require.NoError(t, err)
	require.NoError(t, service.ConfirmSetup(1, currentCode(t, setup.Secret)))

	valid, err := service.CompleteSecondFactor(1, currentCode(t, setup.Secret))
	require.NoError(t, err)
	assert.True(t, valid)

	wrong := "000000"
	if wrong == currentCode(t, setup.Secret) {
		wrong = "000001"
	}
	valid, err = service.CompleteSecondFactor(1, wrong)
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestCompleteSecondFactorWithoutCredential(t *testing.T) {
	service := newTestTwoFactorService(&fakeTwoFactorRepo{})

	_, err := service.CompleteSecondFactor(1, "123456")
	assert.ErrorIs(t, err, ErrSetupNotStarted)
}
