package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rotzmediagroup/storypixie-admin/models"
	"github.com/rotzmediagroup/storypixie-admin/utils"
)

type fakeUserRepo struct {
	users map[string]*models.AdminUser
}

func newFakeUserRepo(users ...*models.AdminUser) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[string]*models.AdminUser)}
	for _, u := range users {
		repo.users[u.Email] = u
	}
	return repo
}

func (f *fakeUserRepo) Create(user *models.AdminUser) error {
	f.users[user.Email] = user
	return nil
}

func (f *fakeUserRepo) FindByEmail(email string) (*models.AdminUser, error) {
	user, ok := f.users[email]
	if !ok {
		return nil, errors.New("admin not found")
	}
	return user, nil
}

func (f *fakeUserRepo) FindByID(id uint) (*models.AdminUser, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, errors.New("admin not found")
}

func (f *fakeUserRepo) List() ([]models.AdminUser, error) {
	var out []models.AdminUser
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUserRepo) Update(user *models.AdminUser) error {
	f.users[user.Email] = user
	return nil
}

func (f *fakeUserRepo) RecordLogin(id uint) error {
	for _, u := range f.users {
		if u.ID == id {
			now := time.Now()
			u.LastLoginAt = &now
		}
	}
	return nil
}

type fakeActivityRepo struct {
	entries []models.ActivityLog
}

func (f *fakeActivityRepo) Record(entry *models.ActivityLog) error {
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeActivityRepo) ListRecent(limit int) ([]models.ActivityLog, error) {
	if limit > len(f.entries) {
		limit = len(f.entries)
	}
	return f.entries[:limit], nil
}

func (f *fakeActivityRepo) DeleteOlderThan(time.Time, int) (int64, error) {
	return 0, nil
}

func testAdmin(t *testing.T, id uint, email, password string) *models.AdminUser {
	t.Helper()
	hash, err := utils.HashPassword(password)
	require.NoError(t, err)

	user := &models.AdminUser{
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		Provider:     "password",
	}
	user.ID = id
	return user
}

func newTestAuthService(t *testing.T, twoFactorRepo *fakeTwoFactorRepo, users *fakeUserRepo) (*AuthService, *utils.TokenManager, *fakeActivityRepo) {
	t.Helper()
	tokens := utils.NewTokenManager("test-secret")
	activity := &fakeActivityRepo{}
	twoFactor := newTestTwoFactorService(twoFactorRepo)
	return NewAuthService(users, twoFactor, tokens, activity), tokens, activity
}

func TestLoginWithoutTwoFactor(t *testing.T) {
	users := newFakeUserRepo(testAdmin(t, 1, "admin@storypixie.app", "password123"))
	service, tokens, activity := newTestAuthService(t, &fakeTwoFactorRepo{}, users)

	result, err := service.Login("admin@storypixie.app", "password123")
	require.NoError(t, err)
	assert.False(t, result.RequiresTwoFactor)

	claims, err := tokens.ValidateToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, utils.ScopeFull, claims.Scope)
	assert.Equal(t, uint(1), claims.UserID)

	require.Len(t, activity.entries, 1)
	assert.Equal(t, models.ActionLogin, activity.entries[0].Action)
}

func TestLoginWithTwoFactorIssuesPendingToken(t *testing.T) {
	users := newFakeUserRepo(testAdmin(t, 1, "admin@storypixie.app", "password123"))
	twoFactorRepo := &fakeTwoFactorRepo{secret: "SECRET", stored: true, enabled: true}
	service, tokens, activity := newTestAuthService(t, twoFactorRepo, users)

	result, err := service.Login("admin@storypixie.app", "password123")
	require.NoError(t, err)
	assert.True(t, result.RequiresTwoFactor)

	claims, err := tokens.ValidateToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, utils.ScopeTwoFactorPending, claims.Scope)

	// The login is not recorded until the second factor clears.
	assert.Empty(t, activity.entries)
}

func TestVerifySecondFactorPromotesSession(t *testing.T) {
	users := newFakeUserRepo(testAdmin(t, 1, "admin@storypixie.app", "password123"))
	secret, err := utils.GenerateTwoFactorSecret()
	require.NoError(t, err)
	twoFactorRepo := &fakeTwoFactorRepo{secret: secret, stored: true, enabled: true}
	service, tokens, activity := newTestAuthService(t, twoFactorRepo, users)

	result, err := service.VerifySecondFactor(1, currentCode(t, secret))
	require.NoError(t, err)
	assert.False(t, result.RequiresTwoFactor)

	claims, err := tokens.ValidateToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, utils.ScopeFull, claims.Scope)

	require.Len(t, activity.entries, 1)
	assert.Equal(t, models.ActionLogin, activity.entries[0].Action)
}

func TestVerifySecondFactorWrongCode(t *testing.T) {
	users := newFakeUserRepo(testAdmin(t, 1, "admin@storypixie.app", "password123"))
	secret, err := utils.GenerateTwoFactorSecret()
	require.NoError(t, err)
	twoFactorRepo := &fakeTwoFactorRepo{secret: secret, stored: true, enabled: true}
	service, _, _ := newTestAuthService(t, twoFactorRepo, users)

	wrong := "000000"
	if wrong == currentCode(t, secret) {
		wrong = "000001"
	}

	_, err = service.VerifySecondFactor(1, wrong)
	assert.ErrorIs(t, err, ErrInvalidTwoFactorCode)
}

func TestLoginWrongPassword(t *testing.T) {
	users := newFakeUserRepo(testAdmin(t, 1, "admin@storypixie.app", "password123"))
	service, _, _ := newTestAuthService(t, &fakeTwoFactorRepo{}, users)

	_, err := service.Login("admin@storypixie.app", "nope")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownAdmin(t *testing.T) {
	service, _, _ := newTestAuthService(t, &fakeTwoFactorRepo{}, newFakeUserRepo())

	_, err := service.Login("nobody@storypixie.app", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginSuspendedAdmin(t *testing.T) {
	admin := testAdmin(t, 1, "admin@storypixie.app", "password123")
	admin.Suspended = true
	service, _, _ := newTestAuthService(t, &fakeTwoFactorRepo{}, newFakeUserRepo(admin))

	_, err := service.Login("admin@storypixie.app", "password123")
	assert.ErrorIs(t, err, ErrAccountSuspended)
}

func TestLoginWithGoogleRequiresProvisionedAdmin(t *testing.T) {
	users := newFakeUserRepo(testAdmin(t, 1, "admin@storypixie.app", "password123"))
	service, tokens, _ := newTestAuthService(t, &fakeTwoFactorRepo{}, users)

	result, err := service.LoginWithGoogle("admin@storypixie.app")
	require.NoError(t, err)
	claims, err := tokens.ValidateToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, utils.ScopeFull, claims.Scope)

	_, err = service.LoginWithGoogle("stranger@example.com")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
