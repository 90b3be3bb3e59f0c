package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rotzmediagroup/storypixie-admin/utils"
)

func TestSetupFlowTransitions(t *testing.T) {
	cases := []struct {
		name  string
		from  SetupState
		event SetupEvent
		to    SetupState
		ok    bool
	}{
		{"check finds enabled", StateChecking, EventStatusEnabled, StateEnabled, true},
		{"check finds disabled", StateChecking, EventStatusDisabled, StateIdle, true},
		{"check fails", StateChecking, EventStatusFailed, StateError, true},
		{"start from idle", StateIdle, EventStart, StateGenerating, true},
		{"secret ready", StateGenerating, EventSecretReady, StateShowing, true},
		{"generate fails", StateGenerating, EventGenerateFailed, StateError, true},
		{"submit from showing", StateShowing, EventSubmitCode, StateVerifying, true},
		{"restart from showing", StateShowing, EventStart, StateGenerating, true},
		{"code accepted", StateVerifying, EventCodeAccepted, StateSuccess, true},
		{"code rejected", StateVerifying, EventCodeRejected, StateShowing, true},
		{"verify fails", StateVerifying, EventVerifyFailed, StateError, true},
		{"disable after success", StateSuccess, EventDisable, StateIdle, true},
		{"disable when enabled", StateEnabled, EventDisable, StateIdle, true},
		{"reset from error", StateError, EventReset, StateIdle, true},
		{"retry check from error", StateError, EventRetryCheck, StateChecking, true},

		{"submit from idle", StateIdle, EventSubmitCode, StateIdle, false},
		{"start from checking", StateChecking, EventStart, StateChecking, false},
		{"start while verifying", StateVerifying, EventStart, StateVerifying, false},
		{"submit while generating", StateGenerating, EventSubmitCode, StateGenerating, false},
		{"start when enabled", StateEnabled, EventStart, StateEnabled, false},
		{"disable from idle", StateIdle, EventDisable, StateIdle, false},
		{"reset from idle", StateIdle, EventReset, StateIdle, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			flow := &SetupFlow{state: tc.from}

			got, err := flow.Dispatch(tc.event)
			if tc.ok {
				require.NoError(t, err)
				assert.Equal(t, tc.to, got)
			} else {
				assert.ErrorIs(t, err, ErrInvalidTransition)
				assert.Equal(t, tc.from, flow.Current())
			}
		})
	}
}

func TestSetupFlowStartsChecking(t *testing.T) {
	flow := NewSetupFlow()
	assert.Equal(t, StateChecking, flow.Current())
	assert.True(t, flow.CanDispatch(EventStatusDisabled))
	assert.False(t, flow.CanDispatch(EventSubmitCode))
}

func TestEnrollmentSessionHappyPath(t *testing.T) {
	repo := &fakeTwoFactorRepo{}
	sess := NewEnrollmentSession(newTestTwoFactorService(repo), 1, "admin@storypixie.app")

	state, err := sess.Begin()
	require.NoError(t, err)
	assert.Equal(t, StateIdle, state)

	setup, err := sess.Start()
	require.NoError(t, err)
	assert.Equal(t, StateShowing, sess.State())
	assert.Equal(t, setup, sess.Setup())

	state, err = sess.Submit(currentCode(t, setup.Secret))
	require.NoError(t, err)
	assert.Equal(t, StateSuccess, state)
	assert.Nil(t, sess.Setup())
	assert.True(t, repo.enabled)
}

func TestEnrollmentSessionBeginWhenEnrolled(t *testing.T) {
	repo := &fakeTwoFactorRepo{secret: "SECRET", stored: true, enabled: true}
	sess := NewEnrollmentSession(newTestTwoFactorService(repo), 1, "admin@storypixie.app")

	state, err := sess.Begin()
	require.NoError(t, err)
	assert.Equal(t, StateEnabled, state)

	// Setup is not offered while already enrolled.
	_, err = sess.Start()
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestEnrollmentSessionStatusFailureDoesNotForceSetup(t *testing.T) {
	repo := &fakeTwoFactorRepo{secret: "SECRET", stored: true, enabled: true, isErr: errors.New("store down")}
	sess := NewEnrollmentSession(newTestTwoFactorService(repo), 1, "admin@storypixie.app")

	state, err := sess.Begin()
	assert.Error(t, err)
	assert.Equal(t, StateError, state)

	// Once the store recovers, re-running Begin retries the check and lands
	// on the real enrollment status instead of offering setup again.
	repo.isErr = nil
	state, err = sess.Begin()
	require.NoError(t, err)
	assert.Equal(t, StateEnabled, state)

	// The enrolled credential is untouched and setup stays unavailable.
	_, err = sess.Start()
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.True(t, repo.enabled)
	assert.Equal(t, "SECRET", repo.secret)
}

func TestEnrollmentSessionStatusFailureStaysInError(t *testing.T) {
	repo := &fakeTwoFactorRepo{isErr: errors.New("store down")}
	sess := NewEnrollmentSession(newTestTwoFactorService(repo), 1, "admin@storypixie.app")

	_, err := sess.Begin()
	assert.Error(t, err)

	// Still failing: the retry lands back in the error state.
	state, err := sess.Begin()
	assert.Error(t, err)
	assert.Equal(t, StateError, state)

	// Recovery for an admin who never enrolled resolves to idle, where setup
	// is legitimately offered.
	repo.isErr = nil
	state, err = sess.Begin()
	require.NoError(t, err)
	assert.Equal(t, StateIdle, state)

	_, err = sess.Start()
	require.NoError(t, err)
	assert.Equal(t, StateShowing, sess.State())
}

func TestEnrollmentSessionResetAfterGenerateFailure(t *testing.T) {
	repo := &fakeTwoFactorRepo{saveErr: errors.New("store down")}
	sess := NewEnrollmentSession(newTestTwoFactorService(repo), 1, "admin@storypixie.app")

	_, err := sess.Begin()
	require.NoError(t, err)

	_, err = sess.Start()
	assert.Error(t, err)
	assert.Equal(t, StateError, sess.State())

	state, err := sess.Reset()
	require.NoError(t, err)
	assert.Equal(t, StateIdle, state)

	repo.saveErr = nil
	_, err = sess.Start()
	require.NoError(t, err)
	assert.Equal(t, StateShowing, sess.State())
}

func TestEnrollmentSessionWrongCodeReturnsToShowing(t *testing.T) {
	repo := &fakeTwoFactorRepo{}
	sess := NewEnrollmentSession(newTestTwoFactorService(repo), 1, "admin@storypixie.app")

	_, err := sess.Begin()
	require.NoError(t, err)
	setup, err := sess.Start()
	require.NoError(t, err)

	wrong := "000000"
	if wrong == currentCode(t, setup.Secret) {
		wrong = "000001"
	}
	state, err := sess.Submit(wrong)
	assert.ErrorIs(t, err, ErrInvalidTwoFactorCode)
	assert.Equal(t, StateShowing, state)

	// The same pending secret still accepts the right code.
	state, err = sess.Submit(currentCode(t, setup.Secret))
	require.NoError(t, err)
	assert.Equal(t, StateSuccess, state)
}

func TestEnrollmentSessionMalformedCode(t *testing.T) {
	repo := &fakeTwoFactorRepo{}
	sess := NewEnrollmentSession(newTestTwoFactorService(repo), 1, "admin@storypixie.app")

	_, err := sess.Begin()
	require.NoError(t, err)
	_, err = sess.Start()
	require.NoError(t, err)

	state, err := sess.Submit("not-a-code")
	assert.ErrorIs(t, err, utils.ErrMalformedCode)
	assert.Equal(t, StateShowing, state)
}

func TestEnrollmentSessionSubmitBeforeStart(t *testing.T) {
	sess := NewEnrollmentSession(newTestTwoFactorService(&fakeTwoFactorRepo{}), 1, "admin@storypixie.app")

	_, err := sess.Begin()
	require.NoError(t, err)

	_, err = sess.Submit("123456")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestEnrollmentSessionRestartRegeneratesSecret(t *testing.T) {
	repo := &fakeTwoFactorRepo{}
	sess := NewEnrollmentSession(newTestTwoFactorService(repo), 1, "admin@storypixie.app")

	_, err := sess.Begin()
	require.NoError(t, err)

	first, err := sess.Start()
	require.NoError(t, err)
	second, err := sess.Start()
	require.NoError(t, err)

	assert.NotEqual(t, first.Secret, second.Secret)
	assert.Equal(t, second.Secret, repo.secret)
	assert.Equal(t, StateShowing, sess.State())
}

func TestEnrollmentSessionDisable(t *testing.T) {
	repo := &fakeTwoFactorRepo{}
	sess := NewEnrollmentSession(newTestTwoFactorService(repo), 1, "admin@storypixie.app")

	_, err := sess.Begin()
	require.NoError(t, err)
	setup, err := sess.Start()
	require.NoError(t, err)
	_, err = sess.Submit(currentCode(t, setup.Secret))
	require.NoError(t, err)

	state, err := sess.Disable()
	require.NoError(t, err)
	assert.Equal(t, StateIdle, state)
	assert.False(t, repo.enabled)
	assert.Empty(t, repo.secret)
}
