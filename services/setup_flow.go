package services

import (
	"errors"
	"fmt"

	"github.com/rotzmediagroup/storypixie-admin/utils"
)

// The setup flow gives the client-visible two-factor enrollment conversation
// an explicit shape: a finite state machine with a fixed transition table,
// independent of any rendering, so it can be exercised without a UI.

type SetupState string

const (
	StateChecking   SetupState = "checking"
	StateIdle       SetupState = "idle"
	StateEnabled    SetupState = "enabled"
	StateGenerating SetupState = "generating"
	StateShowing    SetupState = "showing"
	StateVerifying  SetupState = "verifying"
	StateSuccess    SetupState = "success"
	StateError      SetupState = "error"
)

type SetupEvent string

const (
	EventStatusEnabled  SetupEvent = "status_enabled"
	EventStatusDisabled SetupEvent = "status_disabled"
	EventStatusFailed   SetupEvent = "status_failed"
	EventStart          SetupEvent = "start"
	EventSecretReady    SetupEvent = "secret_ready"
	EventGenerateFailed SetupEvent = "generate_failed"
	EventSubmitCode     SetupEvent = "submit_code"
	EventCodeAccepted   SetupEvent = "code_accepted"
	EventCodeRejected   SetupEvent = "code_rejected"
	EventVerifyFailed   SetupEvent = "verify_failed"
	EventDisable        SetupEvent = "disable"
	EventReset          SetupEvent = "reset"
	EventRetryCheck     SetupEvent = "retry_check"
)

var ErrInvalidTransition = errors.New("event not valid in current state")

// setupTransitions is the complete transition table. Any pair not listed is
// rejected, which also enforces one in-flight step at a time.
var setupTransitions = map[SetupState]map[SetupEvent]SetupState{
	StateChecking: {
		EventStatusEnabled:  StateEnabled,
		EventStatusDisabled: StateIdle,
		EventStatusFailed:   StateError,
	},
	StateIdle: {
		EventStart: StateGenerating,
	},
	StateGenerating: {
		EventSecretReady:    StateShowing,
		EventGenerateFailed: StateError,
	},
	StateShowing: {
		EventSubmitCode: StateVerifying,
		// Restarting here abandons the pending secret for a new one.
		EventStart: StateGenerating,
	},
	StateVerifying: {
		EventCodeAccepted: StateSuccess,
		EventCodeRejected: StateShowing,
		EventVerifyFailed: StateError,
	},
	StateSuccess: {
		EventDisable: StateIdle,
	},
	StateEnabled: {
		EventDisable: StateIdle,
	},
	StateError: {
		EventReset:      StateIdle,
		EventRetryCheck: StateChecking,
	},
}

// SetupFlow is the bare state machine. Not safe for concurrent use; each
// admin session owns its own flow.
type SetupFlow struct {
	state SetupState
}

func NewSetupFlow() *SetupFlow {
	return &SetupFlow{state: StateChecking}
}

func (f *SetupFlow) Current() SetupState {
	return f.state
}

// Dispatch applies one event and returns the resulting state. On a rejected
// event the state is unchanged.
func (f *SetupFlow) Dispatch(event SetupEvent) (SetupState, error) {
	next, ok := setupTransitions[f.state][event]
	if !ok {
		return f.state, fmt.Errorf("%w: %s in state %s", ErrInvalidTransition, event, f.state)
	}
	f.state = next
	return next, nil
}

func (f *SetupFlow) CanDispatch(event SetupEvent) bool {
	_, ok := setupTransitions[f.state][event]
	return ok
}

// EnrollmentSession drives one admin's setup conversation end to end, keeping
// the flow state and the two-factor service in lockstep.
type EnrollmentSession struct {
	flow    *SetupFlow
	service *TwoFactorService
	userID  uint
	email   string
	setup   *TwoFactorSetup
}

func NewEnrollmentSession(service *TwoFactorService, userID uint, email string) *EnrollmentSession {
	return &EnrollmentSession{
		flow:    NewSetupFlow(),
		service: service,
		userID:  userID,
		email:   email,
	}
}

func (e *EnrollmentSession) State() SetupState {
	return e.flow.Current()
}

// Setup returns the provisioning material while it is being shown, nil
// otherwise.
func (e *EnrollmentSession) Setup() *TwoFactorSetup {
	if e.flow.Current() != StateShowing {
		return nil
	}
	return e.setup
}

// Begin resolves the checking phase. A failed status check lands in the error
// state with the error returned; calling Begin again from there retries the
// check, so a transient store failure never reads as "not enrolled".
func (e *EnrollmentSession) Begin() (SetupState, error) {
	if e.flow.Current() == StateError {
		if _, err := e.flow.Dispatch(EventRetryCheck); err != nil {
			return e.flow.Current(), err
		}
	}

	enabled, err := e.service.IsEnabled(e.userID)
	if err != nil {
		e.flow.Dispatch(EventStatusFailed)
		return e.flow.Current(), err
	}
	if enabled {
		return e.flow.Dispatch(EventStatusEnabled)
	}
	return e.flow.Dispatch(EventStatusDisabled)
}

// Start generates a fresh pending secret and moves to showing. Starting again
// from showing abandons the previous secret.
func (e *EnrollmentSession) Start() (*TwoFactorSetup, error) {
	if _, err := e.flow.Dispatch(EventStart); err != nil {
		return nil, err
	}

	setup, err := e.service.BeginSetup(e.userID, e.email)
	if err != nil {
		e.flow.Dispatch(EventGenerateFailed)
		return nil, err
	}

	e.setup = setup
	e.flow.Dispatch(EventSecretReady)
	return setup, nil
}

// Submit verifies a candidate code. A wrong or malformed code returns the
// flow to showing for another attempt against the same pending secret; a
// store failure lands in the error state.
func (e *EnrollmentSession) Submit(code string) (SetupState, error) {
	if _, err := e.flow.Dispatch(EventSubmitCode); err != nil {
		return e.flow.Current(), err
	}

	err := e.service.ConfirmSetup(e.userID, code)
	switch {
	case err == nil:
		e.setup = nil
		return e.flow.Dispatch(EventCodeAccepted)
	case errors.Is(err, ErrInvalidTwoFactorCode), errors.Is(err, utils.ErrMalformedCode):
		e.flow.Dispatch(EventCodeRejected)
		return e.flow.Current(), err
	default:
		e.flow.Dispatch(EventVerifyFailed)
		return e.flow.Current(), err
	}
}

// Disable turns the second factor off and returns to idle.
func (e *EnrollmentSession) Disable() (SetupState, error) {
	if !e.flow.CanDispatch(EventDisable) {
		return e.flow.Current(), fmt.Errorf("%w: %s in state %s", ErrInvalidTransition, EventDisable, e.flow.Current())
	}
	if err := e.service.Disable(e.userID); err != nil {
		return e.flow.Current(), err
	}
	return e.flow.Dispatch(EventDisable)
}

// Reset leaves the error state; any previously shown secret stays abandoned
// and a brand-new one is generated on the next Start.
func (e *EnrollmentSession) Reset() (SetupState, error) {
	e.setup = nil
	return e.flow.Dispatch(EventReset)
}
