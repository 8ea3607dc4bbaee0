package api

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation matches every *ValidationError.
	ErrValidation = errors.New("validation failed")

	// ErrCollaborator matches every *CollaboratorError.
	ErrCollaborator = errors.New("collaborator failed")

	// ErrCatalogIntegrity matches every *IntegrityError.
	ErrCatalogIntegrity = errors.New("catalog integrity")

	// ErrGateRejected matches every *GateError.
	ErrGateRejected = errors.New("gate rejected")

	// ErrBusy is returned when an action is attempted while another async
	// step is in flight.
	ErrBusy = errors.New("flow busy")

	// ErrStaleResponse is returned when a collaborator result arrives after
	// the user navigated away or switched category. The result is dropped.
	ErrStaleResponse = errors.New("stale response discarded")

	// ErrInvalidTransition is returned when an action is not allowed in the
	// current phase.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrNotMounted is returned by actions issued before Mount succeeded.
	ErrNotMounted = errors.New("flow not mounted")

	// ErrBMIBelowThreshold blocks Proceed and Skip on the interstitial.
	ErrBMIBelowThreshold = errors.New("bmi below safety threshold")
)

// ValidationError is a local, non-fatal input error. It is never sent to
// a collaborator.
type ValidationError struct {
	QuestionID string
	Reason     string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("question %s: %s", e.QuestionID, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// GateError reports a gate that refused the transition without offering an
// alternate one.
type GateError struct {
	Gate   string
	Reason string
}

func (e *GateError) Error() string {
	return fmt.Sprintf("%s gate: %s", e.Gate, e.Reason)
}

func (e *GateError) Is(target error) bool { return target == ErrGateRejected }

// CollaboratorError wraps a network or service failure of an external
// collaborator. The flow state is left as it was before the attempt.
type CollaboratorError struct {
	Op  string
	Err error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *CollaboratorError) Unwrap() error { return e.Err }

func (e *CollaboratorError) Is(target error) bool { return target == ErrCollaborator }

// Retryable is always true; collaborator failures are transient from the
// user's point of view.
func (e *CollaboratorError) Retryable() bool { return true }

// IntegrityError reports an empty or malformed catalog. It is fatal for the
// survey instance until Mount is retried.
type IntegrityError struct {
	SurveyID string
	Reason   string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("survey %s: malformed catalog: %s", e.SurveyID, e.Reason)
}

func (e *IntegrityError) Is(target error) bool { return target == ErrCatalogIntegrity }

// IsRetryable reports whether err is a transient collaborator failure.
func IsRetryable(err error) bool {
	var ce *CollaboratorError
	return errors.As(err, &ce) && ce.Retryable()
}
