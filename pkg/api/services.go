package api

import (
	"context"
	"io"
)

// CatalogService returns the full ordered question catalog of a survey.
type CatalogService interface {
	FetchQuestions(ctx context.Context, surveyID string) ([]Question, error)
}

// SubmissionRequest is the payload sent to the answer submission service.
type SubmissionRequest struct {
	SurveyID   string
	PatientID  string
	Answers    []Answer
	IsComplete bool
	Email      string
}

// SubmissionService acknowledges answers. Callers assume it is idempotent
// per (SurveyID, PatientID); the flow does not deduplicate retries.
type SubmissionService interface {
	Submit(ctx context.Context, req SubmissionRequest) (submissionID string, err error)
}

// EmailCheck is the user registry verdict for an email address.
type EmailCheck struct {
	Allowed    bool
	Restricted bool
}

// UserRegistry checks whether an email belongs to an existing account.
type UserRegistry interface {
	CheckEmail(ctx context.Context, email, surveyID string) (EmailCheck, error)
}

// Upload is a raw file handed to FileStorage.
type Upload struct {
	Name        string
	ContentType string
	Body        io.Reader
}

// FileStorage stores uploaded artifacts and returns their URL.
type FileStorage interface {
	Upload(ctx context.Context, surveyID, patientID string, file Upload) (url string, err error)
}

// CheckoutRequest is the payload for checkout session creation.
type CheckoutRequest struct {
	PriceID   string
	Email     string
	ProductID string
	SurveyID  string
}

// CheckoutHandoff creates checkout sessions.
type CheckoutHandoff interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (redirectToken string, err error)
}

// EventSink receives best-effort analytics events.
type EventSink interface {
	Track(ctx context.Context, ev FlowEvent) error
}
