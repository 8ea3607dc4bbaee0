package intakeflow

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// LocalServices are in-process stand-ins for the remote collaborators,
// for development, demos and tests. They are safe for concurrent use.
type LocalServices struct {
	mu          sync.Mutex
	submissions map[string]string
	requests    []SubmissionRequest
	files       map[string][]byte
	checkouts   []CheckoutRequest

	// Restricted emails trigger the login redirect; Blocked emails are
	// rejected outright. Both are matched case-insensitively.
	Restricted []string
	Blocked    []string
}

func NewLocalServices() *LocalServices {
	return &LocalServices{
		submissions: make(map[string]string),
		files:       make(map[string][]byte),
	}
}

// Submit returns the same submission id for every call with the same
// survey and patient.
func (s *LocalServices) Submit(ctx context.Context, req SubmissionRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = append(s.requests, req)
	key := req.SurveyID + "/" + req.PatientID
	id, ok := s.submissions[key]
	if !ok {
		id = uuid.NewString()
		s.submissions[key] = id
	}
	return id, nil
}

// Requests returns every submission received so far.
func (s *LocalServices) Requests() []SubmissionRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SubmissionRequest(nil), s.requests...)
}

func (s *LocalServices) CheckEmail(ctx context.Context, email, surveyID string) (EmailCheck, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, r := range s.Restricted {
		if strings.EqualFold(r, email) {
			return EmailCheck{Allowed: false, Restricted: true}, nil
		}
	}
	for _, b := range s.Blocked {
		if strings.EqualFold(b, email) {
			return EmailCheck{}, nil
		}
	}
	return EmailCheck{Allowed: true}, nil
}

// Upload keeps the file in memory and returns a memory:// URL.
func (s *LocalServices) Upload(ctx context.Context, surveyID, patientID string, file Upload) (string, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file.Body); err != nil {
		return "", fmt.Errorf("read upload %s: %w", file.Name, err)
	}
	url := fmt.Sprintf("memory://%s/%s/%s/%s", surveyID, patientID, uuid.NewString(), file.Name)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[url] = buf.Bytes()
	return url, nil
}

// File returns an uploaded file by URL.
func (s *LocalServices) File(url string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.files[url]
	return b, ok
}

// CreateCheckoutSession returns a random redirect token.
func (s *LocalServices) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkouts = append(s.checkouts, req)
	return uuid.NewString(), nil
}

// Checkouts returns every checkout request received so far.
func (s *LocalServices) Checkouts() []CheckoutRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]CheckoutRequest(nil), s.checkouts...)
}
