package flow

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/petrijr/intakeflow/internal/persistence"
	"github.com/petrijr/intakeflow/pkg/api"
)

var fixedNow = time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)

// callLog records the order of collaborator calls across fakes.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, s)
}

func (l *callLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

type fakeCatalog struct {
	mu        sync.Mutex
	questions []api.Question
	err       error
}

func (f *fakeCatalog) FetchQuestions(ctx context.Context, surveyID string) ([]api.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.questions, nil
}

type fakeSubmissions struct {
	log *callLog

	mu       sync.Mutex
	requests []api.SubmissionRequest
	err      error

	// entered is signalled when Submit is called; gate, if set, blocks the
	// call until closed.
	entered chan struct{}
	gate    chan struct{}
}

func (f *fakeSubmissions) Submit(ctx context.Context, req api.SubmissionRequest) (string, error) {
	f.log.add(fmt.Sprintf("submit:%t", req.IsComplete))
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.gate != nil {
		<-f.gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.requests = append(f.requests, req)
	return fmt.Sprintf("sub-%d", len(f.requests)), nil
}

func (f *fakeSubmissions) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeSubmissions) all() []api.SubmissionRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]api.SubmissionRequest(nil), f.requests...)
}

func (f *fakeSubmissions) completeCalls() int {
	n := 0
	for _, r := range f.all() {
		if r.IsComplete {
			n++
		}
	}
	return n
}

type fakeRegistry struct {
	log   *callLog
	check api.EmailCheck
	err   error
}

func (f *fakeRegistry) CheckEmail(ctx context.Context, email, surveyID string) (api.EmailCheck, error) {
	f.log.add("check_email:" + email)
	return f.check, f.err
}

type fakeFiles struct {
	log *callLog
	err error
}

func (f *fakeFiles) Upload(ctx context.Context, surveyID, patientID string, file api.Upload) (string, error) {
	f.log.add("upload:" + file.Name)
	if f.err != nil {
		return "", f.err
	}
	body, err := io.ReadAll(file.Body)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("https://files.example.com/%s/%s/%s?size=%d", surveyID, patientID, file.Name, len(body)), nil
}

type fakeCheckout struct {
	log      *callLog
	token    string
	err      error
	requests []api.CheckoutRequest
}

func (f *fakeCheckout) CreateCheckoutSession(ctx context.Context, req api.CheckoutRequest) (string, error) {
	f.log.add("checkout:" + req.ProductID)
	if f.err != nil {
		return "", f.err
	}
	f.requests = append(f.requests, req)
	return f.token, nil
}

type recordingSink struct {
	mu     sync.Mutex
	events []api.FlowEvent
}

func (s *recordingSink) Track(ctx context.Context, ev api.FlowEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return nil
}

func (s *recordingSink) types() []api.EventType {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]api.EventType, len(s.events))
	for i, ev := range s.events {
		out[i] = ev.Type
	}
	return out
}

type harness struct {
	log      *callLog
	catalog  *fakeCatalog
	subs     *fakeSubmissions
	registry *fakeRegistry
	files    *fakeFiles
	checkout *fakeCheckout
	events   *recordingSink
	metrics  *api.BasicMetrics
	storage  *persistence.InMemoryStore
}

func newHarness(qs []api.Question) *harness {
	log := &callLog{}
	return &harness{
		log:      log,
		catalog:  &fakeCatalog{questions: qs},
		subs:     &fakeSubmissions{log: log},
		registry: &fakeRegistry{log: log, check: api.EmailCheck{Allowed: true}},
		files:    &fakeFiles{log: log},
		checkout: &fakeCheckout{log: log, token: "tok_123"},
		events:   &recordingSink{},
		metrics:  &api.BasicMetrics{},
		storage:  persistence.NewInMemoryStore(),
	}
}

func (h *harness) config() Config {
	return Config{
		SurveyID:    "survey-1",
		PatientID:   "patient-1",
		Category:    "weight-loss",
		Catalog:     h.catalog,
		Submissions: h.subs,
		Registry:    h.registry,
		Files:       h.files,
		Checkout:    h.checkout,
		Storage:     h.storage,
		Observer:    h.metrics,
		Events:      h.events,
		Redirect: RedirectConfig{
			CheckoutURL:       "https://checkout.example.com/session",
			ProductSummaryURL: "https://shop.example.com/products",
		},
		Now: func() time.Time { return fixedNow },
	}
}

// controller builds and mounts a Controller over the harness.
func (h *harness) controller(t *testing.T, opts ...func(*Config)) *Controller {
	t.Helper()
	cfg := h.config()
	for _, opt := range opts {
		opt(&cfg)
	}
	c, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, c.Mount(context.Background()))
	return c
}

// linearCatalog is the three-question survey: name, email, plan.
func linearCatalog() []api.Question {
	return []api.Question{
		{ID: "name", Position: 1, Text: "What is your name?", Type: api.QuestionTextInput, IsRequired: true},
		{ID: "email", Position: 2, Text: "Your email", Type: api.QuestionTextInput, Validation: api.ValidationEmail, IsRequired: true},
		{ID: "plan", Position: 3, Text: "Pick a plan", Type: api.QuestionSingleSelect, Options: []string{"Monthly", "Quarterly", "Other"}, IsRequired: true},
	}
}

func textCatalog(n int) []api.Question {
	qs := make([]api.Question, n)
	for i := range qs {
		qs[i] = api.Question{
			ID:         fmt.Sprintf("q%d", i+1),
			Position:   i + 1,
			Type:       api.QuestionFreeText,
			IsRequired: true,
		}
	}
	return qs
}

func text(s string) api.AnswerInput {
	return api.AnswerInput{Value: api.TextValue(s)}
}

func mustSubmit(t *testing.T, c *Controller, in api.AnswerInput) api.Transition {
	t.Helper()
	tr, err := c.Submit(context.Background(), in)
	require.NoError(t, err)
	return tr
}

// completeLinear walks the linear catalog to completion.
func completeLinear(t *testing.T, c *Controller) {
	t.Helper()
	ctx := context.Background()
	_, err := c.Start(ctx)
	require.NoError(t, err)
	mustSubmit(t, c, text("Pat Doe"))
	mustSubmit(t, c, text("pat@example.com"))
	tr := mustSubmit(t, c, api.AnswerInput{Value: api.ChoicesValue("Monthly")})
	require.Equal(t, api.TransitionCompleted, tr.Kind)
}
