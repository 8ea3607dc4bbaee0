// Package flow implements the intake survey state machine: it sequences
// questions, persists answers before the cursor moves, runs the email and
// BMI gates and hands the finished survey off to checkout.
package flow

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/petrijr/intakeflow/internal/answers"
	"github.com/petrijr/intakeflow/internal/catalog"
	"github.com/petrijr/intakeflow/internal/persistence"
	"github.com/petrijr/intakeflow/internal/progress"
	"github.com/petrijr/intakeflow/pkg/api"
)

var errNoFileStorage = errors.New("no file storage configured")

// Controller drives one survey instance. It exclusively owns the answer
// store and the flow state.
//
// Methods are safe for concurrent use. Collaborator calls run without the
// lock held; a result that resolves after Back, SwitchCategory or Reset is
// dropped and the call returns api.ErrStaleResponse.
type Controller struct {
	cfg     Config
	adapter *persistence.Adapter
	session string

	mu     sync.Mutex
	cat    *catalog.Catalog
	store  *answers.Store
	state  api.FlowState
	phase  api.Phase
	status api.Status

	// pending is the height/weight answer shown on the interstitial. It is
	// committed by Proceed or Skip.
	pending   *api.Answer
	bmi       float64
	bmiPassed bool

	epoch    uint64
	mounted  bool
	redirect *api.Redirect
	lastErr  error
}

// New returns an unmounted Controller.
func New(cfg Config) (*Controller, error) {
	switch {
	case cfg.SurveyID == "":
		return nil, errors.New("survey id is required")
	case cfg.Category == "":
		return nil, errors.New("survey category is required")
	case cfg.Catalog == nil:
		return nil, errors.New("catalog service is required")
	case cfg.Submissions == nil:
		return nil, errors.New("submission service is required")
	}
	cfg = cfg.withDefaults()

	c := &Controller{
		cfg:     cfg,
		adapter: persistence.NewAdapter(cfg.Storage, cfg.KeyPrefix),
		session: uuid.NewString(),
		status:  api.StatusIdle,
	}
	c.resetLocal()
	return c, nil
}

// SessionID identifies this controller instance in logs and analytics.
func (c *Controller) SessionID() string { return c.session }

// Mount fetches the catalog, loads persisted state and resumes. It runs
// once; later calls are no-ops. After a failure it may be retried.
func (c *Controller) Mount(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mounted {
		return nil
	}
	epoch, err := c.begin(api.StatusValidating)
	if err != nil {
		return err
	}
	defer c.end(epoch)
	return c.mount(ctx, epoch)
}

func (c *Controller) mount(ctx context.Context, epoch uint64) error {
	surveyID := c.cfg.SurveyID
	var (
		qs       []api.Question
		fetchErr error
	)
	if !c.outside(epoch, func() { qs, fetchErr = c.cfg.Catalog.FetchQuestions(ctx, surveyID) }) {
		return api.ErrStaleResponse
	}
	if fetchErr != nil {
		return c.fail(ctx, "fetch_questions", fetchErr)
	}
	cat, err := catalog.New(surveyID, qs)
	if err != nil {
		c.phase = api.PhaseFailed
		c.lastErr = err
		return err
	}

	loaded, err := c.adapter.Load(ctx, c.cfg.Category)
	if err != nil {
		return c.fail(ctx, "load_state", err)
	}
	if loaded.Discarded != "" {
		c.track(ctx, api.EventReset, 0, string(loaded.Discarded))
	}

	c.resetLocal()
	c.cat = cat
	for id, a := range loaded.Answers {
		if _, ok := cat.ByID(id); ok {
			c.store.Put(a)
		}
	}
	c.mounted = true

	switch {
	case loaded.State.IsSurveyCompleted:
		c.state = api.FlowState{
			CursorPosition:    cat.Len(),
			IsSurveyCompleted: true,
			SubmissionID:      loaded.State.SubmissionID,
		}
		c.phase = api.PhaseCompleted
	case c.store.Len() > 0 || loaded.State.CursorPosition > 0:
		// A saved cursor without answers means the patient started and
		// reloaded before answering.
		c.state.CursorPosition = progress.Resume(cat, c.store.Snapshot())
		c.phase = api.PhaseQuestion
		c.transition(ctx, api.Transition{
			Kind: api.TransitionResumed,
			From: loaded.State.CursorPosition,
			To:   c.state.CursorPosition,
		})
		c.track(ctx, api.EventResumed, c.state.CursorPosition, "")
	}
	return nil
}

// Start leaves the landing state for the first question.
func (c *Controller) Start(ctx context.Context) (api.Transition, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.idle(); err != nil {
		return api.Transition{}, err
	}
	if c.phase != api.PhaseInitial {
		return api.Transition{}, c.invalid("start")
	}
	if err := c.adapter.SaveCursor(ctx, c.cfg.Category, 1); err != nil {
		return api.Transition{}, c.fail(ctx, "save_state", err)
	}
	c.state.CursorPosition = 1
	c.phase = api.PhaseQuestion

	tr := api.Transition{Kind: api.TransitionStarted, From: 0, To: 1}
	c.transition(ctx, tr)
	c.track(ctx, api.EventStarted, 1, "")
	return tr, nil
}

// Submit answers the current question. Depending on the question it may
// check the email registry, upload a file or open the BMI interstitial
// instead of advancing.
func (c *Controller) Submit(ctx context.Context, in api.AnswerInput) (api.Transition, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.idle(); err != nil {
		return api.Transition{}, err
	}
	if c.phase != api.PhaseQuestion {
		return api.Transition{}, c.invalid("submit")
	}
	q, _ := c.cat.At(c.state.CursorPosition)
	if err := answers.Validate(q, in, c.cfg.Now()); err != nil {
		c.lastErr = err
		return api.Transition{}, err
	}

	switch {
	case q.Validation == api.ValidationEmail:
		tr, handled, err := c.checkEmail(ctx, q, in)
		if err != nil || handled {
			return tr, err
		}
	case q.Type == api.QuestionFile && in.Upload != nil:
		ref, err := c.upload(ctx, *in.Upload)
		if err != nil {
			return api.Transition{}, err
		}
		in = api.AnswerInput{Value: api.FileValue(ref)}
	}

	a := answers.Build(q, in)
	if q.SpecialBehavior == api.BehaviorBMIGate && a.Value.Kind == api.ValueBody {
		bmi := answers.BMI(*a.Value.Body)
		if !c.bmiPassed || bmi < answers.MinBMI {
			return c.openInterstitial(ctx, a, bmi), nil
		}
	}
	return c.advance(ctx, q, a)
}

// checkEmail runs the registry gate. handled is true when the submission
// must not continue.
func (c *Controller) checkEmail(ctx context.Context, q api.Question, in api.AnswerInput) (tr api.Transition, handled bool, err error) {
	email := strings.TrimSpace(in.Value.Text)
	if c.cfg.Registry == nil || email == "" {
		return api.Transition{}, false, nil
	}
	epoch, err := c.begin(api.StatusValidating)
	if err != nil {
		return api.Transition{}, true, err
	}
	defer c.end(epoch)

	surveyID := c.cfg.SurveyID
	var (
		check   api.EmailCheck
		callErr error
	)
	if !c.outside(epoch, func() { check, callErr = c.cfg.Registry.CheckEmail(ctx, email, surveyID) }) {
		return api.Transition{}, true, api.ErrStaleResponse
	}
	if callErr != nil {
		return api.Transition{}, true, c.fail(ctx, "check_email", callErr)
	}

	p := c.state.CursorPosition
	switch {
	case check.Restricted:
		// Only the contested answer is dropped; earlier answers survive the
		// trip to the login page.
		if _, had := c.store.Get(q.ID); had {
			next := c.store.Snapshot()
			delete(next, q.ID)
			if err := c.adapter.SaveAnswers(ctx, c.cfg.Category, next); err != nil {
				return api.Transition{}, true, c.fail(ctx, "save_state", err)
			}
			c.store.Delete(q.ID)
		}
		c.phase = api.PhaseLoginRedirect
		tr = api.Transition{Kind: api.TransitionLoginRedirect, From: p, To: p}
		c.transition(ctx, tr)
		c.track(ctx, api.EventLoginRedirect, p, "")
		return tr, true, nil
	case !check.Allowed:
		err := &api.GateError{Gate: "email", Reason: "this email address cannot be used for the survey"}
		c.lastErr = err
		return api.Transition{}, true, err
	}
	return api.Transition{}, false, nil
}

func (c *Controller) upload(ctx context.Context, up api.Upload) (api.FileRef, error) {
	if c.cfg.Files == nil {
		return api.FileRef{}, c.fail(ctx, "upload", errNoFileStorage)
	}
	epoch, err := c.begin(api.StatusSubmitting)
	if err != nil {
		return api.FileRef{}, err
	}
	defer c.end(epoch)

	surveyID, patientID := c.cfg.SurveyID, c.cfg.PatientID
	var (
		url     string
		callErr error
	)
	if !c.outside(epoch, func() { url, callErr = c.cfg.Files.Upload(ctx, surveyID, patientID, up) }) {
		return api.FileRef{}, api.ErrStaleResponse
	}
	if callErr != nil {
		return api.FileRef{}, c.fail(ctx, "upload", callErr)
	}
	return api.FileRef{Name: up.Name, URL: url}, nil
}

func (c *Controller) openInterstitial(ctx context.Context, a api.Answer, bmi float64) api.Transition {
	c.pending = &a
	c.bmi = bmi
	c.state.InterstitialActive = true
	c.phase = api.PhaseInterstitial

	p := c.state.CursorPosition
	tr := api.Transition{Kind: api.TransitionInterstitial, From: p, To: p, BMI: bmi}
	c.transition(ctx, tr)
	c.track(ctx, api.EventInterstitialShown, p, "")
	return tr
}

// advance acknowledges a, persists it and then moves the cursor. On the
// final position with every required answer present it submits the
// complete survey instead.
func (c *Controller) advance(ctx context.Context, q api.Question, a api.Answer) (api.Transition, error) {
	p := c.state.CursorPosition
	next := c.store.With(a)
	last := p == c.cat.Len()
	complete := last && progress.Compute(c.cat, next).IsCompleted

	var submissionID string
	if complete || !c.cfg.SkipStepAcknowledgement {
		epoch, err := c.begin(api.StatusSubmitting)
		if err != nil {
			return api.Transition{}, err
		}
		defer c.end(epoch)

		prev := c.phase
		if complete {
			c.phase = api.PhaseSubmitting
		}
		submissionID, err = c.submit(ctx, epoch, next, complete)
		if err != nil {
			if c.epoch == epoch {
				c.phase = prev
			}
			return api.Transition{}, err
		}
		if complete {
			tr, err := c.complete(ctx, next, submissionID)
			if err != nil {
				c.phase = prev
			}
			return tr, err
		}
	}

	if err := c.adapter.SaveAnswers(ctx, c.cfg.Category, next); err != nil {
		return api.Transition{}, c.fail(ctx, "save_state", err)
	}
	c.store = answers.FromSnapshot(next)

	to := p + 1
	if last {
		// The final answer is kept; an earlier required question is
		// still open.
		to = progress.FirstMissingRequired(c.cat, next)
	}
	if err := c.adapter.SaveCursor(ctx, c.cfg.Category, to); err != nil {
		return api.Transition{}, c.fail(ctx, "save_state", err)
	}
	c.state.CursorPosition = to
	c.state.InterstitialActive = false
	c.phase = api.PhaseQuestion
	c.pending = nil

	tr := api.Transition{Kind: api.TransitionAdvanced, From: p, To: to}
	c.transition(ctx, tr)
	c.track(ctx, api.EventStepSubmitted, p, string(q.Type))
	return tr, nil
}

func (c *Controller) submit(ctx context.Context, epoch uint64, snap map[string]api.Answer, complete bool) (string, error) {
	req := api.SubmissionRequest{
		SurveyID:   c.cfg.SurveyID,
		PatientID:  c.cfg.PatientID,
		Answers:    answers.Ordered(c.cat, snap),
		IsComplete: complete,
		Email:      c.email(snap),
	}
	info := c.info()

	var (
		id      string
		callErr error
	)
	start := time.Now()
	fresh := c.outside(epoch, func() { id, callErr = c.cfg.Submissions.Submit(ctx, req) })
	c.cfg.Observer.OnSubmission(ctx, info, complete, callErr, time.Since(start))
	if !fresh {
		return "", api.ErrStaleResponse
	}
	if callErr != nil {
		return "", c.fail(ctx, "submit", callErr)
	}
	return id, nil
}

func (c *Controller) complete(ctx context.Context, next map[string]api.Answer, submissionID string) (api.Transition, error) {
	if err := c.adapter.SaveAnswers(ctx, c.cfg.Category, next); err != nil {
		return api.Transition{}, c.fail(ctx, "save_state", err)
	}
	if err := c.adapter.SaveCompletion(ctx, c.cfg.Category, true, submissionID); err != nil {
		return api.Transition{}, c.fail(ctx, "save_state", err)
	}
	c.store = answers.FromSnapshot(next)

	p := c.state.CursorPosition
	c.state = api.FlowState{CursorPosition: p, IsSurveyCompleted: true, SubmissionID: submissionID}
	c.phase = api.PhaseCompleted
	c.pending = nil

	tr := api.Transition{Kind: api.TransitionCompleted, From: p, To: p}
	c.transition(ctx, tr)
	c.track(ctx, api.EventCompleted, p, "")
	return tr, nil
}

// Proceed leaves the interstitial for the next question.
func (c *Controller) Proceed(ctx context.Context) (api.Transition, error) {
	return c.leaveInterstitial(ctx, api.EventBMIProceed)
}

// Skip has the same effect as Proceed but is reported as its own action.
func (c *Controller) Skip(ctx context.Context) (api.Transition, error) {
	return c.leaveInterstitial(ctx, api.EventBMISkip)
}

func (c *Controller) leaveInterstitial(ctx context.Context, ev api.EventType) (api.Transition, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.idle(); err != nil {
		return api.Transition{}, err
	}
	if c.phase != api.PhaseInterstitial || c.pending == nil {
		return api.Transition{}, c.invalid(string(ev))
	}
	p := c.state.CursorPosition
	if c.bmi < answers.MinBMI {
		c.cfg.Observer.OnBMIBlocked(ctx, c.info(), c.bmi)
		c.track(ctx, api.EventBMIBlocked, p, string(ev))
		c.lastErr = api.ErrBMIBelowThreshold
		return api.Transition{}, api.ErrBMIBelowThreshold
	}

	q, _ := c.cat.At(p)
	tr, err := c.advance(ctx, q, *c.pending)
	if err != nil {
		return tr, err
	}
	c.bmiPassed = true
	c.track(ctx, ev, p, "")
	return tr, nil
}

// Back navigates to the previous question: the declared override if any,
// else p-1. On the interstitial or the login prompt it only dismisses the
// overlay. Back is allowed while a step is in flight and cancels it.
func (c *Controller) Back(ctx context.Context) (api.Transition, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.mounted {
		return api.Transition{}, api.ErrNotMounted
	}
	switch c.phase {
	case api.PhaseInterstitial, api.PhaseLoginRedirect:
		c.cancel()
		return c.dismiss(ctx), nil
	case api.PhaseQuestion, api.PhaseSubmitting:
	default:
		return api.Transition{}, c.invalid("back")
	}
	c.cancel()

	p := c.state.CursorPosition
	to := c.cat.PreviousPosition(p)
	if to < 1 {
		if err := c.adapter.SaveCursor(ctx, c.cfg.Category, 0); err != nil {
			c.phase = api.PhaseQuestion
			return api.Transition{}, c.fail(ctx, "save_state", err)
		}
		c.phase = api.PhaseInitial
		c.pending = nil
		tr := api.Transition{Kind: api.TransitionBack, From: p, To: 0}
		c.transition(ctx, tr)
		c.track(ctx, api.EventBack, p, "")
		return tr, nil
	}

	if err := c.adapter.SaveCursor(ctx, c.cfg.Category, to); err != nil {
		c.phase = api.PhaseQuestion
		return api.Transition{}, c.fail(ctx, "save_state", err)
	}
	c.state.CursorPosition = to
	c.phase = api.PhaseQuestion
	c.pending = nil

	tr := api.Transition{Kind: api.TransitionBack, From: p, To: to}
	c.transition(ctx, tr)
	c.track(ctx, api.EventBack, p, "")
	return tr, nil
}

// DismissLoginRedirect closes the login prompt and returns to the email
// question with the earlier answers intact.
func (c *Controller) DismissLoginRedirect(ctx context.Context) (api.Transition, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.idle(); err != nil {
		return api.Transition{}, err
	}
	if c.phase != api.PhaseLoginRedirect {
		return api.Transition{}, c.invalid("dismiss login redirect")
	}
	return c.dismiss(ctx), nil
}

func (c *Controller) dismiss(ctx context.Context) api.Transition {
	p := c.state.CursorPosition
	c.state.InterstitialActive = false
	c.phase = api.PhaseQuestion

	tr := api.Transition{Kind: api.TransitionDismissed, From: p, To: p}
	c.transition(ctx, tr)
	return tr
}

// SwitchCategory discards all state of the current category and mounts
// the survey of the new one. An empty surveyID keeps the current survey.
func (c *Controller) SwitchCategory(ctx context.Context, category api.Category, surveyID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if category == "" {
		return errors.New("survey category is required")
	}
	c.cancel()
	old := c.cfg.Category
	if err := c.adapter.Clear(ctx, old); err != nil {
		return c.fail(ctx, "clear_state", err)
	}
	c.cfg.Category = category
	if surveyID != "" {
		c.cfg.SurveyID = surveyID
	}
	c.resetLocal()
	c.track(ctx, api.EventReset, 0, string(old))

	epoch, _ := c.begin(api.StatusValidating)
	defer c.end(epoch)
	return c.mount(ctx, epoch)
}

// Reset clears the durable state of the current category and returns to
// the landing state. The catalog is kept.
func (c *Controller) Reset(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.mounted {
		return api.ErrNotMounted
	}
	c.cancel()
	if err := c.adapter.Clear(ctx, c.cfg.Category); err != nil {
		return c.fail(ctx, "clear_state", err)
	}
	p := c.state.CursorPosition
	cat := c.cat
	c.resetLocal()
	c.cat = cat
	c.mounted = true

	c.transition(ctx, api.Transition{Kind: api.TransitionReset, From: p, To: 0})
	c.track(ctx, api.EventReset, p, string(c.cfg.Category))
	return nil
}

// Redirect performs the completion handoff exactly once. Later calls
// return the destination emitted by the first successful call.
func (c *Controller) Redirect(ctx context.Context) (api.Redirect, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.mounted {
		return api.Redirect{}, api.ErrNotMounted
	}
	if c.redirect != nil {
		return *c.redirect, nil
	}
	if c.phase != api.PhaseCompleted {
		return api.Redirect{}, c.invalid("redirect")
	}
	epoch, err := c.begin(api.StatusRedirecting)
	if err != nil {
		return api.Redirect{}, err
	}
	defer c.end(epoch)

	c.phase = api.PhaseRedirecting
	r, err := c.handoff(ctx, epoch)
	if err != nil {
		if c.epoch == epoch {
			c.phase = api.PhaseCompleted
		}
		return api.Redirect{}, err
	}

	// The patient has left the survey; a failed clear only leaves stale
	// state behind for the next visit.
	if err := c.adapter.Clear(ctx, c.cfg.Category); err != nil {
		c.cfg.Observer.OnCollaboratorFailed(ctx, c.info(), "clear_state", err)
	}
	c.redirect = &r
	c.store = answers.NewStore()

	p := c.state.CursorPosition
	c.transition(ctx, api.Transition{Kind: api.TransitionRedirected, From: p, To: p})
	c.track(ctx, api.EventRedirected, p, string(r.Kind))
	return r, nil
}

func (c *Controller) handoff(ctx context.Context, epoch uint64) (api.Redirect, error) {
	rc := c.cfg.Redirect
	if !rc.productFirst() || c.cfg.Checkout == nil {
		u, err := buildRedirectURL(rc.ProductSummaryURL, rc.Params, nil)
		if err != nil {
			c.lastErr = err
			return api.Redirect{}, err
		}
		return api.Redirect{Kind: api.RedirectProductSummary, URL: u}, nil
	}

	req := api.CheckoutRequest{
		PriceID:   rc.PriceID,
		Email:     c.email(c.store.Snapshot()),
		ProductID: rc.ProductID,
		SurveyID:  c.cfg.SurveyID,
	}
	var (
		token   string
		callErr error
	)
	if !c.outside(epoch, func() { token, callErr = c.cfg.Checkout.CreateCheckoutSession(ctx, req) }) {
		return api.Redirect{}, api.ErrStaleResponse
	}
	if callErr != nil {
		return api.Redirect{}, c.fail(ctx, "create_checkout_session", callErr)
	}
	u, err := buildRedirectURL(rc.CheckoutURL, rc.Params, map[string]string{"token": token})
	if err != nil {
		c.lastErr = err
		return api.Redirect{}, err
	}
	return api.Redirect{Kind: api.RedirectCheckout, URL: u}, nil
}

// Snapshot returns a copy of the state for rendering.
func (c *Controller) Snapshot() api.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := api.Snapshot{
		SurveyID: c.cfg.SurveyID,
		Category: c.cfg.Category,
		Phase:    c.phase,
		Status:   c.status,
		State:    c.state,
	}
	if c.lastErr != nil {
		s.LastError = c.lastErr.Error()
	}
	if c.redirect != nil {
		r := *c.redirect
		s.Redirect = &r
	}
	if c.cat == nil {
		return s
	}
	s.Progress = progress.Compute(c.cat, c.store.Snapshot())

	switch c.phase {
	case api.PhaseQuestion, api.PhaseInterstitial, api.PhaseLoginRedirect, api.PhaseSubmitting:
	default:
		return s
	}
	q, ok := c.cat.At(c.state.CursorPosition)
	if !ok {
		return s
	}
	q.Options = slices.Clone(q.Options)
	s.Question = &q

	if c.pending != nil && c.pending.QuestionID == q.ID {
		a := answers.Prefill(q, *c.pending)
		s.Prefill = &a
	} else if stored, ok := c.store.Get(q.ID); ok {
		a := answers.Prefill(q, stored)
		s.Prefill = &a
	}
	if c.phase == api.PhaseInterstitial {
		s.BMI = c.bmi
		s.ProceedEnabled = c.bmi >= answers.MinBMI
	}
	return s
}

// Progress reports the progress of the current answer set.
func (c *Controller) Progress() api.Progress {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cat == nil {
		return api.Progress{}
	}
	return progress.Compute(c.cat, c.store.Snapshot())
}

// resetLocal drops all in-memory state. Caller holds c.mu.
func (c *Controller) resetLocal() {
	c.cat = nil
	c.store = answers.NewStore()
	c.state = api.FlowState{CursorPosition: 1}
	c.phase = api.PhaseInitial
	c.pending = nil
	c.bmi = 0
	c.bmiPassed = false
	c.mounted = false
	c.redirect = nil
	c.lastErr = nil
}

func (c *Controller) idle() error {
	if !c.mounted {
		return api.ErrNotMounted
	}
	if c.status != api.StatusIdle {
		return api.ErrBusy
	}
	return nil
}

// begin marks an async step in flight. Caller holds c.mu.
func (c *Controller) begin(s api.Status) (uint64, error) {
	if c.status != api.StatusIdle {
		return 0, api.ErrBusy
	}
	c.status = s
	return c.epoch, nil
}

// end returns to idle unless the step was cancelled meanwhile.
func (c *Controller) end(epoch uint64) {
	if c.epoch == epoch {
		c.status = api.StatusIdle
	}
}

// cancel invalidates every step in flight.
func (c *Controller) cancel() {
	c.epoch++
	c.status = api.StatusIdle
}

// outside runs fn with c.mu released and reports whether the flow is still
// on the same epoch afterwards. Caller holds c.mu.
func (c *Controller) outside(epoch uint64, fn func()) bool {
	c.mu.Unlock()
	fn()
	c.mu.Lock()
	return c.epoch == epoch
}

func (c *Controller) email(snap map[string]api.Answer) string {
	q, ok := c.cat.FindValidation(api.ValidationEmail)
	if !ok {
		return ""
	}
	return snap[q.ID].Value.Text
}

func (c *Controller) info() api.FlowInfo {
	return api.FlowInfo{
		SessionID: c.session,
		SurveyID:  c.cfg.SurveyID,
		Category:  c.cfg.Category,
		Position:  c.state.CursorPosition,
		Phase:     c.phase,
	}
}

func (c *Controller) transition(ctx context.Context, tr api.Transition) {
	c.lastErr = nil
	c.cfg.Observer.OnTransition(ctx, c.info(), tr)
}

func (c *Controller) fail(ctx context.Context, op string, err error) error {
	c.cfg.Observer.OnCollaboratorFailed(ctx, c.info(), op, err)
	cerr := &api.CollaboratorError{Op: op, Err: err}
	c.lastErr = cerr
	return cerr
}

func (c *Controller) invalid(action string) error {
	return fmt.Errorf("%s in phase %s: %w", action, c.phase, api.ErrInvalidTransition)
}

// track delivers an analytics event. Failures never reach the flow.
func (c *Controller) track(ctx context.Context, typ api.EventType, position int, detail string) {
	if c.cfg.Events == nil {
		return
	}
	_ = c.cfg.Events.Track(ctx, api.FlowEvent{
		SessionID: c.session,
		SurveyID:  c.cfg.SurveyID,
		Category:  c.cfg.Category,
		At:        c.cfg.Now(),
		Type:      typ,
		Position:  position,
		Detail:    detail,
	})
}
