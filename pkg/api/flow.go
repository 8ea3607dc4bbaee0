package api

// Phase is the state of the intake flow state machine.
type Phase string

const (
	PhaseInitial       Phase = "INITIAL"
	PhaseQuestion      Phase = "QUESTION"
	PhaseInterstitial  Phase = "INTERSTITIAL"
	PhaseLoginRedirect Phase = "LOGIN_REDIRECT"
	PhaseSubmitting    Phase = "SUBMITTING"
	PhaseCompleted     Phase = "COMPLETED"
	PhaseRedirecting   Phase = "REDIRECTING"
	PhaseFailed        Phase = "FAILED"
)

// Status tells the rendering layer whether an async step is in flight.
// Triggering controls are disabled while Status != StatusIdle.
type Status string

const (
	StatusIdle        Status = "idle"
	StatusValidating  Status = "validating"
	StatusSubmitting  Status = "submitting"
	StatusRedirecting Status = "redirecting"
)

// FlowState is the persisted cursor state of one survey instance.
//
// InterstitialActive is only ever true while CursorPosition addresses the
// BMI-gated question.
type FlowState struct {
	CursorPosition     int    `json:"cursorPosition"`
	InterstitialActive bool   `json:"interstitialActive"`
	IsSurveyCompleted  bool   `json:"isSurveyCompleted"`
	SubmissionID       string `json:"submissionId,omitempty"`
}

// Progress is derived from a catalog and an answer set.
type Progress struct {
	TotalSteps               int  `json:"totalSteps"`
	FurthestAnsweredPosition int  `json:"furthestAnsweredPosition"`
	IsCompleted              bool `json:"isCompleted"`
}

// TransitionKind names the outcome of a user action.
type TransitionKind string

const (
	TransitionStarted       TransitionKind = "started"
	TransitionAdvanced      TransitionKind = "advanced"
	TransitionInterstitial  TransitionKind = "interstitial"
	TransitionLoginRedirect TransitionKind = "login_redirect"
	TransitionBack          TransitionKind = "back"
	TransitionDismissed     TransitionKind = "dismissed"
	TransitionCompleted     TransitionKind = "completed"
	TransitionRedirected    TransitionKind = "redirected"
	TransitionReset         TransitionKind = "reset"
	TransitionResumed       TransitionKind = "resumed"
)

// Transition describes an applied state change.
type Transition struct {
	Kind TransitionKind
	From int
	To   int
	// BMI is set when the interstitial is shown.
	BMI float64
}

// RedirectKind names the handoff destination.
type RedirectKind string

const (
	RedirectCheckout       RedirectKind = "checkout"
	RedirectProductSummary RedirectKind = "product_summary"
)

// Redirect is the single exit destination emitted on completion.
type Redirect struct {
	Kind RedirectKind
	URL  string
}

// AnswerInput is what the rendering layer submits for the current question.
type AnswerInput struct {
	Value     Value
	OtherText string
	// Upload carries the raw file for FILE questions. It is uploaded before
	// the answer is accepted and only its reference is stored.
	Upload *Upload
}

// Snapshot is a read-only view of the controller for rendering.
type Snapshot struct {
	SurveyID string
	Category Category
	Phase    Phase
	Status   Status
	State    FlowState
	Progress Progress
	Question *Question
	// Prefill is the stored answer for the current question, type-coerced
	// for the widget.
	Prefill *Answer
	BMI     float64
	// ProceedEnabled is false while the interstitial BMI is below threshold.
	ProceedEnabled bool
	Redirect       *Redirect
	// LastError is the message of the last failed action, cleared by the
	// next successful one.
	LastError string
}
