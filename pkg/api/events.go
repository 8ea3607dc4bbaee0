package api

import "time"

// EventType identifies an analytics event emitted by the flow.
type EventType string

const (
	EventStarted           EventType = "flow.started"
	EventResumed           EventType = "flow.resumed"
	EventStepSubmitted     EventType = "step.submitted"
	EventBack              EventType = "step.back"
	EventInterstitialShown EventType = "interstitial.shown"
	EventBMIProceed        EventType = "interstitial.proceed"
	EventBMISkip           EventType = "interstitial.skip"
	EventBMIBlocked        EventType = "interstitial.blocked"
	EventLoginRedirect     EventType = "gate.login_redirect"
	EventCompleted         EventType = "flow.completed"
	EventRedirected        EventType = "flow.redirected"
	EventReset             EventType = "flow.reset"
)

// FlowEvent is a small analytics record. Keep Detail low-volume: never put
// answer contents here.
type FlowEvent struct {
	SessionID string
	SurveyID  string
	Category  Category
	At        time.Time
	Type      EventType
	Position  int
	Detail    string
}
