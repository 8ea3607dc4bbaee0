package flow

import (
	"net/url"
	"time"

	"github.com/petrijr/intakeflow/internal/persistence"
	"github.com/petrijr/intakeflow/pkg/api"
)

// Config describes how to construct a Controller.
type Config struct {
	SurveyID  string
	PatientID string
	Category  api.Category

	Catalog     api.CatalogService
	Submissions api.SubmissionService
	// Registry, Files and Checkout are optional. Without a Registry the
	// email gate only validates locally; without Checkout every handoff
	// goes to the product summary page.
	Registry api.UserRegistry
	Files    api.FileStorage
	Checkout api.CheckoutHandoff

	// Storage holds the durable state. Defaults to an in-memory store.
	Storage   persistence.Storage
	KeyPrefix string

	Observer api.Observer
	// Events receives best-effort analytics. Errors are ignored.
	Events api.EventSink

	Redirect RedirectConfig

	// SkipStepAcknowledgement turns off the isComplete=false submission
	// sent before every forward step. The final submission is always sent.
	SkipStepAcknowledgement bool

	// Now is used for date-of-birth checks and event timestamps.
	Now func() time.Time
}

// RedirectConfig selects the completion handoff destination.
type RedirectConfig struct {
	CheckoutURL       string
	ProductSummaryURL string

	// ProductFirst sends the patient straight to checkout when ProductID
	// is set. A "flow=product-first" query parameter has the same effect.
	ProductFirst bool
	ProductID    string
	PriceID      string

	// Params are the query parameters the survey was opened with. Only
	// ForwardedParams survive the redirect.
	Params url.Values
}

// ForwardedParams is the whitelist of query parameters carried into the
// redirect URL.
var ForwardedParams = []string{"flow", "source", "sale_type", "overrideTime"}

const productFirstFlow = "product-first"

func (c Config) withDefaults() Config {
	if c.Storage == nil {
		c.Storage = persistence.NewInMemoryStore()
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = "intake:"
	}
	if c.Observer == nil {
		c.Observer = api.NoopObserver{}
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}
