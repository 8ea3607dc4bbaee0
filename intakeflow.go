package intakeflow

import (
	"database/sql"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/petrijr/intakeflow/internal/flow"
	"github.com/petrijr/intakeflow/internal/persistence"
	"github.com/petrijr/intakeflow/pkg/api"
)

// Re-export key types so users don't need to dig into pkg/api.

type (
	Controller     = flow.Controller
	Config         = flow.Config
	RedirectConfig = flow.RedirectConfig
	Storage        = persistence.Storage

	Question          = api.Question
	QuestionType      = api.QuestionType
	Answer            = api.Answer
	AnswerInput       = api.AnswerInput
	Value             = api.Value
	BodyMetrics       = api.BodyMetrics
	FileRef           = api.FileRef
	Upload            = api.Upload
	Category          = api.Category
	Phase             = api.Phase
	Status            = api.Status
	FlowState         = api.FlowState
	Progress          = api.Progress
	Transition        = api.Transition
	TransitionKind    = api.TransitionKind
	Redirect          = api.Redirect
	Snapshot          = api.Snapshot
	FlowEvent         = api.FlowEvent
	EventSink         = api.EventSink
	CatalogService    = api.CatalogService
	SubmissionService = api.SubmissionService
	SubmissionRequest = api.SubmissionRequest
	EmailCheck        = api.EmailCheck
	CheckoutRequest   = api.CheckoutRequest
	UserRegistry      = api.UserRegistry
	FileStorage       = api.FileStorage
	CheckoutHandoff   = api.CheckoutHandoff

	Observer             = api.Observer
	FlowInfo             = api.FlowInfo
	LoggingObserver      = api.LoggingObserver
	BasicMetrics         = api.BasicMetrics
	BasicMetricsSnapshot = api.BasicMetricsSnapshot
	CompositeObserver    = api.CompositeObserver
	NoopObserver         = api.NoopObserver
)

// Re-export common helpers.

var (
	NewLoggingObserver   = api.NewLoggingObserver
	NewCompositeObserver = api.NewCompositeObserver

	TextValue    = api.TextValue
	ChoicesValue = api.ChoicesValue
	FileValue    = api.FileValue
	DateValue    = api.DateValue
	BodyValue    = api.BodyValue

	IsRetryable = api.IsRetryable
)

// Re-export phase values for convenience.

const (
	PhaseInitial       = api.PhaseInitial
	PhaseQuestion      = api.PhaseQuestion
	PhaseInterstitial  = api.PhaseInterstitial
	PhaseLoginRedirect = api.PhaseLoginRedirect
	PhaseSubmitting    = api.PhaseSubmitting
	PhaseCompleted     = api.PhaseCompleted
	PhaseRedirecting   = api.PhaseRedirecting
	PhaseFailed        = api.PhaseFailed
)

// NewController returns an unmounted Controller. Call Mount before any
// other action.
func NewController(cfg Config) (*Controller, error) {
	return flow.New(cfg)
}

// Storage constructors.
// These wrap the internal/persistence package so external callers
// never need to import internal packages.

// NewInMemoryStorage returns a non-durable Storage, best for tests.
func NewInMemoryStorage() Storage {
	return persistence.NewInMemoryStore()
}

// NewSQLiteStorage returns a Storage in a SQLite database. The caller
// imports the driver, e.g. _ "modernc.org/sqlite".
func NewSQLiteStorage(db *sql.DB) (Storage, error) {
	return persistence.NewSQLiteStore(db)
}

// NewPostgresStorage returns a Storage in PostgreSQL. The caller imports
// the driver, e.g. _ "github.com/jackc/pgx/v5/stdlib".
func NewPostgresStorage(db *sql.DB) (Storage, error) {
	return persistence.NewPostgresStore(db)
}

// NewRedisStorage returns a Storage in Redis with keys under prefix. The
// controller already prefixes its keys with Config.KeyPrefix, so prefix is
// usually empty.
func NewRedisStorage(client *redis.Client, prefix string) Storage {
	return persistence.NewRedisStore(client, prefix)
}

// NewMongoStorage returns a Storage in a MongoDB collection. Empty names
// default to "intake" and "state".
func NewMongoStorage(client *mongo.Client, dbName, collName string) Storage {
	return persistence.NewMongoStore(client, dbName, collName)
}
