// Package api contains the core types shared by the intake flow engine:
// questions, answers, flow state, collaborator interfaces, errors and
// observers.
//
// Most users interact with the higher-level intakeflow package, which
// re-exports selected types and helpers from this package. The api package
// is intended for custom collaborator implementations and integrations.
//
// # Questions and Answers
//
// A Question has a position, a type (single select, multi select, free
// text, text input, file) and optional validation and special behavior.
// An Answer pairs a question id with a typed Value: text, choices, a file
// reference, a date or body metrics.
//
// # Collaborators
//
// The flow talks to the outside world only through the CatalogService,
// SubmissionService, UserRegistry, FileStorage and CheckoutHandoff
// interfaces. Failures are wrapped in a CollaboratorError that reports
// whether a retry may succeed.
//
// # Observability
//
// The Observer interface receives transitions, submissions, collaborator
// failures and BMI blocks. LoggingObserver writes them through log/slog,
// BasicMetrics counts them, and CompositeObserver fans out to several.
// EventSink receives best-effort analytics events.
package api
