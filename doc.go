// Package intakeflow provides an embeddable engine for adaptive patient
// intake surveys.
//
// A survey is an ordered list of questions fetched from a catalog. The
// engine walks a patient through it one question at a time, validates each
// answer, acknowledges it with a submission service, persists progress so a
// reload resumes where the patient left off, and finally hands the patient
// off to checkout or a product summary page.
//
// # Core Concepts
//
//  1. Controller
//  2. SurveyBuilder
//  3. Storage
//  4. Observer and EventSink
//  5. Bundle
//
// # Controller
//
// The Controller owns the flow for one patient and one category. Its phases
// are Initial, Question, Interstitial, LoginRedirect, Completed and
// Redirecting. Every action is one method:
//
//   - Mount loads persisted state and resumes
//   - Start, Submit and Back move through the questions
//   - Proceed and Skip leave the BMI interstitial
//   - DismissLoginRedirect returns from the login prompt
//   - SwitchCategory and Reset discard progress
//   - Redirect performs the completion handoff exactly once
//
// Only one collaborator call runs at a time. An action issued while another
// is in flight fails with ErrBusy; a response that arrives after Back or
// Reset is discarded with ErrStaleResponse.
//
// # Gates
//
// Some questions carry a special behavior. An email question consults the
// user registry: a restricted address sends the patient to log in instead.
// A height/weight question computes BMI and shows an interstitial before
// continuing; a BMI under 18 blocks Proceed and Skip. A date-of-birth
// question rejects dates in the future.
//
// # Storage
//
// Answers and the cursor are persisted per category through a small
// key/value Storage. Backends:
//
//   - In-memory (non-durable, best for tests)
//   - SQLite
//   - Postgres
//   - Redis
//   - MongoDB
//
// Switching category discards the other category's state.
//
// # Bundle
//
// Bundle wires a Controller with structured logging, BasicMetrics and an
// AnalyticsRunner that delivers flow events in the background:
//
//	bundle, err := intakeflow.NewSQLiteBundle(db, cfg, logger, sink)
//	if err := bundle.Start(ctx); err != nil { ... }
//	defer bundle.Close()
//
// LocalServices provides in-process collaborators for development.
//
// For examples, see the /examples directory and cmd/intakectl.
package intakeflow
