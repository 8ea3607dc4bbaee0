// Package catalog holds the validated, position-ordered question list of a
// survey instance.
package catalog

import (
	"fmt"
	"slices"

	"github.com/petrijr/intakeflow/pkg/api"
)

// Catalog is an immutable, validated question list. Positions are dense
// 1..N and unique.
type Catalog struct {
	surveyID  string
	questions []api.Question
	byID      map[string]int
}

// New validates questions and returns a Catalog. Any structural problem is
// reported as *api.IntegrityError.
func New(surveyID string, questions []api.Question) (*Catalog, error) {
	if len(questions) == 0 {
		return nil, &api.IntegrityError{SurveyID: surveyID, Reason: "catalog is empty"}
	}

	sorted := slices.Clone(questions)
	slices.SortStableFunc(sorted, func(a, b api.Question) int { return a.Position - b.Position })

	byID := make(map[string]int, len(sorted))
	for i, q := range sorted {
		fail := func(format string, args ...any) error {
			return &api.IntegrityError{SurveyID: surveyID, Reason: fmt.Sprintf(format, args...)}
		}
		if q.ID == "" {
			return nil, fail("question at position %d has no id", q.Position)
		}
		if _, dup := byID[q.ID]; dup {
			return nil, fail("duplicate question id %q", q.ID)
		}
		if q.Position != i+1 {
			return nil, fail("positions are not contiguous: expected %d, got %d (question %q)", i+1, q.Position, q.ID)
		}
		if !q.Type.Valid() {
			return nil, fail("question %q has unknown type %q", q.ID, q.Type)
		}
		if q.Type.IsSelect() && len(q.Options) == 0 {
			return nil, fail("select question %q has no options", q.ID)
		}
		if o := q.Metadata.PreviousPositionOverride; o < 0 || (o > 0 && o >= q.Position) {
			return nil, fail("question %q has invalid previous position override %d", q.ID, o)
		}
		byID[q.ID] = i
	}

	return &Catalog{surveyID: surveyID, questions: sorted, byID: byID}, nil
}

// SurveyID returns the survey this catalog belongs to.
func (c *Catalog) SurveyID() string { return c.surveyID }

// Len returns the number of positions.
func (c *Catalog) Len() int { return len(c.questions) }

// Questions returns a copy of the ordered question list.
func (c *Catalog) Questions() []api.Question { return slices.Clone(c.questions) }

// At returns the question at 1-based position p.
func (c *Catalog) At(p int) (api.Question, bool) {
	if p < 1 || p > len(c.questions) {
		return api.Question{}, false
	}
	return c.questions[p-1], true
}

// ByID returns the question with the given id.
func (c *Catalog) ByID(id string) (api.Question, bool) {
	i, ok := c.byID[id]
	if !ok {
		return api.Question{}, false
	}
	return c.questions[i], true
}

// PreviousPosition returns the back-navigation target of position p: the
// declared override if any, else p-1. A result of 0 means "before the
// first question".
func (c *Catalog) PreviousPosition(p int) int {
	q, ok := c.At(p)
	if ok && q.Metadata.PreviousPositionOverride > 0 {
		return q.Metadata.PreviousPositionOverride
	}
	return p - 1
}

// FindBehavior returns the first question tagged with b.
func (c *Catalog) FindBehavior(b api.SpecialBehavior) (api.Question, bool) {
	for _, q := range c.questions {
		if q.SpecialBehavior == b {
			return q, true
		}
	}
	return api.Question{}, false
}

// FindValidation returns the first question with validation kind v.
func (c *Catalog) FindValidation(v api.ValidationKind) (api.Question, bool) {
	for _, q := range c.questions {
		if q.Validation == v {
			return q, true
		}
	}
	return api.Question{}, false
}
