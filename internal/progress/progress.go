// Package progress derives survey progress and the resume cursor from a
// catalog and an answer set. Everything here is pure and cheap enough to
// call on every render.
package progress

import (
	"github.com/petrijr/intakeflow/internal/catalog"
	"github.com/petrijr/intakeflow/pkg/api"
)

// Compute returns the progress of answers against cat.
//
// FurthestAnsweredPosition is the highest p such that every position 1..p
// is answered or optional. IsCompleted is true iff every required position
// is answered.
func Compute(cat *catalog.Catalog, answers map[string]api.Answer) api.Progress {
	p := api.Progress{TotalSteps: cat.Len(), IsCompleted: true}

	prefix := true
	for _, q := range cat.Questions() {
		_, answered := answers[q.ID]
		done := answered || !q.IsRequired
		if prefix && done {
			p.FurthestAnsweredPosition = q.Position
		} else {
			prefix = false
		}
		if q.IsRequired && !answered {
			p.IsCompleted = false
		}
	}
	return p
}

// Resume returns the cursor position to restore after a reload:
// min(furthestAnsweredPosition+1, totalSteps).
func Resume(cat *catalog.Catalog, answers map[string]api.Answer) int {
	p := Compute(cat, answers)
	return min(p.FurthestAnsweredPosition+1, p.TotalSteps)
}

// FirstMissingRequired returns the lowest required position without an
// answer, or 0 if there is none.
func FirstMissingRequired(cat *catalog.Catalog, answers map[string]api.Answer) int {
	for _, q := range cat.Questions() {
		if _, ok := answers[q.ID]; q.IsRequired && !ok {
			return q.Position
		}
	}
	return 0
}
