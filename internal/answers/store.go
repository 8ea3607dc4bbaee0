// Package answers holds the in-memory answer store and the local rules that
// turn a submitted input into a storable answer.
package answers

import (
	"maps"

	"github.com/petrijr/intakeflow/internal/catalog"
	"github.com/petrijr/intakeflow/pkg/api"
)

// Store maps question id to answer. It is not safe for concurrent use; the
// flow controller owns it and serialises access.
type Store struct {
	answers map[string]api.Answer
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{answers: make(map[string]api.Answer)}
}

// FromSnapshot returns a Store seeded with a copy of snap.
func FromSnapshot(snap map[string]api.Answer) *Store {
	s := NewStore()
	for id, a := range snap {
		s.answers[id] = a.Clone()
	}
	return s
}

func (s *Store) Get(id string) (api.Answer, bool) {
	a, ok := s.answers[id]
	if !ok {
		return api.Answer{}, false
	}
	return a.Clone(), true
}

func (s *Store) Put(a api.Answer) {
	s.answers[a.QuestionID] = a.Clone()
}

func (s *Store) Delete(id string) {
	delete(s.answers, id)
}

func (s *Store) Len() int { return len(s.answers) }

// Snapshot returns a deep copy of the stored answers.
func (s *Store) Snapshot() map[string]api.Answer {
	out := make(map[string]api.Answer, len(s.answers))
	for id, a := range s.answers {
		out[id] = a.Clone()
	}
	return out
}

// With returns a copy of the store's answers with a applied. An empty value
// removes the answer.
func (s *Store) With(a api.Answer) map[string]api.Answer {
	out := maps.Clone(s.answers)
	if a.Value.IsEmpty() {
		delete(out, a.QuestionID)
	} else {
		out[a.QuestionID] = a
	}
	return out
}

// Ordered returns answers of snap in catalog order.
func Ordered(cat *catalog.Catalog, snap map[string]api.Answer) []api.Answer {
	out := make([]api.Answer, 0, len(snap))
	for _, q := range cat.Questions() {
		if a, ok := snap[q.ID]; ok {
			out = append(out, a.Clone())
		}
	}
	return out
}
