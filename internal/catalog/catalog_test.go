package catalog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/petrijr/intakeflow/pkg/api"
)

func TestNew_SortsByPosition(t *testing.T) {
	c, err := New("s1", []api.Question{
		{ID: "c", Position: 3, Type: api.QuestionFreeText},
		{ID: "a", Position: 1, Type: api.QuestionTextInput},
		{ID: "b", Position: 2, Type: api.QuestionSingleSelect, Options: []string{"Yes", "No"}},
	})
	require.NoError(t, err)
	require.Equal(t, 3, c.Len())

	q, ok := c.At(1)
	require.True(t, ok)
	require.Equal(t, "a", q.ID)

	q, ok = c.ByID("c")
	require.True(t, ok)
	require.Equal(t, 3, q.Position)

	_, ok = c.At(4)
	require.False(t, ok)
}

func TestNew_RejectsMalformedCatalogs(t *testing.T) {
	cases := map[string][]api.Question{
		"empty":        nil,
		"gap":          {{ID: "a", Position: 1, Type: api.QuestionFreeText}, {ID: "b", Position: 3, Type: api.QuestionFreeText}},
		"duplicate id": {{ID: "a", Position: 1, Type: api.QuestionFreeText}, {ID: "a", Position: 2, Type: api.QuestionFreeText}},
		"missing id":   {{Position: 1, Type: api.QuestionFreeText}},
		"unknown type": {{ID: "a", Position: 1, Type: "SLIDER"}},
		"no options":   {{ID: "a", Position: 1, Type: api.QuestionMultiSelect}},
		"forward override": {
			{ID: "a", Position: 1, Type: api.QuestionFreeText},
			{ID: "b", Position: 2, Type: api.QuestionFreeText, Metadata: api.QuestionMetadata{PreviousPositionOverride: 2}},
		},
	}

	for name, qs := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := New("s1", qs)
			require.Error(t, err)
			require.True(t, errors.Is(err, api.ErrCatalogIntegrity), "got %v", err)

			var ie *api.IntegrityError
			require.ErrorAs(t, err, &ie)
			require.Equal(t, "s1", ie.SurveyID)
		})
	}
}

func TestPreviousPosition_UsesOverride(t *testing.T) {
	qs := make([]api.Question, 0, 5)
	for i := 1; i <= 5; i++ {
		qs = append(qs, api.Question{ID: string(rune('a' + i - 1)), Position: i, Type: api.QuestionFreeText})
	}
	qs[4].Metadata.PreviousPositionOverride = 2

	c, err := New("s1", qs)
	require.NoError(t, err)

	require.Equal(t, 2, c.PreviousPosition(5))
	require.Equal(t, 3, c.PreviousPosition(4))
	require.Equal(t, 0, c.PreviousPosition(1))
}

func TestFindBehavior(t *testing.T) {
	c, err := New("s1", []api.Question{
		{ID: "email", Position: 1, Type: api.QuestionTextInput, Validation: api.ValidationEmail},
		{ID: "hw", Position: 2, Type: api.QuestionTextInput, SpecialBehavior: api.BehaviorBMIGate},
	})
	require.NoError(t, err)

	q, ok := c.FindBehavior(api.BehaviorBMIGate)
	require.True(t, ok)
	require.Equal(t, "hw", q.ID)

	q, ok = c.FindValidation(api.ValidationEmail)
	require.True(t, ok)
	require.Equal(t, "email", q.ID)

	_, ok = c.FindBehavior(api.BehaviorDateOfBirth)
	require.False(t, ok)
}
