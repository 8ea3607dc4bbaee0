package intakeflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/petrijr/intakeflow/pkg/api"
)

func TestSurveyBuilder_AssignsPositions(t *testing.T) {
	survey := NewSurvey("wl").
		TextInput("name", "Name").
		Email("email", "Email").
		Phone("phone", "Phone").Optional().
		DateOfBirth("dob", "Date of birth").
		BodyMetrics("hw", "Height and weight").
		MultiSelect("goals", "Goals", "Energy", "Other").
		File("id", "Photo ID").BackTo(2)

	qs := survey.Questions()
	require.Len(t, qs, 7)
	for i, q := range qs {
		require.Equal(t, i+1, q.Position, q.ID)
	}
	require.Equal(t, api.ValidationEmail, qs[1].Validation)
	require.False(t, qs[2].IsRequired)
	require.True(t, qs[3].IsRequired)
	require.Equal(t, api.BehaviorDateOfBirth, qs[3].SpecialBehavior)
	require.Equal(t, api.BehaviorBMIGate, qs[4].SpecialBehavior)
	require.Equal(t, 2, qs[6].Metadata.PreviousPositionOverride)
	require.NoError(t, survey.Validate())
}

func TestSurveyBuilder_ValidateReportsIntegrityErrors(t *testing.T) {
	err := NewSurvey("bad").SingleSelect("s", "No options").Validate()
	require.ErrorIs(t, err, api.ErrCatalogIntegrity)

	err = NewSurvey("empty").Validate()
	require.ErrorIs(t, err, api.ErrCatalogIntegrity)
}

func TestSurveyBuilder_Panics(t *testing.T) {
	require.Panics(t, func() { NewSurvey("x").TextInput("", "no id") })
	require.Panics(t, func() { NewSurvey("x").Optional() })
}

func TestStaticCatalog(t *testing.T) {
	survey := NewSurvey("wl").TextInput("name", "Name")
	cat := survey.Catalog()

	qs, err := cat.FetchQuestions(context.Background(), "wl")
	require.NoError(t, err)
	require.Len(t, qs, 1)

	// Returned slices are copies.
	qs[0].ID = "mutated"
	again, err := cat.FetchQuestions(context.Background(), "wl")
	require.NoError(t, err)
	require.Equal(t, "name", again[0].ID)

	_, err = cat.FetchQuestions(context.Background(), "other")
	require.Error(t, err)
}
