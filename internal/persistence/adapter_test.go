package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/petrijr/intakeflow/pkg/api"
)

func sampleAnswers() map[string]api.Answer {
	return map[string]api.Answer{
		"goal":  {QuestionID: "goal", Value: api.ChoicesValue("Lose weight", "Other"), OtherText: "sleep better"},
		"dob":   {QuestionID: "dob", Value: api.DateValue(time.Date(1990, 4, 2, 0, 0, 0, 0, time.UTC))},
		"hw":    {QuestionID: "hw", Value: api.BodyValue(api.BodyMetrics{HeightFeet: 5, HeightInches: 9, WeightPounds: 190})},
		"photo": {QuestionID: "photo", Value: api.FileValue(api.FileRef{Name: "id.png", URL: "https://files/1"})},
	}
}

func TestAdapter_SaveAndLoad(t *testing.T) {
	for name, factory := range storageFactories {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			a := NewAdapter(factory(t), "intake:")

			loaded, err := a.Load(ctx, "weight-loss")
			require.NoError(t, err)
			require.Empty(t, loaded.Answers)
			require.Empty(t, loaded.Discarded)

			require.NoError(t, a.SaveAnswers(ctx, "weight-loss", sampleAnswers()))
			require.NoError(t, a.SaveCursor(ctx, "weight-loss", 4))
			require.NoError(t, a.SaveCompletion(ctx, "weight-loss", true, "sub-1"))

			loaded, err = a.Load(ctx, "weight-loss")
			require.NoError(t, err)
			require.Equal(t, sampleAnswers()["goal"], loaded.Answers["goal"])
			require.True(t, loaded.Answers["dob"].Value.Date.Equal(sampleAnswers()["dob"].Value.Date))
			require.Equal(t, 190.0, loaded.Answers["hw"].Value.Body.WeightPounds)
			require.Equal(t, "https://files/1", loaded.Answers["photo"].Value.File.URL)
			require.Equal(t, 4, loaded.State.CursorPosition)
			require.True(t, loaded.State.IsSurveyCompleted)
			require.Equal(t, "sub-1", loaded.State.SubmissionID)
		})
	}
}

func TestAdapter_CategorySwitchResets(t *testing.T) {
	for name, factory := range storageFactories {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := factory(t)
			a := NewAdapter(store, "intake:")

			_, err := a.Load(ctx, "weight-loss")
			require.NoError(t, err)
			require.NoError(t, a.SaveAnswers(ctx, "weight-loss", sampleAnswers()))
			require.NoError(t, a.SaveCursor(ctx, "weight-loss", 3))

			loaded, err := a.Load(ctx, "longevity")
			require.NoError(t, err)
			require.Empty(t, loaded.Answers)
			require.Zero(t, loaded.State.CursorPosition)
			require.Equal(t, api.Category("weight-loss"), loaded.Discarded)

			// The prior category is gone, not merely hidden.
			_, err = store.Get(ctx, "intake:weight-loss:answers")
			require.True(t, errors.Is(err, ErrKeyNotFound))

			loaded, err = a.Load(ctx, "weight-loss")
			require.NoError(t, err)
			require.Empty(t, loaded.Answers)
			require.Equal(t, api.Category("longevity"), loaded.Discarded)
		})
	}
}

func TestAdapter_Clear(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	a := NewAdapter(store, "intake:")

	_, err := a.Load(ctx, "longevity")
	require.NoError(t, err)
	require.NoError(t, a.SaveAnswers(ctx, "longevity", nil))
	require.NoError(t, a.SaveCursor(ctx, "longevity", 2))

	require.NoError(t, a.Clear(ctx, "longevity"))
	require.Empty(t, store.Keys())
}

type failingStorage struct{ Storage }

func (failingStorage) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, errors.New("disk on fire")
}

func TestAdapter_LoadPropagatesStorageErrors(t *testing.T) {
	a := NewAdapter(failingStorage{NewInMemoryStore()}, "")
	_, err := a.Load(context.Background(), "weight-loss")
	require.ErrorContains(t, err, "disk on fire")
}
