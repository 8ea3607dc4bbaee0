package intakeflow

import (
	"context"
	"fmt"
	"slices"

	"github.com/petrijr/intakeflow/internal/catalog"
	"github.com/petrijr/intakeflow/pkg/api"
)

// SurveyBuilder provides a fluent API for defining question catalogs.
// Positions are assigned in call order:
//
//	survey := intakeflow.NewSurvey("wl-intake").
//	    TextInput("name", "What is your name?").
//	    Email("email", "Where can we reach you?").
//	    BodyMetrics("hw", "Height and weight").
//	    SingleSelect("goal", "Main goal", "Lose weight", "Other").
//	    Optional()
//
//	cfg.Catalog = survey.Catalog()
type SurveyBuilder struct {
	id        string
	questions []api.Question
}

// NewSurvey creates a new survey builder with the given id.
func NewSurvey(id string) *SurveyBuilder {
	return &SurveyBuilder{id: id}
}

// ID returns the survey id.
func (b *SurveyBuilder) ID() string {
	return b.id
}

// Questions returns a copy of the questions defined so far.
func (b *SurveyBuilder) Questions() []Question {
	return slices.Clone(b.questions)
}

// Question appends q at the next position as a required question; follow
// it with Optional to relax that.
func (b *SurveyBuilder) Question(q Question) *SurveyBuilder {
	if q.ID == "" {
		panic("intakeflow: question id must not be empty")
	}
	q.Position = len(b.questions) + 1
	q.IsRequired = true
	b.questions = append(b.questions, q)
	return b
}

func (b *SurveyBuilder) SingleSelect(id, text string, options ...string) *SurveyBuilder {
	return b.Question(api.Question{ID: id, Text: text, Type: api.QuestionSingleSelect, Options: options})
}

func (b *SurveyBuilder) MultiSelect(id, text string, options ...string) *SurveyBuilder {
	return b.Question(api.Question{ID: id, Text: text, Type: api.QuestionMultiSelect, Options: options})
}

func (b *SurveyBuilder) FreeText(id, text string) *SurveyBuilder {
	return b.Question(api.Question{ID: id, Text: text, Type: api.QuestionFreeText})
}

func (b *SurveyBuilder) TextInput(id, text string) *SurveyBuilder {
	return b.Question(api.Question{ID: id, Text: text, Type: api.QuestionTextInput})
}

// Email adds a text input checked against the user registry on submit.
func (b *SurveyBuilder) Email(id, text string) *SurveyBuilder {
	return b.Question(api.Question{ID: id, Text: text, Type: api.QuestionTextInput, Validation: api.ValidationEmail})
}

func (b *SurveyBuilder) Phone(id, text string) *SurveyBuilder {
	return b.Question(api.Question{ID: id, Text: text, Type: api.QuestionTextInput, Validation: api.ValidationPhone})
}

func (b *SurveyBuilder) File(id, text string) *SurveyBuilder {
	return b.Question(api.Question{ID: id, Text: text, Type: api.QuestionFile})
}

// BodyMetrics adds the height/weight question that opens the BMI
// interstitial.
func (b *SurveyBuilder) BodyMetrics(id, text string) *SurveyBuilder {
	return b.Question(api.Question{ID: id, Text: text, Type: api.QuestionTextInput, SpecialBehavior: api.BehaviorBMIGate})
}

func (b *SurveyBuilder) DateOfBirth(id, text string) *SurveyBuilder {
	return b.Question(api.Question{ID: id, Text: text, Type: api.QuestionTextInput, SpecialBehavior: api.BehaviorDateOfBirth})
}

// Optional marks the last added question as not required.
func (b *SurveyBuilder) Optional() *SurveyBuilder {
	b.last("Optional").IsRequired = false
	return b
}

// BackTo makes back navigation from the last added question land on
// position instead of the one before it.
func (b *SurveyBuilder) BackTo(position int) *SurveyBuilder {
	b.last("BackTo").Metadata.PreviousPositionOverride = position
	return b
}

func (b *SurveyBuilder) last(op string) *api.Question {
	if len(b.questions) == 0 {
		panic(fmt.Sprintf("intakeflow: %s called before any question", op))
	}
	return &b.questions[len(b.questions)-1]
}

// Validate checks the catalog the same way Mount will.
func (b *SurveyBuilder) Validate() error {
	_, err := catalog.New(b.id, b.questions)
	return err
}

// Catalog returns a CatalogService serving this survey.
func (b *SurveyBuilder) Catalog() CatalogService {
	return &StaticCatalog{Surveys: map[string][]Question{b.id: b.Questions()}}
}

// StaticCatalog serves fixed question lists by survey id.
type StaticCatalog struct {
	Surveys map[string][]Question
}

func (c *StaticCatalog) FetchQuestions(ctx context.Context, surveyID string) ([]Question, error) {
	qs, ok := c.Surveys[surveyID]
	if !ok {
		return nil, fmt.Errorf("unknown survey %q", surveyID)
	}
	return slices.Clone(qs), nil
}
