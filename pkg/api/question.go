package api

import "strings"

// QuestionType identifies the input widget family of a question.
type QuestionType string

const (
	QuestionSingleSelect QuestionType = "SINGLE_SELECT"
	QuestionMultiSelect  QuestionType = "MULTI_SELECT"
	QuestionFreeText     QuestionType = "FREE_TEXT"
	QuestionFile         QuestionType = "FILE"
	QuestionTextInput    QuestionType = "TEXT_INPUT"
)

// Valid reports whether t is one of the known question types.
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionSingleSelect, QuestionMultiSelect, QuestionFreeText, QuestionFile, QuestionTextInput:
		return true
	}
	return false
}

// IsSelect reports whether answers to t are chosen from Options.
func (t QuestionType) IsSelect() bool {
	return t == QuestionSingleSelect || t == QuestionMultiSelect
}

// ValidationKind selects the shape check applied to a text answer.
type ValidationKind string

const (
	ValidationNone  ValidationKind = ""
	ValidationEmail ValidationKind = "email"
	ValidationPhone ValidationKind = "phone"
)

// SpecialBehavior tags a question that the flow treats specially.
type SpecialBehavior string

const (
	BehaviorNone SpecialBehavior = ""

	// BehaviorBMIGate marks the height/weight question. A valid answer opens
	// the BMI interstitial instead of advancing.
	BehaviorBMIGate SpecialBehavior = "bmi_gate"

	// BehaviorDateOfBirth marks a question whose answer is a date.
	BehaviorDateOfBirth SpecialBehavior = "date_of_birth"
)

// Category scopes a question catalog and its persisted flow state,
// e.g. "weight-loss" or "longevity".
type Category string

// QuestionMetadata carries optional per-question navigation hints.
type QuestionMetadata struct {
	// PreviousPositionOverride, when > 0, is the back-navigation target.
	PreviousPositionOverride int `json:"previousPositionOverride,omitempty"`
}

// Question is an immutable, server-supplied question definition.
type Question struct {
	ID              string           `json:"id"`
	Position        int              `json:"position"`
	Text            string           `json:"text,omitempty"`
	Type            QuestionType     `json:"questionType"`
	Validation      ValidationKind   `json:"validationKind,omitempty"`
	Options         []string         `json:"options,omitempty"`
	IsRequired      bool             `json:"isRequired"`
	SpecialBehavior SpecialBehavior  `json:"specialBehavior,omitempty"`
	Metadata        QuestionMetadata `json:"metadata,omitempty"`
}

// HasOption reports whether opt is one of q's options.
func (q Question) HasOption(opt string) bool {
	for _, o := range q.Options {
		if o == opt {
			return true
		}
	}
	return false
}

// IsOtherOption reports whether an option label is an "other"-style choice
// whose free text is carried in Answer.OtherText.
func IsOtherOption(opt string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(opt)), "other")
}
