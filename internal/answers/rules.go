package answers

import (
	"math"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/petrijr/intakeflow/pkg/api"
)

// MinBMI is the safety threshold below which the interstitial refuses to
// let the patient continue.
const MinBMI = 18.0

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks in against q's structural contract. It never calls out
// of process. now is used for date-of-birth checks.
//
// For FILE questions the raw Upload is accepted in place of a file
// reference; the caller uploads it before building the answer.
func Validate(q api.Question, in api.AnswerInput, now time.Time) error {
	fail := func(reason string) error {
		return &api.ValidationError{QuestionID: q.ID, Reason: reason}
	}

	v := in.Value
	if q.Type == api.QuestionFile && in.Upload != nil {
		if in.Upload.Name == "" || in.Upload.Body == nil {
			return fail("upload is missing a file")
		}
		return nil
	}
	if q.SpecialBehavior == api.BehaviorDateOfBirth {
		v = coerceDate(v)
	}

	if v.IsEmpty() {
		if q.IsRequired {
			return fail("an answer is required")
		}
		return nil
	}

	switch q.Type {
	case api.QuestionSingleSelect:
		sel := v.Selected()
		if len(sel) != 1 {
			return fail("exactly one option must be selected")
		}
		if !q.HasOption(sel[0]) {
			return fail("unknown option " + sel[0])
		}
	case api.QuestionMultiSelect:
		if v.Kind != api.ValueChoices {
			return fail("expected a list of options")
		}
		seen := make(map[string]struct{}, len(v.Choices))
		for _, c := range v.Choices {
			if !q.HasOption(c) {
				return fail("unknown option " + c)
			}
			if _, dup := seen[c]; dup {
				return fail("option selected twice: " + c)
			}
			seen[c] = struct{}{}
		}
	case api.QuestionFile:
		if v.Kind != api.ValueFile {
			return fail("expected an uploaded file")
		}
	case api.QuestionFreeText, api.QuestionTextInput:
		if r := checkInput(q, v, now); r != "" {
			return fail(r)
		}
	}

	if q.Type.IsSelect() && hasOther(v) && strings.TrimSpace(in.OtherText) == "" {
		return fail("please describe your other answer")
	}
	return nil
}

// checkInput returns the reason a text-style answer is rejected, or "".
func checkInput(q api.Question, v api.Value, now time.Time) string {
	switch q.SpecialBehavior {
	case api.BehaviorBMIGate:
		if v.Kind != api.ValueBody {
			return "expected height and weight"
		}
		b := v.Body
		if b.HeightFeet < 0 || b.HeightInches < 0 || b.HeightInches >= 12 {
			return "height is out of range"
		}
		if b.TotalInches() <= 0 || b.WeightPounds <= 0 {
			return "height and weight must be positive"
		}
		return ""
	case api.BehaviorDateOfBirth:
		if v.Kind != api.ValueDate {
			return "expected a date"
		}
		if v.Date.After(now) {
			return "date of birth is in the future"
		}
		return ""
	}

	if v.Kind != api.ValueText {
		return "expected text"
	}
	switch q.Validation {
	case api.ValidationEmail:
		if err := validate.Var(strings.TrimSpace(v.Text), "required,email"); err != nil {
			return "invalid email address"
		}
	case api.ValidationPhone:
		if err := validate.Var(NormalizePhone(v.Text), "required,e164"); err != nil {
			return "invalid phone number"
		}
	}
	return ""
}

// Build turns a validated input into the answer to store. The other-text
// is dropped whenever the selection no longer contains an "other" option,
// and date-of-birth text is coerced to a date.
func Build(q api.Question, in api.AnswerInput) api.Answer {
	a := api.Answer{QuestionID: q.ID, Value: in.Value.Clone()}

	switch {
	case q.SpecialBehavior == api.BehaviorDateOfBirth:
		a.Value = coerceDate(a.Value)
	case q.Validation == api.ValidationEmail && a.Value.Kind == api.ValueText:
		a.Value.Text = strings.TrimSpace(a.Value.Text)
	case q.Validation == api.ValidationPhone && a.Value.Kind == api.ValueText:
		a.Value.Text = NormalizePhone(a.Value.Text)
	case q.Type == api.QuestionSingleSelect && a.Value.Kind == api.ValueText:
		a.Value = api.ChoicesValue(a.Value.Text)
	}

	if q.Type.IsSelect() && hasOther(a.Value) {
		a.OtherText = strings.TrimSpace(in.OtherText)
	}
	return a
}

// Prefill returns the stored answer coerced into the shape the widget for
// q expects, e.g. an ISO date string becomes a date value.
func Prefill(q api.Question, a api.Answer) api.Answer {
	out := a.Clone()
	switch {
	case q.SpecialBehavior == api.BehaviorDateOfBirth:
		out.Value = coerceDate(out.Value)
	case q.Type.IsSelect() && out.Value.Kind == api.ValueText:
		out.Value = api.ChoicesValue(out.Value.Text)
	}
	if q.Type.IsSelect() && !hasOther(out.Value) {
		out.OtherText = ""
	}
	return out
}

// BMI computes the body mass index from imperial measurements, rounded to
// one decimal as displayed to the patient.
func BMI(b api.BodyMetrics) float64 {
	h := b.TotalInches()
	if h <= 0 {
		return 0
	}
	return math.Round(703*b.WeightPounds/(h*h)*10) / 10
}

// NormalizePhone strips formatting and returns an E.164 candidate. Ten
// digit numbers are assumed to be North American.
func NormalizePhone(s string) string {
	s = strings.TrimSpace(s)
	plus := strings.HasPrefix(s, "+")
	var digits strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	switch {
	case d == "":
		return ""
	case plus:
		return "+" + d
	case len(d) == 10:
		return "+1" + d
	default:
		return "+" + d
	}
}

var dateLayouts = []string{"2006-01-02", time.RFC3339, "01/02/2006"}

func coerceDate(v api.Value) api.Value {
	if v.Kind != api.ValueText {
		return v
	}
	s := strings.TrimSpace(v.Text)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return api.DateValue(t)
		}
	}
	return v
}

func hasOther(v api.Value) bool {
	for _, s := range v.Selected() {
		if api.IsOtherOption(s) {
			return true
		}
	}
	return false
}
