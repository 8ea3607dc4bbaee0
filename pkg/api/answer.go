package api

import (
	"slices"
	"strings"
	"time"
)

// ValueKind discriminates the payload held by a Value.
type ValueKind string

const (
	ValueEmpty   ValueKind = ""
	ValueText    ValueKind = "text"
	ValueChoices ValueKind = "choices"
	ValueFile    ValueKind = "file"
	ValueDate    ValueKind = "date"
	ValueBody    ValueKind = "body"
)

// FileRef points at an uploaded artifact. The raw file never enters the
// answer store.
type FileRef struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// BodyMetrics is the height/weight answer of the BMI-gated question.
type BodyMetrics struct {
	HeightFeet   int     `json:"heightFeet"`
	HeightInches float64 `json:"heightInches"`
	WeightPounds float64 `json:"weightPounds"`
}

// TotalInches returns the height in inches.
func (b BodyMetrics) TotalInches() float64 {
	return float64(b.HeightFeet)*12 + b.HeightInches
}

// Value is the tagged union of answer payloads: a string, an ordered list
// of selected options, an uploaded file reference, a date, or body metrics.
type Value struct {
	Kind    ValueKind    `json:"kind"`
	Text    string       `json:"text,omitempty"`
	Choices []string     `json:"choices,omitempty"`
	File    *FileRef     `json:"file,omitempty"`
	Date    time.Time    `json:"date,omitempty"`
	Body    *BodyMetrics `json:"body,omitempty"`
}

func TextValue(s string) Value { return Value{Kind: ValueText, Text: s} }

func ChoicesValue(choices ...string) Value {
	return Value{Kind: ValueChoices, Choices: slices.Clone(choices)}
}

func FileValue(ref FileRef) Value { return Value{Kind: ValueFile, File: &ref} }

func DateValue(t time.Time) Value { return Value{Kind: ValueDate, Date: t} }

func BodyValue(b BodyMetrics) Value { return Value{Kind: ValueBody, Body: &b} }

// IsEmpty reports whether v carries no usable answer.
func (v Value) IsEmpty() bool {
	switch v.Kind {
	case ValueText:
		return strings.TrimSpace(v.Text) == ""
	case ValueChoices:
		return len(v.Choices) == 0
	case ValueFile:
		return v.File == nil || v.File.URL == ""
	case ValueDate:
		return v.Date.IsZero()
	case ValueBody:
		return v.Body == nil
	}
	return true
}

// Selected returns the selected options of a choice value. A text value is
// treated as a single selection.
func (v Value) Selected() []string {
	switch v.Kind {
	case ValueChoices:
		return v.Choices
	case ValueText:
		if v.Text != "" {
			return []string{v.Text}
		}
	}
	return nil
}

// Clone returns a deep copy of v.
func (v Value) Clone() Value {
	out := v
	out.Choices = slices.Clone(v.Choices)
	if v.File != nil {
		f := *v.File
		out.File = &f
	}
	if v.Body != nil {
		b := *v.Body
		out.Body = &b
	}
	return out
}

// Answer is the stored response to one question.
type Answer struct {
	QuestionID string `json:"questionId"`
	Value      Value  `json:"value"`
	OtherText  string `json:"otherText,omitempty"`
}

// Clone returns a deep copy of a.
func (a Answer) Clone() Answer {
	a.Value = a.Value.Clone()
	return a
}
