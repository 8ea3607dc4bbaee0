package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/petrijr/intakeflow"
	"github.com/petrijr/intakeflow/pkg/api"
)

// session renders the controller as a line-oriented prompt.
//
// Typing ":back" goes to the previous question and ":quit" stops; progress
// is saved after every answer, so the next run resumes.
type session struct {
	c   *intakeflow.Controller
	in  *bufio.Scanner
	out io.Writer
}

func newSession(c *intakeflow.Controller, in io.Reader, out io.Writer) *session {
	return &session{c: c, in: bufio.NewScanner(in), out: out}
}

var errQuit = errors.New("quit")

func (s *session) run(ctx context.Context) error {
	for {
		snap := s.c.Snapshot()

		var err error
		switch snap.Phase {
		case intakeflow.PhaseInitial:
			s.printf("%d questions. Press enter to start.\n", snap.Progress.TotalSteps)
			if _, err = s.read(); err == nil {
				_, err = s.c.Start(ctx)
			}
		case intakeflow.PhaseQuestion:
			err = s.question(ctx, snap)
		case intakeflow.PhaseInterstitial:
			err = s.interstitial(ctx, snap)
		case intakeflow.PhaseLoginRedirect:
			s.printf("That email belongs to an existing account. Log in to continue, or press enter to use another address.\n")
			if _, err = s.read(); err == nil {
				_, err = s.c.DismissLoginRedirect(ctx)
			}
		case intakeflow.PhaseCompleted:
			var r intakeflow.Redirect
			if r, err = s.c.Redirect(ctx); err == nil {
				s.printf("All done. Continue at %s\n", r.URL)
				return nil
			}
			s.printf("error: %v\n", err)
			s.printf("Press enter to retry.\n")
			_, err = s.read()
		case intakeflow.PhaseRedirecting:
			if snap.Redirect != nil {
				s.printf("All done. Continue at %s\n", snap.Redirect.URL)
			}
			return nil
		case intakeflow.PhaseFailed:
			s.printf("error: %s\nPress enter to retry.\n", snap.LastError)
			if _, err = s.read(); err == nil {
				err = s.c.Mount(ctx)
			}
		default:
			return fmt.Errorf("unexpected phase %q", snap.Phase)
		}

		switch {
		case errors.Is(err, errQuit):
			s.printf("Progress saved.\n")
			return nil
		case errors.Is(err, io.EOF):
			return nil
		case err != nil:
			s.printf("error: %v\n", err)
		}
	}
}

func (s *session) question(ctx context.Context, snap intakeflow.Snapshot) error {
	q := snap.Question
	s.printf("\n[%d/%d] %s\n", q.Position, snap.Progress.TotalSteps, questionText(*q))
	for i, opt := range q.Options {
		s.printf("  %d) %s\n", i+1, opt)
	}
	if snap.Prefill != nil {
		s.printf("  (enter keeps: %s)\n", formatValue(snap.Prefill.Value))
	}

	line, err := s.read()
	if err != nil {
		return err
	}
	if line == ":back" {
		_, err := s.c.Back(ctx)
		return err
	}

	var in intakeflow.AnswerInput
	switch {
	case line == "" && snap.Prefill != nil:
		in = intakeflow.AnswerInput{Value: snap.Prefill.Value, OtherText: snap.Prefill.OtherText}
	case q.Type == api.QuestionFile && line != "":
		f, err := os.Open(line)
		if err != nil {
			return err
		}
		defer f.Close()
		in = intakeflow.AnswerInput{Upload: &intakeflow.Upload{Name: filepath.Base(line), Body: f}}
	default:
		if in, err = parseInput(*q, line); err != nil {
			return err
		}
	}

	if q.Type.IsSelect() && hasOther(in.Value.Choices) && in.OtherText == "" {
		s.printf("Please describe:\n")
		if in.OtherText, err = s.read(); err != nil {
			return err
		}
	}

	tr, err := s.c.Submit(ctx, in)
	if err != nil {
		return err
	}
	if tr.Kind == api.TransitionCompleted {
		s.printf("Survey submitted.\n")
	}
	return nil
}

func (s *session) interstitial(ctx context.Context, snap intakeflow.Snapshot) error {
	s.printf("\nYour BMI is %.1f.\n", snap.BMI)
	if snap.ProceedEnabled {
		s.printf("p) proceed  s) skip  b) back\n")
	} else {
		s.printf("A BMI under 18 is outside what we can treat. b) back to correct your answer\n")
	}

	line, err := s.read()
	if err != nil {
		return err
	}
	switch line {
	case "p":
		_, err = s.c.Proceed(ctx)
	case "s":
		_, err = s.c.Skip(ctx)
	case "b", ":back":
		_, err = s.c.Back(ctx)
	default:
		err = fmt.Errorf("unknown choice %q", line)
	}
	return err
}

func (s *session) read() (string, error) {
	if !s.in.Scan() {
		if err := s.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	line := strings.TrimSpace(s.in.Text())
	if line == ":quit" {
		return "", errQuit
	}
	return line, nil
}

func (s *session) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

func questionText(q intakeflow.Question) string {
	text := q.Text
	if text == "" {
		text = q.ID
	}
	switch {
	case q.SpecialBehavior == api.BehaviorBMIGate:
		text += " (feet inches pounds)"
	case q.SpecialBehavior == api.BehaviorDateOfBirth:
		text += " (YYYY-MM-DD)"
	case q.Type == api.QuestionFile:
		text += " (path to file)"
	case q.Type == api.QuestionMultiSelect:
		text += " (numbers, comma separated)"
	}
	if !q.IsRequired {
		text += " [optional]"
	}
	return text
}

// parseInput turns a typed line into an answer for q. Options may be given
// by number or by label.
func parseInput(q intakeflow.Question, line string) (intakeflow.AnswerInput, error) {
	if line == "" {
		return intakeflow.AnswerInput{}, nil
	}

	if q.SpecialBehavior == api.BehaviorBMIGate {
		f := strings.Fields(line)
		if len(f) != 3 {
			return intakeflow.AnswerInput{}, fmt.Errorf("expected feet, inches and pounds, e.g. \"5 10 180\"")
		}
		feet, err1 := strconv.Atoi(f[0])
		inches, err2 := strconv.ParseFloat(f[1], 64)
		pounds, err3 := strconv.ParseFloat(f[2], 64)
		if err := errors.Join(err1, err2, err3); err != nil {
			return intakeflow.AnswerInput{}, fmt.Errorf("parse height and weight: %w", err)
		}
		return intakeflow.AnswerInput{Value: intakeflow.BodyValue(intakeflow.BodyMetrics{
			HeightFeet: feet, HeightInches: inches, WeightPounds: pounds,
		})}, nil
	}

	if !q.Type.IsSelect() {
		return intakeflow.AnswerInput{Value: intakeflow.TextValue(line)}, nil
	}

	var picked []string
	for _, tok := range strings.Split(line, ",") {
		tok = strings.TrimSpace(tok)
		if n, err := strconv.Atoi(tok); err == nil {
			if n < 1 || n > len(q.Options) {
				return intakeflow.AnswerInput{}, fmt.Errorf("no option %d", n)
			}
			tok = q.Options[n-1]
		}
		picked = append(picked, tok)
	}
	return intakeflow.AnswerInput{Value: intakeflow.ChoicesValue(picked...)}, nil
}

func hasOther(choices []string) bool {
	for _, c := range choices {
		if api.IsOtherOption(c) {
			return true
		}
	}
	return false
}

func formatValue(v intakeflow.Value) string {
	switch v.Kind {
	case api.ValueText:
		return v.Text
	case api.ValueChoices:
		return strings.Join(v.Choices, ", ")
	case api.ValueFile:
		return v.File.Name
	case api.ValueDate:
		return v.Date.Format("2006-01-02")
	case api.ValueBody:
		return fmt.Sprintf("%d ft %g in, %g lb", v.Body.HeightFeet, v.Body.HeightInches, v.Body.WeightPounds)
	}
	return ""
}
