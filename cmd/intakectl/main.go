package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"

	"github.com/spf13/cobra"

	"github.com/petrijr/intakeflow"
	"github.com/petrijr/intakeflow/internal/config"
	"github.com/petrijr/intakeflow/internal/tracking"
)

var Version = "dev"

// surveyFile is the on-disk catalog format read by --survey.
type surveyFile struct {
	ID        string                `json:"id"`
	Questions []intakeflow.Question `json:"questions"`
}

type app struct {
	configPath string
	surveyPath string
	params     string

	cfg      *config.Config
	logger   *slog.Logger
	survey   surveyFile
	services *intakeflow.LocalServices
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:           "intakectl",
		Short:         "Run patient intake surveys from the terminal",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd.ErrOrStderr())
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Config file (default .env if present)")
	rootCmd.PersistentFlags().StringVarP(&a.surveyPath, "survey", "s", "survey.json", "Survey catalog JSON file")

	rootCmd.AddCommand(a.runCmd())
	rootCmd.AddCommand(a.statusCmd())
	rootCmd.AddCommand(a.resetCmd())
	return rootCmd
}

func (a *app) load(stderr io.Writer) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	level, _ := cfg.Level()
	a.cfg = cfg
	a.logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	f, err := os.Open(a.surveyPath)
	if err != nil {
		return fmt.Errorf("open survey: %w", err)
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(&a.survey); err != nil {
		return fmt.Errorf("decode survey %s: %w", a.surveyPath, err)
	}
	if a.survey.ID == "" {
		return fmt.Errorf("survey %s has no id", a.surveyPath)
	}

	a.services = intakeflow.NewLocalServices()
	return nil
}

// open builds a mounted Bundle over the configured storage. The returned
// function closes both.
func (a *app) open(ctx context.Context, sink intakeflow.EventSink) (*intakeflow.Bundle, func(), error) {
	st, closeStorage, err := openStorage(ctx, a.cfg)
	if err != nil {
		return nil, nil, err
	}

	var params url.Values
	if a.params != "" {
		if params, err = url.ParseQuery(a.params); err != nil {
			_ = closeStorage()
			return nil, nil, fmt.Errorf("parse --params: %w", err)
		}
	}

	bundle, err := intakeflow.NewBundle(intakeflow.Config{
		SurveyID:    a.survey.ID,
		PatientID:   a.cfg.PatientID,
		Category:    intakeflow.Category(a.cfg.Category),
		Catalog:     &intakeflow.StaticCatalog{Surveys: map[string][]intakeflow.Question{a.survey.ID: a.survey.Questions}},
		Submissions: a.services,
		Registry:    a.services,
		Files:       a.services,
		Checkout:    a.services,
		Storage:     st,
		KeyPrefix:   a.cfg.KeyPrefix,
		Redirect: intakeflow.RedirectConfig{
			CheckoutURL:       a.cfg.CheckoutURL,
			ProductSummaryURL: a.cfg.ProductSummaryURL,
			ProductFirst:      a.cfg.ProductFirst,
			ProductID:         a.cfg.ProductID,
			PriceID:           a.cfg.PriceID,
			Params:            params,
		},
		SkipStepAcknowledgement: a.cfg.SkipStepAcknowledgement,
	}, a.logger, sink)
	if err != nil {
		_ = closeStorage()
		return nil, nil, err
	}

	closeAll := func() {
		bundle.Close()
		if err := closeStorage(); err != nil {
			a.logger.Warn("storage_close_failed", slog.Any("error", err))
		}
	}
	if err := bundle.Start(ctx); err != nil {
		closeAll()
		return nil, nil, err
	}
	return bundle, closeAll, nil
}

func (a *app) runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Answer the survey interactively, resuming saved progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			bundle, closeAll, err := a.open(ctx, tracking.NewLogSink(a.logger))
			if err != nil {
				return err
			}
			defer closeAll()

			return newSession(bundle.Controller, cmd.InOrStdin(), cmd.OutOrStdout()).run(ctx)
		},
	}
	cmd.Flags().StringVar(&a.params, "params", "", "Query parameters the survey was opened with, e.g. \"source=ads&sale_type=promo\"")
	return cmd
}

func (a *app) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show saved progress for the configured patient and category",
		RunE: func(cmd *cobra.Command, args []string) error {
			bundle, closeAll, err := a.open(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer closeAll()

			snap := bundle.Controller.Snapshot()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "survey:    %s\n", snap.SurveyID)
			fmt.Fprintf(out, "category:  %s\n", snap.Category)
			fmt.Fprintf(out, "phase:     %s\n", snap.Phase)
			fmt.Fprintf(out, "cursor:    %d\n", snap.State.CursorPosition)
			fmt.Fprintf(out, "answered:  %d/%d\n", snap.Progress.FurthestAnsweredPosition, snap.Progress.TotalSteps)
			fmt.Fprintf(out, "completed: %t\n", snap.State.IsSurveyCompleted)
			if snap.State.SubmissionID != "" {
				fmt.Fprintf(out, "submission: %s\n", snap.State.SubmissionID)
			}
			return nil
		},
	}
}

func (a *app) resetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Discard saved progress for the configured category",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			bundle, closeAll, err := a.open(ctx, nil)
			if err != nil {
				return err
			}
			defer closeAll()

			if err := bundle.Controller.Reset(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "reset %s\n", a.cfg.Category)
			return nil
		},
	}
}
