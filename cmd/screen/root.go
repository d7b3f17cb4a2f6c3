package main

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"screening-backend/internal/bootstrap"
	"screening-backend/internal/calendar"
	"screening-backend/internal/embedding"
	"screening-backend/internal/extract"
	"screening-backend/internal/ranking"
	"screening-backend/internal/screenings"
	"screening-backend/internal/shared/config"
	"screening-backend/internal/shared/telemetry"
)

const app = "screen"

var rootCmd = &cobra.Command{
	Use:           app,
	Short:         "screen ranks candidate documents against a job description and schedules interviews",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger, err := telemetry.New(logFormat(), viper.GetBool("debug"), "stderr")
		if err != nil {
			return fmt.Errorf("creating a logger: %w", err)
		}
		telemetry.SetLogger(logger)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, _ []string) {
		telemetry.Sync()
	},
}

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	viper.SetEnvPrefix("SCREEN")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	flags := rootCmd.PersistentFlags()
	flags.String("state-dir", ".screening", "directory holding session state between rank and confirm")
	flags.String("session", "default", "session name; each session keeps only its latest ranking")
	flags.String("embedding-provider", "", "embedding provider: hashing, gemini, openai or ollama (default from EMBEDDING_PROVIDER)")
	flags.String("calendar-credentials", "", "OAuth client secrets file (default from CALENDAR_CREDENTIALS_FILE)")
	flags.String("calendar-token", "", "cached OAuth token file (default from CALENDAR_TOKEN_FILE)")
	flags.String("timezone", "", "IANA time zone for interviews (default from INTERVIEW_TIMEZONE)")
	flags.BoolP("debug", "d", false, "verbose/debug output")
	flags.BoolP("json", "j", false, "json format for logging")

	for _, name := range []string{
		"state-dir", "session", "embedding-provider", "calendar-credentials", "calendar-token", "timezone", "debug", "json",
	} {
		if err := viper.BindPFlag(name, flags.Lookup(name)); err != nil {
			log.Fatalf("binding flag %s: %v", name, err)
		}
	}
}

func logFormat() string {
	if viper.GetBool("json") {
		return "json"
	}
	return "console"
}

// cliConfig layers flags and SCREEN_* variables over the service configuration.
func cliConfig() config.Config {
	cfg := config.Load()
	if v := viper.GetString("embedding-provider"); v != "" {
		cfg.EmbeddingProvider = v
	}
	if v := viper.GetString("calendar-credentials"); v != "" {
		cfg.CalendarCredentialsFile = v
	}
	if v := viper.GetString("calendar-token"); v != "" {
		cfg.CalendarTokenFile = v
	}
	if v := viper.GetString("timezone"); v != "" {
		cfg.InterviewTimezone = v
	}
	return cfg
}

func sessionID() string {
	return viper.GetString("session")
}

// buildService assembles the screening service over a file-backed session store.
func buildService(ctx context.Context, cfg config.Config, withCalendar bool) (*screenings.Service, error) {
	provider, err := embedding.New(ctx, bootstrap.EmbeddingConfig(cfg))
	if err != nil {
		return nil, err
	}
	svc := &screenings.Service{
		Repo:   screenings.NewFileRepo(filepath.Clean(viper.GetString("state-dir"))),
		Parser: extract.Parser{},
		Ranker: ranking.NewRanker(provider, ranking.Limits{
			ScoringChars: cfg.ScoringCharLimit,
			SummaryChars: cfg.SummaryCharLimit,
		}),
	}
	if !withCalendar {
		return svc, nil
	}

	loc, err := bootstrap.LoadLocation(cfg.InterviewTimezone)
	if err != nil {
		return nil, err
	}
	cal, err := calendar.NewFromFiles(ctx, cfg.CalendarCredentialsFile, cfg.CalendarTokenFile, calendar.Options{
		CalendarID: cfg.CalendarID,
		Location:   loc,
	})
	if err != nil {
		return nil, err
	}
	svc.Scheduler = bootstrap.NewScheduler(cal, loc)
	return svc, nil
}
