package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"leadtime/adapters/excel"
	"leadtime/adapters/jira"
	"leadtime/adapters/postgres"
	"leadtime/app"
	"leadtime/domain/core"
	"leadtime/internal/analysis"
	"leadtime/internal/config"
	apperrors "leadtime/internal/errors"
	"leadtime/internal/workdays"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "leadtime",
		Short:         "Per-engineer lead-time statistics from issue-tracker feeds",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newStatsCmd(),
		newForecastCmd(),
		newSyncCmd(),
		newExportCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats [feed] [holiday-calendar] [vacation-calendar]",
		Short: "Aggregate a feed into the lead-time evidence document",
		Long: `Ingest an issue-tracker feed (file path or URL), derive working-day
lead times per item, group the evidence by (assignee, estimate) and
write the aggregated document as JSON to stdout.

The holiday and vacation calendar arguments are accepted and recorded
for future day-counting policy; the current counter excludes only
non-working weekdays.`,
		Args: cobra.RangeArgs(1, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfigWithCalendars(args)
			if err != nil {
				return err
			}

			pipeline := newPipeline(cfg)
			res, err := pipeline.Run(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeJSON(res.Document)
		},
	}
}

func newForecastCmd() *cobra.Command {
	var halflife float64
	var until string

	cmd := &cobra.Command{
		Use:   "forecast [feed]",
		Short: "Daily decay-weighted lead-time series per group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if halflife > 0 {
				cfg.Forecast.HalflifeDays = halflife
			}

			end := time.Now()
			if until != "" {
				end, err = time.Parse("2006-01-02", until)
				if err != nil {
					return apperrors.Wrapf(err, "invalid --until date %q (use YYYY-MM-DD)", until)
				}
			}

			forecaster := analysis.NewForecaster(core.NewHalflife(cfg.Forecast.HalflifeDays))
			svc := app.NewForecastService(newPipeline(cfg), forecaster)
			doc, err := svc.Run(cmd.Context(), args[0], end)
			if err != nil {
				return err
			}
			return writeJSON(doc)
		},
	}

	cmd.Flags().Float64Var(&halflife, "halflife", 0, "Evidence decay halflife in days (default from config)")
	cmd.Flags().StringVar(&until, "until", "", "Last day of the series, YYYY-MM-DD (default today)")
	return cmd
}

func newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync [feed]...",
		Short: "Ingest feeds into the evidence store",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.Database.URL == "" {
				return apperrors.DatabaseError("sync requires DATABASE_URL")
			}

			store, err := postgres.Open(cfg.Database.URL)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Migrate(cmd.Context()); err != nil {
				return err
			}

			svc := app.NewSyncService(newPipeline(cfg), store)
			res, err := svc.SyncFeeds(cmd.Context(), args)
			if err != nil {
				return err
			}
			return writeJSON(res)
		},
	}
}

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [feed] [workbook.xlsx]",
		Short: "Export the evidence document to an Excel workbook",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			res, err := newPipeline(cfg).Run(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return excel.NewExporter().Export(res.Document, args[1])
		},
	}
}

// newPipeline wires the pipeline from configuration
func newPipeline(cfg *config.Config) *app.PipelineService {
	counter := workdays.NewCounterForWeek(cfg.Work.Week, nil)
	return app.NewPipelineService(jira.NewParser(), counter)
}

// loadConfigWithCalendars records the optional holiday and vacation
// calendar arguments in the configuration. They are validated but not
// applied to the day counter yet.
func loadConfigWithCalendars(args []string) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if len(args) > 1 {
		cfg.Calendars.HolidayFile = args[1]
	}
	if len(args) > 2 {
		cfg.Calendars.VacationFile = args[2]
	}
	for _, path := range []string{cfg.Calendars.HolidayFile, cfg.Calendars.VacationFile} {
		if path == "" {
			continue
		}
		if _, err := workdays.LoadCalendar(path); err != nil {
			return nil, err
		}
		log.Printf("[CLI] calendar %s recorded; day counting does not apply it yet", path)
	}
	return cfg, nil
}

// writeJSON writes the document to stdout with nothing after it
func writeJSON(v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(os.Stdout, string(out))
	return err
}
