package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arnavshah/ttr-scheduler/internal/config"
	"github.com/arnavshah/ttr-scheduler/internal/logging"
	"github.com/arnavshah/ttr-scheduler/pkg/models"
	"github.com/arnavshah/ttr-scheduler/pkg/report"
	"github.com/arnavshah/ttr-scheduler/pkg/scheduler"
	"github.com/arnavshah/ttr-scheduler/pkg/workbook"
)

type options struct {
	prev       string
	next       string
	seed       int64
	days       int
	ttrNight   int
	ttrDay     int
	shuffle    int
	write      bool
	personal   bool
	statistics bool
	graph      bool
	teams      bool
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "rota FILE",
		Short: "Plan the next days of an hourly rota",
		Long: `rota reads people, positions and the last committed day from an xlsx
workbook (or a YAML/JSON plan file) and plans the following days so that
everyone gets their minimum rest between shifts.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0], opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.prev, "prev", "", "sheet holding the last committed day (required for workbooks)")
	f.StringVar(&opts.next, "next", "", "name of the first planned day (default: day after --prev)")
	f.Int64Var(&opts.seed, "seed", scheduler.DefaultSeed, "random seed")
	f.IntVar(&opts.days, "days", scheduler.DefaultDays, "number of days to plan")
	f.IntVar(&opts.ttrNight, "ttrn", scheduler.DefaultTTRNight, "hours of rest after a night shift")
	f.IntVar(&opts.ttrDay, "ttrd", scheduler.DefaultTTRDay, "hours of rest after a day shift")
	f.IntVar(&opts.shuffle, "shuffle", scheduler.DefaultShuffle, "number of lowest rest tiers to draw from")
	f.BoolVar(&opts.write, "write", false, "write the planned days back to the workbook")
	f.BoolVar(&opts.personal, "personal", false, "print each person's shifts per day")
	f.BoolVar(&opts.statistics, "statistics", false, "print hours served per person")
	f.BoolVar(&opts.graph, "graph", false, "add a bar per person to the statistics")
	f.BoolVar(&opts.teams, "teams", false, "print teams that worked together more than once")
	f.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	return cmd
}

// engineConfig starts from the environment defaults and applies only the
// flags given on the command line
func engineConfig(cmd *cobra.Command, base scheduler.Config, opts *options) scheduler.Config {
	cfg := base
	f := cmd.Flags()
	if f.Changed("seed") {
		cfg.Seed = opts.seed
	}
	if f.Changed("days") {
		cfg.DaysToPlan = opts.days
	}
	if f.Changed("ttrn") {
		cfg.TTRNight = opts.ttrNight
	}
	if f.Changed("ttrd") {
		cfg.TTRDay = opts.ttrDay
	}
	if f.Changed("shuffle") {
		cfg.ShuffleCoefficient = opts.shuffle
	}
	return cfg
}

func run(cmd *cobra.Command, path string, opts *options) error {
	settings, cfgErr := config.Load()
	level := settings.LogLevel
	if opts.logLevel != "" {
		level = opts.logLevel
	}
	logger, err := logging.New(cmd.ErrOrStderr(), level, settings.LogFormat)
	if err != nil {
		logger.Warn("logging settings ignored", slog.Any("error", err))
	}
	if cfgErr != nil {
		logger.Error("invalid configuration", slog.Any("error", cfgErr))
		return &loggedError{cfgErr}
	}

	err = plan(cmd, path, opts, settings, logger)
	if err != nil {
		logger.Error("rota failed", slog.String("kind", scheduler.Kind(err)), slog.Any("error", err))
		return &loggedError{err}
	}
	return nil
}

// loggedError marks an error that run has already reported
type loggedError struct{ err error }

func (e *loggedError) Error() string { return e.err.Error() }
func (e *loggedError) Unwrap() error { return e.err }

// runCommand executes cmd and prints the errors cobra raises itself, such as
// a missing FILE argument or an unknown flag
func runCommand(ctx context.Context, cmd *cobra.Command) error {
	err := cmd.ExecuteContext(ctx)
	var logged *loggedError
	if err != nil && !errors.As(err, &logged) {
		cmd.PrintErrln("Error:", err)
	}
	return err
}

func plan(cmd *cobra.Command, path string, opts *options, settings config.Settings, logger *slog.Logger) error {
	cfg := engineConfig(cmd, settings.Engine, opts)
	out := cmd.OutOrStdout()

	src, wb, err := load(path, opts)
	if err != nil {
		return err
	}
	if wb != nil {
		defer wb.Close()
	}
	if opts.write && wb == nil {
		return scheduler.NewConfigError("--write", "only workbooks can be written back")
	}

	s, err := scheduler.New(cfg, src.Plan, scheduler.WithLogger(logger))
	if err != nil {
		return err
	}
	res, err := s.Run(cmd.Context())

	positions := src.Plan.PositionNames()
	priorName := opts.prev
	if priorName == "" {
		priorName = src.Plan.PriorDate
	}
	if priorName == "" {
		priorName = "prior"
	}
	names := models.DayNames(src.Plan.PriorDate, src.FirstDay, len(res.Days))

	fmt.Fprintln(out, report.Schedule(priorName+" (committed)", positions, res.Prior))
	for i, day := range res.Days {
		fmt.Fprintln(out, report.Schedule(names[i], positions, day))
	}
	if err != nil {
		return err
	}

	summary := report.FromRoster(res.Roster)
	printReports(out, opts, res, names, summary)

	if len(summary.Idle) > 0 {
		logger.Warn("people never assigned", slog.String("names", strings.Join(summary.Idle, ", ")))
	}
	for i := range res.Roster {
		p := &res.Roster[i]
		logger.Debug("roster", slog.String("name", p.Name), slog.Int("rest", p.Rest()), slog.Int("hours", p.TotalHours))
	}

	if opts.write {
		for i, day := range res.Days {
			if err := wb.WriteDay(names[i], positions, day); err != nil {
				return err
			}
		}
		if err := wb.Save(); err != nil {
			return err
		}
		logger.Info("workbook updated", slog.String("path", path), slog.Int("sheets", len(res.Days)))
	}
	return nil
}

func printReports(out io.Writer, opts *options, res *scheduler.Result, dayNames []string, summary models.FairnessSummary) {
	if opts.personal {
		for i, day := range res.Days {
			fmt.Fprintln(out, report.Personal(dayNames[i]+" personal", day))
		}
	}
	if opts.teams {
		fmt.Fprintln(out, report.Teams(report.TeamRecurrence(res.Generated())))
	}
	if opts.statistics || opts.graph {
		fmt.Fprintln(out, report.FairnessTable(summary, opts.graph))
	}
}

// load reads the input by extension. Workbooks stay open so the planned days
// can be written back.
func load(path string, opts *options) (*workbook.Source, *workbook.Workbook, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		src, err := workbook.LoadPlanFile(path)
		if err != nil {
			return nil, nil, err
		}
		if opts.next != "" {
			src.FirstDay = opts.next
		}
		return src, nil, nil
	case ".xlsx", ".xlsm":
		if opts.prev == "" {
			return nil, nil, scheduler.NewConfigError("--prev", "name the sheet holding the last committed day")
		}
		if _, err := os.Stat(path); err != nil {
			return nil, nil, err
		}
		wb, err := workbook.Open(path)
		if err != nil {
			return nil, nil, err
		}
		src, err := wb.Load(opts.prev, opts.next)
		if err != nil {
			wb.Close()
			return nil, nil, err
		}
		return src, wb, nil
	}
	return nil, nil, scheduler.NewConfigError("input", "unsupported file type %q", filepath.Ext(path))
}
