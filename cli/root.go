// ABOUTME: Root cobra command and the state shared by every subcommand
// ABOUTME: Builds the logger, loads config, and seeds the in-memory database before each run
package cli

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/commtrack/config"
	"github.com/harperreed/commtrack/db"
	"github.com/harperreed/commtrack/seed"
	"github.com/harperreed/commtrack/status"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// app carries what PersistentPreRunE prepares for the subcommands.
type app struct {
	version string

	// Global flags
	verbose    bool
	todayFlag  string
	seedFile   string
	configPath string

	cfg    *config.Config
	logger *zap.Logger
	db     *sql.DB
	today  time.Time
}

// now is the clock every command reads. --today pins it.
func (a *app) now() time.Time {
	if !a.today.IsZero() {
		return a.today
	}
	return time.Now()
}

// NewRootCmd builds the full command tree. Each call returns independent state.
func NewRootCmd(version string) *cobra.Command {
	a := &app{version: version}

	rootCmd := &cobra.Command{
		Use:   "commtrack",
		Short: "Track outreach to companies and what is overdue",
		Long: `commtrack keeps a log of communications with target companies and tells you,
for each company, whether the next communication is overdue, due today, or upcoming.

Data lives in memory and is seeded from the built-in demo data (or --seed FILE)
every run. Only the logged-in user is remembered between runs.`,
		SilenceUsage:  true,
		Version:       version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.teardown()
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&a.todayFlag, "today", "", "Pretend today is this date (YYYY-MM-DD)")
	rootCmd.PersistentFlags().StringVar(&a.seedFile, "seed", "", "Load this YAML seed file instead of the demo data")
	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file (default: "+config.Path()+")")

	rootCmd.AddCommand(
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newTokenCmd(a),
		newConfigCmd(a),
		newStatusCmd(a),
		newNotificationsCmd(a),
		newCompaniesCmd(a),
		newLogCmd(a),
		newMethodsCmd(a),
		newReportCmd(a),
		newCalendarCmd(a),
		newDashboardCmd(a),
		newGraphCmd(a),
		newServeCmd(a),
		newTUICmd(a),
		newMCPCmd(a),
	)

	return rootCmd
}

// Execute runs the CLI with os.Args.
func Execute(version string) error {
	return NewRootCmd(version).Execute()
}

// ephemeralNote ends the help of commands whose changes die with the process.
const ephemeralNote = `

The database is re-seeded on every run, so this change lasts only for this
invocation. Use "commtrack serve", "commtrack tui", or "commtrack mcp" to keep
working with changed data.`

func printEphemeralHint(cmd *cobra.Command) {
	fmt.Fprintln(cmd.ErrOrStderr(), "Note: changes are not kept between runs; use serve, tui, or mcp for lasting changes.")
}

func (a *app) setup() error {
	var err error
	if a.configPath != "" {
		a.cfg, err = config.LoadConfigFrom(a.configPath)
	} else {
		a.cfg, err = config.LoadConfig()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	zcfg := zap.NewProductionConfig()
	level, err := zapcore.ParseLevel(strings.ToLower(a.cfg.LogLevel))
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	if a.verbose {
		level = zapcore.DebugLevel
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	a.logger, err = zcfg.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if a.todayFlag != "" {
		a.today, err = time.Parse(status.DayLayout, a.todayFlag)
		if err != nil {
			return fmt.Errorf("--today must look like 2026-10-18: %w", err)
		}
	}

	a.db, err = db.OpenDatabase()
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	seedFile := a.seedFile
	if seedFile == "" {
		seedFile = a.cfg.SeedFile
	}
	if seedFile != "" {
		a.logger.Debug("loading seed file", zap.String("path", seedFile))
		err = seed.LoadFile(a.db, seedFile, a.now())
	} else {
		err = seed.Load(a.db, a.now())
	}
	if err != nil {
		return fmt.Errorf("failed to load seed data: %w", err)
	}

	return nil
}

func (a *app) teardown() {
	if a.db != nil {
		_ = a.db.Close()
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}
