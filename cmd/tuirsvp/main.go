// Package main provides the CLI entrypoint for tuirsvp.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/tuirsvp/internal/config"
	"github.com/verte-zerg/tuirsvp/internal/engine"
	"github.com/verte-zerg/tuirsvp/internal/ingest"
	"github.com/verte-zerg/tuirsvp/internal/logging"
	"github.com/verte-zerg/tuirsvp/internal/model"
	"github.com/verte-zerg/tuirsvp/internal/plain"
	"github.com/verte-zerg/tuirsvp/internal/stats"
	"github.com/verte-zerg/tuirsvp/internal/statsui"
	"github.com/verte-zerg/tuirsvp/internal/store"
	"github.com/verte-zerg/tuirsvp/internal/tui"
)

const (
	defaultWPM         = 300
	defaultCountdownMs = 1000
	defaultLogLevel    = "info"
	defaultCurveWindow = 5
)

var defaultRates = []int{200, 250, 300, 350, 400, 450, 500}

var (
	readWPM         int
	readRates       []int
	readCountdownMs int
	readImmersive   bool
	readFile        string
	readPlain       bool
	logLevel        string
	logFile         string

	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsPrint       bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tuirsvp",
		Short:         "TUI speed reader showing one word at a time",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE:          runReadCmd,
	}

	addReaderFlags(rootCmd)
	rootCmd.Flags().BoolVar(&readImmersive, "immersive", false, "start in immersive mode")
	rootCmd.Flags().BoolVar(&readPlain, "plain", false, "print words to stdout instead of starting the TUI")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", defaultLogLevel, "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "log file (default: XDG state dir)")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newRatesCmd())
	rootCmd.AddCommand(newServeCmd())

	return rootCmd
}

// addReaderFlags registers the flags shared by commands that present text.
func addReaderFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&readWPM, "wpm", defaultWPM, "reading rate in words per minute")
	cmd.Flags().IntSliceVar(&readRates, "rates", defaultRates, "rates offered by +/-")
	cmd.Flags().IntVar(&readCountdownMs, "countdown-ms", defaultCountdownMs, "time between countdown values in milliseconds")
	cmd.Flags().StringVarP(&readFile, "file", "f", "", "text file to read (.txt, .md, .html, .docx, - for stdin)")
}

// loadFileConfig reads the config file and applies environment overrides.
func loadFileConfig() (config.FileConfig, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return config.FileConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	return config.ApplyEnv(fileCfg)
}

// loadReaderConfig merges the config file under the flags of cmd.
func loadReaderConfig(cmd *cobra.Command) (model.Config, error) {
	fileCfg, err := loadFileConfig()
	if err != nil {
		return model.Config{}, err
	}
	applyIntConfig(cmd, "wpm", &readWPM, fileCfg.Reader.WPM)
	applyIntSliceConfig(cmd, "rates", &readRates, fileCfg.Reader.Rates)
	applyIntConfig(cmd, "countdown-ms", &readCountdownMs, fileCfg.Reader.CountdownMs)
	applyBoolConfig(cmd, "immersive", &readImmersive, fileCfg.Reader.Immersive)
	applyStringConfig(cmd, "file", &readFile, fileCfg.Reader.File)
	applyStringConfig(cmd, "log-level", &logLevel, fileCfg.Log.Level)
	applyStringConfig(cmd, "log-file", &logFile, fileCfg.Log.File)

	cfg := model.Config{
		WPM:           readWPM,
		Rates:         readRates,
		CountdownStep: time.Duration(readCountdownMs) * time.Millisecond,
		Immersive:     readImmersive,
		Source:        sourceName(readFile),
	}
	if err := validateConfig(cfg); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

func runReadCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadReaderConfig(cmd)
	if err != nil {
		return err
	}

	text := sampleText
	if readFile != "" {
		text, err = ingest.LoadText(readFile)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", readFile, err)
		}
	}

	var stderr io.Writer
	if readPlain {
		stderr = os.Stderr
	}
	logger, closeLog, err := newLogger(stderr)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeLog(); cerr != nil {
			// Best-effort close of the log file.
			_ = cerr
		}
	}()

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logger.Error("failed to close db", "err", cerr)
		}
	}()

	if readPlain {
		return runPlain(cmd, cfg, text, st, logger)
	}

	m, err := tui.NewModel(cfg, text, st, logger)
	if err != nil {
		return err
	}
	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if readFile == ingest.StdinPath {
		// Stdin held the text, so keys come from the terminal.
		opts = append(opts, tea.WithInputTTY())
	}
	program := tea.NewProgram(m, opts...)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func runPlain(cmd *cobra.Command, cfg model.Config, text string, st *store.Store, logger *slog.Logger) error {
	session, err := engine.NewSession(cfg.WPM,
		engine.WithCountdownStep(cfg.CountdownStep),
		engine.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	err = plain.Run(ctx, cmd.OutOrStdout(), session, text, plain.Options{
		Source:   cfg.Source,
		Recorder: st,
		Logger:   logger,
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func newLogger(stderr io.Writer) (*slog.Logger, func() error, error) {
	path := logFile
	if path == "" {
		path = config.DefaultLogPath()
	}
	logger, closeLog, err := logging.New(logging.Options{
		Level:  logLevel,
		File:   path,
		Stderr: stderr,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logging: %w", err)
	}
	return logger, closeLog, nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show reading history",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N readings")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().BoolVar(&statsPrint, "print", false, "print a summary instead of starting the TUI")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if statsLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	if statsCurveWindow < 1 {
		return fmt.Errorf("--curve-window must be > 0")
	}

	cfg := model.StatsConfig{
		Since:       sinceTime,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	if statsPrint {
		return printStats(cmd.Context(), cmd.OutOrStdout(), st, cfg, stats.TerminalWidth())
	}

	program := tea.NewProgram(statsui.NewModel(st, cfg), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func printStats(ctx context.Context, w io.Writer, st *store.Store, cfg model.StatsConfig, width int) error {
	report, err := stats.BuildReport(ctx, st, cfg)
	if err != nil {
		return fmt.Errorf("failed to load stats: %w", err)
	}
	if err := stats.RenderSummary(w, report.Summary); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderTrend(w, report.Readings, cfg.CurveWindow, width); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderReadingTable(w, report.Readings); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newRatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rates",
		Short: "List the configured rates and their word intervals",
		Args:  cobra.NoArgs,
		RunE:  runRatesCmd,
	}
}

func runRatesCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	rates := defaultRates
	if len(fileCfg.Reader.Rates) > 0 {
		rates = fileCfg.Reader.Rates
	}
	current := defaultWPM
	if fileCfg.Reader.WPM != nil {
		current = *fileCfg.Reader.WPM
	}
	return printRates(cmd.OutOrStdout(), rates, current)
}

func printRates(w io.Writer, rates []int, current int) error {
	sorted := slices.Clone(rates)
	slices.Sort(sorted)
	for _, r := range slices.Compact(sorted) {
		marker := " "
		if r == current {
			marker = "*"
		}
		if _, err := fmt.Fprintf(w, "%s %5d wpm  %v\n", marker, r, engine.Interval(r)); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntSliceConfig(cmd *cobra.Command, name string, target *[]int, value []int) {
	if len(value) == 0 {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# tuirsvp configuration
# Uncomment a value to enable it. TUIRSVP_* environment variables override
# these values and CLI flags override both.

[reader]
# wpm = %d                # Reading rate in words per minute
# rates = %v   # Rates offered by +/-
# countdown-ms = %d       # Time between countdown values
# immersive = false        # Start in immersive mode
# file = ""                # Text file read at startup

[log]
# level = %q           # debug, info, warn or error
# file = ""                # Log file (default: XDG state dir)
`,
		defaultWPM,
		tomlInts(defaultRates),
		defaultCountdownMs,
		defaultLogLevel,
	)
}

func tomlInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func validateConfig(cfg model.Config) error {
	if err := engine.ValidateRate(cfg.WPM); err != nil {
		return fmt.Errorf("--wpm: %w", err)
	}
	if len(cfg.Rates) == 0 {
		return fmt.Errorf("--rates must not be empty")
	}
	for _, r := range cfg.Rates {
		if err := engine.ValidateRate(r); err != nil {
			return fmt.Errorf("--rates: %w", err)
		}
	}
	if cfg.CountdownStep <= 0 {
		return fmt.Errorf("--countdown-ms must be > 0")
	}
	return nil
}

func sourceName(path string) string {
	switch path {
	case "":
		return "sample"
	case ingest.StdinPath:
		return "stdin"
	default:
		return filepath.Base(path)
	}
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
