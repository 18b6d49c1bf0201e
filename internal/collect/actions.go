package collect

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"

	"github.com/dtnitsch/chatty/models"
	"github.com/dtnitsch/chatty/pkg/db"
	"github.com/dtnitsch/chatty/pkg/mapreduce"
	"github.com/dtnitsch/chatty/pkg/storage"
	"github.com/urfave/cli/v2"
)

// Flags returns the flags understood by CollectAction.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "data-dir", Aliases: []string{"d"}, Value: models.DefaultDataDir, Usage: "directory holding one .jsonl file per site"},
		&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: string(models.FormatJSON), Usage: "output format: json, yaml, text or sqlite"},
		&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "write the report to this file instead of stdout (required for sqlite)"},
		&cli.Uint64Flag{Name: "registry-id", Value: uint64(models.DefaultRegistryID), Usage: "identifier stamped on the report"},
		&cli.BoolFlag{Name: "lenient", Usage: "read a missing or null \"texts\" or \"tags\" as an empty list instead of skipping the record"},
		&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML file with default settings; flags take precedence"},
		&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "only log errors"},
		&cli.BoolFlag{Name: "verbose", Usage: "log per-file progress"},
	}
}

// CollectAction runs a whole collection: parse the worker count, reduce
// every file, rank, and write the report.
//
// Exit code 1 means the configuration was rejected before any work started;
// exit code 2 means the run or the output failed.
func CollectAction(c *cli.Context) error {
	logger := newLogger(c)

	cfg, err := ConfigFromContext(c)
	if err != nil {
		fmt.Fprintln(c.App.ErrWriter, "Error:", err)
		fmt.Fprintln(c.App.ErrWriter, "")
		fmt.Fprintln(c.App.ErrWriter, "Usage:")
		fmt.Fprintf(c.App.ErrWriter, "  %s [options] <workers>\n", c.App.Name)
		fmt.Fprintf(c.App.ErrWriter, "  %s --data-dir data --format yaml 8\n", c.App.Name)
		return cli.Exit("", exitCode(err))
	}

	report, stats, err := Run(c.Context, logger, cfg)
	if err != nil {
		logger.Error("run failed", "run_id", stats.RunID, "error", err)
		return cli.Exit(fmt.Sprintf("Error: %v", err), exitCode(err))
	}

	if err := writeReport(c, cfg, report, stats); err != nil {
		logger.Error("failed to write report", "run_id", stats.RunID, "error", err)
		return cli.Exit(fmt.Sprintf("Error: %v", err), 2)
	}

	logSummary(logger, stats, len(report.Sites), len(report.Tags))
	return nil
}

func newLogger(c *cli.Context) *slog.Logger {
	logLevel := slog.LevelInfo
	if c.Bool("verbose") {
		logLevel = slog.LevelDebug
	}
	if c.Bool("quiet") {
		logLevel = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(c.App.ErrWriter, &slog.HandlerOptions{Level: logLevel}))
}

// ConfigFromContext builds the run configuration: defaults, then the
// optional YAML file, then explicit flags, then the positional worker count.
func ConfigFromContext(c *cli.Context) (*models.RunConfig, error) {
	cfg := models.DefaultRunConfig()
	if c.IsSet("config") {
		path := c.String("config")
		s := &storage.Storage{}
		if !s.HasFile(path) {
			return nil, fmt.Errorf("%w: config file %s not found", ErrConfig, path)
		}
		loaded, err := models.LoadConfig(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfig, err)
		}
		cfg = loaded
	}

	if c.IsSet("data-dir") {
		cfg.DataDir = c.String("data-dir")
	}
	if c.IsSet("format") {
		format, err := models.ParseOutputFormat(c.String("format"))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfig, err)
		}
		cfg.Format = format
	}
	if c.IsSet("output") {
		cfg.Output = c.String("output")
	}
	if c.IsSet("registry-id") {
		id := c.Uint64("registry-id")
		if id > math.MaxUint32 {
			return nil, fmt.Errorf("%w: registry id %d does not fit in 32 bits", ErrConfig, id)
		}
		cfg.RegistryID = uint32(id)
	}
	if c.IsSet("lenient") {
		cfg.Lenient = c.Bool("lenient")
	}

	workers, err := parseWorkers(c.Args().Slice())
	if err != nil {
		return nil, err
	}
	cfg.Workers = workers

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	return cfg, nil
}

// parseWorkers expects exactly one positive integer argument.
func parseWorkers(args []string) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("%w: expected exactly one argument, the worker count (got %d)", ErrConfig, len(args))
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("%w: worker count must be an integer: %q", ErrConfig, args[0])
	}
	if n <= 0 {
		return 0, fmt.Errorf("%w: worker count must be positive, got %d", ErrConfig, n)
	}
	return n, nil
}

func writeReport(c *cli.Context, cfg *models.RunConfig, report mapreduce.Report, stats models.RunStats) error {
	if cfg.Format == models.FormatSQLite {
		return exportSQLite(cfg.Output, stats.RunID, report)
	}

	data, err := Render(report, cfg.Format)
	if err != nil {
		return err
	}

	if cfg.Output == "" {
		_, err := fmt.Fprintln(c.App.Writer, string(data))
		return err
	}

	s := &storage.Storage{}
	return s.SaveFile(cfg.Output, data)
}

func exportSQLite(path, runID string, report mapreduce.Report) error {
	database, err := db.Create(path)
	if err != nil {
		return err
	}
	defer database.Close()

	if _, err := database.SaveReport(runID, report); err != nil {
		return err
	}
	return nil
}

// IsConfigError reports whether err was raised before any work started.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrConfig)
}

// exitCode maps a run error to the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case IsConfigError(err):
		return 1
	default:
		return 2
	}
}
