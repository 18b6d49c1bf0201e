package collect

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dtnitsch/chatty/models"
	"github.com/dtnitsch/chatty/pkg/analytics"
	"github.com/dtnitsch/chatty/pkg/mapreduce"
	"github.com/dtnitsch/chatty/pkg/parser"
	"github.com/dtnitsch/chatty/pkg/storage"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Runner drives one run through Idle -> Collecting -> Ranking -> Done.
// There is no way back: once ranking starts the report is final.
type Runner struct {
	logger    *slog.Logger
	cfg       *models.RunConfig
	storage   *storage.Storage
	parser    *parser.Parser
	analytics *analytics.Analytics
	workers   int
	// lineSlots is shared by every file so at most workers lines are
	// processed at once across the run.
	lineSlots *semaphore.Weighted

	mu      sync.Mutex
	phase   models.Phase
	report  mapreduce.Report
	stats   models.RunStats
	started time.Time
}

// NewRunner prepares a run. cfg.Workers bounds the files open at once and,
// separately, the line workers running at once across all files.
func NewRunner(logger *slog.Logger, cfg *models.RunConfig) *Runner {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	return &Runner{
		workers:   workers,
		lineSlots: semaphore.NewWeighted(int64(workers)),
		logger:    logger,
		cfg:       cfg,
		storage:   &storage.Storage{},
		parser:    &parser.Parser{Lenient: cfg.Lenient},
		analytics: &analytics.Analytics{},
		phase:     models.PhaseIdle,
		stats:     models.RunStats{RunID: uuid.NewString()},
	}
}

// Phase returns where the run currently is.
func (r *Runner) Phase() models.Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase
}

func (r *Runner) advance(from, to models.Phase) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != from {
		return fmt.Errorf("%w: cannot move to %s from %s", ErrInvalidPhase, to, r.phase)
	}
	r.phase = to
	return nil
}

// Collect reads every file of the data directory and folds all lines into
// one report. Files run concurrently on an errgroup limited to cfg.Workers;
// the first file that cannot be opened or read cancels the others and the
// run ends with no report.
func (r *Runner) Collect(ctx context.Context) error {
	if err := r.advance(models.PhaseIdle, models.PhaseCollecting); err != nil {
		return err
	}
	r.started = time.Now()

	if err := ctx.Err(); err != nil {
		r.fail()
		return fmt.Errorf("collection aborted: %w", err)
	}

	files, err := r.storage.ListFiles(r.cfg.DataDir)
	if err != nil {
		r.fail()
		return err
	}
	r.logger.Info("Starting collection phase", "run_id", r.stats.RunID, "data_dir", r.cfg.DataDir, "files", len(files), "workers", r.workers)

	results := make([]fileResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, path := range files {
		g.Go(func() error {
			r.logger.Debug("File started", "file", path)
			res, err := r.processFile(gctx, path)
			if err != nil {
				r.logger.Error("File failed", "file", path, "error", err)
				return err
			}
			results[i] = res
			r.logger.Debug("File finished", "file", path, "site", res.Site, "lines", res.Stats.Lines, "malformed", res.Stats.Malformed)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		r.fail()
		return fmt.Errorf("collection aborted: %w", err)
	}

	report, stats := foldFiles(r.cfg.RegistryID, results)

	r.mu.Lock()
	r.report = report
	stats.RunID = r.stats.RunID
	r.stats = stats
	r.mu.Unlock()

	r.logger.Info("All files reduced", "run_id", stats.RunID, "sites", len(report.Sites), "tags", len(report.Tags))
	return nil
}

// fail ends an aborted run in Done with an empty report.
func (r *Runner) fail() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.phase = models.PhaseDone
	r.report = mapreduce.Report{}
}

// Rank computes every chatty list on the collected report.
func (r *Runner) Rank(ctx context.Context) error {
	if err := r.advance(models.PhaseCollecting, models.PhaseRanking); err != nil {
		return err
	}

	r.mu.Lock()
	report := r.report
	r.mu.Unlock()

	if err := mapreduce.Rank(ctx, &report, r.workers); err != nil {
		r.fail()
		return fmt.Errorf("ranking aborted: %w", err)
	}

	r.mu.Lock()
	r.report = report
	r.stats.Elapsed = time.Since(r.started)
	r.phase = models.PhaseDone
	r.mu.Unlock()
	return nil
}

// Report returns the finished report. It is only available once ranking is done.
func (r *Runner) Report() (mapreduce.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != models.PhaseDone || r.report.Sites == nil {
		return mapreduce.Report{}, fmt.Errorf("%w: report not ready in phase %s", ErrInvalidPhase, r.phase)
	}
	return r.report, nil
}

// Stats returns what the run has read so far.
func (r *Runner) Stats() models.RunStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

// Run collects and ranks in one call.
func Run(ctx context.Context, logger *slog.Logger, cfg *models.RunConfig) (mapreduce.Report, models.RunStats, error) {
	runner := NewRunner(logger, cfg)
	if err := runner.Collect(ctx); err != nil {
		return mapreduce.Report{}, runner.Stats(), err
	}
	if err := runner.Rank(ctx); err != nil {
		return mapreduce.Report{}, runner.Stats(), err
	}
	report, err := runner.Report()
	return report, runner.Stats(), err
}
