package collect

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dtnitsch/chatty/models"
	"github.com/dtnitsch/chatty/pkg/analytics"
	"github.com/dtnitsch/chatty/pkg/mapreduce"
	"github.com/dtnitsch/chatty/pkg/parser"
	"github.com/dtnitsch/chatty/pkg/storage"
	"golang.org/x/sync/semaphore"
)

// maxLineBytes bounds a single input line. Longer lines fail the file.
const maxLineBytes = 64 * 1024 * 1024

// processFile reduces one site file with up to r.workers line workers.
// Workers draw from the run-wide lineSlots, so a file waits for a slot when
// other files hold them all. Open and read errors are returned and abort
// the run; bad lines are not.
func (r *Runner) processFile(ctx context.Context, path string) (fileResult, error) {
	site := storage.SiteName(path)
	result := fileResult{Path: path, Site: site}

	f, err := r.storage.Open(path)
	if err != nil {
		return result, err
	}
	defer f.Close()

	if stats, err := r.storage.GetFileStats(path); err == nil {
		result.Stats.Bytes = stats.SizeBytes
	}

	lineWorkers := r.workers
	jobs := make(chan lineJob, lineWorkers*4)
	partials := make([]partial, lineWorkers)

	var wg sync.WaitGroup
	for w := 0; w < lineWorkers; w++ {
		wg.Add(1)
		go lineWorker(ctx, w+1, r.lineSlots, r.logger, r.parser, r.analytics, site, r.cfg.RegistryID, path, &wg, jobs, &partials[w])
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var lines int64
	var readErr error
scan:
	for scanner.Scan() {
		lines++
		// Scan reuses its buffer; each job needs its own copy
		data := append([]byte(nil), scanner.Bytes()...)
		select {
		case jobs <- lineJob{Number: lines, Data: data}:
		case <-ctx.Done():
			readErr = ctx.Err()
			break scan
		}
	}
	close(jobs)
	wg.Wait()

	if readErr != nil {
		return result, readErr
	}
	// a worker that never got a slot leaves lines unread
	if err := ctx.Err(); err != nil {
		return result, err
	}
	if err := scanner.Err(); err != nil {
		return result, fmt.Errorf("error reading %s: %w", path, err)
	}

	result.Report = mapreduce.NewReport(r.cfg.RegistryID)
	for _, p := range partials {
		result.Report.Add(p.Report)
		result.Stats.Records += p.Records
		result.Stats.Malformed += p.Malformed
		result.Stats.Blank += p.Blank
	}
	result.Stats.Files = 1
	result.Stats.Lines = lines

	return result, nil
}

// lineWorker folds every line it receives into its own private report.
// It holds one slot of slots until jobs is closed. A malformed line
// contributes nothing, which is the identity of the merge.
func lineWorker(ctx context.Context, id int, slots *semaphore.Weighted, logger *slog.Logger, p *parser.Parser, a *analytics.Analytics, site string, registryID uint32, path string, wg *sync.WaitGroup, jobs <-chan lineJob, out *partial) {
	defer wg.Done()

	if err := slots.Acquire(ctx, 1); err != nil {
		return
	}
	defer slots.Release(1)

	acc := mapreduce.NewReport(registryID)
	for job := range jobs {
		rec, err := p.ParseLine(job.Data)
		if err != nil {
			if errors.Is(err, parser.ErrBlankLine) {
				out.Blank++
				continue
			}
			logger.Warn("Skipping malformed record", "worker_id", id, "file", path, "line", job.Number, "error", err)
			out.Malformed++
			continue
		}

		acc.Add(mapreduce.Map(site, rec, a, registryID))
		out.Records++
	}
	out.Report = acc
}

// foldFiles merges per-file results into the run's report and stats.
func foldFiles(registryID uint32, results []fileResult) (mapreduce.Report, models.RunStats) {
	final := mapreduce.NewReport(registryID)
	var stats models.RunStats
	for _, res := range results {
		final.Add(res.Report)
		stats.Add(res.Stats)
	}
	return final, stats
}
