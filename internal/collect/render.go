package collect

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/dtnitsch/chatty/models"
	"github.com/dtnitsch/chatty/pkg/mapreduce"
	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"
)

// Render serializes a finished report. SQLite is written by exportSQLite instead.
func Render(r mapreduce.Report, format models.OutputFormat) ([]byte, error) {
	switch format {
	case models.FormatJSON, "":
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("error marshalling JSON: %w", err)
		}
		return data, nil
	case models.FormatYAML:
		data, err := yaml.Marshal(r)
		if err != nil {
			return nil, fmt.Errorf("error marshalling YAML: %w", err)
		}
		return data, nil
	case models.FormatText:
		return renderText(r), nil
	}
	return nil, fmt.Errorf("format %q cannot be rendered to a stream", string(format))
}

// renderText lists the chatty rankings with their coefficients.
func renderText(r mapreduce.Report) []byte {
	var buf bytes.Buffer

	mapreduce.PrintTop(&buf, "Chatty sites", mapreduce.Ranking(r.Sites))
	buf.WriteString("\n")
	mapreduce.PrintTop(&buf, "Chatty tags", mapreduce.Ranking(r.Tags))

	names := make([]string, 0, len(r.Sites))
	for name := range r.Sites {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		site := r.Sites[name]
		buf.WriteString("\n")
		title := fmt.Sprintf("%s (%d questions, %d words)", name, site.Questions, site.Words)
		mapreduce.PrintTop(&buf, title, mapreduce.Ranking(site.Tags))
	}

	return buf.Bytes()
}

// logSummary reports what the run read. The counts never enter the report.
func logSummary(logger *slog.Logger, stats models.RunStats, sites, tags int) {
	logger.Info("Run finished",
		"run_id", stats.RunID,
		"files", stats.Files,
		"lines", humanize.Comma(stats.Lines),
		"records", humanize.Comma(stats.Records),
		"malformed", stats.Malformed,
		"blank", stats.Blank,
		"input", humanize.Bytes(uint64(stats.Bytes)),
		"sites", sites,
		"tags", humanize.Comma(int64(tags)),
		"elapsed", stats.Elapsed.Round(time.Millisecond).String(),
	)
}
