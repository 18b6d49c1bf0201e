package models

import "time"

// Phase is the lifecycle state of a collection run.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseCollecting
	PhaseRanking
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseCollecting:
		return "collecting"
	case PhaseRanking:
		return "ranking"
	case PhaseDone:
		return "done"
	default:
		return "unknown"
	}
}

// RunStats counts what a run read. None of it appears in the report itself.
type RunStats struct {
	RunID     string        `json:"run_id" yaml:"run_id"`
	Files     int           `json:"files" yaml:"files"`
	Lines     int64         `json:"lines" yaml:"lines"`
	Records   int64         `json:"records" yaml:"records"`
	Malformed int64         `json:"malformed" yaml:"malformed"`
	Blank     int64         `json:"blank" yaml:"blank"`
	Bytes     int64         `json:"bytes" yaml:"bytes"`
	Elapsed   time.Duration `json:"elapsed" yaml:"elapsed"`
}

// Add folds another file's counts into s.
func (s *RunStats) Add(o RunStats) {
	s.Files += o.Files
	s.Lines += o.Lines
	s.Records += o.Records
	s.Malformed += o.Malformed
	s.Blank += o.Blank
	s.Bytes += o.Bytes
}
