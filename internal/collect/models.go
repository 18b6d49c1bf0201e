package collect

import (
	"errors"

	"github.com/dtnitsch/chatty/models"
	"github.com/dtnitsch/chatty/pkg/mapreduce"
)

var (
	// ErrInvalidPhase is returned when a Runner step is called out of order.
	ErrInvalidPhase = errors.New("invalid run phase")
	// ErrConfig marks a configuration problem detected before any work starts.
	ErrConfig = errors.New("invalid configuration")
)

// lineJob is one input line handed to a line worker.
type lineJob struct {
	Number int64
	Data   []byte
}

// partial is what one line worker folded from the lines it was given.
type partial struct {
	Report    mapreduce.Report
	Records   int64
	Malformed int64
	Blank     int64
}

// fileResult is the contribution of one input file.
type fileResult struct {
	Path   string
	Site   string
	Report mapreduce.Report
	Stats  models.RunStats
}
