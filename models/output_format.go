package models

import (
	"fmt"
	"strings"
)

// OutputFormat selects how a finished report is rendered.
type OutputFormat string

const (
	FormatJSON   OutputFormat = "json"
	FormatYAML   OutputFormat = "yaml"
	FormatText   OutputFormat = "text"   // numbered chatty lists only
	FormatSQLite OutputFormat = "sqlite" // export to a database file
)

// ParseOutputFormat normalizes a --format value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	f := OutputFormat(strings.ToLower(strings.TrimSpace(s)))
	if f == "" {
		return FormatJSON, nil
	}
	if err := f.Validate(); err != nil {
		return "", err
	}
	return f, nil
}

// Validate rejects unknown formats.
func (f OutputFormat) Validate() error {
	switch f {
	case FormatJSON, FormatYAML, FormatText, FormatSQLite:
		return nil
	}
	return fmt.Errorf("unknown output format %q (want json, yaml, text or sqlite)", string(f))
}
