package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/dtnitsch/chatty/models"
)

var (
	// ErrMalformed marks a line that is not a valid record.
	ErrMalformed = errors.New("malformed record")
	// ErrBlankLine marks a line with nothing but whitespace.
	ErrBlankLine = errors.New("blank line")
)

const (
	fieldTexts = "texts"
	fieldTags  = "tags"
)

// Parser decodes JSON-lines records.
// By default both "texts" and "tags" must be present and non-null; Lenient
// reads a missing or null field as an empty list.
type Parser struct {
	Lenient bool
}

// ParseLine decodes one line into a Record. Field names match exactly and
// each may appear only once; unknown fields are ignored.
func (p *Parser) ParseLine(line []byte) (models.Record, error) {
	trimmed := bytes.TrimSpace(line)
	if len(trimmed) == 0 {
		return models.Record{}, ErrBlankLine
	}
	if !utf8.Valid(trimmed) {
		return models.Record{}, fmt.Errorf("%w: invalid UTF-8", ErrMalformed)
	}

	fields, err := objectFields(trimmed)
	if err != nil {
		return models.Record{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	var rec models.Record
	if rec.Texts, err = p.stringList(fields, fieldTexts); err != nil {
		return models.Record{}, err
	}
	if rec.Tags, err = p.stringList(fields, fieldTags); err != nil {
		return models.Record{}, err
	}
	return rec, nil
}

func (p *Parser) stringList(fields map[string]json.RawMessage, name string) ([]string, error) {
	raw, ok := fields[name]
	if !ok || bytes.Equal(raw, []byte("null")) {
		if p.Lenient {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: missing field %q", ErrMalformed, name)
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("%w: field %q: %v", ErrMalformed, name, err)
	}
	return list, nil
}

// objectFields splits a single JSON object into its raw top-level values,
// keyed by exact field name. Duplicate keys and trailing data are errors.
func objectFields(data []byte) (map[string]json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("expected a JSON object")
	}

	fields := make(map[string]json.RawMessage, 2)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}
		if _, dup := fields[key]; dup {
			return nil, fmt.Errorf("duplicate field %q", key)
		}
		fields[key] = raw
	}

	// closing brace
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("trailing data after object")
	}
	return fields, nil
}
