package records

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"
)

// Mode selects how ReadCSV treats lines.
type Mode int

const (
	// ModeCSV parses every line as data.
	ModeCSV Mode = iota
	// ModeCommented skips lines starting with CommentChar.
	ModeCommented
)

// CommentChar marks a comment line in ModeCommented.
const CommentChar = '#'

const utf8BOM = "\ufeff"

func newCSVReader(r io.Reader, mode Mode) *csv.Reader {
	cr := csv.NewReader(r)
	if mode == ModeCommented {
		cr.Comment = CommentChar
	}
	return cr
}

// ReadCSV yields one record per data line of r, in order. r must already be
// positioned past any header line. Iteration stops at the first malformed row
// and yields its error.
func ReadCSV(r io.Reader, schema *Schema, mode Mode) iter.Seq2[Record, error] {
	cr := newCSVReader(r, mode)
	cr.FieldsPerRecord = schema.Len()
	return readRows(cr, schema)
}

// ReadCSVWithHeader consumes the header line of r, builds a schema named name
// from it and returns the schema plus the remaining rows.
func ReadCSVWithHeader(r io.Reader, name string, mode Mode) (*Schema, iter.Seq2[Record, error], error) {
	cr := newCSVReader(r, mode)

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("read csv header: empty input")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read csv header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	schema, err := NewSchema(name, header)
	if err != nil {
		return nil, nil, fmt.Errorf("csv header: %w", err)
	}

	cr.FieldsPerRecord = schema.Len()
	return schema, readRows(cr, schema), nil
}

func readRows(cr *csv.Reader, schema *Schema) iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		for {
			row, err := cr.Read()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(Record{}, fmt.Errorf("read csv row: %w", err))
				return
			}
			rec, err := schema.New(row...)
			if err != nil {
				yield(Record{}, err)
				return
			}
			if !yield(rec, nil) {
				return
			}
		}
	}
}

// ReadAll drains seq, stopping at the first error.
func ReadAll(seq iter.Seq2[Record, error]) ([]Record, error) {
	var out []Record
	for rec, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}
