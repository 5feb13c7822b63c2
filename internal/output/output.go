// Package output renders command results as text, JSON or CSV.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/gocarina/gocsv"
)

// Mode selects the output encoding.
type Mode int

const (
	ModeText Mode = iota
	ModeJSON
	ModeCSV
)

// Formatter writes tables and values in the selected mode.
type Formatter struct {
	Writer io.Writer
	Mode   Mode
}

// New creates a Formatter. JSON wins when both flags are set.
func New(w io.Writer, jsonMode, csvMode bool) *Formatter {
	mode := ModeText
	switch {
	case jsonMode:
		mode = ModeJSON
	case csvMode:
		mode = ModeCSV
	}
	return &Formatter{Writer: w, Mode: mode}
}

// Table outputs headers and rows as aligned text, a JSON array of objects
// keyed by header, or CSV with a header line.
func (f *Formatter) Table(headers []string, rows [][]string) error {
	switch f.Mode {
	case ModeJSON:
		return f.tableAsJSON(headers, rows)
	case ModeCSV:
		return f.tableAsCSV(headers, rows)
	default:
		return f.tableAsText(headers, rows)
	}
}

func (f *Formatter) tableAsText(headers []string, rows [][]string) error {
	tw := tabwriter.NewWriter(f.Writer, 0, 0, 2, ' ', 0)

	if _, err := fmt.Fprintln(tw, strings.Join(headers, "\t")); err != nil {
		return err
	}

	separators := make([]string, len(headers))
	for i, h := range headers {
		separators[i] = strings.Repeat("-", len(h))
	}
	if _, err := fmt.Fprintln(tw, strings.Join(separators, "\t")); err != nil {
		return err
	}

	for _, row := range rows {
		if _, err := fmt.Fprintln(tw, strings.Join(row, "\t")); err != nil {
			return err
		}
	}

	return tw.Flush()
}

func (f *Formatter) tableAsJSON(headers []string, rows [][]string) error {
	result := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		obj := make(map[string]string, len(headers))
		for i, header := range headers {
			if i < len(row) {
				obj[header] = row[i]
			} else {
				obj[header] = ""
			}
		}
		result = append(result, obj)
	}
	return f.encodeJSON(result)
}

func (f *Formatter) tableAsCSV(headers []string, rows [][]string) error {
	w := gocsv.DefaultCSVWriter(f.Writer)
	if err := w.Write(headers); err != nil {
		return err
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// Records writes a slice of structs. CSV mode marshals it with gocsv using
// the csv struct tags; JSON mode encodes it; text mode prints the table.
func (f *Formatter) Records(records any, headers []string, rows [][]string) error {
	switch f.Mode {
	case ModeJSON:
		return f.encodeJSON(records)
	case ModeCSV:
		if err := gocsv.Marshal(records, f.Writer); err != nil {
			return fmt.Errorf("failed to write CSV: %w", err)
		}
		return nil
	default:
		return f.tableAsText(headers, rows)
	}
}

// Lines prints text lines, or data as JSON in JSON mode.
func (f *Formatter) Lines(lines []string, data any) error {
	if f.Mode == ModeJSON {
		return f.encodeJSON(data)
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(f.Writer, line); err != nil {
			return err
		}
	}
	return nil
}

func (f *Formatter) encodeJSON(data any) error {
	encoder := json.NewEncoder(f.Writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
