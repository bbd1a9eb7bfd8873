/* Apache v2 license
*  Copyright (C) <2019> MindWear
*
*  SPDX-License-Identifier: Apache-2.0
 */

package csvkit

import (
	"bufio"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Options controls how much of a vendor export is treated as csv. The vendor
// formats prepend fixed-size preambles and comment lines that the csv parser
// must never see.
type Options struct {
	// SkipRows drops this many leading lines before parsing begins.
	SkipRows int
	// Header treats the first remaining line as a header row.
	Header bool
	// CommentPrefix drops any line beginning with this prefix.
	CommentPrefix string
	// SkipBlank drops empty lines.
	SkipBlank bool
}

// Table is the parsed remainder of a csv file.
type Table struct {
	Header []string
	Rows   [][]string
	// Skipped counts rows the parser rejected as malformed.
	Skipped int
}

// ReadFile parses the file at path according to opts.
func ReadFile(path string, opts Options) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open %s", path)
	}
	defer f.Close()
	return Read(f, opts)
}

// Read parses csv content according to opts. Malformed rows are counted and
// skipped rather than failing the whole file.
func Read(r io.Reader, opts Options) (*Table, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var lines []string
	lineNum := 0
	for scanner.Scan() {
		line := scanner.Text()
		lineNum++
		if lineNum <= opts.SkipRows {
			continue
		}
		if opts.SkipBlank && strings.TrimSpace(line) == "" {
			continue
		}
		if opts.CommentPrefix != "" && strings.HasPrefix(line, opts.CommentPrefix) {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "unable to scan csv content")
	}

	table := &Table{}
	reader := csv.NewReader(strings.NewReader(strings.Join(lines, "\n")))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = false

	first := true
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			table.Skipped++
			continue
		}
		if first && opts.Header {
			table.Header = trimBOM(record)
			first = false
			continue
		}
		first = false
		table.Rows = append(table.Rows, record)
	}

	return table, nil
}

// WriteFile writes a header and rows as csv, creating parent directories as
// needed. Outputs are write-once artifacts; an existing file is replaced.
func WriteFile(path string, header []string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, "unable to create directory for %s", path)
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "unable to create %s", path)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if len(header) > 0 {
		if err := writer.Write(header); err != nil {
			return errors.Wrapf(err, "unable to write header to %s", path)
		}
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return errors.Wrapf(err, "unable to write row to %s", path)
		}
	}
	writer.Flush()
	return errors.Wrapf(writer.Error(), "unable to flush %s", path)
}

// ColumnIndex finds the index of name in header, comparing with surrounding
// whitespace trimmed. Returns -1 when absent.
func ColumnIndex(header []string, name string) int {
	for i, h := range header {
		if strings.TrimSpace(h) == name {
			return i
		}
	}
	return -1
}

// trimBOM strips a UTF-8 byte order mark from the first header cell. The
// hand-maintained placement logs are exported with one.
func trimBOM(record []string) []string {
	if len(record) > 0 {
		record[0] = strings.TrimPrefix(record[0], "\uFEFF")
	}
	return record
}
