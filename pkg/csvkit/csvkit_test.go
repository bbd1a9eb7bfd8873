/* Apache v2 license
*  Copyright (C) <2019> MindWear
*
*  SPDX-License-Identifier: Apache-2.0
 */

package csvkit

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, content string) (string, func()) {
	t.Helper()
	dir, err := ioutil.TempDir("", "csvkit")
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "input.csv")
	if err := ioutil.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path, func() { os.RemoveAll(dir) }
}

func TestReadFileSkipRowsAndHeader(t *testing.T) {
	path, cleanup := writeTemp(t, "junk line 1\njunk line 2\na,b\n1,2\n3,4\n")
	defer cleanup()

	table, err := ReadFile(path, Options{SkipRows: 2, Header: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(table.Header) != 2 || table.Header[0] != "a" {
		t.Errorf("unexpected header %v", table.Header)
	}
	if len(table.Rows) != 2 {
		t.Errorf("expected 2 data rows, got %d", len(table.Rows))
	}
}

func TestReadFileCommentsAndBlanks(t *testing.T) {
	path, cleanup := writeTemp(t, "a,b\nC this is a comment\n\n1,2\n")
	defer cleanup()

	table, err := ReadFile(path, Options{Header: true, SkipBlank: true, CommentPrefix: "C"})
	if err != nil {
		t.Fatal(err)
	}
	if len(table.Rows) != 1 {
		t.Errorf("expected comment and blank lines to be dropped, got %d rows", len(table.Rows))
	}
}

func TestReadFileCountsMalformedRows(t *testing.T) {
	path, cleanup := writeTemp(t, "a,b\n1,\"unterminated\n2,3\n")
	defer cleanup()

	table, err := ReadFile(path, Options{Header: true})
	if err != nil {
		t.Fatal(err)
	}
	if table.Skipped == 0 {
		t.Error("expected the malformed row to be counted")
	}
}

func TestColumnIndex(t *testing.T) {
	header := []string{"Timestamp", " accel.X", "value"}
	if got := ColumnIndex(header, "accel.X"); got != 1 {
		t.Errorf("expected a trimmed match at 1, got %d", got)
	}
	if got := ColumnIndex(header, "missing"); got != -1 {
		t.Errorf("expected -1 for an absent column, got %d", got)
	}
}

func TestReadFileStripsBOM(t *testing.T) {
	path, cleanup := writeTemp(t, "\uFEFFTimestamp,a\n1,2\n")
	defer cleanup()

	table, err := ReadFile(path, Options{Header: true})
	if err != nil {
		t.Fatal(err)
	}
	if table.Header[0] != "Timestamp" {
		t.Errorf("expected the BOM to be stripped, got %q", table.Header[0])
	}
}

func TestWriteFileRoundTrip(t *testing.T) {
	dir, err := ioutil.TempDir("", "csvkit")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "nested", "out.csv")
	if err := WriteFile(path, []string{"a", "b"}, [][]string{{"1", "2"}}); err != nil {
		t.Fatal(err)
	}

	table, err := ReadFile(path, Options{Header: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(table.Rows) != 1 || table.Rows[0][1] != "2" {
		t.Errorf("unexpected round trip result %+v", table)
	}
}
