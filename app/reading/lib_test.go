package reading

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func sampleSeries() *Series {
	s := &Series{Device: "E4", Sensor: "accelerometer", Columns: []string{"x", "y", "z"}}
	base := time.Date(2017, 4, 6, 15, 45, 0, 0, time.Local)
	for i := 0; i < 10; i++ {
		s.Append(base.Add(time.Duration(i)*time.Second), []float64{float64(i), 0, 1})
	}
	return s
}

func TestWindowFullRangeIsIdentity(t *testing.T) {
	s := sampleSeries()
	start := s.Readings[0].Timestamp
	stop := s.Readings[len(s.Readings)-1].Timestamp

	windowed := s.Window(start, stop)
	if windowed.Len() != s.Len() {
		t.Fatalf("full-range window returned %d of %d readings", windowed.Len(), s.Len())
	}
	for i := range s.Readings {
		if !windowed.Readings[i].Timestamp.Equal(s.Readings[i].Timestamp) {
			t.Errorf("row %d: order not preserved", i)
		}
	}
}

func TestWindowIsIdempotent(t *testing.T) {
	s := sampleSeries()
	start := s.Readings[2].Timestamp
	stop := s.Readings[6].Timestamp

	once := s.Window(start, stop)
	twice := once.Window(start, stop)
	if twice.Len() != once.Len() {
		t.Fatalf("re-windowing changed the result: %d vs %d readings", twice.Len(), once.Len())
	}
}

func TestWindowInclusiveBounds(t *testing.T) {
	s := sampleSeries()
	start := s.Readings[3].Timestamp
	stop := s.Readings[5].Timestamp

	windowed := s.Window(start, stop)
	if windowed.Len() != 3 {
		t.Fatalf("expected 3 readings in [start, stop], got %d", windowed.Len())
	}
	if !windowed.Readings[0].Timestamp.Equal(start) {
		t.Error("start boundary should be included")
	}
	if !windowed.Readings[2].Timestamp.Equal(stop) {
		t.Error("stop boundary should be included")
	}
}

func TestSortIsStable(t *testing.T) {
	s := &Series{Columns: []string{"v"}}
	ts := time.Date(2017, 4, 6, 12, 0, 0, 0, time.Local)
	s.Append(ts.Add(time.Second), []float64{3})
	s.Append(ts, []float64{1})
	s.Append(ts, []float64{2})

	s.Sort()
	if s.Readings[0].Values[0] != 1 || s.Readings[1].Values[0] != 2 {
		t.Errorf("equal timestamps should keep ingest order, got %v then %v",
			s.Readings[0].Values[0], s.Readings[1].Values[0])
	}
	if s.Readings[2].Values[0] != 3 {
		t.Error("later timestamp should sort last")
	}
}

func TestParseTimestampReportsReason(t *testing.T) {
	good := ParseTimestamp("2017-04-06 15:45:00", "2006-01-02 15:04:05")
	if !good.Parsed() {
		t.Errorf("expected a parsed timestamp, got reason %q", good.Reason)
	}

	bad := ParseTimestamp("not a time", "2006-01-02 15:04:05")
	if bad.Parsed() {
		t.Error("expected an unparsable result")
	}
	if bad.Reason == "" {
		t.Error("unparsable result should carry a reason")
	}
}

func TestParseEpochMillis(t *testing.T) {
	result := ParseEpochMillis("1491493500500")
	if !result.Parsed() {
		t.Fatalf("expected a parsed timestamp, got reason %q", result.Reason)
	}
	if result.Timestamp.Unix() != 1491493500 {
		t.Errorf("expected 1491493500 seconds, got %d", result.Timestamp.Unix())
	}
	if result.Timestamp.Nanosecond() != 500*int(time.Millisecond) {
		t.Errorf("expected 500ms fraction, got %dns", result.Timestamp.Nanosecond())
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir, err := ioutil.TempDir("", "reading_test")
	if err != nil {
		t.Fatalf("unable to create temp dir: %s", err)
	}
	defer os.RemoveAll(dir)

	s := sampleSeries()
	path := filepath.Join(dir, "E4.csv")
	if err := s.Save(path); err != nil {
		t.Fatalf("unable to save series: %s", err)
	}

	loaded, err := Load(path, "E4", "accelerometer")
	if err != nil {
		t.Fatalf("unable to load series: %s", err)
	}
	if loaded.Len() != s.Len() {
		t.Fatalf("round trip lost readings: %d vs %d", loaded.Len(), s.Len())
	}
	for i := range s.Readings {
		if !loaded.Readings[i].Timestamp.Equal(s.Readings[i].Timestamp) {
			t.Errorf("row %d: timestamp changed in round trip", i)
		}
		if loaded.Readings[i].Values[0] != s.Readings[i].Values[0] {
			t.Errorf("row %d: value changed in round trip", i)
		}
	}
}
