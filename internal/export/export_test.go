package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"marquee/internal/film"
	"marquee/internal/logging"
)

func sampleRecords() []*film.Record {
	return []*film.Record{
		{
			Title:       "The Long Waves",
			Director:    "Mira Santos",
			Year:        "2025",
			Country:     "Portugal",
			Runtime:     "1h 52m",
			Description: "A lighthouse keeper's final season.",
			Showtimes: []film.Showtime{
				{Date: "Saturday, September 27", Time: "6:00 PM", Venue: "Alice Tully Hall", Available: true},
				{Date: "Sunday, September 28", Time: "3:15 PM", Venue: film.DefaultVenue, Notes: []string{"Q&A with director"}, Available: false},
			},
			ProductionCompanies: []string{"Atlantic Films", "Mare Alta"},
			Distributors:        []string{"Coastal Releasing"},
			IMDbID:              "tt0123456",
			Category:            film.CategoryFeature,
			DistributionScore:   80,
			LikelyDistributed:   true,
			TrailerURL:          "https://www.youtube.com/watch?v=abc123",
			TrailerSearchURL:    "https://www.youtube.com/results?search_query=the+long+waves",
		},
		{
			Title:        "Currents Shorts Program 2",
			Category:     film.CategoryShorts,
			ShortProgram: true,
			Notes:        "Shorts program; Limited distribution expected",
		},
	}
}

func newTestWriter() *Writer {
	w := NewWriter(logging.NewNop())
	w.now = func() time.Time {
		return time.Date(2025, time.September, 1, 12, 30, 0, 0, time.UTC)
	}
	return w
}

func TestCSVOneRowPerShowtime(t *testing.T) {
	var buf bytes.Buffer
	if err := newTestWriter().CSV(&buf, sampleRecords()); err != nil {
		t.Fatalf("CSV failed: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected header + 3 rows, got %d rows", len(rows))
	}
	if len(rows[0]) != len(csvHeader) || rows[0][0] != "Title" || rows[0][22] != "Notes" {
		t.Errorf("unexpected header row: %v", rows[0])
	}

	first := rows[1]
	if first[0] != "The Long Waves" || first[6] != "Saturday, September 27" || first[7] != "6:00 PM" {
		t.Errorf("unexpected first showtime row: %v", first)
	}
	if first[10] != "TRUE" || first[14] != "TRUE" {
		t.Errorf("expected available and likely flags TRUE, got %q / %q", first[10], first[14])
	}
	if first[11] != "Atlantic Films; Mare Alta" {
		t.Errorf("companies join = %q", first[11])
	}

	second := rows[2]
	if second[9] != "Q&A with director" || second[10] != "FALSE" {
		t.Errorf("unexpected second showtime row: %v", second)
	}

	// Film without showtimes still gets one row with blank schedule columns.
	shorts := rows[3]
	if shorts[0] != "Currents Shorts Program 2" {
		t.Errorf("unexpected shorts row title %q", shorts[0])
	}
	for _, col := range []int{6, 7, 8, 9, 10} {
		if shorts[col] != "" {
			t.Errorf("expected blank showtime column %d, got %q", col, shorts[col])
		}
	}
	if shorts[17] != "TRUE" || shorts[21] != film.CategoryShorts {
		t.Errorf("unexpected shorts flags: %v", shorts)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := newTestWriter().JSON(&buf, sampleRecords()); err != nil {
		t.Fatalf("JSON failed: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "[\n  {\n") {
		t.Errorf("expected indented array output, got prefix %q", buf.String()[:10])
	}

	var decoded []*film.Record
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("unmarshal output: %v", err)
	}
	if len(decoded) != 2 || decoded[0].Title != "The Long Waves" {
		t.Fatalf("unexpected decoded records: %+v", decoded)
	}
	if len(decoded[0].Showtimes) != 2 || decoded[0].Showtimes[1].Available {
		t.Errorf("showtimes did not round-trip: %+v", decoded[0].Showtimes)
	}
}

func TestJSONEmptyListsNeverNull(t *testing.T) {
	var buf bytes.Buffer
	if err := newTestWriter().JSON(&buf, sampleRecords()); err != nil {
		t.Fatalf("JSON failed: %v", err)
	}
	got := buf.String()

	// The shorts record carries no showtimes or companies; it must still
	// serialize them as arrays.
	for _, want := range []string{
		`"showtimes": []`,
		`"production_companies": []`,
		`"distributors": []`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("json missing %q", want)
		}
	}
	if strings.Contains(got, "null") {
		t.Error("expected no null list fields in export")
	}
}

func TestMarkdownLayout(t *testing.T) {
	var buf bytes.Buffer
	if err := newTestWriter().Markdown(&buf, sampleRecords()); err != nil {
		t.Fatalf("Markdown failed: %v", err)
	}
	got := buf.String()

	for _, want := range []string{
		"# Festival Film Lineup",
		"Generated on: 2025-09-01 12:30:00",
		"Total films: 2",
		"## The Long Waves",
		"**Director:** Mira Santos",
		"**Details:** 2025 | Portugal | 1h 52m",
		"- Saturday, September 27 at 6:00 PM (Alice Tully Hall)",
		"- Sunday, September 28 at 3:15 PM - Q&A with director - **SOLD OUT**",
		"**Category:** Feature",
		"**Likely Distribution:** Yes",
		"[IMDb](https://www.imdb.com/title/tt0123456/)",
		"[Trailer](https://www.youtube.com/watch?v=abc123)",
		"| Title | Director | Year | Category | Score | Likely |",
		"## Currents Shorts Program 2",
		"**Showtimes:** TBA",
		"**Distributors:** Not yet acquired",
		"**Special Notes:** Shorts Program",
		"**Likely Distribution:** Limited",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
	if strings.Contains(got, "(TBA)") {
		t.Error("default venue should be omitted from showtime lines")
	}
}

func TestWriteAll(t *testing.T) {
	dir := t.TempDir()
	paths, err := newTestWriter().WriteAll(sampleRecords(), dir, "lineup", nil)
	if err != nil {
		t.Fatalf("WriteAll failed: %v", err)
	}
	if len(paths) != 3 {
		t.Fatalf("expected 3 files, got %d", len(paths))
	}
	for _, ext := range []string{".json", ".csv", ".md"} {
		path := filepath.Join(dir, "lineup"+ext)
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("missing export %s: %v", path, err)
		}
		if info.Size() == 0 {
			t.Errorf("export %s is empty", path)
		}
	}
}

func TestWriteAllUnknownFormat(t *testing.T) {
	_, err := newTestWriter().WriteAll(nil, t.TempDir(), "lineup", []string{"xml"})
	if err == nil || !strings.Contains(err.Error(), "unknown export format") {
		t.Fatalf("expected unknown format error, got %v", err)
	}
}
