// Package export writes finished lineup records to JSON, CSV, and
// Markdown files under a configured output directory.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"marquee/internal/film"
	"marquee/internal/logging"
)

// Format names accepted by the writer.
const (
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
)

// AllFormats lists every supported output format.
var AllFormats = []string{FormatJSON, FormatCSV, FormatMarkdown}

// Writer renders records into output files.
type Writer struct {
	logger *slog.Logger
	now    func() time.Time
	titler cases.Caser
}

// NewWriter constructs a Writer logging through logger.
func NewWriter(logger *slog.Logger) *Writer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Writer{
		logger: logger,
		now:    time.Now,
		titler: cases.Title(language.English),
	}
}

// WriteAll writes records in every requested format, returning the paths
// written. The files are named <baseName>.<ext> under outputDir.
func (w *Writer) WriteAll(records []*film.Record, outputDir, baseName string, formats []string) ([]string, error) {
	if len(formats) == 0 {
		formats = AllFormats
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	var paths []string
	for _, format := range formats {
		var path string
		var err error
		switch format {
		case FormatJSON:
			path = filepath.Join(outputDir, baseName+".json")
			err = w.writeFile(path, func(f io.Writer) error { return w.JSON(f, records) })
		case FormatCSV:
			path = filepath.Join(outputDir, baseName+".csv")
			err = w.writeFile(path, func(f io.Writer) error { return w.CSV(f, records) })
		case FormatMarkdown:
			path = filepath.Join(outputDir, baseName+".md")
			err = w.writeFile(path, func(f io.Writer) error { return w.Markdown(f, records) })
		default:
			return paths, fmt.Errorf("unknown export format %q", format)
		}
		if err != nil {
			return paths, fmt.Errorf("write %s export: %w", format, err)
		}
		w.logger.Info("wrote export",
			logging.String("format", format),
			logging.String("path", path),
			logging.Int("films", len(records)))
		paths = append(paths, path)
	}
	return paths, nil
}

func (w *Writer) writeFile(path string, render func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := render(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// JSON writes the records as an indented JSON array. Nil list fields are
// encoded as empty arrays so enriched and unenriched films share one shape.
func (w *Writer) JSON(out io.Writer, records []*film.Record) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	normalized := make([]*film.Record, 0, len(records))
	for _, record := range records {
		r := *record
		if r.Showtimes == nil {
			r.Showtimes = []film.Showtime{}
		}
		if r.ProductionCompanies == nil {
			r.ProductionCompanies = []string{}
		}
		if r.Distributors == nil {
			r.Distributors = []string{}
		}
		normalized = append(normalized, &r)
	}
	return enc.Encode(normalized)
}

// csvHeader is the fixed column order of the CSV export.
var csvHeader = []string{
	"Title", "Director", "Year", "Country", "Runtime", "Description",
	"Date", "Time", "Venue", "Showtime_Notes", "Available",
	"Production_Companies", "Distributors", "IMDB_ID",
	"Likely_Theatrical", "Trailer_URL", "YouTube_Search_URL",
	"Is_Short_Program", "Is_Restoration", "Is_Likely_To_Be_Distributed",
	"Has_Intro_Or_QnA", "Category", "Notes",
}

// CSV writes one row per showtime. A film with no showtimes still gets a
// single row with the showtime columns left blank.
func (w *Writer) CSV(out io.Writer, records []*film.Record) error {
	cw := csv.NewWriter(out)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, record := range records {
		base := []string{
			record.Title,
			record.Director,
			record.Year,
			record.Country,
			record.Runtime,
			record.Description,
		}
		tail := []string{
			strings.Join(record.ProductionCompanies, "; "),
			strings.Join(record.Distributors, "; "),
			record.IMDbID,
			csvBool(record.LikelyDistributed),
			record.TrailerURL,
			record.TrailerSearchURL,
			csvBool(record.ShortProgram),
			csvBool(record.Restoration),
			csvBool(record.LikelyDistributed),
			csvBool(record.IntroOrQnA),
			category(record),
			record.Notes,
		}

		if len(record.Showtimes) == 0 {
			row := append(append([]string{}, base...), "", "", "", "", "")
			row = append(row, tail...)
			if err := cw.Write(row); err != nil {
				return err
			}
			continue
		}
		for _, showtime := range record.Showtimes {
			row := append(append([]string{}, base...),
				showtime.Date,
				showtime.Time,
				showtime.Venue,
				strings.Join(showtime.Notes, "; "),
				csvBool(showtime.Available),
			)
			row = append(row, tail...)
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

// Markdown writes a human-readable lineup report.
func (w *Writer) Markdown(out io.Writer, records []*film.Record) error {
	var b strings.Builder
	b.WriteString("# Festival Film Lineup\n\n")
	fmt.Fprintf(&b, "Generated on: %s\n\n", w.now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Total films: %d\n\n", len(records))

	if len(records) > 0 {
		b.WriteString(w.overviewTable(records))
		b.WriteString("\n\n")
	}

	for _, record := range records {
		title := record.Title
		if title == "" {
			title = "Unknown Title"
		}
		fmt.Fprintf(&b, "## %s\n\n", title)

		if record.Director != "" {
			fmt.Fprintf(&b, "**Director:** %s\n\n", record.Director)
		}

		var details []string
		for _, item := range []string{record.Year, record.Country, record.Runtime} {
			if item != "" {
				details = append(details, item)
			}
		}
		if len(details) > 0 {
			fmt.Fprintf(&b, "**Details:** %s\n\n", strings.Join(details, " | "))
		}

		if record.Description != "" {
			fmt.Fprintf(&b, "**Description:** %s\n\n", record.Description)
		}

		if len(record.Showtimes) > 0 {
			b.WriteString("**Showtimes:**\n")
			for _, showtime := range record.Showtimes {
				date := showtime.Date
				if date == "" {
					date = "TBA"
				}
				line := "- " + date
				if showtime.Time != "" {
					line += " at " + showtime.Time
				}
				if showtime.Venue != "" && showtime.Venue != film.DefaultVenue {
					line += " (" + showtime.Venue + ")"
				}
				if len(showtime.Notes) > 0 {
					line += " - " + strings.Join(showtime.Notes, ", ")
				}
				if !showtime.Available {
					line += " - **SOLD OUT**"
				}
				b.WriteString(line + "\n")
			}
			b.WriteString("\n")
		} else {
			b.WriteString("**Showtimes:** TBA\n\n")
		}

		if len(record.ProductionCompanies) > 0 {
			b.WriteString("**Production Companies:**\n")
			for _, company := range record.ProductionCompanies {
				b.WriteString("- " + company + "\n")
			}
			b.WriteString("\n")
		}

		if len(record.Distributors) > 0 {
			b.WriteString("**Distributors:**\n")
			for _, distributor := range record.Distributors {
				b.WriteString("- " + distributor + "\n")
			}
			b.WriteString("\n")
		} else {
			b.WriteString("**Distributors:** Not yet acquired\n\n")
		}

		fmt.Fprintf(&b, "**Category:** %s\n\n", w.titler.String(category(record)))

		var flags []string
		if record.ShortProgram {
			flags = append(flags, "Shorts Program")
		}
		if record.Restoration {
			flags = append(flags, "Restoration/Revival")
		}
		if record.IntroOrQnA {
			flags = append(flags, "Includes Intro/Q&A")
		}
		if len(flags) > 0 {
			fmt.Fprintf(&b, "**Special Notes:** %s\n\n", strings.Join(flags, ", "))
		}

		likelihood := "Limited"
		if record.LikelyDistributed {
			likelihood = "Yes"
		}
		fmt.Fprintf(&b, "**Likely Distribution:** %s\n\n", likelihood)

		if record.Notes != "" {
			fmt.Fprintf(&b, "**Notes:** %s\n\n", record.Notes)
		}

		var links []string
		if record.IMDbID != "" {
			links = append(links, fmt.Sprintf("[IMDb](https://www.imdb.com/title/%s/)", record.IMDbID))
		}
		if record.TrailerURL != "" {
			links = append(links, fmt.Sprintf("[Trailer](%s)", record.TrailerURL))
		} else if record.TrailerSearchURL != "" {
			links = append(links, fmt.Sprintf("[Search for Trailer](%s)", record.TrailerSearchURL))
		}
		if len(links) > 0 {
			fmt.Fprintf(&b, "**Links:** %s\n\n", strings.Join(links, " | "))
		}

		b.WriteString("---\n\n")
	}

	_, err := io.WriteString(out, b.String())
	return err
}

// overviewTable renders a markdown summary of the whole lineup.
func (w *Writer) overviewTable(records []*film.Record) string {
	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"Title", "Director", "Year", "Category", "Score", "Likely"})
	for _, record := range records {
		likely := "Limited"
		if record.LikelyDistributed {
			likely = "Yes"
		}
		tw.AppendRow(table.Row{
			record.Title,
			record.Director,
			record.Year,
			w.titler.String(category(record)),
			record.DistributionScore,
			likely,
		})
	}
	return tw.RenderMarkdown()
}

func category(record *film.Record) string {
	if record.Category == "" {
		return film.CategoryFeature
	}
	return record.Category
}

func csvBool(v bool) string {
	if v {
		return "TRUE"
	}
	return "FALSE"
}
