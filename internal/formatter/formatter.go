// package formatter renders sync reports as tables, CSV, Markdown and JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/desertthunder/syncx/internal/shared"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Format selects a report renderer.
type Format string

const (
	FormatTable    Format = "table"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// Formats lists the accepted values of [ParseFormat].
var Formats = []Format{FormatTable, FormatCSV, FormatMarkdown, FormatJSON}

// ParseFormat accepts a format name case-insensitively; "md" is an alias for markdown.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatCSV, FormatMarkdown, FormatJSON:
		return f, nil
	case "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("%w: report format %q", shared.ErrInvalidFlag, s)
	}
}

// Status of a [Row].
const (
	StatusAdded    = "added"
	StatusExisting = "existing"
	StatusPending  = "pending"
	StatusNoMatch  = "no match"
	StatusSkipped  = "skipped"
)

// Row is one source track in a report.
type Row struct {
	Index   int     `json:"index"`
	Source  string  `json:"source"`
	Match   string  `json:"match,omitempty"`
	MatchID string  `json:"match_id,omitempty"`
	Risk    float64 `json:"risk"`
	Status  string  `json:"status"`
	Reason  string  `json:"reason,omitempty"`
}

// Report is a flattened sync result.
type Report struct {
	RunID    string `json:"run_id"`
	Source   string `json:"source"`
	Dest     string `json:"dest"`
	Matched  int    `json:"matched"`
	Existing int    `json:"existing"`
	Added    int    `json:"added"`
	Skipped  int    `json:"skipped"`
	DryRun   bool   `json:"dry_run"`
	Error    string `json:"error,omitempty"`
	Rows     []Row  `json:"rows"`
}

// Unmatched counts rows without an accepted candidate.
func (r Report) Unmatched() int {
	n := 0
	for _, row := range r.Rows {
		if row.Status == StatusNoMatch {
			n++
		}
	}
	return n
}

// Summary is the three-count line printed after a run.
func (r Report) Summary() string {
	return fmt.Sprintf("matched: %d, already present: %d, added: %d", r.Matched, r.Existing, r.Added)
}

// Write renders reports to w in the given format.
func Write(w io.Writer, reports []Report, f Format) error {
	var (
		data []byte
		err  error
	)
	switch f {
	case FormatCSV:
		data, err = ToCSV(reports)
	case FormatMarkdown:
		data = ToMarkdown(reports)
	case FormatJSON:
		data, err = shared.MarshalJSON(reports, true)
	case FormatTable, "":
		data = []byte(ToTable(reports))
	default:
		return fmt.Errorf("%w: report format %q", shared.ErrInvalidFlag, f)
	}
	if err != nil {
		return err
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// WriteFile renders reports to path, creating parent directories.
func WriteFile(path string, reports []Report, f Format) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := Write(&buf, reports, f); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write report file: %w", err)
	}
	return nil
}

// ToTable renders one rounded table per report followed by its summary line.
func ToTable(reports []Report) string {
	var sb strings.Builder
	for i, r := range reports {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "%s -> %s\n", r.Source, r.Dest)

		tw := table.NewWriter()
		tw.SetStyle(table.StyleRounded)
		tw.AppendHeader(table.Row{"#", "Source", "Match", "Risk", "Status"})
		for _, row := range r.Rows {
			status := row.Status
			if row.Reason != "" {
				status += ": " + row.Reason
			}
			tw.AppendRow(table.Row{row.Index, row.Source, row.Match, formatRisk(row), status})
		}
		tw.SetColumnConfigs([]table.ColumnConfig{
			{Number: 1, Align: text.AlignRight},
			{Number: 4, Align: text.AlignRight},
		})
		sb.WriteString(tw.Render())
		sb.WriteString("\n")
		sb.WriteString(r.Summary())
		if r.DryRun {
			sb.WriteString(" (dry run)")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// ToCSV writes every row of every report with columns: run, source, dest, index, track, match, match_id, risk, status, reason
func ToCSV(reports []Report) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"run", "source", "dest", "index", "track", "match", "match_id", "risk", "status", "reason"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, r := range reports {
		for _, row := range r.Rows {
			record := []string{
				r.RunID,
				r.Source,
				r.Dest,
				strconv.Itoa(row.Index),
				row.Source,
				row.Match,
				row.MatchID,
				formatRisk(row),
				row.Status,
				row.Reason,
			}
			if err := writer.Write(record); err != nil {
				return nil, fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

// ToMarkdown renders a section per report with a summary and the unmatched tracks.
func ToMarkdown(reports []Report) []byte {
	var buf bytes.Buffer
	for _, r := range reports {
		fmt.Fprintf(&buf, "# %s → %s\n\n", r.Source, r.Dest)
		if r.DryRun {
			buf.WriteString("_Dry run, nothing was written._\n\n")
		}
		if r.Error != "" {
			fmt.Fprintf(&buf, "**Error**: %s\n\n", r.Error)
		}
		fmt.Fprintf(&buf, "- **Matched**: %d\n", r.Matched)
		fmt.Fprintf(&buf, "- **Already present**: %d\n", r.Existing)
		fmt.Fprintf(&buf, "- **Added**: %d\n", r.Added)
		fmt.Fprintf(&buf, "- **Unmatched**: %d\n", r.Unmatched())
		fmt.Fprintf(&buf, "- **Skipped**: %d\n\n", r.Skipped)

		if len(r.Rows) == 0 {
			continue
		}
		buf.WriteString("## Tracks\n\n")
		buf.WriteString("| # | Track | Match | Risk | Status |\n")
		buf.WriteString("|---:|---|---|---:|---|\n")
		for _, row := range r.Rows {
			status := row.Status
			if row.Reason != "" {
				status += " (" + row.Reason + ")"
			}
			fmt.Fprintf(&buf, "| %d | %s | %s | %s | %s |\n",
				row.Index, escapeCell(row.Source), escapeCell(row.Match), formatRisk(row), escapeCell(status))
		}
		buf.WriteString("\n")
	}
	return buf.Bytes()
}

func formatRisk(row Row) string {
	if row.Match == "" {
		return "-"
	}
	return strconv.FormatFloat(row.Risk, 'f', 3, 64)
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
