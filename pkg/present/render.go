package present

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dkoosis/moz60check/pkg/diagnostics"
	"github.com/dkoosis/moz60check/pkg/jsonl"
	"github.com/dkoosis/moz60check/pkg/target"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	subtitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	fileStyle     = lipgloss.NewStyle().Bold(true)
	locationStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
	exampleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	markerStyle   = lipgloss.NewStyle().Bold(true)
	bodyStyle     = lipgloss.NewStyle().MarginLeft(2)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

// ErrorText is shown when the hand-off payload cannot be read.
func ErrorText(id string) string {
	return fmt.Sprintf("Error reading moz60tool output for %s", id)
}

// ReadReport decodes the single-line hand-off payload.
func ReadReport(r io.Reader) (diagnostics.Report, error) {
	var report diagnostics.Report
	if err := jsonl.ReadLine(r, &report); err != nil {
		return nil, err
	}
	return report, nil
}

// Render writes report for t in the layout of the results dialog: a title,
// then one section per file headed by its path relative to the target.
func Render(w io.Writer, t target.Target, report diagnostics.Report) error {
	var b strings.Builder

	b.WriteString(titleStyle.Render(t.DisplayName()))
	b.WriteString("\n")
	sub := t.ID
	if t.URL != "" {
		sub += "  " + t.URL
	}
	b.WriteString(subtitleStyle.Render(sub))
	b.WriteString("\n")

	for _, path := range report.Files() {
		header := relativeName(path, t.ID)
		var body []string

		for _, line := range report[path] {
			switch diagnostics.Classify(line) {
			case diagnostics.KindLocation:
				body = append(body, "", renderLocation(path, line))
			case diagnostics.KindRecommendation:
				body = append(body, renderRecommendation(line))
			case diagnostics.KindSummary:
				header = header + " - " + line
			default:
				body = append(body, line)
			}
		}

		b.WriteString("\n")
		b.WriteString(fileStyle.Render(header))
		b.WriteString("\n")
		if len(body) > 0 {
			b.WriteString(bodyStyle.Render(strings.Join(body, "\n")))
			b.WriteString("\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// RenderError writes the generic failure state for t.
func RenderError(w io.Writer, t target.Target) error {
	_, err := fmt.Fprintln(w, errorStyle.Render(ErrorText(t.ID)))
	return err
}

// Show reads one payload from r and renders it to w, falling back to the
// error state when the payload is empty or malformed. When hold is set it
// blocks until ctx is done, standing in for a window the user closes.
func Show(ctx context.Context, r io.Reader, w io.Writer, t target.Target, hold bool) error {
	report, err := ReadReport(r)
	if err != nil {
		if rerr := RenderError(w, t); rerr != nil {
			return rerr
		}
	} else if err := Render(w, t, report); err != nil {
		return err
	}

	if hold {
		<-ctx.Done()
	}
	return nil
}

// relativeName returns the part of path after the "/<id>/" component, or
// path itself when id is not a whole component.
func relativeName(path, id string) string {
	if id == "" {
		return path
	}
	marker := "/" + id + "/"
	if i := strings.Index(path, marker); i >= 0 {
		if rest := path[i+len(marker):]; rest != "" {
			return rest
		}
	}
	return path
}

func renderLocation(path, line string) string {
	loc, ok := diagnostics.ParseLocation(path, line)
	if !ok {
		return locationStyle.Render(line)
	}
	text := fmt.Sprintf("Line %d, Column %d:%s", loc.Line, loc.Column, loc.Message)
	return locationStyle.Render(text) + " " + subtitleStyle.Render("file://"+path)
}

func renderRecommendation(line string) string {
	line = strings.Replace(line, "CORRECT:", markerStyle.Render("CORRECT:"), 1)
	line = strings.Replace(line, "WRONG:", markerStyle.Render("WRONG:"), 1)
	return exampleStyle.Render(line)
}
