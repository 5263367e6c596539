package sarif

import (
	"strings"

	"github.com/dkoosis/moz60check/pkg/diagnostics"
	"github.com/dkoosis/moz60check/pkg/target"
)

// Rule IDs emitted for moz60tool output.
const (
	RuleMigration = "moz60-migration"
	RuleOutput    = "moz60-output"
)

// DriverName identifies moz60check in SARIF runs.
const DriverName = "moz60check"

// FromReport converts the diagnostics for one target into a SARIF run.
// Location lines become error results; recommendation lines are appended to
// the preceding result's message; summary lines are dropped; any other line
// becomes a note on the file.
func FromReport(t target.Target, report diagnostics.Report, toolURI string) Run {
	run := Run{Tool: Tool{Driver: Driver{
		Name:           DriverName,
		InformationURI: toolURI,
		Rules: []ReportingDescriptor{
			{ID: RuleMigration, ShortDescription: &Message{Text: "Syntax removed in SpiderMonkey 60"}},
			{ID: RuleOutput, ShortDescription: &Message{Text: "Unclassified moz60tool output"}},
		},
	}}}
	run.AutomationDetails = &AutomationDetails{ID: t.ID}

	for _, path := range report.Files() {
		last := -1
		for _, line := range report[path] {
			switch diagnostics.Classify(line) {
			case diagnostics.KindLocation:
				run.Results = append(run.Results, locationResult(path, line))
				last = len(run.Results) - 1
			case diagnostics.KindRecommendation:
				if last >= 0 {
					run.Results[last].Message.Text += "\n" + strings.TrimSpace(line)
					continue
				}
				run.Results = append(run.Results, noteResult(path, line))
			case diagnostics.KindSummary:
			default:
				run.Results = append(run.Results, noteResult(path, line))
				last = -1
			}
		}
	}
	return run
}

func locationResult(path, line string) Result {
	res := Result{
		RuleID:  RuleMigration,
		Level:   LevelError,
		Message: Message{Text: line},
		Locations: []Location{{PhysicalLocation: PhysicalLocation{
			ArtifactLocation: ArtifactLocation{URI: fileURI(path)},
		}}},
	}
	if loc, ok := diagnostics.ParseLocation(path, line); ok {
		res.Message.Text = strings.TrimSpace(loc.Message)
		res.Locations[0].PhysicalLocation.Region = &Region{StartLine: loc.Line, StartColumn: loc.Column}
	}
	return res
}

func noteResult(path, line string) Result {
	return Result{
		RuleID:  RuleOutput,
		Level:   LevelNote,
		Message: Message{Text: strings.TrimSpace(line)},
		Locations: []Location{{PhysicalLocation: PhysicalLocation{
			ArtifactLocation: ArtifactLocation{URI: fileURI(path)},
		}}},
	}
}

func fileURI(path string) string {
	if strings.HasPrefix(path, "/") {
		return "file://" + path
	}
	return path
}
