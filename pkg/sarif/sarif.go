// Package sarif renders moz60tool reports as SARIF 2.1.0 logs, one run per
// checked extension.
package sarif

import (
	"encoding/json"
	"io"
)

const (
	// Version is the SARIF schema version.
	Version = "2.1.0"
	// SchemaURI is written to every log.
	SchemaURI = "https://json.schemastore.org/sarif-2.1.0.json"
)

// Result levels.
const (
	LevelError = "error"
	LevelNote  = "note"
)

// Log is the top-level SARIF document.
type Log struct {
	Version string `json:"version"`
	Schema  string `json:"$schema,omitempty"`
	Runs    []Run  `json:"runs"`
}

// Run holds the results for one extension; AutomationDetails.ID is its uuid.
type Run struct {
	Tool              Tool               `json:"tool"`
	AutomationDetails *AutomationDetails `json:"automationDetails,omitempty"`
	Results           []Result           `json:"results,omitempty"`
}

// AutomationDetails identifies what a run analyzed.
type AutomationDetails struct {
	ID string `json:"id"`
}

// Tool describes the analysis tool.
type Tool struct {
	Driver Driver `json:"driver"`
}

// Driver carries the tool identity and the rules its results reference.
type Driver struct {
	Name           string                `json:"name"`
	Version        string                `json:"version,omitempty"`
	InformationURI string                `json:"informationUri,omitempty"`
	Rules          []ReportingDescriptor `json:"rules,omitempty"`
}

// ReportingDescriptor documents a rule referenced by results.
type ReportingDescriptor struct {
	ID               string   `json:"id"`
	ShortDescription *Message `json:"shortDescription,omitempty"`
}

// Result is a single finding.
type Result struct {
	RuleID    string     `json:"ruleId"`
	Level     string     `json:"level,omitempty"`
	Message   Message    `json:"message"`
	Locations []Location `json:"locations,omitempty"`
}

// Message contains the finding's text.
type Message struct {
	Text string `json:"text"`
}

// Location describes where a result was found.
type Location struct {
	PhysicalLocation PhysicalLocation `json:"physicalLocation"`
}

// PhysicalLocation describes a file location.
type PhysicalLocation struct {
	ArtifactLocation ArtifactLocation `json:"artifactLocation"`
	Region           *Region          `json:"region,omitempty"`
}

// ArtifactLocation holds a file URI.
type ArtifactLocation struct {
	URI string `json:"uri"`
}

// Region is a 1-based position in a source file.
type Region struct {
	StartLine   int `json:"startLine,omitempty"`
	StartColumn int `json:"startColumn,omitempty"`
}

// NewLog returns a log holding runs. Runs is never nil.
func NewLog(runs ...Run) *Log {
	if runs == nil {
		runs = []Run{}
	}
	return &Log{Version: Version, Schema: SchemaURI, Runs: runs}
}

// Add appends a run.
func (l *Log) Add(run Run) {
	l.Runs = append(l.Runs, run)
}

// ResultCount returns the number of results across all runs.
func (l *Log) ResultCount() int {
	n := 0
	for _, r := range l.Runs {
		n += len(r.Results)
	}
	return n
}

// Encode writes log to w as indented JSON. HTML characters in messages are
// left unescaped.
func Encode(w io.Writer, log *Log) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(log)
}
