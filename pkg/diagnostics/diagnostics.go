// Package diagnostics parses moz60tool output into per-file diagnostic lines.
package diagnostics

import (
	"sort"
	"strings"
)

const (
	scanMarker = "Scanning "
	zeroMarker = "0 errors found."
)

// Report maps a scanned source path to the raw diagnostic lines emitted for it,
// in emission order. A file with no diagnostics has no entry.
type Report map[string][]string

// Parse turns the concatenated stdout of one or more moz60tool runs into a
// Report. It never fails: unrecognized input is dropped.
//
// Lines seen before the first "Scanning" marker have no file to belong to and
// are discarded.
func Parse(raw string) Report {
	report := Report{}
	current := ""

	for _, line := range strings.Split(raw, "\n") {
		switch {
		case strings.HasPrefix(line, scanMarker):
			current = scannedPath(line)
		case line == zeroMarker:
		case line == "":
		default:
			if current == "" {
				continue
			}
			report[current] = append(report[current], line)
		}
	}

	return report
}

func scannedPath(line string) string {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return ""
	}
	return fields[1]
}

// Empty reports whether no file has diagnostics.
func (r Report) Empty() bool {
	return len(r) == 0
}

// Files returns the report's paths sorted lexically.
func (r Report) Files() []string {
	files := make([]string, 0, len(r))
	for path := range r {
		files = append(files, path)
	}
	sort.Strings(files)
	return files
}

// Count returns the total number of diagnostic lines across all files.
func (r Report) Count() int {
	n := 0
	for _, lines := range r {
		n += len(lines)
	}
	return n
}
