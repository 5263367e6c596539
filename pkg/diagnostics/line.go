package diagnostics

import (
	"strconv"
	"strings"
)

// Kind is the shape of a diagnostic line as moz60tool emits it.
type Kind int

const (
	// KindOther is any line without a recognized shape.
	KindOther Kind = iota
	// KindLocation is "<path>:<line>:<column>:<message>".
	KindLocation
	// KindRecommendation is an indented CORRECT:/WRONG: example.
	KindRecommendation
	// KindSummary is the trailing "<N> errors found." count.
	KindSummary
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindLocation:
		return "location"
	case KindRecommendation:
		return "recommendation"
	case KindSummary:
		return "summary"
	default:
		return "other"
	}
}

// Classify returns the shape of a single diagnostic line. Shapes are tested in
// the order location, recommendation, summary.
func Classify(line string) Kind {
	switch {
	case strings.HasPrefix(line, "/"):
		return KindLocation
	case strings.HasPrefix(line, "  "):
		return KindRecommendation
	case strings.HasSuffix(line, "found."):
		return KindSummary
	default:
		return KindOther
	}
}

// Location is a decoded KindLocation line.
type Location struct {
	Line    int
	Column  int
	Message string
}

// ParseLocation decodes a location line reported for path. The first
// occurrence of path is removed and the remainder is split on colons; colons
// inside the message are preserved.
func ParseLocation(path, line string) (Location, bool) {
	rest := strings.Replace(line, path, "", 1)
	parts := strings.SplitN(rest, ":", 4)
	if len(parts) != 4 || parts[0] != "" {
		return Location{}, false
	}

	ln, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Location{}, false
	}
	col, err := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err != nil {
		return Location{}, false
	}

	return Location{Line: ln, Column: col, Message: parts[3]}, true
}
