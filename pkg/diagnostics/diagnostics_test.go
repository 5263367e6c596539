package diagnostics_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/moz60check/pkg/diagnostics"
)

const twoFiles = `Scanning /ext/a.js
/ext/a.js:3:7: Array comprehension syntax is removed
  CORRECT: arr.map(x => x * 2)
  WRONG: [for (x of arr) x * 2]
2 errors found.
Scanning /ext/b.js
0 errors found.
Scanning /ext/c.js
/ext/c.js:10:1: Legacy generator
/ext/c.js:10:1: Legacy generator
1 errors found.
`

func TestParse_BuildsReport_When_GivenToolOutput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want diagnostics.Report
	}{
		{
			name: "success: empty input yields empty report",
			raw:  "",
			want: diagnostics.Report{},
		},
		{
			name: "success: zero-error file has no entry",
			raw:  "Scanning /a/b.js\n0 errors found.\n",
			want: diagnostics.Report{},
		},
		{
			name: "success: single diagnostic keeps nonzero summary",
			raw:  "Scanning /a/b.js\n/a/b.js:1:2: message\n1 errors found.\n",
			want: diagnostics.Report{
				"/a/b.js": {"/a/b.js:1:2: message", "1 errors found."},
			},
		},
		{
			name: "success: lines partitioned by most recent scan with duplicates kept",
			raw:  twoFiles,
			want: diagnostics.Report{
				"/ext/a.js": {
					"/ext/a.js:3:7: Array comprehension syntax is removed",
					"  CORRECT: arr.map(x => x * 2)",
					"  WRONG: [for (x of arr) x * 2]",
					"2 errors found.",
				},
				"/ext/c.js": {
					"/ext/c.js:10:1: Legacy generator",
					"/ext/c.js:10:1: Legacy generator",
					"1 errors found.",
				},
			},
		},
		{
			name: "edge: lines before any scan marker are dropped",
			raw:  "stray output\nScanning /a.js\nboom\n",
			want: diagnostics.Report{"/a.js": {"boom"}},
		},
		{
			name: "edge: marker without path unsets the cursor",
			raw:  "Scanning /a.js\nx\nScanning \ny\n",
			want: diagnostics.Report{"/a.js": {"x"}},
		},
		{
			name: "edge: interior whitespace lines are retained",
			raw:  "Scanning /a.js\n   \n",
			want: diagnostics.Report{"/a.js": {"   "}},
		},
		{
			name: "edge: zero marker only matches exactly",
			raw:  "Scanning /a.js\n0 errors found. \n",
			want: diagnostics.Report{"/a.js": {"0 errors found. "}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := diagnostics.Parse(tc.raw)
			assert.Equal(t, tc.want, got)
			for path, lines := range got {
				assert.NotEmpty(t, lines, "entry for %s must not be empty", path)
			}
		})
	}
}

func TestParse_IsRepeatable_When_CalledTwice(t *testing.T) {
	t.Parallel()

	first := diagnostics.Parse(twoFiles)
	second := diagnostics.Parse(twoFiles)

	assert.Equal(t, first, second)

	first["/ext/a.js"] = append(first["/ext/a.js"], "mutated")
	assert.Len(t, second["/ext/a.js"], 4)
}

func TestReport_Helpers_When_Populated(t *testing.T) {
	t.Parallel()

	report := diagnostics.Parse(twoFiles)

	assert.False(t, report.Empty())
	assert.Equal(t, []string{"/ext/a.js", "/ext/c.js"}, report.Files())
	assert.Equal(t, 7, report.Count())
	assert.True(t, diagnostics.Report{}.Empty())
}

func TestClassify_ReturnsShape_When_GivenLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		line string
		want diagnostics.Kind
	}{
		{"/ext/a.js:1:2: msg", diagnostics.KindLocation},
		{"  CORRECT: foo()", diagnostics.KindRecommendation},
		{"3 errors found.", diagnostics.KindSummary},
		{"something else", diagnostics.KindOther},
	}

	for _, tc := range tests {
		t.Run(tc.want.String(), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, diagnostics.Classify(tc.line))
		})
	}
}

func TestParseLocation_DecodesFields_When_LineIsWellFormed(t *testing.T) {
	t.Parallel()

	loc, ok := diagnostics.ParseLocation("/ext/a.js", "/ext/a.js:3:7: let is reserved: use var")
	require.True(t, ok)
	assert.Equal(t, 3, loc.Line)
	assert.Equal(t, 7, loc.Column)
	assert.Equal(t, " let is reserved: use var", loc.Message)

	_, ok = diagnostics.ParseLocation("/ext/a.js", "/ext/a.js:x:7: bad")
	assert.False(t, ok)

	_, ok = diagnostics.ParseLocation("/ext/a.js", "/other.js:1:2: wrong file")
	assert.False(t, ok)
}
