package verify

import (
	"context"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seolcoding/excelweb/pkg/excelweb/models"
)

func TestNormalizeDisplay(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"500,000", "500000"},
		{"₩1,234원", "1234"},
		{"$99.50", "99.50"},
		{"  42  ", "42"},
		{"3.5%", "3.5"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeDisplay(tt.in), "NormalizeDisplay(%q)", tt.in)
	}
}

func TestValuesMatch(t *testing.T) {
	tests := []struct {
		name      string
		expected  any
		actual    string
		tolerance float64
		want      bool
	}{
		{"formatted number within tolerance", 500000.0, "500,000", 1e-4, true},
		{"currency decoration", 500000.0, "₩500,000원", 1e-4, true},
		{"number off by more than tolerance", 500000.0, "500,100", 1e-4, false},
		{"tolerance absorbs rounding", 0.3333, "0.333", 1e-3, true},
		{"integer expected", int64(42), "42", 1e-4, true},
		{"string exact", "high", "high", 0, true},
		{"string trimmed", "high", "  high  ", 0, true},
		{"string mismatch", "high", "low", 0, false},
		{"boolean as number", true, "1", 0, true},
		{"non numeric actual", 42.0, "oops", 1e-4, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, valuesMatch(tt.expected, tt.actual, tt.tolerance))
		})
	}
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "500000", formatValue(500000.0))
	assert.Equal(t, "0.1", formatValue(0.1))
	assert.Equal(t, "5", formatValue(int64(5)))
	assert.Equal(t, "7", formatValue(7))
	assert.Equal(t, "true", formatValue(true))
	assert.Equal(t, "text", formatValue("text"))
	assert.Equal(t, "", formatValue(nil))
}

// The label pattern travels to the page and is compiled there as a
// JavaScript RegExp, which rejects Go inline-flag groups like (?i). Pin
// the slash-delimited form so the fallback cannot silently stop
// matching.
func TestCalculateLabelPatternIsJSRegExp(t *testing.T) {
	require.True(t, strings.HasPrefix(calculateLabelPattern, "/"))
	i := strings.LastIndex(calculateLabelPattern, "/")
	require.Greater(t, i, 0)

	body, flags := calculateLabelPattern[1:i], calculateLabelPattern[i+1:]
	assert.Equal(t, "i", flags)
	assert.NotContains(t, body, "(?", "inline groups do not compile as a JavaScript RegExp")

	re := regexp.MustCompile("(?i)" + body)
	assert.True(t, re.MatchString("Calculate"))
	assert.True(t, re.MatchString("계산하기"))
	assert.False(t, re.MatchString("reset"))
}

func TestCellSelectors(t *testing.T) {
	got := CellSelectors("B10")
	want := []string{
		`[data-cell="B10"]`,
		"#b10",
		`[name="b10"]`,
		`[id*="b10"]`,
	}
	assert.Equal(t, want, got)
}

func TestArtifactBundle(t *testing.T) {
	base := `<html><head></head><body><p>hi</p></body></html>`

	t.Run("embeds css and js", func(t *testing.T) {
		a := Artifact{HTML: base, CSS: "p{color:red}", JS: "console.log(1)"}
		got := a.Bundle()
		assert.Contains(t, got, "<style>p{color:red}</style></head>")
		assert.Contains(t, got, "<script>console.log(1)</script></body>")
	})

	t.Run("keeps existing style and script", func(t *testing.T) {
		html := `<html><head><style>b{}</style></head><body><script>x()</script></body></html>`
		a := Artifact{HTML: html, CSS: "p{}", JS: "y()"}
		assert.Equal(t, html, a.Bundle())
	})

	t.Run("html only passes through", func(t *testing.T) {
		a := Artifact{HTML: base}
		assert.Equal(t, base, a.Bundle())
	})
}

// requireBrowser skips the test when no local browser binary exists, so
// the suite never downloads one.
func requireBrowser(t *testing.T) {
	t.Helper()
	if _, exists := launcher.LookPath(); !exists {
		t.Skip("no browser binary available")
	}
}

const calculatorHTML = `<!DOCTYPE html>
<html>
<head><title>Salary</title></head>
<body>
  <input id="b3" type="text">
  <span id="b10"></span>
  <button data-action="calculate">Calculate</button>
  <script>
    document.querySelector('[data-action="calculate"]').addEventListener('click', () => {
      const v = parseFloat(document.getElementById('b3').value) || 0;
      document.getElementById('b10').textContent = (v * 0.1).toLocaleString('en-US');
    });
  </script>
</body>
</html>`

func testHarness() *Harness {
	return New(Options{
		Headless:    true,
		TestTimeout: 15 * time.Second,
		SettleDelay: 100 * time.Millisecond,
	})
}

func TestHarnessRun(t *testing.T) {
	requireBrowser(t)

	suite := &models.TestSuite{
		SourceID: "salary.xlsx",
		TestCases: []models.TestCase{
			{
				FormulaCell:  "B10",
				Formula:      "=B3*0.1",
				Inputs:       map[models.CellAddress]any{"B3": 5000000.0},
				Expected:     500000.0,
				ExpectedType: models.ResultNumber,
				Tolerance:    1e-4,
			},
		},
		Scenarios: []models.TestScenario{
			{
				Name:            "smoke",
				Inputs:          map[models.CellAddress]any{"B3": 5000000.0},
				ExpectedOutputs: map[models.CellAddress]any{"B10": 500000.0},
			},
		},
	}

	report, err := testHarness().Run(context.Background(), suite, Artifact{HTML: calculatorHTML})
	require.NoError(t, err)

	require.Len(t, report.Results, 2)
	assert.Equal(t, 2, report.Passed)
	assert.Zero(t, report.Failed)
	assert.InDelta(t, 1.0, report.PassRate, 1e-9)
	assert.Empty(t, report.Failures)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, "salary.xlsx", report.SuiteSource)
	assert.True(t, report.Passing(0.8))
}

func TestHarnessRunLabeledCalculateButton(t *testing.T) {
	requireBrowser(t)

	// No data-action binding and no submit button: the harness must
	// find the trigger by its visible label alone.
	html := `<!DOCTYPE html>
<html>
<head></head>
<body>
  <input id="b3" type="text">
  <span id="b10"></span>
  <button type="button">계산</button>
  <script>
    document.querySelector('button').addEventListener('click', () => {
      const v = parseFloat(document.getElementById('b3').value) || 0;
      document.getElementById('b10').textContent = String(v * 0.1);
    });
  </script>
</body>
</html>`

	suite := &models.TestSuite{
		SourceID: "salary.xlsx",
		TestCases: []models.TestCase{
			{
				FormulaCell: "B10",
				Formula:     "=B3*0.1",
				Inputs:      map[models.CellAddress]any{"B3": 5000000.0},
				Expected:    500000.0,
				Tolerance:   1e-4,
			},
		},
	}

	report, err := testHarness().Run(context.Background(), suite, Artifact{HTML: html})
	require.NoError(t, err)
	require.Len(t, report.Results, 1)
	assert.Equal(t, 1, report.Passed, "labeled button was not clicked: %v", report.Failures)
}

func TestHarnessRunMissingBinding(t *testing.T) {
	requireBrowser(t)

	// No element is bound to B10; C1 is bound and computes.
	html := `<!DOCTYPE html>
<html>
<head></head>
<body>
  <input id="b3" type="text">
  <span id="c1"></span>
  <button data-action="calculate">Calculate</button>
  <script>
    document.querySelector('[data-action="calculate"]').addEventListener('click', () => {
      const v = parseFloat(document.getElementById('b3').value) || 0;
      document.getElementById('c1').textContent = String(v * 2);
    });
  </script>
</body>
</html>`

	suite := &models.TestSuite{
		SourceID: "salary.xlsx",
		TestCases: []models.TestCase{
			{
				FormulaCell: "B10",
				Formula:     "=B3*0.1",
				Inputs:      map[models.CellAddress]any{"B3": 5000000.0},
				Expected:    500000.0,
				Tolerance:   1e-4,
			},
			{
				FormulaCell: "C1",
				Formula:     "=B3*2",
				Inputs:      map[models.CellAddress]any{"B3": 21.0},
				Expected:    42.0,
				Tolerance:   1e-4,
			},
		},
	}

	report, err := testHarness().Run(context.Background(), suite, Artifact{HTML: html})
	require.NoError(t, err)

	require.Len(t, report.Results, 2)
	assert.Equal(t, 1, report.Passed)
	assert.Equal(t, 1, report.Failed)

	var failed models.VerificationResult
	for _, r := range report.Results {
		if !r.Passed {
			failed = r
		}
	}
	assert.Contains(t, failed.Diagnostic, "no element bound to output cell B10")
	require.Len(t, report.Failures, 1)
	assert.Contains(t, report.Failures[0], "B10")
	assert.False(t, report.Passing(0.8))
}

func TestHarnessBrowserUnavailable(t *testing.T) {
	h := New(Options{ControlURL: "ws://127.0.0.1:1/unreachable", TestTimeout: 2 * time.Second})
	suite := &models.TestSuite{SourceID: "x.xlsx"}

	_, err := h.Run(context.Background(), suite, Artifact{HTML: "<html></html>"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBrowserUnavailable)
}
