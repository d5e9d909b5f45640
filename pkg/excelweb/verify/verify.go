package verify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/google/uuid"

	"github.com/seolcoding/excelweb/pkg/excelweb/models"
	"github.com/seolcoding/excelweb/pkg/excelweb/refs"
)

// ErrBrowserUnavailable indicates the execution environment itself could
// not be instantiated. It marks the whole run as unavailable, which is
// distinct from individual test failures.
var ErrBrowserUnavailable = errors.New("browser unavailable")

// Options configures a harness.
type Options struct {
	// Headless controls browser visibility.
	Headless bool
	// ControlURL connects to an existing browser instead of launching
	// one. Useful for tests and shared browser pools.
	ControlURL string
	// TestTimeout bounds each test case so a hung artifact fails that
	// test rather than the whole run.
	TestTimeout time.Duration
	// SettleDelay is the pause after triggering computation, giving
	// reactive frameworks time to update the DOM.
	SettleDelay time.Duration
	// Logger receives per-test progress; nil discards it.
	Logger *slog.Logger
}

// DefaultOptions returns the default harness configuration.
func DefaultOptions() Options {
	return Options{
		Headless:    true,
		TestTimeout: 30 * time.Second,
		SettleDelay: 500 * time.Millisecond,
	}
}

// Harness executes test suites against generated artifacts. Each test
// runs in its own page, so no state leaks between tests.
type Harness struct {
	opts Options
	log  *slog.Logger
}

// New builds a harness. Zero-valued timeouts fall back to defaults.
func New(opts Options) *Harness {
	def := DefaultOptions()
	if opts.TestTimeout <= 0 {
		opts.TestTimeout = def.TestTimeout
	}
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = def.SettleDelay
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Harness{opts: opts, log: log}
}

// Run verifies every test case and scenario of the suite against the
// artifact. Individual failures are recorded and the run continues; only
// an uninstantiable execution environment aborts the run, reported as
// ErrBrowserUnavailable.
func (h *Harness) Run(ctx context.Context, suite *models.TestSuite, artifact Artifact) (*models.VerificationReport, error) {
	tmp, err := os.CreateTemp("", "webapp_verify_*.html")
	if err != nil {
		return nil, fmt.Errorf("write artifact: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.WriteString(artifact.Bundle()); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write artifact: %w", err)
	}
	tmp.Close()
	pageURL := "file://" + tmp.Name()

	browser, cleanup, err := h.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	report := &models.VerificationReport{
		RunID:       uuid.NewString(),
		SuiteSource: suite.SourceID,
	}
	for _, tc := range suite.TestCases {
		result := h.runCase(browser, pageURL, tc)
		h.record(report, result)
	}
	for _, sc := range suite.Scenarios {
		result := h.runScenario(browser, pageURL, sc)
		h.record(report, result)
	}
	if n := len(report.Results); n > 0 {
		report.PassRate = float64(report.Passed) / float64(n)
	}
	return report, nil
}

func (h *Harness) record(report *models.VerificationReport, result models.VerificationResult) {
	report.Results = append(report.Results, result)
	if result.Passed {
		report.Passed++
		return
	}
	report.Failed++
	desc := result.TestName
	if result.Diagnostic != "" {
		desc += ": " + result.Diagnostic
	} else {
		desc += fmt.Sprintf(": expected %v, got %v", result.Expected, result.Actual)
	}
	report.Failures = append(report.Failures, desc)
	h.log.Warn("verification check failed", "test", result.TestName, "diagnostic", result.Diagnostic)
}

// connect launches or attaches to a browser. Any failure here means the
// execution environment is unavailable.
func (h *Harness) connect(ctx context.Context) (*rod.Browser, func(), error) {
	controlURL := h.opts.ControlURL
	cleanupLauncher := func() {}
	if controlURL == "" {
		l := launcher.New().Headless(h.opts.Headless)
		u, err := l.Launch()
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrBrowserUnavailable, err)
		}
		controlURL = u
		cleanupLauncher = l.Cleanup
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		cleanupLauncher()
		return nil, nil, fmt.Errorf("%w: %v", ErrBrowserUnavailable, err)
	}
	return browser, func() {
		browser.Close()
		cleanupLauncher()
	}, nil
}

// runCase executes one test case in a fresh page.
func (h *Harness) runCase(browser *rod.Browser, pageURL string, tc models.TestCase) models.VerificationResult {
	name := fmt.Sprintf("%s: %s", tc.FormulaCell, tc.Formula)
	start := time.Now()
	fail := func(diag string) models.VerificationResult {
		return models.VerificationResult{
			TestName:   name,
			Expected:   tc.Expected,
			Diagnostic: diag,
			ElapsedMS:  float64(time.Since(start).Microseconds()) / 1000,
		}
	}

	page, err := h.openPage(browser, pageURL)
	if err != nil {
		return fail(fmt.Sprintf("page load: %v", err))
	}
	defer page.Close()

	inputs := make([]models.CellAddress, 0, len(tc.Inputs))
	for cell := range tc.Inputs {
		inputs = append(inputs, cell)
	}
	refs.SortAddresses(inputs)
	for _, cell := range inputs {
		el := findBound(page, cell)
		if el == nil {
			return fail(fmt.Sprintf("no element bound to input cell %s", cell))
		}
		if err := setValue(el, tc.Inputs[cell]); err != nil {
			return fail(fmt.Sprintf("set input %s: %v", cell, err))
		}
	}

	if err := h.triggerCalculate(page); err != nil {
		return fail(fmt.Sprintf("trigger calculate: %v", err))
	}

	actual, diag := readBound(page, tc.FormulaCell)
	if diag != "" {
		return fail(diag)
	}

	return models.VerificationResult{
		TestName:  name,
		Passed:    valuesMatch(tc.Expected, actual, tc.Tolerance),
		Expected:  tc.Expected,
		Actual:    actual,
		ElapsedMS: float64(time.Since(start).Microseconds()) / 1000,
	}
}

// runScenario executes one coarse scenario: inputs are applied best
// effort, every expected output must match.
func (h *Harness) runScenario(browser *rod.Browser, pageURL string, sc models.TestScenario) models.VerificationResult {
	name := "scenario: " + sc.Name
	start := time.Now()
	result := models.VerificationResult{TestName: name, Expected: sc.ExpectedOutputs}

	page, err := h.openPage(browser, pageURL)
	if err != nil {
		result.Diagnostic = fmt.Sprintf("page load: %v", err)
		result.ElapsedMS = float64(time.Since(start).Microseconds()) / 1000
		return result
	}
	defer page.Close()

	for cell, val := range sc.Inputs {
		if el := findBound(page, cell); el != nil {
			if err := setValue(el, val); err != nil {
				h.log.Debug("scenario input not applied", "cell", cell, "err", err)
			}
		}
	}
	if err := h.triggerCalculate(page); err != nil {
		result.Diagnostic = fmt.Sprintf("trigger calculate: %v", err)
		result.ElapsedMS = float64(time.Since(start).Microseconds()) / 1000
		return result
	}

	actuals := make(map[models.CellAddress]any, len(sc.ExpectedOutputs))
	passed := true
	var missing []string
	for cell, expected := range sc.ExpectedOutputs {
		actual, diag := readBound(page, cell)
		if diag != "" {
			passed = false
			missing = append(missing, string(cell))
			continue
		}
		actuals[cell] = actual
		if !valuesMatch(expected, actual, 1e-2) {
			passed = false
		}
	}

	result.Passed = passed
	result.Actual = actuals
	if len(missing) > 0 {
		result.Diagnostic = "no element bound to output cells: " + strings.Join(missing, ", ")
	}
	result.ElapsedMS = float64(time.Since(start).Microseconds()) / 1000
	return result
}

func (h *Harness) openPage(browser *rod.Browser, pageURL string) (*rod.Page, error) {
	page, err := browser.Page(proto.TargetCreateTarget{URL: pageURL})
	if err != nil {
		return nil, err
	}
	page = page.Timeout(h.opts.TestTimeout)
	if err := page.WaitLoad(); err != nil {
		page.Close()
		return nil, err
	}
	return page, nil
}

// triggerCalculate clicks the artifact's primary computation control and
// waits out the settling delay. Artifacts that recompute on input events
// carry no such control; that is not an error.
func (h *Harness) triggerCalculate(page *rod.Page) error {
	p := page.Sleeper(rod.NotFoundSleeper)
	var el *rod.Element
	if found, err := p.Element(CalculateSelector); err == nil {
		el = found
	} else if found, err := p.ElementR("button", calculateLabelPattern); err == nil {
		el = found
	} else if found, err := p.Element(submitSelector); err == nil {
		el = found
	}
	if el != nil {
		if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
			return err
		}
	}
	time.Sleep(h.opts.SettleDelay)
	return nil
}

// findBound walks the binding convention's selector chain and returns
// the first matching element, or nil.
func findBound(page *rod.Page, cell models.CellAddress) *rod.Element {
	p := page.Sleeper(rod.NotFoundSleeper)
	for _, sel := range CellSelectors(cell) {
		if el, err := p.Element(sel); err == nil {
			return el
		}
	}
	return nil
}

// readBound locates the element bound to an output cell and reads its
// displayed text, falling back to the value property for form controls.
func readBound(page *rod.Page, cell models.CellAddress) (string, string) {
	el := findBound(page, cell)
	if el == nil {
		return "", fmt.Sprintf("no element bound to output cell %s", cell)
	}
	text, err := el.Text()
	if err != nil {
		return "", fmt.Sprintf("read output %s: %v", cell, err)
	}
	if strings.TrimSpace(text) == "" {
		if prop, err := el.Property("value"); err == nil {
			text = prop.Str()
		}
	}
	return text, ""
}

// setValue writes a value into a form control and fires the events a
// hand-typed change would produce.
func setValue(el *rod.Element, value any) error {
	_, err := el.Eval(`(v) => {
		this.value = v;
		this.dispatchEvent(new Event('input', { bubbles: true }));
		this.dispatchEvent(new Event('change', { bubbles: true }));
	}`, formatValue(value))
	return err
}
