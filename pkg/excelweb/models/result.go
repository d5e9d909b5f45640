package models

// VerificationResult is the outcome of running one test case or scenario
// against a generated artifact. Results are ephemeral per harness run.
type VerificationResult struct {
	// TestName labels the executed check.
	TestName string `json:"test_name"`
	// Passed reports whether the artifact produced the expected output.
	Passed bool `json:"passed"`
	// Expected is the value the artifact had to show.
	Expected any `json:"expected"`
	// Actual is the value read from the artifact, nil when unreadable.
	Actual any `json:"actual"`
	// Diagnostic explains a failure, e.g. a missing element binding.
	Diagnostic string `json:"diagnostic,omitempty"`
	// ElapsedMS is the execution time in milliseconds.
	ElapsedMS float64 `json:"elapsed_ms"`
}

// VerificationReport summarizes a full harness run over a test suite.
type VerificationReport struct {
	// RunID uniquely identifies this harness run.
	RunID string `json:"run_id"`
	// SuiteSource is the SourceID of the executed suite.
	SuiteSource string `json:"suite_source"`
	// Results holds one entry per executed check.
	Results []VerificationResult `json:"results"`
	// Passed counts passing checks.
	Passed int `json:"passed"`
	// Failed counts failing checks.
	Failed int `json:"failed"`
	// PassRate is Passed divided by the number of checks, 0 when empty.
	PassRate float64 `json:"pass_rate"`
	// Failures holds a readable description per failing check.
	Failures []string `json:"failures,omitempty"`
}

// Passing reports whether the run met the given minimum pass rate.
func (r *VerificationReport) Passing(minRate float64) bool {
	return r.PassRate >= minRate
}
