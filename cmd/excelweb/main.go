// Package main provides the CLI entry point for excelweb.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/seolcoding/excelweb/pkg/excelweb"
	"github.com/seolcoding/excelweb/pkg/excelweb/convert"
	"github.com/seolcoding/excelweb/pkg/excelweb/extract"
	"github.com/seolcoding/excelweb/pkg/excelweb/models"
	"github.com/seolcoding/excelweb/pkg/excelweb/verify"
	"github.com/seolcoding/excelweb/pkg/excelweb/workbook"
)

var (
	outputPath    string
	pretty        bool
	rulesPath     string
	maxCases      int
	withHelpers   bool
	passThreshold float64
	testTimeout   time.Duration
	verboseLog    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "excelweb",
		Short: "Analyze, convert, and verify spreadsheet formula logic",
		Long: `excelweb converts spreadsheet cell formulas into verifiable
web-application logic: it builds formula dependency graphs, rewrites
directly convertible formulas into JavaScript expressions, extracts
deterministic test cases from a workbook's cached values, and verifies
generated artifacts against them in a headless browser.`,
	}

	rootCmd.PersistentFlags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")
	rootCmd.PersistentFlags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	rootCmd.PersistentFlags().StringVar(&rulesPath, "rules", "", "TOML file overriding the conversion rule set")
	rootCmd.PersistentFlags().BoolVarP(&verboseLog, "verbose", "v", false, "Log progress to stderr")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [input.xlsx]",
		Short: "Report dependency graphs and formula classifications",
		Args:  cobra.ExactArgs(1),
		RunE:  runAnalyze,
	}

	suiteCmd := &cobra.Command{
		Use:   "suite [input.xlsx]",
		Short: "Extract a deterministic test suite from cached values",
		Args:  cobra.ExactArgs(1),
		RunE:  runSuite,
	}
	suiteCmd.Flags().IntVar(&maxCases, "max-cases", 50, "Maximum number of formula test cases")

	convertCmd := &cobra.Command{
		Use:   "convert [input.xlsx]",
		Short: "Rewrite directly convertible formulas into JavaScript",
		Args:  cobra.ExactArgs(1),
		RunE:  runConvert,
	}
	convertCmd.Flags().BoolVar(&withHelpers, "helpers", false, "Include the JavaScript helper prelude")

	verifyCmd := &cobra.Command{
		Use:   "verify [input.xlsx] [artifact.html]",
		Short: "Run the extracted test suite against a generated artifact",
		Args:  cobra.ExactArgs(2),
		RunE:  runVerify,
	}
	verifyCmd.Flags().Float64Var(&passThreshold, "threshold", 0.8, "Minimum pass rate for a zero exit code")
	verifyCmd.Flags().DurationVar(&testTimeout, "test-timeout", 30*time.Second, "Per-test execution timeout")
	verifyCmd.Flags().IntVar(&maxCases, "max-cases", 50, "Maximum number of formula test cases")

	rootCmd.AddCommand(analyzeCmd, suiteCmd, convertCmd, verifyCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func buildOptions() (excelweb.Options, error) {
	opts := excelweb.DefaultOptions()
	if maxCases > 0 {
		opts.Extract.MaxCases = maxCases
	}
	if verboseLog {
		opts.Logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	if rulesPath != "" {
		rules, err := convert.LoadRules(rulesPath)
		if err != nil {
			return opts, err
		}
		opts.Rules = &rules
	}
	return opts, nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	opts, err := buildOptions()
	if err != nil {
		return err
	}
	analysis, err := excelweb.Analyze(args[0], opts)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	return writeJSON(analysis)
}

func runSuite(cmd *cobra.Command, args []string) error {
	opts, err := buildOptions()
	if err != nil {
		return err
	}
	suite, err := excelweb.ExtractTests(args[0], opts)
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}
	return writeJSON(suite)
}

// conversionOutput is the convert subcommand's report shape.
type conversionOutput struct {
	Expressions []models.ConvertedExpression `json:"expressions"`
	Advanced    []models.CellAddress         `json:"advanced,omitempty"`
	Helpers     string                       `json:"helpers,omitempty"`
}

func runConvert(cmd *cobra.Command, args []string) error {
	opts, err := buildOptions()
	if err != nil {
		return err
	}
	snap, err := workbook.Load(args[0], workbook.Options{Logger: opts.Logger})
	if err != nil {
		return fmt.Errorf("load failed: %w", err)
	}

	converter := convert.NewConverter(derefRules(opts.Rules))
	var out conversionOutput
	for _, sheet := range snap.Sheets {
		for _, f := range sheet.Formulas {
			expr, err := converter.Convert(f.Cell, f.Text, nil)
			if err != nil {
				out.Advanced = append(out.Advanced, f.Cell)
				continue
			}
			out.Expressions = append(out.Expressions, expr)
		}
	}
	if withHelpers {
		out.Helpers = convert.HelperScript
	}
	return writeJSON(out)
}

func runVerify(cmd *cobra.Command, args []string) error {
	opts, err := buildOptions()
	if err != nil {
		return err
	}
	snap, err := workbook.Load(args[0], workbook.Options{Logger: opts.Logger})
	if err != nil {
		return fmt.Errorf("load failed: %w", err)
	}
	suite := extract.Extract(snap, opts.Extract)

	html, err := os.ReadFile(args[1])
	if err != nil {
		return fmt.Errorf("read artifact: %w", err)
	}

	harness := verify.New(verify.Options{
		Headless:    true,
		TestTimeout: testTimeout,
		Logger:      opts.Logger,
	})
	report, err := harness.Run(context.Background(), suite, verify.Artifact{HTML: string(html)})
	if err != nil {
		if errors.Is(err, verify.ErrBrowserUnavailable) {
			return fmt.Errorf("verification unavailable: %w", err)
		}
		return fmt.Errorf("verification failed: %w", err)
	}
	if err := writeJSON(report); err != nil {
		return err
	}
	if !report.Passing(passThreshold) {
		return fmt.Errorf("pass rate %.2f below threshold %.2f", report.PassRate, passThreshold)
	}
	return nil
}

func derefRules(rules *convert.Rules) convert.Rules {
	if rules != nil {
		return *rules
	}
	return convert.DefaultRules()
}

func writeJSON(v any) error {
	var (
		data []byte
		err  error
	)
	if pretty {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}
	if outputPath != "" {
		return os.WriteFile(outputPath, append(data, '\n'), 0644)
	}
	fmt.Println(string(data))
	return nil
}
