package excelweb

import (
	"github.com/seolcoding/excelweb/pkg/excelweb/convert"
	"github.com/seolcoding/excelweb/pkg/excelweb/extract"
	"github.com/seolcoding/excelweb/pkg/excelweb/graph"
	"github.com/seolcoding/excelweb/pkg/excelweb/models"
	"github.com/seolcoding/excelweb/pkg/excelweb/refs"
	"github.com/seolcoding/excelweb/pkg/excelweb/workbook"
)

// Analyze loads a workbook and produces the full analysis report:
// per-sheet dependency graphs, input/output cell detection, and the
// classification of every formula.
func Analyze(path string, opts Options) (*models.Analysis, error) {
	snap, err := workbook.Load(path, workbook.Options{Logger: opts.Logger})
	if err != nil {
		return nil, err
	}
	return AnalyzeSnapshot(snap, opts), nil
}

// AnalyzeSnapshot analyzes an already loaded snapshot. It never fails:
// per-formula problems surface as classification outcomes and cycle
// sets, not errors.
func AnalyzeSnapshot(snap *models.Snapshot, opts Options) *models.Analysis {
	classifier := convert.NewClassifier(opts.rules())

	analysis := &models.Analysis{BookName: snap.BookName}
	maxDepth := 0
	cyclic := false

	for _, sheet := range snap.Sheets {
		g := graph.Build(sheet.Formulas)
		if g.MaxDepth > maxDepth {
			maxDepth = g.MaxDepth
		}
		if len(g.Cycles) > 0 {
			cyclic = true
		}

		info := models.SheetInfo{
			Name:     sheet.Name,
			Formulas: sheet.Formulas,
			Graph:    g,
		}
		formulaCells := make(map[models.CellAddress]bool, len(sheet.Formulas))
		for _, f := range sheet.Formulas {
			formulaCells[f.Cell] = true
			info.OutputCells = append(info.OutputCells, f.Cell)

			c := classifier.Classify(f.Text)
			info.Classifications = append(info.Classifications, c)
			if c.IsDirect {
				analysis.DirectFormulas++
			} else {
				analysis.AdvancedFormulas++
			}
		}
		for _, f := range sheet.Formulas {
			for _, dep := range f.Dependencies {
				if !formulaCells[dep] {
					info.InputCells = append(info.InputCells, dep)
					formulaCells[dep] = true // dedupe
				}
			}
		}
		refs.SortAddresses(info.InputCells)
		refs.SortAddresses(info.OutputCells)

		analysis.Sheets = append(analysis.Sheets, info)
		analysis.TotalFormulas += len(sheet.Formulas)
		analysis.TotalInputs += len(info.InputCells)
		analysis.TotalOutputs += len(info.OutputCells)
	}

	analysis.Complexity = complexityGrade(analysis.TotalFormulas, len(analysis.Sheets), maxDepth, cyclic)
	return analysis
}

// ExtractTests loads a workbook and extracts its deterministic test
// suite in one step.
func ExtractTests(path string, opts Options) (*models.TestSuite, error) {
	snap, err := workbook.Load(path, workbook.Options{Logger: opts.Logger})
	if err != nil {
		return nil, err
	}
	return extract.Extract(snap, opts.Extract), nil
}

// complexityGrade folds formula count, sheet count, dependency depth,
// and cycle presence into a coarse grade.
func complexityGrade(formulas, sheets, maxDepth int, cyclic bool) models.Complexity {
	score := 0
	switch {
	case formulas > 50:
		score += 3
	case formulas > 20:
		score += 2
	case formulas > 0:
		score++
	}
	switch {
	case sheets > 5:
		score += 2
	case sheets > 2:
		score++
	}
	if maxDepth > 5 {
		score += 2
	}
	if cyclic {
		score += 3
	}

	switch {
	case score >= 5:
		return models.ComplexityHigh
	case score >= 2:
		return models.ComplexityMedium
	default:
		return models.ComplexityLow
	}
}
