// Package workbook loads an xlsx file into the aligned formula and
// cached-value views the analysis engine consumes.
package workbook

import (
	"errors"
	"io"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/seolcoding/excelweb/pkg/excelweb/models"
	"github.com/seolcoding/excelweb/pkg/excelweb/refs"
)

// ErrFileNotFound indicates the input file does not exist.
var ErrFileNotFound = errors.New("file not found")

// ErrInvalidFormat indicates the input file is not a valid xlsx workbook.
var ErrInvalidFormat = errors.New("invalid xlsx format")

// Options configures loading.
type Options struct {
	// Logger receives per-sheet warnings; nil discards them.
	Logger *slog.Logger
}

// Load reads a workbook into a snapshot holding, per sheet, the ordered
// formula view and the cached-value view. Sheets that fail to read are
// skipped with a warning rather than failing the load.
func Load(path string, opts Options) (*models.Snapshot, error) {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	defer f.Close()

	snap := &models.Snapshot{BookName: filepath.Base(path)}
	for _, sheetName := range f.GetSheetList() {
		sheet, err := loadSheet(f, sheetName)
		if err != nil {
			log.Warn("skipping unreadable sheet", "sheet", sheetName, "err", err)
			continue
		}
		snap.Sheets = append(snap.Sheets, sheet)
	}
	return snap, nil
}

// loadSheet walks the sheet's populated cells once, collecting both the
// cached value of every non-empty cell and the formula view. Formula
// cells outside the populated area (for example in an error state with
// no cached value) are not visited; the extractor would skip them anyway.
func loadSheet(f *excelize.File, sheetName string) (models.SheetSnapshot, error) {
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return models.SheetSnapshot{}, err
	}

	sheet := models.SheetSnapshot{
		Name:   sheetName,
		Values: make(map[models.CellAddress]any),
	}
	for rowIdx, row := range rows {
		for colIdx, cellValue := range row {
			cellName, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
			if err != nil {
				continue
			}
			addr := models.CellAddress(cellName)

			if cellValue != "" {
				sheet.Values[addr] = parseValue(cellValue)
			}

			formulaText, err := f.GetCellFormula(sheetName, cellName)
			if err != nil || formulaText == "" {
				continue
			}
			text := "=" + strings.TrimPrefix(formulaText, "=")
			sheet.Formulas = append(sheet.Formulas, models.Formula{
				Cell:         addr,
				Text:         text,
				Dependencies: refs.Resolve(text),
				ResultType:   InferResultType(text),
			})
		}
	}
	return sheet, nil
}

// parseValue attempts to parse a cached cell string as a typed scalar.
// Returns bool for TRUE/FALSE, int64 for integers, float64 for decimals,
// or the original string.
func parseValue(s string) any {
	switch s {
	case "TRUE":
		return true
	case "FALSE":
		return false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

// InferResultType guesses a formula's result type from the functions it
// uses. Numeric is the default; most business formulas compute numbers.
func InferResultType(formulaText string) models.ResultType {
	upper := strings.ToUpper(formulaText)

	for _, fn := range []string{"CONCATENATE", "CONCAT", "LEFT", "RIGHT", "MID", "TEXT", "UPPER", "LOWER", "TRIM"} {
		if strings.Contains(upper, fn+"(") {
			return models.ResultString
		}
	}
	for _, fn := range []string{"AND", "OR", "NOT", "ISBLANK", "ISERROR", "TRUE", "FALSE"} {
		if strings.Contains(upper, fn+"(") {
			return models.ResultBoolean
		}
	}
	for _, fn := range []string{"DATE", "TODAY", "NOW", "YEAR", "MONTH", "DAY"} {
		if strings.Contains(upper, fn+"(") {
			return models.ResultDate
		}
	}
	return models.ResultNumber
}
