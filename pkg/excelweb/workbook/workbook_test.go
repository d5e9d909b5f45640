package workbook

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/seolcoding/excelweb/pkg/excelweb/models"
)

// writeTestWorkbook builds a small xlsx file for loader tests.
func writeTestWorkbook(t *testing.T) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetCellValue("Sheet1", "A1", "월급"); err != nil {
		t.Fatal(err)
	}
	if err := f.SetCellValue("Sheet1", "B3", 5000000); err != nil {
		t.Fatal(err)
	}
	if err := f.SetCellValue("Sheet1", "B4", 0.1); err != nil {
		t.Fatal(err)
	}
	if err := f.SetCellFormula("Sheet1", "B10", "=B3*B4"); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "salary.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeTestWorkbook(t)

	snap, err := Load(path, Options{})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if snap.BookName != "salary.xlsx" {
		t.Errorf("BookName = %q, want %q", snap.BookName, "salary.xlsx")
	}
	if len(snap.Sheets) != 1 {
		t.Fatalf("got %d sheets, want 1", len(snap.Sheets))
	}

	sheet := snap.Sheets[0]
	if sheet.Name != "Sheet1" {
		t.Errorf("sheet name = %q, want Sheet1", sheet.Name)
	}

	if got := sheet.Values["A1"]; got != "월급" {
		t.Errorf("A1 = %v, want 월급", got)
	}
	if got := sheet.Values["B3"]; got != int64(5000000) {
		t.Errorf("B3 = %v (%T), want int64 5000000", got, got)
	}
	if got := sheet.Values["B4"]; got != 0.1 {
		t.Errorf("B4 = %v (%T), want float64 0.1", got, got)
	}

	if len(sheet.Formulas) != 1 {
		t.Fatalf("got %d formulas, want 1", len(sheet.Formulas))
	}
	f := sheet.Formulas[0]
	if f.Cell != "B10" {
		t.Errorf("formula cell = %s, want B10", f.Cell)
	}
	if f.Text != "=B3*B4" {
		t.Errorf("formula text = %q, want =B3*B4", f.Text)
	}
	wantDeps := []models.CellAddress{"B3", "B4"}
	if !reflect.DeepEqual(f.Dependencies, wantDeps) {
		t.Errorf("dependencies = %v, want %v", f.Dependencies, wantDeps)
	}
	if f.ResultType != models.ResultNumber {
		t.Errorf("result type = %s, want number", f.ResultType)
	}
}

func TestLoadFileNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.xlsx"), Options{})
	if !errors.Is(err, ErrFileNotFound) {
		t.Errorf("err = %v, want ErrFileNotFound", err)
	}
}

func TestLoadInvalidFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bogus.xlsx")
	if err := os.WriteFile(path, []byte("not a workbook"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path, Options{})
	if !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("err = %v, want ErrInvalidFormat", err)
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"TRUE", true},
		{"FALSE", false},
		{"42", int64(42)},
		{"-7", int64(-7)},
		{"3.14", 3.14},
		{"hello", "hello"},
		{"12abc", "12abc"},
	}
	for _, tt := range tests {
		if got := parseValue(tt.in); got != tt.want {
			t.Errorf("parseValue(%q) = %v (%T), want %v (%T)", tt.in, got, got, tt.want, tt.want)
		}
	}
}

func TestInferResultType(t *testing.T) {
	tests := []struct {
		formula string
		want    models.ResultType
	}{
		{"=B3*0.1", models.ResultNumber},
		{"=SUM(A1:A10)", models.ResultNumber},
		{"=CONCATENATE(A1,B1)", models.ResultString},
		{"=LEFT(A1,3)", models.ResultString},
		{"=AND(A1>0,B1>0)", models.ResultBoolean},
		{"=TODAY()", models.ResultDate},
		{"=IF(A1>0,1,0)", models.ResultNumber},
	}
	for _, tt := range tests {
		if got := InferResultType(tt.formula); got != tt.want {
			t.Errorf("InferResultType(%q) = %s, want %s", tt.formula, got, tt.want)
		}
	}
}
