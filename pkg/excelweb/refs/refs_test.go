package refs

import (
	"reflect"
	"testing"

	"github.com/seolcoding/excelweb/pkg/excelweb/models"
)

func addrs(values ...string) []models.CellAddress {
	if len(values) == 0 {
		return nil
	}
	out := make([]models.CellAddress, len(values))
	for i, v := range values {
		out[i] = models.CellAddress(v)
	}
	return out
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		formula string
		want    []models.CellAddress
	}{
		{
			name:    "simple arithmetic",
			formula: "=A1+B1",
			want:    addrs("A1", "B1"),
		},
		{
			name:    "range expansion",
			formula: "=SUM(A1:B2)",
			want:    addrs("A1", "A2", "B1", "B2"),
		},
		{
			name:    "column range expansion",
			formula: "=SUM(B3:B5)",
			want:    addrs("B3", "B4", "B5"),
		},
		{
			name:    "absolute references stripped",
			formula: "=$B$3*0.1",
			want:    addrs("B3"),
		},
		{
			name:    "sheet qualifier stripped",
			formula: "=Sheet2!B2+C3",
			want:    addrs("B2", "C3"),
		},
		{
			name:    "duplicates collapse",
			formula: "=A1+A1*A1",
			want:    addrs("A1"),
		},
		{
			name:    "nested functions",
			formula: "=IF(B10>100,SUM(C1:C3),D4)",
			want:    addrs("B10", "C1", "C2", "C3", "D4"),
		},
		{
			name:    "no references",
			formula: "=1+2",
			want:    nil,
		},
		{
			name:    "empty formula",
			formula: "",
			want:    nil,
		},
		{
			name:    "whitespace only",
			formula: "   =   ",
			want:    nil,
		},
		{
			name:    "function names with digits are not references",
			formula: "=LOG10(B2)",
			want:    addrs("B2"),
		},
		{
			name:    "sorted by column then row",
			formula: "=B2+A10+A2",
			want:    addrs("A2", "A10", "B2"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.formula)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Resolve(%q) = %v, want %v", tt.formula, got, tt.want)
			}
		})
	}
}

func TestResolveDeterministic(t *testing.T) {
	formula := "=SUM(A1:C3)+Z9+B2"
	first := Resolve(formula)
	for i := 0; i < 20; i++ {
		if got := Resolve(formula); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d: Resolve returned %v, previously %v", i, got, first)
		}
	}
}

func TestExpandRange(t *testing.T) {
	tests := []struct {
		name     string
		rangeRef string
		want     []models.CellAddress
	}{
		{
			name:     "rectangular span",
			rangeRef: "A1:B2",
			want:     addrs("A1", "A2", "B1", "B2"),
		},
		{
			name:     "single cell span",
			rangeRef: "C3:C3",
			want:     addrs("C3"),
		},
		{
			name:     "reversed corners normalize",
			rangeRef: "B2:A1",
			want:     addrs("A1", "A2", "B1", "B2"),
		},
		{
			name:     "malformed side kept literal",
			rangeRef: "A1:FOO",
			want:     addrs("A1:FOO"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExpandRange(tt.rangeRef)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExpandRange(%q) = %v, want %v", tt.rangeRef, got, tt.want)
			}
		})
	}
}

func TestSplitAddress(t *testing.T) {
	tests := []struct {
		addr    string
		wantCol string
		wantRow int
		wantOK  bool
	}{
		{"A1", "A", 1, true},
		{"AB12", "AB", 12, true},
		{"ZZ999", "ZZ", 999, true},
		{"A0", "", 0, false},
		{"1A", "", 0, false},
		{"ABC", "", 0, false},
		{"", "", 0, false},
	}
	for _, tt := range tests {
		col, row, ok := SplitAddress(models.CellAddress(tt.addr))
		if col != tt.wantCol || row != tt.wantRow || ok != tt.wantOK {
			t.Errorf("SplitAddress(%q) = (%q, %d, %v), want (%q, %d, %v)",
				tt.addr, col, row, ok, tt.wantCol, tt.wantRow, tt.wantOK)
		}
	}
}

func TestColumnRoundTrip(t *testing.T) {
	cases := map[string]int{
		"A":  1,
		"Z":  26,
		"AA": 27,
		"AZ": 52,
		"BA": 53,
		"ZZ": 702,
	}
	for name, num := range cases {
		if got := ColumnNumber(name); got != num {
			t.Errorf("ColumnNumber(%q) = %d, want %d", name, got, num)
		}
		if got := ColumnName(num); got != name {
			t.Errorf("ColumnName(%d) = %q, want %q", num, got, name)
		}
	}
	for n := 1; n <= 1000; n++ {
		if got := ColumnNumber(ColumnName(n)); got != n {
			t.Fatalf("round trip broke at %d: got %d", n, got)
		}
	}
}

func TestSortAddresses(t *testing.T) {
	got := addrs("C1", "A10", "A2", "B1")
	SortAddresses(got)
	want := addrs("A2", "A10", "B1", "C1")
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SortAddresses = %v, want %v", got, want)
	}
}
