package decode

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/xltables/internal/common"
)

func buildWorkbook(t *testing.T, cells map[string]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	for ref, v := range cells {
		if err := f.SetCellValue("Sheet1", ref, v); err != nil {
			t.Fatalf("set %s: %v", ref, err)
		}
	}
	if _, err := f.NewSheet("Other"); err != nil {
		t.Fatalf("new sheet: %v", err)
	}
	if err := f.SetCellValue("Other", "B2", "other"); err != nil {
		t.Fatalf("set other: %v", err)
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	return buf.Bytes()
}

func TestBytes_FirstSheet(t *testing.T) {
	data := buildWorkbook(t, map[string]any{
		"B2": "DISCOUNT RATE",
		"B3": "Rate",
		"C3": 0.1,
		"D4": 1000,
	})
	g, err := Bytes(data, Options{})
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if g.Rows() != 4 || g.Cols() != 4 {
		t.Fatalf("shape = %dx%d, want 4x4", g.Rows(), g.Cols())
	}
	if got := g.At(1, 1); got != "DISCOUNT RATE" {
		t.Errorf("B2 = %q", got)
	}
	if got := g.At(2, 2); got != "0.1" {
		t.Errorf("C3 = %q", got)
	}
	if got := g.At(3, 3); got != "1000" {
		t.Errorf("D4 = %q", got)
	}
	if got := g.At(0, 0); got != "" {
		t.Errorf("A1 = %q, want blank", got)
	}
}

func TestBytes_NamedSheet(t *testing.T) {
	data := buildWorkbook(t, map[string]any{"A1": "x"})
	g, err := Bytes(data, Options{Sheet: "Other"})
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if g.At(1, 1) != "other" {
		t.Errorf("B2 = %q", g.At(1, 1))
	}

	if _, err := Bytes(data, Options{Sheet: "Missing"}); !errors.Is(err, common.ErrMalformedInput) {
		t.Errorf("missing sheet err = %v", err)
	}
}

func TestBytes_Garbage(t *testing.T) {
	_, err := Bytes([]byte("definitely not a zip archive"), Options{})
	if !errors.Is(err, common.ErrMalformedInput) {
		t.Errorf("err = %v, want ErrMalformedInput", err)
	}
}

func TestCheckFilename(t *testing.T) {
	for _, ok := range []string{"book.xlsx", "BOOK.XLSM", "dir/t.xltx", "legacy.XLS"} {
		if err := CheckFilename(ok); err != nil {
			t.Errorf("CheckFilename(%q) = %v", ok, err)
		}
	}
	for _, bad := range []string{"notes.csv", "book.ods", "noext"} {
		if err := CheckFilename(bad); !errors.Is(err, common.ErrMalformedInput) {
			t.Errorf("CheckFilename(%q) = %v, want ErrMalformedInput", bad, err)
		}
	}
}

func TestBytes_LegacyXLS(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "model.xls"))
	if err != nil {
		t.Fatal(err)
	}

	g, err := Bytes(data, Options{})
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	want := [][]string{
		{"OPERATING CASHFLOWS", "", ""},
		{"Year", "2024", "2025"},
		{"Revenue", "100", "50.5"},
		{"", "", ""},
		{"Total", "150.5", ""},
	}
	if got := g.Records(); !reflect.DeepEqual(got, want) {
		t.Errorf("cells = %v, want %v", got, want)
	}

	other, err := Bytes(data, Options{Sheet: "Other"})
	if err != nil {
		t.Fatalf("Bytes(Other): %v", err)
	}
	if other.Rows() != 2 || other.At(1, 1) != "other" {
		t.Errorf("Other = %v", other.Records())
	}

	if _, err := Bytes(data, Options{Sheet: "Missing"}); !errors.Is(err, common.ErrMalformedInput) {
		t.Errorf("missing sheet err = %v", err)
	}
}

func TestBytes_TruncatedXLS(t *testing.T) {
	data := append(append([]byte{}, compoundFileMagic...), "not a workbook"...)
	if _, err := Bytes(data, Options{}); !errors.Is(err, common.ErrMalformedInput) {
		t.Errorf("err = %v, want ErrMalformedInput", err)
	}
}
