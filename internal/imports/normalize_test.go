package imports

import (
	"errors"
	"testing"
	"time"
)

func TestNormalize_ValidFile(t *testing.T) {
	csv := "date,supplier,amount\n2026-02-01,ACME,100\n2026-02-01,ACME,50\n2026-02-02,Beta,25"

	rows, err := Normalize(csv)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}

	want := []NormalizedRow{
		{Date: date(t, "2026-02-01"), SupplierName: "ACME", Amount: 100},
		{Date: date(t, "2026-02-01"), SupplierName: "ACME", Amount: 50},
		{Date: date(t, "2026-02-02"), SupplierName: "Beta", Amount: 25},
	}
	for i, row := range rows {
		if !row.Date.Equal(want[i].Date) || row.SupplierName != want[i].SupplierName || row.Amount != want[i].Amount {
			t.Errorf("row %d = %+v, want %+v", i, row, want[i])
		}
	}
}

func TestNormalize_SkipsHeaderAndBlankLines(t *testing.T) {
	csv := "date,supplier,amount\n\n2026-02-01,ACME,100\n   \n2026-02-02,Beta,25\n"

	rows, err := Normalize(csv)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("got %d rows, want 2", len(rows))
	}
}

func TestNormalize_TrimsFieldsAndHandlesCRLF(t *testing.T) {
	csv := "date,supplier,amount\r\n 2026-02-01 , ACME Corp , 100.5 \r\n"

	rows, err := Normalize(csv)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0].SupplierName != "ACME Corp" {
		t.Errorf("SupplierName = %q, want %q", rows[0].SupplierName, "ACME Corp")
	}
	if rows[0].Amount != 100.5 {
		t.Errorf("Amount = %v, want 100.5", rows[0].Amount)
	}
}

func TestNormalize_NegativeAmount(t *testing.T) {
	rows, err := Normalize("date,supplier,amount\n2026-02-01,ACME,-42.5")
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if rows[0].Amount != -42.5 {
		t.Errorf("Amount = %v, want -42.5", rows[0].Amount)
	}
}

func TestNormalize_HeaderOnly(t *testing.T) {
	rows, err := Normalize("date,supplier,amount")
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("got %d rows, want 0", len(rows))
	}
}

func TestNormalize_InvalidRows(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantLine int
		wantMsg  string
	}{
		{
			name:     "two columns",
			input:    "date,supplier,amount\n2026-02-01,ACME",
			wantLine: 2,
			wantMsg:  "row 2 must have 3 columns: date,supplier,amount",
		},
		{
			name:     "four columns",
			input:    "date,supplier,amount\n2026-02-01,ACME,100,extra",
			wantLine: 2,
			wantMsg:  "row 2 must have 3 columns: date,supplier,amount",
		},
		{
			name:     "bad date",
			input:    "date,supplier,amount\n2026-02-01,ACME,100\n02/03/2026,Beta,25",
			wantLine: 3,
			wantMsg:  "invalid date on row 3",
		},
		{
			name:     "bad amount",
			input:    "date,supplier,amount\n2026-02-01,ACME,abc",
			wantLine: 2,
			wantMsg:  "invalid amount on row 2",
		},
		{
			name:     "valid rows before the bad one do not survive",
			input:    "date,supplier,amount\n2026-02-01,ACME,100\n2026-02-02,Beta,100\nbad",
			wantLine: 4,
			wantMsg:  "row 4 must have 3 columns: date,supplier,amount",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := Normalize(tt.input)
			if err == nil {
				t.Fatal("Normalize() succeeded, want error")
			}
			if rows != nil {
				t.Errorf("got %d rows alongside error, want none", len(rows))
			}

			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("error type = %T, want *ParseError", err)
			}
			if parseErr.Line != tt.wantLine {
				t.Errorf("Line = %d, want %d", parseErr.Line, tt.wantLine)
			}
			if parseErr.Error() != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", parseErr.Error(), tt.wantMsg)
			}
		})
	}
}

// date parses a YYYY-MM-DD string for test fixtures.
func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		t.Fatalf("bad test date %q: %v", s, err)
	}
	return d
}
