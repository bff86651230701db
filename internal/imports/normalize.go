package imports

// normalize.go turns raw import file text into typed rows.
//
// The accepted layout is fixed: a header line, then one row per line with
// exactly three comma-separated columns (date, supplier, amount). Validation
// is fail-fast: the first bad row aborts the whole file so nothing is ever
// persisted from a partially valid upload.

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseError reports the first invalid row in an import file.
// Line is 1-based and counts the header, so the first data row is line 2.
type ParseError struct {
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	return e.Reason
}

// Normalize parses raw CSV text into validated rows in source order.
//
// Line 0 is skipped as the header. Lines that are empty after trimming are
// skipped. Every other line must split into exactly 3 trimmed columns, with
// column 1 a YYYY-MM-DD date and column 3 a float amount (sign permitted).
// The first invalid row returns a *ParseError and no rows.
func Normalize(raw string) ([]NormalizedRow, error) {
	var rows []NormalizedRow

	for idx, line := range strings.Split(raw, "\n") {
		if idx == 0 {
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		cols := strings.Split(line, ",")
		for i := range cols {
			cols[i] = strings.TrimSpace(cols[i])
		}
		if len(cols) != 3 {
			return nil, &ParseError{
				Line:   idx + 1,
				Reason: fmt.Sprintf("row %d must have 3 columns: date,supplier,amount", idx+1),
			}
		}

		date, err := time.Parse(DateLayout, cols[0])
		if err != nil {
			return nil, &ParseError{
				Line:   idx + 1,
				Reason: fmt.Sprintf("invalid date on row %d", idx+1),
			}
		}

		amount, err := strconv.ParseFloat(cols[2], 64)
		if err != nil {
			return nil, &ParseError{
				Line:   idx + 1,
				Reason: fmt.Sprintf("invalid amount on row %d", idx+1),
			}
		}

		rows = append(rows, NormalizedRow{
			Date:         date,
			SupplierName: cols[1],
			Amount:       amount,
		})
	}

	return rows, nil
}
