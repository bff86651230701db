// Package imports provides the business logic for supplier spend imports:
// normalizing uploaded CSV files, aggregating daily totals, and coordinating
// the transactional persistence of each import.
package imports

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the only accepted calendar date format in import files.
const DateLayout = "2006-01-02"

// NormalizedRow is a single validated line from an import file.
type NormalizedRow struct {
	Date         time.Time
	SupplierName string
	Amount       float64
}

// DailyTotal is the summed spend for one calendar date.
type DailyTotal struct {
	Date        time.Time
	TotalAmount float64
}

// MarshalJSON renders the date as YYYY-MM-DD to match the API schema.
func (d DailyTotal) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Date        string  `json:"date"`
		TotalAmount float64 `json:"total_amount"`
	}{
		Date:        d.Date.Format(DateLayout),
		TotalAmount: d.TotalAmount,
	})
}

// ImportRequest carries the three inputs extracted from the upload request.
type ImportRequest struct {
	StoreID    int64
	ImportedBy string
	FileName   string
	FileBytes  []byte
}

// ImportRecord is a persisted import, as returned by the read path.
// The raw payload is stored but never served back.
type ImportRecord struct {
	ID         uuid.UUID `json:"import_id"`
	StoreID    int64     `json:"store_id"`
	ImportedBy string    `json:"imported_by"`
	FileName   string    `json:"source_filename"`
	FileSHA256 string    `json:"source_sha256"`
	ImportedAt time.Time `json:"imported_at"`
}

// ReportRecord is a persisted report snapshot.
type ReportRecord struct {
	ID                    uuid.UUID       `json:"report_id"`
	StoreID               int64           `json:"store_id"`
	GeneratedFromImportID uuid.UUID       `json:"generated_from_import_id"`
	GeneratedBy           string          `json:"generated_by"`
	Snapshot              json.RawMessage `json:"snapshot"`
}

// ImportResult is the response payload for a successful import.
type ImportResult struct {
	ImportID    uuid.UUID    `json:"import_id"`
	ReportID    uuid.UUID    `json:"report_id"`
	StoreID     int64        `json:"store_id"`
	ImportedBy  string       `json:"imported_by"`
	ImportedAt  time.Time    `json:"imported_at"`
	FileSHA256  string       `json:"file_sha256"`
	RowsCount   int          `json:"rows_count"`
	TotalAmount float64      `json:"total_amount"`
	DailyTotals []DailyTotal `json:"daily_totals"`
}
