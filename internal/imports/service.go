package imports

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// DefaultImportTimeout is the maximum duration for one import operation.
const DefaultImportTimeout = 2 * time.Minute

// DefaultFileName is recorded when the upload carries no filename.
const DefaultFileName = "upload.csv"

// PersistInput is everything the backing store needs to durably record one
// import as a single transaction.
type PersistInput struct {
	StoreID     int64
	ImportedBy  string
	FileName    string
	FileSHA256  string
	RawPayload  string
	ImportedAt  time.Time
	Rows        []NormalizedRow
	DailyTotals []DailyTotal
	TotalAmount float64
}

// PersistOutput carries the identities generated during persistence.
type PersistOutput struct {
	ImportID uuid.UUID
	ReportID uuid.UUID
}

// ErrNotFound is returned by the read paths for unknown identities.
var ErrNotFound = errors.New("not found")

// Store is the transactional backing store for imports. PersistImport must be
// all-or-nothing: on error, no entity written by the call may remain visible.
type Store interface {
	PersistImport(ctx context.Context, in PersistInput) (PersistOutput, error)
	GetImport(ctx context.Context, id uuid.UUID) (*ImportRecord, error)
	GetReport(ctx context.Context, id uuid.UUID) (*ReportRecord, error)
}

// Service coordinates the import pipeline: normalize, aggregate, persist.
// Normalization and aggregation are pure; all I/O happens in the Store.
type Service struct {
	store   Store
	limiter *Limiter
	timeout time.Duration

	now func() time.Time // stubbed in tests
}

// NewService creates a Service bound to the given store.
// maxConcurrent and maxWait configure the import limiter; timeout bounds a
// single import end to end. Zero values select defaults.
func NewService(store Store, maxConcurrent int, maxWait, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = DefaultImportTimeout
	}
	return &Service{
		store:   store,
		limiter: NewLimiter(maxConcurrent, maxWait),
		timeout: timeout,
		now:     time.Now,
	}
}

// Run executes one import request through the full pipeline.
//
// Stages run strictly in order: UTF-8 check, normalize, aggregate, persist.
// Any stage failure aborts the request before later stages run; parse-time
// failures never reach the store. There is no retry: a failed request must be
// resubmitted in full.
func (s *Service) Run(ctx context.Context, req ImportRequest) (*ImportResult, error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()

	if !utf8.Valid(req.FileBytes) {
		return nil, ErrNotText
	}

	rows, err := Normalize(string(req.FileBytes))
	if err != nil {
		return nil, fmt.Errorf("invalid csv: %w", err)
	}

	dailyTotals := AggregateDaily(rows)
	totalAmount := GrandTotal(dailyTotals)

	fileName := req.FileName
	if fileName == "" {
		fileName = DefaultFileName
	}

	importedAt := s.now().UTC()
	fileSHA256 := SHA256Hex(req.FileBytes)

	out, err := s.store.PersistImport(ctx, PersistInput{
		StoreID:     req.StoreID,
		ImportedBy:  req.ImportedBy,
		FileName:    fileName,
		FileSHA256:  fileSHA256,
		RawPayload:  string(req.FileBytes),
		ImportedAt:  importedAt,
		Rows:        rows,
		DailyTotals: dailyTotals,
		TotalAmount: totalAmount,
	})
	if err != nil {
		slog.Error("import persistence failed",
			"store_id", req.StoreID,
			"file_name", fileName,
			"rows", len(rows),
			"error", err,
		)
		return nil, err
	}

	slog.Info("import completed",
		"import_id", out.ImportID,
		"report_id", out.ReportID,
		"store_id", req.StoreID,
		"rows", len(rows),
		"total_amount", totalAmount,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &ImportResult{
		ImportID:    out.ImportID,
		ReportID:    out.ReportID,
		StoreID:     req.StoreID,
		ImportedBy:  req.ImportedBy,
		ImportedAt:  importedAt,
		FileSHA256:  fileSHA256,
		RowsCount:   len(rows),
		TotalAmount: totalAmount,
		DailyTotals: dailyTotals,
	}, nil
}

// GetImport returns a previously persisted import by id.
func (s *Service) GetImport(ctx context.Context, id uuid.UUID) (*ImportRecord, error) {
	return s.store.GetImport(ctx, id)
}

// GetReport returns a previously persisted report snapshot by id.
func (s *Service) GetReport(ctx context.Context, id uuid.UUID) (*ReportRecord, error) {
	return s.store.GetReport(ctx, id)
}

// LimiterActive reports how many imports are currently in the pipeline.
func (s *Service) LimiterActive() int {
	return s.limiter.ActiveCount()
}

// WaitForImports blocks until in-flight imports finish or ctx is cancelled.
func (s *Service) WaitForImports(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}
