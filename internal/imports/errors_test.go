package imports

import (
	"errors"
	"fmt"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{
			name:     "invalid csv",
			err:      fmt.Errorf("invalid csv: %w", &ParseError{Line: 3, Reason: "invalid date on row 3"}),
			wantCode: "VAL001",
		},
		{
			name:     "not utf-8",
			err:      ErrNotText,
			wantCode: "VAL002",
		},
		{
			name:     "missing field",
			err:      errors.New("store_id is required"),
			wantCode: "VAL003",
		},
		{
			name:     "limiter full",
			err:      ErrTooManyImports,
			wantCode: "IMP001",
		},
		{
			name:     "client cancelled",
			err:      fmt.Errorf("persist import: %w", errors.New("context canceled")),
			wantCode: "IMP002",
		},
		{
			name:     "deadline exceeded",
			err:      errors.New("context deadline exceeded"),
			wantCode: "DB003",
		},
		{
			name:     "statement timeout",
			err:      errors.New("ERROR: canceling statement due to statement timeout"),
			wantCode: "DB003",
		},
		{
			name:     "unique constraint",
			err:      errors.New(`duplicate key value violates unique constraint "suppliers_name_key"`),
			wantCode: "DB001",
		},
		{
			name:     "connection refused",
			err:      errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"),
			wantCode: "DB002",
		},
		{
			name:     "connection reset",
			err:      errors.New("read tcp: connection reset by peer"),
			wantCode: "DB002",
		},
		{
			name:     "case insensitive match",
			err:      errors.New("INVALID CSV: row 2 must have 3 columns: date,supplier,amount"),
			wantCode: "VAL001",
		},
		{
			name:     "unknown error",
			err:      errors.New("something completely different"),
			wantCode: "ERR000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError(%v).Code = %s, want %s", tt.err, got.Code, tt.wantCode)
			}
			if tt.wantCode != "ERR000" && got.Message == "" {
				t.Error("mapped message is empty")
			}
		})
	}
}

func TestMapError_Nil(t *testing.T) {
	got := MapError(nil)
	if got.Code != "ERR000" {
		t.Errorf("MapError(nil).Code = %s, want ERR000", got.Code)
	}
}
