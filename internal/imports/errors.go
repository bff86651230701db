// Package imports error reference.
//
// This file defines user-friendly error messages with codes for support
// reference. When users encounter errors, they can quote the error code to
// support staff for faster diagnosis.
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - Invalid CSV: a row failed validation (bad date, bad amount, or
//	         wrong column count). The message names the offending row.
//	         Action: Fix the named row and re-upload the whole file
//	         Patterns: "invalid csv"
//
//	VAL002 - Encoding: the uploaded file is not UTF-8 text
//	         Action: Save the file as UTF-8 CSV and re-upload
//	         Patterns: "must be utf-8"
//
//	VAL003 - Missing input: a required form field was absent
//	         Action: Provide store_id, imported_by and the file
//	         Patterns: "is required"
//
// # Database Errors (DB001-DB099)
//
//	DB001 - Constraint: data violates a database constraint
//	        Patterns: "unique constraint", "violates"
//
//	DB002 - Connection: the database is unreachable or dropped the connection
//	        Patterns: "connection refused", "connection reset"
//
//	DB003 - Timeout: the transaction took too long
//	        Patterns: "timeout", "context deadline exceeded"
//
// # Import Errors (IMP001-IMP099)
//
//	IMP001 - System busy: too many imports in progress
//	         Patterns: "too many concurrent imports"
//
//	IMP002 - Cancelled: the request was cancelled by the client
//	         Patterns: "context canceled"
//
// # Default (ERR000)
//
//	ERR000 - Unknown error. Check application logs for the technical error.
//
// Patterns are matched case-insensitively with strings.Contains; the first
// match wins, so specific patterns come before general ones.
package imports

import (
	"errors"
	"strings"
)

// ErrNotText is returned when the uploaded payload is not valid UTF-8.
var ErrNotText = errors.New("file must be UTF-8 text/csv")

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "The file contains an invalid row",
			Action:  "Fix the named row and re-upload the whole file",
			Code:    "VAL001",
		},
	},
	{
		pattern: "must be utf-8",
		msg: UserMessage{
			Message: "The file is not UTF-8 text",
			Action:  "Save the file as UTF-8 CSV and re-upload",
			Code:    "VAL002",
		},
	},
	{
		pattern: "is required",
		msg: UserMessage{
			Message: "A required field is missing",
			Action:  "Provide store_id, imported_by and the file",
			Code:    "VAL003",
		},
	},
	{
		pattern: "too many concurrent imports",
		msg: UserMessage{
			Message: "Too many imports are in progress",
			Action:  "Please wait a moment and try again",
			Code:    "IMP001",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "The request was cancelled",
			Action:  "Please try again",
			Code:    "IMP002",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "The import timed out",
			Action:  "Try a smaller file or try again later",
			Code:    "DB003",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "The import timed out",
			Action:  "Try a smaller file or try again later",
			Code:    "DB003",
		},
	},
	{
		pattern: "unique constraint",
		msg: UserMessage{
			Message: "The data conflicts with an existing record",
			Action:  "Please try again or contact support",
			Code:    "DB001",
		},
	},
	{
		pattern: "violates",
		msg: UserMessage{
			Message: "The data conflicts with an existing record",
			Action:  "Please try again or contact support",
			Code:    "DB001",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "The database is temporarily unavailable",
			Action:  "Please try again in a few moments",
			Code:    "DB002",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "The database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB002",
		},
	},
}

// MapError converts a technical error into a user-friendly message.
// Unmatched errors fall back to ERR000 with a generic message; the technical
// error is logged at the boundary, never shown to the client.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{Code: "ERR000"}
	}

	lower := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(lower, ep.pattern) {
			return ep.msg
		}
	}

	return UserMessage{
		Message: "An unexpected error occurred",
		Action:  "Please try again or contact support",
		Code:    "ERR000",
	}
}
