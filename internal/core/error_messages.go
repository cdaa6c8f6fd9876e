// Package core provides table views over registered data sources.
//
// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// When users encounter errors, they can quote the error code to support staff
// for faster diagnosis.
//
// Error codes are grouped by category:
//
// # Table Configuration Errors (VIEW001-VIEW099)
//
// Errors raised when a table definition cannot be turned into a view schema.
// These point at a programming error, not at user input:
//
//	VIEW001 - Duplicate column: Table defines the same column twice
//	          Patterns: "duplicate column id"
//
//	VIEW002 - Empty column: Table defines a column without a name
//	          Patterns: "empty column id"
//
//	VIEW003 - No accessor: Table defines a column that cannot be read
//	          Patterns: "column has no accessor"
//
//	VIEW004 - No schema: Table has no column schema
//	          Patterns: "nil schema"
//
// # Sort, Filter and Page Errors (SORT, FILT, PAGE)
//
//	SORT001 - Column cannot be sorted
//	          Action: Choose a sortable column
//	          Patterns: "invalid sort column"
//
//	SORT002 - Unknown sort direction
//	          Action: Use asc or desc
//	          Patterns: "invalid sort direction"
//
//	FILT001 - Column cannot be filtered
//	          Action: Choose a filterable column
//	          Patterns: "invalid filter column"
//
//	PAGE001 - Page size not allowed
//	          Action: Choose one of the offered page sizes
//	          Patterns: "invalid page size"
//
//	PAGE002 - Page number out of range
//	          Action: Page numbers start at 1
//	          Patterns: "invalid page index"
//
// # Session Errors (SES001-SES099)
//
//	SES001 - Session not found: The view session expired or never existed
//	         Action: Open the table again
//	         Patterns: "session not found"
//
//	SES002 - Too many sessions: The server has reached its session limit
//	         Action: Close unused views or try again later
//	         Patterns: "too many sessions"
//
// # Table Errors (TBL001-TBL099)
//
//	TBL001 - Table not found: The specified table does not exist
//	         Action: Verify the table name is correct
//	         Patterns: "table not found"
//
//	TBL002 - Source unavailable: The table's data source is not configured
//	         Action: Configure DATABASE_URL or choose a built-in table
//	         Patterns: "data source unavailable"
//
// # Export Errors (EXP001-EXP099)
//
//	EXP001 - Too many exports: All export slots are busy
//	         Action: Please wait a moment before exporting again
//	         Patterns: "too many concurrent exports"
//
// # Database Errors (DB004-DB006)
//
//	DB004 - Connection refused: Unable to connect to database
//	        Patterns: "connection refused", "failed to connect"
//
//	DB005 - Connection reset: Database connection was interrupted
//	        Patterns: "connection reset"
//
//	DB006 - Timeout: Operation timed out
//	        Patterns: "timeout"
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Request cancelled
//	         Patterns: "context canceled"
//
//	REQ002 - Request timed out
//	         Patterns: "context deadline exceeded"
//
//	REQ003 - Malformed request: A parameter or body could not be parsed
//	         Patterns: "bad request"
//
// # Rate Limiting (RATE001-RATE099)
//
//	RATE001 - Rate limited: Too many requests
//	          Action: Please wait a moment before trying again
//	          Patterns: "rate limit"
//
// # Default Error (ERR000)
//
// Fallback when no specific pattern matches:
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Action: Please try again or contact support
//
// # Pattern Matching
//
// Error patterns are matched case-insensitively using strings.Contains.
// The first matching pattern wins, so more specific patterns should be
// defined before general ones. Multiple patterns can map to the same code
// (e.g., DB004 matches both "connection refused" and "failed to connect").
package core

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"` // What happened (user-friendly)
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// The first matching pattern wins, so order matters.
//
// To add a new error pattern:
//  1. Choose the appropriate category and code range
//  2. Add the pattern in the correct position (specific before general)
//  3. Update the package documentation at the top of this file
var errorPatterns = []errorPattern{
	// =========================================================================
	// Table Configuration Errors (VIEW001-VIEW004)
	// =========================================================================
	{
		pattern: "duplicate column id",
		msg: UserMessage{
			Message: "Table defines the same column twice",
			Action:  "Contact support; the table definition must be fixed",
			Code:    "VIEW001",
		},
	},
	{
		pattern: "empty column id",
		msg: UserMessage{
			Message: "Table defines a column without a name",
			Action:  "Contact support; the table definition must be fixed",
			Code:    "VIEW002",
		},
	},
	{
		pattern: "column has no accessor",
		msg: UserMessage{
			Message: "Table defines a column that cannot be read",
			Action:  "Contact support; the table definition must be fixed",
			Code:    "VIEW003",
		},
	},
	{
		pattern: "nil schema",
		msg: UserMessage{
			Message: "Table has no column schema",
			Action:  "Contact support; the table definition must be fixed",
			Code:    "VIEW004",
		},
	},

	// =========================================================================
	// Sort, Filter and Page Errors
	// =========================================================================
	{
		pattern: "invalid sort column",
		msg: UserMessage{
			Message: "This column cannot be sorted",
			Action:  "Choose a sortable column",
			Code:    "SORT001",
		},
	},
	{
		pattern: "invalid sort direction",
		msg: UserMessage{
			Message: "Unknown sort direction",
			Action:  "Use asc or desc",
			Code:    "SORT002",
		},
	},
	{
		pattern: "invalid filter column",
		msg: UserMessage{
			Message: "This column cannot be filtered",
			Action:  "Choose a filterable column",
			Code:    "FILT001",
		},
	},
	{
		pattern: "invalid page size",
		msg: UserMessage{
			Message: "Page size is not allowed",
			Action:  "Choose one of the offered page sizes",
			Code:    "PAGE001",
		},
	},
	{
		pattern: "invalid page index",
		msg: UserMessage{
			Message: "Page number is out of range",
			Action:  "Page numbers start at 1",
			Code:    "PAGE002",
		},
	},

	// =========================================================================
	// Session Errors (SES001-SES002)
	// =========================================================================
	{
		pattern: "session not found",
		msg: UserMessage{
			Message: "View session not found",
			Action:  "The session may have expired. Open the table again",
			Code:    "SES001",
		},
	},
	{
		pattern: "too many sessions",
		msg: UserMessage{
			Message: "Too many open views",
			Action:  "Close unused views or try again later",
			Code:    "SES002",
		},
	},

	// =========================================================================
	// Table Errors (TBL001-TBL002)
	// =========================================================================
	{
		pattern: "table not found",
		msg: UserMessage{
			Message: "Table not found",
			Action:  "Verify the table name is correct",
			Code:    "TBL001",
		},
	},
	{
		pattern: "data source unavailable",
		msg: UserMessage{
			Message: "This table's data source is not configured",
			Action:  "Configure DATABASE_URL or choose a built-in table",
			Code:    "TBL002",
		},
	},

	{
		pattern: "too many concurrent exports",
		msg: UserMessage{
			Message: "Too many exports are running",
			Action:  "Please wait a moment before exporting again",
			Code:    "EXP001",
		},
	},

	// =========================================================================
	// Database Connection Errors (DB004-DB006)
	// =========================================================================
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "failed to connect",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB005",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Narrow your filters or try again later",
			Code:    "DB006",
		},
	},

	// =========================================================================
	// Request Errors (REQ001-REQ003)
	// =========================================================================
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ001",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Please try again later",
			Code:    "REQ002",
		},
	},
	{
		pattern: "bad request",
		msg: UserMessage{
			Message: "The request could not be understood",
			Action:  "Check the query parameters or request body",
			Code:    "REQ003",
		},
	},

	// =========================================================================
	// Rate Limiting (RATE001)
	// =========================================================================
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
// Support staff should check application logs for the original technical
// error when users report ERR000.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It searches through known error patterns (case-insensitive) and returns
// the first match. If no pattern matches, a generic fallback message with
// code ERR000 is returned.
//
// Example:
//
//	_, err := svc.SortSession(ctx, id, "notes")
//	msg := MapError(err)
//	// msg.Code == "SORT001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing checks if an error matches a known pattern and should be shown to users.
// Returns true if the error matches a specific pattern (not the generic ERR000 fallback).
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError wraps a technical error with a user-friendly message.
// The original error is preserved for logging while providing a clean message for users.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError creates a UserError by mapping a technical error to a user-friendly message.
// Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
