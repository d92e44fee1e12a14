package core

// errors.go defines the import error kinds and maps technical errors to
// support codes.
//
// # Support codes
//
//	FILE001 - Upload exceeds the configured size limit
//	FILE002 - File is not a readable spreadsheet
//	FILE003 - File contains invalid characters
//	FILE004 - No file was attached to the request
//	VAL001  - Price is negative
//	VAL003  - Required column (Title or Authors) is empty
//	DB001   - Duplicate record rejected by the store
//	DB002   - Store rejected the document schema
//	DB004   - Store unreachable
//	DB006   - Store operation timed out
//	UPL002  - Too many concurrent imports
//	UPL004  - Request was cancelled
//	UPL005  - Request timed out
//	RATE001 - Rate limited
//	ERR000  - Unknown; check the server log for the technical error
//
// Patterns are matched case-insensitively with strings.Contains. The first
// match wins, so specific patterns come before general ones.

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingFile is returned when an upload request carries no file part.
var ErrMissingFile = errors.New("no file provided")

// Stage names the import step that failed.
type Stage string

const (
	StageStore    Stage = "store"
	StageDecode   Stage = "decode"
	StageValidate Stage = "validate"
	StagePersist  Stage = "persist"
)

// ProcessingError is returned by Service.Import when a file could not be
// imported. The temp upload is left in place when this error is returned.
type ProcessingError struct {
	Stage    Stage
	FileName string
	Err      error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Stage, e.FileName, e.Err)
}

func (e *ProcessingError) Unwrap() error { return e.Err }

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened
	Action  string // What to do about it
	Code    string // Support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// File
	{"request body too large", UserMessage{"File exceeds the maximum upload size", "Split the spreadsheet into smaller files", "FILE001"}},
	{"unsupported spreadsheet format", UserMessage{"File is not a spreadsheet", "Upload an .xlsx, .xls or .csv file", "FILE002"}},
	{"workbook has no sheets", UserMessage{"Workbook has no sheets", "Add the book rows to the first sheet", "FILE002"}},
	{"zip: not a valid zip file", UserMessage{"File is not a readable spreadsheet", "Re-save the file from your spreadsheet program", "FILE002"}},
	{"corrupt xls file", UserMessage{"File is not a readable spreadsheet", "Re-save the file from your spreadsheet program", "FILE002"}},
	{"parse error on line", UserMessage{"CSV file could not be parsed", "Check quoting in the CSV file", "FILE002"}},
	{"invalid utf-8", UserMessage{"File contains invalid characters", "Save the file with UTF-8 encoding", "FILE003"}},
	{"no file provided", UserMessage{"No file was selected", "Choose a spreadsheet to upload", "FILE004"}},

	// Validation
	{"price: must be at least", UserMessage{"A price is negative", "Prices must be zero or greater", "VAL001"}},
	{"required field is empty", UserMessage{"A required column is empty", "Every row needs a Title and Authors value", "VAL003"}},

	// Store
	{"duplicate key", UserMessage{"A record already exists", "Remove duplicate rows and try again", "DB001"}},
	{"document failed validation", UserMessage{"The database rejected a record", "Check titles, authors and prices", "DB002"}},
	{"violates check constraint", UserMessage{"The database rejected a record", "Check titles, authors and prices", "DB002"}},
	{"connection refused", UserMessage{"Unable to connect to database", "Please try again in a few moments", "DB004"}},
	{"server selection error", UserMessage{"Unable to connect to database", "Please try again in a few moments", "DB004"}},
	{"timeout", UserMessage{"Operation timed out", "Try a smaller file or try again later", "DB006"}},

	// Upload
	{"too many uploads", UserMessage{"System is busy processing other uploads", "Please wait a moment and try again", "UPL002"}},
	{"context canceled", UserMessage{"Request was cancelled", "Please try again", "UPL004"}},
	{"context deadline exceeded", UserMessage{"Request timed out", "Try a smaller file or check your connection", "UPL005"}},

	{"rate limit", UserMessage{"Too many requests", "Please wait a moment before trying again", "RATE001"}},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message. If no
// pattern matches, the ERR000 fallback is returned.
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

// FormatUserError renders "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
