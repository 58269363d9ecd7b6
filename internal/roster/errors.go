package roster

// errors.go maps technical errors to user-friendly messages with support
// codes. Coordinators quote the code when they file a ticket, which beats
// pasting a pg constraint name into chat.

import "strings"

// UserMessage is a user-facing rendering of a technical error.
type UserMessage struct {
	Message string `json:"message"` // What happened
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Support reference
}

// errorPattern maps a technical error substring (case-insensitive) to its
// user message. First match wins; specific patterns sit before general ones.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// Database constraint errors
	{
		pattern: "duplicate key",
		msg: UserMessage{
			Message: "A staff member with this identity already exists",
			Action:  "Exclude the duplicate row or edit the name before committing",
			Code:    "DB001",
		},
	},
	{
		pattern: "unique constraint",
		msg: UserMessage{
			Message: "This value must be unique but already exists",
			Action:  "Check the staging list for duplicate entries",
			Code:    "DB002",
		},
	},
	{
		pattern: "foreign key",
		msg: UserMessage{
			Message: "A referenced credential type no longer exists",
			Action:  "Rebuild the preview and re-check the column mapping",
			Code:    "DB003",
		},
	},
	// Connectivity
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to reach the database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "The database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB005",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "The operation timed out",
			Action:  "Try a smaller file or try again later",
			Code:    "DB006",
		},
	},
	// File/parse errors
	{
		pattern: "unsupported file type",
		msg: UserMessage{
			Message: "This file type is not supported",
			Action:  "Upload an .xlsx or .csv export",
			Code:    "FILE001",
		},
	},
	{
		pattern: "parse csv",
		msg: UserMessage{
			Message: "The file could not be read as a spreadsheet",
			Action:  "Re-export the roster and upload it again",
			Code:    "FILE002",
		},
	},
	{
		pattern: "open workbook",
		msg: UserMessage{
			Message: "The file could not be read as a spreadsheet",
			Action:  "Re-export the roster and upload it again",
			Code:    "FILE002",
		},
	},
	{
		pattern: "no column header row",
		msg: UserMessage{
			Message: "No column header row was found near the top of the sheet",
			Action:  "Make sure the sheet starts with a row of column titles",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no name column",
		msg: UserMessage{
			Message: "The column mapping has no staff name column",
			Action:  "Select which column holds staff names, then preview again",
			Code:    "MAP001",
		},
	},
	// Session lifecycle
	{
		pattern: "session not found",
		msg: UserMessage{
			Message: "This import session has expired or was already closed",
			Action:  "Upload the file again to start a new import",
			Code:    "SES001",
		},
	},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again; contact support if it keeps happening",
	Code:    "GEN001",
}

// MapError converts a technical error to its user-facing message. A nil
// error maps to the zero UserMessage.
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
