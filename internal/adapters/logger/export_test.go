package logger

// Exported for white-box tests of the error formatting.
var (
	CollectErrorEntriesExported = collectErrorEntries
	FormatErrorEntriesExported  = formatErrorEntries
)

// NewConsoleHandlerExported builds the pretty handler for attribute rendering tests.
var NewConsoleHandlerExported = newConsoleHandler
