// Package logfields defines the attribute keys used in log records.
package logfields

const (
	// Logger is the category name of the logger that emitted the record
	Logger = "logger"

	// Path is a filesystem path
	Path = "path"

	// Error is the error attached to a record
	Error = "error"

	// Service is the service name configured for the process
	Service = "service"

	// RunID identifies one process run
	RunID = "run_id"

	// Key is a configuration key
	Key = "key"

	// Value is a configuration value
	Value = "value"
)
