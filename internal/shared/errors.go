package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrTimeout          = fmt.Errorf("operation timed out")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrTagNotFound        = fmt.Errorf("tag not found")
	ErrEventNotFound      = fmt.Errorf("event not found")

	// Sync errors
	ErrSourceFetch     = fmt.Errorf("failed to fetch tasks from source")
	ErrEventCreate     = fmt.Errorf("failed to create calendar event")
	ErrInvalidDueDate  = fmt.Errorf("invalid due date")
	ErrLedger          = fmt.Errorf("sync ledger failure")
	ErrDuplicateRecord = fmt.Errorf("sync record already exists")
	ErrRecordNotFound  = fmt.Errorf("sync record not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
