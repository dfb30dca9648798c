package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrEndOfResults marks the normal end of a paginated listing. It is not a failure.
var ErrEndOfResults = stderrors.New("end of results")

// ErrHarvestInProgress means another process holds the harvest lock for a source.
var ErrHarvestInProgress = stderrors.New("harvest in progress")

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeNetwork represents transport failures and unexpected HTTP statuses
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeRateLimit represents a source answering 429
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeParsing represents HTML parsing errors
	ErrorTypeParsing ErrorType = "parsing"
	// ErrorTypeExtraction represents a single listing that could not be turned into a record
	ErrorTypeExtraction ErrorType = "extraction"
	// ErrorTypePersistence represents snapshot read/write errors
	ErrorTypePersistence ErrorType = "persistence"
	// ErrorTypePublisher represents publisher-related errors
	ErrorTypePublisher ErrorType = "publisher"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
	// ErrorTypeLocked represents a harvest skipped because another one is running
	ErrorTypeLocked ErrorType = "locked"
)

// HarvestError carries the source and page a failure happened on.
type HarvestError struct {
	Type    ErrorType
	Source  string
	Page    int
	Message string
	Err     error
	Time    time.Time
}

// Error implements the error interface
func (e *HarvestError) Error() string {
	where := e.Source
	if e.Page > 0 {
		where = fmt.Sprintf("%s page %d", e.Source, e.Page)
	}
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, where, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, where, e.Message)
}

// Unwrap returns the underlying error
func (e *HarvestError) Unwrap() error {
	return e.Err
}

// New creates a new HarvestError
func New(errType ErrorType, source, message string, err error) *HarvestError {
	return &HarvestError{
		Type:    errType,
		Source:  source,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// AtPage records the page number the error happened on.
func (e *HarvestError) AtPage(page int) *HarvestError {
	e.Page = page
	return e
}

// NewNetwork creates a new network error
func NewNetwork(source, message string, err error) *HarvestError {
	return New(ErrorTypeNetwork, source, message, err)
}

// NewRateLimit creates a new rate limit error
func NewRateLimit(source, retryAfter string) *HarvestError {
	message := "rate limited"
	if retryAfter != "" {
		message = fmt.Sprintf("rate limited; retry after %s", retryAfter)
	}
	return New(ErrorTypeRateLimit, source, message, nil)
}

// NewParsing creates a new parsing error
func NewParsing(source, message string, err error) *HarvestError {
	return New(ErrorTypeParsing, source, message, err)
}

// NewExtraction creates a new extraction error
func NewExtraction(source, message string) *HarvestError {
	return New(ErrorTypeExtraction, source, message, nil)
}

// NewPersistence creates a new persistence error
func NewPersistence(source, message string, err error) *HarvestError {
	return New(ErrorTypePersistence, source, message, err)
}

// NewPublisher creates a new publisher error
func NewPublisher(source, message string, err error) *HarvestError {
	return New(ErrorTypePublisher, source, message, err)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *HarvestError {
	return New(ErrorTypeConfiguration, "", message, err)
}

// NewLocked creates an error for a source whose harvest lock is held elsewhere
func NewLocked(source string) *HarvestError {
	return New(ErrorTypeLocked, source, "harvest already in progress", ErrHarvestInProgress)
}

// IsType reports whether err wraps a HarvestError of the given type.
func IsType(err error, errType ErrorType) bool {
	var he *HarvestError
	if stderrors.As(err, &he) {
		return he.Type == errType
	}
	return false
}
