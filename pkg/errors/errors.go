package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeNetwork represents transport-level errors (timeouts, refused connections)
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeBlocked represents access-denial responses, usually anti-automation blocking
	ErrorTypeBlocked ErrorType = "blocked"
	// ErrorTypeHTTP represents any other non-success HTTP response
	ErrorTypeHTTP ErrorType = "http"
	// ErrorTypeParsing represents HTML parsing errors
	ErrorTypeParsing ErrorType = "parsing"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
	// ErrorTypeExport represents output artifact errors
	ErrorTypeExport ErrorType = "export"
	// ErrorTypeUpload represents ingestion upload errors
	ErrorTypeUpload ErrorType = "upload"
)

// CrawlError represents an error raised anywhere in the crawl/export/upload chain
type CrawlError struct {
	Type    ErrorType
	Scope   string // store id, URL or file the error relates to
	Message string
	Status  int // HTTP status when applicable, 0 otherwise
	Err     error
	Time    time.Time
}

// Error implements the error interface
func (e *CrawlError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Scope, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Scope, e.Message)
}

// Unwrap returns the underlying error
func (e *CrawlError) Unwrap() error {
	return e.Err
}

// New creates a new CrawlError
func New(errType ErrorType, scope, message string, err error) *CrawlError {
	return &CrawlError{
		Type:    errType,
		Scope:   scope,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewNetwork creates a new transport-level error
func NewNetwork(scope, message string, err error) *CrawlError {
	return New(ErrorTypeNetwork, scope, message, err)
}

// NewBlocked creates a new access-denial error
func NewBlocked(scope string, status int) *CrawlError {
	e := New(ErrorTypeBlocked, scope, fmt.Sprintf("access denied (HTTP %d); the site may block datacenter IPs, retry from another network origin", status), nil)
	e.Status = status
	return e
}

// NewHTTPStatus creates a new non-success response error
func NewHTTPStatus(scope string, status int) *CrawlError {
	e := New(ErrorTypeHTTP, scope, fmt.Sprintf("unexpected status code: %d", status), nil)
	e.Status = status
	return e
}

// NewParsing creates a new parsing error
func NewParsing(scope, message string, err error) *CrawlError {
	return New(ErrorTypeParsing, scope, message, err)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *CrawlError {
	return New(ErrorTypeConfiguration, "", message, err)
}

// NewExport creates a new output artifact error
func NewExport(scope, message string, err error) *CrawlError {
	return New(ErrorTypeExport, scope, message, err)
}

// NewUpload creates a new ingestion upload error
func NewUpload(scope, message string, err error) *CrawlError {
	return New(ErrorTypeUpload, scope, message, err)
}

// TypeOf returns the error type of err, or an empty string when err is not a CrawlError
func TypeOf(err error) ErrorType {
	var ce *CrawlError
	if stderrors.As(err, &ce) {
		return ce.Type
	}
	return ""
}

// StatusOf returns the HTTP status carried by err, 0 when absent
func StatusOf(err error) int {
	var ce *CrawlError
	if stderrors.As(err, &ce) {
		return ce.Status
	}
	return 0
}
