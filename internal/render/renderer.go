package render

import (
	"context"
	"time"

	"github.com/sqlsaturday/satops/internal/paper"
)

// Orientation of the printed page
type Orientation string

const (
	Portrait  Orientation = "portrait"
	Landscape Orientation = "landscape"
)

// Request contains the parameters for rendering HTML to PDF
type Request struct {
	// HTML is the complete document
	HTML  string
	Paper paper.Size
	// Orientation defaults to portrait
	Orientation Orientation
	// Margin in inches on every side
	Margin float64
	// Title for the PDF metadata
	Title string
	// Timeout overrides the renderer default
	Timeout time.Duration
}

// DocumentRenderer converts an HTML document to PDF bytes
type DocumentRenderer interface {
	Render(ctx context.Context, req *Request) ([]byte, error)
	// Close releases any resources held by the renderer
	Close() error
}

// Error represents a failure while rendering a document
type Error struct {
	Code    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Error codes for rendering failures
const (
	ErrCodeRenderTimeout    = "RENDER_TIMEOUT"
	ErrCodeRenderFailed     = "RENDER_FAILED"
	ErrCodeInvalidHTML      = "INVALID_HTML"
	ErrCodeInvalidPaperSize = "INVALID_PAPER_SIZE"
)

// NewError creates a new render Error
func NewError(code, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}
