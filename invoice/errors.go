package invoice

import (
	"errors"
	"fmt"
)

var (
	// ErrConfigMerge reports a style override document or resolved style
	// that cannot be used.
	ErrConfigMerge = errors.New("invoice: invalid style configuration")
	// ErrMeasurement reports a text measurement failure, such as an
	// unknown font or invalid UTF-8.
	ErrMeasurement = errors.New("invoice: measurement failed")
	// ErrDrawing reports a failed drawing call.
	ErrDrawing = errors.New("invoice: drawing failed")
)

// RenderError attributes a failure to the section being drawn.
type RenderError struct {
	Section string
	Err     error
}

func (e *RenderError) Error() string { return fmt.Sprintf("render %s: %v", e.Section, e.Err) }
func (e *RenderError) Unwrap() error { return e.Err }

// errorKind classifies err for logs and metrics.
func errorKind(err error) string {
	switch {
	case errors.Is(err, ErrConfigMerge):
		return "config"
	case errors.Is(err, ErrMeasurement):
		return "measurement"
	case errors.Is(err, ErrDrawing):
		return "drawing"
	default:
		return "serialization"
	}
}

func sectionOf(err error) string {
	var re *RenderError
	if errors.As(err, &re) {
		return re.Section
	}
	return ""
}
