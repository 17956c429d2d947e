package errors

import (
	"math"
	"strings"
	"time"
)

const (
	// MaxIterations bounds the relaxation passes a caller may request.
	MaxIterations = 10000
	// MaxDimension bounds the width and height of a rendered frame.
	MaxDimension = 8192
)

// ValidateWindow checks that a time window is well formed: end must be set
// and start, when present, must not come after it.
func ValidateWindow(start *time.Time, end time.Time) error {
	if end.IsZero() {
		return New(ErrCodeInvalidWindow, "window end is required")
	}
	if start != nil && start.After(end) {
		return New(ErrCodeInvalidWindow, "window start %s is after end %s",
			start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return nil
}

// ValidateIterations checks a requested relaxation pass count.
func ValidateIterations(n int) error {
	if n < 0 || n > MaxIterations {
		return New(ErrCodeInvalidInput, "iterations must be between 0 and %d, got %d", MaxIterations, n)
	}
	return nil
}

// ValidateDimensions checks a render frame size. Both sides must be finite
// and within 1..MaxDimension.
func ValidateDimensions(width, height float64) error {
	for _, d := range []struct {
		name string
		v    float64
	}{{"width", width}, {"height", height}} {
		if math.IsNaN(d.v) || d.v < 1 || d.v > MaxDimension {
			return New(ErrCodeInvalidInput, "%s must be between 1 and %d, got %v", d.name, MaxDimension, d.v)
		}
	}
	return nil
}

// ValidateMongoURI checks that uri uses a MongoDB connection scheme.
func ValidateMongoURI(uri string) error {
	if uri == "" {
		return New(ErrCodeInvalidConfig, "mongo URI cannot be empty")
	}
	if !strings.HasPrefix(uri, "mongodb://") && !strings.HasPrefix(uri, "mongodb+srv://") {
		return New(ErrCodeInvalidConfig, "mongo URI must use mongodb:// or mongodb+srv://")
	}
	return nil
}

// ValidateRedisURL checks that url uses a Redis connection scheme.
func ValidateRedisURL(url string) error {
	if url == "" {
		return New(ErrCodeInvalidConfig, "redis URL cannot be empty")
	}
	if !strings.HasPrefix(url, "redis://") && !strings.HasPrefix(url, "rediss://") {
		return New(ErrCodeInvalidConfig, "redis URL must use redis:// or rediss://")
	}
	return nil
}
