package errors

import (
	"math"
	"testing"
	"time"
)

func TestValidateWindow(t *testing.T) {
	end := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	before := end.Add(-time.Hour)
	after := end.Add(time.Hour)

	tests := []struct {
		name    string
		start   *time.Time
		end     time.Time
		wantErr bool
	}{
		{"as of", nil, end, false},
		{"range", &before, end, false},
		{"empty range", &end, end, false},
		{"missing end", nil, time.Time{}, true},
		{"inverted", &after, end, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateWindow(tt.start, tt.end)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateWindow() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidWindow) {
				t.Errorf("code = %v, want %v", GetCode(err), ErrCodeInvalidWindow)
			}
		})
	}
}

func TestValidateDimensions(t *testing.T) {
	tests := []struct {
		name          string
		width, height float64
		wantErr       bool
	}{
		{"default", 1200, 800, false},
		{"bounds", 1, MaxDimension, false},
		{"zero", 0, 800, true},
		{"negative height", 1200, -5, true},
		{"huge", 1e9, 800, true},
		{"nan", math.NaN(), 800, true},
		{"inf", 1200, math.Inf(1), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDimensions(tt.width, tt.height)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateDimensions(%v, %v) = %v, wantErr %v", tt.width, tt.height, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("code = %v, want %s", err, ErrCodeInvalidInput)
			}
		})
	}
}

func TestValidateIterations(t *testing.T) {
	for _, n := range []int{0, 1, 100, MaxIterations} {
		if err := ValidateIterations(n); err != nil {
			t.Errorf("ValidateIterations(%d) = %v", n, err)
		}
	}
	for _, n := range []int{-1, MaxIterations + 1} {
		if err := ValidateIterations(n); err == nil {
			t.Errorf("ValidateIterations(%d) = nil, want error", n)
		}
	}
}

func TestValidateConnectionStrings(t *testing.T) {
	tests := []struct {
		name    string
		fn      func(string) error
		input   string
		wantErr bool
	}{
		{"mongo", ValidateMongoURI, "mongodb://localhost:27017", false},
		{"mongo srv", ValidateMongoURI, "mongodb+srv://cluster.example.net", false},
		{"mongo empty", ValidateMongoURI, "", true},
		{"mongo http", ValidateMongoURI, "http://localhost", true},
		{"redis", ValidateRedisURL, "redis://localhost:6379/0", false},
		{"redis tls", ValidateRedisURL, "rediss://cache.example.net:6380", false},
		{"redis bare", ValidateRedisURL, "localhost:6379", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.fn(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
