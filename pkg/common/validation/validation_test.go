package validation

import (
	"testing"
	"time"

	gaerrors "github.com/vnykmshr/goadmit/pkg/common/errors"
)

func TestValidatePositive(t *testing.T) {
	tests := []struct {
		name    string
		value   int
		wantErr bool
	}{
		{"positive", 10, false},
		{"one", 1, false},
		{"zero", 0, true},
		{"negative", -5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePositive("test", "capacity", tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePositive(%d) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
			if err != nil && !gaerrors.IsValidationError(err) {
				t.Error("error should be a ValidationError")
			}
		})
	}
}

func TestValidateNonNegative(t *testing.T) {
	tests := []struct {
		name    string
		value   float64
		wantErr bool
	}{
		{"positive", 1.5, false},
		{"zero", 0, false},
		{"negative", -0.1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNonNegative("test", "rate", tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateNonNegative(%v) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePositiveFloat(t *testing.T) {
	tests := []struct {
		name    string
		value   float64
		wantErr bool
	}{
		{"positive", 2.5, false},
		{"small positive", 0.001, false},
		{"zero", 0, true},
		{"negative", -1.0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePositiveFloat("test", "rate", tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePositiveFloat(%v) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePositiveDuration(t *testing.T) {
	tests := []struct {
		name    string
		value   time.Duration
		wantErr bool
	}{
		{"one second", time.Second, false},
		{"one millisecond", time.Millisecond, false},
		{"zero", 0, true},
		{"negative", -time.Second, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePositiveDuration("test", "interval", tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePositiveDuration(%v) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestValidateNotNil(t *testing.T) {
	if err := ValidateNotNil("test", "clock", struct{}{}); err != nil {
		t.Errorf("unexpected error for non-nil value: %v", err)
	}
	if err := ValidateNotNil("test", "clock", nil); err == nil {
		t.Error("expected error for nil value")
	}
}

func TestValidateNotEmpty(t *testing.T) {
	if err := ValidateNotEmpty("test", "name", "api"); err != nil {
		t.Errorf("unexpected error for non-empty string: %v", err)
	}
	if err := ValidateNotEmpty("test", "name", ""); err == nil {
		t.Error("expected error for empty string")
	}
}
