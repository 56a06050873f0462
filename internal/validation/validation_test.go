package validation

import (
	"math"
	"strings"
	"testing"
)

func TestValidateRequired(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"empty", "", true},
		{"whitespace only", "   \t", true},
		{"present", "item-1", false},
		{"padded", "  item-1  ", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRequired("field", tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRequired(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestValidateMaxLength(t *testing.T) {
	if err := ValidateMaxLength("notes", strings.Repeat("a", 2000), 2000); err != nil {
		t.Errorf("expected value at limit to pass, got %v", err)
	}
	if err := ValidateMaxLength("notes", strings.Repeat("a", 2001), 2000); err == nil {
		t.Error("expected value over limit to fail")
	}
	// Runes, not bytes.
	if err := ValidateMaxLength("name", strings.Repeat("é", 10), 10); err != nil {
		t.Errorf("expected 10 runes to pass a 10-rune limit, got %v", err)
	}
}

func TestValidateUUID(t *testing.T) {
	if err := ValidateUUID("client_event_id", "8b74b6c5-2c9a-4f3e-9d0a-1f2e3c4b5a69"); err != nil {
		t.Errorf("expected valid UUID to pass, got %v", err)
	}
	for _, bad := range []string{"", "not-a-uuid", "8b74b6c5"} {
		if err := ValidateUUID("client_event_id", bad); err == nil {
			t.Errorf("expected %q to fail", bad)
		}
	}
}

func TestValidateEnum(t *testing.T) {
	allowed := []string{"ADJUSTMENT", "COUNT_SET"}

	if err := ValidateEnum("event_type", "ADJUSTMENT", allowed); err != nil {
		t.Errorf("expected allowed value to pass, got %v", err)
	}
	if err := ValidateEnum("event_type", "adjustment", allowed); err == nil {
		t.Error("expected enum match to be case sensitive")
	}
	if err := ValidateEnum("event_type", "SHRINKAGE", allowed); err == nil {
		t.Error("expected unknown value to fail")
	}
}

func TestValidateFiniteNonZero(t *testing.T) {
	tests := []struct {
		name    string
		value   float64
		wantErr bool
	}{
		{"positive", 3.5, false},
		{"negative", -2, false},
		{"zero", 0, true},
		{"nan", math.NaN(), true},
		{"positive inf", math.Inf(1), true},
		{"negative inf", math.Inf(-1), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFiniteNonZero("delta_base_units", tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFiniteNonZero(%v) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestCollector(t *testing.T) {
	var c Collector

	if c.HasErrors() {
		t.Error("new collector should have no errors")
	}

	c.Add(nil)
	if c.HasErrors() {
		t.Error("adding nil should not record an error")
	}

	c.Add(ValidateRequired("name", ""))
	c.Add(ValidateFiniteNonZero("delta", 0))
	if !c.HasErrors() {
		t.Fatal("expected collected errors")
	}
	errs := c.Errors()
	if len(errs) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(errs))
	}
	if errs[0].Field != "name" || errs[1].Field != "delta" {
		t.Errorf("expected errors in add order, got %+v", errs)
	}
}
