package validation

import (
	"strings"
	"testing"
)

// --- ValidateUTF8 Tests ---

func TestValidateUTF8_Valid(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"ascii", "hello world"},
		{"empty", ""},
		{"unicode", "Hello, 世界"},
		{"emoji", "Hello 👋🏻"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUTF8("field", tt.value)
			if err != nil {
				t.Errorf("ValidateUTF8(%q) = %v, want nil", tt.value, err)
			}
		})
	}
}

func TestValidateUTF8_Invalid(t *testing.T) {
	invalidUTF8 := string([]byte{0xff, 0xfe})

	err := ValidateUTF8("user_agent", invalidUTF8)
	if err == nil {
		t.Fatal("ValidateUTF8(invalid) = nil, want error")
	}
	if err.Field != "user_agent" {
		t.Errorf("error.Field = %q, want %q", err.Field, "user_agent")
	}
}

// --- ValidateNoNullBytes Tests ---

func TestValidateNoNullBytes(t *testing.T) {
	if err := ValidateNoNullBytes("field", "hello world"); err != nil {
		t.Errorf("ValidateNoNullBytes(clean) = %v, want nil", err)
	}
	if err := ValidateNoNullBytes("field", "hello\x00world"); err == nil {
		t.Error("ValidateNoNullBytes(with null) = nil, want error")
	}
}

// --- ValidateMaxLength Tests ---

func TestValidateMaxLength(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		max     int
		wantErr bool
	}{
		{"under", "abc", 5, false},
		{"exact", "abcde", 5, false},
		{"over", "abcdef", 5, true},
		{"multibyte counted as runes", "世界世界世", 5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMaxLength("field", tt.value, tt.max)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateMaxLength(%q, %d) = %v, wantErr %v", tt.value, tt.max, err, tt.wantErr)
			}
		})
	}
}

// --- ValidateRequired Tests ---

func TestValidateRequired(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"present", "user-1", false},
		{"empty", "", true},
		{"whitespace", "  \t\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRequired("user_id", tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRequired(%q) = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
			if err != nil && err.Message != "is required" {
				t.Errorf("Message = %q", err.Message)
			}
		})
	}
}

// --- ValidateText Tests ---

func TestValidateText_FirstFailureWins(t *testing.T) {
	err := ValidateText("page_url", "a\x00"+strings.Repeat("b", 10), 5)
	if err == nil {
		t.Fatal("ValidateText = nil, want error")
	}
	if err.Message != "must not contain null bytes" {
		t.Errorf("Message = %q, want null byte failure first", err.Message)
	}

	if err := ValidateText("page_url", "https://example.com", 100); err != nil {
		t.Errorf("ValidateText(valid) = %v", err)
	}
}

// --- ValidateRange Tests ---

func TestValidateRange(t *testing.T) {
	tests := []struct {
		value   float64
		wantErr bool
	}{
		{-90, false},
		{0, false},
		{90, false},
		{90.0001, true},
		{-91, true},
	}

	for _, tt := range tests {
		err := ValidateRange("lat", tt.value, -90, 90)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateRange(%v) = %v, wantErr %v", tt.value, err, tt.wantErr)
		}
	}

	err := ValidateRange("priceLevel", 7, 0, 4)
	if err == nil || err.Message != "must be between 0 and 4" {
		t.Errorf("ValidateRange message = %v", err)
	}
}

// --- Collector Tests ---

func TestCollector(t *testing.T) {
	var c Collector
	if c.HasErrors() {
		t.Fatal("new collector HasErrors = true")
	}

	c.Add(nil)
	c.Add(ValidateRequired("user_id", ""))
	c.Add(ValidateRequired("disclaimer_type", " "))
	c.Add(ValidateMaxLength("user_id", "", 0))
	c.Add(ValidateMaxLength("user_id", "toolong", 3))

	if !c.HasErrors() {
		t.Fatal("HasErrors = false, want true")
	}
	if got := len(c.Errors()); got != 3 {
		t.Errorf("len(Errors) = %d, want 3", got)
	}

	fields := c.Fields()
	if len(fields) != 2 || fields[0] != "user_id" || fields[1] != "disclaimer_type" {
		t.Errorf("Fields = %v, want [user_id disclaimer_type]", fields)
	}

	want := "user_id is required; disclaimer_type is required; user_id exceeds maximum length of 3 characters"
	if got := c.Message(); got != want {
		t.Errorf("Message = %q, want %q", got, want)
	}
}
