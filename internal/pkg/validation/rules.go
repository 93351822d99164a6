package validation

import (
	"regexp"
)

// Validation rule patterns and limits, enforced client-side before any
// network call.
var (
	// Indian mobile pattern: +91 followed by a leading digit 6-9 and
	// 9 more digits
	PhonePattern = `^\+91[6-9]\d{9}$`

	PasswordMinLength = 6

	EventTitleMinLength = 3
	EventTitleMaxLength = 100

	LocationMaxLength = 100

	StudentIDMinLength = 5
	StudentIDMaxLength = 20
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	Phone *regexp.Regexp
}{
	Phone: regexp.MustCompile(PhonePattern),
}

// StringValidation validates a single string field
type StringValidation struct {
	Value    string
	MinLen   int
	MaxLen   int
	Required bool
	Pattern  *regexp.Regexp
}

// NewStringValidation creates a new string validation; fields are
// required by default
func NewStringValidation(value string) *StringValidation {
	return &StringValidation{
		Value:    value,
		Required: true,
	}
}

// WithMinLength sets minimum length
func (v *StringValidation) WithMinLength(min int) *StringValidation {
	v.MinLen = min
	return v
}

// WithMaxLength sets maximum length
func (v *StringValidation) WithMaxLength(max int) *StringValidation {
	v.MaxLen = max
	return v
}

// WithPattern sets regex pattern
func (v *StringValidation) WithPattern(pattern *regexp.Regexp) *StringValidation {
	v.Pattern = pattern
	return v
}

// WithRequired sets if field is required
func (v *StringValidation) WithRequired(required bool) *StringValidation {
	v.Required = required
	return v
}

// Validate performs validation
func (v *StringValidation) Validate() bool {
	if v.Required && v.Value == "" {
		return false
	}
	// Skip other checks for empty optional values
	if !v.Required && v.Value == "" {
		return true
	}
	if v.MinLen > 0 && len(v.Value) < v.MinLen {
		return false
	}
	if v.MaxLen > 0 && len(v.Value) > v.MaxLen {
		return false
	}
	if v.Pattern != nil && !v.Pattern.MatchString(v.Value) {
		return false
	}
	return true
}

// Password checks the minimum password length rule.
func Password(password string) bool {
	return len(password) >= PasswordMinLength
}

// Phone checks the Indian mobile number rule.
func Phone(phone string) bool {
	return CompiledPatterns.Phone.MatchString(phone)
}

// EventTitle checks the title length window.
func EventTitle(title string) bool {
	return NewStringValidation(title).
		WithMinLength(EventTitleMinLength).
		WithMaxLength(EventTitleMaxLength).
		Validate()
}

// Location checks the required, bounded location rule.
func Location(location string) bool {
	return NewStringValidation(location).
		WithMaxLength(LocationMaxLength).
		Validate()
}

// StudentID checks the student identifier length window. Only applies
// when the role is STUDENT; callers skip it otherwise.
func StudentID(id string) bool {
	return NewStringValidation(id).
		WithMinLength(StudentIDMinLength).
		WithMaxLength(StudentIDMaxLength).
		Validate()
}
