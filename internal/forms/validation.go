// Package forms validates submitted form fields and produces the messages
// shown next to each input.
//
// Validation happens per field: required check first, then length limits,
// then the type check (email, number, date, enum) and an optional pattern.
// [Form.Validate] returns every failing field so the page can mark all of
// them at once; [ValidateField] returns the first problem of one field for
// validate-on-blur.
package forms

import (
	"fmt"
	"net/mail"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// FieldType is the expected kind of value.
type FieldType int

const (
	FieldText FieldType = iota
	FieldEmail
	FieldNumber
	FieldDate
	FieldEnum
)

// Field defines the rules for a single input.
type Field struct {
	Name       string         // Input name attribute
	Label      string         // Display label used in messages
	Type       FieldType      // Expected value kind
	Required   bool           // Value must be non-blank
	MinLen     int            // Minimum length in characters (0 = none)
	MaxLen     int            // Maximum length in characters (0 = none)
	Pattern    *regexp.Regexp // Optional format check
	PatternMsg string         // Message when Pattern does not match
	EnumValues []string       // Allowed values for FieldEnum
}

// Form is a named set of fields.
type Form struct {
	ID     string
	Fields []Field
}

// ValidationError is one failing field.
type ValidationError struct {
	Field   string `json:"field"`
	Value   string `json:"value,omitempty"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// Result is the outcome of validating a whole form.
type Result struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// Message returns the message for field name, or "".
func (r Result) Message(name string) string {
	for _, e := range r.Errors {
		if e.Field == name {
			return e.Message
		}
	}
	return ""
}

// Validate checks every field of f against values. Fields missing from
// values are treated as blank. Unknown keys in values are ignored.
func (f Form) Validate(values map[string]string) Result {
	res := Result{Valid: true}
	for _, field := range f.Fields {
		raw := values[field.Name]
		if err := ValidateField(field, raw); err != nil {
			res.Valid = false
			res.Errors = append(res.Errors, ValidationError{
				Field:   field.Name,
				Value:   raw,
				Message: err.Error(),
			})
		}
	}
	return res
}

// Field returns the field called name.
func (f Form) Field(name string) (Field, bool) {
	for _, field := range f.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return Field{}, false
}

// ValidateField returns the first problem with value, or nil.
func ValidateField(field Field, value string) error {
	value = strings.TrimSpace(value)

	if value == "" {
		if field.Required {
			return fmt.Errorf("%s é obrigatório", field.label())
		}
		return nil
	}

	n := utf8.RuneCountInString(value)
	if field.MinLen > 0 && n < field.MinLen {
		return fmt.Errorf("%s deve ter pelo menos %d caracteres", field.label(), field.MinLen)
	}
	if field.MaxLen > 0 && n > field.MaxLen {
		return fmt.Errorf("%s deve ter no máximo %d caracteres", field.label(), field.MaxLen)
	}

	switch field.Type {
	case FieldEmail:
		addr, err := mail.ParseAddress(value)
		if err != nil || addr.Address != value {
			return fmt.Errorf("informe um e-mail válido")
		}
	case FieldNumber:
		if _, ok := ParseNumber(value); !ok {
			return fmt.Errorf("%s deve ser um número", field.label())
		}
	case FieldDate:
		if _, ok := ParseDate(value); !ok {
			return fmt.Errorf("%s deve ser uma data (DD/MM/AAAA)", field.label())
		}
	case FieldEnum:
		if len(field.EnumValues) > 0 && !containsFold(field.EnumValues, value) {
			return fmt.Errorf("%s deve ser um de: %s", field.label(), strings.Join(field.EnumValues, ", "))
		}
	}

	if field.Pattern != nil && !field.Pattern.MatchString(value) {
		if field.PatternMsg != "" {
			return fmt.Errorf("%s", field.PatternMsg)
		}
		return fmt.Errorf("%s está em formato inválido", field.label())
	}

	return nil
}

func (f Field) label() string {
	if f.Label != "" {
		return f.Label
	}
	return f.Name
}

// ParseNumber accepts plain decimals ("1234.5") and Brazilian formatting
// ("1.234,5").
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

var dateLayouts = []string{"02/01/2006", "2006-01-02"}

// ParseDate accepts DD/MM/YYYY and YYYY-MM-DD.
func ParseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func containsFold(values []string, v string) bool {
	for _, ev := range values {
		if strings.EqualFold(ev, v) {
			return true
		}
	}
	return false
}
