package services

import (
	"fmt"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
)

// emailRegex mirrors the classic permissive address format: local part,
// lower-case domain labels, alphabetic TLD. Uniqueness is enforced separately.
var emailRegex = regexp.MustCompile(`(?i)^[\w+\-.]+@[a-z\d\-]+(\.[a-z\d\-]+)*\.[a-z]+$`)

// fieldOrder fixes the order of aggregated messages.
var fieldOrder = []string{"name", "email", "password", "password_confirmation", "content"}

var fieldLabels = map[string]string{
	"name":                  "Name",
	"email":                 "Email",
	"password":              "Password",
	"password_confirmation": "Password confirmation",
	"content":               "Content",
}

// ValidationError aggregates every violated field rule of an operation. All
// rules are evaluated before it is returned, so callers always see the full
// set of problems at once.
type ValidationError struct {
	Fields validation.Errors
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 1 {
		return "the form contains 1 error"
	}
	return fmt.Sprintf("the form contains %d errors", len(e.Fields))
}

// Count returns the number of violated rules.
func (e *ValidationError) Count() int {
	return len(e.Fields)
}

// Messages returns one human readable message per violated rule, in a stable
// field order.
func (e *ValidationError) Messages() []string {
	msgs := make([]string, 0, len(e.Fields))
	for _, field := range fieldOrder {
		if err, ok := e.Fields[field]; ok {
			msgs = append(msgs, fieldLabels[field]+" "+err.Error())
		}
	}
	for field, err := range e.Fields {
		if _, known := fieldLabels[field]; !known {
			msgs = append(msgs, field+" "+err.Error())
		}
	}
	return msgs
}

// fieldErrors collects per-field rule violations and converts them into a
// single *ValidationError.
type fieldErrors struct {
	fields validation.Errors
}

func newFieldErrors() *fieldErrors {
	return &fieldErrors{fields: validation.Errors{}}
}

func (f *fieldErrors) check(field, value string, rules ...validation.Rule) {
	if _, done := f.fields[field]; done {
		return
	}
	if err := validation.Validate(value, rules...); err != nil {
		f.fields[field] = err
	}
}

func (f *fieldErrors) add(field, message string) {
	if _, done := f.fields[field]; done {
		return
	}
	f.fields[field] = fmt.Errorf("%s", message)
}

func (f *fieldErrors) result() error {
	if len(f.fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: f.fields}
}

// notBlank rejects empty and whitespace-only values. validation.Required
// alone accepts strings of spaces.
func notBlank(value interface{}) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("can't be blank")
	}
	return nil
}

func validEmailFormat(value interface{}) error {
	s, _ := value.(string)
	if !emailRegex.MatchString(s) {
		return fmt.Errorf("is invalid")
	}
	return nil
}
