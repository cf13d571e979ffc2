// Package validate implements the declarative request-validation gate.
//
// A route binds an ordered Rules set; the gate evaluates every rule against
// the incoming JSON payload and reports the full failure list in declaration
// order, so clients get a stable, reproducible error display.
package validate

import (
	"github.com/go-playground/validator/v10"
)

// formats backs the email/url shape predicates.
var formats = validator.New()

// FieldError is one reported validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Rule is a (field, predicate, failure message) triple. Optional rules are
// skipped when the field is absent from the payload.
type Rule struct {
	Field    string
	Message  string
	Optional bool
	Check    func(value any) bool
}

// Rules is an ordered rule set. Evaluation is exhaustive: all rules run and
// all failures are collected, not just the first.
type Rules []Rule

// Check evaluates every rule against payload, in order.
func (rs Rules) Check(payload map[string]any) []FieldError {
	var fails []FieldError
	for _, r := range rs {
		v, present := payload[r.Field]
		if !present || v == nil {
			if r.Optional {
				continue
			}
			fails = append(fails, FieldError{Field: r.Field, Message: r.Message})
			continue
		}
		if !r.Check(v) {
			fails = append(fails, FieldError{Field: r.Field, Message: r.Message})
		}
	}
	return fails
}

// Optional marks a rule as skip-if-absent.
func Optional(r Rule) Rule {
	r.Optional = true
	return r
}

// Email requires the field to be a string shaped like an email address.
func Email(field, message string) Rule {
	return Rule{Field: field, Message: message, Check: func(v any) bool {
		s, ok := v.(string)
		return ok && formats.Var(s, "email") == nil
	}}
}

// URL requires the field to be a string shaped like a URL.
func URL(field, message string) Rule {
	return Rule{Field: field, Message: message, Check: func(v any) bool {
		s, ok := v.(string)
		return ok && formats.Var(s, "url") == nil
	}}
}

// MinString requires a string of at least min characters.
func MinString(field string, min int, message string) Rule {
	return Rule{Field: field, Message: message, Check: func(v any) bool {
		s, ok := v.(string)
		return ok && len([]rune(s)) >= min
	}}
}

// String requires the field to be a string of any length.
func String(field, message string) Rule {
	return Rule{Field: field, Message: message, Check: func(v any) bool {
		_, ok := v.(string)
		return ok
	}}
}

// Array requires the field to be a JSON array.
func Array(field, message string) Rule {
	return Rule{Field: field, Message: message, Check: func(v any) bool {
		_, ok := v.([]any)
		return ok
	}}
}
