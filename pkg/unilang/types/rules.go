// File: rules.go
// Title: Argument Validation Rules
// Description: Declarative validation rules (min, max, minlength, maxlength,
//              pattern, minitems) parsed from their "name:param" form and
//              applied to coerced values.
// Author: msto63
// Version: v0.1.0
// Created: 2025-10-03
// Modified: 2025-10-03

package types

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// RuleKind names a validation rule
type RuleKind string

const (
	RuleMin       RuleKind = "min"
	RuleMax       RuleKind = "max"
	RuleMinLength RuleKind = "minlength"
	RuleMaxLength RuleKind = "maxlength"
	RulePattern   RuleKind = "pattern"
	RuleMinItems  RuleKind = "minitems"
)

// ValidationRule is one constraint on an argument value
type ValidationRule struct {
	Kind    RuleKind
	Number  float64        // min, max
	Length  int            // minlength, maxlength, minitems
	Pattern *regexp.Regexp // pattern
}

// ParseRule parses "min:1", "maxlength:20", "pattern:^[a-z]+$" and friends.
// Rule names are case-insensitive and may contain '_' ("min_length").
func ParseRule(text string) (ValidationRule, error) {
	name, param, ok := strings.Cut(strings.TrimSpace(text), ":")
	if !ok {
		return ValidationRule{}, fmt.Errorf("validation rule %q: expected name:parameter", text)
	}
	kind := RuleKind(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", ""))

	switch kind {
	case RuleMin, RuleMax:
		n, err := strconv.ParseFloat(strings.TrimSpace(param), 64)
		if err != nil {
			return ValidationRule{}, fmt.Errorf("validation rule %q: %s needs a number", text, kind)
		}
		return ValidationRule{Kind: kind, Number: n}, nil

	case RuleMinLength, RuleMaxLength, RuleMinItems:
		n, err := strconv.Atoi(strings.TrimSpace(param))
		if err != nil || n < 0 {
			return ValidationRule{}, fmt.Errorf("validation rule %q: %s needs a non-negative integer", text, kind)
		}
		return ValidationRule{Kind: kind, Length: n}, nil

	case RulePattern:
		re, err := regexp.Compile(param)
		if err != nil {
			return ValidationRule{}, fmt.Errorf("validation rule %q: %w", text, err)
		}
		return ValidationRule{Kind: kind, Pattern: re}, nil
	}

	return ValidationRule{}, fmt.Errorf("unknown validation rule %q", name)
}

// MustParseRule is ParseRule for static rule tables
func MustParseRule(text string) ValidationRule {
	r, err := ParseRule(text)
	if err != nil {
		panic(err)
	}
	return r
}

// String renders the rule in its textual form
func (r ValidationRule) String() string {
	switch r.Kind {
	case RuleMin, RuleMax:
		return fmt.Sprintf("%s:%s", r.Kind, strconv.FormatFloat(r.Number, 'g', -1, 64))
	case RulePattern:
		if r.Pattern == nil {
			return string(r.Kind) + ":"
		}
		return string(r.Kind) + ":" + r.Pattern.String()
	default:
		return fmt.Sprintf("%s:%d", r.Kind, r.Length)
	}
}

// MarshalText implements encoding.TextMarshaler
func (r ValidationRule) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (r *ValidationRule) UnmarshalText(text []byte) error {
	parsed, err := ParseRule(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Apply checks v against the rule. Numeric and pattern rules applied to a
// list check every item. A nil error means the value satisfies the rule.
func (r ValidationRule) Apply(v Value) error {
	if list, ok := v.(ListValue); ok {
		switch r.Kind {
		case RuleMin, RuleMax, RulePattern:
			for i, item := range list {
				if err := r.Apply(item); err != nil {
					return fmt.Errorf("item %d: %w", i, err)
				}
			}
			return nil
		}
	}

	switch r.Kind {
	case RuleMin, RuleMax:
		n, ok := numeric(v)
		if !ok {
			return r.notApplicable(v)
		}
		if r.Kind == RuleMin && n < r.Number {
			return fmt.Errorf("value %s is less than %s", v, strconv.FormatFloat(r.Number, 'g', -1, 64))
		}
		if r.Kind == RuleMax && n > r.Number {
			return fmt.Errorf("value %s is greater than %s", v, strconv.FormatFloat(r.Number, 'g', -1, 64))
		}
		return nil

	case RuleMinLength, RuleMaxLength:
		n, ok := length(v)
		if !ok {
			return r.notApplicable(v)
		}
		if r.Kind == RuleMinLength && n < r.Length {
			return fmt.Errorf("length %d is shorter than %d", n, r.Length)
		}
		if r.Kind == RuleMaxLength && n > r.Length {
			return fmt.Errorf("length %d is longer than %d", n, r.Length)
		}
		return nil

	case RuleMinItems:
		list, ok := v.(ListValue)
		if !ok {
			return r.notApplicable(v)
		}
		if len(list) < r.Length {
			return fmt.Errorf("%d items given, at least %d required", len(list), r.Length)
		}
		return nil

	case RulePattern:
		var s string
		switch t := v.(type) {
		case StringValue, EnumValue, PathValue:
			s = t.String()
		default:
			return r.notApplicable(v)
		}
		if r.Pattern == nil || !r.Pattern.MatchString(s) {
			return fmt.Errorf("value %q does not match pattern %s", s, r)
		}
		return nil
	}

	return fmt.Errorf("unknown validation rule %q", r.Kind)
}

func (r ValidationRule) notApplicable(v Value) error {
	return fmt.Errorf("rule %s does not apply to %s values", r.Kind, v.Tag())
}

func numeric(v Value) (float64, bool) {
	switch t := v.(type) {
	case IntegerValue:
		return float64(t), true
	case FloatValue:
		return float64(t), true
	}
	return 0, false
}

func length(v Value) (int, bool) {
	switch t := v.(type) {
	case StringValue:
		return utf8.RuneCountInString(string(t)), true
	case EnumValue:
		return utf8.RuneCountInString(string(t)), true
	case PathValue:
		return utf8.RuneCountInString(t.Path), true
	case ListValue:
		return len(t), true
	case MapValue:
		return len(t), true
	}
	return 0, false
}
