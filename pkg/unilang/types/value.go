// File: value.go
// Title: Coerced Argument Values
// Description: Sealed Value interface and its concrete variants, plus the
//              coercion from raw argument text to a Value of a given Kind.
// Author: msto63
// Version: v0.1.0
// Created: 2025-10-03
// Modified: 2025-10-05
//
// Change History:
// - 2025-10-03 v0.1.0: Initial value variants
// - 2025-10-05 v0.1.0: File and Directory existence checks

package types

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Value is the coerced runtime representation of an argument. The set of
// implementations is closed.
type Value interface {
	// Tag returns the kind variant that produced the value
	Tag() Tag
	// String renders the value for display
	String() string
	// Interface returns the underlying Go value
	Interface() any

	sealed()
}

type (
	StringValue  string
	IntegerValue int64
	FloatValue   float64
	BoolValue    bool
	EnumValue    string
	JSONValue    string
	ListValue    []Value
	MapValue     map[string]Value
)

// PathValue is a filesystem path. Kind distinguishes Path, File and Directory.
type PathValue struct {
	Path string
	Kind Tag
}

// URLValue wraps a parsed absolute URL
type URLValue struct {
	URL *url.URL
}

// DateTimeValue is an RFC 3339 timestamp
type DateTimeValue struct {
	Time time.Time
}

// PatternValue is a compiled regular expression
type PatternValue struct {
	Regexp *regexp.Regexp
}

// ObjectValue is a decoded JSON object
type ObjectValue struct {
	Data map[string]any
}

func (StringValue) Tag() Tag { return TagString }
func (IntegerValue) Tag() Tag { return TagInteger }
func (FloatValue) Tag() Tag { return TagFloat }
func (BoolValue) Tag() Tag { return TagBoolean }
func (EnumValue) Tag() Tag { return TagEnum }
func (JSONValue) Tag() Tag { return TagJSONString }
func (ListValue) Tag() Tag { return TagList }
func (MapValue) Tag() Tag { return TagMap }
func (v PathValue) Tag() Tag { return v.Kind }
func (URLValue) Tag() Tag { return TagURL }
func (DateTimeValue) Tag() Tag { return TagDateTime }
func (PatternValue) Tag() Tag { return TagPattern }
func (ObjectValue) Tag() Tag { return TagObject }

func (v StringValue) String() string { return string(v) }
func (v IntegerValue) String() string { return strconv.FormatInt(int64(v), 10) }
func (v FloatValue) String() string { return strconv.FormatFloat(float64(v), 'g', -1, 64) }
func (v BoolValue) String() string { return strconv.FormatBool(bool(v)) }
func (v EnumValue) String() string { return string(v) }
func (v JSONValue) String() string { return string(v) }
func (v PathValue) String() string { return v.Path }
func (v URLValue) String() string { return v.URL.String() }
func (v DateTimeValue) String() string { return v.Time.Format(time.RFC3339) }
func (v PatternValue) String() string { return v.Regexp.String() }

func (v ListValue) String() string {
	parts := make([]string, len(v))
	for i, item := range v {
		parts[i] = item.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (v MapValue) String() string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + v[k].String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (v ObjectValue) String() string {
	data, err := json.Marshal(v.Data)
	if err != nil {
		return fmt.Sprintf("%v", v.Data)
	}
	return string(data)
}

func (v StringValue) Interface() any { return string(v) }
func (v IntegerValue) Interface() any { return int64(v) }
func (v FloatValue) Interface() any { return float64(v) }
func (v BoolValue) Interface() any { return bool(v) }
func (v EnumValue) Interface() any { return string(v) }
func (v JSONValue) Interface() any { return string(v) }
func (v PathValue) Interface() any { return v.Path }
func (v URLValue) Interface() any { return v.URL }
func (v DateTimeValue) Interface() any { return v.Time }
func (v PatternValue) Interface() any { return v.Regexp }
func (v ObjectValue) Interface() any { return v.Data }

func (v ListValue) Interface() any {
	out := make([]any, len(v))
	for i, item := range v {
		out[i] = item.Interface()
	}
	return out
}

func (v MapValue) Interface() any {
	out := make(map[string]any, len(v))
	for k, item := range v {
		out[k] = item.Interface()
	}
	return out
}

func (StringValue) sealed() {}
func (IntegerValue) sealed() {}
func (FloatValue) sealed() {}
func (BoolValue) sealed() {}
func (EnumValue) sealed() {}
func (JSONValue) sealed() {}
func (ListValue) sealed() {}
func (MapValue) sealed() {}
func (PathValue) sealed() {}
func (URLValue) sealed() {}
func (DateTimeValue) sealed() {}
func (PatternValue) sealed() {}
func (ObjectValue) sealed() {}

// CoercionError describes why raw text could not be converted to a kind
type CoercionError struct {
	Kind   Kind
	Input  string
	Reason string
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("cannot parse %q as %s: %s", e.Input, e.Kind, e.Reason)
}

func coercionError(kind Kind, input, format string, args ...any) *CoercionError {
	return &CoercionError{Kind: kind, Input: input, Reason: fmt.Sprintf(format, args...)}
}

// ParseValue converts raw argument text to a Value of the given kind
func ParseValue(input string, kind Kind) (Value, error) {
	switch kind.Tag {
	case TagString:
		return StringValue(input), nil

	case TagInteger:
		n, err := strconv.ParseInt(strings.TrimSpace(input), 10, 64)
		if err != nil {
			return nil, coercionError(kind, input, "not a valid integer")
		}
		return IntegerValue(n), nil

	case TagFloat:
		f, err := strconv.ParseFloat(strings.TrimSpace(input), 64)
		if err != nil {
			return nil, coercionError(kind, input, "not a valid float")
		}
		return FloatValue(f), nil

	case TagBoolean:
		switch strings.ToLower(strings.TrimSpace(input)) {
		case "true", "1", "yes":
			return BoolValue(true), nil
		case "false", "0", "no":
			return BoolValue(false), nil
		}
		return nil, coercionError(kind, input, "expected true/false, yes/no or 1/0")

	case TagEnum:
		for _, choice := range kind.Choices {
			if input == choice {
				return EnumValue(input), nil
			}
		}
		return nil, coercionError(kind, input, "must be one of %s", strings.Join(kind.Choices, ", "))

	case TagPath, TagFile, TagDirectory:
		return parsePath(input, kind)

	case TagURL:
		u, err := url.Parse(input)
		if err != nil || u.Scheme == "" {
			return nil, coercionError(kind, input, "not an absolute URL")
		}
		return URLValue{URL: u}, nil

	case TagDateTime:
		t, err := time.Parse(time.RFC3339, input)
		if err != nil {
			return nil, coercionError(kind, input, "expected RFC 3339 timestamp")
		}
		return DateTimeValue{Time: t}, nil

	case TagPattern:
		re, err := regexp.Compile(input)
		if err != nil {
			return nil, coercionError(kind, input, "invalid regular expression: %v", err)
		}
		return PatternValue{Regexp: re}, nil

	case TagList:
		return parseList(input, kind)

	case TagMap:
		return parseMap(input, kind)

	case TagJSONString:
		if !json.Valid([]byte(input)) {
			return nil, coercionError(kind, input, "invalid JSON")
		}
		return JSONValue(input), nil

	case TagObject:
		var data map[string]any
		if err := json.Unmarshal([]byte(input), &data); err != nil || data == nil {
			return nil, coercionError(kind, input, "expected a JSON object")
		}
		return ObjectValue{Data: data}, nil
	}

	return nil, coercionError(kind, input, "unsupported kind")
}

func parsePath(input string, kind Kind) (Value, error) {
	if input == "" {
		return nil, coercionError(kind, input, "path must not be empty")
	}

	switch kind.Tag {
	case TagFile:
		info, err := os.Stat(input)
		if err != nil {
			return nil, coercionError(kind, input, "file does not exist")
		}
		if info.IsDir() {
			return nil, coercionError(kind, input, "is a directory, expected a file")
		}
	case TagDirectory:
		info, err := os.Stat(input)
		if err != nil {
			return nil, coercionError(kind, input, "directory does not exist")
		}
		if !info.IsDir() {
			return nil, coercionError(kind, input, "is a file, expected a directory")
		}
	}
	return PathValue{Path: input, Kind: kind.Tag}, nil
}

func parseList(input string, kind Kind) (Value, error) {
	if input == "" {
		return ListValue{}, nil
	}
	item := String
	if kind.Item != nil {
		item = *kind.Item
	}

	parts := strings.Split(input, string(kind.ListDelimiter()))
	list := make(ListValue, 0, len(parts))
	for _, part := range parts {
		v, err := ParseValue(part, item)
		if err != nil {
			return nil, err
		}
		list = append(list, v)
	}
	return list, nil
}

func parseMap(input string, kind Kind) (Value, error) {
	if input == "" {
		return MapValue{}, nil
	}
	valueKind := String
	if kind.Value != nil {
		valueKind = *kind.Value
	}
	entryDelim, kvDelim := kind.MapDelimiters()

	m := make(MapValue)
	for _, entry := range strings.Split(input, string(entryDelim)) {
		key, raw, ok := strings.Cut(entry, string(kvDelim))
		if !ok {
			return nil, coercionError(kind, input, "invalid map entry %q, expected key%cvalue", entry, kvDelim)
		}
		v, err := ParseValue(raw, valueKind)
		if err != nil {
			return nil, err
		}
		m[key] = v
	}
	return m, nil
}
