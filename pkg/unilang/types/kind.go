// File: kind.go
// Title: Argument Kinds
// Description: Tagged union describing the type of an argument and its
//              textual form ("Integer", "Enum(a,b)", "List(Integer,;)",
//              "Map(String,Integer,;,=)").
// Author: msto63
// Version: v0.1.0
// Created: 2025-10-03
// Modified: 2025-10-03

package types

import (
	"fmt"
	"strings"
)

// Tag identifies the variant of a Kind
type Tag int

const (
	TagString Tag = iota
	TagInteger
	TagFloat
	TagBoolean
	TagPath
	TagFile
	TagDirectory
	TagEnum
	TagURL
	TagDateTime
	TagPattern
	TagList
	TagMap
	TagJSONString
	TagObject
)

var tagNames = map[Tag]string{
	TagString:     "String",
	TagInteger:    "Integer",
	TagFloat:      "Float",
	TagBoolean:    "Boolean",
	TagPath:       "Path",
	TagFile:       "File",
	TagDirectory:  "Directory",
	TagEnum:       "Enum",
	TagURL:        "Url",
	TagDateTime:   "DateTime",
	TagPattern:    "Pattern",
	TagList:       "List",
	TagMap:        "Map",
	TagJSONString: "JsonString",
	TagObject:     "Object",
}

// accepted spellings, lower-cased
var tagLookup = map[string]Tag{
	"string":     TagString,
	"integer":    TagInteger,
	"int":        TagInteger,
	"float":      TagFloat,
	"boolean":    TagBoolean,
	"bool":       TagBoolean,
	"path":       TagPath,
	"file":       TagFile,
	"directory":  TagDirectory,
	"dir":        TagDirectory,
	"enum":       TagEnum,
	"url":        TagURL,
	"datetime":   TagDateTime,
	"pattern":    TagPattern,
	"list":       TagList,
	"map":        TagMap,
	"jsonstring": TagJSONString,
	"json":       TagJSONString,
	"object":     TagObject,
}

// String returns the canonical tag name
func (t Tag) String() string {
	if name, ok := tagNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Tag(%d)", int(t))
}

const (
	DefaultListDelimiter  = ','
	DefaultEntryDelimiter = ','
	DefaultKVDelimiter    = '='
)

// Kind is the declared type of an argument. Only the fields of the active
// variant are meaningful.
type Kind struct {
	Tag     Tag
	Choices []string // Enum

	Item      *Kind // List
	Delimiter rune  // List; 0 means DefaultListDelimiter

	Key            *Kind // Map
	Value          *Kind // Map
	EntryDelimiter rune  // Map; 0 means DefaultEntryDelimiter
	KVDelimiter    rune  // Map; 0 means DefaultKVDelimiter
}

// Simple kinds
var (
	String     = Kind{Tag: TagString}
	Integer    = Kind{Tag: TagInteger}
	Float      = Kind{Tag: TagFloat}
	Boolean    = Kind{Tag: TagBoolean}
	Path       = Kind{Tag: TagPath}
	File       = Kind{Tag: TagFile}
	Directory  = Kind{Tag: TagDirectory}
	URLKind    = Kind{Tag: TagURL}
	DateTime   = Kind{Tag: TagDateTime}
	Pattern    = Kind{Tag: TagPattern}
	JSONString = Kind{Tag: TagJSONString}
	Object     = Kind{Tag: TagObject}
)

// EnumOf returns an Enum kind with the given choices
func EnumOf(choices ...string) Kind {
	return Kind{Tag: TagEnum, Choices: choices}
}

// ListOf returns a List kind. A zero delimiter selects the default.
func ListOf(item Kind, delimiter rune) Kind {
	return Kind{Tag: TagList, Item: &item, Delimiter: delimiter}
}

// MapOf returns a Map kind. Zero delimiters select the defaults.
func MapOf(key, value Kind, entryDelimiter, kvDelimiter rune) Kind {
	return Kind{Tag: TagMap, Key: &key, Value: &value, EntryDelimiter: entryDelimiter, KVDelimiter: kvDelimiter}
}

// ListDelimiter returns the effective list item delimiter
func (k Kind) ListDelimiter() rune {
	if k.Delimiter == 0 {
		return DefaultListDelimiter
	}
	return k.Delimiter
}

// MapDelimiters returns the effective entry and key/value delimiters
func (k Kind) MapDelimiters() (entry, kv rune) {
	entry, kv = k.EntryDelimiter, k.KVDelimiter
	if entry == 0 {
		entry = DefaultEntryDelimiter
	}
	if kv == 0 {
		kv = DefaultKVDelimiter
	}
	return entry, kv
}

// IsZero reports whether the kind was never set
func (k Kind) IsZero() bool {
	return k.Tag == TagString && k.Choices == nil && k.Item == nil && k.Key == nil
}

// String renders the textual form accepted by ParseKind
func (k Kind) String() string {
	switch k.Tag {
	case TagEnum:
		return "Enum(" + strings.Join(k.Choices, ",") + ")"
	case TagList:
		item := String
		if k.Item != nil {
			item = *k.Item
		}
		if k.Delimiter == 0 {
			return "List(" + item.String() + ")"
		}
		return fmt.Sprintf("List(%s,%c)", item, k.Delimiter)
	case TagMap:
		key, value := String, String
		if k.Key != nil {
			key = *k.Key
		}
		if k.Value != nil {
			value = *k.Value
		}
		if k.EntryDelimiter == 0 && k.KVDelimiter == 0 {
			return fmt.Sprintf("Map(%s,%s)", key, value)
		}
		entry, kv := k.MapDelimiters()
		return fmt.Sprintf("Map(%s,%s,%c,%c)", key, value, entry, kv)
	default:
		return k.Tag.String()
	}
}

// MarshalText implements encoding.TextMarshaler
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler so that definition
// files can spell kinds as strings
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKind parses the textual form of a kind
func ParseKind(text string) (Kind, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Kind{}, fmt.Errorf("empty kind")
	}

	name, args, hasArgs := text, "", false
	if open := strings.IndexByte(text, '('); open >= 0 {
		if !strings.HasSuffix(text, ")") {
			return Kind{}, fmt.Errorf("kind %q: missing closing parenthesis", text)
		}
		name = strings.TrimSpace(text[:open])
		args = text[open+1 : len(text)-1]
		hasArgs = true
	}

	tag, ok := tagLookup[strings.ToLower(name)]
	if !ok {
		return Kind{}, fmt.Errorf("unknown kind %q", name)
	}

	switch tag {
	case TagEnum:
		if !hasArgs {
			return Kind{}, fmt.Errorf("kind %q: Enum requires choices", text)
		}
		var choices []string
		for _, c := range strings.Split(args, ",") {
			if c = strings.TrimSpace(c); c != "" {
				choices = append(choices, c)
			}
		}
		if len(choices) == 0 {
			return Kind{}, fmt.Errorf("kind %q: Enum requires at least one choice", text)
		}
		return EnumOf(choices...), nil

	case TagList:
		if !hasArgs {
			return ListOf(String, 0), nil
		}
		itemText, rest := splitTopLevel(args)
		item, err := ParseKind(itemText)
		if err != nil {
			return Kind{}, fmt.Errorf("kind %q: %w", text, err)
		}
		delim, err := singleRune(rest)
		if err != nil {
			return Kind{}, fmt.Errorf("kind %q: list delimiter: %w", text, err)
		}
		return ListOf(item, delim), nil

	case TagMap:
		if !hasArgs {
			return MapOf(String, String, 0, 0), nil
		}
		keyText, rest := splitTopLevel(args)
		valueText, rest := splitTopLevel(rest)
		key, err := ParseKind(keyText)
		if err != nil {
			return Kind{}, fmt.Errorf("kind %q: %w", text, err)
		}
		value, err := ParseKind(valueText)
		if err != nil {
			return Kind{}, fmt.Errorf("kind %q: %w", text, err)
		}
		entry, kv, err := mapDelimiters(rest)
		if err != nil {
			return Kind{}, fmt.Errorf("kind %q: %w", text, err)
		}
		return MapOf(key, value, entry, kv), nil

	default:
		if hasArgs && strings.TrimSpace(args) != "" {
			return Kind{}, fmt.Errorf("kind %q takes no parameters", name)
		}
		return Kind{Tag: tag}, nil
	}
}

// splitTopLevel splits at the first comma outside parentheses
func splitTopLevel(s string) (head, rest string) {
	depth := 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				return strings.TrimSpace(s[:i]), s[i+1:]
			}
		}
	}
	return strings.TrimSpace(s), ""
}

// mapDelimiters reads "e" or "e,k" where either delimiter may itself be ','
func mapDelimiters(s string) (entry, kv rune, err error) {
	runes := []rune(s)
	switch {
	case len(runes) == 0:
		return 0, 0, nil
	case len(runes) == 1:
		return runes[0], 0, nil
	case len(runes) == 3 && runes[1] == ',':
		return runes[0], runes[2], nil
	default:
		return 0, 0, fmt.Errorf("invalid map delimiters %q", s)
	}
}

func singleRune(s string) (rune, error) {
	runes := []rune(s)
	switch len(runes) {
	case 0:
		return 0, nil
	case 1:
		return runes[0], nil
	default:
		return 0, fmt.Errorf("expected a single character, got %q", s)
	}
}
