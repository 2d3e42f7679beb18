// File: loader.go
// Title: Command Definition Loader
// Description: Decodes declarative command definition files (YAML, JSON or
//              CUE) into validated command definitions. All formats are
//              reduced to one generic document which is normalized and then
//              decoded through the JSON field names of the definition types.
// Author: msto63
// Version: v0.1.0
// Created: 2025-10-09
// Modified: 2025-10-10
//
// Change History:
// - 2025-10-09 v0.1.0: YAML and JSON decoding
// - 2025-10-10 v0.1.0: CUE decoding and parallel file loading

package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	uerrors "github.com/msto63/unilang/pkg/unilang/errors"
	"github.com/msto63/unilang/pkg/unilang/types"
)

// Format identifies a definition file syntax
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatCUE  Format = "cue"
)

// MaxFileSize bounds a single definition file
const MaxFileSize = 4 << 20

// FormatFromPath derives the format from a file extension
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".cue":
		return FormatCUE, nil
	}
	return "", fmt.Errorf("unsupported definition file type '%s'", filepath.Ext(path))
}

// Parse decodes a definition document. The document is either a list of
// command records or a mapping with a "commands" list.
func Parse(data []byte, format Format) ([]*types.CommandDefinition, error) {
	return parse(data, format, "<input>")
}

func parse(data []byte, format Format, source string) ([]*types.CommandDefinition, error) {
	if len(data) > MaxFileSize {
		return nil, uerrors.InvalidDefinition(source, fmt.Sprintf("file exceeds %d bytes", MaxFileSize))
	}

	doc, err := decodeGeneric(data, format, source)
	if err != nil {
		return nil, uerrors.Wrap(err, uerrors.CodeInvalidDefinition,
			fmt.Sprintf("cannot decode %s definitions from %s", format, source)).
			WithDetail("source", source)
	}

	records, err := commandRecords(doc)
	if err != nil {
		return nil, uerrors.InvalidDefinition(source, err.Error())
	}

	defs := make([]*types.CommandDefinition, 0, len(records))
	for i, rec := range records {
		normalizeCommand(rec)
		raw, err := json.Marshal(rec)
		if err != nil {
			return nil, uerrors.Internal("re-encoding definition record", err)
		}
		var def types.CommandDefinition
		if err := json.Unmarshal(raw, &def); err != nil {
			return nil, uerrors.Wrap(err, uerrors.CodeInvalidDefinition,
				fmt.Sprintf("command record %d in %s: %v", i, source, err)).
				WithDetail("source", source)
		}
		def.ApplyDefaults()
		if err := def.Validate(); err != nil {
			if ue, ok := uerrors.As(err); ok {
				return nil, ue.WithDetail("source", source)
			}
			return nil, err
		}
		defs = append(defs, &def)
	}
	return defs, nil
}

func decodeGeneric(data []byte, format Format, source string) (interface{}, error) {
	var doc interface{}
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	case FormatJSON:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	case FormatCUE:
		v := cuecontext.New().CompileBytes(data, cue.Filename(source))
		if v.Err() != nil {
			return nil, v.Err()
		}
		if err := v.Validate(cue.Concrete(true)); err != nil {
			return nil, err
		}
		raw, err := v.MarshalJSON()
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown format '%s'", format)
	}
	return doc, nil
}

func commandRecords(doc interface{}) ([]map[string]interface{}, error) {
	if doc == nil {
		return nil, nil
	}
	if m, ok := doc.(map[string]interface{}); ok {
		list, found := m["commands"]
		if !found {
			return nil, fmt.Errorf("document has no 'commands' list")
		}
		doc = list
	}
	list, ok := doc.([]interface{})
	if !ok {
		return nil, fmt.Errorf("expected a list of command records, got %T", doc)
	}

	records := make([]map[string]interface{}, 0, len(list))
	for i, item := range list {
		rec, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("command record %d is %T, not a mapping", i, item)
		}
		records = append(records, rec)
	}
	return records, nil
}

// normalizeCommand turns scalars that authors commonly write unquoted
// (versions, defaults) into strings
func normalizeCommand(rec map[string]interface{}) {
	stringify(rec, "version")
	args, _ := rec["arguments"].([]interface{})
	for _, a := range args {
		arg, ok := a.(map[string]interface{})
		if !ok {
			continue
		}
		if attrs, ok := arg["attributes"].(map[string]interface{}); ok {
			stringify(attrs, "default")
		}
		if rules, ok := arg["validation_rules"].([]interface{}); ok {
			for i := range rules {
				rules[i] = scalarString(rules[i])
			}
		}
	}
}

func stringify(m map[string]interface{}, key string) {
	if v, ok := m[key]; ok && v != nil {
		m[key] = scalarString(v)
	}
}

func scalarString(v interface{}) interface{} {
	switch x := v.(type) {
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return v
	}
}

// LoadFile reads and decodes one definition file
func LoadFile(path string) ([]*types.CommandDefinition, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, uerrors.InvalidDefinition(path, err.Error())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, uerrors.Wrap(err, uerrors.CodeInvalidDefinition, "cannot read definition file "+path).
			WithDetail("source", path)
	}
	return parse(data, format, path)
}

// LoadFiles reads several files concurrently. The result keeps the order
// of paths; the first failure cancels the remaining reads.
func LoadFiles(ctx context.Context, paths []string) ([][]*types.CommandDefinition, error) {
	results := make([][]*types.CommandDefinition, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)

	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			defs, err := LoadFile(path)
			if err != nil {
				return err
			}
			results[i] = defs
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
