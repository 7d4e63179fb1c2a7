// Copyright 2026 The Till Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// OutputConfig is an embeddable struct that adds a --format flag to a
// command's parameter struct. Embedding it provides the flag (via the
// [FlagBinder] mechanism in BindFlags) and the [Emit] method for
// structured output.
//
// Usage:
//
//	type listParams struct {
//	    cli.OutputConfig
//	    Search string `flag:"search" desc:"filter by customer name"`
//	}
//
//	// In Run:
//	if done, err := params.Emit(records); done {
//	    return err
//	}
//	// ... plain text formatting ...
type OutputConfig struct {
	// Format selects the structured output encoding: "json" or "yaml".
	// Empty means plain text.
	Format string
}

// AddFlags registers --format on the given flag set, satisfying
// [FlagBinder].
func (o *OutputConfig) AddFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&o.Format, "format", "", "structured output format: json or yaml")
}

// Emit writes result to stdout in the configured format. Returns
// (true, nil) on success, (true, err) on encode failure or an unknown
// format, or (false, nil) when no format is set and the caller should
// proceed with plain text output.
//
// Nil slices are normalized to empty slices before serialization, so
// callers never need to guard against null JSON output.
func (o *OutputConfig) Emit(result any) (bool, error) {
	switch o.Format {
	case "":
		return false, nil
	case "json":
		return true, writeJSON(os.Stdout, normalizeNilSlice(result))
	case "yaml":
		return true, writeYAML(os.Stdout, normalizeNilSlice(result))
	default:
		return true, fmt.Errorf("unknown output format %q (want json or yaml)", o.Format)
	}
}

func writeJSON(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(value); err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}
	return nil
}

func writeYAML(w io.Writer, value any) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()
	if err := encoder.Encode(value); err != nil {
		return fmt.Errorf("encoding YAML output: %w", err)
	}
	return nil
}

// normalizeNilSlice converts a nil slice into an empty slice of the
// same type so it serializes as [] rather than null. Non-slice values
// pass through unchanged.
func normalizeNilSlice(value any) any {
	reflected := reflect.ValueOf(value)
	if reflected.Kind() == reflect.Slice && reflected.IsNil() {
		return reflect.MakeSlice(reflected.Type(), 0, 0).Interface()
	}
	return value
}
