package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"

	"github.com/bitfsorg/eagerapi-go/eagerapi"
	"github.com/bitfsorg/eagerapi-go/fetch"
)

// OutputFormat selects how results are written.
type OutputFormat string

const (
	FormatJSON OutputFormat = "json"
	FormatCBOR OutputFormat = "cbor"
)

var cborEnc cbor.EncMode

func init() {
	var err error
	cborEnc, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("eagerctl: CBOR encoder initialization failed: " + err.Error())
	}
}

// ItemCLI is one batch item. Exactly one of Value and Error is set.
type ItemCLI struct {
	Value  any    `json:"value,omitempty" cbor:"value,omitempty"`
	Error  string `json:"error,omitempty" cbor:"error,omitempty"`
	Status int    `json:"status,omitempty" cbor:"status,omitempty"`
}

// BatchCLI is a drained batch response.
type BatchCLI struct {
	Items []ItemCLI   `json:"items" cbor:"items"`
	Stats fetch.Stats `json:"stats" cbor:"stats"`
}

// drain consumes f into its CLI form.
func drain[T any](ctx context.Context, f *fetch.Fetch[T]) (BatchCLI, error) {
	out := BatchCLI{Items: []ItemCLI{}}
	for v, err := range f.Entries() {
		if err != nil {
			out.Items = append(out.Items, ItemCLI{Error: err.Error(), Status: eagerapi.StatusOf(err)})
			continue
		}
		out.Items = append(out.Items, ItemCLI{Value: v})
	}
	stats, err := f.Stats(ctx)
	if err != nil {
		return BatchCLI{}, err
	}
	out.Stats = stats
	return out, nil
}

// write encodes v to w in the given format.
func write(w io.Writer, format OutputFormat, v any) error {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case FormatCBOR:
		data, err := cborEnc.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to marshal CBOR: %w", err)
		}
		_, err = w.Write(data)
		return err
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// writeBatch drains f and writes it.
func writeBatch[T any](ctx context.Context, w io.Writer, format OutputFormat, f *fetch.Fetch[T]) error {
	batch, err := drain(ctx, f)
	if err != nil {
		return err
	}
	return write(w, format, batch)
}
