package project

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	perrors "github.com/p-blackswan/designstore/internal/errors"
	"github.com/p-blackswan/designstore/internal/store"
)

// Format is an output encoding for documents.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts "json", "yaml" or "yml", case-insensitively. An
// empty string means JSON.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", perrors.ErrInvalidInput, s)
	}
}

// Render encodes a document. JSON output is byte-identical to what is
// persisted on disk.
func Render(v any, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return nil, fmt.Errorf("failed to encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("failed to encode yaml: %w", err)
		}
		return buf.Bytes(), nil
	case FormatJSON, "":
		return store.Encode(v)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", perrors.ErrInvalidInput, format)
	}
}
