// Package codec provides the document encodings used to persist stored values.
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Codec encodes values into stored documents and back.
// It matches core.Codec.
type Codec interface {
	Name() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// Names of the built-in codecs.
const (
	NameJSON = "json"
	NameYAML = "yaml"
)

// ByName returns the built-in codec called name ("json" or "yaml").
func ByName(name string) (Codec, error) {
	switch name {
	case "", NameJSON:
		return JSON(), nil
	case NameYAML, "yml":
		return YAML(), nil
	}
	return nil, fmt.Errorf("unknown format: %s", name)
}

// Ext returns the file extension conventionally used for c.
func Ext(c Codec) string {
	return "." + c.Name()
}

// --- JSON ---

// JSONCodec handles JSON documents.
type JSONCodec struct {
	// Strict rejects documents with fields the target type does not declare.
	Strict bool
}

// JSON returns the default, lenient JSON codec.
func JSON() *JSONCodec {
	return &JSONCodec{}
}

func (c *JSONCodec) Name() string { return NameJSON }

func (c *JSONCodec) Marshal(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

func (c *JSONCodec) Unmarshal(data []byte, v any) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	if c.Strict {
		decoder.DisallowUnknownFields()
	}
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	return nil
}

// --- YAML ---

// YAMLCodec handles YAML documents.
type YAMLCodec struct {
	// Strict rejects documents with fields the target type does not declare.
	Strict bool
}

// YAML returns the default, lenient YAML codec.
func YAML() *YAMLCodec {
	return &YAMLCodec{}
}

func (c *YAMLCodec) Name() string { return NameYAML }

func (c *YAMLCodec) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *YAMLCodec) Unmarshal(data []byte, v any) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(c.Strict)
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("invalid yaml: %w", err)
	}
	return nil
}
