// Package serialization persists analysis schemas as JSON and restores them.
//
// Every polymorphic value in a document carries a "type" tag naming its
// concrete variant. Which variants may appear under each polymorphic base is
// fixed by a Registry; anything else is rejected in both directions. Maps keyed
// by qualified names are written as arrays of [key, value] pairs.
//
// Output is indented and deterministic: the same schema always serializes to
// the same bytes, which lets callers hash and diff stored schemas.
package serialization

import (
	"bytes"
	"errors"

	json "github.com/goccy/go-json"

	"github.com/conduit-lang/declschema/internal/schema"
)

// DefaultIndent is the indentation used unless WithIndent says otherwise.
const DefaultIndent = "  "

// Serializer converts analysis schemas to and from JSON. It holds only
// immutable configuration and is safe for concurrent use.
type Serializer struct {
	registry *Registry
	indent   string
}

// Option configures a Serializer.
type Option func(*Serializer)

// WithRegistry restricts the serializer to the variants in r.
func WithRegistry(r *Registry) Option {
	return func(s *Serializer) {
		if r != nil {
			s.registry = r
		}
	}
}

// WithIndent sets the indentation of each nesting level. An empty indent
// keeps DefaultIndent.
func WithIndent(indent string) Option {
	return func(s *Serializer) {
		if indent != "" {
			s.indent = indent
		}
	}
}

// New creates a Serializer over DefaultRegistry.
func New(opts ...Option) *Serializer {
	s := &Serializer{registry: DefaultRegistry(), indent: DefaultIndent}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var defaultSerializer = New()

// Default returns the process-wide serializer used by the package-level
// functions. It uses DefaultRegistry and DefaultIndent.
func Default() *Serializer { return defaultSerializer }

// Registry returns the variant registry the serializer enforces.
func (s *Serializer) Registry() *Registry { return s.registry }

// Marshal encodes root as indented JSON.
func (s *Serializer) Marshal(root schema.AnalysisSchema) ([]byte, error) {
	impl, ok := root.(*schema.AnalysisSchemaImpl)
	if !ok || impl == nil {
		return nil, unsupported(BaseAnalysisSchema, "", root)
	}

	e := &encodeState{reg: s.registry}
	doc, err := e.analysisSchema(impl)
	if err != nil {
		return nil, err
	}

	compact, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact, "", s.indent); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// Unmarshal decodes a document produced by Marshal. On failure it returns no
// schema.
func (s *Serializer) Unmarshal(data []byte) (*schema.AnalysisSchemaImpl, error) {
	if !json.Valid(data) {
		var v any
		err := json.Unmarshal(data, &v)
		if err == nil {
			err = errors.New("invalid JSON")
		}
		return nil, parseErr("", err)
	}
	d := &decodeState{reg: s.registry}
	return d.analysisSchema(data)
}

// Serialize encodes root as an indented JSON string.
func (s *Serializer) Serialize(root schema.AnalysisSchema) (string, error) {
	data, err := s.Marshal(root)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Deserialize decodes a JSON string produced by Serialize.
func (s *Serializer) Deserialize(text string) (*schema.AnalysisSchemaImpl, error) {
	return s.Unmarshal([]byte(text))
}

// SchemaToJSONString serializes root with the Default serializer.
func SchemaToJSONString(root schema.AnalysisSchema) (string, error) {
	return defaultSerializer.Serialize(root)
}

// SchemaFromJSONString deserializes text with the Default serializer.
func SchemaFromJSONString(text string) (*schema.AnalysisSchemaImpl, error) {
	return defaultSerializer.Deserialize(text)
}
