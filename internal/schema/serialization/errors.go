package serialization

import (
	"errors"
	"fmt"
)

// Sentinels matched by errors.Is against the typed errors below.
var (
	ErrUnsupportedVariant = errors.New("unsupported variant")
	ErrParse              = errors.New("parse error")
	ErrSchemaMismatch     = errors.New("schema mismatch")
)

// Mismatch codes carried by SchemaMismatchError.
const (
	CodeMissingTag   = "missing_tag"
	CodeUnknownTag   = "unknown_tag"
	CodeMissingField = "missing_field"
	CodeUnknownField = "unknown_field"
	CodeInvalidEnum  = "invalid_enum"
)

// UnsupportedVariantError is returned by Serialize when a polymorphic value
// is not one of the variants registered for its base.
type UnsupportedVariantError struct {
	Base    string // Polymorphic base, e.g. "DataClass".
	Variant string // Go type of the rejected value, or "<nil>".
	Path    string // JSON Pointer of the value in the output document.
}

func (e *UnsupportedVariantError) Error() string {
	return fmt.Sprintf("%s is not a registered %s variant at %s", e.Variant, e.Base, pointer(e.Path))
}

func (e *UnsupportedVariantError) Is(target error) bool { return target == ErrUnsupportedVariant }

// ParseError reports input that is not valid JSON or whose JSON shape does not
// fit the document format.
type ParseError struct {
	Path   string
	Offset int64 // Byte offset of a syntax error, -1 when unknown.
	Err    error
}

func (e *ParseError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("parse error at offset %d: %v", e.Offset, e.Err)
	}
	return fmt.Sprintf("parse error at %s: %v", pointer(e.Path), e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// SchemaMismatchError reports syntactically valid input whose type tags or
// fields do not match a registered variant.
type SchemaMismatchError struct {
	Code  string // One of the Code* constants.
	Base  string // Polymorphic base or record being decoded.
	Tag   string // Type tag involved, if any.
	Field string // Field involved, if any.
	Path  string
}

func (e *SchemaMismatchError) Error() string {
	switch e.Code {
	case CodeMissingTag:
		return fmt.Sprintf("%s: %s value has no %q tag at %s", e.Code, e.Base, DiscriminatorKey, pointer(e.Path))
	case CodeUnknownTag:
		return fmt.Sprintf("%s: %q is not a registered %s variant at %s", e.Code, e.Tag, e.Base, pointer(e.Path))
	case CodeMissingField:
		return fmt.Sprintf("%s: %s is missing field %q at %s", e.Code, e.describe(), e.Field, pointer(e.Path))
	case CodeUnknownField:
		return fmt.Sprintf("%s: %s has unknown field %q at %s", e.Code, e.describe(), e.Field, pointer(e.Path))
	default:
		return fmt.Sprintf("%s: %s field %q at %s", e.Code, e.describe(), e.Field, pointer(e.Path))
	}
}

func (e *SchemaMismatchError) Is(target error) bool { return target == ErrSchemaMismatch }

func (e *SchemaMismatchError) describe() string {
	if e.Tag != "" {
		return fmt.Sprintf("%s %q", e.Base, e.Tag)
	}
	return e.Base
}

func pointer(path string) string {
	if path == "" {
		return "/"
	}
	return path
}
