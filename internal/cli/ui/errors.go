package ui

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/conduit-lang/declschema/internal/schema/serialization"
	"github.com/conduit-lang/declschema/internal/schema/store"
)

// ErrorLevel represents the severity of an error message
type ErrorLevel int

const (
	ErrorLevelError ErrorLevel = iota
	ErrorLevelWarning
)

// ErrorOptions configures the error message formatting
type ErrorOptions struct {
	Level        ErrorLevel
	Context      string
	Problem      string
	Detail       string
	Suggestions  []string
	HelpCommands []string
	NoColor      bool
}

// FormatError creates a standardized error message
//
// Example output:
//
//	❌ SCHEMA MISMATCH: "float" is not a registered DataType variant
//	   in schema.json at /topLevelReceiverType/properties/0/valueType/dataType
//
//	   Known variants: int, long, string, boolean, null, unit
//
//	   → Get help: declschema check --help
func FormatError(opts ErrorOptions) string {
	var b strings.Builder

	header := paint(opts.NoColor, color.FgRed, color.Bold)
	body := paint(opts.NoColor, color.FgRed)
	symbol := "❌"
	if opts.Level == ErrorLevelWarning {
		header = paint(opts.NoColor, color.FgYellow, color.Bold)
		body = paint(opts.NoColor, color.FgYellow)
		symbol = "⚠️"
	}

	if opts.Context != "" {
		header.Fprintf(&b, "%s %s: %s\n", symbol, strings.ToUpper(opts.Context), opts.Problem)
	} else {
		header.Fprintf(&b, "%s %s\n", symbol, opts.Problem)
	}

	if opts.Detail != "" {
		body.Fprintf(&b, "   %s\n", opts.Detail)
	}

	if len(opts.Suggestions) > 0 {
		b.WriteString("\n")
		paint(opts.NoColor, color.FgYellow).Fprintf(&b, "   %s\n", strings.Join(opts.Suggestions, "\n   "))
	}

	if len(opts.HelpCommands) > 0 {
		b.WriteString("\n")
		cyan := paint(opts.NoColor, color.FgCyan)
		for _, cmd := range opts.HelpCommands {
			cyan.Fprintf(&b, "   → %s\n", cmd)
		}
	}

	return b.String()
}

// WriteError writes a formatted error message to the writer
func WriteError(w io.Writer, opts ErrorOptions) {
	fmt.Fprint(w, FormatError(opts))
}

// FormatSuccess creates a success message
func FormatSuccess(message string, noColor bool) string {
	return paint(noColor, color.FgGreen, color.Bold).Sprintf("✓ %s", message)
}

// WriteSuccess writes a success message to the writer
func WriteSuccess(w io.Writer, message string, noColor bool) {
	fmt.Fprintln(w, FormatSuccess(message, noColor))
}

// SchemaError explains a failure to encode or decode the schema in source.
func SchemaError(source string, err error, noColor bool) string {
	opts := ErrorOptions{
		Level:   ErrorLevelError,
		Context: "INVALID SCHEMA",
		Problem: err.Error(),
		Detail:  "in " + source,
		HelpCommands: []string{
			"Get help: declschema check --help",
		},
		NoColor: noColor,
	}

	var (
		parse    *serialization.ParseError
		mismatch *serialization.SchemaMismatchError
		variant  *serialization.UnsupportedVariantError
	)
	switch {
	case errors.As(err, &parse):
		opts.Context = "MALFORMED JSON"
		opts.Problem = parse.Err.Error()
		opts.Detail = fmt.Sprintf("in %s at %s", source, location(parse))
	case errors.As(err, &mismatch):
		opts.Context = "SCHEMA MISMATCH"
		opts.Detail = fmt.Sprintf("in %s at %s", source, orRoot(mismatch.Path))
		if mismatch.Code == serialization.CodeUnknownTag {
			opts.Problem = fmt.Sprintf("%q is not a registered %s variant", mismatch.Tag, mismatch.Base)
			if tags := serialization.DefaultRegistry().Tags(mismatch.Base); len(tags) > 0 {
				opts.Suggestions = append(opts.Suggestions, "Known variants: "+strings.Join(tags, ", "))
				if near := Suggest(mismatch.Tag, tags, 1); len(near) > 0 {
					opts.Suggestions = append(opts.Suggestions, fmt.Sprintf("Did you mean: %s?", near[0]))
				}
			}
		}
	case errors.As(err, &variant):
		opts.Context = "UNSUPPORTED VARIANT"
		opts.Detail = fmt.Sprintf("in %s at %s", source, orRoot(variant.Path))
	}

	return FormatError(opts)
}

// StoreNotFoundError reports a missing stored schema and suggests close names.
func StoreNotFoundError(name string, known []string, noColor bool) string {
	opts := ErrorOptions{
		Level:   ErrorLevelError,
		Context: "SCHEMA NOT FOUND",
		Problem: fmt.Sprintf("No schema is stored as '%s'.", name),
		HelpCommands: []string{
			"See stored schemas: declschema store list",
		},
		NoColor: noColor,
	}
	if near := Suggest(name, known, DefaultMaxSuggestions); len(near) > 0 {
		opts.Suggestions = []string{fmt.Sprintf("Did you mean: %s?", strings.Join(near, ", "))}
	}
	return FormatError(opts)
}

// ConfigError creates a standardized configuration error
func ConfigError(message string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:   ErrorLevelError,
		Context: "CONFIGURATION ERROR",
		Problem: message,
		Suggestions: []string{
			fmt.Sprintf("Supported store backends: %s", strings.Join(store.Backends, ", ")),
		},
		HelpCommands: []string{
			"View config: cat declschema.yml",
			"Get help: declschema --help",
		},
		NoColor: noColor,
	})
}

// Warning creates a standardized warning message
func Warning(message string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:   ErrorLevelWarning,
		Problem: message,
		NoColor: noColor,
	})
}

func location(e *serialization.ParseError) string {
	if e.Offset >= 0 {
		return fmt.Sprintf("byte %d", e.Offset)
	}
	return orRoot(e.Path)
}

func orRoot(path string) string {
	if path == "" {
		return "/"
	}
	return path
}
