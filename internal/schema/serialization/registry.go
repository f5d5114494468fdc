package serialization

import (
	"fmt"

	"github.com/conduit-lang/declschema/internal/schema"
)

// DiscriminatorKey is the field that carries the type tag of every
// polymorphic value in a document.
const DiscriminatorKey = "type"

// Polymorphic bases known to the serializer.
const (
	BaseAnalysisSchema       = "AnalysisSchema"
	BaseDataType             = "DataType"
	BaseDataClass            = "DataClass"
	BaseFqName               = "FqName"
	BaseSchemaMemberFunction = "SchemaMemberFunction"
)

// Variant tags.
const (
	TagInt                 = "int"
	TagLong                = "long"
	TagString              = "string"
	TagBoolean             = "boolean"
	TagNull                = "null"
	TagUnit                = "unit"
	TagDataClass           = "dataClass"
	TagFqName              = "fqName"
	TagDataMemberFunction  = "dataMemberFunction"
	TagDataBuilderFunction = "dataBuilderFunction"
)

// variant pairs a type tag with the encoder and decoder of one concrete type
// registered under base B.
type variant[B any] struct {
	tag    string
	match  func(B) bool
	encode func(e *encodeState, path string, v B, o *object) error
	decode func(d *decodeState, f *fields) (B, error)
}

// subclass builds the variant for concrete type V under base B.
func subclass[B, V any](
	tag string,
	enc func(e *encodeState, path string, v V, o *object) error,
	dec func(d *decodeState, f *fields) (V, error),
) variant[B] {
	return variant[B]{
		tag: tag,
		match: func(b B) bool {
			_, ok := any(b).(V)
			return ok
		},
		encode: func(e *encodeState, path string, b B, o *object) error {
			return enc(e, path, any(b).(V), o)
		},
		decode: func(d *decodeState, f *fields) (B, error) {
			v, err := dec(d, f)
			if err != nil {
				var zero B
				return zero, err
			}
			return any(v).(B), nil
		},
	}
}

// singleton builds the variant of a field-less data type.
func singleton[V schema.DataType](tag string) variant[schema.DataType] {
	return subclass[schema.DataType](tag,
		func(*encodeState, string, V, *object) error { return nil },
		func(*decodeState, *fields) (V, error) {
			var v V
			return v, nil
		},
	)
}

// polymorphic is the closed set of variants permitted under one base.
type polymorphic[B any] struct {
	base     string
	variants []variant[B]
}

func (p *polymorphic[B]) byValue(v B) (variant[B], bool) {
	for _, vr := range p.variants {
		if vr.match(v) {
			return vr, true
		}
	}
	return variant[B]{}, false
}

func (p *polymorphic[B]) byTag(tag string) (variant[B], bool) {
	for _, vr := range p.variants {
		if vr.tag == tag {
			return vr, true
		}
	}
	return variant[B]{}, false
}

func (p *polymorphic[B]) tags() []string {
	out := make([]string, len(p.variants))
	for i, vr := range p.variants {
		out[i] = vr.tag
	}
	return out
}

func (p *polymorphic[B]) add(catalog []variant[B], tags []string) error {
	for _, tag := range tags {
		if _, dup := p.byTag(tag); dup {
			return fmt.Errorf("variant %q registered twice for %s", tag, p.base)
		}
		found := false
		for _, vr := range catalog {
			if vr.tag == tag {
				p.variants = append(p.variants, vr)
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("no %s variant is known by tag %q", p.base, tag)
		}
	}
	return nil
}

// Every variant the serializer knows how to encode. A Registry picks from
// these.
var (
	dataTypeCatalog = []variant[schema.DataType]{
		singleton[schema.IntDataType](TagInt),
		singleton[schema.LongDataType](TagLong),
		singleton[schema.StringDataType](TagString),
		singleton[schema.BooleanDataType](TagBoolean),
		singleton[schema.NullType](TagNull),
		singleton[schema.UnitType](TagUnit),
	}
	dataClassCatalog = []variant[schema.DataClass]{
		subclass[schema.DataClass](TagDataClass, encodeDataClassImpl, decodeDataClassImpl),
	}
	fqNameCatalog = []variant[schema.FqName]{
		subclass[schema.FqName](TagFqName, encodeFqNameImpl, decodeFqNameImpl),
	}
	memberFunctionCatalog = []variant[schema.SchemaMemberFunction]{
		subclass[schema.SchemaMemberFunction](TagDataMemberFunction, encodeDataMemberFunction, decodeDataMemberFunction),
		subclass[schema.SchemaMemberFunction](TagDataBuilderFunction, encodeDataBuilderFunction, decodeDataBuilderFunction),
	}
)

// Registry maps each polymorphic base to the variants permitted to
// serialize under it. A Registry is immutable once built and safe for
// concurrent use.
type Registry struct {
	dataTypes       polymorphic[schema.DataType]
	dataClasses     polymorphic[schema.DataClass]
	fqNames         polymorphic[schema.FqName]
	memberFunctions polymorphic[schema.SchemaMemberFunction]
}

// RegistryOption adds variants to a Registry under construction.
type RegistryOption func(*Registry) error

// WithVariants permits the variants named by tags under base, in order.
func WithVariants(base string, tags ...string) RegistryOption {
	return func(r *Registry) error {
		switch base {
		case BaseDataType:
			return r.dataTypes.add(dataTypeCatalog, tags)
		case BaseDataClass:
			return r.dataClasses.add(dataClassCatalog, tags)
		case BaseFqName:
			return r.fqNames.add(fqNameCatalog, tags)
		case BaseSchemaMemberFunction:
			return r.memberFunctions.add(memberFunctionCatalog, tags)
		default:
			return fmt.Errorf("unknown polymorphic base %q", base)
		}
	}
}

// NewRegistry builds a registry holding only the variants named by opts.
func NewRegistry(opts ...RegistryOption) (*Registry, error) {
	r := &Registry{
		dataTypes:       polymorphic[schema.DataType]{base: BaseDataType},
		dataClasses:     polymorphic[schema.DataClass]{base: BaseDataClass},
		fqNames:         polymorphic[schema.FqName]{base: BaseFqName},
		memberFunctions: polymorphic[schema.SchemaMemberFunction]{base: BaseSchemaMemberFunction},
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, fmt.Errorf("failed to build registry: %w", err)
		}
	}
	return r, nil
}

var defaultRegistry = mustRegistry(
	WithVariants(BaseDataType, TagInt, TagLong, TagString, TagBoolean, TagNull, TagUnit),
	WithVariants(BaseDataClass, TagDataClass),
	WithVariants(BaseFqName, TagFqName),
	WithVariants(BaseSchemaMemberFunction, TagDataMemberFunction, TagDataBuilderFunction),
)

// DefaultRegistry returns the registry of every supported variant.
func DefaultRegistry() *Registry { return defaultRegistry }

func mustRegistry(opts ...RegistryOption) *Registry {
	r, err := NewRegistry(opts...)
	if err != nil {
		panic(err)
	}
	return r
}

// Tags returns the variant tags permitted under base in registration order,
// or nil for an unknown base.
func (r *Registry) Tags(base string) []string {
	switch base {
	case BaseDataType:
		return r.dataTypes.tags()
	case BaseDataClass:
		return r.dataClasses.tags()
	case BaseFqName:
		return r.fqNames.tags()
	case BaseSchemaMemberFunction:
		return r.memberFunctions.tags()
	default:
		return nil
	}
}

// Bases returns the configurable polymorphic bases, sorted.
func (r *Registry) Bases() []string {
	return []string{BaseDataClass, BaseDataType, BaseFqName, BaseSchemaMemberFunction}
}
