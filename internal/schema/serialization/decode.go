package serialization

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	json "github.com/goccy/go-json"

	"github.com/conduit-lang/declschema/internal/schema"
)

type decodeState struct {
	reg *Registry
}

var jsonNull = []byte("null")

func isNull(data json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(data), jsonNull)
}

func parseErr(path string, err error) error {
	var se *json.SyntaxError
	if errors.As(err, &se) {
		return &ParseError{Path: path, Offset: se.Offset, Err: err}
	}
	return &ParseError{Path: path, Offset: -1, Err: err}
}

// fields is a decoded JSON object whose members are consumed one by one.
// Members left unconsumed are reported by done.
type fields struct {
	path string
	base string
	tag  string
	raw  map[string]json.RawMessage
	used map[string]bool
}

func (d *decodeState) object(path, base string, data json.RawMessage) (*fields, error) {
	if isNull(data) {
		return nil, parseErr(path, fmt.Errorf("expected %s object, got null", base))
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, parseErr(path, fmt.Errorf("expected %s object: %w", base, err))
	}
	keys, err := memberNames(data)
	if err != nil {
		return nil, parseErr(path, err)
	}
	if len(keys) != len(raw) {
		seen := make(map[string]bool, len(keys))
		for _, k := range keys {
			if seen[k] {
				return nil, parseErr(at(path, k), fmt.Errorf("duplicate member %q in %s object", k, base))
			}
			seen[k] = true
		}
	}
	return &fields{path: path, base: base, raw: raw, used: make(map[string]bool, len(raw))}, nil
}

// memberNames lists the member names of a well-formed JSON object in
// document order, repeats included.
func memberNames(data []byte) ([]string, error) {
	var names []string
	depth := 0
	expectName := false
	for i := 0; i < len(data); i++ {
		switch c := data[i]; c {
		case '"':
			end := stringEnd(data, i)
			if depth == 1 && expectName {
				var name string
				if err := json.Unmarshal(data[i:end+1], &name); err != nil {
					return nil, err
				}
				names = append(names, name)
				expectName = false
			}
			i = end
		case '{', '[':
			depth++
			expectName = depth == 1 && c == '{'
		case '}', ']':
			depth--
		case ',':
			if depth == 1 {
				expectName = true
			}
		}
	}
	return names, nil
}

// stringEnd returns the index of the quote closing the string opened at i.
func stringEnd(data []byte, i int) int {
	for j := i + 1; j < len(data); j++ {
		switch data[j] {
		case '\\':
			j++
		case '"':
			return j
		}
	}
	return len(data) - 1
}

func (f *fields) at(name string) string { return at(f.path, name) }

func (f *fields) take(name string) (json.RawMessage, bool) {
	v, ok := f.raw[name]
	if ok {
		f.used[name] = true
	}
	return v, ok
}

func (f *fields) missing(name string) error {
	return &SchemaMismatchError{Code: CodeMissingField, Base: f.base, Tag: f.tag, Field: name, Path: f.path}
}

// require returns a member that must be present and non-null.
func (f *fields) require(name string) (json.RawMessage, error) {
	v, ok := f.take(name)
	if !ok {
		return nil, f.missing(name)
	}
	if isNull(v) {
		return nil, parseErr(f.at(name), fmt.Errorf("field %q must not be null", name))
	}
	return v, nil
}

func (f *fields) stringField(name string) (string, error) {
	raw, err := f.require(name)
	if err != nil {
		return "", err
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", parseErr(f.at(name), err)
	}
	return s, nil
}

func (f *fields) optionalString(name string) (string, error) {
	raw, ok := f.take(name)
	if !ok || isNull(raw) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", parseErr(f.at(name), err)
	}
	return s, nil
}

func (f *fields) boolField(name string) (bool, error) {
	raw, err := f.require(name)
	if err != nil {
		return false, err
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return false, parseErr(f.at(name), err)
	}
	return b, nil
}

// enum decodes a string member through its TextUnmarshaler.
func (f *fields) enum(name string, dst interface{ UnmarshalText([]byte) error }) error {
	s, err := f.stringField(name)
	if err != nil {
		return err
	}
	if err := dst.UnmarshalText([]byte(s)); err != nil {
		return &SchemaMismatchError{Code: CodeInvalidEnum, Base: f.base, Tag: f.tag, Field: name, Path: f.at(name)}
	}
	return nil
}

// done fails on the first member, in key order, that was never consumed.
func (f *fields) done() error {
	if len(f.used) == len(f.raw) {
		return nil
	}
	keys := make([]string, 0, len(f.raw))
	for k := range f.raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !f.used[k] {
			return &SchemaMismatchError{Code: CodeUnknownField, Base: f.base, Tag: f.tag, Field: k, Path: f.path}
		}
	}
	return nil
}

// record decodes a non-polymorphic object with fn and rejects unknown members.
func (d *decodeState) record(path, base string, data json.RawMessage, fn func(f *fields) error) error {
	f, err := d.object(path, base, data)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		return err
	}
	return f.done()
}

// decodePolymorphic reads the type tag of a tagged object and hands the
// remaining members to the variant registered for it.
func decodePolymorphic[B any](d *decodeState, p *polymorphic[B], path string, data json.RawMessage) (B, error) {
	var zero B
	f, err := d.object(path, p.base, data)
	if err != nil {
		return zero, err
	}
	rawTag, ok := f.take(DiscriminatorKey)
	if !ok || isNull(rawTag) {
		return zero, &SchemaMismatchError{Code: CodeMissingTag, Base: p.base, Path: path}
	}
	var tag string
	if err := json.Unmarshal(rawTag, &tag); err != nil {
		return zero, parseErr(at(path, DiscriminatorKey), err)
	}
	vr, ok := p.byTag(tag)
	if !ok {
		return zero, &SchemaMismatchError{Code: CodeUnknownTag, Base: p.base, Tag: tag, Path: path}
	}
	f.tag = tag
	v, err := vr.decode(d, f)
	if err != nil {
		return zero, err
	}
	if err := f.done(); err != nil {
		return zero, err
	}
	return v, nil
}

// sealed decodes one of a fixed set of tagged shapes that are not part of the
// Registry.
func sealed[T any](d *decodeState, base, path string, data json.RawMessage, variants map[string]func(f *fields) (T, error)) (T, error) {
	var zero T
	f, err := d.object(path, base, data)
	if err != nil {
		return zero, err
	}
	rawTag, ok := f.take(DiscriminatorKey)
	if !ok || isNull(rawTag) {
		return zero, &SchemaMismatchError{Code: CodeMissingTag, Base: base, Path: path}
	}
	var tag string
	if err := json.Unmarshal(rawTag, &tag); err != nil {
		return zero, parseErr(at(path, DiscriminatorKey), err)
	}
	fn, ok := variants[tag]
	if !ok {
		return zero, &SchemaMismatchError{Code: CodeUnknownTag, Base: base, Tag: tag, Path: path}
	}
	f.tag = tag
	v, err := fn(f)
	if err != nil {
		return zero, err
	}
	if err := f.done(); err != nil {
		return zero, err
	}
	return v, nil
}

// decodeList decodes a JSON array. An empty array yields a nil slice.
func decodeList[T any](path string, data json.RawMessage, dec func(path string, item json.RawMessage) (T, error)) ([]T, error) {
	if isNull(data) {
		return nil, parseErr(path, errors.New("expected array, got null"))
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, parseErr(path, fmt.Errorf("expected array: %w", err))
	}
	if len(items) == 0 {
		return nil, nil
	}
	out := make([]T, 0, len(items))
	for i, item := range items {
		v, err := dec(at(path, i), item)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

type entry[V any] struct {
	key   schema.FqName
	value V
}

// decodeEntries decodes [key, value] pairs into a map keyed by FqName. An
// empty array yields a nil map.
func decodeEntries[V any](d *decodeState, path string, data json.RawMessage, dec func(path string, item json.RawMessage) (V, error)) (map[schema.FqName]V, error) {
	entries, err := decodeList(path, data, func(path string, item json.RawMessage) (entry[V], error) {
		var pair []json.RawMessage
		if err := json.Unmarshal(item, &pair); err != nil || len(pair) != 2 {
			if err == nil {
				err = fmt.Errorf("map entry has %d elements, want [key, value]", len(pair))
			}
			return entry[V]{}, parseErr(path, err)
		}
		key, err := d.fqName(at(path, 0), pair[0])
		if err != nil {
			return entry[V]{}, err
		}
		value, err := dec(at(path, 1), pair[1])
		if err != nil {
			return entry[V]{}, err
		}
		return entry[V]{key: key, value: value}, nil
	})
	if err != nil || len(entries) == 0 {
		return nil, err
	}
	out := make(map[schema.FqName]V, len(entries))
	for i, en := range entries {
		if _, dup := out[en.key]; dup {
			return nil, parseErr(at(path, i, 0), fmt.Errorf("duplicate map key %s", en.key.QualifiedName()))
		}
		out[en.key] = en.value
	}
	return out, nil
}

func (d *decodeState) dataType(path string, data json.RawMessage) (schema.DataType, error) {
	return decodePolymorphic(d, &d.reg.dataTypes, path, data)
}

func (d *decodeState) dataClass(path string, data json.RawMessage) (schema.DataClass, error) {
	return decodePolymorphic(d, &d.reg.dataClasses, path, data)
}

func (d *decodeState) fqName(path string, data json.RawMessage) (schema.FqName, error) {
	return decodePolymorphic(d, &d.reg.fqNames, path, data)
}

func (d *decodeState) memberFunction(path string, data json.RawMessage) (schema.SchemaMemberFunction, error) {
	return decodePolymorphic(d, &d.reg.memberFunctions, path, data)
}

// fieldList decodes a required array member.
func fieldList[T any](f *fields, name string, dec func(path string, item json.RawMessage) (T, error)) ([]T, error) {
	raw, err := f.require(name)
	if err != nil {
		return nil, err
	}
	return decodeList(f.at(name), raw, dec)
}

// fieldEntries decodes a required [key, value] array member.
func fieldEntries[V any](d *decodeState, f *fields, name string, dec func(path string, item json.RawMessage) (V, error)) (map[schema.FqName]V, error) {
	raw, err := f.require(name)
	if err != nil {
		return nil, err
	}
	return decodeEntries(d, f.at(name), raw, dec)
}

func (d *decodeState) analysisSchema(data json.RawMessage) (*schema.AnalysisSchemaImpl, error) {
	out := &schema.AnalysisSchemaImpl{}
	err := d.record("", BaseAnalysisSchema, data, func(f *fields) error {
		raw, err := f.require("topLevelReceiverType")
		if err != nil {
			return err
		}
		if out.TopLevelReceiverType, err = d.dataClass(f.at("topLevelReceiverType"), raw); err != nil {
			return err
		}
		if out.DataClassesByFqName, err = fieldEntries(d, f, "dataClassesByFqName", d.dataClass); err != nil {
			return err
		}
		if out.ExternalFunctionsByFqName, err = fieldEntries(d, f, "externalFunctionsByFqName", d.topLevelFunction); err != nil {
			return err
		}
		if out.ExternalObjectsByFqName, err = fieldEntries(d, f, "externalObjectsByFqName", d.externalObject); err != nil {
			return err
		}
		out.DefaultImports, err = fieldList(f, "defaultImports", d.fqName)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func decodeFqNameImpl(_ *decodeState, f *fields) (schema.FqNameImpl, error) {
	var n schema.FqNameImpl
	var err error
	if n.PackageName, err = f.stringField("packageName"); err != nil {
		return n, err
	}
	n.SimpleName, err = f.stringField("simpleName")
	return n, err
}

func decodeDataClassImpl(d *decodeState, f *fields) (*schema.DataClassImpl, error) {
	c := &schema.DataClassImpl{}
	raw, err := f.require("name")
	if err != nil {
		return nil, err
	}
	if c.Name, err = d.fqName(f.at("name"), raw); err != nil {
		return nil, err
	}
	if c.Supertypes, err = fieldList(f, "supertypes", d.fqName); err != nil {
		return nil, err
	}
	if c.Properties, err = fieldList(f, "properties", d.property); err != nil {
		return nil, err
	}
	if c.MemberFunctions, err = fieldList(f, "memberFunctions", d.memberFunction); err != nil {
		return nil, err
	}
	if c.Constructors, err = fieldList(f, "constructors", d.constructor); err != nil {
		return nil, err
	}
	return c, nil
}

func decodeDataMemberFunction(d *decodeState, f *fields) (*schema.DataMemberFunction, error) {
	fn := &schema.DataMemberFunction{}
	raw, err := f.require("receiver")
	if err != nil {
		return nil, err
	}
	if fn.Receiver, err = d.typeRef(f.at("receiver"), raw); err != nil {
		return nil, err
	}
	if fn.SimpleName, err = f.stringField("simpleName"); err != nil {
		return nil, err
	}
	if fn.Parameters, err = fieldList(f, "parameters", d.parameter); err != nil {
		return nil, err
	}
	if fn.IsDirectAccessOnly, err = f.boolField("isDirectAccessOnly"); err != nil {
		return nil, err
	}
	if raw, err = f.require("semantics"); err != nil {
		return nil, err
	}
	if fn.Semantics, err = d.functionSemantics(f.at("semantics"), raw); err != nil {
		return nil, err
	}
	return fn, nil
}

func decodeDataBuilderFunction(d *decodeState, f *fields) (*schema.DataBuilderFunction, error) {
	fn := &schema.DataBuilderFunction{}
	raw, err := f.require("receiver")
	if err != nil {
		return nil, err
	}
	if fn.Receiver, err = d.typeRef(f.at("receiver"), raw); err != nil {
		return nil, err
	}
	if fn.SimpleName, err = f.stringField("simpleName"); err != nil {
		return nil, err
	}
	if fn.IsDirectAccessOnly, err = f.boolField("isDirectAccessOnly"); err != nil {
		return nil, err
	}
	if raw, err = f.require("dataParameter"); err != nil {
		return nil, err
	}
	if fn.DataParameter, err = d.parameter(f.at("dataParameter"), raw); err != nil {
		return nil, err
	}
	return fn, nil
}

func (d *decodeState) typeRef(path string, data json.RawMessage) (schema.DataTypeRef, error) {
	return sealed(d, baseDataTypeRef, path, data, map[string]func(f *fields) (schema.DataTypeRef, error){
		tagTypeRef: func(f *fields) (schema.DataTypeRef, error) {
			raw, err := f.require("dataType")
			if err != nil {
				return nil, err
			}
			t, err := d.dataType(f.at("dataType"), raw)
			if err != nil {
				return nil, err
			}
			return schema.TypeRef{DataType: t}, nil
		},
		tagNameRef: func(f *fields) (schema.DataTypeRef, error) {
			raw, err := f.require("fqName")
			if err != nil {
				return nil, err
			}
			n, err := d.fqName(f.at("fqName"), raw)
			if err != nil {
				return nil, err
			}
			return schema.NameRef{FqName: n}, nil
		},
	})
}

// returnValueType decodes the "returnValueType" member shared by several
// function semantics.
func (d *decodeState) returnValueType(f *fields) (schema.DataTypeRef, error) {
	raw, err := f.require("returnValueType")
	if err != nil {
		return nil, err
	}
	return d.typeRef(f.at("returnValueType"), raw)
}

func (d *decodeState) functionSemantics(path string, data json.RawMessage) (schema.FunctionSemantics, error) {
	return sealed(d, baseFunctionSemantics, path, data, map[string]func(f *fields) (schema.FunctionSemantics, error){
		tagPure: func(f *fields) (schema.FunctionSemantics, error) {
			ret, err := d.returnValueType(f)
			if err != nil {
				return nil, err
			}
			return schema.Pure{ReturnValueType: ret}, nil
		},
		tagBuilder: func(f *fields) (schema.FunctionSemantics, error) {
			ret, err := d.returnValueType(f)
			if err != nil {
				return nil, err
			}
			return schema.Builder{ReturnValueType: ret}, nil
		},
		tagAccessAndConfigure: func(f *fields) (schema.FunctionSemantics, error) {
			raw, err := f.require("accessor")
			if err != nil {
				return nil, err
			}
			accessor, err := d.property(f.at("accessor"), raw)
			if err != nil {
				return nil, err
			}
			ret, err := d.returnValueType(f)
			if err != nil {
				return nil, err
			}
			return schema.AccessAndConfigure{Accessor: accessor, ReturnValueType: ret}, nil
		},
		tagAddAndConfigure: func(f *fields) (schema.FunctionSemantics, error) {
			raw, err := f.require("objectType")
			if err != nil {
				return nil, err
			}
			objectType, err := d.typeRef(f.at("objectType"), raw)
			if err != nil {
				return nil, err
			}
			var requirement schema.ConfigureBlockRequirement
			if err := f.enum("configureBlockRequirement", &requirement); err != nil {
				return nil, err
			}
			return schema.AddAndConfigure{ObjectType: objectType, BlockRequirement: requirement}, nil
		},
	})
}

func (d *decodeState) parameterSemantics(path string, data json.RawMessage) (schema.ParameterSemantics, error) {
	return sealed(d, baseParameterSemantics, path, data, map[string]func(f *fields) (schema.ParameterSemantics, error){
		tagStoreValueInProperty: func(f *fields) (schema.ParameterSemantics, error) {
			raw, err := f.require("property")
			if err != nil {
				return nil, err
			}
			prop, err := d.property(f.at("property"), raw)
			if err != nil {
				return nil, err
			}
			return schema.StoreValueInProperty{Property: prop}, nil
		},
		tagUnknownSemantics: func(*fields) (schema.ParameterSemantics, error) {
			return schema.UnknownParameterSemantics{}, nil
		},
	})
}

func (d *decodeState) property(path string, data json.RawMessage) (schema.DataProperty, error) {
	var p schema.DataProperty
	err := d.record(path, "DataProperty", data, func(f *fields) error {
		var err error
		if p.Name, err = f.stringField("name"); err != nil {
			return err
		}
		raw, err := f.require("valueType")
		if err != nil {
			return err
		}
		if p.ValueType, err = d.typeRef(f.at("valueType"), raw); err != nil {
			return err
		}
		if err := f.enum("mode", &p.Mode); err != nil {
			return err
		}
		if p.HasDefaultValue, err = f.boolField("hasDefaultValue"); err != nil {
			return err
		}
		if p.IsHiddenInDsl, err = f.boolField("isHiddenInDsl"); err != nil {
			return err
		}
		p.IsDirectAccessOnly, err = f.boolField("isDirectAccessOnly")
		return err
	})
	return p, err
}

func (d *decodeState) parameter(path string, data json.RawMessage) (schema.DataParameter, error) {
	var p schema.DataParameter
	err := d.record(path, "DataParameter", data, func(f *fields) error {
		var err error
		if p.Name, err = f.optionalString("name"); err != nil {
			return err
		}
		raw, err := f.require("type")
		if err != nil {
			return err
		}
		if p.Type, err = d.typeRef(f.at("type"), raw); err != nil {
			return err
		}
		if p.IsDefault, err = f.boolField("isDefault"); err != nil {
			return err
		}
		if raw, err = f.require("semantics"); err != nil {
			return err
		}
		p.Semantics, err = d.parameterSemantics(f.at("semantics"), raw)
		return err
	})
	return p, err
}

func (d *decodeState) constructor(path string, data json.RawMessage) (schema.DataConstructor, error) {
	var c schema.DataConstructor
	err := d.record(path, "DataConstructor", data, func(f *fields) error {
		var err error
		if c.Parameters, err = fieldList(f, "parameters", d.parameter); err != nil {
			return err
		}
		raw, err := f.require("dataClass")
		if err != nil {
			return err
		}
		c.DataClass, err = d.fqName(f.at("dataClass"), raw)
		return err
	})
	return c, err
}

func (d *decodeState) topLevelFunction(path string, data json.RawMessage) (*schema.DataTopLevelFunction, error) {
	fn := &schema.DataTopLevelFunction{}
	err := d.record(path, "DataTopLevelFunction", data, func(f *fields) error {
		var err error
		if fn.PackageName, err = f.stringField("packageName"); err != nil {
			return err
		}
		if fn.SimpleName, err = f.stringField("simpleName"); err != nil {
			return err
		}
		if fn.Parameters, err = fieldList(f, "parameters", d.parameter); err != nil {
			return err
		}
		raw, err := f.require("semantics")
		if err != nil {
			return err
		}
		fn.Semantics, err = d.functionSemantics(f.at("semantics"), raw)
		return err
	})
	if err != nil {
		return nil, err
	}
	return fn, nil
}

func (d *decodeState) externalObject(path string, data json.RawMessage) (schema.ExternalObjectProviderKey, error) {
	var k schema.ExternalObjectProviderKey
	err := d.record(path, "ExternalObjectProviderKey", data, func(f *fields) error {
		raw, err := f.require("objectType")
		if err != nil {
			return err
		}
		k.ObjectType, err = d.typeRef(f.at("objectType"), raw)
		return err
	})
	return k, err
}
