package serialization

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/conduit-lang/declschema/internal/schema"
)

// object is a JSON object that keeps its keys in insertion order.
type object struct {
	keys   []string
	values []any
}

func newObject() *object { return &object{} }

func (o *object) set(key string, value any) *object {
	o.keys = append(o.keys, key)
	o.values = append(o.values, value)
	return o
}

// MarshalJSON implements json.Marshaler.
func (o *object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(o.values[i])
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

type encodeState struct {
	reg *Registry
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

// at appends reference tokens to a JSON Pointer.
func at(path string, tokens ...any) string {
	var b strings.Builder
	b.WriteString(path)
	for _, t := range tokens {
		b.WriteByte('/')
		switch v := t.(type) {
		case int:
			b.WriteString(strconv.Itoa(v))
		case string:
			b.WriteString(pointerEscaper.Replace(v))
		}
	}
	return b.String()
}

func typeName(v any) string {
	if v == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%T", v)
}

func unsupported(base, path string, v any) error {
	return &UnsupportedVariantError{Base: base, Variant: typeName(v), Path: path}
}

// encodePolymorphic writes v as a tagged object using the variant registered
// for its concrete type.
func encodePolymorphic[B any](e *encodeState, p *polymorphic[B], path string, v B) (*object, error) {
	if any(v) == nil {
		return nil, unsupported(p.base, path, nil)
	}
	vr, ok := p.byValue(v)
	if !ok {
		return nil, unsupported(p.base, path, v)
	}
	o := newObject().set(DiscriminatorKey, vr.tag)
	if err := vr.encode(e, path, v, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (e *encodeState) dataType(path string, t schema.DataType) (*object, error) {
	return encodePolymorphic(e, &e.reg.dataTypes, path, t)
}

func (e *encodeState) dataClass(path string, c schema.DataClass) (*object, error) {
	return encodePolymorphic(e, &e.reg.dataClasses, path, c)
}

func (e *encodeState) fqName(path string, n schema.FqName) (*object, error) {
	return encodePolymorphic(e, &e.reg.fqNames, path, n)
}

func (e *encodeState) memberFunction(path string, f schema.SchemaMemberFunction) (*object, error) {
	return encodePolymorphic(e, &e.reg.memberFunctions, path, f)
}

func (e *encodeState) analysisSchema(s *schema.AnalysisSchemaImpl) (*object, error) {
	o := newObject()

	top, err := e.dataClass(at("", "topLevelReceiverType"), s.TopLevelReceiverType)
	if err != nil {
		return nil, err
	}
	o.set("topLevelReceiverType", top)

	classes, err := encodeEntries(e, at("", "dataClassesByFqName"), s.DataClassesByFqName,
		func(path string, c schema.DataClass) (any, error) { return e.dataClass(path, c) })
	if err != nil {
		return nil, err
	}
	o.set("dataClassesByFqName", classes)

	functions, err := encodeEntries(e, at("", "externalFunctionsByFqName"), s.ExternalFunctionsByFqName,
		func(path string, f *schema.DataTopLevelFunction) (any, error) { return e.topLevelFunction(path, f) })
	if err != nil {
		return nil, err
	}
	o.set("externalFunctionsByFqName", functions)

	objects, err := encodeEntries(e, at("", "externalObjectsByFqName"), s.ExternalObjectsByFqName,
		func(path string, k schema.ExternalObjectProviderKey) (any, error) { return e.externalObject(path, k) })
	if err != nil {
		return nil, err
	}
	o.set("externalObjectsByFqName", objects)

	imports, err := encodeList(at("", "defaultImports"), s.DefaultImports, e.fqName)
	if err != nil {
		return nil, err
	}
	o.set("defaultImports", imports)
	return o, nil
}

// encodeEntries writes a map keyed by FqName as [key, value] pairs ordered by
// the key's qualified name.
func encodeEntries[V any](e *encodeState, path string, m map[schema.FqName]V, enc func(path string, v V) (any, error)) ([]any, error) {
	keys := make([]schema.FqName, 0, len(m))
	for k := range m {
		if k == nil {
			return nil, unsupported(BaseFqName, at(path, 0, 0), nil)
		}
		keys = append(keys, k)
	}
	schema.SortFqNames(keys)

	out := make([]any, 0, len(keys))
	for i, k := range keys {
		key, err := e.fqName(at(path, i, 0), k)
		if err != nil {
			return nil, err
		}
		value, err := enc(at(path, i, 1), m[k])
		if err != nil {
			return nil, err
		}
		out = append(out, []any{key, value})
	}
	return out, nil
}

func encodeList[T any, R any](path string, items []T, enc func(path string, v T) (R, error)) ([]any, error) {
	out := make([]any, 0, len(items))
	for i, item := range items {
		v, err := enc(at(path, i), item)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func encodeFqNameImpl(_ *encodeState, _ string, n schema.FqNameImpl, o *object) error {
	o.set("packageName", n.PackageName)
	o.set("simpleName", n.SimpleName)
	return nil
}

func encodeDataClassImpl(e *encodeState, path string, c *schema.DataClassImpl, o *object) error {
	if c == nil {
		return unsupported(BaseDataClass, path, c)
	}
	name, err := e.fqName(at(path, "name"), c.Name)
	if err != nil {
		return err
	}
	o.set("name", name)

	supertypes, err := encodeList(at(path, "supertypes"), c.Supertypes, e.fqName)
	if err != nil {
		return err
	}
	o.set("supertypes", supertypes)

	properties, err := encodeList(at(path, "properties"), c.Properties, e.property)
	if err != nil {
		return err
	}
	o.set("properties", properties)

	functions, err := encodeList(at(path, "memberFunctions"), c.MemberFunctions, e.memberFunction)
	if err != nil {
		return err
	}
	o.set("memberFunctions", functions)

	constructors, err := encodeList(at(path, "constructors"), c.Constructors, e.constructor)
	if err != nil {
		return err
	}
	o.set("constructors", constructors)
	return nil
}

func encodeDataMemberFunction(e *encodeState, path string, f *schema.DataMemberFunction, o *object) error {
	if f == nil {
		return unsupported(BaseSchemaMemberFunction, path, f)
	}
	receiver, err := e.typeRef(at(path, "receiver"), f.Receiver)
	if err != nil {
		return err
	}
	o.set("receiver", receiver)
	o.set("simpleName", f.SimpleName)

	params, err := encodeList(at(path, "parameters"), f.Parameters, e.parameter)
	if err != nil {
		return err
	}
	o.set("parameters", params)
	o.set("isDirectAccessOnly", f.IsDirectAccessOnly)

	semantics, err := e.functionSemantics(at(path, "semantics"), f.Semantics)
	if err != nil {
		return err
	}
	o.set("semantics", semantics)
	return nil
}

func encodeDataBuilderFunction(e *encodeState, path string, f *schema.DataBuilderFunction, o *object) error {
	if f == nil {
		return unsupported(BaseSchemaMemberFunction, path, f)
	}
	receiver, err := e.typeRef(at(path, "receiver"), f.Receiver)
	if err != nil {
		return err
	}
	o.set("receiver", receiver)
	o.set("simpleName", f.SimpleName)
	o.set("isDirectAccessOnly", f.IsDirectAccessOnly)

	param, err := e.parameter(at(path, "dataParameter"), f.DataParameter)
	if err != nil {
		return err
	}
	o.set("dataParameter", param)
	return nil
}

// Sealed types below are not configurable through the Registry; they are
// encoded with the same discriminator scheme.

const (
	tagTypeRef              = "typeRef"
	tagNameRef              = "nameRef"
	tagPure                 = "pure"
	tagBuilder              = "builder"
	tagAccessAndConfigure   = "accessAndConfigure"
	tagAddAndConfigure      = "addAndConfigure"
	tagStoreValueInProperty = "storeValueInProperty"
	tagUnknownSemantics     = "unknown"

	baseDataTypeRef        = "DataTypeRef"
	baseFunctionSemantics  = "FunctionSemantics"
	baseParameterSemantics = "ParameterSemantics"
)

func (e *encodeState) typeRef(path string, r schema.DataTypeRef) (*object, error) {
	switch ref := r.(type) {
	case schema.TypeRef:
		t, err := e.dataType(at(path, "dataType"), ref.DataType)
		if err != nil {
			return nil, err
		}
		return newObject().set(DiscriminatorKey, tagTypeRef).set("dataType", t), nil
	case schema.NameRef:
		n, err := e.fqName(at(path, "fqName"), ref.FqName)
		if err != nil {
			return nil, err
		}
		return newObject().set(DiscriminatorKey, tagNameRef).set("fqName", n), nil
	default:
		return nil, unsupported(baseDataTypeRef, path, r)
	}
}

func (e *encodeState) functionSemantics(path string, s schema.FunctionSemantics) (*object, error) {
	switch sem := s.(type) {
	case schema.Pure:
		ret, err := e.typeRef(at(path, "returnValueType"), sem.ReturnValueType)
		if err != nil {
			return nil, err
		}
		return newObject().set(DiscriminatorKey, tagPure).set("returnValueType", ret), nil
	case schema.Builder:
		ret, err := e.typeRef(at(path, "returnValueType"), sem.ReturnValueType)
		if err != nil {
			return nil, err
		}
		return newObject().set(DiscriminatorKey, tagBuilder).set("returnValueType", ret), nil
	case schema.AccessAndConfigure:
		accessor, err := e.property(at(path, "accessor"), sem.Accessor)
		if err != nil {
			return nil, err
		}
		ret, err := e.typeRef(at(path, "returnValueType"), sem.ReturnValueType)
		if err != nil {
			return nil, err
		}
		return newObject().
			set(DiscriminatorKey, tagAccessAndConfigure).
			set("accessor", accessor).
			set("returnValueType", ret), nil
	case schema.AddAndConfigure:
		objectType, err := e.typeRef(at(path, "objectType"), sem.ObjectType)
		if err != nil {
			return nil, err
		}
		requirement, err := sem.BlockRequirement.MarshalText()
		if err != nil {
			return nil, unsupported("ConfigureBlockRequirement", at(path, "configureBlockRequirement"), sem.BlockRequirement)
		}
		return newObject().
			set(DiscriminatorKey, tagAddAndConfigure).
			set("objectType", objectType).
			set("configureBlockRequirement", string(requirement)), nil
	default:
		return nil, unsupported(baseFunctionSemantics, path, s)
	}
}

func (e *encodeState) parameterSemantics(path string, s schema.ParameterSemantics) (*object, error) {
	switch sem := s.(type) {
	case schema.StoreValueInProperty:
		prop, err := e.property(at(path, "property"), sem.Property)
		if err != nil {
			return nil, err
		}
		return newObject().set(DiscriminatorKey, tagStoreValueInProperty).set("property", prop), nil
	case schema.UnknownParameterSemantics:
		return newObject().set(DiscriminatorKey, tagUnknownSemantics), nil
	default:
		return nil, unsupported(baseParameterSemantics, path, s)
	}
}

func (e *encodeState) property(path string, p schema.DataProperty) (*object, error) {
	valueType, err := e.typeRef(at(path, "valueType"), p.ValueType)
	if err != nil {
		return nil, err
	}
	mode, err := p.Mode.MarshalText()
	if err != nil {
		return nil, unsupported("PropertyMode", at(path, "mode"), p.Mode)
	}
	return newObject().
		set("name", p.Name).
		set("valueType", valueType).
		set("mode", string(mode)).
		set("hasDefaultValue", p.HasDefaultValue).
		set("isHiddenInDsl", p.IsHiddenInDsl).
		set("isDirectAccessOnly", p.IsDirectAccessOnly), nil
}

func (e *encodeState) parameter(path string, p schema.DataParameter) (*object, error) {
	o := newObject()
	if p.Name != "" {
		o.set("name", p.Name)
	}
	t, err := e.typeRef(at(path, "type"), p.Type)
	if err != nil {
		return nil, err
	}
	o.set("type", t)
	o.set("isDefault", p.IsDefault)
	sem, err := e.parameterSemantics(at(path, "semantics"), p.Semantics)
	if err != nil {
		return nil, err
	}
	o.set("semantics", sem)
	return o, nil
}

func (e *encodeState) constructor(path string, c schema.DataConstructor) (*object, error) {
	params, err := encodeList(at(path, "parameters"), c.Parameters, e.parameter)
	if err != nil {
		return nil, err
	}
	class, err := e.fqName(at(path, "dataClass"), c.DataClass)
	if err != nil {
		return nil, err
	}
	return newObject().set("parameters", params).set("dataClass", class), nil
}

func (e *encodeState) topLevelFunction(path string, f *schema.DataTopLevelFunction) (*object, error) {
	if f == nil {
		return nil, unsupported("DataTopLevelFunction", path, nil)
	}
	params, err := encodeList(at(path, "parameters"), f.Parameters, e.parameter)
	if err != nil {
		return nil, err
	}
	sem, err := e.functionSemantics(at(path, "semantics"), f.Semantics)
	if err != nil {
		return nil, err
	}
	return newObject().
		set("packageName", f.PackageName).
		set("simpleName", f.SimpleName).
		set("parameters", params).
		set("semantics", sem), nil
}

func (e *encodeState) externalObject(path string, k schema.ExternalObjectProviderKey) (*object, error) {
	t, err := e.typeRef(at(path, "objectType"), k.ObjectType)
	if err != nil {
		return nil, err
	}
	return newObject().set("objectType", t), nil
}
