package schema

import "fmt"

// DataType is a primitive value type.
type DataType interface {
	DataTypeName() string
}

// IntDataType is a 32-bit integer.
type IntDataType struct{}

// LongDataType is a 64-bit integer.
type LongDataType struct{}

// StringDataType is a string.
type StringDataType struct{}

// BooleanDataType is a boolean.
type BooleanDataType struct{}

// NullType is the type of the null literal.
type NullType struct{}

// UnitType is the type of expressions that produce no value.
type UnitType struct{}

func (IntDataType) DataTypeName() string     { return "Int" }
func (LongDataType) DataTypeName() string    { return "Long" }
func (StringDataType) DataTypeName() string  { return "String" }
func (BooleanDataType) DataTypeName() string { return "Boolean" }
func (NullType) DataTypeName() string        { return "Null" }
func (UnitType) DataTypeName() string        { return "Unit" }

// DataTypeRef refers to a type either directly or by name.
type DataTypeRef interface {
	isDataTypeRef()
	String() string
}

// TypeRef refers to a primitive type.
type TypeRef struct {
	DataType DataType
}

// NameRef refers to a data class by name.
type NameRef struct {
	FqName FqName
}

func (TypeRef) isDataTypeRef() {}
func (NameRef) isDataTypeRef() {}

func (r TypeRef) String() string {
	if r.DataType == nil {
		return "<nil>"
	}
	return r.DataType.DataTypeName()
}

func (r NameRef) String() string {
	if r.FqName == nil {
		return "<nil>"
	}
	return r.FqName.QualifiedName()
}

// RefTo returns a reference to the named data class.
func RefTo(name FqName) DataTypeRef { return NameRef{FqName: name} }

// RefOf returns a reference to a primitive type.
func RefOf(t DataType) DataTypeRef { return TypeRef{DataType: t} }

// PropertyMode controls whether a property can be read, written or both.
type PropertyMode int

const (
	ReadWrite PropertyMode = iota
	ReadOnly
	WriteOnly
)

var propertyModeNames = [...]string{
	ReadWrite: "readWrite",
	ReadOnly:  "readOnly",
	WriteOnly: "writeOnly",
}

func (m PropertyMode) String() string {
	if m < 0 || int(m) >= len(propertyModeNames) {
		return fmt.Sprintf("PropertyMode(%d)", int(m))
	}
	return propertyModeNames[m]
}

// MarshalText implements encoding.TextMarshaler.
func (m PropertyMode) MarshalText() ([]byte, error) {
	if m < 0 || int(m) >= len(propertyModeNames) {
		return nil, fmt.Errorf("invalid property mode %d", int(m))
	}
	return []byte(propertyModeNames[m]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *PropertyMode) UnmarshalText(text []byte) error {
	for i, name := range propertyModeNames {
		if name == string(text) {
			*m = PropertyMode(i)
			return nil
		}
	}
	return fmt.Errorf("unknown property mode %q", string(text))
}

// ConfigureBlockRequirement says whether a configuring call takes a block.
type ConfigureBlockRequirement int

const (
	BlockNotAllowed ConfigureBlockRequirement = iota
	BlockOptional
	BlockRequired
)

var blockRequirementNames = [...]string{
	BlockNotAllowed: "notAllowed",
	BlockOptional:   "optional",
	BlockRequired:   "required",
}

func (r ConfigureBlockRequirement) String() string {
	if r < 0 || int(r) >= len(blockRequirementNames) {
		return fmt.Sprintf("ConfigureBlockRequirement(%d)", int(r))
	}
	return blockRequirementNames[r]
}

// MarshalText implements encoding.TextMarshaler.
func (r ConfigureBlockRequirement) MarshalText() ([]byte, error) {
	if r < 0 || int(r) >= len(blockRequirementNames) {
		return nil, fmt.Errorf("invalid block requirement %d", int(r))
	}
	return []byte(blockRequirementNames[r]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *ConfigureBlockRequirement) UnmarshalText(text []byte) error {
	for i, name := range blockRequirementNames {
		if name == string(text) {
			*r = ConfigureBlockRequirement(i)
			return nil
		}
	}
	return fmt.Errorf("unknown block requirement %q", string(text))
}

// FunctionSemantics describes what calling a function does.
type FunctionSemantics interface {
	isFunctionSemantics()
	ReturnType() DataTypeRef
}

// Pure functions compute a value without side effects.
type Pure struct {
	ReturnValueType DataTypeRef
}

// Builder functions set a value on the receiver and return it.
type Builder struct {
	ReturnValueType DataTypeRef
}

// AccessAndConfigure functions open a configuring block on an existing
// property value.
type AccessAndConfigure struct {
	Accessor        DataProperty
	ReturnValueType DataTypeRef
}

// AddAndConfigure functions create a new object, add it to the receiver and
// optionally configure it.
type AddAndConfigure struct {
	ObjectType       DataTypeRef
	BlockRequirement ConfigureBlockRequirement
}

func (Pure) isFunctionSemantics()               {}
func (Builder) isFunctionSemantics()            {}
func (AccessAndConfigure) isFunctionSemantics() {}
func (AddAndConfigure) isFunctionSemantics()    {}

func (s Pure) ReturnType() DataTypeRef               { return s.ReturnValueType }
func (s Builder) ReturnType() DataTypeRef            { return s.ReturnValueType }
func (s AccessAndConfigure) ReturnType() DataTypeRef { return s.ReturnValueType }
func (s AddAndConfigure) ReturnType() DataTypeRef    { return s.ObjectType }

// ParameterSemantics describes what happens to an argument.
type ParameterSemantics interface {
	isParameterSemantics()
}

// StoreValueInProperty stores the argument in Property.
type StoreValueInProperty struct {
	Property DataProperty
}

// UnknownParameterSemantics is used when the analysis could not tell.
type UnknownParameterSemantics struct{}

func (StoreValueInProperty) isParameterSemantics()      {}
func (UnknownParameterSemantics) isParameterSemantics() {}
