// Package schema describes the analysis schema of a declarative configuration
// language: the data types, data classes and member functions that the
// language's analysis engine exposes to a DSL script.
//
// The types here are shapes only. Building a schema from source analysis and
// interpreting it are done elsewhere; this package gives those collaborators
// and the serialization package a common vocabulary.
package schema

import (
	"sort"
	"strings"
)

// AnalysisSchema is the root of a schema graph.
type AnalysisSchema interface {
	// TopLevelReceiver returns the data class that receives top-level
	// statements of a script.
	TopLevelReceiver() DataClass
	// DataClass looks up a data class by its fully-qualified name.
	DataClass(name FqName) (DataClass, bool)
}

// AnalysisSchemaImpl is the only concrete AnalysisSchema.
type AnalysisSchemaImpl struct {
	TopLevelReceiverType      DataClass
	DataClassesByFqName       map[FqName]DataClass
	ExternalFunctionsByFqName map[FqName]*DataTopLevelFunction
	ExternalObjectsByFqName   map[FqName]ExternalObjectProviderKey
	DefaultImports            []FqName
}

// TopLevelReceiver implements AnalysisSchema.
func (s *AnalysisSchemaImpl) TopLevelReceiver() DataClass { return s.TopLevelReceiverType }

// DataClass implements AnalysisSchema.
func (s *AnalysisSchemaImpl) DataClass(name FqName) (DataClass, bool) {
	c, ok := s.DataClassesByFqName[name]
	return c, ok
}

// FqName identifies a declaration by package and simple name.
type FqName interface {
	QualifiedName() string
}

// FqNameImpl is the only concrete FqName. It is comparable and is used as a
// map key throughout the schema.
type FqNameImpl struct {
	PackageName string
	SimpleName  string
}

// NewFqName builds a name from its package and simple parts.
func NewFqName(packageName, simpleName string) FqNameImpl {
	return FqNameImpl{PackageName: packageName, SimpleName: simpleName}
}

// ParseFqName splits a dotted name at its last dot.
func ParseFqName(qualified string) FqNameImpl {
	i := strings.LastIndexByte(qualified, '.')
	if i < 0 {
		return FqNameImpl{SimpleName: qualified}
	}
	return FqNameImpl{PackageName: qualified[:i], SimpleName: qualified[i+1:]}
}

// QualifiedName implements FqName.
func (n FqNameImpl) QualifiedName() string {
	if n.PackageName == "" {
		return n.SimpleName
	}
	return n.PackageName + "." + n.SimpleName
}

func (n FqNameImpl) String() string { return n.QualifiedName() }

// SortFqNames orders names by qualified name. Distinct FqNameImpl values
// with the same qualified name ("a.b"+"c" and "a"+"b.c") are ordered by
// package name.
func SortFqNames(names []FqName) {
	sort.SliceStable(names, func(i, j int) bool {
		return lessFqName(names[i], names[j])
	})
}

func lessFqName(a, b FqName) bool {
	qa, qb := a.QualifiedName(), b.QualifiedName()
	if qa != qb {
		return qa < qb
	}
	ia, aok := a.(FqNameImpl)
	ib, bok := b.(FqNameImpl)
	if aok && bok {
		return ia.PackageName < ib.PackageName
	}
	return aok && !bok
}

// DataClass describes a composite type available to scripts.
type DataClass interface {
	ClassName() FqName
}

// DataClassImpl is the only concrete DataClass.
type DataClassImpl struct {
	Name            FqName
	Supertypes      []FqName
	Properties      []DataProperty
	MemberFunctions []SchemaMemberFunction
	Constructors    []DataConstructor
}

// ClassName implements DataClass.
func (c *DataClassImpl) ClassName() FqName { return c.Name }

// Property finds a property by name.
func (c *DataClassImpl) Property(name string) (DataProperty, bool) {
	for _, p := range c.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return DataProperty{}, false
}

// DataProperty is a named, typed property of a data class.
type DataProperty struct {
	Name               string
	ValueType          DataTypeRef
	Mode               PropertyMode
	HasDefaultValue    bool
	IsHiddenInDsl      bool
	IsDirectAccessOnly bool
}

// DataParameter is a parameter of a function or constructor. Name is empty
// for positional parameters whose name is not known.
type DataParameter struct {
	Name      string
	Type      DataTypeRef
	IsDefault bool
	Semantics ParameterSemantics
}

// DataConstructor builds instances of DataClass from Parameters.
type DataConstructor struct {
	Parameters []DataParameter
	DataClass  FqName
}

// DataTopLevelFunction is a function imported into scripts by name.
type DataTopLevelFunction struct {
	PackageName string
	SimpleName  string
	Parameters  []DataParameter
	Semantics   FunctionSemantics
}

// QualifiedName returns the dotted name of the function.
func (f *DataTopLevelFunction) QualifiedName() string {
	return NewFqName(f.PackageName, f.SimpleName).QualifiedName()
}

// ExternalObjectProviderKey identifies an object made available to scripts
// from outside the schema.
type ExternalObjectProviderKey struct {
	ObjectType DataTypeRef
}

// SchemaMemberFunction is a function callable on an instance of a data class.
type SchemaMemberFunction interface {
	FunctionName() string
	ReceiverType() DataTypeRef
	FunctionSemantics() FunctionSemantics
}

// DataMemberFunction is a member function with explicit semantics.
type DataMemberFunction struct {
	Receiver           DataTypeRef
	SimpleName         string
	Parameters         []DataParameter
	IsDirectAccessOnly bool
	Semantics          FunctionSemantics
}

func (f *DataMemberFunction) FunctionName() string                 { return f.SimpleName }
func (f *DataMemberFunction) ReceiverType() DataTypeRef            { return f.Receiver }
func (f *DataMemberFunction) FunctionSemantics() FunctionSemantics { return f.Semantics }

// DataBuilderFunction configures a single value on its receiver and returns
// the receiver, so calls can be chained.
type DataBuilderFunction struct {
	Receiver           DataTypeRef
	SimpleName         string
	IsDirectAccessOnly bool
	DataParameter      DataParameter
}

func (f *DataBuilderFunction) FunctionName() string      { return f.SimpleName }
func (f *DataBuilderFunction) ReceiverType() DataTypeRef { return f.Receiver }

// FunctionSemantics of a builder is always Builder returning the receiver.
func (f *DataBuilderFunction) FunctionSemantics() FunctionSemantics {
	return Builder{ReturnValueType: f.Receiver}
}
