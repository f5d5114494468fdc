package serialization

import (
	"fmt"
	"strings"

	"github.com/conduit-lang/declschema/internal/schema"
)

var (
	projectName    = schema.NewFqName("org.example.build", "Project")
	dependencyName = schema.NewFqName("org.example.build", "Dependency")
	namedName      = schema.NewFqName("org.example.core", "Named")
	listOfName     = schema.NewFqName("org.example.core", "listOf")
	envName        = schema.NewFqName("org.example.core", "env")
)

// sampleSchema builds a schema that uses every supported variant. Empty
// collections are left nil so that decoded copies compare equal.
func sampleSchema() *schema.AnalysisSchemaImpl {
	nameProp := schema.DataProperty{
		Name:            "name",
		ValueType:       schema.RefOf(schema.StringDataType{}),
		Mode:            schema.ReadWrite,
		HasDefaultValue: true,
	}
	versionProp := schema.DataProperty{
		Name:      "version",
		ValueType: schema.RefOf(schema.LongDataType{}),
		Mode:      schema.ReadOnly,
	}
	enabledProp := schema.DataProperty{
		Name:          "enabled",
		ValueType:     schema.RefOf(schema.BooleanDataType{}),
		Mode:          schema.WriteOnly,
		IsHiddenInDsl: true,
	}
	dependenciesProp := schema.DataProperty{
		Name:               "dependencies",
		ValueType:          schema.RefTo(dependencyName),
		Mode:               schema.ReadOnly,
		IsDirectAccessOnly: true,
	}

	project := &schema.DataClassImpl{
		Name:       projectName,
		Supertypes: []schema.FqName{namedName},
		Properties: []schema.DataProperty{nameProp, versionProp, enabledProp, dependenciesProp},
		MemberFunctions: []schema.SchemaMemberFunction{
			&schema.DataBuilderFunction{
				Receiver:   schema.RefTo(projectName),
				SimpleName: "name",
				DataParameter: schema.DataParameter{
					Name:      "value",
					Type:      schema.RefOf(schema.StringDataType{}),
					Semantics: schema.StoreValueInProperty{Property: nameProp},
				},
			},
			&schema.DataMemberFunction{
				Receiver:   schema.RefTo(projectName),
				SimpleName: "dependency",
				Parameters: []schema.DataParameter{
					{
						Name:      "coordinates",
						Type:      schema.RefOf(schema.StringDataType{}),
						Semantics: schema.UnknownParameterSemantics{},
					},
					{
						Type:      schema.RefOf(schema.IntDataType{}),
						IsDefault: true,
						Semantics: schema.UnknownParameterSemantics{},
					},
				},
				Semantics: schema.AddAndConfigure{
					ObjectType:       schema.RefTo(dependencyName),
					BlockRequirement: schema.BlockOptional,
				},
			},
			&schema.DataMemberFunction{
				Receiver:           schema.RefTo(projectName),
				SimpleName:         "dependencies",
				IsDirectAccessOnly: true,
				Semantics: schema.AccessAndConfigure{
					Accessor:        dependenciesProp,
					ReturnValueType: schema.RefOf(schema.UnitType{}),
				},
			},
		},
	}

	dependency := &schema.DataClassImpl{
		Name: dependencyName,
		Properties: []schema.DataProperty{
			{Name: "coordinates", ValueType: schema.RefOf(schema.StringDataType{}), Mode: schema.ReadOnly},
		},
		Constructors: []schema.DataConstructor{
			{
				Parameters: []schema.DataParameter{
					{Name: "coordinates", Type: schema.RefOf(schema.StringDataType{}), Semantics: schema.UnknownParameterSemantics{}},
				},
				DataClass: dependencyName,
			},
		},
	}

	return &schema.AnalysisSchemaImpl{
		TopLevelReceiverType: project,
		DataClassesByFqName: map[schema.FqName]schema.DataClass{
			projectName:    project,
			dependencyName: dependency,
		},
		ExternalFunctionsByFqName: map[schema.FqName]*schema.DataTopLevelFunction{
			listOfName: {
				PackageName: "org.example.core",
				SimpleName:  "listOf",
				Parameters: []schema.DataParameter{
					{Name: "elements", Type: schema.RefOf(schema.NullType{}), Semantics: schema.UnknownParameterSemantics{}},
				},
				Semantics: schema.Pure{ReturnValueType: schema.RefTo(dependencyName)},
			},
		},
		ExternalObjectsByFqName: map[schema.FqName]schema.ExternalObjectProviderKey{
			envName: {ObjectType: schema.RefTo(namedName)},
		},
		DefaultImports: []schema.FqName{projectName, listOfName},
	}
}

// minimalSchema has a bare top-level receiver and nothing else.
func minimalSchema() *schema.AnalysisSchemaImpl {
	return &schema.AnalysisSchemaImpl{
		TopLevelReceiverType: &schema.DataClassImpl{Name: schema.NewFqName("", "Top")},
	}
}

const topClassJSON = `{"type":"dataClass","name":{"type":"fqName","packageName":"","simpleName":"Top"},` +
	`"supertypes":[],"properties":[],"memberFunctions":[],"constructors":[]}`

// document wraps a top-level receiver in an otherwise empty root object.
func document(top string) string {
	return fmt.Sprintf(`{"topLevelReceiverType":%s,"dataClassesByFqName":[],"externalFunctionsByFqName":[],`+
		`"externalObjectsByFqName":[],"defaultImports":[]}`, top)
}

// classWith replaces one member list of the top class.
func classWith(member, value string) string {
	return strings.Replace(topClassJSON, fmt.Sprintf(`"%s":[]`, member), fmt.Sprintf(`"%s":%s`, member, value), 1)
}

type rogueSchema struct{}

func (rogueSchema) TopLevelReceiver() schema.DataClass               { return nil }
func (rogueSchema) DataClass(schema.FqName) (schema.DataClass, bool) { return nil, false }

type rogueName struct{}

func (rogueName) QualifiedName() string { return "rogue.Name" }

type rogueClass struct{}

func (rogueClass) ClassName() schema.FqName { return projectName }

type rogueFunction struct{}

func (rogueFunction) FunctionName() string                        { return "rogue" }
func (rogueFunction) ReceiverType() schema.DataTypeRef            { return schema.RefTo(projectName) }
func (rogueFunction) FunctionSemantics() schema.FunctionSemantics { return nil }

type rogueType struct{}

func (rogueType) DataTypeName() string { return "Rogue" }
