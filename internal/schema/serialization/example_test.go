package serialization_test

import (
	"errors"
	"fmt"

	"github.com/conduit-lang/declschema/internal/schema"
	"github.com/conduit-lang/declschema/internal/schema/serialization"
)

func ExampleSchemaToJSONString() {
	root := &schema.AnalysisSchemaImpl{
		TopLevelReceiverType: &schema.DataClassImpl{Name: schema.NewFqName("com.example", "Settings")},
	}

	text, err := serialization.SchemaToJSONString(root)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	restored, err := serialization.SchemaFromJSONString(text)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println(restored.TopLevelReceiver().ClassName().QualifiedName())
	// Output: com.example.Settings
}

func ExampleSchemaFromJSONString_mismatch() {
	_, err := serialization.SchemaFromJSONString(`{"topLevelReceiverType":{"type":"interface"}}`)

	var mismatch *serialization.SchemaMismatchError
	if errors.As(err, &mismatch) {
		fmt.Println(mismatch.Code, mismatch.Tag)
	}
	// Output: unknown_tag interface
}
