// Package blocks decodes and encodes the block descriptor wire format used by
// editing clients and serialized owner content.
package blocks

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/goliatone/go-fieldblocks/pkg/model"
)

//go:embed schema/descriptor.schema.json
var descriptorSchema []byte

// Schema returns the embedded JSON schema for a single descriptor.
func Schema() []byte {
	return append([]byte(nil), descriptorSchema...)
}

// DecodeError reports a payload that is not valid JSON or violates the
// descriptor schema.
type DecodeError struct {
	Problems []string
	Err      error
}

func (e *DecodeError) Error() string {
	if len(e.Problems) > 0 {
		return "blocks: invalid descriptor: " + strings.Join(e.Problems, "; ")
	}
	return fmt.Sprintf("blocks: invalid descriptor: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

var (
	compileOnce  sync.Once
	singleSchema *gojsonschema.Schema
	listSchema   *gojsonschema.Schema
	compileErr   error
)

func schemas() (*gojsonschema.Schema, *gojsonschema.Schema, error) {
	compileOnce.Do(func() {
		singleSchema, compileErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(descriptorSchema))
		if compileErr != nil {
			compileErr = fmt.Errorf("blocks: compile descriptor schema: %w", compileErr)
			return
		}

		var doc map[string]any
		if compileErr = json.Unmarshal(descriptorSchema, &doc); compileErr != nil {
			return
		}
		list := map[string]any{
			"$schema":     doc["$schema"],
			"definitions": doc["definitions"],
			"type":        "array",
			"items":       map[string]any{"$ref": "#/definitions/descriptor"},
		}
		listSchema, compileErr = gojsonschema.NewSchema(gojsonschema.NewGoLoader(list))
		if compileErr != nil {
			compileErr = fmt.Errorf("blocks: compile descriptor list schema: %w", compileErr)
		}
	})
	return singleSchema, listSchema, compileErr
}

// Decode validates and decodes a single descriptor.
func Decode(data []byte) (model.Descriptor, error) {
	single, _, err := schemas()
	if err != nil {
		return model.Descriptor{}, err
	}
	if err := validate(single, data); err != nil {
		return model.Descriptor{}, err
	}

	var desc model.Descriptor
	if err := json.Unmarshal(data, &desc); err != nil {
		return model.Descriptor{}, &DecodeError{Err: err}
	}
	return Normalize(desc), nil
}

// DecodeList validates and decodes a serialized block list. Empty input
// decodes to an empty list.
func DecodeList(data []byte) ([]model.Descriptor, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return []model.Descriptor{}, nil
	}
	_, list, err := schemas()
	if err != nil {
		return nil, err
	}
	if err := validate(list, data); err != nil {
		return nil, err
	}

	var out []model.Descriptor
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, &DecodeError{Err: err}
	}
	for i := range out {
		out[i] = Normalize(out[i])
	}
	return out, nil
}

// EncodeList serializes descriptors back into the wire format.
func EncodeList(descriptors []model.Descriptor) ([]byte, error) {
	if descriptors == nil {
		descriptors = []model.Descriptor{}
	}
	return json.Marshal(descriptors)
}

// Normalize applies wire defaults: a missing mode means auto.
func Normalize(desc model.Descriptor) model.Descriptor {
	desc.TypeName = strings.TrimSpace(desc.TypeName)
	if desc.Mode == "" {
		desc.Mode = model.ModeAuto
	}
	for i := range desc.InnerBlocks {
		desc.InnerBlocks[i] = Normalize(desc.InnerBlocks[i])
	}
	return desc
}

func validate(schema *gojsonschema.Schema, data []byte) error {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return &DecodeError{Err: err}
	}
	if result.Valid() {
		return nil
	}
	problems := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		problems = append(problems, desc.String())
	}
	return &DecodeError{Problems: problems}
}
