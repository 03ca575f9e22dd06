package serializer

import (
	"bytes"
	"encoding/json"
	"sync"

	"github.com/pkg/errors"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// documentSchema is the JSON Schema for the `.mortared` wire shape,
// compiled lazily on first use. Kept minimal: it checks the structural
// contract (required top-level keys, node/function shapes) rather than
// re-deriving every union rule already enforced by Serialize itself.
const documentSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["metadata", "nodes", "functions"],
	"properties": {
		"metadata": {
			"type": "object",
			"required": ["version", "generated_at"],
			"properties": {
				"version": {"type": "string"},
				"generated_at": {"type": "string"}
			}
		},
		"nodes": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["name", "texts"],
				"properties": {
					"name": {"type": "string"},
					"texts": {"type": "array"},
					"branches": {"type": "array"},
					"next": {"type": "string"},
					"choice": {"type": "array"}
				}
			}
		},
		"functions": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["name", "params"],
				"properties": {
					"name": {"type": "string"},
					"params": {"type": "array"},
					"return": {"type": "string"}
				}
			}
		}
	}
}`

var (
	schemaOnce  sync.Once
	schema      *jsonschema.Schema
	schemaBuild error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		if err := c.AddResource("mortared.json", bytes.NewReader([]byte(documentSchema))); err != nil {
			schemaBuild = errors.Wrap(err, "add mortared schema resource")
			return
		}
		s, err := c.Compile("mortared.json")
		if err != nil {
			schemaBuild = errors.Wrap(err, "compile mortared schema")
			return
		}
		schema = s
	})
	return schema, schemaBuild
}

// ValidateSchema checks that data (a serialized `.mortared` document)
// conforms to the published wire shape. It is a second line of defense
// behind Serialize's own construction — useful for validating documents
// that arrived from elsewhere (another compiler version, a hand-edited
// file) rather than ones this package just produced.
func ValidateSchema(data []byte) error {
	s, err := compiledSchema()
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return errors.Wrap(err, "decode document for schema validation")
	}
	if err := s.Validate(v); err != nil {
		return errors.Wrap(err, "document does not conform to the mortared schema")
	}
	return nil
}
