package summarizer

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/invopop/jsonschema"

	"pathsummarizer/internal/domain"
)

const (
	propertiesKey           = "properties"
	additionalPropertiesKey = "additionalProperties"
	typeKey                 = "type"
	requiredKey             = "required"
	itemsKey                = "items"
	oneOfKey                = "oneOf"
	anyOfKey                = "anyOf"
)

var alertSummarySchema = GenerateSchema[domain.AlertSummary]()

// AlertSummarySchema returns the response schema sent to the model.
func AlertSummarySchema() map[string]any {
	return alertSummarySchema
}

// AlertSummarySchemaJSON is the canonical encoding of the response schema.
// Map keys are sorted by encoding/json and required lists are sorted by
// ensureStrictCompliance, so the bytes are stable across processes.
func AlertSummarySchemaJSON() []byte {
	b, err := json.Marshal(alertSummarySchema)
	if err != nil {
		panic(fmt.Sprintf("marshal alert summary schema: %v", err))
	}

	return b
}

func GenerateSchema[T any]() map[string]any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}

	var v T
	schema := reflector.Reflect(v)

	schemaObj, err := schemaToMap(schema)
	if err != nil {
		panic(err)
	}
	delete(schemaObj, "$schema")
	delete(schemaObj, "$id")

	ensureStrictCompliance(schemaObj)

	return schemaObj
}

func schemaToMap(schema *jsonschema.Schema) (map[string]any, error) {
	b, err := schema.MarshalJSON()
	if err != nil {
		return nil, err
	}

	var m map[string]any
	if err = json.Unmarshal(b, &m); err != nil {
		return nil, err
	}

	return m, nil
}

// ensureStrictCompliance makes every object closed with all properties
// required, and rewrites oneOf (emitted for nullable fields) as anyOf.
func ensureStrictCompliance(schema map[string]any) {
	if oneOf, ok := schema[oneOfKey]; ok {
		schema[anyOfKey] = oneOf
		delete(schema, oneOfKey)
	}

	if schemaType, ok := schema[typeKey].(string); ok && schemaType == "object" {
		schema[additionalPropertiesKey] = false

		if properties, ok := schema[propertiesKey].(map[string]any); ok {
			requiredFields := make([]string, 0, len(properties))
			for propName := range properties {
				requiredFields = append(requiredFields, propName)
			}
			slices.Sort(requiredFields)

			if len(requiredFields) > 0 {
				schema[requiredKey] = requiredFields
			}
		}
	}

	if properties, ok := schema[propertiesKey].(map[string]any); ok {
		for _, prop := range properties {
			if propMap, ok := prop.(map[string]any); ok {
				ensureStrictCompliance(propMap)
			}
		}
	}

	if items, ok := schema[itemsKey].(map[string]any); ok {
		ensureStrictCompliance(items)
	}

	if variants, ok := schema[anyOfKey].([]any); ok {
		for _, variant := range variants {
			if variantMap, ok := variant.(map[string]any); ok {
				ensureStrictCompliance(variantMap)
			}
		}
	}
}
