package api

import (
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"hotel-capacity/internal/errors"
)

// Request bodies are checked for shape here. Ranges are left to the forms so
// that range errors name the same fields on every surface.
const calculateSchema = `{
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "land_area_sqm":      {"type": "number"},
    "plot_ratio":         {"type": "number"},
    "efficiency_percent": {"type": "number"},
    "avg_room_size_sqm":  {"type": "number"},
    "height_limit_m":     {"type": ["number", "null"]}
  }
}`

const siteEstimateSchema = `{
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "land_area_override_sqm": {"type": ["number", "null"]},
    "efficiency_factor":      {"type": "number"},
    "avg_room_size_sqm":      {"type": "number"}
  }
}`

var (
	calculateSchemaLoader    = gojsonschema.NewStringLoader(calculateSchema)
	siteEstimateSchemaLoader = gojsonschema.NewStringLoader(siteEstimateSchema)
)

// validateBody checks body against schema. The first violation becomes a
// validation error naming the offending property.
func validateBody(schema gojsonschema.JSONLoader, body []byte) error {
	result, err := gojsonschema.Validate(schema, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return errors.Wrap(errors.TypeValidation, "request body is not valid JSON", err)
	}
	if result.Valid() {
		return nil
	}

	desc := result.Errors()[0]
	field := desc.Field()
	if desc.Type() == "additional_property_not_allowed" {
		if p, ok := desc.Details()["property"].(string); ok {
			field = p
		}
	}
	if field == "(root)" {
		field = ""
	}

	msgs := make([]string, len(result.Errors()))
	for i, d := range result.Errors() {
		msgs[i] = d.String()
	}
	return errors.Validation(field, strings.Join(msgs, "; "))
}
