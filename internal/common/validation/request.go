package validation

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// chatRequestSchema validates inbound chat payloads before they reach the
// router. Concept membership is checked separately so the error carries the
// UNKNOWN_CONCEPT code instead of a generic schema message.
const chatRequestSchema = `{
  "type": "object",
  "properties": {
    "message":          {"type": "string", "minLength": 1, "maxLength": 4000},
    "previousResponse": {"type": "string"},
    "userId":           {"type": "string"},
    "question":         {"type": "string"},
    "concept":          {"type": "string", "minLength": 1},
    "env":              {"type": "string"},
    "latitude":         {"type": "number", "minimum": -90, "maximum": 90},
    "longitude":        {"type": "number", "minimum": -180, "maximum": 180},
    "appid":            {"type": "string"},
    "cardNumber":       {"type": "string"},
    "pin":              {"type": "string"}
  },
  "required": ["message", "concept"],
  "additionalProperties": true
}`

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// GetErrorMessages returns a simple list of error messages
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

// ValidateChatRequest validates a raw JSON chat payload against the request schema.
func ValidateChatRequest(raw []byte) (*ValidationResult, error) {
	schemaLoader := gojsonschema.NewStringLoader(chatRequestSchema)
	documentLoader := gojsonschema.NewBytesLoader(raw)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("schema validation error: %w", err)
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
		})
	}
	return out, nil
}
