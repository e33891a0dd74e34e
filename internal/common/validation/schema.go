// internal/common/validation/schema.go
package validation

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	apperrors "job-recommender/internal/common/errors"
	"job-recommender/pkg/registry"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every schema violation of one document.
type ValidationError struct {
	TaskType string
	Errors   []FieldError
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.TaskType, e.Details())
}

// Details joins the violations as "field: message" pairs.
func (e *ValidationError) Details() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return strings.Join(parts, "; ")
}

// Fields returns the distinct offending field names in order.
func (e *ValidationError) Fields() []string {
	seen := make(map[string]bool)
	var out []string
	for _, fe := range e.Errors {
		if !seen[fe.Field] {
			seen[fe.Field] = true
			out = append(out, fe.Field)
		}
	}
	return out
}

// Validator holds the compiled input schemas of the registry, by task type.
type Validator struct {
	schemas map[string]*gojsonschema.Schema
}

func NewValidator(reg *registry.ActivityRegistry) (*Validator, error) {
	v := &Validator{schemas: make(map[string]*gojsonschema.Schema)}
	for _, a := range reg.Activities {
		if len(a.InputSchema) == 0 {
			continue
		}
		schema, err := Compile(a.InputSchema)
		if err != nil {
			return nil, fmt.Errorf("activity %s: input schema: %w", a.ID, err)
		}
		v.schemas[a.TaskType] = schema
	}
	return v, nil
}

// Compile parses a schema held as decoded JSON.
func Compile(schema map[string]interface{}) (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema))
}

func (v *Validator) TaskTypes() []string {
	out := make([]string, 0, len(v.schemas))
	for tt := range v.schemas {
		out = append(out, tt)
	}
	sort.Strings(out)
	return out
}

// Validate checks doc, a Go value or raw JSON bytes, against the input schema of
// taskType. Task types without a schema accept everything.
func (v *Validator) Validate(taskType string, doc interface{}) error {
	schema, ok := v.schemas[taskType]
	if !ok {
		return nil
	}

	var loader gojsonschema.JSONLoader
	switch d := doc.(type) {
	case []byte:
		loader = gojsonschema.NewBytesLoader(d)
	case string:
		loader = gojsonschema.NewStringLoader(d)
	default:
		loader = gojsonschema.NewGoLoader(d)
	}

	result, err := schema.Validate(loader)
	if err != nil {
		return &ValidationError{
			TaskType: taskType,
			Errors:   []FieldError{{Field: "(root)", Message: err.Error()}},
		}
	}
	if result.Valid() {
		return nil
	}

	verr := &ValidationError{
		TaskType: taskType,
		Errors:   make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if desc.Type() == "required" {
			if prop, ok := desc.Details()["property"].(string); ok {
				field = prop
			}
		}
		if field == "" {
			field = "(root)"
		}
		verr.Errors = append(verr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}
	return verr
}

// Decode validates raw job variables for taskType and unmarshals them into
// out. Failures carry the INVALID_REQUEST code. A nil Validator only decodes.
func (v *Validator) Decode(taskType, raw string, out interface{}) error {
	if raw == "" {
		raw = "{}"
	}
	if v != nil {
		if err := v.Validate(taskType, []byte(raw)); err != nil {
			var details string
			if verr, ok := err.(*ValidationError); ok {
				details = verr.Details()
			} else {
				details = err.Error()
			}
			return apperrors.NewInvalidRequestError(details)
		}
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return apperrors.NewInvalidRequestError(fmt.Sprintf("parse variables: %v", err))
	}
	return nil
}
