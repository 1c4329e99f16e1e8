package fieldtypes

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

var (
	ErrInvalidOptions     = errors.New("fieldtypes: field options invalid")
	ErrOptionsRequired    = errors.New("fieldtypes: field options required")
	ErrOptionsUnsupported = errors.New("fieldtypes: field type does not accept options")
)

// OptionsIssue is a single schema violation inside field_options.
type OptionsIssue struct {
	Location string
	Message  string
}

// OptionsError reports every problem found in a field_options payload.
type OptionsError struct {
	Type   string
	Issues []OptionsIssue
	Cause  error
}

func (e *OptionsError) Error() string {
	if e == nil {
		return ErrInvalidOptions.Error()
	}
	if len(e.Issues) == 0 {
		if e.Cause != nil {
			return fmt.Sprintf("%s: %s: %v", ErrInvalidOptions.Error(), e.Type, e.Cause)
		}
		return fmt.Sprintf("%s: %s", ErrInvalidOptions.Error(), e.Type)
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		location := strings.TrimSpace(issue.Location)
		if location == "" {
			location = "#"
		} else if !strings.HasPrefix(location, "#") {
			location = "#" + location
		}
		parts = append(parts, fmt.Sprintf("%s: %s", location, issue.Message))
	}
	return fmt.Sprintf("%s: %s: %s", ErrInvalidOptions.Error(), e.Type, strings.Join(parts, "; "))
}

func (e *OptionsError) Unwrap() []error {
	errs := []error{ErrInvalidOptions}
	if e != nil && e.Cause != nil && !isSchemaValidation(e.Cause) {
		errs = append(errs, e.Cause)
	}
	return errs
}

// ValidateOptions checks options against the options policy and JSON schema of
// the given type.
func (r *Registry) ValidateOptions(key string, options map[string]any) error {
	desc, err := r.Describe(key)
	if err != nil {
		return err
	}

	switch desc.Options {
	case OptionsNone:
		if len(options) > 0 {
			return &OptionsError{Type: desc.Key, Cause: ErrOptionsUnsupported}
		}
		return nil
	case OptionsRequired:
		if len(options) == 0 {
			return &OptionsError{Type: desc.Key, Cause: ErrOptionsRequired}
		}
	}

	if len(desc.OptionsSchema) == 0 || len(options) == 0 {
		return nil
	}

	compiled, err := r.compiledSchema(desc)
	if err != nil {
		return fmt.Errorf("fieldtypes: compile options schema for %s: %w", desc.Key, err)
	}

	instance, err := toJSONValue(options)
	if err != nil {
		return &OptionsError{Type: desc.Key, Cause: err}
	}
	if err := compiled.Validate(instance); err != nil {
		return &OptionsError{Type: desc.Key, Issues: collectIssues(err), Cause: err}
	}
	return nil
}

// ChoiceValues extracts the allowed values from select-family options. Object
// choices contribute their "value" entry.
func ChoiceValues(options map[string]any) []string {
	if options == nil {
		return nil
	}
	var raw []any
	switch typed := options["choices"].(type) {
	case []any:
		raw = typed
	case []string:
		raw = make([]any, len(typed))
		for i, v := range typed {
			raw[i] = v
		}
	case []map[string]any:
		raw = make([]any, len(typed))
		for i, v := range typed {
			raw[i] = v
		}
	default:
		return nil
	}

	out := make([]string, 0, len(raw))
	for _, entry := range raw {
		switch typed := entry.(type) {
		case map[string]any:
			if value, ok := typed["value"]; ok && value != nil {
				out = append(out, fmt.Sprint(value))
			}
		case nil:
		default:
			out = append(out, fmt.Sprint(typed))
		}
	}
	return out
}

func compileSchema(key string, schema map[string]any) (*jsonschema.Schema, error) {
	encoded, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}
	resource := "fieldtypes/" + key + ".json"
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(resource, bytes.NewReader(encoded)); err != nil {
		return nil, err
	}
	return compiler.Compile(resource)
}

// toJSONValue round-trips through encoding/json so typed Go slices and maps
// become the generic shapes the validator expects.
func toJSONValue(value any) (any, error) {
	encoded, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(encoded, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func isSchemaValidation(err error) bool {
	var validationErr *jsonschema.ValidationError
	return errors.As(err, &validationErr)
}

func collectIssues(err error) []OptionsIssue {
	var validationErr *jsonschema.ValidationError
	if !errors.As(err, &validationErr) || validationErr == nil {
		return []OptionsIssue{{Message: err.Error()}}
	}
	issues := []OptionsIssue{}
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if node == nil {
			return
		}
		if len(node.Causes) == 0 {
			issues = append(issues, OptionsIssue{
				Location: strings.TrimSpace(node.InstanceLocation),
				Message:  strings.TrimSpace(node.Message),
			})
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(validationErr)
	return issues
}
