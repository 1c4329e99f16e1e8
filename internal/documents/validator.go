package documents

import (
	"encoding/json"
	"fmt"
	"math"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-slug"

	"github.com/goliatone/go-cms-collections/internal/collections"
	"github.com/goliatone/go-cms-collections/internal/fieldtypes"
	"github.com/goliatone/go-cms-collections/internal/plugins"
)

const dateOnlyLayout = "2006-01-02"

// Validator applies the per-field rules implied by field_type, field_options
// and is_required. It holds no mutable state.
type Validator struct {
	types    *fieldtypes.Registry
	resolver *plugins.Resolver
}

// NewValidator builds a validator over the supplied type registry.
func NewValidator(types *fieldtypes.Registry) *Validator {
	if types == nil {
		types = fieldtypes.DefaultRegistry()
	}
	return &Validator{types: types, resolver: plugins.NewResolver(types)}
}

// ValidateField checks one value against its field definition and returns the
// coerced value. present is false when the value is absent.
func (v *Validator) ValidateField(field *collections.Field, value any, present bool, enabled plugins.Set) (any, Issues) {
	issues := Issues{}
	desc, err := v.types.Describe(field.Type)
	if err != nil {
		issues = append(issues, Issue{
			Field:    field.Name,
			Code:     CodeSchemaInconsistent,
			Severity: SeverityIntegrity,
			Message:  fmt.Sprintf("field type %q is not registered", field.Type),
		})
		return value, issues
	}

	if !present || isEmpty(value) {
		if field.IsRequired {
			issues = append(issues, inputIssue(field.Name, CodeRequiredFieldMissing, "%s is required", labelOf(field)))
		}
		return blank(desc), issues
	}

	if desc.IsRichText() {
		if res := v.resolver.Resolve(desc.Key, enabled); res.Degraded() {
			issues = append(issues, warningIssue(field.Name, CodeEditorUnavailable,
				"editor plugin %q is disabled; value kept as plain text", res.Plugin))
		}
	}

	coerced, msg := coerce(desc, field, value)
	if msg != "" {
		issues = append(issues, inputIssue(field.Name, CodeTypeMismatch, "%s", msg))
		return value, issues
	}

	if desc.SelectFamily {
		issues = append(issues, checkChoices(field, coerced)...)
	}
	if desc.Key == fieldtypes.TypeSlug {
		if s, _ := coerced.(string); !slug.IsValid(s) {
			issues = append(issues, inputIssue(field.Name, CodeSlugInvalid, "%q is not a valid slug", s))
		}
	}
	return coerced, issues
}

// ValidateCore checks the schema-independent columns of a payload.
func (v *Validator) ValidateCore(payload Payload) Issues {
	issues := Issues{}
	if strings.TrimSpace(payload.Title) == "" {
		issues = append(issues, inputIssue(FieldTitle, CodeTitleRequired, "title is required"))
	}
	switch trimmed := strings.TrimSpace(payload.Slug); {
	case trimmed == "":
		issues = append(issues, inputIssue(FieldSlug, CodeSlugInvalid, "slug is required"))
	case !slug.IsValid(trimmed):
		suggestion, err := slug.Normalize(trimmed)
		if err == nil && suggestion != "" {
			issues = append(issues, inputIssue(FieldSlug, CodeSlugInvalid, "%q is not a valid slug, try %q", trimmed, suggestion))
		} else {
			issues = append(issues, inputIssue(FieldSlug, CodeSlugInvalid, "%q is not a valid slug", trimmed))
		}
	}
	if status := strings.TrimSpace(payload.Status); status != "" {
		if _, ok := allowedStatuses[status]; !ok {
			issues = append(issues, inputIssue(FieldStatus, CodeStatusInvalid, "unknown status %q", status))
		}
	}
	return issues
}

// coerce converts value to the storage shape of the type. A non-empty message
// reports a mismatch.
func coerce(desc fieldtypes.Descriptor, field *collections.Field, value any) (any, string) {
	if desc.SelectFamily {
		value = choiceForm(value)
	}
	switch desc.Storage {
	case fieldtypes.StorageString:
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Sprintf("expected text, got %T", value)
		}
		return s, ""
	case fieldtypes.StorageNumber:
		return coerceNumber(field, value)
	case fieldtypes.StorageBoolean:
		return coerceBool(value)
	case fieldtypes.StorageDate:
		return coerceDate(value)
	case fieldtypes.StorageStringList:
		return coerceStringList(value)
	case fieldtypes.StorageObject:
		return coerceObject(desc, field, value)
	default:
		return value, ""
	}
}

func coerceNumber(field *collections.Field, value any) (any, string) {
	var number float64
	out := value
	switch typed := value.(type) {
	case int:
		number = float64(typed)
	case int32:
		number = float64(typed)
	case int64:
		number = float64(typed)
	case float32:
		number = float64(typed)
	case float64:
		number = typed
	case json.Number:
		f, err := typed.Float64()
		if err != nil {
			return nil, fmt.Sprintf("%q is not a number", typed.String())
		}
		number, out = f, f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(typed), 64)
		if err != nil {
			return nil, fmt.Sprintf("%q is not a number", typed)
		}
		number, out = f, f
	default:
		return nil, fmt.Sprintf("expected a number, got %T", value)
	}
	if math.IsNaN(number) || math.IsInf(number, 0) {
		return nil, "number must be finite"
	}
	if integer, _ := field.Options["integer"].(bool); integer && number != math.Trunc(number) {
		return nil, fmt.Sprintf("%v is not a whole number", number)
	}
	return out, ""
}

func coerceBool(value any) (any, string) {
	switch typed := value.(type) {
	case bool:
		return typed, ""
	case string:
		switch strings.ToLower(strings.TrimSpace(typed)) {
		case "true", "on", "1", "yes":
			return true, ""
		case "false", "off", "0", "no":
			return false, ""
		}
		return nil, fmt.Sprintf("%q is not a boolean", typed)
	default:
		return nil, fmt.Sprintf("expected a boolean, got %T", value)
	}
}

func coerceDate(value any) (any, string) {
	switch typed := value.(type) {
	case time.Time:
		return typed.UTC().Format(time.RFC3339), ""
	case string:
		trimmed := strings.TrimSpace(typed)
		if _, err := time.Parse(time.RFC3339, trimmed); err == nil {
			return trimmed, ""
		}
		if _, err := time.Parse(dateOnlyLayout, trimmed); err == nil {
			return trimmed, ""
		}
		return nil, fmt.Sprintf("%q is not an ISO-8601 date", typed)
	default:
		return nil, fmt.Sprintf("expected a date, got %T", value)
	}
}

func coerceStringList(value any) (any, string) {
	switch typed := value.(type) {
	case string:
		return []string{typed}, ""
	case []string:
		return append([]string(nil), typed...), ""
	case []any:
		out := make([]string, 0, len(typed))
		for _, item := range typed {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Sprintf("expected a list of text values, found %T", item)
			}
			out = append(out, s)
		}
		return out, ""
	default:
		return nil, fmt.Sprintf("expected a list, got %T", value)
	}
}

func coerceObject(desc fieldtypes.Descriptor, field *collections.Field, value any) (any, string) {
	if desc.Key != fieldtypes.TypeMedia {
		if m, ok := value.(map[string]any); ok {
			return cloneMap(m), ""
		}
		return nil, fmt.Sprintf("expected an object, got %T", value)
	}

	accept, _ := field.Options["accept"].(string)
	multiple, _ := field.Options["multiple"].(bool)
	switch typed := value.(type) {
	case map[string]any:
		if msg := checkMedia(typed, accept); msg != "" {
			return nil, msg
		}
		return cloneMap(typed), ""
	case []any:
		if !multiple {
			return nil, "field accepts a single media item"
		}
		out := make([]any, 0, len(typed))
		for _, item := range typed {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Sprintf("expected media objects, found %T", item)
			}
			if msg := checkMedia(m, accept); msg != "" {
				return nil, msg
			}
			out = append(out, cloneMap(m))
		}
		return out, ""
	default:
		return nil, fmt.Sprintf("expected a media object, got %T", value)
	}
}

func checkMedia(item map[string]any, accept string) string {
	accept = strings.TrimSpace(accept)
	if accept == "" {
		return ""
	}
	mime, _ := item["mime_type"].(string)
	if mime == "" {
		return "media item has no mime_type"
	}
	for _, pattern := range strings.Split(accept, ",") {
		if ok, _ := path.Match(strings.TrimSpace(pattern), mime); ok {
			return ""
		}
	}
	return fmt.Sprintf("media type %q does not match %q", mime, accept)
}

func checkChoices(field *collections.Field, value any) Issues {
	choices := fieldtypes.ChoiceValues(field.Options)
	allowed := make(map[string]struct{}, len(choices))
	for _, choice := range choices {
		allowed[choice] = struct{}{}
	}

	var values []string
	switch typed := value.(type) {
	case []string:
		values = typed
	default:
		values = []string{fmt.Sprint(typed)}
	}

	issues := Issues{}
	for _, candidate := range values {
		if _, ok := allowed[candidate]; !ok {
			issues = append(issues, inputIssue(field.Name, CodeInvalidOption, "%q is not one of %v", candidate, choices))
		}
	}
	return issues
}

// blank is the stored form of an empty optional value: an empty string or
// list for text and list shapes, nil for every other shape.
func blank(desc fieldtypes.Descriptor) any {
	switch desc.Storage {
	case fieldtypes.StorageString:
		return ""
	case fieldtypes.StorageStringList:
		return []string{}
	default:
		return nil
	}
}

// choiceForm renders numeric submissions the way ChoiceValues renders numeric
// choices, so a select over [1, 2, 3] accepts 2 and stores "2".
func choiceForm(value any) any {
	switch typed := value.(type) {
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = choiceForm(item)
		}
		return out
	case int, int32, int64, uint, uint32, uint64, float32, float64, json.Number:
		return fmt.Sprint(typed)
	default:
		return value
	}
}

func isEmpty(value any) bool {
	switch typed := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(typed) == ""
	case []any:
		return len(typed) == 0
	case []string:
		return len(typed) == 0
	case map[string]any:
		return len(typed) == 0
	default:
		return false
	}
}

func labelOf(field *collections.Field) string {
	if field.Label != "" {
		return field.Label
	}
	return field.Name
}
