package documents

import (
	"sort"

	"github.com/goliatone/go-cms-collections/internal/collections"
	"github.com/goliatone/go-cms-collections/internal/plugins"
	"github.com/goliatone/go-cms-collections/internal/richtext"
)

// EditorHint tells the presentation layer which editor to offer for a field.
// It never changes the stored field type.
type EditorHint struct {
	Requested string
	Editor    string
	Plugin    string
	Outcome   plugins.Outcome
}

// MapResult is the merged data map of a document edit plus the per-field issues
// found while building it.
type MapResult struct {
	Data   map[string]any
	Issues Issues
	Hints  map[string]EditorHint
}

// FieldValue is one current-schema field of a document view.
type FieldValue struct {
	Field   *collections.Field
	Value   any
	Present bool
	Hint    EditorHint
	// Preview holds rendered HTML for rich-text values.
	Preview string
}

// View is a document read back through the current schema.
type View struct {
	Document *Document
	Fields   []FieldValue
	// Orphans holds data keys with no field in the current schema.
	Orphans map[string]any
}

// Mapper translates between submitted payloads and stored document data using
// the current schema as the authoritative shape.
type Mapper struct {
	validator *Validator
	resolver  *plugins.Resolver
	renderer  *richtext.Renderer
}

// NewMapper builds a mapper. A nil renderer disables previews.
func NewMapper(validator *Validator, renderer *richtext.Renderer) *Mapper {
	if validator == nil {
		validator = NewValidator(nil)
	}
	return &Mapper{
		validator: validator,
		resolver:  plugins.NewResolver(validator.types),
		renderer:  renderer,
	}
}

// Map validates the dynamic fields of a payload against schema and merges the
// accepted values into a copy of existing. Only current-schema keys whose new
// value validated without a blocking issue are overwritten; every other key of
// existing is carried forward unchanged.
//
// A field missing from fields is validated with its existing value and left as
// stored. It still blocks the save when it is required and empty, but a stored
// value that no longer fits the field (after a retype or an options change) is
// reported as a warning so edits to other fields go through. An empty optional
// submission stores the shape's blank value, and no key at all for shapes
// without one unless a previous value has to be cleared.
func (m *Mapper) Map(schema *collections.Schema, existing map[string]any, fields map[string]any, enabled plugins.Set) MapResult {
	result := MapResult{
		Data:   cloneMap(existing),
		Issues: Issues{},
		Hints:  map[string]EditorHint{},
	}
	if result.Data == nil {
		result.Data = map[string]any{}
	}
	if schema == nil {
		return result
	}

	for _, field := range schema.Fields {
		if field == nil {
			continue
		}
		result.Hints[field.Name] = m.hint(field, enabled)

		value, submitted := fields[field.Name]
		present := submitted
		if !submitted {
			value, present = existing[field.Name]
		}

		coerced, issues := m.validator.ValidateField(field, value, present, enabled)
		if !submitted && present {
			issues = staleIssues(issues)
		}
		result.Issues = append(result.Issues, issues...)
		if !submitted || issues.Blocking() {
			continue
		}
		if _, stored := result.Data[field.Name]; coerced == nil && !stored {
			continue
		}
		result.Data[field.Name] = coerced
	}

	unknown := make([]string, 0)
	for key := range fields {
		if !schema.Has(key) && key != FieldTitle && key != FieldSlug {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	for _, key := range unknown {
		result.Issues = append(result.Issues, warningIssue(key, CodeUnknownField, "%q is not part of the current schema and was ignored", key))
	}
	return result
}

// Read exposes a stored document through schema: current fields in schema
// order with editor hints and previews, plus orphaned keys kept separately.
func (m *Mapper) Read(schema *collections.Schema, doc *Document, enabled plugins.Set) View {
	view := View{Document: doc, Orphans: map[string]any{}}
	if doc == nil {
		return view
	}
	data := doc.Data
	if schema != nil {
		for _, field := range schema.Fields {
			if field == nil {
				continue
			}
			value, present := data[field.Name]
			fv := FieldValue{
				Field:   field,
				Value:   cloneValue(value),
				Present: present,
				Hint:    m.hint(field, enabled),
			}
			fv.Preview = m.preview(field, fv.Hint, value)
			view.Fields = append(view.Fields, fv)
		}
	}
	for key, value := range data {
		if schema == nil || !schema.Has(key) {
			view.Orphans[key] = cloneValue(value)
		}
	}
	return view
}

func (m *Mapper) hint(field *collections.Field, enabled plugins.Set) EditorHint {
	res := m.resolver.Resolve(field.Type, enabled)
	return EditorHint{
		Requested: res.Requested,
		Editor:    res.Type,
		Plugin:    res.Plugin,
		Outcome:   res.Outcome,
	}
}

func (m *Mapper) preview(field *collections.Field, hint EditorHint, value any) string {
	if m.renderer == nil {
		return ""
	}
	text, ok := value.(string)
	if !ok || text == "" {
		return ""
	}
	desc, err := m.validator.types.Describe(field.Type)
	if err != nil || !desc.IsRichText() {
		return ""
	}
	out, err := m.renderer.Preview(desc.RichText.Format, text, hint.Outcome == plugins.OutcomeUsable)
	if err != nil {
		return ""
	}
	return out
}

// staleIssues downgrades the input errors raised by a stored value the caller
// did not resubmit. Required and integrity issues keep their severity.
func staleIssues(issues Issues) Issues {
	out := make(Issues, len(issues))
	for i, issue := range issues {
		if issue.Severity == SeverityError && issue.Code != CodeRequiredFieldMissing {
			issue.Severity = SeverityWarning
			issue.Message = "stored value left unchanged: " + issue.Message
		}
		out[i] = issue
	}
	return out
}
