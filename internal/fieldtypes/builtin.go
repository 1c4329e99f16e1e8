package fieldtypes

// Built-in type keys.
const (
	TypeText             = "text"
	TypeTextarea         = "textarea"
	TypeSlug             = "slug"
	TypeNumber           = "number"
	TypeBoolean          = "boolean"
	TypeDate             = "date"
	TypeSelect           = "select"
	TypeMultiSelect      = "multiselect"
	TypeMedia            = "media"
	TypeRichTextQuill    = "richtext-quill"
	TypeRichTextTinyMCE  = "richtext-tinymce"
	TypeRichTextMarkdown = "richtext-markdown"
)

// Editor plugins backing the rich-text family.
const (
	PluginQuill    = "quill"
	PluginTinyMCE  = "tinymce"
	PluginMarkdown = "markdown"
)

// Rich-text content formats.
const (
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
)

var choicesSchema = map[string]any{
	"type":     "object",
	"required": []any{"choices"},
	"properties": map[string]any{
		"choices": map[string]any{
			"type":     "array",
			"minItems": 1,
			"items": map[string]any{
				"anyOf": []any{
					map[string]any{"type": "string", "minLength": 1},
					map[string]any{"type": "number"},
					map[string]any{
						"type":     "object",
						"required": []any{"value"},
						"properties": map[string]any{
							"value": map[string]any{"type": []any{"string", "number"}},
							"label": map[string]any{"type": "string"},
						},
					},
				},
			},
		},
	},
}

var textOptionsSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"placeholder": map[string]any{"type": "string"},
	},
}

var numberOptionsSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"integer": map[string]any{"type": "boolean"},
	},
}

var dateOptionsSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"include_time": map[string]any{"type": "boolean"},
	},
}

var mediaOptionsSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"accept":   map[string]any{"type": "string"},
		"multiple": map[string]any{"type": "boolean"},
	},
}

var richTextOptionsSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"toolbar": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
	},
}

// Builtin returns the stock descriptors shipped with the engine.
func Builtin() []Descriptor {
	return []Descriptor{
		{Key: TypeText, Label: "Text", Storage: StorageString, Options: OptionsOptional, OptionsSchema: textOptionsSchema},
		{Key: TypeTextarea, Label: "Text area", Storage: StorageString, Options: OptionsOptional, OptionsSchema: textOptionsSchema},
		{Key: TypeSlug, Label: "Slug", Storage: StorageString, Options: OptionsNone},
		{Key: TypeNumber, Label: "Number", Storage: StorageNumber, Options: OptionsOptional, OptionsSchema: numberOptionsSchema},
		{Key: TypeBoolean, Label: "Boolean", Storage: StorageBoolean, Options: OptionsNone},
		{Key: TypeDate, Label: "Date", Storage: StorageDate, Options: OptionsOptional, OptionsSchema: dateOptionsSchema},
		{Key: TypeSelect, Label: "Select", Storage: StorageString, Options: OptionsRequired, OptionsSchema: choicesSchema, SelectFamily: true},
		{Key: TypeMultiSelect, Label: "Multi select", Storage: StorageStringList, Options: OptionsRequired, OptionsSchema: choicesSchema, SelectFamily: true},
		{Key: TypeMedia, Label: "Media", Storage: StorageObject, Options: OptionsOptional, OptionsSchema: mediaOptionsSchema},
		{
			Key: TypeRichTextQuill, Label: "Rich text (Quill)", Storage: StorageString,
			Options: OptionsOptional, OptionsSchema: richTextOptionsSchema,
			RichText: &RichText{Plugin: PluginQuill, Format: FormatHTML}, Fallback: TypeTextarea,
		},
		{
			Key: TypeRichTextTinyMCE, Label: "Rich text (TinyMCE)", Storage: StorageString,
			Options: OptionsOptional, OptionsSchema: richTextOptionsSchema,
			RichText: &RichText{Plugin: PluginTinyMCE, Format: FormatHTML}, Fallback: TypeTextarea,
		},
		{
			Key: TypeRichTextMarkdown, Label: "Rich text (Markdown)", Storage: StorageString,
			Options: OptionsOptional, OptionsSchema: richTextOptionsSchema,
			RichText: &RichText{Plugin: PluginMarkdown, Format: FormatMarkdown}, Fallback: TypeTextarea,
		},
	}
}
