package documents_test

import (
	"reflect"
	"strings"
	"testing"

	"github.com/goliatone/go-cms-collections/internal/collections"
	"github.com/goliatone/go-cms-collections/internal/documents"
	"github.com/goliatone/go-cms-collections/internal/fieldtypes"
	"github.com/goliatone/go-cms-collections/internal/plugins"
	"github.com/goliatone/go-cms-collections/internal/richtext"
)

func articleSchema() *collections.Schema {
	return &collections.Schema{
		Version: 3,
		Fields: []*collections.Field{
			{Name: "headline", Type: "text", IsRequired: true, Order: 1},
			{Name: "views", Type: "number", Order: 2},
			{Name: "summary", Type: "select", Options: map[string]any{"choices": []any{"short", "long"}}, Order: 3},
			{Name: "body", Type: fieldtypes.TypeRichTextMarkdown, Order: 4},
		},
	}
}

func TestMapRoundTrip(t *testing.T) {
	mapper := documents.NewMapper(nil, nil)
	schema := articleSchema()
	payload := map[string]any{
		"headline": "Hello",
		"views":    12,
		"summary":  "short",
		"body":     "# Title",
	}

	result := mapper.Map(schema, nil, payload, plugins.NewSet(fieldtypes.PluginMarkdown))
	if result.Issues.Blocking() {
		t.Fatalf("unexpected issues %+v", result.Issues)
	}

	view := mapper.Read(schema, &documents.Document{Data: result.Data}, plugins.NewSet(fieldtypes.PluginMarkdown))
	for _, fv := range view.Fields {
		if !reflect.DeepEqual(fv.Value, payload[fv.Field.Name]) {
			t.Fatalf("%s: expected %#v, got %#v", fv.Field.Name, payload[fv.Field.Name], fv.Value)
		}
	}
	if len(view.Orphans) != 0 {
		t.Fatalf("expected no orphans, got %v", view.Orphans)
	}
}

func TestMapPreservesOrphans(t *testing.T) {
	mapper := documents.NewMapper(nil, nil)
	existing := map[string]any{
		"headline":     "Old",
		"legacy_field": map[string]any{"kept": true},
	}

	result := mapper.Map(articleSchema(), existing, map[string]any{"headline": "New"}, plugins.NewSet())
	if result.Issues.Blocking() {
		t.Fatalf("unexpected issues %+v", result.Issues)
	}
	if result.Data["headline"] != "New" {
		t.Fatalf("expected headline overwritten, got %#v", result.Data["headline"])
	}
	if !reflect.DeepEqual(result.Data["legacy_field"], existing["legacy_field"]) {
		t.Fatalf("orphaned key must be carried forward, got %#v", result.Data["legacy_field"])
	}
	if existing["headline"] != "Old" {
		t.Fatalf("existing map must not be mutated")
	}
}

func TestMapDoesNotInjectInvalidOrUnknownValues(t *testing.T) {
	mapper := documents.NewMapper(nil, nil)
	existing := map[string]any{"headline": "Kept", "views": 3}

	result := mapper.Map(articleSchema(), existing, map[string]any{
		"views":   "lots",
		"summary": "medium",
		"extra":   "ignored",
		"title":   "core slot",
	}, plugins.NewSet())

	if !result.Issues.Has("views", documents.CodeTypeMismatch) || !result.Issues.Has("summary", documents.CodeInvalidOption) {
		t.Fatalf("expected per-field issues, got %+v", result.Issues)
	}
	if result.Data["views"] != 3 {
		t.Fatalf("invalid value must not overwrite, got %#v", result.Data["views"])
	}
	if _, ok := result.Data["summary"]; ok {
		t.Fatalf("invalid value must not be injected")
	}
	if _, ok := result.Data["extra"]; ok {
		t.Fatalf("unknown key must not be injected")
	}
	if !result.Issues.Has("extra", documents.CodeUnknownField) || result.Issues.Has("title", documents.CodeUnknownField) {
		t.Fatalf("expected unknown field warning for extra only, got %+v", result.Issues)
	}
	if result.Data["headline"] != "Kept" {
		t.Fatalf("untouched field must keep its value")
	}
}

func TestMapHintsFollowResolver(t *testing.T) {
	mapper := documents.NewMapper(nil, nil)

	result := mapper.Map(articleSchema(), nil, map[string]any{"headline": "x"}, plugins.NewSet())
	hint := result.Hints["body"]
	if hint.Outcome != plugins.OutcomeDegraded || hint.Editor != fieldtypes.TypeTextarea {
		t.Fatalf("expected textarea fallback hint, got %+v", hint)
	}
	if hint.Requested != fieldtypes.TypeRichTextMarkdown {
		t.Fatalf("hint must keep the stored type, got %+v", hint)
	}
}

func TestReadRendersPreviews(t *testing.T) {
	mapper := documents.NewMapper(nil, richtext.NewRenderer(richtext.Options{}))
	doc := &documents.Document{Data: map[string]any{"body": "**bold**", "gone": 1}}

	view := mapper.Read(articleSchema(), doc, plugins.NewSet(fieldtypes.PluginMarkdown))
	var body documents.FieldValue
	for _, fv := range view.Fields {
		if fv.Field.Name == "body" {
			body = fv
		}
	}
	if !strings.Contains(body.Preview, "<strong>bold</strong>") {
		t.Fatalf("expected rendered markdown preview, got %q", body.Preview)
	}
	if view.Orphans["gone"] != 1 {
		t.Fatalf("expected orphan exposed, got %v", view.Orphans)
	}

	degraded := mapper.Read(articleSchema(), doc, plugins.NewSet())
	for _, fv := range degraded.Fields {
		if fv.Field.Name == "body" && fv.Preview != "**bold**" {
			t.Fatalf("degraded preview must be literal text, got %q", fv.Preview)
		}
	}
}

func reviewSchema() *collections.Schema {
	return &collections.Schema{
		Version: 1,
		Fields: []*collections.Field{
			{Name: "rating", Type: fieldtypes.TypeNumber, Order: 1},
			{Name: "hero", Type: fieldtypes.TypeMedia, Order: 2},
			{Name: "subtitle", Type: fieldtypes.TypeText, Order: 3},
			{Name: "tags", Type: fieldtypes.TypeMultiSelect, Options: map[string]any{"choices": []any{"go", "cms"}}, Order: 4},
		},
	}
}

func TestMapEmptyOptionalValuesKeepStorageShape(t *testing.T) {
	mapper := documents.NewMapper(nil, nil)

	result := mapper.Map(reviewSchema(), nil, map[string]any{
		"rating":   "",
		"hero":     "",
		"subtitle": "  ",
		"tags":     []any{},
	}, plugins.NewSet())
	if result.Issues.Blocking() {
		t.Fatalf("unexpected issues %+v", result.Issues)
	}
	for _, key := range []string{"rating", "hero"} {
		if value, ok := result.Data[key]; ok {
			t.Fatalf("%s: expected no key for an empty submission, got %#v", key, value)
		}
	}
	if result.Data["subtitle"] != "" {
		t.Fatalf("expected empty text, got %#v", result.Data["subtitle"])
	}
	if !reflect.DeepEqual(result.Data["tags"], []string{}) {
		t.Fatalf("expected empty list, got %#v", result.Data["tags"])
	}
}

func TestMapEmptyOptionalValueClearsStoredValue(t *testing.T) {
	mapper := documents.NewMapper(nil, nil)
	existing := map[string]any{"rating": 4, "hero": map[string]any{"url": "/a.png"}}

	result := mapper.Map(reviewSchema(), existing, map[string]any{"rating": "", "hero": nil}, plugins.NewSet())
	if result.Issues.Blocking() {
		t.Fatalf("unexpected issues %+v", result.Issues)
	}
	for _, key := range []string{"rating", "hero"} {
		value, ok := result.Data[key]
		if !ok || value != nil {
			t.Fatalf("%s: expected cleared value, got %#v (present %v)", key, value, ok)
		}
	}
}

func TestMapReportsStaleStoredValueAsWarning(t *testing.T) {
	mapper := documents.NewMapper(nil, nil)
	existing := map[string]any{"rating": "many", "tags": []any{"go", "removed"}}

	result := mapper.Map(reviewSchema(), existing, map[string]any{"subtitle": "Edited"}, plugins.NewSet())
	if result.Issues.Blocking() {
		t.Fatalf("stale stored values must not block, got %+v", result.Issues)
	}
	if !result.Issues.Warnings().Has("rating", documents.CodeTypeMismatch) {
		t.Fatalf("expected type mismatch warning, got %+v", result.Issues)
	}
	if !result.Issues.Warnings().Has("tags", documents.CodeInvalidOption) {
		t.Fatalf("expected invalid option warning, got %+v", result.Issues)
	}
	if result.Data["rating"] != "many" || result.Data["subtitle"] != "Edited" {
		t.Fatalf("unexpected data %#v", result.Data)
	}

	resubmitted := mapper.Map(reviewSchema(), existing, map[string]any{"rating": "many"}, plugins.NewSet())
	if !resubmitted.Issues.Errors().Has("rating", documents.CodeTypeMismatch) {
		t.Fatalf("a resubmitted mismatch must still block, got %+v", resubmitted.Issues)
	}
}
