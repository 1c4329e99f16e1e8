package plugins_test

import (
	"context"
	"reflect"
	"testing"

	"github.com/goliatone/go-cms-collections/internal/fieldtypes"
	"github.com/goliatone/go-cms-collections/internal/plugins"
)

func TestResolveNonRichTextIsUsable(t *testing.T) {
	resolver := plugins.NewResolver(fieldtypes.DefaultRegistry())

	res := resolver.Resolve("text", plugins.NewSet())
	if !res.Usable() || res.Type != fieldtypes.TypeText {
		t.Fatalf("expected usable text, got %+v", res)
	}
}

func TestResolveRichTextWithPluginEnabled(t *testing.T) {
	resolver := plugins.NewResolver(fieldtypes.DefaultRegistry())

	res := resolver.Resolve(fieldtypes.TypeRichTextQuill, plugins.NewSet("Quill"))
	if !res.Usable() {
		t.Fatalf("expected usable, got %s", res.Outcome)
	}
	if res.Plugin != fieldtypes.PluginQuill || res.Type != fieldtypes.TypeRichTextQuill {
		t.Fatalf("unexpected resolution %+v", res)
	}
}

func TestResolveRichTextWithPluginDisabledDegrades(t *testing.T) {
	resolver := plugins.NewResolver(fieldtypes.DefaultRegistry())

	res := resolver.Resolve(fieldtypes.TypeRichTextTinyMCE, plugins.NewSet(fieldtypes.PluginQuill))
	if !res.Degraded() {
		t.Fatalf("expected degraded, got %s", res.Outcome)
	}
	if res.Fallback != fieldtypes.TypeTextarea || res.Type != fieldtypes.TypeTextarea {
		t.Fatalf("expected textarea fallback, got %+v", res)
	}
	if res.Requested != fieldtypes.TypeRichTextTinyMCE {
		t.Fatalf("requested type must be preserved, got %s", res.Requested)
	}
}

func TestResolveUnknownTypeUnsupported(t *testing.T) {
	resolver := plugins.NewResolver(fieldtypes.DefaultRegistry())

	res := resolver.Resolve("richtext-legacy", plugins.NewSet(fieldtypes.PluginQuill))
	if res.Outcome != plugins.OutcomeUnsupported || res.Type != "" {
		t.Fatalf("expected unsupported, got %+v", res)
	}
}

func TestOfferableExcludesDisabledRichText(t *testing.T) {
	resolver := plugins.NewResolver(fieldtypes.DefaultRegistry())

	offered := resolver.Offerable(plugins.NewSet(fieldtypes.PluginMarkdown))
	seen := map[string]bool{}
	for _, key := range offered {
		seen[key] = true
	}
	if !seen[fieldtypes.TypeRichTextMarkdown] || !seen[fieldtypes.TypeText] {
		t.Fatalf("expected markdown and text to be offerable, got %v", offered)
	}
	if seen[fieldtypes.TypeRichTextQuill] || seen[fieldtypes.TypeRichTextTinyMCE] {
		t.Fatalf("disabled plugins must not be offerable, got %v", offered)
	}
}

func TestStaticStateToggles(t *testing.T) {
	state := plugins.NewStaticState("quill")
	state.Enable("Markdown")
	state.Disable("quill")

	set, err := plugins.Enabled(context.Background(), state)
	if err != nil {
		t.Fatalf("enabled: %v", err)
	}
	if got := set.Names(); !reflect.DeepEqual(got, []string{"markdown"}) {
		t.Fatalf("expected [markdown], got %v", got)
	}

	empty, err := plugins.Enabled(context.Background(), nil)
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected empty set for nil state, got %v %v", empty, err)
	}
}
