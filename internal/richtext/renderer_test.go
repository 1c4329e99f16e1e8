package richtext_test

import (
	"strings"
	"testing"

	"github.com/goliatone/go-cms-collections/internal/fieldtypes"
	"github.com/goliatone/go-cms-collections/internal/richtext"
)

func TestPreviewMarkdown(t *testing.T) {
	r := richtext.NewRenderer(richtext.Options{})

	out, err := r.Preview(fieldtypes.FormatMarkdown, "# Hello\n\n**bold**", true)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if !strings.Contains(out, "<h1") || !strings.Contains(out, "<strong>bold</strong>") {
		t.Fatalf("unexpected markdown html %q", out)
	}
}

func TestPreviewHTMLPassesThrough(t *testing.T) {
	r := richtext.NewRenderer(richtext.Options{})

	out, err := r.Preview(fieldtypes.FormatHTML, "<p>Hi</p>", true)
	if err != nil || out != "<p>Hi</p>" {
		t.Fatalf("expected passthrough, got %q %v", out, err)
	}
}

func TestPreviewDegradedEscapes(t *testing.T) {
	r := richtext.NewRenderer(richtext.Options{})

	out, err := r.Preview(fieldtypes.FormatHTML, "<p>Hi</p>", false)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if out != "&lt;p&gt;Hi&lt;/p&gt;" {
		t.Fatalf("expected escaped markup, got %q", out)
	}
}

func TestPreviewSafeModeDropsRawHTML(t *testing.T) {
	r := richtext.NewRenderer(richtext.Options{SafeMode: true, Extensions: []string{"gfm"}})

	out, err := r.Preview(fieldtypes.FormatMarkdown, "<script>x</script>\n\ntext", true)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if strings.Contains(out, "<script>") {
		t.Fatalf("raw html must be omitted in safe mode, got %q", out)
	}
}
