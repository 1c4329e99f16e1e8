package richtext

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/goliatone/go-cms-collections/internal/fieldtypes"
)

// Options tunes the markdown engine used for previews.
type Options struct {
	Extensions []string
	HardWraps  bool
	// SafeMode drops raw HTML embedded in markdown.
	SafeMode bool
}

// Renderer produces HTML previews of rich-text field values. It is safe for
// concurrent use.
type Renderer struct {
	engine goldmark.Markdown
}

// NewRenderer builds a renderer; the zero Options enable GFM, linkify and task lists.
func NewRenderer(opts Options) *Renderer {
	return &Renderer{engine: newEngine(opts)}
}

// Preview renders value according to the content format of a rich-text type.
// When the backing editor is unavailable the value is escaped and shown as
// literal text, matching the plain-text fallback editor.
func (r *Renderer) Preview(format string, value string, editorAvailable bool) (string, error) {
	if !editorAvailable {
		return html.EscapeString(value), nil
	}
	switch strings.ToLower(strings.TrimSpace(format)) {
	case fieldtypes.FormatMarkdown:
		var buf bytes.Buffer
		if err := r.engine.Convert([]byte(value), &buf); err != nil {
			return "", fmt.Errorf("richtext markdown: %w", err)
		}
		return buf.String(), nil
	case fieldtypes.FormatHTML:
		return value, nil
	default:
		return html.EscapeString(value), nil
	}
}

func newEngine(opts Options) goldmark.Markdown {
	rendererOptions := []renderer.Option{}
	if opts.HardWraps {
		rendererOptions = append(rendererOptions, gmhtml.WithHardWraps())
	}
	if !opts.SafeMode {
		rendererOptions = append(rendererOptions, gmhtml.WithUnsafe())
	}

	engineOptions := []goldmark.Option{
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	}
	if len(rendererOptions) > 0 {
		engineOptions = append(engineOptions, goldmark.WithRendererOptions(rendererOptions...))
	}
	if exts := collectExtensions(opts.Extensions); len(exts) > 0 {
		engineOptions = append(engineOptions, goldmark.WithExtensions(exts...))
	}
	return goldmark.New(engineOptions...)
}

var extensionRegistry = map[string]goldmark.Extender{
	"gfm":           extension.GFM,
	"table":         extension.Table,
	"strikethrough": extension.Strikethrough,
	"linkify":       extension.Linkify,
	"tasklist":      extension.TaskList,
	"footnote":      extension.Footnote,
}

func collectExtensions(names []string) []goldmark.Extender {
	if len(names) == 0 {
		return []goldmark.Extender{extension.GFM, extension.Linkify, extension.TaskList}
	}
	out := []goldmark.Extender{}
	seen := map[string]struct{}{}
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		ext, ok := extensionRegistry[key]
		if !ok {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, ext)
	}
	return out
}
