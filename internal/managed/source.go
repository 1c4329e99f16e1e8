package managed

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/adrg/frontmatter"

	"github.com/goliatone/go-cms-collections/internal/collections"
)

// Source yields the managed collection definitions owned by configuration.
type Source interface {
	Definitions(ctx context.Context) ([]collections.ManagedDefinition, error)
}

// StaticSource serves definitions declared in code.
type StaticSource []collections.ManagedDefinition

func (s StaticSource) Definitions(context.Context) ([]collections.ManagedDefinition, error) {
	out := make([]collections.ManagedDefinition, len(s))
	copy(out, s)
	return out, nil
}

// FileSourceConfig configures where definition files are discovered.
type FileSourceConfig struct {
	// Dir is the directory inside the filesystem holding the files.
	Dir string
	// Pattern filters file names (defaults to "*.md").
	Pattern string
}

// FileSource reads one managed collection per file. The YAML frontmatter holds
// the definition and the body, when present, becomes the description.
type FileSource struct {
	fs      fs.FS
	dir     string
	pattern string
}

// NewFileSource constructs a FileSource over the provided filesystem.
func NewFileSource(filesystem fs.FS, cfg FileSourceConfig) *FileSource {
	pattern := strings.TrimSpace(cfg.Pattern)
	if pattern == "" {
		pattern = "*.md"
	}
	dir := strings.Trim(path.Clean("/"+strings.TrimSpace(cfg.Dir)), "/")
	if dir == "" {
		dir = "."
	}
	return &FileSource{fs: filesystem, dir: dir, pattern: pattern}
}

// Definitions parses every matching file, sorted by file name.
func (s *FileSource) Definitions(ctx context.Context) ([]collections.ManagedDefinition, error) {
	if s == nil || s.fs == nil {
		return nil, nil
	}
	matches, err := fs.Glob(s.fs, path.Join(s.dir, s.pattern))
	if err != nil {
		return nil, fmt.Errorf("managed source glob: %w", err)
	}
	sort.Strings(matches)

	defs := make([]collections.ManagedDefinition, 0, len(matches))
	for _, name := range matches {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		data, err := fs.ReadFile(s.fs, name)
		if err != nil {
			return nil, fmt.Errorf("managed source read %s: %w", name, err)
		}
		def, err := ParseDefinition(data)
		if err != nil {
			return nil, fmt.Errorf("managed source %s: %w", name, err)
		}
		if def.Name == "" {
			def.Name = strings.TrimSuffix(path.Base(name), path.Ext(name))
		}
		defs = append(defs, def)
	}
	return defs, nil
}

type definitionEnvelope struct {
	Name        string          `yaml:"name"`
	DisplayName string          `yaml:"display_name"`
	Description string          `yaml:"description"`
	Fields      []fieldEnvelope `yaml:"fields"`
}

type fieldEnvelope struct {
	Name       string         `yaml:"name"`
	Label      string         `yaml:"label"`
	Type       string         `yaml:"type"`
	Options    map[string]any `yaml:"options"`
	Order      *int           `yaml:"order"`
	Required   bool           `yaml:"required"`
	Searchable bool           `yaml:"searchable"`
}

// ParseDefinition decodes a single definition document.
func ParseDefinition(source []byte) (collections.ManagedDefinition, error) {
	var env definitionEnvelope
	body, err := frontmatter.Parse(bytes.NewReader(source), &env)
	if err != nil {
		return collections.ManagedDefinition{}, fmt.Errorf("parse frontmatter: %w", err)
	}

	def := collections.ManagedDefinition{
		Name:        strings.TrimSpace(env.Name),
		DisplayName: strings.TrimSpace(env.DisplayName),
		Description: strings.TrimSpace(env.Description),
		Fields:      make([]collections.ManagedField, 0, len(env.Fields)),
	}
	if def.Description == "" {
		def.Description = strings.TrimSpace(string(body))
	}
	for _, field := range env.Fields {
		def.Fields = append(def.Fields, collections.ManagedField{
			Name:       strings.TrimSpace(field.Name),
			Label:      strings.TrimSpace(field.Label),
			Type:       strings.TrimSpace(field.Type),
			Options:    normalizeYAML(field.Options),
			Order:      field.Order,
			Required:   field.Required,
			Searchable: field.Searchable,
		})
	}
	return def, nil
}

// normalizeYAML rewrites map[any]any nodes produced by some YAML decoders into
// map[string]any so options serialise as JSON.
func normalizeYAML(options map[string]any) map[string]any {
	if len(options) == 0 {
		return nil
	}
	out := make(map[string]any, len(options))
	for key, value := range options {
		out[key] = normalizeNode(value)
	}
	return out
}

func normalizeNode(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return normalizeYAML(typed)
	case map[any]any:
		out := make(map[string]any, len(typed))
		for key, v := range typed {
			out[fmt.Sprint(key)] = normalizeNode(v)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, v := range typed {
			out[i] = normalizeNode(v)
		}
		return out
	default:
		return value
	}
}
