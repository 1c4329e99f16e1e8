package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"

	cms "github.com/goliatone/go-cms-collections"
	"github.com/goliatone/go-cms-collections/internal/documents"
	"github.com/goliatone/go-cms-collections/internal/fieldtypes"
)

func main() {
	if err := run(context.Background()); err != nil {
		log.Fatalf("example: %v", err)
	}
}

func run(ctx context.Context) error {
	cfg := cms.DefaultConfig()
	cfg.Features.Logger = true
	cfg.Logging.Level = "warn"
	cfg.Plugins.Enabled = []string{fieldtypes.PluginMarkdown}

	module, err := cms.New(cfg)
	if err != nil {
		return err
	}
	defer module.Close()

	articles, err := module.Collections().Create(ctx, cms.CreateCollectionRequest{
		Name:        "articles",
		DisplayName: "Articles",
	})
	if err != nil {
		return fmt.Errorf("create collection: %w", err)
	}

	fields := []cms.CreateFieldRequest{
		{Name: "headline", Label: "Headline", Type: fieldtypes.TypeText, IsRequired: true, IsSearchable: true},
		{Name: "summary", Label: "Summary", Type: fieldtypes.TypeSelect, Options: map[string]any{"choices": []string{"short", "long"}}},
		{Name: "body", Label: "Body", Type: fieldtypes.TypeRichTextMarkdown},
	}
	if _, err := module.Fields().CreateBatch(ctx, articles.ID, fields); err != nil {
		return fmt.Errorf("create fields: %w", err)
	}

	_, err = module.Documents().Save(ctx, cms.SaveRequest{
		CollectionID: articles.ID,
		Payload: cms.Payload{
			Title:  "First post",
			Slug:   "first-post",
			Fields: map[string]any{"summary": "medium"},
		},
	})
	var refused *documents.ValidationError
	if errors.As(err, &refused) {
		fmt.Println("refused save:")
		for _, issue := range refused.Issues {
			fmt.Printf("  %s: %s (%s)\n", issue.Field, issue.Code, issue.Message)
		}
	}

	saved, err := module.Documents().Save(ctx, cms.SaveRequest{
		CollectionID: articles.ID,
		Payload: cms.Payload{
			Title:  "First post",
			Slug:   "first-post",
			Status: documents.StatusPublished,
			Fields: map[string]any{
				"headline": "Hello",
				"summary":  "short",
				"body":     "# Hello\n\nWritten in **markdown**.",
			},
		},
	})
	if err != nil {
		return fmt.Errorf("save document: %w", err)
	}

	view, err := module.Documents().Read(ctx, saved.Document.ID)
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}
	out := map[string]any{}
	for _, fv := range view.Fields {
		entry := map[string]any{"value": fv.Value, "editor": fv.Hint.Editor}
		if fv.Preview != "" {
			entry["preview"] = fv.Preview
		}
		out[fv.Field.Name] = entry
	}
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}
