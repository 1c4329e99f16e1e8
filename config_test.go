package cms_test

import (
	"errors"
	"testing"

	cms "github.com/goliatone/go-cms-collections"
)

func TestConfigValidateBunRequiresDSN(t *testing.T) {
	cfg := cms.DefaultConfig()
	cfg.Storage.Provider = "bun"
	if err := cfg.Validate(); !errors.Is(err, cms.ErrStorageDSNRequired) {
		t.Fatalf("expected ErrStorageDSNRequired, got %v", err)
	}
}

func TestConfigValidateManagedRequiresFeature(t *testing.T) {
	cfg := cms.DefaultConfig()
	cfg.Managed.Collections = []cms.ManagedCollectionConfig{{Name: "faqs"}}
	if err := cfg.Validate(); !errors.Is(err, cms.ErrManagedFeatureRequired) {
		t.Fatalf("expected ErrManagedFeatureRequired, got %v", err)
	}
}
