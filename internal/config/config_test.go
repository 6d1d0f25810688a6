package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRetrievalDefaults(t *testing.T) {
	t.Setenv("RETRIEVAL_TOP_K", "")
	t.Setenv("FUSION_ALPHA", "")
	t.Setenv("CHILD_CHUNK_SIZE", "")
	t.Setenv("CHILD_CHUNK_OVERLAP", "")
	t.Setenv("CONFIG_FILE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RetrievalTopK != 5 {
		t.Fatalf("expected default top k 5, got %d", cfg.RetrievalTopK)
	}
	if cfg.FusionAlpha != 0.6 {
		t.Fatalf("expected default fusion alpha 0.6, got %v", cfg.FusionAlpha)
	}
	if cfg.ChildChunkSize != 512 {
		t.Fatalf("expected default child chunk size 512, got %d", cfg.ChildChunkSize)
	}
	if cfg.ChildChunkOverlap != 50 {
		t.Fatalf("expected default child chunk overlap 50, got %d", cfg.ChildChunkOverlap)
	}
	if !cfg.RerankEnabled {
		t.Fatalf("expected rerank enabled by default")
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("RETRIEVAL_TOP_K", "8")
	t.Setenv("FUSION_ALPHA", "0.4")
	t.Setenv("TRANSLATION_ENABLED", "false")
	t.Setenv("CONFIG_FILE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RetrievalTopK != 8 {
		t.Fatalf("expected top k 8, got %d", cfg.RetrievalTopK)
	}
	if cfg.FusionAlpha != 0.4 {
		t.Fatalf("expected fusion alpha 0.4, got %v", cfg.FusionAlpha)
	}
	if cfg.TranslationEnabled {
		t.Fatalf("expected translation disabled")
	}
}

func TestLoadAppliesYAMLOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	overlay := "retrieval_top_k: 12\nqdrant_collection: contracts\n"
	if err := os.WriteFile(path, []byte(overlay), 0o600); err != nil {
		t.Fatalf("write overlay: %v", err)
	}

	t.Setenv("RETRIEVAL_TOP_K", "3")
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RetrievalTopK != 12 {
		t.Fatalf("expected overlay top k 12, got %d", cfg.RetrievalTopK)
	}
	if cfg.QdrantCollection != "contracts" {
		t.Fatalf("expected overlay collection, got %q", cfg.QdrantCollection)
	}
	// Keys absent from the overlay keep their environment values.
	if cfg.APIPort != "8080" {
		t.Fatalf("expected default api port, got %q", cfg.APIPort)
	}
}

func TestLoadRejectsMalformedOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("retrieval_top_k: [broken"), 0o600); err != nil {
		t.Fatalf("write overlay: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for malformed overlay")
	}
}
