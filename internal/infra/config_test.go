package infra

import "testing"

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("STABILITY_API_KEY", "sk-test-key")
	t.Setenv("PORT", "")
	t.Setenv("ALLOWED_IMAGE_TYPES", "")
	t.Setenv("PERSISTENCE_MODE", "")
	t.Setenv("STORAGE_BACKEND", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Port != "3001" {
		t.Fatalf("Port mismatch: got %q want %q", cfg.Port, "3001")
	}
	if cfg.MaxImageSizeMB != 10 {
		t.Fatalf("MaxImageSizeMB mismatch: got %d", cfg.MaxImageSizeMB)
	}
	if cfg.MaxImageDimension != 1024 {
		t.Fatalf("MaxImageDimension mismatch: got %d", cfg.MaxImageDimension)
	}
	expectedTypes := []string{"image/jpeg", "image/png", "image/webp"}
	if len(cfg.AllowedImageTypes) != len(expectedTypes) {
		t.Fatalf("AllowedImageTypes mismatch: %#v", cfg.AllowedImageTypes)
	}
	for i, want := range expectedTypes {
		if cfg.AllowedImageTypes[i] != want {
			t.Fatalf("AllowedImageTypes[%d] = %q, want %q", i, cfg.AllowedImageTypes[i], want)
		}
	}
	if cfg.PersistenceMode != PersistenceBestEffort {
		t.Fatalf("PersistenceMode mismatch: got %q", cfg.PersistenceMode)
	}
	if cfg.StorageBackend != StorageBackendFilesystem {
		t.Fatalf("StorageBackend mismatch: got %q", cfg.StorageBackend)
	}
	if cfg.GenerationTimeout.Seconds() != 30 {
		t.Fatalf("GenerationTimeout mismatch: got %v", cfg.GenerationTimeout)
	}
}

func TestLoadConfigRequiresStabilityKey(t *testing.T) {
	t.Setenv("STABILITY_API_KEY", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error when STABILITY_API_KEY is missing")
	}
}

func TestLoadConfigParsesAllowedTypes(t *testing.T) {
	t.Setenv("STABILITY_API_KEY", "sk-test-key")
	t.Setenv("ALLOWED_IMAGE_TYPES", "image/png, image/jpeg ")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if len(cfg.AllowedImageTypes) != 2 || cfg.AllowedImageTypes[0] != "image/png" || cfg.AllowedImageTypes[1] != "image/jpeg" {
		t.Fatalf("AllowedImageTypes mismatch: %#v", cfg.AllowedImageTypes)
	}
}

func TestLoadConfigRejectsUnknownPersistenceMode(t *testing.T) {
	t.Setenv("STABILITY_API_KEY", "sk-test-key")
	t.Setenv("PERSISTENCE_MODE", "eventually")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for unknown persistence mode")
	}
}

func TestLoadConfigMinioBackendRequiresEndpoint(t *testing.T) {
	t.Setenv("STABILITY_API_KEY", "sk-test-key")
	t.Setenv("PERSISTENCE_MODE", "")
	t.Setenv("STORAGE_BACKEND", "minio")
	t.Setenv("MINIO_ENDPOINT", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error when minio backend lacks an endpoint")
	}

	t.Setenv("MINIO_ENDPOINT", "localhost:9000")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.StorageBackend != StorageBackendMinio {
		t.Fatalf("StorageBackend mismatch: got %q", cfg.StorageBackend)
	}
}
