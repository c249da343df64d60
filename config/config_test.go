package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	// Create temp config file
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "atelier.yaml")

	configContent := `
site:
  dir: "portfolio"
  public_dir: "portfolio/public"
  strict_templates: true

images:
  artwork_dir: "images/artworks"
  medium_size: 640
  jpeg_quality: 80
  variant: "medium"

build:
  workers: 2

server:
  port: 8080

deploy:
  method: "s3"
  s3:
    bucket: "portfolio-site"
    region: "eu-north-1"
`

	if err := os.WriteFile(configFile, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to create test config: %v", err)
	}

	// Load config
	cfg, err := Load(configFile)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Site.Dir != "portfolio" {
		t.Errorf("Expected site dir 'portfolio', got '%s'", cfg.Site.Dir)
	}

	if !cfg.Site.StrictTemplates {
		t.Error("Expected strict_templates to be set")
	}

	if cfg.Images.MediumSize != 640 {
		t.Errorf("Expected medium_size 640, got %d", cfg.Images.MediumSize)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Expected server port 8080, got %d", cfg.Server.Port)
	}

	if cfg.Deploy.S3.Bucket != "portfolio-site" {
		t.Errorf("Expected bucket 'portfolio-site', got '%s'", cfg.Deploy.S3.Bucket)
	}

	// Unset keys keep their defaults
	if cfg.Site.Catalog != "data/artworks.json" {
		t.Errorf("Expected default catalog path, got '%s'", cfg.Site.Catalog)
	}

	if cfg.Site.DefaultTitle != "Niklas Dorsch - Artist Portfolio" {
		t.Errorf("Expected default title, got '%s'", cfg.Site.DefaultTitle)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 8000 {
		t.Errorf("Expected default port 8000, got %d", cfg.Server.Port)
	}
	if cfg.Images.JPEGQuality != 85 {
		t.Errorf("Expected default quality 85, got %d", cfg.Images.JPEGQuality)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "atelier.yaml")
	if err := os.WriteFile(configFile, []byte("server:\n  port: 9000\n"), 0644); err != nil {
		t.Fatalf("Failed to create test config: %v", err)
	}
	if err := os.WriteFile(filepath.Join(tmpDir, ".env"), []byte("ATELIER_S3_REGION=eu-west-1\n"), 0644); err != nil {
		t.Fatalf("Failed to create .env: %v", err)
	}
	t.Setenv("ATELIER_PORT", "9100")
	t.Setenv("ATELIER_S3_REGION", "")
	os.Unsetenv("ATELIER_S3_REGION")

	cfg, err := Load(configFile)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 9100 {
		t.Errorf("Expected port from environment 9100, got %d", cfg.Server.Port)
	}
	if cfg.Deploy.S3.Region != "eu-west-1" {
		t.Errorf("Expected region from .env, got '%s'", cfg.Deploy.S3.Region)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "atelier.yaml")
	if err := os.WriteFile(configFile, []byte("site: [unterminated"), 0644); err != nil {
		t.Fatalf("Failed to create test config: %v", err)
	}

	if _, err := Load(configFile); err == nil {
		t.Error("Expected parse error")
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{
			name:    "defaults",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "missing site dir",
			mutate:  func(c *Config) { c.Site.Dir = "" },
			wantErr: true,
		},
		{
			name:    "quality out of range",
			mutate:  func(c *Config) { c.Images.JPEGQuality = 101 },
			wantErr: true,
		},
		{
			name:    "unknown variant",
			mutate:  func(c *Config) { c.Images.Variant = "large" },
			wantErr: true,
		},
		{
			name:    "s3 without bucket",
			mutate:  func(c *Config) { c.Deploy.Method = "s3" },
			wantErr: true,
		},
		{
			name: "rsync enabled without host",
			mutate: func(c *Config) {
				c.Deploy.Method = "rsync"
				c.Deploy.Rsync.Enabled = true
			},
			wantErr: true,
		},
		{
			name:    "unknown deploy method",
			mutate:  func(c *Config) { c.Deploy.Method = "ftp" },
			wantErr: true,
		},
		{
			name:    "ntfy without topic",
			mutate:  func(c *Config) { c.Ntfy.Enabled = true },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPaths(t *testing.T) {
	cfg := Default()
	cfg.Site.Dir = "/srv/site"

	if got := cfg.OriginalsPath(); got != "/srv/site/images/artworks/originals" {
		t.Errorf("Expected originals path, got %s", got)
	}
	if got := cfg.MediumPath(); got != "/srv/site/images/artworks/medium" {
		t.Errorf("Expected medium path, got %s", got)
	}
	if got := cfg.PublicPath(); got != "/srv/site/public" {
		t.Errorf("Expected public path, got %s", got)
	}
}
