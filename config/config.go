package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Site   SiteConfig   `yaml:"site"`
	Images ImagesConfig `yaml:"images"`
	Build  BuildConfig  `yaml:"build"`
	Server ServerConfig `yaml:"server"`
	Deploy DeployConfig `yaml:"deploy"`
	Ntfy   NtfyConfig   `yaml:"ntfy"`
	Log    LogConfig    `yaml:"log"`
}

// SiteConfig describes where page shells, fragments and the catalog live.
type SiteConfig struct {
	Dir           string   `yaml:"dir"`
	PagesDir      string   `yaml:"pages_dir"`
	ComponentsDir string   `yaml:"components_dir"`
	Catalog       string   `yaml:"catalog"`
	PublicDir     string   `yaml:"public_dir"`
	StaticDirs    []string `yaml:"static_dirs"`
	RemoteBaseURL string   `yaml:"remote_base_url"`

	DefaultTitle       string `yaml:"default_title"`
	DefaultDescription string `yaml:"default_description"`
	DefaultPage        string `yaml:"default_page"`

	StrictTemplates bool `yaml:"strict_templates"`
}

type ImagesConfig struct {
	ArtworkDir   string `yaml:"artwork_dir"`
	OriginalsDir string `yaml:"originals_dir"`
	MediumDir    string `yaml:"medium_dir"`
	MediumSize   int    `yaml:"medium_size"`
	JPEGQuality  int    `yaml:"jpeg_quality"`
	// Variant selects which image the pages reference: "" for the file
	// named in the catalog, "medium" for the generated derivative.
	Variant string `yaml:"variant"`
}

type BuildConfig struct {
	Workers       int  `yaml:"workers"`
	LightboxPages bool `yaml:"lightbox_pages"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	CORS bool   `yaml:"cors"`
	// Root is served instead of the public dir when set.
	Root string `yaml:"root"`
}

type DeployConfig struct {
	Method    string      `yaml:"method"`
	MirrorDir string      `yaml:"mirror_dir"`
	Git       GitConfig   `yaml:"git"`
	Rsync     RsyncConfig `yaml:"rsync"`
	S3        S3Config    `yaml:"s3"`
}

type GitConfig struct {
	AutoCommit bool   `yaml:"auto_commit"`
	MirrorRepo string `yaml:"mirror_repo"`
}

type RsyncConfig struct {
	Enabled    bool   `yaml:"enabled"`
	User       string `yaml:"user"`
	Host       string `yaml:"host"`
	TargetPath string `yaml:"target_path"`
	SSHKey     string `yaml:"ssh_key"`
}

type S3Config struct {
	Bucket string `yaml:"bucket"`
	Region string `yaml:"region"`
	Prefix string `yaml:"prefix"`
}

type NtfyConfig struct {
	Enabled bool   `yaml:"enabled"`
	Server  string `yaml:"server"`
	Topic   string `yaml:"topic"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Site: SiteConfig{
			Dir:                ".",
			PagesDir:           "pages",
			ComponentsDir:      "components",
			Catalog:            "data/artworks.json",
			PublicDir:          "public",
			StaticDirs:         []string{"css", "js", "images"},
			DefaultTitle:       "Niklas Dorsch - Artist Portfolio",
			DefaultDescription: "Contemporary artist exploring abstract landscapes through mythical narratives",
			DefaultPage:        "home",
		},
		Images: ImagesConfig{
			ArtworkDir:   "images/artworks",
			OriginalsDir: "originals",
			MediumDir:    "medium",
			MediumSize:   800,
			JPEGQuality:  85,
		},
		Build: BuildConfig{
			Workers:       4,
			LightboxPages: true,
		},
		Server: ServerConfig{
			Host: "",
			Port: 8000,
			CORS: true,
		},
		Deploy: DeployConfig{
			Method:    "none",
			MirrorDir: "mirror",
		},
		Ntfy: NtfyConfig{
			Server: "https://ntfy.sh",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads and parses the configuration file. A missing file is not an
// error: defaults and environment overrides are used instead.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// .env next to the config file carries deploy secrets
	envFile := filepath.Join(filepath.Dir(path), ".env")
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	str := map[string]*string{
		"ATELIER_SITE_DIR":        &c.Site.Dir,
		"ATELIER_PUBLIC_DIR":      &c.Site.PublicDir,
		"ATELIER_REMOTE_BASE_URL": &c.Site.RemoteBaseURL,
		"ATELIER_LOG_LEVEL":       &c.Log.Level,
		"ATELIER_DEPLOY_METHOD":   &c.Deploy.Method,
		"ATELIER_S3_BUCKET":       &c.Deploy.S3.Bucket,
		"ATELIER_S3_REGION":       &c.Deploy.S3.Region,
		"ATELIER_RSYNC_SSH_KEY":   &c.Deploy.Rsync.SSHKey,
		"NTFY_TOPIC":              &c.Ntfy.Topic,
	}
	for key, field := range str {
		if v, ok := os.LookupEnv(key); ok {
			*field = v
		}
	}

	if v, ok := os.LookupEnv("ATELIER_PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("ATELIER_PORT: %w", err)
		}
		c.Server.Port = port
	}

	return nil
}

// Validate checks if required configuration fields are set
func (c *Config) Validate() error {
	if c.Site.Dir == "" {
		return fmt.Errorf("site.dir is required")
	}
	if c.Site.PublicDir == "" {
		return fmt.Errorf("site.public_dir is required")
	}
	if c.Images.ArtworkDir == "" {
		return fmt.Errorf("images.artwork_dir is required")
	}
	if c.Images.MediumSize <= 0 {
		return fmt.Errorf("images.medium_size must be positive")
	}
	if c.Images.JPEGQuality < 1 || c.Images.JPEGQuality > 100 {
		return fmt.Errorf("images.jpeg_quality must be between 1 and 100")
	}
	switch c.Images.Variant {
	case "", "medium":
	default:
		return fmt.Errorf("images.variant %q is not supported", c.Images.Variant)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d is out of range", c.Server.Port)
	}

	switch strings.ToLower(c.Deploy.Method) {
	case "", "none":
	case "rsync":
		if c.Deploy.Rsync.Enabled && (c.Deploy.Rsync.Host == "" || c.Deploy.Rsync.TargetPath == "") {
			return fmt.Errorf("deploy.rsync.host and deploy.rsync.target_path are required")
		}
	case "s3":
		if c.Deploy.S3.Bucket == "" {
			return fmt.Errorf("deploy.s3.bucket is required")
		}
	default:
		return fmt.Errorf("deploy.method %q is not supported", c.Deploy.Method)
	}

	if c.Ntfy.Enabled && c.Ntfy.Topic == "" {
		return fmt.Errorf("ntfy.topic is required when ntfy is enabled")
	}
	return nil
}

// SitePath resolves a path relative to the site directory.
func (c *Config) SitePath(elem ...string) string {
	return filepath.Join(append([]string{c.Site.Dir}, elem...)...)
}

// ArtworkPath returns the artwork source directory.
func (c *Config) ArtworkPath() string {
	return c.SitePath(c.Images.ArtworkDir)
}

// OriginalsPath returns the archive directory for untouched originals.
func (c *Config) OriginalsPath() string {
	return filepath.Join(c.ArtworkPath(), c.Images.OriginalsDir)
}

// MediumPath returns the derivative output directory.
func (c *Config) MediumPath() string {
	return filepath.Join(c.ArtworkPath(), c.Images.MediumDir)
}

// PublicPath returns the build output directory.
func (c *Config) PublicPath() string {
	if filepath.IsAbs(c.Site.PublicDir) {
		return c.Site.PublicDir
	}
	return c.SitePath(c.Site.PublicDir)
}
