package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Settings holds process-wide repository configuration.
type Settings struct {
	// Name is the repository id, used for the .repo file and key filenames.
	Name string `yaml:"name"`
	// BaseURL is the public URL the repository is served from.
	BaseURL string `yaml:"baseurl"`
	// Architectures is the allow-list of package architectures.
	Architectures []string `yaml:"architectures"`
	// Description becomes the repository display name.
	Description string `yaml:"description"`
	// SignPackages enables signing of individual .rpm files.
	SignPackages bool `yaml:"sign_packages"`
}

// Project is one upstream GitHub project to mirror packages from.
type Project struct {
	// Repo is the "owner/name" GitHub identifier. Required.
	Repo string `yaml:"repo"`
	// Name overrides the package name; defaults to the repo basename.
	Name string `yaml:"name"`
	// Description seeds the package summary when the .rpm has none.
	Description string `yaml:"description"`
	// KeepVersions is how many minor-version lines to keep besides the
	// newest one. Zero keeps only the newest.
	KeepVersions int `yaml:"keep_versions"`
	// AssetPattern is an optional case-insensitive filter on asset names.
	AssetPattern string `yaml:"asset_pattern"`
	// KeepOnEmpty preserves the project's previous manifest entry when a
	// refresh yields zero packages instead of pruning it.
	KeepOnEmpty bool `yaml:"keep_on_empty"`
}

// Config is the parsed projects.yaml file.
type Config struct {
	Settings Settings  `yaml:"settings"`
	Projects []Project `yaml:"projects"`
}

const (
	// DefaultConfigFilename is used when no --config flag is given.
	DefaultConfigFilename = "projects.yaml"

	defaultName        = "github-packages"
	defaultDescription = "GitHub Packages"
)

// Load reads configuration from the provided path, applies defaults and
// validates it.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := &Config{
		Settings: Settings{
			Name:          defaultName,
			Architectures: []string{"x86_64", "aarch64"},
			Description:   defaultDescription,
			SignPackages:  true,
		},
	}
	if err := yaml.Unmarshal(contents, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks required fields and fills per-project defaults.
func Validate(cfg *Config) error {
	if cfg.Settings.Name == "" {
		cfg.Settings.Name = defaultName
	}
	if cfg.Settings.Description == "" {
		cfg.Settings.Description = defaultDescription
	}
	if len(cfg.Settings.Architectures) == 0 {
		cfg.Settings.Architectures = []string{"x86_64", "aarch64"}
	}

	seen := make(map[string]bool, len(cfg.Projects))
	for i := range cfg.Projects {
		p := &cfg.Projects[i]
		if p.Repo == "" {
			return fmt.Errorf("project %d: repo is required", i)
		}
		if !strings.Contains(p.Repo, "/") {
			return fmt.Errorf("project %q: repo must be owner/name", p.Repo)
		}
		if seen[p.Repo] {
			return fmt.Errorf("project %q: duplicate repo", p.Repo)
		}
		seen[p.Repo] = true

		if p.Name == "" {
			p.Name = p.Repo[strings.LastIndex(p.Repo, "/")+1:]
		}
		if p.KeepVersions < 0 {
			return fmt.Errorf("project %q: keep_versions must be >= 0", p.Repo)
		}
		if p.AssetPattern != "" {
			if _, err := regexp.Compile("(?i)" + p.AssetPattern); err != nil {
				return fmt.Errorf("project %q: invalid asset_pattern: %w", p.Repo, err)
			}
		}
	}

	return nil
}

// AllowedArchitectures returns the architecture allow-list as a set.
func (s Settings) AllowedArchitectures() map[string]bool {
	set := make(map[string]bool, len(s.Architectures))
	for _, a := range s.Architectures {
		set[a] = true
	}
	return set
}
