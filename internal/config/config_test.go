package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "projects.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
settings:
  name: my-repo
  baseurl: https://example.com/repo
  architectures: [x86_64]
  description: My packages
  sign_packages: false
projects:
  - repo: acme/app
    keep_versions: 2
    asset_pattern: "fedora"
  - repo: acme/tool
    name: customname
    description: A tool
    keep_on_empty: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "my-repo", cfg.Settings.Name)
	require.Equal(t, "https://example.com/repo", cfg.Settings.BaseURL)
	require.Equal(t, []string{"x86_64"}, cfg.Settings.Architectures)
	require.False(t, cfg.Settings.SignPackages)

	require.Len(t, cfg.Projects, 2)
	require.Equal(t, "app", cfg.Projects[0].Name, "name defaults to repo basename")
	require.Equal(t, 2, cfg.Projects[0].KeepVersions)
	require.Equal(t, "customname", cfg.Projects[1].Name)
	require.True(t, cfg.Projects[1].KeepOnEmpty)
}

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
projects:
  - repo: acme/app
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "github-packages", cfg.Settings.Name)
	require.Equal(t, "GitHub Packages", cfg.Settings.Description)
	require.Equal(t, []string{"x86_64", "aarch64"}, cfg.Settings.Architectures)
	require.True(t, cfg.Settings.SignPackages)
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidateErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		contents string
	}{
		{"missing repo", "projects:\n  - name: app\n"},
		{"bad repo format", "projects:\n  - repo: justname\n"},
		{"duplicate repo", "projects:\n  - repo: a/b\n  - repo: a/b\n"},
		{"negative keep_versions", "projects:\n  - repo: a/b\n    keep_versions: -1\n"},
		{"bad asset pattern", "projects:\n  - repo: a/b\n    asset_pattern: \"[\"\n"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Load(writeConfig(t, tt.contents))
			require.Error(t, err)
		})
	}
}

func TestAllowedArchitectures(t *testing.T) {
	t.Parallel()

	s := Settings{Architectures: []string{"x86_64", "noarch"}}
	set := s.AllowedArchitectures()
	require.True(t, set["x86_64"])
	require.True(t, set["noarch"])
	require.False(t, set["aarch64"])
}
