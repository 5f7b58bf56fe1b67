package repofile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bordeux/rpm-repo/internal/config"
	"github.com/stretchr/testify/require"
)

func testSettings() config.Settings {
	return config.Settings{
		Name:        "github-packages",
		BaseURL:     "https://example.com/repo/",
		Description: "GitHub Packages",
	}
}

func TestGenerateUnsigned(t *testing.T) {
	t.Parallel()

	settings := testSettings()
	settings.SignPackages = false

	content := Generate(settings, false)
	require.Contains(t, content, "[github-packages]")
	require.Contains(t, content, "name=GitHub Packages")
	require.Contains(t, content, "baseurl=https://example.com/repo/packages")
	require.Contains(t, content, "enabled=1")
	require.Contains(t, content, "gpgcheck=0")
	require.NotContains(t, content, "repo_gpgcheck")
	require.NotContains(t, content, "gpgkey")
}

func TestGenerateMetadataOnlySigning(t *testing.T) {
	t.Parallel()

	settings := testSettings()
	settings.SignPackages = false

	content := Generate(settings, true)
	require.Contains(t, content, "gpgcheck=0")
	require.Contains(t, content, "repo_gpgcheck=1")
	require.Contains(t, content, "gpgkey=https://example.com/repo/RPM-GPG-KEY-github-packages")
}

func TestGenerateFullSigning(t *testing.T) {
	t.Parallel()

	settings := testSettings()
	settings.SignPackages = true

	content := Generate(settings, true)
	require.Contains(t, content, "gpgcheck=1")
	require.Contains(t, content, "repo_gpgcheck=1")
	require.Contains(t, content, "gpgkey=https://example.com/repo/RPM-GPG-KEY-github-packages")
}

func TestWrite(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, Write(dir, testSettings(), false))

	content, err := os.ReadFile(filepath.Join(dir, "github-packages.repo"))
	require.NoError(t, err)
	require.Contains(t, string(content), "[github-packages]")
}
