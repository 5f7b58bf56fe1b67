package selector

import (
	"fmt"
	"sort"
	"testing"

	"github.com/bordeux/rpm-repo/internal/config"
	"github.com/bordeux/rpm-repo/internal/github"
	"github.com/stretchr/testify/require"
)

func TestExtractVersion(t *testing.T) {
	t.Parallel()

	require.Equal(t, "1.2.3", ExtractVersion("v1.2.3"))
	require.Equal(t, "2.0", ExtractVersion("V2.0"))
	require.Equal(t, "3.1", ExtractVersion("3.1"))
}

func TestMajorMinor(t *testing.T) {
	t.Parallel()

	require.Equal(t, "1.2", MajorMinor("1.2.3"))
	require.Equal(t, "1.2", MajorMinor("1.2"))
	require.Equal(t, "7", MajorMinor("7"))
}

// Buckets must order numerically per component, not lexicographically:
// 1.10 is newer than 1.9.
func TestBucketOrdering(t *testing.T) {
	t.Parallel()

	buckets := []string{"1.9", "1.10", "2.0"}
	sort.Slice(buckets, func(i, j int) bool {
		return compareBuckets(buckets[i], buckets[j]) > 0
	})
	require.Equal(t, []string{"2.0", "1.10", "1.9"}, buckets)
}

func TestCompareBucketsNonNumeric(t *testing.T) {
	t.Parallel()

	// Non-numeric components compare as 0.
	require.Equal(t, 1, compareBuckets("1.2", "1.beta"))
	require.Equal(t, 0, compareBuckets("alpha.0", "beta.0"))
	// Shorter prefix orders before longer.
	require.Equal(t, -1, compareBuckets("1", "1.0"))
}

func x86Release(tag string, prerelease bool) github.Release {
	version := ExtractVersion(tag)
	return github.Release{
		TagName:    tag,
		Prerelease: prerelease,
		Assets: []github.ReleaseAsset{
			{
				Name:               fmt.Sprintf("app-%s-1.x86_64.rpm", version),
				BrowserDownloadURL: fmt.Sprintf("https://example.com/%s/app.rpm", tag),
				Size:               1024,
			},
		},
	}
}

func TestSelectKeepVersionsWindow(t *testing.T) {
	t.Parallel()

	releases := []github.Release{
		x86Release("v5.4.0", false),
		x86Release("v5.3.2", false),
		x86Release("v5.2.1", false),
		x86Release("v5.1.0", false),
		x86Release("v5.0.9", false),
	}
	allowed := map[string]bool{"x86_64": true}

	project := config.Project{Repo: "acme/app", Name: "app"}
	selected := Select(releases, project, allowed, "")
	require.Len(t, selected, 1)
	require.Equal(t, "v5.4.0", selected[0].Tag)

	project.KeepVersions = 2
	selected = Select(releases, project, allowed, "")
	require.Len(t, selected, 3)
	require.Equal(t, "v5.4.0", selected[0].Tag)
	require.Equal(t, "v5.3.2", selected[1].Tag)
	require.Equal(t, "v5.2.1", selected[2].Tag)
}

func TestSelectSkipsPrereleasesAndDrafts(t *testing.T) {
	t.Parallel()

	releases := []github.Release{
		x86Release("v2.4.0-rc1", true),
		x86Release("v2.3.0", false),
		x86Release("v2.2.5", false),
	}
	releases = append(releases, github.Release{TagName: "v2.5.0", Draft: true})

	project := config.Project{Repo: "acme/app", Name: "app", KeepVersions: 1}
	selected := Select(releases, project, map[string]bool{"x86_64": true}, "")

	require.Len(t, selected, 2)
	require.Equal(t, "v2.3.0", selected[0].Tag)
	require.Equal(t, "v2.2.5", selected[1].Tag)
}

// Latest release per bucket wins; provider order is newest-first.
func TestSelectLatestPerBucket(t *testing.T) {
	t.Parallel()

	releases := []github.Release{
		x86Release("v1.2.5", false),
		x86Release("v1.2.4", false),
		x86Release("v1.2.3", false),
	}

	project := config.Project{Repo: "acme/app", Name: "app", KeepVersions: 5}
	selected := Select(releases, project, map[string]bool{"x86_64": true}, "")

	require.Len(t, selected, 1)
	require.Equal(t, "v1.2.5", selected[0].Tag)
}

func TestSelectEmptyInput(t *testing.T) {
	t.Parallel()

	project := config.Project{Repo: "acme/app", Name: "app"}
	require.Empty(t, Select(nil, project, map[string]bool{"x86_64": true}, ""))
}

func TestSelectPopulatesPackages(t *testing.T) {
	t.Parallel()

	project := config.Project{Repo: "acme/app", Name: "app"}
	selected := Select([]github.Release{x86Release("v1.0.0", false)}, project,
		map[string]bool{"x86_64": true}, "An example app")

	require.Len(t, selected, 1)
	require.Len(t, selected[0].Packages, 1)
	pkg := selected[0].Packages[0]
	require.Equal(t, "app", pkg.Name)
	require.Equal(t, "1.0.0", pkg.Version)
	require.Equal(t, "x86_64", pkg.Architecture)
	require.Equal(t, "acme/app", pkg.ProjectRepo)
	require.Equal(t, "An example app", pkg.Summary)
	require.Equal(t, "https://github.com/acme/app", pkg.Homepage)
	require.Equal(t, int64(1024), pkg.Size)
}

func TestMatchAssets(t *testing.T) {
	t.Parallel()

	assets := []github.ReleaseAsset{
		{Name: "app-1.0-1.x86_64.rpm", Size: 10},
		{Name: "app-1.0-1.src.rpm", Size: 11},
		{Name: "app-1.0-1.srpm", Size: 12},
		{Name: "app-1.0-1.aarch64.rpm", Size: 13},
		{Name: "app-1.0-linux-amd64.tar.gz", Size: 14},
		{Name: "checksums.txt", Size: 15},
	}

	project := config.Project{Repo: "acme/app", Name: "app"}
	matched := MatchAssets(assets, project, map[string]bool{"x86_64": true})
	require.Len(t, matched, 1)
	require.Equal(t, "app-1.0-1.x86_64.rpm", matched[0].Name)
	require.Equal(t, "x86_64", matched[0].Architecture)
}

func TestMatchAssetsPattern(t *testing.T) {
	t.Parallel()

	assets := []github.ReleaseAsset{
		{Name: "app-full-1.0.x86_64.rpm"},
		{Name: "app-slim-1.0.x86_64.rpm"},
	}

	project := config.Project{Repo: "acme/app", Name: "app", AssetPattern: "SLIM"}
	matched := MatchAssets(assets, project, map[string]bool{"x86_64": true})
	require.Len(t, matched, 1)
	require.Equal(t, "app-slim-1.0.x86_64.rpm", matched[0].Name)
}
