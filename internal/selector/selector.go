package selector

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/bordeux/rpm-repo/internal/arch"
	"github.com/bordeux/rpm-repo/internal/config"
	"github.com/bordeux/rpm-repo/internal/github"
	"github.com/bordeux/rpm-repo/internal/models"
	"github.com/sirupsen/logrus"
)

// ExtractVersion strips the leading version marker ('v' or 'V') from a tag.
func ExtractVersion(tag string) string {
	return strings.TrimLeft(tag, "vV")
}

// MajorMinor reduces a version to its major.minor bucket key. Versions with
// fewer than two dot components are used unchanged.
func MajorMinor(version string) string {
	parts := strings.Split(version, ".")
	if len(parts) >= 2 {
		return parts[0] + "." + parts[1]
	}
	return version
}

// bucketComponents parses a bucket key into numeric components.
// Non-numeric components compare as 0, matching the selection policy:
// "1.10" must order after "1.9".
func bucketComponents(bucket string) []int {
	parts := strings.Split(bucket, ".")
	components := make([]int, len(parts))
	for i, p := range parts {
		if n, err := strconv.Atoi(p); err == nil {
			components[i] = n
		}
	}
	return components
}

// compareBuckets returns -1, 0 or 1 comparing bucket keys component-wise.
func compareBuckets(a, b string) int {
	ca, cb := bucketComponents(a), bucketComponents(b)
	for i := 0; i < len(ca) && i < len(cb); i++ {
		if ca[i] != cb[i] {
			if ca[i] < cb[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(ca) < len(cb):
		return -1
	case len(ca) > len(cb):
		return 1
	default:
		return 0
	}
}

// MatchAssets filters a release's assets down to installable .rpm packages
// for the allowed architectures. Non-matches are dropped silently.
func MatchAssets(assets []github.ReleaseAsset, project config.Project, allowed map[string]bool) []models.Asset {
	var pattern *regexp.Regexp
	if project.AssetPattern != "" {
		// Validated at config load time.
		pattern = regexp.MustCompile("(?i)" + project.AssetPattern)
	}

	var matched []models.Asset
	for _, asset := range assets {
		name := asset.Name

		if !strings.HasSuffix(name, ".rpm") {
			continue
		}
		// Source packages are never published.
		if strings.Contains(name, ".src.rpm") || strings.Contains(name, ".srpm") {
			continue
		}
		if pattern != nil && !pattern.MatchString(name) {
			continue
		}

		tag, ok := arch.Classify(name)
		if !ok || !allowed[tag] {
			logrus.Debugf("Skipping %s: architecture not allowed", name)
			continue
		}

		matched = append(matched, models.Asset{
			Name:         name,
			URL:          asset.BrowserDownloadURL,
			Size:         asset.Size,
			Architecture: tag,
		})
	}

	return matched
}

// Select picks the releases to publish for a project: latest release per
// major.minor bucket, newest buckets first, bounded by keep_versions.
// description seeds the package summary until the .rpm header overrides it.
// An empty result is not an error; it means the project currently has no
// compatible packages.
func Select(releases []github.Release, project config.Project, allowed map[string]bool, description string) []models.Release {
	// Latest release per bucket. The provider returns releases newest-first,
	// so the first one seen in a bucket is the one to keep.
	byBucket := make(map[string]github.Release)
	for _, rel := range releases {
		if rel.Prerelease || rel.Draft {
			continue
		}
		bucket := MajorMinor(ExtractVersion(rel.TagName))
		if _, ok := byBucket[bucket]; !ok {
			byBucket[bucket] = rel
		}
	}

	buckets := make([]string, 0, len(byBucket))
	for bucket := range byBucket {
		buckets = append(buckets, bucket)
	}
	sort.Slice(buckets, func(i, j int) bool {
		return compareBuckets(buckets[i], buckets[j]) > 0
	})

	window := 1
	if project.KeepVersions > 0 {
		window = project.KeepVersions + 1
	}
	if len(buckets) > window {
		buckets = buckets[:window]
	}

	var selected []models.Release
	for _, bucket := range buckets {
		rel := byBucket[bucket]
		version := ExtractVersion(rel.TagName)

		assets := MatchAssets(rel.Assets, project, allowed)
		if len(assets) == 0 {
			// A release without compatible packages is not useful.
			continue
		}

		release := models.Release{
			Tag:        rel.TagName,
			Version:    version,
			MajorMinor: bucket,
		}
		for _, asset := range assets {
			release.Packages = append(release.Packages, models.Package{
				Name:         project.Name,
				Version:      version,
				Architecture: asset.Architecture,
				URL:          asset.URL,
				Filename:     asset.Name,
				Size:         asset.Size,
				ProjectRepo:  project.Repo,
				Summary:      description,
				Homepage:     fmt.Sprintf("https://github.com/%s", project.Repo),
			})
		}
		selected = append(selected, release)
	}

	return selected
}
