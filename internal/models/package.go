package models

// Package represents a published .rpm package tracked by the manifest.
// Filename is the identity within the manifest: upstream release filenames
// encode name, version and architecture, and the packages directory is flat.
type Package struct {
	Name         string `json:"name"`
	Version      string `json:"version"`
	Architecture string `json:"architecture"`
	URL          string `json:"url"`
	Filename     string `json:"filename"`
	ProjectRepo  string `json:"project_repo"`
	Size         int64  `json:"size"`
	SHA256       string `json:"sha256"`

	// Extracted from the .rpm header when an inspector is available.
	Summary     string `json:"summary"`
	Description string `json:"description"`
	License     string `json:"license"`
	Vendor      string `json:"vendor"`
	Homepage    string `json:"homepage"`
}

// Release represents one selected GitHub release for a project. It only
// lives for the duration of a single fetch pass; its packages are flattened
// into the manifest afterwards.
type Release struct {
	Tag        string
	Version    string
	MajorMinor string
	Packages   []Package
}

// Asset is a release attachment that passed the .rpm asset filters.
type Asset struct {
	Name         string
	URL          string
	Size         int64
	Architecture string
}
