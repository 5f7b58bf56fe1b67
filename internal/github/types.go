package github

// Release is the provider-neutral view of a GitHub release used by the
// selection logic.
type Release struct {
	TagName    string
	Name       string
	Draft      bool
	Prerelease bool
	Assets     []ReleaseAsset
}

// ReleaseAsset is a downloadable file attached to a release.
type ReleaseAsset struct {
	Name               string
	BrowserDownloadURL string
	Size               int64
}

// Repository is the subset of repo metadata the tool consumes.
type Repository struct {
	FullName    string
	Description string
	HTMLURL     string
}
