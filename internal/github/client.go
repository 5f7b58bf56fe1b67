package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/bordeux/rpm-repo/internal/models"
	gogithub "github.com/google/go-github/v55/github"
)

// Sentinel classifications for provider failures, so recovery logic can
// pattern-match instead of inspecting error text.
var (
	// ErrNotFound means the repository or release does not exist (or the
	// token cannot see it).
	ErrNotFound = errors.New("repository or release not found")
	// ErrRateLimited means the API rejected the call with a rate limit.
	ErrRateLimited = errors.New("rate limit exceeded, set GITHUB_TOKEN for higher limits")
	// ErrUnavailable covers transient network and server failures.
	ErrUnavailable = errors.New("github api unavailable")
)

const (
	apiTimeout      = 30 * time.Second
	DefaultPageSize = 30
)

// Client wraps the GitHub REST API for release listing.
type Client struct {
	api   *gogithub.Client
	token string
}

// NewClient builds a client. token may be empty; the GITHUB_TOKEN environment
// variable is used as a fallback for both API calls and asset downloads.
func NewClient(token string) *Client {
	if token == "" {
		token = os.Getenv("GITHUB_TOKEN")
	}

	api := gogithub.NewClient(nil)
	if token != "" {
		api = api.WithAuthToken(token)
	}

	return &Client{api: api, token: token}
}

// Token returns the token used for authentication, if any. Asset downloads
// reuse it.
func (c *Client) Token() string {
	return c.token
}

// splitRepo splits an "owner/name" identifier.
func splitRepo(repo string) (string, string, error) {
	owner, name, ok := strings.Cut(repo, "/")
	if !ok || owner == "" || name == "" {
		return "", "", &models.RepoError{
			Type:    models.ErrInvalidConfig,
			Subject: repo,
			Err:     fmt.Errorf("repo must be owner/name"),
		}
	}
	return owner, name, nil
}

// classify maps a go-github error to one of the sentinel classifications.
func classify(repo string, resp *gogithub.Response, err error) error {
	var cause error

	var rateErr *gogithub.RateLimitError
	var abuseErr *gogithub.AbuseRateLimitError
	switch {
	case errors.As(err, &rateErr), errors.As(err, &abuseErr):
		cause = ErrRateLimited
	case resp != nil && resp.StatusCode == http.StatusNotFound:
		cause = ErrNotFound
	case resp != nil && resp.StatusCode == http.StatusForbidden:
		cause = ErrRateLimited
	default:
		cause = fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return &models.RepoError{Type: models.ErrProvider, Subject: repo, Err: cause}
}

// GetRepo fetches repository metadata.
func (c *Client) GetRepo(ctx context.Context, repo string) (*Repository, error) {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, apiTimeout)
	defer cancel()

	r, resp, err := c.api.Repositories.Get(ctx, owner, name)
	if err != nil {
		return nil, classify(repo, resp, err)
	}

	return &Repository{
		FullName:    r.GetFullName(),
		Description: r.GetDescription(),
		HTMLURL:     r.GetHTMLURL(),
	}, nil
}

// ListReleases fetches the newest releases for a repository, newest first.
func (c *Client) ListReleases(ctx context.Context, repo string, perPage int) ([]Release, error) {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return nil, err
	}
	if perPage <= 0 {
		perPage = DefaultPageSize
	}

	ctx, cancel := context.WithTimeout(ctx, apiTimeout)
	defer cancel()

	opts := &gogithub.ListOptions{PerPage: perPage}
	raw, resp, err := c.api.Repositories.ListReleases(ctx, owner, name, opts)
	if err != nil {
		return nil, classify(repo, resp, err)
	}

	releases := make([]Release, 0, len(raw))
	for _, r := range raw {
		releases = append(releases, convertRelease(r))
	}
	return releases, nil
}

// GetLatestRelease fetches the repository's latest non-prerelease release.
func (c *Client) GetLatestRelease(ctx context.Context, repo string) (*Release, error) {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, apiTimeout)
	defer cancel()

	r, resp, err := c.api.Repositories.GetLatestRelease(ctx, owner, name)
	if err != nil {
		return nil, classify(repo, resp, err)
	}

	release := convertRelease(r)
	return &release, nil
}

func convertRelease(r *gogithub.RepositoryRelease) Release {
	release := Release{
		TagName:    r.GetTagName(),
		Name:       r.GetName(),
		Draft:      r.GetDraft(),
		Prerelease: r.GetPrerelease(),
	}
	for _, a := range r.Assets {
		release.Assets = append(release.Assets, ReleaseAsset{
			Name:               a.GetName(),
			BrowserDownloadURL: a.GetBrowserDownloadURL(),
			Size:               int64(a.GetSize()),
		})
	}
	return release
}
