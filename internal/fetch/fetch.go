package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/bordeux/rpm-repo/internal/models"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/schollz/progressbar/v3"
)

const (
	downloadTimeout = 5 * time.Minute
	userAgent       = "rpm-repo"
)

// Downloader streams release assets to the packages directory.
type Downloader struct {
	client *retryablehttp.Client
	token  string
	// Progress controls whether a progress bar is rendered per download.
	Progress bool
}

// NewDownloader builds a downloader. token may be empty for anonymous
// downloads of public assets.
func NewDownloader(token string) *Downloader {
	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.Logger = nil
	return &Downloader{client: client, token: token, Progress: true}
}

// Download streams url to dest in chunks; the whole file is never held in
// memory. It writes through a temporary .part file so an interrupted
// transfer never leaves a partial file at the final path.
func (d *Downloader) Download(ctx context.Context, url, dest string) error {
	ctx, cancel := context.WithTimeout(ctx, downloadTimeout)
	defer cancel()

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &models.RepoError{Type: models.ErrDownload, Subject: dest, Err: err}
	}
	req.Header.Set("User-Agent", userAgent)
	if d.token != "" {
		req.Header.Set("Authorization", "Bearer "+d.token)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return &models.RepoError{Type: models.ErrDownload, Subject: dest, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &models.RepoError{
			Type:    models.ErrDownload,
			Subject: dest,
			Err:     fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return &models.RepoError{Type: models.ErrFileOp, Subject: dest, Err: err}
	}

	partial := dest + ".part"
	f, err := os.Create(partial)
	if err != nil {
		return &models.RepoError{Type: models.ErrFileOp, Subject: dest, Err: err}
	}

	var w io.Writer = f
	if d.Progress {
		bar := progressbar.DefaultBytes(resp.ContentLength, filepath.Base(dest))
		w = io.MultiWriter(f, bar)
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		f.Close()
		os.Remove(partial)
		return &models.RepoError{Type: models.ErrDownload, Subject: dest, Err: err}
	}
	if err := f.Close(); err != nil {
		os.Remove(partial)
		return &models.RepoError{Type: models.ErrFileOp, Subject: dest, Err: err}
	}

	if err := os.Rename(partial, dest); err != nil {
		os.Remove(partial)
		return &models.RepoError{Type: models.ErrFileOp, Subject: dest, Err: err}
	}
	return nil
}

// SHA256File computes the hex SHA-256 digest of a file by streaming it.
func SHA256File(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", 0, err
	}

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", 0, err
	}
	return hex.EncodeToString(h.Sum(nil)), info.Size(), nil
}
