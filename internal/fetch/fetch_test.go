package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDownload(t *testing.T) {
	t.Parallel()

	body := []byte("fake rpm contents")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.Write(body)
	}))
	defer srv.Close()

	d := NewDownloader("secret")
	d.Progress = false

	dest := filepath.Join(t.TempDir(), "packages", "app-1.0.x86_64.rpm")
	require.NoError(t, d.Download(context.Background(), srv.URL, dest))

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	require.Equal(t, body, got)

	// No partial file left behind.
	_, err = os.Stat(dest + ".part")
	require.True(t, os.IsNotExist(err))
}

func TestDownloadHTTPError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	d := NewDownloader("")
	d.Progress = false
	d.client.RetryMax = 0

	dest := filepath.Join(t.TempDir(), "app.rpm")
	require.Error(t, d.Download(context.Background(), srv.URL, dest))

	_, err := os.Stat(dest)
	require.True(t, os.IsNotExist(err))
}

func TestSHA256File(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "f")
	content := []byte("some bytes")
	require.NoError(t, os.WriteFile(path, content, 0644))

	sum := sha256.Sum256(content)

	digest, size, err := SHA256File(path)
	require.NoError(t, err)
	require.Equal(t, hex.EncodeToString(sum[:]), digest)
	require.Equal(t, int64(len(content)), size)
}
