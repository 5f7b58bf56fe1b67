package arch

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		filename string
		tag      string
		ok       bool
	}{
		{"app-1.0-x86_64.rpm", "x86_64", true},
		{"app-1.0.amd64.rpm", "x86_64", true},
		{"app-1.0-x64.rpm", "x86_64", true},
		{"App-1.0-AARCH64.rpm", "aarch64", true},
		{"app-1.0.arm64.rpm", "aarch64", true},
		{"app-1.0.i686.rpm", "i686", true},
		{"app-1.0.i386.rpm", "i686", true},
		{"app-1.0-x86.rpm", "i686", true},
		{"app-1.0.armv7hl.rpm", "armv7hl", true},
		{"app-1.0-armhf.rpm", "armv7hl", true},
		{"app-1.0.noarch.rpm", "noarch", true},
		{"app-1.0.deb", "", false},
		{"app-1.0.rpm", "", false},
	}

	for _, tt := range tests {
		tag, ok := Classify(tt.filename)
		require.Equal(t, tt.ok, ok, tt.filename)
		require.Equal(t, tt.tag, tag, tt.filename)
	}
}

// A bare "x86" must not capture x86_64 filenames: the x86_64 entry is
// checked first and the i686 pattern refuses "x86_".
func TestClassifyOrdering(t *testing.T) {
	t.Parallel()

	tag, ok := Classify("tool-2.1.x86_64.rpm")
	require.True(t, ok)
	require.Equal(t, "x86_64", tag)
}
