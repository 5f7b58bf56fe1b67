package cli

import (
	"testing"

	"github.com/bordeux/rpm-repo/internal/config"
	"github.com/bordeux/rpm-repo/internal/sync"
	"github.com/stretchr/testify/require"
)

// The default config enables sign_packages, but without a --gpg-key the run
// must stay unsigned instead of wiring a signer that fails on every package
// and gets each fresh download pruned again.
func TestBuildEngineWithoutKeySkipsPackageSigner(t *testing.T) {
	cfg := &config.Config{
		Settings: config.Settings{SignPackages: true},
	}
	opts := &sync.Options{}

	engine := buildEngine(cfg, opts)
	require.Nil(t, engine.PackageSigner)
}

func TestBuildEngineNoSign(t *testing.T) {
	cfg := &config.Config{
		Settings: config.Settings{SignPackages: true},
	}
	opts := &sync.Options{NoSign: true, GPGKey: "ABCDEF"}

	engine := buildEngine(cfg, opts)
	require.Nil(t, engine.PackageSigner)
	require.Nil(t, engine.MetaSigner)
}
