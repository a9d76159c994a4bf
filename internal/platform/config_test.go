package platform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("Missing file is empty", func(t *testing.T) {
		cfg, err := LoadConfig(t.TempDir())
		require.NoError(t, err)
		assert.Equal(t, FileConfig{}, cfg)
		assert.Empty(t, cfg.Options())
	})

	t.Run("Round trip", func(t *testing.T) {
		dir := t.TempDir()
		versioning := true
		want := FileConfig{Adapter: "bolt", Format: "yaml", Variant: "compact", Versioning: &versioning}
		require.NoError(t, WriteConfig(dir, want))

		got, err := LoadConfig(dir)
		require.NoError(t, err)
		assert.Equal(t, want, got)

		o := parse(got.Options())
		assert.Equal(t, AdapterBolt, o.adapter)
		assert.Equal(t, "yaml", o.format)
		assert.Equal(t, "compact", o.config["variant"])
		assert.Equal(t, false, o.config["gitless"])
	})

	t.Run("Invalid yaml", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFile), []byte("adapter: [unclosed"), 0644))
		_, err := LoadConfig(dir)
		assert.Error(t, err)
	})
}
