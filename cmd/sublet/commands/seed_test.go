package commands

import (
	"bytes"
	"path/filepath"
	"testing"

	"sublet/internal/seed"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteSeed(t *testing.T) {
	demo, err := seed.LoadDemo()
	require.NoError(t, err)

	t.Run("File", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "seed.yaml")
		var stdout bytes.Buffer

		require.NoError(t, writeSeed(&stdout, path, demo))
		assert.Zero(t, stdout.Len())

		got, err := seed.LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, demo.Counts(), got.Counts())
	})

	t.Run("Stdout", func(t *testing.T) {
		var stdout bytes.Buffer
		require.NoError(t, writeSeed(&stdout, "", demo))

		got, err := seed.Decode(&stdout)
		require.NoError(t, err)
		assert.Equal(t, demo.Counts(), got.Counts())
	})

	t.Run("Unwritable Path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing", "seed.yaml")
		assert.Error(t, writeSeed(&bytes.Buffer{}, path, demo))
	})
}
