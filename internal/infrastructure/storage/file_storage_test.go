package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLocalFileStorage_SaveAndRead(t *testing.T) {
	baseDir := t.TempDir()
	fs := NewLocalFileStorage(baseDir, zap.NewNop())
	ctx := context.Background()

	t.Run("creates parent directories", func(t *testing.T) {
		err := fs.Save(ctx, "r1/20240402T100000_reconciliation_r1_2024-03.xlsx", []byte("xlsx"))
		require.NoError(t, err)

		assert.FileExists(t, filepath.Join(baseDir, "r1", "20240402T100000_reconciliation_r1_2024-03.xlsx"))
		assert.True(t, fs.Exists(ctx, "r1/20240402T100000_reconciliation_r1_2024-03.xlsx"))
	})

	t.Run("overwrites existing file", func(t *testing.T) {
		require.NoError(t, fs.Save(ctx, "r2/file.xlsx", []byte("original")))
		require.NoError(t, fs.Save(ctx, "r2/file.xlsx", []byte("updated")))

		content, err := fs.Read(ctx, "r2/file.xlsx")
		require.NoError(t, err)
		assert.Equal(t, []byte("updated"), content)

		_, err = os.Stat(filepath.Join(baseDir, "r2", "file.xlsx.tmp"))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("missing file", func(t *testing.T) {
		assert.False(t, fs.Exists(ctx, "nope.xlsx"))
		_, err := fs.Read(ctx, "nope.xlsx")
		assert.Error(t, err)
	})
}

func TestLocalFileStorage_RejectsEscapes(t *testing.T) {
	fs := NewLocalFileStorage(t.TempDir(), zap.NewNop())
	ctx := context.Background()

	for _, path := range []string{"../outside.xlsx", "r1/../../outside.xlsx", "."} {
		err := fs.Save(ctx, path, []byte("x"))
		assert.Error(t, err, path)
		assert.Contains(t, err.Error(), "escapes base directory")
		assert.False(t, fs.Exists(ctx, path))
	}
}
