package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WritesDailyFile(t *testing.T) {
	root := t.TempDir()

	log, err := New(Options{Root: root})
	require.NoError(t, err)
	log.Infow("hello", "k", "v")
	_ = log.Sync()

	entries, err := os.ReadDir(filepath.Join(root, "logs"))
	require.NoError(t, err)
	require.Len(t, entries, 1)

	body, err := os.ReadFile(filepath.Join(root, "logs", entries[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(body), `"msg":"hello"`)
}
