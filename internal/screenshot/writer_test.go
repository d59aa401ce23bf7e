package screenshot_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohmanhakim/hybridcrawl/internal/metadata"
	"github.com/rohmanhakim/hybridcrawl/internal/screenshot"
)

func TestLocalSink_Write_CreatesFileWithTimestampedName(t *testing.T) {
	dir := t.TempDir()
	recorder := metadata.NewRecorder("test")
	sink := screenshot.NewLocalSink(&recorder)

	capturedAt := time.UnixMilli(1700000000000)
	path, err := sink.Write(dir, []byte("fake-png-bytes"), capturedAt)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "screenshot-1700000000000.png"), path)

	data, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, "fake-png-bytes", string(data))
}

func TestLocalSink_Write_CreatesMissingDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "shots")
	recorder := metadata.NewRecorder("test")
	sink := screenshot.NewLocalSink(&recorder)

	_, err := sink.Write(dir, []byte("x"), time.UnixMilli(1))
	require.NoError(t, err)

	info, statErr := os.Stat(dir)
	require.NoError(t, statErr)
	assert.True(t, info.IsDir())
}
