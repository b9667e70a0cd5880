package media

import (
	"context"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFFmpegDefaults(t *testing.T) {
	f := NewFFmpeg(0)
	assert.Equal(t, defaultFFmpeg, f.Binary)
	assert.InDelta(t, defaultFPS, f.FPS, 1e-9)
}

func TestFFmpegMissingBinary(t *testing.T) {
	f := &FFmpeg{Binary: filepath.Join(t.TempDir(), "no-ffmpeg"), FPS: 1}

	_, err := f.Frames(context.Background(), "in.mp4", t.TempDir(), 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extracting frames")

	_, err = f.Audio(context.Background(), "in.mp4", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extracting audio")
}

func TestFFmpegInvalidVideo(t *testing.T) {
	if _, err := exec.LookPath(defaultFFmpeg); err != nil {
		t.Skip("ffmpeg not installed")
	}
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "bad.mp4"), 16)

	_, err := NewFFmpeg(1).Frames(context.Background(), filepath.Join(dir, "bad.mp4"), dir, 3)
	require.Error(t, err)
}
