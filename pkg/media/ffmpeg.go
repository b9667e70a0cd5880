package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/mchmarny/cloutcheck/pkg/adapter"
)

const (
	defaultFFmpeg = "ffmpeg"
	defaultFPS    = 1.0
	framePattern  = "frame_%04d.jpg"
	frameGlob     = "frame_*.jpg"
	audioFile     = "audio.wav"
)

// ErrNoFrames is returned when no frame could be extracted from a video.
var ErrNoFrames = errors.New("no frames extracted")

// FFmpeg extracts frames and audio by running the ffmpeg binary.
type FFmpeg struct {
	Binary string
	FPS    float64
}

var _ adapter.FrameExtractor = (*FFmpeg)(nil)

// NewFFmpeg creates an extractor sampling fps frames per second.
func NewFFmpeg(fps float64) *FFmpeg {
	if fps <= 0 {
		fps = defaultFPS
	}
	return &FFmpeg{Binary: defaultFFmpeg, FPS: fps}
}

// Frames samples at most limit frames of videoPath into outDir.
func (f *FFmpeg) Frames(ctx context.Context, videoPath, outDir string, limit int) ([]string, error) {
	args := []string{
		"-hide_banner", "-loglevel", "error", "-y",
		"-i", videoPath,
		"-vf", "fps=" + strconv.FormatFloat(f.FPS, 'f', -1, 64),
	}
	if limit > 0 {
		args = append(args, "-frames:v", strconv.Itoa(limit))
	}
	args = append(args, filepath.Join(outDir, framePattern))

	if err := f.run(ctx, args); err != nil {
		return nil, fmt.Errorf("extracting frames from %s: %w", videoPath, err)
	}

	frames, err := filepath.Glob(filepath.Join(outDir, frameGlob))
	if err != nil {
		return nil, fmt.Errorf("listing frames: %w", err)
	}
	if len(frames) == 0 {
		return nil, ErrNoFrames
	}
	sort.Strings(frames)
	if limit > 0 && len(frames) > limit {
		frames = frames[:limit]
	}
	return frames, nil
}

// Audio extracts the soundtrack of videoPath as mono 16 kHz WAV.
func (f *FFmpeg) Audio(ctx context.Context, videoPath, outDir string) (string, error) {
	out := filepath.Join(outDir, audioFile)
	args := []string{
		"-hide_banner", "-loglevel", "error", "-y",
		"-i", videoPath,
		"-vn", "-acodec", "pcm_s16le", "-ar", "16000", "-ac", "1",
		out,
	}
	if err := f.run(ctx, args); err != nil {
		return "", fmt.Errorf("extracting audio from %s: %w", videoPath, err)
	}
	return out, nil
}

func (f *FFmpeg) run(ctx context.Context, args []string) error {
	bin := f.Binary
	if bin == "" {
		bin = defaultFFmpeg
	}
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, args...) //nolint:gosec // args are built from local paths
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%w: %s", err, msg)
		}
		return err
	}
	return nil
}
