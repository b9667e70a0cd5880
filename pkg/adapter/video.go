package adapter

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mchmarny/cloutcheck/pkg/model"
	"github.com/samber/lo"
)

const (
	// DefaultMaxFrames bounds the frames sampled per video.
	DefaultMaxFrames = 10

	videoMediaPrefix = "video/"
	tempDirPattern   = "cloutcheck-video-*"
)

// VideoResult holds what a single video contributes to a creator.
// Either signal may be nil when that part of the video was unusable.
type VideoResult struct {
	Visual     *model.VisualSignal
	Transcript *model.TextSignal
}

// VideoOptions tune video analysis.
type VideoOptions struct {
	// Threshold flags the video when its highest frame score exceeds it.
	Threshold float64
	MaxFrames int
	// TempDir is the parent for per-video scratch dirs; empty means os.TempDir.
	TempDir string
}

// VideoAdapter folds sampled frames and the transcribed audio of a video
// into signals.
type VideoAdapter struct {
	extractor   FrameExtractor
	images      ImageClassifier
	transcriber Transcriber
	text        *TextAdapter
	opts        VideoOptions
}

// NewVideoAdapter creates a video adapter. Transcriber may be nil, in
// which case audio is not analyzed.
func NewVideoAdapter(x FrameExtractor, img ImageClassifier, tr Transcriber, text *TextAdapter, opts VideoOptions) (*VideoAdapter, error) {
	if x == nil || img == nil {
		return nil, errors.New("frame extractor and image classifier required")
	}
	if tr != nil && text == nil {
		return nil, errors.New("text adapter required to analyze transcripts")
	}
	if opts.Threshold <= 0 {
		opts.Threshold = DefaultNSFWThreshold
	}
	if opts.MaxFrames <= 0 {
		opts.MaxFrames = DefaultMaxFrames
	}
	return &VideoAdapter{
		extractor:   x,
		images:      img,
		transcriber: tr,
		text:        text,
		opts:        opts,
	}, nil
}

// Analyze processes one video file.
func (a *VideoAdapter) Analyze(ctx context.Context, path string) VideoResult {
	var res VideoResult

	if err := CheckMedia(path, videoMediaPrefix); err != nil {
		slog.Warn("video analysis skipped", "path", path, "error", err)
		return res
	}

	dir, err := os.MkdirTemp(a.opts.TempDir, tempDirPattern)
	if err != nil {
		slog.Warn("creating video scratch dir failed", "path", path, "error", err)
		return res
	}
	defer os.RemoveAll(dir)

	res.Visual = a.analyzeFrames(ctx, path, dir)
	res.Transcript = a.analyzeAudio(ctx, path, dir)
	return res
}

func (a *VideoAdapter) analyzeFrames(ctx context.Context, path, dir string) *model.VisualSignal {
	frames, err := a.extractor.Frames(ctx, path, dir, a.opts.MaxFrames)
	if err != nil {
		slog.Warn("frame extraction failed", "path", path, "error", err)
		return nil
	}
	if len(frames) > a.opts.MaxFrames {
		frames = frames[:a.opts.MaxFrames]
	}
	if len(frames) == 0 {
		slog.Warn("no frames extracted", "path", path)
		return nil
	}

	scores := make([]float64, 0, len(frames))
	for _, f := range frames {
		v, err := a.images.NSFW(ctx, f)
		if err != nil {
			slog.Warn("frame analysis failed, using safe default", "frame", f, "error", err)
			v = 0
		}
		scores = append(scores, unit(v))
	}

	stats := FrameStats(scores, a.opts.Threshold)
	slog.Debug("video frames analyzed", "path", path, "frames", stats.Count, "avg", stats.Avg, "max", stats.Max)

	return &model.VisualSignal{
		Source:    path,
		NSFWScore: stats.Avg,
		IsNSFW:    stats.Max > a.opts.Threshold,
		SafeScore: 1 - stats.Avg,
		Frames:    &stats,
	}
}

func (a *VideoAdapter) analyzeAudio(ctx context.Context, path, dir string) *model.TextSignal {
	if a.transcriber == nil {
		return nil
	}

	audio, err := a.extractor.Audio(ctx, path, dir)
	if err != nil {
		slog.Warn("audio extraction failed", "path", path, "error", err)
		return nil
	}

	text, err := a.transcriber.Transcribe(ctx, audio)
	if err != nil {
		slog.Warn("transcription failed", "path", path, "error", err)
		return nil
	}
	if strings.TrimSpace(text) == "" {
		slog.Debug("empty transcript", "path", path)
		return nil
	}

	sig := a.text.Analyze(ctx, filepath.Base(path), text)
	return &sig
}

// FrameStats reduces per-frame scores. Flagged counts frames above threshold.
func FrameStats(scores []float64, threshold float64) model.FrameStats {
	s := model.FrameStats{Count: len(scores)}
	if len(scores) == 0 {
		return s
	}

	s.Avg = lo.Sum(scores) / float64(len(scores))
	s.Max = lo.Max(scores)
	s.Min = lo.Min(scores)
	s.Flagged = lo.CountBy(scores, func(v float64) bool { return v > threshold })
	return s
}
