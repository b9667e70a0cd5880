package adapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/mchmarny/cloutcheck/pkg/model"
)

// DefaultNSFWThreshold is the score above which an image is flagged.
const DefaultNSFWThreshold = 0.7

// ImageAdapter produces visual signals for image files.
type ImageAdapter struct {
	classifier ImageClassifier
	threshold  float64
}

// NewImageAdapter creates an image adapter. A non-positive threshold
// selects DefaultNSFWThreshold.
func NewImageAdapter(c ImageClassifier, threshold float64) (*ImageAdapter, error) {
	if c == nil {
		return nil, errors.New("image classifier required")
	}
	if threshold <= 0 {
		threshold = DefaultNSFWThreshold
	}
	return &ImageAdapter{classifier: c, threshold: threshold}, nil
}

// Analyze scores one image. Missing, non-image or unscorable files yield
// the safe default signal.
func (a *ImageAdapter) Analyze(ctx context.Context, path string) model.VisualSignal {
	score, err := a.score(ctx, path)
	if err != nil {
		slog.Warn("image analysis failed, using safe default", "path", path, "error", err)
		return model.SafeVisualSignal(path)
	}
	return model.VisualSignal{
		Source:    path,
		NSFWScore: score,
		IsNSFW:    score > a.threshold,
		SafeScore: 1 - score,
	}
}

func (a *ImageAdapter) score(ctx context.Context, path string) (float64, error) {
	if err := CheckMedia(path, "image/"); err != nil {
		return 0, err
	}
	v, err := a.classifier.NSFW(ctx, path)
	if err != nil {
		return 0, fmt.Errorf("classifying image: %w", err)
	}
	return unit(v), nil
}

// CheckMedia verifies that path is a readable file whose sniffed content
// type starts with prefix.
func CheckMedia(path, prefix string) error {
	fi, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat media file: %w", err)
	}
	if fi.IsDir() || fi.Size() == 0 {
		return fmt.Errorf("not a media file: %s", path)
	}
	m, err := mimetype.DetectFile(path)
	if err != nil {
		return fmt.Errorf("detecting media type: %w", err)
	}
	if !strings.HasPrefix(m.String(), prefix) {
		return fmt.Errorf("unexpected media type %s for %s", m.String(), path)
	}
	return nil
}
