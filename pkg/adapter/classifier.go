//go:generate go run go.uber.org/mock/mockgen -source=classifier.go -destination=../mocks/mock_classifier.go -package=mocks

// Package adapter turns raw classifier output for single items (texts,
// images and videos) into normalized signals. Adapters never fail: any
// classifier or media error degrades to a safe default and a warning.
package adapter

import "context"

// ToxicityScores are the toxicity-family probabilities of a text.
type ToxicityScores struct {
	Toxicity       float64 `json:"toxicity"`
	SevereToxicity float64 `json:"severe_toxicity"`
	Insult         float64 `json:"insult"`
	IdentityAttack float64 `json:"identity_attack"`
}

// TextClassifier scores text for toxicity and sentiment.
type TextClassifier interface {
	Toxicity(ctx context.Context, text string) (ToxicityScores, error)
	// Sentiment returns a polarity in [-1, 1].
	Sentiment(ctx context.Context, text string) (float64, error)
}

// ImageClassifier scores an image file for NSFW likelihood in [0, 1].
type ImageClassifier interface {
	NSFW(ctx context.Context, path string) (float64, error)
}

// Transcriber converts an audio file into text.
type Transcriber interface {
	Transcribe(ctx context.Context, path string) (string, error)
}

// FrameExtractor pulls sampled frames and the audio track out of a video.
type FrameExtractor interface {
	Frames(ctx context.Context, videoPath, outDir string, limit int) ([]string, error)
	Audio(ctx context.Context, videoPath, outDir string) (string, error)
}
