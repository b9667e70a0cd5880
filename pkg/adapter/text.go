package adapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/abadojack/whatlanggo"
	"github.com/mchmarny/cloutcheck/pkg/model"
)

// TextAdapter produces text signals from captions, comments and transcripts.
type TextAdapter struct {
	classifier TextClassifier
	spam       *SpamDetector
}

// NewTextAdapter creates a text adapter around the given classifier.
func NewTextAdapter(c TextClassifier) (*TextAdapter, error) {
	if c == nil {
		return nil, errors.New("text classifier required")
	}
	d, err := NewSpamDetector(SpamKeywords)
	if err != nil {
		return nil, err
	}
	return &TextAdapter{classifier: c, spam: d}, nil
}

// Analyze scores a single text. Blank text yields an all-zero signal
// without consulting the classifier.
func (a *TextAdapter) Analyze(ctx context.Context, source, text string) model.TextSignal {
	sig := model.TextSignal{Source: source}

	text = strings.TrimSpace(text)
	if text == "" {
		return sig
	}

	tox, err := a.classifier.Toxicity(ctx, text)
	if err != nil {
		slog.Warn("toxicity analysis failed, using safe default", "source", source, "error", err)
		tox = ToxicityScores{}
	}
	sig.Toxicity = unit(tox.Toxicity)
	sig.SevereToxicity = unit(tox.SevereToxicity)
	sig.Insult = unit(tox.Insult)
	sig.IdentityAttack = unit(tox.IdentityAttack)

	sentiment, err := a.classifier.Sentiment(ctx, text)
	if err != nil {
		slog.Warn("sentiment analysis failed, using safe default", "source", source, "error", err)
		sentiment = 0
	}
	sig.Sentiment = polarity(sentiment)

	spam := a.spam.Detect(text)
	sig.Spam = spam.Score
	sig.SpamPatterns = spam.Patterns

	if info := whatlanggo.Detect(text); info.IsReliable() {
		sig.Language = info.Lang.Iso6391()
	}

	return sig
}

// unit clamps v to [0, 1]; NaN becomes 0.
func unit(v float64) float64 {
	if v != v || v < 0 {
		return 0
	}
	return min(v, 1)
}

func polarity(v float64) float64 {
	if v != v {
		return 0
	}
	return max(-1, min(v, 1))
}
