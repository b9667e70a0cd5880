package inference

import (
	"strings"

	"github.com/mchmarny/cloutcheck/pkg/adapter"
)

func scoreMap(labels []Label) map[string]float64 {
	m := make(map[string]float64, len(labels))
	for _, l := range labels {
		m[strings.ToLower(strings.TrimSpace(l.Label))] = l.Score
	}
	return m
}

func first(m map[string]float64, keys ...string) float64 {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			return v
		}
	}
	return 0
}

// ToxicityFromLabels maps toxicity model labels, accepting both the
// unbiased and the original label vocabularies.
func ToxicityFromLabels(labels []Label) adapter.ToxicityScores {
	m := scoreMap(labels)
	return adapter.ToxicityScores{
		Toxicity:       first(m, "toxicity", "toxic"),
		SevereToxicity: first(m, "severe_toxicity", "severe_toxic"),
		Insult:         first(m, "insult"),
		IdentityAttack: first(m, "identity_attack", "identity_hate"),
	}
}

// SentimentFromLabels returns the signed confidence of the top label:
// positive is +score, negative is -score, anything else is 0.
func SentimentFromLabels(labels []Label) float64 {
	var top Label
	for _, l := range labels {
		if l.Score > top.Score {
			top = l
		}
	}
	name := strings.ToLower(top.Label)
	switch {
	case strings.Contains(name, "negative"):
		return -top.Score
	case strings.Contains(name, "positive"):
		return top.Score
	default:
		return 0
	}
}

// NSFWFromLabels returns the score of the nsfw label.
func NSFWFromLabels(labels []Label) float64 {
	return first(scoreMap(labels), "nsfw")
}
