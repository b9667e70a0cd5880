package score

import (
	"math"

	"github.com/mchmarny/cloutcheck/pkg/model"
)

const (
	// ModelVersion identifies the reputation scoring model.
	ModelVersion = "1.0.0"

	baseScore = 100.0
	maxScore  = 100.0
	minScore  = 0.0

	toxicityWeight  = 30.0
	spamWeight      = 20.0
	nsfwWeight      = 30.0
	sentimentWeight = 10.0

	// step penalties apply once a max statistic crosses severeCutoff
	severeCutoff          = 0.1
	identityAttackPenalty = 20.0
	insultPenalty         = 10.0
	severeToxicityPenalty = 30.0

	RatingExcellent = "Excellent"
	RatingGood      = "Good"
	RatingFair      = "Fair"
	RatingPoor      = "Poor"
	RatingVeryPoor  = "Very Poor"
)

// ScoreReputation computes the brand-agnostic reputation of a creator.
// The result is always within [0, 100].
func ScoreReputation(s model.CreatorSummary) model.ReputationResult {
	score := baseScore

	score -= s.Text.AvgToxicity * toxicityWeight
	score -= s.Text.AvgSpamScore * spamWeight
	score -= s.Image.AvgNSFWScore * nsfwWeight
	score += math.Max(0, s.Text.AvgSentiment) * sentimentWeight

	if s.Text.MaxIdentityAttack > severeCutoff {
		score -= identityAttackPenalty
	}
	if s.Text.MaxInsult > severeCutoff {
		score -= insultPenalty
	}
	if s.Text.MaxSevereToxicity > severeCutoff {
		score -= severeToxicityPenalty
	}

	score = clamp(score, minScore, maxScore)

	return model.ReputationResult{
		Score:  score,
		Rating: ReputationRating(score),
	}
}

// ReputationRating maps a 0-100 score to its rating label.
func ReputationRating(score float64) string {
	switch {
	case score >= 90:
		return RatingExcellent
	case score >= 75:
		return RatingGood
	case score >= 60:
		return RatingFair
	case score >= 40:
		return RatingPoor
	default:
		return RatingVeryPoor
	}
}

func clamp(v, low, high float64) float64 {
	if math.IsNaN(v) {
		return low
	}
	return math.Max(low, math.Min(high, v))
}
