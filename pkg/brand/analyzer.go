package brand

import (
	"fmt"
	"math"
	"strconv"

	"github.com/mchmarny/cloutcheck/pkg/model"
)

const (
	maxFitScore = 100.0

	toxicityPenalty       = 30.0
	identityAttackPenalty = 40.0
	insultPenalty         = 20.0
	severeToxicityPenalty = 50.0
	nsfwPenalty           = 40.0
	nsfwImagePenalty      = 20.0

	positiveSentimentCutoff = 0.5
	positiveSentimentBonus  = 5.0

	RatingPerfectMatch = "Perfect Match"
	RatingGoodFit      = "Good Fit"
	RatingModerateRisk = "Moderate Risk"
	RatingHighRisk     = "High Risk"
	RatingUnsafe       = "Unsafe / Do Not Partner"
)

// Analyzer evaluates creator summaries against a single brand profile.
// It holds no state beyond the profile and is safe for concurrent use.
type Analyzer struct {
	profile model.BrandProfile
}

// NewAnalyzer binds an analyzer to the given profile.
func NewAnalyzer(p model.BrandProfile) *Analyzer {
	return &Analyzer{profile: p}
}

// Profile returns the bound brand profile.
func (a *Analyzer) Profile() model.BrandProfile {
	return a.profile
}

// AnalyzeFit computes the fit of a creator with the bound brand.
func (a *Analyzer) AnalyzeFit(s model.CreatorSummary) model.FitResult {
	score := maxFitScore
	risks := make([]string, 0)
	reasons := make([]string, 0)

	safetyScore, safetyRisks := a.checkSafety(s)
	if len(safetyRisks) > 0 {
		score -= maxFitScore - safetyScore
		risks = append(risks, safetyRisks...)
		reasons = append(reasons, fmt.Sprintf("Safety violations detected (-%.1f)", maxFitScore-safetyScore))
	}

	topicScore, topicRisks := a.checkExcludedTopics(s)
	if len(topicRisks) > 0 {
		score -= maxFitScore - topicScore
		risks = append(risks, topicRisks...)
		reasons = append(reasons, fmt.Sprintf("Excluded topics found (-%.1f)", maxFitScore-topicScore))
	}

	valuesScore, valuesMatches := a.checkValues(s)
	if len(valuesMatches) > 0 {
		score += valuesScore
		reasons = append(reasons, fmt.Sprintf("Values alignment bonus (+%.1f)", valuesScore))
	}

	score = math.Max(0, math.Min(maxFitScore, score))

	return model.FitResult{
		BrandName:   a.profile.Name,
		FitScore:    model.Round(score, 1),
		Rating:      FitRating(score),
		RiskFactors: risks,
		Reasons:     reasons,
		Details: model.FitDetails{
			SafetyScore: safetyScore,
			TopicScore:  topicScore,
			ValuesScore: valuesScore,
		},
	}
}

func (a *Analyzer) checkSafety(s model.CreatorSummary) (float64, []string) {
	score := maxFitScore
	var risks []string
	th := a.profile.SafetyThresholds

	if s.Text.AvgToxicity > th.MaxToxicity {
		score -= toxicityPenalty
		risks = append(risks, fmt.Sprintf("High average toxicity (%.2f > %s)", s.Text.AvgToxicity, formatThreshold(th.MaxToxicity)))
	}
	if s.Text.MaxIdentityAttack > th.MaxIdentityAttack {
		score -= identityAttackPenalty
		risks = append(risks, fmt.Sprintf("Identity attack detected (%.2f > %s)", s.Text.MaxIdentityAttack, formatThreshold(th.MaxIdentityAttack)))
	}
	if s.Text.MaxInsult > th.MaxInsult {
		score -= insultPenalty
		risks = append(risks, fmt.Sprintf("Insulting content detected (%.2f > %s)", s.Text.MaxInsult, formatThreshold(th.MaxInsult)))
	}
	if s.Text.MaxSevereToxicity > th.MaxSevereToxicity {
		score -= severeToxicityPenalty
		risks = append(risks, fmt.Sprintf("Severe toxicity detected (%.2f > %s)", s.Text.MaxSevereToxicity, formatThreshold(th.MaxSevereToxicity)))
	}

	if s.Image.AvgNSFWScore > th.MaxNSFW {
		score -= nsfwPenalty
		risks = append(risks, fmt.Sprintf("NSFW content detected (%.2f)", s.Image.AvgNSFWScore))
	}
	// uncapped: many flagged items dominate the score before the floor
	if n := s.Image.NSFWImagesFound; n > 0 {
		score -= nsfwImagePenalty * float64(n)
		risks = append(risks, fmt.Sprintf("Found %d NSFW images", n))
	}

	return math.Max(0, score), risks
}

// checkExcludedTopics always passes. Summaries carry no text or keywords,
// so there is nothing to match the excluded topics against.
func (a *Analyzer) checkExcludedTopics(_ model.CreatorSummary) (float64, []string) {
	return maxFitScore, nil
}

func (a *Analyzer) checkValues(s model.CreatorSummary) (float64, []string) {
	if s.Text.AvgSentiment > positiveSentimentCutoff {
		return positiveSentimentBonus, []string{"Positive sentiment"}
	}
	return 0, nil
}

// FitRating maps a 0-100 fit score to its rating label.
func FitRating(score float64) string {
	switch {
	case score >= 90:
		return RatingPerfectMatch
	case score >= 75:
		return RatingGoodFit
	case score >= 60:
		return RatingModerateRisk
	case score >= 40:
		return RatingHighRisk
	default:
		return RatingUnsafe
	}
}

// formatThreshold prints whole numbers with a trailing ".0" so that
// "1.0" and "0.6" read the same way in risk messages.
func formatThreshold(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if v == math.Trunc(v) {
		s += ".0"
	}
	return s
}
