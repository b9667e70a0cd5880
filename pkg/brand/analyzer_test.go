package brand

import (
	"testing"

	"github.com/mchmarny/cloutcheck/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProfile(name string) model.BrandProfile {
	return *SampleProfile(name)
}

func TestAnalyzeFit_CleanCreator(t *testing.T) {
	a := NewAnalyzer(testProfile("acme"))
	r := a.AnalyzeFit(model.CreatorSummary{
		Text: model.TextSummary{AvgSentiment: 0.9, AvgToxicity: 0.01},
	})

	assert.Equal(t, "acme", r.BrandName)
	assert.Equal(t, 100.0, r.FitScore)
	assert.Equal(t, RatingPerfectMatch, r.Rating)
	assert.Empty(t, r.RiskFactors)
	assert.NotNil(t, r.RiskFactors)
	assert.Equal(t, []string{"Values alignment bonus (+5.0)"}, r.Reasons)
	assert.Equal(t, model.FitDetails{SafetyScore: 100, TopicScore: 100, ValuesScore: 5}, r.Details)
}

func TestAnalyzeFit_NoBonusAtCutoff(t *testing.T) {
	a := NewAnalyzer(testProfile("acme"))
	r := a.AnalyzeFit(model.CreatorSummary{Text: model.TextSummary{AvgSentiment: 0.5}})
	assert.Equal(t, 100.0, r.FitScore)
	assert.Empty(t, r.Reasons)
	assert.Zero(t, r.Details.ValuesScore)
}

func TestAnalyzeFit_SingleViolation(t *testing.T) {
	a := NewAnalyzer(testProfile("acme"))
	r := a.AnalyzeFit(model.CreatorSummary{
		Text: model.TextSummary{MaxIdentityAttack: 0.5},
	})

	assert.Equal(t, 60.0, r.FitScore)
	assert.Equal(t, RatingModerateRisk, r.Rating)
	assert.Equal(t, []string{"Identity attack detected (0.50 > 0.3)"}, r.RiskFactors)
	assert.Equal(t, []string{"Safety violations detected (-40.0)"}, r.Reasons)
	assert.Equal(t, 60.0, r.Details.SafetyScore)
}

func TestAnalyzeFit_ViolationWithBonus(t *testing.T) {
	a := NewAnalyzer(testProfile("acme"))
	r := a.AnalyzeFit(model.CreatorSummary{
		Text: model.TextSummary{MaxInsult: 0.45, AvgSentiment: 0.7},
	})

	assert.Equal(t, 85.0, r.FitScore)
	assert.Equal(t, RatingGoodFit, r.Rating)
	assert.Equal(t, []string{
		"Safety violations detected (-20.0)",
		"Values alignment bonus (+5.0)",
	}, r.Reasons)
}

func TestAnalyzeFit_Unsafe(t *testing.T) {
	a := NewAnalyzer(testProfile("acme"))
	r := a.AnalyzeFit(model.CreatorSummary{
		Text: model.TextSummary{
			AvgToxicity:       0.8,
			MaxSevereToxicity: 0.9,
		},
		Image: model.ImageSummary{
			AvgNSFWScore:    0.9,
			NSFWImagesFound: 3,
		},
	})

	assert.Equal(t, 0.0, r.FitScore)
	assert.Equal(t, RatingUnsafe, r.Rating)
	assert.Equal(t, 0.0, r.Details.SafetyScore)
	assert.Equal(t, []string{
		"High average toxicity (0.80 > 0.6)",
		"Severe toxicity detected (0.90 > 0.3)",
		"NSFW content detected (0.90)",
		"Found 3 NSFW images",
	}, r.RiskFactors)
	assert.Equal(t, []string{"Safety violations detected (-100.0)"}, r.Reasons)
}

func TestAnalyzeFit_NSFWCountUncapped(t *testing.T) {
	a := NewAnalyzer(testProfile("acme"))

	r := a.AnalyzeFit(model.CreatorSummary{Image: model.ImageSummary{NSFWImagesFound: 2}})
	assert.Equal(t, 60.0, r.FitScore)

	r = a.AnalyzeFit(model.CreatorSummary{Image: model.ImageSummary{NSFWImagesFound: 50}})
	assert.Equal(t, 0.0, r.FitScore)
	assert.Equal(t, 0.0, r.Details.SafetyScore)
	assert.Contains(t, r.RiskFactors, "Found 50 NSFW images")
}

func TestAnalyzeFit_DefaultThresholdsNeverTrip(t *testing.T) {
	p, err := ParseProfile([]byte(`{"name": "lenient"}`))
	require.NoError(t, err)

	r := NewAnalyzer(*p).AnalyzeFit(model.CreatorSummary{
		Text: model.TextSummary{
			AvgToxicity:       1,
			MaxIdentityAttack: 1,
			MaxInsult:         1,
			MaxSevereToxicity: 1,
		},
		Image: model.ImageSummary{AvgNSFWScore: 1},
	})
	assert.Equal(t, 100.0, r.FitScore)
	assert.Empty(t, r.RiskFactors)
}

func TestAnalyzeFit_ExcludedTopicsNoop(t *testing.T) {
	p := testProfile("acme")
	p.ExcludedTopics = []string{"gambling", "alcohol"}

	r := NewAnalyzer(p).AnalyzeFit(model.CreatorSummary{})
	assert.Equal(t, 100.0, r.Details.TopicScore)
	assert.Empty(t, r.RiskFactors)
}

func TestAnalyzeFit_Stateless(t *testing.T) {
	a := NewAnalyzer(testProfile("acme"))
	bad := model.CreatorSummary{Text: model.TextSummary{MaxInsult: 0.9}}
	good := model.CreatorSummary{}

	first := a.AnalyzeFit(good)
	a.AnalyzeFit(bad)
	second := a.AnalyzeFit(good)
	assert.Equal(t, first, second)
}

func TestFitAll_OrderInvariant(t *testing.T) {
	strict := testProfile("strict")
	strict.SafetyThresholds.MaxToxicity = 0.1
	lenient := testProfile("lenient")

	s := model.CreatorSummary{Text: model.TextSummary{AvgToxicity: 0.3}}

	ab := FitAll([]model.BrandProfile{strict, lenient}, s)
	ba := FitAll([]model.BrandProfile{lenient, strict}, s)
	require.Len(t, ab, 2)
	require.Len(t, ba, 2)
	assert.Equal(t, ab[0], ba[1])
	assert.Equal(t, ab[1], ba[0])
	assert.Equal(t, 70.0, ab[0].FitScore)
	assert.Equal(t, 100.0, ab[1].FitScore)
}

func TestFitRating(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{100, RatingPerfectMatch},
		{90, RatingPerfectMatch},
		{89.9, RatingGoodFit},
		{75, RatingGoodFit},
		{60, RatingModerateRisk},
		{40, RatingHighRisk},
		{39.9, RatingUnsafe},
		{0, RatingUnsafe},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FitRating(tt.score), "score %v", tt.score)
	}
}

func TestFormatThreshold(t *testing.T) {
	assert.Equal(t, "1.0", formatThreshold(1))
	assert.Equal(t, "0.0", formatThreshold(0))
	assert.Equal(t, "0.6", formatThreshold(0.6))
	assert.Equal(t, "0.25", formatThreshold(0.25))
}
