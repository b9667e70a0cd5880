package model

import "math"

// TextSummary is the text block of a creator summary.
type TextSummary struct {
	TextsAnalyzed     int            `json:"texts_analyzed" yaml:"textsAnalyzed"`
	AvgToxicity       float64        `json:"avg_toxicity" yaml:"avgToxicity"`
	AvgSentiment      float64        `json:"avg_sentiment" yaml:"avgSentiment"`
	AvgSpamScore      float64        `json:"avg_spam_score" yaml:"avgSpamScore"`
	MaxIdentityAttack float64        `json:"max_identity_attack" yaml:"maxIdentityAttack"`
	MaxInsult         float64        `json:"max_insult" yaml:"maxInsult"`
	MaxSevereToxicity float64        `json:"max_severe_toxicity" yaml:"maxSevereToxicity"`
	Languages         map[string]int `json:"languages,omitempty" yaml:"languages,omitempty"`
}

// ImageSummary is the visual block of a creator summary.
type ImageSummary struct {
	ImagesAnalyzed  int     `json:"images_analyzed" yaml:"imagesAnalyzed"`
	VideosAnalyzed  int     `json:"videos_analyzed" yaml:"videosAnalyzed"`
	AvgNSFWScore    float64 `json:"avg_nsfw_score" yaml:"avgNsfwScore"`
	MaxNSFWScore    float64 `json:"max_nsfw_score" yaml:"maxNsfwScore"`
	NSFWImagesFound int     `json:"nsfw_images_found" yaml:"nsfwImagesFound"`
	NSFWRatio       float64 `json:"nsfw_ratio" yaml:"nsfwRatio"`
}

// EngagementSummary is the engagement block of a creator summary.
type EngagementSummary struct {
	TotalLikes         int64   `json:"total_likes" yaml:"totalLikes"`
	TotalComments      int64   `json:"total_comments" yaml:"totalComments"`
	AvgLikesPerPost    float64 `json:"avg_likes_per_post" yaml:"avgLikesPerPost"`
	AvgCommentsPerPost float64 `json:"avg_comments_per_post" yaml:"avgCommentsPerPost"`
}

// CreatorSummary is the aggregate of all signals for one creator.
type CreatorSummary struct {
	Text       TextSummary       `json:"text_analysis" yaml:"textAnalysis"`
	Image      ImageSummary      `json:"image_analysis" yaml:"imageAnalysis"`
	Engagement EngagementSummary `json:"engagement_metrics" yaml:"engagementMetrics"`
}

// Rounded returns a copy with signal statistics rounded to 3 decimals
// and engagement averages rounded to 2.
func (s CreatorSummary) Rounded() CreatorSummary {
	r := s
	r.Text.AvgToxicity = Round(s.Text.AvgToxicity, 3)
	r.Text.AvgSentiment = Round(s.Text.AvgSentiment, 3)
	r.Text.AvgSpamScore = Round(s.Text.AvgSpamScore, 3)
	r.Text.MaxIdentityAttack = Round(s.Text.MaxIdentityAttack, 3)
	r.Text.MaxInsult = Round(s.Text.MaxInsult, 3)
	r.Text.MaxSevereToxicity = Round(s.Text.MaxSevereToxicity, 3)
	r.Image.AvgNSFWScore = Round(s.Image.AvgNSFWScore, 3)
	r.Image.MaxNSFWScore = Round(s.Image.MaxNSFWScore, 3)
	r.Image.NSFWRatio = Round(s.Image.NSFWRatio, 3)
	r.Engagement.AvgLikesPerPost = Round(s.Engagement.AvgLikesPerPost, 2)
	r.Engagement.AvgCommentsPerPost = Round(s.Engagement.AvgCommentsPerPost, 2)
	return r
}

// Round rounds v half away from zero to the given number of decimals.
func Round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
