package score

import (
	"github.com/mchmarny/cloutcheck/pkg/model"
	"github.com/samber/lo"
)

// Aggregate folds per-item signals and the post table into a creator summary.
// Every statistic over an empty population is 0.
func Aggregate(texts []model.TextSignal, visuals []model.VisualSignal, posts []model.Post) model.CreatorSummary {
	return model.CreatorSummary{
		Text:       aggregateText(texts),
		Image:      aggregateVisual(visuals),
		Engagement: aggregateEngagement(posts),
	}
}

func aggregateText(texts []model.TextSignal) model.TextSummary {
	s := model.TextSummary{TextsAnalyzed: len(texts)}
	if len(texts) == 0 {
		return s
	}

	s.AvgToxicity = mean(texts, func(t model.TextSignal) float64 { return t.Toxicity })
	s.AvgSentiment = mean(texts, func(t model.TextSignal) float64 { return t.Sentiment })
	s.AvgSpamScore = mean(texts, func(t model.TextSignal) float64 { return t.Spam })
	s.MaxIdentityAttack = lo.Max(lo.Map(texts, func(t model.TextSignal, _ int) float64 { return t.IdentityAttack }))
	s.MaxInsult = lo.Max(lo.Map(texts, func(t model.TextSignal, _ int) float64 { return t.Insult }))
	s.MaxSevereToxicity = lo.Max(lo.Map(texts, func(t model.TextSignal, _ int) float64 { return t.SevereToxicity }))

	langs := lo.FilterMap(texts, func(t model.TextSignal, _ int) (string, bool) {
		return t.Language, t.Language != ""
	})
	if len(langs) > 0 {
		s.Languages = lo.CountValues(langs)
	}

	return s
}

func aggregateVisual(visuals []model.VisualSignal) model.ImageSummary {
	s := model.ImageSummary{ImagesAnalyzed: len(visuals)}
	if len(visuals) == 0 {
		return s
	}

	s.VideosAnalyzed = lo.CountBy(visuals, func(v model.VisualSignal) bool { return v.Frames != nil })
	s.AvgNSFWScore = mean(visuals, func(v model.VisualSignal) float64 { return v.NSFWScore })
	s.MaxNSFWScore = lo.Max(lo.Map(visuals, func(v model.VisualSignal, _ int) float64 { return v.NSFWScore }))
	s.NSFWImagesFound = lo.CountBy(visuals, func(v model.VisualSignal) bool { return v.IsNSFW })
	s.NSFWRatio = float64(s.NSFWImagesFound) / float64(len(visuals))

	return s
}

func aggregateEngagement(posts []model.Post) model.EngagementSummary {
	s := model.EngagementSummary{
		TotalLikes:    lo.SumBy(posts, func(p model.Post) int64 { return p.Likes }),
		TotalComments: lo.SumBy(posts, func(p model.Post) int64 { return p.CommentsCount }),
	}
	if len(posts) > 0 {
		s.AvgLikesPerPost = float64(s.TotalLikes) / float64(len(posts))
		s.AvgCommentsPerPost = float64(s.TotalComments) / float64(len(posts))
	}
	return s
}

func mean[T any](items []T, fn func(T) float64) float64 {
	if len(items) == 0 {
		return 0
	}
	return lo.SumBy(items, fn) / float64(len(items))
}
