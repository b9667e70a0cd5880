package model

// ModelInfo records the scoring model a report was produced with.
type ModelInfo struct {
	Version string             `json:"version" yaml:"version"`
	Weights map[string]float64 `json:"weights,omitempty" yaml:"weights,omitempty"`
}

// CreatorReport is the persisted analysis result of one creator.
type CreatorReport struct {
	Username        string      `json:"username" yaml:"username"`
	RunID           string      `json:"run_id" yaml:"runId"`
	AnalysisDate    string      `json:"analysis_date" yaml:"analysisDate"`
	PostsAnalyzed   int         `json:"posts_analyzed" yaml:"postsAnalyzed"`
	CreatorSummary  `yaml:",inline"`
	ReputationScore float64     `json:"reputation_score" yaml:"reputationScore"`
	Rating          string      `json:"rating" yaml:"rating"`
	BrandFits       []FitResult `json:"brand_fits" yaml:"brandFits"`
	Model           ModelInfo   `json:"model" yaml:"model"`
}

// Summary returns the summary block of the report.
func (r *CreatorReport) Summary() CreatorSummary {
	return r.CreatorSummary
}
