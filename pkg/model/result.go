package model

// ReputationResult is the brand-agnostic creator score.
type ReputationResult struct {
	Score  float64 `json:"score" yaml:"score"`
	Rating string  `json:"rating" yaml:"rating"`
}

// SafetyThresholds are the per-brand limits on creator risk statistics.
type SafetyThresholds struct {
	MaxToxicity       float64 `json:"max_toxicity" yaml:"maxToxicity" validate:"gte=0,lte=1"`
	MaxIdentityAttack float64 `json:"max_identity_attack" yaml:"maxIdentityAttack" validate:"gte=0,lte=1"`
	MaxInsult         float64 `json:"max_insult" yaml:"maxInsult" validate:"gte=0,lte=1"`
	MaxSevereToxicity float64 `json:"max_severe_toxicity" yaml:"maxSevereToxicity" validate:"gte=0,lte=1"`
	MaxNSFW           float64 `json:"max_nsfw" yaml:"maxNsfw" validate:"gte=0,lte=1"`
}

// BrandProfile describes what a brand tolerates and values.
type BrandProfile struct {
	Name             string           `json:"name" yaml:"name" validate:"required"`
	SafetyThresholds SafetyThresholds `json:"safety_thresholds" yaml:"safetyThresholds"`
	ExcludedTopics   []string         `json:"excluded_topics" yaml:"excludedTopics"`
	Values           []string         `json:"values" yaml:"values"`
}

// FitDetails are the component scores behind a fit score.
type FitDetails struct {
	SafetyScore float64 `json:"safety_score" yaml:"safetyScore"`
	TopicScore  float64 `json:"topic_score" yaml:"topicScore"`
	ValuesScore float64 `json:"values_score" yaml:"valuesScore"`
}

// FitResult is the outcome of evaluating one creator against one brand.
type FitResult struct {
	BrandName   string     `json:"brand_name" yaml:"brandName"`
	FitScore    float64    `json:"fit_score" yaml:"fitScore"`
	Rating      string     `json:"rating" yaml:"rating"`
	RiskFactors []string   `json:"risk_factors" yaml:"riskFactors"`
	Reasons     []string   `json:"reasons" yaml:"reasons"`
	Details     FitDetails `json:"details" yaml:"details"`
}
