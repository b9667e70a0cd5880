package model

// TextSignal holds the risk scores of one piece of text.
type TextSignal struct {
	Source         string   `json:"source" yaml:"source"`
	Toxicity       float64  `json:"toxicity" yaml:"toxicity"`
	SevereToxicity float64  `json:"severe_toxicity" yaml:"severeToxicity"`
	Insult         float64  `json:"insult" yaml:"insult"`
	IdentityAttack float64  `json:"identity_attack" yaml:"identityAttack"`
	Sentiment      float64  `json:"sentiment" yaml:"sentiment"`
	Spam           float64  `json:"spam" yaml:"spam"`
	SpamPatterns   []string `json:"spam_patterns,omitempty" yaml:"spamPatterns,omitempty"`
	Language       string   `json:"language,omitempty" yaml:"language,omitempty"`
}

// FrameStats summarizes per-frame NSFW scores of a video.
type FrameStats struct {
	Count   int     `json:"count" yaml:"count"`
	Flagged int     `json:"flagged" yaml:"flagged"`
	Avg     float64 `json:"avg" yaml:"avg"`
	Max     float64 `json:"max" yaml:"max"`
	Min     float64 `json:"min" yaml:"min"`
}

// VisualSignal holds the NSFW assessment of one image or video.
type VisualSignal struct {
	Source    string      `json:"source" yaml:"source"`
	NSFWScore float64     `json:"nsfw_score" yaml:"nsfwScore"`
	IsNSFW    bool        `json:"is_nsfw" yaml:"isNsfw"`
	SafeScore float64     `json:"safe_score" yaml:"safeScore"`
	Frames    *FrameStats `json:"frames,omitempty" yaml:"frames,omitempty"`
}

// SafeVisualSignal is the result used when an item cannot be assessed.
func SafeVisualSignal(source string) VisualSignal {
	return VisualSignal{
		Source:    source,
		SafeScore: 1,
	}
}
