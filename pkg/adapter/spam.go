package adapter

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
)

const (
	patternEmojis = "excessive_emojis"
	patternCaps   = "excessive_caps"

	emojiRatioLimit = 0.2
	capsRatioLimit  = 0.3
	patternWeight   = 0.25
	spamCutoff      = 0.5
)

// SpamKeywords are the engagement-bait phrases counted as spam patterns.
var SpamKeywords = []string{
	"click link", "link in bio", "dm for", "check profile",
	"follow me", "follow back", "like and comment",
	"tag a friend", "giveaway", "contest", "win free",
	"limited time", "act now", "don't miss",
}

// SpamResult is the outcome of spam pattern detection.
type SpamResult struct {
	Score    float64
	IsSpam   bool
	Patterns []string
}

// SpamDetector finds engagement-bait patterns in text.
type SpamDetector struct {
	matcher  *goahocorasick.Machine
	keywords []string
}

// NewSpamDetector builds a detector for the given keywords.
func NewSpamDetector(keywords []string) (*SpamDetector, error) {
	if len(keywords) == 0 {
		return nil, errors.New("at least one spam keyword required")
	}
	patterns := make([][]rune, len(keywords))
	for i, k := range keywords {
		patterns[i] = []rune(strings.ToLower(k))
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, fmt.Errorf("building spam matcher: %w", err)
	}
	return &SpamDetector{matcher: m, keywords: keywords}, nil
}

// Detect reports each matched keyword once, in keyword list order,
// followed by the emoji and caps checks.
func (d *SpamDetector) Detect(text string) SpamResult {
	runes := []rune(text)
	if len(runes) == 0 {
		return SpamResult{}
	}

	found := make(map[string]bool)
	for _, t := range d.matcher.MultiPatternSearch([]rune(strings.ToLower(text)), false) {
		found[string(t.Word)] = true
	}

	var patterns []string
	for _, k := range d.keywords {
		if found[strings.ToLower(k)] {
			patterns = append(patterns, k)
		}
	}

	var nonASCII, upper int
	for _, r := range runes {
		if r > unicode.MaxASCII {
			nonASCII++
		}
		if unicode.IsUpper(r) {
			upper++
		}
	}
	if float64(nonASCII)/float64(len(runes)) > emojiRatioLimit {
		patterns = append(patterns, patternEmojis)
	}
	if float64(upper)/float64(len(runes)) > capsRatioLimit {
		patterns = append(patterns, patternCaps)
	}

	score := min(1, float64(len(patterns))*patternWeight)
	return SpamResult{
		Score:    score,
		IsSpam:   score > spamCutoff,
		Patterns: patterns,
	}
}
