package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mchmarny/cloutcheck/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sample() *model.CreatorReport {
	return &model.CreatorReport{
		Username:        "alice",
		RunID:           "run-1",
		AnalysisDate:    "2026-01-01T00:00:00Z",
		PostsAnalyzed:   4,
		ReputationScore: 82.25,
		Rating:          "Good",
		BrandFits: []model.FitResult{
			{BrandName: "Acme", FitScore: 70, Rating: "Moderate Risk", RiskFactors: []string{"Found 1 NSFW images"}},
			{BrandName: "Zen", FitScore: 95, Rating: "Perfect Match"},
		},
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]string{"": FormatJSON, "JSON": FormatJSON, "yml": FormatYAML, "table": FormatTable} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestEncode(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Report(&buf, FormatJSON, sample()))
	var got model.CreatorReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "alice", got.Username)

	buf.Reset()
	require.NoError(t, Report(&buf, FormatYAML, sample()))
	var m map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &m))
	assert.Equal(t, "alice", m["username"])
	assert.Contains(t, m, "textAnalysis")
}

func TestReportsTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Reports(&buf, FormatTable, []*model.CreatorReport{sample()}))
	out := buf.String()
	assert.Contains(t, out, "CREATOR")
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "82.25")
	assert.Contains(t, out, "Zen (95.0)")
}

func TestReportTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Report(&buf, FormatTable, sample()))
	out := buf.String()
	assert.Contains(t, out, "avg toxicity")
	assert.Contains(t, out, "Acme")
	assert.Contains(t, out, "Found 1 NSFW images")
}

func TestProfilesTable(t *testing.T) {
	var buf bytes.Buffer
	p := model.BrandProfile{Name: "Acme", Values: []string{"family", "outdoors"}}
	p.SafetyThresholds.MaxToxicity = 0.6
	require.NoError(t, Profiles(&buf, FormatTable, []model.BrandProfile{p}))
	assert.Contains(t, buf.String(), "0.600")
	assert.Contains(t, buf.String(), "family, outdoors")
}

func TestRating(t *testing.T) {
	for _, r := range []string{"Excellent", "Good Fit", "Fair", "Very Poor"} {
		assert.True(t, strings.Contains(Rating(r), r))
	}
	assert.Empty(t, Rating(""))
	assert.Equal(t, "-", bestFit(nil))
}
