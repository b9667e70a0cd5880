// Package report renders reports, brand profiles and run results as
// JSON, YAML or terminal tables.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gookit/color"
	"github.com/mchmarny/cloutcheck/pkg/brand"
	"github.com/mchmarny/cloutcheck/pkg/model"
	"github.com/mchmarny/cloutcheck/pkg/score"
	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"
)

const (
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatTable = "table"
)

// ParseFormat normalizes a user supplied format name.
func ParseFormat(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	case FormatTable:
		return FormatTable, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", s)
	}
}

// Encode writes v as indented JSON or YAML. Table format falls back to JSON.
func Encode(w io.Writer, format string, v any) error {
	if format == FormatYAML {
		e := yaml.NewEncoder(w)
		e.SetIndent(2)
		defer e.Close()
		return e.Encode(v)
	}
	e := json.NewEncoder(w)
	e.SetIndent("", "  ")
	return e.Encode(v)
}

// Reports renders a list of creator reports.
func Reports(w io.Writer, format string, list []*model.CreatorReport) error {
	if format != FormatTable {
		return Encode(w, format, list)
	}

	t := newTable(w, "Creator", "Posts", "Score", "Rating", "Best Fit", "Analyzed")
	for _, r := range list {
		t.Append([]string{
			r.Username,
			strconv.Itoa(r.PostsAnalyzed),
			fmt.Sprintf("%.2f", r.ReputationScore),
			Rating(r.Rating),
			bestFit(r.BrandFits),
			r.AnalysisDate,
		})
	}
	t.Render()
	return nil
}

// Report renders one creator report with its brand fits.
func Report(w io.Writer, format string, r *model.CreatorReport) error {
	if format != FormatTable {
		return Encode(w, format, r)
	}

	s := r.Summary()
	fmt.Fprintf(w, "%s  score %.2f  %s\n\n", color.Bold.Sprint(r.Username), r.ReputationScore, Rating(r.Rating))

	m := newTable(w, "Metric", "Value")
	m.AppendBulk([][]string{
		{"posts analyzed", strconv.Itoa(r.PostsAnalyzed)},
		{"texts analyzed", strconv.Itoa(s.Text.TextsAnalyzed)},
		{"avg toxicity", num(s.Text.AvgToxicity)},
		{"avg sentiment", num(s.Text.AvgSentiment)},
		{"avg spam", num(s.Text.AvgSpamScore)},
		{"max identity attack", num(s.Text.MaxIdentityAttack)},
		{"max insult", num(s.Text.MaxInsult)},
		{"max severe toxicity", num(s.Text.MaxSevereToxicity)},
		{"visuals analyzed", strconv.Itoa(s.Image.ImagesAnalyzed)},
		{"videos analyzed", strconv.Itoa(s.Image.VideosAnalyzed)},
		{"avg nsfw", num(s.Image.AvgNSFWScore)},
		{"nsfw found", strconv.Itoa(s.Image.NSFWImagesFound)},
		{"total likes", strconv.FormatInt(s.Engagement.TotalLikes, 10)},
		{"total comments", strconv.FormatInt(s.Engagement.TotalComments, 10)},
	})
	m.Render()

	if len(r.BrandFits) == 0 {
		return nil
	}
	fmt.Fprintln(w)
	return Fits(w, FormatTable, r.BrandFits)
}

// Fits renders brand fit results.
func Fits(w io.Writer, format string, fits []model.FitResult) error {
	if format != FormatTable {
		return Encode(w, format, fits)
	}
	t := newTable(w, "Brand", "Fit", "Rating", "Risk Factors")
	for _, f := range fits {
		t.Append([]string{
			f.BrandName,
			fmt.Sprintf("%.1f", f.FitScore),
			Rating(f.Rating),
			strings.Join(f.RiskFactors, "; "),
		})
	}
	t.Render()
	return nil
}

// Profiles renders brand profiles.
func Profiles(w io.Writer, format string, list []model.BrandProfile) error {
	if format != FormatTable {
		return Encode(w, format, list)
	}
	t := newTable(w, "Brand", "Toxicity", "Identity", "Insult", "Severe", "NSFW", "Values")
	for _, p := range list {
		th := p.SafetyThresholds
		t.Append([]string{
			p.Name,
			num(th.MaxToxicity),
			num(th.MaxIdentityAttack),
			num(th.MaxInsult),
			num(th.MaxSevereToxicity),
			num(th.MaxNSFW),
			strings.Join(p.Values, ", "),
		})
	}
	t.Render()
	return nil
}

// Table renders rows under the given header.
func Table(w io.Writer, header []string, rows [][]string) {
	t := newTable(w, header...)
	t.AppendBulk(rows)
	t.Render()
}

// Rating colors a reputation or brand fit rating.
func Rating(r string) string {
	switch r {
	case score.RatingExcellent, brand.RatingPerfectMatch:
		return color.Green.Sprint(r)
	case score.RatingGood, brand.RatingGoodFit:
		return color.Cyan.Sprint(r)
	case score.RatingFair, brand.RatingModerateRisk:
		return color.Yellow.Sprint(r)
	case "":
		return ""
	default:
		return color.Red.Sprint(r)
	}
}

func bestFit(fits []model.FitResult) string {
	if len(fits) == 0 {
		return "-"
	}
	best := fits[0]
	for _, f := range fits[1:] {
		if f.FitScore > best.FitScore {
			best = f
		}
	}
	return fmt.Sprintf("%s (%.1f)", best.BrandName, best.FitScore)
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	t := tablewriter.NewWriter(w)
	t.SetHeader(header)
	t.SetAutoWrapText(false)
	t.SetAutoFormatHeaders(true)
	t.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	t.SetAlignment(tablewriter.ALIGN_LEFT)
	t.SetCenterSeparator("")
	t.SetColumnSeparator("")
	t.SetRowSeparator("")
	t.SetHeaderLine(false)
	t.SetBorder(false)
	t.SetTablePadding("\t")
	t.SetNoWhiteSpace(true)
	return t
}
