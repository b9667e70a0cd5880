package brand

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mchmarny/cloutcheck/pkg/model"
)

const (
	profileExt = ".json"
	fileMode   = 0600

	// DefaultThreshold applies to any threshold a profile leaves out.
	DefaultThreshold = 1.0
)

var (
	validate = validator.New()

	// ErrNoProfiles is returned when a directory holds no brand profiles.
	ErrNoProfiles = errors.New("no brand profiles found")
)

// ProfileError ties a profile load failure to its file.
type ProfileError struct {
	Path string
	Err  error
}

func (e *ProfileError) Error() string {
	return fmt.Sprintf("brand profile %s: %v", e.Path, e.Err)
}

func (e *ProfileError) Unwrap() error {
	return e.Err
}

// LoadProfile reads and validates a single brand profile.
func LoadProfile(path string) (*model.BrandProfile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading brand profile: %w", err)
	}
	return ParseProfile(b)
}

// ParseProfile decodes a brand profile document.
func ParseProfile(b []byte) (*model.BrandProfile, error) {
	p := &model.BrandProfile{
		SafetyThresholds: model.SafetyThresholds{
			MaxToxicity:       DefaultThreshold,
			MaxIdentityAttack: DefaultThreshold,
			MaxInsult:         DefaultThreshold,
			MaxSevereToxicity: DefaultThreshold,
			MaxNSFW:           DefaultThreshold,
		},
	}
	if err := json.Unmarshal(b, p); err != nil {
		return nil, fmt.Errorf("decoding brand profile: %w", err)
	}
	if err := validate.Struct(p); err != nil {
		return nil, fmt.Errorf("invalid brand profile: %w", err)
	}
	return p, nil
}

// LoadProfiles reads every profile in dir, sorted by file name.
// Profiles that fail to load are reported in the returned errors and
// never prevent the others from loading.
func LoadProfiles(dir string) ([]model.BrandProfile, []error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, []error{fmt.Errorf("reading brand dir %s: %w", dir, err)}
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), profileExt) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	if len(names) == 0 {
		return nil, []error{fmt.Errorf("%w in %s", ErrNoProfiles, dir)}
	}

	list := make([]model.BrandProfile, 0, len(names))
	var errs []error
	for _, n := range names {
		path := filepath.Join(dir, n)
		p, err := LoadProfile(path)
		if err != nil {
			errs = append(errs, &ProfileError{Path: path, Err: err})
			continue
		}
		slog.Debug("brand profile loaded", "brand", p.Name, "path", path)
		list = append(list, *p)
	}

	return list, errs
}

// SaveProfile writes the profile as indented JSON.
func SaveProfile(path string, p *model.BrandProfile) error {
	if p == nil {
		return errors.New("brand profile required")
	}
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("invalid brand profile: %w", err)
	}
	b, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding brand profile: %w", err)
	}
	if err := os.WriteFile(path, b, fileMode); err != nil {
		return fmt.Errorf("writing brand profile %s: %w", path, err)
	}
	return nil
}

// SampleProfile returns a starter profile with moderate thresholds.
func SampleProfile(name string) *model.BrandProfile {
	return &model.BrandProfile{
		Name: name,
		SafetyThresholds: model.SafetyThresholds{
			MaxToxicity:       0.6,
			MaxIdentityAttack: 0.3,
			MaxInsult:         0.4,
			MaxSevereToxicity: 0.3,
			MaxNSFW:           0.5,
		},
		ExcludedTopics: []string{},
		Values:         []string{},
	}
}

// FileName returns a file name for a brand name.
func FileName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, n)
	return n + profileExt
}

// FitAll evaluates the summary against every profile, in profile order.
func FitAll(profiles []model.BrandProfile, s model.CreatorSummary) []model.FitResult {
	list := make([]model.FitResult, 0, len(profiles))
	for _, p := range profiles {
		list = append(list, NewAnalyzer(p).AnalyzeFit(s))
	}
	return list
}
