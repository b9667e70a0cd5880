package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/mchmarny/cloutcheck/pkg/brand"
	"github.com/mchmarny/cloutcheck/pkg/model"
	"github.com/mchmarny/cloutcheck/pkg/store"
	"golang.org/x/sync/errgroup"
)

// DefaultParallel is the number of reports rescored concurrently.
const DefaultParallel = 4

// Rescore recomputes the brand fits of every stored report against the
// current profiles in brandsDir without re-running item analysis.
// Reputation scores are left as they are. Stored reports are not touched
// when no profile loads. A report that fails to save does not stop the
// others; the failures are joined into the returned error. Returns the
// number of reports updated.
func Rescore(ctx context.Context, reports store.ReportStore, brandsDir string, parallel int) (int, error) {
	if reports == nil {
		return 0, errors.New("report store required")
	}
	if parallel < 1 {
		parallel = DefaultParallel
	}

	profiles := loadProfiles(brandsDir)
	if len(profiles) == 0 {
		return 0, fmt.Errorf("%s: %w", brandsDir, brand.ErrNoProfiles)
	}

	list, err := reports.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing reports: %w", err)
	}

	var (
		g     errgroup.Group
		mu    sync.Mutex
		errs  []error
		saved atomic.Int64
	)
	g.SetLimit(parallel)

	for _, r := range list {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			if err := rescoreOne(ctx, reports, profiles, r); err != nil {
				slog.Error("rescoring report failed", "handle", r.Username, "error", err)
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
				return nil
			}
			saved.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		errs = append(errs, err)
	}
	n := int(saved.Load())
	slog.Info("reports rescored", "count", n, "failed", len(list)-n, "brands", len(profiles))
	return n, errors.Join(errs...)
}

func rescoreOne(ctx context.Context, reports store.ReportStore, profiles []model.BrandProfile, r *model.CreatorReport) error {
	r.BrandFits = brand.FitAll(profiles, r.Summary())
	if err := reports.Save(ctx, r); err != nil {
		return fmt.Errorf("saving rescored report %s: %w", r.Username, err)
	}
	slog.Debug("report rescored", "handle", r.Username, "fits", len(r.BrandFits))
	return nil
}

// loadProfiles logs load failures. A missing or empty brand dir is a
// warning since fit analysis is optional.
func loadProfiles(dir string) []model.BrandProfile {
	profiles, errs := brand.LoadProfiles(dir)
	for _, err := range errs {
		if errors.Is(err, brand.ErrNoProfiles) || errors.Is(err, os.ErrNotExist) {
			slog.Warn("no brand profiles", "dir", dir, "error", err)
			continue
		}
		slog.Error("skipping brand profile", "error", err)
	}
	return profiles
}
