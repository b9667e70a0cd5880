// Package store persists creator reports.
package store

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/mchmarny/cloutcheck/pkg/model"
)

var (
	// ErrNotFound is returned when no report exists for a creator.
	ErrNotFound = errors.New("report not found")

	// ErrInvalidHandle is returned for handles that cannot name a report.
	ErrInvalidHandle = errors.New("invalid creator handle")
)

// ValidHandle reports whether handle is safe to use as a file name stem.
func ValidHandle(handle string) bool {
	return handle != "" && handle != "." && !strings.Contains(handle, "..") &&
		!strings.ContainsAny(handle, `/\`+"\x00")
}

// ReportStore saves and loads creator reports.
type ReportStore interface {
	Save(ctx context.Context, r *model.CreatorReport) error
	Get(ctx context.Context, handle string) (*model.CreatorReport, error)
	List(ctx context.Context) ([]*model.CreatorReport, error)
}

// Multi writes to every store and reads from the first one.
type Multi []ReportStore

var _ ReportStore = Multi(nil)

// Save saves r in every store. All stores are attempted.
func (m Multi) Save(ctx context.Context, r *model.CreatorReport) error {
	var errs []error
	for _, s := range m {
		if err := s.Save(ctx, r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Get returns the report from the first store that has it.
func (m Multi) Get(ctx context.Context, handle string) (*model.CreatorReport, error) {
	for _, s := range m {
		r, err := s.Get(ctx, handle)
		if err == nil {
			return r, nil
		}
		if !errors.Is(err, ErrNotFound) {
			slog.Warn("report lookup failed", "handle", handle, "error", err)
		}
	}
	return nil, ErrNotFound
}

// List returns the reports of the first store.
func (m Multi) List(ctx context.Context) ([]*model.CreatorReport, error) {
	if len(m) == 0 {
		return nil, nil
	}
	return m[0].List(ctx)
}
