package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mchmarny/cloutcheck/pkg/model"
	"github.com/mchmarny/cloutcheck/pkg/net"
)

// ReportSuffix is the file name suffix of persisted reports.
const ReportSuffix = "_analysis.json"

// FileStore keeps one indented JSON document per creator in a directory.
type FileStore struct {
	dir string
}

var _ ReportStore = (*FileStore)(nil)

// NewFileStore creates a file store in dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Path returns the report file of handle.
func (s *FileStore) Path(handle string) string {
	return filepath.Join(s.dir, handle+ReportSuffix)
}

// Save writes r to {dir}/{handle}_analysis.json.
func (s *FileStore) Save(_ context.Context, r *model.CreatorReport) error {
	if r == nil || r.Username == "" {
		return errors.New("report with username required")
	}
	if !ValidHandle(r.Username) {
		return fmt.Errorf("%w: %q", ErrInvalidHandle, r.Username)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating results dir: %w", err)
	}
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	if err := net.WriteFileAtomic(s.Path(r.Username), append(b, '\n')); err != nil {
		return fmt.Errorf("writing report for %s: %w", r.Username, err)
	}
	slog.Debug("report saved", "path", s.Path(r.Username))
	return nil
}

// Get reads the report of handle.
func (s *FileStore) Get(_ context.Context, handle string) (*model.CreatorReport, error) {
	if !ValidHandle(handle) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidHandle, handle)
	}
	return readReport(s.Path(handle))
}

// List reads every report in the directory sorted by handle. Unreadable
// files are logged and skipped.
func (s *FileStore) List(_ context.Context) ([]*model.CreatorReport, error) {
	files, err := filepath.Glob(filepath.Join(s.dir, "*"+ReportSuffix))
	if err != nil {
		return nil, fmt.Errorf("listing reports: %w", err)
	}
	sort.Strings(files)

	list := make([]*model.CreatorReport, 0, len(files))
	for _, f := range files {
		r, err := readReport(f)
		if err != nil {
			slog.Error("skipping report", "path", f, "error", err)
			continue
		}
		list = append(list, r)
	}
	return list, nil
}

// HandleFromReport returns the creator handle encoded in a report file name.
func HandleFromReport(path string) string {
	return strings.TrimSuffix(filepath.Base(path), ReportSuffix)
}

func readReport(path string) (*model.CreatorReport, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading report %s: %w", path, err)
	}
	var r model.CreatorReport
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("decoding report %s: %w", path, err)
	}
	if r.Username == "" {
		r.Username = HandleFromReport(path)
	}
	return &r, nil
}
