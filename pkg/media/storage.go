package media

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/shirou/gopsutil/v4/disk"
)

// DirUsage is the size of one media directory.
type DirUsage struct {
	Path  string `json:"path" yaml:"path"`
	Files int    `json:"files" yaml:"files"`
	Bytes int64  `json:"bytes" yaml:"bytes"`
}

// StorageReport describes the disk holding the dataset and the media
// directories on it.
type StorageReport struct {
	TotalBytes  uint64   `json:"total_bytes" yaml:"totalBytes"`
	FreeBytes   uint64   `json:"free_bytes" yaml:"freeBytes"`
	UsedPercent float64  `json:"used_percent" yaml:"usedPercent"`
	Images      DirUsage `json:"images" yaml:"images"`
	Videos      DirUsage `json:"videos" yaml:"videos"`
}

// Storage reports disk and media directory usage.
func (l Layout) Storage() (*StorageReport, error) {
	probe := l.Root
	if _, err := os.Stat(probe); err != nil {
		probe = "."
	}
	u, err := disk.Usage(probe)
	if err != nil {
		return nil, fmt.Errorf("reading disk usage for %s: %w", probe, err)
	}

	r := &StorageReport{
		TotalBytes:  u.Total,
		FreeBytes:   u.Free,
		UsedPercent: u.UsedPercent,
	}
	if r.Images, err = dirUsage(l.ImagesDir); err != nil {
		return nil, err
	}
	if r.Videos, err = dirUsage(l.VideosDir); err != nil {
		return nil, err
	}
	return r, nil
}

// Log writes the report at info level.
func (r *StorageReport) Log() {
	slog.Info("storage",
		"free_gb", gb(r.FreeBytes),
		"total_gb", gb(r.TotalBytes),
		"used_pct", fmt.Sprintf("%.1f", r.UsedPercent),
		"images", r.Images.Files,
		"images_mb", mb(r.Images.Bytes),
		"videos", r.Videos.Files,
		"videos_mb", mb(r.Videos.Bytes))
}

func dirUsage(dir string) (DirUsage, error) {
	d := DirUsage{Path: dir}
	err := filepath.WalkDir(dir, func(_ string, e fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if e.IsDir() {
			return nil
		}
		info, err := e.Info()
		if err != nil {
			return err
		}
		d.Files++
		d.Bytes += info.Size()
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		return d, fmt.Errorf("walking %s: %w", dir, err)
	}
	return d, nil
}

func gb(b uint64) string {
	return fmt.Sprintf("%.2f", float64(b)/(1<<30))
}

func mb(b int64) string {
	return fmt.Sprintf("%.2f", float64(b)/(1<<20))
}
