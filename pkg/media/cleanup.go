package media

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Removed summarizes deleted files.
type Removed struct {
	Files int   `json:"files" yaml:"files"`
	Bytes int64 `json:"bytes" yaml:"bytes"`
}

// Add merges o into r.
func (r *Removed) Add(o Removed) {
	r.Files += o.Files
	r.Bytes += o.Bytes
}

// RemoveVideos deletes every video of the creator.
func (l Layout) RemoveVideos(handle string) (Removed, error) {
	files, err := l.Videos(handle)
	if err != nil {
		return Removed{}, err
	}
	return removeAll(files)
}

// RemoveImages deletes every image of the creator.
func (l Layout) RemoveImages(handle string) (Removed, error) {
	files, err := l.Images(handle)
	if err != nil {
		return Removed{}, err
	}
	return removeAll(files)
}

// Cleanup removes the creator's videos, and images too unless keepImages.
func (l Layout) Cleanup(handle string, keepImages bool) (Removed, error) {
	r, err := l.RemoveVideos(handle)
	if err != nil {
		return r, err
	}
	if keepImages {
		return r, nil
	}
	imgs, err := l.RemoveImages(handle)
	r.Add(imgs)
	return r, err
}

// CleanupAll removes the videos of every creator, and their images too
// unless keepImages.
func (l Layout) CleanupAll(keepImages bool) (Removed, error) {
	r, err := removeGlob(l.VideosDir, videoExt)
	if err != nil || keepImages {
		return r, err
	}
	imgs, err := removeGlob(l.ImagesDir, imageExt)
	r.Add(imgs)
	return r, err
}

func removeGlob(dir, ext string) (Removed, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*"+ext))
	if err != nil {
		return Removed{}, fmt.Errorf("listing %s: %w", dir, err)
	}
	return removeAll(files)
}

// RemoveFile deletes path, ignoring files that are already gone.
func RemoveFile(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("stat %s: %w", path, err)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return 0, fmt.Errorf("removing %s: %w", path, err)
	}
	slog.Debug("removed media file", "path", path, "bytes", info.Size())
	return info.Size(), nil
}

func removeAll(files []string) (Removed, error) {
	var (
		r    Removed
		errs []error
	)
	for _, f := range files {
		n, err := RemoveFile(f)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		r.Files++
		r.Bytes += n
	}
	return r, errors.Join(errs...)
}
