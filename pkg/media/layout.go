// Package media manages the on-disk media dataset of each creator: the
// deterministic file layout, downloading, frame and audio extraction,
// cleanup and storage reporting.
package media

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

const (
	imagesDirName = "images"
	videosDirName = "videos"
	imageExt      = ".jpg"
	videoExt      = ".mp4"
	videoInfix    = "_v_"
	dirPerm       = 0o755
)

// Layout resolves the media paths of a dataset root.
type Layout struct {
	Root      string
	ImagesDir string
	VideosDir string
}

// NewLayout returns the layout rooted at dir.
func NewLayout(dir string) Layout {
	return Layout{
		Root:      dir,
		ImagesDir: filepath.Join(dir, imagesDirName),
		VideosDir: filepath.Join(dir, videosDirName),
	}
}

// Ensure creates the media directories.
func (l Layout) Ensure() error {
	for _, d := range []string{l.ImagesDir, l.VideosDir} {
		if err := os.MkdirAll(d, dirPerm); err != nil {
			return fmt.Errorf("creating media dir %s: %w", d, err)
		}
	}
	return nil
}

// ImagePath is {images}/{handle}_{i}.jpg.
func (l Layout) ImagePath(handle string, i int) string {
	return filepath.Join(l.ImagesDir, handle+"_"+strconv.Itoa(i)+imageExt)
}

// VideoPath is {videos}/{handle}_v_{i}.mp4.
func (l Layout) VideoPath(handle string, i int) string {
	return filepath.Join(l.VideosDir, handle+videoInfix+strconv.Itoa(i)+videoExt)
}

// Images lists the creator's images in index order.
func (l Layout) Images(handle string) ([]string, error) {
	return list(l.ImagesDir, handle+"_", imageExt)
}

// Videos lists the creator's videos in index order.
func (l Layout) Videos(handle string) ([]string, error) {
	return list(l.VideosDir, handle+videoInfix, videoExt)
}

// HasMedia reports whether any image or video of the creator exists.
func (l Layout) HasMedia(handle string) bool {
	imgs, _ := l.Images(handle)
	if len(imgs) > 0 {
		return true
	}
	vids, _ := l.Videos(handle)
	return len(vids) > 0
}

type indexed struct {
	path  string
	index int
}

// list returns files named prefix + digits + ext sorted by the number.
func list(dir, prefix, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	var found []indexed
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if i, ok := parseIndex(e.Name(), prefix, ext); ok {
			found = append(found, indexed{path: filepath.Join(dir, e.Name()), index: i})
		}
	}
	sort.Slice(found, func(a, b int) bool { return found[a].index < found[b].index })

	out := make([]string, len(found))
	for i, f := range found {
		out[i] = f.path
	}
	return out, nil
}

func parseIndex(name, prefix, ext string) (int, bool) {
	if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ext) {
		return 0, false
	}
	digits := strings.TrimSuffix(strings.TrimPrefix(name, prefix), ext)
	if digits == "" || strings.TrimLeft(digits, "0123456789") != "" {
		return 0, false
	}
	i, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return i, true
}
