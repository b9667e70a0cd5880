package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"log/slog"
	"os"
	"strings"

	// decoders accepted for downloaded images
	_ "image/gif"
	_ "image/png"

	"github.com/gabriel-vasile/mimetype"
	"github.com/mchmarny/cloutcheck/pkg/model"
	"github.com/mchmarny/cloutcheck/pkg/net"
	_ "golang.org/x/image/webp"
)

const jpegQuality = 90

// Entry kinds of the download manifest.
const (
	EntryImage     = "image"
	EntryVideo     = "video"
	EntryThumbnail = "thumbnail"
)

// Fetcher returns the content of a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

var _ Fetcher = (*net.Downloader)(nil)

// Entry is one saved media file.
type Entry struct {
	PostID string `json:"post_id"`
	Index  int    `json:"media_index"`
	Kind   string `json:"media_type"`
	Path   string `json:"file_path"`
}

// Downloader materializes post media at the layout's deterministic paths.
type Downloader struct {
	layout  Layout
	fetcher Fetcher
}

// NewDownloader creates a downloader writing into l.
func NewDownloader(l Layout, f Fetcher) *Downloader {
	return &Downloader{layout: l, fetcher: f}
}

type counters struct {
	image int
	video int
}

// Download saves the media of every post of a creator and returns the
// manifest of saved files. Indexes advance even when an item fails so
// the numbering stays stable across runs. Files already present are
// not fetched again.
func (d *Downloader) Download(ctx context.Context, handle string, posts []model.Post) ([]Entry, error) {
	if err := d.layout.Ensure(); err != nil {
		return nil, err
	}

	var (
		c       counters
		entries []Entry
	)
	for _, p := range posts {
		for _, m := range p.Media {
			if err := ctx.Err(); err != nil {
				return entries, err
			}
			entries = append(entries, d.item(ctx, handle, p.ID, m, &c)...)
		}
	}

	slog.Info("media downloaded", "handle", handle, "posts", len(posts), "files", len(entries))
	return entries, nil
}

func (d *Downloader) item(ctx context.Context, handle, postID string, m model.MediaItem, c *counters) []Entry {
	var out []Entry

	imageKind := EntryImage
	if m.Kind == model.MediaVideo && m.VideoURL != "" {
		c.video++
		path := d.layout.VideoPath(handle, c.video)
		if err := d.saveVideo(ctx, m.VideoURL, path); err != nil {
			slog.Warn("failed to save video", "handle", handle, "post", postID, "url", m.VideoURL, "error", err)
		} else {
			out = append(out, Entry{PostID: postID, Index: c.video, Kind: EntryVideo, Path: path})
		}
		imageKind = EntryThumbnail
	}

	if m.DisplayURL == "" {
		return out
	}

	c.image++
	path := d.layout.ImagePath(handle, c.image)
	if err := d.saveImage(ctx, m.DisplayURL, path); err != nil {
		slog.Warn("failed to save image", "handle", handle, "post", postID, "url", m.DisplayURL, "error", err)
		return out
	}
	return append(out, Entry{PostID: postID, Index: c.image, Kind: imageKind, Path: path})
}

func (d *Downloader) saveVideo(ctx context.Context, url, path string) error {
	if exists(path) {
		return nil
	}
	b, err := d.fetcher.Fetch(ctx, url)
	if err != nil {
		return err
	}
	return net.WriteFileAtomic(path, b)
}

func (d *Downloader) saveImage(ctx context.Context, url, path string) error {
	if exists(path) {
		return nil
	}
	b, err := d.fetcher.Fetch(ctx, url)
	if err != nil {
		return err
	}
	out, err := ToJPEG(b)
	if err != nil {
		return err
	}
	return net.WriteFileAtomic(path, out)
}

// ToJPEG re-encodes image content as a JPEG.
func ToJPEG(b []byte) ([]byte, error) {
	mt := mimetype.Detect(b)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, fmt.Errorf("content is not an image: %s", mt.String())
	}

	img, _, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", mt.String(), err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encoding jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, os.ErrNotExist)
}
