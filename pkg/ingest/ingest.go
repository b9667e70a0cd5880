// Package ingest maps scraped post records into the strict post model.
// Scraper output is loosely typed: fields come and go, carry alternate
// names and mix numeric encodings. Everything downstream sees model.Post.
package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mchmarny/cloutcheck/pkg/model"
)

const (
	// PostsFileSuffix marks scraper output files.
	PostsFileSuffix = "_posts.json"

	sixMonthsSuffix = "_6months_posts"
	postsSuffix     = "_posts"
	unknownID       = "unknown"
)

var (
	// ErrNotPostList is returned when the document is not a JSON array.
	ErrNotPostList = errors.New("expected a list of posts")

	whitespaceRegEx = regexp.MustCompile(`\s+`)
	hashtagRegEx    = regexp.MustCompile(`#(\w+)`)
	mentionRegEx    = regexp.MustCompile(`@(\w+)`)
	urlRegEx        = regexp.MustCompile(`https?://\S+`)
)

// HandleFromPath derives the creator handle from a scraper output file name.
func HandleFromPath(path string) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if h, ok := strings.CutSuffix(stem, sixMonthsSuffix); ok {
		return h
	}
	return strings.TrimSuffix(stem, postsSuffix)
}

// LoadFile reads and normalizes a scraper output file. The handle
// overrides the author of every post when not empty.
func LoadFile(path, handle string) ([]model.Post, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading posts file %s: %w", path, err)
	}
	list, err := Parse(b, handle)
	if err != nil {
		return nil, fmt.Errorf("parsing posts file %s: %w", path, err)
	}
	return list, nil
}

// Parse normalizes a JSON array of raw posts, newest first.
// Entries that are not objects are skipped.
func Parse(b []byte, handle string) ([]model.Post, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		var ute *json.UnmarshalTypeError
		if errors.As(err, &ute) {
			return nil, ErrNotPostList
		}
		return nil, fmt.Errorf("decoding posts: %w", err)
	}

	list := make([]model.Post, 0, len(raw))
	for i, r := range raw {
		var rec record
		if err := json.Unmarshal(r, &rec); err != nil || rec == nil {
			slog.Warn("skipping non-object post", "index", i)
			continue
		}
		list = append(list, Normalize(rec, handle))
	}

	sortNewestFirst(list)
	return list, nil
}

// Normalize maps a single raw post record into a Post.
func Normalize(rec map[string]any, handle string) model.Post {
	r := record(rec)
	caption := CleanText(r.str("caption"))

	p := model.Post{
		ID:            r.str("shortCode", "id"),
		Author:        handle,
		Caption:       caption,
		CommentsText:  r.comments(),
		Likes:         r.count("likesCount"),
		CommentsCount: r.count("commentsCount"),
		PublishedAt:   r.timestamp(),
		Hashtags:      submatches(hashtagRegEx, caption),
		Mentions:      submatches(mentionRegEx, caption),
		URLCount:      len(urlRegEx.FindAllString(caption, -1)),
	}
	if p.ID == "" {
		p.ID = unknownID
	}
	if p.Author == "" {
		p.Author = r.str("ownerUsername", "username")
	}

	primary := r.media()
	p.Media = append(p.Media, primary)
	for _, c := range r.children() {
		p.Media = append(p.Media, c.media())
	}

	switch {
	case len(p.Media) > 1:
		p.Kind = model.KindCarousel
	case primary.Kind == model.MediaVideo:
		p.Kind = model.KindVideo
	default:
		p.Kind = model.KindImage
	}

	if primary.Kind == model.MediaVideo {
		p.VideoViews = r.count("videoViewCount")
		p.VideoDuration = r.number("videoDuration")
	}

	return p
}

// CleanText collapses whitespace runs into single spaces.
func CleanText(s string) string {
	return strings.TrimSpace(whitespaceRegEx.ReplaceAllString(s, " "))
}

func submatches(re *regexp.Regexp, s string) []string {
	m := re.FindAllStringSubmatch(s, -1)
	if len(m) == 0 {
		return nil
	}
	list := make([]string, 0, len(m))
	for _, v := range m {
		list = append(list, v[1])
	}
	return list
}

// posts without a timestamp sort last
func sortNewestFirst(list []model.Post) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i].PublishedAt, list[j].PublishedAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
}

type record map[string]any

// str returns the first non-empty string value among keys.
func (r record) str(keys ...string) string {
	for _, k := range keys {
		switch v := r[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

func (r record) number(key string) float64 {
	switch v := r[key].(type) {
	case float64:
		return v
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err == nil {
			return f
		}
	}
	return 0
}

func (r record) count(key string) int64 {
	v := r.number(key)
	if v < 0 {
		return 0
	}
	return int64(v)
}

func (r record) flag(key string) bool {
	switch v := r[key].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	}
	return false
}

func (r record) timestamp() *time.Time {
	if s, ok := r["timestamp"].(string); ok && s != "" {
		if t, err := parseTime(s); err == nil {
			return &t
		}
		slog.Debug("unparsable timestamp", "value", s)
	}
	for _, k := range []string{"timestamp", "takenAtTimestamp"} {
		if sec := r.number(k); sec > 0 {
			t := time.Unix(int64(sec), 0).UTC()
			return &t
		}
	}
	return nil
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported time format: %s", s)
}

func (r record) comments() string {
	var parts []string
	if s := CleanText(r.str("firstComment")); s != "" {
		parts = append(parts, s)
	}
	if list, ok := r["latestComments"].([]any); ok {
		for _, c := range list {
			var txt string
			switch v := c.(type) {
			case map[string]any:
				txt, _ = v["text"].(string)
			case string:
				txt = v
			}
			if s := CleanText(txt); s != "" {
				parts = append(parts, s)
			}
		}
	}
	return strings.Join(parts, " ")
}

func (r record) isVideo() bool {
	return r.flag("isVideo") || r.str("videoUrl") != "" || strings.EqualFold(r.str("type"), "video")
}

func (r record) media() model.MediaItem {
	m := model.MediaItem{
		Kind:       model.MediaImage,
		DisplayURL: r.str("displayUrl"),
	}
	if r.isVideo() {
		m.Kind = model.MediaVideo
		m.VideoURL = r.str("videoUrl")
	}
	return m
}

func (r record) children() []record {
	list, ok := r["childPosts"].([]any)
	if !ok {
		return nil
	}
	out := make([]record, 0, len(list))
	for _, c := range list {
		if m, ok := c.(map[string]any); ok {
			out = append(out, record(m))
		}
	}
	return out
}
