package model

import "time"

// PostKind is the media shape of a post.
type PostKind string

const (
	KindImage    PostKind = "image"
	KindVideo    PostKind = "video"
	KindCarousel PostKind = "carousel"
)

// MediaKind is the type of a single media attachment.
type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
)

// MediaItem is one downloadable attachment of a post.
type MediaItem struct {
	Kind       MediaKind `json:"kind" yaml:"kind"`
	DisplayURL string    `json:"display_url,omitempty" yaml:"displayUrl,omitempty"`
	VideoURL   string    `json:"video_url,omitempty" yaml:"videoUrl,omitempty"`
}

// Post is a single normalized piece of creator content.
type Post struct {
	ID            string      `json:"id" yaml:"id"`
	Author        string      `json:"author" yaml:"author"`
	Caption       string      `json:"caption" yaml:"caption"`
	CommentsText  string      `json:"comments_text" yaml:"commentsText"`
	Likes         int64       `json:"likes" yaml:"likes"`
	CommentsCount int64       `json:"comments_count" yaml:"commentsCount"`
	PublishedAt   *time.Time  `json:"published_at,omitempty" yaml:"publishedAt,omitempty"`
	Kind          PostKind    `json:"kind" yaml:"kind"`
	Media         []MediaItem `json:"media,omitempty" yaml:"media,omitempty"`
	Hashtags      []string    `json:"hashtags,omitempty" yaml:"hashtags,omitempty"`
	Mentions      []string    `json:"mentions,omitempty" yaml:"mentions,omitempty"`
	URLCount      int         `json:"url_count" yaml:"urlCount"`
	VideoViews    int64       `json:"video_views,omitempty" yaml:"videoViews,omitempty"`
	VideoDuration float64     `json:"video_duration,omitempty" yaml:"videoDuration,omitempty"`
}

// Text returns the caption and the comments joined by a single space.
func (p *Post) Text() string {
	switch {
	case p.Caption == "":
		return p.CommentsText
	case p.CommentsText == "":
		return p.Caption
	default:
		return p.Caption + " " + p.CommentsText
	}
}
