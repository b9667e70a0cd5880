package ingest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mchmarny/cloutcheck/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePosts = `[
  {
    "shortCode": "old1",
    "ownerUsername": "someone",
    "caption": "  First   post #travel @friend\n see https://x.co/a  ",
    "firstComment": "wow",
    "latestComments": [{"text": "so   good"}, "plain string", {"nope": 1}],
    "likesCount": 10,
    "commentsCount": "3",
    "takenAtTimestamp": 1600000000,
    "displayUrl": "https://cdn/img1.jpg"
  },
  {
    "id": 42,
    "username": "someone",
    "caption": "new video",
    "likesCount": 5.0,
    "timestamp": "2024-05-01T10:00:00.000Z",
    "isVideo": true,
    "videoUrl": "https://cdn/v1.mp4",
    "displayUrl": "https://cdn/thumb1.jpg",
    "videoViewCount": 1000,
    "videoDuration": 12.5
  },
  "not an object",
  {
    "caption": "carousel",
    "timestamp": "2023-01-01T00:00:00Z",
    "childPosts": [
      {"displayUrl": "https://cdn/c1.jpg"},
      {"type": "Video", "videoUrl": "https://cdn/c2.mp4", "displayUrl": "https://cdn/c2.jpg"}
    ]
  },
  {
    "shortCode": "notime",
    "caption": "no timestamp"
  }
]`

func TestParse(t *testing.T) {
	list, err := Parse([]byte(samplePosts), "")
	require.NoError(t, err)
	require.Len(t, list, 4)

	// newest first, undated last
	assert.Equal(t, "42", list[0].ID)
	assert.Equal(t, unknownID, list[1].ID)
	assert.Equal(t, "old1", list[2].ID)
	assert.Equal(t, "notime", list[3].ID)
	assert.Nil(t, list[3].PublishedAt)

	old := list[2]
	assert.Equal(t, "someone", old.Author)
	assert.Equal(t, "First post #travel @friend see https://x.co/a", old.Caption)
	assert.Equal(t, "wow so good plain string", old.CommentsText)
	assert.Equal(t, int64(10), old.Likes)
	assert.Equal(t, int64(3), old.CommentsCount)
	require.NotNil(t, old.PublishedAt)
	assert.Equal(t, time.Unix(1600000000, 0).UTC(), *old.PublishedAt)
	assert.Equal(t, model.KindImage, old.Kind)
	assert.Equal(t, []string{"travel"}, old.Hashtags)
	assert.Equal(t, []string{"friend"}, old.Mentions)
	assert.Equal(t, 1, old.URLCount)
	require.Len(t, old.Media, 1)
	assert.Equal(t, "https://cdn/img1.jpg", old.Media[0].DisplayURL)

	video := list[0]
	assert.Equal(t, model.KindVideo, video.Kind)
	assert.Equal(t, int64(5), video.Likes)
	assert.Equal(t, int64(1000), video.VideoViews)
	assert.Equal(t, 12.5, video.VideoDuration)
	require.Len(t, video.Media, 1)
	assert.Equal(t, model.MediaVideo, video.Media[0].Kind)
	assert.Equal(t, "https://cdn/v1.mp4", video.Media[0].VideoURL)

	carousel := list[1]
	assert.Equal(t, model.KindCarousel, carousel.Kind)
	require.Len(t, carousel.Media, 3)
	assert.Equal(t, model.MediaImage, carousel.Media[1].Kind)
	assert.Equal(t, model.MediaVideo, carousel.Media[2].Kind)
}

func TestParse_HandleOverridesAuthor(t *testing.T) {
	list, err := Parse([]byte(samplePosts), "alice")
	require.NoError(t, err)
	for _, p := range list {
		assert.Equal(t, "alice", p.Author)
	}
}

func TestParse_NotAList(t *testing.T) {
	_, err := Parse([]byte(`{"caption": "x"}`), "")
	assert.ErrorIs(t, err, ErrNotPostList)

	_, err = Parse([]byte(`[{`), "")
	assert.Error(t, err)
}

func TestParse_Empty(t *testing.T) {
	list, err := Parse([]byte(`[]`), "alice")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "alice_posts.json")
	require.NoError(t, os.WriteFile(path, []byte(samplePosts), 0600))

	list, err := LoadFile(path, HandleFromPath(path))
	require.NoError(t, err)
	assert.Len(t, list, 4)
	assert.Equal(t, "alice", list[0].Author)

	_, err = LoadFile(filepath.Join(dir, "missing_posts.json"), "")
	assert.Error(t, err)
}

func TestHandleFromPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"alice_posts.json", "alice"},
		{"/data/raw/bob_6months_posts.json", "bob"},
		{"carol_smith_posts.json", "carol_smith"},
		{"dave.json", "dave"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HandleFromPath(tt.path), tt.path)
	}
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "a b c", CleanText(" a \n\t b   c "))
	assert.Equal(t, "", CleanText("   "))
}
