package pipeline

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/mchmarny/cloutcheck/pkg/adapter"
	"github.com/mchmarny/cloutcheck/pkg/brand"
	"github.com/mchmarny/cloutcheck/pkg/config"
	"github.com/mchmarny/cloutcheck/pkg/data"
	"github.com/mchmarny/cloutcheck/pkg/media"
	"github.com/mchmarny/cloutcheck/pkg/mocks"
	"github.com/mchmarny/cloutcheck/pkg/model"
	"github.com/mchmarny/cloutcheck/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const alicePosts = `[
  {"shortCode": "p1", "caption": "Morning run with the team", "likesCount": 120, "commentsCount": 10,
   "timestamp": "2024-05-02T10:00:00Z", "displayUrl": "https://cdn.example.com/p1.jpg"},
  {"shortCode": "p2", "caption": "", "likesCount": 80, "commentsCount": 4,
   "timestamp": "2024-05-01T10:00:00Z", "isVideo": true, "videoUrl": "https://cdn.example.com/p2.mp4"}
]`

var mp4Header = []byte{
	0x00, 0x00, 0x00, 0x18, 'f', 't', 'y', 'p',
	'i', 's', 'o', 'm', 0x00, 0x00, 0x02, 0x00,
	'i', 's', 'o', 'm', 'i', 's', 'o', '2',
}

// fakeDownloader writes one image and one video per creator.
type fakeDownloader struct {
	layout media.Layout
	calls  int
}

func (f *fakeDownloader) Download(_ context.Context, handle string, _ []model.Post) ([]media.Entry, error) {
	f.calls++
	if err := f.layout.Ensure(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))); err != nil {
		return nil, err
	}
	img := f.layout.ImagePath(handle, 1)
	if err := os.WriteFile(img, buf.Bytes(), 0600); err != nil {
		return nil, err
	}
	vid := f.layout.VideoPath(handle, 1)
	if err := os.WriteFile(vid, mp4Header, 0600); err != nil {
		return nil, err
	}
	return []media.Entry{
		{PostID: "p1", Index: 1, Kind: media.EntryImage, Path: img},
		{PostID: "p2", Index: 1, Kind: media.EntryVideo, Path: vid},
	}, nil
}

type fixture struct {
	opts       Options
	deps       Deps
	downloader *fakeDownloader
	db         *data.Store
	reports    *store.FileStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	root := t.TempDir()

	ctrl := gomock.NewController(t)
	text := mocks.NewMockTextClassifier(ctrl)
	text.EXPECT().Toxicity(gomock.Any(), gomock.Any()).Return(adapter.ToxicityScores{Toxicity: 0.1}, nil).AnyTimes()
	text.EXPECT().Sentiment(gomock.Any(), gomock.Any()).Return(0.5, nil).AnyTimes()
	images := mocks.NewMockImageClassifier(ctrl)
	images.EXPECT().NSFW(gomock.Any(), gomock.Any()).Return(0.1, nil).AnyTimes()
	frames := mocks.NewMockFrameExtractor(ctrl)
	frames.EXPECT().Frames(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]string{"frame_0001.jpg", "frame_0002.jpg"}, nil).AnyTimes()

	ta, err := adapter.NewTextAdapter(text)
	require.NoError(t, err)
	ia, err := adapter.NewImageAdapter(images, 0.7)
	require.NoError(t, err)
	va, err := adapter.NewVideoAdapter(frames, images, nil, ta, adapter.VideoOptions{
		Threshold: 0.7,
		MaxFrames: 5,
		TempDir:   t.TempDir(),
	})
	require.NoError(t, err)

	db, err := data.Open(ctx, data.DriverSQLite, filepath.Join(root, "db", data.DataFileName))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	layout := media.NewLayout(filepath.Join(root, "dataset"))
	dl := &fakeDownloader{layout: layout}
	reports := store.NewFileStore(filepath.Join(root, "results"))

	brands := filepath.Join(root, "brands")
	require.NoError(t, os.MkdirAll(brands, 0o755))
	require.NoError(t, brand.SaveProfile(filepath.Join(brands, brand.FileName("Acme")), brand.SampleProfile("Acme")))

	input := filepath.Join(root, "input")
	require.NoError(t, os.MkdirAll(input, 0o755))

	return &fixture{
		opts: Options{
			InputDir:     input,
			RawDir:       filepath.Join(root, "data", "raw"),
			BrandsDir:    brands,
			CleanupMedia: true,
			CleanupMode:  config.CleanupImmediate,
			KeepImages:   true,
			Weights:      map[string]float64{"engagement": 0.3},
		},
		deps: Deps{
			Layout:     layout,
			Downloader: dl,
			Text:       ta,
			Image:      ia,
			Video:      va,
			Posts:      db,
			Reports:    store.Multi{reports, db},
			Ledger:     db,
		},
		downloader: dl,
		db:         db,
		reports:    reports,
	}
}

func (f *fixture) writeInput(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(f.opts.InputDir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0600))
	return p
}

func (f *fixture) orchestrator(t *testing.T) *Orchestrator {
	t.Helper()
	o, err := New(f.opts, f.deps)
	require.NoError(t, err)
	return o
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Options{}, Deps{})
	assert.Error(t, err)

	f := newFixture(t)
	deps := f.deps
	deps.Reports = nil
	_, err = New(f.opts, deps)
	assert.Error(t, err)

	opts := f.opts
	opts.CleanupMode = ""
	o, err := New(opts, f.deps)
	require.NoError(t, err)
	assert.Equal(t, config.CleanupImmediate, o.opts.CleanupMode)
}

func TestDiscover(t *testing.T) {
	f := newFixture(t)
	f.writeInput(t, "bob_posts.json", "[]")
	f.writeInput(t, "alice_6months_posts.json", "[]")
	f.writeInput(t, "notes.txt", "skip")
	require.NoError(t, os.MkdirAll(f.opts.RawDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(f.opts.RawDir, "carol_posts.json"), []byte("[]"), 0600))

	list, err := f.orchestrator(t).Discover()
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "alice", list[0].Handle)
	assert.Equal(t, "bob", list[1].Handle)
	assert.Equal(t, "carol", list[2].Handle)

	f.opts.Creators = []string{"@bob"}
	list, err = f.orchestrator(t).Discover()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "bob", list[0].Handle)
}

func TestRun_EndToEnd(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	input := f.writeInput(t, "alice_posts.json", alicePosts)

	o := f.orchestrator(t)
	o.now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }

	res, err := o.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, res.Processed)
	assert.Empty(t, res.Failed)
	assert.NotEmpty(t, res.RunID)

	// input moved to the raw dir
	assert.NoFileExists(t, input)
	assert.FileExists(t, filepath.Join(f.opts.RawDir, "alice_posts.json"))

	r, err := f.reports.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", r.Username)
	assert.Equal(t, res.RunID, r.RunID)
	assert.Equal(t, "2024-06-01T12:00:00Z", r.AnalysisDate)
	assert.Equal(t, 2, r.PostsAnalyzed)
	assert.Equal(t, 1, r.Text.TextsAnalyzed)
	assert.Equal(t, 2, r.Image.ImagesAnalyzed)
	assert.Equal(t, 1, r.Image.VideosAnalyzed)
	assert.Equal(t, int64(200), r.Engagement.TotalLikes)
	assert.InDelta(t, 100.0, r.Engagement.AvgLikesPerPost, 0.001)
	assert.Greater(t, r.ReputationScore, 0.0)
	assert.NotEmpty(t, r.Rating)
	require.Len(t, r.BrandFits, 1)
	assert.Equal(t, "Acme", r.BrandFits[0].BrandName)
	assert.Equal(t, 0.3, r.Model.Weights["engagement"])

	// database copy and ledger
	fromDB, err := f.db.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, r.ReputationScore, fromDB.ReputationScore)
	done, err := f.db.Processed(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, done)

	// videos removed right after analysis, images kept
	vids, err := f.deps.Layout.Videos("alice")
	require.NoError(t, err)
	assert.Empty(t, vids)
	imgs, err := f.deps.Layout.Images("alice")
	require.NoError(t, err)
	assert.Len(t, imgs, 1)
	assert.Equal(t, 1, f.downloader.calls)
}

func TestRun_SkipsProcessed(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.writeInput(t, "alice_posts.json", alicePosts)

	_, err := f.orchestrator(t).Run(ctx)
	require.NoError(t, err)

	res, err := f.orchestrator(t).Run(ctx)
	require.NoError(t, err)
	assert.Empty(t, res.Processed)
	assert.Equal(t, []string{"alice"}, res.Skipped)

	// forced runs pick the creator up from the raw dir and reuse media
	f.opts.Force = true
	res, err = f.orchestrator(t).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, res.Processed)
	assert.Equal(t, 1, f.downloader.calls)
}

func TestRun_CreatorFailureDoesNotStopBatch(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.writeInput(t, "alice_posts.json", alicePosts)
	f.writeInput(t, "bob_posts.json", `{"not": "a list"}`)
	f.writeInput(t, "carol_posts.json", `[]`)

	res, err := f.orchestrator(t).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, res.Processed)
	require.Len(t, res.Failed, 2)
	assert.Contains(t, res.Failed, "bob")
	assert.Contains(t, res.Failed["carol"], ErrNoPosts.Error())

	_, err = f.reports.Get(ctx, "bob")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRun_NoBrandProfiles(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.opts.BrandsDir = filepath.Join(t.TempDir(), "missing")
	f.writeInput(t, "alice_posts.json", alicePosts)

	res, err := f.orchestrator(t).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, res.Processed)

	r, err := f.reports.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, r.BrandFits)
}

func TestRun_KeepsMediaWhenCleanupDisabled(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.opts.CleanupMedia = false
	f.opts.CleanupMode = config.CleanupNone
	f.writeInput(t, "alice_posts.json", alicePosts)

	_, err := f.orchestrator(t).Run(ctx)
	require.NoError(t, err)

	vids, err := f.deps.Layout.Videos("alice")
	require.NoError(t, err)
	assert.Len(t, vids, 1)
}

func TestRun_Canceled(t *testing.T) {
	f := newFixture(t)
	f.writeInput(t, "alice_posts.json", alicePosts)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := f.orchestrator(t).Run(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
	require.NotNil(t, res)
	assert.Empty(t, res.Processed)
}

func TestRescore(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.writeInput(t, "alice_posts.json", alicePosts)

	_, err := f.orchestrator(t).Run(ctx)
	require.NoError(t, err)

	require.NoError(t, brand.SaveProfile(filepath.Join(f.opts.BrandsDir, brand.FileName("Zeta")), brand.SampleProfile("Zeta")))

	before, err := f.reports.Get(ctx, "alice")
	require.NoError(t, err)

	n, err := Rescore(ctx, f.deps.Reports, f.opts.BrandsDir, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	after, err := f.reports.Get(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, after.BrandFits, 2)
	assert.Equal(t, "Zeta", after.BrandFits[1].BrandName)
	assert.Equal(t, before.ReputationScore, after.ReputationScore)

	_, err = Rescore(ctx, nil, f.opts.BrandsDir, 1)
	assert.Error(t, err)
}

func TestRescore_NoProfilesKeepsFits(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.writeInput(t, "alice_posts.json", alicePosts)

	_, err := f.orchestrator(t).Run(ctx)
	require.NoError(t, err)

	before, err := f.reports.Get(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, before.BrandFits, 1)

	require.NoError(t, os.RemoveAll(f.opts.BrandsDir))

	n, err := Rescore(ctx, f.deps.Reports, f.opts.BrandsDir, 1)
	require.ErrorIs(t, err, brand.ErrNoProfiles)
	assert.Zero(t, n)

	after, err := f.reports.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, before.BrandFits, after.BrandFits)
}

// flakyReports fails Save for one handle and records the others.
type flakyReports struct {
	mu    sync.Mutex
	fail  string
	list  []*model.CreatorReport
	saved []string
}

func (s *flakyReports) Save(_ context.Context, r *model.CreatorReport) error {
	if r.Username == s.fail {
		return errors.New("disk full")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, r.Username)
	return nil
}

func (s *flakyReports) Get(_ context.Context, handle string) (*model.CreatorReport, error) {
	for _, r := range s.list {
		if r.Username == handle {
			return r, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *flakyReports) List(context.Context) ([]*model.CreatorReport, error) {
	return s.list, nil
}

func TestRescore_SaveFailureContinues(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, brand.SaveProfile(filepath.Join(dir, brand.FileName("Acme")), brand.SampleProfile("Acme")))

	reports := &flakyReports{fail: "alice"}
	for _, h := range []string{"alice", "bob", "carol", "dave"} {
		reports.list = append(reports.list, &model.CreatorReport{Username: h, ReputationScore: 80})
	}

	for _, parallel := range []int{1, 3} {
		reports.saved = nil
		n, err := Rescore(context.Background(), reports, dir, parallel)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "alice")
		assert.Contains(t, err.Error(), "disk full")
		assert.Equal(t, 3, n)

		sort.Strings(reports.saved)
		assert.Equal(t, []string{"bob", "carol", "dave"}, reports.saved)
	}
}
