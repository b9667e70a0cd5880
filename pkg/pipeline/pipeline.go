// Package pipeline runs the per-creator analysis: preprocess, media,
// item analysis, aggregation, scoring, brand fit, persistence and
// cleanup. Creators are processed one at a time and a failure in one
// never stops the batch.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mchmarny/cloutcheck/pkg/adapter"
	"github.com/mchmarny/cloutcheck/pkg/brand"
	"github.com/mchmarny/cloutcheck/pkg/config"
	"github.com/mchmarny/cloutcheck/pkg/ingest"
	"github.com/mchmarny/cloutcheck/pkg/media"
	"github.com/mchmarny/cloutcheck/pkg/model"
	"github.com/mchmarny/cloutcheck/pkg/publish"
	"github.com/mchmarny/cloutcheck/pkg/score"
	"github.com/mchmarny/cloutcheck/pkg/store"
)

// ErrNoPosts is returned when a creator has no usable posts.
var ErrNoPosts = errors.New("no posts")

// Ledger records which creators have been processed.
type Ledger interface {
	Processed(ctx context.Context, handle string) (bool, error)
	MarkProcessed(ctx context.Context, handle, runID string) error
}

// PostStore keeps the normalized post table of each creator.
type PostStore interface {
	SavePosts(ctx context.Context, handle string, posts []model.Post) error
	GetPosts(ctx context.Context, handle string) ([]model.Post, error)
}

// Downloader materializes creator media on disk.
type Downloader interface {
	Download(ctx context.Context, handle string, posts []model.Post) ([]media.Entry, error)
}

// Options control a pipeline run.
type Options struct {
	InputDir     string
	RawDir       string
	BrandsDir    string
	Creators     []string
	Force        bool
	CleanupMedia bool
	CleanupMode  string
	KeepImages   bool
	Weights      map[string]float64
}

// Deps are the collaborators of the orchestrator. Publisher and Ledger
// are optional.
type Deps struct {
	Layout     media.Layout
	Downloader Downloader
	Text       *adapter.TextAdapter
	Image      *adapter.ImageAdapter
	Video      *adapter.VideoAdapter
	Posts      PostStore
	Reports    store.ReportStore
	Ledger     Ledger
	Publisher  publish.Publisher
}

// BatchResult summarizes a run.
type BatchResult struct {
	RunID     string            `json:"run_id" yaml:"runId"`
	Processed []string          `json:"processed" yaml:"processed"`
	Skipped   []string          `json:"skipped" yaml:"skipped"`
	Failed    map[string]string `json:"failed" yaml:"failed"`
	Duration  time.Duration     `json:"duration" yaml:"duration"`
}

// Orchestrator drives the creator state machine.
type Orchestrator struct {
	opts Options
	deps Deps
	now  func() time.Time
}

// New validates the dependencies and creates an orchestrator.
func New(opts Options, deps Deps) (*Orchestrator, error) {
	switch {
	case deps.Downloader == nil:
		return nil, errors.New("media downloader required")
	case deps.Text == nil || deps.Image == nil || deps.Video == nil:
		return nil, errors.New("text, image and video adapters required")
	case deps.Posts == nil:
		return nil, errors.New("post store required")
	case deps.Reports == nil:
		return nil, errors.New("report store required")
	}
	if deps.Publisher == nil {
		deps.Publisher = publish.Noop{}
	}
	if opts.CleanupMode == "" {
		opts.CleanupMode = config.CleanupImmediate
	}
	return &Orchestrator{opts: opts, deps: deps, now: time.Now}, nil
}

// Source is one creator input file.
type Source struct {
	Handle string
	Path   string
}

// Discover lists creator input files in the input dir, and in the raw
// dir for creators whose input was already moved there. Sources are
// sorted by handle and filtered by Options.Creators when set.
func (o *Orchestrator) Discover() ([]Source, error) {
	byHandle := make(map[string]string)
	for _, dir := range []string{o.opts.RawDir, o.opts.InputDir} {
		if dir == "" {
			continue
		}
		files, err := filepath.Glob(filepath.Join(dir, "*"+ingest.PostsFileSuffix))
		if err != nil {
			return nil, fmt.Errorf("listing %s: %w", dir, err)
		}
		for _, f := range files {
			byHandle[ingest.HandleFromPath(f)] = f
		}
	}

	want := make(map[string]bool, len(o.opts.Creators))
	for _, c := range o.opts.Creators {
		want[strings.TrimPrefix(strings.TrimSpace(c), "@")] = true
	}

	list := make([]Source, 0, len(byHandle))
	for h, p := range byHandle {
		if len(want) > 0 && !want[h] {
			continue
		}
		list = append(list, Source{Handle: h, Path: p})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Handle < list[j].Handle })
	return list, nil
}

// Run processes every discovered creator.
func (o *Orchestrator) Run(ctx context.Context) (*BatchResult, error) {
	start := o.now()
	res := &BatchResult{
		RunID:     uuid.NewString(),
		Processed: make([]string, 0),
		Skipped:   make([]string, 0),
		Failed:    make(map[string]string),
	}

	sources, err := o.Discover()
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		slog.Warn("no creator files found", "dir", o.opts.InputDir, "pattern", "*"+ingest.PostsFileSuffix)
	}
	slog.Info("creators found", "count", len(sources), "run", res.RunID)

	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			res.Duration = o.now().Sub(start)
			return res, err
		}

		if o.skip(ctx, src.Handle) {
			res.Skipped = append(res.Skipped, src.Handle)
			continue
		}

		log := slog.With("handle", src.Handle)
		log.Info("processing creator")
		r, err := o.processCreator(ctx, src, res.RunID)
		if err != nil {
			log.Error("creator failed", "error", err)
			res.Failed[src.Handle] = err.Error()
			continue
		}
		log.Info("creator complete", "score", r.ReputationScore, "rating", r.Rating, "brands", len(r.BrandFits))
		res.Processed = append(res.Processed, src.Handle)
	}

	res.Duration = o.now().Sub(start)
	slog.Info("batch complete",
		"processed", len(res.Processed),
		"skipped", len(res.Skipped),
		"failed", len(res.Failed),
		"duration", res.Duration.Round(time.Millisecond))
	return res, nil
}

func (o *Orchestrator) skip(ctx context.Context, handle string) bool {
	if o.opts.Force || o.deps.Ledger == nil {
		return false
	}
	done, err := o.deps.Ledger.Processed(ctx, handle)
	if err != nil {
		slog.Warn("ledger lookup failed, processing anyway", "handle", handle, "error", err)
		return false
	}
	if done {
		slog.Info("creator already processed, skipping", "handle", handle)
	}
	return done
}

// processCreator runs every stage for one creator.
func (o *Orchestrator) processCreator(ctx context.Context, src Source, runID string) (*model.CreatorReport, error) {
	posts, err := o.preprocess(ctx, src)
	if err != nil {
		return nil, err
	}

	if err := o.ensureMedia(ctx, src.Handle, posts); err != nil {
		return nil, err
	}

	texts := o.analyzeText(ctx, posts)
	visuals := o.analyzeImages(ctx, src.Handle)
	vVisuals, vTexts, err := o.analyzeVideos(ctx, src.Handle)
	if err != nil {
		return nil, err
	}
	visuals = append(visuals, vVisuals...)
	texts = append(texts, vTexts...)

	summary := score.Aggregate(texts, visuals, posts)
	rep := score.ScoreReputation(summary)
	persisted := summary.Rounded()

	r := &model.CreatorReport{
		Username:        src.Handle,
		RunID:           runID,
		AnalysisDate:    o.now().UTC().Format(time.RFC3339),
		PostsAnalyzed:   len(posts),
		CreatorSummary:  persisted,
		ReputationScore: model.Round(rep.Score, 2),
		Rating:          rep.Rating,
		BrandFits:       o.fitBrands(persisted),
		Model:           model.ModelInfo{Version: score.ModelVersion, Weights: o.opts.Weights},
	}

	if err := o.persist(ctx, r); err != nil {
		return nil, err
	}

	o.cleanup(src.Handle)
	return r, nil
}

// preprocess moves the input to the raw dir, normalizes it into the post
// table and reads the table back.
func (o *Orchestrator) preprocess(ctx context.Context, src Source) ([]model.Post, error) {
	raw, err := o.moveRaw(src.Path)
	if err != nil {
		return nil, err
	}

	posts, err := ingest.LoadFile(raw, src.Handle)
	if err != nil {
		return nil, fmt.Errorf("preprocessing %s: %w", raw, err)
	}
	if err := o.deps.Posts.SavePosts(ctx, src.Handle, posts); err != nil {
		return nil, fmt.Errorf("saving posts: %w", err)
	}

	table, err := o.deps.Posts.GetPosts(ctx, src.Handle)
	if err != nil {
		return nil, fmt.Errorf("loading posts: %w", err)
	}
	if len(table) == 0 {
		return nil, fmt.Errorf("%s: %w", src.Handle, ErrNoPosts)
	}
	slog.Debug("posts loaded", "handle", src.Handle, "count", len(table))
	return table, nil
}

func (o *Orchestrator) moveRaw(path string) (string, error) {
	if o.opts.RawDir == "" {
		return path, nil
	}
	dst := filepath.Join(o.opts.RawDir, filepath.Base(path))
	if filepath.Clean(dst) == filepath.Clean(path) {
		return path, nil
	}
	if _, err := os.Stat(dst); err == nil {
		slog.Debug("raw file already present", "path", dst)
		return dst, nil
	}
	if err := os.MkdirAll(o.opts.RawDir, 0o755); err != nil {
		return "", fmt.Errorf("creating raw dir: %w", err)
	}
	if err := os.Rename(path, dst); err != nil {
		return "", fmt.Errorf("moving %s to raw dir: %w", path, err)
	}
	slog.Info("moved input to raw dir", "path", dst)
	return dst, nil
}

func (o *Orchestrator) ensureMedia(ctx context.Context, handle string, posts []model.Post) error {
	if o.deps.Layout.HasMedia(handle) {
		slog.Info("media already downloaded, skipping", "handle", handle)
		return nil
	}
	if _, err := o.deps.Downloader.Download(ctx, handle, posts); err != nil {
		return fmt.Errorf("downloading media: %w", err)
	}
	return nil
}

func (o *Orchestrator) analyzeText(ctx context.Context, posts []model.Post) []model.TextSignal {
	list := make([]model.TextSignal, 0, len(posts))
	for _, p := range posts {
		text := strings.TrimSpace(p.Text())
		if text == "" {
			continue
		}
		list = append(list, o.deps.Text.Analyze(ctx, p.ID, text))
	}
	slog.Debug("text analyzed", "signals", len(list))
	return list
}

func (o *Orchestrator) analyzeImages(ctx context.Context, handle string) []model.VisualSignal {
	files, err := o.deps.Layout.Images(handle)
	if err != nil {
		slog.Warn("listing images failed", "handle", handle, "error", err)
		return nil
	}
	list := make([]model.VisualSignal, 0, len(files))
	for _, f := range files {
		list = append(list, o.deps.Image.Analyze(ctx, f))
	}
	slog.Debug("images analyzed", "handle", handle, "signals", len(list))
	return list
}

func (o *Orchestrator) analyzeVideos(ctx context.Context, handle string) ([]model.VisualSignal, []model.TextSignal, error) {
	files, err := o.deps.Layout.Videos(handle)
	if err != nil {
		slog.Warn("listing videos failed", "handle", handle, "error", err)
		return nil, nil, nil
	}

	var (
		visuals []model.VisualSignal
		texts   []model.TextSignal
	)
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		res := o.deps.Video.Analyze(ctx, f)
		if res.Visual != nil {
			visuals = append(visuals, *res.Visual)
		}
		if res.Transcript != nil {
			texts = append(texts, *res.Transcript)
		}
		if o.opts.CleanupMode == config.CleanupImmediate {
			if _, err := media.RemoveFile(f); err != nil {
				slog.Warn("failed to delete video", "path", f, "error", err)
			}
		}
	}
	slog.Debug("videos analyzed", "handle", handle, "videos", len(files), "visuals", len(visuals))
	return visuals, texts, nil
}

// fitBrands loads the profiles for this creator so a profile edited or
// broken mid-batch only affects that brand.
func (o *Orchestrator) fitBrands(s model.CreatorSummary) []model.FitResult {
	if o.opts.BrandsDir == "" {
		return make([]model.FitResult, 0)
	}
	return brand.FitAll(loadProfiles(o.opts.BrandsDir), s)
}

func (o *Orchestrator) persist(ctx context.Context, r *model.CreatorReport) error {
	if err := o.deps.Reports.Save(ctx, r); err != nil {
		return fmt.Errorf("saving report: %w", err)
	}
	if err := o.deps.Publisher.Publish(ctx, r); err != nil {
		slog.Warn("publishing report failed", "handle", r.Username, "error", err)
	}
	if o.deps.Ledger != nil {
		if err := o.deps.Ledger.MarkProcessed(ctx, r.Username, r.RunID); err != nil {
			slog.Warn("ledger update failed", "handle", r.Username, "error", err)
		}
	}
	return nil
}

func (o *Orchestrator) cleanup(handle string) {
	if !o.opts.CleanupMedia || o.opts.CleanupMode == config.CleanupNone {
		return
	}
	removed, err := o.deps.Layout.Cleanup(handle, o.opts.KeepImages)
	if err != nil {
		slog.Warn("media cleanup incomplete", "handle", handle, "error", err)
	}
	slog.Info("media cleaned up", "handle", handle, "files", removed.Files, "bytes", removed.Bytes)

	report, err := o.deps.Layout.Storage()
	if err != nil {
		slog.Warn("storage report failed", "error", err)
		return
	}
	report.Log()
}
