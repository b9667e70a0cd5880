package cli

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/mchmarny/cloutcheck/pkg/adapter"
	"github.com/mchmarny/cloutcheck/pkg/dedup"
	"github.com/mchmarny/cloutcheck/pkg/inference"
	"github.com/mchmarny/cloutcheck/pkg/media"
	"github.com/mchmarny/cloutcheck/pkg/net"
	"github.com/mchmarny/cloutcheck/pkg/pipeline"
	"github.com/mchmarny/cloutcheck/pkg/publish"
	"github.com/mchmarny/cloutcheck/pkg/report"
	"github.com/urfave/cli/v3"
)

const rawDirName = "raw"

var (
	inputDirFlag = &cli.StringFlag{
		Name:  "input",
		Usage: "Directory with {handle}_posts.json scraper files (default: $INPUT_DIR)",
	}

	creatorFlag = &cli.StringSliceFlag{
		Name:    "creator",
		Aliases: []string{"c"},
		Usage:   "Creator handle to process (can be specified multiple times)",
	}

	forceFlag = &cli.BoolFlag{
		Name:  "force",
		Usage: "Re-analyze creators that were already processed",
	}

	runCmd = &cli.Command{
		Name:  "run",
		Usage: "Analyze creators and score their reputation and brand fit",
		UsageText: `cloutcheck run                          # every new creator in $INPUT_DIR
   cloutcheck run --creator alice          # one creator
   cloutcheck run --creator alice --force  # re-analyze a processed creator`,
		Action: cmdRun,
		Flags: []cli.Flag{
			inputDirFlag,
			creatorFlag,
			forceFlag,
		},
	}
)

func cmdRun(ctx context.Context, cmd *cli.Command) error {
	cfg := getConfig(cmd)
	if err := cfg.ValidateForAnalysis(); err != nil {
		return err
	}

	opts := pipeline.Options{
		InputDir:     cfg.InputDir,
		RawDir:       filepath.Join(cfg.DataDir, rawDirName),
		BrandsDir:    cfg.BrandsDir,
		Creators:     cmd.StringSlice(creatorFlag.Name),
		Force:        cmd.Bool(forceFlag.Name),
		CleanupMedia: cfg.CleanupMedia,
		CleanupMode:  cfg.CleanupMode,
		KeepImages:   cfg.KeepImages,
		Weights:      cfg.FusionWeights(),
	}
	if v := cmd.String(inputDirFlag.Name); v != "" {
		opts.InputDir = v
	}

	deps, closer, err := buildDeps(ctx, cfg)
	if err != nil {
		return err
	}
	defer closer()

	o, err := pipeline.New(opts, deps)
	if err != nil {
		return fmt.Errorf("creating pipeline: %w", err)
	}

	res, err := o.Run(ctx)
	if res != nil {
		if perr := printBatch(cfg, res); perr != nil {
			slog.Error("printing results", "error", perr)
		}
	}
	return err
}

// buildDeps wires the pipeline collaborators from the configuration.
// The returned func releases optional connections.
func buildDeps(ctx context.Context, cfg *appConfig) (pipeline.Deps, func(), error) {
	var deps pipeline.Deps
	closers := make([]func(), 0)
	closer := func() {
		for _, c := range closers {
			c()
		}
	}

	client, err := inference.NewClient(ctx, inference.Config{
		BaseURL:        cfg.InferenceURL,
		Token:          cfg.Token,
		ToxicityModel:  cfg.ToxicityModel,
		SentimentModel: cfg.SentimentModel,
		NSFWModel:      cfg.NSFWModel,
		ASRModel:       cfg.ASRModel,
		Timeout:        cfg.InferenceTimeout,
		MaxRetries:     cfg.MaxRetries,
	})
	if err != nil {
		return deps, closer, fmt.Errorf("creating inference client: %w", err)
	}

	if deps.Text, err = adapter.NewTextAdapter(client); err != nil {
		return deps, closer, err
	}
	if deps.Image, err = adapter.NewImageAdapter(client, cfg.NSFWThreshold); err != nil {
		return deps, closer, err
	}
	deps.Video, err = adapter.NewVideoAdapter(media.NewFFmpeg(cfg.VideoFPS), client, client, deps.Text, adapter.VideoOptions{
		Threshold: cfg.VideoNSFWThreshold,
		MaxFrames: cfg.MaxFrames,
	})
	if err != nil {
		return deps, closer, err
	}

	deps.Layout = media.NewLayout(cfg.DatasetDir)
	if err := deps.Layout.Ensure(); err != nil {
		return deps, closer, err
	}
	fetcher, err := net.NewDownloader(cfg.DownloadTimeout, cfg.MaxRetries)
	if err != nil {
		return deps, closer, fmt.Errorf("creating downloader: %w", err)
	}
	deps.Downloader = media.NewDownloader(deps.Layout, fetcher)

	db, err := cfg.Data(ctx)
	if err != nil {
		return deps, closer, err
	}
	deps.Posts = db
	if deps.Reports, err = cfg.Reports(ctx); err != nil {
		return deps, closer, err
	}

	deps.Ledger = db
	if cfg.RedisAddr != "" {
		l := dedup.NewLedger(cfg.RedisAddr, "", 0, dedup.DefaultTTL)
		if err := l.Ping(ctx); err != nil {
			slog.Warn("redis ledger unavailable, using database", "address", cfg.RedisAddr, "error", err)
			_ = l.Close()
		} else {
			slog.Debug("using redis ledger", "address", cfg.RedisAddr)
			deps.Ledger = l
			closers = append(closers, func() { _ = l.Close() })
		}
	}

	deps.Publisher = publish.Noop{}
	if cfg.MinIOEndpoint != "" {
		p, err := publish.NewMinIO(publish.Config{
			Endpoint:  cfg.MinIOEndpoint,
			AccessKey: cfg.MinIOAccessKey,
			SecretKey: cfg.MinIOSecretKey,
			Bucket:    cfg.MinIOBucket,
			Secure:    cfg.MinIOSecure,
		})
		if err != nil {
			return deps, closer, err
		}
		if err := p.EnsureBucket(ctx); err != nil {
			slog.Warn("report publishing disabled", "endpoint", cfg.MinIOEndpoint, "error", err)
		} else {
			deps.Publisher = p
		}
	}

	return deps, closer, nil
}

func printBatch(cfg *appConfig, res *pipeline.BatchResult) error {
	if cfg.Format != report.FormatTable {
		return report.Encode(cfg.Out, cfg.Format, res)
	}

	rows := make([][]string, 0, len(res.Processed)+len(res.Skipped)+len(res.Failed))
	for _, h := range res.Processed {
		rows = append(rows, []string{h, "processed", ""})
	}
	for _, h := range res.Skipped {
		rows = append(rows, []string{h, "skipped", "already processed"})
	}
	failed := make([]string, 0, len(res.Failed))
	for h := range res.Failed {
		failed = append(failed, h)
	}
	sort.Strings(failed)
	for _, h := range failed {
		rows = append(rows, []string{h, "failed", strings.TrimSpace(res.Failed[h])})
	}

	report.Table(cfg.Out, []string{"Creator", "Status", "Detail"}, rows)
	fmt.Fprintf(cfg.Out, "\nrun %s completed in %s\n", res.RunID, res.Duration.Round(time.Millisecond))
	return nil
}
