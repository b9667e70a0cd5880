package cli

import (
	"context"
	"fmt"

	"github.com/mchmarny/cloutcheck/pkg/pipeline"
	"github.com/urfave/cli/v3"
)

var (
	parallelFlag = &cli.IntFlag{
		Name:  "parallel",
		Usage: "Number of reports rescored concurrently",
		Value: pipeline.DefaultParallel,
	}

	rescoreCmd = &cli.Command{
		Name:   "rescore",
		Usage:  "Recompute brand fits of stored reports against the current brand profiles",
		Action: cmdRescore,
		Flags: []cli.Flag{
			parallelFlag,
		},
	}
)

type rescoreResult struct {
	Reports int    `json:"reports" yaml:"reports"`
	Brands  string `json:"brands_dir" yaml:"brandsDir"`
}

func cmdRescore(ctx context.Context, cmd *cli.Command) error {
	cfg := getConfig(cmd)

	parallel := cmd.Int(parallelFlag.Name)
	if parallel < 1 {
		return fmt.Errorf("invalid --parallel value: %d", parallel)
	}

	reports, err := cfg.Reports(ctx)
	if err != nil {
		return err
	}

	n, err := pipeline.Rescore(ctx, reports, cfg.BrandsDir, int(parallel))
	if err != nil {
		return fmt.Errorf("rescoring reports: %w", err)
	}

	return encode(cfg, rescoreResult{Reports: n, Brands: cfg.BrandsDir})
}
