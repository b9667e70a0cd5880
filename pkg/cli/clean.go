package cli

import (
	"context"
	"fmt"

	"github.com/mchmarny/cloutcheck/pkg/media"
	"github.com/urfave/cli/v3"
)

var (
	allMediaFlag = &cli.BoolFlag{
		Name:  "all",
		Usage: "Remove images as well as videos",
	}

	cleanCreatorFlag = &cli.StringFlag{
		Name:    "creator",
		Aliases: []string{"c"},
		Usage:   "Only clean the media of this creator",
	}

	cleanCmd = &cli.Command{
		Name:   "clean",
		Usage:  "Delete downloaded media and print a storage report",
		Action: cmdClean,
		Flags: []cli.Flag{
			allMediaFlag,
			cleanCreatorFlag,
		},
	}
)

type cleanResult struct {
	Removed media.Removed        `json:"removed" yaml:"removed"`
	Storage *media.StorageReport `json:"storage,omitempty" yaml:"storage,omitempty"`
}

func cmdClean(_ context.Context, cmd *cli.Command) error {
	cfg := getConfig(cmd)
	layout := media.NewLayout(cfg.DatasetDir)
	keepImages := !cmd.Bool(allMediaFlag.Name)

	var (
		res cleanResult
		err error
	)
	if h := cmd.String(cleanCreatorFlag.Name); h != "" {
		res.Removed, err = layout.Cleanup(h, keepImages)
	} else {
		res.Removed, err = layout.CleanupAll(keepImages)
	}
	if err != nil {
		return fmt.Errorf("cleaning media: %w", err)
	}

	if res.Storage, err = layout.Storage(); err != nil {
		return fmt.Errorf("reading storage: %w", err)
	}
	res.Storage.Log()

	return encode(cfg, res)
}
