package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mchmarny/cloutcheck/pkg/brand"
	"github.com/mchmarny/cloutcheck/pkg/config"
	"github.com/mchmarny/cloutcheck/pkg/report"
	"github.com/urfave/cli/v3"
)

var (
	brandNameFlag = &cli.StringFlag{
		Name:     "name",
		Usage:    "Brand name",
		Required: true,
	}

	overwriteFlag = &cli.BoolFlag{
		Name:  "overwrite",
		Usage: "Replace an existing profile",
	}

	brandCmd = &cli.Command{
		Name:    "brand",
		Aliases: []string{"b"},
		Usage:   "Manage brand profiles",
		Commands: []*cli.Command{
			{
				Name:   "init",
				Usage:  "Write a starter brand profile",
				Action: cmdBrandInit,
				Flags:  []cli.Flag{brandNameFlag, overwriteFlag},
			},
			{
				Name:   "list",
				Usage:  "List the brand profiles that load",
				Action: cmdBrandList,
			},
		},
	}
)

func cmdBrandInit(_ context.Context, cmd *cli.Command) error {
	cfg := getConfig(cmd)
	name := strings.TrimSpace(cmd.String(brandNameFlag.Name))
	if name == "" {
		return errors.New("brand name required")
	}

	if _, _, err := config.EnsureDir(cfg.BrandsDir); err != nil {
		return err
	}

	path := filepath.Join(cfg.BrandsDir, brand.FileName(name))
	if _, err := os.Stat(path); err == nil && !cmd.Bool(overwriteFlag.Name) {
		return fmt.Errorf("brand profile %s already exists (use --overwrite to replace)", path)
	}

	if err := brand.SaveProfile(path, brand.SampleProfile(name)); err != nil {
		return err
	}
	slog.Info("brand profile created", "brand", name, "path", path)
	fmt.Fprintln(cfg.Out, path)
	return nil
}

func cmdBrandList(_ context.Context, cmd *cli.Command) error {
	cfg := getConfig(cmd)
	list, errs := brand.LoadProfiles(cfg.BrandsDir)
	for _, err := range errs {
		slog.Error("brand profile not loaded", "error", err)
	}
	return report.Profiles(cfg.Out, cfg.Format, list)
}
