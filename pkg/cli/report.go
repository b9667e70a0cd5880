package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mchmarny/cloutcheck/pkg/data"
	"github.com/mchmarny/cloutcheck/pkg/model"
	"github.com/mchmarny/cloutcheck/pkg/report"
	"github.com/mchmarny/cloutcheck/pkg/store"
	"github.com/urfave/cli/v3"
)

var (
	showCreatorFlag = &cli.StringFlag{
		Name:     "creator",
		Aliases:  []string{"c"},
		Usage:    "Creator handle",
		Required: true,
	}

	reportCmd = &cli.Command{
		Name:    "report",
		Aliases: []string{"r"},
		Usage:   "Show persisted creator reports",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List the latest report of every creator",
				Action: cmdReportList,
			},
			{
				Name:   "show",
				Usage:  "Show one creator report with its score history",
				Action: cmdReportShow,
				Flags:  []cli.Flag{showCreatorFlag},
			},
		},
	}
)

type creatorDetail struct {
	Report  *model.CreatorReport `json:"report" yaml:"report"`
	History []*data.HistoryEntry `json:"history" yaml:"history"`
}

func cmdReportList(ctx context.Context, cmd *cli.Command) error {
	cfg := getConfig(cmd)
	reports, err := cfg.Reports(ctx)
	if err != nil {
		return err
	}
	list, err := reports.List(ctx)
	if err != nil {
		return fmt.Errorf("listing reports: %w", err)
	}
	if list == nil {
		list = make([]*model.CreatorReport, 0)
	}
	return report.Reports(cfg.Out, cfg.Format, list)
}

func cmdReportShow(ctx context.Context, cmd *cli.Command) error {
	cfg := getConfig(cmd)
	handle := strings.TrimPrefix(strings.TrimSpace(cmd.String(showCreatorFlag.Name)), "@")

	reports, err := cfg.Reports(ctx)
	if err != nil {
		return err
	}
	r, err := reports.Get(ctx, handle)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("no report for %s, run `cloutcheck run --creator %s` first", handle, handle)
		}
		return err
	}

	db, err := cfg.Data(ctx)
	if err != nil {
		return err
	}
	history, err := db.ScoreHistory(ctx, handle)
	if err != nil {
		return fmt.Errorf("loading score history: %w", err)
	}

	if cfg.Format != report.FormatTable {
		return report.Encode(cfg.Out, cfg.Format, creatorDetail{Report: r, History: history})
	}

	if err := report.Report(cfg.Out, cfg.Format, r); err != nil {
		return err
	}
	if len(history) < 2 {
		return nil
	}
	rows := make([][]string, 0, len(history))
	for _, h := range history {
		rows = append(rows, []string{h.AnalysisDate, fmt.Sprintf("%.2f", h.ReputationScore), report.Rating(h.Rating), h.RunID})
	}
	fmt.Fprintln(cfg.Out)
	report.Table(cfg.Out, []string{"Analyzed", "Score", "Rating", "Run"}, rows)
	return nil
}
