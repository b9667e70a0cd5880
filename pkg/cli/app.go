package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/mchmarny/cloutcheck/pkg/auth"
	"github.com/mchmarny/cloutcheck/pkg/config"
	"github.com/mchmarny/cloutcheck/pkg/data"
	"github.com/mchmarny/cloutcheck/pkg/logging"
	"github.com/mchmarny/cloutcheck/pkg/report"
	"github.com/mchmarny/cloutcheck/pkg/store"
	"github.com/urfave/cli/v3"
)

const (
	appConfigKey = "app-config"
)

var (
	version = "v0.0.1-default"
	commit  = ""
	date    = ""

	debugFlag = &cli.BoolFlag{
		Name:  "debug",
		Usage: "Prints verbose logs (optional, default: false)",
	}

	homeFlag = &cli.StringFlag{
		Name:    "home",
		Usage:   "Directory for the database, token and state (default: $HOME/.cloutcheck)",
		Sources: cli.EnvVars("CLOUTCHECK_HOME"),
	}

	formatFlag = &cli.StringFlag{
		Name:  "format",
		Usage: "Output format [json, yaml, table]",
		Value: report.FormatJSON,
	}
)

// Execute creates and runs the CLI application.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp(os.Stdout).Run(ctx, os.Args); err != nil {
		slog.Error("fatal error", "error", err)
		stop()
		os.Exit(1)
	}
}

type appConfig struct {
	*config.Config
	Format string
	Out    io.Writer

	store *data.Store
}

func getConfig(cmd *cli.Command) *appConfig {
	return cmd.Root().Metadata[appConfigKey].(*appConfig)
}

// Data opens the SQL store on first use.
func (c *appConfig) Data(ctx context.Context) (*data.Store, error) {
	if c.store != nil {
		return c.store, nil
	}
	s, err := data.Open(ctx, c.DBDriver, c.DSN(data.DataFileName))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	c.store = s
	return s, nil
}

// Reports returns the report store: result files plus the database.
func (c *appConfig) Reports(ctx context.Context) (store.ReportStore, error) {
	db, err := c.Data(ctx)
	if err != nil {
		return nil, err
	}
	return store.Multi{store.NewFileStore(c.ResultsDir), db}, nil
}

func (c *appConfig) close() {
	if c.store != nil {
		if err := c.store.Close(); err != nil {
			slog.Debug("closing database", "error", err)
		}
		c.store = nil
	}
}

func newApp(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:     config.AppName,
		Version:  fmt.Sprintf("%s (%s - %s)", version, commit, date),
		Usage:    "Brand safety and brand fit scoring for social media creators",
		Writer:   out,
		Metadata: map[string]any{},
		Flags: []cli.Flag{
			debugFlag,
			homeFlag,
			formatFlag,
		},
		Commands: []*cli.Command{
			runCmd,
			rescoreCmd,
			reportCmd,
			brandCmd,
			cleanCmd,
			authCmd,
			serverCmd,
			resetCmd,
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return ctx, err
			}
			cfg.Out = out
			cmd.Metadata[appConfigKey] = cfg
			return ctx, nil
		},
		After: func(_ context.Context, cmd *cli.Command) error {
			if cfg, ok := cmd.Metadata[appConfigKey].(*appConfig); ok {
				cfg.close()
			}
			return nil
		},
	}
}

func loadConfig(cmd *cli.Command) (*appConfig, error) {
	c, err := config.Load()
	if err != nil {
		return nil, err
	}

	level := c.LogLevel
	if cmd.Bool(debugFlag.Name) {
		level = "debug"
	}
	logging.SetDefaultCLILogger(level)

	format, err := report.ParseFormat(cmd.String(formatFlag.Name))
	if err != nil {
		return nil, err
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	if err := resolveHome(c, cmd.String(homeFlag.Name)); err != nil {
		return nil, err
	}

	if c.Token == "" {
		t, err := auth.NewTokenStore(c.Home).Get()
		switch {
		case err == nil:
			c.Token = t
		case errors.Is(err, auth.ErrNoToken):
			slog.Debug("no stored inference token")
		default:
			slog.Warn("reading stored inference token", "error", err)
		}
	}

	return &appConfig{Config: c, Format: format}, nil
}

func resolveHome(c *config.Config, flag string) error {
	if flag != "" {
		c.Home = flag
	}
	if c.Home == "" {
		home, _, err := config.GetOrCreateHomeDir(config.AppName)
		if err != nil {
			return err
		}
		c.Home = home
		return nil
	}
	home, _, err := config.EnsureDir(filepath.Clean(c.Home))
	if err != nil {
		return err
	}
	c.Home = home
	return nil
}

func encode(cfg *appConfig, v any) error {
	return report.Encode(cfg.Out, cfg.Format, v)
}
