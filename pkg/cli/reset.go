package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/mchmarny/cloutcheck/pkg/data"
	"github.com/mchmarny/cloutcheck/pkg/dedup"
	"github.com/urfave/cli/v3"
)

var (
	creatorResetFlag = &cli.StringFlag{
		Name:    "creator",
		Aliases: []string{"c"},
		Usage:   "Only forget that this creator was processed",
	}

	yesFlag = &cli.BoolFlag{
		Name:    "yes",
		Aliases: []string{"y"},
		Usage:   "Do not ask for confirmation",
	}

	resetCmd = &cli.Command{
		Name:   "reset",
		Usage:  "Delete the local database and start fresh",
		Action: cmdReset,
		Flags: []cli.Flag{
			creatorResetFlag,
			yesFlag,
		},
	}
)

func cmdReset(ctx context.Context, cmd *cli.Command) error {
	cfg := getConfig(cmd)

	if h := strings.TrimPrefix(cmd.String(creatorResetFlag.Name), "@"); h != "" {
		db, err := cfg.Data(ctx)
		if err != nil {
			return err
		}
		if err := db.Forget(ctx, h); err != nil {
			return fmt.Errorf("forgetting %s: %w", h, err)
		}
		if cfg.RedisAddr != "" {
			l := dedup.NewLedger(cfg.RedisAddr, "", 0, dedup.DefaultTTL)
			defer l.Close()
			if err := l.Forget(ctx, h); err != nil {
				return fmt.Errorf("forgetting %s in redis: %w", h, err)
			}
		}
		slog.Info("creator will be re-analyzed on the next run", "handle", h)
		return nil
	}

	if cfg.DBDriver != data.DriverSQLite {
		return fmt.Errorf("reset only supports the %s driver, drop the %s database manually", data.DriverSQLite, cfg.DBDriver)
	}
	path := cfg.DSN(data.DataFileName)

	if !cmd.Bool(yesFlag.Name) {
		fmt.Fprintf(cfg.Out, "This will permanently delete all data in %s\n", path)
		fmt.Fprint(cfg.Out, "Are you sure? [y/N]: ")

		answer, err := readLine(cmd.Root().Reader)
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}
		if strings.ToLower(answer) != "y" {
			fmt.Fprintln(cfg.Out, "Aborted.")
			return nil
		}
	}

	// close the DB before deleting the file
	cfg.close()

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("deleting database: %w", err)
	}
	slog.Info("database deleted", "path", path)

	// re-initialize empty database
	if _, err := cfg.Data(ctx); err != nil {
		return fmt.Errorf("re-initializing database: %w", err)
	}

	slog.Info("database re-initialized", "path", path)
	fmt.Fprintln(cfg.Out, "Reset complete.")
	return nil
}
