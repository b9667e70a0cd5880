package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mchmarny/cloutcheck/pkg/auth"
	"github.com/urfave/cli/v3"
)

var (
	deleteTokenFlag = &cli.BoolFlag{
		Name:  "delete",
		Usage: "Remove the stored token",
	}

	authCmd = &cli.Command{
		Name:   "auth",
		Usage:  "Store the inference API token in the OS keychain",
		Action: cmdAuth,
		Flags: []cli.Flag{
			deleteTokenFlag,
		},
	}
)

func cmdAuth(_ context.Context, cmd *cli.Command) error {
	cfg := getConfig(cmd)
	ts := auth.NewTokenStore(cfg.Home)

	if cmd.Bool(deleteTokenFlag.Name) {
		if err := ts.Delete(); err != nil {
			return fmt.Errorf("deleting token: %w", err)
		}
		fmt.Fprintln(cfg.Out, "Token deleted")
		return nil
	}

	fmt.Fprintln(cfg.Out, "1). Create a read token at https://huggingface.co/settings/tokens")
	fmt.Fprint(cfg.Out, "2). Paste it here and hit enter:\n>")

	token, err := readLine(cmd.Root().Reader)
	if err != nil {
		return fmt.Errorf("reading token: %w", err)
	}
	if token == "" {
		return errors.New("no token entered")
	}

	if err := ts.Save(token); err != nil {
		return fmt.Errorf("saving token: %w", err)
	}

	fmt.Fprintln(cfg.Out, "Token saved")
	return nil
}

func readLine(r io.Reader) (string, error) {
	if r == nil {
		r = os.Stdin
	}
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
