package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/ftpdeploy/cmd/ftpdeploy/commands"
	ferrors "git.home.luguber.info/inful/ftpdeploy/internal/foundation/errors"
	"git.home.luguber.info/inful/ftpdeploy/internal/version"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var cli commands.CLI
	parser, err := newParser(ctx, &cli)
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		return ferrors.ExitFailure
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "ftpdeploy: %v\n", err)
		return ferrors.ExitUsage
	}

	err = kctx.Run(&commands.Global{}, &cli)
	return ferrors.NewCLIErrorAdapter(cli.Verbose, nil).Report(err)
}

func newParser(ctx context.Context, cli *commands.CLI, options ...kong.Option) (*kong.Kong, error) {
	options = append([]kong.Option{
		kong.Name("ftpdeploy"),
		kong.Description("Build a static web export and publish it over FTP or explicit FTPS."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
		kong.BindTo(ctx, (*context.Context)(nil)),
	}, options...)
	return kong.New(cli, options...)
}
