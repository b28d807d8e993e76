package commands

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/ftpdeploy/internal/export"
)

// ExportCmd implements the 'export' command: build and stage without deploying.
type ExportCmd struct {
	BuildCommand string `name:"build-command" help:"Command run in app/ to produce app/out" default:"npm run build"`
}

func (e *ExportCmd) Run(ctx context.Context, g *Global, root *CLI) error {
	dir, err := export.Run(ctx, export.Options{
		ProjectRoot: root.ProjectRoot,
		Command:     splitCommand(e.BuildCommand),
		Runner:      g.runner(),
	})
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(g.stdout(), "Staged export in %s\n", dir)
	return nil
}
