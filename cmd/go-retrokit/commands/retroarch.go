package commands

import (
	"github.com/greeddj/go-retrokit/cmd/go-retrokit/helpers"
	"github.com/greeddj/go-retrokit/internal/retrokit/app"
	"github.com/greeddj/go-retrokit/internal/retrokit/config"
	"github.com/greeddj/go-retrokit/internal/retrokit/infra"
	"github.com/urfave/cli/v2"
)

// InstallRetroArch returns the CLI command that installs the RetroArch frontend.
func InstallRetroArch() *cli.Command {
	return &cli.Command{
		Name:  "install-retroarch",
		Usage: "Install RetroArch and prepare the cores pack",
		Flags: flags(helpers.CommonFlags(), helpers.SourceFlags()),
		Action: action(func(c *cli.Context, cfg *config.Config, runtime *infra.Infra) error {
			return app.InstallRetroArch(c.Context, cfg, runtime)
		}),
	}
}

// Status returns the CLI command that reports install state.
func Status() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show RetroArch, cores pack and library status",
		Flags: flags(helpers.CommonFlags(), helpers.SourceFlags()),
		Action: action(func(c *cli.Context, cfg *config.Config, runtime *infra.Infra) error {
			return app.Status(c.Context, cfg, runtime)
		}),
	}
}
