package commands

import (
	"github.com/greeddj/go-retrokit/cmd/go-retrokit/helpers"
	"github.com/greeddj/go-retrokit/internal/retrokit/app"
	"github.com/greeddj/go-retrokit/internal/retrokit/config"
	"github.com/greeddj/go-retrokit/internal/retrokit/infra"
	"github.com/urfave/cli/v2"
)

// InstallCore returns the CLI command that installs one core.
func InstallCore() *cli.Command {
	return &cli.Command{
		Name:      "install-core",
		Aliases:   []string{"ic"},
		Usage:     "Install a libretro core by id",
		ArgsUsage: "<id>",
		Flags:     flags(helpers.CommonFlags(), helpers.SourceFlags()),
		Action: action(func(c *cli.Context, cfg *config.Config, runtime *infra.Infra) error {
			return app.InstallCore(c.Context, cfg, runtime, c.Args().First())
		}),
	}
}

// InstallCores returns the CLI command that installs every known core.
func InstallCores() *cli.Command {
	return &cli.Command{
		Name:    "install-cores",
		Aliases: []string{"ia"},
		Usage:   "Install all catalog cores",
		Flags: flags(helpers.CommonFlags(), helpers.SourceFlags(), []cli.Flag{
			&cli.BoolFlag{
				Name:    "force",
				Aliases: []string{"f"},
				Usage:   "Reinstall cores that are already present",
				EnvVars: []string{"GO_RETROKIT_FORCE"},
			},
		}),
		Action: action(func(c *cli.Context, cfg *config.Config, runtime *infra.Infra) error {
			return app.InstallCores(c.Context, cfg, runtime, c.Bool("force"))
		}),
	}
}

// UninstallCores returns the CLI command that removes installed cores.
func UninstallCores() *cli.Command {
	return &cli.Command{
		Name:  "uninstall-cores",
		Usage: "Remove all installed cores",
		Flags: flags(helpers.CommonFlags(), helpers.SourceFlags(), []cli.Flag{
			&cli.BoolFlag{
				Name:    "clear-cache",
				Usage:   "Also remove the extracted cores pack",
				EnvVars: []string{"GO_RETROKIT_CLEAR_CACHE"},
			},
		}),
		Action: action(func(c *cli.Context, cfg *config.Config, runtime *infra.Infra) error {
			return app.UninstallCores(c.Context, cfg, runtime, c.Bool("clear-cache"))
		}),
	}
}

// Cores returns the CLI command that lists cores.
func Cores() *cli.Command {
	return &cli.Command{
		Name:    "cores",
		Aliases: []string{"ls"},
		Usage:   "List known, installed and bundled cores",
		Flags:   flags(helpers.CommonFlags(), helpers.CoreFlags()),
		Action: action(func(c *cli.Context, cfg *config.Config, runtime *infra.Infra) error {
			return app.ListCores(cfg, runtime, c.String("platform"), c.Bool("installed"))
		}),
	}
}
