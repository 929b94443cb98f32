package commands

import (
	"strings"

	"github.com/greeddj/go-retrokit/cmd/go-retrokit/helpers"
	"github.com/greeddj/go-retrokit/internal/retrokit/app"
	"github.com/greeddj/go-retrokit/internal/retrokit/config"
	"github.com/greeddj/go-retrokit/internal/retrokit/infra"
	"github.com/urfave/cli/v2"
)

const defaultSearchResults = 20

// InstallGame returns the CLI command that installs a catalog game.
func InstallGame() *cli.Command {
	return &cli.Command{
		Name:      "install-game",
		Aliases:   []string{"ig"},
		Usage:     "Download and install a game by catalog slug",
		ArgsUsage: "<slug>",
		Flags:     flags(helpers.CommonFlags(), helpers.SourceFlags(), helpers.CatalogFlags()),
		Action: action(func(c *cli.Context, cfg *config.Config, runtime *infra.Infra) error {
			return app.InstallGame(c.Context, cfg, runtime, c.Args().First())
		}),
	}
}

// Search returns the CLI command that searches the game catalog.
func Search() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search the game catalog",
		ArgsUsage: "<text>",
		Flags: flags(helpers.CommonFlags(), helpers.SourceFlags(), []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "platform",
				Aliases: []string{"p"},
				Usage:   "Platform id filter, repeatable",
			},
			&cli.StringSliceFlag{
				Name:  "region",
				Usage: "Region filter, repeatable",
			},
			&cli.IntFlag{
				Name:  "max",
				Usage: "Maximum number of results",
				Value: defaultSearchResults,
			},
		}),
		Action: action(func(c *cli.Context, cfg *config.Config, runtime *infra.Infra) error {
			return app.Search(c.Context, cfg, runtime, app.SearchQuery{
				Text:      strings.Join(c.Args().Slice(), " "),
				Platforms: c.StringSlice("platform"),
				Regions:   c.StringSlice("region"),
				Max:       c.Int("max"),
			})
		}),
	}
}

// Games returns the CLI command that lists installed games.
func Games() *cli.Command {
	return &cli.Command{
		Name:  "games",
		Usage: "List installed games",
		Flags: helpers.CommonFlags(),
		Action: action(func(c *cli.Context, cfg *config.Config, runtime *infra.Infra) error {
			return app.ListGames(c.Context, cfg, runtime)
		}),
	}
}
