package helpers

import (
	"github.com/urfave/cli/v2"
)

// CommonFlags defines shared CLI flags for all commands.
func CommonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:    "verbose",
			Usage:   "Verbose output",
			EnvVars: []string{"GO_RETROKIT_VERBOSE"},
		},
		&cli.BoolFlag{
			Name:    "quiet",
			Aliases: []string{"q"},
			Usage:   "Quiet mode, not working with verbose",
			EnvVars: []string{"GO_RETROKIT_QUIET"},
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to retrokit.toml file",
			Value:   defaultConfigPath,
			EnvVars: []string{"GO_RETROKIT_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "data-dir",
			Usage:   "Directory for downloads, extraction cache and the library store",
			Value:   defaultDataDir(),
			EnvVars: []string{"GO_RETROKIT_DATA_DIR"},
		},
		&cli.StringFlag{
			Name:    "install-root",
			Usage:   "RetroArch install root, cores and games live below it",
			Value:   defaultInstallRoot(),
			EnvVars: []string{"GO_RETROKIT_INSTALL_ROOT"},
		},
		&cli.StringFlag{
			Name:    "resource-dir",
			Usage:   "Read-only directory with bundled core libraries",
			EnvVars: []string{"GO_RETROKIT_RESOURCE_DIR"},
		},
		&cli.StringFlag{
			Name:    "catalog",
			Usage:   "YAML file overriding the built-in core catalog",
			EnvVars: []string{"GO_RETROKIT_CATALOG"},
		},
		&cli.DurationFlag{
			Name:    "timeout",
			Usage:   "Timeout duration",
			Value:   defaultTimeout,
			EnvVars: []string{"GO_RETROKIT_TIMEOUT"},
		},
	}
}

// SourceFlags defines CLI flags for remote sources.
func SourceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "retroarch-version",
			Usage:   "RetroArch release to install",
			Value:   defaultRetroArchVersion,
			EnvVars: []string{"GO_RETROKIT_RETROARCH_VERSION"},
		},
		&cli.StringFlag{
			Name:    "retroarch-url",
			Usage:   "RetroArch bundle URL, derived from the version and host when empty",
			EnvVars: []string{"GO_RETROKIT_RETROARCH_URL"},
		},
		&cli.StringFlag{
			Name:    "cores-base-url",
			Usage:   "Base URL of per-core archives",
			EnvVars: []string{"GO_RETROKIT_CORES_BASE_URL"},
		},
		&cli.StringFlag{
			Name:    "cores-pack-url",
			Usage:   "URL of the shared cores pack",
			EnvVars: []string{"GO_RETROKIT_CORES_PACK_URL"},
		},
		&cli.StringFlag{
			Name:    "crocdb-url",
			Usage:   "Game catalog API URL",
			Value:   defaultCrocDBURL,
			EnvVars: []string{"GO_RETROKIT_CROCDB_URL"},
		},
	}
}

// CatalogFlags defines CLI flags for the game catalog cache.
func CatalogFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:    "no-cache",
			Usage:   "Disable the catalog entry cache",
			EnvVars: []string{"GO_RETROKIT_NO_CACHE"},
		},
		&cli.BoolFlag{
			Name:    "refresh",
			Usage:   "Refetch catalog entries, ignoring cached ones",
			EnvVars: []string{"GO_RETROKIT_REFRESH"},
		},
	}
}

// CoreFlags defines CLI flags for core listing.
func CoreFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "platform",
			Aliases: []string{"p"},
			Usage:   "Only list cores for a platform id, e.g. snes",
		},
		&cli.BoolFlag{
			Name:  "installed",
			Usage: "Only list installed cores",
		},
	}
}
