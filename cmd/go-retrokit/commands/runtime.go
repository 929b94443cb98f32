package commands

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/greeddj/go-retrokit/cmd/go-retrokit/helpers"
	"github.com/greeddj/go-retrokit/internal/progress"
	"github.com/greeddj/go-retrokit/internal/retrokit/config"
	"github.com/greeddj/go-retrokit/internal/retrokit/fetch"
	"github.com/greeddj/go-retrokit/internal/retrokit/infra"
	"github.com/urfave/cli/v2"
)

// action builds config, progress output and runtime, then runs fn.
func action(fn func(c *cli.Context, cfg *config.Config, runtime *infra.Infra) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg, err := config.Build(c)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "❌ Error: %s\n", err.Error())
			return err
		}
		p := progress.New(cfg.Verbose, cfg.Quiet)
		if cfg.Verbose {
			log.SetOutput(p)
		} else {
			log.SetOutput(io.Discard)
		}
		defer p.Close()
		runtime := infra.New(p, p, fetch.New(cfg.Timeout, helpers.UserAgent), fetch.NewDownloader(cfg.Timeout, helpers.UserAgent))
		if cfg.Verbose {
			runtime.WithLogger(p)
		}
		runtime.DebugConfig(cfg)
		return fn(c, cfg, runtime)
	}
}

func flags(groups ...[]cli.Flag) []cli.Flag {
	var out []cli.Flag
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}
