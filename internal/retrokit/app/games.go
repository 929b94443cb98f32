package app

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/greeddj/go-retrokit/internal/retrokit/config"
	"github.com/greeddj/go-retrokit/internal/retrokit/crocdb"
	"github.com/greeddj/go-retrokit/internal/retrokit/infra"
)

// InstallGame installs a catalog game by slug.
func InstallGame(ctx context.Context, cfg *config.Config, runtime *infra.Infra, slug string) error {
	return report(runtime, runInstallGame(ctx, cfg, runtime, slug))
}

func runInstallGame(ctx context.Context, cfg *config.Config, runtime *infra.Infra, slug string) error {
	runtime.Output.Printf("🚀 install game %s", slug)
	start := time.Now()
	s, err := openSession(ctx, cfg, runtime)
	if err != nil {
		return err
	}
	desc, err := s.pipeline().Install(ctx, slug)
	// cached catalog entries are saved even when the install failed
	saveErr := s.close(ctx, true)
	if err != nil {
		return err
	}
	if saveErr != nil {
		return saveErr
	}
	runtime.Output.PersistentPrintf("✅ Installed: %s [%s] -> %s", desc.Title, desc.Platform, desc.AssetPath)
	runtime.Output.PersistentPrintf("🤩 All done. Took %s", time.Since(start).Round(time.Second))
	return nil
}

// SearchQuery holds catalog search filters.
type SearchQuery struct {
	Text      string
	Platforms []string
	Regions   []string
	Max       int
}

// Search queries the catalog and prints one row per hit.
func Search(ctx context.Context, cfg *config.Config, runtime *infra.Infra, query SearchQuery) error {
	return report(runtime, runSearch(ctx, cfg, runtime, query))
}

func runSearch(ctx context.Context, cfg *config.Config, runtime *infra.Infra, query SearchQuery) error {
	runtime.Output.Printf("🔎 search %q", query.Text)
	client := newCatalogClient(cfg, runtime, nil)
	res, err := client.Search(ctx, crocdb.SearchRequest{
		SearchKey:  strings.TrimSpace(query.Text),
		Platforms:  query.Platforms,
		Regions:    query.Regions,
		MaxResults: query.Max,
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(runtime.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "SLUG\tTITLE\tPLATFORM\tREGIONS\tSIZE")
	for _, entry := range res.Results {
		size := "-"
		if link, ok := entry.FirstLink(); ok && link.Size > 0 {
			size = humanize.Bytes(uint64(link.Size))
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			entry.Slug, entry.Title, entry.Platform, strings.Join(entry.Regions, ","), size)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	runtime.Output.PersistentPrintf("✅ Found: %d of %d (page %d/%d)", res.CurrentResults, res.TotalResults, res.CurrentPage, res.TotalPages)
	return nil
}

// ListGames prints the installed games recorded in the library.
func ListGames(ctx context.Context, cfg *config.Config, runtime *infra.Infra) error {
	return report(runtime, runListGames(ctx, cfg, runtime))
}

func runListGames(ctx context.Context, cfg *config.Config, runtime *infra.Infra) error {
	s, err := openSession(ctx, cfg, runtime)
	if err != nil {
		return err
	}
	games := s.store.GamesSnapshot()
	if err := s.close(ctx, false); err != nil {
		return err
	}

	w := tabwriter.NewWriter(runtime.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "SLUG\tTITLE\tPLATFORM\tINSTALLED\tROM")
	for _, g := range games {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			g.Slug, g.Title, g.Platform, humanize.Time(g.InstalledAt), g.AssetPath)
	}
	return w.Flush()
}
