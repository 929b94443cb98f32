package app

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/greeddj/go-retrokit/internal/retrokit/config"
	"github.com/greeddj/go-retrokit/internal/retrokit/cores"
	"github.com/greeddj/go-retrokit/internal/retrokit/helpers"
	"github.com/greeddj/go-retrokit/internal/retrokit/infra"
	"github.com/greeddj/go-retrokit/internal/retrokit/registry"
)

// InstallCore installs a single core by id.
func InstallCore(ctx context.Context, cfg *config.Config, runtime *infra.Infra, id string) error {
	return report(runtime, runInstallCore(ctx, cfg, runtime, id))
}

func runInstallCore(ctx context.Context, cfg *config.Config, runtime *infra.Infra, id string) error {
	runtime.Output.Printf("🚀 install core %s", id)
	start := time.Now()
	s, err := openSession(ctx, cfg, runtime)
	if err != nil {
		return err
	}
	res, err := s.orchestrator().Install(ctx, id)
	if err != nil {
		_ = s.close(ctx, false)
		return err
	}
	if err := s.close(ctx, true); err != nil {
		return err
	}
	runtime.Output.PersistentPrintf("✅ Installed: %s (%s) via %s", res.Core.ID, res.Core.Filename, res.Strategy)
	runtime.Output.PersistentPrintf("🤩 All done. Took %s", time.Since(start).Round(time.Second))
	return nil
}

// InstallCores installs every core of the merged view.
func InstallCores(ctx context.Context, cfg *config.Config, runtime *infra.Infra, force bool) error {
	return report(runtime, runInstallCores(ctx, cfg, runtime, force))
}

func runInstallCores(ctx context.Context, cfg *config.Config, runtime *infra.Infra, force bool) error {
	runtime.Output.Printf("🚀 install all cores")
	start := time.Now()
	s, err := openSession(ctx, cfg, runtime)
	if err != nil {
		return err
	}
	res, err := s.orchestrator().InstallAll(ctx, force)
	saveErr := s.close(ctx, true)
	if err != nil {
		return err
	}
	if saveErr != nil {
		return saveErr
	}

	return batchOutcome(runtime, res, start)
}

// batchOutcome prints the batch summary. The batch fails only when no core
// was installed or skipped.
func batchOutcome(runtime *infra.Infra, res cores.InstallResult, start time.Time) error {
	for _, item := range res.Errors {
		runtime.Output.PersistentPrintf("❌ Failed: %s error: %s", item.ID, item.Message)
	}
	took := time.Since(start).Round(time.Second)
	if len(res.Errors) == 0 {
		runtime.Output.PersistentPrintf("✅ Installed: %d, skipped: %d", res.Installed, res.Skipped)
		runtime.Output.PersistentPrintf("🤩 All done. Took %s", took)
		return nil
	}
	if res.Installed+res.Skipped == 0 {
		runtime.Output.PersistentPrintf("⚠️ Completed with errors: %d failed. Took %s", len(res.Errors), took)
		return fmt.Errorf("%w for %d cores: %w", helpers.ErrInstallationFailed, len(res.Errors), res.Err())
	}
	runtime.Output.PersistentPrintf("⚠️ Completed with errors: %d failed, installed: %d, skipped: %d. Took %s",
		len(res.Errors), res.Installed, res.Skipped, took)
	return nil
}

// UninstallCores removes every installed core library.
func UninstallCores(ctx context.Context, cfg *config.Config, runtime *infra.Infra, clearCache bool) error {
	return report(runtime, runUninstallCores(ctx, cfg, runtime, clearCache))
}

func runUninstallCores(ctx context.Context, cfg *config.Config, runtime *infra.Infra, clearCache bool) error {
	runtime.Output.Printf("🧹 uninstall cores")
	start := time.Now()
	s, err := openSession(ctx, cfg, runtime)
	if err != nil {
		return err
	}
	removed, err := s.orchestrator().UninstallAll(clearCache)
	saveErr := s.close(ctx, true)
	if err != nil {
		return err
	}
	if saveErr != nil {
		return saveErr
	}
	runtime.Output.PersistentPrintf("✅ Removed: %d cores", removed)
	if clearCache {
		runtime.Output.PersistentPrintf("✅ Cores pack cache cleared")
	}
	runtime.Output.PersistentPrintf("🤩 All done. Took %s", time.Since(start).Round(time.Second))
	return nil
}

// ListCores prints the merged core view, or the cores of one platform.
func ListCores(cfg *config.Config, runtime *infra.Infra, platform string, installedOnly bool) error {
	return report(runtime, runListCores(cfg, runtime, platform, installedOnly))
}

func runListCores(cfg *config.Config, runtime *infra.Infra, platform string, installedOnly bool) error {
	catalog, err := registry.LoadCatalog(cfg.CatalogFile, cfg.Host)
	if err != nil {
		return err
	}
	coresDir := cfg.CoresDir()
	platform = strings.TrimSpace(platform)

	if platform != "" {
		if rec, ok := catalog.Recommended(platform); ok {
			runtime.Output.PersistentPrintf("⭐ Recommended for %s: %s", platform, rec.ID)
		}
		if core, ok := catalog.InstalledForPlatform(coresDir, platform); ok {
			runtime.Output.PersistentPrintf("✅ Installed for %s: %s", platform, core.ID)
		}
	}

	w := tabwriter.NewWriter(runtime.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tPLATFORM\tFILENAME\tINSTALLED\tRECOMMENDED")
	for _, core := range catalog.MergedView(coresDir, cfg.ResourceDir) {
		if platform != "" && core.Platform != platform {
			continue
		}
		if installedOnly && !core.Installed {
			continue
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			core.ID, core.Platform, core.Filename, yesNo(core.Installed), yesNo(core.Recommended))
	}
	return w.Flush()
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
