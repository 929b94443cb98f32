package app

import (
	"context"
	"time"

	"github.com/greeddj/go-retrokit/internal/retrokit/config"
	"github.com/greeddj/go-retrokit/internal/retrokit/infra"
)

// InstallRetroArch installs the configured RetroArch version and prepares the cores pack.
func InstallRetroArch(ctx context.Context, cfg *config.Config, runtime *infra.Infra) error {
	return report(runtime, runInstallRetroArch(ctx, cfg, runtime))
}

func runInstallRetroArch(ctx context.Context, cfg *config.Config, runtime *infra.Infra) error {
	runtime.Output.Printf("🚀 install RetroArch %s", cfg.RetroArchVersion)
	start := time.Now()
	s, err := openSession(ctx, cfg, runtime)
	if err != nil {
		return err
	}
	res, err := s.retroarch().Install(ctx)
	saveErr := s.close(ctx, true)
	if err != nil {
		return err
	}
	if saveErr != nil {
		return saveErr
	}
	if res.PackErr != nil {
		runtime.Output.PersistentPrintf("⚠️ Cores pack is not ready: %s", res.PackErr)
	}
	runtime.Output.PersistentPrintf("✅ Installed: RetroArch %s -> %s", res.Status.Version, res.Status.Executable)
	runtime.Output.PersistentPrintf("🤩 All done. Took %s", time.Since(start).Round(time.Second))
	return nil
}

// Status prints the RetroArch install state and the cores pack readiness.
func Status(ctx context.Context, cfg *config.Config, runtime *infra.Infra) error {
	return report(runtime, runStatus(ctx, cfg, runtime))
}

func runStatus(ctx context.Context, cfg *config.Config, runtime *infra.Infra) error {
	s, err := openSession(ctx, cfg, runtime)
	if err != nil {
		return err
	}
	meta := s.store.MetaSnapshot()
	games := len(s.store.GamesSnapshot())
	st, statusErr := s.retroarch().Status()
	if err := s.close(ctx, false); err != nil {
		return err
	}
	if statusErr != nil {
		return statusErr
	}

	out := runtime.Output
	if st.Installed {
		out.PersistentPrintf("✅ RetroArch %s: %s", orUnknown(st.Version), st.Executable)
	} else {
		out.PersistentPrintf("❌ RetroArch is not installed in %s", cfg.InstallRoot)
	}
	if st.UpdateAvailable {
		out.PersistentPrintf("⚠️ Update available: %s -> %s", orUnknown(st.Version), st.Wanted)
	}
	if st.PackReady {
		out.PersistentPrintf("✅ Cores pack cache is ready")
	} else {
		out.PersistentPrintf("⚠️ Cores pack cache is not prepared")
	}
	installed := 0
	for _, core := range s.catalog.MergedView(cfg.CoresDir(), "") {
		if core.Installed {
			installed++
		}
	}
	out.PersistentPrintf("📦 Cores installed: %d in %s", installed, st.CoresDir)
	out.PersistentPrintf("🎮 Games installed: %d", games)
	if !meta.LastSnapshot.IsZero() {
		out.Debugf("last snapshot: %s", meta.LastSnapshot.Format(time.RFC3339))
	}
	return nil
}

func orUnknown(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
