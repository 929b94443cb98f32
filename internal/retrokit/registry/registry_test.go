package registry

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/greeddj/go-retrokit/internal/retrokit/arch"
	"github.com/greeddj/go-retrokit/internal/retrokit/helpers"
)

//nolint:gochecknoglobals
var linux = arch.Info{Os: "linux", Arch: "x86_64", LibExt: ".so"}

func touch(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.MkdirAll(dir, helpers.DirMod); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte("lib"), helpers.FileMod); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()
	tests := []struct {
		id   string
		want string
	}{
		{id: "nestopia", want: "nes"},
		{id: "mesen-s", want: "nes"},
		{id: "bsnes_hd_beta", want: "snes"},
		{id: "Mupen64Plus_Next", want: "n64"},
		{id: "picodrive", want: "genesis"},
		{id: "gearsystem", want: "sms"},
		{id: "prosystem", want: "atari2600"},
		{id: "fbneo", want: "neogeo"},
		{id: "mame2003_plus", want: "arcade"},
		{id: "gw_libretro.so", want: "gameandwatch"},
		{id: "ppsspp", want: "psp"},
		{id: "something_new", want: "unknown"},
		{id: "", want: "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			t.Parallel()
			if got := Classify(tt.id); got.ID != tt.want {
				t.Fatalf("Classify(%q) = %q, want %q", tt.id, got.ID, tt.want)
			}
		})
	}
	if got := Classify("zzz"); got != Unknown || got.Name != "Multiple Platforms" {
		t.Fatalf("unexpected sentinel: %+v", got)
	}
}

func TestClassifyRuleCount(t *testing.T) {
	t.Parallel()
	if len(rules) != 33 {
		t.Fatalf("expected 33 rules, got %d", len(rules))
	}
}

func TestDefaultCatalog(t *testing.T) {
	t.Parallel()
	c := DefaultCatalog(arch.Info{LibExt: ".dll"})
	entries := c.Entries()
	if len(entries) != 16 {
		t.Fatalf("expected 16 built-in cores, got %d", len(entries))
	}
	psx, ok := c.Lookup("beetle_psx_hw")
	if !ok || psx.Filename != "mednafen_psx_hw_libretro.dll" {
		t.Fatalf("unexpected beetle_psx_hw: %+v", psx)
	}
	bsnes, _ := c.Lookup("bsnes")
	if len(bsnes.AltFilenames) != 5 || bsnes.AltFilenames[0] != "bsnes_hd_beta_libretro.dll" {
		t.Fatalf("unexpected bsnes alternates: %v", bsnes.AltFilenames)
	}
	if rec, ok := c.Recommended("gbc"); !ok || rec.ID != "gambatte_gbc" || rec.Filename != "gambatte_libretro.dll" {
		t.Fatalf("unexpected gbc recommendation: %+v", rec)
	}
	if got := c.ForPlatform("n64"); len(got) != 2 || got[0].ID != "mupen64plus_next" {
		t.Fatalf("unexpected n64 cores: %+v", got)
	}
}

func TestSynthesize(t *testing.T) {
	t.Parallel()
	d := DefaultCatalog(linux).Resolve("pcsx_rearmed")
	if d.Filename != "pcsx_rearmed_libretro.so" {
		t.Fatalf("unexpected filename: %q", d.Filename)
	}
	if d.Name != "pcsx rearmed" || d.Platform != "ps1" {
		t.Fatalf("unexpected descriptor: %+v", d)
	}
	if d.Description != "PS1 emulator core - pcsx rearmed" {
		t.Fatalf("unexpected description: %q", d.Description)
	}
}

func TestInstalledState(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	c := DefaultCatalog(linux)
	bsnes, _ := c.Lookup("bsnes")
	if InstalledState(dir, bsnes) {
		t.Fatalf("expected not installed")
	}
	touch(t, dir, "bsnes_mercury_balanced_libretro.so")
	if !InstalledState(dir, bsnes) {
		t.Fatalf("alternate filename should count as installed")
	}
}

func TestMergedView(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	coresDir := filepath.Join(root, "cores")
	resourceDir := filepath.Join(root, "resources")
	touch(t, coresDir, "snes9x_libretro.so")
	touch(t, coresDir, "fbneo_libretro.so")
	touch(t, coresDir, "mednafen_psx_hw_libretro.so")
	touch(t, coresDir, "notes.txt")
	touch(t, filepath.Join(resourceDir, "cores"), "fbneo_libretro.so")
	touch(t, filepath.Join(resourceDir, "cores"), "dosbox_pure_libretro.so")

	view := DefaultCatalog(linux).MergedView(coresDir, resourceDir)
	if len(view) != 18 {
		t.Fatalf("expected 18 cores, got %d: %+v", len(view), view)
	}
	byID := make(map[string]Core, len(view))
	for _, core := range view {
		if _, dup := byID[core.ID]; dup {
			t.Fatalf("duplicate id %s", core.ID)
		}
		byID[core.ID] = core
	}
	if !byID["snes9x"].Installed || byID["nestopia"].Installed {
		t.Fatalf("unexpected catalog installed flags")
	}
	if !byID["beetle_psx_hw"].Installed {
		t.Fatalf("beetle_psx_hw should be installed via its library name")
	}
	if core := byID["fbneo"]; !core.Installed || core.Platform != "neogeo" {
		t.Fatalf("disk detection should win over resource detection: %+v", core)
	}
	if core := byID["dosbox_pure"]; core.Installed || core.Platform != "dos" {
		t.Fatalf("resource detection should not be installed: %+v", core)
	}
	if view[16].ID != "fbneo" || view[17].ID != "dosbox_pure" {
		t.Fatalf("unexpected order tail: %s, %s", view[16].ID, view[17].ID)
	}
}

func TestInstalledForPlatform(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	c := DefaultCatalog(linux)
	if _, ok := c.InstalledForPlatform(dir, "nes"); ok {
		t.Fatalf("expected nothing installed")
	}
	touch(t, dir, "fceumm_libretro.so")
	if core, ok := c.InstalledForPlatform(dir, "nes"); !ok || core.ID != "fceumm" {
		t.Fatalf("expected fceumm, got %+v", core)
	}
	touch(t, dir, "nestopia_libretro.so")
	if core, ok := c.InstalledForPlatform(dir, "nes"); !ok || core.ID != "nestopia" {
		t.Fatalf("expected recommended nestopia, got %+v", core)
	}
}

func TestLoadCatalog(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "cores.yml")
	content := `cores:
  - id: mesen
    name: Mesen
    platform: nes
    platform_name: Nintendo Entertainment System
    description: Cycle-accurate NES emulator
  - id: stella
    name: Stella 2023
    library: stella2023
    platform: atari2600
    recommended: true
`
	if err := os.WriteFile(path, []byte(content), helpers.FileMod); err != nil {
		t.Fatalf("write: %v", err)
	}
	c, err := LoadCatalog(path, linux)
	if err != nil {
		t.Fatalf("LoadCatalog error: %v", err)
	}
	if len(c.Entries()) != 17 {
		t.Fatalf("expected 17 entries, got %d", len(c.Entries()))
	}
	mesen, ok := c.Lookup("mesen")
	if !ok || mesen.Filename != "mesen_libretro.so" {
		t.Fatalf("unexpected mesen: %+v", mesen)
	}
	stella, _ := c.Lookup("stella")
	if stella.Filename != "stella2023_libretro.so" || stella.Name != "Stella 2023" {
		t.Fatalf("override should replace built-in row: %+v", stella)
	}
}

func TestLoadCatalogInvalid(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
	}{
		{name: "no id", content: "cores:\n  - name: x\n"},
		{name: "duplicate", content: "cores:\n  - id: a\n  - id: a\n"},
		{name: "syntax", content: "cores: [\n"},
	}
	for _, tt := range tests {
		path := filepath.Join(dir, tt.name+".yml")
		if err := os.WriteFile(path, []byte(tt.content), helpers.FileMod); err != nil {
			t.Fatalf("write: %v", err)
		}
		if _, err := LoadCatalog(path, linux); !errors.Is(err, helpers.ErrInvalidCatalog) {
			t.Fatalf("%s: expected ErrInvalidCatalog, got %v", tt.name, err)
		}
	}
}
