package registry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/greeddj/go-retrokit/internal/retrokit/arch"
	"github.com/greeddj/go-retrokit/internal/retrokit/helpers"
	"gopkg.in/yaml.v3"
)

// entry is a host independent catalog row. Library names omit the
// "_libretro<ext>" suffix.
type entry struct {
	ID           string   `yaml:"id"`
	Name         string   `yaml:"name"`
	Platform     string   `yaml:"platform"`
	PlatformName string   `yaml:"platform_name"`
	Description  string   `yaml:"description"`
	Library      string   `yaml:"library"`
	Alternates   []string `yaml:"alternates,omitempty"`
	Recommended  bool     `yaml:"recommended"`
}

//nolint:gochecknoglobals
var builtin = []entry{
	{ID: "nestopia", Name: "Nestopia UE", Platform: "nes", PlatformName: "Nintendo Entertainment System", Description: "Accurate NES emulator", Library: "nestopia", Recommended: true},
	{ID: "fceumm", Name: "FCEUmm", Platform: "nes", PlatformName: "Nintendo Entertainment System", Description: "Fast and compatible NES emulator", Library: "fceumm"},
	{ID: "snes9x", Name: "Snes9x", Platform: "snes", PlatformName: "Super Nintendo", Description: "Accurate and fast SNES emulator", Library: "snes9x", Recommended: true},
	{
		ID: "bsnes", Name: "bsnes", Platform: "snes", PlatformName: "Super Nintendo",
		Description: "Cycle-accurate SNES emulator (high CPU usage)", Library: "bsnes",
		Alternates: []string{"bsnes_hd_beta", "bsnes_mercury_accuracy", "bsnes_accuracy", "bsnes_mercury_balanced", "bsnes_balanced"},
	},
	{ID: "mupen64plus_next", Name: "Mupen64Plus-Next", Platform: "n64", PlatformName: "Nintendo 64", Description: "Modern N64 emulator", Library: "mupen64plus_next", Recommended: true},
	{ID: "parallel_n64", Name: "ParaLLEl N64", Platform: "n64", PlatformName: "Nintendo 64", Description: "Alternative N64 emulator", Library: "parallel_n64"},
	{ID: "gambatte", Name: "Gambatte", Platform: "gb", PlatformName: "Game Boy / Game Boy Color", Description: "Accurate GB/GBC emulator", Library: "gambatte", Recommended: true},
	{ID: "gambatte_gbc", Name: "Gambatte", Platform: "gbc", PlatformName: "Game Boy Color", Description: "Accurate GB/GBC emulator", Library: "gambatte", Recommended: true},
	{ID: "mgba", Name: "mGBA", Platform: "gba", PlatformName: "Game Boy Advance", Description: "Modern and accurate GBA emulator", Library: "mgba", Recommended: true},
	{ID: "vba_next", Name: "VBA Next", Platform: "gba", PlatformName: "Game Boy Advance", Description: "Fast GBA emulator", Library: "vba_next"},
	{ID: "genesis_plus_gx", Name: "Genesis Plus GX", Platform: "genesis", PlatformName: "Sega Genesis / Mega Drive", Description: "Accurate Genesis/Mega Drive emulator", Library: "genesis_plus_gx", Recommended: true},
	{ID: "picodrive", Name: "PicoDrive", Platform: "genesis", PlatformName: "Sega Genesis / Mega Drive", Description: "Fast Genesis emulator", Library: "picodrive"},
	{ID: "swanstation", Name: "SwanStation", Platform: "ps1", PlatformName: "PlayStation 1", Description: "Modern PS1 emulator with enhancements", Library: "swanstation", Recommended: true},
	{ID: "beetle_psx_hw", Name: "Beetle PSX HW", Platform: "ps1", PlatformName: "PlayStation 1", Description: "Accurate PS1 emulator with hardware rendering", Library: "mednafen_psx_hw"},
	{ID: "genesis_plus_gx_sms", Name: "Genesis Plus GX", Platform: "sms", PlatformName: "Sega Master System", Description: "Accurate SMS emulator", Library: "genesis_plus_gx", Recommended: true},
	{ID: "stella", Name: "Stella", Platform: "atari2600", PlatformName: "Atari 2600", Description: "Atari 2600 emulator", Library: "stella", Recommended: true},
}

// Catalog is the ordered list of known cores for one host.
type Catalog struct {
	info    arch.Info
	entries []Descriptor
}

// DefaultCatalog returns the built-in catalog with filenames for info.
func DefaultCatalog(info arch.Info) *Catalog {
	return newCatalog(info, builtin)
}

func newCatalog(info arch.Info, rows []entry) *Catalog {
	c := &Catalog{info: info, entries: make([]Descriptor, 0, len(rows))}
	for _, row := range rows {
		c.put(row.descriptor(info))
	}
	return c
}

func (e entry) descriptor(info arch.Info) Descriptor {
	library := e.Library
	if library == "" {
		library = e.ID
	}
	alts := make([]string, 0, len(e.Alternates))
	for _, alt := range e.Alternates {
		alts = append(alts, info.CoreFilename(alt))
	}
	if len(alts) == 0 {
		alts = nil
	}
	return Descriptor{
		ID:           e.ID,
		Name:         e.Name,
		Platform:     e.Platform,
		PlatformName: e.PlatformName,
		Description:  e.Description,
		Filename:     info.CoreFilename(library),
		AltFilenames: alts,
		Recommended:  e.Recommended,
	}
}

// put replaces the entry with the same id or appends d.
func (c *Catalog) put(d Descriptor) {
	for i := range c.entries {
		if c.entries[i].ID == d.ID {
			c.entries[i] = d
			return
		}
	}
	c.entries = append(c.entries, d)
}

/*
cores.yml

cores:
  - id: mesen
    name: Mesen
    platform: nes
    platform_name: Nintendo Entertainment System
    description: Cycle-accurate NES emulator
    library: mesen
    recommended: false
*/

type catalogFile struct {
	Cores []entry `yaml:"cores"`
}

// LoadCatalog reads a YAML override file on top of the built-in catalog.
// Entries with a known id replace the built-in row, others are appended.
func LoadCatalog(path string, info arch.Info) (*Catalog, error) {
	c := DefaultCatalog(info)
	if strings.TrimSpace(path) == "" {
		return c, nil
	}
	//nolint:gosec // path is a user-provided catalog file.
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s does not exist", helpers.ErrInvalidCatalog, path)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", helpers.ErrInvalidCatalog, filepath.Base(path), err)
	}
	seen := make(map[string]struct{}, len(file.Cores))
	for i, row := range file.Cores {
		row.ID = strings.TrimSpace(row.ID)
		if row.ID == "" {
			return nil, fmt.Errorf("%w: entry %d has no id", helpers.ErrInvalidCatalog, i)
		}
		if _, dup := seen[row.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %q", helpers.ErrInvalidCatalog, row.ID)
		}
		seen[row.ID] = struct{}{}
		d := row.descriptor(info)
		if d.Platform == "" {
			p := Classify(row.ID)
			d.Platform, d.PlatformName = p.ID, p.Name
		}
		if d.Name == "" {
			d.Name = strings.ReplaceAll(row.ID, "_", " ")
		}
		c.put(d)
	}
	return c, nil
}

// Info returns the host the catalog filenames were built for.
func (c *Catalog) Info() arch.Info {
	return c.info
}

// Entries returns a copy of the catalog in order.
func (c *Catalog) Entries() []Descriptor {
	out := make([]Descriptor, len(c.entries))
	copy(out, c.entries)
	return out
}

// Lookup returns the catalog entry for id.
func (c *Catalog) Lookup(id string) (Descriptor, bool) {
	for _, d := range c.entries {
		if d.ID == id {
			return d, true
		}
	}
	return Descriptor{}, false
}

// Resolve returns the catalog entry for id or a synthesized descriptor.
func (c *Catalog) Resolve(id string) Descriptor {
	if d, ok := c.Lookup(id); ok {
		return d
	}
	return Synthesize(id, c.info)
}

// knows reports whether a scanned library belongs to a catalog entry, by id
// or by any of its filenames.
func (c *Catalog) knows(id, filename string) bool {
	for _, d := range c.entries {
		if d.ID == id {
			return true
		}
		for _, name := range d.Filenames() {
			if strings.EqualFold(name, filename) {
				return true
			}
		}
	}
	return false
}
