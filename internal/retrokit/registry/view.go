package registry

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/greeddj/go-retrokit/internal/retrokit/helpers"
)

// ScanDirectory lists libraries in dir that the catalog does not know and
// synthesizes descriptors for them. Missing directories yield nothing.
func (c *Catalog) ScanDirectory(dir string, installed bool) []Core {
	if dir == "" {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	suffix := helpers.LibretroSuffix + c.info.LibExt
	var out []Core
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(strings.ToLower(name), strings.ToLower(suffix)) {
			continue
		}
		id := name[:len(name)-len(suffix)]
		if id == "" || c.knows(id, name) {
			continue
		}
		out = append(out, Core{Descriptor: synthesize(id, name), Installed: installed})
	}
	return out
}

// MergedView lists catalog cores with installed flags computed against
// coresDir, then unknown libraries found in coresDir, then libraries offered by
// resourceDir. Entries are unique by id; the first occurrence wins.
func (c *Catalog) MergedView(coresDir, resourceDir string) []Core {
	out := make([]Core, 0, len(c.entries))
	seen := make(map[string]struct{}, len(c.entries))
	add := func(core Core) {
		if _, ok := seen[core.ID]; ok {
			return
		}
		seen[core.ID] = struct{}{}
		out = append(out, core)
	}

	for _, d := range c.entries {
		add(Core{Descriptor: d, Installed: InstalledState(coresDir, d)})
	}
	for _, core := range c.ScanDirectory(coresDir, true) {
		add(core)
	}
	if resourceDir != "" {
		for _, dir := range []string{resourceDir, filepath.Join(resourceDir, helpers.LayoutCores)} {
			for _, core := range c.ScanDirectory(dir, false) {
				add(core)
			}
		}
	}
	return out
}

// Recommended returns the recommended catalog core for platform.
func (c *Catalog) Recommended(platform string) (Descriptor, bool) {
	for _, d := range c.entries {
		if d.Platform == platform && d.Recommended {
			return d, true
		}
	}
	return Descriptor{}, false
}

// ForPlatform lists catalog cores for platform in catalog order.
func (c *Catalog) ForPlatform(platform string) []Descriptor {
	var out []Descriptor
	for _, d := range c.entries {
		if d.Platform == platform {
			out = append(out, d)
		}
	}
	return out
}

// InstalledForPlatform returns an installed core for platform, preferring a
// recommended one.
func (c *Catalog) InstalledForPlatform(coresDir, platform string) (Core, bool) {
	var first *Core
	for _, core := range c.MergedView(coresDir, "") {
		if core.Platform != platform || !core.Installed {
			continue
		}
		if core.Recommended {
			return core, true
		}
		if first == nil {
			first = &core
		}
	}
	if first == nil {
		return Core{}, false
	}
	return *first, true
}
