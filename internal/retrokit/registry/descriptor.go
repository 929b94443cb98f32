package registry

import (
	"path/filepath"
	"strings"

	"github.com/greeddj/go-retrokit/internal/retrokit/arch"
	"github.com/greeddj/go-retrokit/internal/retrokit/helpers"
)

// Descriptor identifies one installable core. Two descriptors are the same
// core iff their IDs match.
type Descriptor struct {
	ID           string   `yaml:"id"`
	Name         string   `yaml:"name"`
	Platform     string   `yaml:"platform"`
	PlatformName string   `yaml:"platform_name"`
	Description  string   `yaml:"description"`
	Filename     string   `yaml:"filename"`
	AltFilenames []string `yaml:"alt_filenames,omitempty"`
	Recommended  bool     `yaml:"recommended"`
}

// Filenames returns the canonical filename followed by the alternates.
func (d Descriptor) Filenames() []string {
	out := make([]string, 0, 1+len(d.AltFilenames))
	out = append(out, d.Filename)
	return append(out, d.AltFilenames...)
}

// Core is a descriptor with its installed flag computed against a directory.
type Core struct {
	Descriptor
	Installed bool
}

// InstalledState reports whether the canonical or any alternate filename of d
// exists in dir.
func InstalledState(dir string, d Descriptor) bool {
	if dir == "" {
		return false
	}
	for _, name := range d.Filenames() {
		if name != "" && helpers.FileExists(filepath.Join(dir, name)) {
			return true
		}
	}
	return false
}

// Synthesize builds a descriptor for an id that is not in the catalog.
func Synthesize(id string, info arch.Info) Descriptor {
	return synthesize(id, info.CoreFilename(id))
}

func synthesize(id, filename string) Descriptor {
	p := Classify(id)
	name := strings.ReplaceAll(id, "_", " ")
	return Descriptor{
		ID:           id,
		Name:         name,
		Platform:     p.ID,
		PlatformName: p.Name,
		Description:  p.Description + " - " + name,
		Filename:     filename,
	}
}
