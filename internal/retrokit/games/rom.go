package games

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/greeddj/go-retrokit/internal/retrokit/helpers"
)

// romExtensions is the allow-list used to pick a ROM among extracted files.
//
//nolint:gochecknoglobals
var romExtensions = map[string]struct{}{
	"nes": {}, "snes": {}, "sfc": {}, "smc": {},
	"n64": {}, "z64": {}, "v64": {},
	"gba": {}, "gb": {}, "gbc": {}, "nds": {},
	"iso": {}, "cue": {}, "bin": {},
	"md": {}, "gen": {}, "smd": {}, "gg": {}, "sms": {},
	"pce": {}, "ngp": {}, "ngc": {}, "ws": {}, "wsc": {},
}

// IsROM reports whether name has an allow-listed ROM extension.
func IsROM(name string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	_, ok := romExtensions[ext]
	return ok
}

// findROM returns the first allow-listed file among the immediate entries of
// dir, or the first regular file when none matches.
func findROM(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("%w: %w", helpers.ErrFilesystem, err)
	}
	var first string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if IsROM(e.Name()) {
			return path, nil
		}
		if first == "" {
			first = path
		}
	}
	if first == "" {
		return "", helpers.ErrNoRomInArchive
	}
	return first, nil
}
