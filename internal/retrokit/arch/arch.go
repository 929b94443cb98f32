package arch

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/greeddj/go-retrokit/internal/retrokit/helpers"
)

// See: https://buildbot.libretro.com/stable.
//
//nolint:gochecknoglobals
var libretroOsArchMap = map[string]Info{
	"linux:amd64":   {Os: "linux", Arch: "x86_64", LibExt: ".so", Executable: "retroarch"},
	"linux:arm64":   {Os: "linux", Arch: "aarch64", LibExt: ".so", Executable: "retroarch"},
	"linux:arm":     {Os: "linux", Arch: "armv7-neon-hf", LibExt: ".so", Executable: "retroarch"},
	"windows:amd64": {Os: "windows", Arch: "x86_64", LibExt: ".dll", Executable: "retroarch.exe"},
	"windows:386":   {Os: "windows", Arch: "x86", LibExt: ".dll", Executable: "retroarch.exe"},
	"darwin:amd64":  {Os: "osx", Arch: "x86_64", Vendor: "apple", LibExt: ".dylib", Executable: "RetroArch.app"},
	"darwin:arm64":  {Os: "osx", Arch: "arm64", Vendor: "apple", LibExt: ".dylib", Executable: "RetroArch.app"},
}

// Info describes the libretro build flavour for a host.
type Info struct {
	// x86_64, x86, ...
	Arch string
	// windows, linux, osx
	Os string
	// apple, or empty
	Vendor string
	// dot-prefixed library extension
	LibExt string
	// frontend executable name inside the install root
	Executable string
}

// Guess returns Info for the running host.
func Guess() (Info, error) {
	return Lookup(runtime.GOOS, runtime.GOARCH)
}

// Lookup returns Info for a GOOS/GOARCH pair.
func Lookup(goos, goarch string) (Info, error) {
	key := goos + ":" + goarch
	if info, ok := libretroOsArchMap[key]; ok {
		return info, nil
	}
	return Info{}, fmt.Errorf("%w: %s", helpers.ErrUnsupportedPlatform, key)
}

// BuildbotPath returns the buildbot directory path segment, e.g. "windows/x86_64".
func (i Info) BuildbotPath() string {
	parts := make([]string, 0, 3)
	if i.Vendor != "" {
		parts = append(parts, i.Vendor)
	}
	parts = append(parts, i.Os, i.Arch)
	return strings.Join(parts, "/")
}

// CoreFilename returns the library filename for a core base name.
func (i Info) CoreFilename(base string) string {
	return base + helpers.LibretroSuffix + i.LibExt
}
