package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/greeddj/go-retrokit/internal/retrokit/arch"
	"github.com/greeddj/go-retrokit/internal/retrokit/helpers"
	"github.com/urfave/cli/v2"
)

const buildbotStable = "https://buildbot.libretro.com/stable"

// Config holds runtime settings for install operations.
type Config struct {
	Verbose bool
	Quiet   bool
	Timeout time.Duration

	Host arch.Info

	DataDir     string
	InstallRoot string
	ResourceDir string
	CatalogFile string

	RetroArchVersion string
	RetroArchURL     string
	CoresBaseURL     string
	CoresPackURL     string
	CrocDBURL        string

	NoCache bool
	Refresh bool

	ConfigPath string
	FileKeys   []string
}

// IsNoCache reports whether catalog cache reads and writes are disabled.
func (c *Config) IsNoCache() bool {
	if c == nil {
		return false
	}
	return c.NoCache
}

// IsRefresh reports whether catalog cache refresh is requested.
func (c *Config) IsRefresh() bool {
	if c == nil {
		return false
	}
	return c.Refresh
}

// DownloadsDir is where raw archives are fetched to.
func (c *Config) DownloadsDir() string {
	return filepath.Join(c.DataDir, helpers.LayoutDownloads)
}

// CacheDir is the root of extraction caches.
func (c *Config) CacheDir() string {
	return filepath.Join(c.DataDir, helpers.LayoutCache)
}

// CoresDir is where installed core libraries live.
func (c *Config) CoresDir() string {
	return filepath.Join(c.InstallRoot, helpers.LayoutCores)
}

// GamesDir is the root of per-game install directories.
func (c *Config) GamesDir() string {
	return filepath.Join(c.InstallRoot, helpers.LayoutGames)
}

// Options captures CLI values before they are merged with the config file.
type Options struct {
	Verbose bool
	Quiet   bool
	Timeout time.Duration
	NoCache bool
	Refresh bool

	ConfigPath string
	Values     map[string]string
	Set        map[string]bool
}

// Build builds Config from CLI flags and retrokit.toml.
func Build(c *cli.Context) (*Config, error) {
	opts := optionsFromCLI(c)
	file, used, err := loadFile(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	info, err := arch.Guess()
	if err != nil {
		return nil, err
	}
	cfg := resolve(opts, file, info)
	if used {
		cfg.ConfigPath = opts.ConfigPath
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// stringFlags are merged between the CLI and the config file.
//
//nolint:gochecknoglobals
var stringFlags = []string{
	"data-dir",
	"install-root",
	"resource-dir",
	"catalog",
	"retroarch-version",
	"retroarch-url",
	"cores-base-url",
	"cores-pack-url",
	"crocdb-url",
}

func optionsFromCLI(c *cli.Context) Options {
	opts := Options{
		Verbose:    c.Bool("verbose"),
		Timeout:    c.Duration("timeout"),
		NoCache:    c.Bool("no-cache"),
		Refresh:    c.Bool("refresh"),
		ConfigPath: c.String("config"),
		Values:     make(map[string]string, len(stringFlags)),
		Set:        make(map[string]bool, len(stringFlags)),
	}
	opts.Quiet = !opts.Verbose && c.Bool("quiet")
	for _, name := range stringFlags {
		opts.Values[name] = c.String(name)
		opts.Set[name] = c.IsSet(name)
	}
	return opts
}

// resolve merges CLI options with the file. An explicitly set flag wins over
// the file and the file wins over flag defaults.
func resolve(opts Options, file fileConfig, info arch.Info) *Config {
	cfg := &Config{
		Verbose: opts.Verbose,
		Quiet:   opts.Quiet,
		Timeout: max(opts.Timeout, helpers.FetchDefaultTimeout),
		NoCache: opts.NoCache,
		Refresh: opts.Refresh,
		Host:    info,
	}
	fromFile := file.values()
	pick := func(name string) string {
		if opts.Set[name] {
			return opts.Values[name]
		}
		if v := fromFile[name]; v != "" {
			cfg.FileKeys = append(cfg.FileKeys, name)
			return v
		}
		return opts.Values[name]
	}

	cfg.DataDir = expandHome(pick("data-dir"))
	cfg.InstallRoot = expandHome(pick("install-root"))
	cfg.ResourceDir = expandHome(pick("resource-dir"))
	cfg.CatalogFile = expandHome(pick("catalog"))
	cfg.RetroArchVersion = strings.TrimPrefix(pick("retroarch-version"), "v")
	cfg.RetroArchURL = pick("retroarch-url")
	cfg.CoresBaseURL = pick("cores-base-url")
	cfg.CoresPackURL = pick("cores-pack-url")
	cfg.CrocDBURL = strings.TrimRight(pick("crocdb-url"), "/")

	base := fmt.Sprintf("%s/%s/%s", buildbotStable, cfg.RetroArchVersion, info.BuildbotPath())
	if cfg.RetroArchURL == "" {
		cfg.RetroArchURL = base + "/" + helpers.RetroArchArchive
	}
	if cfg.CoresBaseURL == "" {
		cfg.CoresBaseURL = base + "/latest/cores"
	}
	if cfg.CoresPackURL == "" {
		cfg.CoresPackURL = base + "/" + helpers.PackArchive
	}
	cfg.CoresBaseURL = strings.TrimRight(cfg.CoresBaseURL, "/")
	return cfg
}

func validate(cfg *Config) error {
	if cfg == nil {
		return helpers.ErrConfigIsNil
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		return helpers.ErrDataDirEmpty
	}
	if strings.TrimSpace(cfg.InstallRoot) == "" {
		return helpers.ErrInstallRootEmpty
	}
	return nil
}

// expandHome replaces a leading "~" with the user's home directory.
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

/*
retrokit.toml

[paths]
data_dir = "~/.cache/go-retrokit"
install_root = "~/RetroKit"
resource_dir = ""
catalog = ""

[sources]
retroarch_version = "1.21.0"
crocdb_url = "https://api.crocdb.net"
*/

// filePaths maps the [paths] section from retrokit.toml.
type filePaths struct {
	DataDir     string `toml:"data_dir"`
	InstallRoot string `toml:"install_root"`
	ResourceDir string `toml:"resource_dir"`
	Catalog     string `toml:"catalog"`
}

// fileSources maps the [sources] section from retrokit.toml.
type fileSources struct {
	RetroArchVersion string `toml:"retroarch_version"`
	RetroArchURL     string `toml:"retroarch_url"`
	CoresBaseURL     string `toml:"cores_base_url"`
	CoresPackURL     string `toml:"cores_pack_url"`
	CrocDBURL        string `toml:"crocdb_url"`
}

// fileConfig represents the parsed retrokit.toml structure.
type fileConfig struct {
	Paths   filePaths   `toml:"paths"`
	Sources fileSources `toml:"sources"`
}

func (f fileConfig) values() map[string]string {
	return map[string]string{
		"data-dir":          f.Paths.DataDir,
		"install-root":      f.Paths.InstallRoot,
		"resource-dir":      f.Paths.ResourceDir,
		"catalog":           f.Paths.Catalog,
		"retroarch-version": f.Sources.RetroArchVersion,
		"retroarch-url":     f.Sources.RetroArchURL,
		"cores-base-url":    f.Sources.CoresBaseURL,
		"cores-pack-url":    f.Sources.CoresPackURL,
		"crocdb-url":        f.Sources.CrocDBURL,
	}
}

// loadFile loads retrokit.toml if it exists. A missing file is not an error.
func loadFile(path string) (fileConfig, bool, error) {
	cfg := fileConfig{}
	if path == "" {
		return cfg, false, nil
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, false, nil
		}
		return cfg, false, fmt.Errorf("failed to stat config %s: %w", path, err)
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, false, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg, true, nil
}
