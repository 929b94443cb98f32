package games

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/greeddj/go-retrokit/internal/retrokit/archive"
	"github.com/greeddj/go-retrokit/internal/retrokit/crocdb"
	"github.com/greeddj/go-retrokit/internal/retrokit/download"
	"github.com/greeddj/go-retrokit/internal/retrokit/helpers"
	"github.com/greeddj/go-retrokit/internal/retrokit/output"
	"github.com/greeddj/go-retrokit/internal/retrokit/store"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// EntrySource resolves a catalog slug to an entry.
type EntrySource interface {
	Entry(ctx context.Context, slug string) (crocdb.Entry, error)
}

// Fetcher streams a URL to a file.
type Fetcher interface {
	Fetch(ctx context.Context, req download.Request) (download.Result, error)
}

// CoverFetcher downloads cover art.
type CoverFetcher interface {
	FetchCover(ctx context.Context, url, dst string) (string, error)
}

// Library records installed games.
type Library interface {
	SetGame(rec store.GameRecord)
}

// Descriptor is the outcome of a game install, also written as game.yml.
type Descriptor struct {
	Slug        string    `yaml:"slug"`
	Title       string    `yaml:"title"`
	Platform    string    `yaml:"platform"`
	Regions     []string  `yaml:"regions,omitempty"`
	AssetPath   string    `yaml:"asset_path"`
	CoverPath   string    `yaml:"cover_path,omitempty"`
	GameDir     string    `yaml:"game_dir"`
	SourceURL   string    `yaml:"source_url"`
	InstalledAt time.Time `yaml:"installed_at"`
}

// Deps wires a Pipeline.
type Deps struct {
	Source   EntrySource
	Fetcher  Fetcher
	Covers   CoverFetcher
	Library  Library
	GamesDir string
	Sink     output.Sink
	Log      zerolog.Logger
}

// Pipeline installs catalog games: download, unpack, ROM selection and cover art.
type Pipeline struct {
	source   EntrySource
	fetcher  Fetcher
	covers   CoverFetcher
	library  Library
	gamesDir string
	sink     output.Sink
	log      zerolog.Logger
	now      func() time.Time
}

// New builds a Pipeline from deps.
func New(deps Deps) *Pipeline {
	sink := deps.Sink
	if sink == nil {
		sink = output.Discard
	}
	return &Pipeline{
		source:   deps.Source,
		fetcher:  deps.Fetcher,
		covers:   deps.Covers,
		library:  deps.Library,
		gamesDir: deps.GamesDir,
		sink:     sink,
		log:      deps.Log,
		now:      time.Now,
	}
}

// GameDir returns the install directory for a platform and title.
func (p *Pipeline) GameDir(platform, title string) string {
	return filepath.Join(p.gamesDir, helpers.Sanitize(platform), helpers.Sanitize(title))
}

// Install fetches the entry for slug and installs its first link.
func (p *Pipeline) Install(ctx context.Context, slug string) (Descriptor, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return Descriptor{}, helpers.ErrEmptySlug
	}
	emit := func(stage output.Stage, progress float64, msg string) {
		output.Emit(p.sink, slug, stage, progress, msg)
	}

	emit(output.StageStarting, 0, "Starting download...")
	entry, err := p.source.Entry(ctx, slug)
	if err != nil {
		return Descriptor{}, err
	}
	link, ok := entry.FirstLink()
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %s", helpers.ErrEntryHasNoLinks, slug)
	}

	emit(output.StagePreparing, 5, "Preparing installation...")
	gameDir := p.GameDir(entry.Platform, entry.Title)
	if err := os.MkdirAll(gameDir, helpers.DirMod); err != nil {
		return Descriptor{}, fmt.Errorf("%w: failed to create %s: %w", helpers.ErrFilesystem, gameDir, err)
	}

	emit(output.StageDownloading, 10, "Downloading game...")
	filename := helpers.Sanitize(slug)
	if link.Filename != "" {
		filename = helpers.Sanitize(link.Filename)
	}
	downloadPath := filepath.Join(gameDir, filename)
	res, err := p.fetcher.Fetch(ctx, download.Request{
		URL:         link.URL,
		Destination: downloadPath,
		Key:         slug,
		Stage:       output.StageDownloading,
	})
	if err != nil {
		return Descriptor{}, err
	}
	p.log.Debug().Str("slug", slug).Int64("bytes", res.Bytes).Dur("took", res.Elapsed).Msg("game downloaded")

	assetPath, err := p.prepareAsset(downloadPath, gameDir, emit)
	if err != nil {
		return Descriptor{}, err
	}

	coverPath := ""
	if entry.BoxartURL != "" && p.covers != nil {
		emit(output.StageDownloadingCover, 75, "Downloading cover art...")
		dst := filepath.Join(gameDir, helpers.Sanitize(entry.Title)+".png")
		if path, err := p.covers.FetchCover(ctx, entry.BoxartURL, dst); err != nil {
			p.log.Debug().Err(err).Str("slug", slug).Msg("cover download failed")
		} else {
			coverPath = path
		}
	}

	desc := Descriptor{
		Slug:        slug,
		Title:       entry.Title,
		Platform:    entry.Platform,
		Regions:     entry.Regions,
		AssetPath:   assetPath,
		CoverPath:   coverPath,
		GameDir:     gameDir,
		SourceURL:   link.URL,
		InstalledAt: p.now().UTC(),
	}
	if err := writeDescriptor(gameDir, desc); err != nil {
		return Descriptor{}, err
	}
	if p.library != nil {
		p.library.SetGame(store.GameRecord{
			Slug:        desc.Slug,
			Title:       desc.Title,
			Platform:    desc.Platform,
			AssetPath:   desc.AssetPath,
			CoverPath:   desc.CoverPath,
			GameDir:     desc.GameDir,
			InstalledAt: desc.InstalledAt,
		})
	}
	emit(output.StageCompleted, 100, "Installation complete!")
	return desc, nil
}

// prepareAsset unpacks archives and picks the ROM; other downloads are the ROM.
func (p *Pipeline) prepareAsset(downloadPath, gameDir string, emit func(output.Stage, float64, string)) (string, error) {
	if !archive.IsArchive(downloadPath) {
		emit(output.StagePreparingRom, 60, "Preparing ROM file...")
		return downloadPath, nil
	}

	emit(output.StageExtracting, 50, "Extracting files...")
	extractDir := filepath.Join(gameDir, helpers.GameExtractDir)
	if err := os.RemoveAll(extractDir); err != nil {
		return "", fmt.Errorf("%w: %w", helpers.ErrFilesystem, err)
	}
	if err := archive.ExtractBundle(downloadPath, extractDir); err != nil {
		return "", err
	}

	emit(output.StageFindingRom, 65, "Finding ROM file...")
	rom, err := findROM(extractDir)
	if err != nil {
		return "", err
	}
	emit(output.StageRomFound, 70, "ROM file found!")
	return rom, nil
}

func writeDescriptor(gameDir string, desc Descriptor) error {
	data, err := yaml.Marshal(&desc)
	if err != nil {
		return err
	}
	path := filepath.Join(gameDir, helpers.GameDescriptorFile)
	if err := os.WriteFile(path, data, helpers.FileMod); err != nil {
		return fmt.Errorf("%w: %w", helpers.ErrFilesystem, err)
	}
	return nil
}

// ReadDescriptor loads game.yml from gameDir.
func ReadDescriptor(gameDir string) (Descriptor, error) {
	//nolint:gosec // gameDir comes from the library store.
	data, err := os.ReadFile(filepath.Join(gameDir, helpers.GameDescriptorFile))
	if err != nil {
		return Descriptor{}, fmt.Errorf("%w: %w", helpers.ErrFilesystem, err)
	}
	var desc Descriptor
	if err := yaml.Unmarshal(data, &desc); err != nil {
		return Descriptor{}, err
	}
	return desc, nil
}
