package infra

import (
	"io"
	"net/http"
	"os"
	"time"

	"github.com/greeddj/go-retrokit/internal/retrokit/config"
	"github.com/greeddj/go-retrokit/internal/retrokit/output"
	"github.com/rs/zerolog"
)

// Infra holds runtime dependencies such as IO and HTTP clients.
type Infra struct {
	Output   output.Printer
	Events   output.Sink
	Log      zerolog.Logger
	HTTP     *http.Client
	Download *http.Client
	Stdout   io.Writer
	Now      func() time.Time
	TempDir  func() string
}

// New builds Infra with default helpers for time and temp paths.
func New(out output.Printer, events output.Sink, apiClient, downloadClient *http.Client) *Infra {
	if events == nil {
		events = output.Discard
	}
	return &Infra{
		Output:   out,
		Events:   events,
		Log:      zerolog.Nop(),
		HTTP:     apiClient,
		Download: downloadClient,
		Stdout:   os.Stdout,
		Now:      time.Now,
		TempDir:  os.TempDir,
	}
}

// WithLogger attaches a console zerolog logger writing to w at debug level.
func (i *Infra) WithLogger(w io.Writer) *Infra {
	if i == nil || w == nil {
		return i
	}
	console := zerolog.ConsoleWriter{Out: w, NoColor: true, TimeFormat: "15:04:05.000"}
	i.Log = zerolog.New(console).Level(zerolog.DebugLevel).With().Timestamp().Logger()
	return i
}

// DebugConfig logs which settings were sourced from retrokit.toml.
func (i *Infra) DebugConfig(cfg *config.Config) {
	if i == nil || i.Output == nil || cfg == nil {
		return
	}
	i.Output.Debugf("data dir: %s", cfg.DataDir)
	i.Output.Debugf("install root: %s", cfg.InstallRoot)
	if cfg.ResourceDir != "" {
		i.Output.Debugf("resource dir: %s", cfg.ResourceDir)
	}
	if cfg.ConfigPath == "" {
		return
	}
	for _, key := range cfg.FileKeys {
		i.Output.Debugf("%s: %s taken from file", cfg.ConfigPath, key)
	}
}
