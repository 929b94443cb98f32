package cores

import (
	"fmt"

	"github.com/greeddj/go-retrokit/internal/retrokit/registry"
	"go.uber.org/multierr"
)

// Strategy names how a core reached the cores directory.
type Strategy string

const (
	// StrategyExisting means the file was already in place.
	StrategyExisting Strategy = "existing"
	// StrategyDirect means the per-core zip was downloaded.
	StrategyDirect Strategy = "direct"
	// StrategyPack means the file was copied from the shared pack or resources.
	StrategyPack Strategy = "pack"
)

// Result describes a single install.
type Result struct {
	Core     registry.Descriptor
	Path     string
	Strategy Strategy
}

// ItemError is a failed batch item.
type ItemError struct {
	ID      string
	Message string
	Err     error
}

// Error implements the error interface.
func (e ItemError) Error() string {
	return fmt.Sprintf("%s: %s", e.ID, e.Message)
}

// Unwrap returns the underlying error.
func (e ItemError) Unwrap() error {
	return e.Err
}

// InstallResult summarizes a batch install.
type InstallResult struct {
	Installed int
	Skipped   int
	Errors    []ItemError
}

// Err combines item failures into one error, or nil when every item succeeded.
func (r InstallResult) Err() error {
	var err error
	for _, item := range r.Errors {
		err = multierr.Append(err, item)
	}
	return err
}
