package download

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/cavaliercoder/grab"
	"github.com/greeddj/go-retrokit/internal/retrokit/helpers"
)

// CoverFetcher saves box art next to installed games.
type CoverFetcher struct {
	client *grab.Client
}

// NewCoverFetcher returns a CoverFetcher that sends requests through httpClient.
func NewCoverFetcher(httpClient *http.Client) *CoverFetcher {
	client := grab.NewClient()
	if httpClient != nil {
		client.HTTPClient = httpClient
	}
	return &CoverFetcher{client: client}
}

// FetchCover downloads url into dst and returns the written path.
func (c *CoverFetcher) FetchCover(ctx context.Context, url, dst string) (string, error) {
	if err := os.MkdirAll(filepath.Dir(dst), helpers.DirMod); err != nil {
		return "", fmt.Errorf("%w: %w", helpers.ErrFilesystem, err)
	}
	req, err := grab.NewRequest(dst, url)
	if err != nil {
		return "", fmt.Errorf("%w: %w", helpers.ErrNetwork, err)
	}
	req = req.WithContext(ctx)
	resp := c.client.Do(req)
	if err := resp.Err(); err != nil {
		return "", fmt.Errorf("%w: cover %s: %w", helpers.ErrNetwork, url, err)
	}
	return resp.Filename, nil
}
