package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/greeddj/go-retrokit/internal/retrokit/helpers"
	"github.com/greeddj/go-retrokit/internal/retrokit/output"
	"golang.org/x/time/rate"
)

const chunkSize = 32 << 10

// Request describes one streamed download.
type Request struct {
	URL         string
	Destination string
	Key         string
	Stage       output.Stage
	// Sink receives this request's progress instead of the streamer's sink.
	Sink        output.Sink
}

// Result reports what a completed download wrote.
type Result struct {
	Path    string
	Bytes   int64
	Total   int64
	Elapsed time.Duration
}

// Streamer copies HTTP bodies to files and reports throttled progress.
type Streamer struct {
	client   *http.Client
	sink     output.Sink
	interval time.Duration
	now      func() time.Time
}

// New returns a Streamer using client for requests and sink for progress.
func New(client *http.Client, sink output.Sink) *Streamer {
	if client == nil {
		client = http.DefaultClient
	}
	if sink == nil {
		sink = output.Discard
	}
	return &Streamer{
		client:   client,
		sink:     sink,
		interval: helpers.ProgressInterval,
		now:      time.Now,
	}
}

// Fetch streams req.URL into req.Destination. On error the destination
// contents are undefined.
func (s *Streamer) Fetch(ctx context.Context, req Request) (Result, error) {
	resp, err := s.open(ctx, req.URL)
	if err != nil {
		return Result{}, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if err := os.MkdirAll(filepath.Dir(req.Destination), helpers.DirMod); err != nil {
		return Result{}, fmt.Errorf("%w: failed to create directory for %s: %w", helpers.ErrFilesystem, req.Destination, err)
	}
	//nolint:gosec // destination is composed by callers from sanitized segments.
	file, err := os.OpenFile(req.Destination, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, helpers.FileMod)
	if err != nil {
		return Result{}, fmt.Errorf("%w: failed to create file %s: %w", helpers.ErrFilesystem, req.Destination, err)
	}

	total := max(resp.ContentLength, 0)
	tracker := s.newTracker(req, total)
	written, err := s.copy(file, resp.Body, tracker)
	if err != nil {
		_ = file.Close()
		return Result{}, err
	}
	if err := file.Sync(); err != nil {
		_ = file.Close()
		return Result{}, fmt.Errorf("%w: failed to flush %s: %w", helpers.ErrFilesystem, req.Destination, err)
	}
	if err := file.Close(); err != nil {
		return Result{}, fmt.Errorf("%w: failed to close %s: %w", helpers.ErrFilesystem, req.Destination, err)
	}

	tracker.done(written)
	return Result{Path: req.Destination, Bytes: written, Total: total, Elapsed: tracker.elapsed()}, nil
}

func (s *Streamer) open(ctx context.Context, url string) (*http.Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", helpers.ErrNetwork, err)
	}
	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", helpers.ErrNetwork, err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%w: %w: %s (%s)", helpers.ErrNetwork, helpers.ErrDownloadFailed, url, resp.Status)
	}
	return resp, nil
}

func (s *Streamer) copy(dst io.Writer, src io.Reader, tracker *tracker) (int64, error) {
	buf := make([]byte, chunkSize)
	var written int64
	for {
		n, readErr := src.Read(buf)
		if n > 0 {
			if _, err := dst.Write(buf[:n]); err != nil {
				return written, fmt.Errorf("%w: write failed: %w", helpers.ErrFilesystem, err)
			}
			written += int64(n)
			tracker.update(written)
		}
		if errors.Is(readErr, io.EOF) {
			return written, nil
		}
		if readErr != nil {
			return written, fmt.Errorf("%w: read failed: %w", helpers.ErrNetwork, readErr)
		}
	}
}

// tracker turns byte counts into rate-limited progress events.
type tracker struct {
	req      Request
	total    int64
	sink     output.Sink
	now      func() time.Time
	start    time.Time
	limiter  *rate.Sometimes
	lastSent float64
}

func (s *Streamer) newTracker(req Request, total int64) *tracker {
	sink := s.sink
	if req.Sink != nil {
		sink = req.Sink
	}
	return &tracker{
		req:     req,
		total:   total,
		sink:    sink,
		now:     s.now,
		start:   s.now(),
		limiter: &rate.Sometimes{Interval: s.interval},
	}
}

func (t *tracker) elapsed() time.Duration {
	return t.now().Sub(t.start)
}

func (t *tracker) speed(received int64) float64 {
	elapsed := max(t.elapsed(), helpers.ProgressMinElapsed)
	return float64(received) / elapsed.Seconds()
}

func (t *tracker) update(received int64) {
	t.limiter.Do(func() {
		pct := 0.0
		if t.total > 0 {
			pct = min(float64(received)/float64(t.total)*100, 100)
		}
		// 100 is reserved for the event sent after the file is flushed.
		if pct >= 100 {
			return
		}
		pct = max(pct, t.lastSent)
		t.lastSent = pct
		t.sink.Emit(output.Event{
			Key:           t.req.Key,
			Stage:         t.req.Stage,
			Progress:      pct,
			Message:       "Downloading...",
			BytesReceived: received,
			TotalBytes:    t.total,
			SpeedBps:      t.speed(received),
		})
	})
}

func (t *tracker) done(received int64) {
	t.sink.Emit(output.Event{
		Key:           t.req.Key,
		Stage:         t.req.Stage,
		Progress:      100,
		Message:       "Download complete",
		BytesReceived: received,
		TotalBytes:    t.total,
		SpeedBps:      t.speed(received),
	})
}
