package fetch

import (
	"net"
	"net/http"
	"time"

	"github.com/greeddj/go-retrokit/internal/retrokit/helpers"
)

// New creates a configured HTTP client for API calls with an overall timeout.
func New(timeout time.Duration, userAgent string) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: withUserAgent(newTransport(0), userAgent),
	}
}

// NewDownloader creates an HTTP client for large transfers. It has no overall
// timeout; timeout bounds only the wait for response headers.
func NewDownloader(timeout time.Duration, userAgent string) *http.Client {
	return &http.Client{
		Transport: withUserAgent(newTransport(timeout), userAgent),
	}
}

func newTransport(headerTimeout time.Duration) *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   helpers.FetchDialContextTimeout,
			KeepAlive: helpers.FetchDialContextKeepAlive,
		}).DialContext,
		ForceAttemptHTTP2:     helpers.FetchForceAttemptHTTP2,
		MaxIdleConns:          helpers.FetchMaxIdleConns,
		MaxIdleConnsPerHost:   helpers.FetchMaxIdleConnsPerHost,
		IdleConnTimeout:       helpers.FetchIdleConnTimeout,
		TLSHandshakeTimeout:   helpers.FetchTLSHandshakeTimeout,
		ExpectContinueTimeout: helpers.FetchExpectContinueTimeout,
		ResponseHeaderTimeout: headerTimeout,
	}
}

// userAgentTransport sets a User-Agent header on outgoing requests.
type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func withUserAgent(base http.RoundTripper, userAgent string) http.RoundTripper {
	if userAgent == "" {
		return base
	}
	return &userAgentTransport{base: base, userAgent: userAgent}
}

// RoundTrip implements http.RoundTripper.
func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") != "" {
		return t.base.RoundTrip(req)
	}
	clone := req.Clone(req.Context())
	clone.Header.Set("User-Agent", t.userAgent)
	return t.base.RoundTrip(clone)
}
