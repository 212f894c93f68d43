package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/tartampluch/go-reminders/internal/config"
)

// Fetcher retrieves an import document (vCard or iCalendar) over the network.
type Fetcher interface {
	Fetch(ctx context.Context, url, user, pass string) (io.ReadCloser, error)
}

// HTTPFetcher downloads import documents from CardDAV, CalDAV or plain
// HTTP servers.
type HTTPFetcher struct {
	Client *http.Client

	// Limit caps the document size; reading past it fails with ErrTooLarge.
	Limit int64
}

// NewHTTPFetcher returns a fetcher with the default timeout and the
// import size limit.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		Client: &http.Client{Timeout: config.HTTPTimeout},
		Limit:  config.MaxImportBytes,
	}
}

// Fetch downloads docURL, with HTTP Basic credentials when user or pass is set.
// A declared Content-Length above Limit is refused before the body is read.
func (f *HTTPFetcher) Fetch(ctx context.Context, docURL, user, pass string) (io.ReadCloser, error) {
	u, err := parseDocURL(docURL)
	if err != nil {
		return nil, err
	}

	log := slog.With(
		config.LogKeyComponent, config.CompFetcher,
		config.LogKeyURL, redact(u),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrFetchRequest, err)
	}
	req.Header.Set(config.HeaderUserAgent, config.UserAgent)
	if user != "" || pass != "" {
		req.SetBasicAuth(user, pass)
	}

	log.Debug(config.MsgDownloadStart)
	resp, err := f.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrFetchNetwork, err)
	}

	limit := f.limit()
	switch {
	case resp.StatusCode != http.StatusOK:
		_ = resp.Body.Close()
		log.Warn(config.MsgDownloadStatus, config.LogKeyStatus, resp.StatusCode)
		return nil, fmt.Errorf("%s: %s", config.ErrFetchStatus, resp.Status)

	case resp.ContentLength > limit:
		_ = resp.Body.Close()
		log.Warn(config.ErrImportTooLarge,
			config.LogKeySizeBytes, resp.ContentLength,
			config.LogKeyLimit, limit)
		return nil, fmt.Errorf("%w: %d > %d bytes", ErrTooLarge, resp.ContentLength, limit)
	}

	log.Info(config.MsgDownloading, config.LogKeySizeBytes, resp.ContentLength)
	return newLimitedBody(resp.Body, limit), nil
}

func (f *HTTPFetcher) client() *http.Client {
	if f.Client != nil {
		return f.Client
	}
	return http.DefaultClient
}

func (f *HTTPFetcher) limit() int64 {
	if f.Limit > 0 {
		return f.Limit
	}
	return config.MaxImportBytes
}

// parseDocURL accepts absolute http and https URLs only.
func parseDocURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrInvalidURL, err)
	}
	if u.Scheme != config.SchemeHTTP && u.Scheme != config.SchemeHTTPS {
		return nil, fmt.Errorf("%s: %s", config.ErrProtocol, u.Scheme)
	}
	return u, nil
}

// redact drops the query string and user info, which may carry tokens.
func redact(u *url.URL) string {
	return u.Scheme + "://" + u.Host + u.Path
}
