package importer_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-reminders/internal/config"
	"github.com/tartampluch/go-reminders/internal/importer"
)

const calendarBody = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nEND:VCALENDAR\r\n"

func serve(t *testing.T, h http.HandlerFunc) string {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return ts.URL
}

func readAll(t *testing.T, rc io.ReadCloser) (string, error) {
	t.Helper()
	defer func() { _ = rc.Close() }()
	data, err := io.ReadAll(rc)
	return string(data), err
}

func TestHTTPFetcher_Fetch(t *testing.T) {
	url := serve(t, func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "alice", user)
		assert.Equal(t, "pw", pass)
		assert.Equal(t, config.UserAgent, r.Header.Get(config.HeaderUserAgent))
		assert.Equal(t, "secret", r.URL.Query().Get("token"))
		_, _ = io.WriteString(w, calendarBody)
	})

	rc, err := importer.NewHTTPFetcher().Fetch(context.Background(), url+"/cal.ics?token=secret", "alice", "pw")
	require.NoError(t, err)
	body, err := readAll(t, rc)
	require.NoError(t, err)
	assert.Equal(t, calendarBody, body)
}

func TestHTTPFetcher_Fetch_NoCredentials(t *testing.T) {
	url := serve(t, func(w http.ResponseWriter, r *http.Request) {
		_, _, ok := r.BasicAuth()
		assert.False(t, ok)
		_, _ = io.WriteString(w, calendarBody)
	})

	rc, err := importer.NewHTTPFetcher().Fetch(context.Background(), url, "", "")
	require.NoError(t, err)
	_, err = readAll(t, rc)
	assert.NoError(t, err)
}

func TestHTTPFetcher_Fetch_Status(t *testing.T) {
	for _, code := range []int{http.StatusUnauthorized, http.StatusNotFound, http.StatusBadGateway} {
		t.Run(http.StatusText(code), func(t *testing.T) {
			url := serve(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(code)
			})

			rc, err := importer.NewHTTPFetcher().Fetch(context.Background(), url, "", "")
			require.Error(t, err)
			assert.Nil(t, rc)
			assert.ErrorContains(t, err, config.ErrFetchStatus)
		})
	}
}

func TestHTTPFetcher_Fetch_BadURL(t *testing.T) {
	f := importer.NewHTTPFetcher()

	_, err := f.Fetch(context.Background(), string([]byte{0x7f}), "", "")
	assert.ErrorContains(t, err, config.ErrInvalidURL)

	_, err = f.Fetch(context.Background(), "ftp://example.com/contacts.vcf", "", "")
	assert.ErrorContains(t, err, config.ErrProtocol)
}

func TestHTTPFetcher_Fetch_Deadline(t *testing.T) {
	url := serve(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := importer.NewHTTPFetcher().Fetch(ctx, url, "", "")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestHTTPFetcher_Fetch_DeclaredTooLarge(t *testing.T) {
	url := serve(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, strings.Repeat("x", 100))
	})

	f := importer.NewHTTPFetcher()
	f.Limit = 10
	rc, err := f.Fetch(context.Background(), url, "", "")

	assert.Nil(t, rc)
	assert.ErrorIs(t, err, importer.ErrTooLarge)
}

func TestHTTPFetcher_Fetch_StreamedTooLarge(t *testing.T) {
	url := serve(t, func(w http.ResponseWriter, r *http.Request) {
		// Flushing first forces a chunked reply without Content-Length.
		w.(http.Flusher).Flush()
		_, _ = io.WriteString(w, strings.Repeat("x", 100))
	})

	f := importer.NewHTTPFetcher()
	f.Limit = 10
	rc, err := f.Fetch(context.Background(), url, "", "")
	require.NoError(t, err)

	body, err := readAll(t, rc)
	assert.ErrorIs(t, err, importer.ErrTooLarge)
	assert.Len(t, body, 10)
}

func TestHTTPFetcher_Fetch_ExactLimit(t *testing.T) {
	url := serve(t, func(w http.ResponseWriter, r *http.Request) {
		w.(http.Flusher).Flush()
		_, _ = io.WriteString(w, strings.Repeat("x", 10))
	})

	f := importer.NewHTTPFetcher()
	f.Limit = 10
	rc, err := f.Fetch(context.Background(), url, "", "")
	require.NoError(t, err)

	body, err := readAll(t, rc)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("x", 10), body)
}

func TestNewHTTPFetcher_ImportLimit(t *testing.T) {
	assert.Equal(t, int64(config.MaxImportBytes), importer.NewHTTPFetcher().Limit)
}
