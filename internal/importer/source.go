package importer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/tartampluch/go-reminders/internal/config"
	"github.com/tartampluch/go-reminders/internal/engine"
)

// Source describes where an import document comes from.
type Source struct {
	Mode      string // config.SourceModeLocal or config.SourceModeWeb
	LocalPath string // Path to a .vcf or .ics file
	WebURL    string // CardDAV/WebDAV/HTTP URL
	WebUser   string // HTTP Basic Auth Username
	WebPass   string // HTTP Basic Auth Password
}

// Importer turns contact and calendar exports into raw records.
type Importer struct {
	Fetcher Fetcher // Interface for network abstraction.

	// MaxBytes caps the document size (config.MaxImportBytes when zero).
	MaxBytes int64
}

// Run reads the source and decodes every record it can.
// Records carry no id; the store assigns one on creation.
func (im *Importer) Run(ctx context.Context, src Source) ([]engine.RawRecord, error) {
	start := time.Now()
	log := slog.With(
		config.LogKeyComponent, config.CompImporter,
		config.LogKeyMode, src.Mode,
	)
	log.InfoContext(ctx, config.MsgImportStart)

	reader, err := im.acquireStream(ctx, src)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%s: %w", config.ErrImportRead, err)
	}
	defer func() { _ = reader.Close() }()

	limit := im.maxBytes()
	data, err := io.ReadAll(newLimitedBody(reader, limit))
	if errors.Is(err, ErrTooLarge) {
		log.Warn(config.ErrImportTooLarge, config.LogKeyLimit, limit)
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrImportRead, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	records, err := Decode(data)
	if err != nil {
		return nil, err
	}

	log.Debug(config.MsgImported,
		config.LogKeyCount, len(records),
		config.LogKeyDuration, time.Since(start).Milliseconds())
	return records, nil
}

func (im *Importer) maxBytes() int64 {
	if im.MaxBytes > 0 {
		return im.MaxBytes
	}
	return config.MaxImportBytes
}

// acquireStream opens the appropriate data source based on configuration.
func (im *Importer) acquireStream(ctx context.Context, src Source) (io.ReadCloser, error) {
	switch src.Mode {
	case config.SourceModeLocal:
		if src.LocalPath == "" {
			return nil, errors.New(config.ErrLocalPathEmpty)
		}
		return os.Open(src.LocalPath)
	case config.SourceModeWeb:
		if src.WebURL == "" {
			return nil, errors.New(config.ErrWebURLEmpty)
		}
		if im.Fetcher == nil {
			return nil, errors.New(config.ErrFetcherMissing)
		}
		return im.Fetcher.Fetch(ctx, src.WebURL, src.WebUser, src.WebPass)
	default:
		return nil, fmt.Errorf("%s: %q", config.ErrModeUnsupport, src.Mode)
	}
}

// Decode sniffs the document type and dispatches to the matching decoder.
func Decode(data []byte) ([]engine.RawRecord, error) {
	body := bytes.TrimLeft(data, "\ufeff \t\r\n")
	head := bytes.ToUpper(body[:min(len(body), len(config.ICalMarker))])
	switch {
	case bytes.HasPrefix(head, []byte(config.VCardMarker)):
		return DecodeVCards(bytes.NewReader(body))
	case bytes.HasPrefix(head, []byte(config.ICalMarker)):
		return DecodeICS(bytes.NewReader(body))
	default:
		return nil, errors.New(config.ErrImportFormat)
	}
}
