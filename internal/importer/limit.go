package importer

import (
	"errors"
	"io"

	"github.com/tartampluch/go-reminders/internal/config"
)

// ErrTooLarge is returned when an import document is bigger than the
// configured limit. Nothing is decoded from a document that hits it.
var ErrTooLarge = errors.New(config.ErrImportTooLarge)

// limitedBody reads at most left bytes and fails with ErrTooLarge when the
// source holds more, instead of silently stopping at the limit.
type limitedBody struct {
	io.ReadCloser
	left int64
}

func newLimitedBody(rc io.ReadCloser, limit int64) *limitedBody {
	return &limitedBody{ReadCloser: rc, left: limit}
}

func (b *limitedBody) Read(p []byte) (int, error) {
	if b.left <= 0 {
		// One more byte tells an exact fit from an overflow.
		var extra [1]byte
		n, err := b.ReadCloser.Read(extra[:])
		if n > 0 {
			return 0, ErrTooLarge
		}
		return 0, err
	}
	if int64(len(p)) > b.left {
		p = p[:b.left]
	}
	n, err := b.ReadCloser.Read(p)
	b.left -= int64(n)
	return n, err
}
