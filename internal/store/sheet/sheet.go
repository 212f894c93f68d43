// Package sheet talks to a spreadsheet web service (an Apps Script style
// endpoint) that owns the reminder rows.
//
// Protocol:
//
//	GET  <url>?action=list                         -> [records] or {"data": [records]}
//	POST <url> {"action":"create","record":{...}}  -> {"status":"ok","id":"..."}
//	POST <url> {"action":"update","record":{...}}  -> {"status":"ok"}
//	POST <url> {"action":"delete","id":"..."}      -> {"status":"ok"}
//
// Replies with "status":"error" carry a message and an optional HTTP-like code.
package sheet

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/tartampluch/go-reminders/internal/config"
	"github.com/tartampluch/go-reminders/internal/engine"
	"github.com/tartampluch/go-reminders/internal/store"
)

// Store is a store.Store backed by the spreadsheet service.
type Store struct {
	URL    string
	Token  string
	Client *http.Client

	// Attempts bounds each call, including the first try.
	Attempts int
	// Timeout applies to every attempt separately.
	Timeout time.Duration
	// Backoff is multiplied by the attempt number between tries.
	Backoff time.Duration
}

// New creates a Store with default retry settings.
func New(rawURL, token string) (*Store, error) {
	if rawURL == "" {
		return nil, errors.New(config.ErrSheetURLEmpty)
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrInvalidURL, err)
	}
	if u.Scheme != config.SchemeHTTP && u.Scheme != config.SchemeHTTPS {
		return nil, fmt.Errorf("%s: %s", config.ErrProtocol, u.Scheme)
	}
	return &Store{
		URL:      rawURL,
		Token:    token,
		Client:   &http.Client{},
		Attempts: config.DefaultRetryAttempts,
		Timeout:  config.DefaultStorageTimeout,
		Backoff:  config.DefaultRetryBackoff,
	}, nil
}

type request struct {
	Action string            `json:"action"`
	Record *engine.RawRecord `json:"record,omitempty"`
	ID     string            `json:"id,omitempty"`
}

type reply struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	ID      json.RawMessage `json:"id"`
	Data    json.RawMessage `json:"data"`
	Code    int             `json:"code"`
}

// List fetches every row.
func (s *Store) List(ctx context.Context) ([]engine.RawRecord, error) {
	body, err := s.do(ctx, config.SheetActionList, http.MethodGet, nil)
	if err != nil {
		return nil, err
	}

	payload := body
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		r, err := decodeReply(trimmed)
		if err != nil {
			return nil, err
		}
		payload = r.Data
	}

	records, err := engine.DecodeRecords(payload)
	if err != nil {
		return nil, store.NewError(store.ErrUnavailable, config.ErrStoreDecode, err)
	}
	return records, nil
}

// Create appends a row and returns it with its final id.
func (s *Store) Create(ctx context.Context, rec engine.RawRecord) (engine.RawRecord, error) {
	// Rows are keyed by id; the service may accept ours or assign its own.
	rec.ID = uuid.NewString()
	body, err := s.do(ctx, config.SheetActionCreate, http.MethodPost, request{Action: config.SheetActionCreate, Record: &rec})
	if err != nil {
		return engine.RawRecord{}, err
	}
	r, err := decodeReply(body)
	if err != nil {
		return engine.RawRecord{}, err
	}
	if id := idString(r.ID); id != "" {
		rec.ID = id
	}
	return rec, nil
}

// Update rewrites the row rec.ID.
func (s *Store) Update(ctx context.Context, rec engine.RawRecord) error {
	body, err := s.do(ctx, config.SheetActionUpdate, http.MethodPost, request{Action: config.SheetActionUpdate, Record: &rec})
	if err != nil {
		return err
	}
	_, err = decodeReply(body)
	return err
}

// Delete removes the row id.
func (s *Store) Delete(ctx context.Context, id string) error {
	body, err := s.do(ctx, config.SheetActionDelete, http.MethodPost, request{Action: config.SheetActionDelete, ID: id})
	if err != nil {
		return err
	}
	_, err = decodeReply(body)
	return err
}

// do runs one logical call with bounded retries. Only network failures and
// 5xx replies are retried.
func (s *Store) do(ctx context.Context, action, method string, payload any) ([]byte, error) {
	var encoded []byte
	if payload != nil {
		var err error
		if encoded, err = json.Marshal(payload); err != nil {
			return nil, store.NewError(store.ErrInvalidInput, config.ErrStoreWrite, err)
		}
	}

	attempts := max(s.Attempts, 1)
	log := slog.With(
		config.LogKeyComponent, config.CompStore,
		config.LogKeyBackend, config.BackendSheet,
		config.LogKeyAction, action,
	)

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		body, retry, err := s.attempt(ctx, action, method, encoded)
		if err == nil {
			log.Debug(config.MsgStoreRequest, config.LogKeyAttempt, attempt, config.LogKeySizeBytes, len(body))
			return body, nil
		}
		lastErr = err
		if !retry || attempt == attempts {
			break
		}

		log.Warn(config.MsgStoreRetry, config.LogKeyAttempt, attempt, config.LogKeyError, err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.Backoff * time.Duration(attempt)):
		}
	}
	return nil, lastErr
}

// attempt performs a single HTTP exchange. The bool reports whether the
// failure is worth retrying.
func (s *Store) attempt(parent context.Context, action, method string, encoded []byte) ([]byte, bool, error) {
	ctx := parent
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	target := s.URL
	var body io.Reader
	if method == http.MethodGet {
		u, err := url.Parse(s.URL)
		if err != nil {
			return nil, false, fmt.Errorf("%s: %w", config.ErrInvalidURL, err)
		}
		q := u.Query()
		q.Set(config.SheetActionParam, action)
		u.RawQuery = q.Encode()
		target = u.String()
	} else {
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", config.ErrFetchRequest, err)
	}
	req.Header.Set(config.HeaderUserAgent, config.UserAgent)
	if body != nil {
		req.Header.Set(config.HeaderContentType, config.MimeJSON)
	}
	if s.Token != "" {
		req.Header.Set(config.HeaderAuthorization, config.BearerPrefix+s.Token)
	}

	resp, err := s.client().Do(req)
	if err != nil {
		// The caller gave up; retrying would only delay the error.
		if parent.Err() != nil {
			return nil, false, parent.Err()
		}
		return nil, true, store.NewError(store.ErrUnavailable, config.ErrStoreRequest, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, config.MaxHTTPResponseSize))
	if err != nil {
		return nil, true, store.NewError(store.ErrUnavailable, config.ErrStoreRequest, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		msg := fmt.Sprintf("%s: %s", config.ErrStoreStatus, resp.Status)
		return nil, resp.StatusCode >= http.StatusInternalServerError, store.NewError(typeForStatus(resp.StatusCode), msg, nil)
	}
	return data, false, nil
}

func (s *Store) client() *http.Client {
	if s.Client != nil {
		return s.Client
	}
	return http.DefaultClient
}

// decodeReply parses an envelope and turns "status":"error" into a typed error.
func decodeReply(body []byte) (reply, error) {
	var r reply
	if len(bytes.TrimSpace(body)) == 0 {
		return r, nil
	}
	if err := json.Unmarshal(body, &r); err != nil {
		return r, store.NewError(store.ErrUnavailable, config.ErrStoreDecode, err)
	}
	if r.Status == config.SheetStatusError {
		msg := config.ErrStoreReply
		if r.Message != "" {
			msg = r.Message
		}
		return r, store.NewError(typeForStatus(r.Code), msg, nil)
	}
	return r, nil
}

func typeForStatus(code int) store.ErrorType {
	switch code {
	case http.StatusNotFound:
		return store.ErrNotFound
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return store.ErrInvalidInput
	default:
		return store.ErrUnavailable
	}
}

// idString accepts ids sent as JSON strings or numbers.
func idString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}
