package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/tartampluch/go-reminders/internal/config"
	"github.com/tartampluch/go-reminders/internal/store"
	"github.com/tartampluch/go-reminders/internal/tracker"
)

// Problem is an RFC 7807 error body.
type Problem struct {
	Type     string              `json:"type,omitempty"`
	Title    string              `json:"title,omitempty"`
	Status   int                 `json:"status,omitempty"`
	Detail   string              `json:"detail,omitempty"`
	Instance string              `json:"instance,omitempty"`
	Errors   map[string][]string `json:"errors,omitempty"`
}

// WriteProblem sends a problem+json body. errs maps field names to messages
// and may be nil.
func WriteProblem(w http.ResponseWriter, status int, title, detail string, errs map[string][]string) {
	w.Header().Set(config.HeaderContentType, config.MimeProblemJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Problem{
		Title:  title,
		Status: status,
		Detail: detail,
		Errors: errs,
	})
}

// writeError maps tracker and store failures to a problem response.
func writeError(w http.ResponseWriter, err error) {
	var invalid *tracker.InvalidRecordError
	switch {
	case errors.As(err, &invalid):
		prob := map[string][]string{}
		for _, fe := range invalid.Fields {
			prob[fe.Field] = append(prob[fe.Field], fe.Msg)
		}
		WriteProblem(w, http.StatusUnprocessableEntity, config.HTTPTitleValidation, config.HTTPDetailValidation, prob)

	case store.IsType(err, store.ErrNotFound):
		WriteProblem(w, http.StatusNotFound, config.HTTPTitleNotFound, err.Error(), nil)

	case store.IsType(err, store.ErrInvalidInput):
		WriteProblem(w, http.StatusBadRequest, config.HTTPTitleValidation, err.Error(), nil)

	default:
		slog.Error(config.ErrStoreRequest,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err)
		w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
		WriteProblem(w, http.StatusServiceUnavailable, config.HTTPTitleStorage, err.Error(), nil)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set(config.HeaderContentType, config.MimeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error(config.ErrWriteResp,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err)
	}
}
