package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/tartampluch/go-reminders/internal/config"
	"github.com/tartampluch/go-reminders/internal/engine"
	"github.com/tartampluch/go-reminders/internal/importer"
	"github.com/tartampluch/go-reminders/internal/message"
	"github.com/tartampluch/go-reminders/internal/notify"
	"github.com/tartampluch/go-reminders/internal/tracker"
)

// Reminders is the part of *tracker.Tracker the API needs.
type Reminders interface {
	Visible(ctx context.Context, f engine.Filter) ([]engine.Event, error)
	Events(ctx context.Context) ([]engine.Event, error)
	Refresh(ctx context.Context) error
	Create(ctx context.Context, rec engine.RawRecord) (engine.RawRecord, error)
	Update(ctx context.Context, rec engine.RawRecord) error
	Delete(ctx context.Context, id string) error
	Import(ctx context.Context, records []engine.RawRecord) (tracker.ImportResult, error)
	Now() time.Time
}

// Preferences are the user settings editable at runtime.
type Preferences struct {
	Language      string `json:"language"`
	Notifications bool   `json:"notifications"`
}

type preferencesPatch struct {
	Language      *string `json:"language"`
	Notifications *bool   `json:"notifications"`
}

// API serves the JSON endpoints.
type API struct {
	Reminders Reminders
	Greeter   *message.Greeter
	Notifier  *notify.Notifier

	// OnPreferences persists preferences after a successful change.
	OnPreferences func(Preferences) error
}

// EventView is an event as listed by the API.
type EventView struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Phone          string `json:"phone"`
	Date           string `json:"date"`
	Type           string `json:"type"`
	Reference      string `json:"reference"`
	NextOccurrence string `json:"nextOccurrence"`
	DaysRemaining  int    `json:"daysRemaining"`
	Greeting       string `json:"greeting"`
	MessageLink    string `json:"messageLink,omitempty"`
}

// Register mounts the API routes on mux.
func (a *API) Register(mux *http.ServeMux) {
	jsonWrite := func(h http.HandlerFunc) http.Handler {
		return BodyLimit(config.MaxBodyBytes)(RequireJSON(h))
	}

	mux.HandleFunc(config.RouteEvents, a.handleListEvents)
	mux.Handle(config.RouteEventCreate, jsonWrite(a.handleCreateEvent))
	mux.Handle(config.RouteEventUpdate, jsonWrite(a.handleUpdateEvent))
	mux.HandleFunc(config.RouteEventDelete, a.handleDeleteEvent)
	mux.HandleFunc(config.RouteRefresh, a.handleRefresh)
	mux.HandleFunc(config.RouteNotifications, a.handleNotifications)
	mux.Handle(config.RoutePreferences, jsonWrite(a.handlePreferences))
	mux.Handle(config.RouteImport, BodyLimit(config.MaxImportBytes)(http.HandlerFunc(a.handleImport)))
}

func (a *API) view(e engine.Event) EventView {
	v := EventView{
		ID:             e.ID,
		Name:           e.Name,
		Phone:          e.Phone,
		Date:           e.Date,
		Type:           e.Kind,
		Reference:      e.Note,
		NextOccurrence: e.NextOccurrence.Format(config.DateFormatCanonical),
		DaysRemaining:  e.DaysRemaining,
	}
	if a.Greeter != nil {
		v.Greeting = a.Greeter.Greeting(e.Kind, e.Name)
		v.MessageLink = a.Greeter.Link(e.Phone, e.Kind, e.Name)
	}
	return v
}

func (a *API) views(events []engine.Event) []EventView {
	out := make([]EventView, len(events))
	for i, e := range events {
		out[i] = a.view(e)
	}
	return out
}

func decodeJSONStrict(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func (a *API) handleListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	events, err := a.Reminders.Visible(r.Context(), engine.Filter{
		Kind:  q.Get(config.QueryType),
		Query: q.Get(config.QuerySearch),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a.views(events))
}

func (a *API) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	defer DrainBody(r)
	var rec engine.RawRecord
	if err := decodeJSONStrict(r, &rec); err != nil {
		WriteProblem(w, http.StatusBadRequest, config.HTTPTitleInvalidJSON, err.Error(), nil)
		return
	}
	rec.ID = ""

	created, err := a.Reminders.Create(r.Context(), rec)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (a *API) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	defer DrainBody(r)
	var rec engine.RawRecord
	if err := decodeJSONStrict(r, &rec); err != nil {
		WriteProblem(w, http.StatusBadRequest, config.HTTPTitleInvalidJSON, err.Error(), nil)
		return
	}
	// The path wins over any id in the body.
	rec.ID = r.PathValue(config.PathParamID)

	if err := a.Reminders.Update(r.Context(), rec); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := a.Reminders.Delete(r.Context(), r.PathValue(config.PathParamID)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := a.Reminders.Refresh(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	events, err := a.Reminders.Events(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a.views(events))
}

func (a *API) handleNotifications(w http.ResponseWriter, r *http.Request) {
	if a.Notifier == nil {
		writeJSON(w, http.StatusOK, []notify.Notification{})
		return
	}
	events, err := a.Reminders.Events(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a.Notifier.Due(events, a.Reminders.Now()))
}

func (a *API) handlePreferences(w http.ResponseWriter, r *http.Request) {
	defer DrainBody(r)
	var patch preferencesPatch
	if err := decodeJSONStrict(r, &patch); err != nil {
		WriteProblem(w, http.StatusBadRequest, config.HTTPTitleInvalidJSON, err.Error(), nil)
		return
	}

	if patch.Language != nil && a.Greeter != nil {
		a.Greeter.SetLanguage(*patch.Language)
	}
	if patch.Notifications != nil && a.Notifier != nil {
		a.Notifier.SetEnabled(*patch.Notifications)
	}

	prefs := a.preferences()
	if a.OnPreferences != nil {
		if err := a.OnPreferences(prefs); err != nil {
			slog.Error(config.ErrConfigWrite,
				config.LogKeyComponent, config.CompServer,
				config.LogKeyError, err)
		}
	}
	writeJSON(w, http.StatusOK, prefs)
}

func (a *API) preferences() Preferences {
	var p Preferences
	if a.Greeter != nil {
		p.Language = a.Greeter.Language()
	}
	if a.Notifier != nil {
		p.Notifications = a.Notifier.Enabled()
	}
	return p
}

// handleImport accepts a raw vCard or iCalendar document.
func (a *API) handleImport(w http.ResponseWriter, r *http.Request) {
	defer DrainBody(r)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			WriteProblem(w, http.StatusRequestEntityTooLarge, config.HTTPTitleImport, err.Error(), nil)
			return
		}
		WriteProblem(w, http.StatusBadRequest, config.HTTPTitleImport, err.Error(), nil)
		return
	}

	records, err := importer.Decode(data)
	if err != nil {
		WriteProblem(w, http.StatusBadRequest, config.HTTPTitleImport, err.Error(), nil)
		return
	}

	res, err := a.Reminders.Import(r.Context(), records)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
