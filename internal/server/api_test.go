package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-reminders/internal/config"
	"github.com/tartampluch/go-reminders/internal/engine"
	"github.com/tartampluch/go-reminders/internal/message"
	"github.com/tartampluch/go-reminders/internal/notify"
	"github.com/tartampluch/go-reminders/internal/store/memory"
	"github.com/tartampluch/go-reminders/internal/tracker"
)

type fixture struct {
	srv     *Server
	h       http.Handler
	tracker *tracker.Tracker
	saved   []Preferences
}

func newFixture(t *testing.T, seed ...engine.RawRecord) *fixture {
	t.Helper()
	f := &fixture{}

	greeter := message.NewGreeter("en")
	tr := tracker.New(memory.New(seed...), &engine.Generator{FormatSummary: greeter.Summary})
	tr.Clock = fixedClock(time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC))

	f.srv = New("")
	tr.OnRefresh = f.srv.Update
	f.srv.API = &API{
		Reminders: tr,
		Greeter:   greeter,
		Notifier:  notify.New(greeter, true),
		OnPreferences: func(p Preferences) error {
			f.saved = append(f.saved, p)
			return nil
		},
	}
	f.tracker = tr
	f.h = f.srv.Handler()
	return f
}

type fixedClock time.Time

func (c fixedClock) Now() time.Time { return time.Time(c) }

func (f *fixture) do(method, target, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set(config.HeaderContentType, contentType)
	}
	w := httptest.NewRecorder()
	f.h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func seed() []engine.RawRecord {
	return []engine.RawRecord{
		{ID: "1", Name: "Sam", Phone: "+33 6 12", Date: "1990-06-15", Type: "birthday", Reference: "college"},
		{ID: "2", Name: "Ana & Bo", Date: "2010-06-16", Type: "anniversary"},
		{ID: "3", Name: "Cy", Date: "2001-09-01", Type: "Name Day"},
	}
}

func TestAPI_ListEvents(t *testing.T) {
	f := newFixture(t, seed()...)

	w := f.do(http.MethodGet, "/api/events", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, config.MimeJSON, w.Header().Get(config.HeaderContentType))

	views := decode[[]EventView](t, w)
	require.Len(t, views, 3)
	assert.Equal(t, EventView{
		ID: "1", Name: "Sam", Phone: "+33 6 12", Date: "1990-06-15", Type: "birthday", Reference: "college",
		NextOccurrence: "2025-06-15", DaysRemaining: 0,
		Greeting:    "Happy Birthday, Sam! 🎂",
		MessageLink: "https://wa.me/33612?text=Happy%20Birthday%2C%20Sam%21%20%F0%9F%8E%82",
	}, views[0])
	assert.Equal(t, "2", views[1].ID)
	assert.Empty(t, views[1].MessageLink, "no phone, no link")
}

func TestAPI_ListEvents_Filters(t *testing.T) {
	f := newFixture(t, seed()...)

	views := decode[[]EventView](t, f.do(http.MethodGet, "/api/events?type=Anniversary", "", ""))
	require.Len(t, views, 1)
	assert.Equal(t, "2", views[0].ID)

	views = decode[[]EventView](t, f.do(http.MethodGet, "/api/events?q=COLLEGE", "", ""))
	require.Len(t, views, 1)
	assert.Equal(t, "1", views[0].ID)

	views = decode[[]EventView](t, f.do(http.MethodGet, "/api/events?type=name%20day", "", ""))
	assert.Empty(t, views)
}

func TestAPI_CreateUpdateDelete(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPost, "/api/events", config.MimeJSON,
		`{"name":"Dee","date":"16/06/1999","type":"birthday","phone":123}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[engine.RawRecord](t, w)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "1999-06-16", created.Date)
	assert.Equal(t, "123", created.Phone)

	w = f.do(http.MethodPut, "/api/events/"+created.ID, config.MimeJSON,
		`{"name":"Dee","date":"1999-06-20","type":"birthday"}`)
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	views := decode[[]EventView](t, f.do(http.MethodGet, "/api/events", "", ""))
	require.Len(t, views, 1)
	assert.Equal(t, 5, views[0].DaysRemaining)

	w = f.do(http.MethodDelete, "/api/events/"+created.ID, "", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = f.do(http.MethodDelete, "/api/events/"+created.ID, "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, config.MimeProblemJSON, w.Header().Get(config.HeaderContentType))
}

func TestAPI_CreateErrors(t *testing.T) {
	f := newFixture(t)

	t.Run("Validation", func(t *testing.T) {
		w := f.do(http.MethodPost, "/api/events", config.MimeJSON, `{"name":"","date":"someday","type":"birthday"}`)
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)

		prob := decode[Problem](t, w)
		assert.Equal(t, config.HTTPTitleValidation, prob.Title)
		assert.Contains(t, prob.Errors, "name")
		assert.Contains(t, prob.Errors, "date")
	})

	t.Run("Invalid JSON", func(t *testing.T) {
		w := f.do(http.MethodPost, "/api/events", config.MimeJSON, `{"name":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Wrong media type", func(t *testing.T) {
		w := f.do(http.MethodPost, "/api/events", "text/plain", `{}`)
		assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
	})

	t.Run("Update missing", func(t *testing.T) {
		w := f.do(http.MethodPut, "/api/events/nope", config.MimeJSON, `{"name":"X","date":"2000-01-01","type":"birthday"}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestAPI_RefreshPublishesFeed(t *testing.T) {
	f := newFixture(t, seed()...)

	w := f.do(http.MethodGet, "/calendar.ics", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code, "nothing published yet")

	w = f.do(http.MethodPost, "/api/refresh", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]EventView](t, w), 3)

	w = f.do(http.MethodGet, "/calendar.ics", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "SUMMARY:Sam (birthday)")
}

func TestAPI_Notifications(t *testing.T) {
	f := newFixture(t, seed()...)

	got := decode[[]notify.Notification](t, f.do(http.MethodGet, "/api/notifications", "", ""))
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, 0, got[0].DaysRemaining)
	assert.Equal(t, "2", got[1].ID)

	again := decode[[]notify.Notification](t, f.do(http.MethodGet, "/api/notifications", "", ""))
	assert.Empty(t, again)
}

func TestAPI_Preferences(t *testing.T) {
	f := newFixture(t, seed()...)

	w := f.do(http.MethodPut, "/api/preferences", config.MimeJSON, `{"language":"fr-CA","notifications":false}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, Preferences{Language: "fr", Notifications: false}, decode[Preferences](t, w))
	require.Len(t, f.saved, 1)

	got := decode[[]notify.Notification](t, f.do(http.MethodGet, "/api/notifications", "", ""))
	assert.Empty(t, got, "disabled")

	w = f.do(http.MethodPut, "/api/preferences", config.MimeJSON, `{"theme":"dark"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAPI_Import(t *testing.T) {
	f := newFixture(t, seed()...)

	vcf := "BEGIN:VCARD\r\nVERSION:3.0\r\nFN:Sam\r\nBDAY:1990-06-15\r\nEND:VCARD\r\n" +
		"BEGIN:VCARD\r\nVERSION:3.0\r\nFN:Eve\r\nBDAY:1985-12-24\r\nEND:VCARD\r\n"

	w := f.do(http.MethodPost, "/api/import", "text/vcard", vcf)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, tracker.ImportResult{Created: 1, Skipped: 1}, decode[tracker.ImportResult](t, w))

	w = f.do(http.MethodPost, "/api/import", "text/plain", "hello")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, config.HTTPTitleImport, decode[Problem](t, w).Title)
}
