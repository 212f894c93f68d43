// Package message produces the user-facing texts: greetings, calendar
// summaries, notification texts and messaging deep links.
package message

import (
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/go-reminders/internal/config"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// Greeter localizes texts for one active language.
// It is safe for concurrent use; SetLanguage may be called at any time.
type Greeter struct {
	bundle    *i18n.Bundle
	languages []string
	matcher   language.Matcher

	mu        sync.RWMutex
	lang      string
	localizer *i18n.Localizer
}

// NewGreeter loads the embedded locales and selects lang (best match).
func NewGreeter(lang string) *Greeter {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	g := &Greeter{bundle: bundle}

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		slog.Error(config.ErrLocalesAccess,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyError, err,
		)
	}

	var tags []language.Tag
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "active.") || !strings.HasSuffix(name, ".json") {
			slog.Debug(config.MsgLocaleSkip,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		langCode := strings.TrimSuffix(strings.TrimPrefix(name, "active."), ".json")
		tag, err := language.Parse(langCode)
		if langCode == "" || err != nil {
			slog.Warn(config.MsgLocaleBadName,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		if _, err := bundle.LoadMessageFileFS(localeFS, "locales/"+name); err != nil {
			slog.Error(config.ErrLocaleLoad,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
				config.LogKeyError, err,
			)
			continue
		}
		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyLang, langCode,
		)

		// English first so it wins when nothing matches.
		if tag == language.English {
			g.languages = append([]string{langCode}, g.languages...)
			tags = append([]language.Tag{tag}, tags...)
		} else {
			g.languages = append(g.languages, langCode)
			tags = append(tags, tag)
		}
	}

	g.matcher = language.NewMatcher(tags)
	g.SetLanguage(lang)
	return g
}

// Languages lists the loaded locales, the default first.
func (g *Greeter) Languages() []string {
	return append([]string(nil), g.languages...)
}

// Language returns the active language code.
func (g *Greeter) Language() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.lang
}

// SetLanguage activates the closest loaded locale to lang and returns it.
func (g *Greeter) SetLanguage(lang string) string {
	chosen := config.DefaultLanguage
	if len(g.languages) > 0 {
		_, idx, conf := g.matcher.Match(language.Make(lang))
		chosen = g.languages[0]
		if conf != language.No {
			chosen = g.languages[idx]
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.lang = chosen
	g.localizer = i18n.NewLocalizer(g.bundle, chosen)
	return chosen
}

// Greeting is the prefilled message text for an occasion.
func (g *Greeter) Greeting(kind, name string) string {
	switch {
	case strings.EqualFold(kind, config.KindBirthday):
		return g.msg(config.TKeyGreetingBirthday, data(name, kind), fmt.Sprintf(config.FallbackGreetingBirthday, name))
	case strings.EqualFold(kind, config.KindAnniversary):
		return g.msg(config.TKeyGreetingAnniversary, data(name, kind), fmt.Sprintf(config.FallbackGreetingAnniversary, name))
	default:
		return g.msg(config.TKeyGreetingOther, data(name, kind), fmt.Sprintf(config.FallbackGreetingOther, kind, name))
	}
}

// Summary is the calendar event title.
func (g *Greeter) Summary(name, kind string) string {
	return g.msg(config.TKeyEvtSummary, data(name, kind), fmt.Sprintf(config.FallbackSummary, name, kind))
}

// Notification returns the title and body for an occasion due in days
// (0 or 1).
func (g *Greeter) Notification(days int, kind, name string) (title, body string) {
	d := data(name, kind)
	if days == 0 {
		return g.msg(config.TKeyNotifyTitleToday, d, name),
			g.msg(config.TKeyNotifyBodyToday, d, fmt.Sprintf(config.FallbackNotifyToday, kind, name))
	}
	return g.msg(config.TKeyNotifyTitleTomorrow, d, name),
		g.msg(config.TKeyNotifyBodyTomorrow, d, fmt.Sprintf(config.FallbackNotifyTomorrow, kind, name))
}

func data(name, kind string) map[string]string {
	return map[string]string{"Name": name, "Kind": kind}
}

// msg translates key, falling back to fallback when the key is missing.
func (g *Greeter) msg(key string, tmpl map[string]string, fallback string) string {
	g.mu.RLock()
	loc := g.localizer
	g.mu.RUnlock()

	if loc == nil {
		return fallback
	}
	out, err := loc.Localize(&i18n.LocalizeConfig{MessageID: key, TemplateData: tmpl})
	if err != nil {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, key,
			config.LogKeyError, err,
		)
		return fallback
	}
	return out
}
