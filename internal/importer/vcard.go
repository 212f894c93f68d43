package importer

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/emersion/go-vcard"
	"github.com/tartampluch/go-reminders/internal/config"
	"github.com/tartampluch/go-reminders/internal/engine"
)

// DecodeVCards reads a vCard stream. Each card yields one record per
// dated field: BDAY becomes a birthday and ANNIVERSARY an anniversary.
// Cards without either are ignored.
func DecodeVCards(r io.Reader) ([]engine.RawRecord, error) {
	decoder := vcard.NewDecoder(r)
	var records []engine.RawRecord

	for {
		card, err := decoder.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// Log error but continue to next card to maximize data recovery
			slog.Warn(config.MsgSkippedCard,
				config.LogKeyComponent, config.CompImporter,
				config.LogKeyError, err)
			continue
		}

		name := cardName(card)
		phone := card.PreferredValue(vcard.FieldTelephone)
		note := card.Value(vcard.FieldNote)

		for _, dated := range []struct{ field, kind string }{
			{vcard.FieldBirthday, config.KindBirthday},
			{vcard.FieldAnniversary, config.KindAnniversary},
		} {
			f := card.Get(dated.field)
			if f == nil || f.Value == "" {
				continue
			}
			date, err := parseDate(f.Value)
			if err != nil {
				slog.Debug(config.MsgSkippedDate,
					config.LogKeyComponent, config.CompImporter,
					config.LogKeyValue, f.Value)
				continue
			}
			records = append(records, engine.RawRecord{
				Name:      name,
				Reference: note,
				Phone:     phone,
				Date:      date.Format(config.DateFormatCanonical),
				Type:      dated.kind,
			})
		}
	}

	return records, nil
}

// cardName prefers FN, then the structured N, then a placeholder.
func cardName(card vcard.Card) string {
	if fn := strings.TrimSpace(card.PreferredValue(vcard.FieldFormattedName)); fn != "" {
		return fn
	}
	if n := card.Name(); n != nil {
		full := strings.TrimSpace(strings.Join([]string{n.GivenName, n.FamilyName}, " "))
		if full != "" {
			return full
		}
	}
	return config.FallbackName
}

// parseDate handles various vCard date formats.
// Dates without a year land in DefaultLeapYear so Feb 29 survives.
func parseDate(value string) (time.Time, error) {
	formatsWithYear := []string{
		config.DateFormatCanonical,
		config.DateFormatFullBasic,
		config.DateFormatRFC3339,
		config.DateFormatFullT,
	}
	for _, f := range formatsWithYear {
		if t, err := time.Parse(f, value); err == nil {
			return t, nil
		}
	}

	// vCard 4 truncated dates
	for _, f := range []string{config.DateFormatNoYearD, config.DateFormatNoYearB} {
		if t, err := time.Parse(f, value); err == nil {
			return time.Date(config.DefaultLeapYear, t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}

	return time.Time{}, errors.New(config.ErrDateParse)
}
