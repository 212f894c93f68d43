package message

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"

	"github.com/tartampluch/go-reminders/internal/config"
)

// Link builds a messaging deep link with a prefilled greeting.
// It returns "" when phone holds no digits.
func (g *Greeter) Link(phone, kind, name string) string {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) && r < unicode.MaxASCII {
			return r
		}
		return -1
	}, phone)
	if digits == "" {
		return ""
	}

	text := url.QueryEscape(g.Greeting(kind, name))
	text = strings.ReplaceAll(text, "+", "%20")
	return fmt.Sprintf(config.MessageLinkFormat, digits, text)
}
