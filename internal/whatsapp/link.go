// Package whatsapp builds click-to-chat links and follow-up messages for
// customer records.
package whatsapp

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

const baseURL = "https://wa.me/"

var nonDigits = regexp.MustCompile(`[^0-9]`)

// Linker prefixes numbers that lack a country code with a default one.
type Linker struct {
	countryCode string
	national    *regexp.Regexp
}

func NewLinker(countryCode string) *Linker {
	countryCode = Digits(countryCode)
	return &Linker{
		countryCode: countryCode,
		national:    regexp.MustCompile(`^` + countryCode + `(\d{3})(\d{3})(\d{4})$`),
	}
}

// Digits strips everything but 0-9.
func Digits(phone string) string {
	return nonDigits.ReplaceAllString(phone, "")
}

// International returns phone as digits with the country code applied.
func (l *Linker) International(phone string) string {
	digits := Digits(phone)
	if !strings.HasPrefix(digits, l.countryCode) {
		digits = l.countryCode + digits
	}
	return digits
}

// Link returns https://wa.me/<digits>, with ?text= when message is not empty.
func (l *Linker) Link(phone, message string) string {
	link := baseURL + l.International(phone)
	if message != "" {
		link += "?text=" + url.QueryEscape(message)
	}
	return link
}

// FormatPhone renders a ten-digit national number as "+CC XXX XXX XXXX" and
// returns anything else as bare digits.
func (l *Linker) FormatPhone(phone string) string {
	digits := Digits(phone)
	if m := l.national.FindStringSubmatch(digits); m != nil {
		return fmt.Sprintf("+%s %s %s %s", l.countryCode, m[1], m[2], m[3])
	}
	return digits
}

const defaultFollowUp = "I wanted to follow up on our previous conversation. When would be a good time to discuss this further?"

// FollowUpMessage greets name and appends custom, or a stock follow-up line
// when custom is empty.
func FollowUpMessage(name, custom string) string {
	if custom == "" {
		custom = defaultFollowUp
	}
	return fmt.Sprintf("Hi %s, I hope you're doing well. %s", name, custom)
}
