package calendar

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
)

// Locale selects label language. The zero value is Korean.
type Locale int

const (
	LocaleKorean Locale = iota
	LocaleEnglish
)

var localeMatcher = language.NewMatcher([]language.Tag{
	language.Korean,
	language.English,
})

// ParseLocale matches a BCP-47 tag against the supported locales.
// Anything unrecognised falls back to Korean.
func ParseLocale(tag string) Locale {
	t, err := language.Parse(tag)
	if err != nil {
		return LocaleKorean
	}
	_, idx, conf := localeMatcher.Match(t)
	if conf == language.No {
		return LocaleKorean
	}
	return Locale(idx)
}

func (l Locale) String() string {
	if l == LocaleEnglish {
		return "en"
	}
	return "ko"
}

var koWeekdays = [7]string{"일", "월", "화", "수", "목", "금", "토"}

// ShortMonth is the column label for a month.
func (l Locale) ShortMonth(m time.Month) string {
	if l == LocaleEnglish {
		return m.String()[:3]
	}
	return fmt.Sprintf("%d월", int(m))
}

// Weekday is the row label for a weekday.
func (l Locale) Weekday(d time.Weekday) string {
	if l == LocaleEnglish {
		return d.String()[:3]
	}
	return koWeekdays[d]
}

// LongDate formats a tooltip date.
func (l Locale) LongDate(t time.Time) string {
	if l == LocaleEnglish {
		return t.Format("January 2, 2006")
	}
	return fmt.Sprintf("%d년 %d월 %d일", t.Year(), int(t.Month()), t.Day())
}

// PostCount formats a post total.
func (l Locale) PostCount(n int) string {
	if l == LocaleEnglish {
		if n == 1 {
			return "1 post"
		}
		return fmt.Sprintf("%d posts", n)
	}
	return fmt.Sprintf("%d개의 글", n)
}
