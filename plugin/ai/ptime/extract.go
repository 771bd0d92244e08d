package ptime

import (
	"regexp"
	"strconv"
	"time"
)

// weekdayPatterns are tested in order, Monday first; the first hit wins.
var weekdayPatterns = []struct {
	pattern *regexp.Regexp
	day     time.Weekday
}{
	{regexp.MustCompile(`(?i)seg(?:unda)?(?:-?feira)?`), time.Monday},
	{regexp.MustCompile(`(?i)ter[cç]a(?:-?feira)?`), time.Tuesday},
	{regexp.MustCompile(`(?i)quar(?:ta)?(?:-?feira)?`), time.Wednesday},
	{regexp.MustCompile(`(?i)quin(?:ta)?(?:-?feira)?`), time.Thursday},
	{regexp.MustCompile(`(?i)sex(?:ta)?(?:-?feira)?`), time.Friday},
	{regexp.MustCompile(`(?i)s[aá]b(?:ado)?`), time.Saturday},
	{regexp.MustCompile(`(?i)dom(?:ingo)?`), time.Sunday},
}

var (
	todayPattern    = regexp.MustCompile(`(?i)hoje`)
	tomorrowPattern = regexp.MustCompile(`(?i)amanh[aã]`)
	datePattern     = regexp.MustCompile(`(\d{1,2})[/-](\d{1,2})(?:[/-](\d{2,4}))?`)
	dayMonthPattern = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})`)
	hourPattern     = regexp.MustCompile(`(?i)(\d{1,2})\s*h`)
	clockPattern    = regexp.MustCompile(`(\d{1,2})\s*:\s*(\d{2})`)
)

// Extract runs every detector over normalized text. Detectors are
// independent; conflicts are settled later by Hints.Signal.
func Extract(normalized string) Hints {
	h := Hints{
		ExplicitDate: DetectDate(normalized),
		ExplicitTime: DetectTime(normalized),
		IsToday:      HasToday(normalized),
		IsTomorrow:   HasTomorrow(normalized),
	}
	if wd, ok := DetectWeekday(normalized); ok {
		h.Weekday = &wd
	}
	return h
}

// DetectWeekday finds a Portuguese weekday name or abbreviation, with or
// without the "-feira" suffix.
func DetectWeekday(text string) (time.Weekday, bool) {
	for _, w := range weekdayPatterns {
		if containsWord(w.pattern, text) {
			return w.day, true
		}
	}
	return 0, false
}

// HasToday reports whether "hoje" appears as a word.
func HasToday(text string) bool {
	return containsWord(todayPattern, text)
}

// HasTomorrow reports whether "amanhã" or "amanha" appears as a word.
func HasTomorrow(text string) bool {
	return containsWord(tomorrowPattern, text)
}

// DetectDate parses the first D/M[/Y] or D-M[-Y] token. Two digit years are
// taken as 20YY. A year glued to more digits is dropped, leaving D/M. A day outside 1-31 or a month outside 1-12 yields nil; the
// day is not checked against the month length.
func DetectDate(text string) *Date {
	matches := findWords(datePattern, text, 1, dayMonthPattern)
	if len(matches) == 0 {
		return nil
	}
	m := matches[0]
	day, _ := strconv.Atoi(group(text, m, 1))
	month, _ := strconv.Atoi(group(text, m, 2))
	var year int
	if y := group(text, m, 3); y != "" {
		year, _ = strconv.Atoi(y)
		if year < 100 {
			year += 2000
		}
	}
	if day < 1 || day > 31 || month < 1 || month > 12 {
		return nil
	}
	return &Date{Day: day, Month: month, Year: year}
}

// DetectTime returns the first "Nh" token, else the first "H:MM" token.
// Tokens outside 00:00-23:59 are skipped.
func DetectTime(text string) *Clock {
	for _, m := range findWords(hourPattern, text, -1) {
		hour, _ := strconv.Atoi(group(text, m, 1))
		if hour <= 23 {
			return &Clock{Hour: hour}
		}
	}
	for _, m := range findWords(clockPattern, text, -1) {
		hour, _ := strconv.Atoi(group(text, m, 1))
		minute, _ := strconv.Atoi(group(text, m, 2))
		if hour <= 23 && minute <= 59 {
			return &Clock{Hour: hour, Minute: minute}
		}
	}
	return nil
}
