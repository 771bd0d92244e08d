package ptime

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	hoursWordPattern   = regexp.MustCompile(`(?i)(\d{1,2})\s*hrs?`)
	hourMinutePattern  = regexp.MustCompile(`(?i)(\d{1,2})\s*h\s*(\d{2})`)
	atHourPattern      = regexp.MustCompile(`(?i)(às|as)\s*(\d{1,2})`)
	temporalKeyPattern = regexp.MustCompile(`(?i)hoje|amanh[aã]|segunda|ter[cç]a|quarta|quinta|sexta|s[aá]bado|domingo|dia`)
	bareNumberPattern  = regexp.MustCompile(`\d{1,2}`)
)

// Normalize rewrites informal hour phrasing into the two forms the detectors
// understand, "Nh" and "H:MM". Rules run once, in order:
//
//  1. "17 hrs", "17hr"        -> "17h"
//  2. "17h30", "17 h 30"      -> "17:30"
//  3. "às 17", "as 9"         -> "às 17h", "as 9h" (unless ":" or "h" follows)
//  4. with hoje/amanhã/weekday/dia present, a bare 0-23 integer becomes "Nh"
//
// Applying Normalize to its own output may rewrite it again.
func Normalize(text string) string {
	t := replaceWords(hoursWordPattern, text, func(m []int) string {
		return group(text, m, 1) + "h"
	})

	s := t
	t = replaceWords(hourMinutePattern, s, func(m []int) string {
		return group(s, m, 1) + ":" + group(s, m, 2)
	})

	s = t
	t = replaceWords(atHourPattern, s, func(m []int) string {
		if followedByHourMark(s, m[1]) {
			return s[m[0]:m[1]]
		}
		return group(s, m, 1) + " " + group(s, m, 2) + "h"
	})

	if containsWord(temporalKeyPattern, t) {
		s = t
		t = replaceWords(bareNumberPattern, s, func(m []int) string {
			token := s[m[0]:m[1]]
			if !isBareHour(s, m[0], m[1]) {
				return token
			}
			return token + "h"
		})
	}

	return t
}

func followedByHourMark(s string, end int) bool {
	r, ok := nextNonSpace(s, end)
	return ok && (r == ':' || r == 'h' || r == 'H')
}

// isBareHour reports whether s[start:end] is an integer in 0-23 that is not
// already an hour ("9h", "9:30") or part of a date ("15/03", "15-03", "03/15").
func isBareHour(s string, start, end int) bool {
	n, err := strconv.Atoi(s[start:end])
	if err != nil || n < 0 || n > 23 {
		return false
	}
	if r, ok := nextNonSpace(s, end); ok && strings.ContainsRune(":hH/-", r) {
		return false
	}
	if start > 0 && strings.ContainsRune("/-:", rune(s[start-1])) {
		return false
	}
	return true
}
