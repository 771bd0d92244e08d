package ptime

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// RE2 has no lookaround and its \b only knows ASCII, which breaks on words
// such as "às" and "amanhã". Matches are filtered here instead: a match counts
// only when the runes around it are not word runes.

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// bounded reports whether s[start:end] sits between word boundaries.
func bounded(s string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(s[:start])
		if isWordRune(r) {
			return false
		}
	}
	if end < len(s) {
		r, _ := utf8.DecodeRuneInString(s[end:])
		if isWordRune(r) {
			return false
		}
	}
	return true
}

// findWords returns up to n (all when n < 0) submatch index slices of re in s
// whose full match is word bounded. When a candidate is not bounded, each
// shorter anchored form in shorter is tried at the same position before
// moving on. A rejected candidate does not hide a later one starting inside it.
func findWords(re *regexp.Regexp, s string, n int, shorter ...*regexp.Regexp) [][]int {
	var out [][]int
	pos := 0
	for pos < len(s) && (n < 0 || len(out) < n) {
		loc := re.FindStringSubmatchIndex(s[pos:])
		if loc == nil {
			break
		}
		for i := range loc {
			if loc[i] >= 0 {
				loc[i] += pos
			}
		}
		if m := boundedAt(s, loc, shorter); m != nil {
			out = append(out, m)
			pos = m[1]
			continue
		}
		_, size := utf8.DecodeRuneInString(s[loc[0]:])
		pos = loc[0] + size
	}
	return out
}

func boundedAt(s string, loc []int, shorter []*regexp.Regexp) []int {
	if loc[1] > loc[0] && bounded(s, loc[0], loc[1]) {
		return loc
	}
	for _, re := range shorter {
		m := re.FindStringSubmatchIndex(s[loc[0]:])
		if m == nil || m[0] != 0 {
			continue
		}
		for i := range m {
			if m[i] >= 0 {
				m[i] += loc[0]
			}
		}
		if m[1] > m[0] && bounded(s, m[0], m[1]) {
			return m
		}
	}
	return nil
}

func containsWord(re *regexp.Regexp, s string) bool {
	return len(findWords(re, s, 1)) > 0
}

// replaceWords rewrites every bounded match of re using repl, which receives
// the submatch indexes relative to s.
func replaceWords(re *regexp.Regexp, s string, repl func(m []int) string) string {
	matches := findWords(re, s, -1)
	if len(matches) == 0 {
		return s
	}
	var b strings.Builder
	last := 0
	for _, m := range matches {
		b.WriteString(s[last:m[0]])
		b.WriteString(repl(m))
		last = m[1]
	}
	b.WriteString(s[last:])
	return b.String()
}

// group returns submatch i of m in s, or "" when it did not participate.
func group(s string, m []int, i int) string {
	if 2*i+1 >= len(m) || m[2*i] < 0 {
		return ""
	}
	return s[m[2*i]:m[2*i+1]]
}

// nextNonSpace returns the first rune at or after i that is not whitespace.
func nextNonSpace(s string, i int) (rune, bool) {
	for _, r := range s[i:] {
		if !unicode.IsSpace(r) {
			return r, true
		}
	}
	return 0, false
}
