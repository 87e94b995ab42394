package dedup

import (
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	DefaultTopN = 50
	// DefaultDelimiters are chinese and ascii sentence terminators plus line breaks.
	DefaultDelimiters = "，。：；？！…\r\n,.;:?!"
)

// Segments splits content on every delimiter rune. Like strings.Split, n
// delimiters always give n+1 segments, empty ones included.
func Segments(content, delimiters string) []string {
	if delimiters == "" {
		delimiters = DefaultDelimiters
	}
	var segments []string
	start := 0
	for i, r := range content {
		if strings.ContainsRune(delimiters, r) {
			segments = append(segments, content[start:i])
			start = i + utf8.RuneLen(r)
		}
	}
	return append(segments, content[start:])
}

// TopSentences returns the n longest segments of content, longest first.
// Segments of equal length keep their order in content. n <= 0 keeps all.
func TopSentences(content string, n int, delimiters string) []string {
	segments := Segments(content, delimiters)
	sort.SliceStable(segments, func(i, j int) bool {
		return utf8.RuneCountInString(segments[i]) > utf8.RuneCountInString(segments[j])
	})
	if n > 0 && len(segments) > n {
		segments = segments[:n]
	}
	return segments
}
