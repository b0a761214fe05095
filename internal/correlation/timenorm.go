// Package correlation links photos to races using bib numbers and capture times.
package correlation

import (
	"strings"
	"time"
)

// NormalizedLayout is the canonical creation time format stored on photos
const NormalizedLayout = "2006-01-02T15:04:05"

// defaultInstant is used by SecondsDiff when a timestamp matches no pattern:
// second 1 of the zero date, as produced by parsing "1" with "%S".
var defaultInstant = time.Date(1900, time.January, 1, 0, 0, 1, 0, time.UTC)

var strftimeDirectives = map[byte]string{
	'Y': "2006",
	'y': "06",
	'm': "1",
	'd': "2",
	'H': "15",
	'I': "3",
	'M': "4",
	'S': "5",
	'p': "PM",
	'b': "Jan",
	'B': "January",
	'a': "Mon",
	'A': "Monday",
	'Z': "MST",
	'%': "%",
}

// offsetLayouts are the forms accepted for %z: +0100, +01:00 and Z
var offsetLayouts = []string{"-0700", "-07:00", "Z07:00", "Z0700"}

// TimeNormalizer parses timestamps against an ordered list of strftime-style
// patterns. When several patterns parse, the last one wins.
type TimeNormalizer struct {
	patterns []string
	// layouts holds the accepted variants of each pattern, in pattern order
	layouts [][]string
}

// ParsePatterns splits a semicolon separated pattern list, dropping blanks
func ParsePatterns(raw string) []string {
	var patterns []string
	for _, p := range strings.Split(raw, ";") {
		if p = strings.TrimSpace(p); p != "" {
			patterns = append(patterns, p)
		}
	}
	return patterns
}

// NewTimeNormalizer creates a normalizer for the given strftime patterns
func NewTimeNormalizer(patterns []string) *TimeNormalizer {
	layouts := make([][]string, 0, len(patterns))
	for _, p := range patterns {
		layouts = append(layouts, toGoLayouts(p))
	}
	return &TimeNormalizer{
		patterns: patterns,
		layouts:  layouts,
	}
}

// Patterns returns the configured strftime patterns
func (n *TimeNormalizer) Patterns() []string {
	return n.patterns
}

// Parse returns the instant of raw using the last matching pattern.
// Any zone information is dropped and the wall clock is read as UTC.
func (n *TimeNormalizer) Parse(raw string) (time.Time, bool) {
	var (
		parsed time.Time
		found  bool
	)
	for _, variants := range n.layouts {
		if t, ok := parseAny(variants, raw); ok {
			parsed = time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
			found = true
		}
	}
	return parsed, found
}

func parseAny(layouts []string, raw string) (time.Time, bool) {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Normalize formats raw as NormalizedLayout, or returns "" if no pattern parses
func (n *TimeNormalizer) Normalize(raw string) string {
	t, ok := n.Parse(raw)
	if !ok {
		return ""
	}
	return t.Format(NormalizedLayout)
}

// SecondsDiff returns raw1 - raw2 in whole seconds. Unparseable input counts as defaultInstant.
func (n *TimeNormalizer) SecondsDiff(raw1, raw2 string) int {
	t1, ok := n.Parse(raw1)
	if !ok {
		t1 = defaultInstant
	}
	t2, ok := n.Parse(raw2)
	if !ok {
		t2 = defaultInstant
	}
	return int(t1.Sub(t2) / time.Second)
}

// toGoLayouts translates a strftime pattern into time.Parse layouts, one per
// accepted %z form. Patterns without %z yield a single layout.
func toGoLayouts(pattern string) []string {
	layouts := []string{""}
	var b strings.Builder
	flush := func(suffix []string) {
		next := make([]string, 0, len(layouts)*len(suffix))
		for _, l := range layouts {
			for _, s := range suffix {
				next = append(next, l+b.String()+s)
			}
		}
		layouts = next
		b.Reset()
	}
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		if c != '%' || i+1 >= len(pattern) {
			b.WriteByte(c)
			continue
		}
		i++
		d := pattern[i]
		if d == 'z' {
			flush(offsetLayouts)
			continue
		}
		if d == 'f' {
			// fractional seconds of any precision
			b.WriteString("999999999")
			continue
		}
		if layout, ok := strftimeDirectives[d]; ok {
			b.WriteString(layout)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(d)
	}
	flush([]string{""})
	return layouts
}
