package fwdfilter

import (
	"sort"
	"unicode"

	log "github.com/sirupsen/logrus"
)

// Span is a half-open range of rune offsets
type Span struct {
	Start int
	End   int
}

// Segment is a piece of a message, highlighted or not
type Segment struct {
	Text        string `json:"text"`
	Highlighted bool   `json:"highlighted,omitempty"`
}

// Spans returns every match of every term in message, unsorted.
// Plain text terms yield non-overlapping case-insensitive occurrences;
// regex terms yield all non-empty matches.
func Spans(message string, terms []SearchTerm) []Span {
	runes := []rune(message)
	var lowered []rune
	var spans []Span

	for _, t := range terms {
		if t.Kind == Regex {
			spans = append(spans, regexSpans(t, message)...)
			continue
		}
		if lowered == nil {
			lowered = lowerRunes(runes)
		}
		spans = append(spans, textSpans(lowered, lowerRunes([]rune(t.Pattern)))...)
	}
	return spans
}

func lowerRunes(rs []rune) []rune {
	out := make([]rune, len(rs))
	for i, r := range rs {
		out[i] = unicode.ToLower(r)
	}
	return out
}

func textSpans(text, pattern []rune) []Span {
	if len(pattern) == 0 {
		return nil
	}
	var spans []Span
	for i := 0; i+len(pattern) <= len(text); {
		if runesEqual(text[i:i+len(pattern)], pattern) {
			spans = append(spans, Span{Start: i, End: i + len(pattern)})
			i += len(pattern)
			continue
		}
		i++
	}
	return spans
}

func runesEqual(a, b []rune) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// regexSpans iterates all matches; regexp2 advances past empty matches
func regexSpans(t SearchTerm, message string) []Span {
	if t.re == nil {
		return nil
	}
	var spans []Span
	m, err := t.re.FindStringMatch(message)
	for m != nil && err == nil {
		if m.Length > 0 {
			spans = append(spans, Span{Start: m.Index, End: m.Index + m.Length})
		}
		m, err = t.re.FindNextMatch(m)
	}
	if err != nil {
		log.Debugf("Highlight regex %q: %v", t.Pattern, err)
	}
	return spans
}

// Merge sorts spans and joins those that overlap or touch
func Merge(spans []Span) []Span {
	if len(spans) == 0 {
		return nil
	}
	sorted := make([]Span, len(spans))
	copy(sorted, spans)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start == sorted[j].Start {
			return sorted[i].End < sorted[j].End
		}
		return sorted[i].Start < sorted[j].Start
	})

	merged := []Span{sorted[0]}
	for _, s := range sorted[1:] {
		last := &merged[len(merged)-1]
		if s.Start <= last.End {
			if s.End > last.End {
				last.End = s.End
			}
			continue
		}
		merged = append(merged, s)
	}
	return merged
}

// Highlight splits message into alternating plain and highlighted
// segments. Joining the segment texts gives back message unchanged.
func Highlight(message string, terms []SearchTerm) []Segment {
	if message == "" {
		return nil
	}
	runes := []rune(message)
	runs := Merge(Spans(message, terms))

	var segs []Segment
	pos := 0
	for _, r := range runs {
		if r.Start > pos {
			segs = append(segs, Segment{Text: string(runes[pos:r.Start])})
		}
		segs = append(segs, Segment{Text: string(runes[r.Start:r.End]), Highlighted: true})
		pos = r.End
	}
	if pos < len(runes) {
		segs = append(segs, Segment{Text: string(runes[pos:])})
	}
	return segs
}
