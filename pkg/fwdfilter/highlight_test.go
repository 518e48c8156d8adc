package fwdfilter

import (
	"strings"
	"testing"
)

func join(segs []Segment) string {
	var b strings.Builder
	for _, s := range segs {
		b.WriteString(s.Text)
	}
	return b.String()
}

// TestHighlightMergesOverlaps tests that overlapping terms produce one run
func TestHighlightMergesOverlaps(t *testing.T) {
	terms := []SearchTerm{
		mustTerm(t, PlainText, Include, "ab"),
		mustTerm(t, PlainText, Include, "ba"),
	}
	segs := Highlight("ababab", terms)

	if len(segs) != 1 {
		t.Fatalf("Expected 1 segment, got %d: %+v", len(segs), segs)
	}
	if !segs[0].Highlighted || segs[0].Text != "ababab" {
		t.Errorf("Expected whole message highlighted, got %+v", segs[0])
	}
}

// TestHighlightSegments tests alternating segments and exact reconstruction
func TestHighlightSegments(t *testing.T) {
	msg := "Error: disk ERROR on /dev/sda"
	terms := []SearchTerm{
		mustTerm(t, PlainText, Include, "error"),
		mustTerm(t, Regex, Exclude, `sd[a-z]`),
	}
	segs := Highlight(msg, terms)

	want := []Segment{
		{Text: "Error", Highlighted: true},
		{Text: ": disk "},
		{Text: "ERROR", Highlighted: true},
		{Text: " on /dev/"},
		{Text: "sda", Highlighted: true},
	}
	if len(segs) != len(want) {
		t.Fatalf("Expected %d segments, got %d: %+v", len(want), len(segs), segs)
	}
	for i := range want {
		if segs[i] != want[i] {
			t.Errorf("Segment %d: expected %+v, got %+v", i, want[i], segs[i])
		}
	}
	if join(segs) != msg {
		t.Errorf("Expected reconstruction %q, got %q", msg, join(segs))
	}
}

// TestHighlightTouchingSpans tests that adjacent spans merge
func TestHighlightTouchingSpans(t *testing.T) {
	terms := []SearchTerm{
		mustTerm(t, PlainText, Include, "foo"),
		mustTerm(t, PlainText, Include, "bar"),
	}
	segs := Highlight("xfoobarx", terms)
	if len(segs) != 3 || segs[1].Text != "foobar" || !segs[1].Highlighted {
		t.Errorf("Expected merged foobar run, got %+v", segs)
	}
}

// TestHighlightZeroWidthRegex tests that empty matches neither loop nor highlight
func TestHighlightZeroWidthRegex(t *testing.T) {
	terms := []SearchTerm{mustTerm(t, Regex, Include, `x*`)}
	segs := Highlight("abxxc", terms)
	if join(segs) != "abxxc" {
		t.Errorf("Expected exact reconstruction, got %q", join(segs))
	}
	if len(segs) != 3 || segs[1].Text != "xx" || !segs[1].Highlighted {
		t.Errorf("Expected xx highlighted, got %+v", segs)
	}
}

// TestHighlightUnicode tests rune offsets with multi-byte text
func TestHighlightUnicode(t *testing.T) {
	msg := "Größe überschritten: ÜBER"
	terms := []SearchTerm{mustTerm(t, PlainText, Include, "über")}
	segs := Highlight(msg, terms)

	if join(segs) != msg {
		t.Errorf("Expected exact reconstruction, got %q", join(segs))
	}
	var hits []string
	for _, s := range segs {
		if s.Highlighted {
			hits = append(hits, s.Text)
		}
	}
	if len(hits) != 2 || hits[0] != "über" || hits[1] != "ÜBER" {
		t.Errorf("Expected [über ÜBER], got %v", hits)
	}
}

// TestHighlightNoTerms tests a message without terms
func TestHighlightNoTerms(t *testing.T) {
	segs := Highlight("plain", nil)
	if len(segs) != 1 || segs[0].Highlighted || segs[0].Text != "plain" {
		t.Errorf("Expected one plain segment, got %+v", segs)
	}
	if Highlight("", nil) != nil {
		t.Error("Expected nil for empty message")
	}
}

// TestMerge tests span merging directly
func TestMerge(t *testing.T) {
	got := Merge([]Span{{5, 7}, {0, 2}, {1, 3}, {3, 4}, {9, 10}})
	want := []Span{{0, 4}, {5, 7}, {9, 10}}
	if len(got) != len(want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Expected %v, got %v", want, got)
		}
	}
}
