package fwdfilter

import (
	"testing"

	"github.com/txn2/logfwd/pkg/fwdevent"
)

func mustTerm(t *testing.T, kind TermKind, mode TermMode, pattern string) SearchTerm {
	t.Helper()
	term, err := NewTerm(kind, mode, pattern)
	if err != nil {
		t.Fatalf("NewTerm(%q) failed: %v", pattern, err)
	}
	return term
}

// TestFilterIncludeExclude tests AND over includes and NONE over excludes
func TestFilterIncludeExclude(t *testing.T) {
	first := &fwdevent.LogEvent{LoggerName: "MyApp.Logger", Message: "Error occurred", Level: fwdevent.LevelError}
	second := &fwdevent.LogEvent{LoggerName: "OtherLogger", Message: "Error occurred", Level: fwdevent.LevelError}

	f := Filter{
		Levels: &LevelSet{},
		Terms: []SearchTerm{
			mustTerm(t, PlainText, Include, "Error"),
			mustTerm(t, PlainText, Exclude, "MyApp.Logger"),
		},
	}

	visible := f.Apply([]*fwdevent.LogEvent{first, second})
	if len(visible) != 1 || visible[0] != second {
		t.Errorf("Expected only the second event visible, got %d events", len(visible))
	}
}

// TestFilterExcludeOnlyAtEnd tests that exclusion applies to text ending with the term
func TestFilterExcludeOnlyAtEnd(t *testing.T) {
	f := Filter{Terms: []SearchTerm{mustTerm(t, PlainText, Exclude, "timeout")}}

	endsWith := &fwdevent.LogEvent{LoggerName: "a", Message: "request timeout"}
	contains := &fwdevent.LogEvent{LoggerName: "a", Message: "timeout while reading"}
	upper := &fwdevent.LogEvent{LoggerName: "a", Message: "request TIMEOUT"}

	if f.Visible(endsWith) {
		t.Error("Expected message ending with the term to be excluded")
	}
	if !f.Visible(contains) {
		t.Error("Expected message merely containing the term to stay visible")
	}
	if f.Visible(upper) {
		t.Error("Expected plain text exclusion to ignore case")
	}
}

// TestFilterLevels tests that hidden levels win over terms
func TestFilterLevels(t *testing.T) {
	levels := &LevelSet{}
	levels.HideNames("debug, trace")

	f := Filter{Levels: levels}
	if f.Visible(&fwdevent.LogEvent{Level: fwdevent.LevelDebug}) {
		t.Error("Expected debug to be hidden")
	}
	if !f.Visible(&fwdevent.LogEvent{Level: fwdevent.LevelInfo}) {
		t.Error("Expected info to be visible")
	}

	if levels.Toggle(fwdevent.LevelDebug) != true {
		t.Error("Expected toggle to show debug")
	}
	if !f.Visible(&fwdevent.LogEvent{Level: fwdevent.LevelDebug}) {
		t.Error("Expected debug to be visible after toggle")
	}

	hidden := levels.Hidden()
	if len(hidden) != 1 || hidden[0] != fwdevent.LevelTrace {
		t.Errorf("Expected only TRACE hidden, got %v", hidden)
	}
}

// TestFilterNoTerms tests that an empty filter shows everything
func TestFilterNoTerms(t *testing.T) {
	var f Filter
	if !f.Visible(&fwdevent.LogEvent{Level: fwdevent.LevelFatal, Message: "x"}) {
		t.Error("Expected event visible with no filter")
	}
}

// TestFilterResolvedMessage tests that includes see exception text when resolved with it
func TestFilterResolvedMessage(t *testing.T) {
	ev := &fwdevent.LogEvent{LoggerName: "a", Message: "failed", ExceptionText: "NullPointerException"}
	term := mustTerm(t, PlainText, Include, "nullpointer")

	if (Filter{Terms: []SearchTerm{term}}).Visible(ev) {
		t.Error("Expected exception text to be ignored by the plain resolver")
	}

	f := Filter{
		Terms:    []SearchTerm{term},
		Resolver: fwdevent.Resolver{Message: fwdevent.MessageWithException},
	}
	if !f.Visible(ev) {
		t.Error("Expected match against exception text")
	}
}
