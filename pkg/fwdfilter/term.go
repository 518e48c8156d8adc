package fwdfilter

import (
	"strings"
	"time"

	"github.com/dlclark/regexp2"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// TermKind is how a term's pattern is interpreted
type TermKind int

const (
	PlainText TermKind = iota
	Regex
)

func (k TermKind) String() string {
	if k == Regex {
		return "regex"
	}
	return "text"
}

// TermMode is whether a term is required or forbidden
type TermMode int

const (
	Include TermMode = iota
	Exclude
)

func (m TermMode) String() string {
	if m == Exclude {
		return "exclude"
	}
	return "include"
}

// matchTimeout bounds a single regex evaluation
const matchTimeout = 250 * time.Millisecond

var (
	ErrInvalidPattern = errors.New("invalid pattern")
	ErrDuplicateTerm  = errors.New("term already present")
	ErrEmptyTerm      = errors.New("empty term")
)

// SearchTerm is one include or exclude pattern. Build it with NewTerm.
type SearchTerm struct {
	Kind    TermKind `json:"kind"`
	Mode    TermMode `json:"mode"`
	Pattern string   `json:"pattern"`

	lower   string
	re      *regexp2.Regexp
	exclude *regexp2.Regexp
}

// NewTerm validates and compiles a term. A regex that does not compile
// is rejected with ErrInvalidPattern.
func NewTerm(kind TermKind, mode TermMode, pattern string) (SearchTerm, error) {
	if pattern == "" {
		return SearchTerm{}, ErrEmptyTerm
	}

	t := SearchTerm{Kind: kind, Mode: mode, Pattern: pattern}

	switch kind {
	case Regex:
		re, err := regexp2.Compile(pattern, regexp2.None)
		if err != nil {
			return SearchTerm{}, errors.Wrapf(ErrInvalidPattern, "%s: %v", pattern, err)
		}
		re.MatchTimeout = matchTimeout
		t.re = re
	default:
		t.lower = strings.ToLower(pattern)
	}

	if mode == Exclude {
		opts := regexp2.None
		if kind == PlainText {
			opts = regexp2.IgnoreCase
		}
		ex, err := regexp2.Compile(ExcludePattern(t), opts)
		if err != nil {
			return SearchTerm{}, errors.Wrapf(ErrInvalidPattern, "%s: %v", pattern, err)
		}
		ex.MatchTimeout = matchTimeout
		t.exclude = ex
	}

	return t, nil
}

// ParseTerm reads the search box syntax: a leading '-' makes an exclude
// term, an optional leading '+' an include term, and /.../ a regex.
func ParseTerm(input string) (SearchTerm, error) {
	s := strings.TrimSpace(input)
	mode := Include
	switch {
	case strings.HasPrefix(s, "-"):
		mode = Exclude
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}

	kind := PlainText
	if len(s) >= 2 && strings.HasPrefix(s, "/") && strings.HasSuffix(s, "/") {
		kind = Regex
		s = s[1 : len(s)-1]
	}
	return NewTerm(kind, mode, s)
}

// ExcludePattern is the anchored pattern an exclude term must match for
// text to stay visible. It fails only when the text ends with the term.
func ExcludePattern(t SearchTerm) string {
	p := t.Pattern
	if t.Kind == PlainText {
		p = regexp2.Escape(p)
	}
	return "^(?!.*" + p + "$)"
}

// String renders the term in search box syntax
func (t SearchTerm) String() string {
	var b strings.Builder
	if t.Mode == Exclude {
		b.WriteByte('-')
	} else {
		b.WriteByte('+')
	}
	if t.Kind == Regex {
		b.WriteByte('/')
		b.WriteString(t.Pattern)
		b.WriteByte('/')
	} else {
		b.WriteString(t.Pattern)
	}
	return b.String()
}

// Matches reports whether the term's own pattern occurs in s
func (t SearchTerm) Matches(s string) bool {
	if t.Kind == Regex {
		if t.re == nil {
			return false
		}
		ok, err := t.re.MatchString(s)
		if err != nil {
			log.Debugf("Regex %q: %v", t.Pattern, err)
			return false
		}
		return ok
	}
	return strings.Contains(strings.ToLower(s), t.lower)
}

// passes reports whether s satisfies the exclude pattern, i.e. does not
// end with the term.
func (t SearchTerm) passes(s string) bool {
	if t.exclude == nil {
		return true
	}
	ok, err := t.exclude.MatchString(s)
	if err != nil {
		log.Debugf("Exclude pattern %q: %v", t.Pattern, err)
		return true
	}
	return ok
}

// TermList is an ordered set of terms, unique by pattern text
type TermList struct {
	terms []SearchTerm
}

// Add appends t. Duplicates and uncompiled terms are rejected and the
// list is left unchanged.
func (l *TermList) Add(t SearchTerm) error {
	if t.Pattern == "" {
		return ErrEmptyTerm
	}
	if t.Kind == Regex && t.re == nil {
		return errors.Wrap(ErrInvalidPattern, t.Pattern)
	}
	if t.Mode == Exclude && t.exclude == nil {
		return errors.Wrap(ErrInvalidPattern, t.Pattern)
	}
	for _, existing := range l.terms {
		if existing.Pattern == t.Pattern {
			return errors.Wrap(ErrDuplicateTerm, t.Pattern)
		}
	}
	l.terms = append(l.terms, t)
	return nil
}

// AddString parses input with ParseTerm and adds it
func (l *TermList) AddString(input string) (SearchTerm, error) {
	t, err := ParseTerm(input)
	if err != nil {
		return SearchTerm{}, err
	}
	return t, l.Add(t)
}

// Remove deletes the term with the given pattern
func (l *TermList) Remove(pattern string) bool {
	for i, t := range l.terms {
		if t.Pattern == pattern {
			l.terms = append(l.terms[:i], l.terms[i+1:]...)
			return true
		}
	}
	return false
}

// Clear removes every term
func (l *TermList) Clear() {
	l.terms = nil
}

// Terms returns a copy of the terms in insertion order
func (l *TermList) Terms() []SearchTerm {
	out := make([]SearchTerm, len(l.terms))
	copy(out, l.terms)
	return out
}

// Len returns the number of terms
func (l *TermList) Len() int {
	return len(l.terms)
}
