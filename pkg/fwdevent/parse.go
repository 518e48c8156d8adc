/*
Copyright 2018-2024 Craig Johnston <cjimti@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package fwdevent

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Log4jNamespace is the namespace URI of the log4j XML layout
const Log4jNamespace = "http://jakarta.apache.org/log4j/"

const (
	log4jPrefix = "log4j"
	rootElement = "event"
)

// ParseErrorKind classifies a hard parse failure
type ParseErrorKind int

const (
	KindEmptyInput ParseErrorKind = iota
	KindMalformedXML
	KindUnexpectedRoot
)

// ParseError is returned by Parse when the fragment cannot be decoded
type ParseError struct {
	Kind  ParseErrorKind
	Root  string // root element found, for KindUnexpectedRoot
	cause error
}

func (e *ParseError) Error() string {
	switch e.Kind {
	case KindEmptyInput:
		return "empty log event fragment"
	case KindUnexpectedRoot:
		return fmt.Sprintf("unexpected root element %q, want %q", e.Root, rootElement)
	default:
		if e.cause != nil {
			return "malformed log event xml: " + e.cause.Error()
		}
		return "malformed log event xml"
	}
}

// Cause returns the underlying decoder error, if any
func (e *ParseError) Cause() error { return e.cause }

// Unwrap supports errors.Is and errors.As
func (e *ParseError) Unwrap() error { return e.cause }

// Is matches sentinel errors by kind
func (e *ParseError) Is(target error) bool {
	t, ok := target.(*ParseError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinel errors for errors.Is checks
var (
	ErrEmptyInput     = &ParseError{Kind: KindEmptyInput}
	ErrMalformedXML   = &ParseError{Kind: KindMalformedXML}
	ErrUnexpectedRoot = &ParseError{Kind: KindUnexpectedRoot}
)

type wireLocation struct {
	Class  string `xml:"class,attr"`
	Method string `xml:"method,attr"`
	File   string `xml:"file,attr"`
	Line   string `xml:"line,attr"`
}

type wireData struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

type wireEvent struct {
	Logger     string        `xml:"logger,attr"`
	Level      string        `xml:"level,attr"`
	Timestamp  string        `xml:"timestamp,attr"`
	Thread     string        `xml:"thread,attr"`
	Message    string        `xml:"message"`
	Throwable  *string       `xml:"throwable"`
	Location   *wireLocation `xml:"locationInfo"`
	Properties []wireData    `xml:"properties>data"`
}

// Parse decodes one log4j XML event fragment.
//
// A missing log4j namespace declaration on the root element is added before
// decoding. Empty input, malformed XML and a root other than event are
// returned as *ParseError values; any missing field of a well-formed event
// takes its default. A zero Timestamp means the fragment carried none.
func Parse(fragment string) (*LogEvent, error) {
	text := strings.TrimSpace(fragment)
	if text == "" {
		return nil, ErrEmptyInput
	}

	text = repairNamespace(text)

	dec := xml.NewDecoder(strings.NewReader(text))
	dec.Strict = true

	var root xml.StartElement
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, &ParseError{Kind: KindMalformedXML, cause: errors.Wrap(err, "reading root element")}
		}
		if se, ok := tok.(xml.StartElement); ok {
			root = se
			break
		}
	}

	if !isEventRoot(root.Name) {
		name := root.Name.Local
		if root.Name.Space != "" {
			name = root.Name.Space + ":" + name
		}
		return nil, &ParseError{Kind: KindUnexpectedRoot, Root: name}
	}

	var w wireEvent
	if err := dec.DecodeElement(&w, &root); err != nil {
		return nil, &ParseError{Kind: KindMalformedXML, cause: errors.Wrap(err, "decoding event")}
	}
	if err := expectEnd(dec); err != nil {
		return nil, &ParseError{Kind: KindMalformedXML, cause: err}
	}

	return w.toEvent(), nil
}

// expectEnd consumes the rest of the input, allowing only whitespace,
// comments and processing instructions after the event element.
func expectEnd(dec *xml.Decoder) error {
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "reading past event")
		}
		switch t := tok.(type) {
		case xml.Comment, xml.ProcInst:
		case xml.CharData:
			if len(bytes.TrimSpace(t)) > 0 {
				return errors.Errorf("unexpected text %q after event", bytes.TrimSpace(t))
			}
		case xml.StartElement:
			return errors.Errorf("unexpected element %s after event", t.Name.Local)
		default:
			return errors.Errorf("unexpected %T after event", tok)
		}
	}
}

func isEventRoot(name xml.Name) bool {
	if name.Local != rootElement {
		return false
	}
	switch name.Space {
	case "", Log4jNamespace, log4jPrefix:
		return true
	}
	return false
}

func (w *wireEvent) toEvent() *LogEvent {
	ev := &LogEvent{
		Level:      ParseLevel(w.Level),
		LoggerName: w.Logger,
		Message:    strings.TrimSpace(w.Message),
		Thread:     w.Thread,
	}

	if ms, err := strconv.ParseInt(strings.TrimSpace(w.Timestamp), 10, 64); err == nil && ms != 0 {
		ev.Timestamp = time.UnixMilli(ms)
	}

	if w.Throwable != nil {
		ev.ExceptionText = strings.TrimSpace(*w.Throwable)
	}

	if w.Location != nil {
		ev.Location = &LocationInfo{
			Class:  w.Location.Class,
			Method: w.Location.Method,
			File:   w.Location.File,
			Line:   w.Location.Line,
		}
	}

	for _, d := range w.Properties {
		if d.Name == "" {
			continue
		}
		ev.Properties.Set(d.Name, d.Value)
	}

	return ev
}

// repairNamespace adds the log4j namespace declaration to the root start
// tag when the root uses the log4j prefix without declaring it.
func repairNamespace(text string) string {
	start := rootStart(text)
	if start < 0 {
		return text
	}

	nameEnd := start + 1
	for nameEnd < len(text) && !isNameEnd(text[nameEnd]) {
		nameEnd++
	}
	name := text[start+1 : nameEnd]
	if !strings.HasPrefix(name, log4jPrefix+":") {
		return text
	}

	tagEnd := startTagEnd(text, nameEnd)
	if tagEnd < 0 {
		return text
	}
	if strings.Contains(text[nameEnd:tagEnd], "xmlns:"+log4jPrefix) {
		return text
	}

	decl := ` xmlns:` + log4jPrefix + `="` + Log4jNamespace + `"`
	return text[:nameEnd] + decl + text[nameEnd:]
}

// rootStart returns the index of the '<' opening the first element,
// skipping declarations, comments and processing instructions.
func rootStart(text string) int {
	i := 0
	for i < len(text) {
		lt := strings.IndexByte(text[i:], '<')
		if lt < 0 {
			return -1
		}
		lt += i
		rest := text[lt:]
		switch {
		case strings.HasPrefix(rest, "<?"):
			end := strings.Index(rest, "?>")
			if end < 0 {
				return -1
			}
			i = lt + end + 2
		case strings.HasPrefix(rest, "<!--"):
			end := strings.Index(rest, "-->")
			if end < 0 {
				return -1
			}
			i = lt + end + 3
		case strings.HasPrefix(rest, "<!"):
			end := strings.IndexByte(rest, '>')
			if end < 0 {
				return -1
			}
			i = lt + end + 1
		default:
			return lt
		}
	}
	return -1
}

// startTagEnd returns the index of the '>' or "/>" closing the start tag
// beginning before from, honoring quoted attribute values.
func startTagEnd(text string, from int) int {
	var quote byte
	for i := from; i < len(text); i++ {
		c := text[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '>':
			if i > from && text[i-1] == '/' {
				return i - 1
			}
			return i
		}
	}
	return -1
}

func isNameEnd(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '>', '/':
		return true
	}
	return false
}
