package fwdevent

import "time"

// LocationInfo is the optional source location attached to an event
type LocationInfo struct {
	Class  string `json:"class,omitempty"`
	Method string `json:"method,omitempty"`
	File   string `json:"file,omitempty"`
	Line   string `json:"line,omitempty"`
}

// Property is a single name/value pair from the event property bag
type Property struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Properties is an ordered property bag with unique names.
// Setting an existing name replaces its value in place.
type Properties struct {
	items []Property
	index map[string]int
}

// Set adds or replaces a property
func (p *Properties) Set(name, value string) {
	if p.index == nil {
		p.index = make(map[string]int)
	}
	if i, ok := p.index[name]; ok {
		p.items[i].Value = value
		return
	}
	p.index[name] = len(p.items)
	p.items = append(p.items, Property{Name: name, Value: value})
}

// Get returns the value for name and whether it was present
func (p Properties) Get(name string) (string, bool) {
	i, ok := p.index[name]
	if !ok {
		return "", false
	}
	return p.items[i].Value, true
}

// Len returns the number of properties
func (p Properties) Len() int {
	return len(p.items)
}

// Each calls fn for every property in insertion order
func (p Properties) Each(fn func(name, value string)) {
	for _, it := range p.items {
		fn(it.Name, it.Value)
	}
}

// List returns a copy of the properties in insertion order
func (p Properties) List() []Property {
	out := make([]Property, len(p.items))
	copy(out, p.items)
	return out
}

// LogEvent is a single decoded log event. It is built once by the parser
// and never mutated afterwards.
type LogEvent struct {
	Level         Level
	Timestamp     time.Time
	LoggerName    string
	Message       string
	Thread        string
	ExceptionText string
	Location      *LocationInfo
	Properties    Properties
}

// HasException reports whether the event carries exception text
func (e *LogEvent) HasException() bool {
	return e.ExceptionText != ""
}
