package fwdevent

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Received is a parsed event tagged with its origin and channel key
type Received struct {
	Event    *LogEvent
	Identity ApplicationIdentity
	Sender   string
	Key      string
}

// Decoder turns datagram text into Received values
type Decoder struct {
	AppProperty     string
	MachineProperty string
	DefaultApp      string
	Now             func() time.Time
}

// NewDecoder returns a Decoder with the default property names and the
// executable name as fallback application.
func NewDecoder() *Decoder {
	return &Decoder{
		AppProperty:     DefaultAppProperty,
		MachineProperty: DefaultMachineProperty,
		DefaultApp:      ProcessName(),
		Now:             time.Now,
	}
}

// Decode parses text received from addr. Parse errors are returned as-is.
func (d *Decoder) Decode(text, addr string) (Received, error) {
	ev, err := Parse(text)
	if err != nil {
		return Received{}, err
	}

	if ev.Timestamp.IsZero() {
		ev.Timestamp = d.now()
	}

	id := ExtractIdentity(ev.Properties, d.appProperty())
	if !id.Resolved() {
		id = ApplicationIdentity{Name: d.DefaultApp}
	}

	sender := SenderDescriptor(ev.Properties, d.machineProperty(), addr)

	return Received{
		Event:    ev,
		Identity: id,
		Sender:   sender,
		Key:      ChannelKey(id.String(), sender),
	}, nil
}

func (d *Decoder) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d *Decoder) appProperty() string {
	if d.AppProperty == "" {
		return DefaultAppProperty
	}
	return d.AppProperty
}

func (d *Decoder) machineProperty() string {
	if d.MachineProperty == "" {
		return DefaultMachineProperty
	}
	return d.MachineProperty
}

// ProcessName returns the executable base name without extension
func ProcessName() string {
	exe, err := os.Executable()
	if err != nil || exe == "" {
		return "logfwd"
	}
	name := filepath.Base(exe)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
