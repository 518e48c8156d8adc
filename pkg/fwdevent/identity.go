package fwdevent

import (
	"regexp"
	"strings"
)

const (
	// DefaultAppProperty names the property carrying the application name
	DefaultAppProperty = "log4japp"

	// DefaultMachineProperty names the property carrying the machine name
	DefaultMachineProperty = "log4jmachinename"

	keySeparator = ";"
)

// appPattern strips an optional dotted package prefix and captures the bare
// identifier and an optional parenthesized numeric suffix.
var appPattern = regexp.MustCompile(`^(?:[A-Za-z_][A-Za-z0-9_]*\.)*([A-Za-z_][A-Za-z0-9_]*)(\(\d+\))?$`)

// ApplicationIdentity is the sending application derived from the event
// properties. An empty Name means the identity could not be resolved.
type ApplicationIdentity struct {
	Name           string `json:"name"`
	InstanceSuffix string `json:"instanceSuffix,omitempty"`
}

// Resolved reports whether a name was found
func (a ApplicationIdentity) Resolved() bool {
	return a.Name != ""
}

// String returns the name followed by the instance suffix, e.g. "MyApp(1234)"
func (a ApplicationIdentity) String() string {
	return a.Name + a.InstanceSuffix
}

// ExtractIdentity reads the application identity from the named property.
// "com.acme.MyApp(1234)" yields MyApp and (1234). A value that does not fit
// the pattern is used verbatim as the name.
func ExtractIdentity(props Properties, appProperty string) ApplicationIdentity {
	raw, ok := props.Get(appProperty)
	raw = strings.TrimSpace(raw)
	if !ok || raw == "" {
		return ApplicationIdentity{}
	}

	m := appPattern.FindStringSubmatch(raw)
	if m == nil {
		return ApplicationIdentity{Name: raw}
	}
	return ApplicationIdentity{Name: m[1], InstanceSuffix: m[2]}
}

// SenderDescriptor combines the machine name property, when present, with
// the UDP sender address.
func SenderDescriptor(props Properties, machineProperty, addr string) string {
	machine, ok := props.Get(machineProperty)
	machine = strings.TrimSpace(machine)
	if !ok || machine == "" {
		return addr
	}
	return machine + "@" + addr
}

// ChannelKey builds the composite channel key "{app};{sender}"
func ChannelKey(app, sender string) string {
	return app + keySeparator + sender
}

// SplitChannelKey splits a key built by ChannelKey. The application part
// ends at the first separator.
func SplitChannelKey(key string) (app, sender string) {
	i := strings.Index(key, keySeparator)
	if i < 0 {
		return key, ""
	}
	return key[:i], key[i+len(keySeparator):]
}

// NormalizeKey returns the form of key used for case-insensitive hashing
func NormalizeKey(key string) string {
	return strings.ToLower(key)
}

// KeyEqual compares two channel keys case-insensitively
func KeyEqual(a, b string) bool {
	return strings.EqualFold(a, b)
}
