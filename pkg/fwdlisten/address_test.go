package fwdlisten

import "testing"

// TestParseAddress tests scheme handling
func TestParseAddress(t *testing.T) {
	tests := []struct {
		in       string
		network  string
		hostport string
		ok       bool
		wantErr  bool
	}{
		{"udp://0.0.0.0:7071", "udp", "0.0.0.0:7071", true, false},
		{"UDP://127.0.0.1:9", "udp", "127.0.0.1:9", true, false},
		{"udp6://[::1]:7071", "udp6", "[::1]:7071", true, false},
		{"udp://localhost:7071/", "udp", "localhost:7071", true, false},
		{"tcp://0.0.0.0:7071", "", "", false, false},
		{"file:///var/log/app.log", "", "", false, false},
		{"udp://nohost", "", "", true, true},
		{"0.0.0.0:7071", "", "", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			network, hostport, ok, err := ParseAddress(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseAddress(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if ok != tt.ok {
				t.Errorf("ok = %v, want %v", ok, tt.ok)
			}
			if network != tt.network || hostport != tt.hostport {
				t.Errorf("got %q %q, want %q %q", network, hostport, tt.network, tt.hostport)
			}
		})
	}
}
