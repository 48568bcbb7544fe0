package resolvconf

import (
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConf(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "resolv.conf")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestEndpointFromLiteral(t *testing.T) {
	tests := []struct {
		name        string
		server      string
		wantIP      string
		wantPort    int
		expectError bool
	}{
		{
			name:     "IPv4 without port",
			server:   "9.9.9.9",
			wantIP:   "9.9.9.9",
			wantPort: 53,
		},
		{
			name:     "IPv4 with port",
			server:   "9.9.9.9:5353",
			wantIP:   "9.9.9.9",
			wantPort: 5353,
		},
		{
			name:     "bare IPv6",
			server:   "2620:fe::fe",
			wantIP:   "2620:fe::fe",
			wantPort: 53,
		},
		{
			name:     "bracketed IPv6 with port",
			server:   "[2620:fe::fe]:5353",
			wantIP:   "2620:fe::fe",
			wantPort: 5353,
		},
		{
			name:        "hostname is rejected",
			server:      "dns.quad9.net",
			expectError: true,
		},
		{
			name:        "hostname with port is rejected",
			server:      "dns.quad9.net:53",
			expectError: true,
		},
		{
			name:        "port out of range",
			server:      "9.9.9.9:70000",
			expectError: true,
		},
		{
			name:        "port zero",
			server:      "9.9.9.9:0",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr, err := Source{Server: tt.server}.Endpoint()
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, net.ParseIP(tt.wantIP).Equal(addr.IP))
			assert.Equal(t, tt.wantPort, addr.Port)
		})
	}
}

func TestEndpointFromFile(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		wantIP      string
		expectError bool
	}{
		{
			name:    "plain nameserver line",
			content: "nameserver 9.9.9.9\n",
			wantIP:  "9.9.9.9",
		},
		{
			name: "first nameserver wins",
			content: "# local resolver setup\n" +
				"domain example.com\n" +
				"search example.com corp.example.com\n" +
				"nameserver 1.1.1.1\n" +
				"nameserver 8.8.8.8\n",
			wantIP: "1.1.1.1",
		},
		{
			name:    "extra whitespace around the address",
			content: "nameserver \t  9.9.9.9   \n",
			wantIP:  "9.9.9.9",
		},
		{
			name:    "IPv6 nameserver",
			content: "nameserver 2620:fe::fe\n",
			wantIP:  "2620:fe::fe",
		},
		{
			name:        "no nameserver directive",
			content:     "search example.com\noptions ndots:2\n",
			expectError: true,
		},
		{
			name:        "nameserver keyword without address",
			content:     "nameserver\n",
			expectError: true,
		},
		{
			name:        "non-numeric nameserver",
			content:     "nameserver dns.example.com\n",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConf(t, tt.content)
			addr, err := Source{Path: path}.Endpoint()
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, net.ParseIP(tt.wantIP).Equal(addr.IP))
			assert.Equal(t, DefaultPort, addr.Port)
		})
	}
}

func TestEndpointMissingFile(t *testing.T) {
	_, err := Source{Path: filepath.Join(t.TempDir(), "missing.conf")}.Endpoint()
	assert.Error(t, err)
}

func TestEndpointServerTakesPrecedence(t *testing.T) {
	path := writeConf(t, "nameserver 8.8.8.8\n")
	addr, err := Source{Server: "9.9.9.9", Path: path}.Endpoint()
	require.NoError(t, err)
	assert.Equal(t, "9.9.9.9", addr.IP.String())
}
