package flagx

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A full server command line; only the flags a layer asks for survive.
var serverArgs = []string{
	"-a", ":50051",
	"-d=postgres://auth:secret@db/gophauth?sslmode=disable",
	"-o", "2",
	"-c", "server.json",
	"-f", "gateway-key",
	"extra",
}

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{
			name:    "config layer sees only the config path",
			args:    serverArgs,
			allowed: []string{"-c", "-config"},
			want:    []string{"-c", "server.json"},
		},
		{
			name:    "equals form keeps values containing equals signs",
			args:    serverArgs,
			allowed: []string{"-d"},
			want:    []string{"-d=postgres://auth:secret@db/gophauth?sslmode=disable"},
		},
		{
			name:    "several flags keep command line order",
			args:    serverArgs,
			allowed: []string{"-f", "-a", "-o"},
			want:    []string{"-a", ":50051", "-o", "2", "-f", "gateway-key"},
		},
		{
			name:    "dash-leading token is not taken as a value",
			args:    []string{"-o", "-1"},
			allowed: []string{"-o"},
			want:    []string{"-o"},
		},
		{
			name:    "positional arguments are dropped",
			args:    []string{"login", "-t", "3s", "whoami"},
			allowed: []string{"-t"},
			want:    []string{"-t", "3s"},
		},
		{
			name:    "nothing allowed",
			args:    serverArgs,
			allowed: nil,
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterArgs(tt.args, tt.allowed)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("FilterArgs() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFilterArgs_NeverNil(t *testing.T) {
	got := FilterArgs(nil, []string{"-c"})
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestConfigFile(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"from a full server command line", serverArgs, "server.json"},
		{"long form with equals", []string{"-a", ":1", "-config=/etc/gophauth/client.json"}, "/etc/gophauth/client.json"},
		{"last occurrence wins across forms", []string{"-config", "a.json", "-c=b.json"}, "b.json"},
		{"missing value yields empty path", []string{"-t", "5s", "-c"}, ""},
		{"explicitly empty", []string{"-c="}, ""},
		{"no arguments", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ConfigFile(tt.args))
		})
	}
}
