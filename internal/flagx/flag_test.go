package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{
			name:    "short flag with separate value",
			args:    []string{"-c", "conf.json", "-a", "localhost"},
			allowed: []string{"-c", "-config"},
			want:    []string{"-c", "conf.json"},
		},
		{
			name:    "equals form",
			args:    []string{"-config=alt.json", "-a", "localhost"},
			allowed: []string{"-c", "-config"},
			want:    []string{"-config=alt.json"},
		},
		{
			name:    "unknown flags ignored",
			args:    []string{"-x", "1", "-y=2", "positional"},
			allowed: []string{"-c"},
			want:    []string{},
		},
		{
			name:    "trailing flag without value",
			args:    []string{"-c"},
			allowed: []string{"-c"},
			want:    []string{"-c"},
		},
		{
			name:    "next dash-prefixed token is not a value",
			args:    []string{"-c", "-config=alt.json"},
			allowed: []string{"-c", "-config"},
			want:    []string{"-c", "-config=alt.json"},
		},
		{
			name:    "repeated flag keeps order",
			args:    []string{"-c", "one.json", "-c", "two.json"},
			allowed: []string{"-c"},
			want:    []string{"-c", "one.json", "-c", "two.json"},
		},
		{
			name:    "empty args",
			args:    nil,
			allowed: []string{"-c"},
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowed))
		})
	}
}

func TestConfigPath(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"short", []string{"-c", "/etc/pk/short.json"}, "/etc/pk/short.json"},
		{"long", []string{"-config", "/etc/pk/long.json"}, "/etc/pk/long.json"},
		{"equals", []string{"-a", ":8080", "-config=/etc/pk/eq.json"}, "/etc/pk/eq.json"},
		{"absent", []string{"-a", ":8080", "-x"}, ""},
		{"last wins", []string{"-c", "/1.json", "-config", "/2.json"}, "/2.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ConfigPath(tt.args))
		})
	}
}
