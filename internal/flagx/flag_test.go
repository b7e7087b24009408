package flagx

import (
	"os"
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
			name:    "separate value",
			args:    []string{"-c", "conf.json", "-x", "other"},
			allowed: []string{"-c"},
			want:    []string{"-c", "conf.json"},
		},
		{
			name:    "equals form",
			args:    []string{"--config=conf.json", "-u=http://x"},
			allowed: []string{"--config"},
			want:    []string{"--config=conf.json"},
		},
		{
			name:    "flag followed by another flag keeps no value",
			args:    []string{"-c", "-u", "http://x"},
			allowed: []string{"-c"},
			want:    []string{"-c"},
		},
		{
			name:    "nothing allowed",
			args:    []string{"-c", "conf.json"},
			allowed: nil,
			want:    []string{},
		},
		{
			name:    "mixed",
			args:    []string{"-u", "http://x", "-k=anon", "-d", "db.sqlite", "-i", "5"},
			allowed: []string{"-u", "-i"},
			want:    []string{"-u", "http://x", "-i", "5"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowed))
		})
	}
}

func TestJsonConfigFlags(t *testing.T) {
	orig := os.Args
	defer func() { os.Args = orig }()

	os.Args = []string{"cmd", "-c", "conf.json", "-u", "http://x"}
	assert.Equal(t, "conf.json", JsonConfigFlags())

	os.Args = []string{"cmd", "-config=other.json"}
	assert.Equal(t, "other.json", JsonConfigFlags())

	os.Args = []string{"cmd", "-u", "http://x"}
	assert.Equal(t, "", JsonConfigFlags())
}
