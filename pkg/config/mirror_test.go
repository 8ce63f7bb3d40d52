package config

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidkik/dirsync/pkg/errors"
)

func TestParseMirror(t *testing.T) {
	tests := []struct {
		name       string
		config     string
		exp        Mirror
		expErr     string
		isFriendly bool
	}{
		{
			name:   "Empty",
			config: "",
			exp: Mirror{
				Version: "1.0",
				LogFile: "sync.log",
				Hash:    "sha256",
			},
		},
		{
			name: "AllFields",
			config: `version: "1.2"
logFile: /var/log/dirsync.log
hash: blake2b
verbose: true`,
			exp: Mirror{
				Version: "1.2",
				LogFile: "/var/log/dirsync.log",
				Hash:    "blake2b",
				Verbose: true,
			},
		},
		{
			name:   "RelativeLogFile",
			config: "logFile: logs/sync.log",
			exp: Mirror{
				Version: "1.0",
				LogFile: "/etc/dirsync/logs/sync.log",
				Hash:    "sha256",
			},
		},
		{
			name:       "IncompatibleVersion",
			config:     `version: "2.0"`,
			expErr:     "incompatible",
			isFriendly: true,
		},
		{
			name:       "UnparseableVersion",
			config:     `version: "latest"`,
			expErr:     "incompatible",
			isFriendly: true,
		},
		{
			name:       "UnknownField",
			config:     "interval: 10",
			expErr:     "could not be parsed",
			isFriendly: true,
		},
		{
			name:       "BadHash",
			config:     "hash: md5",
			expErr:     `must be one of "sha256" or "blake2b", but got "md5"`,
			isFriendly: true,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			fs = afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(fs, "/etc/dirsync/config.yaml", []byte(test.config), 0644))

			config, err := ParseMirror("/etc/dirsync/config.yaml")
			if test.expErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), test.expErr)
				assert.Equal(t, test.isFriendly, errors.IsFriendly(err))
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, test.exp, config)
		})
	}
}

func TestParseMirrorNotFound(t *testing.T) {
	fs = afero.NewMemMapFs()
	_, err := ParseMirror("/missing.yaml")
	assert.EqualError(t, err, `The config file "/missing.yaml" doesn't exist.`)
}

func TestDefault(t *testing.T) {
	assert.Equal(t, Mirror{Version: "1.0", LogFile: "sync.log", Hash: "sha256"}, Default())
}
