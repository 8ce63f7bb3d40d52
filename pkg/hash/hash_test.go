package hash

import (
	"bytes"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHash(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/hello", []byte("hello"), 0644))
	require.NoError(t, afero.WriteFile(fs, "/empty", nil, 0644))

	tests := []struct {
		name      string
		algorithm Algorithm
		path      string
		exp       string
	}{
		{
			name:      "SHA256",
			algorithm: SHA256,
			path:      "/hello",
			exp:       "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824",
		},
		{
			name:      "DefaultIsSHA256",
			algorithm: "",
			path:      "/empty",
			exp:       "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		},
		{
			name:      "BLAKE2b",
			algorithm: BLAKE2b,
			path:      "/empty",
			exp:       "0e5751c026e543b2e8ab2eb06099daa1d1e5df47778f7787faab45cdf12fe3a8",
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			digest, err := New(fs, test.algorithm).Hash(test.path)
			assert.NoError(t, err)
			assert.Equal(t, test.exp, digest)
		})
	}
}

func TestHashLargeFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	contents := bytes.Repeat([]byte("0123456789abcdef"), 3*bufferSize/16+7)
	require.NoError(t, afero.WriteFile(fs, "/large", contents, 0644))

	changed := append([]byte{}, contents...)
	changed[len(changed)-1] = 'x'
	require.NoError(t, afero.WriteFile(fs, "/changed", changed, 0644))

	hasher := New(fs, SHA256)
	orig, err := hasher.Hash("/large")
	require.NoError(t, err)
	assert.Len(t, orig, 64)

	again, err := hasher.Hash("/large")
	require.NoError(t, err)
	assert.Equal(t, orig, again)

	other, err := hasher.Hash("/changed")
	require.NoError(t, err)
	assert.NotEqual(t, orig, other)
}

func TestHashMissingFile(t *testing.T) {
	digest, err := New(afero.NewMemMapFs(), SHA256).Hash("/missing")
	assert.Error(t, err)
	assert.Empty(t, digest)
}

func TestParseAlgorithm(t *testing.T) {
	algorithm, err := ParseAlgorithm("")
	assert.NoError(t, err)
	assert.Equal(t, SHA256, algorithm)

	algorithm, err = ParseAlgorithm("blake2b")
	assert.NoError(t, err)
	assert.Equal(t, BLAKE2b, algorithm)

	_, err = ParseAlgorithm("md5")
	assert.EqualError(t, err, `unsupported hash algorithm: "md5"`)
}
