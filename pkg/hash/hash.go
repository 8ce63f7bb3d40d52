// Package hash computes content digests used to decide whether two files
// differ.
package hash

import (
	"crypto/sha256"
	"encoding/hex"
	goHash "hash"
	"io"

	"github.com/spf13/afero"
	"golang.org/x/crypto/blake2b"

	"github.com/sidkik/dirsync/pkg/errors"
)

// bufferSize is the size of the chunks read from disk.
const bufferSize = 64 * 1024

// Algorithm names a digest function.
type Algorithm string

const (
	// SHA256 is the default algorithm.
	SHA256 Algorithm = "sha256"

	// BLAKE2b is BLAKE2b with a 256 bit digest.
	BLAKE2b Algorithm = "blake2b"
)

// ParseAlgorithm returns the Algorithm called name. The empty string selects
// the default.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch Algorithm(name) {
	case "":
		return SHA256, nil
	case SHA256, BLAKE2b:
		return Algorithm(name), nil
	}
	return "", errors.UnsupportedValue{Field: "hash algorithm", Value: name}
}

// A Hasher returns the digest of a file's contents.
type Hasher interface {
	Hash(path string) (string, error)
}

type fileHasher struct {
	fs        afero.Fs
	algorithm Algorithm
}

// New returns a Hasher that reads files from fs.
func New(fs afero.Fs, algorithm Algorithm) Hasher {
	return fileHasher{fs: fs, algorithm: algorithm}
}

func (h fileHasher) newDigest() (goHash.Hash, error) {
	switch h.algorithm {
	case BLAKE2b:
		return blake2b.New256(nil)
	case SHA256, "":
		return sha256.New(), nil
	}
	return nil, errors.UnsupportedValue{Field: "hash algorithm", Value: string(h.algorithm)}
}

// Hash returns the lowercase hex digest of the file at path.
func (h fileHasher) Hash(path string) (string, error) {
	digest, err := h.newDigest()
	if err != nil {
		return "", err
	}

	f, err := h.fs.Open(path)
	if err != nil {
		return "", errors.WithContext(err, "open")
	}
	defer f.Close()

	if _, err := io.CopyBuffer(digest, f, make([]byte, bufferSize)); err != nil {
		return "", errors.WithContext(err, "read")
	}
	return hex.EncodeToString(digest.Sum(nil)), nil
}
