package config

import (
	"path/filepath"

	homedir "github.com/mitchellh/go-homedir"

	"github.com/sidkik/dirsync/pkg/errors"
	"github.com/sidkik/dirsync/pkg/hash"
)

const (
	// DefaultLogFile is the path of the log file when none is configured.
	// Relative paths are resolved against the working directory.
	DefaultLogFile = "sync.log"

	// InitialMirrorConfigVersion is the first version of the mirror config.
	// Config files that do not specify a version will default to this
	// version.
	InitialMirrorConfigVersion = "1.0"

	// SupportedMirrorConfigVersions are the versions of the mirror config
	// that can be parsed by the current binary.
	SupportedMirrorConfigVersions = ">= 1.0, < 2.0"
)

// Mirror contains the settings that control how the synchronizer runs.
type Mirror struct {
	Version string `json:"version,omitempty"`
	LogFile string `json:"logFile,omitempty"`
	Hash    string `json:"hash,omitempty"`
	Verbose bool   `json:"verbose,omitempty"`
}

func (c Mirror) getVersion() string {
	return c.Version
}

// Default returns the settings used when no config file is given.
func Default() Mirror {
	return Mirror{
		Version: InitialMirrorConfigVersion,
		LogFile: DefaultLogFile,
		Hash:    string(hash.SHA256),
	}
}

// ParseMirror parses the mirror config at `path`. Fields that aren't set in
// the file keep their default values.
func ParseMirror(path string) (Mirror, error) {
	path, err := homedir.Expand(path)
	if err != nil {
		return Mirror{}, errors.WithContext(err, "expand config path")
	}

	config := Mirror{Version: InitialMirrorConfigVersion}
	if err := parseConfig(path, &config, SupportedMirrorConfigVersions); err != nil {
		if notFound, ok := err.(errors.FileNotFound); ok {
			return Mirror{}, errors.NewFriendlyError(
				"The config file %q doesn't exist.", notFound.Path)
		}
		return Mirror{}, errors.WithContext(err, "parse")
	}

	if config.Hash == "" {
		config.Hash = string(hash.SHA256)
	}
	if _, err := hash.ParseAlgorithm(config.Hash); err != nil {
		return Mirror{}, errors.NewFriendlyError(
			"The hash field in %q must be one of %q or %q, but got %q.",
			path, hash.SHA256, hash.BLAKE2b, config.Hash)
	}

	if config.LogFile == "" {
		config.LogFile = DefaultLogFile
		return config, nil
	}

	config.LogFile, err = homedir.Expand(config.LogFile)
	if err != nil {
		return Mirror{}, errors.WithContext(err, "expand log file path")
	}

	// Evaluate relative paths relative to the config path.
	if !filepath.IsAbs(config.LogFile) {
		config.LogFile = filepath.Join(filepath.Dir(path), config.LogFile)
	}
	return config, nil
}
