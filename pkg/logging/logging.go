// Package logging sets up the logger that records every change made by the
// synchronizer. Entries are written to the console and appended to a log file.
package logging

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/sidkik/dirsync/pkg/errors"
)

// TimestampFormat is the layout of the timestamp at the start of each line.
// Milliseconds are appended after a comma.
const TimestampFormat = "2006-01-02 15:04:05"

// Formatter formats entries as `<timestamp> - <LEVEL> - <message>`. Any
// fields are appended to the message as sorted `key=value` pairs.
type Formatter struct{}

// Format implements logrus.Formatter.
func (Formatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b bytes.Buffer
	fmt.Fprintf(&b, "%s,%03d - %s - %s",
		entry.Time.Format(TimestampFormat), entry.Time.Nanosecond()/int(time.Millisecond),
		strings.ToUpper(entry.Level.String()), entry.Message)

	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, entry.Data[k])
	}

	b.WriteByte('\n')
	return b.Bytes(), nil
}

// fileHook writes every entry to a file, in addition to the logger's output.
type fileHook struct {
	out       io.Writer
	formatter logrus.Formatter
}

func (h *fileHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *fileHook) Fire(entry *logrus.Entry) error {
	line, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}
	_, err = h.out.Write(line)
	return err
}

// Options configures the logger created by New.
type Options struct {
	// Console receives every entry. Defaults to stderr.
	Console io.Writer

	// LogFile is the path of the file that entries are appended to. The file
	// is created if it doesn't exist. If empty, entries are only written to
	// Console.
	LogFile string

	Verbose bool
}

// New creates a logger according to `opts`. The returned io.Closer closes the
// log file, and must be called once the logger is no longer used.
func New(fs afero.Fs, opts Options) (*logrus.Logger, io.Closer, error) {
	logger := logrus.New()
	logger.SetFormatter(Formatter{})
	logger.SetLevel(logrus.InfoLevel)
	if opts.Verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	logger.SetOutput(os.Stderr)
	if opts.Console != nil {
		logger.SetOutput(opts.Console)
	}

	if opts.LogFile == "" {
		return logger, nopCloser{}, nil
	}

	logFile, err := fs.OpenFile(opts.LogFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, errors.WithContext(err, "open log file")
	}
	logger.AddHook(&fileHook{out: logFile, formatter: Formatter{}})
	return logger, logFile, nil
}

type nopCloser struct{}

func (nopCloser) Close() error {
	return nil
}
