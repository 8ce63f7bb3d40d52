package util

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"

	log "github.com/sirupsen/logrus"

	"github.com/sidkik/dirsync/pkg/errors"
)

// Mocked out for unit testing.
var (
	exit             = os.Exit
	stderr io.Writer = os.Stderr
)

// HandleFatalError prints the error and exits the process. Friendly errors
// are printed as-is, since they're written to be read by users.
func HandleFatalError(err error) {
	msg := errors.GetPrintableMessage(err)
	if !errors.IsFriendly(err) {
		msg = fmt.Sprintf("Fatal error: %s", msg)
	}
	fmt.Fprintln(stderr, msg)
	exit(1)
}

// HandlePanic logs the stack trace of a panic before re-panicking. It must
// be called with `defer`.
func HandlePanic() {
	if r := recover(); r != nil {
		log.WithField("stack", string(debug.Stack())).Errorf("Panic: %v", r)
		panic(r)
	}
}
