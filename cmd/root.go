package cmd

import (
	"context"
	"os"
	"os/signal"
	"os/user"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/sidkik/dirsync/cmd/util"
	"github.com/sidkik/dirsync/pkg/config"
	"github.com/sidkik/dirsync/pkg/cycle"
	"github.com/sidkik/dirsync/pkg/errors"
	"github.com/sidkik/dirsync/pkg/hash"
	"github.com/sidkik/dirsync/pkg/logging"
	"github.com/sidkik/dirsync/pkg/sync"
	"github.com/sidkik/dirsync/pkg/version"
)

// verboseLogKey is the environment variable used to enable verbose logging.
// When it's set to `true`, Debug events are logged, rather than just Info and
// above.
const verboseLogKey = "DIRSYNC_LOG_VERBOSE"

// Mocked out for unit testing.
var (
	fs          = afero.NewOsFs()
	clock       = clockwork.NewRealClock()
	currentUser = user.Current

	notifyContext = signal.NotifyContext
)

type options struct {
	configPath string
	logFile    string
	hash       string
	verbose    bool
	once       bool
}

// Execute runs the main CLI process.
func Execute() {
	if err := New().Execute(); err != nil {
		util.HandleFatalError(err)
	}
}

// New creates the root `dirsync` command.
func New() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "dirsync <source> <replica> <interval-seconds>",
		Short: "Keep a replica directory identical to a source directory",
		Long: "Periodically synchronize the replica directory with the source directory.\n" +
			"New and changed files are copied to the replica, and files and folders\n" +
			"that don't exist in the source are deleted from the replica.\n\n" +
			"Every change is logged to the console and appended to the log file.",
		Version:      version.Version,
		SilenceUsage: true,

		// The error is printed by util.HandleFatalError, so we silence errors
		// here to avoid double printing.
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 3 {
				return errors.NewFriendlyError("Usage: %s", cmd.UseLine())
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := interruptContext()
			defer stop()
			return run(ctx, cmd, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", "",
		"path to a YAML config file")
	cmd.Flags().StringVar(&opts.logFile, "log-file", config.DefaultLogFile,
		"file that log messages are appended to")
	cmd.Flags().StringVar(&opts.hash, "hash", string(hash.SHA256),
		"algorithm used to compare file contents (sha256 or blake2b)")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false,
		"log debug messages")
	cmd.Flags().BoolVar(&opts.once, "once", false,
		"run a single synchronization cycle and exit")
	return cmd
}

// interruptContext returns a context that's cancelled by the first SIGINT or
// SIGTERM. Signal handling is then reset, so a second signal kills the
// process even if the current cycle is still running.
func interruptContext() (context.Context, context.CancelFunc) {
	ctx, stop := notifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		stop()
	}()
	return ctx, stop
}

func run(ctx context.Context, cmd *cobra.Command, opts options, args []string) error {
	source, replica, interval, err := parseArgs(args)
	if err != nil {
		return err
	}

	settings, err := getSettings(cmd, opts)
	if err != nil {
		return err
	}

	algorithm, err := hash.ParseAlgorithm(settings.Hash)
	if err != nil {
		return errors.NewFriendlyError("The hash algorithm must be one of %q or %q, but got %q.",
			hash.SHA256, hash.BLAKE2b, settings.Hash)
	}

	log, logFile, err := logging.New(fs, logging.Options{
		LogFile: settings.LogFile,
		Verbose: settings.Verbose || os.Getenv(verboseLogKey) == "true",
	})
	if err != nil {
		return err
	}
	defer logFile.Close()

	runner := cycle.Runner{
		Source:   source,
		Replica:  replica,
		Interval: interval,
		Syncer:   sync.New(fs, hash.New(fs, algorithm), log),
		Clock:    clock,
		Log:      log,
	}

	if opts.once {
		runner.RunOnce()
		return nil
	}

	// Run only returns once the context is cancelled by a signal.
	_ = runner.Run(ctx)

	username := "unknown user"
	if u, err := currentUser(); err == nil {
		username = u.Username
	} else {
		log.WithError(err).Debug("Failed to get current user")
	}
	log.Infof("Interrupted by %s", username)
	return nil
}

func parseArgs(args []string) (source, replica string, interval time.Duration, err error) {
	source, err = expandPath(args[0])
	if err != nil {
		return "", "", 0, errors.WithContext(err, "source path")
	}

	replica, err = expandPath(args[1])
	if err != nil {
		return "", "", 0, errors.WithContext(err, "replica path")
	}

	seconds, err := strconv.Atoi(args[2])
	if err != nil || seconds <= 0 {
		return "", "", 0, errors.NewFriendlyError(
			"The interval must be a positive number of seconds, but got %q.", args[2])
	}
	return source, replica, time.Duration(seconds) * time.Second, nil
}

// getSettings merges the defaults, the config file, and the command line
// flags. Flags that are explicitly set take precedence over the config file.
func getSettings(cmd *cobra.Command, opts options) (config.Mirror, error) {
	settings := config.Default()
	if opts.configPath != "" {
		var err error
		settings, err = config.ParseMirror(opts.configPath)
		if err != nil {
			return config.Mirror{}, errors.WithContext(err, "parse config")
		}
	}

	flags := cmd.Flags()
	if flags.Changed("log-file") {
		logFile, err := homedir.Expand(opts.logFile)
		if err != nil {
			return config.Mirror{}, errors.WithContext(err, "expand log file path")
		}
		settings.LogFile = logFile
	}
	if flags.Changed("hash") {
		settings.Hash = opts.hash
	}
	if flags.Changed("verbose") {
		settings.Verbose = opts.verbose
	}
	return settings, nil
}

func expandPath(path string) (string, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", err
	}
	return filepath.Abs(expanded)
}
