package main

import (
	"bytes"
	"context"
	_ "embed"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"golang.org/x/term"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"

	"github.com/robottwo/chatline/internal/bash"
	"github.com/robottwo/chatline/internal/catalog"
	"github.com/robottwo/chatline/internal/core"
	"github.com/robottwo/chatline/internal/environment"
	"github.com/robottwo/chatline/internal/history"
	"github.com/robottwo/chatline/pkg/composer"
	"github.com/robottwo/chatline/pkg/richtext"
)

var BUILD_VERSION = "dev"

//go:embed .chatlinerc.default
var DEFAULT_VARS []byte

var rcFile = flag.String("rcfile", "", "use a custom rc file instead of ~/.chatlinerc")
var strictConfig = flag.Bool("strict-config", false, "fail fast if configuration files contain errors")

var historyFlag = flag.Int("history", 0, "print the last N sent messages and exit")
var searchFlag = flag.String("search", "", "print sent messages containing the given text and exit")
var clearHistoryFlag = flag.Bool("clear-history", false, "delete all sent messages and exit")
var usersFlag = flag.Bool("users", false, "list the users available for mentions and exit")

var helpFlag = flag.Bool("h", false, "display help information")
var versionFlag = flag.Bool("ver", false, "display build version")

func main() {
	flag.Parse()

	if *versionFlag {
		fmt.Println(BUILD_VERSION)
		return
	}

	if *helpFlag {
		fmt.Println("Usage of chatline:")
		flag.PrintDefaults()
		return
	}

	historyManager, err := history.NewHistoryManager(core.HistoryFile())
	if err != nil {
		panic("failed to initialize history manager")
	}
	defer func() {
		_ = historyManager.Close()
	}()

	stderrCapturer := core.NewStderrCapturer(os.Stderr)
	userCollector := bash.NewUserCollector()

	runner, err := initializeRunner(userCollector, stderrCapturer)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, err := initializeLogger(runner)
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	logger.Info("-------- new chatline session --------", zap.Any("args", os.Args))

	err = run(runner, historyManager, userCollector, logger, stderrCapturer)

	if code, ok := interp.IsExitStatus(err); ok {
		os.Exit(int(code))
	}

	if err != nil {
		logger.Error("unhandled error", zap.Error(err))
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(
	runner *interp.Runner,
	historyManager *history.HistoryManager,
	userCollector *bash.UserCollector,
	logger *zap.Logger,
	stderrCapturer *core.StderrCapturer,
) error {
	ctx := context.Background()
	usersFile := environment.GetUsersFile(runner, core.UsersFile())

	// chatline -clear-history
	if *clearHistoryFlag {
		return historyManager.ResetHistory()
	}

	// chatline -history 20
	if *historyFlag > 0 {
		return printHistory(os.Stdout, historyManager, *historyFlag)
	}

	// chatline -search lunch
	if *searchFlag != "" {
		return searchHistory(os.Stdout, historyManager, *searchFlag, environment.GetHistoryLimit(runner, logger))
	}

	users := loadUsers(usersFile, userCollector, logger)

	// chatline -users
	if *usersFlag {
		return printUsers(os.Stdout, users)
	}

	// Sent messages are echoed to stdout only when it is not the terminal
	// already showing them.
	var out io.Writer
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		out = os.Stdout
	}

	// echo "see https://example.com" | chatline
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return core.RunPipedSession(ctx, os.Stdin, runner, historyManager, logger, out, stderrCapturer)
	}

	options, err := environment.ComposerOptions(runner, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "chatline: invalid settings, using defaults for them:\n%v\n", err)
		logger.Warn("invalid composer settings", zap.Error(err))
	}

	messageComposer := composer.New(logger, options)
	messageComposer.SetUsers(users)

	watchCtx, cancelWatch := context.WithCancel(ctx)
	defer cancelWatch()
	startCatalogWatcher(watchCtx, usersFile, userCollector, messageComposer, logger)

	return core.RunChatSession(ctx, runner, messageComposer, historyManager, logger, out, stderrCapturer)
}

// loadUsers merges the catalog file with users declared in the rc file. The
// catalog wins when both declare the same id.
func loadUsers(usersFile string, userCollector *bash.UserCollector, logger *zap.Logger) []richtext.User {
	fileUsers, err := catalog.Load(usersFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "chatline: %v\n", err)
		logger.Warn("error loading user catalog", zap.Error(err))
	}
	users := bash.MergeUsers(fileUsers, userCollector.Users())
	logger.Debug("users loaded", zap.String("file", usersFile), zap.Int("count", len(users)))
	return users
}

func startCatalogWatcher(
	ctx context.Context,
	usersFile string,
	userCollector *bash.UserCollector,
	messageComposer *composer.Composer,
	logger *zap.Logger,
) {
	watcher, err := catalog.NewWatcher(usersFile, logger, func(fileUsers []richtext.User) {
		messageComposer.SetUsers(bash.MergeUsers(fileUsers, userCollector.Users()))
	})
	if err != nil {
		logger.Debug("user catalog will not be reloaded", zap.Error(err))
		return
	}

	go func() {
		defer func() {
			_ = watcher.Close()
		}()
		watcher.Run(ctx)
	}()
}

func printHistory(w io.Writer, historyManager *history.HistoryManager, limit int) error {
	entries, err := historyManager.GetRecentEntries(limit)
	if err != nil {
		return err
	}
	return history.PrintEntries(w, entries, time.Now())
}

func searchHistory(w io.Writer, historyManager *history.HistoryManager, query string, limit int) error {
	entries, err := historyManager.SearchEntries(query, limit)
	if err != nil {
		return err
	}
	return history.PrintEntries(w, entries, time.Now())
}

func printUsers(w io.Writer, users []richtext.User) error {
	for _, u := range users {
		if _, err := fmt.Fprintf(w, "%-8s %-20s %s\n", u.ID, u.Name, u.Email); err != nil {
			return err
		}
	}
	return nil
}

func initializeLogger(runner *interp.Runner) (*zap.Logger, error) {
	logLevel := environment.GetLogLevel(runner)
	if BUILD_VERSION == "dev" {
		logLevel = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	if environment.ShouldCleanLogFile(runner) {
		_ = os.Remove(core.LogFile())
	}

	loggerConfig := zap.NewProductionConfig()
	loggerConfig.Level = logLevel
	loggerConfig.OutputPaths = []string{
		core.LogFile(),
	}
	logger, err := loggerConfig.Build()
	if err != nil {
		return nil, err
	}

	return logger, nil
}

// initializeRunner loads the embedded defaults and then the user's rc file.
func initializeRunner(userCollector *bash.UserCollector, stderrCapturer *core.StderrCapturer) (*interp.Runner, error) {
	dynamicEnv := environment.NewDynamicEnviron()
	dynamicEnv.UpdateSystemEnv()
	dynamicEnv.UpdateVar("CHATLINE_BUILD_VERSION", BUILD_VERSION)
	env := expand.Environ(dynamicEnv)

	runner, err := interp.New(
		interp.Env(env),
		interp.StdIO(nil, os.Stdout, stderrCapturer),
		interp.ExecHandlers(
			userCollector.Handler(),
		),
	)
	if err != nil {
		return nil, err
	}

	if err := bash.RunScriptFromReader(
		context.Background(),
		runner,
		bytes.NewReader(DEFAULT_VARS),
		"chatline",
	); err != nil {
		return nil, fmt.Errorf("failed to load default settings: %w", err)
	}

	configFiles := []string{filepath.Join(core.HomeDir(), ".chatlinerc")}
	if *rcFile != "" {
		configFiles = []string{*rcFile}
	}

	if err := loadConfigFiles(runner, configFiles, os.Stderr, *strictConfig); err != nil {
		return nil, err
	}

	environment.SyncVariablesToEnv(runner)

	return runner, nil
}

// loadConfigFiles runs each non-empty file that exists. Errors are reported to
// w; in strict mode the first one aborts.
func loadConfigFiles(runner *interp.Runner, configFiles []string, w io.Writer, strict bool) error {
	for _, configFile := range configFiles {
		stat, err := os.Stat(configFile)
		if err != nil || stat.Size() == 0 {
			continue
		}

		if err := bash.RunScriptFromFile(context.Background(), runner, configFile); err != nil {
			fmt.Fprintf(w, "Configuration file %s contains errors: %v\n", configFile, err)

			if strict {
				return fmt.Errorf("aborting due to configuration error in %s: %w", configFile, err)
			}
		}
	}
	return nil
}
