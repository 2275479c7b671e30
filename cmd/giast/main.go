package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bryanhoulton/giast/internal/lexer"
	"github.com/bryanhoulton/giast/internal/parser"
	"github.com/bryanhoulton/giast/internal/repl"
	"github.com/bryanhoulton/giast/internal/runtime"
	"github.com/bryanhoulton/giast/internal/store"
	"github.com/bryanhoulton/giast/internal/util"
)

const (
	DefaultSnapshotDriver = "sqlite3"
	DefaultSnapshotDSN    = "giast.db"
)

var (
	// Version is injected at link time.
	Version   = "dev"
	BuildDate = "unknown"
	Commit    = "unknown"
	help      bool
	version   bool
	// logging
	logLevel string
	logFile  string
	// config vars
	configPath   string
	loadSnapshot string
	saveSnapshot string
)

func init() {
	flag.BoolVar(&help, "help", false, "Display help information and exit")
	flag.BoolVar(&help, "h", false, "Display help information and exit")
	flag.BoolVar(&version, "version", false, "Display version information and exit")
	flag.BoolVar(&version, "v", false, "Display version information and exit")
	// runtime config
	flag.StringVar(&configPath, "config", "", "Path to a TOML configuration file")
	flag.StringVar(&loadSnapshot, "load-snapshot", "", "Hydrate state from the named snapshot before running")
	flag.StringVar(&saveSnapshot, "save-snapshot", "", "Save final state under the named snapshot after running")
	// log config
	flag.StringVar(&logLevel, "log-level", "error", "Log level: debug, info, warn, error")
	flag.StringVar(&logFile, "log-file", "", "Log file path (if not set, logs to stderr)")
}

func main() {
	flag.Parse()

	config, err := util.LoadConfiguration(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	config.Version = Version
	config.BuildDate = BuildDate
	config.Commit = Commit
	if logLevel != "" {
		config.LogLevel = logLevel
	}
	if logFile != "" {
		config.LogFile = logFile
	}
	if config.SnapshotDriver == "" {
		config.SnapshotDriver = DefaultSnapshotDriver
	}
	if config.SnapshotDSN == "" {
		config.SnapshotDSN = DefaultSnapshotDSN
	}

	loggerOptions := &slog.HandlerOptions{
		AddSource: false,
		Level:     logLevelFromString(config.LogLevel),
	}
	logWriter := configureLogWriter(config.LogFile)
	defaultLogger := slog.New(slog.NewJSONHandler(logWriter, loggerOptions))
	slog.SetDefault(defaultLogger)

	if version {
		printVersion()
		return
	}

	if help || flag.NArg() == 0 {
		printHelp()
		if !help {
			os.Exit(1)
		}
		return
	}

	command := flag.Arg(0)
	if flag.NArg() < 2 {
		fmt.Fprintf(os.Stderr, "%s: missing program file\n", command)
		os.Exit(1)
	}
	filename := flag.Arg(1)

	source, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	switch command {
	case "tokenize":
		err = cmdTokenize(string(source))
	case "compile", "parse":
		err = cmdCompile(string(source))
	case "run":
		err = cmdRun(config, string(source))
	case "repl":
		err = cmdRepl(string(source))
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", command)
		printHelp()
		os.Exit(1)
	}
	if err != nil {
		reportError(string(source), err)
		os.Exit(1)
	}
}

// cmdTokenize prints the token stream as JSON, one object per token.
func cmdTokenize(source string) error {
	tokens, err := lexer.Tokenize(source)
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(tokens, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

// cmdCompile parses the source and prints the AST as its JSON wire form.
func cmdCompile(source string) error {
	program, err := parser.ParseSource(source)
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(program, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

// cmdRun builds a runtime for the program, optionally hydrates it from a
// stored snapshot, executes the init block, and prints the final state. With
// -save-snapshot the final state is persisted for a later run.
func cmdRun(config util.Configuration, source string) error {
	program, err := parser.ParseSource(source)
	if err != nil {
		return err
	}

	ctx := context.Background()

	var db *store.Store
	if loadSnapshot != "" || saveSnapshot != "" {
		db, err = store.Open(ctx, config.SnapshotDriver, config.SnapshotDSN)
		if err != nil {
			return err
		}
		defer db.Close()
	}

	var initialState map[string]any
	if loadSnapshot != "" {
		initialState, err = db.Load(ctx, loadSnapshot)
		if err != nil {
			return err
		}
	}

	rt, err := runtime.New(program, initialState)
	if err != nil {
		return err
	}
	defer rt.Destroy()

	if err := rt.Run(); err != nil {
		return err
	}

	state := rt.GetState()
	out, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))

	if saveSnapshot != "" {
		if err := db.Save(ctx, saveSnapshot, state); err != nil {
			return err
		}
		slog.Info("snapshot saved", slog.String("name", saveSnapshot))
	}
	return nil
}

// cmdRepl loads the program and hands control to an interactive session on
// stdin, one statement per line.
func cmdRepl(source string) error {
	program, err := parser.ParseSource(source)
	if err != nil {
		return err
	}
	rt, err := runtime.New(program, nil)
	if err != nil {
		return err
	}
	defer rt.Destroy()
	return repl.Start(rt, os.Stdin, os.Stdout)
}

// reportError prints the error, with surrounding source lines when the error
// carries a position.
func reportError(source string, err error) {
	fmt.Fprintln(os.Stderr, err)

	var lexErr *lexer.LexError
	if errors.As(err, &lexErr) {
		fmt.Fprintln(os.Stderr, util.SourceContext(source, lexErr.Line, lexErr.Col))
		return
	}
	var synErr *parser.SyntaxError
	if errors.As(err, &synErr) {
		fmt.Fprintln(os.Stderr, util.SourceContext(source, synErr.Token.Line, synErr.Token.Col))
	}
}

func configureLogWriter(logFile string) *os.File {
	var logWriter *os.File
	var err error
	if logFile != "" {
		if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "failed to create log directory for '%s': %v; falling back to stderr\n", logFile, err)
			return os.Stderr
		}
		logWriter, err = os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open log file '%s': %v; falling back to stderr\n", logFile, err)
			logWriter = os.Stderr
		}
	} else {
		logWriter = os.Stderr
	}
	return logWriter
}

func printVersion() {
	fmt.Printf("giast version 'v%s' %s %s\n", Version, BuildDate, Commit)
}

func printHelp() {
	fmt.Printf(`Usage: giast [options] <command> <file>

Commands:
  tokenize <file>    Print the token stream as JSON.
  compile <file>     Parse the file and print the AST as JSON.
  parse <file>       Alias for compile.
  run <file>         Execute the file's init block and print the final state.
  repl <file>        Load the file and evaluate statements interactively.

Options:
  -config <path>         Path to a TOML configuration file.
  -load-snapshot <name>  Hydrate state from the named snapshot before running.
  -save-snapshot <name>  Save final state under the named snapshot.
  -help                  Display this help information and exit.
  -version               Display version information and exit.
  -log-level <level>     Set the log level: debug, info, warn, error. Default is 'error'.
  -log-file <path>       Specify a log file to write logs. Default is stderr.

Examples:
  giast compile counter.gst                 Print the compiled AST as JSON
  giast run counter.gst                     Run the program and print state
  giast -save-snapshot=main run counter.gst Run and persist the final state

Version Information:
  Version:    %s
  Build Date: %s
  Commit:     %s
`, Version, BuildDate, Commit)
}

func logLevelFromString(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelError
	}
}
