package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"syscall"

	"github.com/tartampluch/go-reminders/internal/config"
	"github.com/tartampluch/go-reminders/internal/engine"
	"github.com/tartampluch/go-reminders/internal/importer"
	"github.com/tartampluch/go-reminders/internal/message"
	"github.com/tartampluch/go-reminders/internal/notify"
	"github.com/tartampluch/go-reminders/internal/server"
	"github.com/tartampluch/go-reminders/internal/store"
	"github.com/tartampluch/go-reminders/internal/store/memory"
	"github.com/tartampluch/go-reminders/internal/store/postgres"
	"github.com/tartampluch/go-reminders/internal/store/sheet"
	"github.com/tartampluch/go-reminders/internal/tracker"
)

// main delegates to runMain so deferred calls (closing the log file,
// the database pool) run before os.Exit.
func main() {
	os.Exit(runMain())
}

type options struct {
	configPath string
	setSecret  string
	doImport   bool
	importArg  string
}

// runMain manages the application lifecycle, argument parsing, and exit codes.
func runMain() int {
	showVersion := flag.Bool(config.FlagVersion, false, config.FlagDescVersion)
	debugMode := flag.Bool(config.FlagDebug, false, config.FlagDescDebug)
	var opts options
	flag.StringVar(&opts.configPath, config.FlagConfig, "", config.FlagDescConfig)
	flag.StringVar(&opts.setSecret, config.FlagSetSecret, "", config.FlagDescSetSecret)
	flag.BoolVar(&opts.doImport, config.FlagImport, false, config.FlagDescImport)
	flag.Parse()
	opts.importArg = flag.Arg(0)

	if *showVersion {
		printVersion()
		return config.ExitCodeSuccess
	}

	logCloser := setupLogging(*debugMode)
	if logCloser != nil {
		defer func() {
			_ = logCloser.Close()
		}()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logStartupInfo()

	if err := run(ctx, opts); err != nil {
		slog.Error(config.ErrAppFailed,
			config.LogKeyComponent, config.CompMain,
			config.LogKeyError, err,
		)
		return config.ExitCodeError
	}

	slog.Info(config.MsgAppStop, config.LogKeyComponent, config.CompMain)
	return config.ExitCodeSuccess
}

// run loads the settings, wires dependencies and runs the selected mode.
func run(ctx context.Context, opts options) error {
	if opts.setSecret != "" {
		return storeSecretFromStdin(opts.setSecret, os.Stdin)
	}

	path := opts.configPath
	if path == "" {
		p, err := config.DefaultSettingsPath()
		if err != nil {
			return err
		}
		path = p
	}
	settings, err := config.Load(path)
	if err != nil {
		return err
	}

	st, closeStore, err := openStore(ctx, settings)
	if err != nil {
		return err
	}
	defer closeStore()

	greeter := message.NewGreeter(settings.Language)
	slog.Info(config.MsgLocalesReady,
		config.LogKeyComponent, config.CompMain,
		config.LogKeyLang, greeter.Language(),
		config.LogKeyLangs, greeter.Languages())
	gen := &engine.Generator{
		FormatSummary:   greeter.Summary,
		ReminderTrigger: settings.ReminderTrigger,
	}
	trk := tracker.New(st, gen)

	if opts.doImport {
		return runImport(ctx, trk, importSource(settings.Import, opts.importArg))
	}

	return serve(ctx, settings, path, trk, greeter)
}

// serve runs the HTTP server and the refresh worker until ctx is done.
// It returns only once the worker has stopped, so the store can be closed.
func serve(ctx context.Context, settings *config.Settings, path string, trk *tracker.Tracker, greeter *message.Greeter) error {
	worker, err := tracker.NewWorker(trk, settings.RefreshCron)
	if err != nil {
		return err
	}

	srv := server.New(settings.Listen)
	trk.OnRefresh = srv.Update

	var mu sync.Mutex
	srv.API = &server.API{
		Reminders: trk,
		Greeter:   greeter,
		Notifier:  notify.New(greeter, settings.Notifications),
		OnPreferences: func(p server.Preferences) error {
			mu.Lock()
			defer mu.Unlock()
			settings.Language = p.Language
			settings.Notifications = p.Notifications
			return config.Save(path, settings)
		},
	}

	if settings.BasicAuth != nil {
		pass, err := config.Secret(config.BasicAuthAccount(settings.BasicAuth.Username), config.EnvBasicAuthPass)
		if err != nil {
			return err
		}
		srv.AuthUser, srv.AuthPass = settings.BasicAuth.Username, pass
	}

	workerCtx, stopWorker := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Go(func() { worker.Run(workerCtx) })

	err = srv.Start(ctx)
	stopWorker()
	wg.Wait()
	return err
}

// openStore builds the configured backend. The returned func releases it.
func openStore(ctx context.Context, s *config.Settings) (store.Store, func(), error) {
	noop := func() {}
	log := slog.With(config.LogKeyComponent, config.CompMain, config.LogKeyBackend, s.Backend)

	switch s.Backend {
	case config.BackendMemory:
		log.Info(config.MsgBackendReady)
		return memory.New(), noop, nil

	case config.BackendSheet:
		token, err := config.Secret(s.Sheet.Account, config.EnvSheetToken)
		if err != nil {
			return nil, noop, err
		}
		sh, err := sheet.New(s.Sheet.URL, token)
		if err != nil {
			return nil, noop, err
		}
		sh.Attempts = s.Sheet.Attempts
		sh.Timeout = s.Sheet.Timeout
		sh.Backoff = s.Sheet.Backoff
		log.Info(config.MsgBackendReady, config.LogKeyURL, s.Sheet.URL)
		return sh, noop, nil

	case config.BackendPostgres:
		dsn, err := config.Secret(s.Postgres.Account, config.EnvPostgresDSN)
		if err != nil {
			return nil, noop, err
		}
		pg, err := postgres.Connect(ctx, dsn)
		if err != nil {
			return nil, noop, err
		}
		if err := pg.Ready(ctx); err != nil {
			pg.Close()
			return nil, noop, err
		}
		if err := pg.EnsureSchema(ctx); err != nil {
			pg.Close()
			return nil, noop, err
		}
		log.Info(config.MsgBackendReady)
		return pg, pg.Close, nil

	default:
		return nil, noop, fmt.Errorf("%s: %q", config.ErrBackendUnsupport, s.Backend)
	}
}

// importSource resolves the -import target: an argument (path or URL)
// overrides the configured source.
func importSource(cfg config.ImportSettings, arg string) importer.Source {
	src := importer.Source{
		Mode:      cfg.Mode,
		LocalPath: cfg.LocalPath,
		WebURL:    cfg.WebURL,
		WebUser:   cfg.WebUser,
	}

	lower := strings.ToLower(arg)
	switch {
	case arg == "":
	case strings.HasPrefix(lower, config.SchemeHTTP+"://"), strings.HasPrefix(lower, config.SchemeHTTPS+"://"):
		src.Mode, src.WebURL = config.SourceModeWeb, arg
	default:
		src.Mode, src.LocalPath = config.SourceModeLocal, arg
	}

	if src.Mode == config.SourceModeWeb && src.WebUser != "" {
		// The importer password is stored under the user name, as for any
		// other web account.
		if pass, err := config.Secret(src.WebUser, config.EnvImportPass); err == nil {
			src.WebPass = pass
		}
	}
	return src
}

func runImport(ctx context.Context, trk *tracker.Tracker, src importer.Source) error {
	im := &importer.Importer{Fetcher: importer.NewHTTPFetcher()}
	records, err := im.Run(ctx, src)
	if err != nil {
		return err
	}
	res, err := trk.Import(ctx, records)
	if err != nil {
		return err
	}
	fmt.Printf("%d created, %d skipped\n", res.Created, res.Skipped)
	return nil
}

func storeSecretFromStdin(account string, in io.Reader) error {
	fmt.Fprintf(os.Stderr, config.MsgSecretPrompt, account)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%s: %w", config.ErrSecretRead, err)
	}
	secret := strings.TrimRight(line, "\r\n")
	if secret == "" {
		return errors.New(config.ErrSecretEmpty)
	}
	return config.StoreSecret(account, secret)
}

// printVersion outputs the build information to stdout.
func printVersion() {
	fmt.Printf(config.MsgVersionOutput,
		config.AppName,
		config.Version,
		runtime.GOOS,
		runtime.GOARCH,
	)
}

// logStartupInfo logs environment details useful for debugging.
func logStartupInfo() {
	slog.Info(config.MsgAppStarting,
		config.LogKeyComponent, config.CompMain,
		slog.Group(config.LogKeyBuild,
			slog.String(config.LogKeyApp, config.AppName),
			slog.String(config.LogKeyVersion, config.Version),
			slog.String(config.LogKeyGoVer, runtime.Version()),
		),
		slog.Group(config.LogKeyEnv,
			slog.String(config.LogKeyOS, runtime.GOOS),
			slog.String(config.LogKeyArch, runtime.GOARCH),
			slog.Int(config.LogKeyPID, os.Getpid()),
		),
	)
}

// setupLogging configures the default slog logger: JSON to stdout and to a
// log file in the user cache directory when one can be opened.
func setupLogging(debugMode bool) io.Closer {
	writers := []io.Writer{os.Stdout}
	var logFile *os.File

	if logPath, err := getLogFilePath(); err == nil {
		// O_TRUNC resets logs on restart to prevent indefinite growth.
		f, err := os.OpenFile(logPath, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, config.FilePermUserRW)
		if err == nil {
			writers = append(writers, f)
			logFile = f
		} else {
			fmt.Fprintf(os.Stderr, config.MsgLogWarning, config.ErrLogFile, logPath, err)
		}
	}

	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: debugMode,
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(io.MultiWriter(writers...), opts)))

	if logFile == nil {
		return nil
	}
	return logFile
}

// getLogFilePath determines the platform-specific cache directory for logs.
func getLogFilePath() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCacheDir, err)
	}

	appDir := filepath.Join(cacheDir, config.AppID)
	if err := os.MkdirAll(appDir, config.DirPermUserRWX); err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCreateDir, err)
	}

	return filepath.Join(appDir, config.LogFileName), nil
}
