package main

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/sofiamaki/pilatesapp/internal/classplan"
	"github.com/sofiamaki/pilatesapp/internal/envstruct"
	"github.com/sofiamaki/pilatesapp/internal/errors"
	"github.com/sofiamaki/pilatesapp/internal/flightrecorder"
	"github.com/sofiamaki/pilatesapp/internal/logging"
	"github.com/sofiamaki/pilatesapp/internal/pprofserver"
	"github.com/sofiamaki/pilatesapp/internal/sqlite"
)

type application struct {
	logger         *slog.Logger
	sessionManager *scs.SessionManager
	templateFS     fs.FS
	classService   *classplan.Service
	flightRecorder *flightrecorder.Service
}

type config struct {
	// Addr is the address to listen on. It's possible to choose the address dynamically with localhost:0.
	Addr string `env:"PILATES_ADDR" envDefault:"localhost:8080"`
	// SqliteURL is the URL to the SQLite database. You can use ":memory:" for an ethereal in-memory database.
	SqliteURL string `env:"PILATES_SQLITE_URL" envDefault:"./pilatesapp.sqlite3"`
	// PProfAddr is the optional address to listen on for the pprof server.
	PProfAddr string `env:"PILATES_PPROF_ADDR" envDefault:""`
	// TemplatePath is the path to the directory containing the HTML templates.
	TemplatePath string `env:"PILATES_TEMPLATE_PATH" envDefault:""`
	// TracesDir is the optional directory for runtime trace captures on request timeouts.
	TracesDir string `env:"PILATES_TRACES_DIR" envDefault:""`
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	var (
		cancel context.CancelFunc
		err    error
	)

	ctx, cancel = signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	var cfg config
	if err = envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}

	if cfg.PProfAddr != "" {
		pprofserver.Launch(ctx, cfg.PProfAddr, logger)
	}

	var htmlTemplatePath string
	if htmlTemplatePath, err = resolveAndVerifyTemplatePath(cfg.TemplatePath); err != nil {
		return errors.Wrap(err, "resolve template path")
	}

	db, err := sqlite.NewDatabase(ctx, cfg.SqliteURL, logger)
	if err != nil {
		return errors.Wrap(err, "open db", slog.String("url", cfg.SqliteURL))
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "connected to db")

	var flightRecorder *flightrecorder.Service
	if cfg.TracesDir != "" {
		if flightRecorder, err = flightrecorder.New(logger, cfg.TracesDir); err != nil {
			return errors.Wrap(err, "create flight recorder")
		}
		if err = flightRecorder.Start(ctx); err != nil {
			return errors.Wrap(err, "start flight recorder")
		}
		defer flightRecorder.Stop(ctx)
	}

	app := application{
		logger:         logger,
		sessionManager: initializeSessionManager(db),
		templateFS:     os.DirFS(htmlTemplatePath),
		classService:   classplan.NewService(db, logger),
		flightRecorder: flightRecorder,
	}

	if err = app.configureAndStartServer(ctx, cfg.Addr, app.routes()); err != nil {
		return errors.Wrap(err, "start server")
	}
	return nil
}

func initializeSessionManager(dbs *sqlite.Database) *scs.SessionManager {
	sessionManager := scs.New()
	sessionManager.Store = sqlite3store.NewWithCleanupInterval(dbs.ReadWrite, 24*time.Hour) //nolint:mnd // day
	sessionManager.Lifetime = 30 * 24 * time.Hour                                           //nolint:mnd // month
	sessionManager.Cookie.Persist = true
	sessionManager.Cookie.Secure = true
	sessionManager.Cookie.HttpOnly = true
	sessionManager.Cookie.SameSite = http.SameSiteLaxMode
	return sessionManager
}

func main() {
	ctx := context.Background()
	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
	logger := slog.New(loggerHandler)
	if err := run(ctx, logger, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failure starting application", errors.SlogError(err))
		os.Exit(1)
	}
}
