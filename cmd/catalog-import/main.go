// Command catalog-import loads a YAML movement catalog into the database.
// Movements are upserted by name and transitions by position pair, so the
// import is safe to rerun after editing the catalog.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/sofiamaki/pilatesapp/internal/classplan"
	"github.com/sofiamaki/pilatesapp/internal/envstruct"
	"github.com/sofiamaki/pilatesapp/internal/errors"
	"github.com/sofiamaki/pilatesapp/internal/logging"
	"github.com/sofiamaki/pilatesapp/internal/sqlite"
)

type config struct {
	// SqliteURL is the URL to the SQLite database. You can use ":memory:" for an ethereal in-memory database.
	SqliteURL string `env:"PILATES_SQLITE_URL" envDefault:"./pilatesapp.sqlite3"`
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool), args []string) (err error) {
	if len(args) != 1 {
		return errors.New("usage: catalog-import <catalog.yaml>")
	}
	catalogPath := args[0]

	var cfg config
	if err = envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}

	catalog, err := loadCatalog(catalogPath)
	if err != nil {
		return errors.Wrap(err, "load catalog", slog.String("path", catalogPath))
	}

	db, err := sqlite.NewDatabase(ctx, cfg.SqliteURL, logger)
	if err != nil {
		return errors.Wrap(err, "open db", slog.String("url", cfg.SqliteURL))
	}
	defer func() {
		err = errors.Join(err, db.Close())
	}()

	service := classplan.NewService(db, logger)
	if err = importCatalog(ctx, service, catalog); err != nil {
		return errors.Wrap(err, "import catalog")
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "catalog imported",
		slog.Int("movements", len(catalog.Movements)),
		slog.Int("transitions", len(catalog.Transitions)))
	return nil
}

func importCatalog(ctx context.Context, service *classplan.Service, catalog catalogFile) error {
	for _, movement := range catalog.Movements {
		if err := service.PutMovement(ctx, movement.toMovement()); err != nil {
			return errors.Wrap(err, "import movement", slog.String("name", movement.Name))
		}
	}
	for _, transition := range catalog.Transitions {
		if err := service.PutTransition(ctx, transition.toTransition()); err != nil {
			return errors.Wrap(err, "import transition",
				slog.String("from", transition.From), slog.String("to", transition.To))
		}
	}
	return nil
}

func main() {
	ctx := context.Background()
	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelInfo,
		ReplaceAttr: nil,
	}))
	logger := slog.New(loggerHandler)
	if err := run(ctx, logger, os.LookupEnv, os.Args[1:]); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failure importing catalog", errors.SlogError(err))
		os.Exit(1)
	}
}
