package commands

import (
	"database/sql"

	"github.com/trellisdb/trellis/config"
	"github.com/trellisdb/trellis/db"
	"github.com/trellisdb/trellis/errors"
	"github.com/trellisdb/trellis/graph"
	"github.com/trellisdb/trellis/logger"
	"github.com/trellisdb/trellis/schema"
)

// openDatabase opens the configured (or explicitly given) database and brings
// its schema up to date. Callers own the returned handle.
func openDatabase(dbPath string) (*sql.DB, error) {
	if dbPath == "" {
		cfg, err := config.Load()
		if err != nil {
			return nil, errors.Wrap(err, "failed to load configuration")
		}
		dbPath = cfg.Database.Path
	}

	database, err := db.Open(dbPath, logger.Logger)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database at %s", dbPath)
	}

	if err := db.Migrate(database, logger.Logger); err != nil {
		database.Close()
		return nil, errors.Wrapf(err, "failed to run migrations on %s", dbPath)
	}

	return database, nil
}

// openModel opens the database and wraps it in a schema model.
func openModel(dbPath string) (*schema.Model, *sql.DB, error) {
	database, err := openDatabase(dbPath)
	if err != nil {
		return nil, nil, err
	}
	store := graph.NewStore(database, logger.Logger)
	return schema.NewModel(store, logger.Logger), database, nil
}
