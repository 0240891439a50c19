// Command import_catalog copies a CSV vehicle dataset into a PostgreSQL or
// SQLite table that the bot can use as its catalog source.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kapu/carfinder-bot-go/internal/catalog"
	"github.com/kapu/carfinder-bot-go/internal/config"
	"github.com/kapu/carfinder-bot-go/internal/service/database"
	"github.com/kapu/carfinder-bot-go/internal/util"
	"go.uber.org/zap"
)

// CLI flags
var (
	csvPath = flag.String("csv", "carapi-opendatafeed-sample.csv", "CSV dataset to import")
	target  = flag.String("target", config.CatalogSourceSQLite, "Destination: sqlite or postgres")
	table   = flag.String("table", "vehicle_trims", "Destination table")
	sqlite  = flag.String("sqlite-path", "./data/catalog.db", "SQLite database file")
	dbHost  = flag.String("db-host", "localhost", "PostgreSQL host")
	dbPort  = flag.Int("db-port", 5432, "PostgreSQL port")
	dbUser  = flag.String("db-user", "carfinder", "PostgreSQL user")
	dbName  = flag.String("db-name", "carfinder", "PostgreSQL database")
	replace = flag.Bool("replace", false, "Empty the table before importing")
	dryRun  = flag.Bool("dry-run", false, "Parse and validate without writing")
	verbose = flag.Bool("verbose", false, "Verbose output")
)

func main() {
	flag.Parse()
	_ = godotenv.Load()

	level := "info"
	if *verbose {
		level = "debug"
	}
	logger, err := util.NewLogger(level, "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(logger); err != nil {
		logger.Error("Catalog import failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(logger *zap.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	records, err := catalog.LoadFile(*csvPath)
	if err != nil {
		return err
	}

	// Build applies the same skip rules the bot uses and yields the summary.
	preview, err := catalog.Build(records, logger)
	if err != nil {
		return err
	}
	stats := preview.Stats()
	logger.Info("Dataset parsed",
		zap.String("file", *csvPath),
		zap.Int("records", stats.Records),
		zap.Int("brands", stats.Brands),
		zap.Int("models", stats.Models),
		zap.Int("skipped", stats.Skipped),
	)

	if *dryRun {
		logger.Info("Dry run, nothing written")
		return nil
	}

	db, dialect, closeDB, err := open(ctx, logger)
	if err != nil {
		return err
	}
	defer closeDB()

	result, err := database.ImportRecords(ctx, db, database.ImportOptions{
		Table:   *table,
		Dialect: dialect,
		Replace: *replace,
	}, records, logger)
	if err != nil {
		return err
	}

	logger.Info("Catalog imported",
		zap.String("target", *target),
		zap.String("table", *table),
		zap.Int("inserted", result.Inserted),
		zap.Int("skipped", result.Skipped),
	)
	return nil
}

func open(ctx context.Context, logger *zap.Logger) (*sql.DB, database.Dialect, func(), error) {
	switch *target {
	case config.CatalogSourcePostgres:
		pg, err := database.NewPostgresService(ctx, database.PostgresConfig{
			Host:     *dbHost,
			Port:     *dbPort,
			User:     *dbUser,
			Password: os.Getenv("POSTGRES_PASSWORD"),
			Database: *dbName,
		}, logger)
		if err != nil {
			return nil, "", nil, err
		}
		return pg.DB(), database.DialectPostgres, func() { _ = pg.Close() }, nil

	case config.CatalogSourceSQLite:
		db, err := database.OpenWritableSQLite(ctx, *sqlite)
		if err != nil {
			return nil, "", nil, err
		}
		return db, database.DialectSQLite, func() { _ = db.Close() }, nil

	default:
		return nil, "", nil, fmt.Errorf("unknown target %q", *target)
	}
}
