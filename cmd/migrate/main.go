package main

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/wolfman30/clinic-booking-webhook/cmd/mainconfig"
	appmigrations "github.com/wolfman30/clinic-booking-webhook/migrations"
	"github.com/wolfman30/clinic-booking-webhook/pkg/logging"
)

var errUsage = errors.New("usage: migrate [up|down|force <version>]")

func main() {
	mainconfig.LoadEnv()
	logger := logging.New(os.Getenv("LOG_LEVEL"))

	if err := run(os.Getenv("DATABASE_URL"), os.Args[1:], logger); err != nil {
		logger.Error("catalog migration failed", "error", err)
		os.Exit(1)
	}
}

func run(databaseURL string, args []string, logger *logging.Logger) error {
	cmd, version, err := parseArgs(args)
	if err != nil {
		return err
	}
	databaseURL = strings.TrimSpace(databaseURL)
	if databaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}

	m, closeFn, err := openMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer closeFn()

	switch cmd {
	case "up":
		err = m.Up()
	case "down":
		// reverts only the newest step so the seed can be reloaded in place
		err = m.Steps(-1)
	case "force":
		err = m.Force(version)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate %s: %w", cmd, err)
	}

	current, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("read version: %w", err)
	}
	logger.Info("catalog schema migrated", "command", cmd, "version", current, "dirty", dirty)
	return nil
}

func parseArgs(args []string) (string, int, error) {
	if len(args) == 0 {
		return "up", 0, nil
	}
	switch cmd := strings.ToLower(args[0]); cmd {
	case "up", "down":
		return cmd, 0, nil
	case "force":
		if len(args) < 2 {
			return "", 0, errUsage
		}
		version, err := strconv.Atoi(args[1])
		if err != nil {
			return "", 0, fmt.Errorf("invalid version %q: %w", args[1], err)
		}
		return cmd, version, nil
	default:
		return "", 0, fmt.Errorf("unknown command %q: %w", args[0], errUsage)
	}
}

func openMigrator(databaseURL string) (*migrate.Migrate, func(), error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping db: %w", err)
	}

	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("db driver: %w", err)
	}
	srcDriver, err := iofs.New(appmigrations.FS, ".")
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("source driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", srcDriver, "postgres", dbDriver)
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("create migrator: %w", err)
	}
	return m, func() { _, _ = m.Close() }, nil
}
