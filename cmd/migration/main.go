package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/riskibarqy/fantasy-trade-market/db/migrations"
	"github.com/riskibarqy/fantasy-trade-market/internal/config"
	"github.com/riskibarqy/fantasy-trade-market/internal/platform/logging"
)

var errUsage = errors.New("usage")

type command struct {
	usage string
	run   func(m *migrate.Migrate, args []string) error
}

var commands = map[string]command{
	"up":      {"up", migrateUp},
	"down":    {"down [steps]", migrateDown},
	"version": {"version", printVersion},
	"force":   {"force <version>", forceVersion},
	"goto":    {"goto <version>", gotoVersion},
}

func main() {
	logger := logging.NewJSON(logging.LevelInfo, "fantasy-trade-market-migration")
	err := run(logger, os.Args[1:])
	_ = logger.Sync()
	switch {
	case errors.Is(err, errUsage):
		printUsage()
		os.Exit(2)
	case err != nil:
		logger.Error("migration command failed", "error", err)
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(logger *logging.Logger, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, ok := commands[strings.ToLower(strings.TrimSpace(args[0]))]
	if !ok {
		return errUsage
	}

	db, err := config.LoadDatabase()
	if err != nil {
		return err
	}
	m, source, err := openMigrator(db.DSN())
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			logger.Warn("close migrator", "source_error", srcErr, "db_error", dbErr)
		}
	}()

	if err := cmd.run(m, args[1:]); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("no migration changes", "source", source)
			return nil
		}
		return err
	}
	logger.Info("migration command done", "command", args[0], "source", source)
	return nil
}

// openMigrator prefers MIGRATIONS_DIR on disk over the embedded schema.
func openMigrator(dsn string) (*migrate.Migrate, string, error) {
	dir := strings.TrimSpace(os.Getenv("MIGRATIONS_DIR"))
	if dir == "" {
		src, err := iofs.New(migrations.Files, ".")
		if err != nil {
			return nil, "", fmt.Errorf("open embedded migrations: %w", err)
		}
		m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
		return m, "embedded", err
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, "", fmt.Errorf("resolve MIGRATIONS_DIR: %w", err)
	}
	if info, err := os.Stat(abs); err != nil || !info.IsDir() {
		return nil, "", fmt.Errorf("migration directory %s not found", abs)
	}
	sourceURL := "file://" + filepath.ToSlash(abs)
	m, err := migrate.New(sourceURL, dsn)
	return m, sourceURL, err
}

func migrateUp(m *migrate.Migrate, _ []string) error {
	return m.Up()
}

func migrateDown(m *migrate.Migrate, args []string) error {
	steps := 1
	if len(args) > 0 {
		n, err := strconv.Atoi(strings.TrimSpace(args[0]))
		if err != nil || n <= 0 {
			return fmt.Errorf("down steps must be a positive integer, got %q", args[0])
		}
		steps = n
	}
	return m.Steps(-steps)
}

func printVersion(m *migrate.Migrate, _ []string) error {
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		fmt.Println("version: none")
		return nil
	}
	if err != nil {
		return fmt.Errorf("read version: %w", err)
	}
	fmt.Printf("version: %d dirty: %t\n", version, dirty)
	return nil
}

func forceVersion(m *migrate.Migrate, args []string) error {
	version, err := versionArg(args)
	if err != nil {
		return err
	}
	return m.Force(int(version))
}

func gotoVersion(m *migrate.Migrate, args []string) error {
	version, err := versionArg(args)
	if err != nil {
		return err
	}
	return m.Migrate(version)
}

func versionArg(args []string) (uint, error) {
	if len(args) == 0 {
		return 0, errUsage
	}
	v, err := strconv.ParseUint(strings.TrimSpace(args[0]), 10, 31)
	if err != nil {
		return 0, fmt.Errorf("invalid version %q: %w", args[0], err)
	}
	return uint(v), nil
}

func printUsage() {
	name := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, "usage: %s <command>\n", name)
	for _, key := range []string{"up", "down", "version", "force", "goto"} {
		fmt.Fprintf(os.Stderr, "  %s %s\n", name, commands[key].usage)
	}
	fmt.Fprintln(os.Stderr, "DB_URL is required; MIGRATIONS_DIR overrides the embedded schema.")
}
