package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"microsocial/app/config"
	"microsocial/app/metrics"
	"microsocial/app/repositories"
	"microsocial/app/services"
)

var osExit = os.Exit

// HandleCommand runs a subcommand and returns its exit code.
func HandleCommand(args []string) int {
	if len(args) < 1 {
		printHelp()
		osExit(1)
		return 1
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Invalid configuration: %v\n", err)
		osExit(1)
		return 1
	}

	cmd := args[0]
	switch cmd {
	case "serve":
		if err := RunAppServer(cfg, newLogger(cfg)); err != nil {
			fmt.Printf("Server error: %v\n", err)
			osExit(1)
			return 1
		}
		return 0
	case "clean":
		return clean(cfg)
	case "init":
		return initDb(cfg)
	case "backup":
		return backup(cfg)
	case "restore":
		if len(args) < 2 {
			fmt.Println("Error: backup file path required for restore")
			osExit(1)
			return 1
		}
		return restore(cfg, args[1])
	case "recount":
		return recount(cfg)
	case "help":
		printHelp()
		return 0
	default:
		fmt.Printf("Unknown command: %s\n\n", cmd)
		printHelp()
		osExit(1)
		return 1
	}
}

func printHelp() {
	helpText := `Usage: microsocial <command>

Commands:
  serve            Run the API server
  init             Initialize a new empty database
  clean            Delete the database
  backup           Write a backup of the database to BACKUP_DIR
  restore [file]   Restore the database from a backup
  recount          Recompute like and comment counters from stored records
  help             Display this help message

Configuration is read from PORT, DATA_DIR, BACKUP_DIR, JWT_SECRET, JWT_EXPIRE,
LOG_LEVEL, AUTHOR_CACHE_SIZE, BCRYPT_COST and SHUTDOWN_TIMEOUT.
`
	fmt.Println(helpText)
}

// openStore opens the configured database. Badger's own log output is
// discarded unless LOG_LEVEL is debug.
func openStore(cfg *config.Config) (*repositories.Store, error) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if cfg.LogLevel <= slog.LevelDebug {
		logger = newLogger(cfg)
	}
	return repositories.Open(cfg.DataDir, logger)
}

// clean removes the database.
func clean(cfg *config.Config) int {
	if !exists(cfg.DataDir) {
		fmt.Println("Database is already clean (does not exist)")
		return 0
	}
	if !confirm("Are you sure you want to clean the database? This cannot be undone.") {
		fmt.Println("Operation cancelled")
		return 0
	}
	if err := os.RemoveAll(cfg.DataDir); err != nil {
		fmt.Printf("Failed to clean database: %v\n", err)
		return 1
	}
	fmt.Println("Database cleaned successfully")
	return 0
}

// initDb creates a new empty database.
func initDb(cfg *config.Config) int {
	if exists(cfg.DataDir) {
		fmt.Println("Database already exists. Use 'clean' first if you want to reinitialize.")
		return 0
	}
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		fmt.Printf("Failed to create database directory: %v\n", err)
		return 1
	}

	store, err := openStore(cfg)
	if err != nil {
		fmt.Printf("Failed to initialize database: %v\n", err)
		return 1
	}
	defer store.Close()

	fmt.Println("Database initialized successfully")
	return 0
}

// backup writes a full backup of the database into the backup directory.
func backup(cfg *config.Config) int {
	if !exists(cfg.DataDir) {
		fmt.Println("No database exists to backup")
		return 1
	}
	if err := os.MkdirAll(cfg.BackupDir, 0755); err != nil {
		fmt.Printf("Failed to create backup directory: %v\n", err)
		return 1
	}

	store, err := openStore(cfg)
	if err != nil {
		fmt.Printf("Failed to open database: %v\n", err)
		return 1
	}
	defer store.Close()

	backupFile := filepath.Join(cfg.BackupDir, fmt.Sprintf("backup_%d.db", time.Now().UnixNano()))
	f, err := os.Create(backupFile)
	if err != nil {
		fmt.Printf("Failed to create backup file: %v\n", err)
		return 1
	}
	defer f.Close()

	if _, err := store.DB().Backup(f, 0); err != nil {
		fmt.Printf("Failed to backup database: %v\n", err)
		return 1
	}

	fmt.Printf("Database backed up successfully to %s\n", backupFile)
	return 0
}

// restore replaces the database with the contents of backupFile.
func restore(cfg *config.Config, backupFile string) int {
	fi, err := os.Stat(backupFile)
	if err != nil {
		fmt.Printf("Backup file does not exist: %s\n", backupFile)
		return 1
	}
	if fi.Size() == 0 {
		fmt.Printf("Backup file is empty: %s\n", backupFile)
		return 1
	}

	if exists(cfg.DataDir) {
		if !confirm("Existing database found. Do you want to replace it?") {
			fmt.Println("Operation cancelled")
			return 1
		}
		if err := os.RemoveAll(cfg.DataDir); err != nil {
			fmt.Printf("Failed to remove existing database: %v\n", err)
			return 1
		}
	}
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		fmt.Printf("Failed to create database directory: %v\n", err)
		return 1
	}

	store, err := openStore(cfg)
	if err != nil {
		fmt.Printf("Failed to open database: %v\n", err)
		return 1
	}
	defer store.Close()

	f, err := os.Open(backupFile)
	if err != nil {
		fmt.Printf("Failed to open backup file: %v\n", err)
		return 1
	}
	defer f.Close()

	if err := store.DB().Load(f, 4); err != nil {
		fmt.Printf("Failed to restore database: %v\n", err)
		return 1
	}

	fmt.Println("Database restored successfully")
	return 0
}

// recount recomputes every post's counters from its like and comment
// records and reports how many were repaired.
func recount(cfg *config.Config) int {
	if !exists(cfg.DataDir) {
		fmt.Println("No database exists to recount")
		return 1
	}

	store, err := openStore(cfg)
	if err != nil {
		fmt.Printf("Failed to open database: %v\n", err)
		return 1
	}
	defer store.Close()

	logger := newLogger(cfg)
	reconciler := services.NewReconciler(store.Posts, store.Comments, store.Likes, logger, metrics.New())
	report, err := reconciler.Recount(context.Background())
	if err != nil {
		fmt.Printf("Failed to recount: %v\n", err)
		return 1
	}

	fmt.Printf("Recounted %d posts, repaired %d\n", report.Scanned, report.Repaired)
	return 0
}
