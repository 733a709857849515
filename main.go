package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"library-catalog/config"
	"library-catalog/library"
)

var (
	// Global flags
	storeKind  string
	filePath   string
	dbPath     string
	jsonOutput bool
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "library",
	Short: "Catalog manager for a small library",
	Long: `Tracks books and students, issues and returns books, and keeps the
catalog in a flat text file (or a SQLite database) between runs.

Each command loads the catalog, applies one change and saves it again.
Use "library shell" for the interactive menu.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading .env: %v\n", err)
	}

	rootCmd.PersistentFlags().StringVar(&storeKind, "store", cfg.StoreKind, "Storage backend: text or sqlite (env LIBRARY_STORE)")
	rootCmd.PersistentFlags().StringVar(&filePath, "file", cfg.FilePath, "Book file for the text store (env LIBRARY_FILE)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", cfg.DBPath, "Database for the sqlite store (env LIBRARY_DB)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	logLevel = cfg.LogLevel
}

var logLevel slog.Level

func newLogger() *slog.Logger {
	lvl := logLevel
	if verbose {
		lvl = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// openManager opens the configured store and loads the catalog.
func openManager() (*library.LibraryManager, error) {
	cfg := config.Config{StoreKind: storeKind, FilePath: filePath, DBPath: dbPath}
	mgr, err := library.OpenLibraryManager(cfg.StoreKind, cfg.Path(), library.WithLogger(newLogger()))
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	return mgr, nil
}

// withManager runs fn against a loaded catalog and saves afterwards when
// save is set and fn succeeded.
func withManager(save bool, fn func(*library.LibraryManager) error) error {
	mgr, err := openManager()
	if err != nil {
		return err
	}
	defer mgr.Close()

	if err := fn(mgr); err != nil {
		return err
	}
	if save {
		return mgr.Save()
	}
	return nil
}
