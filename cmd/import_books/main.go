package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"library-catalog/config"
	"library-catalog/library"
)

// import_books adds every "title,author" line of a list file to the catalog
// configured through LIBRARY_* variables, then saves it.
func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: import_books <list-file>")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading config: %v\n", err)
		os.Exit(1)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))

	manager, err := library.OpenLibraryManager(cfg.StoreKind, cfg.Path(), library.WithLogger(logger))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening catalog: %v\n", err)
		os.Exit(1)
	}
	defer manager.Close()

	f, err := os.Open(filepath.Clean(os.Args[1]))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading list: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	fmt.Printf("Importing books from %s...\n", os.Args[1])
	successCount, errorCount := importBooks(manager, f, os.Stdout)

	fmt.Printf("\nImport complete!\n")
	fmt.Printf("Successfully imported: %d books\n", successCount)
	fmt.Printf("Errors: %d\n", errorCount)

	if successCount == 0 {
		return
	}
	if err := manager.Save(); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving catalog: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("\nAvailable books:")
	fmt.Printf("%-3s %-50s %-30s\n", "ID", "Title", "Author")
	fmt.Println(strings.Repeat("-", 85))
	for _, book := range manager.AvailableBooks() {
		fmt.Printf("%-3d %-50s %-30s\n", book.ID, truncateString(book.Title, 50), truncateString(book.Author, 30))
	}
}

// importBooks adds one book per "title,author" line. Blank lines and lines
// starting with '#' are skipped.
func importBooks(mgr *library.LibraryManager, r io.Reader, log io.Writer) (successCount, errorCount int) {
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		title, author, ok := strings.Cut(line, ",")
		if !ok {
			fmt.Fprintf(log, "line %d: ERROR - want \"title,author\"\n", lineNo)
			errorCount++
			continue
		}
		title, author = strings.TrimSpace(title), strings.TrimSpace(author)

		fmt.Fprintf(log, "Importing: %s by %s... ", title, author)
		book, err := mgr.AddBook(title, author)
		if err != nil {
			fmt.Fprintf(log, "ERROR - %v\n", err)
			errorCount++
			continue
		}
		fmt.Fprintf(log, "SUCCESS (ID: %d)\n", book.ID)
		successCount++
	}
	if err := sc.Err(); err != nil {
		fmt.Fprintf(log, "read error: %v\n", err)
		errorCount++
	}
	return successCount, errorCount
}

func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
