package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	jsoniter "github.com/json-iterator/go"
	"golang.org/x/term"

	"library-catalog/library"
)

var (
	colorSuccess = lipgloss.Color("#10B981")
	colorError   = lipgloss.Color("#EF4444")
	colorMuted   = lipgloss.Color("#6B7280")
	colorPrimary = lipgloss.Color("#7C3AED")

	successStyle = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	headerStyle  = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func success(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, successStyle.Render("✓ ")+fmt.Sprintf(format, args...))
}

func failure(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, errorStyle.Render("✗ ")+fmt.Sprintf(format, args...))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// tableWidth is the terminal width, or 80 when stdout is not a terminal.
func tableWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 80
}

func printBooks(w io.Writer, heading string, books []library.Book) {
	fmt.Fprintln(w, headerStyle.Render(heading))
	if len(books) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No books."))
		return
	}
	titleW := max(20, min(50, tableWidth()-45))
	fmt.Fprintf(w, "%-5s %-*s %-25s %-10s\n", "ID", titleW, "Title", "Author", "Available")
	fmt.Fprintln(w, mutedStyle.Render(strings.Repeat("-", titleW+43)))
	for _, b := range books {
		availStr := "Yes"
		if !b.Available {
			availStr = "No"
		}
		fmt.Fprintf(w, "%-5d %-*s %-25s %-10s\n",
			b.ID, titleW, truncateString(b.Title, titleW), truncateString(b.Author, 25), availStr)
	}
}

func printStudents(w io.Writer, students []library.Student) {
	fmt.Fprintln(w, headerStyle.Render("Students:"))
	if len(students) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No students registered."))
		return
	}
	fmt.Fprintf(w, "%-5s %-30s %-25s %-6s\n", "ID", "Name", "Department", "Issued")
	fmt.Fprintln(w, mutedStyle.Render(strings.Repeat("-", 69)))
	for _, s := range students {
		fmt.Fprintf(w, "%-5d %-30s %-25s %-6d\n",
			s.ID, truncateString(s.Name, 30), truncateString(s.Department, 25), s.BooksIssued)
	}
}

func printStats(w io.Writer, st library.Stats) {
	fmt.Fprintln(w, headerStyle.Render("Catalog:"))
	fmt.Fprintf(w, "  Books:     %d\n", st.Books)
	fmt.Fprintf(w, "  Available: %d\n", st.Available)
	fmt.Fprintf(w, "  Issued:    %d\n", st.Issued)
	fmt.Fprintf(w, "  Students:  %d\n", st.Students)
}

func truncateString(s string, maxLength int) string {
	r := []rune(s)
	if len(r) <= maxLength {
		return s
	}
	if maxLength <= 3 {
		return string(r[:maxLength])
	}
	return string(r[:maxLength-3]) + "..."
}
