package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"library-catalog/library"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive menu",
	Long: `Interactive menu over the catalog. Changes are kept in memory until
"Save Library" is chosen; exiting does not save.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := openManager()
		if err != nil {
			return err
		}
		defer mgr.Close()

		interactive := term.IsTerminal(int(os.Stdin.Fd()))
		newShell(mgr, cmd.InOrStdin(), cmd.OutOrStdout(), interactive).run()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

// shell drives the numbered menu. Prompts are only printed when a person is
// typing; piped input gets results only.
type shell struct {
	mgr         *library.LibraryManager
	sc          *bufio.Scanner
	out         io.Writer
	interactive bool
}

func newShell(mgr *library.LibraryManager, in io.Reader, out io.Writer, interactive bool) *shell {
	return &shell{mgr: mgr, sc: bufio.NewScanner(in), out: out, interactive: interactive}
}

func (s *shell) prompt(format string, args ...any) {
	if s.interactive {
		fmt.Fprintf(s.out, format, args...)
	}
}

// readLine prompts and returns the next trimmed line; ok is false at EOF.
func (s *shell) readLine(label string) (string, bool) {
	s.prompt("%s", label)
	if !s.sc.Scan() {
		return "", false
	}
	return strings.TrimSpace(s.sc.Text()), true
}

func (s *shell) readID(label, kind string) (int, bool) {
	line, ok := s.readLine(label)
	if !ok {
		return 0, false
	}
	id, err := parseID(kind, line)
	if err != nil {
		failure(s.out, "%v", err)
		return 0, false
	}
	return id, true
}

func (s *shell) printMenu() {
	s.prompt("\nLibrary Management System Menu:\n")
	s.prompt("1. Add Book\n2. Remove Book\n3. Issue Book\n4. Return Book\n")
	s.prompt("5. Display Available Books\n6. Display Issued Books\n7. Save Library\n8. Exit\n")
	s.prompt("Enter your choice: ")
}

func (s *shell) run() {
	for {
		s.printMenu()
		if !s.sc.Scan() {
			return
		}
		switch strings.TrimSpace(s.sc.Text()) {
		case "1":
			s.addBook()
		case "2":
			s.removeBook()
		case "3":
			s.issueBook()
		case "4":
			s.returnBook()
		case "5":
			printBooks(s.out, "Available Books:", s.mgr.AvailableBooks())
		case "6":
			printBooks(s.out, "Issued Books:", s.mgr.IssuedBooks())
		case "7":
			if err := s.mgr.Save(); err != nil {
				failure(s.out, "Error saving library: %v", err)
			} else {
				success(s.out, "Library data saved.")
			}
		case "8":
			fmt.Fprintln(s.out, "Exiting the program.")
			return
		case "":
		default:
			failure(s.out, "Invalid choice. Please try again.")
		}
	}
}

func (s *shell) addBook() {
	title, ok := s.readLine("Enter Book Title: ")
	if !ok {
		return
	}
	author, ok := s.readLine("Enter Author: ")
	if !ok {
		return
	}
	b, err := s.mgr.AddBook(title, author)
	if err != nil {
		failure(s.out, "Error adding book: %v", err)
		return
	}
	success(s.out, "Added book ID %d", b.ID)
}

func (s *shell) removeBook() {
	id, ok := s.readID("Enter Book ID to remove: ", "book")
	if !ok {
		return
	}
	if err := s.mgr.RemoveBook(id); err != nil {
		failure(s.out, "Error removing book: %v", err)
		return
	}
	success(s.out, "Book removed successfully.")
}

func (s *shell) issueBook() {
	bookID, ok := s.readID("Enter Book ID to issue: ", "book")
	if !ok {
		return
	}
	studentID, ok := s.readID("Enter Student ID: ", "student")
	if !ok {
		return
	}

	var details *library.StudentDetails
	if _, err := s.mgr.GetStudent(studentID); errors.Is(err, library.ErrStudentNotFound) {
		s.prompt("Student not found. Registering the student to issue the book...\n")
		name, ok := s.readLine("Enter Student Name: ")
		if !ok {
			return
		}
		dept, ok := s.readLine("Enter Student Department: ")
		if !ok {
			return
		}
		details = &library.StudentDetails{Name: name, Department: dept}
	}

	r, err := s.mgr.IssueBook(bookID, studentID, details)
	if err != nil {
		failure(s.out, "Error issuing book: %v", err)
		return
	}
	success(s.out, "Book issued to student %s.", r.Student.Name)
}

func (s *shell) returnBook() {
	bookID, ok := s.readID("Enter Book ID to return: ", "book")
	if !ok {
		return
	}
	studentID, ok := s.readID("Enter Student ID: ", "student")
	if !ok {
		return
	}
	r, err := s.mgr.ReturnBook(bookID, studentID)
	if err != nil {
		failure(s.out, "Error returning book: %v", err)
		return
	}
	success(s.out, "Book returned by student %s.", r.Student.Name)
}
