package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"library-catalog/library"
)

var (
	// issue flags
	studentName string
	studentDept string
)

var addBookCmd = &cobra.Command{
	Use:   "add-book <title> <author>",
	Short: "Add a book to the catalog",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withManager(true, func(mgr *library.LibraryManager) error {
			b, err := mgr.AddBook(strings.TrimSpace(args[0]), strings.TrimSpace(args[1]))
			if err != nil {
				return fmt.Errorf("add book: %w", err)
			}
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), b)
			}
			success(cmd.OutOrStdout(), "Added book ID %d", b.ID)
			return nil
		})
	},
}

var removeBookCmd = &cobra.Command{
	Use:   "remove-book <book-id>",
	Short: "Remove a book from the catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("book", args[0])
		if err != nil {
			return err
		}
		return withManager(true, func(mgr *library.LibraryManager) error {
			if err := mgr.RemoveBook(id); err != nil {
				return fmt.Errorf("remove book: %w", err)
			}
			success(cmd.OutOrStdout(), "Removed book ID %d", id)
			return nil
		})
	},
}

var issueCmd = &cobra.Command{
	Use:   "issue <book-id> <student-id>",
	Short: "Issue a book to a student",
	Long: `Issue a book to a student. A student seen for the first time is
registered on the spot and needs --name and --department.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		bookID, err := parseID("book", args[0])
		if err != nil {
			return err
		}
		studentID, err := parseID("student", args[1])
		if err != nil {
			return err
		}
		var details *library.StudentDetails
		if studentName != "" || studentDept != "" {
			details = &library.StudentDetails{Name: studentName, Department: studentDept}
		}
		return withManager(true, func(mgr *library.LibraryManager) error {
			r, err := mgr.IssueBook(bookID, studentID, details)
			if err != nil {
				return fmt.Errorf("issue book: %w", err)
			}
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), r)
			}
			if r.StudentCreated {
				success(cmd.OutOrStdout(), "Registered student %s (ID: %d)", r.Student.Name, r.Student.ID)
			}
			success(cmd.OutOrStdout(), "Book '%s' issued to %s", r.Book.Title, r.Student.Name)
			return nil
		})
	},
}

var returnCmd = &cobra.Command{
	Use:   "return <book-id> <student-id>",
	Short: "Return an issued book",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		bookID, err := parseID("book", args[0])
		if err != nil {
			return err
		}
		studentID, err := parseID("student", args[1])
		if err != nil {
			return err
		}
		return withManager(true, func(mgr *library.LibraryManager) error {
			r, err := mgr.ReturnBook(bookID, studentID)
			if err != nil {
				return fmt.Errorf("return book: %w", err)
			}
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), r)
			}
			success(cmd.OutOrStdout(), "Book '%s' returned by %s", r.Book.Title, r.Student.Name)
			return nil
		})
	},
}

var addStudentCmd = &cobra.Command{
	Use:   "add-student <student-id> <name> <department>",
	Short: "Register a student",
	Long: `Register a student, replacing any student with the same ID.
The text store keeps students in a file next to the book file.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("student", args[0])
		if err != nil {
			return err
		}
		s := library.Student{ID: id, Name: strings.TrimSpace(args[1]), Department: strings.TrimSpace(args[2])}
		return withManager(true, func(mgr *library.LibraryManager) error {
			if err := mgr.AddStudent(s); err != nil {
				return fmt.Errorf("add student: %w", err)
			}
			success(cmd.OutOrStdout(), "Added student '%s' with ID %d", s.Name, s.ID)
			return nil
		})
	},
}

var listCmd = &cobra.Command{
	Use:       "list [available|issued|all|students]",
	Short:     "List books or students",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"available", "issued", "all", "students"},
	RunE: func(cmd *cobra.Command, args []string) error {
		what := "available"
		if len(args) == 1 {
			what = args[0]
		}
		return withManager(false, func(mgr *library.LibraryManager) error {
			out := cmd.OutOrStdout()
			if what == "students" {
				students := mgr.Students()
				if jsonOutput {
					return writeJSON(out, students)
				}
				printStudents(out, students)
				return nil
			}

			var books []library.Book
			var heading string
			switch what {
			case "issued":
				books, heading = mgr.IssuedBooks(), "Issued Books:"
			case "all":
				books, heading = mgr.AllBooks(), "All Books:"
			default:
				books, heading = mgr.AvailableBooks(), "Available Books:"
			}
			if jsonOutput {
				return writeJSON(out, books)
			}
			printBooks(out, heading, books)
			return nil
		})
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show catalog counts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withManager(false, func(mgr *library.LibraryManager) error {
			st := mgr.Stats()
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), st)
			}
			printStats(cmd.OutOrStdout(), st)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(addBookCmd, removeBookCmd, issueCmd, returnCmd, addStudentCmd, listCmd, statsCmd)

	issueCmd.Flags().StringVar(&studentName, "name", "", "Name of a student seen for the first time")
	issueCmd.Flags().StringVar(&studentDept, "department", "", "Department of a student seen for the first time")
}

func parseID(kind, s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid %s ID: %s", kind, s)
	}
	return id, nil
}
