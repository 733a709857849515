package library

import (
	"errors"
	"fmt"
	"sync"
)

// Logger is the logging surface the manager needs. *slog.Logger satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// LibraryManager is the façade the CLI talks to. It owns the registry, the
// directory and the store. A single RWMutex guards registry and directory
// together so readers never see a book flag flipped without the matching
// counter change.
type LibraryManager struct {
	mu          sync.RWMutex
	books       *BookRegistry
	students    *StudentDirectory
	circulation *CirculationService

	saveMu sync.Mutex
	store  Store
	logger Logger
}

// Option configures a LibraryManager.
type Option func(*LibraryManager)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l Logger) Option {
	return func(lm *LibraryManager) {
		if l != nil {
			lm.logger = l
		}
	}
}

// NewLibraryManager returns an empty manager backed by store. Call Load to
// restore persisted state.
func NewLibraryManager(store Store, opts ...Option) *LibraryManager {
	lm := &LibraryManager{store: store, logger: nopLogger{}}
	for _, opt := range opts {
		opt(lm)
	}
	lm.reset(NewBookRegistry(), NewStudentDirectory())
	return lm
}

// OpenLibraryManager opens the store of the given kind at path and loads it.
func OpenLibraryManager(kind, path string, opts ...Option) (*LibraryManager, error) {
	store, err := OpenStore(kind, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	lm := NewLibraryManager(store, opts...)
	if err := lm.Load(); err != nil {
		store.Close()
		return nil, err
	}
	return lm, nil
}

func (lm *LibraryManager) reset(books *BookRegistry, students *StudentDirectory) {
	lm.books = books
	lm.students = students
	lm.circulation = NewCirculationService(books, students)
}

// Close closes the underlying store. It does not save.
func (lm *LibraryManager) Close() error { return lm.store.Close() }

// ------------------ Book helpers ------------------

func (lm *LibraryManager) AddBook(title, author string) (Book, error) {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	b, err := lm.books.Add(title, author)
	if err != nil {
		return Book{}, err
	}
	lm.logger.Debug("book added", "book_id", b.ID, "title", b.Title)
	return b, nil
}

func (lm *LibraryManager) RemoveBook(id int) error {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	if err := lm.books.Remove(id); err != nil {
		return err
	}
	lm.logger.Debug("book removed", "book_id", id)
	return nil
}

func (lm *LibraryManager) GetBook(id int) (Book, error) {
	lm.mu.RLock()
	defer lm.mu.RUnlock()
	b, err := lm.books.Find(id)
	if err != nil {
		return Book{}, err
	}
	return *b, nil
}

func (lm *LibraryManager) AvailableBooks() []Book {
	lm.mu.RLock()
	defer lm.mu.RUnlock()
	return lm.books.Available()
}

func (lm *LibraryManager) IssuedBooks() []Book {
	lm.mu.RLock()
	defer lm.mu.RUnlock()
	return lm.books.Issued()
}

func (lm *LibraryManager) AllBooks() []Book {
	lm.mu.RLock()
	defer lm.mu.RUnlock()
	return lm.books.Books()
}

// ------------------ Student helpers ------------------

// AddStudent registers s, replacing any student with the same id.
func (lm *LibraryManager) AddStudent(s Student) error {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	if err := lm.students.Add(s); err != nil {
		return err
	}
	lm.logger.Debug("student added", "student_id", s.ID, "name", s.Name)
	return nil
}

func (lm *LibraryManager) GetStudent(id int) (Student, error) {
	lm.mu.RLock()
	defer lm.mu.RUnlock()
	s, err := lm.students.Find(id)
	if err != nil {
		return Student{}, err
	}
	return *s, nil
}

func (lm *LibraryManager) Students() []Student {
	lm.mu.RLock()
	defer lm.mu.RUnlock()
	return lm.students.Students()
}

// ------------------ Circulation ------------------

// IssueBook lends a book. details is only consulted when studentID is unknown.
func (lm *LibraryManager) IssueBook(bookID, studentID int, details *StudentDetails) (IssueReceipt, error) {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	r, err := lm.circulation.Issue(bookID, studentID, details)
	if err != nil {
		return IssueReceipt{}, err
	}
	lm.logger.Debug("book issued", "book_id", bookID, "student_id", studentID,
		"student_created", r.StudentCreated, "books_issued", r.Student.BooksIssued)
	return r, nil
}

func (lm *LibraryManager) ReturnBook(bookID, studentID int) (ReturnReceipt, error) {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	r, err := lm.circulation.Return(bookID, studentID)
	if err != nil {
		return ReturnReceipt{}, err
	}
	lm.logger.Debug("book returned", "book_id", bookID, "student_id", studentID,
		"books_issued", r.Student.BooksIssued)
	return r, nil
}

// Stats counts books and students.
func (lm *LibraryManager) Stats() Stats {
	lm.mu.RLock()
	defer lm.mu.RUnlock()
	avail := len(lm.books.Available())
	return Stats{
		Books:     lm.books.Len(),
		Available: avail,
		Issued:    lm.books.Len() - avail,
		Students:  lm.students.Len(),
	}
}

// ------------------ Persistence ------------------

// Save snapshots the catalog under the read lock and writes it to the store.
// Saves are serialised, and each takes its snapshot only after the previous
// one has been written. A failed save leaves memory untouched.
func (lm *LibraryManager) Save() error {
	lm.saveMu.Lock()
	defer lm.saveMu.Unlock()

	lm.mu.RLock()
	snap := &Snapshot{Books: lm.books.Books(), Students: lm.students.Students()}
	lm.mu.RUnlock()

	if err := lm.store.Save(snap); err != nil {
		lm.logger.Error("save failed", "error", err)
		return fmt.Errorf("%w: save: %w", ErrStorage, err)
	}
	lm.logger.Info("catalog saved", "books", len(snap.Books), "students", len(snap.Students))
	return nil
}

// Load replaces the in-memory catalog with the stored snapshot. A store that
// was never written loads as an empty catalog. If a stored file ends in a
// malformed line, the records before it are kept and a warning is logged.
// On any other failure the catalog is left as it was.
func (lm *LibraryManager) Load() error {
	snap, err := lm.store.Load()
	var perr *ParseError
	switch {
	case errors.As(err, &perr):
		lm.logger.Warn("stopped reading catalog at malformed line",
			"line", perr.Line, "text", perr.Text, "error", perr.Err, "books", len(snap.Books), "students", len(snap.Students))
	case err != nil:
		return fmt.Errorf("%w: load: %w", ErrStorage, err)
	}

	books := NewBookRegistry()
	if err := books.Replace(snap.Books); err != nil {
		return fmt.Errorf("%w: load: %w", ErrStorage, err)
	}
	students := NewStudentDirectory()
	if err := students.Replace(snap.Students); err != nil {
		return fmt.Errorf("%w: load: %w", ErrStorage, err)
	}

	lm.mu.Lock()
	lm.reset(books, students)
	lm.mu.Unlock()

	lm.logger.Info("catalog loaded", "books", books.Len(), "students", students.Len())
	return nil
}
