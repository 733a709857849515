package library

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Snapshot is the persisted state of the catalog.
type Snapshot struct {
	Books    []Book
	Students []Student
}

// Store persists snapshots between runs.
type Store interface {
	// Load returns the stored snapshot. A store that has never been saved
	// yields an empty snapshot, not an error.
	Load() (*Snapshot, error)
	Save(s *Snapshot) error
	Close() error
}

// Store kinds accepted by OpenStore.
const (
	StoreText   = "text"
	StoreSQLite = "sqlite"
)

// OpenStore opens the backend named by kind at path.
func OpenStore(kind, path string) (Store, error) {
	switch kind {
	case "", StoreText:
		return NewTextStore(path), nil
	case StoreSQLite:
		return NewSQLiteStore(path)
	default:
		return nil, fmt.Errorf("unknown store %q", kind)
	}
}

// StudentsSuffix is appended to a TextStore path to name the file holding
// students.
const StudentsSuffix = ".students"

// TextStore keeps books in the line-oriented file format at its path and
// students, in the same style, in a sidecar file named path+StudentsSuffix.
type TextStore struct {
	path string
}

func NewTextStore(path string) *TextStore { return &TextStore{path: path} }

func (s *TextStore) studentsPath() string { return s.path + StudentsSuffix }

// Load reads both files. A missing file is an empty list. A malformed line
// ends the read of that file; the records before it are returned along with
// the *ParseError.
func (s *TextStore) Load() (*Snapshot, error) {
	books, bookErr := readRecords(s.path, DecodeBooks)
	if bookErr != nil && !isParseError(bookErr) {
		return nil, bookErr
	}
	students, studentErr := readRecords(s.studentsPath(), DecodeStudents)
	if studentErr != nil && !isParseError(studentErr) {
		return nil, studentErr
	}
	return &Snapshot{Books: books, Students: students}, errors.Join(bookErr, studentErr)
}

func readRecords[T any](path string, decode func(io.Reader) ([]T, error)) ([]T, error) {
	f, err := os.Open(filepath.Clean(path))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	recs, err := decode(f)
	if err != nil {
		return recs, fmt.Errorf("%s: %w", path, err)
	}
	return recs, nil
}

func isParseError(err error) bool {
	var perr *ParseError
	return errors.As(err, &perr)
}

// Save writes the students file and then the book file. Each is written to a
// temporary file next to the target and renamed into place, so a failed save
// leaves the previous file untouched.
func (s *TextStore) Save(snap *Snapshot) error {
	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create dir: %w", err)
		}
	}
	err := writeAtomic(s.studentsPath(), func(w io.Writer) error {
		return EncodeStudents(w, snap.Students)
	})
	if err != nil {
		return err
	}
	return writeAtomic(s.path, func(w io.Writer) error {
		return EncodeBooks(w, snap.Books)
	})
}

func writeAtomic(path string, encode func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return err
	}
	if err := encode(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (s *TextStore) Close() error { return nil }
