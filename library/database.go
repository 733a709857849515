package library

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore persists books and students in a SQLite database.
type SQLiteStore struct {
	db *sql.DB

	addBookStmt    *sql.Stmt
	addStudentStmt *sql.Stmt
}

// NewSQLiteStore opens (or creates) the SQLite database at dbPath, applies
// schema migrations, and prepares common statements.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Ensure directory exists so first-run succeeds.
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := applyMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.prepareStatements(); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

// Close releases prepared statements and closes the DB.
func (s *SQLiteStore) Close() error {
	if s.addBookStmt != nil {
		s.addBookStmt.Close()
	}
	if s.addStudentStmt != nil {
		s.addStudentStmt.Close()
	}
	return s.db.Close()
}

// ---------------------------------------------------------------------------
// Schema migration
// ---------------------------------------------------------------------------

const schemaVersion = 1

func applyMigrations(db *sql.DB) error {
	// WAL improves write concurrency.
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return fmt.Errorf("enable WAL: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);`); err != nil {
		return err
	}

	var current int
	_ = db.QueryRow(`SELECT value FROM meta WHERE key='schema_version';`).Scan(&current)
	if current >= schemaVersion {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS books (
            id INTEGER PRIMARY KEY,
            title TEXT NOT NULL,
            author TEXT NOT NULL,
            available BOOLEAN NOT NULL DEFAULT 1
        );`,
		`CREATE TABLE IF NOT EXISTS students (
            id INTEGER PRIMARY KEY,
            name TEXT NOT NULL,
            department TEXT NOT NULL,
            books_issued INTEGER NOT NULL DEFAULT 0 CHECK (books_issued >= 0)
        );`,
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}
	if _, err := tx.Exec(`INSERT INTO meta(key,value) VALUES('schema_version',?)
            ON CONFLICT(key) DO UPDATE SET value=excluded.value;`, schemaVersion); err != nil {
		return fmt.Errorf("apply migration: %w", err)
	}

	return tx.Commit()
}

// ---------------------------------------------------------------------------
// Prepared statements
// ---------------------------------------------------------------------------

func (s *SQLiteStore) prepareStatements() error {
	var err error
	if s.addBookStmt, err = s.db.Prepare(`INSERT INTO books(id,title,author,available) VALUES(?,?,?,?)`); err != nil {
		return err
	}
	if s.addStudentStmt, err = s.db.Prepare(`INSERT INTO students(id,name,department,books_issued) VALUES(?,?,?,?)`); err != nil {
		return err
	}
	return nil
}

// ---------------------------------------------------------------------------
// Snapshot load/save
// ---------------------------------------------------------------------------

// Load reads every book and student. An empty database is an empty snapshot.
func (s *SQLiteStore) Load() (*Snapshot, error) {
	snap := &Snapshot{}

	rows, err := s.db.Query(`SELECT id,title,author,available FROM books ORDER BY id`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var b Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.Available); err != nil {
			rows.Close()
			return nil, err
		}
		snap.Books = append(snap.Books, b)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	rows, err = s.db.Query(`SELECT id,name,department,books_issued FROM students ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var st Student
		if err := rows.Scan(&st.ID, &st.Name, &st.Department, &st.BooksIssued); err != nil {
			return nil, err
		}
		snap.Students = append(snap.Students, st)
	}
	return snap, rows.Err()
}

// Save replaces both tables with the snapshot in one transaction.
func (s *SQLiteStore) Save(snap *Snapshot) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM books`); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM students`); err != nil {
		return err
	}

	addBook := tx.Stmt(s.addBookStmt)
	defer addBook.Close()
	for _, b := range snap.Books {
		if _, err := addBook.Exec(b.ID, b.Title, b.Author, b.Available); err != nil {
			return fmt.Errorf("save book %d: %w", b.ID, err)
		}
	}

	addStudent := tx.Stmt(s.addStudentStmt)
	defer addStudent.Close()
	for _, st := range snap.Students {
		if _, err := addStudent.Exec(st.ID, st.Name, st.Department, st.BooksIssued); err != nil {
			return fmt.Errorf("save student %d: %w", st.ID, err)
		}
	}

	return tx.Commit()
}
