package library

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextStoreMissingFileIsEmpty(t *testing.T) {
	s := NewTextStore(filepath.Join(t.TempDir(), "library.txt"))
	snap, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, snap.Books)
	assert.Empty(t, snap.Students)
}

func TestTextStoreSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "library.txt")
	s := NewTextStore(path)
	books := []Book{
		{ID: 1, Title: "Dune", Author: "Herbert", Available: true},
		{ID: 2, Title: "Emma", Author: "Austen", Available: false},
	}
	students := []Student{
		{ID: 0, Name: "Zed", Department: "Math"},
		{ID: 42, Name: "Alice", Department: "CS", BooksIssued: 1},
	}
	require.NoError(t, s.Save(&Snapshot{Books: books, Students: students}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "1,Dune,Herbert,1\n2,Emma,Austen,0\n", string(raw))
	raw, err = os.ReadFile(path + StudentsSuffix)
	require.NoError(t, err)
	assert.Equal(t, "0,Zed,Math,0\n42,Alice,CS,1\n", string(raw))

	snap, err := s.Load()
	require.NoError(t, err)
	assert.ElementsMatch(t, books, snap.Books)
	assert.ElementsMatch(t, students, snap.Students)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 2, "temp file left behind")
}

func TestTextStoreMissingStudentsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.txt")
	require.NoError(t, os.WriteFile(path, []byte("1,Dune,Herbert,0\n"), 0o644))

	snap, err := NewTextStore(path).Load()
	require.NoError(t, err)
	assert.Len(t, snap.Books, 1)
	assert.Empty(t, snap.Students)
}

func TestTextStoreLoadMalformedStudents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.txt")
	require.NoError(t, os.WriteFile(path, []byte("1,Dune,Herbert,0\n"), 0o644))
	require.NoError(t, os.WriteFile(path+StudentsSuffix, []byte("42,Alice,CS,1\n7,Bob"), 0o644))

	snap, err := NewTextStore(path).Load()
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 2, perr.Line)
	assert.Len(t, snap.Books, 1)
	assert.Equal(t, []Student{{ID: 42, Name: "Alice", Department: "CS", BooksIssued: 1}}, snap.Students)
}

func TestTextStoreSaveFailureKeepsOldFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "library.txt")
	require.NoError(t, os.WriteFile(path, []byte("1,Dune,Herbert,1\n"), 0o644))

	// A regular file where the parent directory should be.
	s := NewTextStore(filepath.Join(path, "sub", "library.txt"))
	assert.Error(t, s.Save(&Snapshot{Books: []Book{{ID: 9, Title: "X", Author: "Y"}}}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "1,Dune,Herbert,1\n", string(raw))
}

func TestTextStoreLoadMalformedTail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.txt")
	require.NoError(t, os.WriteFile(path, []byte("1,Dune,Herbert,1\n2,Emma,Aus"), 0o644))

	snap, err := NewTextStore(path).Load()
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 2, perr.Line)
	require.Len(t, snap.Books, 1)
	assert.Equal(t, "Dune", snap.Books[0].Title)
}

func TestOpenStore(t *testing.T) {
	dir := t.TempDir()

	s, err := OpenStore("", filepath.Join(dir, "a.txt"))
	require.NoError(t, err)
	assert.IsType(t, &TextStore{}, s)

	s, err = OpenStore(StoreSQLite, filepath.Join(dir, "a.db"))
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	_, err = OpenStore("csv", filepath.Join(dir, "a.csv"))
	assert.Error(t, err)
}
