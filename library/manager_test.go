package library

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T) (*LibraryManager, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "library.txt")
	mgr, err := OpenLibraryManager(StoreText, path)
	require.NoError(t, err)
	t.Cleanup(func() { mgr.Close() })
	return mgr, path
}

func TestManagerIssueReturnExample(t *testing.T) {
	mgr, _ := newManager(t)
	b, err := mgr.AddBook("Dune", "Herbert")
	require.NoError(t, err)
	require.Equal(t, 1, b.ID)

	_, err = mgr.IssueBook(1, 42, &StudentDetails{Name: "Alice", Department: "CS"})
	require.NoError(t, err)

	s, err := mgr.GetStudent(42)
	require.NoError(t, err)
	assert.Equal(t, 1, s.BooksIssued)
	got, err := mgr.GetBook(1)
	require.NoError(t, err)
	assert.False(t, got.Available)
	assert.Empty(t, mgr.AvailableBooks())
	assert.Len(t, mgr.IssuedBooks(), 1)

	_, err = mgr.ReturnBook(1, 42)
	require.NoError(t, err)
	s, _ = mgr.GetStudent(42)
	assert.Equal(t, 0, s.BooksIssued)
	got, _ = mgr.GetBook(1)
	assert.True(t, got.Available)
}

func TestManagerReturnsCopies(t *testing.T) {
	mgr, _ := newManager(t)
	_, err := mgr.AddBook("Dune", "Herbert")
	require.NoError(t, err)

	b, _ := mgr.GetBook(1)
	b.Available = false
	again, _ := mgr.GetBook(1)
	assert.True(t, again.Available)
}

func TestManagerSaveLoadRoundTrip(t *testing.T) {
	mgr, path := newManager(t)
	for _, title := range []string{"Dune", "Emma", "Ulysses"} {
		_, err := mgr.AddBook(title, "Someone")
		require.NoError(t, err)
	}
	_, err := mgr.IssueBook(2, 1, &StudentDetails{Name: "Alice", Department: "CS"})
	require.NoError(t, err)
	require.NoError(t, mgr.RemoveBook(3))
	require.NoError(t, mgr.Save())

	loaded, err := OpenLibraryManager(StoreText, path)
	require.NoError(t, err)
	defer loaded.Close()
	assert.ElementsMatch(t, mgr.AllBooks(), loaded.AllBooks())
	assert.Equal(t, mgr.Students(), loaded.Students())

	// Only live ids survive a restart, so numbering resumes after the highest one.
	b, err := loaded.AddBook("New", "Someone")
	require.NoError(t, err)
	assert.Equal(t, 3, b.ID)
}

func TestManagerLoadKeepsGoodPrefix(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.txt")
	require.NoError(t, os.WriteFile(path, []byte("1,Dune,Herbert,1\n2,Emma,Austen,0\n3,Broken"), 0o644))

	mgr, err := OpenLibraryManager(StoreText, path)
	require.NoError(t, err)
	defer mgr.Close()
	assert.Equal(t, 2, mgr.Stats().Books)
	assert.Equal(t, 1, mgr.Stats().Issued)
}

func TestManagerLoadKeepsPrefixBeforeOversizedLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.txt")
	data := "1,Dune,Herbert,1\n2,Emma,Austen,0\n" + strings.Repeat("x", 70000)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	mgr, err := OpenLibraryManager(StoreText, path)
	require.NoError(t, err)
	defer mgr.Close()
	assert.Equal(t, 2, mgr.Stats().Books)
}

func TestManagerTextStoreKeepsStudents(t *testing.T) {
	mgr, path := newManager(t)
	_, err := mgr.AddBook("Dune", "Herbert")
	require.NoError(t, err)
	_, err = mgr.IssueBook(1, 42, &StudentDetails{Name: "Alice", Department: "CS"})
	require.NoError(t, err)
	require.NoError(t, mgr.Save())

	loaded, err := OpenLibraryManager(StoreText, path)
	require.NoError(t, err)
	defer loaded.Close()

	r, err := loaded.ReturnBook(1, 42)
	require.NoError(t, err)
	assert.Equal(t, 0, r.Student.BooksIssued)
}

func TestManagerLoadRejectsDuplicateIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.txt")
	require.NoError(t, os.WriteFile(path, []byte("1,Dune,Herbert,1\n1,Emma,Austen,0\n"), 0o644))

	_, err := OpenLibraryManager(StoreText, path)
	assert.ErrorIs(t, err, ErrStorage)
	assert.ErrorIs(t, err, ErrDuplicateBook)
}

type failingStore struct{ Store }

func (failingStore) Save(*Snapshot) error { return errors.New("disk full") }

func TestManagerSaveFailureKeepsMemory(t *testing.T) {
	mgr := NewLibraryManager(failingStore{Store: NewTextStore(filepath.Join(t.TempDir(), "x.txt"))})
	_, err := mgr.AddBook("Dune", "Herbert")
	require.NoError(t, err)

	err = mgr.Save()
	assert.ErrorIs(t, err, ErrStorage)
	assert.Len(t, mgr.AllBooks(), 1)
}

// recordingStore remembers the book count of every snapshot it is handed and
// notes any Save that starts while another is still running.
type recordingStore struct {
	Store
	mu       sync.Mutex
	inFlight int
	overlaps int
	saved    []int
}

func (s *recordingStore) Save(snap *Snapshot) error {
	s.mu.Lock()
	s.inFlight++
	if s.inFlight > 1 {
		s.overlaps++
	}
	s.mu.Unlock()

	time.Sleep(time.Millisecond)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight--
	s.saved = append(s.saved, len(snap.Books))
	return nil
}

func TestManagerConcurrentSavesWriteLatestState(t *testing.T) {
	store := &recordingStore{Store: NewTextStore(filepath.Join(t.TempDir(), "x.txt"))}
	mgr := NewLibraryManager(store)

	const n = 10
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = mgr.AddBook("Book", "Author")
			_ = mgr.Save()
		}()
	}
	wg.Wait()

	require.Len(t, store.saved, n)
	assert.Zero(t, store.overlaps)
	assert.Equal(t, n, store.saved[n-1], "last write must hold every book")
	assert.IsNonDecreasing(t, store.saved)
}

func TestManagerSQLitePersistsStudents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.db")
	mgr, err := OpenLibraryManager(StoreSQLite, path)
	require.NoError(t, err)
	_, err = mgr.AddBook("Dune", "Herbert")
	require.NoError(t, err)
	_, err = mgr.IssueBook(1, 42, &StudentDetails{Name: "Alice", Department: "CS"})
	require.NoError(t, err)
	require.NoError(t, mgr.Save())
	require.NoError(t, mgr.Close())

	mgr, err = OpenLibraryManager(StoreSQLite, path)
	require.NoError(t, err)
	defer mgr.Close()

	s, err := mgr.GetStudent(42)
	require.NoError(t, err)
	assert.Equal(t, 1, s.BooksIssued)

	_, err = mgr.ReturnBook(1, 42)
	require.NoError(t, err)
}

func TestManagerConcurrentIssueKeepsCountersConsistent(t *testing.T) {
	mgr, _ := newManager(t)
	const n = 20
	for i := 0; i < n; i++ {
		_, err := mgr.AddBook("Book", "Author")
		require.NoError(t, err)
	}
	require.NoError(t, mgr.AddStudent(Student{ID: 1, Name: "Alice", Department: "CS"}))

	var wg sync.WaitGroup
	for i := 1; i <= n; i++ {
		wg.Add(2)
		go func(id int) {
			defer wg.Done()
			_, _ = mgr.IssueBook(id, 1, nil)
		}(i)
		go func() {
			defer wg.Done()
			_ = mgr.Stats()
		}()
	}
	wg.Wait()

	s, err := mgr.GetStudent(1)
	require.NoError(t, err)
	st := mgr.Stats()
	assert.Equal(t, n, st.Issued)
	assert.Equal(t, st.Issued, s.BooksIssued)
}
