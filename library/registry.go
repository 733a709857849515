package library

import (
	"fmt"
	"slices"
)

// BookRegistry owns the book records, keyed by id. It is not safe for
// concurrent use; LibraryManager serialises access.
type BookRegistry struct {
	books map[int]*Book
	maxID int
}

// NewBookRegistry returns an empty registry.
func NewBookRegistry() *BookRegistry {
	return &BookRegistry{books: make(map[int]*Book)}
}

// Len returns the number of books currently held.
func (r *BookRegistry) Len() int { return len(r.books) }

// nextID is count+1, pushed past the highest id still in use so that an id
// freed by Remove is never handed out while a later one is alive.
func (r *BookRegistry) nextID() int {
	id := len(r.books) + 1
	if id <= r.maxID {
		id = r.maxID + 1
	}
	return id
}

// Add creates an available book and returns a copy of it.
func (r *BookRegistry) Add(title, author string) (Book, error) {
	b := Book{ID: r.nextID(), Title: title, Author: author, Available: true}
	if err := validateRecord(b); err != nil {
		return Book{}, err
	}
	r.insert(b)
	return b, nil
}

func (r *BookRegistry) insert(b Book) {
	r.books[b.ID] = &b
	if b.ID > r.maxID {
		r.maxID = b.ID
	}
}

// Remove deletes the book with the given id.
func (r *BookRegistry) Remove(id int) error {
	if _, ok := r.books[id]; !ok {
		return fmt.Errorf("%w: id %d", ErrBookNotFound, id)
	}
	delete(r.books, id)
	return nil
}

// Find returns the live record for id. The pointer must not escape the
// manager's lock.
func (r *BookRegistry) Find(id int) (*Book, error) {
	b, ok := r.books[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrBookNotFound, id)
	}
	return b, nil
}

// SetAvailability flips the on-shelf flag of a book.
func (r *BookRegistry) SetAvailability(id int, available bool) error {
	b, err := r.Find(id)
	if err != nil {
		return err
	}
	b.Available = available
	return nil
}

// Available lists the books on the shelf in ascending id order.
func (r *BookRegistry) Available() []Book {
	return r.filter(func(b *Book) bool { return b.Available })
}

// Issued lists the books currently out, in ascending id order.
func (r *BookRegistry) Issued() []Book {
	return r.filter(func(b *Book) bool { return !b.Available })
}

// Books returns a copy of every record in ascending id order.
func (r *BookRegistry) Books() []Book {
	return r.filter(func(*Book) bool { return true })
}

func (r *BookRegistry) filter(keep func(*Book) bool) []Book {
	out := make([]Book, 0, len(r.books))
	for _, b := range r.books {
		if keep(b) {
			out = append(out, *b)
		}
	}
	slices.SortFunc(out, func(a, b Book) int { return a.ID - b.ID })
	return out
}

// Replace swaps the registry contents for books. Nothing changes if any
// record is invalid or an id repeats.
func (r *BookRegistry) Replace(books []Book) error {
	next := make(map[int]*Book, len(books))
	maxID := 0
	for i := range books {
		b := books[i]
		if err := validateRecord(b); err != nil {
			return fmt.Errorf("book %d: %w", b.ID, err)
		}
		if _, dup := next[b.ID]; dup {
			return fmt.Errorf("%w: %d", ErrDuplicateBook, b.ID)
		}
		next[b.ID] = &b
		maxID = max(maxID, b.ID)
	}
	r.books = next
	r.maxID = maxID
	return nil
}
