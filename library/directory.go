package library

import (
	"fmt"
	"slices"
)

// StudentDirectory holds students keyed by id. Adding an id that already
// exists replaces the earlier record, so Find always sees the latest one.
type StudentDirectory struct {
	students map[int]*Student
}

func NewStudentDirectory() *StudentDirectory {
	return &StudentDirectory{students: make(map[int]*Student)}
}

func (d *StudentDirectory) Len() int { return len(d.students) }

// Add validates s and stores it, replacing any student with the same id.
func (d *StudentDirectory) Add(s Student) error {
	if err := validateRecord(s); err != nil {
		return err
	}
	d.students[s.ID] = &s
	return nil
}

// Find returns the live record for id.
func (d *StudentDirectory) Find(id int) (*Student, error) {
	s, ok := d.students[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrStudentNotFound, id)
	}
	return s, nil
}

// Students returns a copy of every record in ascending id order.
func (d *StudentDirectory) Students() []Student {
	out := make([]Student, 0, len(d.students))
	for _, s := range d.students {
		out = append(out, *s)
	}
	slices.SortFunc(out, func(a, b Student) int { return a.ID - b.ID })
	return out
}

// Replace swaps the directory contents for students. Later duplicates win,
// matching Add.
func (d *StudentDirectory) Replace(students []Student) error {
	next := make(map[int]*Student, len(students))
	for i := range students {
		s := students[i]
		if err := validateRecord(s); err != nil {
			return fmt.Errorf("student %d: %w", s.ID, err)
		}
		next[s.ID] = &s
	}
	d.students = next
	return nil
}
