package library

import "fmt"

// IssueReceipt describes a successful issue.
type IssueReceipt struct {
	Book           Book    `json:"book"`
	Student        Student `json:"student"`
	StudentCreated bool    `json:"student_created"`
}

// ReturnReceipt describes a successful return.
type ReturnReceipt struct {
	Book    Book    `json:"book"`
	Student Student `json:"student"`
}

// CirculationService couples the registry and the directory: a book's
// availability and the issuing student's counter change together or not at
// all. It holds no state of its own and does no locking.
type CirculationService struct {
	books    *BookRegistry
	students *StudentDirectory
}

func NewCirculationService(books *BookRegistry, students *StudentDirectory) *CirculationService {
	return &CirculationService{books: books, students: students}
}

// Issue lends bookID to studentID. An unknown student is registered from
// details, starting with one issued book; without details the call fails
// with ErrStudentDetailsRequired. All checks run before anything is mutated.
func (c *CirculationService) Issue(bookID, studentID int, details *StudentDetails) (IssueReceipt, error) {
	student, err := c.students.Find(studentID)
	var created *Student
	if err != nil {
		if details == nil {
			return IssueReceipt{}, fmt.Errorf("%w: id %d", ErrStudentDetailsRequired, studentID)
		}
		created = &Student{ID: studentID, Name: details.Name, Department: details.Department, BooksIssued: 1}
		if err := validateRecord(*created); err != nil {
			return IssueReceipt{}, err
		}
	}

	book, err := c.books.Find(bookID)
	if err != nil {
		return IssueReceipt{}, err
	}
	if !book.Available {
		return IssueReceipt{}, fmt.Errorf("%w: id %d", ErrAlreadyIssued, bookID)
	}

	if created != nil {
		if err := c.students.Add(*created); err != nil {
			return IssueReceipt{}, err
		}
		student, _ = c.students.Find(studentID)
	} else {
		student.BooksIssued++
	}
	book.Available = false

	return IssueReceipt{Book: *book, Student: *student, StudentCreated: created != nil}, nil
}

// Return puts bookID back on the shelf and decrements studentID's counter,
// never below zero. The student is trusted to be the one who borrowed it.
func (c *CirculationService) Return(bookID, studentID int) (ReturnReceipt, error) {
	student, err := c.students.Find(studentID)
	if err != nil {
		return ReturnReceipt{}, err
	}
	book, err := c.books.Find(bookID)
	if err != nil {
		return ReturnReceipt{}, err
	}
	if book.Available {
		return ReturnReceipt{}, fmt.Errorf("%w: id %d", ErrNotIssued, bookID)
	}

	book.Available = true
	if student.BooksIssued > 0 {
		student.BooksIssued--
	}
	return ReturnReceipt{Book: *book, Student: *student}, nil
}
