package library

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// EncodeBooks writes one "id,title,author,available" line per book.
func EncodeBooks(w io.Writer, books []Book) error {
	bw := bufio.NewWriter(w)
	for _, b := range books {
		avail := 0
		if b.Available {
			avail = 1
		}
		if _, err := fmt.Fprintf(bw, "%d,%s,%s,%d\n", b.ID, b.Title, b.Author, avail); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// DecodeBooks reads the format written by EncodeBooks. Blank lines are
// skipped. Decoding stops at the first line that does not parse; the books
// read before it are returned along with a *ParseError.
func DecodeBooks(r io.Reader) ([]Book, error) {
	var books []Book
	err := scanRecords(r, func(line string) error {
		b, err := decodeBook(line)
		if err != nil {
			return err
		}
		books = append(books, b)
		return nil
	})
	return books, err
}

// EncodeStudents writes one "id,name,department,books_issued" line per
// student.
func EncodeStudents(w io.Writer, students []Student) error {
	bw := bufio.NewWriter(w)
	for _, s := range students {
		if _, err := fmt.Fprintf(bw, "%d,%s,%s,%d\n", s.ID, s.Name, s.Department, s.BooksIssued); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// DecodeStudents reads the format written by EncodeStudents, with the same
// stop-at-first-bad-line behaviour as DecodeBooks.
func DecodeStudents(r io.Reader) ([]Student, error) {
	var students []Student
	err := scanRecords(r, func(line string) error {
		s, err := decodeStudent(line)
		if err != nil {
			return err
		}
		students = append(students, s)
		return nil
	})
	return students, err
}

// scanRecords feeds each non-blank line to fn. A line rejected by fn, or one
// too long for the scanner buffer, ends the scan with a *ParseError.
func scanRecords(r io.Reader, fn func(line string) error) error {
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if err := fn(line); err != nil {
			return &ParseError{Line: lineNo, Text: line, Err: err}
		}
	}
	err := sc.Err()
	if errors.Is(err, bufio.ErrTooLong) {
		return &ParseError{Line: lineNo + 1, Err: fmt.Errorf("%w: %v", ErrMalformedRecord, err)}
	}
	return err
}

func decodeBook(line string) (Book, error) {
	fields := strings.SplitN(line, ",", 4)
	if len(fields) != 4 {
		return Book{}, fmt.Errorf("%w: want 4 fields, got %d", ErrMalformedRecord, len(fields))
	}
	id, err := strconv.Atoi(fields[0])
	if err != nil || id <= 0 {
		return Book{}, fmt.Errorf("%w: bad id %q", ErrMalformedRecord, fields[0])
	}
	var avail bool
	switch fields[3] {
	case "1":
		avail = true
	case "0":
		avail = false
	default:
		return Book{}, fmt.Errorf("%w: bad availability %q", ErrMalformedRecord, fields[3])
	}
	b := Book{ID: id, Title: fields[1], Author: fields[2], Available: avail}
	if err := validateRecord(b); err != nil {
		return Book{}, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	return b, nil
}

func decodeStudent(line string) (Student, error) {
	fields := strings.Split(line, ",")
	if len(fields) != 4 {
		return Student{}, fmt.Errorf("%w: want 4 fields, got %d", ErrMalformedRecord, len(fields))
	}
	id, err := strconv.Atoi(fields[0])
	if err != nil {
		return Student{}, fmt.Errorf("%w: bad id %q", ErrMalformedRecord, fields[0])
	}
	issued, err := strconv.Atoi(fields[3])
	if err != nil {
		return Student{}, fmt.Errorf("%w: bad books issued %q", ErrMalformedRecord, fields[3])
	}
	s := Student{ID: id, Name: fields[1], Department: fields[2], BooksIssued: issued}
	if err := validateRecord(s); err != nil {
		return Student{}, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	return s, nil
}
