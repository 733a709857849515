package library

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Field length limits. Longer values are rejected, never truncated.
const (
	MaxTitleLen      = 99
	MaxAuthorLen     = 49
	MaxNameLen       = 49
	MaxDepartmentLen = 49
)

// Book represents a catalog entry and whether it is currently on the shelf.
// Title and Author may not contain commas since they are stored in a
// comma-separated file.
type Book struct {
	ID        int    `json:"id" validate:"gt=0"`
	Title     string `json:"title" validate:"required,max=99,excludesall=0x2C,singleline"`
	Author    string `json:"author" validate:"required,max=49,excludesall=0x2C,singleline"`
	Available bool   `json:"available"`
}

// Student represents a borrower. BooksIssued is a plain counter; the catalog
// does not remember which books a student holds. Any non-negative id is
// accepted, including 0.
type Student struct {
	ID          int    `json:"id" validate:"gte=0"`
	Name        string `json:"name" validate:"required,max=49,excludesall=0x2C,singleline"`
	Department  string `json:"department" validate:"required,max=49,excludesall=0x2C,singleline"`
	BooksIssued int    `json:"books_issued" validate:"gte=0"`
}

// StudentDetails is what a caller supplies to register a student on their
// first issue.
type StudentDetails struct {
	Name       string `json:"name"`
	Department string `json:"department"`
}

// Stats summarises the catalog.
type Stats struct {
	Books     int `json:"books"`
	Available int `json:"available"`
	Issued    int `json:"issued"`
	Students  int `json:"students"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("singleline", func(fl validator.FieldLevel) bool {
		return !strings.ContainsAny(fl.Field().String(), "\r\n")
	})
	// Report json names ("title") rather than Go field names ("Title").
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateRecord checks rec against its struct tags and turns validator
// output into an ErrInvalidField error.
func validateRecord(rec any) error {
	err := validate.Struct(rec)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidField, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describeFieldError(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalidField, strings.Join(msgs, "; "))
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		return fmt.Sprintf("%s exceeds %s characters", fe.Field(), fe.Param())
	case "excludesall":
		return fmt.Sprintf("%s must not contain a comma", fe.Field())
	case "singleline":
		return fmt.Sprintf("%s must be a single line", fe.Field())
	case "gt":
		return fmt.Sprintf("%s must be positive", fe.Field())
	case "gte":
		return fmt.Sprintf("%s must not be negative", fe.Field())
	default:
		return fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag())
	}
}
