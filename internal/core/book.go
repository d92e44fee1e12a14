package core

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Spreadsheet column names read by the row mapper. Matching is case-insensitive.
const (
	ColumnTitle       = "Title"
	ColumnAuthors     = "Authors"
	ColumnDescription = "Description"
	ColumnCategory    = "Category"
	ColumnPublisher   = "Publisher"
	ColumnPrice       = "Price"
)

// DefaultText is stored for optional text columns that are absent from a row.
const DefaultText = " "

// Book is one imported spreadsheet row, persisted as a single document.
type Book struct {
	Title       string   `json:"title" bson:"title" validate:"required"`
	Authors     []string `json:"authors" bson:"authors" validate:"required"`
	Description string   `json:"description" bson:"description"`
	Category    string   `json:"category" bson:"category"`
	Publisher   string   `json:"publisher" bson:"publisher"`
	Price       float64  `json:"price" bson:"price" validate:"min=0"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the book against its schema: a title, a non-nil author
// list and a non-negative price.
func (b Book) Validate() error {
	if err := validate.Struct(b); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return ValidationError{Field: fe.Field(), Value: fmt.Sprint(fe.Value()), Message: describeTag(fe.Tag(), fe.Param())}
		}
		return err
	}
	return nil
}

// ValidationError describes the first schema violation of a book.
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// RowError ties a validation failure to its spreadsheet row. Line is the
// 1-based position among data rows.
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Line, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// ValidateBooks validates every book and returns the first failure.
func ValidateBooks(books []Book) error {
	for i, b := range books {
		if err := b.Validate(); err != nil {
			return &RowError{Line: i + 1, Err: err}
		}
	}
	return nil
}

func describeTag(tag, param string) string {
	switch tag {
	case "required":
		return "required field is empty"
	case "min":
		return "must be at least " + param
	default:
		return "failed " + tag + " check"
	}
}
