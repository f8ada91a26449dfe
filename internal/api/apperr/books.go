package apperr

import (
	"errors"
	"net/http"
	"sort"

	"github.com/5w1tchy/book-records/internal/repo/booksrepo"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// FromError maps a book service error to a Problem. Anything it does not
// recognise is a 500 with no detail.
func FromError(err error) Problem {
	var ve *booksrepo.ValidationError
	switch {
	case errors.Is(err, booksrepo.ErrDuplicateKey):
		return Problem{Status: http.StatusBadRequest, Title: "Bad Request", Detail: "Duplicate key error - book already exists"}
	case errors.Is(err, booksrepo.ErrNotFound):
		return Problem{Status: http.StatusNotFound, Title: "Not Found", Detail: err.Error()}
	case errors.As(err, &ve):
		return Validation(ve.Fields)
	case errors.Is(err, booksrepo.ErrInvalid):
		return Problem{Status: http.StatusUnprocessableEntity, Title: "Unprocessable Entity", Detail: err.Error()}
	default:
		return Problem{Status: http.StatusInternalServerError, Title: "Internal Server Error"}
	}
}

// Validation turns ozzo field errors into a 422 Problem, fields sorted by name.
func Validation(errs validation.Errors) Problem {
	p := Problem{Status: http.StatusUnprocessableEntity, Title: "Unprocessable Entity", Detail: "validation failed"}
	for field, err := range errs {
		if err == nil {
			continue
		}
		code := "invalid"
		var ve validation.Error
		if errors.As(err, &ve) {
			code = ve.Code()
		}
		p.FieldErrors = append(p.FieldErrors, FieldError{Field: field, Code: code, Message: err.Error()})
	}
	sort.Slice(p.FieldErrors, func(i, j int) bool { return p.FieldErrors[i].Field < p.FieldErrors[j].Field })
	return p
}
