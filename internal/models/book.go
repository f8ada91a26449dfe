package models

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"golang.org/x/text/unicode/norm"
)

// Stored field names. They double as JSON and BSON keys.
const (
	FieldID       = "id"
	FieldTitle    = "title"
	FieldAuthor   = "author"
	FieldSynopsis = "synopsis"
)

const (
	maxIDLen     = 128
	maxTitleLen  = 300
	maxAuthorLen = 200
)

type Book struct {
	ID       string `json:"id" bson:"_id"`
	Title    string `json:"title" bson:"title"`
	Author   string `json:"author" bson:"author"`
	Synopsis string `json:"synopsis" bson:"synopsis"`
}

// Fields is the set of stored values a partial update writes.
type Fields map[string]string

// BookUpdate is a sparse patch. Absent and null fields are never written.
type BookUpdate struct {
	Title    Optional[string] `json:"title,omitzero"`
	Author   Optional[string] `json:"author,omitzero"`
	Synopsis Optional[string] `json:"synopsis,omitzero"`
}

// Normalize trims surrounding whitespace and converts text to NFC.
func (b *Book) Normalize() {
	b.ID = strings.TrimSpace(b.ID)
	b.Title = normalizeText(b.Title)
	b.Author = normalizeText(b.Author)
	b.Synopsis = normalizeText(b.Synopsis)
}

func (b Book) Validate() error {
	return validation.ValidateStruct(&b,
		validation.Field(&b.ID, validation.Required, validation.RuneLength(1, maxIDLen), validation.By(noSlash)),
		validation.Field(&b.Title, validation.Required, validation.RuneLength(1, maxTitleLen)),
		validation.Field(&b.Author, validation.Required, validation.RuneLength(1, maxAuthorLen)),
	)
}

// Merge returns a copy of b with the given fields overwritten.
func (b Book) Merge(f Fields) Book {
	for k, v := range f {
		switch k {
		case FieldTitle:
			b.Title = v
		case FieldAuthor:
			b.Author = v
		case FieldSynopsis:
			b.Synopsis = v
		}
	}
	return b
}

func (u *BookUpdate) Normalize() {
	u.Title = u.Title.Map(normalizeText)
	u.Author = u.Author.Map(normalizeText)
	u.Synopsis = u.Synopsis.Map(normalizeText)
}

// Validate rejects set fields that would leave a required value empty.
func (u BookUpdate) Validate() error {
	errs := validation.Errors{}
	if v, ok := u.Title.Get(); ok {
		errs[FieldTitle] = validation.Validate(v, validation.Required, validation.RuneLength(1, maxTitleLen))
	}
	if v, ok := u.Author.Get(); ok {
		errs[FieldAuthor] = validation.Validate(v, validation.Required, validation.RuneLength(1, maxAuthorLen))
	}
	return errs.Filter()
}

// Fields collects the values the patch actually sets.
func (u BookUpdate) Fields() Fields {
	f := Fields{}
	if v, ok := u.Title.Get(); ok {
		f[FieldTitle] = v
	}
	if v, ok := u.Author.Get(); ok {
		f[FieldAuthor] = v
	}
	if v, ok := u.Synopsis.Get(); ok {
		f[FieldSynopsis] = v
	}
	return f
}

func normalizeText(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

func noSlash(v any) error {
	s, _ := v.(string)
	if strings.ContainsAny(s, "/?#") {
		return validation.NewError("validation_id_path", "must not contain '/', '?' or '#'")
	}
	return nil
}
