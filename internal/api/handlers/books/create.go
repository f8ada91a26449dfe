package books

import (
	"net/http"
	"net/url"

	"github.com/5w1tchy/book-records/internal/api/apperr"
	"github.com/5w1tchy/book-records/internal/api/httpx"
	"github.com/5w1tchy/book-records/internal/models"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/hashicorp/go-hclog"
)

// createReq keeps pointers so a missing field is told apart from an empty one.
type createReq struct {
	ID       string  `json:"id,omitempty"`
	Title    *string `json:"title"`
	Author   *string `json:"author"`
	Synopsis *string `json:"synopsis"`
}

func (c createReq) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Title, validation.Required),
		validation.Field(&c.Author, validation.Required),
		validation.Field(&c.Synopsis, validation.NotNil),
	)
}

func create(svc Service, log hclog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createReq
		if err := httpx.ReadJSON(w, r, &req); err != nil {
			writeError(w, r, log, "create book", err)
			return
		}
		if err := req.Validate(); err != nil {
			if ve, ok := err.(validation.Errors); ok {
				apperr.Write(w, r, apperr.Validation(ve))
				return
			}
			writeError(w, r, log, "create book", err)
			return
		}

		b, err := svc.Create(r.Context(), models.Book{
			ID:       req.ID,
			Title:    *req.Title,
			Author:   *req.Author,
			Synopsis: *req.Synopsis,
		})
		if err != nil {
			writeError(w, r, log, "create book", err)
			return
		}

		w.Header().Set("Location", r.URL.Path+url.PathEscape(b.ID))
		httpx.WriteJSON(w, http.StatusCreated, b)
	}
}
