package books

import (
	"context"
	"net/http"

	"github.com/5w1tchy/book-records/internal/models"
	"github.com/hashicorp/go-hclog"
)

// Service is the book record service the handlers call.
type Service interface {
	Create(ctx context.Context, b models.Book) (models.Book, error)
	List(ctx context.Context) ([]models.Book, error)
	FindByID(ctx context.Context, id string) (models.Book, error)
	Update(ctx context.Context, id string, patch models.BookUpdate) (models.Book, error)
	Delete(ctx context.Context, id string) error
}

// Register mounts the book routes under prefix, e.g. "/book".
func Register(mux *http.ServeMux, prefix string, svc Service, log hclog.Logger) {
	mux.HandleFunc("GET "+prefix, func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, prefix+"/", http.StatusMovedPermanently)
	})
	mux.HandleFunc("POST "+prefix, func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, prefix+"/", http.StatusPermanentRedirect)
	})

	mux.Handle("POST "+prefix+"/{$}", create(svc, log))
	mux.Handle("GET "+prefix+"/{$}", list(svc, log))
	mux.Handle("GET "+prefix+"/{id}", get(svc, log))
	mux.Handle("PUT "+prefix+"/{id}", put(svc, log))
	mux.Handle("DELETE "+prefix+"/{id}", del(svc, log))
}
