package router

import (
	"net/http"

	"github.com/5w1tchy/book-records/internal/api/docs"
	"github.com/5w1tchy/book-records/internal/api/handlers"
	"github.com/5w1tchy/book-records/internal/api/handlers/books"
	"github.com/hashicorp/go-hclog"
)

// Deps are what the routes need from the rest of the process.
type Deps struct {
	Books books.Service
	Ping  handlers.Pinger
	Docs  docs.Document
	Log   hclog.Logger
}

func Router(d Deps) http.Handler {
	mux := http.NewServeMux()

	// Root
	mux.HandleFunc("GET /{$}", handlers.RootHandler)

	mux.Handle("GET /docs", docs.Handler(d.Docs))
	mux.Handle("GET /healthz", handlers.Health(d.Ping, d.Log.Named("health")))

	// Books (method-specific + 1.22 patterns)
	books.Register(mux, "/book", d.Books, d.Log.Named("books"))

	return mux
}
