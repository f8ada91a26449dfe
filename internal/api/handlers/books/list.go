package books

import (
	"net/http"

	"github.com/5w1tchy/book-records/internal/api/httpx"
	"github.com/hashicorp/go-hclog"
)

func list(svc Service, log hclog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		books, err := svc.List(r.Context())
		if err != nil {
			writeError(w, r, log, "list books", err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, books)
	}
}
