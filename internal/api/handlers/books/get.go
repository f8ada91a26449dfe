package books

import (
	"net/http"

	"github.com/5w1tchy/book-records/internal/api/httpx"
	"github.com/hashicorp/go-hclog"
)

func get(svc Service, log hclog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := svc.FindByID(r.Context(), r.PathValue("id"))
		if err != nil {
			writeError(w, r, log, "find book", err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, b)
	}
}
