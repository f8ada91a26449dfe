package books

import (
	"net/http"

	"github.com/hashicorp/go-hclog"
)

func del(svc Service, log hclog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), r.PathValue("id")); err != nil {
			writeError(w, r, log, "delete book", err)
			return
		}
		// No response body on successful delete.
		w.WriteHeader(http.StatusNoContent)
	}
}
