package books

import (
	"net/http"

	"github.com/5w1tchy/book-records/internal/api/httpx"
	"github.com/5w1tchy/book-records/internal/models"
	"github.com/hashicorp/go-hclog"
)

// put applies a sparse update. Absent and null fields are left as stored;
// the response is the record as it is after the write.
func put(svc Service, log hclog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var patch models.BookUpdate
		if err := httpx.ReadJSON(w, r, &patch); err != nil {
			writeError(w, r, log, "update book", err)
			return
		}

		b, err := svc.Update(r.Context(), r.PathValue("id"), patch)
		if err != nil {
			writeError(w, r, log, "update book", err)
			return
		}
		httpx.WriteJSON(w, http.StatusAccepted, b)
	}
}
