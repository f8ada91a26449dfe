package books

import (
	"errors"
	"net/http"

	"github.com/5w1tchy/book-records/internal/api/apperr"
	"github.com/5w1tchy/book-records/internal/api/httpx"
	"github.com/5w1tchy/book-records/internal/api/middlewares"
	"github.com/hashicorp/go-hclog"
)

// writeError maps err to a problem response. Server faults are logged; client
// errors are not.
func writeError(w http.ResponseWriter, r *http.Request, log hclog.Logger, op string, err error) {
	var de *httpx.DecodeError
	if errors.As(err, &de) {
		apperr.WriteStatus(w, r, de.Status, http.StatusText(de.Status), de.Msg)
		return
	}
	p := apperr.FromError(err)
	if p.Status >= http.StatusInternalServerError {
		middlewares.Logger(r, log).Error(op+" failed", "error", err)
	}
	apperr.Write(w, r, p)
}
