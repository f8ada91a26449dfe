package httpx

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// MaxJSONBody caps a single JSON request body.
const MaxJSONBody = 1 << 20

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// DecodeError is a request body the server refuses. Status is 400 or 413.
type DecodeError struct {
	Status int
	Msg    string
}

func (e *DecodeError) Error() string { return e.Msg }

// ReadJSON decodes exactly one JSON object from the body into dst, rejecting
// unknown fields and bodies over MaxJSONBody.
func ReadJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxJSONBody)
	dec := json.NewDecoder(r.Body)

	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return decodeError(err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return &DecodeError{Status: http.StatusBadRequest, Msg: "body must only contain a single JSON value"}
	}
	if raw = bytes.TrimSpace(raw); len(raw) == 0 || raw[0] != '{' {
		return &DecodeError{Status: http.StatusBadRequest, Msg: "body must be a JSON object"}
	}

	obj := json.NewDecoder(bytes.NewReader(raw))
	obj.DisallowUnknownFields()
	if err := obj.Decode(dst); err != nil {
		return decodeError(err)
	}
	return nil
}

func decodeError(err error) error {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		return &DecodeError{Status: http.StatusRequestEntityTooLarge, Msg: fmt.Sprintf("body must not be larger than %d bytes", maxErr.Limit)}
	case errors.As(err, &syntaxErr):
		return &DecodeError{Status: http.StatusBadRequest, Msg: fmt.Sprintf("body contains badly-formed JSON (at character %d)", syntaxErr.Offset)}
	case errors.Is(err, io.ErrUnexpectedEOF):
		return &DecodeError{Status: http.StatusBadRequest, Msg: "body contains badly-formed JSON"}
	case errors.As(err, &typeErr):
		if typeErr.Field != "" {
			return &DecodeError{Status: http.StatusBadRequest, Msg: fmt.Sprintf("body contains incorrect JSON type for field %q", typeErr.Field)}
		}
		return &DecodeError{Status: http.StatusBadRequest, Msg: "body contains incorrect JSON type"}
	case errors.Is(err, io.EOF):
		return &DecodeError{Status: http.StatusBadRequest, Msg: "body must not be empty"}
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		field := strings.TrimPrefix(err.Error(), "json: unknown field ")
		return &DecodeError{Status: http.StatusBadRequest, Msg: "body contains unknown key " + field}
	default:
		return &DecodeError{Status: http.StatusBadRequest, Msg: "invalid JSON"}
	}
}
