package router

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/shandysiswandi/cybershield/internal/pkg/goerror"
)

// MaxBodyBytes caps JSON request bodies.
const MaxBodyBytes int64 = 1 << 20

// Request wraps http.Request with helpers for inbound handlers.
type Request struct {
	*http.Request
}

// GetParam reads a path parameter stored by httprouter.
func (r *Request) GetParam(key string) string {
	return httprouter.ParamsFromContext(r.Context()).ByName(key)
}

// DecodeBody decodes a single JSON object into dst. Unknown fields, trailing
// data and bodies over MaxBodyBytes are rejected as invalid format.
func (r *Request) DecodeBody(dst any) error {
	if r == nil || r.Body == nil || r.Body == http.NoBody {
		return goerror.NewInvalidFormat()
	}

	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return goerror.NewInvalidFormat()
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return goerror.NewInvalidFormat()
	}

	return nil
}
