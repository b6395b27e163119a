// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/pkg/errors"

	"github.com/vechain/veescrow/builtin/reverts"
)

// JSONContentType is the content type of every api response body.
const JSONContentType = "application/json; charset=utf-8"

// httpError carries the status a handler error is answered with. A nil cause
// answers with the bare status.
type httpError struct {
	cause  error
	status int
}

func (e *httpError) Error() string {
	if e.cause == nil {
		return http.StatusText(e.status)
	}
	return e.cause.Error()
}

func (e *httpError) Unwrap() error { return e.cause }

// HTTPError answers cause with status.
func HTTPError(cause error, status int) error {
	return &httpError{cause, status}
}

// BadRequest answers cause with 400.
func BadRequest(cause error) error { return HTTPError(cause, http.StatusBadRequest) }

// Unauthorized answers cause with 401, the request could not be tied to a caller.
func Unauthorized(cause error) error { return HTTPError(cause, http.StatusUnauthorized) }

// Forbidden answers cause with 403, the caller may not do what it asked.
func Forbidden(cause error) error { return HTTPError(cause, http.StatusForbidden) }

// Reverted maps a rejected ledger call to its status: a privilege failure is
// 403 and any other revert 400. Errors that are not reverts pass through and
// end up as 500.
func Reverted(err error) error {
	var re *reverts.ErrRevert
	switch {
	case !errors.As(err, &re):
		return err
	case re.Kind() == reverts.Unauthorized:
		return Forbidden(err)
	default:
		return BadRequest(err)
	}
}

// HandlerFunc is an http handler that fails with an error instead of writing it.
type HandlerFunc func(http.ResponseWriter, *http.Request) error

// WrapHandlerFunc writes the error of f, if any, as a plain text response.
func WrapHandlerFunc(f HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := f(w, r)
		if err == nil {
			return
		}
		var he *httpError
		if !errors.As(err, &he) {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if he.cause == nil {
			w.WriteHeader(he.status)
			return
		}
		http.Error(w, he.cause.Error(), he.status)
	}
}

// ParseJSON decodes a request body, rejecting fields v does not declare.
func ParseJSON(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// WriteJSON answers with obj encoded as JSON.
func WriteJSON(w http.ResponseWriter, obj any) error {
	w.Header().Set("Content-Type", JSONContentType)
	return json.NewEncoder(w).Encode(obj)
}
