// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/vechain/veescrow/builtin/reverts"
)

func TestWrapHandlerFunc(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
		body     string
	}{
		{"ok", nil, http.StatusOK, ""},
		{"bad request", BadRequest(errors.New("bad")), http.StatusBadRequest, "bad\n"},
		{"forbidden", Forbidden(errors.New("nope")), http.StatusForbidden, "nope\n"},
		{"unauthorized", Unauthorized(errors.New("signature required")), http.StatusUnauthorized, "signature required\n"},
		{"wrapped status", pkgerrors.WithMessage(BadRequest(errors.New("amount")), "body"), http.StatusBadRequest, "amount\n"},
		{"internal", errors.New("boom"), http.StatusInternalServerError, "boom\n"},
		{"unauthorized revert", Reverted(reverts.New(reverts.Unauthorized, "admin only")), http.StatusForbidden, "admin only\n"},
		{"killed revert", Reverted(reverts.New(reverts.Killed, "killed")), http.StatusBadRequest, "killed\n"},
		{"wrapped revert", Reverted(pkgerrors.Wrap(reverts.New(reverts.NotYetUnlocked, "lock not expired"), "withdraw")), http.StatusBadRequest, "withdraw: lock not expired\n"},
		{"no revert", Reverted(errors.New("disk")), http.StatusInternalServerError, "disk\n"},
		{"status only", HTTPError(nil, http.StatusNotFound), http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WrapHandlerFunc(func(http.ResponseWriter, *http.Request) error {
				return tt.err
			})(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, tt.expected, rec.Code)
			assert.Equal(t, tt.body, rec.Body.String())
		})
	}
}

func TestParseJSON(t *testing.T) {
	var v struct {
		A int `json:"a"`
	}
	assert.NoError(t, ParseJSON(strings.NewReader(`{"a":1}`), &v))
	assert.Equal(t, 1, v.A)
	assert.Error(t, ParseJSON(strings.NewReader(`{"b":1}`), &v))
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	assert.NoError(t, WriteJSON(rec, map[string]int{"a": 1}))
	assert.Equal(t, JSONContentType, rec.Header().Get("Content-Type"))
	assert.Equal(t, "{\"a\":1}\n", rec.Body.String())
}
