// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package apitest drives an api router over http in tests.
package apitest

import (
	"bytes"
	"crypto/ecdsa"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"github.com/vechain/veescrow/api/utils"
	"github.com/vechain/veescrow/genesis"
	"github.com/vechain/veescrow/thor"
)

var nonce atomic.Uint64

// Server serves a router for the duration of a test.
type Server struct {
	*httptest.Server
}

// NewServer starts a server for router, closed when t completes. Signed
// requests are authenticated as the api does.
func NewServer(t *testing.T, router *mux.Router) *Server {
	router.Use(utils.NewAuthenticator(nil).Middleware)
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return &Server{ts}
}

func (s *Server) do(t *testing.T, req *http.Request) ([]byte, int) {
	res, err := s.Client().Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return body, res.StatusCode
}

// Get requests path and returns the response body and status code.
func (s *Server) Get(t *testing.T, path string) ([]byte, int) {
	req, err := http.NewRequest(http.MethodGet, s.URL+path, nil)
	require.NoError(t, err)
	return s.do(t, req)
}

// Post sends body as json signed by caller, which must be a dev account.
// A []byte body is sent as is. A zero caller sends an unsigned request.
func (s *Server) Post(t *testing.T, path string, caller thor.Address, body any) ([]byte, int) {
	if caller.IsZero() {
		return s.do(t, s.newPost(t, path, body))
	}
	return s.PostSigned(t, path, devKey(t, caller), caller, body)
}

// PostSigned sends body signed by key, claiming to be caller in the
// x-caller header unless caller is zero.
func (s *Server) PostSigned(t *testing.T, path string, key *ecdsa.PrivateKey, caller thor.Address, body any) ([]byte, int) {
	req := s.newPost(t, path, body)
	if !caller.IsZero() {
		req.Header.Set(utils.CallerHeader, caller.String())
	}
	expiry := uint64(time.Now().Add(time.Minute).Unix())
	require.NoError(t, utils.SignRequest(req, key, expiry, nonce.Add(1)))
	return s.do(t, req)
}

func (s *Server) newPost(t *testing.T, path string, body any) *http.Request {
	var data []byte
	switch body := body.(type) {
	case nil:
	case []byte:
		data = body
	default:
		var err error
		data, err = json.Marshal(body)
		require.NoError(t, err)
	}
	req, err := http.NewRequest(http.MethodPost, s.URL+path, bytes.NewReader(data))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func devKey(t *testing.T, addr thor.Address) *ecdsa.PrivateKey {
	for _, acc := range genesis.DevAccounts() {
		if acc.Address == addr {
			return acc.PrivateKey
		}
	}
	t.Fatalf("no dev key for %v", addr)
	return nil
}

// GetJSON requests path, requires a 200 response and decodes it into v.
func (s *Server) GetJSON(t *testing.T, path string, v any) {
	body, status := s.Get(t, path)
	require.Equal(t, http.StatusOK, status, string(body))
	require.NoError(t, json.Unmarshal(body, v))
}

// PostJSON posts body, requires a 200 response and decodes it into v, which
// may be nil.
func (s *Server) PostJSON(t *testing.T, path string, caller thor.Address, body, v any) {
	res, status := s.Post(t, path, caller, body)
	require.Equal(t, http.StatusOK, status, string(res))
	if v != nil {
		require.NoError(t, json.Unmarshal(res, v))
	}
}
