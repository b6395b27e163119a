// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"net/http/httptest"

	"github.com/vechain/veescrow/api/node"
	"github.com/vechain/veescrow/test/testchain"
)

func newHTTPServer(h http.HandlerFunc) *httptest.Server {
	return httptest.NewServer(h)
}

func nodeInfo(tc *testchain.Chain) node.Info {
	return node.Info{Version: "test", GenesisID: tc.Repo().GenesisHeader().ID(), BlockInterval: 10}
}
