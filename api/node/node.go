// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vechain/veescrow/api/utils"
	"github.com/vechain/veescrow/runtime"
	"github.com/vechain/veescrow/thor"
)

// Info is the static description of a running node.
type Info struct {
	Version       string       `json:"version"`
	GenesisID     thor.Bytes32 `json:"genesisId"`
	BlockInterval uint64       `json:"blockInterval"`
}

type Status struct {
	*Info
	BestNumber    uint32 `json:"bestNumber"`
	PendingNumber uint32 `json:"pendingNumber"`
	PendingTime   uint64 `json:"pendingTime"`
}

type Node struct {
	rt   *runtime.Runtime
	info Info
}

func New(rt *runtime.Runtime, info Info) *Node {
	return &Node{
		rt,
		info,
	}
}

func (n *Node) handleNodeInfo(w http.ResponseWriter, _ *http.Request) error {
	pending := n.rt.Pending()
	return utils.WriteJSON(w, &Status{
		Info:          &n.info,
		BestNumber:    n.rt.Repo().BestHeader().Number,
		PendingNumber: pending.Number,
		PendingTime:   pending.Time,
	})
}

func (n *Node) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/info").
		Methods(http.MethodGet).
		Name("GET /node/info").
		HandlerFunc(utils.WrapHandlerFunc(n.handleNodeInfo))
}
