// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package blocks

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/veescrow/api/types"
	"github.com/vechain/veescrow/api/utils"
	"github.com/vechain/veescrow/chain"
)

type Blocks struct {
	repo *chain.Repository
}

func New(repo *chain.Repository) *Blocks {
	return &Blocks{repo}
}

func (b *Blocks) handleGetBlock(w http.ResponseWriter, req *http.Request) error {
	revision, err := utils.ParseRevision(mux.Vars(req)["revision"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "revision"))
	}
	header, err := utils.GetHeader(revision, b.repo)
	if err != nil {
		if b.repo.IsNotFound(err) {
			return utils.WriteJSON(w, nil)
		}
		return err
	}
	return utils.WriteJSON(w, types.ConvertBlock(header, b.repo.BestHeader()))
}

// handleGetBlockAt returns the latest block sealed not after the time query.
func (b *Blocks) handleGetBlockAt(w http.ResponseWriter, req *http.Request) error {
	if !req.URL.Query().Has("time") {
		return utils.BadRequest(errors.New("time: query required"))
	}
	ts, err := utils.Uint64Query(req, "time", 0)
	if err != nil {
		return err
	}
	header, err := b.repo.NearestByTime(ts)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, types.ConvertBlock(header, b.repo.BestHeader()))
}

func (b *Blocks) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()
	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /blocks").
		HandlerFunc(utils.WrapHandlerFunc(b.handleGetBlockAt))
	sub.Path("/{revision}").
		Methods(http.MethodGet).
		Name("GET /blocks/{revision}").
		HandlerFunc(utils.WrapHandlerFunc(b.handleGetBlock))
}
