// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/veescrow/api/types"
	"github.com/vechain/veescrow/builtin"
	"github.com/vechain/veescrow/runtime"
	"github.com/vechain/veescrow/thor"
	"github.com/vechain/veescrow/xenv"
)

// CallFunc is a call into the builtin contracts. Its result, if any, goes
// into the response body.
type CallFunc func(env *xenv.Environment, c *builtin.Contracts) (any, error)

// Call executes fn in the pending block on behalf of the verified signer of
// req, and responds with the receipt.
func Call(w http.ResponseWriter, req *http.Request, rt *runtime.Runtime, fn CallFunc) error {
	caller, err := Caller(req)
	if err != nil {
		return err
	}
	var result any
	out, err := rt.Exec(caller, func(env *xenv.Environment, c *builtin.Contracts) (err error) {
		result, err = fn(env, c)
		return
	})
	if err != nil {
		return Reverted(err)
	}
	return WriteJSON(w, types.ConvertReceipt(out, result))
}

// View runs fn against the pending state, keeping none of its changes, and
// responds with its result.
func View(w http.ResponseWriter, rt *runtime.Runtime, fn CallFunc) error {
	var result any
	err := rt.View(thor.Address{}, func(env *xenv.Environment, c *builtin.Contracts) (err error) {
		result, err = fn(env, c)
		return
	})
	if err != nil {
		return Reverted(err)
	}
	return WriteJSON(w, result)
}

// AddressVar parses the path variable name as an address.
func AddressVar(req *http.Request, name string) (thor.Address, error) {
	addr, err := thor.ParseAddress(mux.Vars(req)[name])
	if err != nil {
		return thor.Address{}, BadRequest(errors.WithMessage(err, name))
	}
	return addr, nil
}

// Uint64Var parses the path variable name as an unsigned integer.
func Uint64Var(req *http.Request, name string) (uint64, error) {
	n, err := strconv.ParseUint(mux.Vars(req)[name], 0, 64)
	if err != nil {
		return 0, BadRequest(errors.WithMessage(err, name))
	}
	return n, nil
}

// Uint64Query parses the query parameter name as an unsigned integer, def
// being used when it is absent.
func Uint64Query(req *http.Request, name string, def uint64) (uint64, error) {
	v := req.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseUint(v, 0, 64)
	if err != nil {
		return 0, BadRequest(errors.WithMessage(err, name))
	}
	return n, nil
}
