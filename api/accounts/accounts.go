// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accounts

import (
	"math/big"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/veescrow/api/types"
	"github.com/vechain/veescrow/api/utils"
	"github.com/vechain/veescrow/builtin"
	"github.com/vechain/veescrow/runtime"
	"github.com/vechain/veescrow/thor"
	"github.com/vechain/veescrow/xenv"
)

type approver interface {
	Approve(env *xenv.Environment, spender thor.Address, amount *big.Int) error
}

type Accounts struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Accounts {
	return &Accounts{rt}
}

func (a *Accounts) handleGetAccount(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.AddressVar(req, "address")
	if err != nil {
		return err
	}
	return utils.View(w, a.rt, func(_ *xenv.Environment, c *builtin.Contracts) (any, error) {
		bal, err := c.Native.BalanceOf(addr)
		if err != nil {
			return nil, err
		}
		tokenBal, err := c.Token.BalanceOf(addr)
		if err != nil {
			return nil, err
		}
		return &Account{types.Amount(bal), types.Amount(tokenBal)}, nil
	})
}

func (a *Accounts) handleGetAllowance(w http.ResponseWriter, req *http.Request) error {
	owner, err := utils.AddressVar(req, "address")
	if err != nil {
		return err
	}
	spender, err := utils.AddressVar(req, "spender")
	if err != nil {
		return err
	}
	return utils.View(w, a.rt, func(_ *xenv.Environment, c *builtin.Contracts) (any, error) {
		amount, err := c.Token.Allowance(owner, spender)
		if err != nil {
			return nil, err
		}
		return &Allowance{types.Amount(amount)}, nil
	})
}

func (a *Accounts) handleGetToken(w http.ResponseWriter, _ *http.Request) error {
	return utils.View(w, a.rt, func(_ *xenv.Environment, c *builtin.Contracts) (any, error) {
		minter, err := c.Token.Minter()
		if err != nil {
			return nil, err
		}
		supply, err := c.Token.TotalSupply()
		if err != nil {
			return nil, err
		}
		return &Token{c.Token.Address(), minter, types.Amount(supply)}, nil
	})
}

func (a *Accounts) handleTransfer(w http.ResponseWriter, req *http.Request) error {
	var body TransferRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.To == nil {
		return utils.BadRequest(errors.New("body: to required"))
	}
	if body.Amount == nil {
		return utils.BadRequest(errors.New("body: amount required"))
	}
	var assetAddr thor.Address
	if body.Asset != nil {
		assetAddr = *body.Asset
	}
	return utils.Call(w, req, a.rt, func(env *xenv.Environment, c *builtin.Contracts) (any, error) {
		ast, ok := c.Asset(assetAddr)
		if !ok {
			return nil, utils.BadRequest(errors.Errorf("asset %v not found", &assetAddr))
		}
		return nil, ast.Transfer(env, *body.To, types.BigInt(body.Amount))
	})
}

func (a *Accounts) handleApprove(w http.ResponseWriter, req *http.Request) error {
	var body ApproveRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.Spender == nil {
		return utils.BadRequest(errors.New("body: spender required"))
	}
	if body.Amount == nil {
		return utils.BadRequest(errors.New("body: amount required"))
	}
	assetAddr := builtin.Token.Address
	if body.Asset != nil {
		assetAddr = *body.Asset
	}
	return utils.Call(w, req, a.rt, func(env *xenv.Environment, c *builtin.Contracts) (any, error) {
		ast, _ := c.Asset(assetAddr)
		ap, ok := ast.(approver)
		if !ok {
			return nil, utils.BadRequest(errors.Errorf("asset %v has no allowances", &assetAddr))
		}
		return nil, ap.Approve(env, *body.Spender, types.BigInt(body.Amount))
	})
}

func (a *Accounts) handleMint(w http.ResponseWriter, req *http.Request) error {
	var body MintRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.To == nil {
		return utils.BadRequest(errors.New("body: to required"))
	}
	if body.Amount == nil {
		return utils.BadRequest(errors.New("body: amount required"))
	}
	return utils.Call(w, req, a.rt, func(env *xenv.Environment, c *builtin.Contracts) (any, error) {
		return nil, c.Token.Mint(env, *body.To, types.BigInt(body.Amount))
	})
}

func (a *Accounts) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/token").
		Methods(http.MethodGet).
		Name("GET /accounts/token").
		HandlerFunc(utils.WrapHandlerFunc(a.handleGetToken))
	sub.Path("/transfer").
		Methods(http.MethodPost).
		Name("POST /accounts/transfer").
		HandlerFunc(utils.WrapHandlerFunc(a.handleTransfer))
	sub.Path("/approve").
		Methods(http.MethodPost).
		Name("POST /accounts/approve").
		HandlerFunc(utils.WrapHandlerFunc(a.handleApprove))
	sub.Path("/mint").
		Methods(http.MethodPost).
		Name("POST /accounts/mint").
		HandlerFunc(utils.WrapHandlerFunc(a.handleMint))
	sub.Path("/{address}").
		Methods(http.MethodGet).
		Name("GET /accounts/{address}").
		HandlerFunc(utils.WrapHandlerFunc(a.handleGetAccount))
	sub.Path("/{address}/allowance/{spender}").
		Methods(http.MethodGet).
		Name("GET /accounts/{address}/allowance/{spender}").
		HandlerFunc(utils.WrapHandlerFunc(a.handleGetAllowance))
}
