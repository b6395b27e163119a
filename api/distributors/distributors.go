// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package distributors

import (
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/veescrow/api/types"
	"github.com/vechain/veescrow/api/utils"
	"github.com/vechain/veescrow/builtin"
	"github.com/vechain/veescrow/builtin/distributor"
	"github.com/vechain/veescrow/runtime"
	"github.com/vechain/veescrow/thor"
	"github.com/vechain/veescrow/xenv"
)

type Distributors struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Distributors {
	return &Distributors{rt}
}

// distributorFunc is a call into the distributor named in the request path.
type distributorFunc func(env *xenv.Environment, c *builtin.Contracts, d *distributor.Distributor) (any, error)

func bind(req *http.Request, fn distributorFunc) (utils.CallFunc, error) {
	name := mux.Vars(req)["name"]
	if name != builtin.FeeName && name != builtin.PenaltyName {
		return nil, utils.HTTPError(errors.Errorf("distributor %q not found", name), http.StatusNotFound)
	}
	return func(env *xenv.Environment, c *builtin.Contracts) (any, error) {
		d, _ := c.Distributor(name)
		return fn(env, c, d)
	}, nil
}

func (d *Distributors) view(w http.ResponseWriter, req *http.Request, fn distributorFunc) error {
	call, err := bind(req, fn)
	if err != nil {
		return err
	}
	return utils.View(w, d.rt, call)
}

func (d *Distributors) call(w http.ResponseWriter, req *http.Request, fn distributorFunc) error {
	call, err := bind(req, fn)
	if err != nil {
		return err
	}
	return utils.Call(w, req, d.rt, call)
}

// parseBody decodes the json body into v. An empty body leaves v untouched.
func parseBody(req *http.Request, v any) error {
	if err := utils.ParseJSON(req.Body, v); err != nil && err != io.EOF {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	return nil
}

func (d *Distributors) handleGetState(w http.ResponseWriter, req *http.Request) error {
	return d.view(w, req, func(_ *xenv.Environment, _ *builtin.Contracts, dist *distributor.Distributor) (any, error) {
		s := &State{
			Name:    dist.Name(),
			Address: dist.Address(),
			Reward:  dist.Reward().Address(),
			Relock:  dist.Relock(),
		}
		var err error
		if s.Admin, err = dist.Admin(); err != nil {
			return nil, err
		}
		if s.FutureAdmin, err = dist.FutureAdmin(); err != nil {
			return nil, err
		}
		if s.EmergencyReturn, err = dist.EmergencyReturn(); err != nil {
			return nil, err
		}
		if s.StartTime, err = dist.StartTime(); err != nil {
			return nil, err
		}
		if s.LastTokenTime, err = dist.LastTokenTime(); err != nil {
			return nil, err
		}
		if s.TimeCursor, err = dist.TimeCursor(); err != nil {
			return nil, err
		}
		if s.CanCheckpointToken, err = dist.CanCheckpointToken(); err != nil {
			return nil, err
		}
		if s.IsKilled, err = dist.IsKilled(); err != nil {
			return nil, err
		}
		last, err := dist.TokenLastBalance()
		if err != nil {
			return nil, err
		}
		balance, err := dist.Reward().BalanceOf(dist.Address())
		if err != nil {
			return nil, err
		}
		s.TokenLastBalance = types.Amount(last)
		s.Balance = types.Amount(balance)
		return s, nil
	})
}

func (d *Distributors) handleGetWeek(w http.ResponseWriter, req *http.Request) error {
	week, err := utils.Uint64Var(req, "week")
	if err != nil {
		return err
	}
	week = thor.FloorWeek(week)
	return d.view(w, req, func(_ *xenv.Environment, _ *builtin.Contracts, dist *distributor.Distributor) (any, error) {
		tokens, err := dist.TokensPerWeek(week)
		if err != nil {
			return nil, err
		}
		supply, err := dist.VeSupply(week)
		if err != nil {
			return nil, err
		}
		return &Week{week, types.Amount(tokens), types.Amount(supply)}, nil
	})
}

func (d *Distributors) handleGetCursor(w http.ResponseWriter, req *http.Request) error {
	user, err := utils.AddressVar(req, "address")
	if err != nil {
		return err
	}
	return d.view(w, req, func(_ *xenv.Environment, _ *builtin.Contracts, dist *distributor.Distributor) (any, error) {
		week, epoch, err := dist.UserCursor(user)
		if err != nil {
			return nil, err
		}
		return &Cursor{week, epoch}, nil
	})
}

func (d *Distributors) handleGetClaimable(w http.ResponseWriter, req *http.Request) error {
	user, err := utils.AddressVar(req, "address")
	if err != nil {
		return err
	}
	return d.view(w, req, func(env *xenv.Environment, _ *builtin.Contracts, dist *distributor.Distributor) (any, error) {
		amount, err := dist.Claimable(env, user)
		if err != nil {
			return nil, err
		}
		return &Claimable{types.Amount(amount)}, nil
	})
}

func (d *Distributors) handleCheckpointToken(w http.ResponseWriter, req *http.Request) error {
	return d.call(w, req, func(env *xenv.Environment, _ *builtin.Contracts, dist *distributor.Distributor) (any, error) {
		return nil, dist.CheckpointToken(env)
	})
}

func (d *Distributors) handleCheckpointTotalSupply(w http.ResponseWriter, req *http.Request) error {
	return d.call(w, req, func(env *xenv.Environment, _ *builtin.Contracts, dist *distributor.Distributor) (any, error) {
		return nil, dist.CheckpointTotalSupply(env)
	})
}

func (d *Distributors) handleClaim(w http.ResponseWriter, req *http.Request) error {
	var body ClaimRequest
	if err := parseBody(req, &body); err != nil {
		return err
	}
	return d.call(w, req, func(env *xenv.Environment, _ *builtin.Contracts, dist *distributor.Distributor) (any, error) {
		user := env.Caller()
		if body.Address != nil {
			user = *body.Address
		}
		amount, err := dist.Claim(env, user)
		if err != nil {
			return nil, err
		}
		return types.Amount(amount), nil
	})
}

func (d *Distributors) handleClaimMany(w http.ResponseWriter, req *http.Request) error {
	var body ClaimManyRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	return d.call(w, req, func(env *xenv.Environment, _ *builtin.Contracts, dist *distributor.Distributor) (any, error) {
		amount, err := dist.ClaimMany(env, body.Addresses)
		if err != nil {
			return nil, err
		}
		return types.Amount(amount), nil
	})
}

func (d *Distributors) handleBurn(w http.ResponseWriter, req *http.Request) error {
	var body BurnRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	return d.call(w, req, func(env *xenv.Environment, _ *builtin.Contracts, dist *distributor.Distributor) (any, error) {
		return nil, dist.Burn(env, types.BigInt(body.Amount))
	})
}

func (d *Distributors) handleKill(w http.ResponseWriter, req *http.Request) error {
	return d.call(w, req, func(env *xenv.Environment, _ *builtin.Contracts, dist *distributor.Distributor) (any, error) {
		return nil, dist.Kill(env)
	})
}

func (d *Distributors) handleSweep(w http.ResponseWriter, req *http.Request) error {
	var body SweepRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.Asset == nil {
		return utils.BadRequest(errors.New("body: asset required"))
	}
	return d.call(w, req, func(env *xenv.Environment, c *builtin.Contracts, dist *distributor.Distributor) (any, error) {
		a, ok := c.Asset(*body.Asset)
		if !ok {
			return nil, utils.BadRequest(errors.Errorf("asset %v not found", body.Asset))
		}
		return nil, dist.Sweep(env, a)
	})
}

func (d *Distributors) handleToggleCheckpointToken(w http.ResponseWriter, req *http.Request) error {
	return d.call(w, req, func(env *xenv.Environment, _ *builtin.Contracts, dist *distributor.Distributor) (any, error) {
		return nil, dist.ToggleAllowCheckpointToken(env)
	})
}

func (d *Distributors) handleCommitTransferOwnership(w http.ResponseWriter, req *http.Request) error {
	var body AddressRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.Address == nil {
		return utils.BadRequest(errors.New("body: address required"))
	}
	return d.call(w, req, func(env *xenv.Environment, _ *builtin.Contracts, dist *distributor.Distributor) (any, error) {
		return nil, dist.CommitTransferOwnership(env, *body.Address)
	})
}

func (d *Distributors) handleApplyTransferOwnership(w http.ResponseWriter, req *http.Request) error {
	return d.call(w, req, func(env *xenv.Environment, _ *builtin.Contracts, dist *distributor.Distributor) (any, error) {
		return nil, dist.ApplyTransferOwnership(env)
	})
}

func (d *Distributors) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix + "/{name}").Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /distributors/{name}").
		HandlerFunc(utils.WrapHandlerFunc(d.handleGetState))
	sub.Path("/weeks/{week}").
		Methods(http.MethodGet).
		Name("GET /distributors/{name}/weeks/{week}").
		HandlerFunc(utils.WrapHandlerFunc(d.handleGetWeek))
	sub.Path("/cursors/{address}").
		Methods(http.MethodGet).
		Name("GET /distributors/{name}/cursors/{address}").
		HandlerFunc(utils.WrapHandlerFunc(d.handleGetCursor))
	sub.Path("/claimable/{address}").
		Methods(http.MethodGet).
		Name("GET /distributors/{name}/claimable/{address}").
		HandlerFunc(utils.WrapHandlerFunc(d.handleGetClaimable))

	sub.Path("/checkpoint-token").
		Methods(http.MethodPost).
		Name("POST /distributors/{name}/checkpoint-token").
		HandlerFunc(utils.WrapHandlerFunc(d.handleCheckpointToken))
	sub.Path("/checkpoint-total-supply").
		Methods(http.MethodPost).
		Name("POST /distributors/{name}/checkpoint-total-supply").
		HandlerFunc(utils.WrapHandlerFunc(d.handleCheckpointTotalSupply))
	sub.Path("/claim").
		Methods(http.MethodPost).
		Name("POST /distributors/{name}/claim").
		HandlerFunc(utils.WrapHandlerFunc(d.handleClaim))
	sub.Path("/claim-many").
		Methods(http.MethodPost).
		Name("POST /distributors/{name}/claim-many").
		HandlerFunc(utils.WrapHandlerFunc(d.handleClaimMany))
	sub.Path("/burn").
		Methods(http.MethodPost).
		Name("POST /distributors/{name}/burn").
		HandlerFunc(utils.WrapHandlerFunc(d.handleBurn))

	sub.Path("/admin/kill").
		Methods(http.MethodPost).
		Name("POST /distributors/{name}/admin/kill").
		HandlerFunc(utils.WrapHandlerFunc(d.handleKill))
	sub.Path("/admin/sweep").
		Methods(http.MethodPost).
		Name("POST /distributors/{name}/admin/sweep").
		HandlerFunc(utils.WrapHandlerFunc(d.handleSweep))
	sub.Path("/admin/toggle-checkpoint-token").
		Methods(http.MethodPost).
		Name("POST /distributors/{name}/admin/toggle-checkpoint-token").
		HandlerFunc(utils.WrapHandlerFunc(d.handleToggleCheckpointToken))
	sub.Path("/admin/commit-transfer-ownership").
		Methods(http.MethodPost).
		Name("POST /distributors/{name}/admin/commit-transfer-ownership").
		HandlerFunc(utils.WrapHandlerFunc(d.handleCommitTransferOwnership))
	sub.Path("/admin/apply-transfer-ownership").
		Methods(http.MethodPost).
		Name("POST /distributors/{name}/admin/apply-transfer-ownership").
		HandlerFunc(utils.WrapHandlerFunc(d.handleApplyTransferOwnership))
}
