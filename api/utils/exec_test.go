// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils

import (
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/veescrow/api/types"
	"github.com/vechain/veescrow/builtin"
	"github.com/vechain/veescrow/builtin/reverts"
	"github.com/vechain/veescrow/test/testchain"
	"github.com/vechain/veescrow/thor"
	"github.com/vechain/veescrow/xenv"
)

func TestCallAndView(t *testing.T) {
	tc, err := testchain.NewDefault()
	require.NoError(t, err)
	defer tc.Close()

	from := tc.Accounts()[1].Address
	to := thor.BytesToAddress([]byte("to"))

	req := signedRequest(t, NewAuthenticator(nil), tc.Accounts()[1].PrivateKey, "")
	rec := httptest.NewRecorder()
	err = Call(rec, req, tc.Runtime(), func(env *xenv.Environment, c *builtin.Contracts) (any, error) {
		return "done", c.Native.Transfer(env, to, big.NewInt(100))
	})
	require.NoError(t, err)

	var receipt types.Receipt
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &receipt))
	assert.Equal(t, from, receipt.Origin)
	assert.Equal(t, "done", receipt.Result)
	assert.Equal(t, tc.BestHeader().Number+1, receipt.Block)
	require.Len(t, receipt.Transfers, 1)
	assert.Equal(t, to, receipt.Transfers[0].Recipient)
	assert.Equal(t, big.NewInt(100), types.BigInt(receipt.Transfers[0].Amount))

	// reverted calls surface as http errors
	err = Call(httptest.NewRecorder(), req, tc.Runtime(), func(env *xenv.Environment, c *builtin.Contracts) (any, error) {
		return nil, reverts.New(reverts.Unauthorized, "admin only")
	})
	rec = httptest.NewRecorder()
	WrapHandlerFunc(func(http.ResponseWriter, *http.Request) error { return err })(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	require.NoError(t, View(rec, tc.Runtime(), func(env *xenv.Environment, c *builtin.Contracts) (any, error) {
		bal, err := c.Native.BalanceOf(to)
		return types.Amount(bal), err
	}))
	assert.Equal(t, "\"0x64\"\n", rec.Body.String())
}
