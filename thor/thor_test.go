// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAddress(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"0x7567d83b7b8d80addcb281a71d54fc7b3364ffed", false},
		{"7567d83b7b8d80addcb281a71d54fc7b3364ffed", false},
		{"0X7567d83b7b8d80addcb281a71d54fc7b3364ffed", false},
		{"1x7567d83b7b8d80addcb281a71d54fc7b3364ffed", true},
		{"0x7567d83b7b8d80addcb281a71d54fc7b3364ff", true},
		{"0x7567d83b7b8d80addcb281a71d54fc7b3364ffzz", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			addr, err := ParseAddress(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "0x7567d83b7b8d80addcb281a71d54fc7b3364ffed", addr.String())
		})
	}
}

func TestAddressJSON(t *testing.T) {
	addr := BytesToAddress([]byte("Escrow"))
	data, err := json.Marshal(&addr)
	require.NoError(t, err)

	var decoded Address
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, addr, decoded)
	assert.False(t, decoded.IsZero())
	assert.True(t, Address{}.IsZero())
}

func TestBytes32JSON(t *testing.T) {
	b := BytesToBytes32([]byte("topic"))
	data, err := json.Marshal(&b)
	require.NoError(t, err)
	assert.Equal(t, `"`+b.String()+`"`, string(data))

	var decoded Bytes32
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, b, decoded)
	assert.Error(t, json.Unmarshal([]byte(`"0x12"`), &decoded))
}

func TestWeekRounding(t *testing.T) {
	assert.Equal(t, uint64(0), FloorWeek(Week-1))
	assert.Equal(t, Week, FloorWeek(Week))
	assert.Equal(t, Week, CeilWeek(1))
	assert.Equal(t, Week, CeilWeek(Week))
	assert.Equal(t, 2*Week, CeilWeek(Week+1))
}

func TestBlake2b(t *testing.T) {
	single := Blake2b([]byte("ab"))
	multi := Blake2b([]byte("a"), []byte("b"))
	assert.Equal(t, single, multi)
	assert.NotEqual(t, single, Blake2b([]byte("ba")))
}

func TestUint64ToBytes32(t *testing.T) {
	b := Uint64ToBytes32(0x0102)
	assert.Equal(t, byte(0x01), b[30])
	assert.Equal(t, byte(0x02), b[31])
	assert.True(t, Uint64ToBytes32(0).IsZero())
}
