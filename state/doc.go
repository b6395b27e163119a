// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package state manages balances and contract storage.
// It follows the flow as below:
//
//	         o
//	         |
//	[ revertable state ]
//	         |
//	  [ stacked map ] -> [ journal ] -> [ stage ] -> [ kv bulk ]
//	         |
//	   [ raw cache ]
//	         |
//	   [ kv store ]
//
// Unlike a trie backed state, only the latest committed values are kept.
// Historical queries are served by the records contracts keep in their own storage.
package state
