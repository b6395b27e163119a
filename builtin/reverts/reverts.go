// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"errors"
	"fmt"
)

// Kind classifies a rejected call.
type Kind uint8

const (
	InvariantViolation Kind = iota + 1
	Unauthorized
	NotYetUnlocked
	Killed
)

func (k Kind) String() string {
	switch k {
	case InvariantViolation:
		return "invariant violation"
	case Unauthorized:
		return "unauthorized"
	case NotYetUnlocked:
		return "not yet unlocked"
	case Killed:
		return "killed"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ErrRevert rejects a call. The runtime discards all changes the call made.
type ErrRevert struct {
	kind    Kind
	message string
}

func New(kind Kind, message string) *ErrRevert {
	return &ErrRevert{
		kind:    kind,
		message: message,
	}
}

func Newf(kind Kind, format string, args ...any) *ErrRevert {
	return New(kind, fmt.Sprintf(format, args...))
}

func (e *ErrRevert) Error() string {
	return e.message
}

func (e *ErrRevert) Kind() Kind {
	return e.kind
}

func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	return errors.As(e, &ve)
}

// Is reports whether err is a revert of the given kind.
func Is(err error, kind Kind) bool {
	var ve *ErrRevert
	return errors.As(err, &ve) && ve.kind == kind
}
