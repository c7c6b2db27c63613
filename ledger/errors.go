// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import "errors"

var (
	ErrInvalidTimestamp = errors.New("timestamp is not on a day boundary")
	ErrNonSequentialDay = errors.New("day is not the one after the last recorded day")
	ErrInvalidRange     = errors.New("range start is after range end")
	ErrNoSuchDay        = errors.New("no price recorded for day")
	ErrNotCurrentDay    = errors.New("price can only be set for the current day")
	ErrPriceOverflow    = errors.New("cumulative price overflows 256 bits")
)
