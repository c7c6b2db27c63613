// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"github.com/holiman/uint256"

	"github.com/ava-labs/avalanchego/ids"
)

// Price is a 256-bit big-endian word, the way the ledger stores it
type Price [32]byte

func PriceOf(v *uint256.Int) Price { return v.Bytes32() }

func (p Price) Int() *uint256.Int { return new(uint256.Int).SetBytes(p[:]) }

type SetDayPriceArgs struct {
	Timestamp uint64 `serialize:"true"`
	Price     Price  `serialize:"true"`
}

type TimestampArgs struct {
	Timestamp uint64 `serialize:"true"`
}

type RangeArgs struct {
	From uint64 `serialize:"true"`
	To   uint64 `serialize:"true"`
}

type AddressArgs struct {
	Address ids.ShortID `serialize:"true"`
}

type PriceReply struct {
	Price Price `serialize:"true"`
}

type TimestampReply struct {
	Timestamp uint64 `serialize:"true"`
}

type AddressReply struct {
	Address ids.ShortID `serialize:"true"`
}
