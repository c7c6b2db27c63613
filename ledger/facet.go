// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"fmt"

	"github.com/ava-labs/diamondvm/diamondvm"
)

const (
	SetDayPriceSignature       = "setDayPrice(uint256,uint256)"
	GetDayPriceSignature       = "getDayPrice(uint256)"
	GetAveragePriceSignature   = "getAveragePrice(uint256,uint256)"
	GetLastTimestampSignature  = "getLastTimestamp()"
	GetFirstTimestampSignature = "getFirstTimestamp()"
	OwnerSignature             = "owner()"
	TransferOwnershipSignature = "transferOwnership(address)"
)

// Namespace is the slice of diamond storage every version of the facet uses.
// Sharing it is what keeps the recorded prices across upgrades.
var Namespace = []byte("tokenAvgPrice")

type Version uint8

const (
	// V1 is the base ledger
	V1 Version = iota + 1
	// V2 adds getFirstTimestamp
	V2
	// V3 only accepts a price for the day the block is in
	V3
)

var _ diamondvm.Facet = (*Facet)(nil)

// Facet is the TokenAvgPrice facet serving the daily price ledger
type Facet struct {
	version Version
}

func NewFacet(version Version) *Facet {
	return &Facet{version: version}
}

func (f *Facet) Name() string { return fmt.Sprintf("TokenAvgPriceV%d", f.version) }

func (f *Facet) Version() Version { return f.version }

func (f *Facet) Functions() []diamondvm.Function {
	functions := []diamondvm.Function{
		{Signature: SetDayPriceSignature, Handler: f.setDayPrice},
		{Signature: GetDayPriceSignature, Handler: getDayPrice},
		{Signature: GetAveragePriceSignature, Handler: getAveragePrice},
		{Signature: GetLastTimestampSignature, Handler: getLastTimestamp},
		{Signature: OwnerSignature, Handler: owner},
		{Signature: TransferOwnershipSignature, Handler: transferOwnership},
	}
	if f.version >= V2 {
		functions = append(functions, diamondvm.Function{
			Signature: GetFirstTimestampSignature,
			Handler:   getFirstTimestamp,
		})
	}
	return functions
}

func (f *Facet) setDayPrice(call *diamondvm.Call, argBytes []byte) ([]byte, error) {
	if err := call.RequireOwner(); err != nil {
		return nil, err
	}
	args := SetDayPriceArgs{}
	if err := diamondvm.Unpack(argBytes, &args); err != nil {
		return nil, err
	}
	if f.version >= V3 {
		day, err := DayIndex(args.Timestamp)
		if err != nil {
			return nil, err
		}
		if today := Today(call.Timestamp()); day != today {
			return nil, fmt.Errorf("%w: day %d, today is %d", ErrNotCurrentDay, day, today)
		}
	}
	return nil, New(call.Storage(Namespace)).SetDayPrice(args.Timestamp, args.Price.Int())
}

func getDayPrice(call *diamondvm.Call, argBytes []byte) ([]byte, error) {
	args := TimestampArgs{}
	if err := diamondvm.Unpack(argBytes, &args); err != nil {
		return nil, err
	}
	price, err := New(call.Storage(Namespace)).GetDayPrice(args.Timestamp)
	if err != nil {
		return nil, err
	}
	return diamondvm.Pack(&PriceReply{Price: PriceOf(price)})
}

func getAveragePrice(call *diamondvm.Call, argBytes []byte) ([]byte, error) {
	args := RangeArgs{}
	if err := diamondvm.Unpack(argBytes, &args); err != nil {
		return nil, err
	}
	avg, err := New(call.Storage(Namespace)).GetAveragePrice(args.From, args.To)
	if err != nil {
		return nil, err
	}
	return diamondvm.Pack(&PriceReply{Price: PriceOf(avg)})
}

func getLastTimestamp(call *diamondvm.Call, _ []byte) ([]byte, error) {
	timestamp, err := New(call.Storage(Namespace)).LastTimestamp()
	if err != nil {
		return nil, err
	}
	return diamondvm.Pack(&TimestampReply{Timestamp: timestamp})
}

func getFirstTimestamp(call *diamondvm.Call, _ []byte) ([]byte, error) {
	timestamp, err := New(call.Storage(Namespace)).FirstTimestamp()
	if err != nil {
		return nil, err
	}
	return diamondvm.Pack(&TimestampReply{Timestamp: timestamp})
}

func owner(call *diamondvm.Call, _ []byte) ([]byte, error) {
	addr, err := call.Owner()
	if err != nil {
		return nil, err
	}
	return diamondvm.Pack(&AddressReply{Address: addr})
}

func transferOwnership(call *diamondvm.Call, argBytes []byte) ([]byte, error) {
	args := AddressArgs{}
	if err := diamondvm.Unpack(argBytes, &args); err != nil {
		return nil, err
	}
	return nil, call.TransferOwnership(args.Address)
}
