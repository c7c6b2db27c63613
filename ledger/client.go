// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"context"

	"github.com/holiman/uint256"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/diamondvm/diamondvm"
)

// Client encodes ledger calls and decodes their results
type Client struct {
	d diamondvm.Dispatcher
}

func NewClient(d diamondvm.Dispatcher) *Client {
	return &Client{d: d}
}

func (c *Client) SetDayPrice(ctx context.Context, from ids.ShortID, timestamp uint64, price *uint256.Int) error {
	return diamondvm.Invoke(ctx, c.d, from, SetDayPriceSignature, &SetDayPriceArgs{
		Timestamp: timestamp,
		Price:     PriceOf(price),
	}, nil)
}

func (c *Client) GetDayPrice(ctx context.Context, timestamp uint64) (*uint256.Int, error) {
	reply := PriceReply{}
	if err := diamondvm.Invoke(ctx, c.d, ids.ShortEmpty, GetDayPriceSignature, &TimestampArgs{Timestamp: timestamp}, &reply); err != nil {
		return nil, err
	}
	return reply.Price.Int(), nil
}

func (c *Client) GetAveragePrice(ctx context.Context, from, to uint64) (*uint256.Int, error) {
	reply := PriceReply{}
	if err := diamondvm.Invoke(ctx, c.d, ids.ShortEmpty, GetAveragePriceSignature, &RangeArgs{From: from, To: to}, &reply); err != nil {
		return nil, err
	}
	return reply.Price.Int(), nil
}

func (c *Client) GetLastTimestamp(ctx context.Context) (uint64, error) {
	reply := TimestampReply{}
	err := diamondvm.Invoke(ctx, c.d, ids.ShortEmpty, GetLastTimestampSignature, nil, &reply)
	return reply.Timestamp, err
}

// GetFirstTimestamp is only routed from V2 on
func (c *Client) GetFirstTimestamp(ctx context.Context) (uint64, error) {
	reply := TimestampReply{}
	err := diamondvm.Invoke(ctx, c.d, ids.ShortEmpty, GetFirstTimestampSignature, nil, &reply)
	return reply.Timestamp, err
}

func (c *Client) Owner(ctx context.Context) (ids.ShortID, error) {
	reply := AddressReply{}
	err := diamondvm.Invoke(ctx, c.d, ids.ShortEmpty, OwnerSignature, nil, &reply)
	return reply.Address, err
}

func (c *Client) TransferOwnership(ctx context.Context, from, newOwner ids.ShortID) error {
	return diamondvm.Invoke(ctx, c.d, from, TransferOwnershipSignature, &AddressArgs{Address: newOwner}, nil)
}
