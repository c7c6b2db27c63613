// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package facets

import (
	"context"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/diamondvm/diamondvm"
)

// LoupeClient calls the loupe functions of a diamond
type LoupeClient struct {
	d diamondvm.Dispatcher
}

func NewLoupeClient(d diamondvm.Dispatcher) *LoupeClient {
	return &LoupeClient{d: d}
}

func (c *LoupeClient) Facets(ctx context.Context) ([]FacetInfo, error) {
	reply := FacetsReply{}
	err := diamondvm.Invoke(ctx, c.d, ids.ShortEmpty, FacetsSignature, nil, &reply)
	return reply.Facets, err
}

func (c *LoupeClient) FacetFunctionSelectors(ctx context.Context, facet ids.ShortID) ([]diamondvm.Selector, error) {
	reply := SelectorsReply{}
	err := diamondvm.Invoke(ctx, c.d, ids.ShortEmpty, FacetFunctionSelectorsSignature, &AddressArgs{Address: facet}, &reply)
	return reply.Selectors, err
}

func (c *LoupeClient) FacetAddresses(ctx context.Context) ([]ids.ShortID, error) {
	reply := AddressesReply{}
	err := diamondvm.Invoke(ctx, c.d, ids.ShortEmpty, FacetAddressesSignature, nil, &reply)
	return reply.Addresses, err
}

func (c *LoupeClient) FacetAddress(ctx context.Context, selector diamondvm.Selector) (ids.ShortID, error) {
	reply := AddressReply{}
	err := diamondvm.Invoke(ctx, c.d, ids.ShortEmpty, FacetAddressSignature, &SelectorArgs{Selector: selector}, &reply)
	return reply.Address, err
}

func (c *LoupeClient) SupportsInterface(ctx context.Context, id diamondvm.Selector) (bool, error) {
	reply := BoolReply{}
	err := diamondvm.Invoke(ctx, c.d, ids.ShortEmpty, SupportsInterfaceSignature, &SelectorArgs{Selector: id}, &reply)
	return reply.Value, err
}
