// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package facets

import (
	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/diamondvm/diamondvm"
)

const (
	FacetsSignature                 = "facets()"
	FacetFunctionSelectorsSignature = "facetFunctionSelectors(address)"
	FacetAddressesSignature         = "facetAddresses()"
	FacetAddressSignature           = "facetAddress(bytes4)"
	SupportsInterfaceSignature      = "supportsInterface(bytes4)"
)

var _ diamondvm.Facet = (*DiamondLoupeFacet)(nil)

// DiamondLoupeFacet answers questions about the routing table
type DiamondLoupeFacet struct{}

func (*DiamondLoupeFacet) Name() string { return "DiamondLoupeFacet" }

func (*DiamondLoupeFacet) Functions() []diamondvm.Function {
	return []diamondvm.Function{
		{Signature: FacetsSignature, Handler: loupeFacets},
		{Signature: FacetFunctionSelectorsSignature, Handler: facetFunctionSelectors},
		{Signature: FacetAddressesSignature, Handler: facetAddresses},
		{Signature: FacetAddressSignature, Handler: facetAddress},
		{Signature: SupportsInterfaceSignature, Handler: supportsInterface},
	}
}

func loupeFacets(call *diamondvm.Call, _ []byte) ([]byte, error) {
	table := call.Table()
	addrs, err := table.FacetAddresses()
	if err != nil {
		return nil, err
	}
	reply := FacetsReply{Facets: make([]FacetInfo, 0, len(addrs))}
	for _, addr := range addrs {
		selectors, err := table.SelectorsOf(addr)
		if err != nil {
			return nil, err
		}
		reply.Facets = append(reply.Facets, FacetInfo{
			FacetAddress: addr,
			Selectors:    selectors,
		})
	}
	return diamondvm.Pack(&reply)
}

func facetFunctionSelectors(call *diamondvm.Call, argBytes []byte) ([]byte, error) {
	args := AddressArgs{}
	if err := diamondvm.Unpack(argBytes, &args); err != nil {
		return nil, err
	}
	selectors, err := call.Table().SelectorsOf(args.Address)
	if err != nil {
		return nil, err
	}
	return diamondvm.Pack(&SelectorsReply{Selectors: selectors})
}

func facetAddresses(call *diamondvm.Call, _ []byte) ([]byte, error) {
	addrs, err := call.Table().FacetAddresses()
	if err != nil {
		return nil, err
	}
	return diamondvm.Pack(&AddressesReply{Addresses: addrs})
}

// facetAddress returns the zero address for an unrouted selector
func facetAddress(call *diamondvm.Call, argBytes []byte) ([]byte, error) {
	args := SelectorArgs{}
	if err := diamondvm.Unpack(argBytes, &args); err != nil {
		return nil, err
	}
	addr, err := call.Table().FacetFor(args.Selector)
	switch {
	case err == database.ErrNotFound:
		addr = ids.ShortEmpty
	case err != nil:
		return nil, err
	}
	return diamondvm.Pack(&AddressReply{Address: addr})
}

func supportsInterface(call *diamondvm.Call, argBytes []byte) ([]byte, error) {
	args := SelectorArgs{}
	if err := diamondvm.Unpack(argBytes, &args); err != nil {
		return nil, err
	}
	supported, err := newInterfaceRegistry(call).Supports(args.Selector)
	if err != nil {
		return nil, err
	}
	return diamondvm.Pack(&BoolReply{Value: supported})
}
