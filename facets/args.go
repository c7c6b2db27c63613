// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package facets

import (
	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/diamondvm/diamondvm"
)

// FacetInfo is one entry of the facets() reply
type FacetInfo struct {
	FacetAddress ids.ShortID          `serialize:"true" json:"facetAddress"`
	Selectors    []diamondvm.Selector `serialize:"true" json:"functionSelectors"`
}

type FacetsReply struct {
	Facets []FacetInfo `serialize:"true"`
}

type SelectorArgs struct {
	Selector diamondvm.Selector `serialize:"true"`
}

type SelectorsReply struct {
	Selectors []diamondvm.Selector `serialize:"true"`
}

type AddressArgs struct {
	Address ids.ShortID `serialize:"true"`
}

type AddressReply struct {
	Address ids.ShortID `serialize:"true"`
}

type AddressesReply struct {
	Addresses []ids.ShortID `serialize:"true"`
}

type BoolReply struct {
	Value bool `serialize:"true"`
}
