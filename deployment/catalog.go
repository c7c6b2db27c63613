// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package deployment

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ava-labs/diamondvm/diamondvm"
	"github.com/ava-labs/diamondvm/facets"
	"github.com/ava-labs/diamondvm/ledger"
)

const (
	DiamondLoupeFacet = "DiamondLoupeFacet"
	DiamondInit       = "DiamondInit"
	TokenAvgPriceV1   = "TokenAvgPriceV1"
	TokenAvgPriceV2   = "TokenAvgPriceV2"
	TokenAvgPriceV3   = "TokenAvgPriceV3"
)

var (
	errUnknownFacet = errors.New("unknown facet")

	// catalog is the closed set of facets that can be deployed by name
	catalog = map[string]func() diamondvm.Facet{
		DiamondLoupeFacet: func() diamondvm.Facet { return &facets.DiamondLoupeFacet{} },
		DiamondInit:       func() diamondvm.Facet { return &facets.DiamondInit{} },
		TokenAvgPriceV1:   func() diamondvm.Facet { return ledger.NewFacet(ledger.V1) },
		TokenAvgPriceV2:   func() diamondvm.Facet { return ledger.NewFacet(ledger.V2) },
		TokenAvgPriceV3:   func() diamondvm.Facet { return ledger.NewFacet(ledger.V3) },
	}
)

// NewFacet returns a fresh instance of the facet called [name]
func NewFacet(name string) (diamondvm.Facet, error) {
	constructor, ok := catalog[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", errUnknownFacet, name)
	}
	return constructor(), nil
}

// Names lists the deployable facets in alphabetical order
func Names() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
