// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package deployment

import (
	"context"
	"fmt"

	log "github.com/inconshreveable/log15"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/diamondvm/diamondvm"
	"github.com/ava-labs/diamondvm/facets"
)

// InitialFacets are cut into a new diamond, in this order
var InitialFacets = []string{
	DiamondLoupeFacet,
	TokenAvgPriceV1,
}

// Result describes a deployed diamond
type Result struct {
	Diamond  ids.ShortID
	CutFacet ids.ShortID
	Init     ids.ShortID
	// Facets maps the name of each facet cut in by Deploy to its address
	Facets map[string]ids.ShortID
}

// Deploy brings a freshly created diamond to its initial layout: it deploys
// DiamondInit and [InitialFacets], then issues one cut adding every selector
// of those facets with DiamondInit's init() as the initialization call.
// [owner] must be the diamond's owner.
func Deploy(ctx context.Context, d *diamondvm.Diamond, owner ids.ShortID) (*Result, error) {
	log.Info("deploying diamond", "diamond", d.Address(), "owner", owner)

	result := &Result{
		Diamond:  d.Address(),
		CutFacet: d.CutFacet(),
		Facets:   make(map[string]ids.ShortID, len(InitialFacets)),
	}

	var err error
	result.Init, err = DeployFacet(d, DiamondInit)
	if err != nil {
		return nil, err
	}

	batch := &diamondvm.CutBatch{Init: result.Init}
	for _, name := range InitialFacets {
		f, err := NewFacet(name)
		if err != nil {
			return nil, err
		}
		addr, err := d.Deploy(f)
		if err != nil {
			return nil, fmt.Errorf("failed to deploy %s: %w", name, err)
		}

		result.Facets[name] = addr
		batch.Cuts = append(batch.Cuts, diamondvm.FacetCut{
			FacetAddress: addr,
			Action:       diamondvm.Add,
			Selectors:    diamondvm.SelectorsOf(f).Selectors(),
		})
	}

	batch.Calldata, err = diamondvm.EncodeCall(facets.DiamondInitSignature, nil)
	if err != nil {
		return nil, err
	}
	if err := d.ApplyCutBatch(ctx, owner, batch); err != nil {
		return nil, fmt.Errorf("diamond upgrade failed: %w", err)
	}

	log.Info("diamond deploy end", "diamond", d.Address())
	return result, nil
}

// DeployFacet deploys the catalog facet called [name] without routing to it
func DeployFacet(d *diamondvm.Diamond, name string) (ids.ShortID, error) {
	f, err := NewFacet(name)
	if err != nil {
		return ids.ShortEmpty, err
	}
	addr, err := d.Deploy(f)
	if err != nil {
		return ids.ShortEmpty, fmt.Errorf("failed to deploy %s: %w", name, err)
	}
	return addr, nil
}

// Upgrade replaces the facet at [old] with a new deployment of [name]. All
// selectors currently routed to [old] are removed and every selector of the
// new facet is added, in one batch. The storage of the diamond is untouched,
// so state written through the old facet stays readable through the new one.
//
// The selectors of [old] are read through the routed loupe. Should the table
// change before the cut runs, the Remove fails and the batch is rolled back.
func Upgrade(ctx context.Context, d *diamondvm.Diamond, owner, old ids.ShortID, name string) (ids.ShortID, error) {
	selectors, err := facets.NewLoupeClient(d).FacetFunctionSelectors(ctx, old)
	if err != nil {
		return ids.ShortEmpty, err
	}
	if len(selectors) == 0 {
		return ids.ShortEmpty, fmt.Errorf("%w: no selectors routed to %s", diamondvm.ErrEmptyCut, old)
	}

	f, err := NewFacet(name)
	if err != nil {
		return ids.ShortEmpty, err
	}
	addr, err := d.Deploy(f)
	if err != nil {
		return ids.ShortEmpty, fmt.Errorf("failed to deploy %s: %w", name, err)
	}

	err = d.ApplyCutBatch(ctx, owner, &diamondvm.CutBatch{
		Cuts: []diamondvm.FacetCut{
			{
				Action:    diamondvm.Remove,
				Selectors: selectors,
			},
			{
				FacetAddress: addr,
				Action:       diamondvm.Add,
				Selectors:    diamondvm.SelectorsOf(f).Selectors(),
			},
		},
	})
	if err != nil {
		return ids.ShortEmpty, fmt.Errorf("diamond upgrade failed: %w", err)
	}
	log.Info("facet upgraded", "from", old, "to", addr, "name", name)
	return addr, nil
}
