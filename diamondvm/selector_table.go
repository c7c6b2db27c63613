// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package diamondvm

import (
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/cache"
	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/prefixdb"
	"github.com/ava-labs/avalanchego/ids"
)

const (
	selectorCacheSize = 1024
)

var (
	routePrefix         = []byte("route")
	facetListPrefix     = []byte("facets")
	facetSelectorPrefix = []byte("facetSelectors")

	errCorruptRoute = errors.New("stored facet address has wrong length")

	_ SelectorTable = &selectorTable{}
)

// SelectorTable routes selectors to facet addresses. Besides the forward
// mapping it keeps the set of selectors held by each facet and the ordered
// list of facets that hold at least one selector.
//
// The table performs no validation. The cut processor is its only writer.
type SelectorTable interface {
	// FacetFor returns the facet routed for [selector] or [database.ErrNotFound]
	FacetFor(selector Selector) (ids.ShortID, error)
	SelectorsOf(facet ids.ShortID) ([]Selector, error)
	FacetAddresses() ([]ids.ShortID, error)

	InsertSelector(selector Selector, facet ids.ShortID) error
	RemoveSelector(selector Selector) error

	ClearCache()
}

type selectorTable struct {
	routeCache cache.Cacher

	routes      database.Database
	facets      *orderedSet
	selectorsDB database.Database
}

func NewSelectorTable(db database.Database) SelectorTable {
	return &selectorTable{
		routeCache:  &cache.LRU{Size: selectorCacheSize},
		routes:      prefixdb.New(routePrefix, db),
		facets:      newOrderedSet(prefixdb.New(facetListPrefix, db)),
		selectorsDB: prefixdb.New(facetSelectorPrefix, db),
	}
}

func (t *selectorTable) FacetFor(selector Selector) (ids.ShortID, error) {
	if facet, ok := t.routeCache.Get(selector); ok {
		return facet.(ids.ShortID), nil
	}

	addrBytes, err := t.routes.Get(selector[:])
	if err != nil {
		return ids.ShortEmpty, err
	}
	facet, err := ids.ToShortID(addrBytes)
	if err != nil {
		return ids.ShortEmpty, fmt.Errorf("%w: %v", errCorruptRoute, err)
	}

	t.routeCache.Put(selector, facet)
	return facet, nil
}

func (t *selectorTable) SelectorsOf(facet ids.ShortID) ([]Selector, error) {
	members, err := t.facetSelectors(facet).Members()
	if err != nil {
		return nil, fmt.Errorf("failed to list selectors of %s: %w", facet, err)
	}
	selectors := make([]Selector, len(members))
	for i, m := range members {
		copy(selectors[i][:], m)
	}
	return selectors, nil
}

func (t *selectorTable) FacetAddresses() ([]ids.ShortID, error) {
	members, err := t.facets.Members()
	if err != nil {
		return nil, fmt.Errorf("failed to list facets: %w", err)
	}
	facets := make([]ids.ShortID, 0, len(members))
	for _, m := range members {
		facet, err := ids.ToShortID(m)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errCorruptRoute, err)
		}
		facets = append(facets, facet)
	}
	return facets, nil
}

// InsertSelector routes [selector] to [facet]. A selector already routed
// elsewhere is moved, keeping both indices consistent.
func (t *selectorTable) InsertSelector(selector Selector, facet ids.ShortID) error {
	_, err := t.FacetFor(selector)
	switch {
	case err == nil:
		if err := t.RemoveSelector(selector); err != nil {
			return err
		}
	case err != database.ErrNotFound:
		return err
	}

	if err := t.routes.Put(selector[:], facet[:]); err != nil {
		return fmt.Errorf("failed to route %s: %w", selector, err)
	}
	if _, err := t.facetSelectors(facet).Add(selector[:]); err != nil {
		return fmt.Errorf("failed to index %s under %s: %w", selector, facet, err)
	}
	if _, err := t.facets.Add(facet[:]); err != nil {
		return fmt.Errorf("failed to list facet %s: %w", facet, err)
	}
	t.routeCache.Put(selector, facet)
	return nil
}

// RemoveSelector drops [selector] from the table. The facet that held it is
// dropped from the facet list once it holds no selectors.
func (t *selectorTable) RemoveSelector(selector Selector) error {
	facet, err := t.FacetFor(selector)
	if err != nil {
		return err
	}

	t.routeCache.Evict(selector)
	if err := t.routes.Delete(selector[:]); err != nil {
		return fmt.Errorf("failed to unroute %s: %w", selector, err)
	}
	remaining := t.facetSelectors(facet)
	if _, err := remaining.Remove(selector[:]); err != nil {
		return fmt.Errorf("failed to unindex %s from %s: %w", selector, facet, err)
	}
	n, err := remaining.Len()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := t.facets.Remove(facet[:]); err != nil {
			return fmt.Errorf("failed to delist facet %s: %w", facet, err)
		}
	}
	return nil
}

func (t *selectorTable) ClearCache() {
	t.routeCache.Flush()
}

func (t *selectorTable) facetSelectors(facet ids.ShortID) *orderedSet {
	return newOrderedSet(prefixdb.New(facet[:], t.selectorsDB))
}
