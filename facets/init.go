// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package facets

import (
	"github.com/ava-labs/avalanchego/database"

	"github.com/ava-labs/diamondvm/diamondvm"
)

// DiamondInitSignature is the function run by the initial cut. It takes no
// arguments, so it is not the reserved init(bytes) hook.
const DiamondInitSignature = "init()"

var (
	// InterfacesNamespace holds the ERC-165 interface IDs the diamond answers
	// true for. DiamondInit writes it and the loupe reads it.
	InterfacesNamespace = []byte("supportedInterfaces")

	supportedFlag = []byte{1}

	ERC165InterfaceID = diamondvm.InterfaceID(
		diamondvm.SelectorFromSignature(SupportsInterfaceSignature),
	)
	ERC173InterfaceID = diamondvm.InterfaceID(
		diamondvm.SelectorFromSignature("owner()"),
		diamondvm.SelectorFromSignature("transferOwnership(address)"),
	)
	DiamondCutInterfaceID   = diamondvm.InterfaceID(diamondvm.SelectorFromSignature(diamondvm.DiamondCutSignature))
	DiamondLoupeInterfaceID = diamondvm.InterfaceID(diamondvm.SelectorsOf(&DiamondLoupeFacet{}).Remove(SupportsInterfaceSignature).Selectors()...)

	_ diamondvm.Facet = (*DiamondInit)(nil)
)

// DiamondInit records the interfaces every diamond built by this module
// supports. It is run once, as the init call of the first cut.
type DiamondInit struct{}

func (*DiamondInit) Name() string { return "DiamondInit" }

func (*DiamondInit) Functions() []diamondvm.Function {
	return []diamondvm.Function{
		{Signature: DiamondInitSignature, Handler: diamondInit},
	}
}

func diamondInit(call *diamondvm.Call, _ []byte) ([]byte, error) {
	registry := newInterfaceRegistry(call)
	for _, id := range []diamondvm.Selector{
		ERC165InterfaceID,
		DiamondCutInterfaceID,
		DiamondLoupeInterfaceID,
		ERC173InterfaceID,
	} {
		if err := registry.Add(id); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

type interfaceRegistry struct {
	db database.Database
}

func newInterfaceRegistry(call *diamondvm.Call) *interfaceRegistry {
	return &interfaceRegistry{db: call.Storage(InterfacesNamespace)}
}

func (r *interfaceRegistry) Add(id diamondvm.Selector) error {
	return r.db.Put(id[:], supportedFlag)
}

func (r *interfaceRegistry) Supports(id diamondvm.Selector) (bool, error) {
	return r.db.Has(id[:])
}
