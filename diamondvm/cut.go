// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package diamondvm

import (
	"fmt"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"
)

// DiamondCutSignature is the entry point of the cut processor. It is routed
// like any other function, so the upgrade mechanism can itself be upgraded.
const DiamondCutSignature = "diamondCut((address,uint8,bytes4[])[],address,bytes)"

type FacetCutAction uint8

const (
	Add FacetCutAction = iota
	Replace
	Remove
)

func (a FacetCutAction) String() string {
	switch a {
	case Add:
		return "Add"
	case Replace:
		return "Replace"
	case Remove:
		return "Remove"
	default:
		return fmt.Sprintf("FacetCutAction(%d)", uint8(a))
	}
}

// FacetCut is one item of a cut batch
type FacetCut struct {
	FacetAddress ids.ShortID    `serialize:"true" json:"facetAddress"`
	Action       FacetCutAction `serialize:"true" json:"action"`
	Selectors    []Selector     `serialize:"true" json:"functionSelectors"`
}

// CutBatch is the argument of diamondCut: an ordered list of cuts and an
// optional initialization call run after the cuts are applied.
type CutBatch struct {
	Cuts     []FacetCut  `serialize:"true" json:"cuts"`
	Init     ids.ShortID `serialize:"true" json:"init"`
	Calldata []byte      `serialize:"true" json:"calldata"`
}

var _ Facet = (*DiamondCutFacet)(nil)

// DiamondCutFacet exposes the cut processor. Every diamond is created with
// this facet deployed and routed.
type DiamondCutFacet struct{}

func (*DiamondCutFacet) Name() string { return "DiamondCutFacet" }

func (*DiamondCutFacet) Functions() []Function {
	return []Function{
		{Signature: DiamondCutSignature, Handler: diamondCut},
	}
}

func diamondCut(call *Call, args []byte) ([]byte, error) {
	batch := CutBatch{}
	if err := Unpack(args, &batch); err != nil {
		return nil, fmt.Errorf("couldn't unpack cut batch: %w", err)
	}
	return nil, ApplyCutBatch(call, &batch)
}

// ApplyCutBatch applies [batch] to the diamond's selector table.
//
// Cuts are applied in order and each one is validated against the table as
// left by the cuts before it. Nothing is committed here: the diamond commits
// the call only if every cut and the init call succeed, and aborts otherwise.
func ApplyCutBatch(call *Call, batch *CutBatch) error {
	if err := call.RequireOwner(); err != nil {
		return err
	}
	table := call.Table()
	for i, cut := range batch.Cuts {
		var err error
		switch cut.Action {
		case Add:
			err = addFunctions(call, table, cut)
		case Replace:
			err = replaceFunctions(call, table, cut)
		case Remove:
			err = removeFunctions(table, cut)
		default:
			err = fmt.Errorf("%w: %d", ErrUnknownCutAction, cut.Action)
		}
		if err != nil {
			return fmt.Errorf("cut %d (%s %s): %w", i, cut.Action, cut.FacetAddress, err)
		}
	}

	call.diamond.log.Info("applied diamond cut",
		"cuts", len(batch.Cuts),
		"init", batch.Init,
	)
	return initializeDiamondCut(call, batch.Init, batch.Calldata)
}

func addFunctions(call *Call, table SelectorTable, cut FacetCut) error {
	if len(cut.Selectors) == 0 {
		return ErrEmptyCut
	}
	if err := requireCode(call, cut.FacetAddress); err != nil {
		return err
	}
	for _, selector := range cut.Selectors {
		holder, err := table.FacetFor(selector)
		switch {
		case err == nil:
			return fmt.Errorf("%w: %s held by %s", ErrSelectorAlreadyExists, selector, holder)
		case err != database.ErrNotFound:
			return err
		}
		if err := table.InsertSelector(selector, cut.FacetAddress); err != nil {
			return err
		}
	}
	return nil
}

func replaceFunctions(call *Call, table SelectorTable, cut FacetCut) error {
	if len(cut.Selectors) == 0 {
		return ErrEmptyCut
	}
	if err := requireCode(call, cut.FacetAddress); err != nil {
		return err
	}
	for _, selector := range cut.Selectors {
		holder, err := table.FacetFor(selector)
		switch {
		case err == database.ErrNotFound:
			return fmt.Errorf("%w: %s", ErrSelectorNotFound, selector)
		case err != nil:
			return err
		case holder == cut.FacetAddress:
			return fmt.Errorf("%w: %s", ErrNoOpReplace, selector)
		}
		if err := table.InsertSelector(selector, cut.FacetAddress); err != nil {
			return err
		}
	}
	return nil
}

func removeFunctions(table SelectorTable, cut FacetCut) error {
	if len(cut.Selectors) == 0 {
		return ErrEmptyCut
	}
	if cut.FacetAddress != ids.ShortEmpty {
		return ErrRemoveFacetAddressMustBeZero
	}
	for _, selector := range cut.Selectors {
		err := table.RemoveSelector(selector)
		switch {
		case err == database.ErrNotFound:
			return fmt.Errorf("%w: %s", ErrSelectorNotFound, selector)
		case err != nil:
			return err
		}
	}
	return nil
}

func requireCode(call *Call, facet ids.ShortID) error {
	if facet == ids.ShortEmpty {
		return ErrZeroAddress
	}
	if !call.HasCode(facet) {
		return fmt.Errorf("%w: %s", ErrNoCode, facet)
	}
	return nil
}

func initializeDiamondCut(call *Call, init ids.ShortID, calldata []byte) error {
	if init == ids.ShortEmpty {
		if len(calldata) != 0 {
			return fmt.Errorf("%w: calldata given without init address", ErrInvalidInit)
		}
		return nil
	}
	if len(calldata) == 0 {
		return fmt.Errorf("%w: init address %s given without calldata", ErrInvalidInit, init)
	}
	if !call.HasCode(init) {
		return fmt.Errorf("%w: init %s", ErrNoCode, init)
	}
	if _, err := call.Delegate(init, calldata); err != nil {
		return fmt.Errorf("%w: %v", ErrInitializationFailed, err)
	}
	return nil
}
