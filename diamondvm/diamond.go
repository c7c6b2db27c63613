// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package diamondvm

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	log "github.com/inconshreveable/log15"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/hashing"
	"github.com/ava-labs/avalanchego/utils/timer/mockable"
	"github.com/ava-labs/avalanchego/utils/wrappers"
)

const Name = "diamondvm"

var (
	Version = "v0.1.0"

	errDuplicateSignature = errors.New("facet declares a signature twice")

	_ Dispatcher = (*Diamond)(nil)
)

// deployedFacet is a facet together with its compiled dispatch table
type deployedFacet struct {
	facet    Facet
	handlers map[Selector]Handler
}

// Diamond is the dispatcher. It owns the shared state and the registry of
// deployed facet code, and executes one call at a time.
type Diamond struct {
	lock sync.Mutex

	address ids.ShortID
	state   State
	clock   *mockable.Clock
	log     log.Logger

	code map[ids.ShortID]*deployedFacet
	// cutFacet is deployed at construction so the table can be seeded with it
	cutFacet ids.ShortID
}

// New creates a diamond owned by [owner] on top of [db]. On an empty database
// the selector table is seeded with the selectors of [DiamondCutFacet]. On an
// initialized database [owner] is ignored: the stored owner and address are
// kept.
func New(db database.Database, owner ids.ShortID, clock *mockable.Clock) (*Diamond, error) {
	if owner == ids.ShortEmpty {
		return nil, fmt.Errorf("%w: owner", ErrZeroAddress)
	}
	if clock == nil {
		clock = &mockable.Clock{}
	}
	d := &Diamond{
		state: NewState(db),
		clock: clock,
		code:  make(map[ids.ShortID]*deployedFacet),
	}

	initialized, err := d.state.IsInitialized()
	if err != nil {
		return nil, fmt.Errorf("failed to read initialization status: %w", err)
	}

	cutFacet := &DiamondCutFacet{}
	if initialized {
		d.address, err = d.state.GetAddress()
		if err != nil {
			return nil, err
		}
		d.log = log.New("diamond", d.address)
		// The cut facet was the first deployment, so it lives at nonce 0.
		// Code is not persisted and is registered again on every start.
		d.cutFacet, err = d.register(cutFacet, 0)
		return d, err
	}

	d.address = ids.ShortID(hashing.ComputeHash160Array(append([]byte(Name), owner[:]...)))
	d.log = log.New("diamond", d.address)
	if err := d.state.SetAddress(d.address); err != nil {
		d.state.Abort()
		return nil, err
	}
	d.cutFacet, err = d.deploy(cutFacet)
	if err != nil {
		d.state.Abort()
		return nil, fmt.Errorf("failed to deploy %s: %w", cutFacet.Name(), err)
	}
	if err := d.state.SetOwner(owner); err != nil {
		d.state.Abort()
		return nil, err
	}
	for _, selector := range SelectorsOf(cutFacet).Selectors() {
		if err := d.state.InsertSelector(selector, d.cutFacet); err != nil {
			d.state.Abort()
			return nil, fmt.Errorf("failed to seed selector table: %w", err)
		}
	}
	if err := d.state.SetInitialized(); err != nil {
		d.state.Abort()
		return nil, fmt.Errorf("error while setting db to initialized: %w", err)
	}
	if err := d.state.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit genesis state: %w", err)
	}
	d.log.Info("diamond deployed", "owner", owner, "cutFacet", d.cutFacet)
	return d, nil
}

// Address is the stable identity of the diamond
func (d *Diamond) Address() ids.ShortID { return d.address }

// CutFacet is the address of the facet deployed at construction
func (d *Diamond) CutFacet() ids.ShortID { return d.cutFacet }

func (d *Diamond) Clock() *mockable.Clock { return d.clock }

// Deploy makes [f] callable at a fresh address. Deploying does not route any
// selector to the facet; that takes a cut.
func (d *Diamond) Deploy(f Facet) (ids.ShortID, error) {
	d.lock.Lock()
	defer d.lock.Unlock()

	addr, err := d.deploy(f)
	if err != nil {
		d.state.Abort()
		return ids.ShortEmpty, err
	}
	if err := d.state.Commit(); err != nil {
		return ids.ShortEmpty, fmt.Errorf("failed to commit deployment of %s: %w", f.Name(), err)
	}
	d.log.Info("facet deployed", "name", f.Name(), "address", addr)
	return addr, nil
}

func (d *Diamond) deploy(f Facet) (ids.ShortID, error) {
	nonce, err := d.state.IncrementNonce()
	if err != nil {
		return ids.ShortEmpty, err
	}
	return d.register(f, nonce)
}

// register compiles [f]'s dispatch table and stores it at the address derived
// from [nonce]
func (d *Diamond) register(f Facet, nonce uint64) (ids.ShortID, error) {
	functions := f.Functions()
	handlers := make(map[Selector]Handler, len(functions))
	for _, fn := range functions {
		selector := SelectorFromSignature(fn.Signature)
		if _, ok := handlers[selector]; ok {
			return ids.ShortEmpty, fmt.Errorf("%w: %s", errDuplicateSignature, fn.Signature)
		}
		handlers[selector] = fn.Handler
	}

	preimage := make([]byte, len(d.address)+wrappers.LongLen)
	copy(preimage, d.address[:])
	binary.BigEndian.PutUint64(preimage[len(d.address):], nonce)
	addr := ids.ShortID(hashing.ComputeHash160Array(hashing.ComputeHash256(preimage)))

	d.code[addr] = &deployedFacet{facet: f, handlers: handlers}
	return addr, nil
}

// FacetName returns the diagnostic name of the facet deployed at [addr]
func (d *Diamond) FacetName(addr ids.ShortID) (string, bool) {
	d.lock.Lock()
	defer d.lock.Unlock()

	code, ok := d.code[addr]
	if !ok {
		return "", false
	}
	return code.facet.Name(), true
}

// Call routes [input] to the facet holding its selector and executes it on
// behalf of [caller]. The call is atomic: if it fails, none of its writes are
// kept.
func (d *Diamond) Call(ctx context.Context, caller ids.ShortID, input []byte) ([]byte, error) {
	selector, args, err := SplitCalldata(input)
	if err != nil {
		return nil, err
	}
	return d.Dispatch(ctx, caller, selector, args)
}

// Dispatch executes the function [selector] with [args] on behalf of [caller]
func (d *Diamond) Dispatch(ctx context.Context, caller ids.ShortID, selector Selector, args []byte) ([]byte, error) {
	d.lock.Lock()
	defer d.lock.Unlock()

	result, err := d.dispatch(ctx, caller, selector, args)
	if err != nil {
		d.state.Abort()
		d.log.Debug("call reverted", "caller", caller, "selector", selector, "err", err)
		return nil, err
	}
	if err := d.state.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit call to %s: %w", selector, err)
	}
	return result, nil
}

func (d *Diamond) dispatch(ctx context.Context, caller ids.ShortID, selector Selector, args []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	facet, err := d.state.FacetFor(selector)
	switch {
	case err == database.ErrNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNoSuchSelector, selector)
	case err != nil:
		return nil, fmt.Errorf("failed to look up %s: %w", selector, err)
	}

	code, ok := d.code[facet]
	if !ok {
		return nil, fmt.Errorf("%w: %s routed for %s", ErrNoCode, facet, selector)
	}
	handler, ok := code.handlers[selector]
	if !ok {
		return nil, fmt.Errorf("%w: %s in %s", ErrNoSuchSelector, selector, code.facet.Name())
	}

	d.log.Debug("dispatching", "caller", caller, "selector", selector, "facet", code.facet.Name())
	call := &Call{
		ctx:     ctx,
		caller:  caller,
		diamond: d,
	}
	return handler(call, args)
}

// ApplyCutBatch submits [batch] through the routed diamondCut function
func (d *Diamond) ApplyCutBatch(ctx context.Context, caller ids.ShortID, batch *CutBatch) error {
	input, err := EncodeCall(DiamondCutSignature, batch)
	if err != nil {
		return err
	}
	_, err = d.Call(ctx, caller, input)
	return err
}

// Owner reads the current owner outside of any call
func (d *Diamond) Owner() (ids.ShortID, error) {
	d.lock.Lock()
	defer d.lock.Unlock()

	return d.state.GetOwner()
}

// FacetFor returns the facet routed for [selector], or
// [database.ErrNotFound]. Like the other table readers it waits for any call
// in flight, so it only observes committed state.
func (d *Diamond) FacetFor(selector Selector) (ids.ShortID, error) {
	d.lock.Lock()
	defer d.lock.Unlock()

	return d.state.FacetFor(selector)
}

// SelectorsOf returns the selectors routed to [facet]
func (d *Diamond) SelectorsOf(facet ids.ShortID) ([]Selector, error) {
	d.lock.Lock()
	defer d.lock.Unlock()

	return d.state.SelectorsOf(facet)
}

// FacetAddresses returns every facet holding at least one selector
func (d *Diamond) FacetAddresses() ([]ids.ShortID, error) {
	d.lock.Lock()
	defer d.lock.Unlock()

	return d.state.FacetAddresses()
}

// Close closes the underlying database
func (d *Diamond) Close() error {
	d.lock.Lock()
	defer d.lock.Unlock()

	return d.state.Close()
}
