// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package diamondvm

import (
	"context"
	"fmt"
	"time"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/prefixdb"
	"github.com/ava-labs/avalanchego/ids"
)

// Handler executes one function of a facet. [args] is the calldata with the
// selector stripped off. Returning an error reverts the whole call.
type Handler func(call *Call, args []byte) ([]byte, error)

// Function binds a signature to the code that executes it
type Function struct {
	Signature string
	Handler   Handler
}

// Facet is a unit of code that can be deployed and routed to by the diamond.
// Facets are stateless: all state lives in the diamond and is reached through
// the [Call] handed to each handler.
type Facet interface {
	// Name is diagnostic only
	Name() string
	Functions() []Function
}

// Call is the execution context of a function running inside the diamond.
// It plays the role of a delegate call: the facet's code runs, but every read
// and write goes to the diamond's storage.
type Call struct {
	ctx     context.Context
	caller  ids.ShortID
	diamond *Diamond
}

func (c *Call) Context() context.Context { return c.ctx }

// Caller is the address that issued the outermost call
func (c *Call) Caller() ids.ShortID { return c.caller }

// Self is the address of the diamond the code is executing in
func (c *Call) Self() ids.ShortID { return c.diamond.address }

// Timestamp is the time of the block this call executes in
func (c *Call) Timestamp() time.Time { return c.diamond.clock.Time() }

// Table exposes the diamond's selector table
func (c *Call) Table() SelectorTable { return c.diamond.state }

// Storage returns the slice of the diamond's storage reserved for [namespace].
// Facets that share a namespace share state, which is how a replaced facet
// keeps reading the data its predecessor wrote.
func (c *Call) Storage(namespace []byte) database.Database {
	return prefixdb.New(namespace, c.diamond.state.Storage())
}

// Owner returns the current owner of the diamond
func (c *Call) Owner() (ids.ShortID, error) { return c.diamond.state.GetOwner() }

// RequireOwner fails with [ErrUnauthorized] unless the caller is the owner
func (c *Call) RequireOwner() error {
	owner, err := c.Owner()
	if err != nil {
		return err
	}
	if c.caller != owner {
		return fmt.Errorf("%w: %s is not the owner", ErrUnauthorized, c.caller)
	}
	return nil
}

// TransferOwnership hands the diamond to [newOwner]. Only the current owner may do so.
func (c *Call) TransferOwnership(newOwner ids.ShortID) error {
	if err := c.RequireOwner(); err != nil {
		return err
	}
	if newOwner == ids.ShortEmpty {
		return fmt.Errorf("%w: new owner", ErrZeroAddress)
	}
	if err := c.diamond.state.SetOwner(newOwner); err != nil {
		return err
	}
	c.diamond.log.Info("ownership transferred", "from", c.caller, "to", newOwner)
	return nil
}

// HasCode reports whether a facet is deployed at [addr]
func (c *Call) HasCode(addr ids.ShortID) bool {
	_, ok := c.diamond.code[addr]
	return ok
}

// Delegate executes [input] against the code deployed at [addr] with this
// call's caller and storage.
func (c *Call) Delegate(addr ids.ShortID, input []byte) ([]byte, error) {
	selector, args, err := SplitCalldata(input)
	if err != nil {
		return nil, err
	}
	code, ok := c.diamond.code[addr]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoCode, addr)
	}
	handler, ok := code.handlers[selector]
	if !ok {
		return nil, fmt.Errorf("%w: %s in %s", ErrNoSuchSelector, selector, code.facet.Name())
	}
	return handler(c, args)
}
