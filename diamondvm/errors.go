// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package diamondvm

import "errors"

var (
	ErrUnauthorized                 = errors.New("caller is not the owner")
	ErrZeroAddress                  = errors.New("address must not be the zero address")
	ErrSelectorAlreadyExists        = errors.New("selector already exists")
	ErrSelectorNotFound             = errors.New("selector not found")
	ErrNoOpReplace                  = errors.New("cannot replace a function with the same facet")
	ErrEmptyCut                     = errors.New("no selectors in facet cut")
	ErrRemoveFacetAddressMustBeZero = errors.New("remove facet address must be the zero address")
	ErrUnknownCutAction             = errors.New("unknown facet cut action")
	ErrInvalidInit                  = errors.New("init address and calldata must be both set or both empty")
	ErrInitializationFailed         = errors.New("initialization call failed")
	ErrNoSuchSelector               = errors.New("function does not exist")
	ErrNoCode                       = errors.New("no facet deployed at address")
	ErrShortCalldata                = errors.New("calldata shorter than a selector")
)
