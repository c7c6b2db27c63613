// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package diamondvm

import (
	"encoding/binary"
	"fmt"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/wrappers"
)

const (
	IsInitializedKey byte = iota
	OwnerKey
	NonceKey
	AddressKey
)

var (
	isInitializedKey = []byte{IsInitializedKey}
	ownerKey         = []byte{OwnerKey}
	nonceKey         = []byte{NonceKey}
	addressKey       = []byte{AddressKey}

	_ SingletonState = (*singletonState)(nil)
)

// SingletonState is a thin wrapper around a database to provide serialization
// and de-serialization of the diamond's scalar records: the initialization
// status, the owner and the deployment nonce.
type SingletonState interface {
	IsInitialized() (bool, error)
	SetInitialized() error

	GetOwner() (ids.ShortID, error)
	SetOwner(owner ids.ShortID) error

	// GetAddress returns the address the diamond was created with. Facet
	// addresses are derived from it, so it must not change across restarts.
	GetAddress() (ids.ShortID, error)
	SetAddress(address ids.ShortID) error

	// IncrementNonce returns the current deployment nonce and stores its successor
	IncrementNonce() (uint64, error)
}

type singletonState struct {
	singletonDB database.Database
}

func NewSingletonState(db database.Database) SingletonState {
	return &singletonState{
		singletonDB: db,
	}
}

func (s *singletonState) IsInitialized() (bool, error) {
	return s.singletonDB.Has(isInitializedKey)
}

func (s *singletonState) SetInitialized() error {
	return s.singletonDB.Put(isInitializedKey, nil)
}

func (s *singletonState) GetOwner() (ids.ShortID, error) {
	ownerBytes, err := s.singletonDB.Get(ownerKey)
	if err != nil {
		return ids.ShortEmpty, fmt.Errorf("failed to get owner: %w", err)
	}
	return ids.ToShortID(ownerBytes)
}

func (s *singletonState) SetOwner(owner ids.ShortID) error {
	return s.singletonDB.Put(ownerKey, owner[:])
}

func (s *singletonState) GetAddress() (ids.ShortID, error) {
	addressBytes, err := s.singletonDB.Get(addressKey)
	if err != nil {
		return ids.ShortEmpty, fmt.Errorf("failed to get diamond address: %w", err)
	}
	return ids.ToShortID(addressBytes)
}

func (s *singletonState) SetAddress(address ids.ShortID) error {
	return s.singletonDB.Put(addressKey, address[:])
}

func (s *singletonState) IncrementNonce() (uint64, error) {
	var nonce uint64
	nonceBytes, err := s.singletonDB.Get(nonceKey)
	switch {
	case err == database.ErrNotFound:
	case err != nil:
		return 0, fmt.Errorf("failed to get nonce: %w", err)
	case len(nonceBytes) != wrappers.LongLen:
		return 0, fmt.Errorf("stored nonce has length %d", len(nonceBytes))
	default:
		nonce = binary.BigEndian.Uint64(nonceBytes)
	}

	next := make([]byte, wrappers.LongLen)
	binary.BigEndian.PutUint64(next, nonce+1)
	return nonce, s.singletonDB.Put(nonceKey, next)
}
