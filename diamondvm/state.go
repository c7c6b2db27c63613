// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package diamondvm

import (
	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/prefixdb"
	"github.com/ava-labs/avalanchego/database/versiondb"
)

var (
	// These are prefixes for db keys.
	// It's important to set different prefixes for each separate database objects.
	singletonStatePrefix = []byte("singleton")
	selectorTablePrefix  = []byte("selectors")
	storagePrefix        = []byte("storage")

	_ State = &state{}
)

// State is a wrapper around SingletonState and SelectorTable.
// State also exposes the storage shared by all facets and the methods needed
// for managing database commits and close.
//
// Writes are buffered until Commit. Abort throws away everything written since
// the last Commit, which is what makes a call all-or-nothing.
type State interface {
	SingletonState
	SelectorTable

	// Storage is the key space facets write into
	Storage() database.Database

	Commit() error
	Abort()
	Close() error
}

type state struct {
	SingletonState
	SelectorTable

	storage database.Database
	baseDB  *versiondb.Database
}

func NewState(db database.Database) State {
	// create a new baseDB
	baseDB := versiondb.New(db)

	// create a prefixed "singletonDB" from baseDB
	singletonDB := prefixdb.New(singletonStatePrefix, baseDB)
	// create a prefixed "selectorDB" from baseDB
	selectorDB := prefixdb.New(selectorTablePrefix, baseDB)

	// return state with created sub state components
	return &state{
		SingletonState: NewSingletonState(singletonDB),
		SelectorTable:  NewSelectorTable(selectorDB),
		storage:        prefixdb.New(storagePrefix, baseDB),
		baseDB:         baseDB,
	}
}

func (s *state) Storage() database.Database { return s.storage }

// Commit commits pending operations to baseDB
func (s *state) Commit() error {
	return s.baseDB.Commit()
}

// Abort drops pending operations and any cached view of them
func (s *state) Abort() {
	s.baseDB.Abort()
	s.SelectorTable.ClearCache()
}

// Close closes the underlying base database
func (s *state) Close() error {
	return s.baseDB.Close()
}
