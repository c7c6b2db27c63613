// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package diamondvm

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/utils/wrappers"
)

const (
	setLenKey byte = iota
	setMemberKey
	setPositionKey
)

var errCorruptSet = errors.New("ordered set index is inconsistent")

// orderedSet stores a set of byte strings in insertion order. Removal moves the
// last member into the freed position, so members stay densely indexed.
//
// Layout:
//
//	[setLenKey]                -> number of members
//	[setMemberKey, index]      -> member
//	[setPositionKey, member]   -> index
type orderedSet struct {
	db database.Database
}

func newOrderedSet(db database.Database) *orderedSet {
	return &orderedSet{db: db}
}

func (s *orderedSet) Len() (uint32, error) {
	b, err := s.db.Get([]byte{setLenKey})
	switch {
	case err == database.ErrNotFound:
		return 0, nil
	case err != nil:
		return 0, err
	case len(b) != wrappers.IntLen:
		return 0, errCorruptSet
	}
	return binary.BigEndian.Uint32(b), nil
}

func (s *orderedSet) Contains(member []byte) (bool, error) {
	return s.db.Has(positionKey(member))
}

// Add appends [member]. It returns false if [member] was already present.
func (s *orderedSet) Add(member []byte) (bool, error) {
	has, err := s.Contains(member)
	if err != nil || has {
		return false, err
	}
	n, err := s.Len()
	if err != nil {
		return false, err
	}
	if err := s.db.Put(memberKey(n), member); err != nil {
		return false, err
	}
	if err := s.db.Put(positionKey(member), uint32Bytes(n)); err != nil {
		return false, err
	}
	return true, s.setLen(n + 1)
}

// Remove deletes [member]. It returns false if [member] was not present.
func (s *orderedSet) Remove(member []byte) (bool, error) {
	posBytes, err := s.db.Get(positionKey(member))
	switch {
	case err == database.ErrNotFound:
		return false, nil
	case err != nil:
		return false, err
	case len(posBytes) != wrappers.IntLen:
		return false, errCorruptSet
	}
	pos := binary.BigEndian.Uint32(posBytes)

	n, err := s.Len()
	if err != nil {
		return false, err
	}
	if n == 0 || pos >= n {
		return false, fmt.Errorf("%w: position %d of %d", errCorruptSet, pos, n)
	}
	last := n - 1
	if pos != last {
		lastMember, err := s.db.Get(memberKey(last))
		if err != nil {
			return false, fmt.Errorf("failed to read member %d: %w", last, err)
		}
		if err := s.db.Put(memberKey(pos), lastMember); err != nil {
			return false, err
		}
		if err := s.db.Put(positionKey(lastMember), posBytes); err != nil {
			return false, err
		}
	}
	if err := s.db.Delete(memberKey(last)); err != nil {
		return false, err
	}
	if err := s.db.Delete(positionKey(member)); err != nil {
		return false, err
	}
	return true, s.setLen(last)
}

// Members returns every member in index order
func (s *orderedSet) Members() ([][]byte, error) {
	n, err := s.Len()
	if err != nil {
		return nil, err
	}
	members := make([][]byte, 0, n)
	for i := uint32(0); i < n; i++ {
		m, err := s.db.Get(memberKey(i))
		if err != nil {
			return nil, fmt.Errorf("failed to read member %d: %w", i, err)
		}
		members = append(members, m)
	}
	return members, nil
}

func (s *orderedSet) setLen(n uint32) error {
	if n == 0 {
		return s.db.Delete([]byte{setLenKey})
	}
	return s.db.Put([]byte{setLenKey}, uint32Bytes(n))
}

func memberKey(i uint32) []byte {
	return append([]byte{setMemberKey}, uint32Bytes(i)...)
}

func positionKey(member []byte) []byte {
	return append([]byte{setPositionKey}, member...)
}

func uint32Bytes(v uint32) []byte {
	b := make([]byte, wrappers.IntLen)
	binary.BigEndian.PutUint32(b, v)
	return b
}
