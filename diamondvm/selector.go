// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package diamondvm

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"
)

// SelectorLen is the width of a function selector in bytes
const SelectorLen = 4

// InitSignature is reserved for initializers. Functions with this signature are
// only reachable through the init call of a cut and never enter the selector table.
const InitSignature = "init(bytes)"

var errBadSelector = errors.New("selector must be 0x followed by 8 hex characters")

// Selector identifies a callable function. It is the first 4 bytes of the
// Keccak-256 hash of the function's normalized signature.
type Selector [SelectorLen]byte

// SelectorFromSignature derives the selector of [signature], for example
// "transfer(address,uint256)" -> 0xa9059cbb
func SelectorFromSignature(signature string) Selector {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(signature))
	var s Selector
	copy(s[:], h.Sum(nil))
	return s
}

// ParseSelector parses the 0x-prefixed hex form returned by [Selector.String]
func ParseSelector(str string) (Selector, error) {
	var s Selector
	if !strings.HasPrefix(str, "0x") || len(str) != 2+2*SelectorLen {
		return s, fmt.Errorf("%w: %q", errBadSelector, str)
	}
	if _, err := hex.Decode(s[:], []byte(str[2:])); err != nil {
		return s, fmt.Errorf("%w: %q", errBadSelector, str)
	}
	return s, nil
}

func (s Selector) String() string { return "0x" + hex.EncodeToString(s[:]) }

// MarshalText implements encoding.TextMarshaler so selectors read naturally in JSON
func (s Selector) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Selector) UnmarshalText(text []byte) error {
	parsed, err := ParseSelector(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// InterfaceID returns the ERC-165 identifier of a set of selectors, the XOR of all of them.
func InterfaceID(selectors ...Selector) Selector {
	var id Selector
	for _, s := range selectors {
		for i := range id {
			id[i] ^= s[i]
		}
	}
	return id
}

// SelectorList is the set of selectors collected from a facet's interface.
type SelectorList struct {
	selectors []Selector
}

// SelectorsOf collects the selectors of every function [f] exposes, skipping the
// reserved [InitSignature].
func SelectorsOf(f Facet) *SelectorList {
	functions := f.Functions()
	l := &SelectorList{selectors: make([]Selector, 0, len(functions))}
	for _, fn := range functions {
		if fn.Signature == InitSignature {
			continue
		}
		l.selectors = append(l.selectors, SelectorFromSignature(fn.Signature))
	}
	return l
}

// Remove drops the selectors of [signatures] from the list
func (l *SelectorList) Remove(signatures ...string) *SelectorList {
	drop := selectorSet(signatures)
	kept := l.selectors[:0]
	for _, s := range l.selectors {
		if _, ok := drop[s]; !ok {
			kept = append(kept, s)
		}
	}
	l.selectors = kept
	return l
}

// Get returns a new list holding only the selectors of [signatures]
func (l *SelectorList) Get(signatures ...string) *SelectorList {
	keep := selectorSet(signatures)
	picked := &SelectorList{}
	for _, s := range l.selectors {
		if _, ok := keep[s]; ok {
			picked.selectors = append(picked.selectors, s)
		}
	}
	return picked
}

// Selectors returns a copy of the collected selectors
func (l *SelectorList) Selectors() []Selector {
	return append([]Selector(nil), l.selectors...)
}

func selectorSet(signatures []string) map[Selector]struct{} {
	set := make(map[Selector]struct{}, len(signatures))
	for _, sig := range signatures {
		set[SelectorFromSignature(sig)] = struct{}{}
	}
	return set
}
