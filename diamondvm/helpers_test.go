// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package diamondvm

import (
	"context"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/stretchr/testify/require"
)

var (
	testOwner    = ids.ShortID{1}
	testStranger = ids.ShortID{2}

	counterNamespace = []byte("counter")
	counterKey       = []byte("value")

	errCounterFailure = errors.New("counter asked to fail")
)

// counterFacet keeps a single uint64 in its own storage namespace
type counterFacet struct {
	name string
	step uint64
}

func (f *counterFacet) Name() string { return f.name }

func (f *counterFacet) Functions() []Function {
	return []Function{
		{Signature: "increment()", Handler: f.increment},
		{Signature: "get()", Handler: counterGet},
		{Signature: "fail()", Handler: counterFail},
		{Signature: InitSignature, Handler: counterInit},
	}
}

func (f *counterFacet) increment(call *Call, _ []byte) ([]byte, error) {
	db := call.Storage(counterNamespace)
	v, err := readCounter(db)
	if err != nil {
		return nil, err
	}
	return nil, writeCounter(db, v+f.step)
}

func counterGet(call *Call, _ []byte) ([]byte, error) {
	v, err := readCounter(call.Storage(counterNamespace))
	if err != nil {
		return nil, err
	}
	out := make([]byte, 8)
	binary.BigEndian.PutUint64(out, v)
	return out, nil
}

// counterFail writes before failing so tests can check the write is dropped
func counterFail(call *Call, _ []byte) ([]byte, error) {
	if err := writeCounter(call.Storage(counterNamespace), 999); err != nil {
		return nil, err
	}
	return nil, errCounterFailure
}

type counterArgs struct {
	Value uint64 `serialize:"true"`
}

// counterInit sets the counter to the value packed in [args]
func counterInit(call *Call, args []byte) ([]byte, error) {
	v := counterArgs{}
	if err := Unpack(args, &v); err != nil {
		return nil, err
	}
	return nil, writeCounter(call.Storage(counterNamespace), v.Value)
}

func readCounter(db database.Database) (uint64, error) {
	b, err := db.Get(counterKey)
	switch {
	case err == database.ErrNotFound:
		return 0, nil
	case err != nil:
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

func writeCounter(db database.Database, v uint64) error {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return db.Put(counterKey, b)
}

func newTestDiamond(t *testing.T) *Diamond {
	d, err := New(memdb.New(), testOwner, nil)
	require.NoError(t, err)
	return d
}

// deployAndAdd deploys [f] and routes all of its selectors to it
func deployAndAdd(t *testing.T, d *Diamond, f Facet) ids.ShortID {
	addr, err := d.Deploy(f)
	require.NoError(t, err)
	require.NoError(t, d.ApplyCutBatch(context.Background(), testOwner, &CutBatch{
		Cuts: []FacetCut{{
			FacetAddress: addr,
			Action:       Add,
			Selectors:    SelectorsOf(f).Selectors(),
		}},
	}))
	return addr
}

func callCounter(t *testing.T, d *Diamond, signature string) ([]byte, error) {
	input, err := EncodeCall(signature, nil)
	require.NoError(t, err)
	return d.Call(context.Background(), testOwner, input)
}

func counterValue(t *testing.T, d *Diamond) uint64 {
	out, err := callCounter(t, d, "get()")
	require.NoError(t, err)
	return binary.BigEndian.Uint64(out)
}
