// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package deployment

import (
	"context"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/diamondvm/diamondvm"
	"github.com/ava-labs/diamondvm/facets"
	"github.com/ava-labs/diamondvm/ledger"
)

var (
	testOwner    = ids.ShortID{1}
	testStranger = ids.ShortID{2}
)

func deployed(t *testing.T) (*diamondvm.Diamond, *Result) {
	d, err := diamondvm.New(memdb.New(), testOwner, nil)
	require.NoError(t, err)
	result, err := Deploy(context.Background(), d, testOwner)
	require.NoError(t, err)
	return d, result
}

func TestCatalog(t *testing.T) {
	assert := assert.New(t)

	assert.Equal([]string{
		DiamondInit,
		DiamondLoupeFacet,
		TokenAvgPriceV1,
		TokenAvgPriceV2,
		TokenAvgPriceV3,
	}, Names())

	for _, name := range Names() {
		f, err := NewFacet(name)
		assert.NoError(err)
		assert.Equal(name, f.Name())
	}

	_, err := NewFacet("OwnershipFacet")
	assert.ErrorIs(err, errUnknownFacet)
}

func TestDeployLayout(t *testing.T) {
	assert := assert.New(t)
	d, result := deployed(t)

	addrs, err := d.FacetAddresses()
	assert.NoError(err)
	assert.Equal([]ids.ShortID{
		result.CutFacet,
		result.Facets[DiamondLoupeFacet],
		result.Facets[TokenAvgPriceV1],
	}, addrs)

	for i, f := range []diamondvm.Facet{
		&diamondvm.DiamondCutFacet{},
		&facets.DiamondLoupeFacet{},
		ledger.NewFacet(ledger.V1),
	} {
		selectors, err := d.SelectorsOf(addrs[i])
		assert.NoError(err)
		assert.ElementsMatch(diamondvm.SelectorsOf(f).Selectors(), selectors, f.Name())
	}

	owner, err := ledger.NewClient(d).Owner(context.Background())
	assert.NoError(err)
	assert.Equal(testOwner, owner)
}

func TestDeployRunsInit(t *testing.T) {
	d, _ := deployed(t)

	input, err := diamondvm.EncodeCall(facets.SupportsInterfaceSignature, &facets.SelectorArgs{
		Selector: facets.DiamondLoupeInterfaceID,
	})
	require.NoError(t, err)
	out, err := d.Call(context.Background(), ids.ShortEmpty, input)
	require.NoError(t, err)
	reply := facets.BoolReply{}
	require.NoError(t, diamondvm.Unpack(out, &reply))
	assert.True(t, reply.Value)
}

func TestDeployRequiresOwner(t *testing.T) {
	d, err := diamondvm.New(memdb.New(), testOwner, nil)
	require.NoError(t, err)
	_, err = Deploy(context.Background(), d, testStranger)
	assert.ErrorIs(t, err, diamondvm.ErrUnauthorized)

	addrs, err := d.FacetAddresses()
	assert.NoError(t, err)
	assert.Len(t, addrs, 1)
}

func TestUpgradeChain(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	d, result := deployed(t)
	c := ledger.NewClient(d)

	start := ledger.Date(2022, time.April, 1)
	for i := uint64(0); i < 30; i++ {
		require.NoError(t, c.SetDayPrice(ctx, testOwner, start+i*ledger.SecondsPerDay, price(1000)))
	}
	before, err := c.GetLastTimestamp(ctx)
	require.NoError(t, err)

	v2, err := Upgrade(ctx, d, testOwner, result.Facets[TokenAvgPriceV1], TokenAvgPriceV2)
	require.NoError(t, err)

	after, err := c.GetLastTimestamp(ctx)
	assert.NoError(err)
	assert.Equal(before, after)
	first, err := c.GetFirstTimestamp(ctx)
	assert.NoError(err)
	assert.Equal(start, first)

	addrs, err := d.FacetAddresses()
	assert.NoError(err)
	assert.Len(addrs, 3)
	assert.Contains(addrs, v2)
	assert.NotContains(addrs, result.Facets[TokenAvgPriceV1])

	_, err = Upgrade(ctx, d, testStranger, v2, TokenAvgPriceV3)
	assert.ErrorIs(err, diamondvm.ErrUnauthorized)

	_, err = Upgrade(ctx, d, testOwner, result.Facets[TokenAvgPriceV1], TokenAvgPriceV3)
	assert.ErrorIs(err, diamondvm.ErrEmptyCut)

	v3, err := Upgrade(ctx, d, testOwner, v2, TokenAvgPriceV3)
	require.NoError(t, err)
	assert.NotEqual(v2, v3)

	d.Clock().Set(time.Unix(int64(ledger.Date(2022, time.May, 1))+32320, 0))
	assert.ErrorIs(c.SetDayPrice(ctx, testOwner, ledger.Date(2022, time.May, 2), price(100)), ledger.ErrNotCurrentDay)
}

func price(v uint64) *uint256.Int { return new(uint256.Int).SetUint64(v) }
