// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/diamondvm/diamondvm"
)

var (
	testOwner    = ids.ShortID{1}
	testStranger = ids.ShortID{2}
)

// newLedgerDiamond returns a diamond with [version] of the ledger facet cut in
func newLedgerDiamond(t *testing.T, version Version) (*diamondvm.Diamond, ids.ShortID) {
	d, err := diamondvm.New(memdb.New(), testOwner, nil)
	require.NoError(t, err)
	addr := cutIn(t, d, NewFacet(version))
	return d, addr
}

func cutIn(t *testing.T, d *diamondvm.Diamond, f *Facet) ids.ShortID {
	addr, err := d.Deploy(f)
	require.NoError(t, err)
	require.NoError(t, d.ApplyCutBatch(context.Background(), testOwner, &diamondvm.CutBatch{
		Cuts: []diamondvm.FacetCut{{
			FacetAddress: addr,
			Action:       diamondvm.Add,
			Selectors:    diamondvm.SelectorsOf(f).Selectors(),
		}},
	}))
	return addr
}

func TestFacetScenario(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	d, _ := newLedgerDiamond(t, V1)
	c := NewClient(d)

	assert.NoError(c.SetDayPrice(ctx, testOwner, Date(2022, time.March, 31), u(222)))
	assert.ErrorIs(c.SetDayPrice(ctx, testOwner, Date(2022, time.March, 31), u(222)), ErrNonSequentialDay)
	assert.NoError(c.SetDayPrice(ctx, testOwner, Date(2022, time.April, 1), u(222)))
	assert.ErrorIs(c.SetDayPrice(ctx, testOwner, Date(2022, time.March, 26), u(222)), ErrNonSequentialDay)
	assert.NoError(c.SetDayPrice(ctx, testOwner, Date(2022, time.April, 2), u(1000)))

	avg, err := c.GetAveragePrice(ctx, Date(2022, time.April, 1), Date(2022, time.April, 1))
	assert.NoError(err)
	assert.Equal(u(222), avg)
	avg, err = c.GetAveragePrice(ctx, Date(2022, time.April, 1), Date(2022, time.April, 2))
	assert.NoError(err)
	assert.Equal(u(611), avg)

	price, err := c.GetDayPrice(ctx, Date(2022, time.April, 2))
	assert.NoError(err)
	assert.Equal(u(1000), price)

	last, err := c.GetLastTimestamp(ctx)
	assert.NoError(err)
	assert.Equal(Date(2022, time.April, 2), last)

	assert.ErrorIs(c.SetDayPrice(ctx, testOwner, 1234567890, u(1)), ErrInvalidTimestamp)
}

func TestFacetMonthlyAverage(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	d, _ := newLedgerDiamond(t, V1)
	c := NewClient(d)

	start := Date(2022, time.May, 1)
	var sum uint64
	for i := uint64(0); i < 31; i++ {
		price := 100 + i*7
		sum += price
		require.NoError(t, c.SetDayPrice(ctx, testOwner, start+i*SecondsPerDay, u(price)))
	}
	avg, err := c.GetAveragePrice(ctx, start, Date(2022, time.May, 31))
	assert.NoError(err)
	assert.Equal(u(sum/31), avg)
}

func TestFacetOwnership(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	d, _ := newLedgerDiamond(t, V1)
	c := NewClient(d)

	assert.ErrorIs(c.SetDayPrice(ctx, testStranger, Date(2022, time.March, 31), u(1)), diamondvm.ErrUnauthorized)
	assert.ErrorIs(c.TransferOwnership(ctx, testStranger, testStranger), diamondvm.ErrUnauthorized)

	assert.NoError(c.TransferOwnership(ctx, testOwner, testStranger))
	current, err := c.Owner(ctx)
	assert.NoError(err)
	assert.Equal(testStranger, current)

	assert.ErrorIs(c.SetDayPrice(ctx, testOwner, Date(2022, time.March, 31), u(1)), diamondvm.ErrUnauthorized)
	assert.NoError(c.SetDayPrice(ctx, testStranger, Date(2022, time.March, 31), u(1)))
}

func TestFacetUpgradeKeepsPrices(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	d, v1 := newLedgerDiamond(t, V1)
	c := NewClient(d)

	require.NoError(t, c.SetDayPrice(ctx, testOwner, Date(2022, time.March, 31), u(222)))
	_, err := c.GetFirstTimestamp(ctx)
	assert.ErrorIs(err, diamondvm.ErrNoSuchSelector)

	v2 := NewFacet(V2)
	v2Addr, err := d.Deploy(v2)
	require.NoError(t, err)
	require.NoError(t, d.ApplyCutBatch(ctx, testOwner, &diamondvm.CutBatch{
		Cuts: []diamondvm.FacetCut{
			{
				Action:    diamondvm.Remove,
				Selectors: diamondvm.SelectorsOf(NewFacet(V1)).Selectors(),
			},
			{
				FacetAddress: v2Addr,
				Action:       diamondvm.Add,
				Selectors:    diamondvm.SelectorsOf(v2).Selectors(),
			},
		},
	}))

	facets, err := d.FacetAddresses()
	assert.NoError(err)
	assert.NotContains(facets, v1)
	assert.Contains(facets, v2Addr)

	last, err := c.GetLastTimestamp(ctx)
	assert.NoError(err)
	assert.Equal(Date(2022, time.March, 31), last)
	first, err := c.GetFirstTimestamp(ctx)
	assert.NoError(err)
	assert.Equal(Date(2022, time.March, 31), first)

	assert.NoError(c.SetDayPrice(ctx, testOwner, Date(2022, time.April, 1), u(224)))
	avg, err := c.GetAveragePrice(ctx, Date(2022, time.March, 31), Date(2022, time.April, 1))
	assert.NoError(err)
	assert.Equal(u(223), avg)
}

func TestFacetV3OnlyAcceptsToday(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	d, _ := newLedgerDiamond(t, V3)
	c := NewClient(d)

	d.Clock().Set(time.Unix(int64(Date(2022, time.May, 1))+32320, 0))

	err := c.SetDayPrice(ctx, testOwner, Date(2022, time.May, 2), u(10))
	assert.ErrorIs(err, ErrNotCurrentDay)
	assert.ErrorIs(c.SetDayPrice(ctx, testOwner, Date(2022, time.April, 30), u(10)), ErrNotCurrentDay)
	assert.NoError(c.SetDayPrice(ctx, testOwner, Date(2022, time.May, 1), u(10)))

	d.Clock().Set(time.Unix(int64(Date(2022, time.May, 2)), 0))
	assert.NoError(c.SetDayPrice(ctx, testOwner, Date(2022, time.May, 2), u(20)))

	avg, err := c.GetAveragePrice(ctx, Date(2022, time.May, 1), Date(2022, time.May, 2))
	assert.NoError(err)
	assert.Equal(u(15), avg)
}

func TestFacetNames(t *testing.T) {
	assert := assert.New(t)
	assert.Equal("TokenAvgPriceV1", NewFacet(V1).Name())
	assert.Equal("TokenAvgPriceV3", NewFacet(V3).Name())
	assert.Len(NewFacet(V1).Functions(), 6)
	assert.Len(NewFacet(V2).Functions(), 7)
}
