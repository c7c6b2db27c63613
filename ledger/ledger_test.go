// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/avalanchego/database/memdb"
)

func u(v uint64) *uint256.Int { return new(uint256.Int).SetUint64(v) }

func TestDayIndex(t *testing.T) {
	assert := assert.New(t)

	day, err := DayIndex(Date(2022, time.March, 31))
	assert.NoError(err)
	assert.Equal(uint64(19082), day)
	assert.Equal(Date(2022, time.March, 31), DayTimestamp(day))

	_, err = DayIndex(1234567890)
	assert.ErrorIs(err, ErrInvalidTimestamp)

	assert.Equal(day, Today(time.Unix(int64(Date(2022, time.March, 31))+32320, 0)))
}

func TestSetDayPriceOrdering(t *testing.T) {
	assert := assert.New(t)
	l := New(memdb.New())

	assert.ErrorIs(l.SetDayPrice(1234567890, u(111)), ErrInvalidTimestamp)

	assert.NoError(l.SetDayPrice(Date(2022, time.March, 31), u(222)))
	assert.ErrorIs(l.SetDayPrice(Date(2022, time.March, 31), u(222)), ErrNonSequentialDay)

	assert.NoError(l.SetDayPrice(Date(2022, time.April, 1), u(222)))
	assert.ErrorIs(l.SetDayPrice(Date(2022, time.March, 26), u(222)), ErrNonSequentialDay)
	assert.ErrorIs(l.SetDayPrice(Date(2022, time.April, 3), u(222)), ErrNonSequentialDay)

	assert.NoError(l.SetDayPrice(Date(2022, time.April, 2), u(1000)))
	price, err := l.GetDayPrice(Date(2022, time.April, 2))
	assert.NoError(err)
	assert.Equal(u(1000), price)

	first, err := l.FirstTimestamp()
	assert.NoError(err)
	assert.Equal(Date(2022, time.March, 31), first)
	last, err := l.LastTimestamp()
	assert.NoError(err)
	assert.Equal(Date(2022, time.April, 2), last)
}

func TestGetDayPriceErrors(t *testing.T) {
	assert := assert.New(t)
	l := New(memdb.New())

	_, err := l.GetDayPrice(Date(2022, time.March, 31))
	assert.ErrorIs(err, ErrNoSuchDay)
	_, err = l.GetDayPrice(Date(2022, time.March, 31) + 1)
	assert.ErrorIs(err, ErrInvalidTimestamp)

	last, err := l.LastTimestamp()
	assert.NoError(err)
	assert.Zero(last)
}

func TestGetAveragePrice(t *testing.T) {
	assert := assert.New(t)
	l := New(memdb.New())

	start := Date(2022, time.March, 31)
	prices := []uint64{222, 223, 1000, 7, 0, 5}
	for i, p := range prices {
		require.NoError(t, l.SetDayPrice(start+uint64(i)*SecondsPerDay, u(p)))
	}

	// every contiguous sub-range averages to the floor of its mean
	for i := range prices {
		for j := i; j < len(prices); j++ {
			var sum uint64
			for _, p := range prices[i : j+1] {
				sum += p
			}
			avg, err := l.GetAveragePrice(start+uint64(i)*SecondsPerDay, start+uint64(j)*SecondsPerDay)
			assert.NoError(err)
			assert.Equal(u(sum/uint64(j-i+1)), avg, "range [%d, %d]", i, j)
		}
	}

	avg, err := l.GetAveragePrice(start, start)
	assert.NoError(err)
	assert.Equal(u(222), avg)
	avg, err = l.GetAveragePrice(start, start+SecondsPerDay)
	assert.NoError(err)
	assert.Equal(u(222), avg) // floor(445 / 2)

	_, err = l.GetAveragePrice(start+SecondsPerDay, start)
	assert.ErrorIs(err, ErrInvalidRange)
	_, err = l.GetAveragePrice(start+1, start+SecondsPerDay)
	assert.ErrorIs(err, ErrInvalidTimestamp)
	_, err = l.GetAveragePrice(start-SecondsPerDay, start)
	assert.ErrorIs(err, ErrNoSuchDay)
	_, err = l.GetAveragePrice(start, start+uint64(len(prices))*SecondsPerDay)
	assert.ErrorIs(err, ErrNoSuchDay)

	_, err = New(memdb.New()).GetAveragePrice(start, start)
	assert.ErrorIs(err, ErrNoSuchDay)
}

func TestAverageOfLargePrices(t *testing.T) {
	assert := assert.New(t)
	l := New(memdb.New())

	half := new(uint256.Int).Lsh(u(1), 254)
	start := Date(2022, time.May, 1)
	assert.NoError(l.SetDayPrice(start, half))
	assert.NoError(l.SetDayPrice(start+SecondsPerDay, half))
	avg, err := l.GetAveragePrice(start, start+SecondsPerDay)
	assert.NoError(err)
	assert.Equal(half, avg)

	max := new(uint256.Int).Not(u(0))
	assert.ErrorIs(l.SetDayPrice(start+2*SecondsPerDay, max), ErrPriceOverflow)
}
