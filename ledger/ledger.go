// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"encoding/binary"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/utils/wrappers"
)

const (
	firstDayKey byte = iota
	lastDayKey
	pricePrefix
	sumPrefix

	wordLen = 32
)

// Ledger is an append-only record of one price per day.
//
// Days are appended strictly in order, so the recorded days always form one
// contiguous range [first, last]. Next to each price the ledger stores the sum
// of all prices up to and including that day, which makes any range average
// two reads and a division.
type Ledger struct {
	db database.Database
}

func New(db database.Database) *Ledger {
	return &Ledger{db: db}
}

// SetDayPrice records [price] for the day starting at [timestamp]. The first
// entry may be any day; every later one must be the day after the last.
func (l *Ledger) SetDayPrice(timestamp uint64, price *uint256.Int) error {
	day, err := DayIndex(timestamp)
	if err != nil {
		return err
	}

	sum := new(uint256.Int)
	last, ok, err := l.getDay(lastDayKey)
	switch {
	case err != nil:
		return err
	case !ok:
		if err := l.putDay(firstDayKey, day); err != nil {
			return err
		}
	case day != last+1:
		return fmt.Errorf("%w: got day %d, last recorded day is %d", ErrNonSequentialDay, day, last)
	default:
		prev, err := l.getWord(sumPrefix, last)
		if err != nil {
			return err
		}
		sum.Set(prev)
	}

	sum.Add(sum, price)
	if sum.Lt(price) {
		return ErrPriceOverflow
	}
	if err := l.putWord(pricePrefix, day, price); err != nil {
		return err
	}
	if err := l.putWord(sumPrefix, day, sum); err != nil {
		return err
	}
	return l.putDay(lastDayKey, day)
}

// GetDayPrice returns the price recorded for the day starting at [timestamp]
func (l *Ledger) GetDayPrice(timestamp uint64) (*uint256.Int, error) {
	day, err := DayIndex(timestamp)
	if err != nil {
		return nil, err
	}
	price, err := l.getWord(pricePrefix, day)
	if err == database.ErrNotFound {
		return nil, fmt.Errorf("%w: %d", ErrNoSuchDay, timestamp)
	}
	return price, err
}

// GetAveragePrice returns the floor of the mean price over the days from
// [from] to [to], both included.
func (l *Ledger) GetAveragePrice(from, to uint64) (*uint256.Int, error) {
	fromDay, err := DayIndex(from)
	if err != nil {
		return nil, err
	}
	toDay, err := DayIndex(to)
	if err != nil {
		return nil, err
	}
	if fromDay > toDay {
		return nil, fmt.Errorf("%w: %d > %d", ErrInvalidRange, from, to)
	}

	first, ok, err := l.getDay(firstDayKey)
	if err != nil {
		return nil, err
	}
	last, _, err := l.getDay(lastDayKey)
	if err != nil {
		return nil, err
	}
	if !ok || fromDay < first || toDay > last {
		return nil, fmt.Errorf("%w: range [%d, %d] outside recorded days", ErrNoSuchDay, from, to)
	}

	total, err := l.getWord(sumPrefix, toDay)
	if err != nil {
		return nil, err
	}
	if fromDay > first {
		before, err := l.getWord(sumPrefix, fromDay-1)
		if err != nil {
			return nil, err
		}
		total.Sub(total, before)
	}
	days := new(uint256.Int).SetUint64(toDay - fromDay + 1)
	return total.Div(total, days), nil
}

// LastTimestamp returns the timestamp of the last recorded day, or 0 if
// nothing was recorded yet
func (l *Ledger) LastTimestamp() (uint64, error) {
	last, _, err := l.getDay(lastDayKey)
	return DayTimestamp(last), err
}

// FirstTimestamp returns the timestamp of the first recorded day, or 0 if
// nothing was recorded yet
func (l *Ledger) FirstTimestamp() (uint64, error) {
	first, _, err := l.getDay(firstDayKey)
	return DayTimestamp(first), err
}

func (l *Ledger) getDay(key byte) (uint64, bool, error) {
	b, err := l.db.Get([]byte{key})
	switch {
	case err == database.ErrNotFound:
		return 0, false, nil
	case err != nil:
		return 0, false, fmt.Errorf("failed to read day marker %d: %w", key, err)
	case len(b) != wrappers.LongLen:
		return 0, false, fmt.Errorf("day marker %d has length %d", key, len(b))
	}
	return binary.BigEndian.Uint64(b), true, nil
}

func (l *Ledger) putDay(key byte, day uint64) error {
	b := make([]byte, wrappers.LongLen)
	binary.BigEndian.PutUint64(b, day)
	return l.db.Put([]byte{key}, b)
}

func (l *Ledger) getWord(prefix byte, day uint64) (*uint256.Int, error) {
	b, err := l.db.Get(dayKey(prefix, day))
	switch {
	case err == database.ErrNotFound:
		return nil, err
	case err != nil:
		return nil, fmt.Errorf("failed to read day %d: %w", day, err)
	case len(b) != wordLen:
		return nil, fmt.Errorf("day %d holds %d bytes", day, len(b))
	}
	return new(uint256.Int).SetBytes(b), nil
}

func (l *Ledger) putWord(prefix byte, day uint64, v *uint256.Int) error {
	word := v.Bytes32()
	if err := l.db.Put(dayKey(prefix, day), word[:]); err != nil {
		return fmt.Errorf("failed to write day %d: %w", day, err)
	}
	return nil
}

func dayKey(prefix byte, day uint64) []byte {
	key := make([]byte, 1+wrappers.LongLen)
	key[0] = prefix
	binary.BigEndian.PutUint64(key[1:], day)
	return key
}
