// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"fmt"
	"time"
)

// SecondsPerDay is the length of a ledger day. Days start at multiples of it
// counted from the Unix epoch.
const SecondsPerDay = 24 * 60 * 60

// DayIndex returns the number of whole days between the epoch and [timestamp].
// [timestamp] must fall exactly on a day boundary.
func DayIndex(timestamp uint64) (uint64, error) {
	if timestamp%SecondsPerDay != 0 {
		return 0, fmt.Errorf("%w: %d is not a day boundary", ErrInvalidTimestamp, timestamp)
	}
	return timestamp / SecondsPerDay, nil
}

// DayTimestamp is the inverse of DayIndex
func DayTimestamp(day uint64) uint64 { return day * SecondsPerDay }

// Today returns the index of the day [t] falls in
func Today(t time.Time) uint64 {
	return uint64(t.Unix()) / SecondsPerDay
}

// Date returns the timestamp of midnight UTC on the given date
func Date(year int, month time.Month, day int) uint64 {
	return uint64(time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Unix())
}
