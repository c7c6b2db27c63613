// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/diamondvm/ledger"
)

func TestParseTimestamp(t *testing.T) {
	assert := assert.New(t)

	ts, err := parseTimestamp("2022-03-31")
	assert.NoError(err)
	assert.Equal(ledger.Date(2022, time.March, 31), ts)

	ts, err = parseTimestamp("1648684800")
	assert.NoError(err)
	assert.Equal(uint64(1648684800), ts)

	_, err = parseTimestamp("yesterday")
	assert.Error(err)

	assert.Equal("1648684800 (2022-03-31)", formatTimestamp(1648684800))
}

func TestSender(t *testing.T) {
	assert := assert.New(t)

	from = ""
	_, err := sender()
	assert.Error(err)

	want := ids.ShortID{7}
	from = want.String()
	got, err := sender()
	assert.NoError(err)
	assert.Equal(want, got)
	from = ""
}

func TestCommandTree(t *testing.T) {
	assert := assert.New(t)

	cmd, _, err := rootCmd.Find([]string{"price", "avg"})
	assert.NoError(err)
	assert.Equal(priceAvgCmd, cmd)

	cmd, _, err = rootCmd.Find([]string{"transfer-owner"})
	assert.NoError(err)
	assert.Equal(transferOwnerCmd, cmd)
}
