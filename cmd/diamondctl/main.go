// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// diamondctl talks to a diamondvm node over JSON-RPC.
package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/diamondvm/client"
	"github.com/ava-labs/diamondvm/ledger"
)

var errMissingFrom = errors.New("--from is required")

var (
	endpoint string
	from     string
	timeout  time.Duration
)

var rootCmd = &cobra.Command{
	Use:           "diamondctl",
	Short:         "Inspect and drive a diamondvm node",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&endpoint, "endpoint", "http://127.0.0.1:9650", "base URI of the node")
	rootCmd.PersistentFlags().StringVar(&from, "from", "", "Address the calls are made on behalf of")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Timeout of each request")

	rootCmd.AddCommand(
		facetsCmd,
		selectorCmd,
		supportsCmd,
		deployCmd,
		upgradeCmd,
		ownerCmd,
		transferOwnerCmd,
		priceCmd,
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newClient() client.Client {
	return client.New(endpoint)
}

// sender parses --from
func sender() (ids.ShortID, error) {
	if from == "" {
		return ids.ShortEmpty, errMissingFrom
	}
	return parseAddress(from)
}

func parseAddress(str string) (ids.ShortID, error) {
	addr, err := ids.ShortFromString(str)
	if err != nil {
		return ids.ShortEmpty, fmt.Errorf("invalid address %q: %w", str, err)
	}
	return addr, nil
}

// parseTimestamp accepts a UTC date as YYYY-MM-DD or unix seconds
func parseTimestamp(str string) (uint64, error) {
	if t, err := time.Parse("2006-01-02", str); err == nil {
		return ledger.Date(t.Year(), t.Month(), t.Day()), nil
	}
	ts, err := strconv.ParseUint(str, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid timestamp %q: want YYYY-MM-DD or unix seconds", str)
	}
	return ts, nil
}

func formatTimestamp(ts uint64) string {
	if ts == 0 {
		return "0"
	}
	return fmt.Sprintf("%d (%s)", ts, time.Unix(int64(ts), 0).UTC().Format("2006-01-02"))
}
