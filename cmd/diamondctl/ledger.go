// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ava-labs/diamondvm/service"
)

var ownerCmd = &cobra.Command{
	Use:   "owner",
	Short: "Print the owner of the diamond",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		owner, err := newClient().Owner(ctx)
		if err != nil {
			return err
		}
		fmt.Println(owner)
		return nil
	},
}

var transferOwnerCmd = &cobra.Command{
	Use:   "transfer-owner <address>",
	Short: "Hand ownership of the diamond to another address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		caller, err := sender()
		if err != nil {
			return err
		}
		newOwner, err := parseAddress(args[0])
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		return newClient().TransferOwnership(ctx, caller, newOwner)
	},
}

var priceCmd = &cobra.Command{
	Use:   "price",
	Short: "Read and record daily prices",
}

var priceSetCmd = &cobra.Command{
	Use:   "set <day> <price>",
	Short: "Record the price of a day",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		caller, err := sender()
		if err != nil {
			return err
		}
		day, err := parseTimestamp(args[0])
		if err != nil {
			return err
		}
		price, err := service.ParsePrice(args[1])
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		return newClient().SetDayPrice(ctx, caller, day, price)
	},
}

var priceGetCmd = &cobra.Command{
	Use:   "get <day>",
	Short: "Print the price of a day",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		day, err := parseTimestamp(args[0])
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		price, err := newClient().GetDayPrice(ctx, day)
		if err != nil {
			return err
		}
		fmt.Println(service.FormatPrice(price))
		return nil
	},
}

var priceAvgCmd = &cobra.Command{
	Use:   "avg <from day> <to day>",
	Short: "Print the average price over a range of days, both included",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		start, err := parseTimestamp(args[0])
		if err != nil {
			return err
		}
		end, err := parseTimestamp(args[1])
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		avg, err := newClient().GetAveragePrice(ctx, start, end)
		if err != nil {
			return err
		}
		fmt.Println(service.FormatPrice(avg))
		return nil
	},
}

var priceLastCmd = &cobra.Command{
	Use:   "last",
	Short: "Print the last recorded day",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		ts, err := newClient().GetLastTimestamp(ctx)
		if err != nil {
			return err
		}
		fmt.Println(formatTimestamp(ts))
		return nil
	},
}

var priceFirstCmd = &cobra.Command{
	Use:   "first",
	Short: "Print the first recorded day (TokenAvgPriceV2 and later)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		ts, err := newClient().GetFirstTimestamp(ctx)
		if err != nil {
			return err
		}
		fmt.Println(formatTimestamp(ts))
		return nil
	},
}

func init() {
	priceCmd.AddCommand(priceSetCmd, priceGetCmd, priceAvgCmd, priceLastCmd, priceFirstCmd)
}
