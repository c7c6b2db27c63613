// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ava-labs/diamondvm/deployment"
	"github.com/ava-labs/diamondvm/diamondvm"
)

var facetsCmd = &cobra.Command{
	Use:   "facets",
	Short: "List the facets of the diamond and their selectors",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		entries, err := newClient().Facets(ctx)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tADDRESS\tSELECTORS")
		for _, entry := range entries {
			fmt.Fprintf(w, "%s\t%s\t%v\n", entry.Name, entry.Address, entry.Selectors)
		}
		return w.Flush()
	},
}

var selectorCmd = &cobra.Command{
	Use:   "selector <signature>...",
	Short: "Print the selector of function signatures, e.g. \"owner()\"",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		for _, sig := range args {
			fmt.Printf("%s  %s\n", diamondvm.SelectorFromSignature(sig), sig)
		}
		return nil
	},
}

var supportsCmd = &cobra.Command{
	Use:   "supports <interface id>",
	Short: "Ask the diamond whether it supports an ERC-165 interface",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := diamondvm.ParseSelector(args[0])
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		supported, err := newClient().SupportsInterface(ctx, id)
		if err != nil {
			return err
		}
		fmt.Println(supported)
		return nil
	},
}

var deployCmd = &cobra.Command{
	Use:       "deploy <facet>",
	Short:     "Deploy a facet without routing to it",
	Args:      cobra.ExactValidArgs(1),
	ValidArgs: deployment.Names(),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		addr, err := newClient().Deploy(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Println(addr)
		return nil
	},
}

var upgradeCmd = &cobra.Command{
	Use:   "upgrade <old facet address> <facet>",
	Short: "Move every selector of a facet to a new deployment of a catalog facet",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		caller, err := sender()
		if err != nil {
			return err
		}
		old, err := parseAddress(args[0])
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		addr, err := newClient().Upgrade(ctx, caller, old, args[1])
		if err != nil {
			return err
		}
		fmt.Println(addr)
		return nil
	},
}
