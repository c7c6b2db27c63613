// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package client

import (
	"context"

	"github.com/holiman/uint256"

	"github.com/ava-labs/avalanchego/api"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/formatting"
	"github.com/ava-labs/avalanchego/utils/json"
	"github.com/ava-labs/avalanchego/utils/rpc"

	"github.com/ava-labs/diamondvm/diamondvm"
	"github.com/ava-labs/diamondvm/service"
)

// Client defines diamond service operations.
type Client interface {
	// Call executes raw calldata and returns the raw result
	Call(ctx context.Context, from ids.ShortID, input []byte) ([]byte, error)
	Selector(ctx context.Context, signature string) (diamondvm.Selector, error)

	Deploy(ctx context.Context, name string) (ids.ShortID, error)
	DiamondCut(ctx context.Context, from ids.ShortID, cuts []service.FacetCutArgs, init ids.ShortID, calldata []byte) error
	Upgrade(ctx context.Context, from, old ids.ShortID, name string) (ids.ShortID, error)

	Facets(ctx context.Context) ([]service.FacetEntry, error)
	FacetAddresses(ctx context.Context) ([]ids.ShortID, error)
	FacetFunctionSelectors(ctx context.Context, facet ids.ShortID) ([]diamondvm.Selector, error)
	FacetAddress(ctx context.Context, selector diamondvm.Selector) (ids.ShortID, error)
	SupportsInterface(ctx context.Context, id diamondvm.Selector) (bool, error)

	SetDayPrice(ctx context.Context, from ids.ShortID, timestamp uint64, price *uint256.Int) error
	GetDayPrice(ctx context.Context, timestamp uint64) (*uint256.Int, error)
	GetAveragePrice(ctx context.Context, from, to uint64) (*uint256.Int, error)
	GetLastTimestamp(ctx context.Context) (uint64, error)
	GetFirstTimestamp(ctx context.Context) (uint64, error)
	Owner(ctx context.Context) (ids.ShortID, error)
	TransferOwnership(ctx context.Context, from, newOwner ids.ShortID) error
}

var _ diamondvm.Dispatcher = Client(nil)

// New creates a new client object for the node at [uri], for example
// "http://127.0.0.1:9650". Requests go to [service.Endpoint].
func New(uri string) Client {
	req := rpc.NewEndpointRequester(uri, service.Endpoint, service.Name)
	return &client{req: req}
}

type client struct {
	req rpc.EndpointRequester
}

func (cli *client) Call(ctx context.Context, from ids.ShortID, input []byte) ([]byte, error) {
	encoded, err := formatting.EncodeWithChecksum(formatting.Hex, input)
	if err != nil {
		return nil, err
	}
	resp := new(service.CallReply)
	if err := cli.req.SendRequest(ctx, "call", &service.CallArgs{From: from, Input: encoded}, resp); err != nil {
		return nil, err
	}
	return formatting.Decode(formatting.Hex, resp.Output)
}

func (cli *client) Selector(ctx context.Context, signature string) (diamondvm.Selector, error) {
	resp := new(service.SelectorReply)
	err := cli.req.SendRequest(ctx, "selector", &service.SelectorArgs{Signature: signature}, resp)
	return resp.Selector, err
}

func (cli *client) Deploy(ctx context.Context, name string) (ids.ShortID, error) {
	resp := new(service.AddressReply)
	err := cli.req.SendRequest(ctx, "deploy", &service.DeployArgs{Name: name}, resp)
	return resp.Address, err
}

func (cli *client) DiamondCut(ctx context.Context, from ids.ShortID, cuts []service.FacetCutArgs, init ids.ShortID, calldata []byte) error {
	args := &service.DiamondCutArgs{From: from, Cuts: cuts}
	if init != ids.ShortEmpty {
		args.Init = &init
	}
	if len(calldata) > 0 {
		encoded, err := formatting.EncodeWithChecksum(formatting.Hex, calldata)
		if err != nil {
			return err
		}
		args.Calldata = encoded
	}
	return cli.req.SendRequest(ctx, "diamondCut", args, &api.SuccessResponse{})
}

func (cli *client) Upgrade(ctx context.Context, from, old ids.ShortID, name string) (ids.ShortID, error) {
	resp := new(service.AddressReply)
	err := cli.req.SendRequest(ctx, "upgrade", &service.UpgradeArgs{From: from, Old: old, Name: name}, resp)
	return resp.Address, err
}

func (cli *client) Facets(ctx context.Context) ([]service.FacetEntry, error) {
	resp := new(service.FacetsReply)
	err := cli.req.SendRequest(ctx, "facets", struct{}{}, resp)
	return resp.Facets, err
}

func (cli *client) FacetAddresses(ctx context.Context) ([]ids.ShortID, error) {
	resp := new(service.FacetAddressesReply)
	err := cli.req.SendRequest(ctx, "facetAddresses", struct{}{}, resp)
	return resp.Addresses, err
}

func (cli *client) FacetFunctionSelectors(ctx context.Context, facet ids.ShortID) ([]diamondvm.Selector, error) {
	resp := new(service.SelectorsReply)
	err := cli.req.SendRequest(ctx, "facetFunctionSelectors", &service.AddressArgs{Address: facet}, resp)
	return resp.Selectors, err
}

func (cli *client) FacetAddress(ctx context.Context, selector diamondvm.Selector) (ids.ShortID, error) {
	resp := new(service.AddressReply)
	err := cli.req.SendRequest(ctx, "facetAddress", &service.FacetAddressArgs{Selector: selector}, resp)
	return resp.Address, err
}

func (cli *client) SupportsInterface(ctx context.Context, id diamondvm.Selector) (bool, error) {
	resp := new(service.SupportsInterfaceReply)
	err := cli.req.SendRequest(ctx, "supportsInterface", &service.SupportsInterfaceArgs{InterfaceID: id}, resp)
	return resp.Supported, err
}

func (cli *client) SetDayPrice(ctx context.Context, from ids.ShortID, timestamp uint64, price *uint256.Int) error {
	return cli.req.SendRequest(ctx, "setDayPrice", &service.SetDayPriceArgs{
		From:      from,
		Timestamp: json.Uint64(timestamp),
		Price:     service.FormatPrice(price),
	}, &api.SuccessResponse{})
}

func (cli *client) GetDayPrice(ctx context.Context, timestamp uint64) (*uint256.Int, error) {
	resp := new(service.PriceReply)
	if err := cli.req.SendRequest(ctx, "getDayPrice", &service.TimestampArgs{Timestamp: json.Uint64(timestamp)}, resp); err != nil {
		return nil, err
	}
	return service.ParsePrice(resp.Price)
}

func (cli *client) GetAveragePrice(ctx context.Context, from, to uint64) (*uint256.Int, error) {
	resp := new(service.PriceReply)
	err := cli.req.SendRequest(ctx, "getAveragePrice", &service.RangeArgs{
		From: json.Uint64(from),
		To:   json.Uint64(to),
	}, resp)
	if err != nil {
		return nil, err
	}
	return service.ParsePrice(resp.Price)
}

func (cli *client) GetLastTimestamp(ctx context.Context) (uint64, error) {
	resp := new(service.TimestampReply)
	err := cli.req.SendRequest(ctx, "getLastTimestamp", struct{}{}, resp)
	return uint64(resp.Timestamp), err
}

func (cli *client) GetFirstTimestamp(ctx context.Context) (uint64, error) {
	resp := new(service.TimestampReply)
	err := cli.req.SendRequest(ctx, "getFirstTimestamp", struct{}{}, resp)
	return uint64(resp.Timestamp), err
}

func (cli *client) Owner(ctx context.Context) (ids.ShortID, error) {
	resp := new(service.OwnerReply)
	err := cli.req.SendRequest(ctx, "owner", struct{}{}, resp)
	return resp.Owner, err
}

func (cli *client) TransferOwnership(ctx context.Context, from, newOwner ids.ShortID) error {
	return cli.req.SendRequest(ctx, "transferOwnership", &service.TransferOwnershipArgs{
		From:     from,
		NewOwner: newOwner,
	}, &api.SuccessResponse{})
}
