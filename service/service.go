// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package service

import (
	"errors"
	"fmt"
	"math/big"
	"net/http"

	"github.com/gorilla/rpc/v2"
	"github.com/holiman/uint256"

	"github.com/ava-labs/avalanchego/api"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/formatting"
	"github.com/ava-labs/avalanchego/utils/json"

	"github.com/ava-labs/diamondvm/deployment"
	"github.com/ava-labs/diamondvm/diamondvm"
	"github.com/ava-labs/diamondvm/facets"
	"github.com/ava-labs/diamondvm/ledger"
)

const (
	// Name is the JSON-RPC service name, so methods are called as "diamond.<method>"
	Name = "diamond"
	// Endpoint is the path the node serves the handler on
	Endpoint = "/ext/" + Name
)

var errBadPrice = errors.New("price must be a decimal integer in [0, 2^256)")

// NewHandler returns an http.Handler serving [s] over JSON-RPC 2.0
func NewHandler(s *Service) (http.Handler, error) {
	server := rpc.NewServer()
	codec := json.NewCodec()
	server.RegisterCodec(codec, "application/json")
	server.RegisterCodec(codec, "application/json;charset=UTF-8")
	return server, server.RegisterService(s, Name)
}

// Service is the API service of the diamond. Every method that reads or
// writes diamond state goes through a routed call.
type Service struct {
	diamond *diamondvm.Diamond
	loupe   *facets.LoupeClient
	ledger  *ledger.Client
}

func New(d *diamondvm.Diamond) *Service {
	return &Service{
		diamond: d,
		loupe:   facets.NewLoupeClient(d),
		ledger:  ledger.NewClient(d),
	}
}

// CallArgs are the arguments to Call
type CallArgs struct {
	From ids.ShortID `json:"from"`
	// Input is the hex encoded calldata, with checksum
	Input string `json:"input"`
}

// CallReply holds the hex encoded result of a call
type CallReply struct {
	Output string `json:"output"`
}

// Call executes raw calldata against the diamond
func (s *Service) Call(r *http.Request, args *CallArgs, reply *CallReply) error {
	input, err := formatting.Decode(formatting.Hex, args.Input)
	if err != nil {
		return fmt.Errorf("couldn't decode input: %w", err)
	}
	out, err := s.diamond.Call(r.Context(), args.From, input)
	if err != nil {
		return err
	}
	reply.Output, err = formatting.EncodeWithChecksum(formatting.Hex, out)
	return err
}

// SelectorArgs carry a function signature such as "owner()"
type SelectorArgs struct {
	Signature string `json:"signature"`
}

type SelectorReply struct {
	Selector diamondvm.Selector `json:"selector"`
}

// Selector computes the selector of a function signature
func (s *Service) Selector(_ *http.Request, args *SelectorArgs, reply *SelectorReply) error {
	reply.Selector = diamondvm.SelectorFromSignature(args.Signature)
	return nil
}

type DeployArgs struct {
	Name string `json:"name"`
}

type AddressReply struct {
	Address ids.ShortID `json:"address"`
}

// Deploy deploys a facet from the catalog without routing to it
func (s *Service) Deploy(_ *http.Request, args *DeployArgs, reply *AddressReply) error {
	addr, err := deployment.DeployFacet(s.diamond, args.Name)
	reply.Address = addr
	return err
}

// FacetCutArgs is one cut of a DiamondCut request
type FacetCutArgs struct {
	FacetAddress ids.ShortID          `json:"facetAddress"`
	Action       string               `json:"action"`
	Selectors    []diamondvm.Selector `json:"functionSelectors"`
}

type DiamondCutArgs struct {
	From ids.ShortID    `json:"from"`
	Cuts []FacetCutArgs `json:"cuts"`
	// Init is optional; Calldata is hex encoded
	Init     *ids.ShortID `json:"init"`
	Calldata string       `json:"calldata"`
}

// DiamondCut applies a batch of cuts and an optional init call
func (s *Service) DiamondCut(r *http.Request, args *DiamondCutArgs, reply *api.SuccessResponse) error {
	batch := &diamondvm.CutBatch{Cuts: make([]diamondvm.FacetCut, 0, len(args.Cuts))}
	for i, cut := range args.Cuts {
		action, err := ParseAction(cut.Action)
		if err != nil {
			return fmt.Errorf("cut %d: %w", i, err)
		}
		batch.Cuts = append(batch.Cuts, diamondvm.FacetCut{
			FacetAddress: cut.FacetAddress,
			Action:       action,
			Selectors:    cut.Selectors,
		})
	}
	if args.Init != nil {
		batch.Init = *args.Init
	}
	if args.Calldata != "" {
		calldata, err := formatting.Decode(formatting.Hex, args.Calldata)
		if err != nil {
			return fmt.Errorf("couldn't decode calldata: %w", err)
		}
		batch.Calldata = calldata
	}
	if err := s.diamond.ApplyCutBatch(r.Context(), args.From, batch); err != nil {
		return err
	}
	reply.Success = true
	return nil
}

// ParseAction accepts the name of a cut action, as printed by FacetCutAction
func ParseAction(name string) (diamondvm.FacetCutAction, error) {
	for _, action := range []diamondvm.FacetCutAction{diamondvm.Add, diamondvm.Replace, diamondvm.Remove} {
		if action.String() == name {
			return action, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", diamondvm.ErrUnknownCutAction, name)
}

type UpgradeArgs struct {
	From ids.ShortID `json:"from"`
	Old  ids.ShortID `json:"old"`
	Name string      `json:"name"`
}

// Upgrade swaps every selector of a facet over to a new deployment of a
// catalog facet
func (s *Service) Upgrade(r *http.Request, args *UpgradeArgs, reply *AddressReply) error {
	addr, err := deployment.Upgrade(r.Context(), s.diamond, args.From, args.Old, args.Name)
	reply.Address = addr
	return err
}

// FacetEntry describes one facet of the diamond
type FacetEntry struct {
	Name      string               `json:"name,omitempty"`
	Address   ids.ShortID          `json:"address"`
	Selectors []diamondvm.Selector `json:"functionSelectors"`
}

type FacetsReply struct {
	Facets []FacetEntry `json:"facets"`
}

// Facets lists every facet with its selectors
func (s *Service) Facets(r *http.Request, _ *struct{}, reply *FacetsReply) error {
	infos, err := s.loupe.Facets(r.Context())
	if err != nil {
		return err
	}
	reply.Facets = make([]FacetEntry, 0, len(infos))
	for _, info := range infos {
		name, _ := s.diamond.FacetName(info.FacetAddress)
		reply.Facets = append(reply.Facets, FacetEntry{
			Name:      name,
			Address:   info.FacetAddress,
			Selectors: info.Selectors,
		})
	}
	return nil
}

type FacetAddressesReply struct {
	Addresses []ids.ShortID `json:"addresses"`
}

func (s *Service) FacetAddresses(r *http.Request, _ *struct{}, reply *FacetAddressesReply) error {
	addrs, err := s.loupe.FacetAddresses(r.Context())
	reply.Addresses = addrs
	return err
}

type AddressArgs struct {
	Address ids.ShortID `json:"address"`
}

type SelectorsReply struct {
	Selectors []diamondvm.Selector `json:"functionSelectors"`
}

func (s *Service) FacetFunctionSelectors(r *http.Request, args *AddressArgs, reply *SelectorsReply) error {
	selectors, err := s.loupe.FacetFunctionSelectors(r.Context(), args.Address)
	reply.Selectors = selectors
	return err
}

type FacetAddressArgs struct {
	Selector diamondvm.Selector `json:"selector"`
}

// FacetAddress returns the facet routed for a selector, or the zero address
func (s *Service) FacetAddress(r *http.Request, args *FacetAddressArgs, reply *AddressReply) error {
	addr, err := s.loupe.FacetAddress(r.Context(), args.Selector)
	reply.Address = addr
	return err
}

type SupportsInterfaceArgs struct {
	InterfaceID diamondvm.Selector `json:"interfaceID"`
}

type SupportsInterfaceReply struct {
	Supported bool `json:"supported"`
}

func (s *Service) SupportsInterface(r *http.Request, args *SupportsInterfaceArgs, reply *SupportsInterfaceReply) error {
	supported, err := s.loupe.SupportsInterface(r.Context(), args.InterfaceID)
	reply.Supported = supported
	return err
}

type SetDayPriceArgs struct {
	From      ids.ShortID `json:"from"`
	Timestamp json.Uint64 `json:"timestamp"`
	// Price is a decimal string, it may exceed 64 bits
	Price string `json:"price"`
}

func (s *Service) SetDayPrice(r *http.Request, args *SetDayPriceArgs, reply *api.SuccessResponse) error {
	price, err := ParsePrice(args.Price)
	if err != nil {
		return err
	}
	if err := s.ledger.SetDayPrice(r.Context(), args.From, uint64(args.Timestamp), price); err != nil {
		return err
	}
	reply.Success = true
	return nil
}

type TimestampArgs struct {
	Timestamp json.Uint64 `json:"timestamp"`
}

type PriceReply struct {
	Price string `json:"price"`
}

func (s *Service) GetDayPrice(r *http.Request, args *TimestampArgs, reply *PriceReply) error {
	price, err := s.ledger.GetDayPrice(r.Context(), uint64(args.Timestamp))
	if err != nil {
		return err
	}
	reply.Price = FormatPrice(price)
	return nil
}

type RangeArgs struct {
	From json.Uint64 `json:"from"`
	To   json.Uint64 `json:"to"`
}

func (s *Service) GetAveragePrice(r *http.Request, args *RangeArgs, reply *PriceReply) error {
	avg, err := s.ledger.GetAveragePrice(r.Context(), uint64(args.From), uint64(args.To))
	if err != nil {
		return err
	}
	reply.Price = FormatPrice(avg)
	return nil
}

type TimestampReply struct {
	Timestamp json.Uint64 `json:"timestamp"`
}

func (s *Service) GetLastTimestamp(r *http.Request, _ *struct{}, reply *TimestampReply) error {
	timestamp, err := s.ledger.GetLastTimestamp(r.Context())
	reply.Timestamp = json.Uint64(timestamp)
	return err
}

func (s *Service) GetFirstTimestamp(r *http.Request, _ *struct{}, reply *TimestampReply) error {
	timestamp, err := s.ledger.GetFirstTimestamp(r.Context())
	reply.Timestamp = json.Uint64(timestamp)
	return err
}

type OwnerReply struct {
	Owner ids.ShortID `json:"owner"`
}

// Owner calls the routed owner() function
func (s *Service) Owner(r *http.Request, _ *struct{}, reply *OwnerReply) error {
	owner, err := s.ledger.Owner(r.Context())
	reply.Owner = owner
	return err
}

type TransferOwnershipArgs struct {
	From     ids.ShortID `json:"from"`
	NewOwner ids.ShortID `json:"newOwner"`
}

func (s *Service) TransferOwnership(r *http.Request, args *TransferOwnershipArgs, reply *api.SuccessResponse) error {
	if err := s.ledger.TransferOwnership(r.Context(), args.From, args.NewOwner); err != nil {
		return err
	}
	reply.Success = true
	return nil
}

// ParsePrice reads a decimal price
func ParsePrice(str string) (*uint256.Int, error) {
	b, ok := new(big.Int).SetString(str, 10)
	if !ok || b.Sign() < 0 {
		return nil, fmt.Errorf("%w: %q", errBadPrice, str)
	}
	price, overflow := uint256.FromBig(b)
	if overflow {
		return nil, fmt.Errorf("%w: %q", errBadPrice, str)
	}
	return price, nil
}

// FormatPrice writes a price as a decimal string
func FormatPrice(price *uint256.Int) string {
	return price.ToBig().String()
}
