// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package diamondvm

import (
	"context"
	"fmt"

	"github.com/ava-labs/avalanchego/codec"
	"github.com/ava-labs/avalanchego/codec/linearcodec"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/wrappers"
)

const (
	// CodecVersion is the current default codec version
	CodecVersion = 0
)

// Codecs do serialization and deserialization of call arguments and results
var (
	Codec codec.Manager
)

func init() {
	c := linearcodec.NewDefault()
	Codec = codec.NewDefaultManager()

	errs := wrappers.Errs{}
	errs.Add(
		Codec.RegisterCodec(CodecVersion, c),
	)
	if errs.Errored() {
		panic(errs.Err)
	}
}

// Pack serializes [v] with the default codec version
func Pack(v interface{}) ([]byte, error) {
	return Codec.Marshal(CodecVersion, v)
}

// Unpack deserializes [b] into [v]
func Unpack(b []byte, v interface{}) error {
	version, err := Codec.Unmarshal(b, v)
	if err != nil {
		return err
	}
	if version != CodecVersion {
		return fmt.Errorf("unexpected codec version %d", version)
	}
	return nil
}

// EncodeCall builds calldata for [signature]. [args] may be nil for functions
// without parameters.
func EncodeCall(signature string, args interface{}) ([]byte, error) {
	selector := SelectorFromSignature(signature)
	if args == nil {
		return selector[:], nil
	}
	argBytes, err := Pack(args)
	if err != nil {
		return nil, fmt.Errorf("couldn't pack arguments of %s: %w", signature, err)
	}
	return append(selector[:], argBytes...), nil
}

// SplitCalldata separates the selector from the arguments of [input]
func SplitCalldata(input []byte) (Selector, []byte, error) {
	var s Selector
	if len(input) < SelectorLen {
		return s, nil, ErrShortCalldata
	}
	copy(s[:], input[:SelectorLen])
	return s, input[SelectorLen:], nil
}

// Dispatcher routes calldata for [caller], typically a *Diamond
type Dispatcher interface {
	Call(ctx context.Context, caller ids.ShortID, input []byte) ([]byte, error)
}

// Invoke encodes a call to [signature] with [args], sends it through [d] and
// decodes the result into [reply] unless it is nil.
func Invoke(ctx context.Context, d Dispatcher, caller ids.ShortID, signature string, args, reply interface{}) error {
	input, err := EncodeCall(signature, args)
	if err != nil {
		return err
	}
	out, err := d.Call(ctx, caller, input)
	if err != nil {
		return err
	}
	if reply == nil {
		return nil
	}
	return Unpack(out, reply)
}
