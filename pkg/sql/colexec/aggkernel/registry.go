// Copyright 2024 Matrix Origin
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package aggkernel

import "github.com/mo-agg/aggkernel/pkg/container/types"

// The simple reductive kernels (Sum/Min/Max over Numeric/Ordered) are
// monomorphized with Go generics and resolved at compile time -- their
// "typed entry point" is the generic instantiation itself, no dispatch
// table needed. Every other kernel already speaks types.Value at its
// boundary and gets a uniform binding here instead, so a caller that
// only knows a function's name string (the planner, or a test that
// iterates every registered kernel) can drive it without a type switch
// of its own. Rank/DenseRank and Reservoir are deliberately absent:
// Rank takes no Value argument (a window kernel is fed only sameGroup),
// and ReservoirMerge takes two already-Serialized states, unlike every
// binding below, whose Merge always operates on live accumulation
// state.
type Ops struct {
	Init      func(ctx Context) []byte
	Update    func(ctx Context, state []byte, arg types.Value) []byte
	Merge     func(ctx Context, dst, src []byte) []byte
	Serialize func(ctx Context, state []byte) []byte
	Finalize  func(ctx Context, state []byte) (types.Value, bool)
}

// decimalSumWireLen/encode/decodeDecimalSum give DecimalSumState -- a
// plain Go struct, since it is exempt from the byte-blob contract the
// same way Sum's fast numeric path is -- a wire form for this table
// only, without touching decimalsum's own in-process representation.
const decimalSumWireLen = 17 // 1 null-flag byte + 16 payload bytes

func encodeDecimalSum(ctx Context, s *DecimalSumState) []byte {
	b := ctx.Allocate(decimalSumWireLen)
	if s.IsNull {
		b[0] = 1
		return b
	}
	putU64(b, 1, s.Sum.Lo)
	putU64(b, 9, s.Sum.Hi)
	return b
}

func decodeDecimalSum(b []byte) *DecimalSumState {
	mustLen(b, decimalSumWireLen)
	if b[0] == 1 {
		return &DecimalSumState{IsNull: true}
	}
	return &DecimalSumState{Sum: types.Decimal128{Lo: getU64(b, 1), Hi: getU64(b, 9)}}
}

var registry = map[string]Ops{
	"count": {
		Init: CountInit,
		Update: func(ctx Context, state []byte, arg types.Value) []byte {
			CountUpdate(ctx, arg, state)
			return state
		},
		Merge: func(ctx Context, dst, src []byte) []byte {
			CountMerge(ctx, src, dst)
			return dst
		},
		Serialize: CountSerialize,
		Finalize: func(ctx Context, state []byte) (types.Value, bool) {
			return types.BigIntValue(CountFinalize(ctx, state)), false
		},
	},
	"count_star": {
		Init: CountInit,
		Update: func(ctx Context, state []byte, _ types.Value) []byte {
			CountStarUpdate(ctx, state)
			return state
		},
		Merge: func(ctx Context, dst, src []byte) []byte {
			CountMerge(ctx, src, dst)
			return dst
		},
		Serialize: CountSerialize,
		Finalize: func(ctx Context, state []byte) (types.Value, bool) {
			return types.BigIntValue(CountFinalize(ctx, state)), false
		},
	},
	"decimal_sum": {
		Init: func(ctx Context) []byte { return encodeDecimalSum(ctx, DecimalSumInit()) },
		Update: func(ctx Context, state []byte, arg types.Value) []byte {
			s := decodeDecimalSum(state)
			DecimalSumUpdate(s, arg)
			return encodeDecimalSum(ctx, s)
		},
		Merge: func(ctx Context, dst, src []byte) []byte {
			d, s := decodeDecimalSum(dst), decodeDecimalSum(src)
			DecimalSumMerge(d, s)
			return encodeDecimalSum(ctx, d)
		},
		Serialize: func(ctx Context, state []byte) []byte { return state },
		Finalize: func(ctx Context, state []byte) (types.Value, bool) {
			sum, isNull := DecimalSumFinalize(decodeDecimalSum(state))
			return types.Value{Oid: types.T_decimal128, Dec128: sum, IsNull: isNull}, isNull
		},
	},
	"decimal_avg": {
		Init: DecimalAvgInit,
		Update: func(ctx Context, state []byte, arg types.Value) []byte {
			DecimalAvgUpdate(state, arg)
			return state
		},
		Merge: func(ctx Context, dst, src []byte) []byte {
			DecimalAvgMerge(dst, src)
			return dst
		},
		Serialize: DecimalAvgSerialize,
		Finalize: func(ctx Context, state []byte) (types.Value, bool) {
			avg, isNull := DecimalAvgFinalize(ctx, state)
			return types.Value{Oid: types.T_decimal128, Dec128: avg, IsNull: isNull}, isNull
		},
	},
	"timestamp_avg": {
		Init: AvgInit,
		Update: func(ctx Context, state []byte, arg types.Value) []byte {
			TimestampAvgUpdate(state, arg.Ts, arg.IsNull)
			return state
		},
		Merge: func(ctx Context, dst, src []byte) []byte {
			AvgMerge(dst, src)
			return dst
		},
		Serialize: AvgSerialize,
		Finalize: func(ctx Context, state []byte) (types.Value, bool) {
			ts, isNull := TimestampAvgFinalize(ctx, state)
			return types.TimestampValue(ts), isNull
		},
	},
	"string_concat": {
		Init: func(ctx Context) []byte { return StringConcatInit() },
		Update: func(ctx Context, state []byte, arg types.Value) []byte {
			return StringConcatUpdate(ctx, state, arg.Str, nil, arg.IsNull, true)
		},
		Merge:     StringConcatMerge,
		Serialize: func(ctx Context, state []byte) []byte { return state },
		Finalize: func(ctx Context, state []byte) (types.Value, bool) {
			result, isNull := StringConcatFinalize(ctx, state)
			return types.StringValue(result), isNull
		},
	},
	"pc": {
		Init: PCInit,
		Update: func(ctx Context, state []byte, arg types.Value) []byte {
			PCUpdate(DefaultHasher{}, ctx.ArgType(0), state, arg, arg.IsNull)
			return state
		},
		Merge: func(ctx Context, dst, src []byte) []byte {
			PCMerge(dst, src)
			return dst
		},
		Serialize: PCSerialize,
		Finalize: func(ctx Context, state []byte) (types.Value, bool) {
			return types.BigIntValue(PCFinalize(ctx, state)), false
		},
	},
	"pcsa": {
		Init: PCSAInit,
		Update: func(ctx Context, state []byte, arg types.Value) []byte {
			PCSAUpdate(DefaultHasher{}, ctx.ArgType(0), state, arg, arg.IsNull)
			return state
		},
		Merge: func(ctx Context, dst, src []byte) []byte {
			PCSAMerge(dst, src)
			return dst
		},
		Serialize: PCSASerialize,
		Finalize: func(ctx Context, state []byte) (types.Value, bool) {
			return types.BigIntValue(PCSAFinalize(ctx, state)), false
		},
	},
	"hll": {
		Init: HLLInit,
		Update: func(ctx Context, state []byte, arg types.Value) []byte {
			HLLUpdate(DefaultHasher{}, ctx.ArgType(0), state, arg, arg.IsNull)
			return state
		},
		Merge: func(ctx Context, dst, src []byte) []byte {
			HLLMerge(dst, src)
			return dst
		},
		Serialize: HLLSerialize,
		Finalize: func(ctx Context, state []byte) (types.Value, bool) {
			return types.BigIntValue(HLLFinalize(ctx, state)), false
		},
	},
	"variance_pop": {
		Init: VarianceInit,
		Update: func(ctx Context, state []byte, arg types.Value) []byte {
			VarianceUpdate(state, arg.F64, arg.IsNull)
			return state
		},
		Merge: func(ctx Context, dst, src []byte) []byte {
			VarianceMerge(dst, src)
			return dst
		},
		Serialize: VarianceSerialize,
		Finalize: func(ctx Context, state []byte) (types.Value, bool) {
			v, isNull := VarPopFinalize(ctx, state)
			return types.DoubleValue(v), isNull
		},
	},
	"variance_samp": {
		Init: VarianceInit,
		Update: func(ctx Context, state []byte, arg types.Value) []byte {
			VarianceUpdate(state, arg.F64, arg.IsNull)
			return state
		},
		Merge: func(ctx Context, dst, src []byte) []byte {
			VarianceMerge(dst, src)
			return dst
		},
		Serialize: VarianceSerialize,
		Finalize: func(ctx Context, state []byte) (types.Value, bool) {
			v, isNull := VarSampFinalize(ctx, state)
			return types.DoubleValue(v), isNull
		},
	},
	"stddev_pop": {
		Init: VarianceInit,
		Update: func(ctx Context, state []byte, arg types.Value) []byte {
			VarianceUpdate(state, arg.F64, arg.IsNull)
			return state
		},
		Merge: func(ctx Context, dst, src []byte) []byte {
			VarianceMerge(dst, src)
			return dst
		},
		Serialize: VarianceSerialize,
		Finalize: func(ctx Context, state []byte) (types.Value, bool) {
			v, isNull := StddevPopFinalize(ctx, state)
			return types.DoubleValue(v), isNull
		},
	},
	"stddev_samp": {
		Init: VarianceInit,
		Update: func(ctx Context, state []byte, arg types.Value) []byte {
			VarianceUpdate(state, arg.F64, arg.IsNull)
			return state
		},
		Merge: func(ctx Context, dst, src []byte) []byte {
			VarianceMerge(dst, src)
			return dst
		},
		Serialize: VarianceSerialize,
		Finalize: func(ctx Context, state []byte) (types.Value, bool) {
			v, isNull := StddevSampFinalize(ctx, state)
			return types.DoubleValue(v), isNull
		},
	},
}

// Lookup returns the registered binding for a function name, the way
// the planner resolves a call target once per query rather than
// re-dispatching on every row.
func Lookup(name string) (Ops, bool) {
	ops, ok := registry[name]
	return ops, ok
}

// Names returns every registered function name, sorted only implicitly
// by map iteration order -- callers that need a stable order (tests)
// sort it themselves.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}
