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

// decimalAvgStateLen is DecimalAvgState's fixed 24-byte wire layout:
// { sum: decimal128 (lo, hi), countAndOverflow: i64 }. The sticky
// overflow flag has no byte of its own in that budget, so it rides in
// the low bit of the count word (count<<1 | overflowed) -- a group
// never accumulates anywhere near 2^62 rows, leaving that bit free.
//
// original_source/be/src/exprs/aggregate-functions.cc's DecimalAvgUpdate
// has a documented "case 16" bug: when the argument is itself a 16-byte
// decimal, it mistakenly accumulates the low 4-byte lane instead of the
// full 128-bit value. This port deliberately does NOT reproduce that
// truncation: doing so would make the sum never see the full magnitude
// of a decimal128 input, which would make an Avg over two max-decimal128
// values silently fail to overflow. See DESIGN.md's Open Question log
// for this decision.
const decimalAvgStateLen = 24

func DecimalAvgInit(ctx Context) []byte {
	b := ctx.Allocate(decimalAvgStateLen)
	putU64(b, 0, 0)
	putU64(b, 8, 0)
	putI64(b, 16, 0)
	return b
}

func getDecimalAvgSum(state []byte) types.Decimal128 {
	return types.Decimal128{Lo: getU64(state, 0), Hi: getU64(state, 8)}
}

func putDecimalAvgSum(state []byte, sum types.Decimal128) {
	putU64(state, 0, sum.Lo)
	putU64(state, 8, sum.Hi)
}

func getDecimalAvgCount(state []byte) (count int64, overflowed bool) {
	packed := getI64(state, 16)
	return packed >> 1, packed&1 != 0
}

func putDecimalAvgCount(state []byte, count int64, overflowed bool) {
	packed := count << 1
	if overflowed {
		packed |= 1
	}
	putI64(state, 16, packed)
}

// DecimalAvgUpdate widens src by argument width -- decimal32 -> val4,
// decimal64 -> val8, decimal128 -> val16 -- mirroring
// original_source's DecimalAvgUpdate width switch (minus its case-16 bug,
// see the file doc comment above).
func DecimalAvgUpdate(state []byte, src types.Value) {
	mustLen(state, decimalAvgStateLen)
	if src.IsNull {
		return
	}
	var widened types.Decimal128
	switch src.Oid {
	case types.T_decimal32:
		widened = types.Decimal128FromInt64(int64(src.Dec32))
	case types.T_decimal64:
		widened = types.Decimal128FromInt64(int64(src.Dec64))
	default:
		widened = src.Dec128
	}
	sum, overflow := getDecimalAvgSum(state).Add(widened)
	count, overflowed := getDecimalAvgCount(state)
	putDecimalAvgSum(state, sum)
	putDecimalAvgCount(state, count+1, overflowed || overflow)
}

func DecimalAvgMerge(dst, src []byte) {
	mustLen(dst, decimalAvgStateLen)
	mustLen(src, decimalAvgStateLen)
	sum, overflow := getDecimalAvgSum(dst).Add(getDecimalAvgSum(src))
	dstCount, dstOverflowed := getDecimalAvgCount(dst)
	srcCount, srcOverflowed := getDecimalAvgCount(src)
	putDecimalAvgSum(dst, sum)
	putDecimalAvgCount(dst, dstCount+srcCount, dstOverflowed || srcOverflowed || overflow)
}

func DecimalAvgSerialize(ctx Context, state []byte) []byte {
	mustLen(state, decimalAvgStateLen)
	out := ctx.Allocate(decimalAvgStateLen)
	copy(out, state)
	ctx.Free(state)
	return out
}

// DecimalAvgFinalize divides sum by count at 128-bit precision.
// count==0 is the null-result-not-an-error case; a sticky overflow, or
// an overflow surfaced by the divide itself, is the warning-and-null
// case.
func DecimalAvgFinalize(ctx Context, state []byte) (types.Decimal128, bool) {
	mustLen(state, decimalAvgStateLen)
	sum := getDecimalAvgSum(state)
	count, overflowed := getDecimalAvgCount(state)
	ctx.Free(state)
	if count == 0 {
		return types.Decimal128{}, true
	}
	if overflowed {
		ctx.AddWarning("Avg computation overflowed, returning NULL")
		return types.Decimal128{}, true
	}
	result, isNaN, overflow := sum.DivideRound(count)
	if isNaN {
		return types.Decimal128{}, true
	}
	if overflow {
		ctx.AddWarning("Avg computation overflowed, returning NULL")
		return types.Decimal128{}, true
	}
	return result, false
}
