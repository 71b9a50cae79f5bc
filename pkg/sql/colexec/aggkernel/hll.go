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

import (
	"math"
	"math/bits"

	"github.com/mo-agg/aggkernel/pkg/container/types"
)

// HyperLogLog at precision 10: 1024 one-byte registers, each holding the
// largest rank (1 + trailing zeros of the hash bits above the register
// index) seen among values that hashed into that register.
const (
	hllPrecision  = 10
	hllNumBuckets = 1 << hllPrecision // 1024
	hllStateLen   = hllNumBuckets
)

func HLLInit(ctx Context) []byte {
	return ctx.Allocate(hllStateLen)
}

// HLLUpdate hashes v with the fixed 64-bit seed, uses the low
// hllPrecision bits to pick a register (idx = hash & (HLL_LEN-1)), and
// records into that register the position of the lowest set bit among
// the remaining bits plus one (1 + ctz(hash >> HLL_PRECISION)) --
// preserved literally rather than mirrored, matching original_source's
// HllUpdate. A hash whose remaining bits are all zero is the maximal
// run length. A no-op on null input.
func HLLUpdate(h Hasher, t types.Type, state []byte, v types.Value, isNull bool) {
	mustLen(state, hllStateLen)
	if isNull {
		return
	}
	hash := h.Hash64(v, t, FNV64Seed)
	idx := hash & (hllNumBuckets - 1)
	rest := hash >> hllPrecision
	var rank uint8
	if rest == 0 {
		rank = uint8(64-hllPrecision) + 1
	} else {
		rank = uint8(bits.TrailingZeros64(rest)) + 1
	}
	if state[idx] < rank {
		state[idx] = rank
	}
}

// HLLMerge takes the pointwise maximum of each register: the running
// maximum run-length any shard observed for that register.
func HLLMerge(dst, src []byte) {
	mustLen(dst, hllStateLen)
	mustLen(src, hllStateLen)
	for i := range dst {
		if src[i] > dst[i] {
			dst[i] = src[i]
		}
	}
}

func HLLSerialize(ctx Context, state []byte) []byte {
	mustLen(state, hllStateLen)
	out := ctx.Allocate(hllStateLen)
	copy(out, state)
	ctx.Free(state)
	return out
}

func hllAlpha(m float64) float64 {
	switch hllNumBuckets {
	case 16:
		return 0.673
	case 32:
		return 0.697
	case 64:
		return 0.709
	default:
		return 0.7213 / (1 + 1.079/m)
	}
}

// HLLFinalize applies the standard HyperLogLog estimator, falling back
// to linear counting when any register is still zero (small-cardinality
// correction).
func HLLFinalize(ctx Context, state []byte) int64 {
	mustLen(state, hllStateLen)
	m := float64(hllNumBuckets)
	var sumInv float64
	var zeros int
	for _, r := range state {
		sumInv += math.Pow(2, -float64(r))
		if r == 0 {
			zeros++
		}
	}
	ctx.Free(state)
	if zeros > 0 {
		return int64(m * math.Log(m/float64(zeros)))
	}
	rawEstimate := hllAlpha(m) * m * m / sumInv
	return int64(rawEstimate)
}
