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

// Flajolet-Martin probabilistic counting comes in two flavors sharing
// the same 64-bitmaps-of-32-bits layout: PC ("plain averaging", every
// Update touches every bitmap) and PCSA ("stochastic averaging", every
// Update touches exactly one bitmap chosen by hashing). Both bitmap-set
// conventions are preserved literally rather than reversed, matching
// original_source's UpdateBitMap; their finalize formulas differ by a
// factor of numPCBitmaps, matching original_source's PcFinalize vs
// PcsaFinalize.
const (
	numPCBitmaps   = 64
	pcBitmapLength = 32
	pcTheta        = 0.77351
	pcaStateLen    = numPCBitmaps * 4 // one uint32 bitmap per bucket
)

// bitFromHash picks the bit position to set within one bitmap word: the
// index of the lowest set bit scanning from bit 0 upward in the hash
// value supplied for that word, i.e. ctz(hash). A zero hash has no set
// bit at all and is treated as the maximal run length.
func bitFromHash(hash uint32) int {
	if hash == 0 {
		return pcBitmapLength - 1
	}
	bit := bits.TrailingZeros32(hash)
	if bit >= pcBitmapLength {
		bit = pcBitmapLength - 1
	}
	return bit
}

func setBitmapBit(state []byte, bitmap int, bit int) {
	off := bitmap * 4
	word := getI32(state, off)
	word |= int32(1) << uint(bit)
	putI32(state, off, word)
}

func mergeBitmaps(dst, src []byte) {
	mustLen(dst, pcaStateLen)
	mustLen(src, pcaStateLen)
	for i := 0; i < numPCBitmaps; i++ {
		off := i * 4
		putI32(dst, off, getI32(dst, off)|getI32(src, off))
	}
}

func serializeBitmaps(ctx Context, state []byte) []byte {
	mustLen(state, pcaStateLen)
	out := ctx.Allocate(pcaStateLen)
	copy(out, state)
	ctx.Free(state)
	return out
}

// bitmapsEmpty reports whether no bit is set in any of the 64 bitmaps.
func bitmapsEmpty(state []byte) bool {
	mustLen(state, pcaStateLen)
	for _, b := range state {
		if b != 0 {
			return false
		}
	}
	return true
}

// avgRunLength computes the average position of the lowest unset bit
// across the 64 bitmaps, then frees state -- the shared scan both
// estimators build on.
func avgRunLength(ctx Context, state []byte) float64 {
	mustLen(state, pcaStateLen)
	var sumR float64
	for i := 0; i < numPCBitmaps; i++ {
		word := uint32(getI32(state, i*4))
		r := bits.TrailingZeros32(^word)
		if r > pcBitmapLength {
			r = pcBitmapLength
		}
		sumR += float64(r)
	}
	ctx.Free(state)
	return sumR / numPCBitmaps
}

// pcEstimate converts an average run length to a cardinality estimate
// via 2^R / PC_THETA, matching original_source's PcFinalize (which calls
// DistinceEstimateFinalize directly, with no further scaling): PC's
// Update already touches all 64 bitmaps on every row, so its avgR is
// calibrated to n without any additional factor.
func pcEstimate(avgR float64) int64 {
	return int64(math.Pow(2, avgR) / pcTheta)
}

// pcsaEstimate scales pcEstimate by numPCBitmaps, matching
// original_source's PcsaFinalize: since PCSA's Update only ever touches
// one of the 64 bitmaps per row (stochastic averaging), its avgR reflects
// n/64 rows per bitmap and must be multiplied back up by 64.
func pcsaEstimate(avgR float64) int64 {
	return int64(numPCBitmaps) * pcEstimate(avgR)
}

// --- PC: plain averaging ---

func PCInit(ctx Context) []byte {
	return ctx.Allocate(pcaStateLen)
}

// PCUpdate hashes v once per bitmap (64 distinct seeds), setting bit
// ctz(hash_i) of bitmap i every time -- unlike PCSA, every row touches
// every one of the 64 bitmaps.
func PCUpdate(h Hasher, t types.Type, state []byte, v types.Value, isNull bool) {
	mustLen(state, pcaStateLen)
	if isNull {
		return
	}
	for i := 0; i < numPCBitmaps; i++ {
		hash := h.Hash32(v, t, uint32(i))
		setBitmapBit(state, i, bitFromHash(hash))
	}
}

// PCMerge bitwise-ORs each of the 64 bitmaps: the union of the sets
// each shard has observed.
func PCMerge(dst, src []byte) { mergeBitmaps(dst, src) }

func PCSerialize(ctx Context, state []byte) []byte { return serializeBitmaps(ctx, state) }

// PCFinalize returns the PC estimate; an empty bitmap estimates 0.
func PCFinalize(ctx Context, state []byte) int64 {
	if bitmapsEmpty(state) {
		ctx.Free(state)
		return 0
	}
	return pcEstimate(avgRunLength(ctx, state))
}

// --- PCSA: stochastic averaging ---

func PCSAInit(ctx Context) []byte {
	return ctx.Allocate(pcaStateLen)
}

// PCSAUpdate hashes v exactly once: the low 6 bits of the hash select
// which of the 64 bitmaps records this value (row = hash mod 64), and
// the remaining bits select which bit of that bitmap to set
// (bit = ctz(hash / 64)) -- a single hash value split into row and bit
// index, matching original_source's PcsaUpdate.
func PCSAUpdate(h Hasher, t types.Type, state []byte, v types.Value, isNull bool) {
	mustLen(state, pcaStateLen)
	if isNull {
		return
	}
	hash := h.Hash32(v, t, 0)
	row := hash % numPCBitmaps
	setBitmapBit(state, int(row), bitFromHash(hash/numPCBitmaps))
}

// PCSAMerge bitwise-ORs each of the 64 bitmaps: the union of the sets
// each shard has observed.
func PCSAMerge(dst, src []byte) { mergeBitmaps(dst, src) }

func PCSASerialize(ctx Context, state []byte) []byte { return serializeBitmaps(ctx, state) }

// PCSAFinalize returns the PCSA estimate; an empty bitmap estimates 0.
func PCSAFinalize(ctx Context, state []byte) int64 {
	if bitmapsEmpty(state) {
		ctx.Free(state)
		return 0
	}
	return pcsaEstimate(avgRunLength(ctx, state))
}
