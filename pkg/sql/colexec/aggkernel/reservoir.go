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
	"bytes"
	"container/heap"
	"math"
	"sort"

	"golang.org/x/exp/rand"

	"github.com/mo-agg/aggkernel/pkg/container/types"
)

// The reservoir's capacity is 100 buckets of 200 samples each, 20,000
// samples in all. Only the product is used: samples are stored as one
// flat array, and HistogramFinalize takes its bucket count as an
// argument.
const (
	reservoirNumBuckets = 100
	reservoirBucketSize = 200
	ReservoirCapacity   = reservoirNumBuckets * reservoirBucketSize // 20000
)

// Sample values are stored at a fixed width per the state's kind byte:
// numeric samples keep their native 8-byte bit pattern; string samples
// are truncated to a fixed 10 bytes, zero-padded when shorter, so the
// reservoir's wire size stays a fixed function of the retained sample
// count regardless of the source strings' lengths.
const (
	reservoirKindInt    byte = 0
	reservoirKindFloat  byte = 1
	reservoirKindString byte = 2

	reservoirStrWidth = 10
	reservoirKeyWidth = 8 // float64 A-ES key, unset (0) until Serialize

	// header: kind(1) + count(4) + numSeen(8) + rng(8)
	reservoirHeaderLen = 1 + 4 + 8 + 8
)

func reservoirKindOf(t types.Type) byte {
	switch t.Oid {
	case types.T_char, types.T_varchar:
		return reservoirKindString
	case types.T_float32, types.T_float64:
		return reservoirKindFloat
	default:
		return reservoirKindInt
	}
}

func reservoirValueWidth(kind byte) int {
	if kind == reservoirKindString {
		return reservoirStrWidth
	}
	return 8
}

func reservoirSampleWidth(kind byte) int { return reservoirValueWidth(kind) + reservoirKeyWidth }

func reservoirCount(state []byte) int32   { return getI32(state, 1) }
func putReservoirCount(state []byte, n int32) { putI32(state, 1, n) }

// ReservoirInit allocates the header-only state for a reservoir over
// argument type t, seeding the chained-splitmix RNG used by Update.
func ReservoirInit(ctx Context, t types.Type, seed uint64) []byte {
	b := ctx.Allocate(reservoirHeaderLen)
	b[0] = reservoirKindOf(t)
	putReservoirCount(b, 0)
	putI64(b, 5, 0)
	putU64(b, 13, seed)
	return b
}

func writeReservoirValue(state []byte, off int, kind byte, v types.Value) {
	switch kind {
	case reservoirKindFloat:
		putF64(state, off, v.F64)
	case reservoirKindString:
		var buf [reservoirStrWidth]byte
		copy(buf[:], v.Str) // truncates to reservoirStrWidth, zero-pads if shorter
		copy(state[off:off+reservoirStrWidth], buf[:])
	default:
		putI64(state, off, v.I64)
	}
}

func readReservoirValue(state []byte, off int, kind byte) types.Value {
	switch kind {
	case reservoirKindFloat:
		return types.DoubleValue(getF64(state, off))
	case reservoirKindString:
		raw := state[off : off+reservoirStrWidth]
		end := len(raw)
		for end > 0 && raw[end-1] == 0 {
			end--
		}
		return types.StringValue(append([]byte(nil), raw[:end]...))
	default:
		return types.BigIntValue(getI64(state, off))
	}
}

func compareReservoirValues(kind byte, a, b types.Value) int {
	switch kind {
	case reservoirKindFloat:
		switch {
		case a.F64 < b.F64:
			return -1
		case a.F64 > b.F64:
			return 1
		default:
			return 0
		}
	case reservoirKindString:
		return bytes.Compare(a.Str, b.Str)
	default:
		switch {
		case a.I64 < b.I64:
			return -1
		case a.I64 > b.I64:
			return 1
		default:
			return 0
		}
	}
}

// splitmix64 advances a stateless RNG seed and returns the next
// pseudo-random value, keeping the whole generator inside the state's
// 8-byte rng field instead of requiring a live *rand.Rand across calls
// that cross a serialize/deserialize boundary.
func splitmix64(seed uint64) (next uint64, out uint64) {
	seed += 0x9E3779B97F4A7C15
	z := seed
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	z = z ^ (z >> 31)
	return seed, z
}

// ReservoirUpdate implements classic algorithm-R sampling: the first
// ReservoirCapacity non-null rows are kept outright; thereafter row i
// (0-based, i >= capacity) replaces a uniformly chosen existing slot
// with probability capacity/(i+1).
func ReservoirUpdate(ctx Context, state []byte, v types.Value) []byte {
	if v.IsNull {
		return state
	}
	kind := state[0]
	sampleWidth := reservoirSampleWidth(kind)
	numSeen := getI64(state, 5) + 1
	putI64(state, 5, numSeen)
	seed, r := splitmix64(getU64(state, 13))
	putU64(state, 13, seed)

	count := reservoirCount(state)
	if int(count) < ReservoirCapacity {
		state = ctx.Reallocate(state, reservoirHeaderLen+int(count+1)*sampleWidth)
		off := reservoirHeaderLen + int(count)*sampleWidth
		writeReservoirValue(state, off, kind, v)
		putF64(state, off+reservoirValueWidth(kind), 0)
		putReservoirCount(state, count+1)
		return state
	}
	j := int64(r % uint64(numSeen))
	if j < int64(ReservoirCapacity) {
		off := reservoirHeaderLen + int(j)*sampleWidth
		writeReservoirValue(state, off, kind, v)
	}
	return state
}

// reservoirKeyPRNG is shared by every state in the process at Serialize
// time. Algorithm R's per-row acceptance probability already depends on
// that state's own NumSeen, so a state that has seen fewer rows must
// not be weighted the same as one that has seen many when two states
// are later merged. Rather than pay a weighted-key rand() call on every
// Update (the textbook A-Chao/A-ES approach), this kernel defers key
// assignment to Serialize and draws all of a state's keys from one
// process-wide generator. This trades strict per-row independence for a
// large constant-factor speedup on the hot Update path; see DESIGN.md's
// Open Question log for the tradeoff this accepts.
var reservoirKeyPRNG = rand.New(rand.NewSource(0x5eed))

func powInv(u, weight float64) float64 {
	if weight <= 1 {
		return u
	}
	// u^(1/w) via exp(log(u)/w); u is in (0,1) except for the
	// vanishingly rare exact-zero draw, treated as the smallest key.
	if u <= 0 {
		return 0
	}
	return math.Exp(math.Log(u) / weight)
}

// ReservoirSerialize assigns each retained sample its A-ES key
// (key = u^(1/w), w = this state's population share) and returns a
// fresh wire blob: { kind: u8, count: u32, numSeen: i64, rng: u64,
// samples: count * (value, key) }, matching §6.3's
// "4 + 8 + rng + N*sizeof(Sample<T>)" formula.
func ReservoirSerialize(ctx Context, state []byte) []byte {
	kind := state[0]
	count := int(reservoirCount(state))
	numSeen := getI64(state, 5)
	valWidth := reservoirValueWidth(kind)
	sampleWidth := valWidth + reservoirKeyWidth
	weight := float64(numSeen) / float64(count)
	if weight < 1 {
		weight = 1
	}
	out := ctx.Allocate(len(state))
	copy(out, state)
	for i := 0; i < count; i++ {
		off := reservoirHeaderLen + i*sampleWidth + valWidth
		u := reservoirKeyPRNG.Float64()
		putF64(out, off, powInv(u, weight))
	}
	ctx.Free(state)
	return out
}

// reservoirRecord is a merge-time in-memory copy of one retained sample:
// its raw value bytes plus its A-ES key.
type reservoirRecord struct {
	value []byte
	key   float64
}

type sampleHeap []reservoirRecord

func (h sampleHeap) Len() int           { return len(h) }
func (h sampleHeap) Less(i, j int) bool { return h[i].key < h[j].key }
func (h sampleHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *sampleHeap) Push(x any)        { *h = append(*h, x.(reservoirRecord)) }
func (h *sampleHeap) Pop() any {
	old := *h
	n := len(old)
	v := old[n-1]
	*h = old[:n-1]
	return v
}

func reservoirRecordsOf(state []byte) []reservoirRecord {
	kind := state[0]
	count := int(reservoirCount(state))
	valWidth := reservoirValueWidth(kind)
	sampleWidth := valWidth + reservoirKeyWidth
	out := make([]reservoirRecord, count)
	for i := 0; i < count; i++ {
		off := reservoirHeaderLen + i*sampleWidth
		out[i] = reservoirRecord{
			value: append([]byte(nil), state[off:off+valWidth]...),
			key:   getF64(state, off+valWidth),
		}
	}
	return out
}

// ReservoirMerge folds src's Serialized, keyed samples into dst's,
// retaining only the ReservoirCapacity highest-keyed samples overall via
// a min-heap (the lowest key is evicted first): the union of two
// shards' reservoirs, weighted-resampled down to capacity. Both dst and
// src must already be Serialized (keys assigned).
func ReservoirMerge(ctx Context, dst, src []byte) []byte {
	kind := dst[0]
	valWidth := reservoirValueWidth(kind)
	sampleWidth := valWidth + reservoirKeyWidth
	numSeen := getI64(dst, 5) + getI64(src, 5)

	h := sampleHeap(reservoirRecordsOf(dst))
	heap.Init(&h)
	for _, rec := range reservoirRecordsOf(src) {
		if h.Len() < ReservoirCapacity {
			heap.Push(&h, rec)
			continue
		}
		if rec.key > h[0].key {
			heap.Pop(&h)
			heap.Push(&h, rec)
		}
	}

	out := ctx.Allocate(reservoirHeaderLen + len(h)*sampleWidth)
	out[0] = kind
	putReservoirCount(out, int32(len(h)))
	putI64(out, 5, numSeen)
	putU64(out, 13, getU64(dst, 13))
	for i, rec := range h {
		off := reservoirHeaderLen + i*sampleWidth
		copy(out[off:off+valWidth], rec.value)
		putF64(out, off+valWidth, rec.key)
	}
	ctx.Free(dst)
	ctx.Free(src)
	return out
}

func reservoirSortedValues(state []byte) ([]types.Value, byte) {
	kind := state[0]
	count := int(reservoirCount(state))
	valWidth := reservoirValueWidth(kind)
	sampleWidth := valWidth + reservoirKeyWidth
	vals := make([]types.Value, count)
	for i := 0; i < count; i++ {
		off := reservoirHeaderLen + i*sampleWidth
		vals[i] = readReservoirValue(state, off, kind)
	}
	sort.Slice(vals, func(i, j int) bool { return compareReservoirValues(kind, vals[i], vals[j]) < 0 })
	return vals, kind
}

// SamplesFinalize returns every retained sample value, sorted.
func SamplesFinalize(ctx Context, state []byte) []types.Value {
	vals, _ := reservoirSortedValues(state)
	ctx.Free(state)
	return vals
}

// AppxMedianFinalize returns the middle element of the sorted sample
// set as the approximate median.
func AppxMedianFinalize(ctx Context, state []byte) (types.Value, bool) {
	vals, _ := reservoirSortedValues(state)
	ctx.Free(state)
	if len(vals) == 0 {
		return types.Value{}, true
	}
	return vals[len(vals)/2], false
}

// HistogramFinalize splits the sorted samples into numBuckets
// equi-count buckets and returns each bucket's last (upper-boundary)
// value, matching original_source's
// sample_idx = (bucket_idx+1)*samples_per_bucket - 1.
func HistogramFinalize(ctx Context, state []byte, numBuckets int) []types.Value {
	vals, _ := reservoirSortedValues(state)
	ctx.Free(state)
	if len(vals) == 0 || numBuckets <= 0 {
		return nil
	}
	boundaries := make([]types.Value, 0, numBuckets)
	step := float64(len(vals)) / float64(numBuckets)
	for i := 1; i <= numBuckets; i++ {
		idx := int(float64(i)*step) - 1
		if idx >= len(vals) {
			idx = len(vals) - 1
		}
		if idx < 0 {
			idx = 0
		}
		boundaries = append(boundaries, vals[idx])
	}
	return boundaries
}

// NdvFinalize estimates the number of distinct values in the full
// population from the reservoir sample: it counts the distinct values
// actually present in the sample, then extrapolates by the ratio of
// population size to sample size, clamped to [distinctInSample,
// NumSeen] since the true count can never fall outside that range. This
// finalizer has no counterpart in original_source's reservoir sampling
// code; it is added because a fixed-capacity sample the engine already
// pays to maintain can support a second, useful estimator at no extra
// per-row cost.
func NdvFinalize(ctx Context, state []byte) int64 {
	numSeen := getI64(state, 5)
	vals, kind := reservoirSortedValues(state)
	ctx.Free(state)
	if len(vals) == 0 {
		return 0
	}
	distinct := int64(1)
	for i := 1; i < len(vals); i++ {
		if compareReservoirValues(kind, vals[i], vals[i-1]) != 0 {
			distinct++
		}
	}
	sampleSize := int64(len(vals))
	if numSeen <= sampleSize {
		return distinct
	}
	ratio := float64(numSeen) / float64(sampleSize)
	estimate := int64(float64(distinct) * ratio)
	if estimate < distinct {
		estimate = distinct
	}
	if estimate > numSeen {
		estimate = numSeen
	}
	return estimate
}
