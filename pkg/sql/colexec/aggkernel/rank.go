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

// rankStateLen is RankState's fixed 16-byte wire layout: { rank: i64,
// count: i64 }. Unlike every other kernel this one carries meaning
// across output rows rather than across input rows of one group: it
// tracks the current rank and how many rows of the partition have been
// seen so far (count is never reset; RANK takes it as the new rank when
// the ORDER BY value changes).
const rankStateLen = 16

func RankInit(ctx Context) []byte {
	b := ctx.Allocate(rankStateLen)
	putI64(b, 0, 1)
	putI64(b, 8, 0)
	return b
}

// RankUpdate takes no value argument; the engine calls it once per
// output row and separately tells the kernel whether the ORDER BY key
// changed from the previous row via sameGroup. RANK leaves gaps for
// ties; DENSE_RANK does not -- selected by dense.
func RankUpdate(state []byte, sameGroup bool, dense bool) {
	mustLen(state, rankStateLen)
	count := getI64(state, 8)
	wasFirstRow := count == 0
	count++
	putI64(state, 8, count)
	if sameGroup || wasFirstRow {
		return
	}
	if dense {
		putI64(state, 0, getI64(state, 0)+1)
	} else {
		putI64(state, 0, count)
	}
}

func RankSerialize(ctx Context, state []byte) []byte {
	mustLen(state, rankStateLen)
	out := ctx.Allocate(rankStateLen)
	copy(out, state)
	ctx.Free(state)
	return out
}

// RankGetValue returns the rank to emit for the current row without
// resetting any state -- distinct from Finalize, which every other
// kernel calls exactly once per group but this window kernel calls once
// per row.
func RankGetValue(state []byte) int64 {
	mustLen(state, rankStateLen)
	return getI64(state, 0)
}

// RankFinalize returns the last rank value and frees the state, called
// once the window has emitted its final row -- matching
// original_source's RankFinalize/DenseRankFinalize.
func RankFinalize(ctx Context, state []byte) int64 {
	mustLen(state, rankStateLen)
	rank := getI64(state, 0)
	ctx.Free(state)
	return rank
}
