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

// avgStateLen is AvgState's fixed 16-byte wire layout: { sum: f64,
// count: i64 }.
const avgStateLen = 16

func AvgInit(ctx Context) []byte {
	b := ctx.Allocate(avgStateLen)
	putF64(b, 0, 0)
	putI64(b, 8, 0)
	return b
}

// AvgUpdate adds to sum and increments count; a no-op on null input.
func AvgUpdate(state []byte, v float64, isNull bool) {
	mustLen(state, avgStateLen)
	if isNull {
		return
	}
	putF64(state, 0, getF64(state, 0)+v)
	putI64(state, 8, getI64(state, 8)+1)
}

func AvgMerge(dst, src []byte) {
	mustLen(dst, avgStateLen)
	mustLen(src, avgStateLen)
	putF64(dst, 0, getF64(dst, 0)+getF64(src, 0))
	putI64(dst, 8, getI64(dst, 8)+getI64(src, 8))
}

func AvgSerialize(ctx Context, state []byte) []byte {
	mustLen(state, avgStateLen)
	out := ctx.Allocate(avgStateLen)
	copy(out, state)
	ctx.Free(state)
	return out
}

// AvgFinalize returns sum/count, or null when count is zero.
func AvgFinalize(ctx Context, state []byte) (float64, bool) {
	mustLen(state, avgStateLen)
	count := getI64(state, 8)
	sum := getF64(state, 0)
	ctx.Free(state)
	if count == 0 {
		return 0, true
	}
	return sum / float64(count), false
}

// --- Timestamp average: accumulate in double-seconds, invert at Finalize ---

func TimestampAvgUpdate(state []byte, v types.Timestamp, isNull bool) {
	if isNull {
		return
	}
	AvgUpdate(state, v.ToSeconds(), false)
}

// TimestampAvgFinalize converts the double-seconds average back to a
// Timestamp via the type's inverse.
func TimestampAvgFinalize(ctx Context, state []byte) (types.Timestamp, bool) {
	seconds, isNull := AvgFinalize(ctx, state)
	if isNull {
		return types.Timestamp{}, true
	}
	return types.TimestampFromSeconds(seconds), false
}
