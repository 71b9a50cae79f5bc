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

// Count's state is a plain BigInt starting at zero. COUNT and COUNT(*)
// share the state layout; only CountStarUpdate increments on null
// input.
const countStateLen = 8

func CountInit(ctx Context) []byte {
	b := ctx.Allocate(countStateLen)
	putI64(b, 0, 0)
	return b
}

// CountUpdate increments on a non-null input; a no-op on null, matching
// every other kernel's null-neutrality on Update.
func CountUpdate(ctx Context, v types.Value, state []byte) {
	mustLen(state, countStateLen)
	if v.IsNull {
		return
	}
	putI64(state, 0, getI64(state, 0)+1)
}

// CountStarUpdate is the sole kernel operation in this library that counts
// nulls: it increments unconditionally, matching COUNT(*).
func CountStarUpdate(ctx Context, state []byte) {
	mustLen(state, countStateLen)
	putI64(state, 0, getI64(state, 0)+1)
}

func CountMerge(ctx Context, src, dst []byte) {
	mustLen(src, countStateLen)
	mustLen(dst, countStateLen)
	putI64(dst, 0, getI64(dst, 0)+getI64(src, 0))
}

// CountSerialize is the identity transform: Count's state is already the
// wire format.
func CountSerialize(ctx Context, state []byte) []byte {
	mustLen(state, countStateLen)
	return state
}

// CountFinalize returns the count directly; Count never returns a typed
// null, even for an empty group.
func CountFinalize(ctx Context, state []byte) int64 {
	mustLen(state, countStateLen)
	result := getI64(state, 0)
	ctx.Free(state)
	return result
}
