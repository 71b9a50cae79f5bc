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

// defaultConcatSep is used when Update's separator argument is null.
var defaultConcatSep = []byte(", ")

const concatHeaderLen = 4

// StringConcatInit returns a nil state; the state stays nil (spec calls
// this "null") until the first Update, which allocates the 4-byte header.
func StringConcatInit() []byte { return nil }

// StringConcatUpdate: if state is null, allocate a 4-byte header
// containing sep's length; then append sep, then src. A null separator
// falls back to the default ", ".
func StringConcatUpdate(ctx Context, state []byte, src []byte, sep []byte, srcIsNull, sepIsNull bool) []byte {
	if srcIsNull {
		return state
	}
	if sepIsNull {
		sep = defaultConcatSep
	}
	if state == nil {
		state = ctx.Allocate(concatHeaderLen)
		putI32(state, 0, int32(len(sep)))
	}
	newLen := len(state) + len(sep) + len(src)
	state = ctx.Reallocate(state, newLen)
	off := len(state) - len(sep) - len(src)
	copy(state[off:], sep)
	copy(state[off+len(sep):], src)
	return state
}

// StringConcatMerge: if dst is null, copy src's header; then append
// src's payload excluding src's 4-byte header. This preserves dst's own
// delimiter choice across the merged tail -- the delimiter of the first
// shard to arrive wins. This kernel is associative but not commutative:
// the engine must not reorder inputs within a group.
func StringConcatMerge(ctx Context, dst, src []byte) []byte {
	if src == nil {
		return dst
	}
	if dst == nil {
		dst = ctx.Allocate(concatHeaderLen)
		copy(dst, src[:concatHeaderLen])
	}
	tail := src[concatHeaderLen:]
	newLen := len(dst) + len(tail)
	dst = ctx.Reallocate(dst, newLen)
	copy(dst[len(dst)-len(tail):], tail)
	return dst
}

// StringConcatFinalize reads sep_len from the header, skips the header
// and the leading delimiter copy, and returns the remainder.
func StringConcatFinalize(ctx Context, state []byte) ([]byte, bool) {
	if state == nil {
		return nil, true
	}
	sepLen := int(getI32(state, 0))
	result := append([]byte(nil), state[concatHeaderLen+sepLen:]...)
	ctx.Free(state)
	return result, false
}
