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

// OrderedState is the null-tracking best-so-far for Min/Max over any
// Ordered scalar (numeric or plain string).
type OrderedState[T types.Ordered] struct {
	IsNull bool
	Value  T
}

func MinMaxInit[T types.Ordered]() *OrderedState[T] { return &OrderedState[T]{IsNull: true} }

func MinUpdate[T types.Ordered](s *OrderedState[T], v T, isNull bool) {
	if isNull {
		return
	}
	if s.IsNull || v < s.Value {
		s.IsNull, s.Value = false, v
	}
}

func MaxUpdate[T types.Ordered](s *OrderedState[T], v T, isNull bool) {
	if isNull {
		return
	}
	if s.IsNull || v > s.Value {
		s.IsNull, s.Value = false, v
	}
}

func MinMerge[T types.Ordered](dst, src *OrderedState[T]) {
	if src.IsNull {
		return
	}
	if dst.IsNull || src.Value < dst.Value {
		dst.IsNull, dst.Value = false, src.Value
	}
}

func MaxMerge[T types.Ordered](dst, src *OrderedState[T]) {
	if src.IsNull {
		return
	}
	if dst.IsNull || src.Value > dst.Value {
		dst.IsNull, dst.Value = false, src.Value
	}
}

func MinMaxFinalize[T types.Ordered](s *OrderedState[T]) (T, bool) {
	return s.Value, s.IsNull
}

// --- string Min/Max: owns a freshly-allocated copy of its current best ---

// StringMinMaxState owns the current best buffer, allocated from
// Context: it must be freed before being replaced.
type StringMinMaxState struct {
	IsNull bool
	Value  []byte
}

func StringMinMaxInit() *StringMinMaxState { return &StringMinMaxState{IsNull: true} }

func stringLess(a, b []byte) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

// stringMinMaxReplace frees the old buffer (if any) and copies the new
// value into a fresh allocation so the state outlives the row.
func stringMinMaxReplace(ctx Context, s *StringMinMaxState, v []byte) {
	if !s.IsNull {
		ctx.Free(s.Value)
	}
	copyBuf := ctx.Allocate(len(v))
	copy(copyBuf, v)
	s.IsNull = false
	s.Value = copyBuf
}

func StringMinUpdate(ctx Context, s *StringMinMaxState, v []byte, isNull bool) {
	if isNull {
		return
	}
	if s.IsNull || stringLess(v, s.Value) {
		stringMinMaxReplace(ctx, s, v)
	}
}

func StringMaxUpdate(ctx Context, s *StringMinMaxState, v []byte, isNull bool) {
	if isNull {
		return
	}
	if s.IsNull || stringLess(s.Value, v) {
		stringMinMaxReplace(ctx, s, v)
	}
}

func StringMinMerge(ctx Context, dst, src *StringMinMaxState) {
	if src.IsNull {
		return
	}
	if dst.IsNull || stringLess(src.Value, dst.Value) {
		stringMinMaxReplace(ctx, dst, src.Value)
	}
}

func StringMaxMerge(ctx Context, dst, src *StringMinMaxState) {
	if src.IsNull {
		return
	}
	if dst.IsNull || stringLess(dst.Value, src.Value) {
		stringMinMaxReplace(ctx, dst, src.Value)
	}
}

func StringMinMaxFinalize(ctx Context, s *StringMinMaxState) ([]byte, bool) {
	v, isNull := s.Value, s.IsNull
	if !isNull {
		ctx.Free(s.Value)
	}
	return v, isNull
}

// --- decimal Min/Max: width-aware compare per argument precision ---

// DecimalMinMaxState compares by the width the argument's precision
// selects, always storing the widened 128-bit value.
type DecimalMinMaxState struct {
	IsNull bool
	Value  types.Decimal128
}

func DecimalMinMaxInit() *DecimalMinMaxState { return &DecimalMinMaxState{IsNull: true} }

func decimalWiden(v types.Value) types.Decimal128 {
	switch v.Oid {
	case types.T_decimal32:
		return types.Decimal128FromInt64(int64(v.Dec32))
	case types.T_decimal64:
		return types.Decimal128FromInt64(int64(v.Dec64))
	default:
		return v.Dec128
	}
}

func DecimalMinUpdate(s *DecimalMinMaxState, v types.Value) {
	if v.IsNull {
		return
	}
	w := decimalWiden(v)
	if s.IsNull || w.Cmp(s.Value) < 0 {
		s.IsNull, s.Value = false, w
	}
}

func DecimalMaxUpdate(s *DecimalMinMaxState, v types.Value) {
	if v.IsNull {
		return
	}
	w := decimalWiden(v)
	if s.IsNull || w.Cmp(s.Value) > 0 {
		s.IsNull, s.Value = false, w
	}
}

func DecimalMinMerge(dst, src *DecimalMinMaxState) {
	if src.IsNull {
		return
	}
	if dst.IsNull || src.Value.Cmp(dst.Value) < 0 {
		dst.IsNull, dst.Value = false, src.Value
	}
}

func DecimalMaxMerge(dst, src *DecimalMinMaxState) {
	if src.IsNull {
		return
	}
	if dst.IsNull || src.Value.Cmp(dst.Value) > 0 {
		dst.IsNull, dst.Value = false, src.Value
	}
}

func DecimalMinMaxFinalize(s *DecimalMinMaxState) (types.Decimal128, bool) {
	return s.Value, s.IsNull
}

// --- timestamp Min/Max: lexicographic (date, time) compare ---

type TimestampMinMaxState struct {
	IsNull bool
	Value  types.Timestamp
}

func TimestampMinMaxInit() *TimestampMinMaxState { return &TimestampMinMaxState{IsNull: true} }

func TimestampMinUpdate(s *TimestampMinMaxState, v types.Timestamp, isNull bool) {
	if isNull {
		return
	}
	if s.IsNull || v.Compare(s.Value) < 0 {
		s.IsNull, s.Value = false, v
	}
}

func TimestampMaxUpdate(s *TimestampMinMaxState, v types.Timestamp, isNull bool) {
	if isNull {
		return
	}
	if s.IsNull || v.Compare(s.Value) > 0 {
		s.IsNull, s.Value = false, v
	}
}

func TimestampMinMerge(dst, src *TimestampMinMaxState) {
	if src.IsNull {
		return
	}
	if dst.IsNull || src.Value.Compare(dst.Value) < 0 {
		dst.IsNull, dst.Value = false, src.Value
	}
}

func TimestampMaxMerge(dst, src *TimestampMinMaxState) {
	if src.IsNull {
		return
	}
	if dst.IsNull || src.Value.Compare(dst.Value) > 0 {
		dst.IsNull, dst.Value = false, src.Value
	}
}

func TimestampMinMaxFinalize(s *TimestampMinMaxState) (types.Timestamp, bool) {
	return s.Value, s.IsNull
}
