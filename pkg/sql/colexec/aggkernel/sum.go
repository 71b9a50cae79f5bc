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

// SumState is Sum<Src,Dst>'s running total, monomorphized over every
// native numeric type the same way matrixone's pkg/sql/colexec/agg.Avg[T
// Numeric] monomorphizes over its Numeric constraint: generic
// instantiation at build time avoids dynamic dispatch per row.
type SumState[T types.Numeric] struct {
	IsNull bool
	Value  T
}

func SumInit[T types.Numeric]() *SumState[T] { return &SumState[T]{IsNull: true} }

// SumUpdate: Dst starts null; the first non-null input flips null off
// and zero-initializes; subsequent adds accumulate.
func SumUpdate[T types.Numeric](s *SumState[T], v T, isNull bool) {
	if isNull {
		return
	}
	if s.IsNull {
		s.IsNull = false
		s.Value = 0
	}
	s.Value += v
}

func SumMerge[T types.Numeric](dst, src *SumState[T]) {
	if src.IsNull {
		return
	}
	if dst.IsNull {
		dst.IsNull = false
		dst.Value = 0
	}
	dst.Value += src.Value
}

// SumFinalize reports the total and whether the group's count stayed
// zero, in which case the kernel returns a typed null.
func SumFinalize[T types.Numeric](s *SumState[T]) (T, bool) {
	return s.Value, s.IsNull
}

const sumWireLen = 9 // 1 null-flag byte + 8 payload bytes (int64 or float64 bits)

func isFloatKind[T types.Numeric](v T) bool {
	switch any(v).(type) {
	case float32, float64:
		return true
	default:
		return false
	}
}

// SumSerialize packs a SumState into its fixed 9-byte wire form.
func SumSerialize[T types.Numeric](ctx Context, s *SumState[T]) []byte {
	b := ctx.Allocate(sumWireLen)
	b[0] = 0
	if s.IsNull {
		b[0] = 1
		return b
	}
	if isFloatKind(s.Value) {
		putF64(b, 1, float64(s.Value))
	} else {
		putI64(b, 1, int64(s.Value))
	}
	return b
}

// SumDeserialize reconstructs a SumState from its wire form (used on the
// receiving side of a Merge across a network transport).
func SumDeserialize[T types.Numeric](b []byte) *SumState[T] {
	mustLen(b, sumWireLen)
	s := &SumState[T]{}
	if b[0] == 1 {
		s.IsNull = true
		return s
	}
	var zero T
	if isFloatKind(zero) {
		s.Value = T(getF64(b, 1))
	} else {
		s.Value = T(getI64(b, 1))
	}
	return s
}

// --- Decimal sum (width-aware variant) ---

// DecimalSumState accumulates into a 128-bit field regardless of the
// input's declared width; the source width (4/8/16 bytes) is chosen by
// the argument's precision: <=9 reads val4, <=19 reads val8, else
// val16, but the destination always accumulates into the 128-bit
// field.
type DecimalSumState struct {
	IsNull bool
	Sum    types.Decimal128
}

func DecimalSumInit() *DecimalSumState { return &DecimalSumState{IsNull: true} }

// DecimalSumUpdate reads src at the width selected by the argument's
// declared Oid (decimal32 -> val4, decimal64 -> val8, decimal128 ->
// val16), exactly mirroring original_source's SumUpdate width switch,
// then widens into the 128-bit accumulator.
func DecimalSumUpdate(s *DecimalSumState, src types.Value) {
	if src.IsNull {
		return
	}
	if s.IsNull {
		s.IsNull = false
		s.Sum = types.Decimal128{}
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
	sum, _ := s.Sum.Add(widened)
	s.Sum = sum
}

func DecimalSumMerge(dst, src *DecimalSumState) {
	if src.IsNull {
		return
	}
	if dst.IsNull {
		dst.IsNull = false
		dst.Sum = types.Decimal128{}
	}
	sum, _ := dst.Sum.Add(src.Sum)
	dst.Sum = sum
}

func DecimalSumFinalize(s *DecimalSumState) (types.Decimal128, bool) {
	return s.Sum, s.IsNull
}
