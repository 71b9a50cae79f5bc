// Copyright 2021 Matrix Origin
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

package types

// Value is the tagged nullable scalar shared by every kernel. It is the
// boundary representation used by the hashing interface and by the
// small per-variant function table; the hot per-row Update paths of
// numeric kernels are monomorphized with Go generics and never
// construct a Value.
type Value struct {
	Oid    Oid
	IsNull bool

	I64 int64   // Boolean/TinyInt/SmallInt/Int/BigInt
	F64 float64 // Float/Double

	Str []byte // String: not owned by the Value

	Ts Timestamp

	Dec32  Decimal32
	Dec64  Decimal64
	Dec128 Decimal128
}

func NullValue(oid Oid) Value { return Value{Oid: oid, IsNull: true} }

func BigIntValue(v int64) Value { return Value{Oid: T_int64, I64: v} }

func DoubleValue(v float64) Value { return Value{Oid: T_float64, F64: v} }

func StringValue(v []byte) Value { return Value{Oid: T_varchar, Str: v} }

func TimestampValue(v Timestamp) Value { return Value{Oid: T_timestamp, Ts: v} }
