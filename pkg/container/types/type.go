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

// Package types holds the value model shared by every aggregate kernel:
// tagged nullable scalars, the decimal triple and the timestamp split.
package types

import "fmt"

// Oid identifies the kind of a Type, mirroring matrixone's
// container/types.T oid enumeration.
type Oid uint8

const (
	T_bool Oid = iota
	T_int8
	T_int16
	T_int32
	T_int64
	T_uint8
	T_uint16
	T_uint32
	T_uint64
	T_float32
	T_float64
	T_char
	T_varchar
	T_timestamp
	T_decimal32
	T_decimal64
	T_decimal128
)

func (o Oid) String() string {
	switch o {
	case T_bool:
		return "BOOL"
	case T_int8:
		return "TINYINT"
	case T_int16:
		return "SMALLINT"
	case T_int32:
		return "INT"
	case T_int64:
		return "BIGINT"
	case T_uint8, T_uint16, T_uint32, T_uint64:
		return "UNSIGNED"
	case T_float32:
		return "FLOAT"
	case T_float64:
		return "DOUBLE"
	case T_char, T_varchar:
		return "VARCHAR"
	case T_timestamp:
		return "TIMESTAMP"
	case T_decimal32:
		return "DECIMAL32"
	case T_decimal64:
		return "DECIMAL64"
	case T_decimal128:
		return "DECIMAL128"
	default:
		return "UNKNOWN"
	}
}

// Type describes an argument or return type: its kind plus, for decimals,
// the declared precision/scale. Precision selects the backing width:
// <=9 -> 32 bits, <=19 -> 64 bits, else 128 bits.
type Type struct {
	Oid       Oid
	Width     int32 // byte size of the fixed-width payload, 0 for varlen
	Precision int32
	Scale     int32
}

func (t Type) String() string {
	if t.Oid == T_decimal32 || t.Oid == T_decimal64 || t.Oid == T_decimal128 {
		return fmt.Sprintf("%s(%d,%d)", t.Oid, t.Precision, t.Scale)
	}
	return t.Oid.String()
}

// DecimalWidth returns the backing width in bytes (4, 8 or 16) that a
// decimal of the given precision must be read from -- the same rule
// Sum<Src,Dst> uses to pick its source width.
func DecimalWidth(precision int32) int32 {
	switch {
	case precision <= 9:
		return 4
	case precision <= 19:
		return 8
	default:
		return 16
	}
}

// IsVarlen reports whether values of this type are variable-length
// (string) rather than a fixed-width payload.
func (t Type) IsVarlen() bool {
	return t.Oid == T_char || t.Oid == T_varchar
}

// Numeric is the generic constraint used to monomorphize Sum (and, via
// Ordered, Min/Max) over every native numeric input type, the way
// matrixone's pkg/sql/colexec/agg.Avg[T Numeric] does.
type Numeric interface {
	~int8 | ~int16 | ~int32 | ~int64 |
		~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Ordered is Numeric plus plain strings, the inputs the generic Min/Max
// kernels compare with Go's < and > operators.
type Ordered interface {
	Numeric | ~string
}
