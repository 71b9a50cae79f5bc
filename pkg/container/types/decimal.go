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

import (
	"fmt"
	"math/big"
	"math/bits"
)

// Decimal32 and Decimal64 are plain two's-complement backings, selected
// by precision (<=9 -> 32 bits, <=19 -> 64 bits). Only Decimal128 needs
// custom arithmetic since Go has no native 128-bit integer.
type Decimal32 int32
type Decimal64 int64

// Decimal128 is a signed 128-bit two's-complement integer, laid out as
// two uint64 halves the same way matrixone's container/types.Decimal128
// does ({B0_63, B64_127}, renamed here Lo/Hi for clarity). No ecosystem
// int128 type produces this exact wire layout, so its arithmetic is
// hand-built rather than borrowed.
type Decimal128 struct {
	Lo uint64 // low 64 bits
	Hi uint64 // high 64 bits, sign-extended
}

// Decimal128FromInt64 widens a plain int64 into the 128-bit backing.
func Decimal128FromInt64(v int64) Decimal128 {
	hi := uint64(0)
	if v < 0 {
		hi = ^uint64(0)
	}
	return Decimal128{Lo: uint64(v), Hi: hi}
}

func (d Decimal128) IsNegative() bool {
	return d.Hi&(1<<63) != 0
}

func (d Decimal128) Neg() Decimal128 {
	lo, carry := bits.Add64(^d.Lo, 1, 0)
	hi, _ := bits.Add64(^d.Hi, 0, carry)
	return Decimal128{Lo: lo, Hi: hi}
}

// Add returns d+o along with whether the true mathematical sum overflows
// the signed 128-bit range. Overflow can only happen when both operands
// share a sign and the result's sign differs from theirs.
func (d Decimal128) Add(o Decimal128) (Decimal128, bool) {
	lo, carry := bits.Add64(d.Lo, o.Lo, 0)
	hi, _ := bits.Add64(d.Hi, o.Hi, carry)
	sum := Decimal128{Lo: lo, Hi: hi}
	overflow := d.IsNegative() == o.IsNegative() && sum.IsNegative() != d.IsNegative()
	return sum, overflow
}

func (d Decimal128) Cmp(o Decimal128) int {
	if d.IsNegative() != o.IsNegative() {
		if d.IsNegative() {
			return -1
		}
		return 1
	}
	if d.Hi != o.Hi {
		if d.Hi < o.Hi {
			return -1
		}
		return 1
	}
	if d.Lo != o.Lo {
		if d.Lo < o.Lo {
			return -1
		}
		return 1
	}
	return 0
}

func (d Decimal128) bigInt() *big.Int {
	b := new(big.Int)
	if d.IsNegative() {
		neg := d.Neg()
		b.SetUint64(neg.Hi)
		b.Lsh(b, 64)
		b.Or(b, new(big.Int).SetUint64(neg.Lo))
		b.Neg(b)
		return b
	}
	b.SetUint64(d.Hi)
	b.Lsh(b, 64)
	b.Or(b, new(big.Int).SetUint64(d.Lo))
	return b
}

var (
	decimal128Max = func() *big.Int {
		v := new(big.Int).Lsh(big.NewInt(1), 127)
		return v.Sub(v, big.NewInt(1))
	}()
	decimal128Min = func() *big.Int {
		v := new(big.Int).Lsh(big.NewInt(1), 127)
		return v.Neg(v)
	}()
)

func decimal128FromBig(b *big.Int) (Decimal128, bool) {
	if b.Cmp(decimal128Max) > 0 || b.Cmp(decimal128Min) < 0 {
		return Decimal128{}, true
	}
	neg := b.Sign() < 0
	abs := new(big.Int).Abs(b)
	words := abs.Bits()
	var lo, hi uint64
	if len(words) > 0 {
		lo = uint64(words[0])
	}
	if len(words) > 1 {
		hi = uint64(words[1])
	}
	if bits.UintSize == 32 {
		// on 32-bit platforms big.Word is 32 bits; recombine defensively.
		lo, hi = 0, 0
		bs := abs.Bytes()
		for i, bnum := range bs {
			shift := uint(8 * (len(bs) - 1 - i)) // Bytes() is big-endian
			if shift < 64 {
				lo |= uint64(bnum) << shift
			} else {
				hi |= uint64(bnum) << (shift - 64)
			}
		}
		_ = bs
	}
	d := Decimal128{Lo: lo, Hi: hi}
	if neg {
		d = d.Neg()
	}
	return d, false
}

// DivideRound divides d (the accumulated sum, at the output scale) by a
// non-negative count, rounding half away from zero. The divide operates
// in 128-bit with two sentinels, isNaN and overflow, rather than an
// error return, since a null-typed result is not itself a failure.
func (d Decimal128) DivideRound(count int64) (result Decimal128, isNaN, overflow bool) {
	if count == 0 {
		return Decimal128{}, true, false
	}
	num := d.bigInt()
	den := big.NewInt(count)
	q, r := new(big.Int).QuoRem(num, den, new(big.Int))
	// round half away from zero
	r2 := new(big.Int).Mul(r, big.NewInt(2))
	r2.Abs(r2)
	if r2.Cmp(den.Abs(den)) >= 0 {
		if num.Sign()*den.Sign() < 0 {
			q.Sub(q, big.NewInt(1))
		} else {
			q.Add(q, big.NewInt(1))
		}
	}
	res, of := decimal128FromBig(q)
	if of {
		return Decimal128{}, false, true
	}
	return res, false, false
}

func (d Decimal128) String() string {
	return d.bigInt().String()
}

// ToFloat64 converts the fixed-point decimal (backing value / 10^scale)
// to a double, used by the reservoir sample printer and by places that
// need an approximate numeric comparator.
func (d Decimal128) ToFloat64(scale int32) float64 {
	f := new(big.Float).SetInt(d.bigInt())
	if scale > 0 {
		div := new(big.Float).SetInt(pow10(scale))
		f.Quo(f, div)
	}
	v, _ := f.Float64()
	return v
}

func pow10(n int32) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}

// Decimal128Max/Min are the representable range boundaries; the
// decimal-avg overflow tests use Decimal128Max.
func Decimal128Max() Decimal128 { d, _ := decimal128FromBig(decimal128Max); return d }
func Decimal128Min() Decimal128 { d, _ := decimal128FromBig(decimal128Min); return d }

// FormatDecimal renders a fixed-point value (v/10^scale) the way the
// engine would print a DECIMAL column, used by string-producing
// finalizers (reservoir sample printing).
func FormatDecimal(v Decimal128, scale int32) string {
	if scale <= 0 {
		return v.String()
	}
	neg := v.IsNegative()
	abs := v
	if neg {
		abs = v.Neg()
	}
	s := abs.bigInt().String()
	for int32(len(s)) <= scale {
		s = "0" + s
	}
	whole := s[:int32(len(s))-scale]
	frac := s[int32(len(s))-scale:]
	sign := ""
	if neg {
		sign = "-"
	}
	return fmt.Sprintf("%s%s.%s", sign, whole, frac)
}
