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
	"encoding/binary"
	"hash/fnv"
	"math"

	"github.com/dchest/siphash"
	"github.com/mo-agg/aggkernel/pkg/container/types"
)

// DefaultHasher implements Hasher with SipHash-2-4 for the re-seedable
// Hash32 (PC calls it once per seed 0..63, PCSA once with seed 0) and
// FNV-64 for Hash64
// (HyperLogLog's hash is fixed to FNV). Grounded on SnellerInc-sneller's
// use of github.com/dchest/siphash for row hashing.
type DefaultHasher struct{}

// valueBytes canonicalizes a Value into the byte string that gets
// hashed, honoring the declared type's precision so that two decimals
// compare-equal iff they hash-equal.
func valueBytes(v types.Value, t types.Type) []byte {
	if v.IsNull {
		return nil
	}
	var buf [16]byte
	switch t.Oid {
	case types.T_bool, types.T_int8, types.T_int16, types.T_int32, types.T_int64,
		types.T_uint8, types.T_uint16, types.T_uint32, types.T_uint64:
		binary.LittleEndian.PutUint64(buf[:8], uint64(v.I64))
		return append([]byte(nil), buf[:8]...)
	case types.T_float32, types.T_float64:
		binary.LittleEndian.PutUint64(buf[:8], math.Float64bits(v.F64))
		return append([]byte(nil), buf[:8]...)
	case types.T_char, types.T_varchar:
		return v.Str
	case types.T_timestamp:
		binary.LittleEndian.PutUint32(buf[:4], uint32(v.Ts.DateDays))
		binary.LittleEndian.PutUint64(buf[4:12], uint64(v.Ts.TimeOfDayNs))
		return append([]byte(nil), buf[:12]...)
	case types.T_decimal32:
		binary.LittleEndian.PutUint32(buf[:4], uint32(v.Dec32))
		return append([]byte(nil), buf[:4]...)
	case types.T_decimal64:
		binary.LittleEndian.PutUint64(buf[:8], uint64(v.Dec64))
		return append([]byte(nil), buf[:8]...)
	case types.T_decimal128:
		binary.LittleEndian.PutUint64(buf[:8], v.Dec128.Lo)
		binary.LittleEndian.PutUint64(buf[8:16], v.Dec128.Hi)
		return append([]byte(nil), buf[:16]...)
	default:
		return nil
	}
}

func (DefaultHasher) Hash32(v types.Value, t types.Type, seed uint32) uint32 {
	b := valueBytes(v, t)
	k0 := uint64(seed)*0x9E3779B97F4A7C15 + 1
	k1 := uint64(seed) ^ 0xD6E8FEB86659FD93
	h := siphash.Hash(k0, k1, b)
	return uint32(h) ^ uint32(h>>32)
}

func (DefaultHasher) Hash64(v types.Value, t types.Type, seed uint64) uint64 {
	b := valueBytes(v, t)
	h := fnv.New64a()
	var seedBuf [8]byte
	binary.LittleEndian.PutUint64(seedBuf[:], seed)
	h.Write(seedBuf[:])
	h.Write(b)
	return h.Sum64()
}

// FNV64Seed is the fixed seed used for every HyperLogLog Hash64 call.
const FNV64Seed uint64 = 14695981039346656037 // FNV-64 offset basis
