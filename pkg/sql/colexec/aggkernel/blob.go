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
	"fmt"
	"math"

	"github.com/mo-agg/aggkernel/internal/aggerr"
)

// Every intermediate state is materialized as a byte string holding the
// semantic structure the kernel keeps. We encode fields with
// binary.NativeEndian rather than reinterpreting a Go struct's memory in
// place, to avoid pinning Go's struct layout (which can vary padding
// across compilers) as a wire contract.
var nativeEndian = binary.NativeEndian

func mustLen(state []byte, want int) {
	if state == nil {
		panic(fmt.Errorf("%w", aggerr.ErrNilState))
	}
	if len(state) != want {
		panic(fmt.Errorf("%w: got %d want %d", aggerr.ErrStateLenMismatch, len(state), want))
	}
}

func getI64(b []byte, off int) int64  { return int64(nativeEndian.Uint64(b[off:])) }
func putI64(b []byte, off int, v int64) { nativeEndian.PutUint64(b[off:], uint64(v)) }

func getU64(b []byte, off int) uint64  { return nativeEndian.Uint64(b[off:]) }
func putU64(b []byte, off int, v uint64) { nativeEndian.PutUint64(b[off:], v) }

func getF64(b []byte, off int) float64 {
	return math.Float64frombits(nativeEndian.Uint64(b[off:]))
}
func putF64(b []byte, off int, v float64) {
	nativeEndian.PutUint64(b[off:], math.Float64bits(v))
}

func getI32(b []byte, off int) int32  { return int32(nativeEndian.Uint32(b[off:])) }
func putI32(b []byte, off int, v int32) { nativeEndian.PutUint32(b[off:], uint32(v)) }
