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

// Package aggkernel implements the aggregate function kernel library:
// COUNT/SUM/AVG/MIN/MAX, string concat, the PCSA and HyperLogLog distinct
// estimators, reservoir-sample statistics, Knuth/Chan variance and the
// RANK/DENSE_RANK window kernel. Every kernel exposes the same
// five-operation contract: Init, Update, Merge, Serialize, Finalize.
package aggkernel

import "github.com/mo-agg/aggkernel/pkg/container/types"

// Context is the external collaborator every kernel is handed. The SQL
// engine's memory allocator, argument-type introspection and warning
// sink are supplied through it; this package never allocates memory or
// inspects types any other way.
type Context interface {
	Allocate(n int) []byte
	Reallocate(p []byte, n int) []byte
	Free(p []byte)

	// ArgType returns the declared type of the i-th call argument.
	ArgType(i int) types.Type
	// ReturnType returns the function's declared return type (only
	// decimal avg needs this).
	ReturnType() types.Type

	// AddWarning posts a non-fatal message to the query's warning
	// channel.
	AddWarning(format string, args ...any)
}

// Hasher is the hashing collaborator used by PC (Hash32, one call per
// seed), PCSA (Hash32, one call with seed 0) and HyperLogLog (Hash64,
// one fixed seed).
type Hasher interface {
	Hash32(v types.Value, t types.Type, seed uint32) uint32
	Hash64(v types.Value, t types.Type, seed uint64) uint64
}
