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

// Package aggerr carries the sentinel errors for programmer-contract
// violations: these are precondition failures guaranteed never to
// happen by a correct caller, not recoverable conditions, so kernels
// panic with them rather than return them.
package aggerr

import "errors"

var (
	// ErrStateLenMismatch means a serialized state blob's length does not
	// match the kernel/type pair's fixed size.
	ErrStateLenMismatch = errors.New("aggkernel: state blob length mismatch")

	// ErrNilState means Update/Merge/Serialize/Finalize was handed a nil
	// or null state where Init guarantees a non-null one.
	ErrNilState = errors.New("aggkernel: nil state")
)
