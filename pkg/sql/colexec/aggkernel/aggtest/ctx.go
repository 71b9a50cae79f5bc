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

// Package aggtest is an in-memory Context implementation used only by
// kernel tests: plain make/append backs Allocate/Reallocate, and
// AddWarning collects its messages instead of posting them to a query
// session.
package aggtest

import (
	"fmt"

	"github.com/mo-agg/aggkernel/pkg/container/types"
)

// Ctx is a throwaway Context good for exactly one aggregation. ArgTypes
// and RetType are set directly by the test before use.
type Ctx struct {
	ArgTypes []types.Type
	RetType  types.Type
	Warnings []string
}

func New(argTypes ...types.Type) *Ctx {
	return &Ctx{ArgTypes: argTypes}
}

func (c *Ctx) Allocate(n int) []byte {
	return make([]byte, n)
}

func (c *Ctx) Reallocate(p []byte, n int) []byte {
	if n <= len(p) {
		return p[:n]
	}
	grown := make([]byte, n)
	copy(grown, p)
	return grown
}

func (c *Ctx) Free(p []byte) {}

func (c *Ctx) ArgType(i int) types.Type {
	if i < 0 || i >= len(c.ArgTypes) {
		return types.Type{}
	}
	return c.ArgTypes[i]
}

func (c *Ctx) ReturnType() types.Type { return c.RetType }

func (c *Ctx) AddWarning(format string, args ...any) {
	c.Warnings = append(c.Warnings, fmt.Sprintf(format, args...))
}
