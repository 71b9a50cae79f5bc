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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mo-agg/aggkernel/pkg/container/types"
	"github.com/mo-agg/aggkernel/pkg/sql/colexec/aggkernel/aggtest"
)

func TestCountEmptyGroupIsZeroNotNull(t *testing.T) {
	ctx := aggtest.New()
	state := CountInit(ctx)
	require.EqualValues(t, 0, CountFinalize(ctx, state))
}

func TestCountSkipsNulls(t *testing.T) {
	ctx := aggtest.New()
	state := CountInit(ctx)
	CountUpdate(ctx, types.BigIntValue(1), state)
	CountUpdate(ctx, types.NullValue(types.T_int64), state)
	CountUpdate(ctx, types.BigIntValue(2), state)
	require.EqualValues(t, 2, CountFinalize(ctx, state))
}

func TestCountStarCountsNulls(t *testing.T) {
	ctx := aggtest.New()
	state := CountInit(ctx)
	CountStarUpdate(ctx, state)
	CountStarUpdate(ctx, state)
	require.EqualValues(t, 2, CountFinalize(ctx, state))
}

func TestCountMerge(t *testing.T) {
	ctx := aggtest.New()
	a := CountInit(ctx)
	b := CountInit(ctx)
	CountUpdate(ctx, types.BigIntValue(1), a)
	CountUpdate(ctx, types.BigIntValue(1), b)
	CountUpdate(ctx, types.BigIntValue(1), b)
	CountMerge(ctx, b, a)
	require.EqualValues(t, 3, CountFinalize(ctx, a))
}
