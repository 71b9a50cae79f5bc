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

func TestAvgOfOneToThousand(t *testing.T) {
	ctx := aggtest.New()
	state := AvgInit(ctx)
	for i := 1; i <= 1000; i++ {
		AvgUpdate(state, float64(i), false)
	}
	avg, isNull := AvgFinalize(ctx, state)
	require.False(t, isNull)
	require.InDelta(t, 500.5, avg, 1e-9)
}

func TestAvgEmptyGroupIsNull(t *testing.T) {
	ctx := aggtest.New()
	state := AvgInit(ctx)
	_, isNull := AvgFinalize(ctx, state)
	require.True(t, isNull)
}

func TestAvgMerge(t *testing.T) {
	ctx := aggtest.New()
	a := AvgInit(ctx)
	b := AvgInit(ctx)
	AvgUpdate(a, 10, false)
	AvgUpdate(a, 20, false)
	AvgUpdate(b, 30, false)
	AvgMerge(a, b)
	avg, _ := AvgFinalize(ctx, a)
	require.InDelta(t, 20, avg, 1e-9)
}

func TestTimestampAvgRoundTrip(t *testing.T) {
	ctx := aggtest.New()
	state := AvgInit(ctx)
	TimestampAvgUpdate(state, types.Timestamp{DateDays: 0, TimeOfDayNs: 0}, false)
	TimestampAvgUpdate(state, types.Timestamp{DateDays: 2, TimeOfDayNs: 0}, false)
	avg, isNull := TimestampAvgFinalize(ctx, state)
	require.False(t, isNull)
	require.EqualValues(t, 1, avg.DateDays)
}
