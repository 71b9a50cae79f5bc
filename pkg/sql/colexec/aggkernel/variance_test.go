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
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mo-agg/aggkernel/pkg/sql/colexec/aggkernel/aggtest"
)

func TestVarianceKnownDataset(t *testing.T) {
	ctx := aggtest.New()
	s := VarianceInit(ctx)
	for _, v := range []float64{2, 4, 4, 4, 5, 5, 7, 9} {
		VarianceUpdate(s, v, false)
	}
	pop, isNull := VarPopFinalize(ctx, s)
	require.False(t, isNull)
	require.InDelta(t, 4.0, pop, 1e-9)

	samp, isNull := VarSampFinalize(ctx, s)
	require.False(t, isNull)
	require.InDelta(t, 32.0/7.0, samp, 1e-9)

	stddevPop, _ := StddevPopFinalize(ctx, s)
	require.InDelta(t, 2.0, stddevPop, 1e-9)
}

func TestVarianceSingleObservation(t *testing.T) {
	ctx := aggtest.New()
	s := VarianceInit(ctx)
	VarianceUpdate(s, 42, false)
	pop, isNull := VarPopFinalize(ctx, s)
	require.False(t, isNull)
	require.Equal(t, 0.0, pop)

	samp, isNull := VarSampFinalize(ctx, s)
	require.False(t, isNull)
	require.Equal(t, 0.0, samp)
}

func TestVarianceEmptyIsNull(t *testing.T) {
	ctx := aggtest.New()
	s := VarianceInit(ctx)
	_, isNull := VarPopFinalize(ctx, s)
	require.True(t, isNull)
}

func TestVarianceMergeMatchesSinglePass(t *testing.T) {
	data := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	ctx := aggtest.New()

	single := VarianceInit(ctx)
	for _, v := range data {
		VarianceUpdate(single, v, false)
	}

	a := VarianceInit(ctx)
	for _, v := range data[:4] {
		VarianceUpdate(a, v, false)
	}
	b := VarianceInit(ctx)
	for _, v := range data[4:] {
		VarianceUpdate(b, v, false)
	}
	VarianceMerge(a, b)

	wantPop, _ := VarPopFinalize(ctx, single)
	gotPop, _ := VarPopFinalize(ctx, a)
	require.True(t, math.Abs(wantPop-gotPop) < 1e-9)
}

func TestVarianceSerializeRoundTrips(t *testing.T) {
	ctx := aggtest.New()
	s := VarianceInit(ctx)
	VarianceUpdate(s, 1, false)
	VarianceUpdate(s, 2, false)
	wire := VarianceSerialize(ctx, s)
	require.Len(t, wire, varianceStateLen)
	pop, isNull := VarPopFinalize(ctx, wire)
	require.False(t, isNull)
	require.InDelta(t, 0.25, pop, 1e-9)
}
