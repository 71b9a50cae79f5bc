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
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mo-agg/aggkernel/pkg/container/types"
	"github.com/mo-agg/aggkernel/pkg/sql/colexec/aggkernel/aggtest"
)

var reservoirBigIntType = types.Type{Oid: types.T_int64}

func TestReservoirUnderCapacityKeepsEverything(t *testing.T) {
	ctx := aggtest.New()
	s := ReservoirInit(ctx, reservoirBigIntType, 1)
	for i := int64(0); i < 100; i++ {
		s = ReservoirUpdate(ctx, s, types.BigIntValue(i))
	}
	require.EqualValues(t, 100, reservoirCount(s))
	require.EqualValues(t, 100, getI64(s, 5))
}

func TestReservoirOverCapacityStaysAtCapacity(t *testing.T) {
	ctx := aggtest.New()
	s := ReservoirInit(ctx, reservoirBigIntType, 1)
	for i := int64(0); i < ReservoirCapacity+5000; i++ {
		s = ReservoirUpdate(ctx, s, types.BigIntValue(i))
	}
	require.EqualValues(t, ReservoirCapacity, reservoirCount(s))
	require.EqualValues(t, ReservoirCapacity+5000, getI64(s, 5))
}

func TestReservoirNullIsNoOp(t *testing.T) {
	ctx := aggtest.New()
	s := ReservoirInit(ctx, reservoirBigIntType, 1)
	s = ReservoirUpdate(ctx, s, types.NullValue(types.T_int64))
	require.EqualValues(t, 0, reservoirCount(s))
	require.EqualValues(t, 0, getI64(s, 5))
}

func TestReservoirMergeCombinesNumSeenAndSamples(t *testing.T) {
	ctx := aggtest.New()
	a := ReservoirInit(ctx, reservoirBigIntType, 1)
	b := ReservoirInit(ctx, reservoirBigIntType, 2)
	for i := int64(0); i < 100; i++ {
		a = ReservoirUpdate(ctx, a, types.BigIntValue(i))
	}
	for i := int64(0); i < 200; i++ {
		b = ReservoirUpdate(ctx, b, types.BigIntValue(i+1000))
	}
	sa := ReservoirSerialize(ctx, a)
	sb := ReservoirSerialize(ctx, b)
	merged := ReservoirMerge(ctx, sa, sb)
	require.EqualValues(t, 300, getI64(merged, 5))
	require.EqualValues(t, 300, reservoirCount(merged))
}

func TestAppxMedianOfSortedSamples(t *testing.T) {
	ctx := aggtest.New()
	s := ReservoirInit(ctx, reservoirBigIntType, 1)
	for i := int64(1); i <= 99; i++ {
		s = ReservoirUpdate(ctx, s, types.BigIntValue(i))
	}
	ser := ReservoirSerialize(ctx, s)
	median, isNull := AppxMedianFinalize(ctx, ser)
	require.False(t, isNull)
	require.EqualValues(t, 50, median.I64)
}

func TestHistogramBucketsCoverRange(t *testing.T) {
	ctx := aggtest.New()
	s := ReservoirInit(ctx, reservoirBigIntType, 1)
	for i := int64(0); i < 1000; i++ {
		s = ReservoirUpdate(ctx, s, types.BigIntValue(i))
	}
	ser := ReservoirSerialize(ctx, s)
	buckets := HistogramFinalize(ctx, ser, 10)
	require.Len(t, buckets, 10)
	require.EqualValues(t, 99, buckets[0].I64)
	require.EqualValues(t, 999, buckets[9].I64)
}

func TestNdvClampedToPopulationRange(t *testing.T) {
	ctx := aggtest.New()
	s := ReservoirInit(ctx, reservoirBigIntType, 1)
	for i := int64(0); i < 100; i++ {
		s = ReservoirUpdate(ctx, s, types.BigIntValue(i%10)) // only 10 distinct values, seen 100 times
	}
	ser := ReservoirSerialize(ctx, s)
	numSeen := getI64(ser, 5)
	ndv := NdvFinalize(ctx, ser)
	require.GreaterOrEqual(t, ndv, int64(10))
	require.LessOrEqual(t, ndv, numSeen)
}

func TestReservoirStringSamplesAreTruncatedTo10Bytes(t *testing.T) {
	ctx := aggtest.New()
	strType := types.Type{Oid: types.T_varchar}
	s := ReservoirInit(ctx, strType, 1)
	s = ReservoirUpdate(ctx, s, types.StringValue([]byte("this-string-is-way-longer-than-ten-bytes")))
	require.Len(t, s, reservoirHeaderLen+reservoirSampleWidth(reservoirKindString))
	ser := ReservoirSerialize(ctx, s)
	vals := SamplesFinalize(ctx, ser)
	require.Len(t, vals, 1)
	require.Equal(t, "this-strin", string(vals[0].Str))
}

func TestReservoirSamplesFinalizeOnStrings(t *testing.T) {
	ctx := aggtest.New()
	strType := types.Type{Oid: types.T_varchar}
	s := ReservoirInit(ctx, strType, 1)
	for i := 0; i < 20; i++ {
		s = ReservoirUpdate(ctx, s, types.StringValue([]byte(fmt.Sprintf("v%02d", i))))
	}
	ser := ReservoirSerialize(ctx, s)
	vals := SamplesFinalize(ctx, ser)
	require.Len(t, vals, 20)
	for i := 1; i < len(vals); i++ {
		require.LessOrEqual(t, string(vals[i-1].Str), string(vals[i].Str))
	}
}
