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

	"github.com/mo-agg/aggkernel/pkg/sql/colexec/aggkernel/aggtest"
)

func TestRankLeavesGapsForTies(t *testing.T) {
	ctx := aggtest.New()
	s := RankInit(ctx)
	// order-by groups: [a a b b b c]
	sameGroup := []bool{false, true, false, true, true, false}
	want := []int64{1, 1, 3, 3, 3, 6}
	for i, same := range sameGroup {
		RankUpdate(s, same, false)
		require.EqualValues(t, want[i], RankGetValue(s))
	}
}

func TestDenseRankHasNoGaps(t *testing.T) {
	ctx := aggtest.New()
	s := RankInit(ctx)
	sameGroup := []bool{false, true, false, true, true, false}
	want := []int64{1, 1, 2, 2, 2, 3}
	for i, same := range sameGroup {
		RankUpdate(s, same, true)
		require.EqualValues(t, want[i], RankGetValue(s))
	}
}

func TestRankSerializeRoundTrips(t *testing.T) {
	ctx := aggtest.New()
	s := RankInit(ctx)
	RankUpdate(s, false, false)
	RankUpdate(s, false, false)
	wire := RankSerialize(ctx, s)
	require.Len(t, wire, rankStateLen)
	require.EqualValues(t, 2, RankGetValue(wire))
}
