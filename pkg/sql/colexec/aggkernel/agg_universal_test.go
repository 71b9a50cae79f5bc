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
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mo-agg/aggkernel/pkg/container/types"
	"github.com/mo-agg/aggkernel/pkg/sql/colexec/aggkernel/aggtest"
)

// sampleValue returns a representative non-null argument for a
// registered kernel, plus the ArgType it should see -- just enough for
// every binding's Update to exercise its real code path once.
func sampleValue(name string) (types.Value, types.Type) {
	switch name {
	case "string_concat", "pc", "pcsa", "hll":
		return types.StringValue([]byte("universal-property-probe")), types.Type{Oid: types.T_varchar}
	case "decimal_sum", "decimal_avg":
		return types.Value{Oid: types.T_decimal128, Dec128: types.Decimal128FromInt64(7)}, types.Type{Oid: types.T_decimal128}
	case "timestamp_avg":
		return types.TimestampValue(types.TimestampFromSeconds(1000)), types.Type{Oid: types.T_timestamp}
	default:
		return types.DoubleValue(3), types.Type{Oid: types.T_float64}
	}
}

// StringConcat is associative but not commutative (the engine must not
// reorder its inputs), so the commutativity check is skipped for it.
func isCommutative(name string) bool { return name != "string_concat" }

func registeredNames(t *testing.T) []string {
	names := Names()
	require.NotEmpty(t, names)
	sort.Strings(names)
	return names
}

// TestUniversalNullIsNeutral: every kernel's Update must be a no-op on a
// null argument, except count_star (COUNT(*)), which counts it.
func TestUniversalNullIsNeutral(t *testing.T) {
	for _, name := range registeredNames(t) {
		name := name
		t.Run(name, func(t *testing.T) {
			ops := registry[name]
			ctxA := aggtest.New()
			ctxB := aggtest.New()
			v, typ := sampleValue(name)
			_ = typ

			withoutNull := ops.Init(ctxA)
			withoutNull = ops.Update(ctxA, withoutNull, v)

			withNull := ops.Init(ctxB)
			withNull = ops.Update(ctxB, withNull, v)
			nullArg := v
			nullArg.IsNull = true
			withNull = ops.Update(ctxB, withNull, nullArg)

			wireA := ops.Serialize(ctxA, withoutNull)
			wireB := ops.Serialize(ctxB, withNull)
			if name == "count_star" {
				require.EqualValues(t, getI64(wireA, 0)+1, getI64(wireB, 0), "count_star must count a null argument")
				return
			}
			require.Equal(t, wireA, wireB, "null Update must not change state for %s", name)
		})
	}
}

// TestUniversalMergeIsAssociative: (a merge b) merge c must equal
// a merge (b merge c), up to Finalize's output.
func TestUniversalMergeIsAssociative(t *testing.T) {
	for _, name := range registeredNames(t) {
		name := name
		t.Run(name, func(t *testing.T) {
			ops := registry[name]
			v, _ := sampleValue(name)

			build := func() []byte {
				ctx := aggtest.New()
				s := ops.Init(ctx)
				return ops.Update(ctx, s, v)
			}

			ctx1 := aggtest.New()
			left := ops.Merge(ctx1, build(), build())
			left = ops.Merge(ctx1, left, build())

			ctx2 := aggtest.New()
			right := ops.Merge(ctx2, build(), build())
			right = ops.Merge(ctx2, build(), right)

			leftResult, leftNull := ops.Finalize(ctx1, left)
			rightResult, rightNull := ops.Finalize(ctx2, right)
			require.Equal(t, leftNull, rightNull, "%s associativity null mismatch", name)
			if !leftNull {
				require.Equal(t, leftResult, rightResult, "%s merge is not associative", name)
			}
		})
	}
}

// TestUniversalMergeIsCommutative: a merge b must equal b merge a for
// every kernel except StringConcat, which is order-sensitive by design.
func TestUniversalMergeIsCommutative(t *testing.T) {
	for _, name := range registeredNames(t) {
		if !isCommutative(name) {
			continue
		}
		name := name
		t.Run(name, func(t *testing.T) {
			ops := registry[name]
			v, _ := sampleValue(name)

			// a holds one update and b two, so the two merge orders
			// combine different states.
			build := func(n int) []byte {
				ctx := aggtest.New()
				s := ops.Init(ctx)
				for i := 0; i < n; i++ {
					s = ops.Update(ctx, s, v)
				}
				return s
			}

			ctxAB := aggtest.New()
			ab := ops.Merge(ctxAB, build(1), build(2))
			ctxBA := aggtest.New()
			ba := ops.Merge(ctxBA, build(2), build(1))

			abResult, abNull := ops.Finalize(ctxAB, ab)
			baResult, baNull := ops.Finalize(ctxBA, ba)
			require.Equal(t, abNull, baNull, "%s commutativity null mismatch", name)
			if !abNull {
				require.Equal(t, abResult, baResult, "%s merge is not commutative", name)
			}
		})
	}
}

// TestUniversalEmptyGroupFinalizesToNull: an untouched state finalizes
// to a typed null for every kernel except Count, which never returns
// null even for an empty group, and the distinct-count estimators (hll,
// pc, pcsa), which estimate zero for an empty group.
func TestUniversalEmptyGroupFinalizesToNull(t *testing.T) {
	for _, name := range registeredNames(t) {
		if name == "count" || name == "count_star" {
			continue
		}
		name := name
		t.Run(name, func(t *testing.T) {
			ops := registry[name]
			ctx := aggtest.New()
			state := ops.Init(ctx)
			result, isNull := ops.Finalize(ctx, state)
			if name == "hll" || name == "pc" || name == "pcsa" {
				require.False(t, isNull, "%s must finalize an empty group to zero, not null", name)
				require.Equal(t, types.BigIntValue(0), result, "%s must estimate zero for an empty group", name)
				return
			}
			require.True(t, isNull, "%s must finalize an empty group to null", name)
		})
	}
}
