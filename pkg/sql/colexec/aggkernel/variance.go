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

import "math"

// varianceStateLen is Welford's single-pass mean/M2 accumulator laid
// out as a fixed 24-byte blob: { count: i64, mean: f64, m2: f64 }.
// Count==0 means null; count==1 gives variance 0, which VarSampFinalize
// returns directly instead of dividing by n-1 = 0.
const varianceStateLen = 24

func VarianceInit(ctx Context) []byte {
	b := ctx.Allocate(varianceStateLen)
	putI64(b, 0, 0)
	putF64(b, 8, 0)
	putF64(b, 16, 0)
	return b
}

// VarianceUpdate applies Welford's recurrence: the mean shifts by
// delta/count and M2 accumulates delta*delta2, where delta2 is the
// distance from the *updated* mean.
func VarianceUpdate(state []byte, v float64, isNull bool) {
	mustLen(state, varianceStateLen)
	if isNull {
		return
	}
	count := getI64(state, 0) + 1
	mean := getF64(state, 8)
	m2 := getF64(state, 16)
	delta := v - mean
	mean += delta / float64(count)
	delta2 := v - mean
	m2 += delta * delta2
	putI64(state, 0, count)
	putF64(state, 8, mean)
	putF64(state, 16, m2)
}

// VarianceMerge combines two Welford accumulators using Chan et al.'s
// parallel formula: the combined M2 is the sum of the two M2s plus a
// correction term proportional to the squared distance between the two
// means, weighted by the product of counts over the combined count.
func VarianceMerge(dst, src []byte) {
	mustLen(dst, varianceStateLen)
	mustLen(src, varianceStateLen)
	srcCount := getI64(src, 0)
	if srcCount == 0 {
		return
	}
	dstCount := getI64(dst, 0)
	if dstCount == 0 {
		copy(dst, src)
		return
	}
	dstMean := getF64(dst, 8)
	srcMean := getF64(src, 8)
	delta := srcMean - dstMean
	totalCount := dstCount + srcCount
	newMean := dstMean + delta*float64(srcCount)/float64(totalCount)
	newM2 := getF64(dst, 16) + getF64(src, 16) +
		delta*delta*float64(dstCount)*float64(srcCount)/float64(totalCount)
	putI64(dst, 0, totalCount)
	putF64(dst, 8, newMean)
	putF64(dst, 16, newM2)
}

func VarianceSerialize(ctx Context, state []byte) []byte {
	mustLen(state, varianceStateLen)
	out := ctx.Allocate(varianceStateLen)
	copy(out, state)
	ctx.Free(state)
	return out
}

// VarPopFinalize returns the population variance M2/n. A single
// observation has a defined population variance of 0.
func VarPopFinalize(ctx Context, state []byte) (float64, bool) {
	mustLen(state, varianceStateLen)
	count := getI64(state, 0)
	m2 := getF64(state, 16)
	ctx.Free(state)
	if count == 0 {
		return 0, true
	}
	return m2 / float64(count), false
}

// VarSampFinalize returns the sample variance M2/(n-1): null when no
// observations were seen, 0 for a single observation (per SQL
// semantics), matching original_source's ComputeKnuthVariance, which
// returns 0.0 for count==1 regardless of the pop/samp flag.
func VarSampFinalize(ctx Context, state []byte) (float64, bool) {
	mustLen(state, varianceStateLen)
	count := getI64(state, 0)
	m2 := getF64(state, 16)
	ctx.Free(state)
	if count == 0 {
		return 0, true
	}
	if count == 1 {
		return 0, false
	}
	return m2 / float64(count-1), false
}

func StddevPopFinalize(ctx Context, state []byte) (float64, bool) {
	v, isNull := VarPopFinalize(ctx, state)
	if isNull {
		return 0, true
	}
	return math.Sqrt(v), false
}

func StddevSampFinalize(ctx Context, state []byte) (float64, bool) {
	v, isNull := VarSampFinalize(ctx, state)
	if isNull {
		return 0, true
	}
	return math.Sqrt(v), false
}
