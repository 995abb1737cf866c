package navigation

import "sort"

// TukeyIQRBound clips an overlarge interquartile range before it is used
// to size the outlier fences, so a single wild reading cannot widen the
// fences enough to admit further wild readings.
const TukeyIQRBound = 5.0

// tukeyFences runs outlier rejection on the reliable motion-axis scalars,
// mutating values in place and reporting which indices were replaced.
// Grounded on original_source/src/navigation/navigation.cpp's tukeyFences:
//   - 4 reliable values: quartiles from the full sorted 4-sample, fences at
//     [Q1-k*IQR, Q3+k*IQR], IQR clipped to TukeyIQRBound.
//   - 3 reliable values: same scheme on the 3-element sample (Q2 is the
//     middle value exactly).
//   - <=2 reliable values: insufficient support for quartiles; every
//     reliable slot is replaced by the average of the reliable values, and
//     no outlier is flagged.
//
// values must be len(store.NumIMUs); reliable marks which indices are
// still trusted (unreliable slots are ignored and left untouched).
func tukeyFences(values []float64, reliable []bool, threshold float64) (replaced []bool) {
	n := len(values)
	replaced = make([]bool, n)

	reliableIdx := make([]int, 0, n)
	for i, ok := range reliable {
		if ok {
			reliableIdx = append(reliableIdx, i)
		}
	}

	if len(reliableIdx) <= 2 {
		if len(reliableIdx) == 0 {
			return replaced
		}
		sum := 0.0
		for _, i := range reliableIdx {
			sum += values[i]
		}
		avg := sum / float64(len(reliableIdx))
		for _, i := range reliableIdx {
			values[i] = avg
		}
		return replaced
	}

	sample := make([]float64, len(reliableIdx))
	for j, i := range reliableIdx {
		sample[j] = values[i]
	}
	sorted := append([]float64(nil), sample...)
	sort.Float64s(sorted)

	var q1, q2, q3 float64
	switch len(sorted) {
	case 4:
		q1 = (sorted[0] + sorted[1]) / 2
		q2 = (sorted[1] + sorted[2]) / 2
		q3 = (sorted[2] + sorted[3]) / 2
	case 3:
		q1 = (sorted[0] + sorted[1]) / 2
		q2 = sorted[1]
		q3 = (sorted[1] + sorted[2]) / 2
	default:
		// Generic fallback for any other reliable-count (not expected by
		// the spec's 4/3/<=2 cases, but keeps the function total).
		mid := len(sorted) / 2
		q1 = sorted[mid/2]
		q2 = sorted[mid]
		q3 = sorted[mid+(len(sorted)-mid)/2]
	}

	iqr := q3 - q1
	if iqr > TukeyIQRBound {
		iqr = TukeyIQRBound
	}
	lower := q1 - threshold*iqr
	upper := q3 + threshold*iqr

	for _, i := range reliableIdx {
		if values[i] < lower || values[i] > upper {
			values[i] = q2
			replaced[i] = true
		}
	}
	return replaced
}

// median3 returns the median of exactly three values without sorting.
func median3(a, b, c float64) float64 {
	if (a <= b && b <= c) || (c <= b && b <= a) {
		return b
	}
	if (b <= a && a <= c) || (c <= a && a <= b) {
		return a
	}
	return c
}
