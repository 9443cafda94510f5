package quant

import (
	"fmt"
	"sort"
	"time"

	"gonum.org/v1/gonum/mat"
)

// minCommonObservations is the smallest common index a ticker may leave
// behind when it joins the matrix. A shorter index than covariance needs is
// reported by EstimateMoments, not here.
const minCommonObservations = 1

// ReturnMatrix is the inner join of several ReturnSeries on their dates.
// Data has one row per common date and one column per retained ticker,
// in the order of Tickers.
type ReturnMatrix struct {
	Tickers  []string
	Dates    []time.Time
	Data     *mat.Dense
	Excluded []string
}

// Observations returns the number of aligned rows
func (m *ReturnMatrix) Observations() int {
	return len(m.Dates)
}

// AlignReturns builds the ReturnMatrix restricted to the dates every retained
// ticker has in common. Tickers are admitted greedily, most-connected first
// (the number of other tickers they share at least one date with), breaking
// ties by input order. A ticker sharing no date with the tickers admitted
// before it is excluded and listed in Excluded instead of being dropped silently.
func AlignReturns(series []*ReturnSeries) (*ReturnMatrix, error) {
	if len(series) == 0 {
		return nil, ErrNoUsableData
	}

	lookups := make([]map[int64]float64, len(series))
	for i, s := range series {
		if len(s.Dates) != len(s.Returns) {
			return nil, fmt.Errorf("%w: %s has %d dates and %d returns", ErrDimensionMismatch, s.Ticker, len(s.Dates), len(s.Returns))
		}
		m := make(map[int64]float64, len(s.Dates))
		for j, d := range s.Dates {
			m[d.UnixNano()] = s.Returns[j]
		}
		lookups[i] = m
	}

	// Pairwise connectivity decides admission order
	connections := make([]int, len(series))
	for i := range series {
		for j := i + 1; j < len(series); j++ {
			if overlaps(lookups[i], lookups[j]) {
				connections[i]++
				connections[j]++
			}
		}
	}
	order := make([]int, len(series))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return connections[order[a]] > connections[order[b]]
	})

	var common map[int64]struct{}
	retained := make([]bool, len(series))
	for _, idx := range order {
		if common == nil {
			if len(lookups[idx]) < minCommonObservations {
				continue
			}
			common = make(map[int64]struct{}, len(lookups[idx]))
			for k := range lookups[idx] {
				common[k] = struct{}{}
			}
			retained[idx] = true
			continue
		}

		next := make(map[int64]struct{}, len(common))
		for k := range common {
			if _, ok := lookups[idx][k]; ok {
				next[k] = struct{}{}
			}
		}
		if len(next) < minCommonObservations {
			continue
		}
		common = next
		retained[idx] = true
	}

	result := &ReturnMatrix{}
	var cols []int
	for i, s := range series {
		if retained[i] {
			cols = append(cols, i)
			result.Tickers = append(result.Tickers, s.Ticker)
		} else {
			result.Excluded = append(result.Excluded, s.Ticker)
		}
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("%w: no ticker has any returns", ErrNoUsableData)
	}

	keys := make([]int64, 0, len(common))
	for k := range common {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(a, b int) bool { return keys[a] < keys[b] })

	result.Dates = make([]time.Time, len(keys))
	result.Data = mat.NewDense(len(keys), len(cols), nil)
	for r, k := range keys {
		result.Dates[r] = time.Unix(0, k).UTC()
		for c, idx := range cols {
			result.Data.Set(r, c, lookups[idx][k])
		}
	}
	return result, nil
}

func overlaps(a, b map[int64]float64) bool {
	if len(a) > len(b) {
		a, b = b, a
	}
	for k := range a {
		if _, ok := b[k]; ok {
			return true
		}
	}
	return false
}
