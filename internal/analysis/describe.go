package analysis

import (
	"encoding/json"
	"math"
	"sort"
)

// Summary is the descriptive summary of a single column. Statistics that are
// undefined for the data (mean of an empty column, std of a single value) are nil.
type Summary struct {
	Column string `json:"column"`
	Kind   Kind   `json:"kind"`
	Count  int    `json:"count"`

	// Numeric
	Mean *float64 `json:"mean,omitempty"`
	Std  *float64 `json:"std,omitempty"`
	Min  *float64 `json:"min,omitempty"`
	Q25  *float64 `json:"q25,omitempty"`
	Q50  *float64 `json:"q50,omitempty"`
	Q75  *float64 `json:"q75,omitempty"`
	Max  *float64 `json:"max,omitempty"`

	// Categorical
	Unique int     `json:"unique,omitempty"`
	Top    *string `json:"top,omitempty"`
	Freq   *int    `json:"freq,omitempty"`
}

// MarshalJSON writes the statistics that belong to the column kind. Numeric
// summaries always carry mean, std, min, quartiles and max, as null when undefined.
func (s Summary) MarshalJSON() ([]byte, error) {
	if s.Kind == KindNumeric {
		return json.Marshal(struct {
			Column string   `json:"column"`
			Kind   Kind     `json:"kind"`
			Count  int      `json:"count"`
			Mean   *float64 `json:"mean"`
			Std    *float64 `json:"std"`
			Min    *float64 `json:"min"`
			Q25    *float64 `json:"q25"`
			Q50    *float64 `json:"q50"`
			Q75    *float64 `json:"q75"`
			Max    *float64 `json:"max"`
		}{s.Column, s.Kind, s.Count, s.Mean, s.Std, s.Min, s.Q25, s.Q50, s.Q75, s.Max})
	}
	return json.Marshal(struct {
		Column string  `json:"column"`
		Kind   Kind    `json:"kind"`
		Count  int     `json:"count"`
		Unique int     `json:"unique"`
		Top    *string `json:"top"`
		Freq   *int    `json:"freq"`
	}{s.Column, s.Kind, s.Count, s.Unique, s.Top, s.Freq})
}

// Describe computes the summary for a column: count, mean, std, min, quartiles
// and max for numeric columns; count, unique, top and freq for categorical ones.
func Describe(c *Column) Summary {
	s := Summary{Column: c.Name, Kind: c.Kind}
	if c.IsNumeric() {
		describeNumeric(&s, c.Floats())
		return s
	}
	vals := c.Values()
	s.Count = len(vals)
	counts := ValueCounts(c)
	s.Unique = len(counts)
	if len(counts) > 0 {
		top := counts[0].Value
		freq := counts[0].Count
		s.Top = &top
		s.Freq = &freq
	}
	return s
}

func describeNumeric(s *Summary, vals []float64) {
	s.Count = len(vals)
	if len(vals) == 0 {
		return
	}
	// Welford update
	var mean, m2 float64
	lo, hi := math.Inf(1), math.Inf(-1)
	for i, x := range vals {
		delta := x - mean
		mean += delta / float64(i+1)
		m2 += delta * (x - mean)
		if x < lo {
			lo = x
		}
		if x > hi {
			hi = x
		}
	}
	s.Mean = ptr(mean)
	if len(vals) > 1 {
		s.Std = ptr(math.Sqrt(m2 / float64(len(vals)-1)))
	}
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)
	s.Min = ptr(lo)
	s.Q25 = ptr(quantile(sorted, 0.25))
	s.Q50 = ptr(quantile(sorted, 0.5))
	s.Q75 = ptr(quantile(sorted, 0.75))
	s.Max = ptr(hi)
}

func ptr[T any](v T) *T { return &v }

// CategoryCount is one distinct value and its frequency.
type CategoryCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// ValueCounts returns the non-null distinct values of a column ordered by
// descending frequency. Ties keep the order of first occurrence.
func ValueCounts(c *Column) []CategoryCount {
	idx := map[string]int{}
	var out []CategoryCount
	for _, v := range c.Values() {
		if i, ok := idx[v]; ok {
			out[i].Count++
			continue
		}
		idx[v] = len(out)
		out = append(out, CategoryCount{Value: v, Count: 1})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// TopValues returns at most n entries of ValueCounts.
func TopValues(c *Column, n int) []CategoryCount {
	counts := ValueCounts(c)
	if n >= 0 && len(counts) > n {
		counts = counts[:n]
	}
	return counts
}

// Bin is one histogram bucket covering [Lo, Hi); the last bin is closed.
type Bin struct {
	Lo    float64 `json:"lo"`
	Hi    float64 `json:"hi"`
	Count int     `json:"count"`
}

// Histogram buckets values into equal-width bins. bins <= 0 selects Sturges'
// rule. A constant column yields a single bin; an empty one yields none.
func Histogram(vals []float64, bins int) []Bin {
	if len(vals) == 0 {
		return nil
	}
	lo, hi := vals[0], vals[0]
	for _, v := range vals[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if lo == hi {
		return []Bin{{Lo: lo, Hi: hi, Count: len(vals)}}
	}
	if bins <= 0 {
		bins = int(math.Ceil(math.Log2(float64(len(vals))))) + 1
	}
	width := (hi - lo) / float64(bins)
	out := make([]Bin, bins)
	for i := range out {
		out[i].Lo = lo + float64(i)*width
		out[i].Hi = lo + float64(i+1)*width
	}
	out[bins-1].Hi = hi
	for _, v := range vals {
		k := int((v - lo) / width)
		if k >= bins {
			k = bins - 1
		}
		if k < 0 {
			k = 0
		}
		out[k].Count++
	}
	return out
}

// ColumnSums returns the sum of every numeric column, in file order.
func ColumnSums(t *Table) []CategoryTotal {
	var out []CategoryTotal
	for _, c := range t.Columns {
		if !c.IsNumeric() {
			continue
		}
		var sum float64
		for _, v := range c.Floats() {
			sum += v
		}
		out = append(out, CategoryTotal{Name: c.Name, Total: sum})
	}
	return out
}

// CategoryTotal is a named aggregate.
type CategoryTotal struct {
	Name  string  `json:"name"`
	Total float64 `json:"total"`
}

func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
