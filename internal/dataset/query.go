package dataset

import (
	"fmt"
	"sort"
	"strings"
)

// ValueCount is the number of rows carrying one categorical value
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// ClusterCount is the number of rows in one cluster
type ClusterCount struct {
	ClusterID int `json:"cluster_id"`
	Count     int `json:"count"`
}

// Clusters returns the sorted set of cluster ids present in the table
func (t *Table) Clusters() []int {
	seen := make(map[int]bool)
	var ids []int
	for _, r := range t.records {
		if !seen[r.ClusterID] {
			seen[r.ClusterID] = true
			ids = append(ids, r.ClusterID)
		}
	}
	sort.Ints(ids)
	return ids
}

// HasCluster reports whether id is in the valid cluster set
func (t *Table) HasCluster(id int) bool {
	for _, r := range t.records {
		if r.ClusterID == id {
			return true
		}
	}
	return false
}

// CountClusters returns per-cluster row counts ordered by cluster id
func (t *Table) CountClusters() []ClusterCount {
	counts := make(map[int]int)
	for _, r := range t.records {
		counts[r.ClusterID]++
	}
	out := make([]ClusterCount, 0, len(counts))
	for id, n := range counts {
		out = append(out, ClusterCount{ClusterID: id, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClusterID < out[j].ClusterID })
	return out
}

// DistinctValues returns the sorted non-missing values of a categorical column
func (t *Table) DistinctValues(col Column) ([]string, error) {
	if !col.IsCategorical() {
		return nil, fmt.Errorf("distinct values of %s: %w", col, ErrUnsupportedColumn)
	}
	seen := make(map[string]bool)
	var values []string
	for _, r := range t.records {
		v, ok := r.Category(col)
		if !ok || seen[v] {
			continue
		}
		seen[v] = true
		values = append(values, v)
	}
	sort.Strings(values)
	return values, nil
}

// FilterBy returns the rows whose categorical column equals value exactly.
// Numeric columns never match.
func (t *Table) FilterBy(col Column, value string) *Table {
	return t.Where(func(r CustomerRecord) bool {
		v, ok := r.Category(col)
		return ok && v == value
	})
}

// FilterFold is FilterBy with case-insensitive comparison against any of values
func (t *Table) FilterFold(col Column, values ...string) *Table {
	return t.Where(func(r CustomerRecord) bool {
		v, ok := r.Category(col)
		if !ok {
			return false
		}
		for _, want := range values {
			if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(want)) {
				return true
			}
		}
		return false
	})
}

// FilterCluster returns the rows of one cluster
func (t *Table) FilterCluster(id int) *Table {
	return t.Where(func(r CustomerRecord) bool { return r.ClusterID == id })
}

// Where returns the rows matching keep
func (t *Table) Where(keep func(CustomerRecord) bool) *Table {
	var out []CustomerRecord
	for _, r := range t.records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return t.derive(out)
}

// Mean averages the non-missing values of a numeric column
func (t *Table) Mean(col Column) (float64, error) {
	if !col.IsNumeric() {
		return 0, fmt.Errorf("mean of %s: %w", col, ErrUnsupportedColumn)
	}
	var sum float64
	n := 0
	for _, r := range t.records {
		if v, ok := r.Number(col); ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0, &EmptyAggregationError{Column: col}
	}
	return sum / float64(n), nil
}

// Mode returns the most frequent non-missing value of a categorical column.
// Ties resolve to the lexicographically smallest value.
func (t *Table) Mode(col Column) (string, error) {
	if !col.IsCategorical() {
		return "", fmt.Errorf("mode of %s: %w", col, ErrUnsupportedColumn)
	}
	counts := t.Counts(col)
	if len(counts) == 0 {
		return "", &EmptyAggregationError{Column: col}
	}
	return counts[0].Value, nil
}

// Counts returns per-value row counts, most frequent first, ties by value
func (t *Table) Counts(col Column) []ValueCount {
	counts := make(map[string]int)
	for _, r := range t.records {
		if v, ok := r.Category(col); ok {
			counts[v]++
		}
	}
	out := make([]ValueCount, 0, len(counts))
	for v, n := range counts {
		out = append(out, ValueCount{Value: v, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	return out
}

// CountsAlphabetical is Counts ordered by value
func (t *Table) CountsAlphabetical(col Column) []ValueCount {
	out := t.Counts(col)
	sort.Slice(out, func(i, j int) bool { return out[i].Value < out[j].Value })
	return out
}

// TopCluster returns the cluster with the most rows, ties to the lowest id
func (t *Table) TopCluster() (ClusterCount, bool) {
	var best ClusterCount
	found := false
	for _, c := range t.CountClusters() {
		if !found || c.Count > best.Count {
			best = c
			found = true
		}
	}
	return best, found
}
