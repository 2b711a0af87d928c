package nodes

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// formatCurrency renders $ with thousands separators and two decimals, e.g.
// $87,500.40. Rounding is strconv's correctly rounded 'f' format; only the
// integer part goes through humanize for grouping.
func formatCurrency(v float64) string {
	fixed := strconv.FormatFloat(math.Abs(v), 'f', 2, 64)
	whole, frac, _ := strings.Cut(fixed, ".")
	n, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return "$" + fixed
	}
	sign := ""
	if v < 0 && fixed != "0.00" {
		sign = "-"
	}
	return "$" + sign + humanize.Comma(n) + "." + frac
}

// formatScore is used for scores and means of counts
func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64) + "%"
}

func formatAge(v float64) string {
	return fmt.Sprintf("%.1f years", v)
}

func formatCount(n int) string {
	return strconv.Itoa(n)
}

// joinInts renders ids as "0, 1, 2"
func joinInts(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ", ")
}

func pluralCustomers(n int) string {
	if n == 1 {
		return "1 customer"
	}
	return formatCount(n) + " customers"
}
