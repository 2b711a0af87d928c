package nodes

import (
	"math"
	"sort"

	"customer_insight_chatbot/internal/dataset"
)

var (
	devices  = []string{"Mobile", "Desktop", "Tablet"}
	regions  = []string{"North", "South", "East", "West"}
	payments = []string{"Credit Card", "PayPal", "Debit Card", "Cash on Delivery"}
	genders  = []string{"Female", "Male"}
)

func record(cluster, i int, category string) dataset.CustomerRecord {
	return dataset.CustomerRecord{
		ClusterID:              cluster,
		AnnualIncome:           40000 + float64(cluster)*10000 + float64(i%5)*1000,
		SpendingScore:          20 + float64(cluster*15+i%10),
		AverageOrderValue:      50 + float64(cluster)*25 + float64(i%3)*0.75,
		NumberOfOrders:         float64(2 + cluster + i%4),
		ReviewScore:            3 + float64(i%3)*0.5,
		Age:                    25 + float64(cluster*8+i%7),
		DeviceUsed:             devices[(cluster+i)%3],
		PreferredPaymentMethod: payments[(cluster*2+i)%4],
		ProductCategory:        category,
		CustomerRegion:         regions[(cluster+i)%4],
		Gender:                 genders[i%2],
	}
}

// fixtureTable has clusters 0-3. Electronics has 100 rows with cluster 1
// holding the plurality (40). Cluster 2 has 10 Books rows whose mean income
// is 87500.40.
func fixtureTable() *dataset.Table {
	var records []dataset.CustomerRecord
	add := func(cluster, n int, category string) {
		for i := 0; i < n; i++ {
			records = append(records, record(cluster, len(records), category))
		}
	}
	add(0, 30, "Electronics")
	add(1, 40, "Electronics")
	add(1, 5, "Clothing")
	add(3, 30, "Electronics")
	add(3, 5, "Home")

	for i := 0; i < 10; i++ {
		r := record(2, i, "Books")
		r.AnnualIncome = 80000.40
		if i%2 == 1 {
			r.AnnualIncome = 95000.40
		}
		records = append(records, r)
	}
	return dataset.NewTable(records)
}

// expectedMean computes a mean straight from the records
func expectedMean(records []dataset.CustomerRecord, cluster int, value func(dataset.CustomerRecord) float64) float64 {
	var sum float64
	n := 0
	for _, r := range records {
		if r.ClusterID == cluster && !math.IsNaN(value(r)) {
			sum += value(r)
			n++
		}
	}
	return sum / float64(n)
}

// expectedMode computes a mode straight from the records, ties to the smallest value
func expectedMode(records []dataset.CustomerRecord, cluster int, value func(dataset.CustomerRecord) string) string {
	counts := map[string]int{}
	for _, r := range records {
		if r.ClusterID == cluster && value(r) != "" {
			counts[value(r)]++
		}
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	best := ""
	for _, k := range keys {
		if best == "" || counts[k] > counts[best] {
			best = k
		}
	}
	return best
}
