package nodes

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"customer_insight_chatbot/internal/dataset"
	"customer_insight_chatbot/pkg"
)

const greetingText = `👋 Hello! I can answer questions about our customer segments. Try asking:
- "Tell me about cluster 1"
- "What product categories are there?"
- "Which cluster buys Electronics the most?" and then "What's their income?"
- "What do female customers buy?"`

const unrecognizedText = `🤖 I didn't understand that. Try asking about clusters ("Tell me about cluster 2"), ` +
	`product categories, payment methods, devices or regions, or type "help".`

const noReferenceText = `Please mention a product category or a cluster first, ` +
	`for example "Tell me about cluster 1" or "Electronics", and then ask your follow-up.`

const noDataText = "I couldn't find any data for that request."

func helpText(table *dataset.Table) string {
	var b strings.Builder
	b.WriteString("I answer questions about the customer segments in the loaded data.\n\n")

	clusters := table.Clusters()
	if len(clusters) == 0 {
		b.WriteString("**Clusters:** none loaded\n")
	} else {
		fmt.Fprintf(&b, "**Clusters:** %s\n", joinInts(clusters))
	}

	categories, _ := table.DistinctValues(dataset.ColProductCategory)
	example := "Electronics"
	if len(categories) == 0 {
		b.WriteString("**Product categories:** none loaded\n")
	} else {
		fmt.Fprintf(&b, "**Product categories:** %s\n", strings.Join(categories, ", "))
		example = categories[0]
	}

	b.WriteString("\nTry:\n")
	b.WriteString("- \"Tell me about cluster N\" or \"List all clusters\"\n")
	fmt.Fprintf(&b, "- \"Which cluster buys %s the most?\" then \"What's their income?\"\n", example)
	b.WriteString("- \"What payment methods are available?\"\n")
	b.WriteString("- \"What do female customers in cluster N buy?\"")
	return b.String()
}

func unknownClusterText(e *UnknownClusterError) string {
	if len(e.Valid) == 0 {
		return "❌ That cluster doesn't exist: no clusters are loaded."
	}
	if e.ID == nil {
		return fmt.Sprintf("❌ That cluster doesn't exist. Valid clusters are: %s.", joinInts(e.Valid))
	}
	return fmt.Sprintf("❌ Cluster %d doesn't exist. Valid clusters are: %s.", *e.ID, joinInts(e.Valid))
}

// ClusterSummary renders the overview of one cluster: its row count, the mean
// of every numeric attribute and the mode of every categorical one.
func ClusterSummary(table *dataset.Table, id int) (string, error) {
	if !table.HasCluster(id) {
		return "", &UnknownClusterError{ID: &id, Valid: table.Clusters()}
	}
	subset := table.FilterCluster(id)

	var b strings.Builder
	fmt.Fprintf(&b, "### 🧠 Cluster %d Overview\n", id)
	fmt.Fprintf(&b, "- Customers: %s\n", formatCount(subset.Len()))
	fmt.Fprintf(&b, "- Average Income: %s\n", meanText(subset, dataset.ColAnnualIncome, formatCurrency))
	fmt.Fprintf(&b, "- Spending Score: %s\n", meanText(subset, dataset.ColSpendingScore, formatScore))
	fmt.Fprintf(&b, "- Avg Order Value: %s\n", meanText(subset, dataset.ColAverageOrderValue, formatCurrency))
	fmt.Fprintf(&b, "- Orders per Customer: %s\n", meanText(subset, dataset.ColNumberOfOrders, formatScore))
	fmt.Fprintf(&b, "- Average Review Score: %s\n", meanText(subset, dataset.ColReviewScore, formatScore))
	fmt.Fprintf(&b, "- Age: %s\n", meanText(subset, dataset.ColAge, formatAge))
	fmt.Fprintf(&b, "- Most used device: %s\n", modeText(subset, dataset.ColDeviceUsed))
	fmt.Fprintf(&b, "- Most used payment method: %s\n", modeText(subset, dataset.ColPaymentMethod))
	fmt.Fprintf(&b, "- Common product: %s\n", modeText(subset, dataset.ColProductCategory))
	fmt.Fprintf(&b, "- Top region: %s", modeText(subset, dataset.ColCustomerRegion))
	return b.String(), nil
}

func meanText(t *dataset.Table, col dataset.Column, format func(float64) string) string {
	v, err := t.Mean(col)
	if err != nil {
		return "no data"
	}
	return format(v)
}

func modeText(t *dataset.Table, col dataset.Column) string {
	v, err := t.Mode(col)
	if err != nil {
		return "no data"
	}
	return "**" + v + "**"
}

func listClusters(table *dataset.Table) string {
	counts := table.CountClusters()
	if len(counts) == 0 {
		return "No clusters found in the loaded data."
	}
	var b strings.Builder
	b.WriteString("**Available Clusters:**")
	for _, c := range counts {
		fmt.Fprintf(&b, "\n- Cluster %d: %s", c.ClusterID, pluralCustomers(c.Count))
	}
	return b.String()
}

type listing struct {
	column dataset.Column
	title  string
	noun   string
}

var listings = map[pkg.IntentKind]listing{
	pkg.IntentListProductCategories: {dataset.ColProductCategory, "Available Product Categories", "product categories"},
	pkg.IntentListPaymentMethods:    {dataset.ColPaymentMethod, "Available Payment Methods", "payment methods"},
	pkg.IntentListDevices:           {dataset.ColDeviceUsed, "Customer Devices", "devices"},
	pkg.IntentListRegions:           {dataset.ColCustomerRegion, "Customer Regions", "regions"},
	pkg.IntentListDeliveryOptions:   {dataset.ColPreferredDeliveryOption, "Preferred Delivery Options", "delivery options"},
	pkg.IntentListAgeGroups:         {dataset.ColAgeGroup, "Customer Age Groups", "age groups"},
}

// listValues enumerates the distinct values of a column alphabetically, each
// once, with its row count
func listValues(table *dataset.Table, l listing) string {
	if !table.Has(l.column) {
		return fmt.Sprintf("%s are not available in this dataset.", upperFirst(l.noun))
	}
	counts := table.CountsAlphabetical(l.column)
	if len(counts) == 0 {
		return fmt.Sprintf("No %s found in the loaded data.", l.noun)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "**%s:**", l.title)
	for _, c := range counts {
		fmt.Fprintf(&b, "\n- %s (%s)", c.Value, pluralCustomers(c.Count))
	}
	return b.String()
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// productToCluster finds the cluster holding the most rows of a category.
// Ties go to the lowest cluster id.
func productToCluster(table *dataset.Table, category string) (string, int, error) {
	subset := table.FilterBy(dataset.ColProductCategory, category)
	top, ok := subset.TopCluster()
	if !ok {
		return "", 0, &dataset.EmptyAggregationError{Column: dataset.ColProductCategory}
	}
	text := fmt.Sprintf(
		"💡 Customers who purchase **%s** the most are in **Cluster %d** (%d of %d %s customers).\n\n"+
			"You can ask a follow-up like \"What's their income?\" or \"Tell me more about Cluster %d\".",
		category, top.ClusterID, top.Count, subset.Len(), category, top.ClusterID)
	return text, top.ClusterID, nil
}

func genderBreakdown(table *dataset.Table, gender pkg.Gender, labels []string, clusterID *int, top int) string {
	scope, where := table, ""
	if clusterID != nil {
		scope = table.FilterCluster(*clusterID)
		where = fmt.Sprintf(" in Cluster %d", *clusterID)
	}

	subset := scope.FilterFold(dataset.ColGender, labels...)
	if subset.Len() == 0 {
		return fmt.Sprintf("No %s customers found%s.", gender, where)
	}

	counts := subset.Counts(dataset.ColProductCategory)
	if len(counts) == 0 {
		return fmt.Sprintf("No product category data for %s customers%s.", gender, where)
	}
	if len(counts) > top {
		counts = counts[:top]
	}

	total := subset.Len()
	var b strings.Builder
	fmt.Fprintf(&b, "**Top product categories for %s customers%s** (%s):", gender, where, pluralCustomers(total))
	for i, c := range counts {
		pct := float64(c.Count) / float64(total) * 100
		fmt.Fprintf(&b, "\n%d. %s: %s (%s)", i+1, c.Value, pluralCustomers(c.Count), formatPercent(pct))
	}
	return b.String()
}

type attributeSpec struct {
	column dataset.Column
	label  string
	// render is set for numeric attributes; categorical ones get a breakdown
	render func(cluster int, mean float64) string
}

var attributeSpecs = map[pkg.Attribute]attributeSpec{
	pkg.AttributeIncome: {dataset.ColAnnualIncome, "income", func(c int, v float64) string {
		return fmt.Sprintf("🧾 The average income for Cluster %d is **%s**.", c, formatCurrency(v))
	}},
	pkg.AttributeSpending: {dataset.ColSpendingScore, "spending score", func(c int, v float64) string {
		return fmt.Sprintf("💸 Cluster %d has an average spending score of **%s**.", c, formatScore(v))
	}},
	pkg.AttributeOrderValue: {dataset.ColAverageOrderValue, "order value", func(c int, v float64) string {
		return fmt.Sprintf("🛒 The average order value for Cluster %d is **%s**.", c, formatCurrency(v))
	}},
	pkg.AttributeOrders: {dataset.ColNumberOfOrders, "order", func(c int, v float64) string {
		return fmt.Sprintf("📦 Customers in Cluster %d place **%s** orders on average.", c, formatScore(v))
	}},
	pkg.AttributeReview: {dataset.ColReviewScore, "review", func(c int, v float64) string {
		return fmt.Sprintf("⭐ The average review score for Cluster %d is **%s**.", c, formatScore(v))
	}},
	pkg.AttributeAge: {dataset.ColAge, "age", func(c int, v float64) string {
		return fmt.Sprintf("🎂 The average age in Cluster %d is **%s**.", c, formatAge(v))
	}},
	pkg.AttributeDevice: {column: dataset.ColDeviceUsed, label: "device usage"},
	pkg.AttributeRegion: {column: dataset.ColCustomerRegion, label: "region"},
	pkg.AttributeGender: {column: dataset.ColGender, label: "gender"},
}

// followUp answers an attribute question about the remembered cluster
func followUp(table *dataset.Table, cluster int, attr pkg.Attribute) (string, error) {
	spec, ok := attributeSpecs[attr]
	if !ok {
		return "", fmt.Errorf("no follow-up for attribute %q", attr)
	}

	subset := table.FilterCluster(cluster)
	if subset.Len() == 0 {
		return fmt.Sprintf("I couldn't find any customers in Cluster %d.", cluster), nil
	}

	if spec.render != nil {
		mean, err := subset.Mean(spec.column)
		if err != nil {
			return fmt.Sprintf("No %s data is recorded for Cluster %d.", spec.label, cluster), nil
		}
		return spec.render(cluster, mean), nil
	}

	shares := percentageShares(subset.Counts(spec.column))
	if len(shares) == 0 {
		return fmt.Sprintf("No %s data is recorded for Cluster %d.", spec.label, cluster), nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "**%s in Cluster %d:**", upperFirst(spec.label), cluster)
	for _, s := range shares {
		fmt.Fprintf(&b, "\n- %s: %s (%s)", s.Value, formatPercent(s.Percent), pluralCustomers(s.Count))
	}
	return b.String(), nil
}

type share struct {
	Value   string
	Count   int
	Percent float64
}

// percentageShares converts counts to percentages rounded to one decimal with
// the largest-remainder method, so the reported shares add up to exactly 100.0
func percentageShares(counts []dataset.ValueCount) []share {
	total := 0
	for _, c := range counts {
		total += c.Count
	}
	if total == 0 {
		return nil
	}

	type remainder struct {
		index int
		frac  float64
	}
	shares := make([]share, len(counts))
	rems := make([]remainder, len(counts))
	assigned := 0
	for i, c := range counts {
		exact := float64(c.Count) * 1000 / float64(total)
		tenths := math.Floor(exact)
		shares[i] = share{Value: c.Value, Count: c.Count, Percent: tenths}
		rems[i] = remainder{index: i, frac: exact - tenths}
		assigned += int(tenths)
	}
	sort.SliceStable(rems, func(a, b int) bool { return rems[a].frac > rems[b].frac })
	for k := 0; k < 1000-assigned && k < len(rems); k++ {
		shares[rems[k].index].Percent++
	}
	for i := range shares {
		shares[i].Percent /= 10
	}
	return shares
}
