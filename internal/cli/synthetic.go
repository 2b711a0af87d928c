package cli

import "customer_insight_chatbot/internal/dataset"

// syntheticProfiles are the four cluster archetypes of the demo table
var syntheticProfiles = []dataset.CustomerRecord{
	{ClusterID: 0, AnnualIncome: 50000, SpendingScore: 30, AverageOrderValue: 100, NumberOfOrders: 5, ReviewScore: 3.5, Age: 25,
		DeviceUsed: "Mobile", PreferredPaymentMethod: "Credit Card", ProductCategory: "Electronics", CustomerRegion: "North", Gender: "Male"},
	{ClusterID: 1, AnnualIncome: 75000, SpendingScore: 50, AverageOrderValue: 150, NumberOfOrders: 8, ReviewScore: 4.0, Age: 35,
		DeviceUsed: "Desktop", PreferredPaymentMethod: "PayPal", ProductCategory: "Clothing", CustomerRegion: "South", Gender: "Female"},
	{ClusterID: 2, AnnualIncome: 100000, SpendingScore: 70, AverageOrderValue: 200, NumberOfOrders: 12, ReviewScore: 4.5, Age: 45,
		DeviceUsed: "Tablet", PreferredPaymentMethod: "Debit Card", ProductCategory: "Home & Garden", CustomerRegion: "East", Gender: "Male"},
	{ClusterID: 3, AnnualIncome: 125000, SpendingScore: 90, AverageOrderValue: 250, NumberOfOrders: 15, ReviewScore: 4.8, Age: 55,
		DeviceUsed: "Mobile", PreferredPaymentMethod: "Bank Transfer", ProductCategory: "Sports", CustomerRegion: "West", Gender: "Female"},
}

const syntheticRepeats = 25

// SyntheticTable returns a deterministic 100-row demo table: the four
// profiles repeated in order, 25 customers per cluster
func SyntheticTable() *dataset.Table {
	records := make([]dataset.CustomerRecord, 0, len(syntheticProfiles)*syntheticRepeats)
	for i := 0; i < syntheticRepeats; i++ {
		records = append(records, syntheticProfiles...)
	}
	return dataset.NewTable(records)
}
