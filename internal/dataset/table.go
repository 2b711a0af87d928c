// Package dataset holds the read-only customer segmentation table and the
// lookups the responder runs against it.
package dataset

import (
	"math"
	"slices"
	"strconv"
)

// Column is an exact, case-sensitive header name in the source file
type Column string

const (
	ColCluster                 Column = "Cluster"
	ColAnnualIncome            Column = "Annual_Income"
	ColSpendingScore           Column = "Spending_Score"
	ColAverageOrderValue       Column = "Average_Order_Value"
	ColNumberOfOrders          Column = "Number_of_Orders"
	ColReviewScore             Column = "Review_Score"
	ColAge                     Column = "Age"
	ColDeviceUsed              Column = "Device_Used"
	ColPaymentMethod           Column = "Preferred_Payment_Method"
	ColProductCategory         Column = "Product_Category"
	ColCustomerRegion          Column = "Customer_Region"
	ColGender                  Column = "Gender"
	ColPreferredDeliveryOption Column = "Preferred_Delivery_Option"
	ColAgeGroup                Column = "Age_Group"
)

// RequiredColumns must all be present in the header of a source file
var RequiredColumns = []Column{
	ColCluster,
	ColAnnualIncome,
	ColSpendingScore,
	ColAverageOrderValue,
	ColNumberOfOrders,
	ColReviewScore,
	ColAge,
	ColDeviceUsed,
	ColPaymentMethod,
	ColProductCategory,
	ColCustomerRegion,
	ColGender,
}

// OptionalColumns are read when present and answered as unavailable otherwise
var OptionalColumns = []Column{
	ColPreferredDeliveryOption,
	ColAgeGroup,
}

var numericColumns = map[Column]bool{
	ColAnnualIncome:      true,
	ColSpendingScore:     true,
	ColAverageOrderValue: true,
	ColNumberOfOrders:    true,
	ColReviewScore:       true,
	ColAge:               true,
}

// IsNumeric reports whether mean applies to the column
func (c Column) IsNumeric() bool {
	return numericColumns[c]
}

// IsCategorical reports whether distinct/filter/mode/counts apply to the column.
// The cluster column counts as categorical.
func (c Column) IsCategorical() bool {
	switch c {
	case ColCluster, ColDeviceUsed, ColPaymentMethod, ColProductCategory,
		ColCustomerRegion, ColGender, ColPreferredDeliveryOption, ColAgeGroup:
		return true
	}
	return false
}

// CustomerRecord is one row of the table. Missing numeric cells are NaN and
// missing categorical cells are empty strings.
type CustomerRecord struct {
	ClusterID               int     `json:"cluster_id"`
	AnnualIncome            float64 `json:"annual_income"`
	SpendingScore           float64 `json:"spending_score"`
	AverageOrderValue       float64 `json:"average_order_value"`
	NumberOfOrders          float64 `json:"number_of_orders"`
	ReviewScore             float64 `json:"review_score"`
	Age                     float64 `json:"age"`
	DeviceUsed              string  `json:"device_used"`
	PreferredPaymentMethod  string  `json:"preferred_payment_method"`
	ProductCategory         string  `json:"product_category"`
	CustomerRegion          string  `json:"customer_region"`
	Gender                  string  `json:"gender"`
	PreferredDeliveryOption string  `json:"preferred_delivery_option,omitempty"`
	AgeGroup                string  `json:"age_group,omitempty"`
}

// Category returns the string value of a categorical column
func (r CustomerRecord) Category(col Column) (string, bool) {
	var v string
	switch col {
	case ColCluster:
		return strconv.Itoa(r.ClusterID), true
	case ColDeviceUsed:
		v = r.DeviceUsed
	case ColPaymentMethod:
		v = r.PreferredPaymentMethod
	case ColProductCategory:
		v = r.ProductCategory
	case ColCustomerRegion:
		v = r.CustomerRegion
	case ColGender:
		v = r.Gender
	case ColPreferredDeliveryOption:
		v = r.PreferredDeliveryOption
	case ColAgeGroup:
		v = r.AgeGroup
	default:
		return "", false
	}
	return v, v != ""
}

// Number returns the value of a numeric column
func (r CustomerRecord) Number(col Column) (float64, bool) {
	var v float64
	switch col {
	case ColAnnualIncome:
		v = r.AnnualIncome
	case ColSpendingScore:
		v = r.SpendingScore
	case ColAverageOrderValue:
		v = r.AverageOrderValue
	case ColNumberOfOrders:
		v = r.NumberOfOrders
	case ColReviewScore:
		v = r.ReviewScore
	case ColAge:
		v = r.Age
	default:
		return 0, false
	}
	return v, !math.IsNaN(v)
}

// Table is an immutable set of customer records. Filters return new tables
// that share no mutable state with their parent.
type Table struct {
	records  []CustomerRecord
	optional map[Column]bool
}

// NewTable builds a table from records. optional lists which optional
// columns the source carried.
func NewTable(records []CustomerRecord, optional ...Column) *Table {
	t := &Table{
		records:  slices.Clone(records),
		optional: make(map[Column]bool, len(optional)),
	}
	for _, c := range optional {
		t.optional[c] = true
	}
	return t
}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.records)
}

// Records returns a copy of the rows
func (t *Table) Records() []CustomerRecord {
	return slices.Clone(t.records)
}

// Has reports whether the table carries the column
func (t *Table) Has(col Column) bool {
	if slices.Contains(RequiredColumns, col) {
		return true
	}
	return t.optional[col]
}

func (t *Table) derive(records []CustomerRecord) *Table {
	return &Table{records: records, optional: t.optional}
}
