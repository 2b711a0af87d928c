package nodes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"customer_insight_chatbot/internal/dataset"
	"customer_insight_chatbot/pkg"
)

func TestClassify(t *testing.T) {
	table := fixtureTable()

	tests := []struct {
		utterance string
		kind      pkg.IntentKind
		attribute pkg.Attribute
	}{
		{"hello", pkg.IntentGreeting, ""},
		{"Good morning!", pkg.IntentGreeting, ""},
		{"hey, anyone there?", pkg.IntentGreeting, ""},
		{"What can you do?", pkg.IntentHelp, ""},
		{"I need help", pkg.IntentHelp, ""},
		{"Tell me about cluster 2", pkg.IntentClusterDetail, ""},
		{"cluster 9", pkg.IntentUnknownCluster, ""},
		{"What clusters are available?", pkg.IntentListClusters, ""},
		{"How many clusters are there?", pkg.IntentListClusters, ""},
		{"cluster", pkg.IntentListClusters, ""},
		{"Which cluster has the most customers?", pkg.IntentListClusters, ""},
		{"what cluster is largest", pkg.IntentListClusters, ""},
		{"Which cluster 2 customers buy the most?", pkg.IntentClusterDetail, ""},
		{"Which cluster buys Electronics the most?", pkg.IntentProductToCluster, ""},
		{"Show me the cluster that buys Books", pkg.IntentProductToCluster, ""},
		{"What product categories are there?", pkg.IntentListProductCategories, ""},
		{"list categories", pkg.IntentListProductCategories, ""},
		{"What payment methods are available?", pkg.IntentListPaymentMethods, ""},
		{"Which devices do customers use?", pkg.IntentListDevices, ""},
		{"Which regions do customers come from?", pkg.IntentListRegions, ""},
		{"What delivery options exist?", pkg.IntentListDeliveryOptions, ""},
		{"Show age groups", pkg.IntentListAgeGroups, ""},
		{"electronics", pkg.IntentProductToCluster, ""},
		{"What's their salary?", pkg.IntentFollowUp, pkg.AttributeIncome},
		{"How much do they spend?", pkg.IntentFollowUp, pkg.AttributeSpending},
		{"What is their average order value?", pkg.IntentFollowUp, pkg.AttributeOrderValue},
		{"and the AOV?", pkg.IntentFollowUp, pkg.AttributeOrderValue},
		{"How many orders do they place?", pkg.IntentFollowUp, pkg.AttributeOrders},
		{"How are their reviews?", pkg.IntentFollowUp, pkg.AttributeReview},
		{"Which device do they prefer?", pkg.IntentFollowUp, pkg.AttributeDevice},
		{"What region?", pkg.IntentFollowUp, pkg.AttributeRegion},
		{"What's the gender split?", pkg.IntentFollowUp, pkg.AttributeGender},
		{"What is their average age?", pkg.IntentFollowUp, pkg.AttributeAge},
		{"How old are they?", pkg.IntentFollowUp, pkg.AttributeAge},
		{"What's the average?", pkg.IntentUnrecognized, ""},
		{"asdf", pkg.IntentUnrecognized, ""},
		{"", pkg.IntentUnrecognized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.utterance, func(t *testing.T) {
			intent := Classify(tt.utterance, table)
			assert.Equal(t, tt.kind, intent.Kind)
			assert.Equal(t, tt.attribute, intent.Attribute)
		})
	}
}

func TestClassifyGenderPrecedence(t *testing.T) {
	table := fixtureTable()

	for _, utterance := range []string{
		"male and female customers",
		"Compare men and women",
		"What do FEMALE and MALE shoppers buy?",
	} {
		intent := Classify(utterance, table)
		assert.Equal(t, pkg.IntentGenderBreakdown, intent.Kind, utterance)
		assert.Equal(t, pkg.GenderFemale, intent.Gender, utterance)
	}

	intent := Classify("male customers", table)
	assert.Equal(t, pkg.GenderMale, intent.Gender)

	// "men" inside "payment" is not a gender token
	assert.Equal(t, pkg.IntentListPaymentMethods, Classify("payment options", table).Kind)
}

func TestClassifyGenderScope(t *testing.T) {
	table := fixtureTable()

	intent := Classify("female customers in cluster 2", table)
	require.NotNil(t, intent.ClusterID)
	assert.Equal(t, 2, *intent.ClusterID)

	intent = Classify("male customers in cluster 9", table)
	assert.Equal(t, pkg.IntentGenderBreakdown, intent.Kind)
	assert.Nil(t, intent.ClusterID)
}

func TestClassifyClusterIDs(t *testing.T) {
	table := fixtureTable()

	intent := Classify("Cluster 3 details", table)
	require.NotNil(t, intent.ClusterID)
	assert.Equal(t, 3, *intent.ClusterID)

	intent = Classify("cluster 12", table)
	assert.Equal(t, pkg.IntentUnknownCluster, intent.Kind)
	require.NotNil(t, intent.ClusterID)
	assert.Equal(t, 12, *intent.ClusterID)
}

func TestClassifyPrefersLongestCategory(t *testing.T) {
	table := dataset.NewTable([]dataset.CustomerRecord{
		record(0, 0, "Home"),
		record(1, 1, "Home Appliances"),
	})

	intent := Classify("who buys home appliances?", table)
	assert.Equal(t, "Home Appliances", intent.Category)

	intent = Classify("who buys for their home?", table)
	assert.Equal(t, "Home", intent.Category)
}
