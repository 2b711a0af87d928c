package cli

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"customer_insight_chatbot/internal/core"
	"customer_insight_chatbot/internal/dataset"
)

func TestSyntheticTable(t *testing.T) {
	table := SyntheticTable()

	assert.Equal(t, 100, table.Len())
	assert.Equal(t, []int{0, 1, 2, 3}, table.Clusters())
	for _, c := range table.CountClusters() {
		assert.Equal(t, 25, c.Count)
	}

	mean, err := table.FilterCluster(3).Mean(dataset.ColAnnualIncome)
	require.NoError(t, err)
	assert.Equal(t, 125000.0, mean)

	categories, err := table.DistinctValues(dataset.ColProductCategory)
	require.NoError(t, err)
	assert.Equal(t, []string{"Clothing", "Electronics", "Home & Garden", "Sports"}, categories)
}

// run executes the root command with stdin and returns stdout
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRoot()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func missingData(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.csv")
}

func TestAskWithSyntheticFallback(t *testing.T) {
	out, err := run(t, "", "ask", "--data", missingData(t), "--synthetic-fallback", "tell", "me", "about", "cluster", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Cluster 2 Overview")
	assert.Contains(t, out, "$100,000.00")
}

func TestAskJSON(t *testing.T) {
	out, err := run(t, "", "ask", "--json", "--data", missingData(t), "--synthetic-fallback", "Which cluster buys Sports?")
	require.NoError(t, err)

	var reply core.ProcessorOutput
	require.NoError(t, sonic.UnmarshalString(out, &reply))
	assert.Equal(t, "product_to_cluster", string(reply.Intent.Kind))
	require.NotNil(t, reply.Memory.LastCluster)
	assert.Equal(t, 3, *reply.Memory.LastCluster)
	assert.Equal(t, "Sports", reply.Memory.LastProduct)
}

func TestAskFailsWithoutData(t *testing.T) {
	_, err := run(t, "", "ask", "--data", missingData(t), "hello")
	require.Error(t, err)
	assert.ErrorIs(t, err, dataset.ErrDataLoad)
}

func TestChatSession(t *testing.T) {
	input := strings.Join([]string{
		"Which cluster buys Clothing?",
		"What's their income?",
		"/reset",
		"What's their income?",
		"/quit",
		"hello",
	}, "\n")

	out, err := run(t, input, "chat", "--plain", "--data", missingData(t), "--synthetic-fallback")
	require.NoError(t, err)

	assert.Contains(t, out, chatBanner)
	assert.Contains(t, out, "$75,000.00")
	assert.Contains(t, out, "Context cleared")
	assert.Contains(t, out, "mention a product category or a cluster first")
	assert.NotContains(t, out, "Hello")
}

func TestChatStopsAtEOF(t *testing.T) {
	out, err := run(t, "list clusters\n", "chat", "--plain", "--data", missingData(t), "--synthetic-fallback")
	require.NoError(t, err)
	assert.Contains(t, out, "Cluster 3: 25 customers")
}
