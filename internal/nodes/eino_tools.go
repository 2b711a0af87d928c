package nodes

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"

	"customer_insight_chatbot/internal/dataset"
	"customer_insight_chatbot/internal/logger"
	"customer_insight_chatbot/pkg"
)

// ClusterSummaryInput is the argument of the cluster_summary tool
type ClusterSummaryInput struct {
	ClusterID int `json:"cluster_id" jsonschema:"description=Numeric id of the customer cluster to summarize"`
}

// ProductClusterInput is the argument of the product_top_cluster tool
type ProductClusterInput struct {
	Category string `json:"category" jsonschema:"description=Product category name such as Electronics"`
}

// ListValuesInput is the argument of the list_values tool
type ListValuesInput struct {
	Column string `json:"column" jsonschema:"description=One of: clusters product_categories payment_methods devices regions delivery_options age_groups"`
}

// listColumns maps list_values arguments onto listing intents
var listColumns = map[string]pkg.IntentKind{
	"clusters":           pkg.IntentListClusters,
	"product_categories": pkg.IntentListProductCategories,
	"payment_methods":    pkg.IntentListPaymentMethods,
	"devices":            pkg.IntentListDevices,
	"regions":            pkg.IntentListRegions,
	"delivery_options":   pkg.IntentListDeliveryOptions,
	"age_groups":         pkg.IntentListAgeGroups,
}

// ClusterSummaryTool creates the cluster overview tool using Eino's InferTool
func ClusterSummaryTool(table *dataset.Table) (tool.InvokableTool, error) {
	return utils.InferTool("cluster_summary",
		"Summarize one customer cluster: size, average income, spending score, order value, orders, review score and age, plus the most common device, payment method, product category and region",
		func(ctx context.Context, in *ClusterSummaryInput) (string, error) {
			logger.Debug().Int("cluster_id", in.ClusterID).Msg("Tool cluster_summary invoked")
			text, err := ClusterSummary(table, in.ClusterID)
			if err != nil {
				return recoverMessage(err), nil
			}
			return text, nil
		})
}

// ProductClusterTool creates the product-to-cluster lookup tool
func ProductClusterTool(table *dataset.Table) (tool.InvokableTool, error) {
	return utils.InferTool("product_top_cluster",
		"Find the customer cluster that buys a product category the most",
		func(ctx context.Context, in *ProductClusterInput) (string, error) {
			logger.Debug().Str("category", in.Category).Msg("Tool product_top_cluster invoked")
			categories, err := table.DistinctValues(dataset.ColProductCategory)
			if err != nil {
				return "", err
			}
			for _, c := range categories {
				if strings.EqualFold(c, strings.TrimSpace(in.Category)) {
					text, _, err := productToCluster(table, c)
					if err != nil {
						return recoverMessage(err), nil
					}
					return text, nil
				}
			}
			return fmt.Sprintf("Unknown product category %q. Known categories: %s.",
				in.Category, strings.Join(categories, ", ")), nil
		})
}

// ListValuesTool creates the tool that enumerates clusters or categorical values
func ListValuesTool(table *dataset.Table) (tool.InvokableTool, error) {
	return utils.InferTool("list_values",
		"List the clusters or the distinct values of a customer attribute with their customer counts",
		func(ctx context.Context, in *ListValuesInput) (string, error) {
			logger.Debug().Str("column", in.Column).Msg("Tool list_values invoked")
			kind, ok := listColumns[strings.ToLower(strings.TrimSpace(in.Column))]
			if !ok {
				names := make([]string, 0, len(listColumns))
				for name := range listColumns {
					names = append(names, name)
				}
				sort.Strings(names)
				return fmt.Sprintf("Unknown column %q. Use one of: %s.", in.Column, strings.Join(names, ", ")), nil
			}
			if kind == pkg.IntentListClusters {
				return listClusters(table), nil
			}
			return listValues(table, listings[kind]), nil
		})
}

// GetTools returns all available tools over the table
func GetTools(table *dataset.Table) ([]tool.InvokableTool, error) {
	constructors := []func(*dataset.Table) (tool.InvokableTool, error){
		ClusterSummaryTool,
		ProductClusterTool,
		ListValuesTool,
	}
	tools := make([]tool.InvokableTool, 0, len(constructors))
	for _, build := range constructors {
		t, err := build(table)
		if err != nil {
			return nil, fmt.Errorf("build tool: %w", err)
		}
		tools = append(tools, t)
	}
	return tools, nil
}
