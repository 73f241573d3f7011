// Package dashboard defines the GraphQL types for the dashboard.
package dashboard

import (
	"github.com/graphql-go/graphql"
)

// DashboardOverviewType represents the high-level metrics for the top cards
var DashboardOverviewType = graphql.NewObject(graphql.ObjectConfig{
	Name: "DashboardOverview",
	Fields: graphql.Fields{
		"total_components":      &graphql.Field{Type: graphql.Int},
		"total_libraries":       &graphql.Field{Type: graphql.Int},
		"total_products":        &graphql.Field{Type: graphql.Int},
		"total_vulnerabilities": &graphql.Field{Type: graphql.Int},
		"false_positives":       &graphql.Field{Type: graphql.Int},
		"last_updated":          &graphql.Field{Type: graphql.String},
	},
})

// SeverityDistributionType represents the data for the pie/bar charts
var SeverityDistributionType = graphql.NewObject(graphql.ObjectConfig{
	Name: "SeverityDistribution",
	Fields: graphql.Fields{
		"critical": &graphql.Field{Type: graphql.Int},
		"high":     &graphql.Field{Type: graphql.Int},
		"medium":   &graphql.Field{Type: graphql.Int},
		"low":      &graphql.Field{Type: graphql.Int},
		"unknown":  &graphql.Field{Type: graphql.Int},
	},
})

// RiskyAssetType represents rows for the "Top Risky" table
var RiskyAssetType = graphql.NewObject(graphql.ObjectConfig{
	Name: "RiskyAsset",
	Fields: graphql.Fields{
		"id":             &graphql.Field{Type: graphql.Int},
		"name":           &graphql.Field{Type: graphql.String},
		"version":        &graphql.Field{Type: graphql.String},
		"critical_count": &graphql.Field{Type: graphql.Int},
		"high_count":     &graphql.Field{Type: graphql.Int},
		"total_vulns":    &graphql.Field{Type: graphql.Int},
	},
})
