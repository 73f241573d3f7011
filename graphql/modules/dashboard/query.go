// Package dashboard defines the GraphQL queries for the dashboard.
package dashboard

import (
	"github.com/graphql-go/graphql"

	"github.com/ortelius/component-monitor/graphql/modules/components"
)

// GetQueryFields returns the dashboard queries to be mounted in the root schema
func GetQueryFields(reader components.Reader) graphql.Fields {
	return graphql.Fields{
		// Top cards
		"dashboardOverview": &graphql.Field{
			Type: DashboardOverviewType,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return ResolveOverview(p.Context, reader)
			},
		},
		// Charts
		"dashboardSeverity": &graphql.Field{
			Type: SeverityDistributionType,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return ResolveSeverityDistribution(p.Context, reader)
			},
		},
		// Top risks table
		"dashboardTopRisks": &graphql.Field{
			Type: graphql.NewList(RiskyAssetType),
			Args: graphql.FieldConfigArgument{
				"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 5},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				limit := p.Args["limit"].(int)
				return ResolveTopRisks(p.Context, reader, limit)
			},
		},
	}
}
