// Package graphql assembles the read-only GraphQL schema.
package graphql

import (
	"github.com/graphql-go/graphql"

	"github.com/ortelius/component-monitor/graphql/modules/components"
	"github.com/ortelius/component-monitor/graphql/modules/dashboard"
)

// CreateSchema builds the root query from the component and dashboard modules.
func CreateSchema(reader components.Reader) (graphql.Schema, error) {
	fields := graphql.Fields{}
	for name, field := range components.GetQueryFields(reader) {
		fields[name] = field
	}
	for name, field := range dashboard.GetQueryFields(reader) {
		fields[name] = field
	}

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: graphql.NewObject(graphql.ObjectConfig{
			Name:   "Query",
			Fields: fields,
		}),
	})
}
