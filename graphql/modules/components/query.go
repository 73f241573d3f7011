package components

import (
	"github.com/graphql-go/graphql"
)

// GetQueryFields returns the component queries to be mounted in the root schema.
func GetQueryFields(reader Reader) graphql.Fields {
	return graphql.Fields{
		"components": &graphql.Field{
			Type: graphql.NewList(ComponentType),
			Args: graphql.FieldConfigArgument{
				"type":      &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
				"ecosystem": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				componentType := p.Args["type"].(string)
				ecosystem := p.Args["ecosystem"].(string)
				return ResolveComponents(p.Context, reader, componentType, ecosystem)
			},
		},
		"component": &graphql.Field{
			Type: ComponentType,
			Args: graphql.FieldConfigArgument{
				"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				id := p.Args["id"].(int)
				return ResolveComponent(p.Context, reader, int64(id))
			},
		},
	}
}
