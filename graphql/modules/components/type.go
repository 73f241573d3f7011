// Package components defines the GraphQL types and queries for tracked components.
package components

import (
	"github.com/graphql-go/graphql"
)

// SeverityType enumerates the normalized severity levels.
var SeverityType = graphql.NewEnum(graphql.EnumConfig{
	Name: "Severity",
	Values: graphql.EnumValueConfigMap{
		"critical": &graphql.EnumValueConfig{Value: "critical"},
		"high":     &graphql.EnumValueConfig{Value: "high"},
		"medium":   &graphql.EnumValueConfig{Value: "medium"},
		"low":      &graphql.EnumValueConfig{Value: "low"},
		"unknown":  &graphql.EnumValueConfig{Value: "unknown"},
	},
})

// VulnerabilityType represents a finding recorded against a component.
var VulnerabilityType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Vulnerability",
	Fields: graphql.Fields{
		"id":                    &graphql.Field{Type: graphql.Int},
		"cve_id":                &graphql.Field{Type: graphql.String},
		"source":                &graphql.Field{Type: graphql.String},
		"severity":              &graphql.Field{Type: SeverityType},
		"summary":               &graphql.Field{Type: graphql.String},
		"is_false_positive":     &graphql.Field{Type: graphql.Boolean},
		"false_positive_reason": &graphql.Field{Type: graphql.String},
	},
})

// ComponentType represents a tracked library or product.
var ComponentType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Component",
	Fields: graphql.Fields{
		"id":              &graphql.Field{Type: graphql.Int},
		"name":            &graphql.Field{Type: graphql.String},
		"version":         &graphql.Field{Type: graphql.String},
		"type":            &graphql.Field{Type: graphql.String},
		"ecosystem":       &graphql.Field{Type: graphql.String},
		"identifier":      &graphql.Field{Type: graphql.String},
		"notes":           &graphql.Field{Type: graphql.String},
		"last_updated":    &graphql.Field{Type: graphql.String},
		"vulnerabilities": &graphql.Field{Type: graphql.NewList(VulnerabilityType)},
		"open_count": &graphql.Field{
			Type:        graphql.Int,
			Description: "Vulnerabilities not marked as false positives",
		},
	},
})
